package sql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/tqt95/app-react-jpa/internal/data"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

const employeeColumns string = "ID, FIRST_NAME, LAST_NAME, EMAIL, PHONE_NUMBER, HIRE_DATE, SALARY, DEPARTMENT"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func employeeCriteria(search data.EmployeeSearch) (string, []any) {
	var args []any
	var criteria []string

	if department := search.Department; department != nil {
		args = append(args, *department)
		criteria = append(criteria, "DEPARTMENT = ?")
	}
	if lastName := search.LastName; lastName != nil {
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(*lastName))+"%")
		criteria = append(criteria, "LOWER(LAST_NAME) LIKE ?")
	}
	if minSalary := search.MinSalary; minSalary != nil {
		args = append(args, minSalary.String())
		criteria = append(criteria, "SALARY >= CAST(? AS DECIMAL(65, 30))")
	}
	if hireYear := search.HireYear; hireYear != nil {
		args = append(args, *hireYear)
		criteria = append(criteria, "EXTRACT(YEAR FROM HIRE_DATE) = ?")
	}
	if len(criteria) <= 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(criteria, " AND "), args
}

// employeeArgs returns the mutable columns of employee in the order of
// employeeColumns (without ID).
func employeeArgs(employee data.Employee) []any {
	var hireDate, salary any

	if employee.HireDate != nil {
		hireDate = employee.HireDate.String()
	}
	if employee.Salary != nil {
		salary = employee.Salary.String()
	}
	return []any{
		employee.FirstName,
		employee.LastName,
		nullString(employee.Email),
		nullString(employee.PhoneNumber),
		hireDate,
		salary,
		nullString(employee.Department),
	}
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func employeeScan(scanFx func(...any) error) (*data.Employee, error) {
	var email, phoneNumber, department sql.NullString
	var hireDate sql.NullTime
	var salary decimal.NullDecimal

	employee := new(data.Employee)
	if err := scanFx(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&email,
		&phoneNumber,
		&hireDate,
		&salary,
		&department,
	); err != nil {
		return nil, err
	}
	if email.Valid {
		employee.Email = data.String(email.String)
	}
	if phoneNumber.Valid {
		employee.PhoneNumber = data.String(phoneNumber.String)
	}
	if hireDate.Valid {
		date := civil.DateOf(hireDate.Time)
		employee.HireDate = &date
	}
	if salary.Valid {
		employee.Salary = data.NewSalary(salary.Decimal)
	}
	if department.Valid {
		employee.Department = data.String(department.String)
	}
	return employee, nil
}

func queryEmployees(criteria string) string {
	return strings.TrimSpace(fmt.Sprintf("SELECT %s FROM %s %s", employeeColumns,
		tableEmployees, criteria)) + " ORDER BY ID"
}
