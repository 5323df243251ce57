package sql_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/sql"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const querySelectEmployees = "SELECT ID, FIRST_NAME, LAST_NAME, EMAIL, PHONE_NUMBER, HIRE_DATE, SALARY, DEPARTMENT FROM EMPLOYEES"

var employeeColumns = []string{"ID", "FIRST_NAME", "LAST_NAME", "EMAIL",
	"PHONE_NUMBER", "HIRE_DATE", "SALARY", "DEPARTMENT"}

func newMockSql(t *testing.T) (sql.Sql, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sql.NewMySql(db), mock
}

func employeeRow(id int64) *sqlmock.Rows {
	return sqlmock.NewRows(employeeColumns).AddRow(id, "John", "Smith",
		"john.smith@example.com", nil, time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC),
		"50000.00", "Engineering")
}

func TestEmployeeRead(t *testing.T) {
	s, mock := newMockSql(t)

	mock.ExpectQuery(regexp.QuoteMeta(querySelectEmployees+" WHERE ID = ?") + "$").
		WithArgs(int64(1)).
		WillReturnRows(employeeRow(1))

	employee, err := s.EmployeeRead(context.TODO(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), employee.ID)
	assert.Equal(t, "John", employee.FirstName)
	assert.Equal(t, "Smith", employee.LastName)
	assert.Equal(t, "john.smith@example.com", *employee.Email)
	assert.Nil(t, employee.PhoneNumber)
	assert.Equal(t, data.Date(2021, 3, 15), employee.HireDate)
	assert.Equal(t, "50000.00", employee.Salary.String())
	assert.Equal(t, "Engineering", *employee.Department)
}

func TestEmployeeReadNotFound(t *testing.T) {
	s, mock := newMockSql(t)

	mock.ExpectQuery(regexp.QuoteMeta(querySelectEmployees + " WHERE ID = ?")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(employeeColumns))

	employee, err := s.EmployeeRead(context.TODO(), 42)
	assert.ErrorIs(t, err, data.ErrEmployeeNotFound)
	assert.Nil(t, employee)
}

func TestEmployeeReadError(t *testing.T) {
	s, mock := newMockSql(t)

	mock.ExpectQuery(regexp.QuoteMeta(querySelectEmployees + " WHERE ID = ?")).
		WithArgs(int64(42)).
		WillReturnError(assert.AnError)

	employee, err := s.EmployeeRead(context.TODO(), 42)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, data.ErrEmployeeNotFound)
	assert.Nil(t, employee)
}

func TestEmployeesSearch(t *testing.T) {
	minSalary := decimal.RequireFromString("50000")
	hireYear := 2021

	cases := map[string]struct {
		search data.EmployeeSearch
		query  string
		args   []any
	}{
		"all": {
			query: querySelectEmployees + " ORDER BY ID",
		},
		"department": {
			search: data.EmployeeSearch{Department: data.String("Engineering")},
			query:  querySelectEmployees + " WHERE DEPARTMENT = ? ORDER BY ID",
			args:   []any{"Engineering"},
		},
		"last_name": {
			search: data.EmployeeSearch{LastName: data.String("SMI_TH%")},
			query:  querySelectEmployees + " WHERE LOWER(LAST_NAME) LIKE ? ORDER BY ID",
			args:   []any{`%smi\_th\%%`},
		},
		"min_salary": {
			search: data.EmployeeSearch{MinSalary: &minSalary},
			query:  querySelectEmployees + " WHERE SALARY >= CAST(? AS DECIMAL(65, 30)) ORDER BY ID",
			args:   []any{"50000"},
		},
		"hire_year": {
			search: data.EmployeeSearch{HireYear: &hireYear},
			query:  querySelectEmployees + " WHERE EXTRACT(YEAR FROM HIRE_DATE) = ? ORDER BY ID",
			args:   []any{int64(2021)},
		},
		"combined": {
			search: data.EmployeeSearch{Department: data.String("Engineering"),
				HireYear: &hireYear},
			query: querySelectEmployees +
				" WHERE DEPARTMENT = ? AND EXTRACT(YEAR FROM HIRE_DATE) = ? ORDER BY ID",
			args: []any{"Engineering", int64(2021)},
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			s, mock := newMockSql(t)

			expectation := mock.ExpectQuery(regexp.QuoteMeta(c.query))
			if len(c.args) > 0 {
				expectation = expectation.WithArgs(c.args...)
			}
			expectation.WillReturnRows(employeeRow(1).AddRow(int64(2), "Jane",
				"Smithers", nil, nil, nil, nil, nil))

			employees, err := s.EmployeesSearch(context.TODO(), c.search)
			require.NoError(t, err)
			require.Len(t, employees, 2)
			assert.Equal(t, int64(1), employees[0].ID)
			assert.Equal(t, int64(2), employees[1].ID)
			assert.Nil(t, employees[1].Salary)
			assert.Nil(t, employees[1].HireDate)
		})
	}
}

func TestEmployeesSearchEmpty(t *testing.T) {
	s, mock := newMockSql(t)

	mock.ExpectQuery(regexp.QuoteMeta(querySelectEmployees + " ORDER BY ID")).
		WillReturnRows(sqlmock.NewRows(employeeColumns))

	employees, err := s.EmployeesSearch(context.TODO(), data.EmployeeSearch{})
	require.NoError(t, err)
	assert.NotNil(t, employees)
	assert.Empty(t, employees)
}

func TestEmployeeSaveCreate(t *testing.T) {
	s, mock := newMockSql(t)

	salary, err := data.SalaryFromString("50000")
	require.NoError(t, err)
	mock.ExpectExec(`INSERT INTO EMPLOYEES \(FIRST_NAME, LAST_NAME, EMAIL,\s+PHONE_NUMBER, HIRE_DATE, SALARY, DEPARTMENT\) VALUES`).
		WithArgs("John", "Smith", "john.smith@example.com", nil, "2021-03-15",
			"50000.00", "Engineering").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(regexp.QuoteMeta(querySelectEmployees + " WHERE ID = ?")).
		WithArgs(int64(5)).
		WillReturnRows(employeeRow(5))

	employee, err := s.EmployeeSave(context.TODO(), data.Employee{
		FirstName:  "John",
		LastName:   "Smith",
		Email:      data.String("john.smith@example.com"),
		HireDate:   data.Date(2021, 3, 15),
		Salary:     salary,
		Department: data.String("Engineering"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), employee.ID)
}

func TestEmployeeSaveUpdateNotFound(t *testing.T) {
	s, mock := newMockSql(t)

	mock.ExpectExec(`UPDATE EMPLOYEES SET FIRST_NAME = \?`).
		WithArgs("John", "Smith", nil, nil, nil, nil, nil, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(querySelectEmployees + " WHERE ID = ?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(employeeColumns))

	employee, err := s.EmployeeSave(context.TODO(), data.Employee{
		ID:        9,
		FirstName: "John",
		LastName:  "Smith",
	})
	assert.ErrorIs(t, err, data.ErrEmployeeNotFound)
	assert.Nil(t, employee)
}

func TestEmployeeDelete(t *testing.T) {
	s, mock := newMockSql(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM EMPLOYEES WHERE ID = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM EMPLOYEES WHERE ID = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.EmployeeDelete(context.TODO(), 3)
	assert.NoError(t, err)
	err = s.EmployeeDelete(context.TODO(), 3)
	assert.ErrorIs(t, err, data.ErrEmployeeNotFound)
}

func TestTransactionCommit(t *testing.T) {
	s, mock := newMockSql(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(querySelectEmployees + " WHERE ID = ? FOR UPDATE")).
		WithArgs(int64(3)).
		WillReturnRows(employeeRow(3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM EMPLOYEES WHERE ID = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Transaction(context.TODO(), func(ctx context.Context) error {
		if _, err := s.EmployeeRead(ctx, 3); err != nil {
			return err
		}
		return s.EmployeeDelete(ctx, 3)
	})
	assert.NoError(t, err)
}

func TestTransactionRollback(t *testing.T) {
	s, mock := newMockSql(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(querySelectEmployees + " WHERE ID = ? FOR UPDATE")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(employeeColumns))
	mock.ExpectRollback()

	err := s.Transaction(context.TODO(), func(ctx context.Context) error {
		if _, err := s.EmployeeRead(ctx, 3); err != nil {
			return err
		}
		return s.EmployeeDelete(ctx, 3)
	})
	assert.ErrorIs(t, err, data.ErrEmployeeNotFound)
}

func TestTransactionNested(t *testing.T) {
	s, mock := newMockSql(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM EMPLOYEES WHERE ID = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Transaction(context.TODO(), func(ctx context.Context) error {
		return s.Transaction(ctx, func(ctx context.Context) error {
			return s.EmployeeDelete(ctx, 3)
		})
	})
	assert.NoError(t, err)
}
