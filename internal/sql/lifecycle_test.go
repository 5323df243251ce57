package sql_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/sql"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsEmployee(employees []*data.Employee, id int64) bool {
	for _, employee := range employees {
		if employee.ID == id {
			return true
		}
	}
	return false
}

func assertEmployee(t *testing.T, expected, actual *data.Employee) {
	t.Helper()

	require.NotNil(t, actual)
	assert.Equal(t, expected.FirstName, actual.FirstName)
	assert.Equal(t, expected.LastName, actual.LastName)
	assert.Equal(t, expected.Email, actual.Email)
	assert.Equal(t, expected.PhoneNumber, actual.PhoneNumber)
	assert.Equal(t, expected.HireDate, actual.HireDate)
	assert.Equal(t, expected.Department, actual.Department)
	if expected.Salary == nil {
		assert.Nil(t, actual.Salary)
	} else if assert.NotNil(t, actual.Salary) {
		assert.Equal(t, expected.Salary.String(), actual.Salary.String())
	}
}

// testEmployees exercises the behaviour every Sql implementation must
// share; names are unique so it can run against a populated database.
func testEmployees(t *testing.T, s sql.Sql) {
	ctx := context.TODO()
	suffix := strings.ReplaceAll(internal.GenerateId(), "-", "")[:8]
	department := "Engineering" + suffix
	lastName := "Smith" + suffix
	salary, err := data.SalaryFromString("50000")
	require.NoError(t, err)

	employee := &data.Employee{
		FirstName:  "John",
		LastName:   lastName,
		Email:      data.String(fmt.Sprintf("john.%s@example.com", suffix)),
		HireDate:   data.Date(2021, 3, 15),
		Salary:     salary,
		Department: data.String(department),
	}
	created, err := s.EmployeeSave(ctx, *employee)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assertEmployee(t, employee, created)

	t.Run("Read", func(t *testing.T) {
		read, err := s.EmployeeRead(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, read.ID)
		assertEmployee(t, employee, read)

		_, err = s.EmployeeRead(ctx, created.ID+1000000)
		assert.ErrorIs(t, err, data.ErrEmployeeNotFound)
	})

	t.Run("Search", func(t *testing.T) {
		exact, above := decimal.RequireFromString("50000"), decimal.RequireFromString("50000.01")
		hired, notHired := 2021, 2022

		cases := map[string]struct {
			search data.EmployeeSearch
			found  bool
		}{
			"all":                     {data.EmployeeSearch{}, true},
			"department":              {data.EmployeeSearch{Department: data.String(department)}, true},
			"department_other":        {data.EmployeeSearch{Department: data.String(department + "x")}, false},
			"department_lower":        {data.EmployeeSearch{Department: data.String(strings.ToLower(department))}, false},
			"department_upper":        {data.EmployeeSearch{Department: data.String(strings.ToUpper(department))}, false},
			"last_name_insensitive":   {data.EmployeeSearch{LastName: data.String(strings.ToUpper(lastName))}, true},
			"last_name_partial":       {data.EmployeeSearch{LastName: data.String("mith" + suffix)}, true},
			"last_name_wildcard":      {data.EmployeeSearch{LastName: data.String("Sm%" + suffix)}, false},
			"min_salary_inclusive":    {data.EmployeeSearch{MinSalary: &exact}, true},
			"min_salary_above":        {data.EmployeeSearch{MinSalary: &above, Department: data.String(department)}, false},
			"hire_year":               {data.EmployeeSearch{HireYear: &hired, Department: data.String(department)}, true},
			"hire_year_other":         {data.EmployeeSearch{HireYear: &notHired, Department: data.String(department)}, false},
			"department_and_lastname": {data.EmployeeSearch{Department: data.String(department), LastName: data.String(lastName)}, true},
		}
		for name, c := range cases {
			t.Run(name, func(t *testing.T) {
				employees, err := s.EmployeesSearch(ctx, c.search)
				require.NoError(t, err)
				assert.NotNil(t, employees)
				assert.Equal(t, c.found, containsEmployee(employees, created.ID))
			})
		}
	})

	t.Run("Update", func(t *testing.T) {
		updated := *created
		updated.FirstName = "Johnny"
		updated.Salary = data.NewSalary(decimal.RequireFromString("60000.5"))
		updated.PhoneNumber = data.String("555-0100")
		updated.HireDate = nil
		saved, err := s.EmployeeSave(ctx, updated)
		require.NoError(t, err)
		assert.Equal(t, created.ID, saved.ID)
		assertEmployee(t, &updated, saved)

		read, err := s.EmployeeRead(ctx, created.ID)
		require.NoError(t, err)
		assertEmployee(t, &updated, read)

		updated.ID = created.ID + 1000000
		_, err = s.EmployeeSave(ctx, updated)
		assert.ErrorIs(t, err, data.ErrEmployeeNotFound)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		duplicate := *employee
		duplicate.LastName = "Doe"
		_, err := s.EmployeeSave(ctx, duplicate)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, data.ErrEmployeeNotFound)
	})

	t.Run("Transaction", func(t *testing.T) {
		err := s.Transaction(ctx, func(ctx context.Context) error {
			read, err := s.EmployeeRead(ctx, created.ID)
			if err != nil {
				return err
			}
			read.Department = data.String(department + "x")
			if _, err := s.EmployeeSave(ctx, *read); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		read, err := s.EmployeeRead(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, department, *read.Department)
	})

	t.Run("ConcurrentUpdate", func(t *testing.T) {
		const n = 4

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- s.Transaction(ctx, func(ctx context.Context) error {
					read, err := s.EmployeeRead(ctx, created.ID)
					if err != nil {
						return err
					}
					read.PhoneNumber = data.String(fmt.Sprintf("555-010%d", i))
					_, err = s.EmployeeSave(ctx, *read)
					return err
				})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
		read, err := s.EmployeeRead(ctx, created.ID)
		require.NoError(t, err)
		if assert.NotNil(t, read.PhoneNumber) {
			assert.Regexp(t, `^555-010[0-3]$`, *read.PhoneNumber)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		err := s.EmployeeDelete(ctx, created.ID)
		require.NoError(t, err)
		_, err = s.EmployeeRead(ctx, created.ID)
		assert.ErrorIs(t, err, data.ErrEmployeeNotFound)
		err = s.EmployeeDelete(ctx, created.ID)
		assert.ErrorIs(t, err, data.ErrEmployeeNotFound)
	})
}
