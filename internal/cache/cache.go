package cache

import (
	"context"
	"errors"

	"github.com/tqt95/app-react-jpa/internal/data"
)

var (
	ErrEmployeeNotCached       = errors.New("employee not cached")
	ErrEmployeeSearchNotCached = errors.New("employee search not cached")
)

// Cache holds employees by id and the ids matched by a search; a cached
// search is only served while every one of its employees is cached.
type Cache interface {
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeeWrite(ctx context.Context, employee *data.Employee) error
	EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error)
	EmployeesWrite(ctx context.Context, search data.EmployeeSearch, employees ...*data.Employee) error

	// EmployeesDelete evicts the given employees and every cached search,
	// since any of them may have matched a mutated employee.
	EmployeesDelete(ctx context.Context, ids ...int64) error
}

func copyEmployee(e *data.Employee) *data.Employee {
	employee := &data.Employee{}
	*employee = *e
	return employee
}

func employeeIds(employees []*data.Employee) *data.EmployeeIds {
	ids := &data.EmployeeIds{Ids: make([]int64, 0, len(employees))}
	for _, employee := range employees {
		ids.Ids = append(ids.Ids, employee.ID)
	}
	return ids
}
