package cache

import (
	"context"
	"sync"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/utilities"

	"github.com/pkg/errors"
)

type memoryCache struct {
	sync.RWMutex
	employees map[int64]*data.Employee //map[id]employee
	searches  map[string][]int64       //map[search]ids
	utilities.Logger
}

func NewMemory(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &memoryCache{
		Logger:    utilities.NewNopLogger(),
		employees: make(map[int64]*data.Employee),
		searches:  make(map[string][]int64),
	}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *memoryCache) Configure(envs map[string]string) error {
	return nil
}

func (c *memoryCache) Open(ctx context.Context) error {
	c.Info(ctx, "memory cache opened")
	return nil
}

func (c *memoryCache) Close(ctx context.Context) error {
	return nil
}

func (c *memoryCache) Clear(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.employees = make(map[int64]*data.Employee)
	c.searches = make(map[string][]int64)
	return nil
}

func (c *memoryCache) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	c.RLock()
	defer c.RUnlock()

	employee, ok := c.employees[id]
	if !ok {
		return nil, ErrEmployeeNotCached
	}
	return copyEmployee(employee), nil
}

func (c *memoryCache) EmployeeWrite(ctx context.Context, employee *data.Employee) error {
	c.Lock()
	defer c.Unlock()

	c.employees[employee.ID] = copyEmployee(employee)
	return nil
}

func (c *memoryCache) EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	searchKey, err := search.ToKey()
	if err != nil {
		return nil, errors.Wrap(err, "error while creating search key")
	}

	c.RLock()
	defer c.RUnlock()

	ids, ok := c.searches[searchKey]
	if !ok {
		return nil, ErrEmployeeSearchNotCached
	}
	employees := make([]*data.Employee, 0, len(ids))
	for _, id := range ids {
		employee, ok := c.employees[id]
		if !ok {
			return nil, ErrEmployeeSearchNotCached
		}
		employees = append(employees, copyEmployee(employee))
	}
	return employees, nil
}

func (c *memoryCache) EmployeesWrite(ctx context.Context, search data.EmployeeSearch, employees ...*data.Employee) error {
	searchKey, err := search.ToKey()
	if err != nil {
		return errors.Wrap(err, "error while creating search key")
	}

	c.Lock()
	defer c.Unlock()

	for _, employee := range employees {
		c.employees[employee.ID] = copyEmployee(employee)
	}
	c.searches[searchKey] = employeeIds(employees).Ids
	return nil
}

func (c *memoryCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	c.Lock()
	defer c.Unlock()

	for _, id := range ids {
		delete(c.employees, id)
	}
	c.searches = make(map[string][]int64)
	return nil
}
