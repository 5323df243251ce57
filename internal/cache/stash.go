package cache

import (
	"context"
	"fmt"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/utilities"

	"github.com/antonio-alexander/go-stash"
	"github.com/pkg/errors"
)

const stashKeySearchPrefix string = "search_"

type stashCache struct {
	utilities.Logger
	stash interface {
		stash.Configurer
		stash.Parameterizer
		stash.Initializer
		stash.Shutdowner
	}
	stash.Stasher
}

// NewStash wraps a go-stash implementation, which must be given as one of
// the parameters.
func NewStash(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &stashCache{Logger: utilities.NewNopLogger()}
	for _, p := range parameters {
		switch p := p.(type) {
		case utilities.Logger:
			c.Logger = p
		case interface {
			stash.Configurer
			stash.Parameterizer
			stash.Initializer
			stash.Shutdowner
			stash.Stasher
		}:
			c.stash = p
			c.Stasher = p
		}
	}
	if c.stash != nil {
		c.stash.SetParameters(parameters...)
	}
	return c
}

func (c *stashCache) Configure(envs map[string]string) error {
	if c.stash == nil {
		return errors.New("stash not provided")
	}
	return c.stash.Configure(envs)
}

func (c *stashCache) Open(ctx context.Context) error {
	if err := c.stash.Initialize(); err != nil {
		return errors.Wrap(err, "error while initializing stash")
	}
	c.Info(ctx, "stash cache opened")
	return nil
}

func (c *stashCache) Close(ctx context.Context) error {
	return c.stash.Shutdown()
}

func (c *stashCache) Clear(ctx context.Context) error {
	return c.Stasher.Clear()
}

func (c *stashCache) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	employee := &data.Employee{}
	if err := c.Stasher.Read(fmt.Sprint(id), employee); err != nil {
		c.Trace(ctx, "cache miss for employee (%d): %s", id, err)
		return nil, ErrEmployeeNotCached
	}
	return employee, nil
}

func (c *stashCache) EmployeeWrite(ctx context.Context, employee *data.Employee) error {
	if _, err := c.Stasher.Write(fmt.Sprint(employee.ID), employee); err != nil {
		return errors.Wrapf(err, "error while writing employee (%d)", employee.ID)
	}
	return nil
}

func (c *stashCache) EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	searchKey, err := search.ToKey()
	if err != nil {
		return nil, errors.Wrap(err, "error while creating search key")
	}
	ids := &data.EmployeeIds{}
	if err := c.Stasher.Read(stashKeySearchPrefix+searchKey, ids); err != nil {
		c.Trace(ctx, "cache miss for employee search (%s): %s", searchKey, err)
		return nil, ErrEmployeeSearchNotCached
	}
	employees := make([]*data.Employee, 0, len(ids.Ids))
	for _, id := range ids.Ids {
		employee := &data.Employee{}
		if err := c.Stasher.Read(fmt.Sprint(id), employee); err != nil {
			//KIM: we don't want to serve half a search, so the search
			// is invalidated as soon as one of its employees is missing
			if err := c.Stasher.Delete(stashKeySearchPrefix + searchKey); err != nil {
				c.Error(ctx, "error while deleting search (%s): %s", searchKey, err)
			}
			return nil, ErrEmployeeSearchNotCached
		}
		employees = append(employees, employee)
	}
	return employees, nil
}

func (c *stashCache) EmployeesWrite(ctx context.Context, search data.EmployeeSearch, employees ...*data.Employee) error {
	searchKey, err := search.ToKey()
	if err != nil {
		return errors.Wrap(err, "error while creating search key")
	}
	for _, employee := range employees {
		if err := c.EmployeeWrite(ctx, employee); err != nil {
			return err
		}
	}
	if _, err := c.Stasher.Write(stashKeySearchPrefix+searchKey, employeeIds(employees)); err != nil {
		return errors.Wrapf(err, "error while writing search (%s)", searchKey)
	}
	return nil
}

func (c *stashCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	//KIM: stash can't enumerate keys, so the cached searches can't be
	// found and evicted one by one; the whole stash is cleared instead
	if err := c.Stasher.Clear(); err != nil {
		return errors.Wrap(err, "error while clearing stash")
	}
	c.Trace(ctx, "evicted %d employees and every search", len(ids))
	return nil
}
