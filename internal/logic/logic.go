package logic

import (
	"context"
	"strconv"
	"sync"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/cache"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/metrics"
	"github.com/tqt95/app-react-jpa/internal/sql"
	"github.com/tqt95/app-react-jpa/internal/utilities"
	"github.com/tqt95/app-react-jpa/internal/validation"

	"github.com/shopspring/decimal"
)

const (
	cacheKindEmployee string = "employee"
	cacheKindSearch   string = "search"
)

type Logic interface {
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeesByDepartment(ctx context.Context, department string) ([]*data.Employee, error)
	EmployeesByLastName(ctx context.Context, lastName string) ([]*data.Employee, error)
	EmployeesByMinSalary(ctx context.Context, minSalary decimal.Decimal) ([]*data.Employee, error)
	EmployeesHiredInYear(ctx context.Context, year int) ([]*data.Employee, error)
	EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) error
}

type logic struct {
	sync.RWMutex
	utilities.Logger
	sql     sql.Sql
	cache   cache.Cache
	metrics *metrics.Metrics
	fill    struct {
		sync.Mutex
		generation uint64
	}
	config struct {
		cacheEnabled   bool
		mutateDisabled bool
	}
}

func NewLogic(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Logic
} {
	l := &logic{Logger: utilities.NewNopLogger()}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case sql.Sql:
			l.sql = v
		case cache.Cache:
			l.cache = v
		case utilities.Logger:
			l.Logger = v
		case *metrics.Metrics:
			l.metrics = v
		}
	}
	return l
}

func (l *logic) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	if cacheEnabled, ok := envs["LOGIC_CACHE_ENABLED"]; ok {
		l.config.cacheEnabled, _ = strconv.ParseBool(cacheEnabled)
	}
	if mutateDisabled, ok := envs["MUTATE_DISABLED"]; ok {
		l.config.mutateDisabled, _ = strconv.ParseBool(mutateDisabled)
	}
	return nil
}

func (l *logic) Open(ctx context.Context) error {
	l.Lock()
	defer l.Unlock()

	if l.config.cacheEnabled && l.cache == nil {
		l.Error(ctx, "cache enabled, but no cache provided; cache disabled")
		l.config.cacheEnabled = false
	}
	if l.config.cacheEnabled {
		l.Info(ctx, "cache enabled")
	}
	if l.config.mutateDisabled {
		l.Info(ctx, "mutations disabled")
	}
	return nil
}

func (l *logic) Close(ctx context.Context) error {
	return nil
}

func (l *logic) cacheEnabled() bool {
	l.RLock()
	defer l.RUnlock()
	return l.config.cacheEnabled
}

func (l *logic) mutateDisabled() bool {
	l.RLock()
	defer l.RUnlock()
	return l.config.mutateDisabled
}

// evict removes the given employees and every cached search, a failure
// only costs stale reads so it's logged rather than returned
func (l *logic) evict(ctx context.Context, ids ...int64) {
	if !l.cacheEnabled() {
		return
	}
	l.fill.Lock()
	defer l.fill.Unlock()

	l.fill.generation++
	if err := l.cache.EmployeesDelete(ctx, ids...); err != nil {
		l.Error(ctx, "error while evicting employees %v from cache: %s", ids, err)
	}
}

// generation must be read before reading from sql; cacheFill only writes
// to the cache when no eviction happened since.
func (l *logic) generation() uint64 {
	l.fill.Lock()
	defer l.fill.Unlock()
	return l.fill.generation
}

func (l *logic) cacheFill(ctx context.Context, generation uint64, fx func() error) {
	l.fill.Lock()
	defer l.fill.Unlock()

	if generation != l.fill.generation {
		l.Trace(ctx, "cache evicted while reading, not filled")
		return
	}
	if err := fx(); err != nil {
		l.Error(ctx, "error while filling cache: %s", err)
	}
}

func (l *logic) employeesSearch(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	var generation uint64

	if l.cacheEnabled() {
		employees, err := l.cache.EmployeesRead(ctx, search)
		if err == nil {
			l.metrics.CacheHit(cacheKindSearch)
			return employees, nil
		}
		l.metrics.CacheMiss(cacheKindSearch)
		l.Trace(ctx, "employees search not read from cache: %s", err)
		generation = l.generation()
	}
	employees, err := l.sql.EmployeesSearch(ctx, search)
	if err != nil {
		return nil, err
	}
	if l.cacheEnabled() {
		l.cacheFill(ctx, generation, func() error {
			return l.cache.EmployeesWrite(ctx, search, employees...)
		})
	}
	return employees, nil
}

func (l *logic) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	return l.employeesSearch(ctx, data.EmployeeSearch{})
}

func (l *logic) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	var generation uint64

	if l.cacheEnabled() {
		employee, err := l.cache.EmployeeRead(ctx, id)
		if err == nil {
			l.metrics.CacheHit(cacheKindEmployee)
			return employee, nil
		}
		l.metrics.CacheMiss(cacheKindEmployee)
		l.Trace(ctx, "employee (%d) not read from cache: %s", id, err)
		generation = l.generation()
	}
	employee, err := l.sql.EmployeeRead(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.cacheEnabled() {
		l.cacheFill(ctx, generation, func() error {
			return l.cache.EmployeeWrite(ctx, employee)
		})
	}
	return employee, nil
}

func (l *logic) EmployeesByDepartment(ctx context.Context, department string) ([]*data.Employee, error) {
	return l.employeesSearch(ctx, data.EmployeeSearch{Department: &department})
}

func (l *logic) EmployeesByLastName(ctx context.Context, lastName string) ([]*data.Employee, error) {
	return l.employeesSearch(ctx, data.EmployeeSearch{LastName: &lastName})
}

func (l *logic) EmployeesByMinSalary(ctx context.Context, minSalary decimal.Decimal) ([]*data.Employee, error) {
	return l.employeesSearch(ctx, data.EmployeeSearch{MinSalary: &minSalary})
}

func (l *logic) EmployeesHiredInYear(ctx context.Context, year int) ([]*data.Employee, error) {
	return l.employeesSearch(ctx, data.EmployeeSearch{HireYear: &year})
}

// EmployeeCreate persists employee as a new record, any id it carries is
// ignored.
func (l *logic) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	if l.mutateDisabled() {
		return nil, data.ErrMutateDisabled
	}
	employee.ID = 0
	employee.Normalize()
	if err := validation.Employee(&employee); err != nil {
		return nil, err
	}
	created, err := l.sql.EmployeeSave(ctx, employee)
	if err != nil {
		return nil, err
	}
	l.evict(ctx)
	l.Debug(ctx, "created employee (%d)", created.ID)
	return created, nil
}

// EmployeeUpdate replaces every mutable field of the employee identified
// by id; the payload is validated before the employee is looked up.
func (l *logic) EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error) {
	var updated *data.Employee

	if l.mutateDisabled() {
		return nil, data.ErrMutateDisabled
	}
	employee.Normalize()
	if err := validation.Employee(&employee); err != nil {
		return nil, err
	}
	if err := l.sql.Transaction(ctx, func(ctx context.Context) error {
		existing, err := l.sql.EmployeeRead(ctx, id)
		if err != nil {
			return err
		}
		existing.Merge(employee)
		updated, err = l.sql.EmployeeSave(ctx, *existing)
		return err
	}); err != nil {
		return nil, err
	}
	l.evict(ctx, id)
	l.Debug(ctx, "updated employee (%d)", id)
	return updated, nil
}

func (l *logic) EmployeeDelete(ctx context.Context, id int64) error {
	if l.mutateDisabled() {
		return data.ErrMutateDisabled
	}
	if err := l.sql.Transaction(ctx, func(ctx context.Context) error {
		if _, err := l.sql.EmployeeRead(ctx, id); err != nil {
			return err
		}
		return l.sql.EmployeeDelete(ctx, id)
	}); err != nil {
		return err
	}
	l.evict(ctx, id)
	l.Debug(ctx, "deleted employee (%d)", id)
	return nil
}
