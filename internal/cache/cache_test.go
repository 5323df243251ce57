package cache_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/cache"
	"github.com/tqt95/app-react-jpa/internal/data"

	"github.com/antonio-alexander/go-stash/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envs = map[string]string{
	"REDIS_ADDRESS": "localhost",
	"REDIS_PORT":    "6379",
	"REDIS_TIMEOUT": "10",
}

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 && s[0] != "" {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
}

type cacheTest struct {
	cache interface {
		internal.Configurer
		internal.Opener
		internal.Clearer
		cache.Cache
	}
}

func newCacheTest(cacheType string) *cacheTest {
	c := &cacheTest{}
	switch cacheType {
	case "memory":
		c.cache = cache.NewMemory()
	case "redis":
		c.cache = cache.NewRedis()
	case "stash-memory":
		c.cache = cache.NewStash(memory.New())
	}
	return c
}

func newEmployees(ids ...int64) []*data.Employee {
	employees := make([]*data.Employee, 0, len(ids))
	for _, id := range ids {
		employees = append(employees, &data.Employee{
			ID:         id,
			FirstName:  internal.GenerateId(),
			LastName:   internal.GenerateId(),
			Department: data.String("Engineering"),
		})
	}
	return employees
}

func (c *cacheTest) TestEmployee(t *testing.T) {
	ctx := context.TODO()
	employee := newEmployees(1)[0]

	err := c.cache.Clear(ctx)
	require.NoError(t, err)

	//read before write is a miss
	_, err = c.cache.EmployeeRead(ctx, employee.ID)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)

	//write then read
	err = c.cache.EmployeeWrite(ctx, employee)
	require.NoError(t, err)
	employeeRead, err := c.cache.EmployeeRead(ctx, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, employee, employeeRead)

	//a single write doesn't cache any search
	_, err = c.cache.EmployeesRead(ctx, data.EmployeeSearch{})
	assert.ErrorIs(t, err, cache.ErrEmployeeSearchNotCached)

	//delete then read
	err = c.cache.EmployeesDelete(ctx, employee.ID)
	require.NoError(t, err)
	_, err = c.cache.EmployeeRead(ctx, employee.ID)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)
}

func (c *cacheTest) TestEmployees(t *testing.T) {
	ctx := context.TODO()
	employees := newEmployees(1, 2, 3, 4, 5)
	search := data.EmployeeSearch{Department: data.String("Engineering")}

	err := c.cache.Clear(ctx)
	require.NoError(t, err)

	//read before write is a miss
	_, err = c.cache.EmployeesRead(ctx, search)
	assert.ErrorIs(t, err, cache.ErrEmployeeSearchNotCached)

	//write then read, order is kept
	err = c.cache.EmployeesWrite(ctx, search, employees...)
	require.NoError(t, err)
	employeesRead, err := c.cache.EmployeesRead(ctx, search)
	require.NoError(t, err)
	assert.Equal(t, employees, employeesRead)

	//employees of a search can be read by id
	employeeRead, err := c.cache.EmployeeRead(ctx, employees[2].ID)
	require.NoError(t, err)
	assert.Equal(t, employees[2], employeeRead)

	//other searches aren't cached
	_, err = c.cache.EmployeesRead(ctx, data.EmployeeSearch{})
	assert.ErrorIs(t, err, cache.ErrEmployeeSearchNotCached)

	//an empty search result is cached too
	hireYear := 1999
	empty := data.EmployeeSearch{HireYear: &hireYear}
	err = c.cache.EmployeesWrite(ctx, empty)
	require.NoError(t, err)
	employeesRead, err = c.cache.EmployeesRead(ctx, empty)
	require.NoError(t, err)
	assert.Empty(t, employeesRead)

	//deleting an employee evicts every search
	err = c.cache.EmployeesDelete(ctx, employees[1].ID)
	require.NoError(t, err)
	_, err = c.cache.EmployeeRead(ctx, employees[1].ID)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)
	_, err = c.cache.EmployeesRead(ctx, search)
	assert.ErrorIs(t, err, cache.ErrEmployeeSearchNotCached)
	_, err = c.cache.EmployeesRead(ctx, empty)
	assert.ErrorIs(t, err, cache.ErrEmployeeSearchNotCached)

	//deleting without ids still evicts every search
	err = c.cache.EmployeesWrite(ctx, search, employees[0])
	require.NoError(t, err)
	err = c.cache.EmployeesDelete(ctx)
	require.NoError(t, err)
	_, err = c.cache.EmployeesRead(ctx, search)
	assert.ErrorIs(t, err, cache.ErrEmployeeSearchNotCached)
}

func (c *cacheTest) TestClear(t *testing.T) {
	ctx := context.TODO()
	employees := newEmployees(1, 2)

	err := c.cache.EmployeesWrite(ctx, data.EmployeeSearch{}, employees...)
	require.NoError(t, err)
	err = c.cache.Clear(ctx)
	require.NoError(t, err)
	_, err = c.cache.EmployeeRead(ctx, employees[0].ID)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)
	_, err = c.cache.EmployeesRead(ctx, data.EmployeeSearch{})
	assert.ErrorIs(t, err, cache.ErrEmployeeSearchNotCached)
}

func testCache(t *testing.T, cacheType string, required bool) {
	c := newCacheTest(cacheType)
	ctx := context.TODO()

	err := c.cache.Configure(envs)
	require.NoError(t, err)
	if err := c.cache.Open(ctx); err != nil {
		if required {
			require.FailNow(t, "unable to open cache", err)
		}
		t.Skipf("%s cache unavailable: %s", cacheType, err)
	}
	defer func() {
		if err := c.cache.Close(ctx); err != nil {
			t.Logf("error while closing cache: %s", err)
		}
	}()
	t.Run("Employee", c.TestEmployee)
	t.Run("Employees", c.TestEmployees)
	t.Run("Clear", c.TestClear)
}

func TestCacheMemory(t *testing.T) {
	testCache(t, "memory", true)
}

func TestCacheRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis cache test in short mode")
	}
	testCache(t, "redis", false)
}

func TestCacheStashMemory(t *testing.T) {
	testCache(t, "stash-memory", false)
}
