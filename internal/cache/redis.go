package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/utilities"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	hashKeyEmployees string = "employees"
	hashKeySearch    string = "employees_search"
)

const (
	defaultRedisPort    = "6379"
	defaultRedisTimeout = 10 * time.Second
)

type redisCache struct {
	redisClient *redis.Client
	config      struct {
		address  string
		port     string
		password string
		database int
		timeout  time.Duration
	}
	utilities.Logger
}

func NewRedis(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &redisCache{Logger: utilities.NewNopLogger()}
	c.config.port = defaultRedisPort
	c.config.timeout = defaultRedisTimeout
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *redisCache) Configure(envs map[string]string) error {
	if redisAddress, ok := envs["REDIS_ADDRESS"]; ok {
		c.config.address = redisAddress
	}
	if redisPort := envs["REDIS_PORT"]; redisPort != "" {
		c.config.port = redisPort
	}
	if redisPassword, ok := envs["REDIS_PASSWORD"]; ok {
		c.config.password = redisPassword
	}
	if redisDatabase := envs["REDIS_DATABASE"]; redisDatabase != "" {
		i, err := strconv.Atoi(redisDatabase)
		if err != nil {
			return errors.Wrap(err, "invalid REDIS_DATABASE")
		}
		c.config.database = i
	}
	if redisTimeout := envs["REDIS_TIMEOUT"]; redisTimeout != "" {
		i, err := strconv.ParseInt(redisTimeout, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid REDIS_TIMEOUT")
		}
		c.config.timeout = time.Duration(i) * time.Second
	}
	return nil
}

func (c *redisCache) Open(ctx context.Context) error {
	address := net.JoinHostPort(c.config.address, c.config.port)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: c.config.password,
		DB:       c.config.database,
	})
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return errors.Wrapf(err, "error while connecting to redis (%s)", address)
	}
	c.redisClient = redisClient
	c.Info(ctx, "connected to redis: %s", address)
	return nil
}

func (c *redisCache) Close(ctx context.Context) error {
	if c.redisClient == nil {
		return nil
	}
	if err := c.redisClient.Close(); err != nil {
		c.Error(ctx, "error while shutting down redis client: %s", err)
	}
	c.redisClient = nil
	return nil
}

func (c *redisCache) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	if err := c.redisClient.Del(ctx, hashKeyEmployees, hashKeySearch).Err(); err != nil {
		return errors.Wrap(err, "error while clearing redis")
	}
	return nil
}

func (c *redisCache) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	value, err := c.redisClient.HGet(ctx, hashKeyEmployees, fmt.Sprint(id)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrEmployeeNotCached
	case err != nil:
		return nil, errors.Wrapf(err, "error while reading employee (%d)", id)
	}
	employee := &data.Employee{}
	if err := employee.UnmarshalBinary([]byte(value)); err != nil {
		return nil, err
	}
	return employee, nil
}

func (c *redisCache) EmployeeWrite(ctx context.Context, employee *data.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	bytes, err := employee.MarshalBinary()
	if err != nil {
		return err
	}
	if err := c.redisClient.HSet(ctx, hashKeyEmployees,
		fmt.Sprint(employee.ID), string(bytes)).Err(); err != nil {
		return errors.Wrapf(err, "error while writing employee (%d)", employee.ID)
	}
	return nil
}

func (c *redisCache) EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	searchKey, err := search.ToKey()
	if err != nil {
		return nil, errors.Wrap(err, "error while creating search key")
	}
	value, err := c.redisClient.HGet(ctx, hashKeySearch, searchKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrEmployeeSearchNotCached
	case err != nil:
		return nil, errors.Wrap(err, "error while reading employee search")
	}
	ids := &data.EmployeeIds{}
	if err := ids.UnmarshalBinary([]byte(value)); err != nil {
		return nil, err
	}
	employees := make([]*data.Employee, 0, len(ids.Ids))
	if len(ids.Ids) == 0 {
		return employees, nil
	}
	fields := make([]string, 0, len(ids.Ids))
	for _, id := range ids.Ids {
		fields = append(fields, fmt.Sprint(id))
	}
	values, err := c.redisClient.HMGet(ctx, hashKeyEmployees, fields...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "error while reading employee search")
	}
	for _, value := range values {
		//KIM: a nil value means the employee was evicted after the search
		// was cached, so the search can't be trusted
		s, ok := value.(string)
		if !ok {
			return nil, ErrEmployeeSearchNotCached
		}
		employee := &data.Employee{}
		if err := employee.UnmarshalBinary([]byte(s)); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, nil
}

func (c *redisCache) EmployeesWrite(ctx context.Context, search data.EmployeeSearch, employees ...*data.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	searchKey, err := search.ToKey()
	if err != nil {
		return errors.Wrap(err, "error while creating search key")
	}
	ids, err := employeeIds(employees).MarshalBinary()
	if err != nil {
		return err
	}
	values := make([]any, 0, 2*len(employees))
	for _, employee := range employees {
		bytes, err := employee.MarshalBinary()
		if err != nil {
			return err
		}
		values = append(values, fmt.Sprint(employee.ID), string(bytes))
	}
	if _, err := c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(values) > 0 {
			pipe.HSet(ctx, hashKeyEmployees, values...)
		}
		pipe.HSet(ctx, hashKeySearch, searchKey, string(ids))
		return nil
	}); err != nil {
		return errors.Wrap(err, "error while writing employee search")
	}
	return nil
}

func (c *redisCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	fields := make([]string, 0, len(ids))
	for _, id := range ids {
		fields = append(fields, fmt.Sprint(id))
	}
	if _, err := c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(fields) > 0 {
			pipe.HDel(ctx, hashKeyEmployees, fields...)
		}
		pipe.Del(ctx, hashKeySearch)
		return nil
	}); err != nil {
		return errors.Wrap(err, "error while deleting employees")
	}
	return nil
}
