package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/cache"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/utilities"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultProtocol = "http"
	defaultPort     = "8080"
	defaultTimeout  = 10 * time.Second
)

// Client has the same operations as the business layer, executed against
// the service; CacheClear and Health reach the ancillary routes.
type Client interface {
	EmployeesRead(ctx context.Context) ([]*data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeesByDepartment(ctx context.Context, department string) ([]*data.Employee, error)
	EmployeesByLastName(ctx context.Context, lastName string) ([]*data.Employee, error)
	EmployeesByMinSalary(ctx context.Context, minSalary decimal.Decimal) ([]*data.Employee, error)
	EmployeesHiredInYear(ctx context.Context, year int) ([]*data.Employee, error)
	EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) error
	CacheClear(ctx context.Context) error
	Health(ctx context.Context) (map[string]string, error)
}

type client struct {
	sync.RWMutex
	config struct {
		protocol      string
		address       string
		port          string
		timeout       time.Duration
		sslCaFile     string
		sslCrtFile    string
		sslKeyFile    string
		cacheDisabled bool
	}
	address string
	cache   cache.Cache
	utilities.Logger
	*http.Client
}

// NewClient creates a client, an optional cache.Cache given as parameter
// serves repeated reads by id.
func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	c := &client{
		Client: &http.Client{},
		Logger: utilities.NewNopLogger(),
	}
	c.config.protocol = defaultProtocol
	c.config.port = defaultPort
	c.config.timeout = defaultTimeout
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case cache.Cache:
			c.cache = p
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *client) cacheEnabled() bool {
	return c.cache != nil && !c.config.cacheDisabled
}

func (c *client) doRequest(ctx context.Context, method, uri string, body []byte) ([]byte, error) {
	var reader io.Reader

	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		request.Header.Set(data.HeaderCorrelationId, correlationId)
	}
	response, err := c.Do(request)
	if err != nil {
		return nil, errors.Wrapf(err, "error while executing %s %s", method, uri)
	}
	bytes, err := io.ReadAll(response.Body)
	defer response.Body.Close()
	if err != nil {
		return nil, err
	}
	switch response.StatusCode {
	default:
		return nil, responseError(response.StatusCode, bytes)
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return bytes, nil
	}
}

func (c *client) employee(ctx context.Context, method, uri string, body []byte) (*data.Employee, error) {
	bytes, err := c.doRequest(ctx, method, uri, body)
	if err != nil {
		return nil, err
	}
	employee := &data.Employee{}
	if err := json.Unmarshal(bytes, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (c *client) employees(ctx context.Context, uri string, query url.Values) ([]*data.Employee, error) {
	if len(query) > 0 {
		uri = uri + "?" + query.Encode()
	}
	bytes, err := c.doRequest(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	employees := []*data.Employee{}
	if err := json.Unmarshal(bytes, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (c *client) evict(ctx context.Context, ids ...int64) {
	if !c.cacheEnabled() {
		return
	}
	if err := c.cache.EmployeesDelete(ctx, ids...); err != nil {
		c.Error(ctx, "error while deleting employees %v from cache: %s", ids, err)
	}
}

func (c *client) Configure(envs map[string]string) error {
	c.Lock()
	defer c.Unlock()

	if address, ok := envs["CLIENT_ADDRESS"]; ok {
		c.config.address = address
	}
	if port := envs["CLIENT_PORT"]; port != "" {
		c.config.port = port
	}
	if protocol := envs["CLIENT_PROTOCOL"]; protocol != "" {
		c.config.protocol = protocol
	}
	if timeout := envs["CLIENT_TIMEOUT"]; timeout != "" {
		i, err := strconv.ParseInt(timeout, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid CLIENT_TIMEOUT")
		}
		c.config.timeout = time.Duration(i) * time.Second
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	if cacheDisabled, ok := envs["CLIENT_CACHE_DISABLED"]; ok {
		c.config.cacheDisabled, _ = strconv.ParseBool(cacheDisabled)
	}
	return nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	switch c.config.protocol {
	default:
		return errors.Errorf("unsupported protocol: %s", c.config.protocol)
	case "http", "https":
		c.address = fmt.Sprintf("%s://%s", c.config.protocol,
			net.JoinHostPort(c.config.address, c.config.port))
	}
	if c.cacheEnabled() {
		c.Info(ctx, "client: cache enabled")
	}
	c.Client.Timeout = c.config.timeout
	transport, err := getTransport(c.config.sslCaFile, c.config.sslCrtFile,
		c.config.sslKeyFile)
	if err != nil {
		return err
	}
	c.Client.Transport = transport
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.Client.CloseIdleConnections()
	return nil
}

func (c *client) EmployeesRead(ctx context.Context) ([]*data.Employee, error) {
	return c.employees(ctx, c.address+data.RouteEmployees, nil)
}

func (c *client) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	if c.cacheEnabled() {
		employee, err := c.cache.EmployeeRead(ctx, id)
		if err == nil {
			return employee, nil
		}
		c.Trace(ctx, "employee (%d) not read from cache: %s", id, err)
	}
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	employee, err := c.employee(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	if c.cacheEnabled() {
		if err := c.cache.EmployeeWrite(ctx, employee); err != nil {
			c.Error(ctx, "error while writing employee (%d) to cache: %s", id, err)
		}
	}
	return employee, nil
}

func (c *client) EmployeesByDepartment(ctx context.Context, department string) ([]*data.Employee, error) {
	uri := fmt.Sprintf(c.address+data.RouteEmployeesDepartmentf, url.PathEscape(department))
	return c.employees(ctx, uri, nil)
}

func (c *client) EmployeesByLastName(ctx context.Context, lastName string) ([]*data.Employee, error) {
	return c.employees(ctx, c.address+data.RouteEmployeesSearch,
		url.Values{data.ParameterLastName: {lastName}})
}

func (c *client) EmployeesByMinSalary(ctx context.Context, minSalary decimal.Decimal) ([]*data.Employee, error) {
	return c.employees(ctx, c.address+data.RouteEmployeesSalary,
		url.Values{data.ParameterMinSalary: {minSalary.String()}})
}

func (c *client) EmployeesHiredInYear(ctx context.Context, year int) ([]*data.Employee, error) {
	return c.employees(ctx, c.address+data.RouteEmployeesHiredInYear,
		url.Values{data.ParameterYear: {strconv.Itoa(year)}})
}

func (c *client) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	bytes, err := json.Marshal(&employee)
	if err != nil {
		return nil, err
	}
	return c.employee(ctx, http.MethodPost, c.address+data.RouteEmployees, bytes)
}

func (c *client) EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error) {
	bytes, err := json.Marshal(&employee)
	if err != nil {
		return nil, err
	}
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	updated, err := c.employee(ctx, http.MethodPut, uri, bytes)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, id)
	return updated, nil
}

func (c *client) EmployeeDelete(ctx context.Context, id int64) error {
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	if _, err := c.doRequest(ctx, http.MethodDelete, uri, nil); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *client) CacheClear(ctx context.Context) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, c.address+data.RouteCache, nil); err != nil {
		return err
	}
	return nil
}

// Health returns the status of each dependency of the service; a service
// that reports itself unavailable returns an error with the status.
func (c *client) Health(ctx context.Context) (map[string]string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.address+data.RouteHealth, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "error while checking health")
	}
	defer response.Body.Close()
	status := make(map[string]string)
	if err := json.NewDecoder(response.Body).Decode(&status); err != nil {
		return nil, errors.Wrap(err, "error while decoding health")
	}
	if response.StatusCode != http.StatusOK {
		return status, errors.Errorf("status code: %d; %v", response.StatusCode, status)
	}
	return status, nil
}
