package sql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/metrics"
	"github.com/tqt95/app-react-jpa/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

const (
	databaseIsolation     = sql.LevelRepeatableRead
	tableEmployees        = "EMPLOYEES"
	defaultPort           = "3306"
	defaultQueryTimeout   = 10 * time.Second
	defaultConnectTimeout = 30 * time.Second
)

// Sql is the data access of employees; every method joins the
// transaction carried by ctx when there is one.
type Sql interface {
	EmployeeRead(ctx context.Context, id int64) (*data.Employee, error)
	EmployeesSearch(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error)
	EmployeeSave(ctx context.Context, employee data.Employee) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) error
	Transaction(ctx context.Context, fx func(ctx context.Context) error) error
	internal.Pinger
}

type mySql struct {
	sync.RWMutex
	config struct {
		Hostname       string        `json:"hostname"`
		Port           string        `json:"port"`
		Username       string        `json:"username"`
		Password       string        `json:"password"`
		Database       string        `json:"database"`
		ConnectTimeout time.Duration `json:"connect_timeout"`
		QueryTimeout   time.Duration `json:"query_timeout"`
		MaxOpenConns   int           `json:"max_open_conns"`
		Migrate        bool          `json:"migrate"`
	}
	*sql.DB
	utilities.Logger
	metrics *metrics.Metrics
	opened  bool
}

func NewMySql(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Migrator
	Sql
} {
	m := &mySql{Logger: utilities.NewNopLogger()}
	m.config.Port = defaultPort
	m.config.QueryTimeout = defaultQueryTimeout
	m.config.ConnectTimeout = defaultConnectTimeout
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			m.Logger = v
		case *metrics.Metrics:
			m.metrics = v
		case *sql.DB:
			m.DB = v
		}
	}
	return m
}

func (s *mySql) Configure(envs map[string]string) error {
	if databaseHost := envs["DATABASE_HOST"]; databaseHost != "" {
		s.config.Hostname = databaseHost
	}
	if databasePort := envs["DATABASE_PORT"]; databasePort != "" {
		s.config.Port = databasePort
	}
	if database := envs["DATABASE_NAME"]; database != "" {
		s.config.Database = database
	}
	if username := envs["DATABASE_USER"]; username != "" {
		s.config.Username = username
	}
	if password := envs["DATABASE_PASSWORD"]; password != "" {
		s.config.Password = password
	}
	if queryTimeout := envs["DATABASE_QUERY_TIMEOUT"]; queryTimeout != "" {
		i, err := strconv.ParseInt(queryTimeout, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid DATABASE_QUERY_TIMEOUT")
		}
		s.config.QueryTimeout = time.Duration(i) * time.Second
	}
	if connectTimeout := envs["DATABASE_CONNECT_TIMEOUT"]; connectTimeout != "" {
		i, err := strconv.ParseInt(connectTimeout, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid DATABASE_CONNECT_TIMEOUT")
		}
		s.config.ConnectTimeout = time.Duration(i) * time.Second
	}
	if maxOpenConns := envs["DATABASE_MAX_OPEN_CONNS"]; maxOpenConns != "" {
		i, err := strconv.Atoi(maxOpenConns)
		if err != nil {
			return errors.Wrap(err, "invalid DATABASE_MAX_OPEN_CONNS")
		}
		s.config.MaxOpenConns = i
	}
	if migrate := envs["DATABASE_MIGRATE"]; migrate != "" {
		s.config.Migrate, _ = strconv.ParseBool(migrate)
	}
	return nil
}

func (s *mySql) dataSourceName(multiStatements bool) string {
	config := mysql.NewConfig()
	config.User = s.config.Username
	config.Passwd = s.config.Password
	config.Net = "tcp"
	config.Addr = net.JoinHostPort(s.config.Hostname, s.config.Port)
	config.DBName = s.config.Database
	config.ParseTime = true
	config.MultiStatements = multiStatements
	return config.FormatDSN()
}

func (s *mySql) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.opened {
		return nil
	}
	if s.DB == nil {
		db, err := sql.Open("mysql", s.dataSourceName(false))
		if err != nil {
			return errors.Wrap(err, "error while opening sql")
		}
		if s.config.MaxOpenConns > 0 {
			db.SetMaxOpenConns(s.config.MaxOpenConns)
			db.SetMaxIdleConns(s.config.MaxOpenConns)
		}
		s.DB = db
	}
	//KIM: the database may still be starting (e.g. alongside us in compose),
	// so the first ping is retried until the connect timeout elapses
	if _, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := s.DB.PingContext(ctx); err != nil {
			s.Debug(ctx, "sql not ready: %s", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.config.ConnectTimeout),
	); err != nil {
		return errors.Wrap(err, "error while connecting to sql")
	}
	if s.config.Migrate {
		if err := s.MigrateUp(ctx); err != nil {
			return err
		}
	}
	s.opened = true
	s.Info(ctx, "connected to sql: %s", net.JoinHostPort(s.config.Hostname, s.config.Port))
	return nil
}

func (s *mySql) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if !s.opened {
		return nil
	}
	if err := s.DB.Close(); err != nil {
		s.Error(ctx, "error while closing sql: %s", err)
	}
	s.DB, s.opened = nil, false
	return nil
}

func (s *mySql) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	return s.DB.PingContext(ctx)
}

func (s *mySql) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	defer s.metrics.ObserveQuery("employee_read", time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf("SELECT %s FROM %s WHERE ID = ?", employeeColumns, tableEmployees)
	//KIM: within a transaction the row is locked for the write that follows
	if _, ok := txFromCtx(ctx); ok {
		query += " FOR UPDATE"
	}
	row := s.querier(ctx).QueryRowContext(ctx, query, id)
	employee, err := employeeScan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, data.ErrEmployeeNotFound
		}
		return nil, errors.Wrapf(err, "error while reading employee (%d)", id)
	}
	return employee, nil
}

func (s *mySql) EmployeesSearch(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	defer s.metrics.ObserveQuery("employees_search", time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	criteria, args := employeeCriteria(search)
	rows, err := s.querier(ctx).QueryContext(ctx, queryEmployees(criteria), args...)
	if err != nil {
		return nil, errors.Wrap(err, "error while searching employees")
	}
	defer rows.Close()
	employees := make([]*data.Employee, 0)
	for rows.Next() {
		employee, err := employeeScan(rows.Scan)
		if err != nil {
			return nil, errors.Wrap(err, "error while scanning employee")
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error while searching employees")
	}
	return employees, nil
}

// EmployeeSave inserts the employee when it has no id and replaces every
// mutable column otherwise; the persisted row is returned.
func (s *mySql) EmployeeSave(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	if employee.ID == 0 {
		return s.employeeCreate(ctx, employee)
	}
	return s.employeeUpdate(ctx, employee)
}

func (s *mySql) employeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	defer s.metrics.ObserveQuery("employee_create", time.Now())

	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (FIRST_NAME, LAST_NAME, EMAIL,
		PHONE_NUMBER, HIRE_DATE, SALARY, DEPARTMENT) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tableEmployees)
	result, err := s.querier(ctx).ExecContext(queryCtx, query, employeeArgs(employee)...)
	if err != nil {
		return nil, errors.Wrap(err, "error while creating employee")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "error while creating employee")
	}
	return s.EmployeeRead(ctx, id)
}

func (s *mySql) employeeUpdate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	defer s.metrics.ObserveQuery("employee_update", time.Now())

	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf(`UPDATE %s SET FIRST_NAME = ?, LAST_NAME = ?, EMAIL = ?,
		PHONE_NUMBER = ?, HIRE_DATE = ?, SALARY = ?, DEPARTMENT = ? WHERE ID = ?`,
		tableEmployees)
	args := append(employeeArgs(employee), employee.ID)
	if _, err := s.querier(ctx).ExecContext(queryCtx, query, args...); err != nil {
		return nil, errors.Wrapf(err, "error while updating employee (%d)", employee.ID)
	}
	return s.EmployeeRead(ctx, employee.ID)
}

func (s *mySql) EmployeeDelete(ctx context.Context, id int64) error {
	defer s.metrics.ObserveQuery("employee_delete", time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()
	query := fmt.Sprintf("DELETE FROM %s WHERE ID = ?", tableEmployees)
	result, err := s.querier(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return errors.Wrapf(err, "error while deleting employee (%d)", id)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "error while deleting employee (%d)", id)
	}
	if n == 0 {
		return data.ErrEmployeeNotFound
	}
	return nil
}
