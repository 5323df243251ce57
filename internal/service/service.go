package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/cache"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/logic"
	"github.com/tqt95/app-react-jpa/internal/metrics"
	"github.com/tqt95/app-react-jpa/internal/utilities"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const (
	defaultPort            = "8080"
	defaultShutdownTimeout = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
)

var (
	defaultAllowedOrigins = []string{"http://localhost:5173"}
	defaultAllowedMethods = []string{http.MethodGet, http.MethodPost,
		http.MethodPut, http.MethodDelete, http.MethodOptions}
	defaultAllowedHeaders = []string{"*"}
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

type service struct {
	sync.RWMutex
	sync.WaitGroup
	config struct {
		address          string
		port             string
		shutdownTimeout  time.Duration
		readTimeout      time.Duration
		writeTimeout     time.Duration
		allowedOrigins   []string
		allowedMethods   []string
		allowedHeaders   []string
		allowCredentials bool
		corsDisabled     bool
		corsDebug        bool
	}
	*mux.Router
	*http.Server
	listener net.Listener
	logic    logic.Logic
	cache    internal.Clearer
	pinger   internal.Pinger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	utilities.Logger
}

func NewService(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Address() string
} {
	router := mux.NewRouter().UseEncodedPath()
	s := &service{
		Router:   router,
		Server:   &http.Server{Handler: router},
		gatherer: prometheus.DefaultGatherer,
		Logger:   utilities.NewNopLogger(),
	}
	s.config.port = defaultPort
	s.config.shutdownTimeout = defaultShutdownTimeout
	s.config.readTimeout = defaultReadTimeout
	s.config.writeTimeout = defaultWriteTimeout
	s.config.allowedOrigins = defaultAllowedOrigins
	s.config.allowedMethods = defaultAllowedMethods
	s.config.allowedHeaders = defaultAllowedHeaders
	//KIM: order matters, most components embed a logger
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case logic.Logic:
			s.logic = p
		case interface {
			cache.Cache
			internal.Clearer
		}:
			s.cache = p
		case internal.Pinger:
			s.pinger = p
		case *metrics.Metrics:
			s.metrics = p
		case prometheus.Gatherer:
			s.gatherer = p
		case utilities.Logger:
			s.Logger = p
		}
	}
	return s
}

func (s *service) launchServer() {
	started := make(chan struct{})
	s.Add(1)
	go func() {
		defer s.Done()

		close(started)
		if err := s.Server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Error(context.Background(), "error while serving: %s", err)
		}
	}()
	<-started
}

func (s *service) handleResponse(ctx context.Context, writer http.ResponseWriter, err error, status int, items ...any) {
	var bytes []byte

	if err != nil {
		var e *data.ErrorResponse

		status, e = errorResponse(err)
		if status >= http.StatusInternalServerError {
			s.Error(ctx, "error while handling request: %s", err)
		} else {
			s.Debug(ctx, "request failed (%d): %s", status, err)
		}
		if e == nil {
			writer.WriteHeader(status)
			return
		}
		items = []any{e}
	}
	if len(items) == 0 {
		writer.WriteHeader(status)
		return
	}
	bytes, err = json.Marshal(items[0])
	if err != nil {
		s.Error(ctx, "error while marshalling response: %s", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(status)
	if _, err := writer.Write(bytes); err != nil {
		s.Error(ctx, "error while writing response: %s", err)
	}
}

func (s *service) correlationId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		correlationId := request.Header.Get(data.HeaderCorrelationId)
		if correlationId == "" {
			correlationId = internal.GenerateId()
		}
		writer.Header().Set(data.HeaderCorrelationId, correlationId)
		ctx := internal.CtxWithCorrelationId(request.Context(), correlationId)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func (s *service) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(writer, request)
			return
		}
		start := time.Now()
		w := &statusWriter{ResponseWriter: writer, status: http.StatusOK}
		next.ServeHTTP(w, request)
		route := "unknown"
		if currentRoute := mux.CurrentRoute(request); currentRoute != nil {
			if template, err := currentRoute.GetPathTemplate(); err == nil {
				route = template
			}
		}
		s.metrics.RequestsTotal.WithLabelValues(route, request.Method,
			strconv.Itoa(w.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route, request.Method).
			Observe(time.Since(start).Seconds())
	})
}

func (s *service) endpointDefault(writer http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(writer,
		"employees\n"+
			"Version: \"%s\"\n"+
			"Git Commit: \"%s\"\n"+
			"Git Branch: \"%s\"\n",
		Version, GitCommit, GitBranch)
}

func (s *service) endpointEmployeesRead(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	employees, err := s.logic.EmployeesRead(ctx)
	s.handleResponse(ctx, writer, err, http.StatusOK, employees)
	s.Trace(ctx, "executed employees_read")
}

func (s *service) endpointEmployeeCreate(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	employee, err := employeeFromBody(request)
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusBadRequest)
		return
	}
	created, err := s.logic.EmployeeCreate(ctx, employee)
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusInternalServerError)
		return
	}
	s.handleResponse(ctx, writer, nil, http.StatusCreated, created)
	s.Trace(ctx, "executed employee_create: %d", created.ID)
}

func (s *service) endpointEmployeeRead(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusBadRequest)
		return
	}
	employee, err := s.logic.EmployeeRead(ctx, id)
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusInternalServerError)
		return
	}
	s.handleResponse(ctx, writer, nil, http.StatusOK, employee)
	s.Trace(ctx, "executed employee_read: %d", id)
}

func (s *service) endpointEmployeeUpdate(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusBadRequest)
		return
	}
	employee, err := employeeFromBody(request)
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusBadRequest)
		return
	}
	updated, err := s.logic.EmployeeUpdate(ctx, id, employee)
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusInternalServerError)
		return
	}
	s.handleResponse(ctx, writer, nil, http.StatusOK, updated)
	s.Trace(ctx, "executed employee_update: %d", id)
}

func (s *service) endpointEmployeeDelete(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusBadRequest)
		return
	}
	if err := s.logic.EmployeeDelete(ctx, id); err != nil {
		s.handleResponse(ctx, writer, err, http.StatusInternalServerError)
		return
	}
	s.handleResponse(ctx, writer, nil, http.StatusNoContent)
	s.Trace(ctx, "executed employee_delete: %d", id)
}

func (s *service) endpointEmployeesByDepartment(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	department, err := departmentFromPath(mux.Vars(request))
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusBadRequest)
		return
	}
	employees, err := s.logic.EmployeesByDepartment(ctx, department)
	s.handleResponse(ctx, writer, err, http.StatusOK, employees)
	s.Trace(ctx, "executed employees_by_department: %s", department)
}

func (s *service) endpointEmployeesByLastName(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	lastName, err := parameter(request, data.ParameterLastName)
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusBadRequest)
		return
	}
	employees, err := s.logic.EmployeesByLastName(ctx, lastName)
	s.handleResponse(ctx, writer, err, http.StatusOK, employees)
	s.Trace(ctx, "executed employees_by_last_name: %s", lastName)
}

func (s *service) endpointEmployeesByMinSalary(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	minSalary, err := decimalParameter(request, data.ParameterMinSalary)
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusBadRequest)
		return
	}
	employees, err := s.logic.EmployeesByMinSalary(ctx, minSalary)
	s.handleResponse(ctx, writer, err, http.StatusOK, employees)
	s.Trace(ctx, "executed employees_by_min_salary: %s", minSalary)
}

func (s *service) endpointEmployeesHiredInYear(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	year, err := intParameter(request, data.ParameterYear)
	if err != nil {
		s.handleResponse(ctx, writer, err, http.StatusBadRequest)
		return
	}
	employees, err := s.logic.EmployeesHiredInYear(ctx, year)
	s.handleResponse(ctx, writer, err, http.StatusOK, employees)
	s.Trace(ctx, "executed employees_hired_in_year: %d", year)
}

func (s *service) endpointCacheClear(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.handleResponse(ctx, writer, err, http.StatusInternalServerError)
			return
		}
		s.Trace(ctx, "executed cache_clear")
	}
	s.handleResponse(ctx, writer, nil, http.StatusNoContent)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (s *service) buildRoutes() {
	s.Router.Use(s.correlationId, s.instrument)
	s.Router.HandleFunc("/", s.endpointDefault)
	s.Router.HandleFunc(data.RouteHealth, s.endpointHealth)
	s.Router.Handle(data.RouteMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.Router.HandleFunc(data.RouteEmployees, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			methodNotAllowed(w, r)
		case http.MethodGet:
			s.endpointEmployeesRead(w, r)
		case http.MethodPost:
			s.endpointEmployeeCreate(w, r)
		}
	})
	//KIM: the fixed paths must be registered before the id path, since
	// the id path would match them too
	s.Router.HandleFunc(data.RouteEmployeesSearch, s.endpointEmployeesByLastName).
		Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesSalary, s.endpointEmployeesByMinSalary).
		Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesHiredInYear, s.endpointEmployeesHiredInYear).
		Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesDepartment, s.endpointEmployeesByDepartment).
		Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesId, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			methodNotAllowed(w, r)
		case http.MethodGet:
			s.endpointEmployeeRead(w, r)
		case http.MethodPut:
			s.endpointEmployeeUpdate(w, r)
		case http.MethodDelete:
			s.endpointEmployeeDelete(w, r)
		}
	})
	s.Router.HandleFunc(data.RouteCache, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		default:
			methodNotAllowed(w, r)
		case http.MethodDelete:
			s.endpointCacheClear(w, r)
		}
	})
}

func splitList(s string) []string {
	var items []string

	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (s *service) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if address, ok := envs["SERVICE_ADDRESS"]; ok {
		s.config.address = address
	}
	if port := envs["SERVICE_PORT"]; port != "" {
		s.config.port = port
	}
	for key, timeout := range map[string]*time.Duration{
		"SERVICE_SHUTDOWN_TIMEOUT": &s.config.shutdownTimeout,
		"SERVICE_READ_TIMEOUT":     &s.config.readTimeout,
		"SERVICE_WRITE_TIMEOUT":    &s.config.writeTimeout,
	} {
		value := envs[key]
		if value == "" {
			continue
		}
		i, err := strconv.Atoi(value)
		if err != nil || i <= 0 {
			return errors.Errorf("invalid %s: %q", key, value)
		}
		*timeout = time.Duration(i) * time.Second
	}
	if allowCredentialsString, ok := envs["SERVICE_CORS_ALLOW_CREDENTIALS"]; ok {
		if allowCredentials, err := strconv.ParseBool(allowCredentialsString); err == nil {
			s.config.allowCredentials = allowCredentials
		}
	}
	if allowedOrigins := splitList(envs["SERVICE_CORS_ALLOWED_ORIGINS"]); len(allowedOrigins) > 0 {
		s.config.allowedOrigins = allowedOrigins
	}
	if allowedMethods := splitList(envs["SERVICE_CORS_ALLOWED_METHODS"]); len(allowedMethods) > 0 {
		s.config.allowedMethods = allowedMethods
	}
	if allowedHeaders := splitList(envs["SERVICE_CORS_ALLOWED_HEADERS"]); len(allowedHeaders) > 0 {
		s.config.allowedHeaders = allowedHeaders
	}
	if corsDisabledString, ok := envs["SERVICE_CORS_DISABLED"]; ok {
		if corsDisabled, err := strconv.ParseBool(corsDisabledString); err == nil {
			s.config.corsDisabled = corsDisabled
		}
	}
	if corsDebug, ok := envs["SERVICE_CORS_DEBUG"]; ok {
		if corsDebug, err := strconv.ParseBool(corsDebug); err == nil {
			s.config.corsDebug = corsDebug
		}
	}
	return nil
}

func (s *service) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.logic == nil {
		return errors.New("logic not provided")
	}
	s.buildRoutes()
	s.Server.Handler = s.Router
	if !s.config.corsDisabled {
		s.Server.Handler = cors.New(cors.Options{
			AllowedOrigins:   s.config.allowedOrigins,
			AllowCredentials: s.config.allowCredentials,
			AllowedMethods:   s.config.allowedMethods,
			AllowedHeaders:   s.config.allowedHeaders,
			ExposedHeaders:   []string{data.HeaderCorrelationId},
			Debug:            s.config.corsDebug,
		}).Handler(s.Router)
	}
	s.Server.ReadTimeout = s.config.readTimeout
	s.Server.WriteTimeout = s.config.writeTimeout
	address := net.JoinHostPort(s.config.address, s.config.port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "error while listening on %s", address)
	}
	s.listener = listener
	s.launchServer()
	s.Info(ctx, "started server: %s", listener.Addr())
	return nil
}

// Address returns the address the server listens on, which tells the port
// picked when configured with port 0.
func (s *service) Address() string {
	s.RLock()
	defer s.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *service) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.listener == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()
	if err := s.Server.Shutdown(ctx); err != nil {
		s.Error(ctx, "error while shutting down the server: %s", err)
	}
	s.Wait()
	s.listener = nil
	return nil
}
