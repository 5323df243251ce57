package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tqt95/app-react-jpa/internal/data"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

func idFromPath(pathVariables map[string]string) (int64, error) {
	id, err := strconv.ParseInt(pathVariables[data.PathId], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(data.ErrBadRequest, "invalid id %q", pathVariables[data.PathId])
	}
	return id, nil
}

// departmentFromPath unescapes the department, the router matches the
// encoded path so a department may contain a slash.
func departmentFromPath(pathVariables map[string]string) (string, error) {
	department, err := url.PathUnescape(pathVariables[data.PathDepartment])
	if err != nil {
		return "", errors.Wrapf(data.ErrBadRequest, "invalid department %q", pathVariables[data.PathDepartment])
	}
	return department, nil
}

// parameter returns the query parameter name, it's a bad request when the
// parameter is absent (an empty value is still a value).
func parameter(request *http.Request, name string) (string, error) {
	query := request.URL.Query()
	if !query.Has(name) {
		return "", errors.Wrapf(data.ErrBadRequest, "missing parameter %q", name)
	}
	return query.Get(name), nil
}

func decimalParameter(request *http.Request, name string) (decimal.Decimal, error) {
	value, err := parameter(request, name)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(data.ErrBadRequest, "invalid parameter %q: %s", name, value)
	}
	return d, nil
}

func intParameter(request *http.Request, name string) (int, error) {
	value, err := parameter(request, name)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(data.ErrBadRequest, "invalid parameter %q: %s", name, value)
	}
	return i, nil
}

func employeeFromBody(request *http.Request) (data.Employee, error) {
	var employee data.Employee

	bytes, err := io.ReadAll(request.Body)
	defer request.Body.Close()
	if err != nil {
		return data.Employee{}, errors.Wrap(err, "error while reading body")
	}
	if err := json.Unmarshal(bytes, &employee); err != nil {
		return data.Employee{}, errors.Wrapf(data.ErrBadRequest, "malformed employee: %s", err)
	}
	return employee, nil
}

// errorResponse maps err to a status code and body; a not found has no
// body.
func errorResponse(err error) (int, *data.ErrorResponse) {
	var validationErr *data.ValidationError

	switch {
	default:
		return http.StatusInternalServerError, &data.ErrorResponse{Error: err.Error()}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, &data.ErrorResponse{
			Error:  "validation failed",
			Fields: validationErr.Fields,
		}
	case errors.Is(err, data.ErrBadRequest):
		return http.StatusBadRequest, &data.ErrorResponse{Error: err.Error()}
	case errors.Is(err, data.ErrEmployeeNotFound):
		return http.StatusNotFound, nil
	case errors.Is(err, data.ErrMutateDisabled):
		return http.StatusForbidden, &data.ErrorResponse{Error: err.Error()}
	}
}

// statusWriter remembers the status code written, for metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
