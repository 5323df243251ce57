package data

const (
	RouteEmployees            string = "/api/employees"
	RouteEmployeesId          string = RouteEmployees + "/{" + PathId + "}"
	RouteEmployeesIdf         string = RouteEmployees + "/%d"
	RouteEmployeesDepartment  string = RouteEmployees + "/department/{" + PathDepartment + "}"
	RouteEmployeesDepartmentf string = RouteEmployees + "/department/%s"
	RouteEmployeesSearch      string = RouteEmployees + "/search"
	RouteEmployeesSalary      string = RouteEmployees + "/salary"
	RouteEmployeesHiredInYear string = RouteEmployees + "/hired-in-year"
	RouteCache                string = "/cache"
	RouteHealth               string = "/healthz"
	RouteMetrics              string = "/metrics"
)

const (
	PathId         string = "id"
	PathDepartment string = "department"
)

const (
	ParameterLastName  string = "lastName"
	ParameterMinSalary string = "minSalary"
	ParameterYear      string = "year"
)

const HeaderCorrelationId string = "Correlation-Id"

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
