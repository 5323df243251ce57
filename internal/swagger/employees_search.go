package swagger

import "github.com/tqt95/app-react-jpa/internal/data"

// swagger:route GET /api/employees Employee ReadEmployees
// Lists every employee.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesResponse

// swagger:route GET /api/employees/department/{department} Employee ReadEmployeesByDepartment
// Lists the employees of a department (exact match).
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesResponse

// swagger:route GET /api/employees/search Employee SearchEmployeesByLastName
// Lists the employees whose last name contains lastName, ignoring case.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesResponse
//   400: ErrorResponse

// swagger:route GET /api/employees/salary Employee SearchEmployeesByMinSalary
// Lists the employees earning at least minSalary.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesResponse
//   400: ErrorResponse

// swagger:route GET /api/employees/hired-in-year Employee SearchEmployeesHiredInYear
// Lists the employees hired in year.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeesResponse
//   400: ErrorResponse

// swagger:response EmployeesResponse
type EmployeesResponse struct {
	// in:body
	Employees []data.Employee
}

// swagger:parameters ReadEmployeesByDepartment
type EmployeesByDepartmentParams struct {
	// in:path
	Department string `json:"department"`
}

// swagger:parameters SearchEmployeesByLastName
type EmployeesByLastNameParams struct {
	// in:query
	// required: true
	LastName string `json:"lastName"`
}

// swagger:parameters SearchEmployeesByMinSalary
type EmployeesByMinSalaryParams struct {
	// in:query
	// required: true
	MinSalary string `json:"minSalary"`
}

// swagger:parameters SearchEmployeesHiredInYear
type EmployeesHiredInYearParams struct {
	// in:query
	// required: true
	Year int `json:"year"`
}
