package swagger

import "github.com/tqt95/app-react-jpa/internal/data"

// swagger:route POST /api/employees Employee CreateEmployee
// Creates an employee, the id of the payload is ignored.
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// responses:
//   201: EmployeeResponse
//   400: ErrorResponse
//   403: ErrorResponse
//   500: ErrorResponse

// swagger:response EmployeeResponse
type EmployeeResponse struct {
	// in:body
	Employee data.Employee
}

// swagger:parameters CreateEmployee
type EmployeeCreateParams struct {
	// in:body
	Employee data.Employee

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
