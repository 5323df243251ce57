package swagger

import "github.com/tqt95/app-react-jpa/internal/data"

// swagger:route PUT /api/employees/{id} Employee UpdateEmployee
// Replaces every field of an employee.
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeeResponse
//   400: ErrorResponse
//   403: ErrorResponse
//   404: NotFoundResponse

// swagger:parameters UpdateEmployee
type EmployeeUpdateParams struct {
	// in:path
	Id int64 `json:"id"`

	// in:body
	Employee data.Employee

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
