package swagger

// swagger:route GET /api/employees/{id} Employee ReadEmployee
// Reads an employee using its id.
//
//     Produces:
//     - application/json
//
// responses:
//   200: EmployeeResponse
//   400: ErrorResponse
//   404: NotFoundResponse

// swagger:parameters ReadEmployee
type EmployeeReadParams struct {
	// in:path
	Id int64 `json:"id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
