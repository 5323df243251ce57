package swagger

// swagger:route DELETE /api/employees/{id} Employee DeleteEmployee
// Deletes an employee using its id.
//
// responses:
//   204: NoContentResponse
//   400: ErrorResponse
//   403: ErrorResponse
//   404: NotFoundResponse

// swagger:response NoContentResponse
type NoContentResponse struct{}

// swagger:parameters DeleteEmployee
type EmployeeDeleteParams struct {
	// in:path
	Id int64 `json:"id"`

	// in:header
	CorrelationId string `json:"Correlation-Id"`
}
