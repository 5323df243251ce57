package swagger

// swagger:route DELETE /cache Cache DeleteCache
// Deletes all items in the cache.
//
// responses:
//   204: NoContentResponse
//   500: ErrorResponse

// swagger:parameters DeleteCache
type CacheDeleteParams struct {
	// in:header
	CorrelationId string `json:"Correlation-Id"`
}

// swagger:route GET /healthz Health ReadHealth
// Reports the status of the database.
//
//     Produces:
//     - application/json
//
// responses:
//   200: HealthResponse
//   503: HealthResponse

// swagger:response HealthResponse
type HealthResponse struct {
	// in:body
	Status map[string]string
}
