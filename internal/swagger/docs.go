// Package Swagger employees
//
// An API to list, search, create, update and delete employees.
//
//	Schemes: http, https
//	Version: 1.0
//	Host: localhost:8080
//	BasePath:/
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package swagger

//go:generate swagger generate spec -o ../../swagger.json --scan-models

import "github.com/tqt95/app-react-jpa/internal/data"

// swagger:response ErrorResponse
type ErrorResponse struct {
	// in:body
	Body data.ErrorResponse
}

// swagger:response NotFoundResponse
type NotFoundResponse struct{}
