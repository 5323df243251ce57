package data

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrMutateDisabled   = errors.New("mutation disabled")
	ErrBadRequest       = errors.New("bad request")
)

// ValidationError lists the offending fields (by their json name) with a
// message for each.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.Fields))
	for field, message := range v.Fields {
		fields = append(fields, fmt.Sprintf("%s: %s", field, message))
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, "; ")
}
