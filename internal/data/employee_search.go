package data

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// EmployeeSearch holds the criteria of a listing; every criterion that is
// set must match, no criteria lists every employee.
type EmployeeSearch struct {
	Department *string          `json:"department,omitempty"`
	LastName   *string          `json:"last_name,omitempty"`
	MinSalary  *decimal.Decimal `json:"min_salary,omitempty"`
	HireYear   *int             `json:"hire_year,omitempty"`
}

// ToKey returns a stable representation of the search, used as cache key.
func (e *EmployeeSearch) ToKey() (string, error) {
	bytes, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (e *EmployeeSearch) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *EmployeeSearch) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// EmployeeIds is the cached result of a search.
type EmployeeIds struct {
	Ids []int64 `json:"ids"`
}

func (e *EmployeeIds) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *EmployeeIds) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}
