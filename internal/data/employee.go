package data

import (
	"encoding/json"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Employee mirrors a row of the EMPLOYEES table; optional columns are
// pointers and render as null.
type Employee struct {
	ID          int64       `json:"id"`
	FirstName   string      `json:"firstName" validate:"notblank,max=50"`
	LastName    string      `json:"lastName" validate:"notblank,max=50"`
	Email       *string     `json:"email" validate:"omitempty,email"`
	PhoneNumber *string     `json:"phoneNumber"`
	HireDate    *civil.Date `json:"hireDate"`
	Salary      *Salary     `json:"salary"`
	Department  *string     `json:"department"`
}

func (e *Employee) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Employee) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// Normalize turns blank optional text into absent values and rounds the
// salary to two fractional digits.
func (e *Employee) Normalize() {
	e.Email = trimOptional(e.Email)
	e.PhoneNumber = trimOptional(e.PhoneNumber)
	e.Department = trimOptional(e.Department)
	if e.Salary != nil {
		e.Salary = NewSalary(e.Salary.Decimal)
	}
}

// Merge overwrites every mutable field with the values of from; the id
// is left untouched.
func (e *Employee) Merge(from Employee) {
	e.FirstName = from.FirstName
	e.LastName = from.LastName
	e.Email = from.Email
	e.PhoneNumber = from.PhoneNumber
	e.HireDate = from.HireDate
	e.Salary = from.Salary
	e.Department = from.Department
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	if strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func String(s string) *string {
	return &s
}

func Date(year int, month int, day int) *civil.Date {
	return &civil.Date{Year: year, Month: time.Month(month), Day: day}
}
