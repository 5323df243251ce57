package data

import "github.com/shopspring/decimal"

const salaryPlaces int32 = 2

// Salary is a DECIMAL(10,2) amount; it is written to JSON as a number
// with exactly two fractional digits and read from either a number or a
// string.
type Salary struct {
	decimal.Decimal
}

func NewSalary(d decimal.Decimal) *Salary {
	return &Salary{Decimal: d.Round(salaryPlaces)}
}

func SalaryFromString(s string) (*Salary, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return NewSalary(d), nil
}

func (s Salary) MarshalJSON() ([]byte, error) {
	return []byte(s.StringFixed(salaryPlaces)), nil
}

func (s Salary) String() string {
	return s.StringFixed(salaryPlaces)
}
