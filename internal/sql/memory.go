package sql

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/data"
	"github.com/tqt95/app-react-jpa/internal/utilities"

	"github.com/pkg/errors"
)

type ctxKeyMemoryTx struct{}

// memoryTx records how to undo each write made within a transaction,
// it's only touched while holding the write lock.
type memoryTx struct {
	undo []func()
}

type memory struct {
	sync.RWMutex
	tx        sync.Mutex
	employees map[int64]*data.Employee //map[id]employee
	sequence  int64
	utilities.Logger
}

// NewMemory returns a Sql kept in process memory; transactions are
// serialized and a failed transaction undoes only its own writes.
func NewMemory(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Sql
} {
	m := &memory{
		Logger:    utilities.NewNopLogger(),
		employees: make(map[int64]*data.Employee),
	}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			m.Logger = v
		}
	}
	return m
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	return data.String(*s)
}

func copyEmployee(e *data.Employee) *data.Employee {
	employee := &data.Employee{}
	*employee = *e
	employee.Email = copyString(e.Email)
	employee.PhoneNumber = copyString(e.PhoneNumber)
	employee.Department = copyString(e.Department)
	if e.HireDate != nil {
		hireDate := *e.HireDate
		employee.HireDate = &hireDate
	}
	if e.Salary != nil {
		salary := *e.Salary
		employee.Salary = &salary
	}
	return employee
}

func employeeMatches(employee *data.Employee, search data.EmployeeSearch) bool {
	if department := search.Department; department != nil {
		if employee.Department == nil || *employee.Department != *department {
			return false
		}
	}
	if lastName := search.LastName; lastName != nil {
		if !strings.Contains(strings.ToLower(employee.LastName), strings.ToLower(*lastName)) {
			return false
		}
	}
	if minSalary := search.MinSalary; minSalary != nil {
		if employee.Salary == nil || employee.Salary.LessThan(*minSalary) {
			return false
		}
	}
	if hireYear := search.HireYear; hireYear != nil {
		if employee.HireDate == nil || employee.HireDate.Year != *hireYear {
			return false
		}
	}
	return true
}

func (m *memory) Configure(envs map[string]string) error {
	return nil
}

func (m *memory) Open(ctx context.Context) error {
	m.Info(ctx, "using in-memory employees")
	return nil
}

func (m *memory) Close(ctx context.Context) error {
	return nil
}

func (m *memory) Clear(ctx context.Context) error {
	m.Lock()
	defer m.Unlock()

	m.employees = make(map[int64]*data.Employee)
	return nil
}

func (m *memory) Ping(ctx context.Context) error {
	return nil
}

// record remembers the current state of id so the transaction in ctx (if
// any) can undo the write about to happen; the write lock must be held.
func (m *memory) record(ctx context.Context, id int64) {
	tx, ok := ctx.Value(ctxKeyMemoryTx{}).(*memoryTx)
	if !ok {
		return
	}
	previous, existed := m.employees[id]
	tx.undo = append(tx.undo, func() {
		if existed {
			m.employees[id] = previous
			return
		}
		delete(m.employees, id)
	})
}

func (m *memory) Transaction(ctx context.Context, fx func(ctx context.Context) error) error {
	if _, ok := ctx.Value(ctxKeyMemoryTx{}).(*memoryTx); ok {
		return fx(ctx)
	}
	m.tx.Lock()
	defer m.tx.Unlock()

	tx := &memoryTx{}
	if err := fx(context.WithValue(ctx, ctxKeyMemoryTx{}, tx)); err != nil {
		//KIM: ids already handed out are not reused, as with AUTO_INCREMENT
		m.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		m.Unlock()
		return err
	}
	return nil
}

func (m *memory) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	m.RLock()
	defer m.RUnlock()

	employee, ok := m.employees[id]
	if !ok {
		return nil, data.ErrEmployeeNotFound
	}
	return copyEmployee(employee), nil
}

func (m *memory) EmployeesSearch(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	m.RLock()
	defer m.RUnlock()

	employees := make([]*data.Employee, 0, len(m.employees))
	for _, employee := range m.employees {
		if employeeMatches(employee, search) {
			employees = append(employees, copyEmployee(employee))
		}
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].ID < employees[j].ID
	})
	return employees, nil
}

func (m *memory) EmployeeSave(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	m.Lock()
	defer m.Unlock()

	if employee.Email != nil {
		for id, e := range m.employees {
			if id != employee.ID && e.Email != nil && *e.Email == *employee.Email {
				return nil, errors.Errorf("duplicate email: %s", *employee.Email)
			}
		}
	}
	if employee.ID == 0 {
		m.sequence++
		employee.ID = m.sequence
	} else if _, ok := m.employees[employee.ID]; !ok {
		return nil, data.ErrEmployeeNotFound
	}
	m.record(ctx, employee.ID)
	m.employees[employee.ID] = copyEmployee(&employee)
	return copyEmployee(&employee), nil
}

func (m *memory) EmployeeDelete(ctx context.Context, id int64) error {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.employees[id]; !ok {
		return data.ErrEmployeeNotFound
	}
	m.record(ctx, id)
	delete(m.employees, id)
	return nil
}
