package attendance

import "fmt"

// Action is the per-date instruction sent to the backend.
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// EmployeeAttendance is one employee's status within an update.
type EmployeeAttendance struct {
	ID     int    `json:"id"`
	Status Status `json:"status"`
}

// Operation is one date's worth of changes.
type Operation struct {
	Date      string               `json:"date"`
	Action    Action               `json:"action"`
	Employees []EmployeeAttendance `json:"employees"`
}

// Batch is the submit payload.
type Batch struct {
	Attendances []Operation `json:"attendances"`
}

// Counts returns the number of update and delete operations.
func (b Batch) Counts() (updates, deletes int) {
	for _, op := range b.Attendances {
		switch op.Action {
		case ActionUpdate:
			updates++
		case ActionDelete:
			deletes++
		}
	}
	return updates, deletes
}

// ValidationError blocks a submit. Date is empty when the error is not tied
// to a single column.
type ValidationError struct {
	Date    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrNothingToSave is returned when no active date produced an operation.
var ErrNothingToSave = &ValidationError{Message: "Tidak ada perubahan untuk disimpan"}

func incompleteRoster(date string) *ValidationError {
	return &ValidationError{
		Date:    date,
		Message: fmt.Sprintf("Tanggal %s: semua karyawan harus memiliki status", date),
	}
}

// BuildBatch turns the active entries of store into operations in ascending
// date order. An entry with every status cleared becomes a delete; any
// other entry must cover all totalEmployees and becomes an update.
func BuildBatch(store Store, totalEmployees int) (Batch, error) {
	ops := make([]Operation, 0, store.Len())
	for _, date := range store.Dates() {
		entry, _ := store.Entry(date)
		if !entry.Active {
			continue
		}
		if entry.MarkedForDeletion() {
			ops = append(ops, Operation{Date: date, Action: ActionDelete, Employees: []EmployeeAttendance{}})
			continue
		}

		employees := make([]EmployeeAttendance, 0, len(entry.Employees))
		for _, emp := range entry.Employees {
			if emp.Status.IsSet() {
				employees = append(employees, EmployeeAttendance{ID: emp.ID, Status: emp.Status})
			}
		}
		if len(employees) != totalEmployees {
			return Batch{}, incompleteRoster(date)
		}
		ops = append(ops, Operation{Date: date, Action: ActionUpdate, Employees: employees})
	}

	if len(ops) == 0 {
		return Batch{}, ErrNothingToSave
	}
	return Batch{Attendances: ops}, nil
}
