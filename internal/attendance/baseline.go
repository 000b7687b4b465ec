package attendance

// Employee is a roster entry.
type Employee struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Baseline is the server-confirmed attendance for one window. It is never
// mutated by the editor; a new Baseline is fetched after every save.
type Baseline struct {
	Roster  []Employee
	Records map[string]map[int]Status
}

// NewBaseline builds an empty baseline for roster.
func NewBaseline(roster []Employee) *Baseline {
	return &Baseline{Roster: roster, Records: make(map[string]map[int]Status)}
}

// Set records a persisted status. Unset statuses are ignored.
func (b *Baseline) Set(date string, employeeID int, status Status) {
	if !status.IsSet() {
		return
	}
	if b.Records == nil {
		b.Records = make(map[string]map[int]Status)
	}
	day, ok := b.Records[date]
	if !ok {
		day = make(map[int]Status)
		b.Records[date] = day
	}
	day[employeeID] = status
}

// HasData reports whether any employee has a persisted status on date.
func (b *Baseline) HasData(date string) bool {
	if b == nil {
		return false
	}
	for _, status := range b.Records[date] {
		if status.IsSet() {
			return true
		}
	}
	return false
}

// StatusOf returns the persisted status or StatusUnset.
func (b *Baseline) StatusOf(date string, employeeID int) Status {
	if b == nil {
		return StatusUnset
	}
	return b.Records[date][employeeID]
}

// TotalEmployees is the roster size used for completeness checks.
func (b *Baseline) TotalEmployees() int {
	if b == nil {
		return 0
	}
	return len(b.Roster)
}
