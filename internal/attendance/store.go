package attendance

import "sort"

// EmployeeStatus is one cell of a date column.
type EmployeeStatus struct {
	ID     int
	Name   string
	Status Status
}

// DateEntry is a date column touched during an edit session.
type DateEntry struct {
	Active    bool
	Employees []EmployeeStatus
}

// MarkedForDeletion reports an active entry with no status assigned, which
// the batch builder turns into a delete.
func (e DateEntry) MarkedForDeletion() bool {
	if !e.Active {
		return false
	}
	for _, emp := range e.Employees {
		if emp.Status.IsSet() {
			return false
		}
	}
	return true
}

// AssignedCount returns how many employees have a status.
func (e DateEntry) AssignedCount() int {
	n := 0
	for _, emp := range e.Employees {
		if emp.Status.IsSet() {
			n++
		}
	}
	return n
}

func (e DateEntry) clone() DateEntry {
	employees := make([]EmployeeStatus, len(e.Employees))
	copy(employees, e.Employees)
	return DateEntry{Active: e.Active, Employees: employees}
}

// Store is the sparse set of date columns in an edit session. It is a value:
// every reducer returns a new Store and leaves the receiver untouched.
type Store struct {
	entries map[string]DateEntry
}

// Reset seeds a store from the dates of w that already carry baseline data.
func Reset(w Window, baseline *Baseline) Store {
	entries := make(map[string]DateEntry)
	if baseline == nil {
		return Store{entries: entries}
	}
	for _, key := range w.Keys() {
		if !baseline.HasData(key) {
			continue
		}
		employees := make([]EmployeeStatus, len(baseline.Roster))
		for i, emp := range baseline.Roster {
			employees[i] = EmployeeStatus{ID: emp.ID, Name: emp.Name, Status: baseline.StatusOf(key, emp.ID)}
		}
		entries[key] = DateEntry{Active: true, Employees: employees}
	}
	return Store{entries: entries}
}

// Activate opens date with every employee marked present. Active entries
// are left alone unless they are marked for deletion. Without a roster there
// is nothing to record and the store is returned unchanged.
func (s Store) Activate(date string, roster []Employee) Store {
	if len(roster) == 0 {
		return s
	}
	if entry, ok := s.entries[date]; ok && entry.Active && !entry.MarkedForDeletion() {
		return s
	}
	employees := make([]EmployeeStatus, len(roster))
	for i, emp := range roster {
		employees[i] = EmployeeStatus{ID: emp.ID, Name: emp.Name, Status: StatusPresent}
	}
	next := s.copyEntries()
	next[date] = DateEntry{Active: true, Employees: employees}
	return Store{entries: next}
}

// Deactivate closes date. A date with baseline data stays in the store with
// every status cleared so the deletion is visible and gets submitted; a date
// without baseline data is simply dropped.
func (s Store) Deactivate(date string, roster []Employee, baseline *Baseline) Store {
	next := s.copyEntries()
	if !baseline.HasData(date) {
		delete(next, date)
		return Store{entries: next}
	}
	employees := make([]EmployeeStatus, len(roster))
	for i, emp := range roster {
		employees[i] = EmployeeStatus{ID: emp.ID, Name: emp.Name}
	}
	next[date] = DateEntry{Active: true, Employees: employees}
	return Store{entries: next}
}

// Toggle cycles one employee's status on date. Missing dates and unknown
// employees are ignored.
func (s Store) Toggle(date string, employeeID int) Store {
	entry, ok := s.entries[date]
	if !ok {
		return s
	}
	idx := -1
	for i, emp := range entry.Employees {
		if emp.ID == employeeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	updated := entry.clone()
	updated.Employees[idx].Status = Next(updated.Employees[idx].Status)
	next := s.copyEntries()
	next[date] = updated
	return Store{entries: next}
}

// Entry returns a copy of the entry for date.
func (s Store) Entry(date string) (DateEntry, bool) {
	entry, ok := s.entries[date]
	if !ok {
		return DateEntry{}, false
	}
	return entry.clone(), true
}

// StatusOf returns the in-session status of a cell.
func (s Store) StatusOf(date string, employeeID int) Status {
	for _, emp := range s.entries[date].Employees {
		if emp.ID == employeeID {
			return emp.Status
		}
	}
	return StatusUnset
}

// Dates returns the keys in ascending order.
func (s Store) Dates() []string {
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (s Store) Len() int {
	return len(s.entries)
}

func (s Store) copyEntries() map[string]DateEntry {
	next := make(map[string]DateEntry, len(s.entries)+1)
	for key, entry := range s.entries {
		next[key] = entry
	}
	return next
}
