// Package attendance holds the weekly attendance editor: the week window,
// the sparse edit store, the batch builder and the Editor that drives them.
package attendance

// Status is an employee's attendance state on a single date. The zero value
// means no status has been assigned.
type Status string

const (
	StatusUnset   Status = ""
	StatusPresent Status = "PRESENT"
	StatusLeave   Status = "LEAVE"
	StatusSick    Status = "SICK"
	StatusAbsent  Status = "ABSENT"
)

// Statuses lists the persistable statuses in cycle order.
var Statuses = []Status{StatusPresent, StatusLeave, StatusSick, StatusAbsent}

// Next advances a status one step through the toggle cycle:
// unset, PRESENT, LEAVE, SICK, ABSENT, then back to unset.
// Unknown values restart the cycle at PRESENT.
func Next(s Status) Status {
	switch s {
	case StatusPresent:
		return StatusLeave
	case StatusLeave:
		return StatusSick
	case StatusSick:
		return StatusAbsent
	case StatusAbsent:
		return StatusUnset
	default:
		return StatusPresent
	}
}

// Valid reports whether the status can be persisted.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLeave, StatusSick, StatusAbsent:
		return true
	default:
		return false
	}
}

// IsSet reports whether a status has been assigned.
func (s Status) IsSet() bool {
	return s != StatusUnset
}

// Label returns the display label used on grids and exports.
func (s Status) Label() string {
	switch s {
	case StatusPresent:
		return "Hadir"
	case StatusLeave:
		return "Izin"
	case StatusSick:
		return "Sakit"
	case StatusAbsent:
		return "Tidak Hadir"
	default:
		return "-"
	}
}

// Short returns a single-letter code for compact grids.
func (s Status) Short() string {
	switch s {
	case StatusPresent:
		return "H"
	case StatusLeave:
		return "I"
	case StatusSick:
		return "S"
	case StatusAbsent:
		return "A"
	default:
		return "-"
	}
}
