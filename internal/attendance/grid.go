package attendance

import "time"

// GridColumn describes one visible date.
type GridColumn struct {
	Key    string
	Date   time.Time
	Label  string
	Active bool
	// Deleting is set for columns that will be removed on save.
	Deleting bool
}

// GridRow is one employee across the visible dates.
type GridRow struct {
	Employee Employee
	Cells    []Status
}

// Grid is a render-ready projection of a window.
type Grid struct {
	Window  Window
	Mode    Mode
	Columns []GridColumn
	Rows    []GridRow
}

// BuildGrid projects baseline onto w. When store is non-nil the grid shows
// the edit session instead, with baseline values for untouched dates.
func BuildGrid(w Window, baseline *Baseline, store *Store) Grid {
	grid := Grid{Window: w, Mode: ModeView}
	if store != nil {
		grid.Mode = ModeEdit
	}

	for _, d := range w.Dates {
		key := DateKey(d)
		col := GridColumn{Key: key, Date: d, Label: ColumnLabel(d), Active: baseline.HasData(key)}
		if store != nil {
			entry, ok := store.Entry(key)
			col.Active = ok && entry.Active && !entry.MarkedForDeletion()
			col.Deleting = ok && entry.MarkedForDeletion()
		}
		grid.Columns = append(grid.Columns, col)
	}

	if baseline == nil {
		return grid
	}
	for _, emp := range baseline.Roster {
		row := GridRow{Employee: emp, Cells: make([]Status, len(grid.Columns))}
		for i, col := range grid.Columns {
			if store != nil {
				if _, ok := store.entries[col.Key]; ok {
					row.Cells[i] = store.StatusOf(col.Key, emp.ID)
					continue
				}
			}
			row.Cells[i] = baseline.StatusOf(col.Key, emp.ID)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// Grid returns the current projection of the editor.
func (e *Editor) Grid() Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeEdit {
		store := e.store
		return BuildGrid(e.window, e.baseline, &store)
	}
	return BuildGrid(e.window, e.baseline, nil)
}
