package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/logistik-admin-api/internal/attendance"
)

type opKind string

const (
	opActivate   opKind = "activate"
	opDeactivate opKind = "deactivate"
	opToggle     opKind = "toggle"
)

type editOp struct {
	kind       opKind
	date       string
	employeeID int
}

func (o editOp) String() string {
	if o.kind == opToggle {
		return fmt.Sprintf("%s:%s:%d", o.kind, o.date, o.employeeID)
	}
	return fmt.Sprintf("%s:%s", o.kind, o.date)
}

func (o editOp) apply(e *attendance.Editor) error {
	switch o.kind {
	case opActivate:
		return e.Activate(o.date)
	case opDeactivate:
		return e.Deactivate(o.date)
	default:
		return e.Toggle(o.date, o.employeeID)
	}
}

func parseOps(raw []string) ([]editOp, error) {
	ops := make([]editOp, 0, len(raw))
	for _, value := range raw {
		op, err := parseOp(value)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func parseOp(value string) (editOp, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 {
		return editOp{}, fmt.Errorf("invalid --op %q", value)
	}
	op := editOp{kind: opKind(strings.ToLower(parts[0])), date: parts[1]}
	if _, err := attendance.ParseDateKey(op.date, nil); err != nil {
		return editOp{}, fmt.Errorf("invalid --op %q: %w", value, err)
	}

	switch op.kind {
	case opActivate, opDeactivate:
		if len(parts) != 2 {
			return editOp{}, fmt.Errorf("invalid --op %q: expected %s:DATE", value, op.kind)
		}
	case opToggle:
		if len(parts) != 3 {
			return editOp{}, fmt.Errorf("invalid --op %q: expected toggle:DATE:EMPLOYEE_ID", value)
		}
		id, err := strconv.Atoi(parts[2])
		if err != nil || id <= 0 {
			return editOp{}, fmt.Errorf("invalid --op %q: bad employee id", value)
		}
		op.employeeID = id
	default:
		return editOp{}, fmt.Errorf("invalid --op %q: unknown action %q", value, parts[0])
	}
	return op, nil
}
