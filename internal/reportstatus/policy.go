// Package reportstatus is the expense report lifecycle:
//
//	CREATED   -> SUBMITTED
//	SUBMITTED -> VALIDATED, REJECTED, PAID
//	VALIDATED -> PAID
//	REJECTED  -> CREATED
//	PAID      -> (terminal)
//
// Everything here is a pure function over the five statuses.
package reportstatus

import (
	"fmt"
	"strings"
)

type Status string

const (
	Created   Status = "CREATED"
	Submitted Status = "SUBMITTED"
	Validated Status = "VALIDATED"
	Rejected  Status = "REJECTED"
	Paid      Status = "PAID"
)

var all = []Status{Created, Submitted, Validated, Rejected, Paid}

var transitions = map[Status][]Status{
	Created:   {Submitted},
	Submitted: {Validated, Rejected, Paid},
	Validated: {Paid},
	Rejected:  {Created},
	Paid:      {},
}

// All returns the statuses in lifecycle order.
func All() []Status {
	out := make([]Status, len(all))
	copy(out, all)
	return out
}

func Parse(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown report status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// CanModify reports whether the report's own fields and its expenses may change.
func CanModify(s Status) bool {
	return s == Created || s == Submitted
}

// CanDelete reports whether the report may be hard-deleted.
func CanDelete(s Status) bool {
	return s == Created
}

func CanTransitionTo(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns a fresh slice of the statuses reachable from s in one step.
func NextStatuses(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
