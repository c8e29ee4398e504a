package order

import (
	"github.com/go-faster/errors"
)

// Status is a step of the order lifecycle. Statuses are totally ordered and
// only ever move forward one step at a time.
type Status string

const (
	// StatusOrdered is the initial status of a freshly placed order.
	StatusOrdered Status = "ordered"
	// StatusPreparing means the kitchen has started working on the order.
	StatusPreparing Status = "preparing"
	// StatusReady means the order is waiting at the counter.
	StatusReady Status = "ready"
	// StatusServed is terminal.
	StatusServed Status = "served"
)

// ErrUnknownStatus is returned when parsing a status outside the lifecycle.
var ErrUnknownStatus = errors.New("unknown order status")

var lifecycle = [...]Status{StatusOrdered, StatusPreparing, StatusReady, StatusServed}

// Statuses returns every status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(lifecycle))
	copy(out, lifecycle[:])
	return out
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", errors.Wrapf(ErrUnknownStatus, "%q", s)
	}
	return st, nil
}

// Index returns the position of s in the lifecycle, or -1 if s is unknown.
func (s Status) Index() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the lifecycle statuses.
func (s Status) Valid() bool { return s.Index() >= 0 }

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool { return s == StatusServed }

func (s Status) String() string { return string(s) }

// Label is the human-readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusOrdered:
		return "Ordered"
	case StatusPreparing:
		return "Preparing"
	case StatusReady:
		return "Ready"
	case StatusServed:
		return "Served"
	default:
		return string(s)
	}
}

// Progress returns the statuses reached so far when an order is in s: every
// lifecycle status up to and including s. Unknown statuses reach nothing.
func Progress(s Status) []Status {
	idx := s.Index()
	if idx < 0 {
		return nil
	}
	return Statuses()[:idx+1]
}
