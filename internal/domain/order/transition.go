package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Transition is a command asking the order service to advance an order by
// exactly one step. Clients only ever send transitions; they never compute
// the resulting status themselves.
type Transition string

const (
	// TransitionStart moves an order from ordered to preparing.
	TransitionStart Transition = "start"
	// TransitionReady moves an order from preparing to ready.
	TransitionReady Transition = "ready"
	// TransitionServe moves an order from ready to served.
	TransitionServe Transition = "serve"
)

// ErrUnknownTransition is returned when parsing an unsupported command.
var ErrUnknownTransition = errors.New("unknown transition")

type edge struct {
	from, to Status
	label    string
}

var edges = map[Transition]edge{
	TransitionStart: {from: StatusOrdered, to: StatusPreparing, label: "Start Preparing"},
	TransitionReady: {from: StatusPreparing, to: StatusReady, label: "Mark Ready"},
	TransitionServe: {from: StatusReady, to: StatusServed, label: "Serve Order"},
}

// ParseTransition converts a path segment into a Transition.
func ParseTransition(s string) (Transition, error) {
	t := Transition(s)
	if !t.Valid() {
		return "", errors.Wrapf(ErrUnknownTransition, "%q", s)
	}
	return t, nil
}

// TransitionFrom returns the single transition applicable to an order in
// status s. Terminal and unknown statuses have none.
func TransitionFrom(s Status) (Transition, bool) {
	for t, e := range edges {
		if e.from == s {
			return t, true
		}
	}
	return "", false
}

// Valid reports whether t is a known transition.
func (t Transition) Valid() bool {
	_, ok := edges[t]
	return ok
}

// From returns the status an order must be in for t to apply.
func (t Transition) From() Status { return edges[t].from }

// To returns the status an order has after t is applied.
func (t Transition) To() Status { return edges[t].to }

// Label is the kitchen-facing action name.
func (t Transition) Label() string { return edges[t].label }

func (t Transition) String() string { return string(t) }

// Check returns a *TransitionError unless current is the source status of t.
func (t Transition) Check(current Status) error {
	if !t.Valid() {
		return errors.Wrapf(ErrUnknownTransition, "%q", string(t))
	}
	if current != t.From() {
		return &TransitionError{Transition: t, Current: current}
	}
	return nil
}

// TransitionError reports a transition command issued against an order that
// is not in the transition's source status.
type TransitionError struct {
	Transition Transition
	Current    Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s order in status %s (want %s)", e.Transition, e.Current, e.Transition.From())
}
