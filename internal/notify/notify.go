// Package notify delivers transient user-facing messages.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Notifier shows a short message to the person at the terminal.
type Notifier interface {
	Notify(msg string)
}

// Func adapts a function to Notifier.
type Func func(msg string)

// Notify calls f(msg).
func (f Func) Notify(msg string) { f(msg) }

// Discard drops every message.
var Discard Notifier = Func(func(string) {})

// Writer prints messages as "! msg" lines. Safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Notifier printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "! %s\n", msg)
}

// Recorder keeps every message.
type Recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *Recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

// Last returns the most recent message, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return ""
	}
	return r.msgs[len(r.msgs)-1]
}

// Tee forwards each message to every notifier.
func Tee(ns ...Notifier) Notifier {
	return Func(func(msg string) {
		for _, n := range ns {
			n.Notify(msg)
		}
	})
}
