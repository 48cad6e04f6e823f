// Package fsm holds the client-side model of a remote finite-state-machine
// service: snapshots of its states, transitions, current state, and history,
// plus the pure derivations the display layer needs (available events,
// bounded history views).
//
// All values here are transient copies of server-owned truth. Every fetched
// snapshot fully replaces the previous one; nothing in this package is
// persisted. Optional wire fields are normalized once at ingestion (see
// ParseSnapshot) so the rest of the code works with fully-populated records.
package fsm

import "time"

// Transition is a directed, event-labelled edge between two states.
// The engine guarantees at most one transition per (FromState, Event) pair.
// ToState may equal FromState (self-loop), and several transitions may
// connect the same pair of states under different events.
type Transition struct {
	FromState string `json:"from_state"`
	Event     string `json:"event"`
	ToState   string `json:"to_state"`
}

// HistoryStep is one applied event from the machine's append-only history.
//
// Seq is 0 when the wire record carried no sequence number; the display
// layer substitutes a positional counter. At is the zero time when the
// record carried no parsable timestamp.
type HistoryStep struct {
	Seq       int
	FromState string
	ToState   string
	Event     string
	At        time.Time
}

// Snapshot is one full fetch of the machine: the authoritative replacement
// for any previously held copy.
//
// CurrentState is empty when the machine has no current state (a machine
// may start unset); state names themselves are never empty.
type Snapshot struct {
	States       []string
	Transitions  []Transition
	CurrentState string
	History      []HistoryStep
}

// EventResult is the engine's response to a triggered event.
type EventResult struct {
	FromState    string `json:"from_state"`
	Event        string `json:"event"`
	ToState      string `json:"to_state"`
	CurrentState string `json:"current_state"`
}
