package server

import (
	"fmt"
	"sort"
	"time"

	"github.com/pflow-xyz/go-fsmview/fsm"
)

// transitionKey identifies a transition: the engine holds at most one
// target per (source state, event) pair.
type transitionKey struct {
	From  string
	Event string
}

// historyRecord is one applied event as the engine reports it.
type historyRecord struct {
	Seq       int    `json:"seq"`
	Action    string `json:"action"`
	State     string `json:"state"`
	Event     string `json:"event"`
	FromState string `json:"from_state"`
	ToState   string `json:"to_state"`
	At        string `json:"at"`
}

// snapshotHistoryLimit bounds how much history a snapshot carries.
const snapshotHistoryLimit = 20

// machine is the in-memory FSM engine. The state set is always derived
// from the transition table; there are no free-floating states.
type machine struct {
	transitions map[transitionKey]string
	current     string
	history     []historyRecord
	seq         int
}

func newMachine() *machine {
	return &machine{transitions: make(map[transitionKey]string)}
}

// states returns the sorted set of every state referenced by a transition.
func (m *machine) states() []string {
	seen := make(map[string]bool)
	for key, to := range m.transitions {
		seen[key.From] = true
		seen[to] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// revalidateCurrent keeps the current state inside the derived state set,
// falling back to the smallest state name, or unset when no states remain.
func (m *machine) revalidateCurrent() {
	states := m.states()
	for _, name := range states {
		if name == m.current {
			return
		}
	}
	if len(states) > 0 {
		m.current = states[0]
	} else {
		m.current = ""
	}
}

// sortedTransitions lists the transition table in (from_state, event)
// order, matching the engine's documented snapshot ordering.
func (m *machine) sortedTransitions() []fsm.Transition {
	ts := make([]fsm.Transition, 0, len(m.transitions))
	for key, to := range m.transitions {
		ts = append(ts, fsm.Transition{FromState: key.From, Event: key.Event, ToState: to})
	}
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].FromState != ts[j].FromState {
			return ts[i].FromState < ts[j].FromState
		}
		return ts[i].Event < ts[j].Event
	})
	return ts
}

// addTransition registers or REPLACES the transition for (from, event).
// The first transition ever added also seeds the current state with its
// source.
func (m *machine) addTransition(from, event, to string) {
	m.transitions[transitionKey{From: from, Event: event}] = to
	if m.current == "" {
		m.current = from
	}
	m.revalidateCurrent()
}

func (m *machine) deleteTransition(from, event string) (string, bool) {
	key := transitionKey{From: from, Event: event}
	to, ok := m.transitions[key]
	if !ok {
		return "", false
	}
	delete(m.transitions, key)
	m.revalidateCurrent()
	return to, true
}

func (m *machine) clearTransitions() int {
	removed := len(m.transitions)
	m.transitions = make(map[transitionKey]string)
	m.revalidateCurrent()
	return removed
}

func (m *machine) clearHistory() int {
	removed := len(m.history)
	m.history = nil
	m.seq = 0
	return removed
}

func (m *machine) reset() {
	m.transitions = make(map[transitionKey]string)
	m.current = ""
	m.history = nil
	m.seq = 0
}

// recentHistory returns the newest snapshotHistoryLimit records, oldest
// first.
func (m *machine) recentHistory() []historyRecord {
	start := 0
	if len(m.history) > snapshotHistoryLimit {
		start = len(m.history) - snapshotHistoryLimit
	}
	out := make([]historyRecord, len(m.history)-start)
	copy(out, m.history[start:])
	return out
}

// engineError carries an HTTP status with an engine detail message.
type engineError struct {
	status int
	detail string
}

func (e *engineError) Error() string { return e.detail }

// trigger applies an event, preferring an explicit source state over the
// machine's current one, and records the step in history.
func (m *machine) trigger(event, from string, now time.Time) (*fsm.EventResult, *engineError) {
	source := from
	if source == "" {
		source = m.current
	}
	if source == "" {
		return nil, &engineError{status: 400,
			detail: "Current state is not set. Add a transition first."}
	}

	known := false
	for _, name := range m.states() {
		if name == source {
			known = true
			break
		}
	}
	if !known {
		return nil, &engineError{status: 400,
			detail: fmt.Sprintf("State '%s' does not exist in FSM.", source)}
	}

	to, ok := m.transitions[transitionKey{From: source, Event: event}]
	if !ok {
		return nil, &engineError{status: 400,
			detail: fmt.Sprintf("No transition for state '%s' on event '%s'", source, event)}
	}

	m.current = to
	m.seq++
	m.history = append(m.history, historyRecord{
		Seq:       m.seq,
		Action:    "event",
		State:     to,
		Event:     event,
		FromState: source,
		ToState:   to,
		At:        now.UTC().Format(time.RFC3339),
	})

	return &fsm.EventResult{
		FromState:    source,
		Event:        event,
		ToState:      to,
		CurrentState: to,
	}, nil
}
