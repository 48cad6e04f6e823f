package fsm

import (
	"errors"
	"time"

	"github.com/tidwall/gjson"
)

// ErrInvalidSnapshot is returned when the response body is not JSON at all.
// Anything less than that degrades to empty-sequence defaults instead.
var ErrInvalidSnapshot = errors.New("fsm: snapshot body is not valid JSON")

// timestampFormats lists the layouts tried for history timestamps, most
// specific first. The engine emits RFC 3339 with offset; the looser forms
// cover hand-fed fixtures.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseSnapshot decodes a machine snapshot from a response body.
//
// Parsing is deliberately tolerant: a missing states, transitions, or
// history field yields an empty slice, a null current_state yields "",
// a history step missing to_state falls back to its state field, and an
// absent or unparsable timestamp yields the zero time. Fallbacks are
// resolved here, once, so downstream code never re-checks them.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidSnapshot
	}
	root := gjson.ParseBytes(data)

	snap := &Snapshot{
		States:       make([]string, 0),
		Transitions:  make([]Transition, 0),
		History:      make([]HistoryStep, 0),
		CurrentState: root.Get("current_state").String(),
	}

	for _, s := range root.Get("states").Array() {
		snap.States = append(snap.States, s.String())
	}
	for _, t := range root.Get("transitions").Array() {
		snap.Transitions = append(snap.Transitions, parseTransition(t))
	}
	for _, h := range root.Get("history").Array() {
		snap.History = append(snap.History, parseHistoryStep(h))
	}

	return snap, nil
}

func parseTransition(t gjson.Result) Transition {
	return Transition{
		FromState: t.Get("from_state").String(),
		Event:     t.Get("event").String(),
		ToState:   t.Get("to_state").String(),
	}
}

func parseHistoryStep(h gjson.Result) HistoryStep {
	step := HistoryStep{
		Seq:       int(h.Get("seq").Int()),
		FromState: h.Get("from_state").String(),
		Event:     h.Get("event").String(),
	}

	to := h.Get("to_state")
	if !to.Exists() {
		to = h.Get("state")
	}
	step.ToState = to.String()

	if at := h.Get("at"); at.Exists() {
		step.At = parseTimestamp(at.String())
	}

	return step
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
