package fsm

import "time"

// HistoryDisplayLimit bounds how many steps a history panel shows.
const HistoryDisplayLimit = 10

// timeUnavailable is rendered for steps whose record carried no timestamp.
const timeUnavailable = "time unavailable"

// HistoryEntry is one display row of the history panel.
type HistoryEntry struct {
	Seq       int
	FromState string
	ToState   string
	Event     string
	When      string
}

// FormatHistory turns the raw event-application log into a bounded,
// most-recent-first display list. It trusts arrival order as chronological:
// the last limit steps are taken and reversed, never re-sorted. A step
// without a sequence number gets its 1-based position within the reversed
// list; a step without a timestamp renders "time unavailable".
func FormatHistory(steps []HistoryStep, limit int) []HistoryEntry {
	if limit <= 0 {
		limit = HistoryDisplayLimit
	}

	start := 0
	if len(steps) > limit {
		start = len(steps) - limit
	}
	trimmed := steps[start:]

	entries := make([]HistoryEntry, 0, len(trimmed))
	for i := len(trimmed) - 1; i >= 0; i-- {
		step := trimmed[i]
		entry := HistoryEntry{
			Seq:       step.Seq,
			FromState: step.FromState,
			ToState:   step.ToState,
			Event:     step.Event,
			When:      timeUnavailable,
		}
		if entry.Seq == 0 {
			entry.Seq = len(trimmed) - i
		}
		if !step.At.IsZero() {
			entry.When = step.At.Format(time.RFC3339)
		}
		entries = append(entries, entry)
	}
	return entries
}
