package fsm

import (
	"fmt"
	"testing"
	"time"
)

func TestFormatHistoryBoundsAndOrder(t *testing.T) {
	steps := make([]HistoryStep, 0, 15)
	for i := 1; i <= 15; i++ {
		steps = append(steps, HistoryStep{
			Seq:       i,
			FromState: fmt.Sprintf("s%d", i-1),
			ToState:   fmt.Sprintf("s%d", i),
			Event:     "tick",
			At:        time.Date(2026, 8, 1, 0, i, 0, 0, time.UTC),
		})
	}

	entries := FormatHistory(steps, HistoryDisplayLimit)
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	if entries[0].Seq != 15 {
		t.Errorf("first entry should be step 15, got %d", entries[0].Seq)
	}
	if entries[9].Seq != 6 {
		t.Errorf("last entry should be step 6, got %d", entries[9].Seq)
	}
}

func TestFormatHistorySeqFallback(t *testing.T) {
	// Three steps without sequence numbers: positions count from the
	// newest entry down.
	steps := []HistoryStep{
		{Event: "a"},
		{Event: "b"},
		{Event: "c"},
	}

	entries := FormatHistory(steps, 10)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if entry.Seq != i+1 {
			t.Errorf("entry %d should get positional seq %d, got %d", i, i+1, entry.Seq)
		}
	}
	if entries[0].Event != "c" {
		t.Errorf("newest step should come first, got %q", entries[0].Event)
	}
}

func TestFormatHistoryMissingTimestamp(t *testing.T) {
	entries := FormatHistory([]HistoryStep{{Seq: 1, Event: "go"}}, 10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].When != "time unavailable" {
		t.Errorf("zero timestamp should render sentinel, got %q", entries[0].When)
	}
}

func TestFormatHistoryEmpty(t *testing.T) {
	if entries := FormatHistory(nil, 10); len(entries) != 0 {
		t.Errorf("empty history should format to no entries, got %d", len(entries))
	}
}
