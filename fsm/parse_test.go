package fsm

import (
	"testing"
	"time"
)

func TestParseSnapshot(t *testing.T) {
	body := `{
		"states": ["new", "review", "done"],
		"transitions": [
			{"from_state": "new", "event": "submit", "to_state": "review"},
			{"from_state": "review", "event": "approve", "to_state": "done"}
		],
		"current_state": "new",
		"history": [
			{"seq": 1, "from_state": "new", "to_state": "review", "event": "submit", "at": "2026-08-01T10:00:00+00:00"}
		]
	}`

	snap, err := ParseSnapshot([]byte(body))
	if err != nil {
		t.Fatalf("ParseSnapshot failed: %v", err)
	}

	if len(snap.States) != 3 {
		t.Errorf("expected 3 states, got %d", len(snap.States))
	}
	if snap.States[0] != "new" {
		t.Errorf("state order should follow the snapshot, got %q first", snap.States[0])
	}
	if len(snap.Transitions) != 2 {
		t.Errorf("expected 2 transitions, got %d", len(snap.Transitions))
	}
	if snap.CurrentState != "new" {
		t.Errorf("expected current state 'new', got %q", snap.CurrentState)
	}
	if len(snap.History) != 1 {
		t.Fatalf("expected 1 history step, got %d", len(snap.History))
	}
	want := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if !snap.History[0].At.Equal(want) {
		t.Errorf("timestamp parsed as %v, want %v", snap.History[0].At, want)
	}
}

func TestParseSnapshotMissingFields(t *testing.T) {
	// A partial response degrades to empty defaults rather than failing.
	snap, err := ParseSnapshot([]byte(`{"current_state": null}`))
	if err != nil {
		t.Fatalf("ParseSnapshot failed: %v", err)
	}
	if snap.States == nil || len(snap.States) != 0 {
		t.Error("missing states should yield an empty slice")
	}
	if snap.Transitions == nil || len(snap.Transitions) != 0 {
		t.Error("missing transitions should yield an empty slice")
	}
	if snap.History == nil || len(snap.History) != 0 {
		t.Error("missing history should yield an empty slice")
	}
	if snap.CurrentState != "" {
		t.Errorf("null current_state should yield empty string, got %q", snap.CurrentState)
	}
}

func TestParseSnapshotHistoryFallbacks(t *testing.T) {
	body := `{
		"history": [
			{"event": "go", "from_state": "a", "state": "b"},
			{"seq": 7, "event": "stop", "from_state": "b", "to_state": "c", "at": "not a time"}
		]
	}`

	snap, err := ParseSnapshot([]byte(body))
	if err != nil {
		t.Fatalf("ParseSnapshot failed: %v", err)
	}
	if len(snap.History) != 2 {
		t.Fatalf("expected 2 history steps, got %d", len(snap.History))
	}

	first := snap.History[0]
	if first.ToState != "b" {
		t.Errorf("missing to_state should fall back to state, got %q", first.ToState)
	}
	if first.Seq != 0 {
		t.Errorf("missing seq should stay 0 until display, got %d", first.Seq)
	}

	second := snap.History[1]
	if !second.At.IsZero() {
		t.Errorf("unparsable timestamp should yield zero time, got %v", second.At)
	}
	if second.Seq != 7 {
		t.Errorf("seq should survive parsing, got %d", second.Seq)
	}
}

func TestParseSnapshotRejectsNonJSON(t *testing.T) {
	if _, err := ParseSnapshot([]byte("<html>oops</html>")); err == nil {
		t.Error("non-JSON body should be rejected")
	}
}
