package server

import (
	"reflect"
	"testing"
	"time"
)

func TestAddTransitionSeedsCurrentState(t *testing.T) {
	m := newMachine()
	m.addTransition("draft", "submit", "review")

	if m.current != "draft" {
		t.Fatalf("current = %q, want %q", m.current, "draft")
	}
}

func TestAddTransitionReplacesExistingKey(t *testing.T) {
	m := newMachine()
	m.addTransition("draft", "submit", "review")
	m.addTransition("draft", "submit", "published")

	if len(m.transitions) != 1 {
		t.Fatalf("transitions = %d, want 1", len(m.transitions))
	}
	got := m.transitions[transitionKey{From: "draft", Event: "submit"}]
	if got != "published" {
		t.Fatalf("target = %q, want %q", got, "published")
	}
}

func TestStatesDerivedFromTransitions(t *testing.T) {
	m := newMachine()
	m.addTransition("open", "close", "closed")
	m.addTransition("closed", "reopen", "open")

	got := m.states()
	want := []string{"closed", "open"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
}

func TestRevalidateFallsBackToSmallestState(t *testing.T) {
	m := newMachine()
	m.addTransition("b", "go", "c")
	m.addTransition("a", "go", "b")
	m.current = "c"

	if _, ok := m.deleteTransition("b", "go"); !ok {
		t.Fatal("deleteTransition returned false")
	}
	// "c" no longer exists; smallest remaining state is "a".
	if m.current != "a" {
		t.Fatalf("current = %q, want %q", m.current, "a")
	}
}

func TestClearTransitionsUnsetsCurrent(t *testing.T) {
	m := newMachine()
	m.addTransition("draft", "submit", "review")

	if removed := m.clearTransitions(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if m.current != "" {
		t.Fatalf("current = %q, want unset", m.current)
	}
}

func TestTriggerAppendsHistory(t *testing.T) {
	m := newMachine()
	m.addTransition("draft", "submit", "review")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	result, engErr := m.trigger("submit", "", now)
	if engErr != nil {
		t.Fatalf("trigger: %v", engErr)
	}
	if result.ToState != "review" || result.CurrentState != "review" {
		t.Fatalf("result = %+v", result)
	}

	if len(m.history) != 1 {
		t.Fatalf("history = %d entries, want 1", len(m.history))
	}
	rec := m.history[0]
	if rec.Seq != 1 || rec.FromState != "draft" || rec.ToState != "review" || rec.Event != "submit" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.At != "2024-03-01T12:00:00Z" {
		t.Fatalf("at = %q", rec.At)
	}
}

func TestTriggerErrors(t *testing.T) {
	now := time.Now()

	m := newMachine()
	if _, engErr := m.trigger("submit", "", now); engErr == nil {
		t.Fatal("want error with no transitions")
	} else if engErr.detail != "Current state is not set. Add a transition first." {
		t.Fatalf("detail = %q", engErr.detail)
	}

	m.addTransition("draft", "submit", "review")
	if _, engErr := m.trigger("submit", "ghost", now); engErr == nil {
		t.Fatal("want error for unknown state")
	} else if engErr.detail != "State 'ghost' does not exist in FSM." {
		t.Fatalf("detail = %q", engErr.detail)
	}

	if _, engErr := m.trigger("publish", "", now); engErr == nil {
		t.Fatal("want error for missing transition")
	} else if engErr.detail != "No transition for state 'draft' on event 'publish'" {
		t.Fatalf("detail = %q", engErr.detail)
	}
}

func TestRecentHistoryCapsAtLimit(t *testing.T) {
	m := newMachine()
	m.addTransition("a", "loop", "a")
	now := time.Now()
	for i := 0; i < snapshotHistoryLimit+5; i++ {
		if _, engErr := m.trigger("loop", "", now); engErr != nil {
			t.Fatalf("trigger %d: %v", i, engErr)
		}
	}

	recent := m.recentHistory()
	if len(recent) != snapshotHistoryLimit {
		t.Fatalf("recent = %d entries, want %d", len(recent), snapshotHistoryLimit)
	}
	if recent[0].Seq != 6 {
		t.Fatalf("first seq = %d, want 6", recent[0].Seq)
	}
	if recent[len(recent)-1].Seq != snapshotHistoryLimit+5 {
		t.Fatalf("last seq = %d, want %d", recent[len(recent)-1].Seq, snapshotHistoryLimit+5)
	}
}
