package server

import (
	"testing"
	"time"
)

func TestJournalRecordAndRecent(t *testing.T) {
	j, err := OpenJournal(":memory:")
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	defer j.Close()

	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		err := j.Record(AppliedEvent{
			Seq:       i,
			FromState: "a",
			ToState:   "b",
			Event:     "go",
			At:        at.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	events, err := j.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Seq != 3 || events[1].Seq != 2 {
		t.Fatalf("order = [%d, %d], want newest first", events[0].Seq, events[1].Seq)
	}
	if !events[0].At.Equal(at.Add(3 * time.Minute)) {
		t.Fatalf("at = %v", events[0].At)
	}
}

func TestJournalSurvivesMachineReset(t *testing.T) {
	j, err := OpenJournal(":memory:")
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	defer j.Close()

	if err := j.Record(AppliedEvent{Seq: 1, FromState: "a", ToState: "b", Event: "go", At: time.Now()}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	m := newMachine()
	m.addTransition("a", "go", "b")
	m.reset()

	events, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("journal lost records across reset: %d", len(events))
	}
}
