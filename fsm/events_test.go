package fsm

import "testing"

func TestResolveSource(t *testing.T) {
	if src, ok := ResolveSource("picked", "current"); !ok || src != "picked" {
		t.Errorf("explicit selection should win, got %q ok=%v", src, ok)
	}
	if src, ok := ResolveSource("", "current"); !ok || src != "current" {
		t.Errorf("current state should be the fallback, got %q ok=%v", src, ok)
	}
	if _, ok := ResolveSource("", ""); ok {
		t.Error("no selection and no current state should report unset")
	}
}

func TestAvailableEvents(t *testing.T) {
	transitions := []Transition{
		{FromState: "open", Event: "close", ToState: "shut"},
		{FromState: "shut", Event: "open", ToState: "open"},
	}

	opts := AvailableEvents("open", transitions)
	if len(opts) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(opts))
	}
	if opts[0].Event != "close" {
		t.Errorf("expected event 'close', got %q", opts[0].Event)
	}
	if opts[0].Transition.ToState != "shut" {
		t.Error("option should carry the full transition")
	}
}

func TestAvailableEventsPreservesOrder(t *testing.T) {
	transitions := []Transition{
		{FromState: "a", Event: "third", ToState: "b"},
		{FromState: "b", Event: "other", ToState: "a"},
		{FromState: "a", Event: "first", ToState: "a"},
	}

	opts := AvailableEvents("a", transitions)
	if len(opts) != 2 {
		t.Fatalf("expected 2 events, got %d", len(opts))
	}
	if opts[0].Event != "third" || opts[1].Event != "first" {
		t.Errorf("events should keep input transition order, got %q then %q",
			opts[0].Event, opts[1].Event)
	}
}

func TestAvailableEventsNoMatches(t *testing.T) {
	opts := AvailableEvents("lonely", []Transition{
		{FromState: "a", Event: "go", ToState: "b"},
	})
	if len(opts) != 0 {
		t.Errorf("expected no events, got %d", len(opts))
	}
}
