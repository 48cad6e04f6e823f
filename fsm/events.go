package fsm

// EventOption is one event that may be dispatched next, carrying its full
// transition so a caller can fire it without a second lookup.
type EventOption struct {
	Event      string
	Transition Transition
}

// ResolveSource picks the state that available events are derived from:
// an explicit selection wins over the machine's current state. ok is false
// when neither is set, which callers must render differently from a
// resolvable state with zero outgoing transitions.
func ResolveSource(selected, current string) (source string, ok bool) {
	if selected != "" {
		return selected, true
	}
	if current != "" {
		return current, true
	}
	return "", false
}

// AvailableEvents returns every transition leaving source, in the given
// transition order.
func AvailableEvents(source string, transitions []Transition) []EventOption {
	opts := make([]EventOption, 0)
	for _, t := range transitions {
		if t.FromState == source {
			opts = append(opts, EventOption{Event: t.Event, Transition: t})
		}
	}
	return opts
}
