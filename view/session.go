// Package view holds the explicit session state behind the rendering
// surface: the sticky color palette, the last fetched snapshot and
// evaluation, the selected source state, and one status line per panel.
// Nothing here talks to the network directly except through the client,
// and every mutation flows through the command dispatcher so state
// changes stay at well-defined points.
package view

import (
	"context"
	"log/slog"

	"github.com/pflow-xyz/go-fsmview/client"
	"github.com/pflow-xyz/go-fsmview/fsm"
	"github.com/pflow-xyz/go-fsmview/rules"
	"github.com/pflow-xyz/go-fsmview/visualization"
)

// FSMPanel is the render model for the machine panel. EventsUnset is true
// when no source state resolves at all, which renders differently from a
// resolvable state with zero outgoing transitions.
type FSMPanel struct {
	SVG             string
	AvailableEvents []fsm.EventOption
	EventsUnset     bool
	History         []fsm.HistoryEntry
	Transitions     []fsm.Transition
	SelectedState   string
	Status          string
}

// RulesPanel is the render model for the rules panel.
type RulesPanel struct {
	Rules      []rules.Rule
	Evaluation *rules.Evaluation
	Status     string
}

// Session is the view-state object. It is confined to a single goroutine;
// the hosting shell drives it one command at a time.
type Session struct {
	client  *client.Client
	palette *visualization.Palette
	log     *slog.Logger

	snapshot    *fsm.Snapshot
	evaluation  *rules.Evaluation
	ruleRows    []rules.Rule
	selected    string
	fsmStatus   string
	rulesStatus string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger attaches a diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// NewSession creates a session bound to one service client.
func NewSession(c *client.Client, opts ...Option) *Session {
	s := &Session{
		client:  c,
		palette: visualization.NewPalette(),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshFSM fetches a fresh snapshot. On failure the prior snapshot is
// kept and only the panel status changes.
func (s *Session) RefreshFSM(ctx context.Context) FSMPanel {
	snap, err := s.client.GetSnapshot(ctx)
	if err != nil {
		s.log.Warn("snapshot fetch failed", "err", err)
		s.fsmStatus = err.Error()
		return s.FSMPanel()
	}

	s.snapshot = snap
	if s.selected != "" && !containsState(snap.States, s.selected) {
		s.selected = ""
	}
	s.palette.EnsureColors(snap.States)
	return s.FSMPanel()
}

// RefreshRules fetches the rule list. On failure the prior rows are kept
// and only the panel status changes.
func (s *Session) RefreshRules(ctx context.Context) RulesPanel {
	listed, err := s.client.GetRules(ctx)
	if err != nil {
		s.log.Warn("rules fetch failed", "err", err)
		s.rulesStatus = err.Error()
		return s.RulesPanel()
	}

	rules.Sort(listed)
	s.ruleRows = listed
	return s.RulesPanel()
}

// SelectState sets the source state for the available-events panel. An
// empty name falls back to the machine's current state.
func (s *Session) SelectState(name string) FSMPanel {
	s.selected = name
	return s.FSMPanel()
}

// FSMPanel builds the machine render model from the session's last
// snapshot without touching the network.
func (s *Session) FSMPanel() FSMPanel {
	panel := FSMPanel{
		SelectedState: s.selected,
		Status:        s.fsmStatus,
	}
	if s.snapshot == nil {
		panel.EventsUnset = true
		panel.SVG = visualization.RenderSVG(nil, s.palette)
		return panel
	}

	layout := visualization.Layout(s.snapshot.States, s.snapshot.Transitions, s.snapshot.CurrentState)
	panel.SVG = visualization.RenderSVG(layout, s.palette)
	panel.Transitions = s.snapshot.Transitions
	panel.History = fsm.FormatHistory(s.snapshot.History, fsm.HistoryDisplayLimit)

	source, ok := fsm.ResolveSource(s.selected, s.snapshot.CurrentState)
	if !ok {
		panel.EventsUnset = true
		return panel
	}
	panel.AvailableEvents = fsm.AvailableEvents(source, s.snapshot.Transitions)
	return panel
}

// RulesPanel builds the rules render model from the session's last fetch.
func (s *Session) RulesPanel() RulesPanel {
	return RulesPanel{
		Rules:      s.ruleRows,
		Evaluation: s.evaluation,
		Status:     s.rulesStatus,
	}
}

func containsState(states []string, name string) bool {
	for _, s := range states {
		if s == name {
			return true
		}
	}
	return false
}
