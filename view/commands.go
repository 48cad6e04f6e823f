package view

import (
	"context"
	"fmt"

	"github.com/pflow-xyz/go-fsmview/fsm"
	"github.com/pflow-xyz/go-fsmview/rules"
)

// Command names a discrete user intent. The hosting shell maps its own
// input events onto these and calls Dispatch.
type Command string

const (
	CmdAddRule          Command = "add-rule"
	CmdDeleteRule       Command = "delete-rule"
	CmdEvaluate         Command = "evaluate"
	CmdAddTransition    Command = "add-transition"
	CmdDeleteTransition Command = "delete-transition"
	CmdClearTransitions Command = "clear-transitions"
	CmdClearHistory     Command = "clear-history"
	CmdTriggerEvent     Command = "trigger-event"
	CmdReset            Command = "reset"
)

// Input carries the arguments of a command; each handler reads only the
// fields it needs.
type Input struct {
	Rule       rules.RuleInput
	RuleID     string
	Facts      map[string]any
	Transition fsm.Transition
	Event      string
	FromState  string
}

type handler func(*Session, context.Context, Input)

// commandHandlers is the dispatch table. A command that validates locally
// issues exactly one request and, only on success, re-fetches the panel
// it affects. Failures touch nothing but the panel status.
var commandHandlers = map[Command]handler{
	CmdAddRule:          (*Session).addRule,
	CmdDeleteRule:       (*Session).deleteRule,
	CmdEvaluate:         (*Session).evaluate,
	CmdAddTransition:    (*Session).addTransition,
	CmdDeleteTransition: (*Session).deleteTransition,
	CmdClearTransitions: (*Session).clearTransitions,
	CmdClearHistory:     (*Session).clearHistory,
	CmdTriggerEvent:     (*Session).triggerEvent,
	CmdReset:            (*Session).resetMachine,
}

// Dispatch runs one command against the session and reports whether the
// command was known. Outcomes land in the panel render models.
func (s *Session) Dispatch(ctx context.Context, cmd Command, in Input) bool {
	h, ok := commandHandlers[cmd]
	if !ok {
		return false
	}
	h(s, ctx, in)
	return true
}

func (s *Session) addRule(ctx context.Context, in Input) {
	if in.Rule.Name == "" || in.Rule.Field == "" || in.Rule.Operator == "" {
		s.rulesStatus = "name, field, and operator are required"
		return
	}
	rule, err := s.client.AddRule(ctx, in.Rule)
	if err != nil {
		s.rulesStatus = err.Error()
		return
	}
	s.rulesStatus = fmt.Sprintf("Rule %q added", rule.Name)
	s.RefreshRules(ctx)
}

func (s *Session) deleteRule(ctx context.Context, in Input) {
	if in.RuleID == "" {
		s.rulesStatus = "rule id is required"
		return
	}
	if err := s.client.DeleteRule(ctx, in.RuleID); err != nil {
		s.rulesStatus = err.Error()
		return
	}
	s.rulesStatus = "Rule deleted"
	s.RefreshRules(ctx)
}

func (s *Session) evaluate(ctx context.Context, in Input) {
	if in.Facts == nil {
		s.rulesStatus = "facts are required"
		return
	}
	eval, err := s.client.Evaluate(ctx, in.Facts)
	if err != nil {
		s.rulesStatus = err.Error()
		return
	}
	s.evaluation = eval
	s.rulesStatus = fmt.Sprintf("%d of %d rules matched", eval.MatchedRules, eval.TotalRules)
}

func (s *Session) addTransition(ctx context.Context, in Input) {
	t := in.Transition
	if t.FromState == "" || t.Event == "" || t.ToState == "" {
		s.fsmStatus = "from_state, event, and to_state are required"
		return
	}
	if err := s.client.AddTransition(ctx, t); err != nil {
		s.fsmStatus = err.Error()
		return
	}
	s.fsmStatus = fmt.Sprintf("Transition %s -[%s]-> %s added", t.FromState, t.Event, t.ToState)
	s.RefreshFSM(ctx)
}

func (s *Session) deleteTransition(ctx context.Context, in Input) {
	t := in.Transition
	if t.FromState == "" || t.Event == "" {
		s.fsmStatus = "from_state and event are required"
		return
	}
	removed, err := s.client.DeleteTransition(ctx, t.FromState, t.Event)
	if err != nil {
		s.fsmStatus = err.Error()
		return
	}
	s.fsmStatus = fmt.Sprintf("Transition %s -[%s]-> %s deleted", removed.FromState, removed.Event, removed.ToState)
	s.RefreshFSM(ctx)
}

func (s *Session) clearTransitions(ctx context.Context, _ Input) {
	removed, _, err := s.client.ClearTransitions(ctx)
	if err != nil {
		s.fsmStatus = err.Error()
		return
	}
	// Color identity is relative to the transition graph; a wiped graph
	// starts color assignment over.
	s.palette.Reset()
	s.fsmStatus = fmt.Sprintf("%d transitions removed", removed)
	s.RefreshFSM(ctx)
}

func (s *Session) clearHistory(ctx context.Context, _ Input) {
	removed, err := s.client.ClearHistory(ctx)
	if err != nil {
		s.fsmStatus = err.Error()
		return
	}
	s.fsmStatus = fmt.Sprintf("%d history entries removed", removed)
	s.RefreshFSM(ctx)
}

func (s *Session) triggerEvent(ctx context.Context, in Input) {
	if in.Event == "" {
		s.fsmStatus = "event is required"
		return
	}
	result, err := s.client.TriggerEvent(ctx, in.Event, in.FromState)
	if err != nil {
		s.fsmStatus = err.Error()
		return
	}
	s.fsmStatus = fmt.Sprintf("%s -[%s]-> %s", result.FromState, result.Event, result.ToState)
	s.RefreshFSM(ctx)
}

func (s *Session) resetMachine(ctx context.Context, _ Input) {
	if _, err := s.client.Reset(ctx); err != nil {
		s.fsmStatus = err.Error()
		return
	}
	s.palette.Reset()
	s.selected = ""
	s.fsmStatus = "Machine reset"
	s.RefreshFSM(ctx)
}
