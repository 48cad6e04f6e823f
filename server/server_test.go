package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pflow-xyz/go-fsmview/client"
	"github.com/pflow-xyz/go-fsmview/fsm"
	"github.com/pflow-xyz/go-fsmview/rules"
)

func newTestServer(t *testing.T) (*httptest.Server, *client.Client) {
	t.Helper()
	srv := httptest.NewServer(New().Handler())
	t.Cleanup(srv.Close)
	return srv, client.New(srv.URL)
}

func TestAddTransitionAppearsOnceInSnapshot(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	added := fsm.Transition{FromState: "new", Event: "submit", ToState: "review"}
	if err := c.AddTransition(ctx, added); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}

	snap, err := c.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	count := 0
	for _, tr := range snap.Transitions {
		if tr == added {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("transition appears %d times, want 1", count)
	}
	if snap.CurrentState != "new" {
		t.Fatalf("current_state = %q, want %q", snap.CurrentState, "new")
	}
}

func TestReAddTransitionReplacesTarget(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	first := fsm.Transition{FromState: "new", Event: "submit", ToState: "review"}
	second := fsm.Transition{FromState: "new", Event: "submit", ToState: "published"}
	if err := c.AddTransition(ctx, first); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	if err := c.AddTransition(ctx, second); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}

	snap, err := c.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(snap.Transitions) != 1 {
		t.Fatalf("transitions = %v, want one entry", snap.Transitions)
	}
	if snap.Transitions[0] != second {
		t.Fatalf("transition = %+v, want %+v", snap.Transitions[0], second)
	}
}

func TestTriggerEventRoundTrip(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.AddTransition(ctx, fsm.Transition{FromState: "new", Event: "submit", ToState: "review"}); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}

	result, err := c.TriggerEvent(ctx, "submit", "")
	if err != nil {
		t.Fatalf("TriggerEvent: %v", err)
	}
	if result.FromState != "new" || result.ToState != "review" || result.CurrentState != "review" {
		t.Fatalf("result = %+v", result)
	}

	snap, err := c.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(snap.History) != 1 {
		t.Fatalf("history = %d entries, want 1", len(snap.History))
	}
	step := snap.History[0]
	if step.Seq != 1 || step.Event != "submit" || step.ToState != "review" {
		t.Fatalf("history step = %+v", step)
	}
	if step.At.IsZero() {
		t.Fatal("history step has no timestamp")
	}
}

func TestTriggerEventEngineErrors(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	_, err := c.TriggerEvent(ctx, "submit", "")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *client.APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message != "Current state is not set. Add a transition first." {
		t.Fatalf("message = %q", apiErr.Message)
	}

	if err := c.AddTransition(ctx, fsm.Transition{FromState: "new", Event: "submit", ToState: "review"}); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	_, err = c.TriggerEvent(ctx, "publish", "")
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *client.APIError", err)
	}
	if apiErr.Message != "No transition for state 'new' on event 'publish'" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestRuleLifecycle(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	rule, err := c.AddRule(ctx, rules.RuleInput{
		Name:     "premium",
		Field:    "tier",
		Operator: "==",
		Value:    "gold",
		Priority: 5,
	})
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if rule.ID == "" {
		t.Fatal("AddRule returned a rule without an id")
	}

	eval, err := c.Evaluate(ctx, map[string]any{"tier": "gold"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if eval.MatchedRules != 1 || eval.TotalRules != 1 {
		t.Fatalf("evaluation = %d/%d, want 1/1", eval.MatchedRules, eval.TotalRules)
	}

	if err := c.DeleteRule(ctx, rule.ID); err != nil {
		t.Fatalf("DeleteRule: %v", err)
	}
	listed, err := c.GetRules(ctx)
	if err != nil {
		t.Fatalf("GetRules: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("rules = %v, want empty", listed)
	}
}

func TestAddRuleValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	body := []byte(`{"field": "tier", "operator": "~="}`)
	resp, err := http.Post(srv.URL+"/api/rules", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var parsed struct {
		Detail []fieldError `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(parsed.Detail) != 2 {
		t.Fatalf("detail = %+v, want name and operator errors", parsed.Detail)
	}
	if parsed.Detail[0].Msg != "field required" {
		t.Fatalf("msg = %q", parsed.Detail[0].Msg)
	}
}

func TestAddRuleDefaultsPriority(t *testing.T) {
	_, c := newTestServer(t)

	rule, err := c.AddRule(context.Background(), rules.RuleInput{
		Name:     "r",
		Field:    "f",
		Operator: "==",
		Value:    1,
	})
	if err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	// The wire input omits priority when zero, so the default applies.
	if rule.Priority != 100 {
		t.Fatalf("priority = %d, want 100", rule.Priority)
	}
}

func TestClearTransitionsAndReset(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if err := c.AddTransition(ctx, fsm.Transition{FromState: "a", Event: "go", ToState: "b"}); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	removed, current, err := c.ClearTransitions(ctx)
	if err != nil {
		t.Fatalf("ClearTransitions: %v", err)
	}
	if removed != 1 || current != "" {
		t.Fatalf("removed = %d current = %q", removed, current)
	}

	if err := c.AddTransition(ctx, fsm.Transition{FromState: "a", Event: "go", ToState: "b"}); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	current, err = c.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if current != "" {
		t.Fatalf("current after reset = %q, want unset", current)
	}
	snap, err := c.GetSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if len(snap.States) != 0 || len(snap.Transitions) != 0 {
		t.Fatalf("snapshot after reset = %+v", snap)
	}
}

func TestTriggerWritesJournal(t *testing.T) {
	j, err := OpenJournal(":memory:")
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	defer j.Close()

	srv := httptest.NewServer(New(WithJournal(j)).Handler())
	defer srv.Close()
	c := client.New(srv.URL)
	ctx := context.Background()

	if err := c.AddTransition(ctx, fsm.Transition{FromState: "a", Event: "go", ToState: "b"}); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	if _, err := c.TriggerEvent(ctx, "go", ""); err != nil {
		t.Fatalf("TriggerEvent: %v", err)
	}
	if _, err := c.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}

	events, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("journaled events = %d, want 1", len(events))
	}
	if events[0].Event != "go" || events[0].FromState != "a" || events[0].ToState != "b" {
		t.Fatalf("event = %+v", events[0])
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
