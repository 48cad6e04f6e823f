// Package server is an in-process implementation of the two collaborator
// services the rendering client consumes: a rule-evaluation engine and an
// FSM engine, behind their documented HTTP contract. It exists so the demo
// command and the end-to-end tests have a real counterpart; the rendering
// layer itself never depends on this package.
//
// Re-adding a transition whose (from_state, event) key already exists
// REPLACES the previous target. The state set is always derived from the
// transition table, and the current state falls back to the smallest state
// name when its own state disappears.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pflow-xyz/go-fsmview/rules"
)

// Server holds both engines behind one handler. All state is guarded by a
// single mutex; the engines are small enough that finer locking buys
// nothing.
type Server struct {
	mu      sync.Mutex
	store   ruleStore
	machine *machine
	journal *Journal
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a request/diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithJournal records every applied event in a durable journal.
func WithJournal(j *Journal) Option {
	return func(s *Server) { s.journal = j }
}

// New creates a server with empty engines, so the machine can be built up
// from scratch through the API.
func New(opts ...Option) *Server {
	s := &Server{
		machine: newMachine(),
		log:     slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP surface for both engines.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/health", s.handleHealth)

	r.Get("/api/rules", s.handleListRules)
	r.Post("/api/rules", s.handleAddRule)
	r.Delete("/api/rules/{id}", s.handleDeleteRule)
	r.Post("/api/evaluate", s.handleEvaluate)

	r.Get("/api/fsm", s.handleSnapshot)
	r.Post("/api/fsm/event", s.handleTrigger)
	r.Post("/api/fsm/transitions", s.handleAddTransition)
	r.Delete("/api/fsm/transitions", s.handleDeleteTransition)
	r.Delete("/api/fsm/transitions/all", s.handleClearTransitions)
	r.Delete("/api/fsm/history", s.handleClearHistory)
	r.Post("/api/fsm/reset", s.handleReset)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "rule-based-model-system",
	})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sorted := s.store.sorted()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"rules": sorted})
}

// ruleInputBody decodes a rule payload; Priority is a pointer so an absent
// field can take the documented default of 100.
type ruleInputBody struct {
	Name     string `json:"name"`
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
	Priority *int   `json:"priority"`
}

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	var body ruleInputBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var invalid []fieldError
	if body.Name == "" {
		invalid = append(invalid, requiredField("name"))
	}
	if body.Field == "" {
		invalid = append(invalid, requiredField("field"))
	}
	if _, ok := operatorExpr[body.Operator]; !ok {
		invalid = append(invalid, fieldError{
			Loc: []string{"body", "operator"},
			Msg: "string does not match pattern '^(==|!=|>|<|>=|<=|contains|in)$'",
		})
	}
	if len(invalid) > 0 {
		writeValidation(w, invalid)
		return
	}

	priority := 100
	if body.Priority != nil {
		priority = *body.Priority
	}

	s.mu.Lock()
	rule := s.store.add(rules.RuleInput{
		Name:     body.Name,
		Field:    body.Field,
		Operator: body.Operator,
		Value:    body.Value,
		Priority: priority,
	})
	s.mu.Unlock()

	s.log.Info("rule added", "id", rule.ID, "name", rule.Name)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Rule added", "rule": rule})
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	rule, ok := s.store.delete(id)
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Rule not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Rule deleted", "rule": rule})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Facts map[string]any `json:"facts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if body.Facts == nil {
		writeValidation(w, []fieldError{requiredField("facts")})
		return
	}

	s.mu.Lock()
	eval := s.store.evaluate(body.Facts)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, eval)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"states":        s.machine.states(),
		"current_state": nullable(s.machine.current),
		"transitions":   s.machine.sortedTransitions(),
		"history":       s.machine.recentHistory(),
	})
}

type transitionBody struct {
	FromState string `json:"from_state"`
	Event     string `json:"event"`
	ToState   string `json:"to_state"`
}

func (s *Server) handleAddTransition(w http.ResponseWriter, r *http.Request) {
	var body transitionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var invalid []fieldError
	if body.FromState == "" {
		invalid = append(invalid, requiredField("from_state"))
	}
	if body.Event == "" {
		invalid = append(invalid, requiredField("event"))
	}
	if body.ToState == "" {
		invalid = append(invalid, requiredField("to_state"))
	}
	if len(invalid) > 0 {
		writeValidation(w, invalid)
		return
	}

	s.mu.Lock()
	s.machine.addTransition(body.FromState, body.Event, body.ToState)
	s.mu.Unlock()

	s.log.Info("transition added", "from", body.FromState, "event", body.Event, "to", body.ToState)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Transition added", "transition": body})
}

func (s *Server) handleDeleteTransition(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FromState string `json:"from_state"`
		Event     string `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var invalid []fieldError
	if body.FromState == "" {
		invalid = append(invalid, requiredField("from_state"))
	}
	if body.Event == "" {
		invalid = append(invalid, requiredField("event"))
	}
	if len(invalid) > 0 {
		writeValidation(w, invalid)
		return
	}

	s.mu.Lock()
	to, ok := s.machine.deleteTransition(body.FromState, body.Event)
	current := s.machine.current
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Transition not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Transition deleted",
		"transition": transitionBody{
			FromState: body.FromState,
			Event:     body.Event,
			ToState:   to,
		},
		"current_state": nullable(current),
	})
}

func (s *Server) handleClearTransitions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	removed := s.machine.clearTransitions()
	current := s.machine.current
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message":             "All transitions deleted",
		"removed_transitions": removed,
		"current_state":       nullable(current),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	removed := s.machine.clearHistory()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "FSM history cleared",
		"removed_history": removed,
	})
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Event     string `json:"event"`
		FromState string `json:"from_state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if body.Event == "" {
		writeValidation(w, []fieldError{requiredField("event")})
		return
	}

	s.mu.Lock()
	result, engErr := s.machine.trigger(body.Event, body.FromState, s.now())
	var seq int
	if engErr == nil {
		seq = s.machine.seq
	}
	s.mu.Unlock()

	if engErr != nil {
		writeDetail(w, engErr.status, engErr.detail)
		return
	}

	if s.journal != nil {
		err := s.journal.Record(AppliedEvent{
			Seq:       seq,
			FromState: result.FromState,
			ToState:   result.ToState,
			Event:     result.Event,
			At:        s.now(),
		})
		if err != nil {
			s.log.Warn("journal write failed", "err", err)
		}
	}

	s.log.Info("event applied", "from", result.FromState, "event", result.Event, "to", result.ToState)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Transition applied",
		"from_state":    result.FromState,
		"to_state":      result.ToState,
		"event":         result.Event,
		"current_state": result.CurrentState,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.machine.reset()
	s.mu.Unlock()

	s.log.Info("machine reset")
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "FSM reset",
		"current_state": nil,
	})
}

// --- response helpers ---

// fieldError is one entry of a structured validation error body.
type fieldError struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

func requiredField(name string) fieldError {
	return fieldError{Loc: []string{"body", name}, Msg: "field required"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, errs []fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": errs})
}

// nullable maps the unset state to JSON null, matching the wire contract.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
