// Package client talks to the two collaborator services: the
// rule-evaluation engine and the FSM engine. It owns request framing and
// error-body decoding only; every response is handed back as parsed model
// types for the rendering layer to consume. There is no retry, caching, or
// cancellation policy here beyond what the caller's context provides.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pflow-xyz/go-fsmview/fsm"
	"github.com/pflow-xyz/go-fsmview/rules"
)

// Client issues requests against one service base URL. Both engines are
// usually served from the same base; two Clients work just as well.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one request and returns the response body, or an *APIError for
// a non-success status. Transport failures are wrapped and are not of type
// *APIError, so callers can tell the taxonomy levels apart.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := decodeAPIError(resp.StatusCode, data)
		c.log.Debug("request failed", "method", method, "path", path,
			"status", resp.StatusCode, "detail", apiErr.Message)
		return nil, apiErr
	}

	return data, nil
}

// GetRules fetches the rule collection, in engine order.
func (c *Client) GetRules(ctx context.Context) ([]rules.Rule, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/rules", nil)
	if err != nil {
		return nil, err
	}
	return rules.ParseRules(data), nil
}

// AddRule creates a rule and returns the stored copy with its id.
func (c *Client) AddRule(ctx context.Context, input rules.RuleInput) (rules.Rule, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/rules", input)
	if err != nil {
		return rules.Rule{}, err
	}
	return rules.ParseRule(data, "rule"), nil
}

// DeleteRule removes a rule by id.
func (c *Client) DeleteRule(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/rules/"+id, nil)
	return err
}

// Evaluate submits facts and returns the engine's per-rule results.
func (c *Client) Evaluate(ctx context.Context, facts map[string]any) (*rules.Evaluation, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/evaluate", map[string]any{"facts": facts})
	if err != nil {
		return nil, err
	}
	return rules.ParseEvaluation(data), nil
}

// GetSnapshot fetches the machine's full state.
func (c *Client) GetSnapshot(ctx context.Context) (*fsm.Snapshot, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/fsm", nil)
	if err != nil {
		return nil, err
	}
	return fsm.ParseSnapshot(data)
}

// TriggerEvent asks the engine to apply an event. fromState may be empty
// to use the machine's current state.
func (c *Client) TriggerEvent(ctx context.Context, event, fromState string) (*fsm.EventResult, error) {
	payload := map[string]any{"event": event}
	if fromState != "" {
		payload["from_state"] = fromState
	}
	data, err := c.do(ctx, http.MethodPost, "/api/fsm/event", payload)
	if err != nil {
		return nil, err
	}
	var result fsm.EventResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode event result: %w", err)
	}
	return &result, nil
}

// AddTransition registers a transition with the engine.
func (c *Client) AddTransition(ctx context.Context, t fsm.Transition) error {
	_, err := c.do(ctx, http.MethodPost, "/api/fsm/transitions", t)
	return err
}

// DeleteTransition removes the transition keyed by (fromState, event) and
// returns the removed edge.
func (c *Client) DeleteTransition(ctx context.Context, fromState, event string) (fsm.Transition, error) {
	payload := map[string]any{"from_state": fromState, "event": event}
	data, err := c.do(ctx, http.MethodDelete, "/api/fsm/transitions", payload)
	if err != nil {
		return fsm.Transition{}, err
	}
	t := gjson.GetBytes(data, "transition")
	return fsm.Transition{
		FromState: t.Get("from_state").String(),
		Event:     t.Get("event").String(),
		ToState:   t.Get("to_state").String(),
	}, nil
}

// ClearTransitions wipes the whole transition set. It reports how many
// transitions were removed and the machine's current state afterwards.
func (c *Client) ClearTransitions(ctx context.Context) (removed int, current string, err error) {
	data, err := c.do(ctx, http.MethodDelete, "/api/fsm/transitions/all", nil)
	if err != nil {
		return 0, "", err
	}
	root := gjson.ParseBytes(data)
	return int(root.Get("removed_transitions").Int()), root.Get("current_state").String(), nil
}

// ClearHistory wipes the machine's history and reports how many steps were
// removed.
func (c *Client) ClearHistory(ctx context.Context) (removed int, err error) {
	data, err := c.do(ctx, http.MethodDelete, "/api/fsm/history", nil)
	if err != nil {
		return 0, err
	}
	return int(gjson.GetBytes(data, "removed_history").Int()), nil
}

// Reset wipes the whole machine and returns its (now unset) current state.
func (c *Client) Reset(ctx context.Context) (current string, err error) {
	data, err := c.do(ctx, http.MethodPost, "/api/fsm/reset", nil)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(data, "current_state").String(), nil
}
