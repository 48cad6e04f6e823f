// Package rules holds the client-side model of the remote rule-evaluation
// service: rule definitions, evaluation results, and the display ordering
// applied before rendering. Actual precedence semantics belong to the
// engine; sorting here is purely a display concern.
package rules

import (
	"sort"

	"github.com/tidwall/gjson"
)

// Rule is one rule definition as the engine reports it.
type Rule struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
	Priority int    `json:"priority"`
}

// RuleInput is the payload for creating a rule. A zero Priority is left
// off the wire so the engine applies its default.
type RuleInput struct {
	Name     string `json:"name"`
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
	Priority int    `json:"priority,omitempty"`
}

// Result is the evaluation outcome for a single rule.
type Result struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Matched  bool   `json:"matched"`
	Detail   string `json:"detail"`
}

// Evaluation is the engine's full response to an evaluate request. The
// client keeps the latest one in memory for detail toggling and discards
// it on the next request.
type Evaluation struct {
	Results      []Result `json:"results"`
	TotalRules   int      `json:"total_rules"`
	MatchedRules int      `json:"matched_rules"`
}

// Sort orders rules for display: ascending priority, ties broken by
// ascending string comparison of the id. The sort is stable and in place.
func Sort(rs []Rule) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Priority != rs[j].Priority {
			return rs[i].Priority < rs[j].Priority
		}
		return rs[i].ID < rs[j].ID
	})
}

// ParseRules decodes a rules-collection response, tolerating a missing
// rules field.
func ParseRules(data []byte) []Rule {
	root := gjson.ParseBytes(data)
	rs := make([]Rule, 0)
	for _, r := range root.Get("rules").Array() {
		rs = append(rs, parseRule(r))
	}
	return rs
}

// ParseRule decodes a single rule object, e.g. the envelope of an add
// response.
func ParseRule(data []byte, path string) Rule {
	root := gjson.ParseBytes(data)
	if path != "" {
		root = root.Get(path)
	}
	return parseRule(root)
}

func parseRule(r gjson.Result) Rule {
	return Rule{
		ID:       r.Get("id").String(),
		Name:     r.Get("name").String(),
		Field:    r.Get("field").String(),
		Operator: r.Get("operator").String(),
		Value:    r.Get("value").Value(),
		Priority: int(r.Get("priority").Int()),
	}
}

// ParseEvaluation decodes an evaluate response, tolerating missing fields.
func ParseEvaluation(data []byte) *Evaluation {
	root := gjson.ParseBytes(data)
	eval := &Evaluation{
		Results:      make([]Result, 0),
		TotalRules:   int(root.Get("total_rules").Int()),
		MatchedRules: int(root.Get("matched_rules").Int()),
	}
	for _, r := range root.Get("results").Array() {
		eval.Results = append(eval.Results, Result{
			ID:       r.Get("id").String(),
			Name:     r.Get("name").String(),
			Priority: int(r.Get("priority").Int()),
			Matched:  r.Get("matched").Bool(),
			Detail:   r.Get("detail").String(),
		})
	}
	return eval
}
