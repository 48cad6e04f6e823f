package server

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"

	"github.com/pflow-xyz/go-fsmview/rules"
)

// operatorExpr maps each supported rule operator to the expression
// evaluated against {left: fact value, value: rule value}.
var operatorExpr = map[string]string{
	"==":       "left == value",
	"!=":       "left != value",
	">":        "left > value",
	"<":        "left < value",
	">=":       "left >= value",
	"<=":       "left <= value",
	"contains": "left contains value",
	"in":       "left in value",
}

// ruleStore is the in-memory rule collection.
type ruleStore struct {
	rules []rules.Rule
}

func (s *ruleStore) add(input rules.RuleInput) rules.Rule {
	rule := rules.Rule{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Field:    input.Field,
		Operator: input.Operator,
		Value:    input.Value,
		Priority: input.Priority,
	}
	s.rules = append(s.rules, rule)
	return rule
}

func (s *ruleStore) delete(id string) (rules.Rule, bool) {
	for i, rule := range s.rules {
		if rule.ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return rule, true
		}
	}
	return rules.Rule{}, false
}

// sorted returns the collection in display order (priority, then id).
func (s *ruleStore) sorted() []rules.Rule {
	out := make([]rules.Rule, len(s.rules))
	copy(out, s.rules)
	rules.Sort(out)
	return out
}

// evaluate runs every rule against the facts in priority order.
func (s *ruleStore) evaluate(facts map[string]any) *rules.Evaluation {
	ordered := s.sorted()
	eval := &rules.Evaluation{
		Results:    make([]rules.Result, 0, len(ordered)),
		TotalRules: len(ordered),
	}
	for _, rule := range ordered {
		matched, detail := evaluateRule(rule, facts)
		if matched {
			eval.MatchedRules++
		}
		eval.Results = append(eval.Results, rules.Result{
			ID:       rule.ID,
			Name:     rule.Name,
			Priority: rule.Priority,
			Matched:  matched,
			Detail:   detail,
		})
	}
	return eval
}

// evaluateRule applies one rule to the facts. Evaluation failures (absent
// operands with no defined comparison, type mismatches) are reported in
// the detail string, never as request errors.
func evaluateRule(rule rules.Rule, facts map[string]any) (bool, string) {
	src, ok := operatorExpr[rule.Operator]
	if !ok {
		return false, fmt.Sprintf("Error evaluating '%s': unsupported operator: %s",
			rule.Name, rule.Operator)
	}

	left := facts[rule.Field]

	// Membership against a missing operand is false, not an error.
	if rule.Operator == "contains" && left == nil {
		return false, describe(rule, false)
	}
	if rule.Operator == "in" && rule.Value == nil {
		return false, describe(rule, false)
	}

	env := map[string]any{"left": left, "value": rule.Value}
	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return false, fmt.Sprintf("Error evaluating '%s': %v", rule.Name, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Sprintf("Error evaluating '%s': %v", rule.Name, err)
	}

	matched := out == true
	return matched, describe(rule, matched)
}

func describe(rule rules.Rule, matched bool) string {
	return fmt.Sprintf("%s %s %v -> %v", rule.Field, rule.Operator, rule.Value, matched)
}
