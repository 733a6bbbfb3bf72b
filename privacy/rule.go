package privacy

import (
	"strings"
)

// ActivityResult is the verdict of a single rule. Abstain means the rule
// does not match the target and the next rule decides.
type ActivityResult int

const (
	ActivityAbstain ActivityResult = iota
	ActivityAllow
	ActivityDeny
)

// Rule is the one contract every restriction implements, whether it comes
// from publisher config or from a privacy-law strategy. Evaluation must be
// side-effect free: the same target always produces the same result.
type Rule interface {
	Evaluate(target Component) ActivityResult
}

// ConditionRule is a publisher-configured allow or deny list matched on
// component type and name. Empty clauses match everything.
type ConditionRule struct {
	result        ActivityResult
	componentName []string
	componentType []string
}

func NewConditionRule(allow bool, componentName, componentType []string) ConditionRule {
	result := ActivityDeny
	if allow {
		result = ActivityAllow
	}
	return ConditionRule{
		result:        result,
		componentName: componentName,
		componentType: componentType,
	}
}

func (r ConditionRule) Evaluate(target Component) ActivityResult {
	if matched := evaluateComponentName(target, r.componentName); !matched {
		return ActivityAbstain
	}

	if matched := evaluateComponentType(target, r.componentType); !matched {
		return ActivityAbstain
	}

	return r.result
}

func evaluateComponentName(target Component, componentNames []string) bool {
	// no clauses are considered a match
	if len(componentNames) == 0 {
		return true
	}

	// if there are clauses, at least one needs to match
	for _, n := range componentNames {
		if target.MatchesName(n) {
			return true
		}
	}

	return false
}

func evaluateComponentType(target Component, componentTypes []string) bool {
	// no clauses are considered a match
	if len(componentTypes) == 0 {
		return true
	}

	// if there are clauses, at least one needs to match
	for _, s := range componentTypes {
		if strings.EqualFold(s, target.Type) {
			return true
		}
	}

	return false
}
