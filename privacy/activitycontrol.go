package privacy

// defaultActivityResult is the designed no-match outcome: allowed.
const defaultActivityResult = true

// ActivityControl answers "is this activity allowed for this component".
// It is built once per request (or per account config load) and is read-only
// afterwards, so it is safe to query concurrently from multiple stages.
type ActivityControl struct {
	plans map[Activity]ActivityPlan
}

// Allow evaluates the plan registered for the activity. An activity without
// a plan is allowed.
func (e ActivityControl) Allow(activity Activity, target Component) bool {
	plan, planDefined := e.plans[activity]

	if !planDefined {
		return defaultActivityResult
	}

	return plan.Evaluate(target)
}

// ActivityPlan holds the rules for one activity in priority order.
// Priority is registration order, the first non-abstaining rule wins.
type ActivityPlan struct {
	defaultResult bool
	rules         []Rule
}

func (p ActivityPlan) Evaluate(target Component) bool {
	for _, rule := range p.rules {
		result := rule.Evaluate(target)
		if result == ActivityDeny || result == ActivityAllow {
			return result == ActivityAllow
		}
	}
	return p.defaultResult
}
