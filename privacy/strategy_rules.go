package privacy

import (
	"github.com/golang/glog"

	"github.com/openbid/broker/gdpr"
	"github.com/openbid/broker/privacy/ccpa"
	"github.com/openbid/broker/privacy/customlogic"
	"github.com/openbid/broker/privacy/usnat"
)

// The adapters below wrap each privacy-law strategy in the Rule contract so
// the activity control treats legally-driven restrictions identically to
// publisher-configured lists. There is exactly one evaluation path; which
// law produced a verdict is a matter of which rule matched.

type usPrivacyRule struct {
	policy ccpa.Policy
}

func (r usPrivacyRule) Evaluate(target Component) ActivityResult {
	if r.policy.ShouldEnforce(target.Name) {
		return ActivityDeny
	}
	return ActivityAbstain
}

type usNatRule struct {
	strategy usnat.Strategy
	reader   usnat.Reader
}

func (r usNatRule) Evaluate(Component) ActivityResult {
	if r.strategy.Restricted(r.reader) {
		return ActivityDeny
	}
	return ActivityAbstain
}

type customLogicRule struct {
	evaluator  *customlogic.Evaluator
	attributes map[string]interface{}
}

func (r customLogicRule) Evaluate(Component) ActivityResult {
	restrict, err := r.evaluator.Restrict(r.attributes)
	if err != nil {
		glog.Warningf("custom logic rule evaluation failed: %v", err)
		return ActivityAbstain
	}
	if restrict {
		return ActivityDeny
	}
	return ActivityAbstain
}

type enforcementActionRule struct {
	actions map[string]gdpr.PrivacyEnforcementAction
	denies  func(gdpr.PrivacyEnforcementAction) bool
}

func (r enforcementActionRule) Evaluate(target Component) ActivityResult {
	action, ok := r.actions[target.Name]
	if !ok {
		return ActivityAbstain
	}
	if r.denies(action) {
		return ActivityDeny
	}
	return ActivityAbstain
}
