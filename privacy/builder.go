package privacy

import (
	"fmt"

	"github.com/openbid/broker/config"
	"github.com/openbid/broker/gdpr"
	"github.com/openbid/broker/privacy/ccpa"
	"github.com/openbid/broker/privacy/customlogic"
	"github.com/openbid/broker/privacy/gpp"
	"github.com/openbid/broker/privacy/usnat"
)

// Signals carries the decoded per-request consent state the law rules
// evaluate against. All fields are optional.
type Signals struct {
	USPrivacy ccpa.Policy
	// GPP is the raw GPP signal, consulted for section applicability when no
	// pre-parsed SID list is supplied.
	GPP gpp.Policy
	// GPPSIDs are the applicable section ids signalled with the GPP string.
	GPPSIDs []int8
	// USNat is the decoded US-National section, nil when not signalled.
	USNat usnat.Reader
	// GDPRActions are the frozen per-bidder enforcement actions from the
	// TCF2 vendor-permission resolution pass.
	GDPRActions map[string]gdpr.PrivacyEnforcementAction
	// RequestAttributes feed the account's custom logic expressions.
	RequestAttributes map[string]interface{}
}

// NewActivityControl builds the per-request activity plans: publisher rules
// first, then the privacy-law rules, in that priority order. Configuration
// errors (malformed custom logic, unknown activity names) fail here, at
// build time.
func NewActivityControl(cfg *config.AccountPrivacy, signals Signals) (ActivityControl, error) {
	plans := make(map[Activity]ActivityPlan, 8)

	var allow *config.AllowActivities
	if cfg != nil {
		allow = cfg.AllowActivities
	}

	for _, activity := range Activities() {
		plans[activity] = buildPlan(activityConfig(allow, activity))
	}

	if cfg != nil {
		if err := appendLawRules(plans, cfg, signals); err != nil {
			return ActivityControl{}, err
		}
	}

	return ActivityControl{plans: plans}, nil
}

func buildPlan(activity config.Activity) ActivityPlan {
	return ActivityPlan{
		rules:         cfgToRules(activity.Rules),
		defaultResult: cfgToDefaultResult(activity.Default),
	}
}

func activityConfig(allow *config.AllowActivities, activity Activity) config.Activity {
	if allow == nil {
		return config.Activity{}
	}

	switch activity {
	case ActivitySyncUser:
		return allow.SyncUser
	case ActivityCallBidder:
		return allow.CallBidder
	case ActivityModifyUserFPD:
		return allow.ModifyUfpd
	case ActivityTransmitEIDs:
		return allow.TransmitEids
	case ActivityTransmitUserFPD:
		return allow.TransmitUfpd
	case ActivityTransmitPreciseGeo:
		return allow.TransmitPreciseGeo
	case ActivityReportAnalytics:
		return allow.ReportAnalytics
	}

	return config.Activity{}
}

func cfgToRules(rules []config.ActivityRule) []Rule {
	var enfRules []Rule

	for _, r := range rules {
		er := NewConditionRule(r.Allow, r.Condition.ComponentName, r.Condition.ComponentType)
		enfRules = append(enfRules, er)
	}
	return enfRules
}

func cfgToDefaultResult(activityDefault *bool) bool {
	if activityDefault == nil {
		return defaultActivityResult
	}
	return *activityDefault
}

func appendLawRules(plans map[Activity]ActivityPlan, cfg *config.AccountPrivacy, signals Signals) error {
	appendUSPrivacyRules(plans, signals)
	appendUSNatRules(plans, cfg.USNat, signals)
	appendGDPRRules(plans, signals)
	return appendCustomLogicRules(plans, cfg.CustomLogic, signals)
}

func appendUSPrivacyRules(plans map[Activity]ActivityPlan, signals Signals) {
	if !signals.USPrivacy.Enforced() {
		return
	}

	rule := usPrivacyRule{policy: signals.USPrivacy}
	for _, activity := range []Activity{
		ActivitySyncUser,
		ActivityTransmitEIDs,
		ActivityTransmitUserFPD,
		ActivityTransmitPreciseGeo,
	} {
		appendRule(plans, activity, rule)
	}
}

func appendUSNatRules(plans map[Activity]ActivityPlan, cfg config.AccountUSNat, signals Signals) {
	if !cfg.Enabled || signals.USNat == nil {
		return
	}
	if !usnatApplies(cfg, signals) {
		return
	}

	strategies := map[Activity]usnat.Strategy{
		ActivitySyncUser:           usnat.NewSyncUserStrategy(),
		ActivityModifyUserFPD:      usnat.NewModifyUserFPDStrategy(),
		ActivityTransmitUserFPD:    usnat.NewTransmitUserFPDStrategy(),
		ActivityTransmitPreciseGeo: usnat.NewTransmitGeoStrategy(),
		// the law does not restrict these
		ActivityCallBidder:      usnat.NewDefaultStrategy(),
		ActivityReportAnalytics: usnat.NewDefaultStrategy(),
	}

	for activity, strategy := range strategies {
		appendRule(plans, activity, usNatRule{strategy: strategy, reader: signals.USNat})
	}
}

// usnatApplies prefers the pre-parsed SID list; without one, the consent
// container itself decides whether the US-National section is signalled.
func usnatApplies(cfg config.AccountUSNat, signals Signals) bool {
	if len(signals.GPPSIDs) > 0 {
		return usnat.Applies(signals.GPPSIDs, cfg.SkipSIDs)
	}
	if gpp.IsSIDInList(cfg.SkipSIDs, usnat.SectionID) {
		return false
	}
	return signals.GPP.SectionSignalled(usnat.SectionID)
}

func appendGDPRRules(plans map[Activity]ActivityPlan, signals Signals) {
	if signals.GDPRActions == nil {
		return
	}

	appendRule(plans, ActivityCallBidder, enforcementActionRule{
		actions: signals.GDPRActions,
		denies:  gdpr.PrivacyEnforcementAction.BlockBidderRequest,
	})
	appendRule(plans, ActivityReportAnalytics, enforcementActionRule{
		actions: signals.GDPRActions,
		denies:  gdpr.PrivacyEnforcementAction.BlockAnalyticsReport,
	})
	appendRule(plans, ActivityTransmitPreciseGeo, enforcementActionRule{
		actions: signals.GDPRActions,
		denies:  gdpr.PrivacyEnforcementAction.MaskGeo,
	})
}

func appendCustomLogicRules(plans map[Activity]ActivityPlan, cfgs []config.AccountCustomLogic, signals Signals) error {
	for i, cfg := range cfgs {
		if !customLogicApplies(cfg.SIDs, signals.GPPSIDs) {
			continue
		}

		evaluator, err := customlogic.New(cfg.RestrictIfTrue)
		if err != nil {
			return fmt.Errorf("privacy.customlogic[%d]: %w", i, err)
		}

		rule := customLogicRule{evaluator: evaluator, attributes: signals.RequestAttributes}
		for _, name := range cfg.Activities {
			activity, err := ParseActivity(name)
			if err != nil {
				return fmt.Errorf("privacy.customlogic[%d]: %w", i, err)
			}
			appendRule(plans, activity, rule)
		}
	}
	return nil
}

func customLogicApplies(ruleSIDs, signalledSIDs []int8) bool {
	if len(ruleSIDs) == 0 {
		return true
	}
	for _, sid := range ruleSIDs {
		for _, signalled := range signalledSIDs {
			if sid == signalled {
				return true
			}
		}
	}
	return false
}

func appendRule(plans map[Activity]ActivityPlan, activity Activity, rule Rule) {
	plan := plans[activity]
	plan.rules = append(plan.rules, rule)
	plans[activity] = plan
}
