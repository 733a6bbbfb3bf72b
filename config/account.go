package config

import (
	"encoding/json"
	"fmt"
)

// Account represents a publisher account configuration.
type Account struct {
	ID       string         `mapstructure:"id" json:"id"`
	Disabled bool           `mapstructure:"disabled" json:"disabled"`
	Privacy  AccountPrivacy `mapstructure:"privacy" json:"privacy"`
	Hooks    AccountHooks   `mapstructure:"hooks" json:"hooks"`
}

// AccountHooks represents account-specific hooks configuration.
type AccountHooks struct {
	// Modules holds the account-level module config rewrites, format: map[module_code]json_config.
	Modules AccountModules `mapstructure:"modules" json:"modules"`
	// ExecutionPlan fully replaces the host's default account execution plan when defined.
	ExecutionPlan HookExecutionPlan `mapstructure:"execution_plan" json:"execution_plan"`
}

type AccountModules map[string]json.RawMessage

// ModuleConfig returns the account-level module config for the module
// specified in the format "vendor.module_name", nil if not defined.
func (m AccountModules) ModuleConfig(id string) json.RawMessage {
	return m[id]
}

// AccountPrivacy holds the privacy-law modules enabled for the account
// along with the publisher-configured activity rules.
type AccountPrivacy struct {
	AllowActivities *AllowActivities     `mapstructure:"allowactivities" json:"allowactivities"`
	GDPR            AccountGDPR          `mapstructure:"gdpr" json:"gdpr"`
	USNat           AccountUSNat         `mapstructure:"usnat" json:"usnat"`
	CustomLogic     []AccountCustomLogic `mapstructure:"customlogic" json:"customlogic"`
}

// AllowActivities defines the publisher-configured rule lists, one per activity.
type AllowActivities struct {
	SyncUser           Activity `mapstructure:"syncUser" json:"syncUser"`
	CallBidder         Activity `mapstructure:"callBidder" json:"callBidder"`
	ModifyUfpd         Activity `mapstructure:"modifyUfpd" json:"modifyUfpd"`
	TransmitEids       Activity `mapstructure:"transmitEids" json:"transmitEids"`
	TransmitUfpd       Activity `mapstructure:"transmitUfpd" json:"transmitUfpd"`
	TransmitPreciseGeo Activity `mapstructure:"transmitPreciseGeo" json:"transmitPreciseGeo"`
	ReportAnalytics    Activity `mapstructure:"reportAnalytics" json:"reportAnalytics"`
}

type Activity struct {
	// Default is the fallback result when no rule matches. Unset means allow.
	Default *bool          `mapstructure:"default" json:"default"`
	Rules   []ActivityRule `mapstructure:"rules" json:"rules"`
}

// ActivityRule evaluates in list order, the first matching rule wins.
type ActivityRule struct {
	Condition ActivityCondition `mapstructure:"condition" json:"condition"`
	Allow     bool              `mapstructure:"allow" json:"allow"`
}

type ActivityCondition struct {
	ComponentName []string `mapstructure:"componentName" json:"componentName"`
	ComponentType []string `mapstructure:"componentType" json:"componentType"`
}

const (
	// TCF2BasicTypeStrategy requires purpose consent and, with vendor enforcement on, vendor consent.
	TCF2BasicTypeStrategy = "basic"
	// TCF2NoTypeStrategy lets vendor enforcement alone decide, purpose consent is not separately required.
	TCF2NoTypeStrategy = "no_type"
)

type AccountGDPR struct {
	Enabled        *bool  `mapstructure:"enabled" json:"enabled,omitempty"`
	EnforceAlgo    string `mapstructure:"enforce_algo" json:"enforce_algo,omitempty"`
	EnforceVendors *bool  `mapstructure:"enforce_vendors" json:"enforce_vendors,omitempty"`
	// SpecialFeature1 controls precise geo and device IP masking.
	SpecialFeature1 AccountGDPRSpecialFeature `mapstructure:"special_feature1" json:"special_feature1"`
}

type AccountGDPRSpecialFeature struct {
	Enforce *bool `mapstructure:"enforce" json:"enforce,omitempty"`
	// VendorExceptions lists bidder names exempt from masking when the user has not opted in.
	VendorExceptions []string `mapstructure:"vendor_exceptions" json:"vendor_exceptions"`
}

type AccountUSNat struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// SkipSIDs lists GPP section ids the account opts out of enforcing.
	SkipSIDs []int8 `mapstructure:"skip_sids" json:"skip_sids"`
}

// AccountCustomLogic is a publisher-defined json-logic restriction evaluated
// against request attributes for the named activities.
type AccountCustomLogic struct {
	Activities []string `mapstructure:"activities" json:"activities"`
	// SIDs limits the restriction to requests signalling one of these GPP sections.
	// Empty means the restriction applies regardless of GPP signals.
	SIDs []int8 `mapstructure:"sids" json:"sids"`
	// RestrictIfTrue holds the json-logic expression. A truthy result denies the activity.
	RestrictIfTrue json.RawMessage `mapstructure:"restrict_if_true" json:"restrict_if_true"`
}

func (a *Account) validate(errs []error) []error {
	if algo := a.Privacy.GDPR.EnforceAlgo; algo != "" && algo != TCF2BasicTypeStrategy && algo != TCF2NoTypeStrategy {
		errs = append(errs, fmt.Errorf("account %s: privacy.gdpr.enforce_algo must be %q or %q", a.ID, TCF2BasicTypeStrategy, TCF2NoTypeStrategy))
	}
	errs = a.Hooks.ExecutionPlan.validate(fmt.Sprintf("account %s: hooks.execution_plan", a.ID), errs)
	return errs
}

// Validate fails fast on account configuration errors. It is called when the
// account is first parsed, not at decision time.
func (a *Account) Validate() []error {
	return a.validate(nil)
}
