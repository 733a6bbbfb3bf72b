package config

import (
	"fmt"
)

type Hooks struct {
	Enabled bool    `mapstructure:"enabled"`
	Modules Modules `mapstructure:"modules"`
	// HostExecutionPlan defines the hook execution plan enforced by the host company.
	HostExecutionPlan HookExecutionPlan `mapstructure:"host_execution_plan"`
	// DefaultAccountExecutionPlan is used for accounts that don't define their own execution plan.
	DefaultAccountExecutionPlan HookExecutionPlan `mapstructure:"default_account_execution_plan"`
}

// Modules mapping provides module specific configuration, format: map[vendor_name]map[module_name]interface{}
// actual configuration parsing performed by modules
type Modules map[string]map[string]interface{}

type HookExecutionPlan struct {
	// ABTests selects between alternative hook implementations per request.
	ABTests   []ABTest `mapstructure:"abtests" json:"abtests"`
	Endpoints map[string]struct {
		Stages map[string]struct {
			Groups []HookExecutionGroup `mapstructure:"groups" json:"groups"`
		} `mapstructure:"stages" json:"stages"`
	} `mapstructure:"endpoints" json:"endpoints"`
}

type HookExecutionGroup struct {
	// Timeout specified in milliseconds.
	// Zero value means the hook is only bounded by the remaining request budget.
	Timeout      int                `mapstructure:"timeout" json:"timeout"`
	HookSequence []HookSequenceItem `mapstructure:"hook_sequence" json:"hook_sequence"`
}

type HookSequenceItem struct {
	// ModuleCode is a composite value in the format: {vendor_name}.{module_name}
	ModuleCode string `mapstructure:"module_code" json:"module_code"`
	// HookImplCode is an arbitrary value used to identify hook when sending metrics,
	// storing debug information, etc.
	HookImplCode string `mapstructure:"hook_impl_code" json:"hook_impl_code"`
}

// ABTest configures weighted selection between alternative implementations of one hook.
// The sequence item identified by ModuleCode/HookImplCode is replaced by one of the
// variants, picked once per request.
type ABTest struct {
	ModuleCode   string          `mapstructure:"module_code" json:"module_code"`
	HookImplCode string          `mapstructure:"hook_impl_code" json:"hook_impl_code"`
	Enabled      *bool           `mapstructure:"enabled" json:"enabled"`
	Variants     []ABTestVariant `mapstructure:"variants" json:"variants"`
}

type ABTestVariant struct {
	ModuleCode   string `mapstructure:"module_code" json:"module_code"`
	HookImplCode string `mapstructure:"hook_impl_code" json:"hook_impl_code"`
	Weight       int    `mapstructure:"weight" json:"weight"`
}

func (h Hooks) validate(errs []error) []error {
	errs = h.HostExecutionPlan.validate("hooks.host_execution_plan", errs)
	errs = h.DefaultAccountExecutionPlan.validate("hooks.default_account_execution_plan", errs)
	return errs
}

func (p HookExecutionPlan) validate(section string, errs []error) []error {
	for i, abtest := range p.ABTests {
		if abtest.ModuleCode == "" {
			errs = append(errs, fmt.Errorf("%s.abtests[%d].module_code is required", section, i))
		}
		if len(abtest.Variants) == 0 {
			errs = append(errs, fmt.Errorf("%s.abtests[%d].variants must not be empty", section, i))
		}
		for j, variant := range abtest.Variants {
			if variant.Weight < 0 {
				errs = append(errs, fmt.Errorf("%s.abtests[%d].variants[%d].weight must not be negative", section, i, j))
			}
		}
	}
	return errs
}
