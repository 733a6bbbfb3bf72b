package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbid/broker/config"
)

func TestActivityDefaultToDefaultResult(t *testing.T) {
	resultDefault := cfgToDefaultResult(nil)
	assert.Equal(t, true, resultDefault)

	resultFalse := false
	assert.Equal(t, false, cfgToDefaultResult(&resultFalse))

	resultTrue := true
	assert.Equal(t, true, cfgToDefaultResult(&resultTrue))
}

func TestActivityControlAllowUnconfigured(t *testing.T) {
	ac, err := NewActivityControl(nil, Signals{})
	require.NoError(t, err)

	// no plan registered means allowed
	assert.True(t, ac.Allow(ActivityCallBidder, Component{Type: ComponentTypeBidder, Name: "bidderA"}))
}

func TestActivityControlAllow(t *testing.T) {
	falseValue := false

	testCases := []struct {
		name            string
		privacyCfg      *config.AccountPrivacy
		activity        Activity
		target          Component
		expectedAllowed bool
	}{
		{
			name:            "no_config_default_allow",
			privacyCfg:      &config.AccountPrivacy{},
			activity:        ActivitySyncUser,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedAllowed: true,
		},
		{
			name: "matching_deny_rule",
			privacyCfg: &config.AccountPrivacy{
				AllowActivities: &config.AllowActivities{
					CallBidder: config.Activity{
						Rules: []config.ActivityRule{
							{Condition: config.ActivityCondition{ComponentName: []string{"bidderA"}}, Allow: false},
						},
					},
				},
			},
			activity:        ActivityCallBidder,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedAllowed: false,
		},
		{
			name: "non_matching_rule_falls_to_default",
			privacyCfg: &config.AccountPrivacy{
				AllowActivities: &config.AllowActivities{
					CallBidder: config.Activity{
						Rules: []config.ActivityRule{
							{Condition: config.ActivityCondition{ComponentName: []string{"bidderA"}}, Allow: false},
						},
					},
				},
			},
			activity:        ActivityCallBidder,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderB"},
			expectedAllowed: true,
		},
		{
			name: "first_matching_rule_wins",
			privacyCfg: &config.AccountPrivacy{
				AllowActivities: &config.AllowActivities{
					TransmitUfpd: config.Activity{
						Rules: []config.ActivityRule{
							{Condition: config.ActivityCondition{ComponentName: []string{"bidderA"}}, Allow: true},
							{Condition: config.ActivityCondition{ComponentName: []string{"bidderA"}}, Allow: false},
						},
					},
				},
			},
			activity:        ActivityTransmitUserFPD,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedAllowed: true,
		},
		{
			name: "empty_condition_matches_everything",
			privacyCfg: &config.AccountPrivacy{
				AllowActivities: &config.AllowActivities{
					TransmitPreciseGeo: config.Activity{
						Rules: []config.ActivityRule{
							{Condition: config.ActivityCondition{}, Allow: false},
						},
					},
				},
			},
			activity:        ActivityTransmitPreciseGeo,
			target:          Component{Type: ComponentTypeBidder, Name: "anyBidder"},
			expectedAllowed: false,
		},
		{
			name: "default_deny_without_matching_rule",
			privacyCfg: &config.AccountPrivacy{
				AllowActivities: &config.AllowActivities{
					ReportAnalytics: config.Activity{
						Default: &falseValue,
						Rules: []config.ActivityRule{
							{Condition: config.ActivityCondition{ComponentName: []string{"adapterA"}}, Allow: true},
						},
					},
				},
			},
			activity:        ActivityReportAnalytics,
			target:          Component{Type: ComponentTypeAnalytics, Name: "adapterB"},
			expectedAllowed: false,
		},
		{
			name: "component_type_clause_must_match_too",
			privacyCfg: &config.AccountPrivacy{
				AllowActivities: &config.AllowActivities{
					SyncUser: config.Activity{
						Rules: []config.ActivityRule{
							{Condition: config.ActivityCondition{ComponentName: []string{"bidderA"}, ComponentType: []string{ComponentTypeAnalytics}}, Allow: false},
						},
					},
				},
			},
			activity:        ActivitySyncUser,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedAllowed: true,
		},
		{
			name: "name_match_is_case_insensitive",
			privacyCfg: &config.AccountPrivacy{
				AllowActivities: &config.AllowActivities{
					CallBidder: config.Activity{
						Rules: []config.ActivityRule{
							{Condition: config.ActivityCondition{ComponentName: []string{"BidderA"}}, Allow: false},
						},
					},
				},
			},
			activity:        ActivityCallBidder,
			target:          Component{Type: ComponentTypeBidder, Name: "biddera"},
			expectedAllowed: false,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			ac, err := NewActivityControl(test.privacyCfg, Signals{})
			require.NoError(t, err)

			assert.Equal(t, test.expectedAllowed, ac.Allow(test.activity, test.target))
		})
	}
}

func TestConditionRuleEvaluate(t *testing.T) {
	testCases := []struct {
		name           string
		rule           ConditionRule
		target         Component
		expectedResult ActivityResult
	}{
		{
			name:           "empty_rule_matches_any",
			rule:           NewConditionRule(true, nil, nil),
			target:         Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedResult: ActivityAllow,
		},
		{
			name:           "name_mismatch_abstains",
			rule:           NewConditionRule(false, []string{"bidderA"}, nil),
			target:         Component{Type: ComponentTypeBidder, Name: "bidderB"},
			expectedResult: ActivityAbstain,
		},
		{
			name:           "type_mismatch_abstains",
			rule:           NewConditionRule(false, nil, []string{ComponentTypeAnalytics}),
			target:         Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedResult: ActivityAbstain,
		},
		{
			name:           "full_match_denies",
			rule:           NewConditionRule(false, []string{"bidderA"}, []string{ComponentTypeBidder}),
			target:         Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedResult: ActivityDeny,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expectedResult, test.rule.Evaluate(test.target))
		})
	}
}
