package privacy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbid/broker/config"
	"github.com/openbid/broker/gdpr"
	"github.com/openbid/broker/privacy/ccpa"
	"github.com/openbid/broker/privacy/gpp"
	"github.com/openbid/broker/privacy/usnat"
)

func TestNewActivityControlUSPrivacy(t *testing.T) {
	testCases := []struct {
		name            string
		consent         string
		noSaleBidders   []string
		activity        Activity
		target          Component
		expectedAllowed bool
	}{
		{
			name:            "opt_out_denies_geo_transmission",
			consent:         "1YYY",
			activity:        ActivityTransmitPreciseGeo,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedAllowed: false,
		},
		{
			name:            "opt_out_denies_user_sync",
			consent:         "1YYY",
			activity:        ActivitySyncUser,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedAllowed: false,
		},
		{
			name:            "opt_out_does_not_gate_bidder_calls",
			consent:         "1YYY",
			activity:        ActivityCallBidder,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedAllowed: true,
		},
		{
			name:            "no_opt_out_allows",
			consent:         "1N-N",
			activity:        ActivityTransmitPreciseGeo,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedAllowed: true,
		},
		{
			name:            "malformed_consent_not_enforced",
			consent:         "2YYY",
			activity:        ActivityTransmitPreciseGeo,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedAllowed: true,
		},
		{
			name:            "no_sale_bidder_exempt",
			consent:         "1YYY",
			noSaleBidders:   []string{"bidderA"},
			activity:        ActivityTransmitUserFPD,
			target:          Component{Type: ComponentTypeBidder, Name: "bidderA"},
			expectedAllowed: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			signals := Signals{
				USPrivacy: ccpa.Policy{Consent: test.consent, NoSaleBidders: test.noSaleBidders},
			}

			ac, err := NewActivityControl(&config.AccountPrivacy{}, signals)
			require.NoError(t, err)

			assert.Equal(t, test.expectedAllowed, ac.Allow(test.activity, test.target))
		})
	}
}

func TestNewActivityControlPublisherRulesTakePriority(t *testing.T) {
	// an explicit allow for the bidder is registered before the law rules
	// and wins even though the user opted out of sale
	cfg := &config.AccountPrivacy{
		AllowActivities: &config.AllowActivities{
			TransmitUfpd: config.Activity{
				Rules: []config.ActivityRule{
					{Condition: config.ActivityCondition{ComponentName: []string{"bidderA"}}, Allow: true},
				},
			},
		},
	}
	signals := Signals{USPrivacy: ccpa.Policy{Consent: "1YYY"}}

	ac, err := NewActivityControl(cfg, signals)
	require.NoError(t, err)

	assert.True(t, ac.Allow(ActivityTransmitUserFPD, Component{Type: ComponentTypeBidder, Name: "bidderA"}))
	assert.False(t, ac.Allow(ActivityTransmitUserFPD, Component{Type: ComponentTypeBidder, Name: "bidderB"}))
}

func TestNewActivityControlUSNat(t *testing.T) {
	optedOut := usnat.CoreSegment{
		SaleOptOutField:                      1,
		SaleOptOutNoticeField:                1,
		SharingNoticeField:                   1,
		SharingOptOutNoticeField:             1,
		TargetedAdvertisingOptOutNoticeField: 1,
	}

	testCases := []struct {
		name            string
		usnatCfg        config.AccountUSNat
		gppSIDs         []int8
		gppPolicy       gpp.Policy
		reader          usnat.Reader
		activity        Activity
		expectedAllowed bool
	}{
		{
			name:            "sale_opt_out_denies_user_sync",
			usnatCfg:        config.AccountUSNat{Enabled: true},
			gppSIDs:         []int8{7},
			reader:          optedOut,
			activity:        ActivitySyncUser,
			expectedAllowed: false,
		},
		{
			name:            "disabled_module_ignores_signal",
			usnatCfg:        config.AccountUSNat{Enabled: false},
			gppSIDs:         []int8{7},
			reader:          optedOut,
			activity:        ActivitySyncUser,
			expectedAllowed: true,
		},
		{
			name:            "section_not_signalled",
			usnatCfg:        config.AccountUSNat{Enabled: true},
			gppSIDs:         []int8{6},
			reader:          optedOut,
			activity:        ActivitySyncUser,
			expectedAllowed: true,
		},
		{
			name:            "skipped_section",
			usnatCfg:        config.AccountUSNat{Enabled: true, SkipSIDs: []int8{7}},
			gppSIDs:         []int8{7},
			reader:          optedOut,
			activity:        ActivitySyncUser,
			expectedAllowed: true,
		},
		{
			name:            "bidder_calls_never_restricted",
			usnatCfg:        config.AccountUSNat{Enabled: true},
			gppSIDs:         []int8{7},
			reader:          optedOut,
			activity:        ActivityCallBidder,
			expectedAllowed: true,
		},
		{
			name:            "raw_gpp_signal_without_sid_list",
			usnatCfg:        config.AccountUSNat{Enabled: true},
			gppPolicy:       gpp.Policy{RawSID: "7"},
			reader:          optedOut,
			activity:        ActivitySyncUser,
			expectedAllowed: false,
		},
		{
			name:            "raw_gpp_signal_for_other_section",
			usnatCfg:        config.AccountUSNat{Enabled: true},
			gppPolicy:       gpp.Policy{RawSID: "6"},
			reader:          optedOut,
			activity:        ActivitySyncUser,
			expectedAllowed: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			cfg := &config.AccountPrivacy{USNat: test.usnatCfg}
			signals := Signals{GPP: test.gppPolicy, GPPSIDs: test.gppSIDs, USNat: test.reader}

			ac, err := NewActivityControl(cfg, signals)
			require.NoError(t, err)

			target := Component{Type: ComponentTypeBidder, Name: "bidderA"}
			assert.Equal(t, test.expectedAllowed, ac.Allow(test.activity, target))
		})
	}
}

func TestNewActivityControlGDPRActions(t *testing.T) {
	blocked := &gdpr.EnforcementActionBuilder{}
	blocked.BlockBidderRequest().MaskGeo()

	signals := Signals{
		GDPRActions: map[string]gdpr.PrivacyEnforcementAction{
			"bidderA": blocked.Freeze(),
			"bidderB": {},
		},
	}

	ac, err := NewActivityControl(&config.AccountPrivacy{}, signals)
	require.NoError(t, err)

	assert.False(t, ac.Allow(ActivityCallBidder, Component{Type: ComponentTypeBidder, Name: "bidderA"}))
	assert.False(t, ac.Allow(ActivityTransmitPreciseGeo, Component{Type: ComponentTypeBidder, Name: "bidderA"}))
	assert.True(t, ac.Allow(ActivityReportAnalytics, Component{Type: ComponentTypeBidder, Name: "bidderA"}))

	assert.True(t, ac.Allow(ActivityCallBidder, Component{Type: ComponentTypeBidder, Name: "bidderB"}))
	// bidder unknown to the resolution pass is not restricted
	assert.True(t, ac.Allow(ActivityCallBidder, Component{Type: ComponentTypeBidder, Name: "bidderC"}))
}

func TestNewActivityControlCustomLogic(t *testing.T) {
	testCases := []struct {
		name            string
		customLogic     []config.AccountCustomLogic
		signals         Signals
		activity        Activity
		expectedAllowed bool
		expectedError   bool
	}{
		{
			name: "truthy_expression_denies",
			customLogic: []config.AccountCustomLogic{
				{
					Activities:     []string{"transmitUfpd"},
					RestrictIfTrue: json.RawMessage(`{"==": [{"var": "channel"}, "app"]}`),
				},
			},
			signals:         Signals{RequestAttributes: map[string]interface{}{"channel": "app"}},
			activity:        ActivityTransmitUserFPD,
			expectedAllowed: false,
		},
		{
			name: "falsy_expression_abstains",
			customLogic: []config.AccountCustomLogic{
				{
					Activities:     []string{"transmitUfpd"},
					RestrictIfTrue: json.RawMessage(`{"==": [{"var": "channel"}, "app"]}`),
				},
			},
			signals:         Signals{RequestAttributes: map[string]interface{}{"channel": "web"}},
			activity:        ActivityTransmitUserFPD,
			expectedAllowed: true,
		},
		{
			name: "sid_gate_skips_rule",
			customLogic: []config.AccountCustomLogic{
				{
					Activities:     []string{"transmitUfpd"},
					SIDs:           []int8{8},
					RestrictIfTrue: json.RawMessage(`true`),
				},
			},
			signals:         Signals{GPPSIDs: []int8{7}},
			activity:        ActivityTransmitUserFPD,
			expectedAllowed: true,
		},
		{
			name: "malformed_expression_fails_build",
			customLogic: []config.AccountCustomLogic{
				{
					Activities:     []string{"transmitUfpd"},
					RestrictIfTrue: json.RawMessage(`{"==": `),
				},
			},
			expectedError: true,
		},
		{
			name: "unknown_activity_fails_build",
			customLogic: []config.AccountCustomLogic{
				{
					Activities:     []string{"notAnActivity"},
					RestrictIfTrue: json.RawMessage(`true`),
				},
			},
			expectedError: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			cfg := &config.AccountPrivacy{CustomLogic: test.customLogic}

			ac, err := NewActivityControl(cfg, test.signals)
			if test.expectedError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			target := Component{Type: ComponentTypeBidder, Name: "bidderA"}
			assert.Equal(t, test.expectedAllowed, ac.Allow(test.activity, target))
		})
	}
}
