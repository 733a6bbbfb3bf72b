package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	SetupViper(v, "")
	return v
}

func TestNewDefaults(t *testing.T) {
	cfg, err := New(newTestViper())
	require.NoError(t, err)

	assert.False(t, cfg.AccountRequired)
	assert.False(t, cfg.Hooks.Enabled)
	assert.Equal(t, 300, cfg.AccountCache.TTLSeconds)
	assert.Equal(t, 16*1024*1024, cfg.AccountCache.SizeBytes)
	assert.NotEmpty(t, cfg.AccountDefaultsJSON())
}

func TestNewRejectsNegativeABTestWeight(t *testing.T) {
	v := newTestViper()
	v.Set("hooks.host_execution_plan.abtests", []map[string]interface{}{
		{
			"module_code":    "vendor.module",
			"hook_impl_code": "hook-a",
			"variants": []map[string]interface{}{
				{"module_code": "vendor.module", "hook_impl_code": "hook-b", "weight": -1},
			},
		},
	})

	_, err := New(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weight must not be negative")
}

func TestNewRejectsEmptyABTestVariants(t *testing.T) {
	v := newTestViper()
	v.Set("hooks.default_account_execution_plan.abtests", []map[string]interface{}{
		{"module_code": "vendor.module", "hook_impl_code": "hook-a"},
	})

	_, err := New(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variants must not be empty")
}

func TestNewRejectsNegativeCacheTTL(t *testing.T) {
	v := newTestViper()
	v.Set("account_cache.ttl_seconds", -1)

	_, err := New(v)
	assert.Error(t, err)
}

func TestAccountValidate(t *testing.T) {
	testCases := []struct {
		name          string
		account       Account
		expectedError bool
	}{
		{
			name:    "empty_valid",
			account: Account{},
		},
		{
			name:    "basic_algo",
			account: Account{Privacy: AccountPrivacy{GDPR: AccountGDPR{EnforceAlgo: TCF2BasicTypeStrategy}}},
		},
		{
			name:    "no_type_algo",
			account: Account{Privacy: AccountPrivacy{GDPR: AccountGDPR{EnforceAlgo: TCF2NoTypeStrategy}}},
		},
		{
			name:          "unknown_algo",
			account:       Account{Privacy: AccountPrivacy{GDPR: AccountGDPR{EnforceAlgo: "full"}}},
			expectedError: true,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			errs := test.account.Validate()
			if test.expectedError {
				assert.NotEmpty(t, errs)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}
