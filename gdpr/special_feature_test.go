package gdpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpecialFeatureStrategyApply(t *testing.T) {
	testCases := []struct {
		name             string
		enforce          bool
		optIn            bool
		vendorExceptions []string
		expectedMasked   map[string]bool
	}{
		{
			name:           "no_opt_in_masks_all",
			enforce:        true,
			optIn:          false,
			expectedMasked: map[string]bool{"bidderA": true, "bidderB": true},
		},
		{
			name:           "opt_in_masks_none",
			enforce:        true,
			optIn:          true,
			expectedMasked: map[string]bool{"bidderA": false, "bidderB": false},
		},
		{
			name:           "enforcement_off_masks_none",
			enforce:        false,
			optIn:          false,
			expectedMasked: map[string]bool{"bidderA": false, "bidderB": false},
		},
		{
			name:             "exception_bidder_unmasked",
			enforce:          true,
			optIn:            false,
			vendorExceptions: []string{"bidderB"},
			expectedMasked:   map[string]bool{"bidderA": true, "bidderB": false},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			vendors := []*VendorPermission{
				NewVendorPermission(vendorID(32), "bidderA"),
				NewVendorPermission(vendorID(52), "bidderB"),
			}

			consent := fakeConsent{specialFeatures: map[uint16]bool{SpecialFeature1ID: test.optIn}}
			strategy := NewSpecialFeature1Strategy(test.enforce, test.vendorExceptions)
			strategy.Apply(consent, vendors)

			for _, vp := range vendors {
				action := vp.Action().Freeze()
				assert.Equal(t, test.expectedMasked[vp.BidderName], action.MaskDeviceIP(), "MaskDeviceIP for %s", vp.BidderName)
				assert.Equal(t, test.expectedMasked[vp.BidderName], action.MaskGeo(), "MaskGeo for %s", vp.BidderName)
			}
		})
	}
}
