package gdpr

import (
	"github.com/prebid/go-gdpr/consentconstants"

	"github.com/openbid/broker/config"
)

// PurposeTypeStrategy computes, for one purpose, the subset of candidate
// vendors with an established legal basis. The two implementations are
// interchangeable and selected by account config.
type PurposeTypeStrategy interface {
	AllowedVendors(purpose consentconstants.Purpose, consent ConsentReader, enforceVendors bool, vendors []*VendorPermission) []*VendorPermission
}

// NewPurposeTypeStrategy maps the configured algorithm name to a strategy.
// Unknown or empty names fall back to the basic strategy.
func NewPurposeTypeStrategy(enforceAlgo string) PurposeTypeStrategy {
	if enforceAlgo == config.TCF2NoTypeStrategy {
		return NoTypeStrategy{}
	}
	return BasicTypeStrategy{}
}

// BasicTypeStrategy requires purpose consent and, when vendor enforcement is
// on, vendor consent as well.
type BasicTypeStrategy struct{}

func (BasicTypeStrategy) AllowedVendors(purpose consentconstants.Purpose, consent ConsentReader, enforceVendors bool, vendors []*VendorPermission) []*VendorPermission {
	allowed := make([]*VendorPermission, 0, len(vendors))
	for _, vp := range vendors {
		// a vendor without an id is never permitted
		if vp.VendorID == nil {
			continue
		}
		if !consent.PurposeAllowed(purpose) {
			continue
		}
		if enforceVendors && !consent.VendorConsent(*vp.VendorID) {
			continue
		}
		allowed = append(allowed, vp)
	}
	return allowed
}

// NoTypeStrategy lets vendor enforcement decide alone, purpose consent is
// not separately required.
type NoTypeStrategy struct{}

func (NoTypeStrategy) AllowedVendors(purpose consentconstants.Purpose, consent ConsentReader, enforceVendors bool, vendors []*VendorPermission) []*VendorPermission {
	allowed := make([]*VendorPermission, 0, len(vendors))
	for _, vp := range vendors {
		if vp.VendorID == nil {
			continue
		}
		if enforceVendors && !consent.VendorConsent(*vp.VendorID) {
			continue
		}
		allowed = append(allowed, vp)
	}
	return allowed
}
