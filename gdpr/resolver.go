package gdpr

import (
	"github.com/prebid/go-gdpr/consentconstants"

	"github.com/openbid/broker/config"
)

// Purposes consulted during resolution.
const (
	// PurposeBasicAds gates sending bid requests at all.
	PurposeBasicAds = consentconstants.Purpose(2)
	// PurposeMeasurement gates analytics reporting.
	PurposeMeasurement = consentconstants.Purpose(7)
)

// PermissionsResolver runs the single mutation pass that turns decoded
// consent plus account config into one frozen PrivacyEnforcementAction per
// bidder. Nothing reads the accumulators before Resolve returns.
type PermissionsResolver struct {
	purposeStrategy PurposeTypeStrategy
	specialFeature1 SpecialFeatureStrategy
	enforceVendors  bool
}

func NewPermissionsResolver(cfg config.AccountGDPR) PermissionsResolver {
	enforceVendors := true
	if cfg.EnforceVendors != nil {
		enforceVendors = *cfg.EnforceVendors
	}

	enforceSF1 := true
	if cfg.SpecialFeature1.Enforce != nil {
		enforceSF1 = *cfg.SpecialFeature1.Enforce
	}

	return PermissionsResolver{
		purposeStrategy: NewPurposeTypeStrategy(cfg.EnforceAlgo),
		specialFeature1: NewSpecialFeature1Strategy(enforceSF1, cfg.SpecialFeature1.VendorExceptions),
		enforceVendors:  enforceVendors,
	}
}

// Resolve evaluates all strategies for the given bidder to vendor-id mapping
// and returns the frozen per-bidder actions.
func (r PermissionsResolver) Resolve(consent ConsentReader, bidderVendorIDs map[string]*uint16) map[string]PrivacyEnforcementAction {
	permissions := make([]*VendorPermission, 0, len(bidderVendorIDs))
	for bidder, vendorID := range bidderVendorIDs {
		permissions = append(permissions, NewVendorPermission(vendorID, bidder))
	}

	blockRequests(permissions, r.purposeStrategy.AllowedVendors(PurposeBasicAds, consent, r.enforceVendors, permissions))
	blockAnalytics(permissions, r.purposeStrategy.AllowedVendors(PurposeMeasurement, consent, r.enforceVendors, permissions))
	r.specialFeature1.Apply(consent, permissions)

	actions := make(map[string]PrivacyEnforcementAction, len(permissions))
	for _, vp := range permissions {
		actions[vp.BidderName] = vp.Action().Freeze()
	}
	return actions
}

func blockRequests(all, allowed []*VendorPermission) {
	for _, vp := range disallowed(all, allowed) {
		vp.Action().BlockBidderRequest()
	}
}

func blockAnalytics(all, allowed []*VendorPermission) {
	for _, vp := range disallowed(all, allowed) {
		vp.Action().BlockAnalyticsReport()
	}
}

func disallowed(all, allowed []*VendorPermission) []*VendorPermission {
	allowedSet := make(map[*VendorPermission]struct{}, len(allowed))
	for _, vp := range allowed {
		allowedSet[vp] = struct{}{}
	}

	var result []*VendorPermission
	for _, vp := range all {
		if _, ok := allowedSet[vp]; !ok {
			result = append(result, vp)
		}
	}
	return result
}
