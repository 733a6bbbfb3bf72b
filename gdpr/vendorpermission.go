package gdpr

// PrivacyEnforcementAction is the frozen, immutable set of enforcement flags
// for one vendor. It is published only after the resolution pass completes.
type PrivacyEnforcementAction struct {
	maskDeviceIP         bool
	maskGeo              bool
	blockBidderRequest   bool
	blockAnalyticsReport bool
}

func (a PrivacyEnforcementAction) MaskDeviceIP() bool         { return a.maskDeviceIP }
func (a PrivacyEnforcementAction) MaskGeo() bool              { return a.maskGeo }
func (a PrivacyEnforcementAction) BlockBidderRequest() bool   { return a.blockBidderRequest }
func (a PrivacyEnforcementAction) BlockAnalyticsReport() bool { return a.blockAnalyticsReport }

// EnforcementActionBuilder is the one mutable object of the resolution pass.
// Strategies progressively tighten it; Freeze publishes the immutable result.
// It is owned exclusively by the resolver for one request.
type EnforcementActionBuilder struct {
	action PrivacyEnforcementAction
}

func (b *EnforcementActionBuilder) MaskDeviceIP() *EnforcementActionBuilder {
	b.action.maskDeviceIP = true
	return b
}

func (b *EnforcementActionBuilder) MaskGeo() *EnforcementActionBuilder {
	b.action.maskGeo = true
	return b
}

func (b *EnforcementActionBuilder) BlockBidderRequest() *EnforcementActionBuilder {
	b.action.blockBidderRequest = true
	return b
}

func (b *EnforcementActionBuilder) BlockAnalyticsReport() *EnforcementActionBuilder {
	b.action.blockAnalyticsReport = true
	return b
}

func (b *EnforcementActionBuilder) Freeze() PrivacyEnforcementAction {
	return b.action
}

// VendorPermission pairs a GVL vendor id with the bidder it serves and the
// enforcement action being accumulated for it.
type VendorPermission struct {
	VendorID   *uint16
	BidderName string
	action     EnforcementActionBuilder
}

func NewVendorPermission(vendorID *uint16, bidderName string) *VendorPermission {
	return &VendorPermission{VendorID: vendorID, BidderName: bidderName}
}

func (vp *VendorPermission) Action() *EnforcementActionBuilder {
	return &vp.action
}
