package gdpr

// SpecialFeature1ID covers the use of precise geolocation data.
const SpecialFeature1ID uint16 = 1

// SpecialFeatureStrategy masks device IP and precise geo for vendors the
// user has not opted in for at the special-feature level. The vendor
// exception list is an allow-list: bidders on it stay unmasked even without
// the opt-in.
type SpecialFeatureStrategy struct {
	FeatureID        uint16
	Enforce          bool
	VendorExceptions map[string]struct{}
}

func NewSpecialFeature1Strategy(enforce bool, vendorExceptions []string) SpecialFeatureStrategy {
	exceptions := make(map[string]struct{}, len(vendorExceptions))
	for _, name := range vendorExceptions {
		exceptions[name] = struct{}{}
	}
	return SpecialFeatureStrategy{
		FeatureID:        SpecialFeature1ID,
		Enforce:          enforce,
		VendorExceptions: exceptions,
	}
}

// Apply tightens the enforcement actions of all candidate vendors.
func (s SpecialFeatureStrategy) Apply(consent ConsentReader, vendors []*VendorPermission) {
	if !s.Enforce {
		return
	}
	if consent.SpecialFeatureOptIn(s.FeatureID) {
		return
	}

	for _, vp := range vendors {
		if _, excepted := s.VendorExceptions[vp.BidderName]; excepted {
			continue
		}
		vp.Action().MaskDeviceIP().MaskGeo()
	}
}
