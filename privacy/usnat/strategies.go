package usnat

// Strategy decides whether the law restricts one activity given the decoded
// section. Restriction is absolute for the request, it does not vary by
// component.
type Strategy interface {
	Restricted(r Reader) bool
}

// NewSyncUserStrategy covers user-id syncing and user first-party-data
// enrichment, both deal in user identifiers.
func NewSyncUserStrategy() Strategy {
	return userIDStrategy{}
}

// NewModifyUserFPDStrategy shares the user-id semantics with syncing.
func NewModifyUserFPDStrategy() Strategy {
	return userIDStrategy{}
}

func NewTransmitUserFPDStrategy() Strategy {
	return transmitUserFPDStrategy{}
}

func NewTransmitGeoStrategy() Strategy {
	return transmitGeoStrategy{}
}

// NewDefaultStrategy is the fallback for activities the law does not
// restrict (calling bidders, reporting analytics).
func NewDefaultStrategy() Strategy {
	return defaultStrategy{}
}

type userIDStrategy struct{}

func (userIDStrategy) Restricted(r Reader) bool {
	if mspaMode(r) || r.Gpc() {
		return true
	}
	if noticeMissing(r) {
		return true
	}
	return r.SaleOptOut() == OptedOut ||
		r.SharingOptOut() == OptedOut ||
		r.TargetedAdvertisingOptOut() == OptedOut
}

type transmitUserFPDStrategy struct{}

func (transmitUserFPDStrategy) Restricted(r Reader) bool {
	if mspaMode(r) || r.Gpc() {
		return true
	}
	if noticeMissing(r) {
		return true
	}
	if r.SaleOptOut() == OptedOut ||
		r.SharingOptOut() == OptedOut ||
		r.TargetedAdvertisingOptOut() == OptedOut {
		return true
	}
	if r.PersonalDataConsents() == NoConsent {
		return true
	}
	return childRestricted(r)
}

type transmitGeoStrategy struct{}

func (transmitGeoStrategy) Restricted(r Reader) bool {
	if mspaMode(r) {
		return true
	}
	// precise geolocation is sensitive-data field 8
	if r.SensitiveDataProcessing(8) == NoConsent {
		return true
	}
	return childRestricted(r)
}

type defaultStrategy struct{}

func (defaultStrategy) Restricted(Reader) bool {
	return false
}

func mspaMode(r Reader) bool {
	return r.MspaServiceProviderMode() == OptedOut
}

// noticeMissing treats an activity as restricted when the corresponding
// opt-out exists but the user was never shown the required notice.
func noticeMissing(r Reader) bool {
	if r.SaleOptOutNotice() == NoticeNotProvided && r.SaleOptOut() != NotApplicable {
		return true
	}
	if r.SharingNotice() == NoticeNotProvided || r.SharingOptOutNotice() == NoticeNotProvided {
		return true
	}
	if r.TargetedAdvertisingOptOutNotice() == NoticeNotProvided && r.TargetedAdvertisingOptOut() != NotApplicable {
		return true
	}
	return false
}

func childRestricted(r Reader) bool {
	return r.KnownChildSensitiveDataConsents(1) != NotApplicable ||
		r.KnownChildSensitiveDataConsents(2) == NoConsent
}
