package usnat

import (
	gppConstants "github.com/prebid/go-gpp/constants"

	"github.com/openbid/broker/privacy/gpp"
)

// SectionID is the GPP section id of the US-National privacy section.
const SectionID = gppConstants.SectionID(7)

// Tri-state field values as encoded in the US-National section.
const (
	NotApplicable = 0
	OptedOut      = 1
	NotOptedOut   = 2
)

// Sensitive-data and child-consent field values.
const (
	NoConsent = 1
	Consent   = 2
)

// Notice field values.
const (
	NoticeProvided    = 1
	NoticeNotProvided = 2
)

// Reader is the queryable view over a decoded US-National section.
// Decoding the raw GPP segment is an external collaborator's job; the
// strategies only depend on these typed getters.
type Reader interface {
	MspaServiceProviderMode() int
	Gpc() bool
	SaleOptOut() int
	SaleOptOutNotice() int
	SharingNotice() int
	SharingOptOut() int
	SharingOptOutNotice() int
	TargetedAdvertisingOptOut() int
	TargetedAdvertisingOptOutNotice() int
	// SensitiveDataProcessing is indexed by the 1-based field position,
	// precise geolocation is field 8.
	SensitiveDataProcessing(index int) int
	// KnownChildSensitiveDataConsents is indexed by the 1-based field position.
	KnownChildSensitiveDataConsents(index int) int
	PersonalDataConsents() int
}

// CoreSegment is a plain decoded US-National core segment satisfying Reader.
type CoreSegment struct {
	MspaServiceProviderModeField          int
	GpcField                              bool
	SaleOptOutField                       int
	SaleOptOutNoticeField                 int
	SharingNoticeField                    int
	SharingOptOutField                    int
	SharingOptOutNoticeField              int
	TargetedAdvertisingOptOutField        int
	TargetedAdvertisingOptOutNoticeField  int
	SensitiveDataProcessingFields         []int
	KnownChildSensitiveDataConsentsFields []int
	PersonalDataConsentsField             int
}

func (s CoreSegment) MspaServiceProviderMode() int   { return s.MspaServiceProviderModeField }
func (s CoreSegment) Gpc() bool                      { return s.GpcField }
func (s CoreSegment) SaleOptOut() int                { return s.SaleOptOutField }
func (s CoreSegment) SaleOptOutNotice() int          { return s.SaleOptOutNoticeField }
func (s CoreSegment) SharingNotice() int             { return s.SharingNoticeField }
func (s CoreSegment) SharingOptOut() int             { return s.SharingOptOutField }
func (s CoreSegment) SharingOptOutNotice() int       { return s.SharingOptOutNoticeField }
func (s CoreSegment) TargetedAdvertisingOptOut() int { return s.TargetedAdvertisingOptOutField }
func (s CoreSegment) PersonalDataConsents() int      { return s.PersonalDataConsentsField }

func (s CoreSegment) TargetedAdvertisingOptOutNotice() int {
	return s.TargetedAdvertisingOptOutNoticeField
}

func (s CoreSegment) SensitiveDataProcessing(index int) int {
	return fieldAt(s.SensitiveDataProcessingFields, index)
}

func (s CoreSegment) KnownChildSensitiveDataConsents(index int) int {
	return fieldAt(s.KnownChildSensitiveDataConsentsFields, index)
}

func fieldAt(fields []int, index int) int {
	if index < 1 || index > len(fields) {
		return NotApplicable
	}
	return fields[index-1]
}

// Applies reports whether US-National enforcement is in effect for the
// request: the section must be signalled and not skipped by the account.
func Applies(gppSIDs []int8, skipSIDs []int8) bool {
	if !gpp.IsSIDInList(gppSIDs, SectionID) {
		return false
	}
	return !gpp.IsSIDInList(skipSIDs, SectionID)
}
