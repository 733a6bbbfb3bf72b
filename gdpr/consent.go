package gdpr

import (
	"errors"
	"fmt"

	"github.com/prebid/go-gdpr/consentconstants"
	"github.com/prebid/go-gdpr/vendorconsent"
	tcf2 "github.com/prebid/go-gdpr/vendorconsent/tcf2"
)

// ConsentReader is the decoded-consent view the strategies depend on.
// tcf2.ConsentMetadata satisfies it; tests substitute fakes.
type ConsentReader interface {
	PurposeAllowed(purpose consentconstants.Purpose) bool
	VendorConsent(vendorID uint16) bool
	SpecialFeatureOptIn(featureID uint16) bool
}

// ParseConsent parses a raw TCF2 consent string. Non-TCF2 strings are
// rejected, the caller records the error as a request diagnostic and
// proceeds without GDPR enforcement data.
func ParseConsent(consent string) (ConsentReader, error) {
	parsed, err := vendorconsent.ParseString(consent)
	if err != nil {
		return nil, fmt.Errorf("unable to parse consent string: %s", err.Error())
	}

	if version := parsed.Version(); version != 2 {
		return nil, fmt.Errorf("wrong consent string version %d", version)
	}

	meta, ok := parsed.(tcf2.ConsentMetadata)
	if !ok {
		return nil, errors.New("unable to access TCF2 consent metadata")
	}

	return meta, nil
}
