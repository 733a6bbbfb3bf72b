package ccpa

import (
	"errors"
	"strings"
)

const (
	ccpaVersion1      = '1'
	ccpaNo            = 'N'
	ccpaYes           = 'Y'
	ccpaNotApplicable = '-'
)

const (
	indexVersion                = 0
	indexExplicitNotice         = 1
	indexOptOutSale             = 2
	indexLSPACoveredTransaction = 3
)

const allBidders = "*"

// Policy represents the US-Privacy signal for one request.
type Policy struct {
	// Consent is the IAB US-Privacy string: version, explicit notice,
	// opt-out of sale, limited service provider agreement.
	Consent string
	// NoSaleBidders are bidder names the publisher has a "no sale" deal
	// with, exempting them from opt-out enforcement. "*" covers everyone.
	NoSaleBidders []string
}

// ValidateConsent returns an error if the US-Privacy string does not adhere
// to the IAB spec. Flag characters are accepted case-insensitively.
func ValidateConsent(consent string) error {
	if len(consent) != 4 {
		return errors.New("must contain 4 characters")
	}

	if consent[indexVersion] != ccpaVersion1 {
		return errors.New("must specify version 1")
	}

	if !validFlag(consent[indexExplicitNotice]) {
		return errors.New("must specify 'N', 'Y', or '-' for the explicit notice")
	}

	if !validFlag(consent[indexOptOutSale]) {
		return errors.New("must specify 'N', 'Y', or '-' for the opt-out sale")
	}

	if !validFlag(consent[indexLSPACoveredTransaction]) {
		return errors.New("must specify 'N', 'Y', or '-' for the limited service provider agreement")
	}

	return nil
}

func validFlag(c byte) bool {
	c = upper(c)
	return c == ccpaNo || c == ccpaYes || c == ccpaNotApplicable
}

func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// Enforced returns true when the user has explicitly opted out of sale.
// A malformed consent string is never enforced, it is not a hard error.
func (p Policy) Enforced() bool {
	if p.Consent == "" {
		return false
	}

	if err := ValidateConsent(p.Consent); err != nil {
		return false
	}

	return upper(p.Consent[indexOptOutSale]) == ccpaYes
}

// ShouldEnforce returns true when opt-out applies to the given bidder,
// accounting for the publisher's no-sale exceptions.
func (p Policy) ShouldEnforce(bidder string) bool {
	if !p.Enforced() {
		return false
	}

	for _, b := range p.NoSaleBidders {
		if b == allBidders || strings.EqualFold(b, bidder) {
			return false
		}
	}

	return true
}
