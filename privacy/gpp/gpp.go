package gpp

import (
	"strconv"
	"strings"

	gpplib "github.com/prebid/go-gpp"
	gppConstants "github.com/prebid/go-gpp/constants"
)

// Policy represents the GPP privacy string container together with the
// signalled applicable section ids.
type Policy struct {
	Consent string
	// RawSID is the CSV format ("2,6") the IAB recommends for passing the
	// SID(s) on a query string.
	RawSID string
}

// Parse decodes the GPP container string. Sections that fail to decode are
// reported individually, one error per section.
func (p Policy) Parse() (gpplib.GppContainer, []error) {
	return gpplib.Parse(p.Consent)
}

// SectionSignalled reports whether the given section applies to the request:
// listed in the SID csv when one accompanies the consent string, otherwise
// carried by the consent container itself. An unparseable signal is treated
// as not applicable.
func (p Policy) SectionSignalled(sid gppConstants.SectionID) bool {
	if sids, err := p.ParseSID(); err == nil && len(sids) > 0 {
		return IsSIDInList(sids, sid)
	}

	if p.Consent == "" {
		return false
	}

	container, errs := p.Parse()
	if len(errs) > 0 {
		return false
	}
	return IndexOfSID(container, sid) >= 0
}

// ParseSID converts the raw CSV SID list into section ids. Blank entries
// are skipped, malformed entries fail the whole list.
func (p Policy) ParseSID() ([]int8, error) {
	if p.RawSID == "" {
		return nil, nil
	}

	parts := strings.Split(p.RawSID, ",")
	sids := make([]int8, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sid, err := strconv.ParseInt(part, 10, 8)
		if err != nil {
			return nil, err
		}
		sids = append(sids, int8(sid))
	}
	return sids, nil
}

// IsSIDInList returns true if the 'sid' value is found in the gppSIDs array.
func IsSIDInList(gppSIDs []int8, sid gppConstants.SectionID) bool {
	for _, id := range gppSIDs {
		if id == int8(sid) {
			return true
		}
	}
	return false
}

// IndexOfSID returns a zero or non-negative integer that represents the
// position of the 'sid' value in the 'gpp.SectionTypes' array. If the 'sid'
// value is not found, returns -1.
func IndexOfSID(gpp gpplib.GppContainer, sid gppConstants.SectionID) int {
	for i, id := range gpp.SectionTypes {
		if id == sid {
			return i
		}
	}
	return -1
}
