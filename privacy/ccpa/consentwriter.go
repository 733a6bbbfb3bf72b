package ccpa

import (
	"encoding/json"

	"github.com/buger/jsonparser"
	"github.com/prebid/openrtb/v20/openrtb2"
)

// ConsentWriter implements the PolicyWriter interface for CCPA.
type ConsentWriter struct {
	Consent string
}

// Write mutates an OpenRTB bid request with the CCPA consent string.
func (c ConsentWriter) Write(req *openrtb2.BidRequest) error {
	if c.Consent == "" {
		return nil
	}

	encoded, err := json.Marshal(c.Consent)
	if err != nil {
		return err
	}

	if req.Regs == nil {
		req.Regs = &openrtb2.Regs{}
	}

	if req.Regs.Ext == nil {
		req.Regs.Ext = append(append(json.RawMessage(`{"us_privacy":`), encoded...), '}')
		return nil
	}

	req.Regs.Ext, err = jsonparser.Set(req.Regs.Ext, encoded, "us_privacy")
	return err
}
