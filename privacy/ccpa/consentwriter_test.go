package ccpa

import (
	"encoding/json"
	"testing"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsentWriterWrite(t *testing.T) {
	testCases := []struct {
		description string
		consent     string
		request     *openrtb2.BidRequest
		expectedExt string
	}{
		{
			description: "no_regs_object",
			consent:     "1NYN",
			request:     &openrtb2.BidRequest{},
			expectedExt: `{"us_privacy":"1NYN"}`,
		},
		{
			description: "regs_without_ext",
			consent:     "1NYN",
			request:     &openrtb2.BidRequest{Regs: &openrtb2.Regs{}},
			expectedExt: `{"us_privacy":"1NYN"}`,
		},
		{
			description: "existing_ext_fields_preserved",
			consent:     "1NYN",
			request:     &openrtb2.BidRequest{Regs: &openrtb2.Regs{Ext: json.RawMessage(`{"gdpr":1}`)}},
			expectedExt: `{"gdpr":1,"us_privacy":"1NYN"}`,
		},
		{
			description: "existing_signal_overwritten",
			consent:     "1NYN",
			request:     &openrtb2.BidRequest{Regs: &openrtb2.Regs{Ext: json.RawMessage(`{"us_privacy":"1---"}`)}},
			expectedExt: `{"us_privacy":"1NYN"}`,
		},
		{
			description: "quotes_in_consent_escaped",
			consent:     `1Y"N`,
			request:     &openrtb2.BidRequest{},
			expectedExt: `{"us_privacy":"1Y\"N"}`,
		},
		{
			description: "quotes_in_consent_escaped_with_existing_ext",
			consent:     `1Y"N`,
			request:     &openrtb2.BidRequest{Regs: &openrtb2.Regs{Ext: json.RawMessage(`{"gdpr":1}`)}},
			expectedExt: `{"gdpr":1,"us_privacy":"1Y\"N"}`,
		},
	}

	for _, test := range testCases {
		t.Run(test.description, func(t *testing.T) {
			writer := ConsentWriter{Consent: test.consent}
			require.NoError(t, writer.Write(test.request))
			assert.JSONEq(t, test.expectedExt, string(test.request.Regs.Ext))
		})
	}
}

func TestConsentWriterWriteEmptyConsentNoop(t *testing.T) {
	request := &openrtb2.BidRequest{}
	require.NoError(t, ConsentWriter{}.Write(request))
	assert.Nil(t, request.Regs)
}
