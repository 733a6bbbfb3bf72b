package hookstage

import (
	"context"

	"github.com/prebid/openrtb/v20/openrtb2"
)

// BidderRequest hooks are invoked for each bidder participating in auction.
//
// Rejection results in skipping the bidder's request.
type BidderRequest interface {
	HandleBidderRequestHook(
		context.Context,
		ModuleInvocationContext,
		BidderRequestPayload,
	) (HookResult[BidderRequestPayload], error)
}

// BidderRequestPayload consists of the openrtb2.BidRequest object
// distilled for the particular bidder.
// Hooks are allowed to modify openrtb2.BidRequest using mutations.
type BidderRequestPayload struct {
	BidRequest *openrtb2.BidRequest
	Bidder     string
}
