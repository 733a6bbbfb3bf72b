package hookstage

import (
	"context"

	"github.com/prebid/openrtb/v20/openrtb2"
)

// ProcessedBidderResponse hooks are invoked for each bidder whose response
// survived transcoding and validation.
//
// Rejection results in dropping the bidder's bids.
type ProcessedBidderResponse interface {
	HandleProcessedBidderResponseHook(
		context.Context,
		ModuleInvocationContext,
		ProcessedBidderResponsePayload,
	) (HookResult[ProcessedBidderResponsePayload], error)
}

// ProcessedBidderResponsePayload holds the bids received from one bidder.
// Hooks are allowed to modify the bids using mutations.
type ProcessedBidderResponsePayload struct {
	Bidder string
	Bids   []*openrtb2.Bid
}
