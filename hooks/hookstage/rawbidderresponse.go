package hookstage

import (
	"context"
)

// RawBidderResponse hooks are invoked for each bidder that returned a
// response, before it is transcoded into bids.
//
// Rejection results in ignoring the bidder's response.
type RawBidderResponse interface {
	HandleRawBidderResponseHook(
		context.Context,
		ModuleInvocationContext,
		RawBidderResponsePayload,
	) (HookResult[RawBidderResponsePayload], error)
}

// RawBidderResponsePayload is the raw response body received from a bidder.
type RawBidderResponsePayload struct {
	Bidder string
	Body   []byte
}
