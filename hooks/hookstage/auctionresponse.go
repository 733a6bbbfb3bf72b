package hookstage

import (
	"context"

	"github.com/prebid/openrtb/v20/openrtb2"
)

// AuctionResponse hooks are invoked at the very end of request processing.
// The response is already formed, so these hooks only have the power to
// update it, rejection has no effect at this stage.
type AuctionResponse interface {
	HandleAuctionResponseHook(
		context.Context,
		ModuleInvocationContext,
		AuctionResponsePayload,
	) (HookResult[AuctionResponsePayload], error)
}

// AuctionResponsePayload holds the final bid response.
// Hooks are allowed to modify it using mutations.
type AuctionResponsePayload struct {
	BidResponse *openrtb2.BidResponse
}
