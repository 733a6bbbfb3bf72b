package hookstage

import (
	"context"

	"github.com/prebid/openrtb/v20/openrtb2"
)

// ProcessedAuctionRequest hooks are invoked after the request is parsed,
// enriched with stored requests and account config, and validated.
//
// Rejection results in sending an empty response with a rejection code.
type ProcessedAuctionRequest interface {
	HandleProcessedAuctionRequestHook(
		context.Context,
		ModuleInvocationContext,
		ProcessedAuctionRequestPayload,
	) (HookResult[ProcessedAuctionRequestPayload], error)
}

// ProcessedAuctionRequestPayload holds the parsed auction request.
// Hooks are allowed to modify it using mutations.
type ProcessedAuctionRequestPayload struct {
	BidRequest *openrtb2.BidRequest
}
