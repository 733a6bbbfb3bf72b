package hookstage

import (
	"context"
)

// RawAuctionRequest hooks are invoked only for "auction" requests,
// before the body is parsed into the OpenRTB request object.
//
// At this stage, account config is available, so the account-level module
// config is passed to hooks.
//
// Rejection results in sending an empty response with a rejection code.
type RawAuctionRequest interface {
	HandleRawAuctionRequestHook(
		context.Context,
		ModuleInvocationContext,
		RawAuctionRequestPayload,
	) (HookResult[RawAuctionRequestPayload], error)
}

// RawAuctionRequestPayload is the raw body of the auction request.
type RawAuctionRequestPayload []byte
