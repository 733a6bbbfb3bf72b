package hookexecution

import (
	"context"
	"net/http"
	"sync"

	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/openbid/broker/config"
	"github.com/openbid/broker/hooks"
	"github.com/openbid/broker/hooks/hookstage"
	"github.com/openbid/broker/privacy"
)

// NbrActivityDenied is the no-bid reason reported when account activity
// rules keep a bidder out of the auction.
const NbrActivityDenied = 204

// StageExecutor executes all hooks of a specific stage in the established order.
type StageExecutor interface {
	ExecuteEntrypointStage(req *http.Request, body []byte) ([]byte, *RejectError)
	ExecuteRawAuctionRequestStage(ctx context.Context, body []byte) ([]byte, *RejectError)
	ExecuteProcessedAuctionRequestStage(ctx context.Context, request *openrtb2.BidRequest) (*openrtb2.BidRequest, *RejectError)
	ExecuteBidderRequestStage(ctx context.Context, request *openrtb2.BidRequest, bidder string) (*openrtb2.BidRequest, *RejectError)
	ExecuteRawBidderResponseStage(ctx context.Context, bidder string, body []byte) ([]byte, *RejectError)
	ExecuteProcessedBidderResponseStage(ctx context.Context, bidder string, bids []*openrtb2.Bid) ([]*openrtb2.Bid, *RejectError)
	ExecuteAuctionResponseStage(ctx context.Context, response *openrtb2.BidResponse) *openrtb2.BidResponse
}

// HookExecutor is a request-scoped pipeline driver: one instance accompanies
// a request through all stages, accumulating outcomes and module contexts.
type HookExecutor interface {
	StageExecutor
	// SetAccount makes account-scoped plans and module configs available to
	// the stages that run after account resolution.
	SetAccount(account *config.Account)
	// SetActivityControl installs the account's activity permission plans.
	SetActivityControl(activityControl privacy.ActivityControl)
	// SetABTestSelector installs the request's AB-test selector so stage
	// outcomes carry analytics tags for the drawn variants.
	SetABTestSelector(selector *hooks.ABTestSelector)
	GetOutcomes() []StageOutcome
	// GetRejectedBidders returns the union of bidder rejections reported by
	// hooks and by activity gating, keyed by bidder name.
	GetRejectedBidders() map[string][]string
}

type hookExecutor struct {
	account         *config.Account
	accountID       string
	endpoint        string
	planBuilder     hooks.ExecutionPlanBuilder
	stageOutcomes   []StageOutcome
	rejectedBidders map[string][]string
	moduleContexts  *moduleContexts
	activityControl privacy.ActivityControl
	abTests         *abTestTagger
	debugEnabled    bool
	// protects the accumulators from bidder-scoped stages running concurrently
	sync.Mutex
}

func NewHookExecutor(builder hooks.ExecutionPlanBuilder, endpoint string, debugEnabled bool) *hookExecutor {
	return &hookExecutor{
		endpoint:       endpoint,
		planBuilder:    builder,
		stageOutcomes:  []StageOutcome{},
		moduleContexts: newModuleContexts(),
		abTests:        newABTestTagger(),
		debugEnabled:   debugEnabled,
	}
}

func (e *hookExecutor) SetAccount(account *config.Account) {
	if account == nil {
		return
	}

	e.account = account
	e.accountID = account.ID
}

func (e *hookExecutor) SetActivityControl(activityControl privacy.ActivityControl) {
	e.activityControl = activityControl
}

func (e *hookExecutor) SetABTestSelector(selector *hooks.ABTestSelector) {
	e.abTests.selector = selector
}

func (e *hookExecutor) GetOutcomes() []StageOutcome {
	e.Lock()
	defer e.Unlock()
	return e.stageOutcomes
}

func (e *hookExecutor) GetRejectedBidders() map[string][]string {
	e.Lock()
	defer e.Unlock()

	rejected := make(map[string][]string, len(e.rejectedBidders))
	for bidder, reasons := range e.rejectedBidders {
		rejected[bidder] = append([]string(nil), reasons...)
	}
	return rejected
}

func (e *hookExecutor) ExecuteEntrypointStage(req *http.Request, body []byte) ([]byte, *RejectError) {
	plan := e.planBuilder.PlanForEntrypointStage(e.endpoint)
	if len(plan) == 0 {
		return body, nil
	}

	handler := func(
		ctx context.Context,
		moduleCtx hookstage.ModuleInvocationContext,
		hook hookstage.Entrypoint,
		payload hookstage.EntrypointPayload,
	) (hookstage.HookResult[hookstage.EntrypointPayload], error) {
		return hook.HandleEntrypointHook(ctx, moduleCtx, payload)
	}

	executionCtx := e.newContext(req.Context(), hooks.StageEntrypoint, "", true)
	payload := hookstage.EntrypointPayload{Request: req, Body: body}

	outcome, payload, reject := executeStage(executionCtx, plan, payload, handler)
	outcome.Entity = hookstage.EntityHTTPRequest
	e.saveStageOutcome(outcome)

	return payload.Body, reject
}

func (e *hookExecutor) ExecuteRawAuctionRequestStage(ctx context.Context, body []byte) ([]byte, *RejectError) {
	plan := e.planBuilder.PlanForRawAuctionRequestStage(e.endpoint, e.account)
	if len(plan) == 0 {
		return body, nil
	}

	handler := func(
		ctx context.Context,
		moduleCtx hookstage.ModuleInvocationContext,
		hook hookstage.RawAuctionRequest,
		payload hookstage.RawAuctionRequestPayload,
	) (hookstage.HookResult[hookstage.RawAuctionRequestPayload], error) {
		return hook.HandleRawAuctionRequestHook(ctx, moduleCtx, payload)
	}

	executionCtx := e.newContext(ctx, hooks.StageRawAuctionRequest, "", true)
	payload := hookstage.RawAuctionRequestPayload(body)

	outcome, payload, reject := executeStage(executionCtx, plan, payload, handler)
	outcome.Entity = hookstage.EntityAuctionRequest
	e.saveStageOutcome(outcome)

	return payload, reject
}

func (e *hookExecutor) ExecuteProcessedAuctionRequestStage(ctx context.Context, request *openrtb2.BidRequest) (*openrtb2.BidRequest, *RejectError) {
	plan := e.planBuilder.PlanForProcessedAuctionRequestStage(e.endpoint, e.account)
	if len(plan) == 0 {
		return request, nil
	}

	handler := func(
		ctx context.Context,
		moduleCtx hookstage.ModuleInvocationContext,
		hook hookstage.ProcessedAuctionRequest,
		payload hookstage.ProcessedAuctionRequestPayload,
	) (hookstage.HookResult[hookstage.ProcessedAuctionRequestPayload], error) {
		return hook.HandleProcessedAuctionRequestHook(ctx, moduleCtx, payload)
	}

	executionCtx := e.newContext(ctx, hooks.StageProcessedAuctionRequest, "", true)
	payload := hookstage.ProcessedAuctionRequestPayload{BidRequest: request}

	outcome, payload, reject := executeStage(executionCtx, plan, payload, handler)
	outcome.Entity = hookstage.EntityAuctionRequest
	e.saveStageOutcome(outcome)

	if reject != nil {
		return request, reject
	}
	return payload.BidRequest, nil
}

func (e *hookExecutor) ExecuteBidderRequestStage(ctx context.Context, request *openrtb2.BidRequest, bidder string) (*openrtb2.BidRequest, *RejectError) {
	if !e.activityControl.Allow(privacy.ActivityCallBidder, privacy.Component{Type: privacy.ComponentTypeBidder, Name: bidder}) {
		e.Lock()
		e.rejectedBidders = mergeRejectedBidders(e.rejectedBidders, map[string][]string{
			bidder: {"bidder call disallowed by account activity rules"},
		})
		e.Unlock()
		return request, &RejectError{NBR: NbrActivityDenied, Stage: hooks.StageBidderRequest}
	}

	plan := e.planBuilder.PlanForBidderRequestStage(e.endpoint, e.account)
	if len(plan) == 0 {
		return request, nil
	}

	handler := func(
		ctx context.Context,
		moduleCtx hookstage.ModuleInvocationContext,
		hook hookstage.BidderRequest,
		payload hookstage.BidderRequestPayload,
	) (hookstage.HookResult[hookstage.BidderRequestPayload], error) {
		return hook.HandleBidderRequestHook(ctx, moduleCtx, payload)
	}

	executionCtx := e.newContext(ctx, hooks.StageBidderRequest, bidder, true)
	payload := hookstage.BidderRequestPayload{BidRequest: request, Bidder: bidder}

	outcome, payload, reject := executeStage(executionCtx, plan, payload, handler)
	outcome.Entity = hookstage.EntityBidderRequest
	e.saveStageOutcome(outcome)

	if reject != nil {
		return request, reject
	}
	return payload.BidRequest, nil
}

func (e *hookExecutor) ExecuteRawBidderResponseStage(ctx context.Context, bidder string, body []byte) ([]byte, *RejectError) {
	plan := e.planBuilder.PlanForRawBidderResponseStage(e.endpoint, e.account)
	if len(plan) == 0 {
		return body, nil
	}

	handler := func(
		ctx context.Context,
		moduleCtx hookstage.ModuleInvocationContext,
		hook hookstage.RawBidderResponse,
		payload hookstage.RawBidderResponsePayload,
	) (hookstage.HookResult[hookstage.RawBidderResponsePayload], error) {
		return hook.HandleRawBidderResponseHook(ctx, moduleCtx, payload)
	}

	executionCtx := e.newContext(ctx, hooks.StageRawBidderResponse, bidder, true)
	payload := hookstage.RawBidderResponsePayload{Bidder: bidder, Body: body}

	outcome, payload, reject := executeStage(executionCtx, plan, payload, handler)
	outcome.Entity = hookstage.EntityBidderResponse
	e.saveStageOutcome(outcome)

	if reject != nil {
		return body, reject
	}
	return payload.Body, nil
}

func (e *hookExecutor) ExecuteProcessedBidderResponseStage(ctx context.Context, bidder string, bids []*openrtb2.Bid) ([]*openrtb2.Bid, *RejectError) {
	plan := e.planBuilder.PlanForProcessedBidderResponseStage(e.endpoint, e.account)
	if len(plan) == 0 {
		return bids, nil
	}

	handler := func(
		ctx context.Context,
		moduleCtx hookstage.ModuleInvocationContext,
		hook hookstage.ProcessedBidderResponse,
		payload hookstage.ProcessedBidderResponsePayload,
	) (hookstage.HookResult[hookstage.ProcessedBidderResponsePayload], error) {
		return hook.HandleProcessedBidderResponseHook(ctx, moduleCtx, payload)
	}

	executionCtx := e.newContext(ctx, hooks.StageProcessedBidderResponse, bidder, true)
	payload := hookstage.ProcessedBidderResponsePayload{Bidder: bidder, Bids: bids}

	outcome, payload, reject := executeStage(executionCtx, plan, payload, handler)
	outcome.Entity = hookstage.EntityBidderResponse
	e.saveStageOutcome(outcome)

	if reject != nil {
		return bids, reject
	}
	return payload.Bids, nil
}

func (e *hookExecutor) ExecuteAuctionResponseStage(ctx context.Context, response *openrtb2.BidResponse) *openrtb2.BidResponse {
	plan := e.planBuilder.PlanForAuctionResponseStage(e.endpoint, e.account)
	if len(plan) == 0 {
		return response
	}

	handler := func(
		ctx context.Context,
		moduleCtx hookstage.ModuleInvocationContext,
		hook hookstage.AuctionResponse,
		payload hookstage.AuctionResponsePayload,
	) (hookstage.HookResult[hookstage.AuctionResponsePayload], error) {
		return hook.HandleAuctionResponseHook(ctx, moduleCtx, payload)
	}

	executionCtx := e.newContext(ctx, hooks.StageAuctionResponse, "", false)
	payload := hookstage.AuctionResponsePayload{BidResponse: response}

	outcome, payload, _ := executeStage(executionCtx, plan, payload, handler)
	outcome.Entity = hookstage.EntityAuctionResponse
	e.saveStageOutcome(outcome)

	return payload.BidResponse
}

func (e *hookExecutor) newContext(ctx context.Context, stage, bidder string, rejectAllowed bool) executionContext {
	return executionContext{
		ctx:            ctx,
		endpoint:       e.endpoint,
		stage:          stage,
		bidder:         bidder,
		accountID:      e.accountID,
		account:        e.account,
		debugEnabled:   e.debugEnabled,
		moduleContexts: e.moduleContexts,
		rejectAllowed:  rejectAllowed,
	}
}

func (e *hookExecutor) saveStageOutcome(outcome StageOutcome) {
	e.Lock()
	defer e.Unlock()

	for _, group := range outcome.Groups {
		for _, hookOutcome := range group.InvocationResults {
			e.rejectedBidders = mergeRejectedBidders(e.rejectedBidders, hookOutcome.RejectedBidders)
		}
	}
	e.abTests.writeOutcome(&outcome)
	e.stageOutcomes = append(e.stageOutcomes, outcome)
}

// EmptyHookExecutor is the no-op executor used when the hooks functionality
// is disabled for the host or the endpoint.
type EmptyHookExecutor struct{}

func (e EmptyHookExecutor) SetAccount(_ *config.Account)                 {}
func (e EmptyHookExecutor) SetActivityControl(_ privacy.ActivityControl) {}
func (e EmptyHookExecutor) SetABTestSelector(_ *hooks.ABTestSelector)    {}
func (e EmptyHookExecutor) GetOutcomes() []StageOutcome                  { return nil }
func (e EmptyHookExecutor) GetRejectedBidders() map[string][]string      { return nil }

func (e EmptyHookExecutor) ExecuteEntrypointStage(_ *http.Request, body []byte) ([]byte, *RejectError) {
	return body, nil
}

func (e EmptyHookExecutor) ExecuteRawAuctionRequestStage(_ context.Context, body []byte) ([]byte, *RejectError) {
	return body, nil
}

func (e EmptyHookExecutor) ExecuteProcessedAuctionRequestStage(_ context.Context, request *openrtb2.BidRequest) (*openrtb2.BidRequest, *RejectError) {
	return request, nil
}

func (e EmptyHookExecutor) ExecuteBidderRequestStage(_ context.Context, request *openrtb2.BidRequest, _ string) (*openrtb2.BidRequest, *RejectError) {
	return request, nil
}

func (e EmptyHookExecutor) ExecuteRawBidderResponseStage(_ context.Context, _ string, body []byte) ([]byte, *RejectError) {
	return body, nil
}

func (e EmptyHookExecutor) ExecuteProcessedBidderResponseStage(_ context.Context, _ string, bids []*openrtb2.Bid) ([]*openrtb2.Bid, *RejectError) {
	return bids, nil
}

func (e EmptyHookExecutor) ExecuteAuctionResponseStage(_ context.Context, response *openrtb2.BidResponse) *openrtb2.BidResponse {
	return response
}
