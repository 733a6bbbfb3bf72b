package hooks

import (
	"time"

	"github.com/golang/glog"

	"github.com/openbid/broker/config"
	"github.com/openbid/broker/hooks/hookstage"
)

// Names of the available stages, in request-processing order.
const (
	StageEntrypoint              = "entrypoint"
	StageRawAuctionRequest       = "raw_auction_request"
	StageProcessedAuctionRequest = "processed_auction_request"
	StageBidderRequest           = "bidder_request"
	StageRawBidderResponse       = "raw_bidder_response"
	StageProcessedBidderResponse = "processed_bidder_response"
	StageAuctionResponse         = "auction_response"
)

// ExecutionPlanBuilder is the interface that provides methods
// for retrieving hooks grouped and sorted in the established order
// according to the hook execution plan intended for run at a certain stage.
type ExecutionPlanBuilder interface {
	PlanForEntrypointStage(endpoint string) Plan[hookstage.Entrypoint]
	PlanForRawAuctionRequestStage(endpoint string, account *config.Account) Plan[hookstage.RawAuctionRequest]
	PlanForProcessedAuctionRequestStage(endpoint string, account *config.Account) Plan[hookstage.ProcessedAuctionRequest]
	PlanForBidderRequestStage(endpoint string, account *config.Account) Plan[hookstage.BidderRequest]
	PlanForRawBidderResponseStage(endpoint string, account *config.Account) Plan[hookstage.RawBidderResponse]
	PlanForProcessedBidderResponseStage(endpoint string, account *config.Account) Plan[hookstage.ProcessedBidderResponse]
	PlanForAuctionResponseStage(endpoint string, account *config.Account) Plan[hookstage.AuctionResponse]
}

// Plan represents a slice of groups of hooks of a specific type grouped in the established order.
type Plan[T any] []Group[T]

// Group represents a slice of hooks sorted in the established order.
type Group[T any] struct {
	// Timeout specifies the max duration that a single hook in this group is allowed to run.
	// The remaining request budget bounds it further.
	Timeout time.Duration
	// Hooks holds a slice of HookWrapper of a specific type.
	Hooks []HookWrapper[T]
}

// HookWrapper wraps Hook representing specific hook interface
// and holds additional meta information, such as Module name and hook Code.
type HookWrapper[T any] struct {
	// Module holds a name of the module that provides the Hook.
	// Specified in the format "vendor.module_name".
	Module string
	// Code is an arbitrary value assigned to hook via the hook execution plan
	// and is used when sending metrics, logging debug information, etc.
	Code string
	// Hook is an instance of the specific hook interface.
	Hook T
}

// RepositoryResolver returns the current hook repository. Capturing a
// resolver instead of the repository itself keeps plan building late-bound:
// a catalog reload is picked up on the next plan build without invalidating
// anything already running.
type RepositoryResolver func() HookRepository

// NewExecutionPlanBuilder returns a new instance of the ExecutionPlanBuilder interface.
// Depending on the hooks' status, method returns a real PlanBuilder or the EmptyPlanBuilder.
// The selector applies AB-test variant substitution and may be nil.
func NewExecutionPlanBuilder(hooks config.Hooks, repo RepositoryResolver, selector *ABTestSelector) ExecutionPlanBuilder {
	if hooks.Enabled {
		return PlanBuilder{
			hooks:    hooks,
			repo:     repo,
			selector: selector,
		}
	}
	return EmptyPlanBuilder{}
}

// PlanBuilder is a concrete implementation of the ExecutionPlanBuilder interface.
// Which returns hook execution plans for specific stage defined by the hook config.
type PlanBuilder struct {
	hooks    config.Hooks
	repo     RepositoryResolver
	selector *ABTestSelector
}

func (p PlanBuilder) PlanForEntrypointStage(endpoint string) Plan[hookstage.Entrypoint] {
	return getMergedPlan(
		p,
		nil,
		endpoint,
		StageEntrypoint,
		HookRepository.GetEntrypointHook,
	)
}

func (p PlanBuilder) PlanForRawAuctionRequestStage(endpoint string, account *config.Account) Plan[hookstage.RawAuctionRequest] {
	return getMergedPlan(
		p,
		account,
		endpoint,
		StageRawAuctionRequest,
		HookRepository.GetRawAuctionRequestHook,
	)
}

func (p PlanBuilder) PlanForProcessedAuctionRequestStage(endpoint string, account *config.Account) Plan[hookstage.ProcessedAuctionRequest] {
	return getMergedPlan(
		p,
		account,
		endpoint,
		StageProcessedAuctionRequest,
		HookRepository.GetProcessedAuctionRequestHook,
	)
}

func (p PlanBuilder) PlanForBidderRequestStage(endpoint string, account *config.Account) Plan[hookstage.BidderRequest] {
	return getMergedPlan(
		p,
		account,
		endpoint,
		StageBidderRequest,
		HookRepository.GetBidderRequestHook,
	)
}

func (p PlanBuilder) PlanForRawBidderResponseStage(endpoint string, account *config.Account) Plan[hookstage.RawBidderResponse] {
	return getMergedPlan(
		p,
		account,
		endpoint,
		StageRawBidderResponse,
		HookRepository.GetRawBidderResponseHook,
	)
}

func (p PlanBuilder) PlanForProcessedBidderResponseStage(endpoint string, account *config.Account) Plan[hookstage.ProcessedBidderResponse] {
	return getMergedPlan(
		p,
		account,
		endpoint,
		StageProcessedBidderResponse,
		HookRepository.GetProcessedBidderResponseHook,
	)
}

func (p PlanBuilder) PlanForAuctionResponseStage(endpoint string, account *config.Account) Plan[hookstage.AuctionResponse] {
	return getMergedPlan(
		p,
		account,
		endpoint,
		StageAuctionResponse,
		HookRepository.GetAuctionResponseHook,
	)
}

type hookFn[T any] func(repo HookRepository, moduleCode string) (T, bool)

func getMergedPlan[T any](
	builder PlanBuilder,
	account *config.Account,
	endpoint, stage string,
	getHookFn hookFn[T],
) Plan[T] {
	accountPlan := builder.hooks.DefaultAccountExecutionPlan
	if account != nil && account.Hooks.ExecutionPlan.Endpoints != nil {
		accountPlan = account.Hooks.ExecutionPlan
	}

	plan := getPlan(builder, builder.hooks.HostExecutionPlan, endpoint, stage, getHookFn)
	plan = append(plan, getPlan(builder, accountPlan, endpoint, stage, getHookFn)...)

	return plan
}

func getPlan[T any](builder PlanBuilder, cfg config.HookExecutionPlan, endpoint, stage string, getHookFn hookFn[T]) Plan[T] {
	plan := make(Plan[T], 0, len(cfg.Endpoints[endpoint].Stages[stage].Groups))
	for _, groupCfg := range cfg.Endpoints[endpoint].Stages[stage].Groups {
		group := getGroup(builder, groupCfg, getHookFn)
		if len(group.Hooks) > 0 {
			plan = append(plan, group)
		}
	}

	return plan
}

func getGroup[T any](builder PlanBuilder, cfg config.HookExecutionGroup, getHookFn hookFn[T]) Group[T] {
	group := Group[T]{
		Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
		Hooks:   make([]HookWrapper[T], 0, len(cfg.HookSequence)),
	}

	repo := builder.repo()
	for _, hookCfg := range cfg.HookSequence {
		id := HookID{ModuleCode: hookCfg.ModuleCode, HookImplCode: hookCfg.HookImplCode}
		if builder.selector != nil {
			id = builder.selector.Select(id)
		}

		if h, ok := getHookFn(repo, id.ModuleCode); ok {
			group.Hooks = append(group.Hooks, HookWrapper[T]{Module: id.ModuleCode, Code: id.HookImplCode, Hook: h})
		} else {
			// absence means "hook not configured", not an error
			glog.Warningf("Not found hook while building hook execution plan: %s %s", id.ModuleCode, id.HookImplCode)
		}
	}

	return group
}
