package hooks

import (
	"github.com/openbid/broker/config"
	"github.com/openbid/broker/hooks/hookstage"
)

// EmptyPlanBuilder implements the ExecutionPlanBuilder interface
// and used as the stub when the hooks' functionality is disabled.
type EmptyPlanBuilder struct{}

func (e EmptyPlanBuilder) PlanForEntrypointStage(endpoint string) Plan[hookstage.Entrypoint] {
	return nil
}

func (e EmptyPlanBuilder) PlanForRawAuctionRequestStage(endpoint string, account *config.Account) Plan[hookstage.RawAuctionRequest] {
	return nil
}

func (e EmptyPlanBuilder) PlanForProcessedAuctionRequestStage(endpoint string, account *config.Account) Plan[hookstage.ProcessedAuctionRequest] {
	return nil
}

func (e EmptyPlanBuilder) PlanForBidderRequestStage(endpoint string, account *config.Account) Plan[hookstage.BidderRequest] {
	return nil
}

func (e EmptyPlanBuilder) PlanForRawBidderResponseStage(endpoint string, account *config.Account) Plan[hookstage.RawBidderResponse] {
	return nil
}

func (e EmptyPlanBuilder) PlanForProcessedBidderResponseStage(endpoint string, account *config.Account) Plan[hookstage.ProcessedBidderResponse] {
	return nil
}

func (e EmptyPlanBuilder) PlanForAuctionResponseStage(endpoint string, account *config.Account) Plan[hookstage.AuctionResponse] {
	return nil
}
