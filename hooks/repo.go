package hooks

import (
	"fmt"

	"github.com/openbid/broker/hooks/hookstage"
)

// HookRepository is the hook catalog: lookup by module code filtered by the
// stage-specific sub-type. The boolean follows the comma-ok idiom, absence
// means the module provides no hook for the stage.
type HookRepository interface {
	GetEntrypointHook(module string) (hookstage.Entrypoint, bool)
	GetRawAuctionRequestHook(module string) (hookstage.RawAuctionRequest, bool)
	GetProcessedAuctionRequestHook(module string) (hookstage.ProcessedAuctionRequest, bool)
	GetBidderRequestHook(module string) (hookstage.BidderRequest, bool)
	GetRawBidderResponseHook(module string) (hookstage.RawBidderResponse, bool)
	GetProcessedBidderResponseHook(module string) (hookstage.ProcessedBidderResponse, bool)
	GetAuctionResponseHook(module string) (hookstage.AuctionResponse, bool)
}

// NewHookRepository returns a new instance of the HookRepository interface.
//
// The hooks argument represents a mapping of module code to a module
// instance implementing any number of the stage interfaces. A module
// implementing none of them is a registration error.
func NewHookRepository(hooks map[string]interface{}) (HookRepository, error) {
	repo := new(hookRepository)
	for module, hook := range hooks {
		if err := repo.add(module, hook); err != nil {
			return nil, err
		}
	}

	return repo, nil
}

type hookRepository struct {
	entrypointHooks              map[string]hookstage.Entrypoint
	rawAuctionRequestHooks       map[string]hookstage.RawAuctionRequest
	processedAuctionRequestHooks map[string]hookstage.ProcessedAuctionRequest
	bidderRequestHooks           map[string]hookstage.BidderRequest
	rawBidderResponseHooks       map[string]hookstage.RawBidderResponse
	processedBidderResponseHooks map[string]hookstage.ProcessedBidderResponse
	auctionResponseHooks         map[string]hookstage.AuctionResponse
}

func (r *hookRepository) GetEntrypointHook(module string) (hookstage.Entrypoint, bool) {
	return getHook(r.entrypointHooks, module)
}

func (r *hookRepository) GetRawAuctionRequestHook(module string) (hookstage.RawAuctionRequest, bool) {
	return getHook(r.rawAuctionRequestHooks, module)
}

func (r *hookRepository) GetProcessedAuctionRequestHook(module string) (hookstage.ProcessedAuctionRequest, bool) {
	return getHook(r.processedAuctionRequestHooks, module)
}

func (r *hookRepository) GetBidderRequestHook(module string) (hookstage.BidderRequest, bool) {
	return getHook(r.bidderRequestHooks, module)
}

func (r *hookRepository) GetRawBidderResponseHook(module string) (hookstage.RawBidderResponse, bool) {
	return getHook(r.rawBidderResponseHooks, module)
}

func (r *hookRepository) GetProcessedBidderResponseHook(module string) (hookstage.ProcessedBidderResponse, bool) {
	return getHook(r.processedBidderResponseHooks, module)
}

func (r *hookRepository) GetAuctionResponseHook(module string) (hookstage.AuctionResponse, bool) {
	return getHook(r.auctionResponseHooks, module)
}

func (r *hookRepository) add(module string, hook interface{}) error {
	var hasAnyHooks bool
	var err error

	if h, ok := hook.(hookstage.Entrypoint); ok {
		hasAnyHooks = true
		if r.entrypointHooks, err = addHook(r.entrypointHooks, h, module); err != nil {
			return err
		}
	}

	if h, ok := hook.(hookstage.RawAuctionRequest); ok {
		hasAnyHooks = true
		if r.rawAuctionRequestHooks, err = addHook(r.rawAuctionRequestHooks, h, module); err != nil {
			return err
		}
	}

	if h, ok := hook.(hookstage.ProcessedAuctionRequest); ok {
		hasAnyHooks = true
		if r.processedAuctionRequestHooks, err = addHook(r.processedAuctionRequestHooks, h, module); err != nil {
			return err
		}
	}

	if h, ok := hook.(hookstage.BidderRequest); ok {
		hasAnyHooks = true
		if r.bidderRequestHooks, err = addHook(r.bidderRequestHooks, h, module); err != nil {
			return err
		}
	}

	if h, ok := hook.(hookstage.RawBidderResponse); ok {
		hasAnyHooks = true
		if r.rawBidderResponseHooks, err = addHook(r.rawBidderResponseHooks, h, module); err != nil {
			return err
		}
	}

	if h, ok := hook.(hookstage.ProcessedBidderResponse); ok {
		hasAnyHooks = true
		if r.processedBidderResponseHooks, err = addHook(r.processedBidderResponseHooks, h, module); err != nil {
			return err
		}
	}

	if h, ok := hook.(hookstage.AuctionResponse); ok {
		hasAnyHooks = true
		if r.auctionResponseHooks, err = addHook(r.auctionResponseHooks, h, module); err != nil {
			return err
		}
	}

	if !hasAnyHooks {
		return fmt.Errorf(`hook "%s" does not implement any supported hook interface`, module)
	}

	return nil
}

func getHook[T any](hooks map[string]T, module string) (T, bool) {
	hook, ok := hooks[module]
	return hook, ok
}

func addHook[T any](hooks map[string]T, hook T, module string) (map[string]T, error) {
	if hooks == nil {
		hooks = make(map[string]T)
	}

	if _, ok := hooks[module]; ok {
		return nil, fmt.Errorf(`hook with code "%s" already registered`, module)
	}

	hooks[module] = hook

	return hooks, nil
}
