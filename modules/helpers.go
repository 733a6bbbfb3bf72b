package modules

import (
	"fmt"

	"github.com/openbid/broker/hooks"
	"github.com/openbid/broker/hooks/hookstage"
)

// createModuleStageNamesCollection maps each built module to the stage names
// it participates in, derived from the hook interfaces the module implements.
// The collection feeds debug output and metrics labelling.
func createModuleStageNamesCollection(modules map[string]interface{}) (map[string][]string, error) {
	moduleStageNameCollector := make(map[string][]string)

	for id, hook := range modules {
		var added bool
		if _, ok := hook.(hookstage.Entrypoint); ok {
			added = true
			moduleStageNameCollector = addModuleStageName(moduleStageNameCollector, id, hooks.StageEntrypoint)
		}

		if _, ok := hook.(hookstage.RawAuctionRequest); ok {
			added = true
			moduleStageNameCollector = addModuleStageName(moduleStageNameCollector, id, hooks.StageRawAuctionRequest)
		}

		if _, ok := hook.(hookstage.ProcessedAuctionRequest); ok {
			added = true
			moduleStageNameCollector = addModuleStageName(moduleStageNameCollector, id, hooks.StageProcessedAuctionRequest)
		}

		if _, ok := hook.(hookstage.BidderRequest); ok {
			added = true
			moduleStageNameCollector = addModuleStageName(moduleStageNameCollector, id, hooks.StageBidderRequest)
		}

		if _, ok := hook.(hookstage.RawBidderResponse); ok {
			added = true
			moduleStageNameCollector = addModuleStageName(moduleStageNameCollector, id, hooks.StageRawBidderResponse)
		}

		if _, ok := hook.(hookstage.ProcessedBidderResponse); ok {
			added = true
			moduleStageNameCollector = addModuleStageName(moduleStageNameCollector, id, hooks.StageProcessedBidderResponse)
		}

		if _, ok := hook.(hookstage.AuctionResponse); ok {
			added = true
			moduleStageNameCollector = addModuleStageName(moduleStageNameCollector, id, hooks.StageAuctionResponse)
		}

		if !added {
			return nil, fmt.Errorf(`hook "%s" does not implement any supported hook interface`, id)
		}
	}

	return moduleStageNameCollector, nil
}

func addModuleStageName(moduleStageNameCollector map[string][]string, id string, stage string) map[string][]string {
	str := make([]string, 0)
	if s, ok := moduleStageNameCollector[id]; ok {
		str = s
	}
	moduleStageNameCollector[id] = append(str, stage)

	return moduleStageNameCollector
}
