package modules

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbid/broker/hooks"
	"github.com/openbid/broker/hooks/hookstage"
)

type testModule struct {
	cfg json.RawMessage
}

func (m testModule) HandleEntrypointHook(
	_ context.Context,
	_ hookstage.ModuleInvocationContext,
	_ hookstage.EntrypointPayload,
) (hookstage.HookResult[hookstage.EntrypointPayload], error) {
	return hookstage.HookResult[hookstage.EntrypointPayload]{}, nil
}

func (m testModule) HandleAuctionResponseHook(
	_ context.Context,
	_ hookstage.ModuleInvocationContext,
	_ hookstage.AuctionResponsePayload,
) (hookstage.HookResult[hookstage.AuctionResponsePayload], error) {
	return hookstage.HookResult[hookstage.AuctionResponsePayload]{}, nil
}

func testBuilders(buildErr error, received *json.RawMessage) ModuleBuilders {
	return ModuleBuilders{
		"acme": {
			"enricher": func(cfg json.RawMessage, _ ModuleDeps) (interface{}, error) {
				if received != nil {
					*received = cfg
				}
				return testModule{cfg: cfg}, buildErr
			},
		},
	}
}

func TestBuild(t *testing.T) {
	var received json.RawMessage
	b := &builder{testBuilders(nil, &received)}

	cfg := map[string]map[string]interface{}{
		"acme": {"enricher": map[string]interface{}{"attribute": "badv"}},
	}

	repo, stageNames, err := b.Build(cfg, ModuleDeps{})
	require.NoError(t, err)

	assert.JSONEq(t, `{"attribute": "badv"}`, string(received))

	_, found := repo.GetEntrypointHook("acme.enricher")
	assert.True(t, found)
	_, found = repo.GetAuctionResponseHook("acme.enricher")
	assert.True(t, found)
	_, found = repo.GetBidderRequestHook("acme.enricher")
	assert.False(t, found)

	assert.ElementsMatch(t, []string{hooks.StageEntrypoint, hooks.StageAuctionResponse}, stageNames["acme.enricher"])
}

func TestBuildSkipsDisabledModule(t *testing.T) {
	b := &builder{testBuilders(nil, nil)}

	cfg := map[string]map[string]interface{}{
		"acme": {"enricher": map[string]interface{}{"enabled": false}},
	}

	repo, stageNames, err := b.Build(cfg, ModuleDeps{})
	require.NoError(t, err)

	_, found := repo.GetEntrypointHook("acme.enricher")
	assert.False(t, found)
	assert.Empty(t, stageNames)
}

func TestBuildNonObjectModuleConfig(t *testing.T) {
	var received json.RawMessage
	b := &builder{testBuilders(nil, &received)}

	// a scalar config has no "enabled" flag to read, the module still builds
	cfg := map[string]map[string]interface{}{
		"acme": {"enricher": "compact"},
	}

	repo, _, err := b.Build(cfg, ModuleDeps{})
	require.NoError(t, err)

	assert.JSONEq(t, `"compact"`, string(received))
	_, found := repo.GetEntrypointHook("acme.enricher")
	assert.True(t, found)
}

func TestBuildWithoutModuleConfig(t *testing.T) {
	var received json.RawMessage
	b := &builder{testBuilders(nil, &received)}

	repo, _, err := b.Build(nil, ModuleDeps{})
	require.NoError(t, err)

	assert.Nil(t, received)
	_, found := repo.GetEntrypointHook("acme.enricher")
	assert.True(t, found)
}

func TestBuildPropagatesBuilderError(t *testing.T) {
	b := &builder{testBuilders(errors.New("bad config"), nil)}

	_, _, err := b.Build(nil, ModuleDeps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to init "acme.enricher" module`)
}
