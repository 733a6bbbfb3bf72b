package hookexecution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbid/broker/hooks"
	"github.com/openbid/broker/hooks/hookstage"
)

func TestGetModulesJSON(t *testing.T) {
	hookID := hooks.HookID{ModuleCode: "vendor.module", HookImplCode: "hook-a"}
	stageOutcomes := []StageOutcome{
		{
			Stage:               hooks.StageEntrypoint,
			Entity:              hookstage.EntityHTTPRequest,
			ExecutionTimeMillis: 3 * time.Millisecond,
			Groups: []GroupOutcome{
				{
					InvocationResults: []HookOutcome{
						{
							HookID:   hookID,
							Status:   StatusFailure,
							Action:   ActionNone,
							Errors:   []string{"attribute not found"},
							Warnings: []string{"deprecated config field"},
						},
					},
				},
			},
		},
		{
			Stage:               hooks.StageBidderRequest,
			Entity:              hookstage.EntityBidderRequest,
			ExecutionTimeMillis: 5 * time.Millisecond,
			Groups:              []GroupOutcome{},
		},
	}

	t.Run("messages_without_trace", func(t *testing.T) {
		outcome := GetModulesJSON(stageOutcomes, false)
		require.NotNil(t, outcome)

		assert.Equal(t, Messages{"vendor.module": {"hook-a": {"attribute not found"}}}, outcome.Errors)
		assert.Equal(t, Messages{"vendor.module": {"hook-a": {"deprecated config field"}}}, outcome.Warnings)
		assert.Nil(t, outcome.Trace)
	})

	t.Run("trace_enabled", func(t *testing.T) {
		outcome := GetModulesJSON(stageOutcomes, true)
		require.NotNil(t, outcome)
		require.NotNil(t, outcome.Trace)

		require.Len(t, outcome.Trace.Stages, 2)
		assert.Equal(t, hooks.StageEntrypoint, outcome.Trace.Stages[0].Stage)
		assert.Equal(t, hooks.StageBidderRequest, outcome.Trace.Stages[1].Stage)
		assert.Equal(t, 8*time.Millisecond, outcome.Trace.ExecutionTimeMillis)
	})

	t.Run("empty_input", func(t *testing.T) {
		assert.Nil(t, GetModulesJSON(nil, true))
	})

	t.Run("no_messages_no_trace", func(t *testing.T) {
		quiet := []StageOutcome{{Stage: hooks.StageEntrypoint, Groups: []GroupOutcome{}}}
		assert.Nil(t, GetModulesJSON(quiet, false))
	})
}

func TestGetModulesJSONGroupsPerBidderOutcomes(t *testing.T) {
	// the same stage executed for two bidders lands in one trace stage
	stageOutcomes := []StageOutcome{
		{Stage: hooks.StageBidderRequest, ExecutionTimeMillis: 2 * time.Millisecond, Groups: []GroupOutcome{}},
		{Stage: hooks.StageBidderRequest, ExecutionTimeMillis: 7 * time.Millisecond, Groups: []GroupOutcome{}},
	}

	outcome := GetModulesJSON(stageOutcomes, true)
	require.NotNil(t, outcome)
	require.Len(t, outcome.Trace.Stages, 1)

	stage := outcome.Trace.Stages[0]
	assert.Len(t, stage.Outcomes, 2)
	// concurrent per-bidder runs report the longest, not the sum
	assert.Equal(t, 7*time.Millisecond, stage.ExecutionTimeMillis)
	assert.Equal(t, 7*time.Millisecond, outcome.Trace.ExecutionTimeMillis)
}

func TestMergeRejectedBidders(t *testing.T) {
	merged := mergeRejectedBidders(nil, map[string][]string{"bidderA": {"reason one"}})
	merged = mergeRejectedBidders(merged, map[string][]string{
		"bidderA": {"reason two"},
		"bidderB": {"reason three"},
	})
	merged = mergeRejectedBidders(merged, nil)

	assert.Equal(t, map[string][]string{
		"bidderA": {"reason one", "reason two"},
		"bidderB": {"reason three"},
	}, merged)
}

func TestRejectError(t *testing.T) {
	err := &RejectError{
		NBR:   301,
		Hook:  hooks.HookID{ModuleCode: "vendor.module", HookImplCode: "hook-a"},
		Stage: hooks.StageRawAuctionRequest,
	}

	assert.Contains(t, err.Error(), "vendor.module")
	assert.Contains(t, err.Error(), "301")

	found := FindFirstRejectOrNil([]error{assert.AnError, err})
	assert.Same(t, err, found)

	assert.Nil(t, FindFirstRejectOrNil([]error{assert.AnError}))
}
