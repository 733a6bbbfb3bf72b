package hookexecution

import (
	"time"

	"github.com/openbid/broker/hooks"
	"github.com/openbid/broker/hooks/hookanalytics"
	"github.com/openbid/broker/hooks/hookstage"
)

// Status indicates the result of hook execution.
type Status string

const (
	StatusSuccess          Status = "success"
	StatusTimeout          Status = "timeout"
	StatusFailure          Status = "failure"
	StatusExecutionFailure Status = "execution_failure"
)

// Action indicates the type of taken behaviour.
type Action string

const (
	ActionUpdate Action = "update"
	ActionReject Action = "reject"
	ActionNone   Action = "no_action"
)

// Messages in format: {"module": {"hook": ["msg1", "msg2"]}}
type Messages map[string]map[string][]string

// ModulesOutcome represents result of hooks execution
// ready to be added to BidResponse.
//
// Errors and Warnings hold the error and warning
// messages of the hooks execution labelled by module and hook codes.
//
// Trace field holds the modules execution details
// and is activated if account or request debug is enabled.
type ModulesOutcome struct {
	Errors   Messages      `json:"errors,omitempty"`
	Warnings Messages      `json:"warnings,omitempty"`
	Trace    *TraceOutcome `json:"trace,omitempty"`
}

// TraceOutcome holds the result of executing hooks at all stages.
type TraceOutcome struct {
	// ExecutionTimeMillis is the sum of ExecutionTimeMillis of all stages.
	ExecutionTimeMillis time.Duration `json:"executiontimemillis"`
	Stages              []Stage       `json:"stages"`
}

// Stage holds the result of executing hooks at specific stage.
// May contain multiple StageOutcome results for stages executed multiple times,
// like the bidder-request or raw-bidder-response stages executed per bidder.
type Stage struct {
	// ExecutionTimeMillis is set to the longest ExecutionTimeMillis of its children,
	// the per-bidder outcomes of a stage accrue concurrently.
	ExecutionTimeMillis time.Duration  `json:"executiontimemillis"`
	Stage               string         `json:"stage"`
	Outcomes            []StageOutcome `json:"outcomes"`
}

// StageOutcome represents the result of executing specific stage.
type StageOutcome struct {
	// ExecutionTimeMillis is the sum of ExecutionTimeMillis of all its groups,
	// groups run one after another.
	ExecutionTimeMillis time.Duration    `json:"executiontimemillis"`
	Entity              hookstage.Entity `json:"entity"`
	Groups              []GroupOutcome   `json:"groups"`
	Stage               string           `json:"-"`
}

// GroupOutcome represents the result of executing specific group of hooks.
type GroupOutcome struct {
	// ExecutionTimeMillis is the sum of ExecutionTimeMillis of all its hooks,
	// hooks within a group run sequentially.
	ExecutionTimeMillis time.Duration `json:"executiontimemillis"`
	InvocationResults   []HookOutcome `json:"invocationresults"`
}

// HookOutcome represents the result of executing specific hook.
type HookOutcome struct {
	// ExecutionTimeMillis is how long this hook ran before returning,
	// timing out or panicking.
	ExecutionTimeMillis time.Duration           `json:"executiontimemillis"`
	AnalyticsTags       hookanalytics.Analytics `json:"analyticstags"`
	HookID              hooks.HookID            `json:"hookid"`
	Status              Status                  `json:"status"`
	Action              Action                  `json:"action"`
	Message             string                  `json:"message"` // arbitrary string value returned from hook execution
	DebugMessages       []string                `json:"debugmessages"`
	Errors              []string                `json:"-"`
	Warnings            []string                `json:"-"`
	RejectedBidders     map[string][]string     `json:"-"`
}

// GetModulesJSON assembles the hooks execution summary from the collected
// stage outcomes. Returns nil when there is nothing to report so callers
// can omit the ext block entirely.
func GetModulesJSON(stageOutcomes []StageOutcome, trace bool) *ModulesOutcome {
	if len(stageOutcomes) == 0 {
		return nil
	}

	var outcome ModulesOutcome
	stages := make(map[string]Stage)
	stageNames := make([]string, 0)
	for _, stageOutcome := range stageOutcomes {
		collectHookMessages(&outcome, stageOutcome)
		if trace {
			stage, ok := stages[stageOutcome.Stage]
			if !ok {
				stageNames = append(stageNames, stageOutcome.Stage)
				stage.Stage = stageOutcome.Stage
			}
			stage.Outcomes = append(stage.Outcomes, stageOutcome)
			if stageOutcome.ExecutionTimeMillis > stage.ExecutionTimeMillis {
				stage.ExecutionTimeMillis = stageOutcome.ExecutionTimeMillis
			}
			stages[stageOutcome.Stage] = stage
		}
	}

	if trace {
		traceOutcome := &TraceOutcome{Stages: make([]Stage, 0, len(stages))}
		for _, name := range stageNames {
			stage := stages[name]
			traceOutcome.ExecutionTimeMillis += stage.ExecutionTimeMillis
			traceOutcome.Stages = append(traceOutcome.Stages, stage)
		}
		outcome.Trace = traceOutcome
	}

	if outcome.Errors == nil && outcome.Warnings == nil && outcome.Trace == nil {
		return nil
	}

	return &outcome
}

func collectHookMessages(outcome *ModulesOutcome, stageOutcome StageOutcome) {
	for _, group := range stageOutcome.Groups {
		for _, hookOutcome := range group.InvocationResults {
			if len(hookOutcome.Errors) > 0 {
				outcome.Errors = appendHookMessages(outcome.Errors, hookOutcome.HookID, hookOutcome.Errors)
			}
			if len(hookOutcome.Warnings) > 0 {
				outcome.Warnings = appendHookMessages(outcome.Warnings, hookOutcome.HookID, hookOutcome.Warnings)
			}
		}
	}
}

func appendHookMessages(messages Messages, id hooks.HookID, values []string) Messages {
	if messages == nil {
		messages = make(Messages)
	}
	if _, ok := messages[id.ModuleCode]; !ok {
		messages[id.ModuleCode] = make(map[string][]string)
	}
	messages[id.ModuleCode][id.HookImplCode] = append(messages[id.ModuleCode][id.HookImplCode], values...)
	return messages
}

// mergeRejectedBidders unions per-bidder rejection reasons, preserving every
// reason reported by every hook.
func mergeRejectedBidders(dst, src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string][]string, len(src))
	}
	for bidder, reasons := range src {
		dst[bidder] = append(dst[bidder], reasons...)
	}
	return dst
}
