package hookexecution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openbid/broker/config"
	"github.com/openbid/broker/hooks"
	"github.com/openbid/broker/hooks/hookstage"
)

type hookResponse[T any] struct {
	Result hookstage.HookResult[T]
	Err    error
}

type hookHandler[H any, P any] func(
	context.Context,
	hookstage.ModuleInvocationContext,
	H,
	P,
) (hookstage.HookResult[P], error)

// executeStage runs the plan group by group, threading the payload through.
// A rejection stops the stage immediately and discards the rejecting group's
// payload changes.
func executeStage[H any, P any](
	executionCtx executionContext,
	plan hooks.Plan[H],
	payload P,
	hookHandler hookHandler[H, P],
) (StageOutcome, P, *RejectError) {
	stageOutcome := StageOutcome{
		Groups: make([]GroupOutcome, 0, len(plan)),
		Stage:  executionCtx.stage,
	}

	for _, group := range plan {
		groupOutcome, newPayload, reject := executeGroup(executionCtx, group, payload, hookHandler)
		stageOutcome.ExecutionTimeMillis += groupOutcome.ExecutionTimeMillis
		stageOutcome.Groups = append(stageOutcome.Groups, groupOutcome)
		if reject != nil {
			return stageOutcome, payload, reject
		}
		payload = newPayload
	}

	return stageOutcome, payload, nil
}

// executeGroup runs hooks one after another in their configured order, so a
// later hook observes the mutations of an earlier one. Failures and timeouts
// are recorded and skipped over, only an explicit rejection stops the group.
func executeGroup[H any, P any](
	executionCtx executionContext,
	group hooks.Group[H],
	payload P,
	hookHandler hookHandler[H, P],
) (GroupOutcome, P, *RejectError) {
	var groupOutcome GroupOutcome
	groupOutcome.InvocationResults = make([]HookOutcome, 0, len(group.Hooks))

	for _, hook := range group.Hooks {
		hookOutcome, newPayload, reject := executeHook(executionCtx, hook, group.Timeout, payload, hookHandler)
		groupOutcome.ExecutionTimeMillis += hookOutcome.ExecutionTimeMillis
		groupOutcome.InvocationResults = append(groupOutcome.InvocationResults, hookOutcome)
		if reject != nil {
			return groupOutcome, payload, reject
		}
		payload = newPayload
	}

	return groupOutcome, payload, nil
}

func executeHook[H any, P any](
	executionCtx executionContext,
	hook hooks.HookWrapper[H],
	timeout time.Duration,
	payload P,
	hookHandler hookHandler[H, P],
) (HookOutcome, P, *RejectError) {
	hookID := hooks.HookID{ModuleCode: hook.Module, HookImplCode: hook.Code}
	hookOutcome := HookOutcome{
		HookID: hookID,
		Status: StatusSuccess,
		Action: ActionNone,
	}

	// the group timeout never exceeds the remaining request budget, and an
	// already exhausted budget never runs the hook at all
	if deadline, ok := executionCtx.ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			hookOutcome.Status = StatusTimeout
			hookOutcome.Errors = append(hookOutcome.Errors, TimeoutError{}.Error())
			return hookOutcome, payload, nil
		}
		if timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}

	hookCtx := executionCtx.ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		hookCtx, cancel = context.WithTimeout(hookCtx, timeout)
		defer cancel()
	}

	// the hook runs in its own goroutine so a panic or an overrun never
	// takes the request down with it
	respCh := make(chan hookResponse[P], 1)
	startTime := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				respCh <- hookResponse[P]{Err: fmt.Errorf("hook execution panic: %v", r)}
			}
		}()
		result, err := hookHandler(hookCtx, executionCtx.moduleInvocationCtx(hook.Module, hook.Code), hook.Hook, payload)
		respCh <- hookResponse[P]{Result: result, Err: err}
	}()

	var resp hookResponse[P]
	if timeout > 0 {
		select {
		case resp = <-respCh:
		case <-hookCtx.Done():
			hookOutcome.ExecutionTimeMillis = time.Since(startTime)
			hookOutcome.Status = StatusTimeout
			hookOutcome.Errors = append(hookOutcome.Errors, TimeoutError{}.Error())
			return hookOutcome, payload, nil
		}
	} else {
		resp = <-respCh
	}
	hookOutcome.ExecutionTimeMillis = time.Since(startTime)

	if resp.Err != nil {
		switch resp.Err.(type) {
		case FailureError:
			hookOutcome.Status = StatusFailure
		default:
			hookOutcome.Status = StatusExecutionFailure
		}
		hookOutcome.Errors = append(hookOutcome.Errors, resp.Err.Error())
		return hookOutcome, payload, nil
	}

	result := resp.Result
	if result.ModuleContext != nil {
		executionCtx.moduleContexts.put(hook.Module, result.ModuleContext)
	}

	hookOutcome.Message = result.Message
	hookOutcome.AnalyticsTags = result.AnalyticsTags
	hookOutcome.Errors = append(hookOutcome.Errors, result.Errors...)
	hookOutcome.Warnings = append(hookOutcome.Warnings, result.Warnings...)
	hookOutcome.RejectedBidders = result.RejectedBidders
	if executionCtx.debugEnabled {
		hookOutcome.DebugMessages = append(hookOutcome.DebugMessages, result.DebugMessages...)
	}

	if result.Reject {
		if !executionCtx.rejectAllowed {
			hookOutcome.Warnings = append(
				hookOutcome.Warnings,
				fmt.Sprintf("Module (name: %s, hook code: %s) tried to reject request on the %s stage that does not support rejection", hook.Module, hook.Code, executionCtx.stage),
			)
			return hookOutcome, payload, nil
		}

		reject := &RejectError{NBR: result.NbrCode, Hook: hookID, Stage: executionCtx.stage}
		hookOutcome.Action = ActionReject
		hookOutcome.Errors = append(hookOutcome.Errors, reject.Error())
		return hookOutcome, payload, reject
	}

	if mutations := result.ChangeSet.Mutations(); len(mutations) > 0 {
		hookOutcome.Action = ActionUpdate
		for _, mutation := range mutations {
			newPayload, err := mutation.Apply(payload)
			if err != nil {
				hookOutcome.Warnings = append(
					hookOutcome.Warnings,
					fmt.Sprintf("failed to apply hook mutation: %s", err),
				)
				continue
			}

			payload = newPayload
			if executionCtx.debugEnabled {
				hookOutcome.DebugMessages = append(
					hookOutcome.DebugMessages,
					fmt.Sprintf("Hook mutation successfully applied, affected key: %s, mutation type: %s", mutation.Key(), mutation.Type()),
				)
			}
		}
	}

	return hookOutcome, payload, nil
}

// executionContext holds the request-scoped data every hook invocation
// shares within one stage run.
type executionContext struct {
	ctx            context.Context
	endpoint       string
	stage          string
	bidder         string
	accountID      string
	account        *config.Account
	debugEnabled   bool
	moduleContexts *moduleContexts
	// rejectAllowed is false for stages where a rejection would corrupt
	// an already-formed response, a reject there degrades to a warning.
	rejectAllowed bool
}

func (e executionContext) moduleInvocationCtx(module, hookImplCode string) hookstage.ModuleInvocationContext {
	invocationCtx := hookstage.ModuleInvocationContext{
		AccountID:     e.accountID,
		Endpoint:      e.endpoint,
		DebugEnabled:  e.debugEnabled,
		Bidder:        e.bidder,
		ModuleContext: e.moduleContexts.get(module),
		HookImplCode:  hookImplCode,
	}

	if e.account != nil {
		invocationCtx.AccountConfig = e.account.Hooks.Modules.ModuleConfig(module)
	}

	return invocationCtx
}

// moduleContexts keeps the per-module cross-stage contexts for one request.
type moduleContexts struct {
	sync.RWMutex
	contexts map[string]*hookstage.ModuleContext
}

func newModuleContexts() *moduleContexts {
	return &moduleContexts{contexts: make(map[string]*hookstage.ModuleContext)}
}

func (m *moduleContexts) put(module string, moduleCtx *hookstage.ModuleContext) {
	m.Lock()
	defer m.Unlock()
	m.contexts[module] = moduleCtx
}

func (m *moduleContexts) get(module string) *hookstage.ModuleContext {
	m.RLock()
	defer m.RUnlock()
	return m.contexts[module]
}
