package hookstage

import (
	"encoding/json"
	"sync"

	"github.com/openbid/broker/hooks/hookanalytics"
)

// HookResult represents the result of execution the concrete hook instance.
type HookResult[T any] struct {
	Reject        bool         // true value indicates rejection of the program execution at the specific stage
	NbrCode       int          // hook must provide NbrCode if the field Reject set to true
	Message       string       // holds arbitrary message added by hook
	ChangeSet     ChangeSet[T] // set of changes the module wants to apply to hook payload in case of successful execution
	Errors        []string
	Warnings      []string
	DebugMessages []string
	AnalyticsTags hookanalytics.Analytics
	// RejectedBidders maps a bidder name to the reasons the hook excluded it
	// from the auction. Unioned with rejections from other hooks and stages.
	RejectedBidders map[string][]string
	// ModuleContext holds values that the module wants to pass to itself at later stages.
	ModuleContext *ModuleContext
}

// ModuleInvocationContext holds read-only data passed to the module hook during invocation.
type ModuleInvocationContext struct {
	// AccountID holds the account ID.
	AccountID string
	// AccountConfig represents module config rewritten at the account-level.
	AccountConfig json.RawMessage
	// Endpoint represents the path of the current endpoint.
	Endpoint string
	// DebugEnabled reflects the debug mode of the request.
	DebugEnabled bool
	// Bidder is set only for bidder-scoped stages.
	Bidder string
	// ModuleContext holds values that the module passes to itself from the previous stages.
	ModuleContext *ModuleContext
	// HookImplCode is the hook_impl_code for a module instance to differentiate between multiple hooks.
	HookImplCode string
}

// ModuleContext holds arbitrary data passed between module hooks at different stages.
// We use interface as we do not know exactly how the modules will use their inner context.
type ModuleContext struct {
	sync.RWMutex
	data map[string]any
}

// NewModuleContext creates a new module context.
func NewModuleContext() *ModuleContext {
	return &ModuleContext{data: make(map[string]any)}
}

// Get retrieves a value from the module context with read lock.
func (mc *ModuleContext) Get(key string) (any, bool) {
	if mc == nil || mc.data == nil {
		return nil, false
	}
	mc.RLock()
	defer mc.RUnlock()
	val, ok := mc.data[key]
	return val, ok
}

// Set stores a value in the module context with write lock.
func (mc *ModuleContext) Set(key string, value any) {
	if mc == nil {
		return
	}
	mc.Lock()
	defer mc.Unlock()
	if mc.data == nil {
		mc.data = make(map[string]any)
	}
	mc.data[key] = value
}
