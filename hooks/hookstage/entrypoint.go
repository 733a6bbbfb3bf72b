package hookstage

import (
	"context"
	"net/http"
)

// Entrypoint hooks are invoked at the very beginning of request processing,
// before the body is parsed into the auction request.
//
// Rejection results in sending an empty response with a rejection code.
type Entrypoint interface {
	HandleEntrypointHook(
		context.Context,
		ModuleInvocationContext,
		EntrypointPayload,
	) (HookResult[EntrypointPayload], error)
}

// EntrypointPayload consists of an HTTP request and its body. Hooks are
// allowed to modify the body using mutations.
type EntrypointPayload struct {
	Request *http.Request
	Body    []byte
}
