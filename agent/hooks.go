package agent

import (
	"fmt"
	"runtime/debug"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
	"github.com/hupe1980/agentkit/model"
)

// FulfilledRequiredActionHook is called once per executed tool action.
type FulfilledRequiredActionHook func(required core.RequiredAction, performed core.PerformedAction)

// InvokedRemoteServiceHook is called after every successful model round.
type InvokedRemoteServiceHook func(req *model.Request, resp *model.Response)

// callHook runs fn, converting a panic into a logged error so observers
// cannot break the loop.
func callHook(logger logging.Logger, agentName, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("agent.hook.panic",
				"agent", agentName,
				"hook", hook,
				"error", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	fn()
}
