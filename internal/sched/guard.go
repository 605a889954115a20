package sched

import (
	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/vidago/vida/internal/errutil"
)

// Guard runs a designer handler under the failure policy: errors and
// panics are logged with code HANDLER_FAILED and swallowed, unless strict
// is set, in which case they propagate to the caller.
func Guard(log *zap.Logger, strict bool, name, target string, fn func() error) {
	if !strict {
		defer func() {
			if r := recover(); r != nil {
				errutil.LogError(log, "handler panicked", oops.
					Code(errutil.CodeHandlerFailed).
					With("handler", name).
					With("target", target).
					Errorf("handler panicked: %v", r))
			}
		}()
	}
	if err := fn(); err != nil {
		err = oops.
			Code(errutil.CodeHandlerFailed).
			With("handler", name).
			With("target", target).
			Wrap(err)
		if strict {
			panic(err)
		}
		errutil.LogError(log, "handler failed", err)
	}
}
