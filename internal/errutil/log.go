// Package errutil bridges oops domain errors into zap logging.
package errutil

import (
	"github.com/samber/oops"
	"go.uber.org/zap"
)

// Error codes shared across the engine.
const (
	CodeMissingScript    = "MISSING_SCRIPT"
	CodeHandlerFailed    = "HANDLER_FAILED"
	CodeUnresolvedTarget = "UNRESOLVED_TARGET"
	CodeUnknownScene     = "UNKNOWN_SCENE"
	CodeAssertFailed     = "ASSERT_FAILED"
)

// Fields flattens an error into zap fields. oops errors contribute their
// code and context; anything else is logged as a plain error.
func Fields(err error) []zap.Field {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []zap.Field{zap.Error(err)}
	}
	fields := []zap.Field{zap.String("error", oopsErr.Error())}
	if code := oopsErr.Code(); code != nil {
		fields = append(fields, zap.Any("code", code))
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		fields = append(fields, zap.Any("context", ctx))
	}
	return fields
}

// LogError logs err at error level with its oops code and context.
func LogError(log *zap.Logger, msg string, err error) {
	log.Error(msg, Fields(err)...)
}

// LogWarn is LogError at warn level, for recoverable kinds such as a
// missing designer script.
func LogWarn(log *zap.Logger, msg string, err error) {
	log.Warn(msg, Fields(err)...)
}

// HasCode reports whether err is an oops error carrying code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}
