package errutil_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vidago/vida/internal/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	err := oops.Code(errutil.CodeUnresolvedTarget).
		With("target", "Guard").
		Errorf("no object named %q", "Guard")

	errutil.LogError(log, "walkthrough step skipped", err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "walkthrough step skipped", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, errutil.CodeUnresolvedTarget, ctx["code"])
	assert.Contains(t, ctx["error"], "Guard")
	errutil.AssertErrorCode(t, err, errutil.CodeUnresolvedTarget)
}

func TestLogWarn_WithStandardError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	errutil.LogWarn(zap.New(core), "odd", errors.New("standard error"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "standard error")
}

func TestHasCode(t *testing.T) {
	assert.True(t, errutil.HasCode(oops.Code(errutil.CodeMissingScript).Errorf("x"), errutil.CodeMissingScript))
	assert.False(t, errutil.HasCode(oops.Code(errutil.CodeMissingScript).Errorf("x"), errutil.CodeHandlerFailed))
	assert.False(t, errutil.HasCode(errors.New("x"), errutil.CodeMissingScript))
}
