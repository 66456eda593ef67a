package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_KeepsZeroFields(t *testing.T) {
	defer Reset()

	Configure(Config{Short: 7 * time.Second})
	if Short() != 7*time.Second {
		t.Errorf("Short = %v", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium = %v, want default", Medium())
	}

	Reset()
	if Current() != defaults() {
		t.Errorf("Reset left %+v", Current())
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.New(core), "slow op")
	<-ctx.Done()
	cancel()
	if logs.FilterMessage("operation timed out").Len() != 1 {
		t.Error("expected a timeout warning")
	}

	ctx, cancel = WithTimeout(context.Background(), time.Minute, zap.New(core), "fast op")
	cancel()
	if logs.Len() != 1 {
		t.Error("early cancel should not log")
	}
	_ = ctx
}
