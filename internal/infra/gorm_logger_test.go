package infra

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormLogger "gorm.io/gorm/logger"
)

func traceOnce(l gormLogger.Interface, elapsed time.Duration, err error) {
	l.Trace(context.Background(), time.Now().Add(-elapsed), func() (string, int64) {
		return "SELECT 1", 1
	}, err)
}

func TestGormLogger_SlowQueryLoggedAsWarning(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), gormLogger.Warn, WithSlowThreshold(time.Millisecond))

	traceOnce(l, time.Second, nil)

	entries := logs.FilterMessage("slow sql").All()
	if len(entries) != 1 {
		t.Fatalf("expected one slow sql entry, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected warn level, got %s", entries[0].Level)
	}
}

func TestGormLogger_NotFoundSkippedByDefault(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), gormLogger.Warn)

	traceOnce(l, 0, gormLogger.ErrRecordNotFound)
	if n := logs.FilterMessage("sql error").Len(); n != 0 {
		t.Fatalf("record-not-found must not log as error, got %d entries", n)
	}

	strict := NewGormLogger(zap.New(core), gormLogger.Warn, WithNotFoundErrors())
	traceOnce(strict, 0, gormLogger.ErrRecordNotFound)
	if n := logs.FilterMessage("sql error").Len(); n != 1 {
		t.Fatalf("expected one sql error entry with WithNotFoundErrors, got %d", n)
	}
}

func TestGormLogger_SilentDropsEverything(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), gormLogger.Warn).LogMode(gormLogger.Silent)

	traceOnce(l, time.Second, gormLogger.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Fatalf("silent logger must not emit, got %d entries", logs.Len())
	}
}
