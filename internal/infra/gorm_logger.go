package infra

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// gormZapLogger routes GORM's logging interface into zap, so SQL traces land
// in the same structured stream as the rest of the application.
type gormZapLogger struct {
	log              *zap.Logger
	level            gormLogger.LogLevel
	slowThreshold    time.Duration
	skipNotFoundErrs bool
}

// GormLoggerOption configures NewGormLogger.
type GormLoggerOption func(*gormZapLogger)

// WithSlowThreshold overrides the duration above which a query is logged as
// slow. Zero disables slow-query logging.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *gormZapLogger) { l.slowThreshold = d }
}

// WithNotFoundErrors makes record-not-found results log as errors. They are
// skipped by default since First on an empty result is routine.
func WithNotFoundErrors() GormLoggerOption {
	return func(l *gormZapLogger) { l.skipNotFoundErrs = false }
}

// NewGormLogger builds a GORM logger on top of the given zap logger.
func NewGormLogger(log *zap.Logger, level gormLogger.LogLevel, opts ...GormLoggerOption) gormLogger.Interface {
	l := &gormZapLogger{
		log:              log,
		level:            level,
		slowThreshold:    defaultSlowThreshold,
		skipNotFoundErrs: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *gormZapLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	copied := *l
	copied.level = level
	return &copied
}

func (l *gormZapLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormLogger.Info {
		l.log.Sugar().Infof(msg, data...)
	}
}

func (l *gormZapLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormLogger.Warn {
		l.log.Sugar().Warnf(msg, data...)
	}
}

func (l *gormZapLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormLogger.Error {
		l.log.Sugar().Errorf(msg, data...)
	}
}

// Trace logs each executed statement, flagging slow queries and errors.
func (l *gormZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormLogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	if err != nil && !(l.skipNotFoundErrs && errors.Is(err, gormLogger.ErrRecordNotFound)) {
		fields = append(fields, zap.Error(err))
		l.log.Error("sql error", fields...)
		return
	}

	if l.slowThreshold > 0 && elapsed > l.slowThreshold {
		l.log.Warn("slow sql", fields...)
		return
	}

	if l.level >= gormLogger.Info {
		l.log.Debug("sql", fields...)
	}
}
