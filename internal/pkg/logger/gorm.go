package logger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm/logger"
)

// SlogGormLogger 将 GORM 日志桥接到 slog
type SlogGormLogger struct {
	LogLevel logger.LogLevel
}

func NewGormLogger() *SlogGormLogger {
	return &SlogGormLogger{LogLevel: logger.Warn}
}

func (l *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	l.LogLevel = level
	return l
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		slog.InfoContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		slog.WarnContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		slog.ErrorContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []any{
		slog.String("sql", sql),
		slog.Duration("latency", elapsed),
		slog.Int64("rows", rows),
	}

	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound):
		slog.ErrorContext(ctx, "MySQL Error", append(fields, slog.Any("err", err))...)
	case elapsed > 200*time.Millisecond:
		slog.WarnContext(ctx, "MySQL Slow", fields...)
	}
}
