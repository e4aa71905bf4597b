package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm/logger"
)

// maxSQLLength bounds logged statements; bulk voter imports build very long
// multi-row inserts
const maxSQLLength = 2000

// GormLogger routes GORM logs to slog under component=gorm.
//
// Lookups that find no row are expected (voter by profile, profile by
// document) and are not reported. Unique violations are logged as warnings:
// the repositories turn them into conflicts (second vote, duplicate document).
type GormLogger struct {
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

func NewGormLogger(logLevel logger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		LogLevel:      logLevel,
		SlowThreshold: slowThreshold,
	}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

func (l *GormLogger) log() *slog.Logger {
	return Log.With("component", "gorm")
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		l.log().InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		l.log().WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		l.log().ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	if len(sql) > maxSQLLength {
		sql = sql[:maxSQLLength] + "...(truncated)"
	}

	fields := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && errors.Is(err, logger.ErrRecordNotFound):
		// expected miss; fall through to the slow/info checks below
	case err != nil && isUniqueViolation(err):
		if l.LogLevel >= logger.Warn {
			l.log().WarnContext(ctx, "SQL unique violation", append(fields, slog.String("error", err.Error()))...)
		}
		return
	case err != nil:
		if l.LogLevel >= logger.Error {
			l.log().ErrorContext(ctx, "SQL error", append(fields, slog.String("error", err.Error()))...)
		}
		return
	}

	if l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn {
		l.log().WarnContext(ctx, "Slow SQL", append(fields, slog.Duration("threshold", l.SlowThreshold))...)
		return
	}

	if l.LogLevel >= logger.Info {
		l.log().DebugContext(ctx, "SQL", fields...)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
