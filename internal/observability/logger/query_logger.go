package logger

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// QueryLoggerConfig tunes what the billing store query logger emits.
type QueryLoggerConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

// QueryLogger routes gorm output for the billing store through zap.
// Statements are logged without bound parameters so customer data never reaches the logs.
type QueryLogger struct {
	base          *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewQueryLogger(base *zap.Logger, cfg QueryLoggerConfig) *QueryLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &QueryLogger{
		base:          base.Named("billing.store"),
		level:         cfg.Level,
		slowThreshold: cfg.SlowThreshold,
	}
}

func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *QueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.scoped(ctx).Info(msg, zap.Any("data", data))
	}
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.scoped(ctx).Warn(msg, zap.Any("data", data))
	}
}

func (l *QueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.scoped(ctx).Error(msg, zap.Any("data", data))
	}
}

// Trace reports failed and slow billing reads. Successful reads are only
// logged at Info level, where every statement is emitted at debug.
func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error:
		// A missing row is an empty result for the billing reader, not a failure.
		if errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		sql, rows := fc()
		l.scoped(ctx).Error("billing query failed", append(queryFields(sql, rows, elapsed), zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.scoped(ctx).Warn("slow billing query",
			append(queryFields(sql, rows, elapsed), zap.Duration("threshold", l.slowThreshold))...)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.scoped(ctx).Debug("billing query", queryFields(sql, rows, elapsed)...)
	}
}

// ParamsFilter drops bound values from logged statements.
func (l *QueryLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *QueryLogger) scoped(ctx context.Context) *zap.Logger {
	return WithContext(ctx, l.base)
}

func queryFields(sql string, rows int64, elapsed time.Duration) []zap.Field {
	fields := []zap.Field{
		zap.String("table", tableFromSQL(sql)),
		zap.String("statement", statementKind(sql)),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	return fields
}

var fromClause = regexp.MustCompile(`(?i)\b(?:from|into|update)\s+["` + "`" + `]?([a-zA-Z0-9_.]+)`)

// tableFromSQL returns the first table a statement reads from or writes to.
func tableFromSQL(sql string) string {
	match := fromClause.FindStringSubmatch(sql)
	if len(match) < 2 {
		return "unknown"
	}
	table := strings.ToLower(match[1])
	if idx := strings.LastIndex(table, "."); idx >= 0 {
		table = table[idx+1:]
	}
	return table
}

func statementKind(sql string) string {
	for _, token := range strings.Fields(strings.ToUpper(sql)) {
		token = strings.Trim(token, "();")
		switch token {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			return strings.ToLower(token)
		case "WITH":
			continue
		default:
			return "other"
		}
	}
	return "other"
}

var _ gormlogger.Interface = (*QueryLogger)(nil)
