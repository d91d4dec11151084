package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestTableFromSQL(t *testing.T) {
	cases := map[string]string{
		`SELECT * FROM "subscriptions" WHERE "subscriptions"."status" = $1`: "subscriptions",
		"select id from billing.charges order by created_at":                "charges",
		"INSERT INTO `customers` (`id`) VALUES (?)":                         "customers",
		"SELECT 1": "unknown",
	}
	for sql, want := range cases {
		assert.Equal(t, want, tableFromSQL(sql), sql)
	}
}

func TestStatementKind(t *testing.T) {
	assert.Equal(t, "select", statementKind("  with recent as (select 1) select * from recent"))
	assert.Equal(t, "insert", statementKind("INSERT INTO charges VALUES (1)"))
	assert.Equal(t, "other", statementKind("PRAGMA foreign_keys = ON"))
	assert.Equal(t, "other", statementKind(""))
}

func TestQueryLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewQueryLogger(zap.New(core), QueryLoggerConfig{Level: gormlogger.Warn, SlowThreshold: 10 * time.Millisecond})
	sql := func() (string, int64) { return `SELECT * FROM "charges"`, 3 }
	ctx := context.Background()

	log.Trace(ctx, time.Now(), sql, nil)
	assert.Zero(t, logs.Len(), "fast successful reads are not logged at warn level")

	log.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	require.Equal(t, 1, logs.Len())
	slow := logs.All()[0]
	assert.Equal(t, "slow billing query", slow.Message)
	assert.Equal(t, "charges", slow.ContextMap()["table"])
	assert.Equal(t, int64(3), slow.ContextMap()["rows"])

	log.Trace(ctx, time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len())

	log.Trace(ctx, time.Now(), sql, errors.New("connection reset"))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
	assert.Equal(t, "billing.store", logs.All()[1].LoggerName)
}

func TestQueryLoggerSilent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewQueryLogger(zap.New(core), QueryLoggerConfig{Level: gormlogger.Warn}).LogMode(gormlogger.Silent)

	log.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	assert.Zero(t, logs.Len())
}
