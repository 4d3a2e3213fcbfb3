package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("error is logged with request id", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")

		l.Trace(ctx, time.Now(), sqlFn("UPDATE projects SET days_left = 3", 0), errors.New("deadlock"))

		entries := logs.FilterMessage("SQL Error").All()
		assert.Len(t, entries, 1)
		assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn)

		l.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 0), gormlogger.ErrRecordNotFound)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow query warns", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))

		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn("SELECT * FROM projects", 10), nil)

		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn).LogMode(gormlogger.Silent)

		l.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 1), errors.New("x"))

		assert.Equal(t, 0, logs.Len())
	})
}

func TestGormLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Info)

	ctx, log := WithOrganizationID(context.Background(), zap.NewNop(), "org-1")
	ctx, _ = WithUserID(ctx, log, "user-7")
	l.Trace(ctx, time.Now(), sqlFn("SELECT * FROM projects WHERE organization_id = 'org-1'", -1), nil)

	entries := logs.FilterMessage("SQL Query").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "org-1", fields["organization_id"])
		assert.Equal(t, "user-7", fields["user_id"])
		assert.NotContains(t, fields, "rows")
	}
}

func TestGormLogger_TruncatesLongStatements(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Info)

	long := "SELECT * FROM projects WHERE id IN (" + strings.Repeat("'00000000-0000-0000-0000-000000000000',", 100) + "'x')"
	l.Trace(context.Background(), time.Now(), sqlFn(long, 0), nil)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		sql := entries[0].ContextMap()["sql"].(string)
		assert.Less(t, len(sql), len(long))
		assert.True(t, strings.HasSuffix(sql, "...(truncated)"))
	}
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
}
