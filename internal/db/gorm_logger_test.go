package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/elan/internal/logger"
	"github.com/terraincognita07/elan/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level zapcore.Level) (*gormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return newGormLogger(logger.FromZap(zap.New(core))), logs
}

func TestGormLoggerReportsFailedQueries(t *testing.T) {
	gormLog, logs := newObservedGormLogger(zapcore.DebugLevel)

	gormLog.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT INTO users (email) VALUES (?)", 0
	}, errors.New("constraint failed"))

	entries := logs.FilterMessage("query failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "gorm", entries[0].ContextMap()["component"])
	assert.Equal(t, "INSERT INTO users (email) VALUES (?)", entries[0].ContextMap()["sql"])
}

func TestGormLoggerSkipsRecordNotFoundAndFastQueries(t *testing.T) {
	gormLog, logs := newObservedGormLogger(zapcore.DebugLevel)
	called := false
	fc := func() (string, int64) {
		called = true
		return "SELECT 1", 1
	}

	gormLog.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)
	gormLog.Trace(context.Background(), time.Now(), fc, nil)

	assert.Zero(t, logs.Len())
	assert.False(t, called, "sql is only rendered when it will be logged")
}

func TestGormLoggerWarnsOnSlowQueries(t *testing.T) {
	gormLog, logs := newObservedGormLogger(zapcore.DebugLevel)

	gormLog.Trace(context.Background(), time.Now().Add(-2*slowQueryThreshold), func() (string, int64) {
		return "SELECT * FROM day_states", 40
	}, nil)

	entries := logs.FilterMessage("slow query").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestGormLoggerLogModeSilencesOutput(t *testing.T) {
	gormLog, logs := newObservedGormLogger(zapcore.DebugLevel)
	silent := gormLog.LogMode(gormlogger.Silent)

	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	silent.Error(context.Background(), "ignored %s", "message")

	assert.Zero(t, logs.Len())
	assert.Equal(t, gormlogger.Warn, gormLog.level, "LogMode returns a copy")
}

func TestGormLoggerKeepsBoundValuesOutOfLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "elan-gorm-logger.db"), logger.FromZap(zap.New(core)))
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	createUser(t, database, "private@example.com")
	duplicate := models.User{Email: "PRIVATE@example.com", Role: models.RoleUser}
	require.Error(t, database.Create(&duplicate).Error)

	entries := logs.FilterMessage("query failed").All()
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		sql, _ := entry.ContextMap()["sql"].(string)
		assert.NotContains(t, sql, "example.com")
	}
}
