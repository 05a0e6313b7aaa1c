package database_test

import (
	"fmt"
	"strings"
	"testing"

	"furnitureshop/internal/database"
	"furnitureshop/internal/models"
	"furnitureshop/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestOpen_SQLLogsGoThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Open("sqlite", dsn, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	assert.Equal(t, 1, logs.FilterMessage("Database ready").Len())

	// A missing row is an expected outcome and stays out of the log.
	var user models.User
	err = db.First(&user, "id = ?", "missing").Error
	require.Error(t, err)
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, "record not found")
	}

	// A real SQL failure is logged through the same logger.
	before := logs.Len()
	var n int
	require.Error(t, db.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error)
	require.Greater(t, logs.Len(), before)
	found := false
	for _, entry := range logs.All()[before:] {
		if strings.Contains(entry.Message, "no_such_table") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open("mysql", "dsn", logger.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}
