package audit

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"stagegear/internal/domain"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:audit_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AuditLog{}))
	return db
}

func TestRecordInsertSerializesSnapshot(t *testing.T) {
	db := setupDB(t)
	r := NewRecorder(zap.NewNop())

	actor := Actor{UserID: "user-1", IPAddress: "10.0.0.7"}
	snapshot := map[string]any{
		"id":     "txn-1",
		"status": "completed",
		"bag_id": nil,
	}
	require.NoError(t, r.RecordInsert(db, "transactions", "txn-1", snapshot, actor))

	var entry domain.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "transactions", entry.Table)
	assert.Equal(t, "txn-1", entry.RecordID)
	assert.Equal(t, domain.AuditInsert, entry.Action)
	assert.Nil(t, entry.OldValues)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "user-1", *entry.UserID)
	require.NotNil(t, entry.IPAddress)
	assert.Equal(t, "10.0.0.7", *entry.IPAddress)

	var decoded map[string]any
	require.NotNil(t, entry.NewValues)
	require.NoError(t, json.Unmarshal([]byte(*entry.NewValues), &decoded))
	assert.Equal(t, "completed", decoded["status"])
	assert.Nil(t, decoded["bag_id"])

	// The table filter queries the table_name column directly, so the
	// Table field must map to it.
	var viaColumn int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Where("table_name = ?", "transactions").Count(&viaColumn).Error)
	assert.EqualValues(t, 1, viaColumn)
}

func TestRecordStatusChangePayload(t *testing.T) {
	db := setupDB(t)
	r := NewRecorder(zap.NewNop())

	require.NoError(t, r.RecordStatusChange(db, "equipment", "eq-1", "reserved", "in_use", Actor{}))

	var entry domain.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, domain.AuditUpdate, entry.Action)
	assert.Nil(t, entry.UserID)

	require.NotNil(t, entry.OldValues)
	require.NotNil(t, entry.NewValues)
	assert.JSONEq(t, `{"status":"reserved"}`, *entry.OldValues)
	assert.JSONEq(t, `{"status":"in_use"}`, *entry.NewValues)
}

func TestRecordFailurePropagates(t *testing.T) {
	db := setupDB(t)
	r := NewRecorder(zap.NewNop())

	// A recorder writing through a closed connection must surface the
	// error so the surrounding transaction rolls back.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = r.RecordInsert(db, "transactions", "txn-1", map[string]any{"id": "txn-1"}, Actor{})
	assert.Error(t, err)
}
