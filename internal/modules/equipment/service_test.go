package equipment

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stagegear/internal/database"
	"stagegear/internal/domain"
	"stagegear/internal/repository"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:equipment_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	svc := NewService(db, repository.NewEquipmentRepository(db), nil, zap.NewNop())
	return svc, db
}

func strptr(s string) *string { return &s }

func TestCreateAndLookup(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	eq, err := svc.Create(ctx, CreateEquipmentRequest{
		Code:     "MIC-001",
		Name:     "Shure SM58",
		Category: "audio",
		Serial:   strptr("SM58-44121"),
		QRCode:   strptr("qr-mic-001"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentAvailable, eq.Status)
	assert.Equal(t, domain.ConditionGood, eq.Condition)

	// Code lookup ignores case.
	got, err := svc.GetByCode(ctx, "mic-001")
	require.NoError(t, err)
	assert.Equal(t, eq.ID, got.ID)

	got, err = svc.GetByQRCode(ctx, "qr-mic-001")
	require.NoError(t, err)
	assert.Equal(t, eq.ID, got.ID)

	_, err = svc.GetByCode(ctx, "MIC-999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRejectsDuplicates(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateEquipmentRequest{
		Code: "MIC-001", Name: "Shure SM58", Category: "audio",
		Serial: strptr("SM58-44121"), QRCode: strptr("qr-mic-001"),
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateEquipmentRequest{
		Code: "mic-001", Name: "Other", Category: "audio",
	})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	_, err = svc.Create(ctx, CreateEquipmentRequest{
		Code: "MIC-002", Name: "Other", Category: "audio",
		Serial: strptr("SM58-44121"),
	})
	assert.ErrorIs(t, err, ErrDuplicateSerial)

	_, err = svc.Create(ctx, CreateEquipmentRequest{
		Code: "MIC-003", Name: "Other", Category: "audio",
		QRCode: strptr("qr-mic-001"),
	})
	assert.ErrorIs(t, err, ErrDuplicateQRCode)
}

func TestUpdateToMaintenanceLeavesBag(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	bag := &domain.Bag{Code: "BAG-01", Name: "Audio kit", Status: domain.BagAvailable, IsActive: true}
	require.NoError(t, db.Create(bag).Error)

	eq, err := svc.Create(ctx, CreateEquipmentRequest{
		Code: "MIC-001", Name: "Shure SM58", Category: "audio",
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Equipment{}).Where("id = ?", eq.ID).
		Update("bag_id", bag.ID).Error)

	maintenance := domain.EquipmentMaintenance
	got, err := svc.Update(ctx, eq.ID, UpdateEquipmentRequest{Status: &maintenance})
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentMaintenance, got.Status)
	assert.Nil(t, got.BagID)

	var stored domain.Equipment
	require.NoError(t, db.First(&stored, "id = ?", eq.ID).Error)
	assert.Nil(t, stored.BagID)
}

func TestUpdateKeepsBagForOtherStatuses(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	bag := &domain.Bag{Code: "BAG-01", Name: "Audio kit", Status: domain.BagAvailable, IsActive: true}
	require.NoError(t, db.Create(bag).Error)

	eq, err := svc.Create(ctx, CreateEquipmentRequest{
		Code: "MIC-001", Name: "Shure SM58", Category: "audio",
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Equipment{}).Where("id = ?", eq.ID).
		Update("bag_id", bag.ID).Error)

	reserved := domain.EquipmentReserved
	got, err := svc.Update(ctx, eq.ID, UpdateEquipmentRequest{Status: &reserved})
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentReserved, got.Status)
	require.NotNil(t, got.BagID)
	assert.Equal(t, bag.ID, *got.BagID)
}

func TestDeleteExcludesAndDetaches(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	bag := &domain.Bag{Code: "BAG-01", Name: "Audio kit", Status: domain.BagAvailable, IsActive: true}
	require.NoError(t, db.Create(bag).Error)

	eq, err := svc.Create(ctx, CreateEquipmentRequest{
		Code: "MIC-001", Name: "Shure SM58", Category: "audio",
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Equipment{}).Where("id = ?", eq.ID).
		Update("bag_id", bag.ID).Error)

	require.NoError(t, svc.Delete(ctx, eq.ID))

	var stored domain.Equipment
	require.NoError(t, db.First(&stored, "id = ?", eq.ID).Error)
	assert.Equal(t, domain.EquipmentExcluded, stored.Status)
	assert.Nil(t, stored.BagID)

	assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
}
