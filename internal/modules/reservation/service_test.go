package reservation

import (
	"context"
	"fmt"
	"testing"
	"time"

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
	dsn := fmt.Sprintf("file:reservation_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	svc := NewService(
		db,
		repository.NewReservationRepository(db),
		repository.NewEquipmentRepository(db),
		repository.NewBagRepository(db),
		repository.NewEventRepository(db),
		nil,
		zap.NewNop(),
	)
	return svc, db
}

func seedEvent(t *testing.T, db *gorm.DB, status domain.EventStatus) *domain.Event {
	t.Helper()
	e := &domain.Event{
		Code:      fmt.Sprintf("EVT-%s-%s", status, t.Name()),
		Name:      "Launch night",
		Type:      "show",
		Status:    status,
		StartDate: time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 11, 2, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(e).Error)
	return e
}

func seedEquipment(t *testing.T, db *gorm.DB, code string, status domain.EquipmentStatus, bagID *string) *domain.Equipment {
	t.Helper()
	eq := &domain.Equipment{
		Code:      code,
		Name:      "Shure SM58",
		Category:  "audio",
		Status:    status,
		Condition: domain.ConditionGood,
		BagID:     bagID,
	}
	require.NoError(t, db.Create(eq).Error)
	return eq
}

func seedBag(t *testing.T, db *gorm.DB, code string, status domain.BagStatus, active bool) *domain.Bag {
	t.Helper()
	b := &domain.Bag{Code: code, Name: "Audio kit", Status: status, IsActive: active}
	require.NoError(t, db.Create(b).Error)
	if !active {
		// IsActive carries gorm:"default:true", so a zero-value false is
		// dropped from the INSERT; persist it explicitly.
		require.NoError(t, db.Model(&domain.Bag{}).Where("id = ?", b.ID).
			Update("is_active", false).Error)
		b.IsActive = false
	}
	return b
}

func window(startDay, endDay int) (time.Time, time.Time) {
	return time.Date(2026, 9, startDay, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 9, endDay, 18, 0, 0, 0, time.UTC)
}

func TestCreateReservesEquipment(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	event := seedEvent(t, db, domain.EventConfirmed)
	eq := seedEquipment(t, db, "MIC-001", domain.EquipmentAvailable, nil)
	start, end := window(10, 11)

	res, err := svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &eq.ID,
		EventID:     event.ID,
		StartDate:   start,
		EndDate:     end,
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationActive, res.Status)

	var got domain.Equipment
	require.NoError(t, db.First(&got, "id = ?", eq.ID).Error)
	assert.Equal(t, domain.EquipmentReserved, got.Status)
}

func TestCreateBagCascadesToAllMembers(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	event := seedEvent(t, db, domain.EventConfirmed)
	bag := seedBag(t, db, "BAG-01", domain.BagAvailable, true)
	// The reserve cascade is unconditional: even the member under
	// maintenance flips to reserved.
	seedEquipment(t, db, "MIC-001", domain.EquipmentAvailable, &bag.ID)
	seedEquipment(t, db, "MIC-002", domain.EquipmentMaintenance, &bag.ID)
	start, end := window(10, 11)

	_, err := svc.Create(ctx, CreateReservationRequest{
		BagID:     &bag.ID,
		EventID:   event.ID,
		StartDate: start,
		EndDate:   end,
	}, "user-1")
	require.NoError(t, err)

	var gotBag domain.Bag
	require.NoError(t, db.First(&gotBag, "id = ?", bag.ID).Error)
	assert.Equal(t, domain.BagReserved, gotBag.Status)

	var members []domain.Equipment
	require.NoError(t, db.Find(&members, "bag_id = ?", bag.ID).Error)
	require.Len(t, members, 2)
	for _, m := range members {
		assert.Equal(t, domain.EquipmentReserved, m.Status, m.Code)
	}
}

func TestCreateRejectsOverlappingWindow(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	event := seedEvent(t, db, domain.EventConfirmed)
	eq := seedEquipment(t, db, "MIC-001", domain.EquipmentAvailable, nil)

	start, end := window(10, 12)
	_, err := svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &eq.ID, EventID: event.ID, StartDate: start, EndDate: end,
	}, "user-1")
	require.NoError(t, err)

	// Reset status so only the window check can reject.
	require.NoError(t, db.Model(&domain.Equipment{}).Where("id = ?", eq.ID).
		Update("status", domain.EquipmentAvailable).Error)

	overlapStart, overlapEnd := window(11, 13)
	_, err = svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &eq.ID, EventID: event.ID, StartDate: overlapStart, EndDate: overlapEnd,
	}, "user-1")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateAllowsBackToBackWindows(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	event := seedEvent(t, db, domain.EventConfirmed)
	eq := seedEquipment(t, db, "MIC-001", domain.EquipmentAvailable, nil)

	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &eq.ID, EventID: event.ID, StartDate: start, EndDate: end,
	}, "user-1")
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Equipment{}).Where("id = ?", eq.ID).
		Update("status", domain.EquipmentAvailable).Error)

	// A window starting exactly where the previous one ends does not
	// overlap: the comparison is half-open.
	_, err = svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &eq.ID, EventID: event.ID,
		StartDate: end, EndDate: end.Add(48 * time.Hour),
	}, "user-1")
	assert.NoError(t, err)
}

func TestCreatePreconditions(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	planned := seedEvent(t, db, domain.EventPlanned)
	confirmed := seedEvent(t, db, domain.EventConfirmed)
	start, end := window(10, 11)

	eq := seedEquipment(t, db, "MIC-001", domain.EquipmentAvailable, nil)
	_, err := svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &eq.ID, EventID: planned.ID, StartDate: start, EndDate: end,
	}, "user-1")
	assert.ErrorIs(t, err, ErrEventNotAccepting)

	bag := seedBag(t, db, "BAG-01", domain.BagAvailable, true)
	inBag := seedEquipment(t, db, "MIC-002", domain.EquipmentAvailable, &bag.ID)
	_, err = svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &inBag.ID, EventID: confirmed.ID, StartDate: start, EndDate: end,
	}, "user-1")
	assert.ErrorIs(t, err, ErrEquipmentInBag)

	inUse := seedEquipment(t, db, "MIC-003", domain.EquipmentInUse, nil)
	_, err = svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &inUse.ID, EventID: confirmed.ID, StartDate: start, EndDate: end,
	}, "user-1")
	assert.ErrorIs(t, err, ErrEquipmentUnavailable)

	inactive := seedBag(t, db, "BAG-02", domain.BagAvailable, false)
	_, err = svc.Create(ctx, CreateReservationRequest{
		BagID: &inactive.ID, EventID: confirmed.ID, StartDate: start, EndDate: end,
	}, "user-1")
	assert.ErrorIs(t, err, ErrBagInactive)

	_, err = svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &eq.ID, BagID: &bag.ID, EventID: confirmed.ID, StartDate: start, EndDate: end,
	}, "user-1")
	assert.ErrorIs(t, err, ErrResourceExclusive)

	_, err = svc.Create(ctx, CreateReservationRequest{
		EventID: confirmed.ID, StartDate: start, EndDate: end,
	}, "user-1")
	assert.ErrorIs(t, err, ErrResourceExclusive)

	_, err = svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &eq.ID, EventID: confirmed.ID, StartDate: end, EndDate: start,
	}, "user-1")
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestCancelReleasesBagConditionally(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	event := seedEvent(t, db, domain.EventConfirmed)
	bag := seedBag(t, db, "BAG-01", domain.BagAvailable, true)
	reservedMember := seedEquipment(t, db, "MIC-001", domain.EquipmentAvailable, &bag.ID)
	start, end := window(10, 11)

	res, err := svc.Create(ctx, CreateReservationRequest{
		BagID: &bag.ID, EventID: event.ID, StartDate: start, EndDate: end,
	}, "user-1")
	require.NoError(t, err)

	// A member pulled into use between reserve and release keeps its
	// status; only reserved members come back.
	busyMember := seedEquipment(t, db, "MIC-002", domain.EquipmentInUse, &bag.ID)

	require.NoError(t, svc.Cancel(ctx, res.ID))

	var got domain.Reservation
	require.NoError(t, db.First(&got, "id = ?", res.ID).Error)
	assert.Equal(t, domain.ReservationCancelled, got.Status)

	var gotBag domain.Bag
	require.NoError(t, db.First(&gotBag, "id = ?", bag.ID).Error)
	assert.Equal(t, domain.BagAvailable, gotBag.Status)

	var m1, m2 domain.Equipment
	require.NoError(t, db.First(&m1, "id = ?", reservedMember.ID).Error)
	require.NoError(t, db.First(&m2, "id = ?", busyMember.ID).Error)
	assert.Equal(t, domain.EquipmentAvailable, m1.Status)
	assert.Equal(t, domain.EquipmentInUse, m2.Status)
}

func TestCancelRequiresActive(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	event := seedEvent(t, db, domain.EventConfirmed)
	eq := seedEquipment(t, db, "MIC-001", domain.EquipmentAvailable, nil)
	start, end := window(10, 11)

	res, err := svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &eq.ID, EventID: event.ID, StartDate: start, EndDate: end,
	}, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, res.ID))
	assert.ErrorIs(t, svc.Cancel(ctx, res.ID), ErrNotActive)
}

func TestUpdateRechecksChangedWindow(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	event := seedEvent(t, db, domain.EventConfirmed)
	first := seedEquipment(t, db, "MIC-001", domain.EquipmentAvailable, nil)

	start, end := window(10, 11)
	res, err := svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &first.ID, EventID: event.ID, StartDate: start, EndDate: end,
	}, "user-1")
	require.NoError(t, err)

	laterStart, laterEnd := window(15, 16)
	require.NoError(t, db.Model(&domain.Equipment{}).Where("id = ?", first.ID).
		Update("status", domain.EquipmentAvailable).Error)
	other, err := svc.Create(ctx, CreateReservationRequest{
		EquipmentID: &first.ID, EventID: event.ID, StartDate: laterStart, EndDate: laterEnd,
	}, "user-1")
	require.NoError(t, err)

	// Moving the first reservation onto the second one's window collides.
	_, err = svc.Update(ctx, res.ID, UpdateReservationRequest{
		StartDate: &laterStart, EndDate: &laterEnd,
	})
	assert.ErrorIs(t, err, ErrConflict)

	// Shifting the second reservation within its own window passes: the
	// conflict check excludes the reservation itself.
	shifted := laterStart.Add(time.Hour)
	_, err = svc.Update(ctx, other.ID, UpdateReservationRequest{
		StartDate: &shifted, EndDate: &laterEnd,
	})
	assert.NoError(t, err)
}
