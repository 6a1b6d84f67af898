package equipment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stagegear/internal/domain"
	"stagegear/internal/repository"
)

// StatusNotifier receives resource status changes after they commit.
type StatusNotifier interface {
	StatusChanged(entity, id, oldStatus, newStatus string)
}

type Service struct {
	db        *gorm.DB
	equipment *repository.EquipmentRepository
	notifs    StatusNotifier
	log       *zap.Logger
}

func NewService(db *gorm.DB, equipment *repository.EquipmentRepository, notifs StatusNotifier, log *zap.Logger) *Service {
	return &Service{db: db, equipment: equipment, notifs: notifs, log: log}
}

func (s *Service) List(ctx context.Context, f repository.EquipmentFilters) ([]domain.Equipment, error) {
	return s.equipment.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Equipment, error) {
	eq, err := s.equipment.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return eq, err
}

// GetByCode matches asset tags case-insensitively, the way they come off a
// scanner.
func (s *Service) GetByCode(ctx context.Context, code string) (*domain.Equipment, error) {
	eq, err := s.equipment.GetByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return eq, err
}

func (s *Service) GetByQRCode(ctx context.Context, qr string) (*domain.Equipment, error) {
	eq, err := s.equipment.GetByQRCode(ctx, qr)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return eq, err
}

func (s *Service) Create(ctx context.Context, req CreateEquipmentRequest) (*domain.Equipment, error) {
	if err := s.checkDuplicates(ctx, req.Code, req.Serial, req.QRCode); err != nil {
		return nil, err
	}

	eq := &domain.Equipment{
		Code:        req.Code,
		Name:        req.Name,
		Category:    req.Category,
		Serial:      req.Serial,
		QRCode:      req.QRCode,
		Status:      domain.EquipmentAvailable,
		Condition:   req.Condition,
		Location:    req.Location,
		Description: req.Description,
		Image:       req.Image,
	}
	if eq.Condition == "" {
		eq.Condition = domain.ConditionGood
	}

	if err := s.equipment.Create(ctx, eq); err != nil {
		// The pre-checks race with concurrent inserts; the unique indexes
		// are the authority.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}

	s.log.Info("equipment created", zap.String("equipment_id", eq.ID), zap.String("code", eq.Code))
	return eq, nil
}

// Update patches the item. A status change to maintenance or excluded pulls
// the item out of its bag.
func (s *Service) Update(ctx context.Context, id string, req UpdateEquipmentRequest) (*domain.Equipment, error) {
	var eq *domain.Equipment
	var oldStatus domain.EquipmentStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		eq, err = s.equipment.WithTx(tx).GetByIDLocked(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		oldStatus = eq.Status

		if req.Serial != nil && (eq.Serial == nil || *req.Serial != *eq.Serial) {
			exists, err := s.equipment.WithTx(tx).SerialExists(ctx, *req.Serial)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateSerial
			}
			eq.Serial = req.Serial
		}
		if req.QRCode != nil && (eq.QRCode == nil || *req.QRCode != *eq.QRCode) {
			exists, err := s.equipment.WithTx(tx).QRCodeExists(ctx, *req.QRCode)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateQRCode
			}
			eq.QRCode = req.QRCode
		}

		if req.Name != nil {
			eq.Name = *req.Name
		}
		if req.Category != nil {
			eq.Category = *req.Category
		}
		if req.Condition != nil {
			eq.Condition = *req.Condition
		}
		if req.Location != nil {
			eq.Location = *req.Location
		}
		if req.Description != nil {
			eq.Description = *req.Description
		}
		if req.Image != nil {
			eq.Image = *req.Image
		}
		if req.Status != nil {
			eq.Status = *req.Status
			if eq.Status.DetachesFromBag() {
				eq.BagID = nil
			}
		}

		if err := s.equipment.WithTx(tx).Update(ctx, eq); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateSerial
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if eq.Status != oldStatus {
		s.notifyStatus(eq.ID, oldStatus, eq.Status)
	}
	s.log.Info("equipment updated", zap.String("equipment_id", eq.ID))
	return eq, nil
}

// Delete is a soft delete: the item becomes excluded and leaves its bag. The
// row stays so the transaction and audit history keep resolving.
func (s *Service) Delete(ctx context.Context, id string) error {
	var oldStatus domain.EquipmentStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eq, err := s.equipment.WithTx(tx).GetByIDLocked(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		oldStatus = eq.Status

		eq.Status = domain.EquipmentExcluded
		eq.BagID = nil
		return s.equipment.WithTx(tx).Update(ctx, eq)
	})
	if err != nil {
		return err
	}

	s.notifyStatus(id, oldStatus, domain.EquipmentExcluded)
	s.log.Info("equipment excluded", zap.String("equipment_id", id))
	return nil
}

func (s *Service) checkDuplicates(ctx context.Context, code string, serial, qr *string) error {
	exists, err := s.equipment.CodeExists(ctx, code)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateCode
	}
	if serial != nil {
		exists, err = s.equipment.SerialExists(ctx, *serial)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSerial
		}
	}
	if qr != nil {
		exists, err = s.equipment.QRCodeExists(ctx, *qr)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateQRCode
		}
	}
	return nil
}

func (s *Service) notifyStatus(id string, from, to domain.EquipmentStatus) {
	if s.notifs == nil {
		return
	}
	s.notifs.StatusChanged("equipment", id, string(from), string(to))
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
