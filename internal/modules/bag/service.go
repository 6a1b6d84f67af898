package bag

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stagegear/internal/domain"
	"stagegear/internal/repository"
)

type Service struct {
	db        *gorm.DB
	bags      *repository.BagRepository
	equipment *repository.EquipmentRepository
	log       *zap.Logger
}

func NewService(db *gorm.DB, bags *repository.BagRepository, equipment *repository.EquipmentRepository, log *zap.Logger) *Service {
	return &Service{db: db, bags: bags, equipment: equipment, log: log}
}

func (s *Service) List(ctx context.Context, status domain.BagStatus, limit, offset int) ([]View, error) {
	bags, err := s.bags.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}

	counts, err := s.equipment.CountGroupedBy(ctx, "bag_id")
	if err != nil {
		return nil, err
	}
	byBag := make(map[string]int64, len(counts))
	for _, c := range counts {
		byBag[c.Key] = c.Count
	}

	views := make([]View, len(bags))
	for i, b := range bags {
		views[i] = View{Bag: b, EquipmentCount: byBag[b.ID]}
	}
	return views, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*View, error) {
	b, err := s.bags.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, b)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*View, error) {
	b, err := s.bags.GetByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, b)
}

// Contents lists the equipment currently inside the bag.
func (s *Service) Contents(ctx context.Context, id string) ([]domain.Equipment, error) {
	if _, err := s.bags.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.equipment.ListByBag(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateBagRequest) (*View, error) {
	exists, err := s.bags.CodeExists(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCode
	}

	b := &domain.Bag{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.BagAvailable,
		IsActive:    true,
	}
	if err := s.bags.Create(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info("bag created", zap.String("bag_id", b.ID), zap.String("code", b.Code))
	return &View{Bag: *b}, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateBagRequest) (*View, error) {
	b, err := s.bags.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Status != nil {
		b.Status = *req.Status
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	if err := s.bags.Update(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info("bag updated", zap.String("bag_id", b.ID))
	return s.view(ctx, b)
}

// Delete is a soft delete: the bag becomes excluded. Members keep their
// bag_id so the grouping can be restored.
func (s *Service) Delete(ctx context.Context, id string) error {
	b, err := s.bags.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.bags.UpdateStatus(ctx, b.ID, domain.BagExcluded); err != nil {
		return err
	}

	s.log.Info("bag excluded", zap.String("bag_id", b.ID))
	return nil
}

// AddEquipment puts the item identified by its asset code into the bag. Items
// already grouped elsewhere must be removed from that bag first; the error
// names the bag currently holding them.
func (s *Service) AddEquipment(ctx context.Context, bagID, equipmentCode string) (*View, error) {
	var b *domain.Bag

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		b, err = s.bags.WithTx(tx).GetByID(ctx, bagID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if b.Status == domain.BagExcluded {
			return ErrExcluded
		}

		eq, err := s.equipment.WithTx(tx).GetByCode(ctx, equipmentCode)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEquipmentNotFound
		}
		if err != nil {
			return err
		}

		if eq.BagID != nil {
			if *eq.BagID == bagID {
				return ErrAlreadyInBag
			}
			other, err := s.bags.WithTx(tx).GetByID(ctx, *eq.BagID)
			if err == nil {
				return fmt.Errorf("%w: %q (%s)", ErrInOtherBag, other.Name, other.Code)
			}
			return ErrInOtherBag
		}

		eq.BagID = &b.ID
		return s.equipment.WithTx(tx).Update(ctx, eq)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("equipment added to bag",
		zap.String("bag_id", bagID),
		zap.String("equipment_code", equipmentCode),
	)
	return s.view(ctx, b)
}

// RemoveEquipment takes the item out of the bag, leaving the item itself
// untouched.
func (s *Service) RemoveEquipment(ctx context.Context, bagID, equipmentID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.bags.WithTx(tx).GetByID(ctx, bagID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		eq, err := s.equipment.WithTx(tx).GetByID(ctx, equipmentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEquipmentNotFound
		}
		if err != nil {
			return err
		}
		if eq.BagID == nil || *eq.BagID != bagID {
			return ErrNotInBag
		}

		return s.equipment.WithTx(tx).ClearBag(ctx, eq.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info("equipment removed from bag",
		zap.String("bag_id", bagID),
		zap.String("equipment_id", equipmentID),
	)
	return nil
}

func (s *Service) view(ctx context.Context, b *domain.Bag) (*View, error) {
	n, err := s.bags.EquipmentCount(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &View{Bag: *b, EquipmentCount: n}, nil
}
