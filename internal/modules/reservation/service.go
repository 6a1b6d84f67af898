package reservation

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stagegear/internal/domain"
	"stagegear/internal/repository"
)

// StatusNotifier receives resource status changes after they commit.
type StatusNotifier interface {
	StatusChanged(entity, id, oldStatus, newStatus string)
}

// Service is the reservation half of the lifecycle engine. Every mutating
// call runs its reads, status writes and cascades in one gorm transaction.
type Service struct {
	db           *gorm.DB
	reservations *repository.ReservationRepository
	equipment    *repository.EquipmentRepository
	bags         *repository.BagRepository
	events       *repository.EventRepository
	notifs       StatusNotifier
	log          *zap.Logger
}

func NewService(
	db *gorm.DB,
	reservations *repository.ReservationRepository,
	equipment *repository.EquipmentRepository,
	bags *repository.BagRepository,
	events *repository.EventRepository,
	notifs StatusNotifier,
	log *zap.Logger,
) *Service {
	return &Service{
		db:           db,
		reservations: reservations,
		equipment:    equipment,
		bags:         bags,
		events:       events,
		notifs:       notifs,
		log:          log,
	}
}

func (s *Service) List(ctx context.Context, f repository.ReservationFilters) ([]domain.Reservation, error) {
	return s.reservations.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return res, err
}

// Create reserves an equipment item or a whole bag for an event window.
// Reserving a bag cascades reserved status to every current member,
// regardless of the member's prior status.
func (s *Service) Create(ctx context.Context, req CreateReservationRequest, userID string) (*domain.Reservation, error) {
	if !domain.ExactlyOneResource(req.EquipmentID, req.BagID) {
		return nil, ErrResourceExclusive
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, ErrInvalidWindow
	}

	res := &domain.Reservation{
		EquipmentID: req.EquipmentID,
		BagID:       req.BagID,
		EventID:     req.EventID,
		ReservedBy:  userID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      domain.ReservationActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.events.WithTx(tx).GetByID(ctx, req.EventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}
		if !event.Status.AcceptsReservations() {
			return ErrEventNotAccepting
		}

		if req.EquipmentID != nil {
			eq, err := s.equipment.WithTx(tx).GetByIDLocked(ctx, *req.EquipmentID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEquipmentNotFound
			}
			if err != nil {
				return err
			}
			if eq.BagID != nil {
				return ErrEquipmentInBag
			}
			if eq.Status != domain.EquipmentAvailable {
				return ErrEquipmentUnavailable
			}
		} else {
			bag, err := s.bags.WithTx(tx).GetByIDLocked(ctx, *req.BagID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBagNotFound
			}
			if err != nil {
				return err
			}
			if !bag.IsActive {
				return ErrBagInactive
			}
			if bag.Status != domain.BagAvailable {
				return ErrBagUnavailable
			}
		}

		conflict, err := s.reservations.WithTx(tx).HasConflict(ctx, req.EquipmentID, req.BagID, req.StartDate, req.EndDate, "")
		if err != nil {
			return err
		}
		if conflict {
			return ErrConflict
		}

		if err := s.reservations.WithTx(tx).Create(ctx, res); err != nil {
			return err
		}

		if req.EquipmentID != nil {
			return s.equipment.WithTx(tx).UpdateStatus(ctx, *req.EquipmentID, domain.EquipmentReserved)
		}

		if err := s.bags.WithTx(tx).UpdateStatus(ctx, *req.BagID, domain.BagReserved); err != nil {
			return err
		}
		return s.equipment.WithTx(tx).UpdateStatusByBag(ctx, *req.BagID, domain.EquipmentReserved)
	})
	if err != nil {
		return nil, err
	}

	s.notifyReserved(req.EquipmentID, req.BagID)
	s.log.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("event_id", res.EventID),
	)
	return res, nil
}

// Update patches the window and/or status. A changed window is re-checked for
// conflicts, excluding the reservation itself. Moving to cancelled or
// completed releases the resource.
func (s *Service) Update(ctx context.Context, id string, req UpdateReservationRequest) (*domain.Reservation, error) {
	var res *domain.Reservation

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = s.reservations.WithTx(tx).GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		newStart := res.StartDate
		newEnd := res.EndDate
		if req.StartDate != nil {
			newStart = *req.StartDate
		}
		if req.EndDate != nil {
			newEnd = *req.EndDate
		}
		if newEnd.Before(newStart) {
			return ErrInvalidWindow
		}

		windowChanged := !newStart.Equal(res.StartDate) || !newEnd.Equal(res.EndDate)
		if windowChanged {
			conflict, err := s.reservations.WithTx(tx).HasConflict(ctx, res.EquipmentID, res.BagID, newStart, newEnd, res.ID)
			if err != nil {
				return err
			}
			if conflict {
				return ErrConflict
			}
		}

		res.StartDate = newStart
		res.EndDate = newEnd
		if req.Status != nil {
			res.Status = *req.Status
		}

		if err := s.reservations.WithTx(tx).Update(ctx, res); err != nil {
			return err
		}

		if req.Status != nil && (*req.Status == domain.ReservationCancelled || *req.Status == domain.ReservationCompleted) {
			return s.release(ctx, tx, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Status != nil && (*req.Status == domain.ReservationCancelled || *req.Status == domain.ReservationCompleted) {
		s.notifyReleased(res.EquipmentID, res.BagID)
	}
	s.log.Info("reservation updated", zap.String("reservation_id", res.ID))
	return res, nil
}

// Cancel releases an active reservation. Anything else is a precondition
// failure, so repeated cancels do not change state.
func (s *Service) Cancel(ctx context.Context, id string) error {
	var res *domain.Reservation

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = s.reservations.WithTx(tx).GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if res.Status != domain.ReservationActive {
			return ErrNotActive
		}

		res.Status = domain.ReservationCancelled
		if err := s.reservations.WithTx(tx).Update(ctx, res); err != nil {
			return err
		}

		return s.release(ctx, tx, res)
	})
	if err != nil {
		return err
	}

	s.notifyReleased(res.EquipmentID, res.BagID)
	s.log.Info("reservation cancelled", zap.String("reservation_id", res.ID))
	return nil
}

// release puts the reserved resource back to available. The bag cascade is
// conditional here: only members still in reserved move back, members pulled
// into other states (in_use, maintenance) keep theirs.
func (s *Service) release(ctx context.Context, tx *gorm.DB, res *domain.Reservation) error {
	if res.EquipmentID != nil {
		return s.equipment.WithTx(tx).UpdateStatus(ctx, *res.EquipmentID, domain.EquipmentAvailable)
	}

	if err := s.bags.WithTx(tx).UpdateStatus(ctx, *res.BagID, domain.BagAvailable); err != nil {
		return err
	}
	return s.equipment.WithTx(tx).UpdateStatusByBagFrom(
		ctx, *res.BagID,
		[]domain.EquipmentStatus{domain.EquipmentReserved},
		domain.EquipmentAvailable,
	)
}

func (s *Service) notifyReserved(equipmentID, bagID *string) {
	if s.notifs == nil {
		return
	}
	if equipmentID != nil {
		s.notifs.StatusChanged("equipment", *equipmentID, string(domain.EquipmentAvailable), string(domain.EquipmentReserved))
	} else if bagID != nil {
		s.notifs.StatusChanged("bag", *bagID, string(domain.BagAvailable), string(domain.BagReserved))
	}
}

func (s *Service) notifyReleased(equipmentID, bagID *string) {
	if s.notifs == nil {
		return
	}
	if equipmentID != nil {
		s.notifs.StatusChanged("equipment", *equipmentID, string(domain.EquipmentReserved), string(domain.EquipmentAvailable))
	} else if bagID != nil {
		s.notifs.StatusChanged("bag", *bagID, string(domain.BagReserved), string(domain.BagAvailable))
	}
}
