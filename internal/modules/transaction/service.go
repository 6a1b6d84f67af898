package transaction

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stagegear/internal/audit"
	"stagegear/internal/domain"
	"stagegear/internal/pkg/timeutil"
	"stagegear/internal/repository"
)

// StatusNotifier receives resource status changes after they commit.
type StatusNotifier interface {
	StatusChanged(entity, id, oldStatus, newStatus string)
}

// Service is the withdrawal/return half of the lifecycle engine. Every create,
// update and cancel runs as one gorm transaction: precondition reads, status
// cascades, event transitions and audit rows commit together or not at all.
type Service struct {
	db           *gorm.DB
	transactions *repository.TransactionRepository
	equipment    *repository.EquipmentRepository
	bags         *repository.BagRepository
	events       *repository.EventRepository
	audit        *audit.Recorder
	notifs       StatusNotifier
	log          *zap.Logger
	now          func() time.Time
}

func NewService(
	db *gorm.DB,
	transactions *repository.TransactionRepository,
	equipment *repository.EquipmentRepository,
	bags *repository.BagRepository,
	events *repository.EventRepository,
	recorder *audit.Recorder,
	notifs StatusNotifier,
	log *zap.Logger,
) *Service {
	return &Service{
		db:           db,
		transactions: transactions,
		equipment:    equipment,
		bags:         bags,
		events:       events,
		audit:        recorder,
		notifs:       notifs,
		log:          log,
		now:          timeutil.Now,
	}
}

// statusChange is buffered during the transaction and broadcast after commit.
type statusChange struct {
	entity    string
	id        string
	oldStatus string
	newStatus string
}

func (s *Service) List(ctx context.Context, f repository.TransactionFilters) ([]domain.Transaction, error) {
	return s.transactions.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return t, err
}

// Create registers a withdrawal or return. Both types complete immediately:
// they record a physical hand-over, not a pending approval.
func (s *Service) Create(ctx context.Context, req CreateTransactionRequest, actor audit.Actor) (*domain.Transaction, error) {
	if !domain.ExactlyOneResource(req.EquipmentID, req.BagID) {
		return nil, ErrResourceExclusive
	}
	if req.Type != domain.TransactionWithdrawal && req.Type != domain.TransactionReturn {
		return nil, ErrInvalidType
	}

	txn := &domain.Transaction{
		EquipmentID:   req.EquipmentID,
		BagID:         req.BagID,
		EventID:       req.EventID,
		UserID:        actor.UserID,
		Type:          req.Type,
		Status:        domain.TransactionCompleted,
		ScheduledDate: req.ScheduledDate,
		Notes:         req.Notes,
	}

	var changes []statusChange

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changes = changes[:0]

		event, err := s.events.WithTx(tx).GetByID(ctx, req.EventID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}
		if !event.Status.AcceptsTransactions() {
			return ErrEventNotAccepting
		}

		var eq *domain.Equipment
		var bag *domain.Bag
		if req.EquipmentID != nil {
			eq, err = s.equipment.WithTx(tx).GetByIDLocked(ctx, *req.EquipmentID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEquipmentNotFound
			}
			if err != nil {
				return err
			}
			if err := s.checkEquipment(ctx, tx, eq, req.Type); err != nil {
				return err
			}
		} else {
			bag, err = s.bags.WithTx(tx).GetByIDLocked(ctx, *req.BagID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBagNotFound
			}
			if err != nil {
				return err
			}
			if req.Type == domain.TransactionWithdrawal && bag.Status == domain.BagInUse {
				return s.bagInUseError(ctx, tx, bag)
			}
		}

		if err := s.transactions.WithTx(tx).Create(ctx, txn); err != nil {
			return err
		}
		if err := s.audit.RecordInsert(tx, "transactions", txn.ID, txn.Snapshot(), actor); err != nil {
			return err
		}

		if eq != nil {
			target := equipmentTarget(req.Type)
			if err := s.moveEquipment(ctx, tx, eq, target, actor, &changes); err != nil {
				return err
			}
		} else {
			if err := s.moveBag(ctx, tx, bag, req.Type, actor, &changes); err != nil {
				return err
			}
		}

		return s.advanceEvent(ctx, tx, event, req.Type, &changes)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(changes)
	s.log.Info("transaction recorded",
		zap.String("transaction_id", txn.ID),
		zap.String("transaction_type", string(txn.Type)),
		zap.String("event_id", txn.EventID),
	)
	return txn, nil
}

// checkEquipment validates the item status against the transaction type. A
// withdrawal of anything outside {available, reserved} names the event
// currently holding the item when the latest withdrawal reveals it.
func (s *Service) checkEquipment(ctx context.Context, tx *gorm.DB, eq *domain.Equipment, typ domain.TransactionType) error {
	if typ == domain.TransactionWithdrawal {
		if eq.Status == domain.EquipmentAvailable || eq.Status == domain.EquipmentReserved {
			return nil
		}
		inUse := &InUseError{Resource: "equipment " + eq.Code, Status: string(eq.Status)}
		if last, err := s.transactions.WithTx(tx).LatestWithdrawalForEquipment(ctx, eq.ID); err == nil {
			if event, err := s.events.WithTx(tx).GetByID(ctx, last.EventID); err == nil {
				inUse.EventName = event.Name
			}
		}
		return inUse
	}

	if eq.Status != domain.EquipmentInUse {
		return ErrEquipmentNotInUse
	}
	return nil
}

func (s *Service) bagInUseError(ctx context.Context, tx *gorm.DB, bag *domain.Bag) error {
	inUse := &InUseError{Resource: "bag " + bag.Code, Status: string(bag.Status)}
	if last, err := s.transactions.WithTx(tx).LatestWithdrawalForBag(ctx, bag.ID); err == nil {
		if event, err := s.events.WithTx(tx).GetByID(ctx, last.EventID); err == nil {
			inUse.EventName = event.Name
		}
	}
	return inUse
}

func equipmentTarget(typ domain.TransactionType) domain.EquipmentStatus {
	if typ == domain.TransactionWithdrawal {
		return domain.EquipmentInUse
	}
	return domain.EquipmentAvailable
}

func (s *Service) moveEquipment(ctx context.Context, tx *gorm.DB, eq *domain.Equipment, target domain.EquipmentStatus, actor audit.Actor, changes *[]statusChange) error {
	old := eq.Status
	if err := s.equipment.WithTx(tx).UpdateStatus(ctx, eq.ID, target); err != nil {
		return err
	}
	if err := s.audit.RecordStatusChange(tx, "equipment", eq.ID, string(old), string(target), actor); err != nil {
		return err
	}
	*changes = append(*changes, statusChange{"equipment", eq.ID, string(old), string(target)})
	return nil
}

// moveBag transitions the bag and cascades to its members. The cascade only
// touches members whose current status matches the transaction type: a
// withdrawal picks up available and reserved members, a return brings back
// the ones in use. Each moved member gets its own audit row.
func (s *Service) moveBag(ctx context.Context, tx *gorm.DB, bag *domain.Bag, typ domain.TransactionType, actor audit.Actor, changes *[]statusChange) error {
	var bagTarget domain.BagStatus
	var memberFrom []domain.EquipmentStatus
	var memberTarget domain.EquipmentStatus
	if typ == domain.TransactionWithdrawal {
		bagTarget = domain.BagInUse
		memberFrom = []domain.EquipmentStatus{domain.EquipmentAvailable, domain.EquipmentReserved}
		memberTarget = domain.EquipmentInUse
	} else {
		bagTarget = domain.BagAvailable
		memberFrom = []domain.EquipmentStatus{domain.EquipmentInUse}
		memberTarget = domain.EquipmentAvailable
	}

	oldBag := bag.Status
	if err := s.bags.WithTx(tx).UpdateStatus(ctx, bag.ID, bagTarget); err != nil {
		return err
	}
	*changes = append(*changes, statusChange{"bag", bag.ID, string(oldBag), string(bagTarget)})

	members, err := s.equipment.WithTx(tx).ListByBag(ctx, bag.ID)
	if err != nil {
		return err
	}
	for i := range members {
		m := &members[i]
		if !statusIn(m.Status, memberFrom) {
			continue
		}
		if err := s.moveEquipment(ctx, tx, m, memberTarget, actor, changes); err != nil {
			return err
		}
	}
	return nil
}

func statusIn(s domain.EquipmentStatus, set []domain.EquipmentStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// advanceEvent applies the automatic event transitions. A withdrawal pushes a
// planned or confirmed event to in_progress. A return may complete the event:
// every withdrawal must be matched by a return and the 24-hour window past the
// event end must have elapsed.
func (s *Service) advanceEvent(ctx context.Context, tx *gorm.DB, event *domain.Event, typ domain.TransactionType, changes *[]statusChange) error {
	if typ == domain.TransactionWithdrawal {
		if event.Status != domain.EventPlanned && event.Status != domain.EventConfirmed {
			return nil
		}
		if err := s.events.WithTx(tx).UpdateStatus(ctx, event.ID, domain.EventInProgress); err != nil {
			return err
		}
		*changes = append(*changes, statusChange{"event", event.ID, string(event.Status), string(domain.EventInProgress)})
		return nil
	}

	withdrawals, err := s.transactions.WithTx(tx).CountByEventAndType(ctx, event.ID, domain.TransactionWithdrawal)
	if err != nil {
		return err
	}
	returns, err := s.transactions.WithTx(tx).CountByEventAndType(ctx, event.ID, domain.TransactionReturn)
	if err != nil {
		return err
	}

	if withdrawals == 0 || returns < withdrawals || event.Status != domain.EventInProgress {
		return nil
	}

	if s.now().Before(event.EndDate.Add(24 * time.Hour)) {
		s.log.Info("event pending completion window",
			zap.String("event_id", event.ID),
			zap.Time("end_date", event.EndDate),
		)
		return nil
	}

	if err := s.events.WithTx(tx).UpdateStatus(ctx, event.ID, domain.EventCompleted); err != nil {
		return err
	}
	*changes = append(*changes, statusChange{"event", event.ID, string(domain.EventInProgress), string(domain.EventCompleted)})
	return nil
}

// Update patches the transaction. Completing it stamps actual_date when unset.
// The audit entry carries the full before and after row snapshots.
func (s *Service) Update(ctx context.Context, id string, req UpdateTransactionRequest, actor audit.Actor) (*domain.Transaction, error) {
	var txn *domain.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.transactions.WithTx(tx).GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		old := txn.Snapshot()

		if req.Status != nil {
			txn.Status = *req.Status
		}
		if req.ScheduledDate != nil {
			txn.ScheduledDate = *req.ScheduledDate
		}
		if req.ActualDate != nil {
			txn.ActualDate = req.ActualDate
		}
		if req.Notes != nil {
			txn.Notes = *req.Notes
		}
		if txn.Status == domain.TransactionCompleted && txn.ActualDate == nil {
			now := s.now()
			txn.ActualDate = &now
		}

		if err := s.transactions.WithTx(tx).Update(ctx, txn); err != nil {
			return err
		}
		return s.audit.RecordUpdate(tx, "transactions", txn.ID, old, txn.Snapshot(), actor)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction updated", zap.String("transaction_id", txn.ID))
	return txn, nil
}

// Cancel marks the transaction cancelled. Completed is terminal.
func (s *Service) Cancel(ctx context.Context, id string, actor audit.Actor) error {
	var txn *domain.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.transactions.WithTx(tx).GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if txn.Status == domain.TransactionCompleted {
			return ErrAlreadyCompleted
		}

		old := txn.Snapshot()
		txn.Status = domain.TransactionCancelled
		if err := s.transactions.WithTx(tx).Update(ctx, txn); err != nil {
			return err
		}
		return s.audit.RecordUpdate(tx, "transactions", txn.ID, old, txn.Snapshot(), actor)
	})
	if err != nil {
		return err
	}

	s.log.Info("transaction cancelled", zap.String("transaction_id", txn.ID))
	return nil
}

func (s *Service) broadcast(changes []statusChange) {
	if s.notifs == nil {
		return
	}
	for _, ch := range changes {
		s.notifs.StatusChanged(ch.entity, ch.id, ch.oldStatus, ch.newStatus)
	}
}
