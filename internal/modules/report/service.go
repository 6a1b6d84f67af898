package report

import (
	"context"

	"go.uber.org/zap"

	"stagegear/internal/domain"
	"stagegear/internal/repository"
)

// DashboardStats aggregates the counters shown on the operations dashboard.
type DashboardStats struct {
	Equipment    EquipmentStats   `json:"equipment"`
	Events       EventStats       `json:"events"`
	Transactions TransactionStats `json:"transactions"`
	Users        UserStats        `json:"users"`
}

type EquipmentStats struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	InUse       int64 `json:"in_use"`
	Maintenance int64 `json:"maintenance"`
}

type EventStats struct {
	Planned    int64 `json:"planned"`
	Confirmed  int64 `json:"confirmed"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
}

type TransactionStats struct {
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
}

type UserStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

// UsageReport breaks the inventory down by category and status.
type UsageReport struct {
	ByCategory []repository.GroupCount `json:"by_category"`
	ByStatus   []repository.GroupCount `json:"by_status"`
}

// AuditSummary aggregates the audit trail by action and table.
type AuditSummary struct {
	Total    int64                   `json:"total"`
	ByAction []repository.GroupCount `json:"by_action"`
	ByTable  []repository.GroupCount `json:"by_table"`
}

type Service struct {
	equipment    *repository.EquipmentRepository
	events       *repository.EventRepository
	transactions *repository.TransactionRepository
	users        *repository.UserRepository
	auditLogs    *repository.AuditLogRepository
	log          *zap.Logger
}

func NewService(
	equipment *repository.EquipmentRepository,
	events *repository.EventRepository,
	transactions *repository.TransactionRepository,
	users *repository.UserRepository,
	auditLogs *repository.AuditLogRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		equipment:    equipment,
		events:       events,
		transactions: transactions,
		users:        users,
		auditLogs:    auditLogs,
		log:          log,
	}
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.Equipment.Total, err = s.equipment.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Equipment.Available, err = s.equipment.CountByStatus(ctx, domain.EquipmentAvailable); err != nil {
		return nil, err
	}
	if stats.Equipment.InUse, err = s.equipment.CountByStatus(ctx, domain.EquipmentInUse); err != nil {
		return nil, err
	}
	if stats.Equipment.Maintenance, err = s.equipment.CountByStatus(ctx, domain.EquipmentMaintenance); err != nil {
		return nil, err
	}

	if stats.Events.Planned, err = s.events.CountByStatus(ctx, domain.EventPlanned); err != nil {
		return nil, err
	}
	if stats.Events.Confirmed, err = s.events.CountByStatus(ctx, domain.EventConfirmed); err != nil {
		return nil, err
	}
	if stats.Events.InProgress, err = s.events.CountByStatus(ctx, domain.EventInProgress); err != nil {
		return nil, err
	}
	if stats.Events.Completed, err = s.events.CountByStatus(ctx, domain.EventCompleted); err != nil {
		return nil, err
	}

	if stats.Transactions.Pending, err = s.transactions.CountByStatus(ctx, domain.TransactionPending); err != nil {
		return nil, err
	}
	if stats.Transactions.Completed, err = s.transactions.CountByStatus(ctx, domain.TransactionCompleted); err != nil {
		return nil, err
	}

	if stats.Users.Total, err = s.users.Count(ctx, false); err != nil {
		return nil, err
	}
	if stats.Users.Active, err = s.users.Count(ctx, true); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *Service) EquipmentUsage(ctx context.Context) (*UsageReport, error) {
	byCategory, err := s.equipment.CountGroupedBy(ctx, "category")
	if err != nil {
		return nil, err
	}
	byStatus, err := s.equipment.CountGroupedBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	return &UsageReport{ByCategory: byCategory, ByStatus: byStatus}, nil
}

func (s *Service) AuditLog(ctx context.Context, f repository.AuditLogFilters) ([]domain.AuditLog, error) {
	return s.auditLogs.List(ctx, f)
}

func (s *Service) AuditLogSummary(ctx context.Context) (*AuditSummary, error) {
	total, err := s.auditLogs.Count(ctx)
	if err != nil {
		return nil, err
	}
	byAction, err := s.auditLogs.CountGroupedByAction(ctx)
	if err != nil {
		return nil, err
	}
	byTable, err := s.auditLogs.CountGroupedByTable(ctx)
	if err != nil {
		return nil, err
	}
	return &AuditSummary{Total: total, ByAction: byAction, ByTable: byTable}, nil
}
