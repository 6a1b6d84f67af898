// Package audit writes the append-only change trail. Recording happens inside
// the same gorm transaction as the mutation it describes: a failed audit row
// rolls the whole operation back.
package audit

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stagegear/internal/domain"
)

// Actor identifies who performed the change and from where.
type Actor struct {
	UserID    string
	IPAddress string
}

type Recorder struct {
	log *zap.Logger
}

func NewRecorder(log *zap.Logger) *Recorder {
	return &Recorder{log: log}
}

// RecordInsert writes an INSERT entry holding the created row snapshot.
func (r *Recorder) RecordInsert(tx *gorm.DB, table, recordID string, newValues map[string]any, actor Actor) error {
	return r.record(tx, table, recordID, domain.AuditInsert, nil, newValues, actor)
}

// RecordUpdate writes an UPDATE entry with before and after snapshots.
func (r *Recorder) RecordUpdate(tx *gorm.DB, table, recordID string, oldValues, newValues map[string]any, actor Actor) error {
	return r.record(tx, table, recordID, domain.AuditUpdate, oldValues, newValues, actor)
}

// RecordDelete writes a DELETE entry holding the removed row snapshot.
func (r *Recorder) RecordDelete(tx *gorm.DB, table, recordID string, oldValues map[string]any, actor Actor) error {
	return r.record(tx, table, recordID, domain.AuditDelete, oldValues, nil, actor)
}

// RecordStatusChange writes the single-field UPDATE entry used for cascaded
// equipment status transitions.
func (r *Recorder) RecordStatusChange(tx *gorm.DB, table, recordID, oldStatus, newStatus string, actor Actor) error {
	return r.record(tx, table, recordID, domain.AuditUpdate,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus},
		actor,
	)
}

func (r *Recorder) record(tx *gorm.DB, table, recordID string, action domain.AuditAction, oldValues, newValues map[string]any, actor Actor) error {
	entry := domain.AuditLog{
		Table:    table,
		RecordID: recordID,
		Action:   action,
	}

	var err error
	if entry.OldValues, err = marshalValues(oldValues); err != nil {
		return fmt.Errorf("audit: serialize old values: %w", err)
	}
	if entry.NewValues, err = marshalValues(newValues); err != nil {
		return fmt.Errorf("audit: serialize new values: %w", err)
	}

	if actor.UserID != "" {
		entry.UserID = &actor.UserID
	}
	if actor.IPAddress != "" {
		entry.IPAddress = &actor.IPAddress
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit: record %s on %s/%s: %w", action, table, recordID, err)
	}

	r.log.Info("audit entry recorded",
		zap.String("action", string(action)),
		zap.String("table", table),
		zap.String("record_id", recordID),
	)
	return nil
}

func marshalValues(values map[string]any) (*string, error) {
	if values == nil {
		return nil, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}
