package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/openmuni/casework/internal/application/port"
	"github.com/openmuni/casework/internal/domain/entity"
	"github.com/openmuni/casework/internal/infrastructure/persistence/sqlite"
)

// AuditRepository implements port.AuditRepository on sqlite. The table is
// append-only: there are no update or delete statements here, and none should
// be added.
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

// Create appends an audit record
func (r *AuditRepository) Create(ctx context.Context, record *entity.AuditRecord) error {
	query := `
		INSERT INTO audit_records (
			id, request_id, actor_user_id, action,
			previous_status, new_status, properties, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		record.ID,
		record.RequestID,
		record.ActorUserID,
		record.Action,
		record.PreviousStatus,
		record.NewStatus,
		record.Properties,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create audit record", zap.Error(err))
		return fmt.Errorf("failed to create audit record: %w", err)
	}
	return nil
}

// ListByRequest retrieves the audit trail for a request, oldest first
func (r *AuditRepository) ListByRequest(ctx context.Context, requestID int64) ([]*entity.AuditRecord, error) {
	query := `
		SELECT id, request_id, actor_user_id, action,
			previous_status, new_status, properties, created_at
		FROM audit_records
		WHERE request_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to list audit records", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()

	var records []*entity.AuditRecord
	for rows.Next() {
		var record entity.AuditRecord
		err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&record.ActorUserID,
			&record.Action,
			&record.PreviousStatus,
			&record.NewStatus,
			&record.Properties,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

// Verify interface compliance
var _ port.AuditRepository = (*AuditRepository)(nil)
