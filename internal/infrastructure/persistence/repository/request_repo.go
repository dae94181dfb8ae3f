package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openmuni/casework/internal/application/port"
	"github.com/openmuni/casework/internal/domain/entity"
	"github.com/openmuni/casework/internal/domain/workflow"
	"github.com/openmuni/casework/internal/infrastructure/persistence/sqlite"
)

const requestColumns = `id, case_id, benefit_id, family_id, person_id, status,
	submitted_by_user_id, decided_by_user_id, decided_at, reason, metadata,
	created_at, updated_at`

// RequestRepository implements port.RequestRepository on sqlite
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{db: db, logger: logger}
}

// Create inserts a new approval request
func (r *RequestRepository) Create(ctx context.Context, req *entity.ApprovalRequest) error {
	metadata, err := marshalMetadata(req.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO approval_requests (
			case_id, benefit_id, family_id, person_id, status,
			submitted_by_user_id, decided_by_user_id, decided_at, reason, metadata,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		req.CaseID,
		req.BenefitID,
		req.FamilyID,
		req.PersonID,
		req.Status.String(),
		req.SubmittedByUserID,
		req.DecidedByUserID,
		req.DecidedAt,
		req.Reason,
		metadata,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create request", zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	req.ID = id
	return nil
}

// GetByID retrieves an approval request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*entity.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests WHERE id = ?`

	req, err := scanRequest(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// Update persists the full mutable surface of the aggregate in one statement
func (r *RequestRepository) Update(ctx context.Context, req *entity.ApprovalRequest) error {
	metadata, err := marshalMetadata(req.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE approval_requests SET
			status = ?,
			submitted_by_user_id = ?,
			decided_by_user_id = ?,
			decided_at = ?,
			reason = ?,
			metadata = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		req.Status.String(),
		req.SubmittedByUserID,
		req.DecidedByUserID,
		req.DecidedAt,
		req.Reason,
		metadata,
		req.UpdatedAt,
		req.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update request", zap.Int64("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to update request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %d not found", req.ID)
	}
	return nil
}

// ListByCase retrieves requests for a case, newest first
func (r *RequestRepository) ListByCase(ctx context.Context, caseID int64, limit, offset int) ([]*entity.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE case_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, caseID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Int64("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// FindActive returns requests other than excludeID sharing the same
// (case_id, benefit_id) slot whose status is in the given set. A nil benefitID
// matches only requests with no linked benefit, mirroring the partial unique
// index that backstops this check.
func (r *RequestRepository) FindActive(ctx context.Context, caseID int64, benefitID *int64, states []workflow.State, excludeID int64) ([]*entity.ApprovalRequest, error) {
	if len(states) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(states))
	placeholders = placeholders[:len(placeholders)-1]

	query := `SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE case_id = ? AND id <> ? AND status IN (` + placeholders + `)`

	args := []interface{}{caseID, excludeID}
	for _, s := range states {
		args = append(args, s.String())
	}

	if benefitID != nil {
		query += ` AND benefit_id = ?`
		args = append(args, *benefitID)
	} else {
		query += ` AND benefit_id IS NULL`
	}

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to find active requests", zap.Int64("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to find active requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// ListStale returns requests in the given states not updated since the cutoff
func (r *RequestRepository) ListStale(ctx context.Context, states []workflow.State, cutoff time.Time, limit int) ([]*entity.ApprovalRequest, error) {
	if len(states) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(states))
	placeholders = placeholders[:len(placeholders)-1]

	query := `SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE status IN (` + placeholders + `) AND updated_at < ?
		ORDER BY updated_at ASC
		LIMIT ?`

	args := make([]interface{}, 0, len(states)+2)
	for _, s := range states {
		args = append(args, s.String())
	}
	args = append(args, cutoff, limit)

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list stale requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list stale requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.ApprovalRequest, error) {
	var (
		req       entity.ApprovalRequest
		status    string
		benefitID sql.NullInt64
		familyID  sql.NullInt64
		personID  sql.NullInt64
		decidedAt sql.NullTime
		metadata  string
	)

	err := row.Scan(
		&req.ID,
		&req.CaseID,
		&benefitID,
		&familyID,
		&personID,
		&status,
		&req.SubmittedByUserID,
		&req.DecidedByUserID,
		&decidedAt,
		&req.Reason,
		&metadata,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = workflow.State(status)
	if benefitID.Valid {
		req.BenefitID = &benefitID.Int64
	}
	if familyID.Valid {
		req.FamilyID = &familyID.Int64
	}
	if personID.Valid {
		req.PersonID = &personID.Int64
	}
	if decidedAt.Valid {
		req.DecidedAt = &decidedAt.Time
	}

	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &req.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request metadata: %w", err)
		}
	}

	return &req, nil
}

func scanRequests(rows *sql.Rows) ([]*entity.ApprovalRequest, error) {
	var requests []*entity.ApprovalRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func marshalMetadata(m entity.Metadata) (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request metadata: %w", err)
	}
	return string(raw), nil
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)
