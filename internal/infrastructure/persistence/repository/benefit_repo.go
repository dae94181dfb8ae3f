package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openmuni/casework/internal/application/port"
	"github.com/openmuni/casework/internal/domain/entity"
	"github.com/openmuni/casework/internal/infrastructure/persistence/sqlite"
)

const benefitColumns = `id, case_id, type, description, amount_cents, is_active,
	started_at, ended_at, created_at, updated_at`

// BenefitRepository implements port.BenefitRepository on sqlite
type BenefitRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBenefitRepository creates a new benefit repository
func NewBenefitRepository(db *sql.DB, logger *zap.Logger) port.BenefitRepository {
	return &BenefitRepository{db: db, logger: logger}
}

// Create inserts a new benefit record
func (r *BenefitRepository) Create(ctx context.Context, benefit *entity.Benefit) error {
	query := `
		INSERT INTO benefits (
			case_id, type, description, amount_cents, is_active,
			started_at, ended_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		benefit.CaseID,
		benefit.Type,
		benefit.Description,
		benefit.AmountCents,
		benefit.IsActive,
		benefit.StartedAt,
		benefit.EndedAt,
		benefit.CreatedAt,
		benefit.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create benefit", zap.Error(err))
		return fmt.Errorf("failed to create benefit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	benefit.ID = id
	return nil
}

// GetByID retrieves a benefit by ID
func (r *BenefitRepository) GetByID(ctx context.Context, id int64) (*entity.Benefit, error) {
	query := `SELECT ` + benefitColumns + ` FROM benefits WHERE id = ?`

	benefit, err := scanBenefit(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get benefit", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get benefit: %w", err)
	}
	return benefit, nil
}

// ListByCase retrieves all benefits for a case
func (r *BenefitRepository) ListByCase(ctx context.Context, caseID int64) ([]*entity.Benefit, error) {
	query := `SELECT ` + benefitColumns + ` FROM benefits WHERE case_id = ? ORDER BY created_at ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, caseID)
	if err != nil {
		r.logger.Error("Failed to list benefits", zap.Int64("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list benefits: %w", err)
	}
	defer rows.Close()

	var benefits []*entity.Benefit
	for rows.Next() {
		benefit, err := scanBenefit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan benefit: %w", err)
		}
		benefits = append(benefits, benefit)
	}
	return benefits, rows.Err()
}

// Activate marks the benefit active with the given start time. Only the
// workflow side-effect orchestrator calls this.
func (r *BenefitRepository) Activate(ctx context.Context, id int64, startedAt time.Time) error {
	query := `UPDATE benefits SET is_active = 1, started_at = ?, updated_at = ? WHERE id = ?`

	if err := r.execActivation(ctx, query, startedAt, id); err != nil {
		r.logger.Error("Failed to activate benefit", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to activate benefit: %w", err)
	}
	return nil
}

// Deactivate marks the benefit inactive with the given end time. Only the
// workflow side-effect orchestrator calls this.
func (r *BenefitRepository) Deactivate(ctx context.Context, id int64, endedAt time.Time) error {
	query := `UPDATE benefits SET is_active = 0, ended_at = ?, updated_at = ? WHERE id = ?`

	if err := r.execActivation(ctx, query, endedAt, id); err != nil {
		r.logger.Error("Failed to deactivate benefit", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to deactivate benefit: %w", err)
	}
	return nil
}

func (r *BenefitRepository) execActivation(ctx context.Context, query string, t time.Time, id int64) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, t, t, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("benefit %d not found", id)
	}
	return nil
}

func scanBenefit(row rowScanner) (*entity.Benefit, error) {
	var (
		benefit   entity.Benefit
		startedAt sql.NullTime
		endedAt   sql.NullTime
	)

	err := row.Scan(
		&benefit.ID,
		&benefit.CaseID,
		&benefit.Type,
		&benefit.Description,
		&benefit.AmountCents,
		&benefit.IsActive,
		&startedAt,
		&endedAt,
		&benefit.CreatedAt,
		&benefit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startedAt.Valid {
		benefit.StartedAt = &startedAt.Time
	}
	if endedAt.Valid {
		benefit.EndedAt = &endedAt.Time
	}
	return &benefit, nil
}

// Verify interface compliance
var _ port.BenefitRepository = (*BenefitRepository)(nil)
