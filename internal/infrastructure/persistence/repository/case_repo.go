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

const caseColumns = `id, number, family_id, person_id, assigned_worker_id, status,
	opened_at, created_at, updated_at`

// CaseRepository implements port.CaseRepository on sqlite
type CaseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *sql.DB, logger *zap.Logger) port.CaseRepository {
	return &CaseRepository{db: db, logger: logger}
}

// Create inserts a new case file
func (r *CaseRepository) Create(ctx context.Context, c *entity.Case) error {
	query := `
		INSERT INTO cases (
			number, family_id, person_id, assigned_worker_id, status,
			opened_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		c.Number,
		c.FamilyID,
		c.PersonID,
		c.AssignedWorkerID,
		c.Status,
		c.OpenedAt,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create case", zap.Error(err))
		return fmt.Errorf("failed to create case: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	c.ID = id
	return nil
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(ctx context.Context, id int64) (*entity.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = ?`

	c, err := scanCase(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get case", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return c, nil
}

// List retrieves cases, newest first
func (r *CaseRepository) List(ctx context.Context, limit, offset int) ([]*entity.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list cases", zap.Error(err))
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var cases []*entity.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func scanCase(row rowScanner) (*entity.Case, error) {
	var (
		c        entity.Case
		familyID sql.NullInt64
		personID sql.NullInt64
	)

	err := row.Scan(
		&c.ID,
		&c.Number,
		&familyID,
		&personID,
		&c.AssignedWorkerID,
		&c.Status,
		&c.OpenedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if familyID.Valid {
		c.FamilyID = &familyID.Int64
	}
	if personID.Valid {
		c.PersonID = &personID.Int64
	}
	return &c, nil
}

// Verify interface compliance
var _ port.CaseRepository = (*CaseRepository)(nil)
