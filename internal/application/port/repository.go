package port

import (
	"context"
	"time"

	"github.com/openmuni/casework/internal/domain/entity"
	"github.com/openmuni/casework/internal/domain/workflow"
)

// RequestRepository defines persistence operations for ApprovalRequest
type RequestRepository interface {
	Create(ctx context.Context, req *entity.ApprovalRequest) error
	GetByID(ctx context.Context, id int64) (*entity.ApprovalRequest, error)

	// Update persists the full mutable surface of the aggregate (status,
	// actor/decision fields, reason, metadata) in one statement.
	Update(ctx context.Context, req *entity.ApprovalRequest) error

	ListByCase(ctx context.Context, caseID int64, limit, offset int) ([]*entity.ApprovalRequest, error)

	// FindActive returns requests other than excludeID sharing the same case
	// (and benefit, when benefitID is set) whose status is in the given set.
	// The duplicate guard calls this inside the submit transaction.
	FindActive(ctx context.Context, caseID int64, benefitID *int64, states []workflow.State, excludeID int64) ([]*entity.ApprovalRequest, error)

	// ListStale returns requests in the given states not updated since the
	// cutoff. The expiry sweep feeds on this.
	ListStale(ctx context.Context, states []workflow.State, cutoff time.Time, limit int) ([]*entity.ApprovalRequest, error)
}

// BenefitRepository defines persistence operations for Benefit. Activate and
// Deactivate are the only writers of the activation fields; they exist so no
// other code path can mutate benefit activation state on behalf of the workflow.
type BenefitRepository interface {
	Create(ctx context.Context, benefit *entity.Benefit) error
	GetByID(ctx context.Context, id int64) (*entity.Benefit, error)
	ListByCase(ctx context.Context, caseID int64) ([]*entity.Benefit, error)
	Activate(ctx context.Context, id int64, startedAt time.Time) error
	Deactivate(ctx context.Context, id int64, endedAt time.Time) error
}

// AuditRepository defines append-only persistence for the workflow audit trail
type AuditRepository interface {
	Create(ctx context.Context, record *entity.AuditRecord) error
	ListByRequest(ctx context.Context, requestID int64) ([]*entity.AuditRecord, error)
}

// CaseRepository defines persistence operations for Case
type CaseRepository interface {
	Create(ctx context.Context, c *entity.Case) error
	GetByID(ctx context.Context, id int64) (*entity.Case, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Case, error)
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// TransactionManager handles database transactions. Workflow actions run their
// whole guard+mutate+side-effect+audit sequence inside one transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
