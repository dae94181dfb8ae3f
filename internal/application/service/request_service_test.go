package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openmuni/casework/internal/domain/entity"
	"github.com/openmuni/casework/internal/domain/workflow"
)

// Mock repositories

type mockRequestRepo struct {
	createFunc  func(ctx context.Context, req *entity.ApprovalRequest) error
	getByIDFunc func(ctx context.Context, id int64) (*entity.ApprovalRequest, error)
}

func (m *mockRequestRepo) Create(ctx context.Context, req *entity.ApprovalRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	req.ID = 1
	return nil
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id int64) (*entity.ApprovalRequest, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.ApprovalRequest{ID: id, CaseID: 10, Status: workflow.StateDraft}, nil
}

func (m *mockRequestRepo) Update(ctx context.Context, req *entity.ApprovalRequest) error { return nil }

func (m *mockRequestRepo) ListByCase(ctx context.Context, caseID int64, limit, offset int) ([]*entity.ApprovalRequest, error) {
	return []*entity.ApprovalRequest{}, nil
}

func (m *mockRequestRepo) FindActive(ctx context.Context, caseID int64, benefitID *int64, states []workflow.State, excludeID int64) ([]*entity.ApprovalRequest, error) {
	return nil, nil
}

func (m *mockRequestRepo) ListStale(ctx context.Context, states []workflow.State, cutoff time.Time, limit int) ([]*entity.ApprovalRequest, error) {
	return nil, nil
}

type mockCaseRepo struct {
	createFunc  func(ctx context.Context, c *entity.Case) error
	getByIDFunc func(ctx context.Context, id int64) (*entity.Case, error)
}

func (m *mockCaseRepo) Create(ctx context.Context, c *entity.Case) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	c.ID = 10
	return nil
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id int64) (*entity.Case, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Case{ID: id, Number: "SA-2026-00042", Status: entity.CaseStatusOpen}, nil
}

func (m *mockCaseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Case, error) {
	return []*entity.Case{}, nil
}

type mockBenefitRepo struct {
	getByIDFunc func(ctx context.Context, id int64) (*entity.Benefit, error)
}

func (m *mockBenefitRepo) Create(ctx context.Context, benefit *entity.Benefit) error {
	benefit.ID = 100
	return nil
}

func (m *mockBenefitRepo) GetByID(ctx context.Context, id int64) (*entity.Benefit, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Benefit{ID: id, CaseID: 10}, nil
}

func (m *mockBenefitRepo) ListByCase(ctx context.Context, caseID int64) ([]*entity.Benefit, error) {
	return []*entity.Benefit{}, nil
}

func (m *mockBenefitRepo) Activate(ctx context.Context, id int64, startedAt time.Time) error {
	return nil
}

func (m *mockBenefitRepo) Deactivate(ctx context.Context, id int64, endedAt time.Time) error {
	return nil
}

type mockAuditRepo struct{}

func (m *mockAuditRepo) Create(ctx context.Context, record *entity.AuditRecord) error { return nil }

func (m *mockAuditRepo) ListByRequest(ctx context.Context, requestID int64) ([]*entity.AuditRecord, error) {
	return []*entity.AuditRecord{}, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func newRequestService(requests *mockRequestRepo, cases *mockCaseRepo, benefits *mockBenefitRepo) RequestService {
	return NewRequestService(requests, cases, benefits, &mockAuditRepo{}, &mockTxManager{}, &mockLogger{})
}

func TestRequestService_CreateDraft(t *testing.T) {
	benefitID := int64(100)
	tests := []struct {
		name        string
		input       CreateDraftInput
		actor       *entity.User
		caseFunc    func(ctx context.Context, id int64) (*entity.Case, error)
		benefitFunc func(ctx context.Context, id int64) (*entity.Benefit, error)
		wantErr     error
	}{
		{
			name:  "valid draft",
			input: CreateDraftInput{CaseID: 10},
			actor: &entity.User{ID: "sw-1", Role: entity.RoleSocialWorker},
		},
		{
			name:  "valid draft with benefit",
			input: CreateDraftInput{CaseID: 10, BenefitID: &benefitID},
			actor: &entity.User{ID: "sw-1", Role: entity.RoleSocialWorker},
		},
		{
			name:    "missing case id",
			input:   CreateDraftInput{},
			actor:   &entity.User{ID: "sw-1", Role: entity.RoleSocialWorker},
			wantErr: workflow.ErrValidation,
		},
		{
			name:    "viewer denied",
			input:   CreateDraftInput{CaseID: 10},
			actor:   &entity.User{ID: "v-1", Role: entity.RoleViewer},
			wantErr: workflow.ErrUnauthorized,
		},
		{
			name:  "case does not exist",
			input: CreateDraftInput{CaseID: 99},
			actor: &entity.User{ID: "sw-1", Role: entity.RoleSocialWorker},
			caseFunc: func(ctx context.Context, id int64) (*entity.Case, error) {
				return nil, nil
			},
			wantErr: workflow.ErrValidation,
		},
		{
			name:  "benefit belongs to another case",
			input: CreateDraftInput{CaseID: 10, BenefitID: &benefitID},
			actor: &entity.User{ID: "sw-1", Role: entity.RoleSocialWorker},
			benefitFunc: func(ctx context.Context, id int64) (*entity.Benefit, error) {
				return &entity.Benefit{ID: id, CaseID: 77}, nil
			},
			wantErr: workflow.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newRequestService(
				&mockRequestRepo{},
				&mockCaseRepo{getByIDFunc: tt.caseFunc},
				&mockBenefitRepo{getByIDFunc: tt.benefitFunc},
			)

			req, err := svc.CreateDraft(context.Background(), tt.input, tt.actor)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateDraft() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateDraft() error = %v", err)
			}
			if req.Status != workflow.StateDraft {
				t.Errorf("Status = %s, want DRAFT", req.Status)
			}
			if req.SubmittedByUserID != "" {
				t.Error("CreateDraft() set SubmittedByUserID before submission")
			}
		})
	}
}

func TestRequestService_GetRequest_NotFound(t *testing.T) {
	svc := newRequestService(
		&mockRequestRepo{getByIDFunc: func(ctx context.Context, id int64) (*entity.ApprovalRequest, error) {
			return nil, nil
		}},
		&mockCaseRepo{},
		&mockBenefitRepo{},
	)

	if _, err := svc.GetRequest(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRequest() error = %v, want ErrNotFound", err)
	}
}

func TestCaseService_CreateCase(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		wantErr bool
	}{
		{"valid number", "SA-2026-00042", false},
		{"empty number", "", true},
		{"bad format", "case42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCaseService(&mockCaseRepo{}, &mockLogger{})

			c, err := svc.CreateCase(context.Background(), CreateCaseInput{Number: tt.number})
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateCase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, workflow.ErrValidation) {
					t.Errorf("CreateCase() error = %v, want ErrValidation", err)
				}
				return
			}
			if c.Status != entity.CaseStatusOpen {
				t.Errorf("Status = %s, want OPEN", c.Status)
			}
		})
	}
}

func TestBenefitService_CreateBenefit(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateBenefitInput
		wantErr bool
	}{
		{"valid", CreateBenefitInput{CaseID: 10, Type: "housing", AmountCents: 50000}, false},
		{"missing case", CreateBenefitInput{Type: "housing", AmountCents: 50000}, true},
		{"missing type", CreateBenefitInput{CaseID: 10, AmountCents: 50000}, true},
		{"zero amount", CreateBenefitInput{CaseID: 10, Type: "housing"}, true},
		{"negative amount", CreateBenefitInput{CaseID: 10, Type: "housing", AmountCents: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBenefitService(&mockBenefitRepo{}, &mockCaseRepo{}, &mockLogger{})

			b, err := svc.CreateBenefit(context.Background(), tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateBenefit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if b.IsActive {
				t.Error("CreateBenefit() created an active benefit")
			}
			if b.Type != "HOUSING" {
				t.Errorf("Type = %q, want HOUSING", b.Type)
			}
		})
	}
}
