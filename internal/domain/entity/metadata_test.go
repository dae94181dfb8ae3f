package entity

import (
	"testing"
	"time"

	"github.com/openmuni/casework/internal/domain/workflow"
)

func TestMetadata_ArchiveRequestedDocuments(t *testing.T) {
	m := Metadata{
		DocumentsRequested: []string{"income statement", "lease agreement"},
	}

	m.ArchiveRequestedDocuments()

	if m.DocumentsRequested != nil {
		t.Errorf("DocumentsRequested = %v, want nil", m.DocumentsRequested)
	}
	if len(m.OriginalDocumentsRequested) != 2 {
		t.Fatalf("OriginalDocumentsRequested = %v, want 2 entries", m.OriginalDocumentsRequested)
	}
	if m.OriginalDocumentsRequested[0] != "income statement" {
		t.Errorf("OriginalDocumentsRequested[0] = %q", m.OriginalDocumentsRequested[0])
	}
	if len(m.DocumentRequestHistory) != 1 || len(m.DocumentRequestHistory[0]) != 2 {
		t.Errorf("DocumentRequestHistory = %v, want one round of 2 entries", m.DocumentRequestHistory)
	}
}

func TestMetadata_ArchiveRequestedDocuments_RepeatRounds(t *testing.T) {
	m := Metadata{
		DocumentsRequested: []string{"income statement"},
	}
	m.ArchiveRequestedDocuments()

	// Second documents round, then second resubmission. The original keeps the
	// first round; the history keeps every round verbatim.
	m.DocumentsRequested = []string{"bank statement"}
	m.ArchiveRequestedDocuments()

	if len(m.OriginalDocumentsRequested) != 1 || m.OriginalDocumentsRequested[0] != "income statement" {
		t.Errorf("OriginalDocumentsRequested = %v, want the first round only", m.OriginalDocumentsRequested)
	}
	if len(m.DocumentRequestHistory) != 2 {
		t.Fatalf("DocumentRequestHistory = %v, want 2 rounds", m.DocumentRequestHistory)
	}
	if m.DocumentRequestHistory[0][0] != "income statement" || m.DocumentRequestHistory[1][0] != "bank statement" {
		t.Errorf("DocumentRequestHistory = %v, want both rounds in order", m.DocumentRequestHistory)
	}
	if m.DocumentsRequested != nil {
		t.Errorf("DocumentsRequested = %v, want nil", m.DocumentsRequested)
	}
}

func TestMetadata_ArchiveRequestedDocuments_NothingRequested(t *testing.T) {
	var m Metadata
	m.ArchiveRequestedDocuments()

	if m.OriginalDocumentsRequested != nil {
		t.Errorf("OriginalDocumentsRequested = %v, want nil", m.OriginalDocumentsRequested)
	}
	if m.DocumentRequestHistory != nil {
		t.Errorf("DocumentRequestHistory = %v, want nil", m.DocumentRequestHistory)
	}
}

func TestApprovalRequest_Clone(t *testing.T) {
	benefitID := int64(7)
	at := time.Now()
	req := &ApprovalRequest{
		ID:        1,
		CaseID:    10,
		BenefitID: &benefitID,
		Status:    workflow.StatePendingDocuments,
		Metadata: Metadata{
			DocumentsRequested: []string{"payslip"},
			FastTrack: &FastTrackRecord{
				Justification:        "eviction notice this week",
				ApprovedBy:           "coord-1",
				ApprovedAt:           at,
				EmergencyApproval:    true,
				RequiresConfirmation: true,
			},
		},
	}

	clone := req.Clone()

	clone.Status = workflow.StateSubmitted
	*clone.BenefitID = 99
	clone.Metadata.DocumentsRequested[0] = "changed"
	clone.Metadata.FastTrack.RequiresConfirmation = false

	if req.Status != workflow.StatePendingDocuments {
		t.Error("Clone() shares Status with the original")
	}
	if *req.BenefitID != 7 {
		t.Error("Clone() shares BenefitID with the original")
	}
	if req.Metadata.DocumentsRequested[0] != "payslip" {
		t.Error("Clone() shares DocumentsRequested with the original")
	}
	if !req.Metadata.FastTrack.RequiresConfirmation {
		t.Error("Clone() shares FastTrack record with the original")
	}
}

func TestApprovalRequest_HasBenefit(t *testing.T) {
	req := &ApprovalRequest{}
	if req.HasBenefit() {
		t.Error("HasBenefit() = true for a request without a benefit")
	}

	id := int64(3)
	req.BenefitID = &id
	if !req.HasBenefit() {
		t.Error("HasBenefit() = false for a request with a benefit")
	}
}
