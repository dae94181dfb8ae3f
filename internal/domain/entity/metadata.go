package entity

import "time"

// Metadata accumulates transition-specific facts on an approval request. Each
// transition type owns one structured sub-record; sub-records are additive
// across transitions and are never wholesale-replaced, so the bag preserves
// history. The only clearing rule is resubmission: documents_requested is
// archived verbatim before being cleared. The first round also lands in
// original_documents_requested; every round, first included, is appended to
// document_request_history, so repeat request-documents cycles lose nothing.
type Metadata struct {
	DocumentsRequested         []string   `json:"documents_requested,omitempty"`
	OriginalDocumentsRequested []string   `json:"original_documents_requested,omitempty"`
	DocumentRequestHistory     [][]string `json:"document_request_history,omitempty"`
	DocumentsProvided          []string   `json:"documents_provided,omitempty"`
	DocumentsRequestedAt       *time.Time `json:"documents_requested_at,omitempty"`
	ResubmittedAt              *time.Time `json:"resubmitted_at,omitempty"`

	FastTrack    *FastTrackRecord    `json:"fast_track,omitempty"`
	Revocation   *RevocationRecord   `json:"revocation,omitempty"`
	Cancellation *CancellationRecord `json:"cancellation,omitempty"`
}

// FastTrackRecord captures an expedited, preliminary approval. The
// requires_confirmation flag is consumed by the ConfirmFastTrack transition.
type FastTrackRecord struct {
	Justification        string     `json:"justification"`
	ApprovedBy           string     `json:"approved_by"`
	ApprovedAt           time.Time  `json:"approved_at"`
	EmergencyApproval    bool       `json:"emergency_approval"`
	RequiresConfirmation bool       `json:"requires_confirmation"`
	ConfirmedBy          string     `json:"confirmed_by,omitempty"`
	ConfirmedAt          *time.Time `json:"confirmed_at,omitempty"`
}

// RevocationRecord captures the provenance of an admin revocation
type RevocationRecord struct {
	Reason      string    `json:"reason"`
	RevokedBy   string    `json:"revoked_by"`
	RevokedAt   time.Time `json:"revoked_at"`
	PriorStatus string    `json:"prior_status"`
}

// CancellationRecord captures the provenance of an admin cancellation
type CancellationRecord struct {
	Reason      string    `json:"reason"`
	CancelledBy string    `json:"cancelled_by"`
	CancelledAt time.Time `json:"cancelled_at"`
	PriorStatus string    `json:"prior_status"`
}

// ArchiveRequestedDocuments copies documents_requested verbatim into
// document_request_history (and, for the first round, into
// original_documents_requested) and clears the live key. Called on
// resubmission.
func (m *Metadata) ArchiveRequestedDocuments() {
	if len(m.DocumentsRequested) > 0 {
		if m.OriginalDocumentsRequested == nil {
			m.OriginalDocumentsRequested = append([]string{}, m.DocumentsRequested...)
		}
		m.DocumentRequestHistory = append(m.DocumentRequestHistory,
			append([]string{}, m.DocumentsRequested...))
	}
	m.DocumentsRequested = nil
}

// Clone returns a deep copy of the metadata bag
func (m Metadata) Clone() Metadata {
	out := m
	out.DocumentsRequested = cloneStrings(m.DocumentsRequested)
	out.OriginalDocumentsRequested = cloneStrings(m.OriginalDocumentsRequested)
	if m.DocumentRequestHistory != nil {
		out.DocumentRequestHistory = make([][]string, len(m.DocumentRequestHistory))
		for i, round := range m.DocumentRequestHistory {
			out.DocumentRequestHistory[i] = cloneStrings(round)
		}
	}
	out.DocumentsProvided = cloneStrings(m.DocumentsProvided)
	out.DocumentsRequestedAt = cloneTime(m.DocumentsRequestedAt)
	out.ResubmittedAt = cloneTime(m.ResubmittedAt)
	if m.FastTrack != nil {
		ft := *m.FastTrack
		ft.ConfirmedAt = cloneTime(m.FastTrack.ConfirmedAt)
		out.FastTrack = &ft
	}
	if m.Revocation != nil {
		rv := *m.Revocation
		out.Revocation = &rv
	}
	if m.Cancellation != nil {
		cn := *m.Cancellation
		out.Cancellation = &cn
	}
	return out
}

func cloneStrings(v []string) []string {
	if v == nil {
		return nil
	}
	return append([]string{}, v...)
}
