package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openmuni/casework/internal/domain/workflow"
)

func TestPermittedActionNames(t *testing.T) {
	tests := []struct {
		status workflow.State
		want   []string
	}{
		{workflow.StateApprovedPrelim, []string{"CANCEL", "CONFIRM_FAST_TRACK", "REVOKE"}},
		{workflow.StateApproved, []string{"REVOKE"}},
		{workflow.StateRejected, []string{}},
		{workflow.State("BOGUS"), nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, permittedActionNames(tt.status), "status %s", tt.status)
	}
}
