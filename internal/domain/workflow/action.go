package workflow

// Action represents a named workflow operation that drives a state transition
type Action string

const (
	ActionSubmit           Action = "SUBMIT"
	ActionStartReview      Action = "START_REVIEW"
	ActionApprove          Action = "APPROVE"
	ActionReject           Action = "REJECT"
	ActionRequestDocuments Action = "REQUEST_DOCUMENTS"
	ActionResubmit         Action = "RESUBMIT"
	ActionFastTrackApprove Action = "FAST_TRACK_APPROVE"
	ActionCancel           Action = "CANCEL"
	ActionRevoke           Action = "REVOKE"

	// ActionConfirmFastTrack confirms a provisional fast-track approval. It is
	// the consumer of the requires_confirmation flag stamped by FastTrackApprove.
	ActionConfirmFastTrack Action = "CONFIRM_FAST_TRACK"

	// ActionExpire is fired by the time-based sweep, never by a user.
	ActionExpire Action = "EXPIRE"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
