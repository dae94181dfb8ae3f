package http

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openmuni/casework/internal/application/port"
	"github.com/openmuni/casework/internal/application/service"
	appworkflow "github.com/openmuni/casework/internal/application/workflow"
	"github.com/openmuni/casework/internal/domain/entity"
	"github.com/openmuni/casework/internal/domain/workflow"
	"github.com/openmuni/casework/internal/infrastructure/identity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	workflowService appworkflow.Service
	requestService  service.RequestService
	caseService     service.CaseService
	benefitService  service.BenefitService
	identity        port.Identity
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	workflowService appworkflow.Service,
	requestService service.RequestService,
	caseService service.CaseService,
	benefitService service.BenefitService,
	identityService port.Identity,
	logger Logger,
) *Handlers {
	return &Handlers{
		workflowService: workflowService,
		requestService:  requestService,
		caseService:     caseService,
		benefitService:  benefitService,
		identity:        identityService,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// respondError maps typed errors to HTTP statuses and stable codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := workflow.CodeOf(err)
	message := err.Error()

	switch {
	case errors.Is(err, appworkflow.ErrNotFound), errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
	case errors.Is(err, identity.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		code = "INVALID_CREDENTIALS"
	default:
		switch code {
		case workflow.CodeValidation:
			status = http.StatusBadRequest
		case workflow.CodeUnauthorized:
			status = http.StatusForbidden
		case workflow.CodeInvalidTransition:
			status = http.StatusUnprocessableEntity
		case workflow.CodeConflict:
			status = http.StatusConflict
		default:
			message = "internal error"
		}
	}

	c.JSON(status, Response{Success: false, Error: message, Code: code})
}

func (h *Handlers) respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	h.respondOK(c, http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// IssueTokenRequest is the login payload
type IssueTokenRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

// IssueToken handles POST /api/v1/auth/token
func (h *Handlers) IssueToken(c *gin.Context) {
	var req IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user_id and secret are required"})
		return
	}

	token, expiresAt, err := h.identity.Issue(c.Request.Context(), req.UserID, req.Secret)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondOK(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}

// CreateCase handles POST /api/v1/cases
func (h *Handlers) CreateCase(c *gin.Context) {
	var input service.CreateCaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	created, err := h.caseService.CreateCase(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusCreated, created)
}

// GetCase handles GET /api/v1/cases/:id
func (h *Handlers) GetCase(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	found, err := h.caseService.GetCase(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, found)
}

// ListCases handles GET /api/v1/cases
func (h *Handlers) ListCases(c *gin.Context) {
	limit, offset := listParams(c)
	cases, err := h.caseService.ListCases(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, cases)
}

// ListCaseBenefits handles GET /api/v1/cases/:id/benefits
func (h *Handlers) ListCaseBenefits(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	benefits, err := h.benefitService.ListByCase(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, benefits)
}

// ListCaseRequests handles GET /api/v1/cases/:id/requests
func (h *Handlers) ListCaseRequests(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	limit, offset := listParams(c)
	requests, err := h.requestService.ListByCase(c.Request.Context(), id, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, requests)
}

// CreateBenefit handles POST /api/v1/benefits
func (h *Handlers) CreateBenefit(c *gin.Context) {
	var input service.CreateBenefitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	created, err := h.benefitService.CreateBenefit(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusCreated, created)
}

// GetBenefit handles GET /api/v1/benefits/:id
func (h *Handlers) GetBenefit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	found, err := h.benefitService.GetBenefit(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, found)
}

// CreateDraft handles POST /api/v1/requests
func (h *Handlers) CreateDraft(c *gin.Context) {
	var input service.CreateDraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	created, err := h.requestService.CreateDraft(c.Request.Context(), input, actingUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusCreated, created)
}

// GetRequest handles GET /api/v1/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	found, err := h.requestService.GetRequest(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, requestDetail{
		Request:          found,
		PermittedActions: permittedActionNames(found.Status),
	})
}

// requestDetail is the GET /requests/:id payload: the aggregate plus the
// actions the transition table permits from its current state. Role checks
// still apply when one is attempted.
type requestDetail struct {
	Request          *entity.ApprovalRequest `json:"request"`
	PermittedActions []string                `json:"permitted_actions"`
}

func permittedActionNames(status workflow.State) []string {
	machine, err := workflow.NewMachine(status)
	if err != nil {
		return nil
	}
	names := make([]string, 0)
	for _, action := range machine.PermittedActions() {
		names = append(names, action.String())
	}
	sort.Strings(names)
	return names
}

// GetRequestHistory handles GET /api/v1/requests/:id/history
func (h *Handlers) GetRequestHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	records, err := h.requestService.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, records)
}

// reasonBody is the payload for reject, cancel, and revoke
type reasonBody struct {
	Reason string `json:"reason"`
}

// documentsBody is the payload for request-documents
type documentsBody struct {
	Documents []string `json:"documents"`
}

// resubmitBody is the payload for resubmit
type resubmitBody struct {
	DocumentsProvided []string `json:"documents_provided"`
}

// justificationBody is the payload for fast-track
type justificationBody struct {
	Justification string `json:"justification"`
}

// Submit handles POST /api/v1/requests/:id/submit
func (h *Handlers) Submit(c *gin.Context) {
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.Submit(c.Request.Context(), id, actor)
	})
}

// StartReview handles POST /api/v1/requests/:id/start-review
func (h *Handlers) StartReview(c *gin.Context) {
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.StartReview(c.Request.Context(), id, actor)
	})
}

// Approve handles POST /api/v1/requests/:id/approve
func (h *Handlers) Approve(c *gin.Context) {
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.Approve(c.Request.Context(), id, actor)
	})
}

// Reject handles POST /api/v1/requests/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	var body reasonBody
	_ = c.ShouldBindJSON(&body)
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.Reject(c.Request.Context(), id, actor, body.Reason)
	})
}

// RequestDocuments handles POST /api/v1/requests/:id/request-documents
func (h *Handlers) RequestDocuments(c *gin.Context) {
	var body documentsBody
	_ = c.ShouldBindJSON(&body)
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.RequestDocuments(c.Request.Context(), id, actor, body.Documents)
	})
}

// Resubmit handles POST /api/v1/requests/:id/resubmit
func (h *Handlers) Resubmit(c *gin.Context) {
	var body resubmitBody
	_ = c.ShouldBindJSON(&body)
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.Resubmit(c.Request.Context(), id, actor, body.DocumentsProvided)
	})
}

// FastTrackApprove handles POST /api/v1/requests/:id/fast-track
func (h *Handlers) FastTrackApprove(c *gin.Context) {
	var body justificationBody
	_ = c.ShouldBindJSON(&body)
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.FastTrackApprove(c.Request.Context(), id, actor, body.Justification)
	})
}

// ConfirmFastTrack handles POST /api/v1/requests/:id/confirm-fast-track
func (h *Handlers) ConfirmFastTrack(c *gin.Context) {
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.ConfirmFastTrack(c.Request.Context(), id, actor)
	})
}

// Cancel handles POST /api/v1/requests/:id/cancel
func (h *Handlers) Cancel(c *gin.Context) {
	var body reasonBody
	_ = c.ShouldBindJSON(&body)
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.Cancel(c.Request.Context(), id, actor, body.Reason)
	})
}

// Revoke handles POST /api/v1/requests/:id/revoke
func (h *Handlers) Revoke(c *gin.Context) {
	var body reasonBody
	_ = c.ShouldBindJSON(&body)
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.Revoke(c.Request.Context(), id, actor, body.Reason)
	})
}

// Expire handles POST /api/v1/requests/:id/expire. The sweeper handles expiry
// on its own; this endpoint lets an admin expire a stale request ahead of it.
func (h *Handlers) Expire(c *gin.Context) {
	h.transition(c, func(id int64, actor *entity.User) (*entity.ApprovalRequest, error) {
		return h.workflowService.Expire(c.Request.Context(), id, actor)
	})
}

// transition runs a workflow action handler with the shared id/actor plumbing
func (h *Handlers) transition(c *gin.Context, fn func(id int64, actor *entity.User) (*entity.ApprovalRequest, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	updated, err := fn(id, actingUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondOK(c, http.StatusOK, updated)
}

func listParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
