// Envelope HTTP handlers.
//
// This file exposes REST endpoints for envelope resources:
//   - POST   /envelopes                  (create draft)
//   - GET    /envelopes                  (list, paginated, ETag support)
//   - GET    /envelopes/{id}             (fetch one)
//   - DELETE /envelopes/{id}             (discard draft)
//   - GET    /envelopes/{id}/recipients  (routing table)
//   - POST   /envelopes/{id}/send        (draft → sent, idempotent)
//   - POST   /envelopes/{id}/void        (sent/delivered → voided)
//   - POST   /envelopes/{id}/correct     (fix recipient contact details)
//   - POST   /envelopes/{id}/resend      (renotify the active group)
//   - POST   /envelopes/{id}/recipients/{rid}/delivery|completion|decline
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/http/middleware"
	"github.com/tbourn/go-esign-backend/internal/repo"
	"github.com/tbourn/go-esign-backend/internal/services"
	"github.com/tbourn/go-esign-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// EnvelopeService defines envelope lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type EnvelopeService interface {
	// Create persists a draft envelope with documents, recipients, and fields.
	Create(ctx context.Context, accountID string, in services.CreateEnvelopeInput) (*domain.Envelope, error)
	// Get returns one envelope owned by accountID.
	Get(ctx context.Context, accountID, envelopeID string) (*domain.Envelope, error)
	// ListPage returns a page of envelopes for an account and the total count.
	ListPage(ctx context.Context, accountID string, page, pageSize int) ([]domain.Envelope, int64, error)
	// Delete discards a draft envelope.
	Delete(ctx context.Context, accountID, envelopeID string) error
	// Send transitions a draft to sent and activates the first routing group.
	Send(ctx context.Context, accountID, envelopeID string) (*domain.Envelope, error)
	// Void terminates an in-flight envelope with a mandatory reason.
	Void(ctx context.Context, accountID, envelopeID, reason string) (*domain.Envelope, error)
	// Correct rewrites recipient contact details on a correctable envelope.
	Correct(ctx context.Context, accountID, envelopeID string, corrections []services.RecipientCorrection) error
	// Resend renotifies every pending recipient in the active group.
	Resend(ctx context.Context, accountID, envelopeID string) (int, error)
	// RecordRecipientDelivery marks a recipient as having opened the envelope.
	RecordRecipientDelivery(ctx context.Context, accountID, envelopeID, recipientID string) error
	// RecordRecipientCompletion marks a recipient done and advances routing.
	RecordRecipientCompletion(ctx context.Context, accountID, envelopeID, recipientID string) error
	// RecordRecipientDecline declines a recipient and terminates the envelope.
	RecordRecipientDecline(ctx context.Context, accountID, envelopeID, recipientID, reason string) error
}

// LockService defines exclusive edit-lock operations for envelopes and
// templates.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type LockService interface {
	// Acquire takes an exclusive lock on (resourceType, resourceID).
	Acquire(ctx context.Context, resourceType, resourceID, lockedBy string, d time.Duration) (*domain.EnvelopeLock, error)
	// Extend renews the holder's lock for a fresh duration.
	Extend(ctx context.Context, resourceType, resourceID, token string, d time.Duration) (*domain.EnvelopeLock, error)
	// Release removes the holder's lock; releasing an absent lock is a no-op.
	Release(ctx context.Context, resourceType, resourceID, token string) error
	// Status returns the current unexpired lock, if any.
	Status(ctx context.Context, resourceType, resourceID string) (*domain.EnvelopeLock, error)
}

// ConnectService defines webhook subscription management operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ConnectService interface {
	// Create registers a new outbound webhook subscription.
	Create(ctx context.Context, accountID string, in services.ConnectInput) (*domain.ConnectConfiguration, error)
	// Get returns one subscription owned by accountID.
	Get(ctx context.Context, accountID, connectID string) (*domain.ConnectConfiguration, error)
	// List returns every subscription for an account.
	List(ctx context.Context, accountID string) ([]domain.ConnectConfiguration, error)
	// Update replaces the mutable fields of a subscription.
	Update(ctx context.Context, accountID, connectID string, in services.ConnectInput) (*domain.ConnectConfiguration, error)
	// Delete removes a subscription.
	Delete(ctx context.Context, accountID, connectID string) error
	// Logs returns a page of delivery log lines for a subscription.
	Logs(ctx context.Context, accountID, connectID string, page, pageSize int) ([]domain.ConnectLog, int64, error)
	// RetryQueue returns a page of pending/exhausted delivery failures.
	RetryQueue(ctx context.Context, accountID string, page, pageSize int) ([]domain.ConnectFailure, int64, error)
	// RequeueEnvelopeFailures makes every failure for an envelope due again.
	RequeueEnvelopeFailures(ctx context.Context, accountID, envelopeID string) (int, error)
	// PublishHistorical replays lifecycle events inside [from, to].
	PublishHistorical(ctx context.Context, accountID, connectID string, from, to time.Time) (int, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for envelopes, locks, and Connect
// subscriptions. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	envSvc  EnvelopeService
	lockSvc LockService
	connSvc ConnectService

	// IdempotencyTTL is how long a stored Idempotency-Key stays replayable.
	// Zero means 24 hours.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(envSvc EnvelopeService, lockSvc LockService, connSvc ConnectService) *Handlers {
	return &Handlers{envSvc: envSvc, lockSvc: lockSvc, connSvc: connSvc}
}

// accountID extracts the authenticated account id from Gin context (set by
// upstream middleware). If absent, it falls back to "X-Account-ID" header
// (tests use it), and finally to "demo-account". It never touches c.Request
// if it's nil.
func accountID(c *gin.Context) string {
	if v, ok := c.Get("accountID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Account-ID")); h != "" {
			return h
		}
	}
	return "demo-account"
}

//
// DTOs
//

// CreateEnvelopeRequest is the JSON payload for creating a draft envelope.
type CreateEnvelopeRequest struct {
	// Subject is the email subject shown to recipients.
	Subject string `json:"subject" example:"Master services agreement"`
	// EmailBlurb is an optional message included in recipient notifications.
	EmailBlurb string `json:"email_blurb" example:"Please sign by Friday."`

	// Reminder/expiration settings in days; zero uses platform defaults.
	ReminderDelayDays     int `json:"reminder_delay_days" minimum:"0"`
	ReminderFrequencyDays int `json:"reminder_frequency_days" minimum:"0"`
	ExpireAfterDays       int `json:"expire_after_days" minimum:"0"`

	Documents    []DocumentRequest    `json:"documents"`
	Recipients   []RecipientRequest   `json:"recipients"`
	CustomFields []CustomFieldRequest `json:"custom_fields"`
}

// DocumentRequest describes one document attached at creation time.
type DocumentRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=255" example:"contract.pdf"`
	Order int    `json:"order" example:"1"`
}

// RecipientRequest describes one recipient attached at creation time.
type RecipientRequest struct {
	// Type is one of signer, approver, carbon_copy, certified_delivery,
	// viewer, witness, notary, in_person_signer, agent, intermediary.
	Type string `json:"type" binding:"required" example:"signer"`
	// RoutingOrder groups recipients; ties form a parallel group.
	RoutingOrder int    `json:"routing_order" binding:"required,min=1" example:"1"`
	Name         string `json:"name" example:"Ada Lovelace"`
	Email        string `json:"email" binding:"required" example:"ada@example.com"`
	AccessCode   string `json:"access_code,omitempty"`
}

// CustomFieldRequest describes one custom field attached at creation time.
type CustomFieldRequest struct {
	Name     string `json:"name" binding:"required" example:"cost_center"`
	Value    string `json:"value" example:"EMEA-42"`
	Required bool   `json:"required"`
}

// VoidEnvelopeRequest is the JSON payload for voiding an envelope.
type VoidEnvelopeRequest struct {
	// VoidReason explains the termination; it is stored on the envelope.
	VoidReason string `json:"void_reason" binding:"required,min=1" example:"superseded by v2"`
}

// RecipientCorrectionRequest rewrites one recipient's contact details.
type RecipientCorrectionRequest struct {
	RecipientID string `json:"recipient_id" binding:"required" format:"uuid"`
	Name        string `json:"name" example:"Ada King"`
	Email       string `json:"email" binding:"required" example:"ada.king@example.com"`
}

// CorrectEnvelopeRequest is the JSON payload for correcting recipients.
type CorrectEnvelopeRequest struct {
	RecipientCorrections []RecipientCorrectionRequest `json:"recipient_corrections" binding:"required,min=1"`
}

// DeclineRequest carries the optional reason a recipient gives when declining.
type DeclineRequest struct {
	DeclineReason string `json:"decline_reason" example:"terms unacceptable"`
}

// ResendResponse reports how many recipients were renotified.
type ResendResponse struct {
	Resent int `json:"resent"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListEnvelopesResponse wraps a page of envelopes and pagination information.
type ListEnvelopesResponse struct {
	Envelopes  []domain.Envelope `json:"envelopes"`
	Pagination Pagination        `json:"pagination"`
}

// ListRecipientsResponse wraps the full routing table of one envelope.
type ListRecipientsResponse struct {
	Recipients []domain.Recipient `json:"recipients"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// failEnvelope maps the service error taxonomy onto HTTP responses. Unknown
// errors fall through to a 500 carrying fallbackCode.
func failEnvelope(c *gin.Context, err error, fallbackCode string) {
	switch err {
	case services.ErrEnvelopeNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "envelope not found")
	case services.ErrRecipientNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "recipient not found")
	case services.ErrInvalidState:
		fail(c, http.StatusConflict, ErrCodeInvalidState, "operation not allowed in the envelope's current status")
	case services.ErrMissingDocuments:
		fail(c, http.StatusUnprocessableEntity, ErrCodeMissingDocuments, "envelope has no documents")
	case services.ErrMissingRecipients:
		fail(c, http.StatusUnprocessableEntity, ErrCodeMissingRecipients, "envelope has no recipients")
	case services.ErrEmptyVoidReason:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "void_reason required")
	case services.ErrEmptyRecipientEmail:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipient email required")
	case services.ErrRecipientNotActive:
		fail(c, http.StatusConflict, ErrCodeInvalidState, "recipient's routing group is not active yet")
	case services.ErrRecipientSettled:
		fail(c, http.StatusConflict, ErrCodeRecipientSettled, "recipient has already completed or declined")
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}

// envelopeDB exposes the underlying *gorm.DB of the concrete envelope service
// for best-effort transport features (ETag, idempotency records). Returns nil
// when the handler is wired to a fake.
func (h *Handlers) envelopeDB() *gorm.DB {
	if svc, ok := h.envSvc.(*services.EnvelopeService); ok {
		return svc.DB
	}
	return nil
}

//
// Handlers
//

// CreateEnvelope godoc
// @ID          createEnvelope
// @Summary     Create a draft envelope
// @Description Creates a draft envelope with its documents, recipients, and custom fields.
// @Tags        Envelopes
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       body          body    handlers.CreateEnvelopeRequest  true  "Create envelope payload"
//
// @Success     201  {object}  domain.Envelope
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /envelopes [post]
func (h *Handlers) CreateEnvelope(c *gin.Context) {
	var req CreateEnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	in := services.CreateEnvelopeInput{
		Subject:               strings.TrimSpace(req.Subject),
		EmailBlurb:            strings.TrimSpace(req.EmailBlurb),
		ReminderDelayDays:     req.ReminderDelayDays,
		ReminderFrequencyDays: req.ReminderFrequencyDays,
		ExpireAfterDays:       req.ExpireAfterDays,
	}
	for _, d := range req.Documents {
		in.Documents = append(in.Documents, services.DocumentInput{Name: d.Name, Order: d.Order})
	}
	for _, r := range req.Recipients {
		in.Recipients = append(in.Recipients, services.RecipientInput{
			Type:         r.Type,
			RoutingOrder: r.RoutingOrder,
			Name:         r.Name,
			Email:        r.Email,
			AccessCode:   r.AccessCode,
		})
	}
	for _, f := range req.CustomFields {
		in.CustomFields = append(in.CustomFields, services.CustomFieldInput{Name: f.Name, Value: f.Value, Required: f.Required})
	}

	e, err := h.envSvc.Create(c.Request.Context(), accountID(c), in)
	if err != nil {
		failEnvelope(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, e)
}

// ListEnvelopes godoc
// @ID          listEnvelopes
// @Summary     List envelopes (paginated)
// @Description Returns a page of the account's envelopes. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Envelopes
// @Produce     json
//
// @Param       X-Account-ID   header  string  false "Account ID (demo header)"     example(acct123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"   example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                   minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"                minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListEnvelopesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /envelopes [get]
func (h *Handlers) ListEnvelopes(c *gin.Context) {
	ctx := c.Request.Context()
	acct := accountID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if db := h.envelopeDB(); db != nil {
		if count, err := repo.CountEnvelopes(ctx, db, acct); err == nil {
			etag := fmt.Sprintf(`W/"envelopes:%s:%d"`, acct, count)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.envSvc.ListPage(ctx, acct, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := utils.Pages(total, pageSize)
	ok(c, http.StatusOK, ListEnvelopesResponse{
		Envelopes: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetEnvelope godoc
// @ID          getEnvelope
// @Summary     Fetch one envelope
// @Description Returns a single envelope owned by the current account.
// @Tags        Envelopes
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Envelope ID (UUID)"        format(uuid)
//
// @Success     200  {object} domain.Envelope
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Envelope not found"
// @Router      /envelopes/{id} [get]
func (h *Handlers) GetEnvelope(c *gin.Context) {
	envelopeID := c.Param("id")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}

	e, err := h.envSvc.Get(c.Request.Context(), accountID(c), envelopeID)
	if err != nil {
		failEnvelope(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, e)
}

// DeleteEnvelope godoc
// @ID          deleteEnvelope
// @Summary     Discard a draft envelope
// @Description Deletes an envelope that is still in draft. Sent envelopes must be voided instead.
// @Tags        Envelopes
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Envelope ID (UUID)"        format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Envelope not found"
// @Failure     409  {object} handlers.ErrorResponse "Envelope is not a draft"
// @Router      /envelopes/{id} [delete]
func (h *Handlers) DeleteEnvelope(c *gin.Context) {
	envelopeID := c.Param("id")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}

	if err := h.envSvc.Delete(c.Request.Context(), accountID(c), envelopeID); err != nil {
		failEnvelope(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// ListEnvelopeRecipients godoc
// @ID          listEnvelopeRecipients
// @Summary     List an envelope's recipients
// @Description Returns the full routing table (all recipients, ordered by routing group) of one envelope.
// @Tags        Envelopes
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Envelope ID (UUID)"        format(uuid)
//
// @Success     200  {object} handlers.ListRecipientsResponse
// @Failure     404  {object} handlers.ErrorResponse "Envelope not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /envelopes/{id}/recipients [get]
func (h *Handlers) ListEnvelopeRecipients(c *gin.Context) {
	ctx := c.Request.Context()
	envelopeID := c.Param("id")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}

	// Ownership check goes through the service; the recipient read is a plain
	// repo query scoped by the verified envelope.
	if _, err := h.envSvc.Get(ctx, accountID(c), envelopeID); err != nil {
		failEnvelope(c, err, ErrCodeInternal)
		return
	}

	db := h.envelopeDB()
	if db == nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "recipient store unavailable")
		return
	}
	recips, err := repo.ListRecipients(ctx, db, envelopeID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListRecipientsResponse{Recipients: recips})
}

// SendEnvelope godoc
// @ID          sendEnvelope
// @Summary     Send an envelope
// @Description Transitions a draft to sent, materializes workflow steps, and activates the first routing group.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Envelopes
// @Produce     json
//
// @Param       X-Account-ID     header  string  false "Account ID (demo header)"  example(acct123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"
// @Param       id               path    string  true  "Envelope ID (UUID)"        format(uuid)
//
// @Success     200  {object} domain.Envelope
// @Failure     404  {object} handlers.ErrorResponse "Envelope not found"
// @Failure     409  {object} handlers.ErrorResponse "Envelope is not a draft"
// @Failure     422  {object} handlers.ErrorResponse "No documents or no recipients"
// @Router      /envelopes/{id}/send [post]
func (h *Handlers) SendEnvelope(c *gin.Context) {
	ctx := c.Request.Context()
	envelopeID := c.Param("id")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}
	acct := accountID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey == "" {
		idemKey = strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
	}
	if idemKey != "" {
		if db := h.envelopeDB(); db != nil {
			if rec, err := repo.GetIdempotency(ctx, db, acct, envelopeID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := h.envSvc.Get(ctx, acct, envelopeID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusOK, prev)
					return
				}
			}
		}
	}

	e, err := h.envSvc.Send(ctx, acct, envelopeID)
	if err != nil {
		failEnvelope(c, err, ErrCodeSendFailed)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if db := h.envelopeDB(); db != nil {
			ttl := h.IdempotencyTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			_, _ = repo.CreateIdempotency(ctx, db, acct, envelopeID, idemKey, "send", http.StatusOK, ttl)
		}
	}

	ok(c, http.StatusOK, e)
}

// VoidEnvelope godoc
// @ID          voidEnvelope
// @Summary     Void an envelope
// @Description Terminates a sent or delivered envelope with a mandatory reason.
// @Tags        Envelopes
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Envelope ID (UUID)"        format(uuid)
// @Param       body          body    handlers.VoidEnvelopeRequest  true  "Void payload"
//
// @Success     200  {object} domain.Envelope
// @Failure     400  {object} handlers.ErrorResponse "Missing reason"
// @Failure     404  {object} handlers.ErrorResponse "Envelope not found"
// @Failure     409  {object} handlers.ErrorResponse "Envelope is not in-flight"
// @Router      /envelopes/{id}/void [post]
func (h *Handlers) VoidEnvelope(c *gin.Context) {
	envelopeID := c.Param("id")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}

	var req VoidEnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.VoidReason) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "void_reason required")
		return
	}

	e, err := h.envSvc.Void(c.Request.Context(), accountID(c), envelopeID, req.VoidReason)
	if err != nil {
		failEnvelope(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, e)
}

// CorrectEnvelope godoc
// @ID          correctEnvelope
// @Summary     Correct recipient contact details
// @Description Rewrites the name/email of recipients who have not yet completed or declined.
// @Tags        Envelopes
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Envelope ID (UUID)"        format(uuid)
// @Param       body          body    handlers.CorrectEnvelopeRequest  true  "Corrections payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Envelope or recipient not found"
// @Failure     409  {object} handlers.ErrorResponse "Recipient already settled"
// @Router      /envelopes/{id}/correct [post]
func (h *Handlers) CorrectEnvelope(c *gin.Context) {
	envelopeID := c.Param("id")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}

	var req CorrectEnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.RecipientCorrections) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipient_corrections required")
		return
	}

	corrections := make([]services.RecipientCorrection, 0, len(req.RecipientCorrections))
	for _, rc := range req.RecipientCorrections {
		corrections = append(corrections, services.RecipientCorrection{
			RecipientID: rc.RecipientID,
			Name:        rc.Name,
			Email:       rc.Email,
		})
	}

	if err := h.envSvc.Correct(c.Request.Context(), accountID(c), envelopeID, corrections); err != nil {
		failEnvelope(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// ResendEnvelope godoc
// @ID          resendEnvelope
// @Summary     Resend recipient notifications
// @Description Renotifies every pending recipient in the active routing group.
// @Tags        Envelopes
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Envelope ID (UUID)"        format(uuid)
//
// @Success     200  {object} handlers.ResendResponse
// @Failure     404  {object} handlers.ErrorResponse "Envelope not found"
// @Failure     409  {object} handlers.ErrorResponse "Envelope is not in-flight"
// @Router      /envelopes/{id}/resend [post]
func (h *Handlers) ResendEnvelope(c *gin.Context) {
	envelopeID := c.Param("id")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}

	n, err := h.envSvc.Resend(c.Request.Context(), accountID(c), envelopeID)
	if err != nil {
		failEnvelope(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, ResendResponse{Resent: n})
}

// RecordDelivery godoc
// @ID          recordRecipientDelivery
// @Summary     Record that a recipient opened the envelope
// @Description Marks the recipient delivered; the first delivery moves the envelope from sent to delivered.
// @Tags        Recipients
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Envelope ID (UUID)"        format(uuid)
// @Param       rid           path    string  true  "Recipient ID (UUID)"       format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Envelope or recipient not found"
// @Failure     409  {object} handlers.ErrorResponse "Recipient not active or already settled"
// @Router      /envelopes/{id}/recipients/{rid}/delivery [post]
func (h *Handlers) RecordDelivery(c *gin.Context) {
	envelopeID, recipientID := c.Param("id"), c.Param("rid")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}

	if err := h.envSvc.RecordRecipientDelivery(c.Request.Context(), accountID(c), envelopeID, recipientID); err != nil {
		failEnvelope(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// RecordCompletion godoc
// @ID          recordRecipientCompletion
// @Summary     Record a recipient's completion
// @Description Marks the recipient done, advances routing, and completes the envelope when everyone has acted.
// @Tags        Recipients
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Envelope ID (UUID)"        format(uuid)
// @Param       rid           path    string  true  "Recipient ID (UUID)"       format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Envelope or recipient not found"
// @Failure     409  {object} handlers.ErrorResponse "Recipient not active or already settled"
// @Router      /envelopes/{id}/recipients/{rid}/completion [post]
func (h *Handlers) RecordCompletion(c *gin.Context) {
	envelopeID, recipientID := c.Param("id"), c.Param("rid")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}

	if err := h.envSvc.RecordRecipientCompletion(c.Request.Context(), accountID(c), envelopeID, recipientID); err != nil {
		failEnvelope(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// RecordDecline godoc
// @ID          recordRecipientDecline
// @Summary     Record a recipient's decline
// @Description Declines the recipient and terminates the whole envelope as declined.
// @Tags        Recipients
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Envelope ID (UUID)"        format(uuid)
// @Param       rid           path    string  true  "Recipient ID (UUID)"       format(uuid)
// @Param       body          body    handlers.DeclineRequest  false "Decline payload"
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Envelope or recipient not found"
// @Failure     409  {object} handlers.ErrorResponse "Recipient not active or already settled"
// @Router      /envelopes/{id}/recipients/{rid}/decline [post]
func (h *Handlers) RecordDecline(c *gin.Context) {
	envelopeID, recipientID := c.Param("id"), c.Param("rid")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}

	var req DeclineRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	if err := h.envSvc.RecordRecipientDecline(c.Request.Context(), accountID(c), envelopeID, recipientID, req.DeclineReason); err != nil {
		failEnvelope(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}
