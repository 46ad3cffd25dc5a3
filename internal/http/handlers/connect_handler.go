// Connect HTTP handlers.
//
// This file exposes REST endpoints for managing outbound webhook (Connect)
// subscriptions and their delivery bookkeeping:
//   - POST   /connect                     (create subscription)
//   - GET    /connect                     (list subscriptions)
//   - GET    /connect/{id}                (fetch one)
//   - PUT    /connect/{id}                (update)
//   - DELETE /connect/{id}                (remove)
//   - GET    /connect/{id}/logs           (delivery log, paginated)
//   - GET    /connect/failures            (retry queue, paginated)
//   - PUT    /connect/envelopes/{id}/retry_queue   (requeue an envelope's failures)
//   - PUT    /connect/envelopes/retry_queue        (bulk requeue by envelope list)
//   - POST   /connect/envelopes/publish/historical (replay a date range)
//
// Delivery itself is asynchronous; these endpoints only manage configuration
// and expose what the dispatcher recorded.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/services"
	"github.com/tbourn/go-esign-backend/internal/sysutil"
	"github.com/tbourn/go-esign-backend/internal/utils"
)

//
// DTOs
//

// ConnectRequest is the JSON payload for creating or updating a subscription.
type ConnectRequest struct {
	Name string `json:"name" example:"CRM sync"`
	// URL is the HTTPS endpoint events are POSTed to.
	URL     string `json:"url" binding:"required" example:"https://hooks.example.com/esign"`
	Enabled bool   `json:"enabled"`
	// Events limits delivery to the listed types; empty means all.
	Events []string `json:"events" example:"envelope.sent,envelope.completed"`

	IncludeDocuments  bool `json:"include_documents"`
	IncludeVoidReason bool `json:"include_void_reason"`

	// SignHMAC enables the X-Hmac-Signature header and payload key (hex
	// HMAC-SHA256 of the body).
	SignHMAC   bool   `json:"sign_hmac"`
	HMACSecret string `json:"hmac_secret,omitempty"`

	// Retry policy; zero values use platform defaults.
	RetryCount        int `json:"retry_count" minimum:"0"`
	RetryDelayMinutes int `json:"retry_delay_minutes" minimum:"0"`
}

// ListConnectResponse wraps every subscription of the account.
type ListConnectResponse struct {
	Configurations []domain.ConnectConfiguration `json:"configurations"`
}

// ConnectLogsResponse wraps a page of delivery log lines.
type ConnectLogsResponse struct {
	Logs       []domain.ConnectLog `json:"logs"`
	Pagination Pagination          `json:"pagination"`
}

// RetryQueueResponse wraps a page of delivery failures awaiting retry.
type RetryQueueResponse struct {
	Failures   []domain.ConnectFailure `json:"failures"`
	Pagination Pagination              `json:"pagination"`
}

// RequeueResponse reports how many failure rows were made due again.
type RequeueResponse struct {
	Requeued int `json:"requeued"`
}

// BulkRequeueRequest lists the envelopes whose failures should be made due.
type BulkRequeueRequest struct {
	EnvelopeIDs []string `json:"envelope_ids" binding:"required,min=1"`
}

// BulkRequeueResponse reports requeue counts, total and per envelope.
type BulkRequeueResponse struct {
	Requeued  int            `json:"requeued"`
	Envelopes map[string]int `json:"envelopes"`
}

// PublishHistoricalRequest selects the date window to replay.
type PublishHistoricalRequest struct {
	ConnectID string    `json:"connect_id" binding:"required" format:"uuid"`
	FromDate  time.Time `json:"from_date" binding:"required" example:"2025-06-01T00:00:00Z"`
	ToDate    time.Time `json:"to_date" binding:"required" example:"2025-07-01T00:00:00Z"`
}

// PublishHistoricalResponse reports how many events were enqueued.
type PublishHistoricalResponse struct {
	Published int `json:"published"`
}

//
// Helpers
//

// failConnect maps connect-service errors onto HTTP responses.
func failConnect(c *gin.Context, err error, fallbackCode string) {
	switch err {
	case services.ErrConfigNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "subscription not found")
	case services.ErrInvalidConfigURL:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "url required")
	case services.ErrUnknownEventType:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown event type in events list")
	case services.ErrInvalidDateRange:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "to_date must not precede from_date")
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}

// connectInput converts the transport DTO into the service payload.
func connectInput(req ConnectRequest) services.ConnectInput {
	return services.ConnectInput{
		Name:              strings.TrimSpace(req.Name),
		URL:               strings.TrimSpace(req.URL),
		Enabled:           req.Enabled,
		Events:            req.Events,
		IncludeDocuments:  req.IncludeDocuments,
		IncludeVoidReason: req.IncludeVoidReason,
		SignHMAC:          req.SignHMAC,
		HMACSecret:        req.HMACSecret,
		RetryCount:        req.RetryCount,
		RetryDelayMinutes: req.RetryDelayMinutes,
	}
}

//
// Handlers
//

// CreateConnect godoc
// @ID          createConnect
// @Summary     Create a webhook subscription
// @Description Registers an outbound Connect subscription for the account.
// @Tags        Connect
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       body          body    handlers.ConnectRequest  true  "Subscription payload"
//
// @Success     201  {object} domain.ConnectConfiguration
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /connect [post]
func (h *Handlers) CreateConnect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cfg, err := h.connSvc.Create(c.Request.Context(), accountID(c), connectInput(req))
	if err != nil {
		failConnect(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, cfg)
}

// ListConnect godoc
// @ID          listConnect
// @Summary     List webhook subscriptions
// @Tags        Connect
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       enabled_only  query   bool    false "Only return enabled subscriptions"
//
// @Success     200  {object} handlers.ListConnectResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /connect [get]
func (h *Handlers) ListConnect(c *gin.Context) {
	cfgs, err := h.connSvc.List(c.Request.Context(), accountID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if sysutil.IsTruthy(c.Query("enabled_only")) {
		enabled := make([]domain.ConnectConfiguration, 0, len(cfgs))
		for _, cfg := range cfgs {
			if cfg.Enabled {
				enabled = append(enabled, cfg)
			}
		}
		cfgs = enabled
	}
	ok(c, http.StatusOK, ListConnectResponse{Configurations: cfgs})
}

// GetConnect godoc
// @ID          getConnect
// @Summary     Fetch one webhook subscription
// @Tags        Connect
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Subscription ID (UUID)"    format(uuid)
//
// @Success     200  {object} domain.ConnectConfiguration
// @Failure     404  {object} handlers.ErrorResponse "Subscription not found"
// @Router      /connect/{id} [get]
func (h *Handlers) GetConnect(c *gin.Context) {
	connectID := c.Param("id")
	if _, err := uuid.Parse(connectID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subscription id must be a UUID")
		return
	}

	cfg, err := h.connSvc.Get(c.Request.Context(), accountID(c), connectID)
	if err != nil {
		failConnect(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, cfg)
}

// UpdateConnect godoc
// @ID          updateConnect
// @Summary     Update a webhook subscription
// @Description Replaces the mutable fields of a subscription. An empty hmac_secret keeps the stored one.
// @Tags        Connect
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Subscription ID (UUID)"    format(uuid)
// @Param       body          body    handlers.ConnectRequest  true  "Subscription payload"
//
// @Success     200  {object} domain.ConnectConfiguration
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Subscription not found"
// @Router      /connect/{id} [put]
func (h *Handlers) UpdateConnect(c *gin.Context) {
	connectID := c.Param("id")
	if _, err := uuid.Parse(connectID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subscription id must be a UUID")
		return
	}

	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	cfg, err := h.connSvc.Update(c.Request.Context(), accountID(c), connectID, connectInput(req))
	if err != nil {
		failConnect(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, cfg)
}

// DeleteConnect godoc
// @ID          deleteConnect
// @Summary     Delete a webhook subscription
// @Tags        Connect
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Subscription ID (UUID)"    format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Subscription not found"
// @Router      /connect/{id} [delete]
func (h *Handlers) DeleteConnect(c *gin.Context) {
	connectID := c.Param("id")
	if _, err := uuid.Parse(connectID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subscription id must be a UUID")
		return
	}

	if err := h.connSvc.Delete(c.Request.Context(), accountID(c), connectID); err != nil {
		failConnect(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// ConnectLogs godoc
// @ID          connectLogs
// @Summary     List delivery log lines (paginated)
// @Description Returns the newest-first delivery attempts recorded for a subscription.
// @Tags        Connect
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Subscription ID (UUID)"    format(uuid)
// @Param       page          query   int     false "Page number"               minimum(1) default(1)
// @Param       page_size     query   int     false "Items per page"            minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ConnectLogsResponse
// @Failure     404  {object} handlers.ErrorResponse "Subscription not found"
// @Router      /connect/{id}/logs [get]
func (h *Handlers) ConnectLogs(c *gin.Context) {
	connectID := c.Param("id")
	if _, err := uuid.Parse(connectID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subscription id must be a UUID")
		return
	}
	page, pageSize := clampPagination(c)

	logs, total, err := h.connSvc.Logs(c.Request.Context(), accountID(c), connectID, page, pageSize)
	if err != nil {
		failConnect(c, err, ErrCodeListFailed)
		return
	}

	totalPages := utils.Pages(total, pageSize)
	ok(c, http.StatusOK, ConnectLogsResponse{
		Logs: logs,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// ConnectRetryQueue godoc
// @ID          connectRetryQueue
// @Summary     List the delivery retry queue (paginated)
// @Description Returns failed deliveries still awaiting retry or exhausted, newest first.
// @Tags        Connect
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       page          query   int     false "Page number"               minimum(1) default(1)
// @Param       page_size     query   int     false "Items per page"            minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.RetryQueueResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /connect/failures [get]
func (h *Handlers) ConnectRetryQueue(c *gin.Context) {
	page, pageSize := clampPagination(c)

	failures, total, err := h.connSvc.RetryQueue(c.Request.Context(), accountID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := utils.Pages(total, pageSize)
	ok(c, http.StatusOK, RetryQueueResponse{
		Failures: failures,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// RequeueEnvelope godoc
// @ID          requeueEnvelope
// @Summary     Requeue an envelope's failed deliveries
// @Description Marks every failure row for the envelope due immediately, resetting the attempt counter.
// @Tags        Connect
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Envelope ID (UUID)"        format(uuid)
//
// @Success     200  {object} handlers.RequeueResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /connect/envelopes/{id}/retry_queue [put]
func (h *Handlers) RequeueEnvelope(c *gin.Context) {
	envelopeID := c.Param("id")
	if _, err := uuid.Parse(envelopeID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope id must be a UUID")
		return
	}

	n, err := h.connSvc.RequeueEnvelopeFailures(c.Request.Context(), accountID(c), envelopeID)
	if err != nil {
		failConnect(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, RequeueResponse{Requeued: n})
}

// RequeueEnvelopes godoc
// @ID          requeueEnvelopes
// @Summary     Requeue failed deliveries for a batch of envelopes
// @Description Marks every failure row for each listed envelope due immediately, resetting the attempt counters.
// @Tags        Connect
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       body          body    handlers.BulkRequeueRequest  true  "Envelope IDs"
//
// @Success     200  {object} handlers.BulkRequeueResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /connect/envelopes/retry_queue [put]
func (h *Handlers) RequeueEnvelopes(c *gin.Context) {
	var req BulkRequeueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "envelope_ids is required")
		return
	}
	for _, id := range req.EnvelopeIDs {
		if _, err := uuid.Parse(id); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "every envelope id must be a UUID")
			return
		}
	}

	out := BulkRequeueResponse{Envelopes: make(map[string]int, len(req.EnvelopeIDs))}
	for _, id := range req.EnvelopeIDs {
		n, err := h.connSvc.RequeueEnvelopeFailures(c.Request.Context(), accountID(c), id)
		if err != nil {
			failConnect(c, err, ErrCodeInternal)
			return
		}
		out.Envelopes[id] = n
		out.Requeued += n
	}
	ok(c, http.StatusOK, out)
}

// PublishHistorical godoc
// @ID          publishHistorical
// @Summary     Replay historical lifecycle events
// @Description Re-enqueues sent/completed/voided events whose timestamps fall inside [from_date, to_date] to one subscription.
// @Tags        Connect
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       body          body    handlers.PublishHistoricalRequest  true  "Replay window"
//
// @Success     200  {object} handlers.PublishHistoricalResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Subscription not found"
// @Router      /connect/envelopes/publish/historical [post]
func (h *Handlers) PublishHistorical(c *gin.Context) {
	var req PublishHistoricalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "connect_id, from_date, and to_date required")
		return
	}

	n, err := h.connSvc.PublishHistorical(c.Request.Context(), accountID(c), req.ConnectID, req.FromDate, req.ToDate)
	if err != nil {
		failConnect(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, PublishHistoricalResponse{Published: n})
}
