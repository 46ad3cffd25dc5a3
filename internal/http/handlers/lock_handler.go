// Lock HTTP handlers.
//
// This file exposes REST endpoints for exclusive edit locks on envelopes and
// templates:
//   - POST   /envelopes/{id}/lock   (acquire)
//   - PUT    /envelopes/{id}/lock   (extend, holder token required)
//   - DELETE /envelopes/{id}/lock   (release)
//   - GET    /envelopes/{id}/lock   (status)
//
// and the same four verbs under /templates/{id}/lock. The resource type is
// bound at route registration time, so the handler bodies are shared.
//
// Locks are advisory: holding one is a convention between cooperating editors,
// not something the state machine enforces on every write.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-esign-backend/internal/services"
	"github.com/tbourn/go-esign-backend/internal/sysutil"
)

//
// DTOs
//

// AcquireLockRequest is the JSON payload for acquiring an edit lock.
type AcquireLockRequest struct {
	// LockDurationInSeconds bounds how long the lock is held; zero uses the
	// server default. Out-of-range values are rejected.
	LockDurationInSeconds int `json:"lock_duration_in_seconds" example:"300"`
}

// ExtendLockRequest is the JSON payload for renewing a held lock.
type ExtendLockRequest struct {
	LockToken             string `json:"lock_token" binding:"required" format:"uuid"`
	LockDurationInSeconds int    `json:"lock_duration_in_seconds" example:"300"`
}

// ReleaseLockRequest is the JSON payload for releasing a held lock.
type ReleaseLockRequest struct {
	LockToken string `json:"lock_token" format:"uuid"`
}

// LockResponse is returned on acquire and extend.
type LockResponse struct {
	LockToken   string    `json:"lock_token" format:"uuid"`
	LockedBy    string    `json:"locked_by"`
	LockedUntil time.Time `json:"locked_until"`
}

// LockStatusResponse reports whether a resource is currently locked.
// Holder details are included only while a lock is active; the token never is.
type LockStatusResponse struct {
	IsLocked    bool       `json:"is_locked"`
	LockedBy    string     `json:"locked_by,omitempty"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

//
// Helpers
//

// failLock maps lock-service errors onto HTTP responses.
func failLock(c *gin.Context, err error) {
	switch err {
	case services.ErrInvalidLockDuration:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lock duration out of range")
	case services.ErrAlreadyLocked:
		fail(c, http.StatusConflict, ErrCodeEnvelopeLocked, "resource is locked by another editor")
	case services.ErrLockNotFound:
		fail(c, http.StatusNotFound, ErrCodeLockNotFound, "no matching lock")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// AcquireLock godoc
// @ID          acquireLock
// @Summary     Acquire an exclusive edit lock
// @Description Takes a short-lived exclusive lock on the resource. Fails with 409 while another editor holds one.
// @Tags        Locks
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Resource ID (UUID)"        format(uuid)
// @Param       body          body    handlers.AcquireLockRequest  false "Lock duration"
//
// @Success     201  {object} handlers.LockResponse
// @Failure     400  {object} handlers.ErrorResponse "Duration out of range"
// @Failure     409  {object} handlers.ErrorResponse "Already locked"
// @Router      /envelopes/{id}/lock [post]
func (h *Handlers) AcquireLock(resourceType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AcquireLockRequest
		_ = c.ShouldBindJSON(&req) // body is optional; zero means default duration

		l, err := h.lockSvc.Acquire(c.Request.Context(), resourceType, c.Param("id"), accountID(c),
			time.Duration(req.LockDurationInSeconds)*time.Second)
		if err != nil {
			failLock(c, err)
			return
		}
		ok(c, http.StatusCreated, LockResponse{
			LockToken:   l.Token,
			LockedBy:    l.LockedBy,
			LockedUntil: l.LockedUntil,
		})
	}
}

// ExtendLock godoc
// @ID          extendLock
// @Summary     Extend a held edit lock
// @Description Renews the lock for a fresh duration. The caller must present the holder token.
// @Tags        Locks
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Resource ID (UUID)"        format(uuid)
// @Param       body          body    handlers.ExtendLockRequest  true  "Holder token and duration"
//
// @Success     200  {object} handlers.LockResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "No matching lock"
// @Router      /envelopes/{id}/lock [put]
func (h *Handlers) ExtendLock(resourceType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExtendLockRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.LockToken) == "" {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lock_token required")
			return
		}

		l, err := h.lockSvc.Extend(c.Request.Context(), resourceType, c.Param("id"), req.LockToken,
			time.Duration(req.LockDurationInSeconds)*time.Second)
		if err != nil {
			failLock(c, err)
			return
		}
		ok(c, http.StatusOK, LockResponse{
			LockToken:   l.Token,
			LockedBy:    l.LockedBy,
			LockedUntil: l.LockedUntil,
		})
	}
}

// ReleaseLock godoc
// @ID          releaseLock
// @Summary     Release a held edit lock
// @Description Removes the holder's lock. Releasing an absent or expired lock succeeds (204).
// @Tags        Locks
// @Accept      json
// @Produce     json
//
// @Param       X-Account-ID  header  string  false "Account ID (demo header)"  example(acct123)
// @Param       id            path    string  true  "Resource ID (UUID)"        format(uuid)
// @Param       body          body    handlers.ReleaseLockRequest  false "Holder token (or X-Lock-Token header)"
//
// @Success     204  {string} string "No Content"
// @Router      /envelopes/{id}/lock [delete]
func (h *Handlers) ReleaseLock(resourceType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReleaseLockRequest
		_ = c.ShouldBindJSON(&req)
		token := strings.TrimSpace(sysutil.FirstNonEmpty(req.LockToken, c.GetHeader("X-Lock-Token")))

		if err := h.lockSvc.Release(c.Request.Context(), resourceType, c.Param("id"), token); err != nil {
			failLock(c, err)
			return
		}
		noContent(c)
	}
}

// LockStatus godoc
// @ID          lockStatus
// @Summary     Report lock status
// @Description Returns whether the resource is locked, by whom, and until when. The holder token is never exposed.
// @Tags        Locks
// @Produce     json
//
// @Param       id  path  string  true  "Resource ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.LockStatusResponse
// @Router      /envelopes/{id}/lock [get]
func (h *Handlers) LockStatus(resourceType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		l, err := h.lockSvc.Status(c.Request.Context(), resourceType, c.Param("id"))
		if err != nil {
			if err == services.ErrLockNotFound {
				ok(c, http.StatusOK, LockStatusResponse{IsLocked: false})
				return
			}
			failLock(c, err)
			return
		}
		ok(c, http.StatusOK, LockStatusResponse{
			IsLocked:    true,
			LockedBy:    l.LockedBy,
			LockedUntil: &l.LockedUntil,
		})
	}
}
