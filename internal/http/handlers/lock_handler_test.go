package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/services"
)

func newLockAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	envSvc := &services.EnvelopeService{DB: db}
	lockSvc := &services.LockService{
		DB:              db,
		MinDuration:     time.Minute,
		MaxDuration:     time.Hour,
		DefaultDuration: 5 * time.Minute,
	}
	connSvc := &services.ConnectService{DB: db}
	h := New(envSvc, lockSvc, connSvc)

	r := gin.New()
	r.POST("/envelopes/:id/lock", h.AcquireLock(domain.LockResourceEnvelope))
	r.PUT("/envelopes/:id/lock", h.ExtendLock(domain.LockResourceEnvelope))
	r.DELETE("/envelopes/:id/lock", h.ReleaseLock(domain.LockResourceEnvelope))
	r.GET("/envelopes/:id/lock", h.LockStatus(domain.LockResourceEnvelope))
	r.POST("/templates/:id/lock", h.AcquireLock(domain.LockResourceTemplate))
	r.GET("/templates/:id/lock", h.LockStatus(domain.LockResourceTemplate))
	return r, db
}

func TestAcquireLock_Contention_And_Bounds(t *testing.T) {
	r, _ := newLockAPI(t)
	resID := uuid.NewString()

	// Default duration when body omitted.
	w := doJSON(t, r, http.MethodPost, "/envelopes/"+resID+"/lock", "editor-a", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("acquire -> %d body=%s", w.Code, w.Body.String())
	}
	var lr LockResponse
	if err := json.Unmarshal(w.Body.Bytes(), &lr); err != nil {
		t.Fatalf("json: %v", err)
	}
	if lr.LockToken == "" || lr.LockedBy != "editor-a" {
		t.Fatalf("lock response: %+v", lr)
	}
	if until := time.Until(lr.LockedUntil); until < 4*time.Minute || until > 6*time.Minute {
		t.Fatalf("default duration not applied: %v", lr.LockedUntil)
	}

	// Second editor is refused while the lock is live.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+resID+"/lock", "editor-b", ""); w.Code != http.StatusConflict {
		t.Fatalf("contended acquire -> %d", w.Code)
	}

	// Out-of-range durations are rejected up front.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+uuid.NewString()+"/lock", "editor-a",
		`{"lock_duration_in_seconds": 5}`); w.Code != http.StatusBadRequest {
		t.Fatalf("below min -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+uuid.NewString()+"/lock", "editor-a",
		`{"lock_duration_in_seconds": 7200}`); w.Code != http.StatusBadRequest {
		t.Fatalf("above max -> %d", w.Code)
	}

	// Envelope and template lock namespaces are independent.
	if w := doJSON(t, r, http.MethodPost, "/templates/"+resID+"/lock", "editor-b", ""); w.Code != http.StatusCreated {
		t.Fatalf("template acquire -> %d", w.Code)
	}
}

func TestExtendLock_TokenChecks(t *testing.T) {
	r, _ := newLockAPI(t)
	resID := uuid.NewString()

	w := doJSON(t, r, http.MethodPost, "/envelopes/"+resID+"/lock", "editor-a", "")
	var lr LockResponse
	_ = json.Unmarshal(w.Body.Bytes(), &lr)

	// Missing token -> 400
	if w := doJSON(t, r, http.MethodPut, "/envelopes/"+resID+"/lock", "editor-a", `{"lock_token":" "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing token -> %d", w.Code)
	}

	// Wrong token is indistinguishable from no lock.
	if w := doJSON(t, r, http.MethodPut, "/envelopes/"+resID+"/lock", "editor-a",
		`{"lock_token":"`+uuid.NewString()+`"}`); w.Code != http.StatusNotFound {
		t.Fatalf("wrong token -> %d", w.Code)
	}

	// Holder extends for a fresh window.
	w = doJSON(t, r, http.MethodPut, "/envelopes/"+resID+"/lock", "editor-a",
		`{"lock_token":"`+lr.LockToken+`","lock_duration_in_seconds":1800}`)
	if w.Code != http.StatusOK {
		t.Fatalf("extend -> %d body=%s", w.Code, w.Body.String())
	}
	var ext LockResponse
	_ = json.Unmarshal(w.Body.Bytes(), &ext)
	if !ext.LockedUntil.After(lr.LockedUntil) {
		t.Fatalf("extend did not push expiry: %v <= %v", ext.LockedUntil, lr.LockedUntil)
	}
}

func TestReleaseLock_And_Status(t *testing.T) {
	r, db := newLockAPI(t)
	resID := uuid.NewString()

	// Status on a free resource is 200 with is_locked=false.
	w := doJSON(t, r, http.MethodGet, "/envelopes/"+resID+"/lock", "anyone", "")
	if w.Code != http.StatusOK {
		t.Fatalf("free status -> %d", w.Code)
	}
	var st LockStatusResponse
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.IsLocked {
		t.Fatalf("expected unlocked status")
	}

	w = doJSON(t, r, http.MethodPost, "/envelopes/"+resID+"/lock", "editor-a", "")
	var lr LockResponse
	_ = json.Unmarshal(w.Body.Bytes(), &lr)

	// Status while held reports holder but never the token.
	w = doJSON(t, r, http.MethodGet, "/envelopes/"+resID+"/lock", "anyone", "")
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if !st.IsLocked || st.LockedBy != "editor-a" || st.LockedUntil == nil {
		t.Fatalf("held status: %+v", st)
	}
	var raw map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &raw)
	if _, leaked := raw["lock_token"]; leaked {
		t.Fatalf("status must not expose the token")
	}

	// Token accepted via header as well as body.
	req := doJSONReq(t, http.MethodDelete, "/envelopes/"+resID+"/lock", "editor-a", "")
	req.Header.Set("X-Lock-Token", lr.LockToken)
	w = serve(r, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("release -> %d", w.Code)
	}

	// Releasing again is a no-op.
	if w := doJSON(t, r, http.MethodDelete, "/envelopes/"+resID+"/lock", "editor-a",
		`{"lock_token":"`+lr.LockToken+`"}`); w.Code != http.StatusNoContent {
		t.Fatalf("double release -> %d", w.Code)
	}

	var count int64
	db.Model(&domain.EnvelopeLock{}).Where("resource_id = ?", resID).Count(&count)
	if count != 0 {
		t.Fatalf("lock row not removed: %d", count)
	}
}

func TestLockStatus_LapsedRowReadsUnlocked(t *testing.T) {
	r, db := newLockAPI(t)
	resID := uuid.NewString()

	doJSON(t, r, http.MethodPost, "/envelopes/"+resID+"/lock", "editor-a", "")

	// Backdate the expiry; the stale row must read as unlocked.
	db.Model(&domain.EnvelopeLock{}).
		Where("resource_type = ? AND resource_id = ?", domain.LockResourceEnvelope, resID).
		Update("locked_until", time.Now().UTC().Add(-time.Minute))

	w := doJSON(t, r, http.MethodGet, "/envelopes/"+resID+"/lock", "anyone", "")
	var st LockStatusResponse
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.IsLocked {
		t.Fatalf("lapsed lock reported as held")
	}

	// And a new editor can take over immediately.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+resID+"/lock", "editor-b", ""); w.Code != http.StatusCreated {
		t.Fatalf("takeover -> %d", w.Code)
	}
}
