package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-esign-backend/internal/domain"
	"github.com/tbourn/go-esign-backend/internal/services"
)

// ---------- test DB + wiring ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:esign_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(
		&domain.Envelope{},
		&domain.Document{},
		&domain.Recipient{},
		&domain.WorkflowStep{},
		&domain.CustomField{},
		&domain.EnvelopeLock{},
		&domain.ConnectConfiguration{},
		&domain.ConnectLog{},
		&domain.ConnectFailure{},
		&domain.Idempotency{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newAPI wires real services onto a fresh database and registers the envelope
// routes used in this file.
func newAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	envSvc := &services.EnvelopeService{DB: db}
	lockSvc := &services.LockService{DB: db}
	connSvc := &services.ConnectService{DB: db}
	h := New(envSvc, lockSvc, connSvc)

	r := gin.New()
	r.POST("/envelopes", h.CreateEnvelope)
	r.GET("/envelopes", h.ListEnvelopes)
	r.GET("/envelopes/:id", h.GetEnvelope)
	r.DELETE("/envelopes/:id", h.DeleteEnvelope)
	r.GET("/envelopes/:id/recipients", h.ListEnvelopeRecipients)
	r.POST("/envelopes/:id/send", h.SendEnvelope)
	r.POST("/envelopes/:id/void", h.VoidEnvelope)
	r.POST("/envelopes/:id/correct", h.CorrectEnvelope)
	r.POST("/envelopes/:id/resend", h.ResendEnvelope)
	r.POST("/envelopes/:id/recipients/:rid/delivery", h.RecordDelivery)
	r.POST("/envelopes/:id/recipients/:rid/completion", h.RecordCompletion)
	r.POST("/envelopes/:id/recipients/:rid/decline", h.RecordDecline)
	return r, db
}

func doJSONReq(t *testing.T, method, path, acct string, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Account-ID", acct)
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(t *testing.T, r *gin.Engine, method, path, acct string, body string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(r, doJSONReq(t, method, path, acct, body))
}

// createDraftViaAPI posts a two-signer, one-document draft and returns it.
func createDraftViaAPI(t *testing.T, r *gin.Engine, acct string) domain.Envelope {
	t.Helper()
	body := `{
		"subject": "NDA",
		"documents": [{"name": "nda.pdf", "order": 1}],
		"recipients": [
			{"type": "signer", "routing_order": 1, "name": "A", "email": "a@x"},
			{"type": "signer", "routing_order": 2, "name": "B", "email": "b@x"}
		]
	}`
	w := doJSON(t, r, http.MethodPost, "/envelopes", acct, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
	}
	var e domain.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("json: %v", err)
	}
	return e
}

func recipientIDs(t *testing.T, db *gorm.DB, envelopeID string) map[string]string {
	t.Helper()
	var recips []domain.Recipient
	if err := db.Where("envelope_id = ?", envelopeID).Find(&recips).Error; err != nil {
		t.Fatalf("load recipients: %v", err)
	}
	out := make(map[string]string, len(recips))
	for _, rcp := range recips {
		out[rcp.Email] = rcp.ID
	}
	return out
}

// ---------- helpers-only tests ----------

func Test_accountID_and_clampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// accountID helper
	rc := gin.CreateTestContextOnly(httptest.NewRecorder(), gin.New())
	if got := accountID(rc); got != "demo-account" {
		t.Fatalf("fallback accountID = %q", got)
	}
	rc.Set("accountID", "acct1")
	if got := accountID(rc); got != "acct1" {
		t.Fatalf("ctx accountID = %q", got)
	}
	rc.Set("accountID", 123) // wrong type → fallback
	if got := accountID(rc); got != "demo-account" {
		t.Fatalf("wrong-type fallback accountID = %q", got)
	}

	// header fallback
	cH, _ := gin.CreateTestContext(httptest.NewRecorder())
	reqH := httptest.NewRequest("GET", "/", nil)
	reqH.Header.Set("X-Account-ID", "acct-123")
	cH.Request = reqH
	if got := accountID(cH); got != "acct-123" {
		t.Fatalf("header fallback accountID = %q", got)
	}

	// clampPagination bounds
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=-5&page_size=9999", nil)
	p, ps := clampPagination(c)
	if p != 1 || ps != 100 {
		t.Fatalf("clamp bounds got p=%d ps=%d", p, ps)
	}
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=&page_size=0", nil)
	p, ps = clampPagination(c)
	if p != 1 || ps != 1 {
		t.Fatalf("clamp defaults got p=%d ps=%d", p, ps)
	}
}

// ---------- CreateEnvelope ----------

func TestCreateEnvelope_BadJSON_Success_Validation(t *testing.T) {
	r, db := newAPI(t)

	// Bad JSON -> 400
	w := doJSON(t, r, http.MethodPost, "/envelopes", "acct1", "{bad")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}

	// Success -> 201 with children persisted
	e := createDraftViaAPI(t, r, "acct1")
	if e.Status != domain.EnvelopeStatusDraft || e.AccountID != "acct1" || e.Subject != "NDA" {
		t.Fatalf("unexpected envelope: %+v", e)
	}
	var docCount int64
	db.Model(&domain.Document{}).Where("envelope_id = ?", e.ID).Count(&docCount)
	if docCount != 1 {
		t.Fatalf("documents not persisted: %d", docCount)
	}

	// Blank recipient email -> 400
	w = doJSON(t, r, http.MethodPost, "/envelopes", "acct1",
		`{"recipients":[{"type":"signer","routing_order":1,"email":"  "}]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank email -> %d body=%s", w.Code, w.Body.String())
	}
}

// ---------- ListEnvelopes ----------

func TestListEnvelopes_ETag304_and_SuccessPage(t *testing.T) {
	r, _ := newAPI(t)
	createDraftViaAPI(t, r, "acct1")
	createDraftViaAPI(t, r, "acct1")

	etag := `W/"envelopes:acct1:2"`

	// 304 path
	req := httptest.NewRequest(http.MethodGet, "/envelopes", nil)
	req.Header.Set("X-Account-ID", "acct1")
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("etag 304 -> %d", w.Code)
	}

	// 200 success with pagination
	w = doJSON(t, r, http.MethodGet, "/envelopes?page=1&page_size=1", "acct1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list 200 -> %d body=%s", w.Code, w.Body.String())
	}
	var out ListEnvelopesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Pagination.Total != 2 || out.Pagination.TotalPages != 2 || !out.Pagination.HasNext {
		t.Fatalf("pagination mismatch: %#v", out.Pagination)
	}
	if len(out.Envelopes) != 1 {
		t.Fatalf("expected 1 envelope on page 1")
	}

	// Other accounts never see these envelopes.
	w = doJSON(t, r, http.MethodGet, "/envelopes", "other", "")
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Pagination.Total != 0 {
		t.Fatalf("cross-account leak: %#v", out.Pagination)
	}
}

// ---------- Send / Void / transitions ----------

func TestSendEnvelope_Flow_And_Idempotency(t *testing.T) {
	r, _ := newAPI(t)
	e := createDraftViaAPI(t, r, "acct1")

	// bad UUID -> 400
	if w := doJSON(t, r, http.MethodPost, "/envelopes/not-uuid/send", "acct1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("uuid 400 -> %d", w.Code)
	}

	// First send -> 200, status sent, idempotency key recorded.
	req := httptest.NewRequest(http.MethodPost, "/envelopes/"+e.ID+"/send", nil)
	req.Header.Set("X-Account-ID", "acct1")
	req.Header.Set("Idempotency-Key", "send-key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("send -> %d body=%s", w.Code, w.Body.String())
	}
	var sent domain.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &sent); err != nil {
		t.Fatalf("json: %v", err)
	}
	if sent.Status != domain.EnvelopeStatusSent || sent.SentAt == nil {
		t.Fatalf("send bookkeeping: %+v", sent)
	}

	// Same key replays the current state instead of failing on double-send.
	req = httptest.NewRequest(http.MethodPost, "/envelopes/"+e.ID+"/send", nil)
	req.Header.Set("X-Account-ID", "acct1")
	req.Header.Set("Idempotency-Key", "send-key-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay -> %d replayed=%q", w.Code, w.Header().Get("Idempotency-Replayed"))
	}

	// Without a key, a second send is a state conflict.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/send", "acct1", ""); w.Code != http.StatusConflict {
		t.Fatalf("double send -> %d", w.Code)
	}
}

func TestSendEnvelope_MissingPreconditions(t *testing.T) {
	r, _ := newAPI(t)

	// No recipients -> 422
	w := doJSON(t, r, http.MethodPost, "/envelopes", "acct1", `{"documents":[{"name":"a.pdf"}]}`)
	var e domain.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/send", "acct1", ""); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("no recipients -> %d", w.Code)
	}

	// No documents -> 422
	w = doJSON(t, r, http.MethodPost, "/envelopes", "acct1",
		`{"recipients":[{"type":"signer","routing_order":1,"email":"a@x"}]}`)
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/send", "acct1", ""); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("no documents -> %d", w.Code)
	}

	// Unknown envelope -> 404
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+uuid.NewString()+"/send", "acct1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing -> %d", w.Code)
	}
}

func TestVoidEnvelope(t *testing.T) {
	r, _ := newAPI(t)
	e := createDraftViaAPI(t, r, "acct1")

	// Draft cannot be voided.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/void", "acct1", `{"void_reason":"dup"}`); w.Code != http.StatusConflict {
		t.Fatalf("void draft -> %d", w.Code)
	}

	doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/send", "acct1", "")

	// Missing reason -> 400
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/void", "acct1", `{"void_reason":"  "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("blank reason -> %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/void", "acct1", `{"void_reason":"superseded"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("void -> %d body=%s", w.Code, w.Body.String())
	}
	var voided domain.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &voided)
	if voided.Status != domain.EnvelopeStatusVoided || voided.VoidedReason != "superseded" || voided.VoidedAt == nil {
		t.Fatalf("void bookkeeping: %+v", voided)
	}

	// Voided is absorbing.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/void", "acct1", `{"void_reason":"again"}`); w.Code != http.StatusConflict {
		t.Fatalf("double void -> %d", w.Code)
	}
}

func TestRecipientActions_CompleteAndDecline(t *testing.T) {
	r, db := newAPI(t)
	e := createDraftViaAPI(t, r, "acct1")
	doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/send", "acct1", "")
	ids := recipientIDs(t, db, e.ID)

	// Second-group recipient cannot act yet.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/recipients/"+ids["b@x"]+"/completion", "acct1", ""); w.Code != http.StatusConflict {
		t.Fatalf("out-of-turn -> %d", w.Code)
	}

	// Delivery then completion for the active recipient.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/recipients/"+ids["a@x"]+"/delivery", "acct1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delivery -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/recipients/"+ids["a@x"]+"/completion", "acct1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("completion -> %d", w.Code)
	}

	// Completed recipients cannot act again.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/recipients/"+ids["a@x"]+"/completion", "acct1", ""); w.Code != http.StatusConflict {
		t.Fatalf("settled -> %d", w.Code)
	}

	// Second group is now active; decline terminates the envelope.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/recipients/"+ids["b@x"]+"/decline", "acct1", `{"decline_reason":"no"}`); w.Code != http.StatusNoContent {
		t.Fatalf("decline -> %d", w.Code)
	}
	var got domain.Envelope
	if err := db.Where("id = ?", e.ID).First(&got).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.EnvelopeStatusDeclined {
		t.Fatalf("envelope not declined: %q", got.Status)
	}
}

// ---------- Correct / Resend / Delete / Recipients ----------

func TestCorrectEnvelope(t *testing.T) {
	r, db := newAPI(t)
	e := createDraftViaAPI(t, r, "acct1")
	ids := recipientIDs(t, db, e.ID)

	// Empty corrections -> 400
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/correct", "acct1", `{"recipient_corrections":[]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty corrections -> %d", w.Code)
	}

	body := fmt.Sprintf(`{"recipient_corrections":[{"recipient_id":%q,"name":"A2","email":"a2@x"}]}`, ids["a@x"])
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/correct", "acct1", body); w.Code != http.StatusNoContent {
		t.Fatalf("correct -> %d", w.Code)
	}
	var rcp domain.Recipient
	if err := db.Where("id = ?", ids["a@x"]).First(&rcp).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if rcp.Email != "a2@x" || rcp.Name != "A2" {
		t.Fatalf("correction lost: %+v", rcp)
	}
}

func TestResendEnvelope(t *testing.T) {
	r, _ := newAPI(t)
	e := createDraftViaAPI(t, r, "acct1")

	// Draft cannot be resent.
	if w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/resend", "acct1", ""); w.Code != http.StatusConflict {
		t.Fatalf("resend draft -> %d", w.Code)
	}

	doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/send", "acct1", "")
	w := doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/resend", "acct1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("resend -> %d", w.Code)
	}
	var out ResendResponse
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	// Only the first routing group is active: one pending signer.
	if out.Resent != 1 {
		t.Fatalf("resent = %d", out.Resent)
	}
}

func TestDeleteEnvelope_DraftOnly(t *testing.T) {
	r, _ := newAPI(t)
	e := createDraftViaAPI(t, r, "acct1")

	doJSON(t, r, http.MethodPost, "/envelopes/"+e.ID+"/send", "acct1", "")
	if w := doJSON(t, r, http.MethodDelete, "/envelopes/"+e.ID, "acct1", ""); w.Code != http.StatusConflict {
		t.Fatalf("delete sent -> %d", w.Code)
	}

	draft := createDraftViaAPI(t, r, "acct1")
	if w := doJSON(t, r, http.MethodDelete, "/envelopes/"+draft.ID, "acct1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete draft -> %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/envelopes/"+draft.ID, "acct1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("deleted still visible -> %d", w.Code)
	}
}

func TestListEnvelopeRecipients(t *testing.T) {
	r, _ := newAPI(t)
	e := createDraftViaAPI(t, r, "acct1")

	// Cross-account access is indistinguishable from not-found.
	if w := doJSON(t, r, http.MethodGet, "/envelopes/"+e.ID+"/recipients", "other", ""); w.Code != http.StatusNotFound {
		t.Fatalf("cross-account -> %d", w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/envelopes/"+e.ID+"/recipients", "acct1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("recipients -> %d", w.Code)
	}
	var out ListRecipientsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(out.Recipients))
	}
}
