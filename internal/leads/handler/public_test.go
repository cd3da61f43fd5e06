package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lieux_backend/internal/leads/repository"
	"lieux_backend/internal/leads/service"
	"lieux_backend/internal/odoo"
	"lieux_backend/internal/ratelimit"
	"lieux_backend/platform/events"
	"lieux_backend/platform/logger"
	"lieux_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubRepo struct {
	created *repository.Lead
}

func (s *stubRepo) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	lead := repository.Lead{
		ID:        uuid.New(),
		Kind:      params.Kind,
		Status:    repository.StatusNew,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		CreatedAt: time.Now(),
	}
	s.created = &lead
	return lead, nil
}

func (s *stubRepo) GetByID(context.Context, uuid.UUID) (repository.Lead, error) {
	return repository.Lead{}, repository.ErrNotFound
}

func (s *stubRepo) ListByEmailSince(context.Context, string, time.Time) ([]repository.Lead, error) {
	return nil, nil
}

func (s *stubRepo) MarkSynced(context.Context, uuid.UUID, int64) error { return nil }

func (s *stubRepo) List(context.Context, repository.ListLeadsParams) ([]repository.Lead, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) UpdateStatus(context.Context, uuid.UUID, string) (repository.Lead, error) {
	return repository.Lead{}, repository.ErrNotFound
}

func (s *stubRepo) Delete(context.Context, uuid.UUID) error { return nil }

type denyingLimiter struct{}

func (denyingLimiter) Check(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{Allowed: false, Limit: 3, ResetAt: time.Now().Add(42 * time.Second)}, nil
}

type offlineCRM struct{}

func (offlineCRM) IsConfigured() bool { return false }
func (offlineCRM) CreateB2BLead(context.Context, odoo.B2BLead) (int64, error) {
	return 0, nil
}
func (offlineCRM) CreateWeddingLead(context.Context, odoo.WeddingLead) (int64, error) {
	return 0, nil
}

type noTokens struct{}

func (noTokens) ListActiveTokens(context.Context) ([]string, error) { return nil, nil }

type noPush struct{}

func (noPush) SendBatch(context.Context, []string, string, string, map[string]string) error {
	return nil
}

type silentBus struct{}

func (silentBus) Publish(context.Context, events.Event)          {}
func (silentBus) PublishSync(context.Context, events.Event) error { return nil }
func (silentBus) Subscribe(string, events.Handler)               {}

type intakeCfg struct{}

func (intakeCfg) GetContactRateLimit() int            { return 3 }
func (intakeCfg) GetContactRateWindow() time.Duration { return time.Minute }
func (intakeCfg) GetDedupWindow() time.Duration       { return 24 * time.Hour }
func (intakeCfg) GetCRMSyncTimeout() time.Duration    { return 8 * time.Second }

func newSubmitRouter(t *testing.T, limiter ratelimit.Limiter) (*gin.Engine, *stubRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubRepo{}
	log := logger.New("development")
	svc := service.New(repo, limiter, offlineCRM{}, noTokens{}, noPush{}, silentBus{}, validator.New(), log, intakeCfg{})

	engine := gin.New()
	engine.POST("/contact/submit", NewPublicHandler(svc, log).Submit)
	return engine, repo
}

const submitBody = `{
	"type": "b2b",
	"firstName": "Jo",
	"lastName": "Bloom",
	"email": "jo@acme.example",
	"phone": "+33612345678",
	"company": "Acme",
	"eventType": "seminaire",
	"guestCount": "40",
	"website": ""
}`

func doSubmit(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSubmit_OK(t *testing.T) {
	engine, repo := newSubmitRouter(t, ratelimit.NoopLimiter{})

	rec := doSubmit(engine, submitBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if repo.created == nil {
		t.Fatal("lead was not persisted")
	}

	var resp struct {
		Success bool   `json:"success"`
		LeadID  string `json:"leadId"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("success should be true")
	}
	if resp.LeadID != repo.created.ID.String() {
		t.Errorf("leadId = %q, want %q", resp.LeadID, repo.created.ID)
	}
	if resp.Message == "" {
		t.Error("expected a confirmation message")
	}
}

func TestSubmit_RateLimitedHeaders(t *testing.T) {
	engine, repo := newSubmitRouter(t, denyingLimiter{})

	rec := doSubmit(engine, submitBody)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if repo.created != nil {
		t.Error("denied submission must not be persisted")
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "3" {
		t.Errorf("X-RateLimit-Limit = %q", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q", got)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] != "rate_limited" {
		t.Errorf("error = %v", resp["error"])
	}
	if _, ok := resp["retryAfter"]; !ok {
		t.Error("body should carry retryAfter")
	}
}

func TestSubmit_ValidationErrorShape(t *testing.T) {
	engine, _ := newSubmitRouter(t, ratelimit.NoopLimiter{})

	// Missing company: required for b2b.
	body := strings.Replace(submitBody, `"company": "Acme",`, "", 1)
	rec := doSubmit(engine, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error   string `json:"error"`
		Details []struct {
			Field  string `json:"field"`
			Reason string `json:"reason"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "validation_failed" {
		t.Errorf("error = %q", resp.Error)
	}
	found := false
	for _, d := range resp.Details {
		if d.Field == "Company" {
			found = true
		}
	}
	if !found {
		t.Errorf("details should name the missing company field: %+v", resp.Details)
	}
}

func TestSubmit_HoneypotLooksLikeValidation(t *testing.T) {
	engine, repo := newSubmitRouter(t, ratelimit.NoopLimiter{})

	body := strings.Replace(submitBody, `"website": ""`, `"website": "https://spam.example"`, 1)
	rec := doSubmit(engine, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if repo.created != nil {
		t.Error("honeypot submission must not be persisted")
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] != "validation_failed" {
		t.Errorf("honeypot rejection must be indistinguishable from validation: %v", resp["error"])
	}
}

func TestSubmit_BodyTooLarge(t *testing.T) {
	engine, _ := newSubmitRouter(t, ratelimit.NoopLimiter{})

	big := `{"type":"b2b","message":"` + strings.Repeat("x", 70<<10) + `"}`
	rec := doSubmit(engine, big)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
