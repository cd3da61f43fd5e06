package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"lieux_backend/internal/events"
	"lieux_backend/internal/leads/repository"
	"lieux_backend/internal/leads/transport"
	"lieux_backend/internal/odoo"
	"lieux_backend/internal/ratelimit"
	"lieux_backend/platform/apperr"
	"lieux_backend/platform/logger"
	"lieux_backend/platform/validator"

	"github.com/google/uuid"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeRepo struct {
	mu           sync.Mutex
	created      []repository.CreateLeadParams
	createErr    error
	recent       []repository.Lead
	recentErr    error
	sinceArg     time.Time
	emailArg     string
	synced       map[uuid.UUID]int64
	leadByID     map[uuid.UUID]repository.Lead
	nextID       uuid.UUID
	markSyncFail error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		synced:   make(map[uuid.UUID]int64),
		leadByID: make(map[uuid.UUID]repository.Lead),
		nextID:   uuid.New(),
	}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return repository.Lead{}, f.createErr
	}
	f.created = append(f.created, params)
	lead := leadFromParams(f.nextID, params)
	f.leadByID[lead.ID] = lead
	return lead, nil
}

func leadFromParams(id uuid.UUID, params repository.CreateLeadParams) repository.Lead {
	now := time.Now()
	return repository.Lead{
		ID:             id,
		Kind:           params.Kind,
		Status:         repository.StatusNew,
		Source:         params.Source,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		Email:          params.Email,
		Phone:          params.Phone,
		Company:        params.Company,
		Position:       params.Position,
		EventType:      params.EventType,
		EventDate:      params.EventDate,
		GuestCount:     params.GuestCount,
		Budget:         params.Budget,
		WeddingDate:    params.WeddingDate,
		BrideFirstName: params.BrideFirstName,
		BrideLastName:  params.BrideLastName,
		GroomFirstName: params.GroomFirstName,
		GroomLastName:  params.GroomLastName,
		Message:        params.Message,
		Requirements:   params.Requirements,
		Venues:         params.Venues,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leadByID[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) ListByEmailSince(_ context.Context, email string, since time.Time) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emailArg = email
	f.sinceArg = since
	return f.recent, f.recentErr
}

func (f *fakeRepo) MarkSynced(_ context.Context, id uuid.UUID, odooID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markSyncFail != nil {
		return f.markSyncFail
	}
	f.synced[id] = odooID
	if lead, ok := f.leadByID[id]; ok {
		lead.SyncedToOdoo = true
		lead.OdooID = &odooID
		f.leadByID[id] = lead
	}
	return nil
}

func (f *fakeRepo) List(context.Context, repository.ListLeadsParams) ([]repository.Lead, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leadByID[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.Status = status
	f.leadByID[id] = lead
	return lead, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leadByID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.leadByID, id)
	return nil
}

func (f *fakeRepo) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakeRepo) syncedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.synced)
}

type fakeLimiter struct {
	result ratelimit.Result
	err    error
}

func (f *fakeLimiter) Check(context.Context, string) (ratelimit.Result, error) {
	return f.result, f.err
}

func allowAll() *fakeLimiter {
	return &fakeLimiter{result: ratelimit.Result{Allowed: true, Limit: 3, Remaining: 2}}
}

type fakeCRM struct {
	mu         sync.Mutex
	configured bool
	delay      time.Duration
	err        error
	nextID     int64
	b2bCalls   []odoo.B2BLead
	wedCalls   []odoo.WeddingLead
}

func (f *fakeCRM) IsConfigured() bool { return f.configured }

func (f *fakeCRM) CreateB2BLead(_ context.Context, lead odoo.B2BLead) (int64, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.b2bCalls = append(f.b2bCalls, lead)
	return f.nextID, f.err
}

func (f *fakeCRM) CreateWeddingLead(_ context.Context, lead odoo.WeddingLead) (int64, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wedCalls = append(f.wedCalls, lead)
	return f.nextID, f.err
}

func (f *fakeCRM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.b2bCalls) + len(f.wedCalls)
}

type fakeTokens struct {
	tokens []string
	err    error
}

func (f *fakeTokens) ListActiveTokens(context.Context) ([]string, error) {
	return f.tokens, f.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	calls  int
	tokens []string
	title  string
	body   string
	err    error
}

func (f *fakeNotifier) SendBatch(_ context.Context, tokens []string, title, body string, _ map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.tokens = tokens
	f.title = title
	f.body = body
	return f.err
}

type fakeBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeBus) PublishSync(ctx context.Context, event events.Event) error {
	f.Publish(ctx, event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func (f *fakeBus) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.EventName())
	}
	return out
}

type fakeIntakeConfig struct {
	syncTimeout time.Duration
}

func (f fakeIntakeConfig) GetContactRateLimit() int           { return 3 }
func (f fakeIntakeConfig) GetContactRateWindow() time.Duration { return time.Minute }
func (f fakeIntakeConfig) GetDedupWindow() time.Duration       { return 24 * time.Hour }
func (f fakeIntakeConfig) GetCRMSyncTimeout() time.Duration {
	if f.syncTimeout == 0 {
		return 8 * time.Second
	}
	return f.syncTimeout
}

type testEnv struct {
	svc      *Service
	repo     *fakeRepo
	limiter  *fakeLimiter
	crm      *fakeCRM
	tokens   *fakeTokens
	notifier *fakeNotifier
	bus      *fakeBus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:     newFakeRepo(),
		limiter:  allowAll(),
		crm:      &fakeCRM{configured: true, nextID: 42},
		tokens:   &fakeTokens{tokens: []string{"device-1"}},
		notifier: &fakeNotifier{},
		bus:      &fakeBus{},
	}
	env.svc = New(
		env.repo, env.limiter, env.crm, env.tokens, env.notifier, env.bus,
		validator.New(), logger.New("development"), fakeIntakeConfig{},
	)
	return env
}

const validB2BBody = `{
	"type": "b2b",
	"firstName": "Jo",
	"lastName": "Bloom",
	"email": "jo@acme.example",
	"phone": "+33612345678",
	"company": "Acme",
	"eventType": "séminaire",
	"eventDate": "2026-09-01",
	"guestCount": "40",
	"website": ""
}`

// =============================================================================
// Intake pipeline
// =============================================================================

func TestSubmit_B2BHappyPath(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !resp.Success || resp.LeadID == uuid.Nil {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if env.repo.createdCount() != 1 {
		t.Fatalf("expected 1 lead created, got %d", env.repo.createdCount())
	}
	created := env.repo.created[0]
	if created.Kind != transport.KindB2B {
		t.Errorf("kind = %q", created.Kind)
	}
	if created.GuestCount != 40 {
		t.Errorf("guest count = %d, want 40 (parsed from string)", created.GuestCount)
	}
	if created.Phone != "+33612345678" {
		t.Errorf("phone = %q", created.Phone)
	}

	if len(env.crm.b2bCalls) != 1 {
		t.Fatalf("expected 1 CRM call, got %d", len(env.crm.b2bCalls))
	}
	if env.crm.b2bCalls[0].Company != "Acme" {
		t.Errorf("crm company = %q", env.crm.b2bCalls[0].Company)
	}
	if env.repo.syncedCount() != 1 {
		t.Errorf("expected lead marked synced")
	}

	if env.notifier.calls != 1 {
		t.Errorf("expected 1 push fan-out, got %d", env.notifier.calls)
	}
	if !strings.Contains(env.notifier.body, "Jo Bloom") || !strings.Contains(env.notifier.body, "jo@acme.example") {
		t.Errorf("notification body %q misses contact identity", env.notifier.body)
	}

	names := env.bus.names()
	if len(names) < 2 || names[0] != "leads.received" || names[1] != "leads.crm.synced" {
		t.Errorf("unexpected events %v", names)
	}
}

func TestSubmit_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.limiter.result = ratelimit.Result{Allowed: false, Limit: 3, ResetAt: time.Now().Add(42 * time.Second)}

	_, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody))
	if !apperr.Is(err, apperr.KindRateLimited) {
		t.Fatalf("expected rate limited error, got %v", err)
	}

	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		t.Fatal("expected *apperr.Error")
	}
	details, ok := domainErr.Details.(transport.RateLimitDetails)
	if !ok {
		t.Fatalf("expected RateLimitDetails, got %T", domainErr.Details)
	}
	if details.RetryAfterSeconds < 1 || details.RetryAfterSeconds > 42 {
		t.Errorf("retryAfter = %d", details.RetryAfterSeconds)
	}
	if env.repo.createdCount() != 0 {
		t.Error("denied submission must not touch the database")
	}
}

func TestSubmit_LimiterFailureAllowsSubmission(t *testing.T) {
	env := newTestEnv(t)
	env.limiter.err = errors.New("redis down")
	env.limiter.result = ratelimit.Result{}

	if _, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody)); err != nil {
		t.Fatalf("limiter outage must not block a lead: %v", err)
	}
	if env.repo.createdCount() != 1 {
		t.Error("expected lead persisted despite limiter outage")
	}
}

func TestSubmit_HoneypotRejected(t *testing.T) {
	env := newTestEnv(t)
	body := strings.Replace(validB2BBody, `"website": ""`, `"website": "http://spam.example"`, 1)

	_, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(body))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("honeypot trip must look like a validation failure, got %v", err)
	}
	if env.repo.createdCount() != 0 {
		t.Error("honeypot submission must not be persisted")
	}
	if env.crm.calls() != 0 {
		t.Error("honeypot submission must not reach the CRM")
	}
}

func TestSubmit_EmptyOptionalFieldsDropped(t *testing.T) {
	env := newTestEnv(t)
	body := `{
		"type": "b2b",
		"firstName": "Jo",
		"lastName": "Bloom",
		"email": "jo@acme.example",
		"phone": "+33612345678",
		"company": "Acme",
		"eventType": "séminaire",
		"guestCount": "40",
		"budget": "",
		"eventDate": null,
		"message": "   "
	}`

	if _, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(body)); err != nil {
		t.Fatalf("empty optional fields must not fail validation: %v", err)
	}

	created := env.repo.created[0]
	if created.Budget != nil {
		t.Errorf("budget should be absent, got %q", *created.Budget)
	}
	if created.EventDate != nil {
		t.Errorf("eventDate should be absent, got %q", *created.EventDate)
	}
	if created.Message != nil {
		t.Errorf("blank message should be absent, got %q", *created.Message)
	}
}

func TestSubmit_EmptyRequiredFieldRejected(t *testing.T) {
	env := newTestEnv(t)
	body := strings.Replace(validB2BBody, `"company": "Acme"`, `"company": ""`, 1)

	_, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(body))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var domainErr *apperr.Error
	errors.As(err, &domainErr)
	fields, ok := domainErr.Details.([]transport.FieldError)
	if !ok {
		t.Fatalf("expected field errors, got %T", domainErr.Details)
	}
	found := false
	for _, fe := range fields {
		if fe.Field == "Company" && fe.Reason == "required" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Company/required in %v", fields)
	}
}

func TestSubmit_DuplicateWithinWindow(t *testing.T) {
	env := newTestEnv(t)
	env.repo.recent = []repository.Lead{{ID: uuid.New(), Email: "jo@acme.example"}}

	_, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody))
	if !apperr.Is(err, apperr.KindDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if env.repo.createdCount() != 0 {
		t.Error("duplicate must not be persisted")
	}
	if env.crm.calls() != 0 {
		t.Error("duplicate must not reach the CRM")
	}
}

func TestSubmit_DedupCutoffIsFullWindow(t *testing.T) {
	env := newTestEnv(t)
	fixed := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return fixed }

	if _, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody)); err != nil {
		t.Fatal(err)
	}
	want := fixed.Add(-24 * time.Hour)
	if !env.repo.sinceArg.Equal(want) {
		t.Errorf("dedup cutoff = %v, want %v", env.repo.sinceArg, want)
	}
	if env.repo.emailArg != "jo@acme.example" {
		t.Errorf("dedup email = %q", env.repo.emailArg)
	}
}

func TestSubmit_DedupLookupFailureAllowsSubmission(t *testing.T) {
	env := newTestEnv(t)
	env.repo.recentErr = errors.New("connection reset")

	if _, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody)); err != nil {
		t.Fatalf("dedup lookup outage must not block a lead: %v", err)
	}
	if env.repo.createdCount() != 1 {
		t.Error("expected lead persisted despite dedup lookup failure")
	}
}

func TestSubmit_CRMFailureStillSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.crm.err = errors.New("odoo unreachable")

	resp, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody))
	if err != nil {
		t.Fatalf("CRM failure must not fail the submission: %v", err)
	}
	if !resp.Success {
		t.Error("expected success response")
	}
	if env.repo.createdCount() != 1 {
		t.Error("lead must be persisted before the CRM attempt")
	}
	if env.repo.syncedCount() != 0 {
		t.Error("failed export must not be marked synced")
	}
}

func TestSubmit_CRMTimeoutBoundsTheCaller(t *testing.T) {
	env := newTestEnv(t)
	env.crm.delay = 500 * time.Millisecond
	env.svc.cfg = fakeIntakeConfig{syncTimeout: 25 * time.Millisecond}

	start := time.Now()
	resp, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody))
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("timed-out sync must not fail the submission: %v", err)
	}
	if !resp.Success {
		t.Error("expected success response")
	}
	if elapsed >= 400*time.Millisecond {
		t.Errorf("caller blocked %v, should be bounded by the sync timeout", elapsed)
	}
	if env.repo.syncedCount() != 0 {
		t.Error("a timed-out export must not be marked synced")
	}
}

func TestSubmit_CRMNotConfiguredSkipsSync(t *testing.T) {
	env := newTestEnv(t)
	env.crm.configured = false

	if _, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody)); err != nil {
		t.Fatal(err)
	}
	if env.crm.calls() != 0 {
		t.Error("unconfigured connector must not be called")
	}
}

func TestSubmit_PushFailureStillSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("gateway 502")

	resp, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody))
	if err != nil {
		t.Fatalf("push failure must not fail the submission: %v", err)
	}
	if !resp.Success {
		t.Error("expected success response")
	}
}

func TestSubmit_WeddingWithBrideOnly(t *testing.T) {
	env := newTestEnv(t)
	body := `{
		"type": "mariage",
		"email": "amelie@example.fr",
		"phone": "+33698765432",
		"weddingDate": "2027-06-12",
		"guestCount": "120",
		"bride": {"firstName": "Amélie", "lastName": "Rousseau"},
		"groom": {"firstName": "Marc", "lastName": "Petit"}
	}`

	if _, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(body)); err != nil {
		t.Fatalf("wedding with nested bride identity must be accepted: %v", err)
	}

	if len(env.crm.wedCalls) != 1 {
		t.Fatalf("expected 1 wedding CRM call, got %d", len(env.crm.wedCalls))
	}
	payload := env.crm.wedCalls[0]
	if payload.FirstName != "Amélie" || payload.LastName != "Rousseau" {
		t.Errorf("contact identity should fall back to bride, got %q %q", payload.FirstName, payload.LastName)
	}
	if payload.GuestCount != 120 {
		t.Errorf("guest count = %d", payload.GuestCount)
	}
	if payload.GroomFirstName != "Marc" {
		t.Errorf("groom = %q", payload.GroomFirstName)
	}
}

func TestSubmit_SanitizesHTML(t *testing.T) {
	env := newTestEnv(t)
	body := strings.Replace(validB2BBody, `"company": "Acme"`,
		`"company": "Acme<script>alert(1)</script>", "message": "Bonjour <b>monde</b>"`, 1)

	if _, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(body)); err != nil {
		t.Fatal(err)
	}
	created := env.repo.created[0]
	if *created.Company != "Acmealert(1)" {
		t.Errorf("company not sanitized: %q", *created.Company)
	}
	if *created.Message != "Bonjour monde" {
		t.Errorf("message not sanitized: %q", *created.Message)
	}
}

func TestSubmit_UnknownKindRejected(t *testing.T) {
	env := newTestEnv(t)
	body := strings.Replace(validB2BBody, `"type": "b2b"`, `"type": "corporate"`, 1)

	_, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(body))
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmit_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(`{"type":`))
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestSubmit_PersistFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	env.repo.createErr = errors.New("disk full")

	_, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody))
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if env.crm.calls() != 0 {
		t.Error("a lead that was never saved must not reach the CRM")
	}
}

// =============================================================================
// Resync
// =============================================================================

func TestResyncLead_ExportsUnsyncedLead(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody)); err != nil {
		t.Fatal(err)
	}
	leadID := env.repo.nextID

	// Undo the sync marker so the lead is pending again.
	env.repo.mu.Lock()
	lead := env.repo.leadByID[leadID]
	lead.SyncedToOdoo = false
	env.repo.leadByID[leadID] = lead
	delete(env.repo.synced, leadID)
	env.repo.mu.Unlock()

	if err := env.svc.ResyncLead(context.Background(), leadID); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if env.repo.syncedCount() != 1 {
		t.Error("expected lead marked synced after resync")
	}
}

func TestResyncLead_AlreadySyncedIsNoop(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Submit(context.Background(), "203.0.113.9", []byte(validB2BBody)); err != nil {
		t.Fatal(err)
	}
	before := env.crm.calls()

	if err := env.svc.ResyncLead(context.Background(), env.repo.nextID); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if env.crm.calls() != before {
		t.Error("already-synced lead must not be exported again")
	}
}

func TestResyncLead_UnknownLead(t *testing.T) {
	env := newTestEnv(t)
	err := env.svc.ResyncLead(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
