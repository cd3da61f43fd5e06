// Package service implements the contact-form intake pipeline and the admin
// lead operations.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"lieux_backend/internal/events"
	"lieux_backend/internal/leads/repository"
	"lieux_backend/internal/leads/transport"
	"lieux_backend/internal/odoo"
	"lieux_backend/internal/push"
	"lieux_backend/internal/ratelimit"
	"lieux_backend/platform/apperr"
	"lieux_backend/platform/config"
	"lieux_backend/platform/logger"
	"lieux_backend/platform/phone"
	"lieux_backend/platform/sanitize"
	"lieux_backend/platform/validator"

	gpvalidator "github.com/go-playground/validator/v10"
)

// User-facing messages. The site is French; error codes stay English.
const (
	msgSubmitOK    = "Merci pour votre demande ! Notre équipe vous recontactera sous 24h."
	msgRateLimited = "Trop de demandes. Veuillez réessayer dans quelques instants."
	msgValidation  = "Certains champs sont invalides ou manquants."
	msgDuplicate   = "Votre demande a déjà été reçue. Notre équipe vous recontactera très vite."
	msgInternal    = "Une erreur est survenue. Veuillez réessayer."
)

const leadSource = "website"

// Service orchestrates lead intake and management.
type Service struct {
	repo     repository.LeadsRepository
	limiter  ratelimit.Limiter
	crm      odoo.Connector
	tokens   push.TokenStore
	notifier push.Notifier
	bus      events.Bus
	val      *validator.Validator
	log      *logger.Logger
	cfg      config.IntakeConfig
	now      func() time.Time
}

// New creates the leads service.
func New(
	repo repository.LeadsRepository,
	limiter ratelimit.Limiter,
	crm odoo.Connector,
	tokens push.TokenStore,
	notifier push.Notifier,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
	cfg config.IntakeConfig,
) *Service {
	return &Service{
		repo:     repo,
		limiter:  limiter,
		crm:      crm,
		tokens:   tokens,
		notifier: notifier,
		bus:      bus,
		val:      val,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Submit runs the full intake pipeline for a contact-form submission.
//
// The caller blocks through the quota check, abuse check, validation, the
// duplicate check and the database write; the CRM export then holds the
// response for at most the configured sync timeout, and the device fan-out is
// fire-and-forget. Once the lead row is written, nothing downstream can fail
// the submission.
func (s *Service) Submit(ctx context.Context, clientIP string, body []byte) (transport.SubmitResponse, error) {
	log := s.log.WithContext(ctx)

	// Quota first, before any parsing. A broken limiter never blocks a lead.
	if quota, err := s.limiter.Check(ctx, clientIP); err != nil {
		log.Warn("rate limiter unavailable, allowing submission", "error", err.Error())
	} else if !quota.Allowed {
		log.RateLimitExceeded(clientIP, "/contact/submit")
		return transport.SubmitResponse{}, apperr.RateLimited(msgRateLimited).WithDetails(transport.RateLimitDetails{
			RetryAfterSeconds: quota.RetryAfterSeconds(),
			Limit:             quota.Limit,
		})
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return transport.SubmitResponse{}, apperr.BadRequest("invalid JSON body")
	}

	// The honeypot verdict is indistinguishable from a validation failure,
	// so bots learn nothing from the response.
	if honeypotTripped(raw[transport.HoneypotField]) {
		log.Warn("honeypot tripped", "client_ip", clientIP)
		return transport.SubmitResponse{}, apperr.Validation(msgValidation)
	}
	delete(raw, transport.HoneypotField)

	fields := transport.Normalize(raw)

	kind, _ := fields["type"].(string)
	params, email, err := s.buildLead(fields, kind)
	if err != nil {
		return transport.SubmitResponse{}, err
	}

	// Duplicate check. The read-then-write window is not closed; two
	// concurrent submissions of the same email can both land, which beats
	// rejecting a real lead on a failed lookup.
	since := s.now().Add(-s.cfg.GetDedupWindow())
	if recent, err := s.repo.ListByEmailSince(ctx, email, since); err != nil {
		log.DatabaseError("leads.dedup_lookup", err)
	} else if len(recent) > 0 {
		log.Info("duplicate submission rejected", "email", email, "kind", kind)
		return transport.SubmitResponse{}, apperr.Duplicate(msgDuplicate)
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		log.DatabaseError("leads.create", err)
		return transport.SubmitResponse{}, apperr.Wrap(apperr.KindInternal, msgInternal, err)
	}
	log.LeadEvent("lead_created", lead.ID.String(), lead.Kind)

	s.bus.Publish(ctx, events.LeadReceived{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		Kind:        lead.Kind,
		ContactName: ContactName(lead),
		Email:       lead.Email,
		Company:     derefOr(lead.Company, ""),
		EventDate:   eventDateOf(lead),
	})

	s.syncToCRM(ctx, lead)
	s.notifyDevices(ctx, lead)

	return transport.SubmitResponse{Success: true, Message: msgSubmitOK, LeadID: lead.ID}, nil
}

// honeypotTripped reports whether the hidden field carries anything a human
// would not have put there.
func honeypotTripped(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	default:
		return true
	}
}

// buildLead dispatches on the submission kind, validates the typed form and
// returns sanitized persistence params plus the contact email for dedup.
func (s *Service) buildLead(fields map[string]interface{}, kind string) (repository.CreateLeadParams, string, error) {
	switch kind {
	case transport.KindB2B:
		var req transport.B2BSubmission
		if err := decodeInto(fields, &req); err != nil {
			return repository.CreateLeadParams{}, "", err
		}
		if err := s.val.Struct(req); err != nil {
			return repository.CreateLeadParams{}, "", validationError(err)
		}
		return b2bParams(req), req.Email, nil
	case transport.KindWedding:
		var req transport.WeddingSubmission
		if err := decodeInto(fields, &req); err != nil {
			return repository.CreateLeadParams{}, "", err
		}
		if err := s.val.Struct(req); err != nil {
			return repository.CreateLeadParams{}, "", validationError(err)
		}
		return weddingParams(req), req.Email, nil
	default:
		return repository.CreateLeadParams{}, "", apperr.Validation(msgValidation).WithDetails([]transport.FieldError{
			{Field: "type", Reason: "must be b2b or mariage"},
		})
	}
}

func decodeInto(fields map[string]interface{}, dst interface{}) error {
	buf, err := json.Marshal(fields)
	if err != nil {
		return apperr.BadRequest("invalid JSON body")
	}
	if err := json.Unmarshal(buf, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperr.Validation(msgValidation).WithDetails([]transport.FieldError{
				{Field: typeErr.Field, Reason: "wrong type"},
			})
		}
		return apperr.BadRequest("invalid JSON body")
	}
	return nil
}

func validationError(err error) error {
	var ves gpvalidator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperr.Validation(msgValidation)
	}
	details := make([]transport.FieldError, 0, len(ves))
	for _, ve := range ves {
		details = append(details, transport.FieldError{Field: ve.Field(), Reason: ve.Tag()})
	}
	return apperr.Validation(msgValidation).WithDetails(details)
}

func b2bParams(req transport.B2BSubmission) repository.CreateLeadParams {
	return repository.CreateLeadParams{
		Kind:         transport.KindB2B,
		Source:       leadSource,
		FirstName:    sanitize.Text(req.FirstName),
		LastName:     sanitize.Text(req.LastName),
		Email:        req.Email,
		Phone:        phone.NormalizeE164(req.Phone),
		Company:      ptr(sanitize.Text(req.Company)),
		Position:     sanitize.TextPtr(req.Position),
		EventType:    ptr(sanitize.Text(req.EventType)),
		EventDate:    sanitize.TextPtr(req.EventDate),
		GuestCount:   ParseGuestCount(req.GuestCount),
		Budget:       sanitize.TextPtr(req.Budget),
		Message:      sanitize.TextPtr(req.Message),
		Requirements: sanitize.TextPtr(req.Requirements),
		Venues:       sanitizeList(req.Venues),
	}
}

func weddingParams(req transport.WeddingSubmission) repository.CreateLeadParams {
	params := repository.CreateLeadParams{
		Kind:        transport.KindWedding,
		Source:      leadSource,
		FirstName:   sanitize.Text(req.FirstName),
		LastName:    sanitize.Text(req.LastName),
		Email:       req.Email,
		Phone:       phone.NormalizeE164(req.Phone),
		WeddingDate: sanitize.TextPtr(req.WeddingDate),
		Message:     sanitize.TextPtr(req.Message),
		Venues:      sanitizeList(req.Venues),
	}
	if req.GuestCount != nil {
		params.GuestCount = ParseGuestCount(*req.GuestCount)
	}
	if req.Bride != nil {
		params.BrideFirstName = ptr(sanitize.Text(req.Bride.FirstName))
		params.BrideLastName = ptr(sanitize.Text(req.Bride.LastName))
	}
	if req.Groom != nil {
		params.GroomFirstName = ptr(sanitize.Text(req.Groom.FirstName))
		params.GroomLastName = ptr(sanitize.Text(req.Groom.LastName))
	}
	return params
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if cleaned := sanitize.Text(item); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func eventDateOf(lead repository.Lead) string {
	if lead.Kind == transport.KindWedding {
		return derefOr(lead.WeddingDate, "")
	}
	return derefOr(lead.EventDate, "")
}
