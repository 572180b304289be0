package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medreportai/companion/internal/adapters/catalog"
	"github.com/medreportai/companion/internal/domain/entities"
	"github.com/medreportai/companion/internal/domain/providers"
	"github.com/medreportai/companion/internal/infrastructure/observability"
	apperrors "github.com/medreportai/companion/pkg/errors"
)

// exportTarget is the sink target name for ledger exports
const exportTarget = "doctor-appointments"

// AnalysisResultSource yields the analysis result grounding a booking.
// The result is read at submit time, never snapshotted earlier, so a
// re-run analysis is reflected in the payload.
type AnalysisResultSource interface {
	CurrentResult() *entities.AnalysisResult
}

// BookingSnapshot is a read-only view of the transaction for rendering
type BookingSnapshot struct {
	State        entities.BookingState   `json:"state"`
	Doctor       *entities.Doctor        `json:"doctor,omitempty"`
	Form         entities.BookingForm    `json:"form"`
	ErrorMessage string                  `json:"error_message,omitempty"`
	Ledger       []entities.BookingRecord `json:"ledger"`
}

// BookingService coordinates doctor selection, form collection,
// submission, notification and the in-memory export ledger as one
// logical transaction. The ledger outlives individual bookings and is
// only read, never cleared, by reset and export.
type BookingService struct {
	identity    providers.IdentityProvider
	notifier    providers.NotificationSender
	sink        providers.ExportSink
	bus         providers.EventBus
	results     AnalysisResultSource
	metrics     *observability.Metrics
	logger      zerolog.Logger
	doctorEmail string
	pickIndex   func(n int) int

	mu       sync.Mutex
	state    entities.BookingState
	selected *entities.Doctor
	form     entities.BookingForm
	lastErr  string
	ledger   []entities.BookingRecord
}

// NewBookingService creates a new booking service. The sink, bus and
// metrics may be nil; doctorEmail pre-fills the notification target
// when a doctor is selected.
func NewBookingService(
	identity providers.IdentityProvider,
	notifier providers.NotificationSender,
	sink providers.ExportSink,
	bus providers.EventBus,
	results AnalysisResultSource,
	metrics *observability.Metrics,
	doctorEmail string,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		identity:    identity,
		notifier:    notifier,
		sink:        sink,
		bus:         bus,
		results:     results,
		metrics:     metrics,
		doctorEmail: doctorEmail,
		pickIndex:   rand.Intn,
		logger:      logger.With().Str("component", "booking_service").Logger(),
		state:       entities.BookingStateBrowsingDoctors,
	}
}

// SelectDoctor moves the transaction into form editing with the chosen
// doctor and pre-fills the notification target
func (s *BookingService) SelectDoctor(doctorID int) (*entities.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != entities.BookingStateBrowsingDoctors {
		return nil, apperrors.NewInvalidStateError(
			fmt.Sprintf("cannot select a doctor while booking is %s", s.state))
	}

	doctor, ok := catalog.ByID(doctorID)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor %d not found", doctorID))
	}

	s.selected = &doctor
	s.state = entities.BookingStateFormEditing
	s.form.DoctorEmail = s.doctorEmail
	s.logger.Info().Str("doctor", doctor.Name).Msg("doctor selected")
	return &doctor, nil
}

// FilterDoctors is a pure case-insensitive substring match over name
// and specialization; it never touches transaction state
func (s *BookingService) FilterDoctors(query string) []entities.Doctor {
	return catalog.Filter(query)
}

// Submit runs the booking as an ordered sequence: persist the
// appointment, resolve the acting user, build the notification payload
// from the form and whatever analysis data is present, dispatch it, and
// append to the ledger. Any step failing leaves the form intact and the
// failure message preserved verbatim for display.
func (s *BookingService) Submit(ctx context.Context, form entities.BookingForm) (*entities.BookingRecord, error) {
	ctx, span := observability.StartSpan(ctx, "booking.submit")
	defer span.End()

	s.mu.Lock()
	switch s.state {
	case entities.BookingStateSubmitting:
		s.mu.Unlock()
		return nil, apperrors.NewInvalidStateError("a booking submission is already in progress")
	case entities.BookingStateFormEditing, entities.BookingStateSubmissionFailed:
		// resubmission after failure is allowed, form state preserved
	default:
		s.mu.Unlock()
		return nil, apperrors.NewInvalidStateError(
			fmt.Sprintf("cannot submit a booking while %s; select a doctor first", s.state))
	}

	doctor := *s.selected
	if err := validateBookingForm(form); err != nil {
		s.form = form
		s.state = entities.BookingStateFormEditing
		s.mu.Unlock()
		return nil, err
	}

	s.form = form
	s.state = entities.BookingStateSubmitting
	s.mu.Unlock()

	observability.SetSpanAttributes(span, attribute.String("booking.doctor", doctor.Name))

	record, err := s.runSubmission(ctx, doctor, form)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = entities.BookingStateSubmissionFailed
		s.lastErr = apperrors.MessageOf(err)
		if s.metrics != nil {
			observability.RecordBooking(ctx, s.metrics, "failed")
		}
		s.logger.Error().Str("message", s.lastErr).Msg("booking submission failed")
		return nil, err
	}

	s.ledger = append(s.ledger, *record)
	s.state = entities.BookingStateConfirmed
	s.lastErr = ""
	if s.metrics != nil {
		observability.RecordBooking(ctx, s.metrics, "confirmed")
	}
	s.publish(entities.WorkflowEventBookingConfirmed, record.DoctorName, map[string]string{
		"booking_id": record.ID,
		"date":       record.Date,
		"time":       record.Time,
	})
	s.logger.Info().
		Str("booking_id", record.ID).
		Str("doctor", record.DoctorName).
		Msg("booking confirmed")
	return record, nil
}

// runSubmission executes the remote-facing steps outside the lock
func (s *BookingService) runSubmission(ctx context.Context, doctor entities.Doctor, form entities.BookingForm) (*entities.BookingRecord, error) {
	record := entities.BookingRecord{
		ID:          uuid.New().String(),
		DoctorName:  doctor.Name,
		PatientName: form.PatientName,
		Date:        form.Date,
		Time:        form.Time,
		Phone:       form.PatientPhone,
		Email:       form.PatientEmail,
		Reason:      form.Symptoms,
		CreatedAt:   time.Now(),
	}

	principal, err := s.identity.CurrentPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	payload := s.buildNotificationPayload(doctor, form, principal)

	if _, err := s.notifier.Send(ctx, payload); err != nil {
		// The triggering message is kept verbatim for display.
		return nil, apperrors.NewTransportError(apperrors.MessageOf(err), err)
	}

	return &record, nil
}

// buildNotificationPayload merges the form with the analysis result
// available at this moment. Absent or empty analysis fields are left
// out of the payload entirely rather than sent as placeholder text.
func (s *BookingService) buildNotificationPayload(doctor entities.Doctor, form entities.BookingForm, principal *entities.Principal) map[string]string {
	payload := map[string]string{
		"to_email":         form.DoctorEmail,
		"to_name":          doctor.Name,
		"from_email":       principal.Email,
		"patient_email":    form.PatientEmail,
		"patient_phone":    form.PatientPhone,
		"appointment_date": formatAppointmentDate(form.Date),
		"appointment_time": form.Time,
		"symptoms":         form.Symptoms,
	}
	if form.PatientName != "" {
		payload["patient_name"] = form.PatientName
	}

	result := (*entities.AnalysisResult)(nil)
	if s.results != nil {
		result = s.results.CurrentResult()
	}
	if result == nil {
		return payload
	}
	if result.Has(entities.FieldDiagnosis) {
		payload["diagnosis"] = result.Diagnosis()
	}
	if findings := result.KeyFindings(); len(findings) > 0 {
		payload["key_findings"] = strings.Join(findings, ", ")
	}
	if result.Has(entities.FieldUrgentConcerns) {
		payload["urgent_concerns"] = result.UrgentConcerns()
	}
	if result.Has(entities.FieldSummary) {
		payload["summary"] = result.Summary()
	}
	return payload
}

// Reset returns to doctor browsing with a cleared form. The ledger is
// untouched.
func (s *BookingService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = entities.BookingStateBrowsingDoctors
	s.selected = nil
	s.form = entities.BookingForm{}
	s.lastErr = ""
	s.logger.Info().Msg("booking transaction reset")
}

// suggestionRules maps diagnosis keywords to specializations, checked
// in order against the lowercased diagnosis text
var suggestionRules = []struct {
	keyword        string
	specialization string
}{
	{"cardiac", "Cardiologist"},
	{"heart", "Cardiologist"},
	{"neuro", "Neurologist"},
	{"brain", "Neurologist"},
	{"skin", "Dermatologist"},
	{"derma", "Dermatologist"},
	{"lung", "Pulmonologist"},
	{"respirat", "Pulmonologist"},
	{"kidney", "Nephrologist"},
	{"renal", "Nephrologist"},
	{"stomach", "Gastroenterologist"},
	{"gastro", "Gastroenterologist"},
	{"diabet", "Endocrinologist"},
	{"thyroid", "Endocrinologist"},
	{"bone", "Orthopedic Surgeon"},
	{"joint", "Orthopedic Surgeon"},
	{"fracture", "Orthopedic Surgeon"},
	{"cancer", "Oncologist"},
	{"tumor", "Oncologist"},
	{"allerg", "Allergist"},
	{"eye", "Ophthalmologist"},
	{"vision", "Ophthalmologist"},
	{"mental", "Psychiatrist"},
	{"anxiety", "Psychiatrist"},
	{"depress", "Psychiatrist"},
	{"child", "Pediatrician"},
	{"urinary", "Urologist"},
}

// SuggestDoctor is a pure recommendation: the first keyword matching
// the diagnosis picks the first doctor of that specialization in
// catalog order; with no match or no analysis result the fallback is a
// general practitioner if present, else a uniform-random catalog pick.
// It never changes transaction state.
func (s *BookingService) SuggestDoctor() entities.Doctor {
	diagnosis := ""
	if s.results != nil {
		if result := s.results.CurrentResult(); result != nil {
			diagnosis = strings.ToLower(result.Diagnosis())
		}
	}

	if diagnosis != "" {
		for _, rule := range suggestionRules {
			if !strings.Contains(diagnosis, rule.keyword) {
				continue
			}
			if doctor, ok := catalog.FirstBySpecialization(rule.specialization); ok {
				return doctor
			}
		}
	}

	if doctor, ok := catalog.FirstBySpecialization("General Physician"); ok {
		return doctor
	}
	return catalog.At(s.pickIndex(catalog.Size()))
}

// ExportLedger hands the ledger to the export sink as a row-set. The
// ledger itself is not cleared. An empty ledger is reported back to the
// caller instead of producing an empty export.
func (s *BookingService) ExportLedger(ctx context.Context) (int, error) {
	ctx, span := observability.StartSpan(ctx, "booking.export")
	defer span.End()

	s.mu.Lock()
	rows := make([][]string, 0, len(s.ledger))
	for _, record := range s.ledger {
		rows = append(rows, record.Row())
	}
	s.mu.Unlock()

	if len(rows) == 0 {
		return 0, apperrors.NewValidationError("no confirmed appointments to export yet")
	}

	if s.sink != nil {
		if err := s.sink.Export(ctx, exportTarget, entities.LedgerColumns, rows); err != nil {
			return 0, apperrors.NewTransportError("failed to export appointment ledger", err)
		}
	}

	s.logger.Info().Int("rows", len(rows)).Msg("ledger exported")
	return len(rows), nil
}

// Ledger returns the confirmed bookings in append order
func (s *BookingService) Ledger() []entities.BookingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.BookingRecord, len(s.ledger))
	copy(out, s.ledger)
	return out
}

// Snapshot returns the current transaction state for rendering
func (s *BookingService) Snapshot() *BookingSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := &BookingSnapshot{
		State:        s.state,
		Form:         s.form,
		ErrorMessage: s.lastErr,
		Ledger:       make([]entities.BookingRecord, len(s.ledger)),
	}
	copy(snapshot.Ledger, s.ledger)
	if s.selected != nil {
		doctor := *s.selected
		snapshot.Doctor = &doctor
	}
	return snapshot
}

func (s *BookingService) publish(eventType entities.WorkflowEventType, artifact string, details map[string]string) {
	if s.bus == nil {
		return
	}
	event := entities.NewWorkflowEvent(eventType, artifact, details)
	if err := s.bus.Publish(context.Background(), providers.WorkflowChannel, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to publish workflow event")
	}
}

// validateBookingForm checks required fields and that the appointment
// date is today or later
func validateBookingForm(form entities.BookingForm) error {
	required := []struct {
		value string
		name  string
	}{
		{form.PatientName, "patient name"},
		{form.PatientEmail, "patient email"},
		{form.PatientPhone, "patient phone"},
		{form.DoctorEmail, "doctor email"},
		{form.Date, "date"},
		{form.Time, "time"},
		{form.Symptoms, "symptoms"},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return apperrors.NewValidationError(fmt.Sprintf("%s is required", field.name))
		}
	}

	date, err := time.ParseInLocation("2006-01-02", form.Date, time.Local)
	if err != nil {
		return apperrors.NewValidationError("date must be in YYYY-MM-DD format")
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if date.Before(today) {
		return apperrors.NewValidationError("appointment date must be today or later")
	}
	return nil
}

func formatAppointmentDate(date string) string {
	parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return date
	}
	return parsed.Format("January 2, 2006")
}
