package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreportai/companion/internal/adapters/catalog"
	"github.com/medreportai/companion/internal/domain/entities"
	apperrors "github.com/medreportai/companion/pkg/errors"
)

type fakeIdentity struct {
	principal *entities.Principal
	err       error
}

func (f *fakeIdentity) CurrentPrincipal(ctx context.Context) (*entities.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.principal, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	payloads []map[string]string
	err      error
}

func (f *fakeNotifier) Send(ctx context.Context, payload map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.payloads = append(f.payloads, payload)
	return "OK", nil
}

type fakeSink struct {
	target  string
	columns []string
	rows    [][]string
	calls   int
}

func (f *fakeSink) Export(ctx context.Context, target string, columns []string, rows [][]string) error {
	f.calls++
	f.target = target
	f.columns = columns
	f.rows = rows
	return nil
}

type fakeResults struct {
	result *entities.AnalysisResult
}

func (f *fakeResults) CurrentResult() *entities.AnalysisResult {
	return f.result
}

func validForm() entities.BookingForm {
	return entities.BookingForm{
		PatientName:  "Jane Doe",
		PatientEmail: "jane@example.com",
		PatientPhone: "+1234567890",
		DoctorEmail:  "clinic@example.com",
		Date:         time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		Time:         "10:30",
		Symptoms:     "chest pain",
	}
}

func newBookingFixture(results AnalysisResultSource) (*BookingService, *fakeNotifier, *fakeSink) {
	notifier := &fakeNotifier{}
	sink := &fakeSink{}
	ident := &fakeIdentity{principal: &entities.Principal{UID: "u1", Email: "jane@example.com", Name: "Jane"}}
	service := NewBookingService(ident, notifier, sink, nil, results, nil, "clinic@example.com", zerolog.Nop())
	return service, notifier, sink
}

func TestBookingHappyPath(t *testing.T) {
	service, notifier, _ := newBookingFixture(&fakeResults{})

	cardiologist, ok := catalog.FirstBySpecialization("Cardiologist")
	require.True(t, ok)

	doctor, err := service.SelectDoctor(cardiologist.ID)
	require.NoError(t, err)
	assert.Equal(t, cardiologist.Name, doctor.Name)
	assert.Equal(t, entities.BookingStateFormEditing, service.Snapshot().State)
	assert.Equal(t, "clinic@example.com", service.Snapshot().Form.DoctorEmail)

	record, err := service.Submit(context.Background(), validForm())
	require.NoError(t, err)

	snapshot := service.Snapshot()
	assert.Equal(t, entities.BookingStateConfirmed, snapshot.State)
	require.Len(t, snapshot.Ledger, 1)
	assert.Equal(t, cardiologist.Name, record.DoctorName)
	assert.Equal(t, cardiologist.Name, snapshot.Ledger[0].DoctorName)
	require.Len(t, notifier.payloads, 1)
	assert.Equal(t, cardiologist.Name, notifier.payloads[0]["to_name"])
}

func TestBookingSelectRequiresBrowsing(t *testing.T) {
	service, _, _ := newBookingFixture(&fakeResults{})

	_, err := service.SelectDoctor(1)
	require.NoError(t, err)

	_, err = service.SelectDoctor(2)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInvalidState, apperrors.TypeOf(err))
}

func TestBookingSelectUnknownDoctor(t *testing.T) {
	service, _, _ := newBookingFixture(&fakeResults{})

	_, err := service.SelectDoctor(999)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}

func TestBookingSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entities.BookingForm)
	}{
		{"missing patient name", func(f *entities.BookingForm) { f.PatientName = "" }},
		{"missing email", func(f *entities.BookingForm) { f.PatientEmail = "" }},
		{"missing phone", func(f *entities.BookingForm) { f.PatientPhone = " " }},
		{"missing symptoms", func(f *entities.BookingForm) { f.Symptoms = "" }},
		{"malformed date", func(f *entities.BookingForm) { f.Date = "tomorrow" }},
		{"past date", func(f *entities.BookingForm) {
			f.Date = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, notifier, _ := newBookingFixture(&fakeResults{})
			_, err := service.SelectDoctor(1)
			require.NoError(t, err)

			form := validForm()
			tt.mutate(&form)

			_, err = service.Submit(context.Background(), form)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
			assert.Empty(t, notifier.payloads)
			assert.Empty(t, service.Ledger())
			// Entered data survives a validation failure.
			assert.Equal(t, form, service.Snapshot().Form)
		})
	}
}

func TestBookingDateTodayAccepted(t *testing.T) {
	service, _, _ := newBookingFixture(&fakeResults{})
	_, err := service.SelectDoctor(1)
	require.NoError(t, err)

	form := validForm()
	form.Date = time.Now().Format("2006-01-02")
	_, err = service.Submit(context.Background(), form)
	require.NoError(t, err)
}

func TestBookingIdentityFailureStopsPipeline(t *testing.T) {
	notifier := &fakeNotifier{}
	ident := &fakeIdentity{err: apperrors.NewUnauthenticatedError("no authenticated user found")}
	service := NewBookingService(ident, notifier, nil, nil, &fakeResults{}, nil, "clinic@example.com", zerolog.Nop())

	_, err := service.SelectDoctor(1)
	require.NoError(t, err)

	_, err = service.Submit(context.Background(), validForm())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnauthenticated, apperrors.TypeOf(err))

	snapshot := service.Snapshot()
	assert.Equal(t, entities.BookingStateSubmissionFailed, snapshot.State)
	assert.Empty(t, notifier.payloads)
	assert.Empty(t, snapshot.Ledger)
	assert.Equal(t, "no authenticated user found", snapshot.ErrorMessage)
	// Form survives the failure for resubmission.
	assert.Equal(t, validForm().PatientName, snapshot.Form.PatientName)
}

func TestBookingResubmitAfterFailure(t *testing.T) {
	notifier := &fakeNotifier{err: apperrors.NewTransportError("dispatch failed", assert.AnError)}
	ident := &fakeIdentity{principal: &entities.Principal{Email: "jane@example.com"}}
	service := NewBookingService(ident, notifier, nil, nil, &fakeResults{}, nil, "clinic@example.com", zerolog.Nop())

	_, err := service.SelectDoctor(1)
	require.NoError(t, err)

	_, err = service.Submit(context.Background(), validForm())
	require.Error(t, err)
	assert.Equal(t, entities.BookingStateSubmissionFailed, service.Snapshot().State)

	notifier.err = nil
	_, err = service.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStateConfirmed, service.Snapshot().State)
	assert.Len(t, service.Ledger(), 1)
}

func TestBookingPayloadOmitsAbsentAnalysisFields(t *testing.T) {
	result := entities.NewAnalysisResult(map[string]entities.FieldValue{
		entities.FieldSummary:        entities.TextValue("all clear"),
		entities.FieldDiagnosis:      entities.TextValue(""),
		entities.FieldKeyFindings:    entities.ListValue(),
		entities.FieldUrgentConcerns: entities.TextValue(""),
	})
	service, notifier, _ := newBookingFixture(&fakeResults{result: result})

	_, err := service.SelectDoctor(1)
	require.NoError(t, err)
	_, err = service.Submit(context.Background(), validForm())
	require.NoError(t, err)

	require.Len(t, notifier.payloads, 1)
	payload := notifier.payloads[0]
	assert.Equal(t, "all clear", payload["summary"])
	_, hasDiagnosis := payload["diagnosis"]
	assert.False(t, hasDiagnosis)
	_, hasFindings := payload["key_findings"]
	assert.False(t, hasFindings)
	_, hasConcerns := payload["urgent_concerns"]
	assert.False(t, hasConcerns)
	for key, value := range payload {
		assert.NotContains(t, value, "undefined", "field %s", key)
		assert.NotEqual(t, "null", value, "field %s", key)
	}
}

func TestBookingPayloadIncludesAnalysisFields(t *testing.T) {
	result := entities.NewAnalysisResult(map[string]entities.FieldValue{
		entities.FieldDiagnosis:   entities.TextValue("hypertension"),
		entities.FieldKeyFindings: entities.ListValue("elevated BP", "irregular pulse"),
	})
	service, notifier, _ := newBookingFixture(&fakeResults{result: result})

	_, err := service.SelectDoctor(1)
	require.NoError(t, err)
	_, err = service.Submit(context.Background(), validForm())
	require.NoError(t, err)

	payload := notifier.payloads[0]
	assert.Equal(t, "hypertension", payload["diagnosis"])
	assert.Equal(t, "elevated BP, irregular pulse", payload["key_findings"])
}

func TestBookingResetKeepsLedger(t *testing.T) {
	service, _, _ := newBookingFixture(&fakeResults{})

	_, err := service.SelectDoctor(1)
	require.NoError(t, err)
	_, err = service.Submit(context.Background(), validForm())
	require.NoError(t, err)
	require.Len(t, service.Ledger(), 1)

	service.Reset()
	snapshot := service.Snapshot()
	assert.Equal(t, entities.BookingStateBrowsingDoctors, snapshot.State)
	assert.Nil(t, snapshot.Doctor)
	assert.Equal(t, entities.BookingForm{}, snapshot.Form)
	assert.Len(t, snapshot.Ledger, 1)
}

func TestSuggestDoctorCardiacKeyword(t *testing.T) {
	result := entities.NewAnalysisResult(map[string]entities.FieldValue{
		entities.FieldDiagnosis: entities.TextValue("suspected cardiac event"),
	})
	service, _, _ := newBookingFixture(&fakeResults{result: result})

	expected, ok := catalog.FirstBySpecialization("Cardiologist")
	require.True(t, ok)
	assert.Equal(t, expected, service.SuggestDoctor())
	// Advisory only: state is unchanged.
	assert.Equal(t, entities.BookingStateBrowsingDoctors, service.Snapshot().State)
}

func TestSuggestDoctorNeuroKeyword(t *testing.T) {
	result := entities.NewAnalysisResult(map[string]entities.FieldValue{
		entities.FieldDiagnosis: entities.TextValue("Neurological deficit noted"),
	})
	service, _, _ := newBookingFixture(&fakeResults{result: result})

	expected, _ := catalog.FirstBySpecialization("Neurologist")
	assert.Equal(t, expected, service.SuggestDoctor())
}

func TestSuggestDoctorFallbackRandom(t *testing.T) {
	service, _, _ := newBookingFixture(&fakeResults{})
	service.pickIndex = func(n int) int { return 4 }

	assert.Equal(t, catalog.At(4), service.SuggestDoctor())
}

func TestExportLedger(t *testing.T) {
	service, _, sink := newBookingFixture(&fakeResults{})

	_, err := service.ExportLedger(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	assert.Equal(t, 0, sink.calls)

	_, err = service.SelectDoctor(1)
	require.NoError(t, err)
	_, err = service.Submit(context.Background(), validForm())
	require.NoError(t, err)

	rows, err := service.ExportLedger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
	assert.Equal(t, "doctor-appointments", sink.target)
	assert.Equal(t, entities.LedgerColumns, sink.columns)
	require.Len(t, sink.rows, 1)
	assert.Equal(t, "Jane Doe", sink.rows[0][1])

	// Export does not clear the ledger.
	assert.Len(t, service.Ledger(), 1)
}
