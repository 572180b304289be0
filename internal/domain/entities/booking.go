package entities

import (
	"time"
)

// BookingState represents the booking transaction state machine
type BookingState string

const (
	BookingStateBrowsingDoctors  BookingState = "browsing_doctors"
	BookingStateFormEditing      BookingState = "form_editing"
	BookingStateSubmitting       BookingState = "submitting"
	BookingStateConfirmed        BookingState = "confirmed"
	BookingStateSubmissionFailed BookingState = "submission_failed"
)

// BookingForm holds the appointment details entered by the patient
type BookingForm struct {
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	PatientPhone string `json:"patient_phone"`
	DoctorEmail  string `json:"doctor_email"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Symptoms     string `json:"symptoms"`
}

// BookingRecord is the immutable result of a confirmed submission,
// appended to the in-memory export ledger
type BookingRecord struct {
	ID          string    `json:"id"`
	DoctorName  string    `json:"doctor_name"`
	PatientName string    `json:"patient_name"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

// LedgerColumns is the header row of the export row-set
var LedgerColumns = []string{"doctor_name", "patient_name", "date", "time", "phone", "email", "reason"}

// Row returns the record as an export row matching LedgerColumns
func (r BookingRecord) Row() []string {
	return []string{r.DoctorName, r.PatientName, r.Date, r.Time, r.Phone, r.Email, r.Reason}
}
