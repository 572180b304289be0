package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medreportai/companion/internal/domain/entities"
	apperrors "github.com/medreportai/companion/pkg/errors"
)

// WorkflowSnapshot is the orchestrator's availability view: which
// affordances the client may offer given the artifact and analysis
// state
type WorkflowSnapshot struct {
	Artifact       entities.Artifact `json:"artifact"`
	Analysis       *AnalysisSnapshot `json:"analysis"`
	ChatEnabled    bool              `json:"chat_enabled"`
	BookingEnabled bool              `json:"booking_enabled"`
}

// WorkflowService composes the analysis, chat and booking sessions.
// Chat and booking affordances open only once analysis has succeeded;
// replacing the artifact resets analysis and clears the chat grounding.
// A booking submission already past identity resolution is left to run
// to completion on artifact swap.
type WorkflowService struct {
	analysis *AnalysisService
	chat     *ChatService
	booking  *BookingService
	logger   zerolog.Logger

	autoSubmit      bool
	defaultLanguage string

	mu       sync.Mutex
	artifact entities.Artifact
}

// NewWorkflowService creates the orchestrator over the three sessions
func NewWorkflowService(analysis *AnalysisService, chat *ChatService, booking *BookingService, autoSubmit bool, defaultLanguage string, logger zerolog.Logger) *WorkflowService {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &WorkflowService{
		analysis:        analysis,
		chat:            chat,
		booking:         booking,
		autoSubmit:      autoSubmit,
		defaultLanguage: defaultLanguage,
		logger:          logger.With().Str("component", "workflow_service").Logger(),
	}
}

// SelectArtifact installs a new input document and restarts the
// workflow around it: the analysis session is reset, the chat
// transcript loses its grounding and is cleared, and when auto-submit
// is on the analysis is issued immediately.
func (s *WorkflowService) SelectArtifact(ctx context.Context, filePath, filename, language string) (*WorkflowSnapshot, error) {
	if language == "" {
		language = s.defaultLanguage
	}
	artifact := entities.NewArtifact(filePath, filename, language)
	if artifact.IsEmpty() {
		return nil, apperrors.NewValidationError("file_path is required")
	}

	s.mu.Lock()
	s.artifact = artifact
	s.mu.Unlock()

	s.analysis.Replace(artifact)
	s.chat.Reset()

	s.logger.Info().
		Str("filename", artifact.Filename).
		Str("language", artifact.Language).
		Bool("auto_submit", s.autoSubmit).
		Msg("artifact selected")

	if s.autoSubmit {
		if _, err := s.analysis.Submit(ctx, artifact); err != nil {
			return nil, err
		}
	}
	return s.Snapshot(), nil
}

// SubmitAnalysis issues the analysis for the current artifact
func (s *WorkflowService) SubmitAnalysis(ctx context.Context) (*AnalysisSnapshot, error) {
	s.mu.Lock()
	artifact := s.artifact
	s.mu.Unlock()
	return s.analysis.Submit(ctx, artifact)
}

// RetryAnalysis re-issues the last analysis submit
func (s *WorkflowService) RetryAnalysis(ctx context.Context) (*AnalysisSnapshot, error) {
	return s.analysis.Retry(ctx)
}

// AnalysisSnapshot returns the analysis session state
func (s *WorkflowService) AnalysisSnapshot() *AnalysisSnapshot {
	return s.analysis.Snapshot()
}

// SendChatMessage forwards a turn to the chat session once grounding
// is available
func (s *WorkflowService) SendChatMessage(ctx context.Context, text string) (entities.ChatMessage, error) {
	if !s.analysis.Succeeded() {
		return entities.ChatMessage{}, apperrors.NewInvalidStateError("chat is unavailable until the analysis has completed")
	}
	return s.chat.Send(ctx, text)
}

// ChatMessages returns the transcript
func (s *WorkflowService) ChatMessages() []entities.ChatMessage {
	return s.chat.Messages()
}

// SelectDoctor opens the booking form for the chosen doctor once
// grounding is available
func (s *WorkflowService) SelectDoctor(doctorID int) (*entities.Doctor, error) {
	if !s.analysis.Succeeded() {
		return nil, apperrors.NewInvalidStateError("booking is unavailable until the analysis has completed")
	}
	return s.booking.SelectDoctor(doctorID)
}

// SubmitBooking runs the booking submission. The analysis result is
// read inside the booking service at this moment, not earlier.
func (s *WorkflowService) SubmitBooking(ctx context.Context, form entities.BookingForm) (*entities.BookingRecord, error) {
	return s.booking.Submit(ctx, form)
}

// ResetBooking returns the booking transaction to doctor browsing
func (s *WorkflowService) ResetBooking() {
	s.booking.Reset()
}

// SuggestDoctor returns an advisory recommendation from the current
// diagnosis
func (s *WorkflowService) SuggestDoctor() entities.Doctor {
	return s.booking.SuggestDoctor()
}

// FilterDoctors filters the catalog; available in any state
func (s *WorkflowService) FilterDoctors(query string) []entities.Doctor {
	return s.booking.FilterDoctors(query)
}

// ExportLedger exports the booking ledger
func (s *WorkflowService) ExportLedger(ctx context.Context) (int, error) {
	return s.booking.ExportLedger(ctx)
}

// BookingSnapshot returns the booking transaction state
func (s *WorkflowService) BookingSnapshot() *BookingSnapshot {
	return s.booking.Snapshot()
}

// Snapshot returns the orchestrator's availability view
func (s *WorkflowService) Snapshot() *WorkflowSnapshot {
	s.mu.Lock()
	artifact := s.artifact
	s.mu.Unlock()

	analysis := s.analysis.Snapshot()
	succeeded := analysis.State == AnalysisStateSucceeded
	return &WorkflowSnapshot{
		Artifact:       artifact,
		Analysis:       analysis,
		ChatEnabled:    succeeded,
		BookingEnabled: succeeded,
	}
}
