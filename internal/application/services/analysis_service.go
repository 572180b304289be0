package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medreportai/companion/internal/domain/entities"
	"github.com/medreportai/companion/internal/domain/providers"
	"github.com/medreportai/companion/internal/infrastructure/observability"
	apperrors "github.com/medreportai/companion/pkg/errors"
)

// AnalysisState is the tri-state lifecycle of one analysis cycle
type AnalysisState string

const (
	AnalysisStateIdle      AnalysisState = "idle"
	AnalysisStatePending   AnalysisState = "pending"
	AnalysisStateSucceeded AnalysisState = "succeeded"
	AnalysisStateFailed    AnalysisState = "failed"
)

// AnalysisSnapshot is a read-only view of the session for rendering.
// On failure the error kind and message are carried here rather than
// returned to the caller; the session itself is the terminal surface.
type AnalysisSnapshot struct {
	State        AnalysisState            `json:"state"`
	Artifact     entities.Artifact        `json:"artifact"`
	Result       *entities.AnalysisResult `json:"result,omitempty"`
	ErrorType    apperrors.ErrorType      `json:"error_type,omitempty"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	CanRetry     bool                     `json:"can_retry"`
}

// AnalysisService drives exactly one outstanding analysis request for
// the currently selected artifact. A submit while a request is in
// flight is rejected outright, never queued.
type AnalysisService struct {
	provider providers.AnalysisProvider
	bus      providers.EventBus
	metrics  *observability.Metrics
	logger   zerolog.Logger

	mu         sync.Mutex
	generation uint64
	state      AnalysisState
	artifact   entities.Artifact
	result     *entities.AnalysisResult
	errType    apperrors.ErrorType
	errMessage string
}

// NewAnalysisService creates a new analysis service. The event bus and
// metrics may be nil.
func NewAnalysisService(provider providers.AnalysisProvider, bus providers.EventBus, metrics *observability.Metrics, logger zerolog.Logger) *AnalysisService {
	return &AnalysisService{
		provider: provider,
		bus:      bus,
		metrics:  metrics,
		logger:   logger.With().Str("component", "analysis_service").Logger(),
		state:    AnalysisStateIdle,
	}
}

// Replace installs a new artifact and returns the session to its
// initial state. The result of any request still in flight for the
// previous artifact is discarded when it resolves.
func (s *AnalysisService) Replace(artifact entities.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.artifact = artifact
	s.result = nil
	s.errType = ""
	s.errMessage = ""
	s.state = AnalysisStateIdle

	s.logger.Info().
		Str("filename", artifact.Filename).
		Str("language", artifact.Language).
		Msg("artifact replaced, analysis session reset")
}

// Submit sends the current artifact for analysis and blocks until the
// outcome is recorded. An empty artifact becomes a terminal failure
// without any network call. Returns an error only for contract
// violations (another submit already in flight); remote and transport
// failures land in the snapshot instead.
func (s *AnalysisService) Submit(ctx context.Context, artifact entities.Artifact) (*AnalysisSnapshot, error) {
	ctx, span := observability.StartSpan(ctx, "analysis.submit")
	defer span.End()

	s.mu.Lock()
	if s.state == AnalysisStatePending {
		s.mu.Unlock()
		return nil, apperrors.NewInvalidStateError("an analysis request is already in progress")
	}

	s.generation++
	gen := s.generation
	s.artifact = artifact
	s.result = nil
	s.errType = ""
	s.errMessage = ""

	if artifact.IsEmpty() {
		s.state = AnalysisStateFailed
		s.errType = apperrors.ErrorTypeMissingArtifact
		s.errMessage = "no document has been selected for analysis"
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, nil
	}

	s.state = AnalysisStatePending
	s.mu.Unlock()

	observability.SetSpanAttributes(span, attribute.String("analysis.filename", artifact.Filename))

	start := time.Now()
	result, err := s.provider.Analyze(ctx, providers.AnalysisRequest{
		FilePath: artifact.FilePath,
		Filename: artifact.Filename,
		Language: artifact.Language,
	})
	duration := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		// artifact was replaced while the request was in flight
		s.logger.Warn().Str("filename", artifact.Filename).Msg("discarding stale analysis outcome")
		return s.snapshotLocked(), nil
	}

	if err != nil {
		s.recordFailureLocked(ctx, artifact, err, duration)
		return s.snapshotLocked(), nil
	}

	s.state = AnalysisStateSucceeded
	s.result = result
	if s.metrics != nil {
		observability.RecordAnalysisMetric(ctx, s.metrics, "succeeded", duration)
	}
	s.publish(entities.WorkflowEventAnalysisSucceeded, artifact.Filename, nil)
	s.logger.Info().
		Str("filename", artifact.Filename).
		Dur("duration", duration).
		Msg("analysis succeeded")

	return s.snapshotLocked(), nil
}

// Retry re-issues the last submit with the same artifact. It is a
// contract violation to retry before any artifact was recorded.
func (s *AnalysisService) Retry(ctx context.Context) (*AnalysisSnapshot, error) {
	s.mu.Lock()
	if s.artifact.IsEmpty() {
		s.mu.Unlock()
		return nil, apperrors.NewInvalidStateError("no artifact recorded, nothing to retry")
	}
	if s.state == AnalysisStatePending {
		s.mu.Unlock()
		return nil, apperrors.NewInvalidStateError("an analysis request is already in progress")
	}
	artifact := s.artifact
	s.mu.Unlock()

	return s.Submit(ctx, artifact)
}

// Snapshot returns the current session state for rendering
func (s *AnalysisService) Snapshot() *AnalysisSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// CurrentResult returns the analysis result when the session has
// succeeded, nil otherwise. Callers must treat it as read-only.
func (s *AnalysisService) CurrentResult() *entities.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AnalysisStateSucceeded {
		return nil
	}
	return s.result
}

// Artifact returns the artifact the session is bound to
func (s *AnalysisService) Artifact() entities.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact
}

// Succeeded reports whether a result is available for grounding
func (s *AnalysisService) Succeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == AnalysisStateSucceeded
}

func (s *AnalysisService) snapshotLocked() *AnalysisSnapshot {
	return &AnalysisSnapshot{
		State:        s.state,
		Artifact:     s.artifact,
		Result:       s.result,
		ErrorType:    s.errType,
		ErrorMessage: s.errMessage,
		CanRetry:     s.state == AnalysisStateFailed && !s.artifact.IsEmpty(),
	}
}

// recordFailureLocked classifies the failure and records it as the
// session's terminal state. A service-reported error message carrying a
// not-found marker is distinguished from a generic remote failure; the
// recorded message always names the file so the user knows which
// document the failure refers to.
func (s *AnalysisService) recordFailureLocked(ctx context.Context, artifact entities.Artifact, err error, duration time.Duration) {
	s.state = AnalysisStateFailed

	var remoteErr *providers.RemoteError
	switch {
	case errors.As(err, &remoteErr):
		if strings.Contains(strings.ToLower(remoteErr.Message), "not found") {
			s.errType = apperrors.ErrorTypeNotFound
		} else {
			s.errType = apperrors.ErrorTypeRemote
		}
		s.errMessage = fmt.Sprintf("analysis of %s failed: %s", artifact.Filename, remoteErr.Error())
	case apperrors.TypeOf(err) == apperrors.ErrorTypeTransport:
		s.errType = apperrors.ErrorTypeTransport
		s.errMessage = apperrors.MessageOf(err)
	default:
		s.errType = apperrors.ErrorTypeInternal
		s.errMessage = fmt.Sprintf("analysis of %s failed: %s", artifact.Filename, apperrors.MessageOf(err))
	}

	if s.metrics != nil {
		observability.RecordAnalysisMetric(ctx, s.metrics, "failed", duration)
	}
	s.publish(entities.WorkflowEventAnalysisFailed, artifact.Filename, map[string]string{
		"error_type": string(s.errType),
		"message":    s.errMessage,
	})
	s.logger.Error().
		Str("filename", artifact.Filename).
		Str("error_type", string(s.errType)).
		Str("message", s.errMessage).
		Msg("analysis failed")
}

func (s *AnalysisService) publish(eventType entities.WorkflowEventType, artifact string, details map[string]string) {
	if s.bus == nil {
		return
	}
	event := entities.NewWorkflowEvent(eventType, artifact, details)
	if err := s.bus.Publish(context.Background(), providers.WorkflowChannel, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to publish workflow event")
	}
}
