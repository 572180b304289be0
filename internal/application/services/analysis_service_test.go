package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreportai/companion/internal/domain/entities"
	"github.com/medreportai/companion/internal/domain/providers"
	apperrors "github.com/medreportai/companion/pkg/errors"
)

type fakeAnalysisProvider struct {
	mu      sync.Mutex
	calls   int
	analyze func(req providers.AnalysisRequest) (*entities.AnalysisResult, error)

	entered chan struct{}
	release chan struct{}
}

func (f *fakeAnalysisProvider) Analyze(ctx context.Context, req providers.AnalysisRequest) (*entities.AnalysisResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.analyze(req)
}

func (f *fakeAnalysisProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func resultFromJSON(t *testing.T, data string) *entities.AnalysisResult {
	t.Helper()
	var result entities.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(data), &result))
	return &result
}

func TestAnalysisSubmitSuccess(t *testing.T) {
	provider := &fakeAnalysisProvider{
		analyze: func(req providers.AnalysisRequest) (*entities.AnalysisResult, error) {
			return resultFromJSON(t, `{"summary":"ok","diagnosis":"","key_findings":[],"urgent_concerns":""}`), nil
		},
	}
	service := NewAnalysisService(provider, nil, nil, zerolog.Nop())

	artifact := entities.NewArtifact("uploads/report1.pdf", "report1.pdf", "en")
	snapshot, err := service.Submit(context.Background(), artifact)
	require.NoError(t, err)

	assert.Equal(t, AnalysisStateSucceeded, snapshot.State)
	require.NotNil(t, snapshot.Result)

	// The stored result keeps every field; only rendering filters.
	assert.True(t, func() bool { _, ok := snapshot.Result.Field("diagnosis"); return ok }())
	rendered := snapshot.Result.Rendered()
	require.Len(t, rendered, 1)
	assert.Equal(t, "summary", rendered[0].Name)
}

func TestAnalysisSubmitEmptyArtifact(t *testing.T) {
	provider := &fakeAnalysisProvider{
		analyze: func(req providers.AnalysisRequest) (*entities.AnalysisResult, error) {
			t.Fatal("no network call expected for an empty artifact")
			return nil, nil
		},
	}
	service := NewAnalysisService(provider, nil, nil, zerolog.Nop())

	snapshot, err := service.Submit(context.Background(), entities.Artifact{})
	require.NoError(t, err)

	assert.Equal(t, AnalysisStateFailed, snapshot.State)
	assert.Equal(t, apperrors.ErrorTypeMissingArtifact, snapshot.ErrorType)
	assert.Equal(t, 0, provider.callCount())
	assert.False(t, snapshot.CanRetry)
}

func TestAnalysisSubmitSingleFlight(t *testing.T) {
	provider := &fakeAnalysisProvider{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		analyze: func(req providers.AnalysisRequest) (*entities.AnalysisResult, error) {
			return entities.NewAnalysisResult(map[string]entities.FieldValue{
				"summary": entities.TextValue("done"),
			}), nil
		},
	}
	service := NewAnalysisService(provider, nil, nil, zerolog.Nop())
	artifact := entities.NewArtifact("uploads/report1.pdf", "report1.pdf", "en")

	done := make(chan *AnalysisSnapshot, 1)
	go func() {
		snapshot, _ := service.Submit(context.Background(), artifact)
		done <- snapshot
	}()

	<-provider.entered
	assert.Equal(t, AnalysisStatePending, service.Snapshot().State)

	_, err := service.Submit(context.Background(), artifact)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInvalidState, apperrors.TypeOf(err))
	assert.Equal(t, AnalysisStatePending, service.Snapshot().State)

	close(provider.release)
	snapshot := <-done
	assert.Equal(t, AnalysisStateSucceeded, snapshot.State)
	assert.Equal(t, 1, provider.callCount())
}

func TestAnalysisNotFoundClassification(t *testing.T) {
	provider := &fakeAnalysisProvider{
		analyze: func(req providers.AnalysisRequest) (*entities.AnalysisResult, error) {
			return nil, &providers.RemoteError{Message: "file not found: report1.pdf"}
		},
	}
	service := NewAnalysisService(provider, nil, nil, zerolog.Nop())
	artifact := entities.NewArtifact("uploads/report1.pdf", "report1.pdf", "en")

	snapshot, err := service.Submit(context.Background(), artifact)
	require.NoError(t, err)

	assert.Equal(t, AnalysisStateFailed, snapshot.State)
	assert.Equal(t, apperrors.ErrorTypeNotFound, snapshot.ErrorType)
	assert.Contains(t, snapshot.ErrorMessage, "report1.pdf")
	assert.True(t, snapshot.CanRetry)

	// Retry re-issues the submit with the same artifact.
	snapshot, err = service.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AnalysisStateFailed, snapshot.State)
	assert.Equal(t, 2, provider.callCount())
	assert.Equal(t, "report1.pdf", service.Artifact().Filename)
}

func TestAnalysisRemoteErrorWithSafetyFlag(t *testing.T) {
	provider := &fakeAnalysisProvider{
		analyze: func(req providers.AnalysisRequest) (*entities.AnalysisResult, error) {
			return nil, &providers.RemoteError{Message: "content rejected", SafetyFlagged: true}
		},
	}
	service := NewAnalysisService(provider, nil, nil, zerolog.Nop())

	snapshot, err := service.Submit(context.Background(), entities.NewArtifact("uploads/scan.png", "scan.png", "en"))
	require.NoError(t, err)

	assert.Equal(t, apperrors.ErrorTypeRemote, snapshot.ErrorType)
	assert.Contains(t, snapshot.ErrorMessage, "Safety concern detected")
	assert.Contains(t, snapshot.ErrorMessage, "scan.png")
}

func TestAnalysisTransportError(t *testing.T) {
	provider := &fakeAnalysisProvider{
		analyze: func(req providers.AnalysisRequest) (*entities.AnalysisResult, error) {
			return nil, apperrors.NewTransportError("failed to reach analysis backend at http://localhost:5000/analyze", assert.AnError)
		},
	}
	service := NewAnalysisService(provider, nil, nil, zerolog.Nop())

	snapshot, err := service.Submit(context.Background(), entities.NewArtifact("uploads/report1.pdf", "report1.pdf", "en"))
	require.NoError(t, err)

	assert.Equal(t, apperrors.ErrorTypeTransport, snapshot.ErrorType)
	assert.Contains(t, snapshot.ErrorMessage, "http://localhost:5000/analyze")
}

func TestAnalysisRetryWithoutArtifact(t *testing.T) {
	provider := &fakeAnalysisProvider{
		analyze: func(req providers.AnalysisRequest) (*entities.AnalysisResult, error) {
			return nil, nil
		},
	}
	service := NewAnalysisService(provider, nil, nil, zerolog.Nop())

	_, err := service.Retry(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInvalidState, apperrors.TypeOf(err))
}

func TestAnalysisReplaceDiscardsStaleOutcome(t *testing.T) {
	provider := &fakeAnalysisProvider{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		analyze: func(req providers.AnalysisRequest) (*entities.AnalysisResult, error) {
			return entities.NewAnalysisResult(map[string]entities.FieldValue{
				"summary": entities.TextValue("stale"),
			}), nil
		},
	}
	service := NewAnalysisService(provider, nil, nil, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		service.Submit(context.Background(), entities.NewArtifact("uploads/old.pdf", "old.pdf", "en"))
		close(done)
	}()

	<-provider.entered
	service.Replace(entities.NewArtifact("uploads/new.pdf", "new.pdf", "en"))
	close(provider.release)
	<-done

	snapshot := service.Snapshot()
	assert.Equal(t, AnalysisStateIdle, snapshot.State)
	assert.Nil(t, snapshot.Result)
	assert.Equal(t, "new.pdf", snapshot.Artifact.Filename)
}
