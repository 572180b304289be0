package providers

import (
	"context"
	"fmt"

	"github.com/medreportai/companion/internal/domain/entities"
)

// AnalysisRequest is the wire payload for the analysis endpoint
type AnalysisRequest struct {
	FilePath string `json:"file_path"`
	Filename string `json:"filename"`
	Language string `json:"language"`
}

// AnalysisProvider submits a document for AI analysis.
// A structured error reported by the service surfaces as *RemoteError;
// anything else (no response at all) is a transport failure.
type AnalysisProvider interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*entities.AnalysisResult, error)
}

// ChatProvider exchanges one conversational turn with the assistant
type ChatProvider interface {
	SendMessage(ctx context.Context, message string) (string, error)
}

// RemoteError carries an error the remote service reported in its
// response body. Presence of the error field is authoritative
// regardless of HTTP status.
type RemoteError struct {
	Message       string
	SafetyFlagged bool
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.SafetyFlagged {
		return fmt.Sprintf("%s (Safety concern detected)", e.Message)
	}
	return e.Message
}
