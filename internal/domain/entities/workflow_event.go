package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// WorkflowEventType represents the type of workflow event
type WorkflowEventType string

const (
	WorkflowEventAnalysisSucceeded WorkflowEventType = "analysis_succeeded"
	WorkflowEventAnalysisFailed    WorkflowEventType = "analysis_failed"
	WorkflowEventBookingConfirmed  WorkflowEventType = "booking_confirmed"
	WorkflowEventLedgerExported    WorkflowEventType = "ledger_exported"
)

// WorkflowEvent represents a real-time update event for one workflow
type WorkflowEvent struct {
	ID        string            `json:"id"`
	EventType WorkflowEventType `json:"event_type"`
	Artifact  string            `json:"artifact,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

// NewWorkflowEvent creates a new workflow event
func NewWorkflowEvent(eventType WorkflowEventType, artifact string, details map[string]string) *WorkflowEvent {
	return &WorkflowEvent{
		ID:        generateEventID(),
		EventType: eventType,
		Artifact:  artifact,
		Timestamp: time.Now(),
		Details:   details,
	}
}

func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based if crypto/rand fails
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
