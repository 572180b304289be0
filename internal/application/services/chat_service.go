package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/medreportai/companion/internal/domain/entities"
	"github.com/medreportai/companion/internal/domain/providers"
	"github.com/medreportai/companion/internal/infrastructure/observability"
	apperrors "github.com/medreportai/companion/pkg/errors"
)

// chatErrorFormat is the visible marker a failed turn carries in the
// transcript
const chatErrorFormat = "⚠️ Sorry, I encountered an error: %s"

// ChatService maintains an append-only transcript and serializes
// message exchanges: one turn at a time, rejection over queueing. A
// failed turn is never dropped; it becomes an assistant entry carrying
// the error so the conversation can continue.
type ChatService struct {
	provider providers.ChatProvider
	metrics  *observability.Metrics
	logger   zerolog.Logger

	mu       sync.Mutex
	pending  bool
	messages []entities.ChatMessage
}

// NewChatService creates a new chat service. Metrics may be nil.
func NewChatService(provider providers.ChatProvider, metrics *observability.Metrics, logger zerolog.Logger) *ChatService {
	return &ChatService{
		provider: provider,
		metrics:  metrics,
		logger:   logger.With().Str("component", "chat_service").Logger(),
	}
}

// Send exchanges one turn. The user message is appended before the
// remote call starts; the assistant reply (or a synthesized error
// entry) is appended when it resolves. A send while another turn is
// outstanding is rejected and leaves the transcript untouched.
func (s *ChatService) Send(ctx context.Context, text string) (entities.ChatMessage, error) {
	ctx, span := observability.StartSpan(ctx, "chat.send")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return entities.ChatMessage{}, apperrors.NewValidationError("message must not be empty")
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return entities.ChatMessage{}, apperrors.NewInvalidStateError("a message is already awaiting a reply")
	}
	s.pending = true
	s.messages = append(s.messages, entities.ChatMessage{
		Sender:    entities.ChatSenderUser,
		Text:      text,
		Timestamp: time.Now(),
	})
	s.mu.Unlock()

	reply, err := s.provider.SendMessage(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false

	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		reply = fmt.Sprintf(chatErrorFormat, chatErrorText(err))
		s.logger.Warn().Str("error", chatErrorText(err)).Msg("chat turn failed")
	}
	if s.metrics != nil {
		observability.RecordChatTurn(ctx, s.metrics, outcome)
	}

	message := entities.ChatMessage{
		Sender:    entities.ChatSenderAssistant,
		Text:      reply,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, message)
	return message, nil
}

// Messages returns the transcript in insertion order
func (s *ChatService) Messages() []entities.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Pending reports whether a turn is outstanding
func (s *ChatService) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Reset clears the transcript. Called when the grounding artifact is
// replaced; the session itself remains usable.
func (s *ChatService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.logger.Info().Msg("chat transcript cleared")
}

// chatErrorText extracts the user-facing text for a failed turn. A
// remote-reported error keeps its own message, including the safety
// annotation when the response was policy-flagged.
func chatErrorText(err error) string {
	var remoteErr *providers.RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Error()
	}
	return apperrors.MessageOf(err)
}
