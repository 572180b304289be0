package entities

import (
	"time"
)

// ChatSender identifies who authored a chat message
type ChatSender string

const (
	ChatSenderUser      ChatSender = "user"
	ChatSenderAssistant ChatSender = "assistant"
)

// ChatMessage is one entry in the transcript. The transcript is
// append-only; insertion order is display order.
type ChatMessage struct {
	Sender    ChatSender `json:"sender"`
	Text      string     `json:"text"`
	Timestamp time.Time  `json:"timestamp"`
}
