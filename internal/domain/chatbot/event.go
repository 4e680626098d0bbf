package chatbot

import (
	"context"
	"strings"

	"github.com/yanqian/glucobot/internal/domain/conversation"
	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/reply"
)

// EventKind classifies an inbound message.
type EventKind string

const (
	EventText        EventKind = "text"
	EventButton      EventKind = "button"
	EventList        EventKind = "list"
	EventImage       EventKind = "image"
	EventUnsupported EventKind = "unsupported"
)

// Event is one inbound user message, already decoded from the platform payload.
type Event struct {
	Kind          EventKind `json:"kind"`
	From          string    `json:"from"`
	MessageID     string    `json:"messageId"`
	PhoneNumberID string    `json:"phoneNumberId"`
	Text          string    `json:"text,omitempty"`
	SelectionID   string    `json:"selectionId,omitempty"`
	MediaID       string    `json:"mediaId,omitempty"`
	MimeType      string    `json:"mimeType,omitempty"`
}

func (e Event) input() conversation.Input {
	switch e.Kind {
	case EventButton, EventList:
		return conversation.SelectionInput(e.SelectionID)
	default:
		return conversation.TextInput(e.Text)
	}
}

// Destination addresses an outbound reply.
type Destination struct {
	PhoneNumberID string
	To            string
	ReplyTo       string
	Lang          i18n.Lang
}

// Messenger delivers replies and fetches inbound media.
type Messenger interface {
	Send(ctx context.Context, dst Destination, r reply.Reply) error
	MarkRead(ctx context.Context, phoneNumberID, messageID string) error
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error)
}

func normalizeCommand(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
