package whatsapp

import (
	"encoding/json"
	"fmt"

	"github.com/yanqian/glucobot/internal/domain/chatbot"
)

// WebhookPayload is the notification body posted by the Cloud API.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []entry `json:"entry"`
}

type entry struct {
	ID      string   `json:"id"`
	Changes []change `json:"changes"`
}

type change struct {
	Field string      `json:"field"`
	Value changeValue `json:"value"`
}

type changeValue struct {
	Metadata struct {
		PhoneNumberID string `json:"phone_number_id"`
	} `json:"metadata"`
	Messages []inboundMessage `json:"messages"`
}

type selection struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type inboundMessage struct {
	From string `json:"from"`
	ID   string `json:"id"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Interactive *struct {
		Type        string     `json:"type"`
		ButtonReply *selection `json:"button_reply,omitempty"`
		ListReply   *selection `json:"list_reply,omitempty"`
	} `json:"interactive,omitempty"`
	Button *struct {
		Payload string `json:"payload"`
		Text    string `json:"text"`
	} `json:"button,omitempty"`
	Image *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
	} `json:"image,omitempty"`
}

// DecodeEvents parses a webhook body into chatbot events. Status callbacks yield no events.
func DecodeEvents(body []byte) ([]chatbot.Event, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	return payload.Events(), nil
}

// Events flattens every message in the payload.
func (p WebhookPayload) Events() []chatbot.Event {
	var events []chatbot.Event
	for _, e := range p.Entry {
		for _, c := range e.Changes {
			for _, msg := range c.Value.Messages {
				events = append(events, msg.event(c.Value.Metadata.PhoneNumberID))
			}
		}
	}
	return events
}

func (m inboundMessage) event(phoneNumberID string) chatbot.Event {
	ev := chatbot.Event{
		Kind:          chatbot.EventUnsupported,
		From:          m.From,
		MessageID:     m.ID,
		PhoneNumberID: phoneNumberID,
	}
	switch {
	case m.Type == "text" && m.Text != nil:
		ev.Kind = chatbot.EventText
		ev.Text = m.Text.Body
	case m.Type == "interactive" && m.Interactive != nil && m.Interactive.ButtonReply != nil:
		ev.Kind = chatbot.EventButton
		ev.SelectionID = m.Interactive.ButtonReply.ID
		ev.Text = m.Interactive.ButtonReply.Title
	case m.Type == "interactive" && m.Interactive != nil && m.Interactive.ListReply != nil:
		ev.Kind = chatbot.EventList
		ev.SelectionID = m.Interactive.ListReply.ID
		ev.Text = m.Interactive.ListReply.Title
	case m.Type == "button" && m.Button != nil:
		ev.Kind = chatbot.EventButton
		ev.SelectionID = m.Button.Payload
		ev.Text = m.Button.Text
	case m.Type == "image" && m.Image != nil:
		ev.Kind = chatbot.EventImage
		ev.MediaID = m.Image.ID
		ev.MimeType = m.Image.MimeType
	}
	return ev
}
