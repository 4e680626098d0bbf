package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/glucobot/internal/domain/chatbot"
	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/reply"
)

// Graph is the subset of the Cloud API used by the messenger.
type Graph interface {
	SendText(ctx context.Context, phoneNumberID, to, body, replyTo string) error
	SendButtons(ctx context.Context, phoneNumberID, to string, m ButtonMessage, replyTo string) error
	SendList(ctx context.Context, phoneNumberID, to string, m ListMessage, replyTo string) error
	MarkRead(ctx context.Context, phoneNumberID, messageID string) error
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error)
}

var _ Graph = (*Client)(nil)

// Messenger renders replies in the recipient's language and delivers them.
type Messenger struct {
	graph  Graph
	logger *slog.Logger
}

// NewMessenger wires the chatbot to the Graph API.
func NewMessenger(graph Graph, logger *slog.Logger) *Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Messenger{graph: graph, logger: logger.With("component", "whatsapp.messenger")}
}

// Send delivers r. Interactive messages that the API rejects are resent as numbered plain text.
func (m *Messenger) Send(ctx context.Context, dst chatbot.Destination, r reply.Reply) error {
	lang := i18n.Normalize(dst.Lang)
	switch r.Kind {
	case reply.KindButtons:
		msg := renderButtons(r, lang)
		err := m.graph.SendButtons(ctx, dst.PhoneNumberID, dst.To, msg, dst.ReplyTo)
		if err == nil {
			return nil
		}
		m.logger.Warn("button message rejected, sending text", "to", dst.To, "error", err)
		return m.graph.SendText(ctx, dst.PhoneNumberID, dst.To, buttonFallback(msg.clamp()), dst.ReplyTo)
	case reply.KindList:
		msg := renderList(r, lang)
		err := m.graph.SendList(ctx, dst.PhoneNumberID, dst.To, msg, dst.ReplyTo)
		if err == nil {
			return nil
		}
		m.logger.Warn("list message rejected, sending text", "to", dst.To, "error", err)
		return m.graph.SendText(ctx, dst.PhoneNumberID, dst.To, listFallback(msg.clamp()), dst.ReplyTo)
	default:
		return m.graph.SendText(ctx, dst.PhoneNumberID, dst.To, i18n.Resolve(r.Body, lang), dst.ReplyTo)
	}
}

// MarkRead flags the inbound message as read.
func (m *Messenger) MarkRead(ctx context.Context, phoneNumberID, messageID string) error {
	return m.graph.MarkRead(ctx, phoneNumberID, messageID)
}

// DownloadMedia fetches inbound media bytes and their MIME type.
func (m *Messenger) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	return m.graph.DownloadMedia(ctx, mediaID)
}

var _ chatbot.Messenger = (*Messenger)(nil)

func renderButtons(r reply.Reply, lang i18n.Lang) ButtonMessage {
	msg := ButtonMessage{Header: i18n.Resolve(r.Header, lang), Body: i18n.Resolve(r.Body, lang)}
	for _, opt := range r.Options {
		msg.Buttons = append(msg.Buttons, Button{ID: opt.ID, Title: i18n.Resolve(opt.Label, lang)})
	}
	return msg
}

func renderList(r reply.Reply, lang i18n.Lang) ListMessage {
	msg := ListMessage{
		Header: i18n.Resolve(r.Header, lang),
		Body:   i18n.Resolve(r.Body, lang),
		Button: i18n.Resolve(r.Button, lang),
	}
	for _, s := range r.Sections {
		section := Section{Title: i18n.Resolve(s.Title, lang)}
		for _, row := range s.Rows {
			section.Rows = append(section.Rows, Row{
				ID:          row.ID,
				Title:       i18n.Resolve(row.Title, lang),
				Description: i18n.Resolve(row.Description, lang),
			})
		}
		msg.Sections = append(msg.Sections, section)
	}
	return msg
}

func buttonFallback(m ButtonMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\n", m.Header, m.Body)
	for i, btn := range m.Buttons {
		fmt.Fprintf(&b, "%d. %s\n", i+1, btn.Title)
	}
	return b.String()
}

func listFallback(m ListMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\n", m.Header, m.Body)
	for _, s := range m.Sections {
		fmt.Fprintf(&b, "== %s ==\n", s.Title)
		for i, row := range s.Rows {
			fmt.Fprintf(&b, "%d. %s\n", i+1, row.Title)
		}
		b.WriteString("\n")
	}
	return b.String()
}
