package whatsapp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/glucobot/internal/domain/chatbot"
	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/reply"
)

type stubGraph struct {
	texts       []string
	buttons     []ButtonMessage
	lists       []ListMessage
	replyTo     []string
	interactErr error
}

func (s *stubGraph) SendText(_ context.Context, _, _, body, replyTo string) error {
	s.texts = append(s.texts, body)
	s.replyTo = append(s.replyTo, replyTo)
	return nil
}

func (s *stubGraph) SendButtons(_ context.Context, _, _ string, m ButtonMessage, _ string) error {
	s.buttons = append(s.buttons, m)
	return s.interactErr
}

func (s *stubGraph) SendList(_ context.Context, _, _ string, m ListMessage, _ string) error {
	s.lists = append(s.lists, m)
	return s.interactErr
}

func (s *stubGraph) MarkRead(context.Context, string, string) error { return nil }

func (s *stubGraph) DownloadMedia(context.Context, string) ([]byte, string, error) {
	return []byte("img"), "image/png", nil
}

func newTestMessenger(graph Graph) *Messenger {
	return NewMessenger(graph, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var testDst = chatbot.Destination{PhoneNumberID: "pnid", To: "1", ReplyTo: "wamid.in", Lang: i18n.Hindi}

func TestMessengerResolvesLanguage(t *testing.T) {
	graph := &stubGraph{}
	m := newTestMessenger(graph)

	require.NoError(t, m.Send(context.Background(), testDst, reply.Text(i18n.Text("Hello", "नमस्ते"))))
	require.Equal(t, []string{"नमस्ते"}, graph.texts)
	require.Equal(t, []string{"wamid.in"}, graph.replyTo)
}

func TestMessengerRendersButtons(t *testing.T) {
	graph := &stubGraph{}
	m := newTestMessenger(graph)

	r := reply.Buttons(i18n.Raw("Head"), i18n.Text("Body", "बॉडी"),
		reply.Option{ID: "yes", Label: i18n.Text("Yes", "हाँ")})
	require.NoError(t, m.Send(context.Background(), testDst, r))
	require.Len(t, graph.buttons, 1)
	require.Equal(t, "बॉडी", graph.buttons[0].Body)
	require.Equal(t, Button{ID: "yes", Title: "हाँ"}, graph.buttons[0].Buttons[0])
	require.Empty(t, graph.texts)
}

func TestMessengerFallsBackToTextForButtons(t *testing.T) {
	graph := &stubGraph{interactErr: errors.New("rejected")}
	m := newTestMessenger(graph)

	r := reply.Buttons(i18n.Raw("Head"), i18n.Raw("Body"),
		reply.Option{ID: "a", Label: i18n.Raw("First")},
		reply.Option{ID: "b", Label: i18n.Raw("Second")})
	require.NoError(t, m.Send(context.Background(), testDst, r))
	require.Equal(t, []string{"Head\n\nBody\n\n1. First\n2. Second\n"}, graph.texts)
}

func TestMessengerFallsBackToTextForLists(t *testing.T) {
	graph := &stubGraph{interactErr: errors.New("rejected")}
	m := newTestMessenger(graph)

	r := reply.List(i18n.Raw("Head"), i18n.Raw("Body"), i18n.Raw("Menu"), reply.Section{
		Title: i18n.Raw("Options"),
		Rows:  []reply.Row{{ID: "help", Title: i18n.Raw("Help")}, {ID: "summary", Title: i18n.Raw("Summary")}},
	})
	require.NoError(t, m.Send(context.Background(), testDst, r))
	require.Equal(t, []string{"Head\n\nBody\n\n== Options ==\n1. Help\n2. Summary\n\n"}, graph.texts)
}
