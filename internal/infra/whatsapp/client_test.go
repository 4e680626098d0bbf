package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

type capturedRequest struct {
	path string
	auth string
	body map[string]any
}

func newGraphServer(t *testing.T, status int) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var got []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := capturedRequest{path: r.URL.Path, auth: r.Header.Get("Authorization")}
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &req.body))
		}
		got = append(got, req)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.out"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(Options{BaseURL: baseURL, AccessToken: "token-1"})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(Options{})
	require.Error(t, err)
}

func TestSendTextQuotesInboundMessage(t *testing.T) {
	srv, got := newGraphServer(t, http.StatusOK)
	client := newTestClient(t, srv.URL)

	require.NoError(t, client.SendText(context.Background(), "pnid", "15550001111", "hello", "wamid.in"))

	require.Len(t, *got, 1)
	req := (*got)[0]
	require.Equal(t, "/v22.0/pnid/messages", req.path)
	require.Equal(t, "Bearer token-1", req.auth)
	require.Equal(t, "whatsapp", req.body["messaging_product"])
	require.Equal(t, "15550001111", req.body["to"])
	require.Equal(t, map[string]any{"body": "hello"}, req.body["text"])
	require.Equal(t, map[string]any{"message_id": "wamid.in"}, req.body["context"])
}

func TestSendButtonsClampsPayload(t *testing.T) {
	srv, got := newGraphServer(t, http.StatusOK)
	client := newTestClient(t, srv.URL)

	msg := ButtonMessage{
		Header: "Header",
		Body:   "Pick one",
		Buttons: []Button{
			{ID: "a", Title: "A very long button title here"},
			{ID: "b", Title: "B"},
			{ID: "c", Title: "C"},
			{ID: "d", Title: "D"},
		},
	}
	require.NoError(t, client.SendButtons(context.Background(), "pnid", "1", msg, ""))

	body := (*got)[0].body
	require.Nil(t, body["context"])
	inter := body["interactive"].(map[string]any)
	require.Equal(t, "button", inter["type"])
	buttons := inter["action"].(map[string]any)["buttons"].([]any)
	require.Len(t, buttons, 3)
	first := buttons[0].(map[string]any)["reply"].(map[string]any)
	require.Equal(t, "A very long butto...", first["title"])
}

func TestSendListOmitsEmptyHeader(t *testing.T) {
	srv, got := newGraphServer(t, http.StatusOK)
	client := newTestClient(t, srv.URL)

	msg := ListMessage{Body: "Choose", Button: "Menu", Sections: []Section{{
		Title: "Options",
		Rows:  []Row{{ID: "help", Title: "Help", Description: "Show commands"}},
	}}}
	require.NoError(t, client.SendList(context.Background(), "pnid", "1", msg, ""))

	inter := (*got)[0].body["interactive"].(map[string]any)
	require.Equal(t, "list", inter["type"])
	require.Nil(t, inter["header"])
	action := inter["action"].(map[string]any)
	require.Equal(t, "Menu", action["button"])
	rows := action["sections"].([]any)[0].(map[string]any)["rows"].([]any)
	require.Equal(t, "Show commands", rows[0].(map[string]any)["description"])
}

func TestMarkRead(t *testing.T) {
	srv, got := newGraphServer(t, http.StatusOK)
	client := newTestClient(t, srv.URL)

	require.NoError(t, client.MarkRead(context.Background(), "pnid", "wamid.in"))
	require.Equal(t, map[string]any{"messaging_product": "whatsapp", "status": "read", "message_id": "wamid.in"}, (*got)[0].body)
}

func TestGraphRejectionIsMessagingError(t *testing.T) {
	srv, _ := newGraphServer(t, http.StatusBadRequest)
	client := newTestClient(t, srv.URL)

	err := client.SendText(context.Background(), "pnid", "1", "hi", "")
	require.True(t, apperrors.IsCode(err, apperrors.CodeMessaging))
	require.Contains(t, err.Error(), "status=400")
}

func TestDownloadMediaResolvesURL(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		switch {
		case r.URL.Path == "/v22.0/media-1":
			_, _ = w.Write([]byte(`{"url":"` + srv.URL + `/files/media-1","mime_type":"image/jpeg"}`))
		case strings.HasPrefix(r.URL.Path, "/files/"):
			_, _ = w.Write([]byte("jpeg-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	client := newTestClient(t, srv.URL)

	data, mimeType, err := client.DownloadMedia(context.Background(), "media-1")
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))
	require.Equal(t, "image/jpeg", mimeType)
}
