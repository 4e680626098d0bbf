package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/glucobot/internal/domain/chatbot"
	"github.com/yanqian/glucobot/internal/infra/config"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

const textPayload = `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"metadata":{"phone_number_id":"pnid"},"messages":[{"from":"15550001111","id":"wamid.1","type":"text","text":{"body":"help"}}]}}]}]}`

func TestRouter_VerifySuccess(t *testing.T) {
	server := newRouterUnderTest(t, &stubQueue{}, "")

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "12345", rec.Body.String())
}

func TestRouter_VerifyRejectsWrongToken(t *testing.T) {
	server := newRouterUnderTest(t, &stubQueue{}, "")

	for _, query := range []string{
		"hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1",
		"hub.mode=unsubscribe&hub.verify_token=verify-me&hub.challenge=1",
		"",
	} {
		req := httptest.NewRequest(http.MethodGet, "/webhook?"+query, nil)
		rec := httptest.NewRecorder()
		server.Handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code, query)
	}
}

func TestRouter_ReceiveEnqueuesEvents(t *testing.T) {
	queue := &stubQueue{}
	server := newRouterUnderTest(t, queue, "")

	rec := performRequest("/webhook", textPayload, server, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, queue.jobs, 1)
	require.Equal(t, chatbot.EventJob, queue.names[0])

	var ev chatbot.Event
	require.NoError(t, json.Unmarshal(queue.jobs[0], &ev))
	require.Equal(t, chatbot.EventText, ev.Kind)
	require.Equal(t, "15550001111", ev.From)
	require.Equal(t, "help", ev.Text)
	require.Equal(t, "pnid", ev.PhoneNumberID)
}

func TestRouter_ReceiveStatusOnlyPayload(t *testing.T) {
	queue := &stubQueue{}
	server := newRouterUnderTest(t, queue, "")

	rec := performRequest("/webhook", `{"object":"whatsapp_business_account","entry":[]}`, server, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, queue.jobs)
}

func TestRouter_ReceiveInvalidJSON(t *testing.T) {
	server := newRouterUnderTest(t, &stubQueue{}, "")

	rec := performRequest("/webhook", `{"entry":`, server, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_ReceiveDispatchFailure(t *testing.T) {
	queue := &stubQueue{err: apperrors.Wrap(apperrors.CodeStorage, "insert reading failed", errors.New("conn reset"))}
	server := newRouterUnderTest(t, queue, "")

	rec := performRequest("/webhook", textPayload, server, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "dispatch_failed", errBody["error"]["code"])
	require.Equal(t, "insert reading failed", errBody["error"]["message"])
}

func TestRouter_ReceiveChecksSignature(t *testing.T) {
	queue := &stubQueue{}
	server := newRouterUnderTest(t, queue, "app-secret")

	rec := performRequest("/webhook", textPayload, server, map[string]string{signatureHeader: "sha256=deadbeef"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, queue.jobs)

	rec = performRequest("/webhook", textPayload, server, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest("/webhook", textPayload, server, map[string]string{signatureHeader: sign("app-secret", textPayload)})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, queue.jobs, 1)
}

func TestRouter_IndexAndHealth(t *testing.T) {
	server := newRouterUnderTest(t, &stubQueue{}, "")

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Nothing to see here.", rec.Body.String())

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := NewRouter(cfg, NewWebhookHandler(cfg.WhatsApp, &stubQueue{}, newTestLogger()))

	require.Equal(t, http.StatusOK, performRequest("/webhook", textPayload, server, nil).Code)
	rec := performRequest("/webhook", textPayload, server, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestTokenBucketsRefill(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	limiter := newTokenBuckets(config.RateLimitConfig{RequestsPerMinute: 60, Burst: 2}, func() time.Time { return now })

	require.True(t, limiter.allow("a"))
	require.True(t, limiter.allow("a"))
	require.False(t, limiter.allow("a"))
	require.True(t, limiter.allow("b"))

	now = now.Add(time.Minute)
	require.True(t, limiter.allow("a"))
	require.True(t, limiter.allow("a"))
	require.False(t, limiter.allow("a"))
}

func performRequest(path, body string, server *http.Server, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		WhatsApp: config.WhatsAppConfig{VerifyToken: "verify-me"},
	}
}

func newRouterUnderTest(t *testing.T, queue Enqueuer, appSecret string) *http.Server {
	t.Helper()
	cfg := testConfig()
	cfg.WhatsApp.AppSecret = appSecret
	return NewRouter(cfg, NewWebhookHandler(cfg.WhatsApp, queue, newTestLogger()))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

type stubQueue struct {
	names []string
	jobs  [][]byte
	err   error
}

func (s *stubQueue) Enqueue(_ context.Context, name string, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.names = append(s.names, name)
	s.jobs = append(s.jobs, payload)
	return nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestAsHTTPErrorMapsAppErrors(t *testing.T) {
	got := asHTTPError(apperrors.Wrap(apperrors.CodeMessaging, "graph request rejected", errors.New("status=400")))
	require.Equal(t, http.StatusBadGateway, got.Status)
	require.Equal(t, apperrors.CodeMessaging, got.Code)
	require.Equal(t, "graph request rejected", got.Message)

	got = asHTTPError(errors.New("plain"))
	require.Equal(t, http.StatusInternalServerError, got.Status)
	require.Equal(t, "internal_error", got.Code)
}
