package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/glucobot/internal/domain/chatbot"
	"github.com/yanqian/glucobot/internal/infra/config"
	"github.com/yanqian/glucobot/internal/infra/whatsapp"
	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

const maxWebhookBody = 1 << 20

// Enqueuer accepts inbound events for dispatch.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload []byte) error
}

// WebhookHandler serves the WhatsApp Cloud API webhook.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	queue       Enqueuer
	logger      *slog.Logger
}

// NewWebhookHandler constructs the webhook handler.
func NewWebhookHandler(cfg config.WhatsAppConfig, queue Enqueuer, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifyToken: cfg.VerifyToken,
		appSecret:   cfg.AppSecret,
		queue:       queue,
		logger:      logger.With("component", "http.webhook"),
	}
}

// Verify answers the subscription handshake.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	if mode == "subscribe" && token != "" && token == h.verifyToken {
		h.logger.Info("webhook verified")
		c.String(http.StatusOK, c.Query("hub.challenge"))
		return
	}
	c.Status(http.StatusForbidden)
}

// Receive decodes a notification and enqueues one job per message.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "unable to read body", err))
		return
	}
	if h.appSecret != "" && !validSignature(h.appSecret, c.GetHeader(signatureHeader), body) {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "invalid_signature", "signature mismatch", nil))
		return
	}

	events, err := whatsapp.DecodeEvents(body)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	var failed error
	for _, ev := range events {
		if err := h.enqueue(c.Request.Context(), ev); err != nil && failed == nil {
			failed = err
		}
	}
	if failed != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "dispatch_failed", apperrors.MessageOf(failed), failed))
		return
	}
	c.Status(http.StatusOK)
}

func (h *WebhookHandler) enqueue(ctx context.Context, ev chatbot.Event) error {
	payload, err := chatbot.EncodeEvent(ev)
	if err != nil {
		return err
	}
	if err := h.queue.Enqueue(ctx, chatbot.EventJob, payload); err != nil {
		h.logger.Error("event dispatch failed", "from", ev.From, "messageId", ev.MessageID, "error", err)
		return err
	}
	return nil
}

// Index is the landing page.
func (h *WebhookHandler) Index(c *gin.Context) {
	c.String(http.StatusOK, "Nothing to see here.")
}

// Health reports liveness.
func (h *WebhookHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
