package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

const (
	defaultBaseURL    = "https://graph.facebook.com"
	defaultAPIVersion = "v22.0"
	maxMediaBytes     = 16 << 20
)

// Options configures the Graph API client.
type Options struct {
	BaseURL     string
	APIVersion  string
	AccessToken string
	Timeout     time.Duration
}

// Client performs HTTP requests to the WhatsApp Cloud (Graph) API.
type Client struct {
	baseURL    string
	version    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a Graph API client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.AccessToken) == "" {
		return nil, errors.New("whatsapp access token cannot be empty")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		opts.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(opts.APIVersion) == "" {
		opts.APIVersion = defaultAPIVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		version:    strings.Trim(opts.APIVersion, "/"),
		token:      opts.AccessToken,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}, nil
}

// Button is one quick reply button.
type Button struct {
	ID    string
	Title string
}

// ButtonMessage is an interactive message with up to three reply buttons.
type ButtonMessage struct {
	Header  string
	Body    string
	Buttons []Button
}

// Row is one list entry.
type Row struct {
	ID          string
	Title       string
	Description string
}

// Section groups list rows.
type Section struct {
	Title string
	Rows  []Row
}

// ListMessage is an interactive list opened by Button.
type ListMessage struct {
	Header   string
	Body     string
	Button   string
	Sections []Section
}

type textBody struct {
	Body string `json:"body"`
}

type plainText struct {
	Text string `json:"text"`
}

type header struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyButton struct {
	Type  string `json:"type"`
	Reply struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"reply"`
}

type listRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type listSection struct {
	Title string    `json:"title"`
	Rows  []listRow `json:"rows"`
}

type action struct {
	Buttons  []replyButton `json:"buttons,omitempty"`
	Button   string        `json:"button,omitempty"`
	Sections []listSection `json:"sections,omitempty"`
}

type interactive struct {
	Type   string    `json:"type"`
	Header *header   `json:"header,omitempty"`
	Body   plainText `json:"body"`
	Action action    `json:"action"`
}

type messageContext struct {
	MessageID string `json:"message_id"`
}

type outbound struct {
	MessagingProduct string          `json:"messaging_product"`
	RecipientType    string          `json:"recipient_type,omitempty"`
	To               string          `json:"to,omitempty"`
	Type             string          `json:"type,omitempty"`
	Text             *textBody       `json:"text,omitempty"`
	Interactive      *interactive    `json:"interactive,omitempty"`
	Context          *messageContext `json:"context,omitempty"`
	Status           string          `json:"status,omitempty"`
	MessageID        string          `json:"message_id,omitempty"`
}

func newOutbound(to, kind, replyTo string) outbound {
	msg := outbound{MessagingProduct: "whatsapp", RecipientType: "individual", To: to, Type: kind}
	if replyTo != "" {
		msg.Context = &messageContext{MessageID: replyTo}
	}
	return msg
}

// SendText delivers a plain text message, optionally quoting replyTo.
func (c *Client) SendText(ctx context.Context, phoneNumberID, to, body, replyTo string) error {
	msg := newOutbound(to, "text", replyTo)
	msg.Text = &textBody{Body: truncate(body, limitText)}
	return c.post(ctx, phoneNumberID, msg)
}

// SendButtons delivers a reply-button message after clamping it to platform limits.
func (c *Client) SendButtons(ctx context.Context, phoneNumberID, to string, m ButtonMessage, replyTo string) error {
	m = m.clamp()
	payload := &interactive{Type: "button", Header: textHeader(m.Header), Body: plainText{Text: m.Body}}
	for _, b := range m.Buttons {
		var rb replyButton
		rb.Type = "reply"
		rb.Reply.ID = b.ID
		rb.Reply.Title = b.Title
		payload.Action.Buttons = append(payload.Action.Buttons, rb)
	}
	msg := newOutbound(to, "interactive", replyTo)
	msg.Interactive = payload
	return c.post(ctx, phoneNumberID, msg)
}

// SendList delivers a list message after clamping it to platform limits.
func (c *Client) SendList(ctx context.Context, phoneNumberID, to string, m ListMessage, replyTo string) error {
	m = m.clamp()
	payload := &interactive{Type: "list", Header: textHeader(m.Header), Body: plainText{Text: m.Body}}
	payload.Action.Button = m.Button
	for _, s := range m.Sections {
		section := listSection{Title: s.Title}
		for _, r := range s.Rows {
			section.Rows = append(section.Rows, listRow{ID: r.ID, Title: r.Title, Description: r.Description})
		}
		payload.Action.Sections = append(payload.Action.Sections, section)
	}
	msg := newOutbound(to, "interactive", replyTo)
	msg.Interactive = payload
	return c.post(ctx, phoneNumberID, msg)
}

// MarkRead flags an inbound message as read.
func (c *Client) MarkRead(ctx context.Context, phoneNumberID, messageID string) error {
	return c.post(ctx, phoneNumberID, outbound{MessagingProduct: "whatsapp", Status: "read", MessageID: messageID})
}

type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// DownloadMedia resolves a media id to its URL and fetches the bytes.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	body, err := c.get(ctx, c.baseURL+"/"+c.version+"/"+mediaID)
	if err != nil {
		return nil, "", err
	}
	var info mediaInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeMessaging, "decode media info", err)
	}
	if info.URL == "" {
		return nil, "", apperrors.Wrap(apperrors.CodeMessaging, "media url missing", nil)
	}
	data, err := c.get(ctx, info.URL)
	if err != nil {
		return nil, "", err
	}
	mimeType := info.MimeType
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

func textHeader(text string) *header {
	if text == "" {
		return nil
	}
	return &header{Type: "text", Text: text}
}

func (c *Client) post(ctx context.Context, phoneNumberID string, msg outbound) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode graph message: %w", err)
	}
	endpoint := c.baseURL + "/" + c.version + "/" + phoneNumberID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build graph request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req)
	return err
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build graph request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMessaging, "graph request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, apperrors.Wrap(apperrors.CodeMessaging, "graph request rejected",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(payload)))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeMessaging, "read graph response", err)
	}
	return body, nil
}
