package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"factbot/app/config"
	"factbot/app/util/textutil"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const defaultBaseURL = "https://graph.facebook.com"

type Client struct {
	baseURL       string
	token         string
	phoneNumberID string
	apiVersion    string
	httpClient    *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return New(defaultBaseURL, cfg.WhatsApp.Token, cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.APIVersion), nil
}

func New(baseURL, token, phoneNumberID, apiVersion string) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		phoneNumberID: phoneNumberID,
		apiVersion:    apiVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendText sends a plain text reply and returns the platform-assigned id of
// the outbound message.
func (c *Client) SendText(ctx context.Context, phoneNumber, replyToID, text string) (string, error) {
	if utf8.RuneCountInString(text) > textutil.MaxMessageLength {
		slog.Warn("Truncating outbound WhatsApp message",
			"length", utf8.RuneCountInString(text),
		)
		text = textutil.Truncate(text, textutil.MaxMessageLength)
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                phoneNumber,
		"text":              map[string]string{"body": text},
	}
	if replyToID != "" {
		payload["context"] = map[string]string{"message_id": replyToID}
	}

	return c.send(ctx, payload)
}

// SendButtons sends an interactive reply-button message. The Cloud API
// allows at most three buttons.
func (c *Client) SendButtons(ctx context.Context, phoneNumber, replyToID, text string, buttons []Button) (string, error) {
	if len(buttons) > 3 {
		buttons = buttons[:3]
	}

	formatted := make([]map[string]any, 0, len(buttons))
	for _, button := range buttons {
		formatted = append(formatted, map[string]any{
			"type": "reply",
			"reply": map[string]string{
				"id":    button.ID,
				"title": button.Title,
			},
		})
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                phoneNumber,
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "button",
			"body":   map[string]string{"text": textutil.Truncate(text, textutil.MaxMessageLength)},
			"action": map[string]any{"buttons": formatted},
		},
	}
	if replyToID != "" {
		payload["context"] = map[string]string{"message_id": replyToID}
	}

	return c.send(ctx, payload)
}

// MediaURL resolves a media id to its short-lived download URL.
func (c *Client) MediaURL(ctx context.Context, mediaID string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, mediaID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", oops.Wrap(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", oops.Errorf("failed to resolve media url: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", oops.Wrap(err)
	}

	if resp.StatusCode >= 400 {
		return "", oops.
			With("status", resp.StatusCode).
			Errorf("WhatsApp media lookup error: %s", strings.TrimSpace(string(data)))
	}

	var media mediaResponse
	if err = json.Unmarshal(data, &media); err != nil {
		return "", oops.Wrap(err)
	}
	if media.URL == "" {
		return "", oops.Errorf("media response missing url")
	}

	return media.URL, nil
}

// DownloadMedia fetches media bytes; the URL from MediaURL requires the same
// bearer token.
func (c *Client) DownloadMedia(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, oops.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.
			With("status", resp.StatusCode).
			Errorf("WhatsApp media download failed")
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) send(ctx context.Context, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", oops.Wrap(err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneNumberID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", oops.Wrap(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", oops.Errorf("failed to send WhatsApp message: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", oops.Wrap(err)
	}

	if resp.StatusCode >= 400 {
		return "", oops.
			With("status", resp.StatusCode).
			Errorf("WhatsApp API error: %s", strings.TrimSpace(string(data)))
	}

	var sent sendResponse
	if err = json.Unmarshal(data, &sent); err != nil {
		return "", oops.Wrap(err)
	}

	if len(sent.Messages) == 0 {
		return "", nil
	}

	return sent.Messages[0].ID, nil
}
