package telegram

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
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const defaultBaseURL = "https://api.telegram.org"

var boldRegex = regexp.MustCompile(`\*([^*\n]+)\*`)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return New(defaultBaseURL, cfg.Telegram.Token), nil
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendMessage sends a plain reply and returns the outbound message id.
func (c *Client) SendMessage(ctx context.Context, chatID, replyToID, text string) (string, error) {
	payload := c.basePayload(chatID, replyToID, text)

	return c.sendMessage(ctx, payload)
}

// SendButtons sends an inline keyboard with up to three claim buttons.
func (c *Client) SendButtons(ctx context.Context, chatID, replyToID, text string, buttons []Button) (string, error) {
	if len(buttons) > 3 {
		buttons = buttons[:3]
	}

	row := make([]map[string]string, 0, len(buttons))
	for _, button := range buttons {
		row = append(row, map[string]string{
			"text":          button.Title,
			"callback_data": button.ID,
		})
	}

	payload := c.basePayload(chatID, replyToID, text)
	payload["reply_markup"] = map[string]any{
		"inline_keyboard": [][]map[string]string{row},
	}

	return c.sendMessage(ctx, payload)
}

// SendRatingKeyboard sends the reply with a one-time 1-6 rating keyboard
// attached.
func (c *Client) SendRatingKeyboard(ctx context.Context, chatID, replyToID, text string) (string, error) {
	keyboard := [][]map[string]string{
		{{"text": "1️⃣ Very poor"}, {"text": "2️⃣ Poor"}, {"text": "3️⃣ Fair"}},
		{{"text": "4️⃣ Good"}, {"text": "5️⃣ Very good"}, {"text": "6️⃣ Excellent"}},
	}

	payload := c.basePayload(chatID, replyToID, "📊 Please rate this response (1-6)\n\n"+text)
	payload["reply_markup"] = map[string]any{
		"keyboard":          keyboard,
		"resize_keyboard":   true,
		"one_time_keyboard": true,
	}

	return c.sendMessage(ctx, payload)
}

// SetWebhook points the bot at the given public URL for message and
// callback_query updates.
func (c *Client) SetWebhook(ctx context.Context, webhookURL string) error {
	_, err := c.call(ctx, "setWebhook", map[string]any{
		"url":             webhookURL,
		"allowed_updates": []string{"message", "callback_query"},
	})

	return err
}

func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := c.call(ctx, "deleteWebhook", map[string]any{})

	return err
}

// FileURL resolves a file id to its download URL.
func (c *Client) FileURL(ctx context.Context, fileID string) (string, error) {
	result, err := c.call(ctx, "getFile", map[string]any{"file_id": fileID})
	if err != nil {
		return "", err
	}

	if result == nil || result.FilePath == "" {
		return "", oops.Errorf("getFile response missing file_path")
	}

	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, result.FilePath), nil
}

// DownloadFile fetches file bytes from a FileURL result.
func (c *Client) DownloadFile(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, oops.Wrap(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, oops.Errorf("failed to download Telegram file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.
			With("status", resp.StatusCode).
			Errorf("Telegram file download failed")
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) basePayload(chatID, replyToID, text string) map[string]any {
	if utf8.RuneCountInString(text) > textutil.MaxMessageLength {
		slog.Warn("Truncating outbound Telegram message",
			"length", utf8.RuneCountInString(text),
		)
		text = textutil.Truncate(text, textutil.MaxMessageLength)
	}

	payload := map[string]any{
		"chat_id":    chatID,
		"text":       markdownToHTML(text),
		"parse_mode": "HTML",
	}

	if replyToID != "" {
		if id, err := strconv.ParseInt(replyToID, 10, 64); err == nil {
			payload["reply_to_message_id"] = id
		}
	}

	return payload
}

func (c *Client) sendMessage(ctx context.Context, payload map[string]any) (string, error) {
	result, err := c.call(ctx, "sendMessage", payload)
	if err != nil {
		return "", err
	}

	if result == nil {
		return "", nil
	}

	return strconv.FormatInt(result.MessageID, 10), nil
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (*apiMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, oops.Wrap(err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, oops.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, oops.Errorf("Telegram API call failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.Wrap(err)
	}

	if resp.StatusCode >= 400 {
		return nil, oops.
			With("status", resp.StatusCode).
			With("method", method).
			Errorf("Telegram API error: %s", strings.TrimSpace(string(data)))
	}

	var parsed apiResponse
	if err = json.Unmarshal(data, &parsed); err != nil {
		return nil, oops.Wrap(err)
	}

	if !parsed.OK {
		return nil, oops.With("method", method).Errorf("Telegram API returned ok=false")
	}

	return parsed.Result, nil
}

// markdownToHTML converts the generator's single-asterisk bold markers to
// the HTML tags Telegram's parse_mode expects.
func markdownToHTML(text string) string {
	return boldRegex.ReplaceAllString(text, "<b>$1</b>")
}
