package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"factbot/app/util/textutil"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, "bot-token")
}

func TestSendMessageReturnsMessageID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/botbot-token/sendMessage", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "42", payload["chat_id"])
		require.Equal(t, "HTML", payload["parse_mode"])
		require.Equal(t, float64(7), payload["reply_to_message_id"])

		json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 101},
		})
	})

	id, err := client.SendMessage(context.Background(), "42", "7", "hello")

	require.NoError(t, err)
	require.Equal(t, "101", id)
}

func TestSendMessageConvertsBoldMarkdown(t *testing.T) {
	var sentText string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		sentText, _ = payload["text"].(string)

		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"message_id": 1}})
	})

	_, err := client.SendMessage(context.Background(), "42", "", "this is *important* news")

	require.NoError(t, err)
	require.Equal(t, "this is <b>important</b> news", sentText)
}

func TestSendMessageTruncatesOversized(t *testing.T) {
	var sentText string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		sentText, _ = payload["text"].(string)

		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"message_id": 1}})
	})

	_, err := client.SendMessage(context.Background(), "42", "", strings.Repeat("y", textutil.MaxMessageLength+1))

	require.NoError(t, err)
	require.Len(t, sentText, textutil.MaxMessageLength)
	require.True(t, strings.HasSuffix(sentText, "..."))
}

func TestSendMessageKeepsMultibyteUnderCharLimit(t *testing.T) {
	var sentText string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		sentText, _ = payload["text"].(string)

		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"message_id": 1}})
	})

	// 4000 characters is 8000 bytes, still under the 4096-character limit
	text := strings.Repeat("щ", 4000)

	_, err := client.SendMessage(context.Background(), "42", "", text)

	require.NoError(t, err)
	require.Equal(t, text, sentText)
}

func TestSendButtonsBuildsInlineKeyboard(t *testing.T) {
	var payload map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"message_id": 2}})
	})

	buttons := []Button{
		{ID: "b1", Title: "Claim 1"},
		{ID: "b2", Title: "Claim 2"},
		{ID: "b3", Title: "Claim 3"},
		{ID: "b4", Title: "Claim 4"},
	}

	_, err := client.SendButtons(context.Background(), "42", "", "pick one", buttons)
	require.NoError(t, err)

	markup := payload["reply_markup"].(map[string]any)
	keyboard := markup["inline_keyboard"].([]any)
	require.Len(t, keyboard, 1)
	require.Len(t, keyboard[0].([]any), 3)

	first := keyboard[0].([]any)[0].(map[string]any)
	require.Equal(t, "b1", first["callback_data"])
	require.Equal(t, "Claim 1", first["text"])
}

func TestSendRatingKeyboard(t *testing.T) {
	var payload map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"message_id": 3}})
	})

	_, err := client.SendRatingKeyboard(context.Background(), "42", "", "my verdict")
	require.NoError(t, err)

	text := payload["text"].(string)
	require.True(t, strings.HasPrefix(text, "📊 Please rate this response (1-6)"))
	require.Contains(t, text, "my verdict")

	markup := payload["reply_markup"].(map[string]any)
	require.Equal(t, true, markup["one_time_keyboard"])
	require.Len(t, markup["keyboard"].([]any), 2)
}

func TestFileURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/botbot-token/getFile", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"file_path": "photos/file_1.jpg"},
		})
	})

	url, err := client.FileURL(context.Background(), "file-9")

	require.NoError(t, err)
	require.True(t, strings.HasSuffix(url, "/file/botbot-token/photos/file_1.jpg"))
}

func TestCallSurfacesAPIFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request"}`))
	})

	_, err := client.SendMessage(context.Background(), "42", "", "x")
	require.Error(t, err)
}

func TestParseUpdateMessage(t *testing.T) {
	data, err := ParseUpdate([]byte(`{
		"message": {"message_id": 5, "chat": {"id": 99}, "text": "hi"}
	}`))

	require.NoError(t, err)
	require.Equal(t, "message", data.Type)
	require.Equal(t, "99", data.ChatID)
	require.Equal(t, "99", data.UserID)
	require.Equal(t, "5", data.MessageID)
	require.Equal(t, "hi", data.Text)
}

func TestParseUpdateReplyAndSender(t *testing.T) {
	data, err := ParseUpdate([]byte(`{
		"message": {
			"message_id": 8,
			"from": {"id": 1234},
			"chat": {"id": 99},
			"text": "5️⃣ Very good",
			"reply_to_message": {"message_id": 3, "chat": {"id": 99}}
		}
	}`))

	require.NoError(t, err)
	require.Equal(t, "1234", data.UserID)
	require.Equal(t, "3", data.ReplyToID)
}

func TestParseUpdatePhotoPicksLargest(t *testing.T) {
	data, err := ParseUpdate([]byte(`{
		"message": {
			"message_id": 6,
			"chat": {"id": 99},
			"photo": [{"file_id": "small"}, {"file_id": "large"}],
			"caption": "look at this"
		}
	}`))

	require.NoError(t, err)
	require.Equal(t, "image", data.Type)
	require.Equal(t, "large", data.ImageID)
	require.Equal(t, "look at this", data.Caption)
}

func TestParseUpdateCallbackQuery(t *testing.T) {
	data, err := ParseUpdate([]byte(`{
		"callback_query": {
			"id": "cb-555",
			"from": {"id": 1234},
			"data": "btn-1",
			"message": {"message_id": 7, "chat": {"id": 99}}
		}
	}`))

	require.NoError(t, err)
	require.Equal(t, "callback_query", data.Type)
	require.Equal(t, "btn-1", data.CallbackData)
	require.Equal(t, "99", data.ChatID)
	require.Equal(t, "1234", data.UserID)
	require.Equal(t, "cb-555", data.MessageID)
}

func TestParseUpdateUnsupported(t *testing.T) {
	data, err := ParseUpdate([]byte(`{"edited_message": {"message_id": 1}}`))

	require.NoError(t, err)
	require.Equal(t, "", data.ChatID)

	_, err = ParseUpdate([]byte("nope"))
	require.Error(t, err)
}
