package telegram

// Update is the Bot API webhook payload; only the fields the bot consumes.
type Update struct {
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type Message struct {
	MessageID int64       `json:"message_id"`
	From      *User       `json:"from"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text"`
	Photo     []PhotoSize `json:"photo"`
	Caption   string      `json:"caption"`
	ReplyTo   *Message    `json:"reply_to_message"`
}

type User struct {
	ID int64 `json:"id"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type PhotoSize struct {
	FileID string `json:"file_id"`
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

type apiResponse struct {
	OK     bool        `json:"ok"`
	Result *apiMessage `json:"result"`
}

type apiMessage struct {
	MessageID int64  `json:"message_id"`
	FilePath  string `json:"file_path"`
}

// Button mirrors whatsapp.Button for inline keyboards.
type Button struct {
	ID    string
	Title string
}

// MessageData is the flattened view of an update, empty strings where a
// field is absent. UserID falls back to the chat id for anonymous senders.
type MessageData struct {
	Type         string // "message", "image" or "callback_query"
	UserID       string
	ChatID       string
	MessageID    string
	Text         string
	ReplyToID    string
	CallbackData string
	ImageID      string
	Caption      string
}
