package telegram

import (
	"encoding/json"
	"strconv"
)

// ParseUpdate flattens a webhook update. An update the bot does not handle
// comes back with an empty ChatID; a malformed body is the only error.
func ParseUpdate(body []byte) (MessageData, error) {
	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		return MessageData{}, err
	}

	var data MessageData

	switch {
	case update.Message != nil:
		message := update.Message
		data.ChatID = strconv.FormatInt(message.Chat.ID, 10)
		data.MessageID = strconv.FormatInt(message.MessageID, 10)
		data.UserID = senderID(message.From, message.Chat)

		if message.ReplyTo != nil {
			data.ReplyToID = strconv.FormatInt(message.ReplyTo.MessageID, 10)
		}

		switch {
		case message.Text != "":
			data.Type = "message"
			data.Text = message.Text
		case len(message.Photo) > 0:
			data.Type = "image"
			// last photo size is the largest
			data.ImageID = message.Photo[len(message.Photo)-1].FileID
			data.Caption = message.Caption
		}

	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		callback := update.CallbackQuery
		data.Type = "callback_query"
		data.ChatID = strconv.FormatInt(callback.Message.Chat.ID, 10)
		data.UserID = senderID(callback.From, callback.Message.Chat)
		data.CallbackData = callback.Data

		// every tap carries a fresh callback id, the message id would
		// collide across taps on the same keyboard
		data.MessageID = callback.ID
	}

	return data, nil
}

func senderID(from *User, chat Chat) string {
	if from != nil {
		return strconv.FormatInt(from.ID, 10)
	}

	return strconv.FormatInt(chat.ID, 10)
}
