package server

import (
	"factbot/app/client/telegram"
	"factbot/app/client/whatsapp"
	"factbot/app/service/queue"
)

// whatsAppEvent maps a flattened Cloud API message onto a queue event. The
// phone number keys both the conversation and the send target. Types the bot
// cannot process (audio, video, documents) become unsupported events so the
// user hears back instead of being ignored.
func whatsAppEvent(inbound whatsapp.Inbound) queue.Event {
	event := queue.Event{
		Platform:  queue.PlatformWhatsApp,
		UserID:    inbound.PhoneNumber,
		ChatID:    inbound.PhoneNumber,
		MessageID: inbound.MessageID,
	}

	switch inbound.Type {
	case "text":
		event.Kind = queue.KindText
		event.Text = inbound.Text
		event.ReplyToID = inbound.ReplyToID
	case "interactive":
		event.Kind = queue.KindButton
		event.ButtonID = inbound.ButtonID
		event.ButtonTitle = inbound.ButtonTitle
	case "reaction":
		event.Kind = queue.KindReaction
		event.Emoji = inbound.Emoji
		event.ReactedToID = inbound.ReactedToID
	case "image":
		event.Kind = queue.KindImage
		event.ImageID = inbound.ImageID
		event.Caption = inbound.Caption
	default:
		event.Kind = queue.KindUnsupported
	}

	return event
}

func telegramEvent(data telegram.MessageData) (queue.Event, bool) {
	if data.ChatID == "" {
		return queue.Event{}, false
	}

	event := queue.Event{
		Platform:  queue.PlatformTelegram,
		UserID:    data.UserID,
		ChatID:    data.ChatID,
		MessageID: data.MessageID,
	}

	switch data.Type {
	case "message":
		event.Kind = queue.KindText
		event.Text = data.Text
		event.ReplyToID = data.ReplyToID
	case "image":
		event.Kind = queue.KindImage
		event.ImageID = data.ImageID
		event.Caption = data.Caption
	case "callback_query":
		event.Kind = queue.KindButton
		event.ButtonID = data.CallbackData
	default:
		// a chat message with content the bot cannot read (voice, video)
		event.Kind = queue.KindUnsupported
	}

	return event, true
}
