package whatsapp

import "encoding/json"

// ParseWebhook flattens a webhook envelope into inbound events. Entries
// without messages or contacts (delivery statuses and the like) are skipped
// silently; a malformed body is the only error.
func ParseWebhook(body []byte) ([]Inbound, error) {
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}

	var events []Inbound

	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			value := change.Value
			if len(value.Messages) == 0 || len(value.Contacts) == 0 {
				continue
			}

			message := value.Messages[0]

			event := Inbound{
				UserID:      entry.ID,
				PhoneNumber: value.Contacts[0].WaID,
				MessageID:   message.ID,
				Type:        message.Type,
			}

			switch message.Type {
			case "text":
				if message.Text != nil {
					event.Text = message.Text.Body
				}
				if message.Context != nil {
					event.ReplyToID = message.Context.ID
				}
			case "interactive":
				if message.Interactive == nil || message.Interactive.ButtonReply == nil {
					continue
				}
				event.ButtonID = message.Interactive.ButtonReply.ID
				event.ButtonTitle = message.Interactive.ButtonReply.Title
			case "reaction":
				if message.Reaction == nil {
					continue
				}
				event.Emoji = message.Reaction.Emoji
				event.ReactedToID = message.Reaction.MessageID
			case "image":
				if message.Image == nil {
					continue
				}
				event.ImageID = message.Image.ID
				event.Caption = message.Image.Caption
			}

			events = append(events, event)
		}
	}

	return events, nil
}
