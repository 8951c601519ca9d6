package whatsapp

// Webhook event envelope of the Cloud API. Nested keys go missing routinely,
// so everything is optional and parsing never assumes presence.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Value Value  `json:"value"`
	Field string `json:"field"`
}

type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Messages         []Message `json:"messages"`
	Contacts         []Contact `json:"contacts"`
}

type Contact struct {
	WaID string `json:"wa_id"`
}

type Message struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Context     *Context     `json:"context,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
	Reaction    *Reaction    `json:"reaction,omitempty"`
	Image       *Image       `json:"image,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

// Context is present when the user replied to an earlier message.
type Context struct {
	ID string `json:"id"`
}

type Interactive struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
}

type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Reaction struct {
	Emoji     string `json:"emoji"`
	MessageID string `json:"message_id"`
}

type Image struct {
	ID      string `json:"id"`
	Caption string `json:"caption"`
}

// Button is an interactive reply button on an outbound message.
type Button struct {
	ID    string
	Title string
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type mediaResponse struct {
	URL string `json:"url"`
}

// Inbound is one user event extracted from the envelope, flattened for the
// dispatcher.
type Inbound struct {
	UserID      string
	PhoneNumber string
	MessageID   string
	Type        string
	Text        string
	ReplyToID   string
	ButtonID    string
	ButtonTitle string
	Emoji       string
	ReactedToID string
	ImageID     string
	Caption     string
}
