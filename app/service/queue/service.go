package queue

import (
	"log/slog"

	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

// Service buffers inbound webhook events so handlers can acknowledge the
// platform immediately and processing happens off the request path.
type Service struct {
	queue chan Event
}

type Platform string

const (
	PlatformWhatsApp Platform = "whatsapp"
	PlatformTelegram Platform = "telegram"
)

type EventKind string

const (
	KindText     EventKind = "text"
	KindButton   EventKind = "button"
	KindReaction EventKind = "reaction"
	KindImage    EventKind = "image"
	// audio, video, documents and the like: the user still gets an answer
	KindUnsupported EventKind = "unsupported"
)

// Event is one user action, already flattened out of the platform envelope.
// ChatID is the send target (phone number or chat id); UserID keys the
// conversation context.
type Event struct {
	Platform    Platform
	Kind        EventKind
	UserID      string
	ChatID      string
	MessageID   string
	Text        string
	ReplyToID   string
	ButtonID    string
	ButtonTitle string
	Emoji       string
	ReactedToID string
	ImageID     string
	Caption     string
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Event, bufferSize),
	}, nil
}

func (s *Service) Add(event Event) {
	defer func() {
		if r := recover(); r != nil {

		}
	}()

	select {
	case s.queue <- event:
	default:
		slog.Warn("event queue is full",
			"platform", event.Platform,
			"kind", event.Kind,
		)
	}
}

func (s *Service) Channel() <-chan Event {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
