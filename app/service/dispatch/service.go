package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"factbot/app/client/factiverse"
	"factbot/app/client/telegram"
	"factbot/app/client/whatsapp"
	"factbot/app/config"
	"factbot/app/service/feedback"
	"factbot/app/service/history"
	"factbot/app/service/ocr"
	"factbot/app/service/queue"
	"factbot/app/service/routing"
	"factbot/app/util/textutil"

	"github.com/samber/do"
)

// matches replies typed through the Telegram rating keyboard
var ratingRegex = regexp.MustCompile(`^(\d)️⃣\s+(.+)$`)

// WhatsAppSender is the slice of the WhatsApp client the dispatcher uses.
type WhatsAppSender interface {
	SendText(ctx context.Context, phoneNumber, replyToID, text string) (string, error)
	SendButtons(ctx context.Context, phoneNumber, replyToID, text string, buttons []whatsapp.Button) (string, error)
	MediaURL(ctx context.Context, mediaID string) (string, error)
	DownloadMedia(ctx context.Context, url string) ([]byte, error)
}

// TelegramSender is the slice of the Telegram client the dispatcher uses.
type TelegramSender interface {
	SendMessage(ctx context.Context, chatID, replyToID, text string) (string, error)
	SendButtons(ctx context.Context, chatID, replyToID, text string, buttons []telegram.Button) (string, error)
	SendRatingKeyboard(ctx context.Context, chatID, replyToID, text string) (string, error)
	FileURL(ctx context.Context, fileID string) (string, error)
	DownloadFile(ctx context.Context, url string) ([]byte, error)
}

// Service turns queued platform events into replies. It owns the routing
// between event kinds and the fact-checking state machine.
type Service struct {
	cfg         *config.Config
	factChecker FactChecker
	whatsApp    WhatsAppSender
	telegram    TelegramSender
	historySvc  *history.Service
	routingSvc  *routing.Service
	feedbackSvc *feedback.Service
	ocrSvc      TextExtractor
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:         do.MustInvoke[*config.Config](di),
		factChecker: do.MustInvoke[*factiverse.Client](di),
		whatsApp:    do.MustInvoke[*whatsapp.Client](di),
		telegram:    do.MustInvoke[*telegram.Client](di),
		historySvc:  do.MustInvoke[*history.Service](di),
		routingSvc:  do.MustInvoke[*routing.Service](di),
		feedbackSvc: do.MustInvoke[*feedback.Service](di),
		ocrSvc:      do.MustInvoke[*ocr.Service](di),
	}, nil
}

// ProcessEvent handles one inbound event end to end. Redeliveries are dropped
// before any side effect runs. Failures never propagate to the caller: the
// user gets an apology and the error goes to the log.
func (s *Service) ProcessEvent(ctx context.Context, event queue.Event) {
	if !s.routingSvc.MarkSeen(event.MessageID) {
		slog.Debug("Skipping redelivered event",
			"platform", event.Platform,
			"messageId", event.MessageID,
		)
		return
	}

	var err error

	switch event.Kind {
	case queue.KindText:
		err = s.handleText(ctx, event)
	case queue.KindButton:
		err = s.handleButton(ctx, event)
	case queue.KindReaction:
		err = s.handleReaction(event)
	case queue.KindImage:
		err = s.handleImage(ctx, event)
	default:
		err = s.sendTracked(ctx, event, Reply{Text: unsupportedTypeMsg})
	}

	if err != nil {
		slog.Error("Event processing failed",
			"platform", event.Platform,
			"kind", event.Kind,
			"error", err,
		)

		s.sendApology(ctx, event)
	}
}

func (s *Service) handleText(ctx context.Context, event queue.Event) error {
	messageText := textutil.Normalize(event.Text)
	if messageText == "" {
		return nil
	}

	if event.Platform == queue.PlatformTelegram {
		if match := ratingRegex.FindStringSubmatch(messageText); match != nil {
			return s.handleRating(ctx, event, match[1], match[2])
		}
	}

	conversationContext := s.beginTurn(event, messageText)

	reply, err := s.handleMessage(ctx, messageText, conversationContext)
	if err != nil {
		return err
	}

	return s.sendTracked(ctx, event, reply)
}

// handleButton resumes a suggestion: the tapped button id resolves back to
// the full claim recorded when the suggestion went out.
func (s *Service) handleButton(ctx context.Context, event queue.Event) error {
	claim, found := s.routingSvc.ResolveButton(event.ButtonID)
	if !found {
		claim = textutil.Normalize(event.ButtonTitle)
	}
	if claim == "" {
		return nil
	}

	conversationContext := s.beginTurn(event, claim)

	reply, err := s.checkClaims(ctx, claim, conversationContext, []string{claim})
	if err != nil {
		return err
	}

	return s.sendTracked(ctx, event, reply)
}

// handleReaction records thumb reactions on bot messages as feedback. Other
// emojis and reactions to non-bot messages are ignored, and no reply is sent.
func (s *Service) handleReaction(event queue.Event) error {
	if event.Emoji != "👍" && event.Emoji != "👎" {
		return nil
	}

	claimText, found := s.routingSvc.ResolveBotMessage(event.ReactedToID)
	if !found {
		return nil
	}

	return s.feedbackSvc.Record(feedback.KindReaction, event.Emoji, claimText)
}

func (s *Service) handleRating(ctx context.Context, event queue.Event, value, label string) error {
	claimText, found := s.routingSvc.ResolveBotMessage(event.ReplyToID)
	if !found {
		claimText = label
	}

	if err := s.feedbackSvc.Record(feedback.KindRating, value, claimText); err != nil {
		return err
	}

	_, err := s.telegram.SendMessage(ctx, event.ChatID, event.MessageID, "Thank you for your feedback! 🙏")

	return err
}

// handleImage downloads the picture, extracts its text and feeds the result
// through the regular text pipeline with the caption prepended.
func (s *Service) handleImage(ctx context.Context, event queue.Event) error {
	imageBytes, err := s.downloadImage(ctx, event)
	if err != nil {
		return fmt.Errorf("image download failed: %w", err)
	}

	extracted, err := s.ocrSvc.ExtractText(ctx, imageBytes)
	if err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}

	extracted = textutil.Normalize(extracted)
	if extracted == "" {
		return s.sendTracked(ctx, event, Reply{Text: noTextInImageMsg})
	}

	messageText := "Image text: " + extracted
	if caption := textutil.Normalize(event.Caption); caption != "" {
		messageText += "\nCaption: " + caption
	}

	conversationContext := s.appendTurn(event, "User sent image with text: "+messageText)

	reply, err := s.handleMessage(ctx, messageText, conversationContext)
	if err != nil {
		return err
	}

	return s.sendTracked(ctx, event, reply)
}

func (s *Service) downloadImage(ctx context.Context, event queue.Event) ([]byte, error) {
	switch event.Platform {
	case queue.PlatformWhatsApp:
		url, err := s.whatsApp.MediaURL(ctx, event.ImageID)
		if err != nil {
			return nil, err
		}

		return s.whatsApp.DownloadMedia(ctx, url)

	case queue.PlatformTelegram:
		url, err := s.telegram.FileURL(ctx, event.ImageID)
		if err != nil {
			return nil, err
		}

		return s.telegram.DownloadFile(ctx, url)

	default:
		return nil, fmt.Errorf("unknown platform: %s", event.Platform)
	}
}

// beginTurn appends the user line to the conversation log and renders the
// context the turn sees. A reply to a tracked bot message gets that message
// injected so the generator knows what the user is referring to.
func (s *Service) beginTurn(event queue.Event, messageText string) string {
	return s.appendTurn(event, "User: "+messageText)
}

func (s *Service) appendTurn(event queue.Event, line string) string {
	key := history.Key(string(event.Platform), event.UserID)
	s.historySvc.Append(key, line)

	conversationContext := s.historySvc.RenderForTurn(key)

	if event.ReplyToID != "" {
		if referenced, found := s.routingSvc.ResolveBotMessage(event.ReplyToID); found {
			line := "User is currently replying to: " + referenced
			if conversationContext == "" {
				return line
			}

			return conversationContext + "\n" + line
		}
	}

	return conversationContext
}

// sendTracked delivers the reply, appends it to the conversation log and
// records the outbound id in the routing table so later replies and reactions
// resolve back to it.
func (s *Service) sendTracked(ctx context.Context, event queue.Event, reply Reply) error {
	if reply.Text == "" {
		return nil
	}

	key := history.Key(string(event.Platform), event.UserID)
	s.historySvc.Append(key, "Bot: "+reply.Text)

	var (
		sentID string
		err    error
	)

	switch event.Platform {
	case queue.PlatformWhatsApp:
		if len(reply.Buttons) > 0 {
			buttons := make([]whatsapp.Button, 0, len(reply.Buttons))
			for _, button := range reply.Buttons {
				buttons = append(buttons, whatsapp.Button{ID: button.ID, Title: button.Title})
			}

			sentID, err = s.whatsApp.SendButtons(ctx, event.ChatID, event.MessageID, reply.Text, buttons)
		} else {
			sentID, err = s.whatsApp.SendText(ctx, event.ChatID, event.MessageID, reply.Text)
		}

	case queue.PlatformTelegram:
		switch {
		case len(reply.Buttons) > 0:
			buttons := make([]telegram.Button, 0, len(reply.Buttons))
			for _, button := range reply.Buttons {
				buttons = append(buttons, telegram.Button{ID: button.ID, Title: button.Title})
			}

			sentID, err = s.telegram.SendButtons(ctx, event.ChatID, event.MessageID, reply.Text, buttons)
		case reply.Rating:
			sentID, err = s.telegram.SendRatingKeyboard(ctx, event.ChatID, event.MessageID, reply.Text)
		default:
			sentID, err = s.telegram.SendMessage(ctx, event.ChatID, event.MessageID, reply.Text)
		}

	default:
		return fmt.Errorf("unknown platform: %s", event.Platform)
	}

	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	s.routingSvc.RecordBotMessage(sentID, reply.Text)

	return nil
}

// sendApology is the last resort path, so its own failure is only logged.
func (s *Service) sendApology(ctx context.Context, event queue.Event) {
	var err error

	switch event.Platform {
	case queue.PlatformWhatsApp:
		_, err = s.whatsApp.SendText(ctx, event.ChatID, event.MessageID, serviceIssueMessage)
	case queue.PlatformTelegram:
		_, err = s.telegram.SendMessage(ctx, event.ChatID, event.MessageID, serviceIssueMessage)
	}

	if err != nil {
		slog.Error("Failed to deliver apology",
			"platform", event.Platform,
			"error", err,
		)
	}
}
