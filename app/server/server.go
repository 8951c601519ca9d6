package server

import (
	"context"
	"log/slog"

	"factbot/app/client/telegram"
	"factbot/app/client/whatsapp"
	"factbot/app/config"
	"factbot/app/service/queue"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Server)(nil)

// webhookManager is the part of the Telegram client the management
// endpoints need.
type webhookManager interface {
	SetWebhook(ctx context.Context, webhookURL string) error
	DeleteWebhook(ctx context.Context) error
	SendMessage(ctx context.Context, chatID, replyToID, text string) (string, error)
}

// Server exposes the platform webhooks. Handlers only validate, flatten and
// enqueue; everything slow happens behind the queue so the platforms get
// their 200 immediately.
type Server struct {
	cfg      *config.Config
	app      *fiber.App
	queueSvc *queue.Service
	telegram webhookManager
}

func New(di *do.Injector) (*Server, error) {
	return newServer(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[*queue.Service](di),
		do.MustInvoke[*telegram.Client](di),
	), nil
}

func newServer(cfg *config.Config, queueSvc *queue.Service, tg webhookManager) *Server {
	s := &Server{
		cfg:      cfg,
		queueSvc: queueSvc,
		telegram: tg,
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
	}

	s.app.Get("/", s.handleHealth)
	s.app.Get("/webhook", s.handleVerification)
	s.app.Post("/webhook", s.handleWhatsAppWebhook)
	s.app.Post("/tgwebhook", s.handleTelegramWebhook)
	s.app.Post("/telegram/setup-webhook", s.handleSetupWebhook)
	s.app.Post("/telegram/remove-webhook", s.handleRemoveWebhook)
	s.app.Post("/telegram/send-message", s.handleSendMessage)

	return s
}

func (s *Server) Run() error {
	slog.Info("Starting webhook server",
		"addr", s.cfg.Server.Addr,
	)

	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleVerification answers the Cloud API subscription handshake: echo the
// challenge when the static verify token matches, 403 otherwise.
func (s *Server) handleVerification(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == s.cfg.WhatsApp.VerifyToken {
		return c.SendString(challenge)
	}

	return c.SendStatus(fiber.StatusForbidden)
}

// handleWhatsAppWebhook always acknowledges with 200: anything else makes
// the platform redeliver, and redeliveries are already filtered downstream.
func (s *Server) handleWhatsAppWebhook(c *fiber.Ctx) error {
	events, err := whatsapp.ParseWebhook(c.Body())
	if err != nil {
		slog.Warn("Discarding malformed WhatsApp webhook",
			"error", err,
		)

		return c.JSON(fiber.Map{"status": "received"})
	}

	for _, inbound := range events {
		s.queueSvc.Add(whatsAppEvent(inbound))
	}

	return c.JSON(fiber.Map{"status": "received"})
}

func (s *Server) handleTelegramWebhook(c *fiber.Ctx) error {
	data, err := telegram.ParseUpdate(c.Body())
	if err != nil {
		slog.Warn("Discarding malformed Telegram update",
			"error", err,
		)

		return c.JSON(fiber.Map{"ok": true})
	}

	if event, ok := telegramEvent(data); ok {
		s.queueSvc.Add(event)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) handleSetupWebhook(c *fiber.Ctx) error {
	var body struct {
		URL string `json:"url"`
	}

	if err := c.BodyParser(&body); err != nil || body.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url is required"})
	}

	if err := s.telegram.SetWebhook(c.Context(), body.URL); err != nil {
		slog.Error("Failed to set Telegram webhook",
			"error", err,
		)

		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to set webhook"})
	}

	return c.JSON(fiber.Map{"status": "webhook set"})
}

// handleSendMessage lets an operator push a message to a chat manually,
// mostly for verifying the bot token and webhook wiring.
func (s *Server) handleSendMessage(c *fiber.Ctx) error {
	var body struct {
		ChatID string `json:"chat_id"`
		Text   string `json:"text"`
	}

	if err := c.BodyParser(&body); err != nil || body.ChatID == "" || body.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "chat_id and text are required"})
	}

	messageID, err := s.telegram.SendMessage(c.Context(), body.ChatID, "", body.Text)
	if err != nil {
		slog.Error("Failed to send manual Telegram message",
			"error", err,
		)

		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to send message"})
	}

	return c.JSON(fiber.Map{"status": "sent", "message_id": messageID})
}

func (s *Server) handleRemoveWebhook(c *fiber.Ctx) error {
	if err := s.telegram.DeleteWebhook(c.Context()); err != nil {
		slog.Error("Failed to remove Telegram webhook",
			"error", err,
		)

		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to remove webhook"})
	}

	return c.JSON(fiber.Map{"status": "webhook removed"})
}
