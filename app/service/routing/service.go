package routing

import (
	"time"

	"factbot/app/config"

	"github.com/patrickmn/go-cache"
	"github.com/samber/do"
)

// how long an inbound message id is remembered for redelivery filtering
const seenTTL = time.Hour

// Service maps outbound bot message ids back to the text they carried and
// suggestion button ids to their claims, so later replies, reactions and
// taps can be resolved to the originating content. Entries expire instead of
// accumulating for the process lifetime.
type Service struct {
	botMessages *cache.Cache
	buttons     *cache.Cache
	seen        *cache.Cache
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewWithTTL(cfg.Store.RoutingTTL), nil
}

func NewWithTTL(ttl time.Duration) *Service {
	return &Service{
		botMessages: cache.New(ttl, ttl),
		buttons:     cache.New(ttl, ttl),
		seen:        cache.New(seenTTL, seenTTL),
	}
}

// RecordBotMessage tracks an outbound message right after a successful send.
// Platform ids are assumed unique, collisions overwrite.
func (s *Service) RecordBotMessage(messageID, text string) {
	if messageID == "" {
		return
	}

	s.botMessages.SetDefault(messageID, text)
}

// ResolveBotMessage looks up the text behind a referenced message id.
// Absence is a normal outcome: most inbound events reference nothing.
func (s *Service) ResolveBotMessage(messageID string) (string, bool) {
	value, found := s.botMessages.Get(messageID)
	if !found {
		return "", false
	}

	return value.(string), true
}

// RecordButton associates a suggestion button id with its claim text.
func (s *Service) RecordButton(buttonID, claim string) {
	if buttonID == "" {
		return
	}

	s.buttons.SetDefault(buttonID, claim)
}

func (s *Service) ResolveButton(buttonID string) (string, bool) {
	value, found := s.buttons.Get(buttonID)
	if !found {
		return "", false
	}

	return value.(string), true
}

// MarkSeen registers an inbound message id and reports whether it was new.
// Platforms redeliver webhook events; side-effecting work must only run for
// first deliveries.
func (s *Service) MarkSeen(messageID string) bool {
	if messageID == "" {
		return true
	}

	err := s.seen.Add(messageID, struct{}{}, cache.DefaultExpiration)

	return err == nil
}
