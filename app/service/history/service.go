package history

import (
	"strings"
	"sync"

	"factbot/app/config"

	"github.com/samber/do"
)

// Service keeps the per-user conversation log: ordered "User: ..." /
// "Bot: ..." lines, capped at the configured line count. Webhook deliveries
// for one user can arrive concurrently and out of order; the mutex
// serializes appends so lines are never lost or interleaved, but no attempt
// is made to reconstruct true chronological order.
type Service struct {
	mu       sync.RWMutex
	logs     map[string][]string
	maxLines int
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewWithLimit(cfg.Store.MaxContextLines), nil
}

func NewWithLimit(maxLines int) *Service {
	return &Service{
		logs:     make(map[string][]string),
		maxLines: maxLines,
	}
}

// Key builds the store key. Identifiers from different platforms are never
// merged.
func Key(platform, userID string) string {
	return platform + ":" + userID
}

// Append adds a line to the user's log, creating it on first contact and
// evicting the oldest line once the cap is reached.
func (s *Service) Append(key, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logs[key]
	if len(log) >= s.maxLines {
		log = append(log[1:], line)
	} else {
		log = append(log, line)
	}

	s.logs[key] = log
}

// Render joins the user's full log. Unknown keys render as "".
func (s *Service) Render(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return strings.Join(s.logs[key], "\n")
}

// RenderForTurn joins all but the most recent line: the current user message
// has already been appended but is not yet history for its own turn.
func (s *Service) RenderForTurn(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[key]
	if len(log) == 0 {
		return ""
	}

	return strings.Join(log[:len(log)-1], "\n")
}

func (s *Service) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.logs[key])
}
