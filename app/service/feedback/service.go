package feedback

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/do"
)

var dbFilePath = filepath.Join("data", "feedback.jsonl")

// Service persists user feedback (👍/👎 reactions and 1-6 ratings) as JSON
// lines, one entry per line, appended as they arrive.
type Service struct {
	mu   sync.Mutex
	path string
}

func New(_ *do.Injector) (*Service, error) {
	_ = os.MkdirAll("data", 0755)

	return NewAtPath(dbFilePath)
}

func NewAtPath(path string) (*Service, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback file: %w", err)
	}
	defer file.Close()

	return &Service{path: path}, nil
}

// Record appends one feedback entry with the current unix timestamp.
func (s *Service) Record(kind Kind, value, claimText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		Kind:      kind,
		Value:     value,
		ClaimText: claimText,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback entry: %w", err)
	}

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open feedback file: %w", err)
	}
	defer file.Close()

	if _, err = file.WriteString(string(data) + "\n"); err != nil {
		return fmt.Errorf("failed to write feedback entry: %w", err)
	}

	slog.Info("Recorded feedback",
		"kind", kind,
		"value", value,
	)

	return nil
}

// List reads back every recorded entry, skipping blank lines.
func (s *Service) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback file: %w", err)
	}
	defer file.Close()

	var entries []Entry

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry Entry
		if err = json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("failed to parse feedback line: %w", err)
		}

		entries = append(entries, entry)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading feedback file: %w", err)
	}

	return entries, nil
}
