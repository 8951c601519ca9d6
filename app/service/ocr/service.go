package ocr

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"factbot/app/config"

	"github.com/samber/do"
	"golang.org/x/sync/semaphore"
)

// Service extracts text from images by piping them through a tesseract
// subprocess. OCR is CPU-bound, so the semaphore caps how many subprocesses
// run at once and keeps image floods from starving message processing.
type Service struct {
	binary  string
	workers *semaphore.Weighted
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewWithBinary(cfg.OCR.TesseractPath, cfg.OCR.MaxWorkers), nil
}

func NewWithBinary(binary string, maxWorkers int) *Service {
	return &Service{
		binary:  binary,
		workers: semaphore.NewWeighted(int64(maxWorkers)),
	}
}

// ExtractText runs OCR over raw image bytes. An image without recognizable
// text yields "", not an error.
func (s *Service) ExtractText(ctx context.Context, imageBytes []byte) (string, error) {
	if err := s.workers.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire OCR worker: %w", err)
	}
	defer s.workers.Release(1)

	// stdin -> stdout, no temp files
	cmd := exec.CommandContext(ctx, s.binary, "stdin", "stdout")
	cmd.Stdin = bytes.NewReader(imageBytes)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start tesseract: %w", err)
	}

	go logStderr(stderr)

	if err = cmd.Wait(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func logStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		slog.Debug("tesseract", "stderr", scanner.Text())
	}
}
