package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"factbot/app/client/factiverse"
	"factbot/app/util/textutil"

	"golang.org/x/sync/errgroup"
)

// handleMessage runs one normalized text message through the intent state
// machine and produces the reply for the turn.
func (s *Service) handleMessage(ctx context.Context, messageText, conversationContext string) (Reply, error) {
	if url := textutil.FirstURL(messageText); url != "" {
		return s.handleURL(ctx, url, messageText, conversationContext)
	}

	if textutil.WordCount(messageText) >= s.cfg.Dispatch.WordThreshold {
		return s.handleLongMessage(ctx, messageText, conversationContext)
	}

	return s.handleShortMessage(ctx, messageText, conversationContext)
}

func (s *Service) handleURL(ctx context.Context, url, messageText, conversationContext string) (Reply, error) {
	result, err := s.factChecker.FactCheck(ctx, url, nil)
	if err != nil {
		return Reply{}, fmt.Errorf("URL fact check failed: %w", err)
	}

	evidence := factiverse.CleanFactCheck(result)
	if len(evidence) == 0 {
		return s.suggestClaims(ctx, messageText, conversationContext)
	}

	return s.generateVerdict(ctx, messageText, conversationContext, evidence)
}

// Long messages carry enough signal for claim detection directly; the
// classifier round-trip is skipped.
func (s *Service) handleLongMessage(ctx context.Context, messageText, conversationContext string) (Reply, error) {
	claims, err := s.factChecker.DetectClaims(ctx, messageText)
	if err != nil {
		slog.Warn("Claim detection failed",
			"error", err,
		)
	}

	if len(claims) == 0 {
		return s.handleGeneral(ctx, messageText, conversationContext)
	}

	return s.checkClaims(ctx, messageText, conversationContext, claims)
}

func (s *Service) handleShortMessage(ctx context.Context, messageText, conversationContext string) (Reply, error) {
	intent := s.detectIntent(ctx, messageText, conversationContext)

	slog.Info("Detected intent",
		"intent", intent.IntentType,
		"claims", len(intent.SplitClaims),
	)

	switch intent.IntentType {
	case "fact_check":
		claims := intent.SplitClaims
		if len(claims) == 0 {
			claims = []string{messageText}
		}

		return s.checkClaims(ctx, messageText, conversationContext, claims)

	case "general":
		return s.handleGeneral(ctx, messageText, conversationContext)

	default:
		return s.suggestClaims(ctx, messageText, conversationContext)
	}
}

// checkClaims fans out one stance-detection call per claim and generates a
// verdict from whatever evidence came back. A single failed call never
// aborts the batch: its claim is logged and omitted.
func (s *Service) checkClaims(ctx context.Context, messageText, conversationContext string, claims []string) (Reply, error) {
	evidence := s.collectStances(ctx, claims)

	if len(evidence) == 0 {
		return s.suggestClaims(ctx, messageText, conversationContext)
	}

	return s.generateVerdict(ctx, messageText, conversationContext, evidence)
}

func (s *Service) collectStances(ctx context.Context, claims []string) []factiverse.CleanedClaim {
	results := make([][]factiverse.CleanedClaim, len(claims))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for i, claim := range claims {
		g.Go(func() error {
			result, err := s.factChecker.StanceDetection(ctx, claim)
			if err != nil {
				slog.Error("Stance detection failed for claim",
					"claim", claim,
					"error", err,
				)
				return nil
			}

			mu.Lock()
			results[i] = factiverse.CleanStance(result)
			mu.Unlock()

			return nil
		})
	}

	// goroutines only return nil, Wait is for completion
	_ = g.Wait()

	var evidence []factiverse.CleanedClaim
	for _, cleaned := range results {
		evidence = append(evidence, cleaned...)
	}

	return evidence
}

func (s *Service) generateVerdict(ctx context.Context, messageText, conversationContext string, evidence []factiverse.CleanedClaim) (Reply, error) {
	prompt := renderPrompt(factCheckPromptTemplate, map[string]any{
		"message_text": messageText,
		"context":      conversationContext,
	})

	response, err := s.factChecker.Generate(ctx, prompt, factiverse.EvidenceJSON(evidence))
	if err != nil {
		return Reply{}, fmt.Errorf("verdict generation failed: %w", err)
	}

	return Reply{Text: response, Rating: true}, nil
}

func (s *Service) handleGeneral(ctx context.Context, messageText, conversationContext string) (Reply, error) {
	prompt := renderPrompt(generalPromptTemplate, map[string]any{
		"message_text": messageText,
		"context":      conversationContext,
	})

	response, err := s.factChecker.Generate(ctx, prompt, messageText)
	if err != nil {
		return Reply{}, fmt.Errorf("general reply generation failed: %w", err)
	}

	return Reply{Text: response}, nil
}
