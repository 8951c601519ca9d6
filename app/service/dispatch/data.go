package dispatch

import (
	"context"

	"factbot/app/client/factiverse"
)

// user-visible fallbacks, kept stable across paths
const (
	serviceIssueMessage = "⚠️ Temporary service issue. Please try again!"
	noTextInImageMsg    = "I can only understand text in images, and no text was found in this one."
	unsupportedTypeMsg  = "Sorry, I can only process text and image messages."
)

// FactChecker is the slice of the fact-checking API the dispatcher uses.
type FactChecker interface {
	Generate(ctx context.Context, prompt, text string) (string, error)
	StanceDetection(ctx context.Context, claim string) (*factiverse.StanceResult, error)
	FactCheck(ctx context.Context, url string, claims []string) (*factiverse.FactCheckResult, error)
	DetectClaims(ctx context.Context, text string) ([]string, error)
}

// TextExtractor turns image bytes into text.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageBytes []byte) (string, error)
}

// Button is one claim suggestion offered as an interactive choice.
type Button struct {
	ID    string
	Title string
}

// Reply is what a turn produces: text plus optional suggestion buttons.
// Rating is false for messages that should not prompt for a rating
// (suggestions, acknowledgements).
type Reply struct {
	Text    string
	Buttons []Button
	Rating  bool
}

// intentResult is the classifier output for one message; never persisted.
type intentResult struct {
	IntentType  string   `json:"intent_type"`
	SplitClaims []string `json:"split_claims"`
}
