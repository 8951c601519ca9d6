package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderPromptReplacesPlaceholders(t *testing.T) {
	result := renderPrompt("Check: {message_text}\nHistory: {context}", map[string]any{
		"message_text": "the moon is cheese",
		"context":      "User: hi",
	})

	require.Equal(t, "Check: the moon is cheese\nHistory: User: hi", result)
}

func TestRenderPromptSanitizesQuotes(t *testing.T) {
	result := renderPrompt("{message_text}", map[string]any{
		"message_text": `he said "trust me"`,
	})

	require.Equal(t, "he said 'trust me'", result)
}

func TestParseSuggestedClaims(t *testing.T) {
	response := "Here are some claims:\n" +
		"Claim 1: The earth is flat\n" +
		"not a claim line\n" +
		"Claim 2: Water boils at 90 degrees\n" +
		"Claim 3:    \n" +
		"Claim 4: Fourth claim\n" +
		"Claim 5: Fifth claim"

	claims := parseSuggestedClaims(response, 3)

	require.Equal(t, []string{
		"The earth is flat",
		"Water boils at 90 degrees",
		"Fourth claim",
	}, claims)
}

func TestNewButtonIDShape(t *testing.T) {
	id := newButtonID()

	require.Len(t, id, 8)
	require.NotContains(t, id, "-")
	require.NotEqual(t, id, newButtonID())
}
