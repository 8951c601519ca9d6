package dispatch

import (
	"fmt"
	"strings"

	_ "embed"
)

//go:embed intent_detection_prompt.txt
var intentDetectionPromptTemplate string

//go:embed fact_check_prompt.txt
var factCheckPromptTemplate string

//go:embed general_prompt.txt
var generalPromptTemplate string

//go:embed claim_suggestion_prompt.txt
var claimSuggestionPromptTemplate string

func renderPrompt(template string, values map[string]any) string {
	prompt := template
	for key, value := range values {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", sanitizePromptValue(fmt.Sprint(value)))
	}

	return strings.TrimSpace(prompt)
}

// sanitizePromptValue keeps user-provided text from smuggling double quotes
// into JSON-embedded prompt payloads.
func sanitizePromptValue(value string) string {
	return strings.ReplaceAll(value, `"`, "'")
}
