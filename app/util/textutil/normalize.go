package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxMessageLength is the hard cap both WhatsApp and Telegram place on a
// single outbound message body.
const MaxMessageLength = 4096

var urlRegex = regexp.MustCompile(`https?://\S+`)

// typographic characters the generation prompts cannot digest
var replacements = [][2]string{
	{" ", " "},   // non-breaking space
	{"‘", "'"},   // left single quote
	{"’", "'"},   // right single quote
	{"“", `"`},   // left double quote
	{"”", `"`},   // right double quote
	{"–", "-"},   // en dash
	{"—", "--"},  // em dash
	{"…", "..."}, // ellipsis
}

// Normalize canonicalizes raw platform text before any downstream
// processing. Double quotes become single quotes so the text can be embedded
// in JSON prompt payloads without escaping surprises.
func Normalize(raw string) string {
	text := norm.NFKD.String(raw)
	text = strings.ReplaceAll(text, `"`, "'")

	for _, pair := range replacements {
		text = strings.ReplaceAll(text, pair[0], pair[1])
	}

	return strings.TrimSpace(text)
}

// Truncate cuts s down to max characters, marking the cut with an ellipsis.
// The platform limits are in characters, so counting bytes would both cut
// multibyte text short and risk splitting a rune at the boundary.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max-3]) + "..."
}

// FirstURL returns the first http(s) URL in s, or "". Remaining matches are
// ignored.
func FirstURL(s string) string {
	return urlRegex.FindString(s)
}

func WordCount(s string) int {
	return len(strings.Fields(s))
}
