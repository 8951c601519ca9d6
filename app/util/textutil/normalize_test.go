package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestNormalizeReplacesTypography(t *testing.T) {
	out := Normalize("café’s “best”")

	require.NotContains(t, out, "’")
	require.NotContains(t, out, "“")
	require.NotContains(t, out, "”")
	require.Contains(t, out, "'s")
	require.Contains(t, out, `"best"`)
}

func TestNormalizeReplacesDoubleQuotes(t *testing.T) {
	require.Equal(t, "she said 'no'", Normalize(`she said "no"`))
}

func TestNormalizeDashesAndEllipsis(t *testing.T) {
	out := Normalize("wait… 1–2 — done")
	require.Equal(t, "wait... 1-2 -- done", out)
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	require.Equal(t, "hello", Normalize("  hello \n"))
	require.Equal(t, "", Normalize("   "))
}

func TestTruncateLongMessage(t *testing.T) {
	long := strings.Repeat("a", MaxMessageLength+100)

	out := Truncate(long, MaxMessageLength)

	require.Len(t, out, MaxMessageLength)
	require.True(t, strings.HasSuffix(out, "..."))
	require.Equal(t, strings.Repeat("a", MaxMessageLength-3), out[:MaxMessageLength-3])
}

func TestTruncateShortMessageUntouched(t *testing.T) {
	require.Equal(t, "short", Truncate("short", MaxMessageLength))
}

func TestTruncateCountsCharactersNotBytes(t *testing.T) {
	// 3000 characters but 6000 bytes, well under the character limit
	accented := strings.Repeat("é", 3000)
	require.Equal(t, accented, Truncate(accented, MaxMessageLength))

	long := strings.Repeat("щ", MaxMessageLength+100)

	out := Truncate(long, MaxMessageLength)

	require.True(t, utf8.ValidString(out))
	require.Equal(t, MaxMessageLength, utf8.RuneCountInString(out))
	require.True(t, strings.HasSuffix(out, "..."))
}

func TestFirstURL(t *testing.T) {
	require.Equal(t, "https://a.example/x", FirstURL("see https://a.example/x and http://b.example"))
	require.Equal(t, "", FirstURL("no links here"))
}

func TestWordCount(t *testing.T) {
	require.Equal(t, 3, WordCount("one  two\nthree"))
	require.Equal(t, 0, WordCount(""))
}
