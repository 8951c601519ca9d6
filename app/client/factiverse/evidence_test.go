package factiverse

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCleanStanceSplitsEvidenceByLabel(t *testing.T) {
	result := &StanceResult{
		Claim: `the "earth" is flat`,
		Evidence: []Evidence{
			{LabelDescription: "SUPPORTS", DomainName: "a.org", URL: "https://a.org", SimScore: 0.9, EvidenceSnippet: "snippet a"},
			{LabelDescription: "REFUTES", DomainName: "b.org", URL: "https://b.org", SimScore: 0.8, EvidenceSnippet: "snippet b"},
			{LabelDescription: "NOT_ENOUGH_INFO", DomainName: "c.org"},
		},
		FinalPrediction: intPtr(0),
		FinalScore:      0.1,
	}

	cleaned := CleanStance(result)

	require.Len(t, cleaned, 1)
	claim := cleaned[0]
	require.Equal(t, "the 'earth' is flat", claim.Claim)
	require.Equal(t, "Incorrect", claim.Verdict)
	require.InDelta(t, 90.0, claim.ConfidencePercentage, 0.01)
	require.Len(t, claim.SupportingEvidence, 1)
	require.Len(t, claim.RefutingEvidence, 1)
	require.Equal(t, "Unknown", claim.SupportingEvidence[0].DomainReliability)
}

func TestCleanStanceUncertainWithoutPrediction(t *testing.T) {
	result := &StanceResult{
		Claim: "something",
		Evidence: []Evidence{
			{LabelDescription: "SUPPORTS", SimScore: 0.7, EvidenceSnippet: "s"},
		},
		FinalScore: 0.6,
	}

	cleaned := CleanStance(result)

	require.Len(t, cleaned, 1)
	require.Equal(t, "Uncertain", cleaned[0].Verdict)
	require.InDelta(t, 60.0, cleaned[0].ConfidencePercentage, 0.01)
}

func TestCleanStanceDropsClaimsWithoutUsableEvidence(t *testing.T) {
	require.Nil(t, CleanStance(&StanceResult{Claim: "no evidence"}))

	require.Nil(t, CleanStance(&StanceResult{
		Claim: "only unknown labels",
		Evidence: []Evidence{
			{LabelDescription: "NOT_ENOUGH_INFO"},
		},
	}))

	require.Nil(t, CleanStance(nil))
}

func TestCleanStanceCapsSnippets(t *testing.T) {
	long := strings.Repeat("x", maxSnippetLength+50)

	cleaned := CleanStance(&StanceResult{
		Claim: "c",
		Evidence: []Evidence{
			{LabelDescription: "SUPPORTS", SimScore: 0.9, EvidenceSnippet: long},
			{LabelDescription: "REFUTES", SimScore: 0.2, EvidenceSnippet: "below threshold"},
		},
		FinalPrediction: intPtr(1),
		FinalScore:      0.8,
	})

	require.Len(t, cleaned, 1)
	snippet := cleaned[0].SupportingEvidence[0].EvidenceSnippet
	require.Len(t, snippet, maxSnippetLength+3)
	require.True(t, strings.HasSuffix(snippet, "..."))

	// low-similarity evidence keeps its label but loses the snippet
	require.Equal(t, "", cleaned[0].RefutingEvidence[0].EvidenceSnippet)
}

func TestCleanFactCheckUsesBatchScore(t *testing.T) {
	result := &FactCheckResult{
		Claims: []StanceResult{
			{
				Claim:           "claim one",
				Evidence:        []Evidence{{LabelDescription: "SUPPORTS", SimScore: 0.9, EvidenceSnippet: "s"}},
				FinalPrediction: intPtr(1),
			},
			{Claim: "claim two, no evidence"},
		},
		FinalScore: 0.7,
	}

	cleaned := CleanFactCheck(result)

	require.Len(t, cleaned, 1)
	require.Equal(t, "Correct", cleaned[0].Verdict)
	require.InDelta(t, 70.0, cleaned[0].ConfidencePercentage, 0.01)
}

func TestEvidenceJSON(t *testing.T) {
	require.Equal(t, "[]", EvidenceJSON(nil))

	cleaned := CleanStance(&StanceResult{
		Claim:           "c",
		Summary:         "summarized",
		Evidence:        []Evidence{{LabelDescription: "SUPPORTS", SimScore: 0.9, EvidenceSnippet: "s"}},
		FinalPrediction: intPtr(1),
		FinalScore:      0.5,
	})

	out := EvidenceJSON(cleaned)
	require.True(t, json.Valid([]byte(out)))
	require.Contains(t, out, `"verdict":"Correct"`)
	require.NotContains(t, out, "strict_formatting")
}

func TestEvidenceJSONStrictFormattingWithoutSummaryOrFix(t *testing.T) {
	cleaned := CleanStance(&StanceResult{
		Claim:           "bare claim",
		Evidence:        []Evidence{{LabelDescription: "REFUTES", DomainName: "b.org", SimScore: 0.9, EvidenceSnippet: "s"}},
		FinalPrediction: intPtr(0),
		FinalScore:      0.2,
	})

	require.Len(t, cleaned, 1)
	require.NotEmpty(t, cleaned[0].StrictFormatting)

	out := EvidenceJSON(cleaned)
	require.True(t, json.Valid([]byte(out)))
	require.Contains(t, out, "strict_formatting")
	require.Contains(t, out, "DO NOT PROVIDE ANY ANALYSIS")
	require.Contains(t, out, "Claim: bare claim")
	require.Contains(t, out, "Verdict: Incorrect")
	// the plain shape must not leak alongside the instruction block
	require.NotContains(t, out, `"verdict"`)
}

func TestSummaryUnmarshalBothShapes(t *testing.T) {
	var a StanceResult
	require.NoError(t, json.Unmarshal([]byte(`{"summary":"one line"}`), &a))
	require.Equal(t, Summary("one line"), a.Summary)

	var b StanceResult
	require.NoError(t, json.Unmarshal([]byte(`{"summary":["two","parts"]}`), &b))
	require.Equal(t, Summary("two parts"), b.Summary)
}
