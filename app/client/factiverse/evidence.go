package factiverse

import (
	"encoding/json"
	"fmt"
	"strings"
)

const maxSnippetLength = 1000

// minimum retrieval similarity before a snippet is worth quoting
const minSimScore = 0.5

type CleanedEvidence struct {
	LabelDescription  string `json:"labelDescription"`
	DomainName        string `json:"domain_name"`
	DomainReliability string `json:"domainReliability"`
	URL               string `json:"url"`
	EvidenceSnippet   string `json:"evidenceSnippet"`
}

// CleanedClaim is the trimmed-down verdict handed to the generator as
// evidence. Field names are part of the generation prompt contract.
type CleanedClaim struct {
	Claim                string            `json:"claim"`
	Verdict              string            `json:"verdict"`
	ConfidencePercentage float64           `json:"confidence_percentage"`
	Summary              string            `json:"summary,omitempty"`
	Fix                  string            `json:"fix,omitempty"`
	SupportingEvidence   []CleanedEvidence `json:"supporting_evidence"`
	RefutingEvidence     []CleanedEvidence `json:"refuting_evidence"`
	StrictFormatting     string            `json:"-"`
}

// MarshalJSON collapses claims without a summary or fix to a rigid
// instruction block: left to its own devices on such claims, the generator
// invents analysis instead of reporting the verdict.
func (c CleanedClaim) MarshalJSON() ([]byte, error) {
	if c.StrictFormatting != "" {
		return json.Marshal(map[string]string{"strict_formatting": c.StrictFormatting})
	}

	type plain CleanedClaim

	return json.Marshal(plain(c))
}

// CleanStance extracts the relevant parts of a stance_detection result.
// Claims without any SUPPORTS/REFUTES evidence are dropped entirely.
func CleanStance(result *StanceResult) []CleanedClaim {
	if result == nil {
		return nil
	}

	cleaned := cleanOne(result, result.FinalScore)
	if cleaned == nil {
		return nil
	}

	return []CleanedClaim{*cleaned}
}

// CleanFactCheck extracts the relevant parts of a fact_check result. The
// endpoint reports one score for the whole batch.
func CleanFactCheck(result *FactCheckResult) []CleanedClaim {
	if result == nil {
		return nil
	}

	var out []CleanedClaim

	for i := range result.Claims {
		if cleaned := cleanOne(&result.Claims[i], result.FinalScore); cleaned != nil {
			out = append(out, *cleaned)
		}
	}

	return out
}

// EvidenceJSON renders cleaned claims as the JSON evidence string embedded
// in generation requests.
func EvidenceJSON(claims []CleanedClaim) string {
	if len(claims) == 0 {
		return "[]"
	}

	data, err := json.Marshal(claims)
	if err != nil {
		return "[]"
	}

	return string(data)
}

func cleanOne(result *StanceResult, finalScore float64) *CleanedClaim {
	if len(result.Evidence) == 0 {
		return nil
	}

	verdict := "Uncertain"
	if result.FinalPrediction != nil {
		if *result.FinalPrediction == 0 {
			verdict = "Incorrect"
		} else {
			verdict = "Correct"
		}
	}

	confidence := finalScore
	if verdict == "Incorrect" {
		confidence = 1 - finalScore
	}

	cleaned := CleanedClaim{
		Claim:                sanitizeQuotes(result.Claim),
		Verdict:              verdict,
		ConfidencePercentage: roundPercent(confidence),
		Summary:              sanitizeQuotes(string(result.Summary)),
		Fix:                  sanitizeQuotes(result.Fix),
		SupportingEvidence:   []CleanedEvidence{},
		RefutingEvidence:     []CleanedEvidence{},
	}

	for _, evidence := range result.Evidence {
		label := evidence.LabelDescription
		if label != "SUPPORTS" && label != "REFUTES" {
			continue
		}

		snippet := ""
		if evidence.SimScore > minSimScore {
			snippet = sanitizeQuotes(evidence.EvidenceSnippet)
			if len(snippet) > maxSnippetLength {
				snippet = snippet[:maxSnippetLength] + "..."
			}
		}

		reliability := evidence.DomainReliability.Reliability
		if reliability == "" {
			reliability = "Unknown"
		}

		entry := CleanedEvidence{
			LabelDescription:  label,
			DomainName:        evidence.DomainName,
			DomainReliability: reliability,
			URL:               evidence.URL,
			EvidenceSnippet:   snippet,
		}

		if label == "SUPPORTS" {
			cleaned.SupportingEvidence = append(cleaned.SupportingEvidence, entry)
		} else {
			cleaned.RefutingEvidence = append(cleaned.RefutingEvidence, entry)
		}
	}

	if len(cleaned.SupportingEvidence) == 0 && len(cleaned.RefutingEvidence) == 0 {
		return nil
	}

	if cleaned.Summary == "" && cleaned.Fix == "" {
		cleaned.StrictFormatting = strictFormatting(&cleaned)
	}

	return &cleaned
}

func strictFormatting(c *CleanedClaim) string {
	supporting, _ := json.Marshal(c.SupportingEvidence)
	refuting, _ := json.Marshal(c.RefutingEvidence)

	return fmt.Sprintf(`IMPORTANT:
DO NOT PROVIDE ANY ANALYSIS OR ELABORATION ON THE CLAIM.
YOU MUST RESPOND IDENTICAL TO THE IDENTICAL PART,
AND YOU MUST RESPOND NATURALLY TO THE NATURAL PART:

--- IDENTICAL ---
Claim: %s
Verdict: %s (%v%% confidence)
--- IDENTICAL ---

--- NATURAL ---
URL AND EVIDENCE SNIPPET SUMMARY ONLY (MAX 3):
- Supporting Evidence: %s sources
- Refuting Evidence: %s sources

End with an encouraging ending
--- NATURAL ---`,
		c.Claim, c.Verdict, c.ConfidencePercentage, supporting, refuting)
}

func sanitizeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}

func roundPercent(score float64) float64 {
	percent := score * 100

	// two decimal places
	return float64(int(percent*100+0.5)) / 100
}
