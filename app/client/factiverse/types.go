package factiverse

import (
	"encoding/json"
	"strings"
)

const stanceCollection = "stance_detection"

type generateRequest struct {
	Logging bool   `json:"logging"`
	Text    string `json:"text"`
	Prompt  string `json:"prompt"`
}

type generateResponse struct {
	FullOutput string `json:"full_output"`
}

type stanceRequest struct {
	Logging bool   `json:"logging"`
	Claim   string `json:"claim"`
}

type factCheckRequest struct {
	Logging bool     `json:"logging"`
	Text    string   `json:"text"`
	Claims  []string `json:"claims"`
	URL     string   `json:"url"`
	Lang    string   `json:"lang"`
}

type claimDetectionRequest struct {
	Logging             bool    `json:"logging"`
	Lang                string  `json:"lang"`
	Text                string  `json:"text"`
	ClaimScoreThreshold float64 `json:"claimScoreThreshold"`
}

type claimDetectionResponse struct {
	DetectedClaims []detectedClaim `json:"detectedClaims"`
}

type detectedClaim struct {
	Claim string `json:"claim"`
}

type DomainReliability struct {
	Reliability string `json:"Reliability"`
}

type Evidence struct {
	LabelDescription  string            `json:"labelDescription"`
	DomainName        string            `json:"domainName"`
	DomainReliability DomainReliability `json:"domain_reliability"`
	URL               string            `json:"url"`
	EvidenceSnippet   string            `json:"evidenceSnippet"`
	SimScore          float64           `json:"simScore"`
}

// StanceResult is the response of the stance_detection endpoint: one claim
// with its evidence list and final verdict.
type StanceResult struct {
	Collection      string     `json:"collection"`
	Claim           string     `json:"claim"`
	Evidence        []Evidence `json:"evidence"`
	Summary         Summary    `json:"summary"`
	Fix             string     `json:"fix"`
	FinalPrediction *int       `json:"finalPrediction"`
	FinalScore      float64    `json:"finalScore"`
}

// FactCheckResult is the response of the fact_check endpoint: a batch of
// claims sharing one top-level score.
type FactCheckResult struct {
	Claims     []StanceResult `json:"claims"`
	FinalScore float64        `json:"finalScore"`
}

// Summary tolerates both the string and the list-of-strings shape the API
// returns depending on collection age.
type Summary string

func (s *Summary) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = Summary(single)
		return nil
	}

	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}

	*s = Summary(strings.Join(parts, " "))
	return nil
}
