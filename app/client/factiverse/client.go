package factiverse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"factbot/app/config"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const (
	maxRetries = 3
	retryDelay = time.Second
)

// Error codes attached to outgoing failures so the top-level handler can
// pick the user-visible fallback.
const (
	CodeExternalAPI = "external_api"
	CodeTimeout     = "timeout"
	CodeParse       = "parse"
)

type Client struct {
	baseURL    string
	token      string
	threshold  float64
	httpClient *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return New(cfg.Factiverse.BaseURL, cfg.Factiverse.Token, cfg.Factiverse.Timeout, cfg.Factiverse.ClaimScoreThreshold), nil
}

func New(baseURL, token string, timeout time.Duration, threshold float64) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		threshold: threshold,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate produces free text for a prompt. Double asterisks are downgraded
// to single ones so the output renders as bold on both platforms.
func (c *Client) Generate(ctx context.Context, prompt, text string) (string, error) {
	var resp generateResponse

	err := c.post(ctx, "/generate", generateRequest{
		Text:   text,
		Prompt: prompt,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return strings.ReplaceAll(resp.FullOutput, "**", "*"), nil
}

// StanceDetection checks one claim against retrieved evidence.
func (c *Client) StanceDetection(ctx context.Context, claim string) (*StanceResult, error) {
	var resp StanceResult

	err := c.postWithRetry(ctx, "/stance_detection", stanceRequest{Claim: claim}, &resp)
	if err != nil {
		return nil, fmt.Errorf("stance_detection: %w", err)
	}

	return &resp, nil
}

// FactCheck verifies the claims found in the content behind url.
func (c *Client) FactCheck(ctx context.Context, url string, claims []string) (*FactCheckResult, error) {
	lang := "en"
	if len(claims) > 0 {
		lang = detectLang(claims[0])
	}

	var resp FactCheckResult

	err := c.postWithRetry(ctx, "/fact_check", factCheckRequest{
		Claims: claims,
		URL:    url,
		Lang:   lang,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fact_check: %w", err)
	}

	return &resp, nil
}

// DetectClaims extracts check-worthy claims from text. Claims below the
// configured score threshold are filtered server-side.
func (c *Client) DetectClaims(ctx context.Context, text string) ([]string, error) {
	var resp claimDetectionResponse

	err := c.post(ctx, "/claim_detection", claimDetectionRequest{
		Lang:                detectLang(text),
		Text:                text,
		ClaimScoreThreshold: c.threshold,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("claim_detection: %w", err)
	}

	claims := pie.Map(resp.DetectedClaims, func(d detectedClaim) string {
		return strings.TrimSpace(d.Claim)
	})

	return pie.Filter(claims, func(s string) bool { return s != "" }), nil
}

func (c *Client) postWithRetry(ctx context.Context, path string, payload, out any) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("Retrying fact-check API call",
				"path", path,
				"attempt", attempt,
			)

			select {
			case <-ctx.Done():
				return oops.Code(CodeTimeout).Wrap(ctx.Err())
			case <-time.After(retryDelay << (attempt - 1)):
			}
		}

		lastErr = c.post(ctx, path, payload, out)
		if lastErr == nil {
			return nil
		}

		if !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return oops.Code(CodeParse).Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return oops.Code(CodeExternalAPI).Wrap(err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return oops.Code(CodeTimeout).Wrap(err)
		}

		return oops.Code(CodeExternalAPI).Wrap(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return oops.Code(CodeExternalAPI).Wrap(err)
	}

	if resp.StatusCode >= 400 {
		return oops.
			Code(CodeExternalAPI).
			With("status", resp.StatusCode).
			Errorf("fact-check API error: %s", strings.TrimSpace(string(data)))
	}

	if err = json.Unmarshal(data, out); err != nil {
		return oops.Code(CodeParse).Wrap(err)
	}

	return nil
}

// retryable reports whether the call may succeed on another attempt:
// transport failures and 5xx responses qualify, 4xx and parse errors do not.
func retryable(err error) bool {
	var oopsErr oops.OopsError
	if !errors.As(err, &oopsErr) {
		return false
	}

	if oopsErr.Code() != CodeExternalAPI {
		return false
	}

	if status, ok := oopsErr.Context()["status"].(int); ok {
		return status >= 500
	}

	return true
}
