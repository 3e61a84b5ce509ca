package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoToken is returned when no API token is configured. Callers treat it
// as a configuration downgrade, not a network failure.
var ErrNoToken = errors.New("no inference API token configured")

// Client wraps a hosted text-classification API (HuggingFace Inference API
// wire shape). One blocking call per classification, bounded by the client
// timeout; a failed attempt is never retried here - the caller owns the
// fallback policy.
type Client struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

// NewClient creates a new inference client. timeout bounds each call;
// zero means the 30 second default.
func NewClient(apiURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiURL: apiURL,
		token:  token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// HasToken reports whether a token is configured.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// classifyRequest is the request body for a classification call.
type classifyRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters classifyParams  `json:"parameters"`
	Options    map[string]bool `json:"options"`
}

type classifyParams struct {
	TopK int `json:"top_k"`
}

// LabelScore is one candidate from a classifier response.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify sends text to the given model and returns its (label, score)
// candidates. No token short-circuits with ErrNoToken before any network
// activity.
func (c *Client) Classify(ctx context.Context, model, text string, topK int) ([]LabelScore, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	req := classifyRequest{
		Inputs:     text,
		Parameters: classifyParams{TopK: topK},
		Options:    map[string]bool{"wait_for_model": true},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("inference API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return parseCandidates(raw)
}

// parseCandidates accepts both the nested [[{label,score}]] shape the API
// returns for single inputs and the flat [{label,score}] variant.
func parseCandidates(raw []byte) ([]LabelScore, error) {
	var nested [][]LabelScore
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return nil, fmt.Errorf("inference API returned no candidates")
		}
		return nested[0], nil
	}

	var flat []LabelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("inference API returned no candidates")
	}
	return flat, nil
}

// HealthCheck probes the given model with a trivial input to confirm the API
// is reachable and the token is accepted.
func (c *Client) HealthCheck(ctx context.Context, model string) error {
	_, err := c.Classify(ctx, model, "ok", 1)
	if err != nil {
		return fmt.Errorf("probing %s: %w", model, err)
	}
	return nil
}
