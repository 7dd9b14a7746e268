// Package gemini provides a client for the Google Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/tildaslashalef/overpass/internal/config"
	"github.com/tildaslashalef/overpass/internal/loggy"
)

// Client represents a Gemini API client
type Client struct {
	apiKey           string
	baseURL          string
	defaultModel     string
	defaultMaxTokens int
	temperature      float64
	maxRetries       int
	httpClient       *http.Client
}

// NewClient creates a new Gemini client from config
func NewClient(cfg config.ProviderConfig) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	defaultMaxTokens := cfg.MaxTokens
	if defaultMaxTokens <= 0 {
		defaultMaxTokens = 8192
	}

	return &Client{
		apiKey:           cfg.APIKey,
		baseURL:          baseURL,
		defaultModel:     cfg.Model,
		defaultMaxTokens: defaultMaxTokens,
		temperature:      cfg.Temperature,
		maxRetries:       cfg.MaxRetries,
		httpClient:       &http.Client{Timeout: cfg.Timeout},
	}
}

// GenerateContent sends a non-streaming generateContent request
func (c *Client) GenerateContent(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Model == "" {
		req.Model = c.defaultModel
	}
	if req.MaxOutputTokens <= 0 {
		req.MaxOutputTokens = c.defaultMaxTokens
	}

	wire := generateContentRequest{
		Contents:         req.Contents,
		GenerationConfig: &generationConfig{MaxOutputTokens: req.MaxOutputTokens},
	}
	if req.SystemInstruction != "" {
		wire.SystemInstruction = &Content{Parts: []Part{{Text: req.SystemInstruction}}}
	}
	temp := req.Temperature
	if temp == 0 {
		temp = c.temperature
	}
	if temp > 0 {
		wire.GenerationConfig.Temperature = &temp
	}

	var resp generateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", req.Model)
	if err := c.makeRequest(ctx, "POST", path, wire, &resp); err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned")
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	model := resp.ModelVersion
	if model == "" {
		model = req.Model
	}

	return &GenerateResponse{
		Content:      text.String(),
		Model:        model,
		FinishReason: candidate.FinishReason,
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
	}, nil
}

// makeRequest makes an HTTP request with exponential backoff retries.
// Client errors other than 429 are permanent and not retried.
func (c *Client) makeRequest(ctx context.Context, method, path string, body, response interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	url := c.baseURL + path

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			loggy.Debug("Gemini API error response",
				"status", resp.StatusCode,
				"body", string(respBody))

			apiErr := handleErrorResponse(resp.StatusCode, respBody)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		if err := json.Unmarshal(respBody, response); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
		}

		return nil
	}

	return backoff.Retry(operation,
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)), ctx))
}

// handleErrorResponse parses an API error body into a structured error
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.ErrorDetail.Message == "" {
		return fmt.Errorf("API error (status %d): %s", statusCode, string(body))
	}
	return &apiErr
}
