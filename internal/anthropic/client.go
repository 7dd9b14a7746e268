// Package anthropic provides a client for the Anthropic Messages API.
package anthropic

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

// Client represents an Anthropic API client
type Client struct {
	apiKey           string
	baseURL          string
	apiVersion       string
	defaultModel     string
	defaultMaxTokens int
	temperature      float64
	maxRetries       int
	httpClient       *http.Client
}

// NewClient creates a new Anthropic client from config
func NewClient(cfg config.ProviderConfig) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "2023-06-01"
	}

	defaultMaxTokens := cfg.MaxTokens
	if defaultMaxTokens <= 0 {
		defaultMaxTokens = 4096
	}

	return &Client{
		apiKey:           cfg.APIKey,
		baseURL:          baseURL,
		apiVersion:       apiVersion,
		defaultModel:     cfg.Model,
		defaultMaxTokens: defaultMaxTokens,
		temperature:      cfg.Temperature,
		maxRetries:       cfg.MaxRetries,
		httpClient:       &http.Client{Timeout: cfg.Timeout},
	}
}

// Chat sends a non-streaming messages request
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = c.defaultModel
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.defaultMaxTokens
	}

	wire := messagesRequest{
		Model:     req.Model,
		System:    req.System,
		Messages:  req.Messages,
		MaxTokens: req.MaxTokens,
	}
	temp := req.Temperature
	if temp == 0 {
		temp = c.temperature
	}
	if temp > 0 {
		wire.Temperature = &temp
	}

	var resp MessageResponse
	if err := c.makeRequest(ctx, "POST", "/v1/messages", wire, &resp); err != nil {
		return nil, fmt.Errorf("generating chat completion: %w", err)
	}

	return &ChatResponse{
		Content:      resp.Text(),
		Model:        resp.Model,
		StopReason:   resp.StopReason,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
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
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", c.apiVersion)

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
			loggy.Debug("Anthropic API error response",
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
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.ErrorInfo.Message == "" {
		return fmt.Errorf("API error (status %d): %s", statusCode, string(body))
	}
	return &apiErr
}
