package gemini

import "fmt"

// Content is one turn of a Gemini conversation
type Content struct {
	Role  string `json:"role,omitempty"` // user or model
	Parts []Part `json:"parts"`
}

// Part is one piece of content within a turn
type Part struct {
	Text string `json:"text,omitempty"`
}

// GenerateRequest represents a content generation request to the client
type GenerateRequest struct {
	Model             string    `json:"model,omitempty"`
	SystemInstruction string    `json:"-"`
	Contents          []Content `json:"contents"`
	MaxOutputTokens   int       `json:"-"`
	Temperature       float64   `json:"-"`
}

// GenerateResponse is the client's view of a completed generation call
type GenerateResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason,omitempty"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// generationConfig is the wire format of the generation parameters
type generationConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

// generateContentRequest is the wire format of the generateContent request
type generateContentRequest struct {
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	Contents          []Content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// Candidate represents a response candidate
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// usageMetadata carries the token accounting returned by the API
type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// generateContentResponse represents the full generateContent response
type generateContentResponse struct {
	Candidates    []Candidate   `json:"candidates,omitempty"`
	UsageMetadata usageMetadata `json:"usageMetadata"`
	ModelVersion  string        `json:"modelVersion,omitempty"`
}

// APIError represents an error response from the API
type APIError struct {
	ErrorDetail struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error (%s): %s", e.ErrorDetail.Status, e.ErrorDetail.Message)
}
