package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouter implements the Extractor interface using OpenRouter's
// OpenAI-compatible chat completions API
type OpenRouter struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenRouter creates a new OpenRouter Extractor instance
func NewOpenRouter(apiKey string, modelName string) (*OpenRouter, error) {
	return NewOpenRouterWithBaseURL(defaultOpenRouterURL, apiKey, modelName)
}

// NewOpenRouterWithBaseURL creates an OpenRouter Extractor against a
// custom endpoint, used by tests
func NewOpenRouterWithBaseURL(baseURL, apiKey, modelName string) (*OpenRouter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}
	if modelName == "" {
		modelName = "google/gemini-2.0-flash-001"
	}
	if baseURL == "" {
		baseURL = defaultOpenRouterURL
	}

	return &OpenRouter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   modelName,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// chatRequest represents the request body for the chat completions API
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string for system, []contentPart for user
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *contentImage `json:"image_url,omitempty"`
}

type contentImage struct {
	URL string `json:"url"`
}

// chatResponse represents the response from the chat completions API
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractReceipt analyzes a receipt and extracts its line items
func (o *OpenRouter) ExtractReceipt(imageData []byte, contentType string) (*ReceiptData, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Prepare image data (convert to PNG if needed)
	pngData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}
	imageBase64 := base64.StdEncoding.EncodeToString(pngData)

	reqBody := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: receiptPrompt,
			},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: "Analyze this receipt image."},
					{Type: "image_url", ImageURL: &contentImage{
						URL: "data:image/png;base64," + imageBase64,
					}},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openrouter API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openrouter API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrExtractionFailed)
	}

	return parseReceiptJSON(chatResp.Choices[0].Message.Content, time.Now())
}

// Close closes the OpenRouter client (no-op for HTTP client)
func (o *OpenRouter) Close() error {
	return nil
}
