package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	groqKeyPrefix      = "gsk_"
	groqKeyPlaceholder = "your_groq_api_key_here"

	answerTemperature = 0.7
	answerMaxTokens   = 1500
	answerTopP        = 0.9
)

const systemPreamble = `You are Ule Msee, an AI assistant whose name means 'wisdom' in Swahili.
You provide accurate, thoughtful, and well-researched answers. Format your responses
using markdown when appropriate for better readability. Be concise but comprehensive,
and always strive to be helpful and informative.`

// Completer sends one completion request for one model.
//
// Implementations report failures as *UpstreamError (any non-200 reply),
// *UpstreamTimeoutError, *NetworkError or *InternalError so that the answer
// service can decide whether the fallback model is worth trying.
type Completer interface {
	Complete(ctx context.Context, model, question string) (string, error)
}

type GroqClient struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// ValidateGroqAPIKey rejects missing, placeholder and malformed keys.
func ValidateGroqAPIKey(apiKey string) error {
	if apiKey == "" || apiKey == groqKeyPlaceholder {
		return fmt.Errorf("GROQ_API_KEY environment variable is not set or is using placeholder value")
	}
	if !strings.HasPrefix(apiKey, groqKeyPrefix) {
		return fmt.Errorf("invalid GROQ_API_KEY format (should start with '%s')", groqKeyPrefix)
	}
	return nil
}

func NewGroqClient(apiKey, baseURL string, timeout time.Duration) (*GroqClient, error) {
	if err := ValidateGroqAPIKey(apiKey); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GroqClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type groqErrorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *GroqClient) Complete(ctx context.Context, model, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPreamble},
			{Role: "user", Content: question},
		},
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
		TopP:        answerTopP,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Status: resp.StatusCode, Message: upstreamMessage(respBody)}
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &InternalError{Message: "Ule Msee returned an unreadable response"}
	}
	if len(result.Choices) == 0 {
		return "", &InternalError{Message: "Ule Msee couldn't generate a response"}
	}

	return result.Choices[0].Message.Content, nil
}

func upstreamMessage(body []byte) string {
	var errResp groqErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return "Unknown error"
}

// classifyTransportError maps a failed round trip onto the timeout and
// network categories. Cancellation by the caller is passed through untouched.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &UpstreamTimeoutError{Message: "Ule Msee is taking too long to respond. Please try again."}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &UpstreamTimeoutError{Message: "Ule Msee is taking too long to respond. Please try again."}
	}
	return &NetworkError{Message: "Unable to connect to Ule Msee's AI service", Err: err}
}
