package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

// GeminiCompleter answers questions through Google's Gemini API. It reports
// failures in the same categories as GroqClient so fallback behaves the same
// whichever provider is configured.
type GeminiCompleter struct {
	client   *genai.Client
	timeout  time.Duration
	rateChan chan struct{} // Token bucket
}

func NewGeminiCompleter(ctx context.Context, apiKey string, concurrentReqs int, timeout time.Duration) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Token bucket for concurrent upstream calls
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiCompleter{
		client:   client,
		timeout:  timeout,
		rateChan: rateChan,
	}, nil
}

func (g *GeminiCompleter) Close() {
	g.client.Close()
}

// acquireRate blocks until a rate slot is available
func (g *GeminiCompleter) acquireRate(ctx context.Context) error {
	select {
	case <-g.rateChan:
		return nil
	case <-ctx.Done():
		return classifyTransportError(ctx, ctx.Err())
	}
}

func (g *GeminiCompleter) releaseRate() {
	g.rateChan <- struct{}{}
}

func (g *GeminiCompleter) Complete(ctx context.Context, model, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.acquireRate(ctx); err != nil {
		return "", err
	}
	defer g.releaseRate()

	m := g.client.GenerativeModel(model)
	m.SetTemperature(answerTemperature)
	m.SetTopP(answerTopP)
	m.SetMaxOutputTokens(answerMaxTokens)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPreamble)}}

	resp, err := m.GenerateContent(ctx, genai.Text(question))
	if err != nil {
		return "", classifyGeminiError(ctx, err)
	}

	text := extractText(resp)
	if text == "" {
		return "", &InternalError{Message: "Ule Msee couldn't generate a response"}
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

func classifyGeminiError(ctx context.Context, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &UpstreamError{Status: gErr.Code, Message: gErr.Message}
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			return &UpstreamError{Status: code, Message: apiErr.Error()}
		}
		if st := apiErr.GRPCStatus(); st != nil {
			switch st.Code() {
			case codes.DeadlineExceeded:
				return &UpstreamTimeoutError{Message: "Ule Msee is taking too long to respond. Please try again."}
			case codes.Unavailable:
				return &NetworkError{Message: "Unable to connect to Ule Msee's AI service", Err: err}
			default:
				return &UpstreamError{Status: grpcToHTTPStatus(st.Code()), Message: st.Message()}
			}
		}
	}

	return classifyTransportError(ctx, err)
}

func grpcToHTTPStatus(code codes.Code) int {
	switch code {
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
