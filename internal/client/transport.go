package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const DefaultTimeout = 30 * time.Second

// transport performs single bounded HTTP calls against the API and normalises
// every failure into *Error.
type transport struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func newTransport(baseURL string, httpClient *http.Client, timeout time.Duration) *transport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
	}
}

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail string `json:"detail"`
}

// do sends body (when non-nil) as JSON and decodes a 2xx response into out
// (when non-nil).
func (t *transport) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("failed to encode request: %v", err), Code: CodeUnknownError}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return &Error{Message: fmt.Sprintf("failed to build request: %v", err), Code: CodeUnknownError}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Message: fmt.Sprintf("invalid response from server: %v", err), Code: CodeUnknownError}
	}
	return nil
}

func statusError(status int, body []byte) *Error {
	message := fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		switch {
		case env.Error != nil && env.Error.Message != "":
			message = env.Error.Message
		case env.Detail != "":
			message = env.Detail
		}
	}

	if mapped, ok := statusMessages[status]; ok {
		message = mapped
	}

	return &Error{Message: message, Status: status, Code: strconv.Itoa(status)}
}

func classifyTransportError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Message: "Request timed out. Please try again.", Status: http.StatusGatewayTimeout, Code: CodeTimeout}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Message: "Request timed out. Please try again.", Status: http.StatusGatewayTimeout, Code: CodeTimeout}
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return &Error{Message: "Unable to connect to server. Please check your connection.", Code: CodeConnectionError}
	}

	return &Error{Message: fmt.Sprintf("unexpected error: %v", err), Code: CodeUnknownError}
}
