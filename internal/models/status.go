package models

type StatusResponse struct {
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	RequestCount  int64   `json:"request_count"`
}

type HealthResponse struct {
	Status        string  `json:"status"` // "healthy" | "degraded"
	Timestamp     string  `json:"timestamp"`
	GroqAvailable bool    `json:"groq_available"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
