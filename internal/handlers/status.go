package handlers

import (
	"net/http"
	"time"

	"ulemsee/internal/models"
)

type requestCounter interface {
	Count() int64
}

// ServerInfo carries the process-wide numbers reported by status responses.
type ServerInfo struct {
	StartedAt time.Time
	Requests  requestCounter
	now       func() time.Time
}

func NewServerInfo(startedAt time.Time, requests requestCounter) *ServerInfo {
	return &ServerInfo{StartedAt: startedAt, Requests: requests, now: time.Now}
}

func (i *ServerInfo) Uptime() float64 {
	return i.now().Sub(i.StartedAt).Seconds()
}

func (i *ServerInfo) Status(message string) models.StatusResponse {
	var count int64
	if i.Requests != nil {
		count = i.Requests.Count()
	}
	return models.StatusResponse{
		Status:        message,
		Timestamp:     i.now().Format(time.RFC3339),
		UptimeSeconds: i.Uptime(),
		RequestCount:  count,
	}
}

type availability interface {
	Available() bool
}

type StatusHandler struct {
	info     *ServerInfo
	upstream availability
}

func NewStatusHandler(info *ServerInfo, upstream availability) *StatusHandler {
	return &StatusHandler{info: info, upstream: upstream}
}

// Root is the liveness/info endpoint.
func (h *StatusHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info.Status("Ule Msee AI Assistant is running and ready to provide wisdom"))
}

// Health reports "degraded" when no upstream completer could be configured.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	available := h.upstream != nil && h.upstream.Available()

	status := "healthy"
	if !available {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:        status,
		Timestamp:     h.info.now().Format(time.RFC3339),
		GroqAvailable: available,
		UptimeSeconds: h.info.Uptime(),
	})
}
