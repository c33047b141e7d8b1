package models

import "time"

// HistoryEntry is one answered question kept for the lifetime of the server process.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	ModelUsed string    `json:"model_used"`
}

// History event types pushed over the websocket feed
const (
	HistoryAdded   = "history_added"
	HistoryDeleted = "history_deleted"
	HistoryCleared = "history_cleared"
)

type HistoryEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type HistoryDeletedPayload struct {
	ID string `json:"id"`
}

type HistoryClearedPayload struct {
	Removed int `json:"removed"`
}
