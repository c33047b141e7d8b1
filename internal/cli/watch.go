package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"ulemsee/internal/client"
	"ulemsee/internal/config"
	"ulemsee/internal/models"
)

func newWatchCommand(api *client.Client, cfg *config.ClientConfig) *cobra.Command {
	var (
		interval time.Duration
		events   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow connection status and live history updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := &lockedWriter{w: cmd.OutOrStdout()}

			monitor := client.NewMonitor(api, interval)
			var last *bool
			monitor.OnChange(func(s client.ConnectionState) {
				if s.Checking || (last != nil && *last == s.Connected) {
					return
				}
				connected := s.Connected
				last = &connected
				printConnection(out, s)
			})
			monitor.Start(ctx)
			defer monitor.Stop()

			if events {
				go followEvents(ctx, out, websocketURL(cfg.BaseURL))
			}

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", cfg.HealthInterval, "Health check interval")
	cmd.Flags().BoolVar(&events, "events", true, "Print history changes as they happen")
	return cmd
}

func printConnection(w io.Writer, s client.ConnectionState) {
	at := ""
	if s.LastCheckedAt != nil {
		at = s.LastCheckedAt.Local().Format("15:04:05")
	}
	if s.Connected {
		fmt.Fprintf(w, "[%s] ✓ connected\n", at)
		return
	}
	fmt.Fprintf(w, "[%s] ✗ %s\n", at, s.LastError)
}

// followEvents prints history events from the server's websocket feed,
// reconnecting after failures until ctx is done.
func followEvents(ctx context.Context, w io.Writer, url string) {
	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err == nil {
			readEvents(ctx, w, conn)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func readEvents(ctx context.Context, w io.Writer, conn *websocket.Conn) {
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		printEvent(w, data)
	}
}

func printEvent(w io.Writer, data []byte) {
	var event struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return
	}

	switch event.Type {
	case models.HistoryAdded:
		var entry models.HistoryEntry
		if json.Unmarshal(event.Payload, &entry) == nil {
			fmt.Fprintf(w, "+ %s  %s\n", entry.ID, truncate(entry.Question, 80))
		}
	case models.HistoryDeleted:
		var p models.HistoryDeletedPayload
		if json.Unmarshal(event.Payload, &p) == nil {
			fmt.Fprintf(w, "- %s\n", p.ID)
		}
	case models.HistoryCleared:
		var p models.HistoryClearedPayload
		if json.Unmarshal(event.Payload, &p) == nil {
			fmt.Fprintf(w, "history cleared (%d removed)\n", p.Removed)
		}
	}
}

func websocketURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/api/ws"
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
