package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ulemsee/internal/client"
	"ulemsee/internal/models"
)

const (
	defaultHistoryLimit = 50
	msgNoHistory        = "No questions asked yet."
)

func newAskCommand(api *client.Client) *cobra.Command {
	var showMeta bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask Ule Msee a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := api.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Response)
			if showMeta {
				fmt.Fprintf(out, "\n(%s, %.2fs)\n", resp.ModelUsed, resp.ResponseTime)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMeta, "meta", false, "Show the model used and response time")
	return cmd
}

func newHistoryCommand(api *client.Client) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect Ule Msee's question history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(api),
		newHistoryDeleteCommand(api),
		newHistoryClearCommand(api),
	)
	return historyCmd
}

func newHistoryListCommand(api *client.Client) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent questions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := api.ListHistory(cmd.Context(), limit)
			if err != nil {
				return describe(err)
			}
			printHistory(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Max entries to show")
	return cmd
}

func newHistoryDeleteCommand(api *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := api.DeleteHistoryItem(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newHistoryClearCommand(api *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := api.ClearHistory(cmd.Context())
			if err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newHealthCommand(api *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the server and its AI service are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := api.Health(cmd.Context())
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (ai available: %t, uptime %s)\n",
				health.Status, health.GroqAvailable, formatUptime(health.UptimeSeconds))
			if health.Status != "healthy" {
				return fmt.Errorf("server is %s", health.Status)
			}
			return nil
		},
	}
}

func newStatusCommand(api *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server uptime and request count",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := api.Status(cmd.Context())
			if err != nil {
				return describe(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, status.Status)
			fmt.Fprintf(out, "uptime:   %s\n", formatUptime(status.UptimeSeconds))
			fmt.Fprintf(out, "requests: %d\n", status.RequestCount)
			return nil
		},
	}
}

func printHistory(w io.Writer, items []models.HistoryEntry) {
	if len(items) == 0 {
		fmt.Fprintln(w, msgNoHistory)
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "%s  %s  [%s]\n", item.Timestamp.Local().Format("2006-01-02 15:04"), item.ID, item.ModelUsed)
		fmt.Fprintf(w, "  Q: %s\n", truncate(item.Question, 80))
		fmt.Fprintf(w, "  A: %s\n", truncate(item.Response, 120))
	}
}

// describe adds a hint for the failures a user can do something about.
func describe(err error) error {
	switch {
	case client.IsConnectionError(err):
		return fmt.Errorf("%w (is the server running?)", err)
	case client.IsRateLimited(err):
		return fmt.Errorf("%w (try again in a few seconds)", err)
	default:
		return err
	}
}

func formatUptime(seconds float64) string {
	return (time.Duration(seconds) * time.Second).String()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
