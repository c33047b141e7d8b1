package cli

import (
	"github.com/spf13/cobra"

	"ulemsee/internal/client"
	"ulemsee/internal/config"
)

// NewRootCmd wires the ulemsee command tree against the configured API.
func NewRootCmd(cfg *config.ClientConfig) *cobra.Command {
	api := client.New(cfg.BaseURL, client.WithTimeout(cfg.Timeout))

	root := &cobra.Command{
		Use:           "ulemsee",
		Short:         "Ule Msee - ask the wise elder",
		Long:          "ulemsee asks questions of the Ule Msee API and manages its question history.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAskCommand(api),
		newHistoryCommand(api),
		newHealthCommand(api),
		newStatusCommand(api),
		newWatchCommand(api, cfg),
	)
	return root
}
