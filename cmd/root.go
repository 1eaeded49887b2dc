package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/uclalibrary/ftva-etl/internal/etlcmd"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ftva-etl",
		Short: "Normalizes FTVA inventory metadata into archive-ready records",
		Long: `ftva-etl merges Film & Television Archive inventory data with the
library's catalog records and digital asset metadata.

It resolves titles, normalizes date statements, reconciles call numbers
against catalog holdings and emits one JSON record per inventory item.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(etlcmd.NewTransformCmd())
	cmd.AddCommand(etlcmd.NewBatchCmd())

	return cmd
}
