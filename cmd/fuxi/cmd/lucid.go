package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenthands/fuxi/internal/core"
	"github.com/agenthands/fuxi/internal/validation"
)

var lucidProject string

var lucidCmd = &cobra.Command{
	Use:   "lucid <export.csv>",
	Short: "Ingest a Lucid diagram export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validation.ValidateProjectID(lucidProject); err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open export: %w", err)
		}
		defer f.Close()

		ctx := cmd.Context()
		c, cleanup, err := components(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		view, err := c.Harmonizer.IngestLucid(ctx, lucidProject, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ingested %d systems and %d integrations into project %s\n",
			view.Stats.Systems, view.Stats.Integrations, view.ProjectID)
		return nil
	},
}

func init() {
	lucidCmd.Flags().StringVarP(&lucidProject, "project", "p", core.DefaultProject, "project the diagram belongs to")
}
