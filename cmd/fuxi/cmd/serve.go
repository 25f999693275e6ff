package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agenthands/fuxi/internal/server"
)

var (
	servePort  string
	watchInput bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if servePort != "" {
			cfg.Server.Port = servePort
		}
		if cmd.Flags().Changed("watch") {
			cfg.Harmonization.WatchInputs = watchInput
		}

		ctx := cmd.Context()
		c, cleanup, err := components(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		return server.NewServer(c).Serve(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port, overrides the config")
	serveCmd.Flags().BoolVar(&watchInput, "watch", false, "re-run harmonization when input files change")
}
