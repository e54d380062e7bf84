package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"linkedin-scraper/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the profile and search tools over HTTP until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, a.Close()) }()

		return server.New(a.service, a.cfg, a.logger).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
