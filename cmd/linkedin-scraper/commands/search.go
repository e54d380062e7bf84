package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"linkedin-scraper/internal/utils"
)

var searchOut string

var searchCmd = &cobra.Command{
	Use:   "search <name> [--out <file>]",
	Short: "Search people by name and print the first page of results as JSON.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, a.Close()) }()

		start := time.Now()
		result := a.service.SearchProfiles(ctx, strings.Join(args, " "), progressPrinter())
		utils.PrintErr(fmt.Sprintf("finished in %s", utils.FormatDuration(time.Since(start))))
		return writeResult(cmd.OutOrStdout(), searchOut, result)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchOut, "out", "", "write JSON to this file instead of stdout")
	rootCmd.AddCommand(searchCmd)
}
