package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"linkedin-scraper/internal/orchestrator"
	"linkedin-scraper/internal/utils"
)

var (
	profileOpts orchestrator.ProfileOptions
	profileOut  string
)

var profileCmd = &cobra.Command{
	Use:   "profile <url-or-id> [--educations] [--skills] [--interests] [--out <file>]",
	Short: "Extract one profile and print it as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, a.Close()) }()

		start := time.Now()
		result := a.service.GetProfile(ctx, args[0], profileOpts, progressPrinter())
		utils.PrintErr(fmt.Sprintf("finished in %s", utils.FormatDuration(time.Since(start))))
		return writeResult(cmd.OutOrStdout(), profileOut, result)
	},
}

func init() {
	flags := profileCmd.Flags()
	flags.BoolVar(&profileOpts.Educations, "educations", false, "also extract the education section")
	flags.BoolVar(&profileOpts.Skills, "skills", false, "also extract the skills section")
	flags.BoolVar(&profileOpts.Interests, "interests", false, "also extract the interests section")
	flags.BoolVar(&profileOpts.ForceLogin, "force-login", false, "ignore saved cookies and sign in with credentials")
	flags.StringVar(&profileOut, "out", "", "write JSON to this file instead of stdout")
	rootCmd.AddCommand(profileCmd)
}
