package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"linkedin-scraper/internal/config"
	"linkedin-scraper/internal/logging"
	"linkedin-scraper/internal/models"
	"linkedin-scraper/internal/orchestrator"
	"linkedin-scraper/internal/utils"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "linkedin-scraper",
	Short:         "Scrape LinkedIn profiles and people search through an authenticated browser session.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file; environment variables override it")
}

// ExecuteContext runs the CLI until it finishes or the process is signalled
func ExecuteContext(ctx context.Context) {
	ctx, stop := utils.SignalContext(ctx)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		utils.PrintErr(err.Error())
		os.Exit(1)
	}
}

// app is everything a command needs once configuration has been validated
type app struct {
	cfg     models.Config
	logger  *zap.Logger
	service *orchestrator.Service
	logFile io.Closer
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger, logFile, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}

	service, err := orchestrator.Open(ctx, cfg, logger)
	if err != nil {
		return nil, multierr.Append(err, logFile.Close())
	}

	return &app{cfg: cfg, logger: logger, service: service, logFile: logFile}, nil
}

// Close releases the session store and flushes the logs
func (a *app) Close() error {
	err := a.service.Close()
	// Sync on a stderr core fails with EINVAL on some platforms
	_ = a.logger.Sync()
	return multierr.Append(err, a.logFile.Close())
}

// progressPrinter writes milestones to stderr
func progressPrinter() orchestrator.ProgressSink {
	return orchestrator.ProgressFunc(func(_ context.Context, p orchestrator.Progress) {
		utils.PrintErr(utils.FormatProgress(p.Percent, p.Message))
	})
}

// writeResult prints result as indented JSON to stdout, or to out when set.
// A failed result is written too and then reported as an error.
func writeResult(stdout io.Writer, out string, result orchestrator.ToolResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')

	if out == "" {
		if _, err := stdout.Write(data); err != nil {
			return err
		}
	} else if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	if result.Failed() {
		return fmt.Errorf("%s", result.Err)
	}
	return nil
}
