// @title Event Registration API
// @version 1.0
// @description Google sign-in, attendee registration with unique lucky numbers, and host administration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token as "Bearer <token>". Browsers send the session cookie instead.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"eventregistration/config"
	_ "eventregistration/docs"
)

const programName = "eventregistration"

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...), "component", programName)
}

// commonRun loads config, installs the default logger and sizes GOMAXPROCS.
func commonRun() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)
	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		return nil, nil, fmt.Errorf("set GOMAXPROCS: %w", err)
	}
	return cfg, logger, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Event registration service",
		SilenceUsage: true,
		RunE:         serveRun,
	}
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(notifyCommand())

	if err := rootCmd.Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
