// Package cli implements brokerctl, the operator command line for the
// freight broker backend.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"freight-broker-be/internal/config"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	noColor bool

	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	headColor = color.New(color.FgCyan, color.Bold)
)

var rootCmd = NewRootCmd()

// NewRootCmd builds a fresh command tree. Tests use it to avoid shared flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "brokerctl",
		Short: "Operate the freight broker backend",
		Long: `brokerctl runs maintenance tasks against the freight broker store
and inspects its events and logs.

Examples:
  brokerctl migrate
  brokerctl ledger prune
  brokerctl account show 42
  brokerctl ledger audit ch-1029
  brokerctl events tail --type PAYMENT_APPLIED`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newLedgerCmd())
	root.AddCommand(newAccountCmd())
	root.AddCommand(newEventsCmd())
	root.AddCommand(newLogsCmd())
	root.AddCommand(newTokenCmd())
	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errColor.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewGormDB(database.GormConfig{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.Connection,
		LogLevel: cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func cliLogger(cfg *config.Config) logger.ILogger {
	return logger.NewFileLogger(cfg.App.LogFilePath)
}
