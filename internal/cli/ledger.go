package cli

import (
	"fmt"

	"freight-broker-be/internal/config"
	"freight-broker-be/internal/dto"
	"freight-broker-be/internal/repository/unitofwork"
	"freight-broker-be/internal/service"
	"freight-broker-be/pkg/clock"
	"freight-broker-be/pkg/metrics"

	"github.com/spf13/cobra"
)

func newLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and maintain the idempotency ledger",
	}
	cmd.AddCommand(newLedgerPruneCmd())
	cmd.AddCommand(newLedgerStatsCmd())
	cmd.AddCommand(newLedgerAuditCmd())
	return cmd
}

func ledgerService(cfg *config.Config) (service.ILedgerService, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return service.NewLedgerService(
		unitofwork.NewRepositoryFactory(db),
		clock.NewSystemClock(),
		cfg.Ledger.Retention,
		metrics.NewCollector(),
		cliLogger(cfg),
	), nil
}

func newLedgerPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop ledger entries older than the retention window",
		Long: `Drop ledger entries older than LEDGER_RETENTION (default 365 days).
A provider redelivery older than the window would be applied again, so keep
the window longer than the provider's retry horizon.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			svc, err := ledgerService(cfg)
			if err != nil {
				return err
			}

			removed, err := svc.Prune(cmd.Context())
			if err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Pruned %d entries older than %s\n", removed, cfg.Ledger.Retention)
			return nil
		},
	}
}

func newLedgerStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger size and retention",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ledgerService(config.Load())
			if err != nil {
				return err
			}

			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			headColor.Fprintln(out, "Idempotency ledger")
			fmt.Fprintf(out, "  entries:   %d\n", stats.Entries)
			fmt.Fprintf(out, "  retention: %s\n", stats.Retention)
			return nil
		},
	}
}

func newLedgerAuditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit <charge-id>",
		Short: "Show every recorded payment event of a charge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ledgerService(config.Load())
			if err != nil {
				return err
			}

			trail, err := svc.AuditTrail(cmd.Context(), dto.AuditQuery{ChargeId: args[0], Limit: limit})
			if err != nil {
				return err
			}
			printAuditTrail(cmd.OutOrStdout(), trail)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of events")
	return cmd
}
