package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"freight-broker-be/internal/config"
	"freight-broker-be/internal/dto"
	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/repository/unitofwork"
	"freight-broker-be/internal/service"
	"freight-broker-be/pkg/clock"
	"freight-broker-be/pkg/events"
	"freight-broker-be/pkg/metrics"

	"github.com/spf13/cobra"
)

// operator acts with admin rights so it can read any account without
// provisioning one.
var operator = entity.Actor{Role: entity.RoleAdmin}

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect subscription accounts",
	}

	var payments int
	show := &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show the derived subscription state and recent payments of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q", args[0])
			}

			cfg := config.Load()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			factory := unitofwork.NewRepositoryFactory(db)
			svc := service.NewSubscriptionService(
				factory,
				clock.NewSystemClock(),
				events.NopPublisher{},
				metrics.NewCollector(),
				cliLogger(cfg),
			)

			status, err := svc.GetStatus(cmd.Context(), id, operator)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)

			if payments <= 0 {
				return nil
			}
			ledger := service.NewLedgerService(factory, clock.NewSystemClock(), cfg.Ledger.Retention, metrics.NewCollector(), cliLogger(cfg))
			trail, err := ledger.AuditTrail(cmd.Context(), dto.AuditQuery{AccountId: &id, Limit: payments})
			if err != nil {
				return err
			}
			printAuditTrail(cmd.OutOrStdout(), trail)
			return nil
		},
	}
	show.Flags().IntVar(&payments, "payments", 5, "number of recent payment events to show, 0 to hide")
	cmd.AddCommand(show)
	return cmd
}

func printAuditTrail(out io.Writer, trail []*dto.PaymentAuditResponse) {
	headColor.Fprintln(out, "Payment events")
	if len(trail) == 0 {
		fmt.Fprintln(out, "  none")
		return
	}
	for _, r := range trail {
		outcome := warnColor
		if r.Outcome == string(entity.PaymentOutcomeApplied) {
			outcome = okColor
		}
		fmt.Fprintf(out, "  %s  account=%d  %-22s %-10s ",
			r.CreatedAt.Format(time.RFC3339), r.AccountId, r.ChargeId, r.ChargeStatus)
		outcome.Fprintln(out, r.Outcome)
	}
}

func printStatus(out io.Writer, s *dto.SubscriptionStatusResponse) {
	headColor.Fprintf(out, "Account %d\n", s.AccountId)

	stateColor := warnColor
	switch entity.SubscriptionState(s.State) {
	case entity.SubscriptionStatePaid, entity.SubscriptionStateTrialActive:
		stateColor = okColor
	case entity.SubscriptionStatePaidExpired:
		stateColor = errColor
	}
	fmt.Fprint(out, "  state:          ")
	stateColor.Fprintln(out, s.State)

	plan := "-"
	if s.PlanType != nil {
		plan = *s.PlanType
	}
	expires := "-"
	if s.ExpiresAt != nil {
		expires = s.ExpiresAt.Format(time.RFC3339)
	}
	fmt.Fprintf(out, "  plan:           %s\n", plan)
	fmt.Fprintf(out, "  expires at:     %s\n", expires)
	fmt.Fprintf(out, "  days remaining: %d\n", s.DaysRemaining)
	fmt.Fprintf(out, "  trial used:     %t\n", s.TrialUsed)
	fmt.Fprintf(out, "  cancel pending: %t\n", s.CancelPending)
}
