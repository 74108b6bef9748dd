package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"freight-broker-be/internal/config"
	"freight-broker-be/pkg/events"
	pktNats "freight-broker-be/pkg/nats"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow domain events published to NATS",
	}

	var eventType, durable string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print events as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.App.NatsURL == "" {
				return fmt.Errorf("NATS_URL is not set")
			}

			sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			subject := pktNats.SubjectPrefix + ".>"
			if eventType != "" {
				subject = pktNats.Subject(eventType)
			}

			out := cmd.OutOrStdout()
			cc, err := sub.Subscribe(cmd.Context(), subject, durable, func(_ context.Context, e events.Event) error {
				return printEvent(out, e)
			})
			if err != nil {
				return err
			}
			defer cc.Stop()

			headColor.Fprintf(out, "Listening on %s (Ctrl+C to stop)\n", subject)
			<-cmd.Context().Done()
			return nil
		},
	}
	tail.Flags().StringVar(&eventType, "type", "", "only events of this type, e.g. PAYMENT_APPLIED")
	tail.Flags().StringVar(&durable, "durable", "", "durable consumer name; empty starts at the newest event")

	cmd.AddCommand(tail)
	return cmd
}

func printEvent(out io.Writer, e events.Event) error {
	data, err := json.Marshal(e.Payload())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s ", e.Timestamp().Format(time.RFC3339))
	okColor.Fprintf(out, "%-32s", e.EventType())
	fmt.Fprintf(out, " %s\n", data)
	return nil
}
