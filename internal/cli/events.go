package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bibbank/credit-service/internal/infrastructure/config"
	pkgkafka "github.com/bibbank/credit-service/pkg/kafka"
)

// ─── events ─────────────────────────────────────────────────────────────────

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the credit Kafka topics",
	}
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print domain events as they arrive (KAFKA_* environment variables)",
		Args:  cobra.NoArgs,
		RunE:  runEventsTail,
	}
	tail.Flags().String("topic", "", "Topic to follow (defaults to KAFKA_EVENTS_TOPIC)")
	tail.Flags().String("group", "creditctl-tail", "Consumer group")
	tail.Flags().Bool("from-beginning", false, "Start a new consumer group at the oldest retained event")
	cmd.AddCommand(tail)
	return cmd
}

func runEventsTail(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)
	kcfg := config.Load().Kafka
	topic, _ := cmd.Flags().GetString("topic")
	if topic == "" {
		topic = kcfg.EventsTopic
	}
	client := kcfg.Client()
	client.ConsumerGroup, _ = cmd.Flags().GetString("group")
	client.FromBeginning, _ = cmd.Flags().GetBool("from-beginning")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	asJSON := wantJSON(cmd)
	consumer := pkgkafka.NewConsumer(client, topic, func(_ context.Context, msg pkgkafka.Message) error {
		return printEvent(out, msg, asJSON)
	}, logger)
	defer consumer.Close()

	return consumer.Start(ctx)
}

// tailedEvent is one line of `events tail --json`.
type tailedEvent struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	AggregateID string          `json:"aggregate_id"`
	Payload     json.RawMessage `json:"payload"`
}

func printEvent(w io.Writer, msg pkgkafka.Message, asJSON bool) error {
	ev := tailedEvent{
		EventID:     msg.Headers["event_id"],
		EventType:   msg.Headers["event_type"],
		AggregateID: string(msg.Key),
		Payload:     msg.Value,
	}
	if asJSON {
		if !json.Valid(ev.Payload) {
			ev.Payload = nil
		}
		return json.NewEncoder(w).Encode(ev)
	}
	_, err := fmt.Fprintf(w, "%s  %-32s %s\n", ev.EventID, ev.EventType, ev.AggregateID)
	return err
}
