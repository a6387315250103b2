package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"versioning-backend/src/broker"
	"versioning-backend/src/contracts"
)

// eventsCmd groups the build event commands
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect build lifecycle events on Redpanda",
}

// eventsWatchCmd prints build events as they are published
var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print build events as they arrive",
	Long: `Tail the build events topic and print one line per event until
interrupted. Without --group only new events are shown; with a group the
consumer resumes from the group's committed offset.

Example:
  versioning events watch
  versioning events watch --group dashboard --limit 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groupID, _ := cmd.Flags().GetString("group")
		limit, _ := cmd.Flags().GetInt("limit")

		events, err := openEvents()
		if err != nil {
			return err
		}
		defer events.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		msgs, err := events.Subscribe(ctx, appConfig.Events.Topic, groupID)
		if err != nil {
			return err
		}
		return printEvents(ctx, msgs, cmd.OutOrStdout(), limit)
	},
}

// eventsVerifyCmd checks that the configured brokers are reachable
var eventsVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the event brokers are reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		events, err := openEvents()
		if err != nil {
			return err
		}
		defer events.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := events.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "brokers %v reachable, topic %s\n", appConfig.Events.Brokers, appConfig.Events.Topic)
		return nil
	},
}

func openEvents() (*broker.RedpandaBroker, error) {
	if len(appConfig.Events.Brokers) == 0 {
		return nil, fmt.Errorf("REDPANDA_BROKERS is not set; build events are disabled")
	}
	return broker.NewRedpandaBroker(appConfig.Events.Brokers, appLogger)
}

// printEvents writes one line per decoded event until ctx is done, the
// channel closes or limit events were printed (limit <= 0 means no limit).
// Undecodable messages are logged and skipped.
func printEvents(ctx context.Context, msgs <-chan broker.Message, w io.Writer, limit int) error {
	printed := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}

			var event contracts.BuildEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				appLogger.Error("skipping undecodable event at offset %d: %v", msg.Offset, err)
				continue
			}
			fmt.Fprintf(w, "%s %-15s %s status=%s failures=%d job=%s\n",
				event.Timestamp, event.Type, event.BuildID,
				event.Status, event.FailureCount, event.JobID)

			printed++
			if limit > 0 && printed >= limit {
				return nil
			}
		}
	}
}

func init() {
	eventsWatchCmd.Flags().String("group", "", "Consumer group to join")
	eventsWatchCmd.Flags().Int("limit", 0, "Exit after this many events")
	eventsVerifyCmd.Flags().Duration("timeout", 10*time.Second, "Connection timeout")

	eventsCmd.AddCommand(eventsWatchCmd)
	eventsCmd.AddCommand(eventsVerifyCmd)
}
