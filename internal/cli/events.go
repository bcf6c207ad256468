package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Oniqq60/task_system_control/taskclient/internal/events"
)

func newEventsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Task change events",
	}

	var groupID string
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print task created/updated events from Kafka until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := rt.app.Config.Kafka
			if !conf.Enabled() {
				return errors.New("KAFKA_BROKERS is required to watch task events")
			}
			if groupID == "" {
				groupID = conf.GroupID
			}

			watcher := events.NewKafkaWatcher(conf.Brokers, conf.Topic, groupID, rt.app.Logger.Named("events"))
			defer watcher.Close()

			out := cmd.OutOrStdout()
			return watcher.Run(cmd.Context(), func(_ context.Context, e events.TaskEvent) error {
				_, err := fmt.Fprintln(out, e.String())
				return err
			})
		},
	}
	watch.Flags().StringVar(&groupID, "group", "", "consumer group id (defaults to KAFKA_GROUP_ID)")

	cmd.AddCommand(watch)
	return cmd
}
