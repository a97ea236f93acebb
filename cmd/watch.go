package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/expiration"
	"github.com/tranvictor/uns/nameservice"
	"github.com/tranvictor/uns/ui"
)

var (
	WatchOnce     bool
	WatchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [names...]",
	Short: "Watch ENS names and warn before they expire",
	Long: `Track the registration expiry of ENS names. A warning is printed the
first time a name crosses each threshold (30, 14, 7, 3 and 1 days by
default) and on every poll once it has expired. Tracked names are kept in
Postgres when DATABASE_URL is set, so watching resumes where it stopped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, cfg config.Config, svc *nameservice.Service, u ui.UI) error {
			if WatchInterval > 0 {
				cfg.Expiration.PollInterval = config.Duration(WatchInterval)
			}
			tracker, cleanup, err := newTracker(ctx, cfg, svc)
			if err != nil {
				return err
			}
			defer cleanup()
			for _, name := range args {
				if err := tracker.Track(ctx, name); err != nil {
					return err
				}
			}
			id, events := tracker.Subscribe(expiration.DEFAULT_EVENT_BUFFER)
			defer tracker.Unsubscribe(id)

			if WatchOnce {
				if err := tracker.Poll(ctx); err != nil {
					return err
				}
				drainEvents(u, events)
				records, err := tracker.Records(ctx)
				if err != nil {
					return err
				}
				ui.ShowExpirations(u, records, time.Now())
				return nil
			}

			tracker.Start()
			defer tracker.Stop()
			u.Info("Watching %d names every %s. Ctrl-C to stop.", len(args), cfg.Expiration.PollInterval.Std())
			for {
				select {
				case <-ctx.Done():
					return nil
				case e, ok := <-events:
					if !ok {
						return nil
					}
					ui.ShowEvent(u, e)
				}
			}
		})
	},
}

func drainEvents(u ui.UI, events <-chan expiration.Event) {
	for {
		select {
		case e := <-events:
			ui.ShowEvent(u, e)
		default:
			return
		}
	}
}

func init() {
	watchCmd.Flags().BoolVar(&WatchOnce, "once", false, "Poll once, print the expiry table and exit.")
	watchCmd.Flags().DurationVar(&WatchInterval, "interval", 0, "Poll interval, overrides the config file.")
	rootCmd.AddCommand(watchCmd)
}
