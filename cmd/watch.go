package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/grovetools/places/cli"
	"github.com/grovetools/places/config"
	"github.com/grovetools/places/logging"
	"github.com/grovetools/places/pkg/daemon"
	"github.com/grovetools/places/pkg/mainloop"
	"github.com/grovetools/places/pkg/paths"
	"github.com/grovetools/places/pkg/places"
	"github.com/grovetools/places/pkg/volumes"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print each place change as it happens",
		Long: `Follow the place lists and print the refreshed list on every change.
With the daemon running its stream is followed; otherwise a manager runs
in this process until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := daemon.New(loaded.Config)
			defer client.Close()
			if client.IsRunning() {
				return followDaemon(ctx, cmd, client)
			}
			return watchLocal(ctx, cmd, loaded.Config)
		},
	}
}

func followDaemon(ctx context.Context, cmd *cobra.Command, client daemon.Client) error {
	updates, err := client.StreamPlaces(ctx)
	if err != nil {
		return err
	}
	for u := range updates {
		switch u.UpdateType {
		case "initial":
			if u.Snapshot != nil {
				printEvent(cmd, "initial", "", nil, u.Snapshot)
			}
		case "places":
			printEvent(cmd, u.Event, u.Kind, u.Places, nil)
		case "config_reload":
			fmt.Fprintf(cmd.ErrOrStderr(), "config changed: %s\n", u.ConfigFile)
		}
	}
	return nil
}

func watchLocal(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := logging.NewLogger("places-watch")
	monitor, err := volumes.NewSystemMonitor(ctx, volumes.SystemOptions{
		PollInterval: cfg.Mounts.PollInterval.Std(),
		Ignore:       cfg.Mounts.Ignore,
		MediaRoots:   cfg.Mounts.MediaRoots,
		GvfsDir:      paths.GvfsMountDir(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	loop := mainloop.New()
	manager, err := places.NewManager(places.Options{
		UseSymbolicIcons: cfg.UseSymbolicIcons,
		Monitor:          monitor,
		Scheduler:        loop,
		BookmarkFiles:    cfg.Bookmarks.Files,
		Debounce:         cfg.Bookmarks.Debounce.Std(),
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	snap := manager.Snapshot()
	printEvent(cmd, "initial", "", nil, &snap)
	for _, event := range places.Events {
		event := event
		manager.Subscribe(event, func() {
			kind := event.Kind()
			printEvent(cmd, event.String(), kind.String(), places.Views(manager.GetPlace(kind)), nil)
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error { return monitor.Start(gctx) })
	err = g.Wait()
	manager.Destroy()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type watchEvent struct {
	Event    string             `json:"event"`
	Kind     string             `json:"kind,omitempty"`
	Places   []places.EntryView `json:"places,omitempty"`
	Snapshot *places.Snapshot   `json:"snapshot,omitempty"`
}

func printEvent(cmd *cobra.Command, event, kind string, list []places.EntryView, snap *places.Snapshot) {
	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		// One object per line.
		data, err := json.Marshal(watchEvent{Event: event, Kind: kind, Places: list, Snapshot: snap})
		if err == nil {
			fmt.Fprintln(out, string(data))
		}
		return
	}
	fmt.Fprintln(out, cli.DefaultTheme.Muted.Render("# "+event))
	if snap != nil {
		renderSnapshot(out, *snap)
	} else {
		renderList(out, kind, list)
	}
	fmt.Fprintln(out)
}
