package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/places/cli"
	"github.com/grovetools/places/command"
	"github.com/grovetools/places/logging"
	"github.com/grovetools/places/pkg/launch"
	"github.com/grovetools/places/pkg/paths"
	"github.com/grovetools/places/pkg/places"
	"github.com/grovetools/places/pkg/volumes"
)

func newOpenCmd() *cobra.Command {
	var timestamp uint32
	cmd := &cobra.Command{
		Use:   "open <name|uri>",
		Short: "Open a place in the file manager",
		Long: `Open a place by display name (case-insensitive) or by path or URI.
Unmounted network locations are mounted first. Failures are also shown as a
desktop notification.`,
		Example: `places open Documents
places open "Browse network"
places open sftp://nas/photos`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			cfg := loaded.Config
			logger := logging.NewLogger("places-open")
			runner := command.NewRunner()

			monitor, err := volumes.NewSystemMonitor(cmd.Context(), volumes.SystemOptions{
				Runner:     runner,
				Ignore:     cfg.Mounts.Ignore,
				MediaRoots: cfg.Mounts.MediaRoots,
				GvfsDir:    paths.GvfsMountDir(),
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			manager, err := places.NewManager(places.Options{
				UseSymbolicIcons: cfg.UseSymbolicIcons,
				Monitor:          monitor,
				BookmarkFiles:    cfg.Bookmarks.Files,
				Logger:           logger,
			})
			if err != nil {
				return err
			}
			defer manager.Destroy()

			err = manager.Launch(cmd.Context(), args[0], timestamp,
				launch.NewGioLauncher(runner), launch.NewDesktopNotifier(runner))
			if err != nil {
				return err
			}
			if !cli.GetOptions(cmd).JSONOutput {
				fmt.Fprintln(cmd.OutOrStdout(), cli.DefaultTheme.Success.Render("Opened "+args[0]))
			}
			return nil
		},
	}
	cmd.Flags().Uint32Var(&timestamp, "timestamp", 0, "Event timestamp for startup notification")
	return cmd
}
