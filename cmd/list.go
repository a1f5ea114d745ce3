package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/places/cli"
	"github.com/grovetools/places/pkg/daemon"
	"github.com/grovetools/places/pkg/places"
)

func newListCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print places",
		Long: `Print the place lists. The daemon's lists are used when it is running;
otherwise the system is scanned once.

--kind all prints the combined view (special, bookmarks, devices).`,
		Example: `# everything, grouped by kind
places list

# mounted drives as JSON
places list --kind devices --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			client := daemon.New(loaded.Config)
			defer client.Close()

			snap, err := client.GetPlaces(cmd.Context())
			if err != nil {
				return err
			}
			return printPlaces(cmd, snap, kind)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only list one kind: special, devices, bookmarks, network or all")
	return cmd
}

func printPlaces(cmd *cobra.Command, snap places.Snapshot, kind string) error {
	out := cmd.OutOrStdout()
	jsonOutput := cli.GetOptions(cmd).JSONOutput

	switch kind {
	case "":
		if jsonOutput {
			return writeJSON(out, snap)
		}
		renderSnapshot(out, snap)
		return nil
	case "all":
		if jsonOutput {
			return writeJSON(out, snap.All())
		}
		renderList(out, "all", snap.All())
		return nil
	}

	k, err := places.ParseKind(kind)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, snap.List(k))
	}
	renderList(out, k.String(), snap.List(k))
	return nil
}
