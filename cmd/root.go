// Package cmd implements the places command line.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/places/cli"
)

// NewRootCmd assembles the places command tree.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand("places", "List and open desktop places")
	root.Long = `Lists the places a desktop shell shows in its sidebar: Home and the
XDG user directories, mounted drives, GTK bookmarks and network locations.
Lists stay current while 'places watch' or the daemon runs.`

	root.AddCommand(
		newListCmd(),
		newWatchCmd(),
		newOpenCmd(),
		newDaemonCmd(),
		newPathsCmd(),
		newConfigCmd(),
		cli.NewVersionCommand(),
	)
	cli.ApplyStyledHelpRecursive(root)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	cmd, err := root.ExecuteC()
	if err != nil {
		if cmd == nil {
			cmd = root
		}
		verbose := cli.GetOptions(cmd).Verbose
		cli.NewErrorHandler(cmd.ErrOrStderr(), verbose).Handle(err)
		return 1
	}
	return 0
}
