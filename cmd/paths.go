package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/places/cli"
	"github.com/grovetools/places/config"
	"github.com/grovetools/places/pkg/paths"
)

// PathsOutput lists the files and directories places reads and writes.
type PathsOutput struct {
	ConfigDir     string                   `json:"config_dir"`
	ConfigFile    string                   `json:"config_file,omitempty"`
	StateDir      string                   `json:"state_dir"`
	Socket        string                   `json:"socket"`
	PidFile       string                   `json:"pid_file"`
	GvfsDir       string                   `json:"gvfs_dir,omitempty"`
	BookmarkFiles []string                 `json:"bookmark_files"`
	UserDirs      map[paths.UserDir]string `json:"user_dirs"`
}

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the paths places uses",
		Long: `Print the config, state and runtime paths, the bookmarks file
candidates in lookup order, and the resolved XDG user directories.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			out := collectPaths(loaded.Config)
			if cli.GetOptions(cmd).JSONOutput {
				return writeJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			muted := cli.DefaultTheme.Muted
			fmt.Fprintf(w, "config dir   %s\n", out.ConfigDir)
			fmt.Fprintf(w, "config file  %s\n", orNone(out.ConfigFile))
			fmt.Fprintf(w, "state dir    %s\n", out.StateDir)
			fmt.Fprintf(w, "socket       %s\n", out.Socket)
			fmt.Fprintf(w, "pid file     %s\n", out.PidFile)
			fmt.Fprintf(w, "gvfs dir     %s\n", orNone(out.GvfsDir))
			for i, f := range out.BookmarkFiles {
				label := "bookmarks   "
				if i > 0 {
					label = "            "
				}
				fmt.Fprintf(w, "%s %s\n", label, f)
			}
			for _, d := range paths.DefaultUserDirs {
				fmt.Fprintf(w, "%s %s\n", muted.Render(fmt.Sprintf("%-12s", d)), orNone(out.UserDirs[d]))
			}
			return nil
		},
	}
}

func collectPaths(cfg *config.Config) PathsOutput {
	bookmarks := cfg.Bookmarks.Files
	if len(bookmarks) == 0 {
		bookmarks = paths.BookmarkFileCandidates()
	}
	dirs := paths.SystemDirs{}
	userDirs := make(map[paths.UserDir]string, len(paths.DefaultUserDirs))
	for _, d := range paths.DefaultUserDirs {
		userDirs[d] = dirs.UserDir(d)
	}
	return PathsOutput{
		ConfigDir:     paths.ConfigDir(),
		ConfigFile:    config.DefaultPath(),
		StateDir:      paths.StateDir(),
		Socket:        cfg.SocketPath(),
		PidFile:       paths.PidFilePath(),
		GvfsDir:       paths.GvfsMountDir(),
		BookmarkFiles: bookmarks,
		UserDirs:      userDirs,
	}
}

func orNone(s string) string {
	if s == "" {
		return cli.DefaultTheme.Muted.Render("(none)")
	}
	return s
}
