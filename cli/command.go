package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/places/config"
	"github.com/grovetools/places/logging"
	"github.com/grovetools/places/pkg/paths"
)

// CommandOptions holds the flags shared by every places command.
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a command with the standard places flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to a places.yml or places.toml config file")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		ConfigureColor(cmd)
	}

	cmd.SetHelpFunc(styledHelpFunc)
	return cmd
}

// ConfigureColor drops colors for --no-color, NO_COLOR, or when stdout is
// not a terminal.
func ConfigureColor(cmd *cobra.Command) {
	noColor, _ := cmd.Flags().GetBool("no-color")
	fd := os.Stdout.Fd()
	if noColor || os.Getenv("NO_COLOR") != "" || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// GetOptions extracts common options from a command.
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// LoadConfig loads the configuration named by --config and installs its
// logging section. --verbose forces debug logging.
func LoadConfig(cmd *cobra.Command) (*config.Loaded, error) {
	opts := GetOptions(cmd)
	loaded, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	logCfg := loaded.Logging
	if opts.Verbose {
		logCfg.Level = logrus.DebugLevel.String()
	}
	logging.Configure(logCfg, paths.StateDir())
	return loaded, nil
}
