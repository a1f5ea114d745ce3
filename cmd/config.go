package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/places/cli"
	"github.com/grovetools/places/config"
	"github.com/grovetools/places/logging"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the places configuration",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSchemaCmd(), newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging defaults, the config file,
--config and PLACES_* environment overrides.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return writeJSON(cmd.OutOrStdout(), loaded.Config)
			}

			w := cmd.OutOrStdout()
			for _, src := range loaded.Sources {
				fmt.Fprintf(w, "# Source: %s\n", src)
			}
			data, err := yaml.Marshal(loaded.Config)
			if err != nil {
				return err
			}
			fmt.Fprint(w, string(data))
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for places.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a config file against the schema",
		Long:  "Validate the given file, or the file in the config directory when none is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cli.GetOptions(cmd).ConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = config.DefaultPath()
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No config file; defaults are in use.")
				return nil
			}
			if err := config.ValidateFile(path); err != nil {
				return err
			}
			logging.NewConsole(cmd.OutOrStdout()).Success("Valid: " + path)
			return nil
		},
	}
}
