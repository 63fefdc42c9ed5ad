package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/glorpus-work/geofetch/internal/logger"
	"github.com/glorpus-work/geofetch/pkg/config"
	"github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the geofetch config file",
		Long: `Inspect and edit the config file selected by --config.
Values shown by show and get include --verbose and --format overrides;
set only ever writes the key it is given.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "List every setting with its effective value",
			Args:  cobra.NoArgs,
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print the effective value of one setting",
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigGet,
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change one setting and save the config file",
			Args:  cobra.ExactArgs(2),
			RunE:  runConfigSet,
		},
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file holding the defaults",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInit(force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing config file")

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	values := cfg.ToMap()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SETTING\tVALUE")
	_, _ = fmt.Fprintln(tw, "-------\t-----")
	for _, key := range config.Keys() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", key, values[key])
	}
	return tw.Flush()
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	value, err := cfg.GetValue(args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

// runConfigSet edits the file as written on disk, so flag overrides never leak into it.
func runConfigSet(_ *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	if err := cfg.SetValue(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path := getConfigPath()
	if err := cfg.SaveConfig(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	logger.Success("Setting saved", logger.Fields{"key": key, "value": value, "path": path})
	return nil
}

func runConfigInit(force bool) error {
	path := getConfigPath()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", errors.ErrConfigFileExists, path)
	}

	if err := config.DefaultConfig().SaveConfig(path); err != nil {
		return fmt.Errorf("writing default config to %s: %w", path, err)
	}

	logger.Success("Config file written", logger.Fields{"path": path})
	return nil
}
