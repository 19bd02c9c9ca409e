package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change engine settings",
	Long: `View and change engine settings stored in config.toml.

Settings are read when lsmkv starts, so changes apply to the next command.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change a setting",
	Long: `Change a setting. The value is parsed according to the setting's type:
integers, booleans (true/false), floats, durations (e.g. 10m, 90s) and
backend names (lsm, btree, bbolt).`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var errNoSettings = errors.New("settings service not configured")

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	out := cmd.OutOrStdout()
	for _, key := range settingsService.Keys() {
		value, err := settingsService.Lookup(key)
		if err != nil {
			return err
		}
		cmd.Printf("%s = %s\n", render(out, labelStyle, fmt.Sprintf("%-30s", key)), value)
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Println()
		cmd.Println(render(out, errorStyle, fmt.Sprintf("Warning: %v", err)))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	value, err := settingsService.Lookup(args[0])
	if err != nil {
		return err
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	value, err := settingsService.Lookup(args[0])
	if err != nil {
		return err
	}
	cmd.Println(render(cmd.OutOrStdout(), successStyle, fmt.Sprintf("%s = %s", args[0], value)))
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	cmd.Println(settingsService.Path())
	return nil
}
