package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lsmkv/internal/core/ports/driving"
	"github.com/custodia-labs/lsmkv/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services used by commands.
var (
	storeService    driving.StoreService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
)

var rootCmd = &cobra.Command{
	Use:   "lsmkv",
	Short: "A log-structured key/value store",
	Long: `lsmkv stores string keys and values in a log-structured merge tree.

Writes go to a commit log and an in-memory table that is flushed to
immutable SSTables. Background tasks flush the memtable and compact
SSTables. The B-tree and bbolt backends can be selected instead with
'lsmkv config set storage.backend'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetStoreService sets the service used by data commands.
func SetStoreService(s driving.StoreService) {
	storeService = s
}

// SetSettingsService sets the service used by config commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetScheduler sets the scheduler run by the shell and read by tasks.
func SetScheduler(s driving.Scheduler) {
	scheduler = s
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}
