package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui"
	"github.com/custodia-labs/lsmkv/internal/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal console",
	Long: `Launch a full-screen console for the store.

Type the same commands as in 'lsmkv shell'. The status bar shows the
backend, memtable size and SSTable count. The background scheduler runs
while the console is open.

Controls:
  enter     Run the command line
  ↑/↓       Walk command history
  ctrl+l    Clear output
  f1        Command reference
  esc       Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panicked: %v", r)
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Store:    storeService,
		Settings: settingsService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	// The console is long-running, so background maintenance runs with it.
	if scheduler != nil {
		go func() {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("scheduler stop error: %v", err)
			}
		}()
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
