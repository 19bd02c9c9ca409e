package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lsmkv/internal/logger"
)

const shellPrompt = "lsmkv> "

const shellHelp = `Reads commands from standard input, one per line, against a single
open store. The background scheduler flushes and compacts while the
shell runs.

Commands:
  put KEY VALUE   store VALUE (the rest of the line) under KEY
  get KEY         print the value of KEY
  delete KEY      delete KEY
  flush           write the memtable to an SSTable
  compact         merge SSTables
  stats           show store statistics
  help            show this list
  exit            leave the shell`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long:  shellHelp,
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

var errShellExit = errors.New("exit")

func runShell(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errNoStore
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

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

	in := cmd.InOrStdin()
	interactive := isTerminal(in)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for {
		if interactive {
			cmd.Print(shellPrompt)
		}
		if !scanner.Scan() {
			break
		}

		err := runShellLine(ctx, cmd, scanner.Text())
		if errors.Is(err, errShellExit) {
			return nil
		}
		if err != nil {
			cmd.Println(render(cmd.OutOrStdout(), errorStyle, "error: "+err.Error()))
		}
	}
	return scanner.Err()
}

// runShellLine executes one shell command.
func runShellLine(ctx context.Context, cmd *cobra.Command, line string) error {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "":
		return nil
	case "exit", "quit":
		return errShellExit
	case "help":
		cmd.Println(shellHelp)
		return nil
	case "put", "set":
		key, value, ok := strings.Cut(rest, " ")
		if !ok || key == "" {
			return errors.New("usage: put KEY VALUE")
		}
		if err := storeService.Put(ctx, key, strings.TrimSpace(value)); err != nil {
			return err
		}
		cmd.Println("OK")
		return nil
	case "get":
		if rest == "" {
			return errors.New("usage: get KEY")
		}
		value, err := storeService.Get(ctx, rest)
		if err != nil {
			return err
		}
		cmd.Println(value)
		return nil
	case "delete", "del", "rm":
		if rest == "" {
			return errors.New("usage: delete KEY")
		}
		if err := storeService.Delete(ctx, rest); err != nil {
			return err
		}
		cmd.Println("OK")
		return nil
	case "flush":
		n, err := storeService.Flush(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Flushed %d entries.\n", n)
		return nil
	case "compact":
		n, err := storeService.Compact(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Compaction removed %d tables.\n", n)
		return nil
	case "stats":
		stats, err := storeService.Stats(ctx)
		if err != nil {
			return err
		}
		printStats(cmd, stats)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try 'help')", name)
	}
}
