package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

var (
	getJSON   bool
	statsJSON bool
)

var putCmd = &cobra.Command{
	Use:   "put KEY VALUE",
	Short: "Store a value under a key",
	Args:  cobra.ExactArgs(2),
	RunE:  runPut,
}

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the value stored under a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var deleteCmd = &cobra.Command{
	Use:     "delete KEY",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a key",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Write the memtable to a new SSTable",
	Args:  cobra.NoArgs,
	RunE:  runFlush,
}

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Merge small SSTables",
	Long: `Merges adjacent SSTables while the merged table stays under
compaction.size_limit records. Deleted keys are dropped when the
merge includes the oldest table.`,
	Args: cobra.NoArgs,
	RunE: runCompact,
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the internal structure of the store",
	Long: `Prints the B-tree level by level. Other backends do not support
this command.`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	getCmd.Flags().BoolVar(&getJSON, "json", false, "output as JSON")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(flushCmd)
	rootCmd.AddCommand(compactCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dumpCmd)
}

var errNoStore = errors.New("store service not configured")

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runPut(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errNoStore
	}
	return storeService.Put(commandContext(cmd), args[0], args[1])
}

func runGet(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errNoStore
	}

	value, err := storeService.Get(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	if getJSON {
		return printJSON(cmd, map[string]string{"key": args[0], "value": value})
	}
	cmd.Println(value)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errNoStore
	}
	return storeService.Delete(commandContext(cmd), args[0])
}

func runFlush(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errNoStore
	}

	n, err := storeService.Flush(commandContext(cmd))
	if err != nil {
		return err
	}
	cmd.Printf("Flushed %d entries.\n", n)
	return nil
}

func runCompact(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errNoStore
	}

	n, err := storeService.Compact(commandContext(cmd))
	if err != nil {
		return err
	}
	cmd.Printf("Compaction removed %d tables.\n", n)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errNoStore
	}

	stats, err := storeService.Stats(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsJSON {
		return printJSON(cmd, stats)
	}
	printStats(cmd, stats)
	return nil
}

func runDump(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errNoStore
	}
	return storeService.Dump(commandContext(cmd), cmd.OutOrStdout())
}

func printStats(cmd *cobra.Command, stats *domain.StoreStats) {
	out := cmd.OutOrStdout()
	label := func(s string) string { return render(out, labelStyle, fmt.Sprintf("%-14s", s)) }

	cmd.Println(render(out, headingStyle, "Store"))
	cmd.Printf("  %s %s\n", label("Backend:"), stats.Backend.Description())
	if stats.Keys >= 0 {
		cmd.Printf("  %s %d\n", label("Keys:"), stats.Keys)
	}

	if stats.Backend == domain.BackendLSM {
		cmd.Printf("  %s %d\n", label("Memtable:"), stats.MemtableSize)
		cmd.Printf("  %s %d\n", label("Commit log:"), stats.CommitLogEntries)
		cmd.Printf("  %s %d (%d records)\n", label("SSTables:"), len(stats.Tables), stats.TableRecords())
		cmd.Printf("  %s %d\n", label("Since compact:"), stats.FlushesSinceCompaction)
		for _, t := range stats.Tables {
			cmd.Printf("    %s  %d\n", t.Name, t.Records)
		}
	}

	if stats.CacheHits > 0 || stats.CacheMisses > 0 {
		cmd.Printf("  %s %d hits, %d misses\n", label("Cache:"), stats.CacheHits, stats.CacheMisses)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
