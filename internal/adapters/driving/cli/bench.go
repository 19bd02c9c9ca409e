package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

var (
	benchCount int
	benchRate  int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure write and read throughput",
	Long: `Writes --count new keys, then reads every one of them back.

Keys carry a random run prefix so repeated runs never collide. Use --rate
to cap operations per second.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchCount, "count", 1000, "number of keys to write and read")
	benchCmd.Flags().IntVar(&benchRate, "rate", 0, "maximum operations per second (0 for unlimited)")
	rootCmd.AddCommand(benchCmd)
}

// benchResult is the outcome of one phase.
type benchResult struct {
	ops     int
	elapsed time.Duration
}

func (r benchResult) perSecond() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.ops) / r.elapsed.Seconds()
}

func runBench(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errNoStore
	}
	if benchCount < 1 {
		return fmt.Errorf("--count must be at least 1: %w", domain.ErrInvalidInput)
	}
	if benchRate < 0 {
		return fmt.Errorf("--rate must not be negative: %w", domain.ErrInvalidInput)
	}

	ctx := commandContext(cmd)
	records := benchRecords(uuid.NewString()[:8], benchCount)

	var limiter *rate.Limiter
	if benchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(benchRate), 1)
	}

	writes, err := benchPhase(ctx, limiter, records, func(r domain.Record[string, string]) error {
		return storeService.Put(ctx, r.Key, r.Value)
	})
	if err != nil {
		return fmt.Errorf("write phase: %w", err)
	}

	reads, err := benchPhase(ctx, limiter, records, func(r domain.Record[string, string]) error {
		v, err := storeService.Get(ctx, r.Key)
		if err != nil {
			return err
		}
		if v != r.Value {
			return fmt.Errorf("key %s: got %q, want %q: %w", r.Key, v, r.Value, domain.ErrCorrupted)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("read phase: %w", err)
	}

	out := cmd.OutOrStdout()
	cmd.Println(render(out, headingStyle, fmt.Sprintf("Benchmark (%d keys)", benchCount)))
	cmd.Printf("  Writes: %s  %.0f ops/s\n", writes.elapsed.Round(time.Millisecond), writes.perSecond())
	cmd.Printf("  Reads:  %s  %.0f ops/s\n", reads.elapsed.Round(time.Millisecond), reads.perSecond())
	return nil
}

// benchRecords builds the workload up front so key formatting is not timed.
func benchRecords(prefix string, n int) []domain.Record[string, string] {
	records := make([]domain.Record[string, string], n)
	for i := range records {
		records[i] = domain.NewRecord(
			fmt.Sprintf("bench-%s-%08d", prefix, i),
			fmt.Sprintf("value-%d", i),
		)
	}
	return records
}

func benchPhase(
	ctx context.Context,
	limiter *rate.Limiter,
	records []domain.Record[string, string],
	op func(domain.Record[string, string]) error,
) (benchResult, error) {
	start := time.Now()
	for _, r := range records {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return benchResult{}, err
			}
		} else if err := ctx.Err(); err != nil {
			return benchResult{}, err
		}
		if err := op(r); err != nil {
			return benchResult{}, err
		}
	}
	return benchResult{ops: len(records), elapsed: time.Since(start)}, nil
}
