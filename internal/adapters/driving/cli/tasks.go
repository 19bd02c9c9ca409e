package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

var tasksLimit int

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show background maintenance tasks and recent runs",
	Args:  cobra.NoArgs,
	RunE:  runTasks,
}

func init() {
	tasksCmd.Flags().IntVarP(&tasksLimit, "limit", "n", 5, "number of recent runs to show per task")
	rootCmd.AddCommand(tasksCmd)
}

func runTasks(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	ctx := commandContext(cmd)
	tasks, err := scheduler.Tasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		cmd.Println("No tasks scheduled yet. Tasks are created when the shell starts the scheduler.")
		return nil
	}

	out := cmd.OutOrStdout()
	for i := range tasks {
		task := &tasks[i]
		state := "enabled"
		if !task.Enabled {
			state = "disabled"
		}
		cmd.Printf("%s (%s, every %s)\n", render(out, headingStyle, task.Name), state, task.Interval)
		cmd.Printf("  Last run:  %s\n", formatTaskTime(task.LastRun))
		cmd.Printf("  Next run:  %s\n", formatTaskTime(task.NextRun))
		if task.LastError != "" {
			cmd.Printf("  Error:     %s\n", render(out, errorStyle, task.LastError))
		}

		if tasksLimit <= 0 {
			continue
		}
		results, err := scheduler.History(ctx, task.ID, tasksLimit)
		if err != nil {
			return err
		}
		for _, r := range results {
			cmd.Printf("    %s\n", formatResult(out, r))
		}
		cmd.Println()
	}
	return nil
}

func formatTaskTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

func formatResult(w io.Writer, r domain.TaskResult) string {
	status := render(w, successStyle, "ok")
	if !r.Success {
		status = render(w, errorStyle, "failed: "+r.Error)
	}
	return fmt.Sprintf("%s  %-8s %d items  %s",
		r.StartedAt.Local().Format(time.DateTime), r.Duration().Round(time.Millisecond), r.ItemsProcessed, status)
}
