package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/messages"
)

// helpText lists the console commands.
var helpText = []string{
	"put KEY VALUE   store VALUE (the rest of the line) under KEY",
	"get KEY         print the value of KEY",
	"delete KEY      delete KEY",
	"flush           write the memtable to an SSTable",
	"compact         merge SSTables",
	"stats           show store statistics",
	"dump            print the B-tree level by level",
	"config [KEY]    show settings",
	"clear           empty this pane",
	"help            show this list",
}

// runCommand executes line against ports and returns the printed lines.
func runCommand(ctx context.Context, ports *Ports, line string) ([]string, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "help", "?":
		return helpText, nil
	case "put", "set":
		key, value, ok := strings.Cut(rest, " ")
		if !ok || key == "" {
			return nil, errors.New("usage: put KEY VALUE")
		}
		if err := ports.Store.Put(ctx, key, strings.TrimSpace(value)); err != nil {
			return nil, err
		}
		return []string{"OK"}, nil
	case "get":
		if rest == "" {
			return nil, errors.New("usage: get KEY")
		}
		value, err := ports.Store.Get(ctx, rest)
		if err != nil {
			return nil, err
		}
		return strings.Split(value, "\n"), nil
	case "delete", "del", "rm":
		if rest == "" {
			return nil, errors.New("usage: delete KEY")
		}
		if err := ports.Store.Delete(ctx, rest); err != nil {
			return nil, err
		}
		return []string{"OK"}, nil
	case "flush":
		n, err := ports.Store.Flush(ctx)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Flushed %d entries.", n)}, nil
	case "compact":
		n, err := ports.Store.Compact(ctx)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Compaction removed %d tables.", n)}, nil
	case "stats":
		stats, err := ports.Store.Stats(ctx)
		if err != nil {
			return nil, err
		}
		lines := []string{status.Summary(stats)}
		for _, t := range stats.Tables {
			lines = append(lines, fmt.Sprintf("  %s  %d records", t.Name, t.Records))
		}
		return lines, nil
	case "dump":
		var buf strings.Builder
		if err := ports.Store.Dump(ctx, &buf); err != nil {
			return nil, err
		}
		return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"), nil
	case "config":
		return configLines(ports, rest)
	default:
		return nil, fmt.Errorf("unknown command %q (try 'help')", name)
	}
}

func configLines(ports *Ports, key string) ([]string, error) {
	if ports.Settings == nil {
		return nil, errors.New("settings not available")
	}
	keys := ports.Settings.Keys()
	if key != "" {
		keys = []string{key}
	}

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := ports.Settings.Lookup(k)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%-30s = %s", k, v))
	}
	return lines, nil
}

// commandCmd runs line in the background and reports a CommandCompleted.
func commandCmd(ctx context.Context, ports *Ports, line string) tea.Cmd {
	return func() tea.Msg {
		out, err := runCommand(ctx, ports, line)
		return messages.CommandCompleted{Command: line, Output: out, Err: err}
	}
}

// statsCmd loads store statistics for the status bar.
func statsCmd(ctx context.Context, ports *Ports) tea.Cmd {
	return func() tea.Msg {
		stats, err := ports.Store.Stats(ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}
