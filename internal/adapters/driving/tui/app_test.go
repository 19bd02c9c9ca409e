package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lsmkv/internal/adapters/driven/storage/btree"
	"github.com/custodia-labs/lsmkv/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/services"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	ports := &Ports{
		Store:    services.NewStoreService(btree.NewStore[string, string]()),
		Settings: services.NewSettingsService(memory.NewConfigStore()),
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// typeLine types line into the console, submits it and feeds the
// resulting messages back until the command has completed.
func typeLine(t *testing.T, app *App, line string) {
	t.Helper()

	if line != "" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = app.Update(msg)
	}
}

func TestNewApp_RequiresStore(t *testing.T) {
	_, err := NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingStoreService)

	_, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrMissingStoreService)
}

func TestApp_ViewBeforeSize(t *testing.T) {
	app, err := NewApp(&Ports{Store: services.NewStoreService(btree.NewStore[string, string]())})
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
	assert.False(t, app.Ready())
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Store: services.NewStoreService(btree.NewStore[string, string]())})
	require.NoError(t, err)

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.True(t, app.Ready())
	assert.Equal(t, 120, app.statusBar.Width())
	assert.Contains(t, app.View(), "lsmkv console")
}

func TestApp_PutGet(t *testing.T) {
	app := newTestApp(t)

	typeLine(t, app, "put greeting hello world")
	typeLine(t, app, "get greeting")

	assert.Equal(t, []string{"put greeting hello world", "OK", "get greeting", "hello world"}, app.Output())
	assert.NoError(t, app.Err())
	assert.False(t, app.Running())

	require.NotNil(t, app.statusBar.Stats())
	assert.Equal(t, 1, app.statusBar.Stats().Keys)
}

func TestApp_CommandError(t *testing.T) {
	app := newTestApp(t)

	typeLine(t, app, "get missing")

	assert.ErrorIs(t, app.Err(), domain.ErrNotFound)
	assert.Equal(t, status.StateError, app.statusBar.State())
	assert.Contains(t, app.View(), "error: ")

	typeLine(t, app, "put missing now")
	assert.Equal(t, status.StateReady, app.statusBar.State())
}

func TestApp_MaintenanceNotSupported(t *testing.T) {
	app := newTestApp(t)

	typeLine(t, app, "flush")

	assert.ErrorIs(t, app.Err(), domain.ErrNotSupported)
}

func TestApp_Dump(t *testing.T) {
	app := newTestApp(t)

	typeLine(t, app, "put a 1")
	typeLine(t, app, "put b 2")
	typeLine(t, app, "dump")

	out := app.Output()
	require.Len(t, out, 6)
	assert.Equal(t, "Level 0 | [a, b]", out[5])
}

func TestApp_Config(t *testing.T) {
	app := newTestApp(t)

	typeLine(t, app, "config storage.backend")

	out := app.Output()
	require.Len(t, out, 2)
	assert.Contains(t, out[1], "storage.backend")
	assert.Contains(t, out[1], "= lsm")
}

func TestApp_UnknownCommand(t *testing.T) {
	app := newTestApp(t)

	typeLine(t, app, "frobnicate")

	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), `unknown command "frobnicate"`)
}

func TestApp_Clear(t *testing.T) {
	app := newTestApp(t)
	typeLine(t, app, "help")
	require.NotEmpty(t, app.Output())

	typeLine(t, app, "clear")
	assert.Empty(t, app.Output())

	typeLine(t, app, "help")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Empty(t, app.Output())
}

func TestApp_EmptyLineIgnored(t *testing.T) {
	app := newTestApp(t)

	typeLine(t, app, "")

	assert.Empty(t, app.Output())
	assert.False(t, app.Running())
}

func TestApp_IgnoresInputWhileRunning(t *testing.T) {
	app := newTestApp(t)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("stats")})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, app.Running())

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("stats")})
	_, second := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second)

	app.Update(cmd())
	assert.False(t, app.Running())
}

func TestApp_HistoryKeys(t *testing.T) {
	app := newTestApp(t)
	typeLine(t, app, "put a 1")

	app.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "put a 1", app.input.Value())

	app.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, app.input.Value())
}

func TestApp_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			_, cmd := app.Update(tt.msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}

	app := newTestApp(t)
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("exit")})
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_StatsNotSupportedKeepsReady(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.StatsLoaded{Err: domain.ErrNotSupported})

	assert.Equal(t, status.StateReady, app.statusBar.State())
}

func TestApp_OutputBounded(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < maxOutputLines+5; i++ {
		app.appendLine("x", lineOutput)
	}

	assert.Len(t, app.Output(), maxOutputLines)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Init())
}
