package input

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lsmkv/internal/adapters/driving/tui/styles"
)

func TestNewCommandInput(t *testing.T) {
	in := NewCommandInput(styles.DefaultStyles())

	require.NotNil(t, in)
	assert.True(t, in.Focused())
	assert.Empty(t, in.Value())
	assert.Equal(t, 60, in.Width())
}

func TestNewCommandInput_NilStyles(t *testing.T) {
	in := NewCommandInput(nil)

	assert.NotNil(t, in.styles)
}

func TestCommandInput_Typing(t *testing.T) {
	in := NewCommandInput(nil)

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("get k")})

	assert.Equal(t, "get k", in.Value())
}

func TestCommandInput_Submit(t *testing.T) {
	in := NewCommandInput(nil)
	in.SetValue("stats")

	assert.Equal(t, "stats", in.Submit())
	assert.Empty(t, in.Value())
	assert.Equal(t, []string{"stats"}, in.History())
}

func TestCommandInput_SubmitSkipsRepeatsAndBlank(t *testing.T) {
	in := NewCommandInput(nil)

	in.SetValue("flush")
	in.Submit()
	in.SetValue("flush")
	in.Submit()
	in.Submit()

	assert.Equal(t, []string{"flush"}, in.History())
}

func TestCommandInput_HistoryRecall(t *testing.T) {
	in := NewCommandInput(nil)
	for _, line := range []string{"put a 1", "get a", "stats"} {
		in.SetValue(line)
		in.Submit()
	}
	in.SetValue("del")

	in.Previous()
	assert.Equal(t, "stats", in.Value())
	in.Previous()
	in.Previous()
	assert.Equal(t, "put a 1", in.Value())

	// Already at the oldest entry.
	in.Previous()
	assert.Equal(t, "put a 1", in.Value())

	in.Next()
	assert.Equal(t, "get a", in.Value())
	in.Next()
	in.Next()
	assert.Equal(t, "del", in.Value())

	in.Next()
	assert.Equal(t, "del", in.Value())
}

func TestCommandInput_HistoryBounded(t *testing.T) {
	in := NewCommandInput(nil)
	for i := 0; i < maxHistory+10; i++ {
		in.SetValue(fmt.Sprintf("get k%d", i))
		in.Submit()
	}

	assert.Len(t, in.History(), maxHistory)
}

func TestCommandInput_SetWidth(t *testing.T) {
	in := NewCommandInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 86, in.textinput.Width)

	in.SetWidth(10)
	assert.Equal(t, 20, in.textinput.Width)
}

func TestCommandInput_View(t *testing.T) {
	in := NewCommandInput(nil)

	assert.Contains(t, in.View(), "lsmkv>")
}

func TestCommandInput_FocusBlur(t *testing.T) {
	in := NewCommandInput(nil)

	in.Blur()
	assert.False(t, in.Focused())
	in.Focus()
	assert.True(t, in.Focused())
}
