package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		key     string
		binding string
	}{
		{"enter submits", "enter", "submit"},
		{"ctrl+c quits", "ctrl+c", "quit"},
		{"esc quits", "esc", "quit"},
		{"up recalls", "up", "previous"},
		{"down advances", "down", "next"},
		{"ctrl+l clears", "ctrl+l", "clear"},
		{"f1 helps", "f1", "help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var matched bool
			switch tt.binding {
			case "submit":
				matched = Matches(tt.key, km.Submit)
			case "quit":
				matched = Matches(tt.key, km.Quit)
			case "previous":
				matched = Matches(tt.key, km.Previous)
			case "next":
				matched = Matches(tt.key, km.Next)
			case "clear":
				matched = Matches(tt.key, km.Clear)
			case "help":
				matched = Matches(tt.key, km.Help)
			}
			assert.True(t, matched)
		})
	}
}

func TestMatches_NoMatch(t *testing.T) {
	km := DefaultKeyMap()

	assert.False(t, Matches("q", km.Quit))
	assert.False(t, Matches("", km.Submit))
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()
	assert.Len(t, help, 4)
	assert.Equal(t, "enter", help[0].Help().Key)
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()
	assert.Len(t, groups, 2)
	for _, g := range groups {
		assert.Len(t, g, 3)
	}
}
