package lsm

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
)

const (
	separator = ";"

	// tombstone marks a deleted key. Escaping turns every '<' in user data
	// into "\<", so a raw field equal to tombstone is always a deletion.
	tombstone = "<TOMBSTONE>"
)

// rawEntry is one persisted line before key and value are decoded.
type rawEntry struct {
	key     string
	value   string
	deleted bool
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\s`,
	"\n", `\n`,
	"\r", `\r`,
	"<", `\<`,
)

func escape(s string) string {
	return escaper.Replace(s)
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("dangling escape in %q: %w", s, domain.ErrCorrupted)
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 's':
			b.WriteByte(';')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '<':
			b.WriteByte('<')
		default:
			return "", fmt.Errorf("unknown escape \\%c in %q: %w", s[i], s, domain.ErrCorrupted)
		}
	}
	return b.String(), nil
}

// formatLine renders an entry as a newline-terminated line.
func formatLine(e rawEntry) string {
	value := tombstone
	if !e.deleted {
		value = escape(e.value)
	}
	return escape(e.key) + separator + value + "\n"
}

// parseLine decodes a line without its trailing newline.
func parseLine(line string) (rawEntry, error) {
	line = strings.TrimSuffix(line, "\r")
	rawKey, rawValue, ok := strings.Cut(line, separator)
	if !ok {
		return rawEntry{}, fmt.Errorf("missing separator in %q: %w", line, domain.ErrCorrupted)
	}

	key, err := unescape(rawKey)
	if err != nil {
		return rawEntry{}, err
	}
	if rawValue == tombstone {
		return rawEntry{key: key, deleted: true}, nil
	}

	value, err := unescape(rawValue)
	if err != nil {
		return rawEntry{}, err
	}
	return rawEntry{key: key, value: value}, nil
}
