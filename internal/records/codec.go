// Package records encodes catalog, account, order and complaint records as
// single pipe-delimited lines. Field order is fixed; newer fields are only ever
// appended, so decoders accept older, shorter records and fill defaults.
//
// Order line items are nested inside the order's last field: items are joined
// with ';' and each item's own fields with '|'. Backslash escapes '|', ';' and
// '\' inside values, which keeps the nesting unambiguous. Newline and carriage
// return are written as \n and \r so a record always stays on one line.
package records

import (
	"errors"
	"fmt"
	"strings"
)

const (
	FieldSep = '|'
	ItemSep  = ';'
	escape   = '\\'
)

var ErrMalformed = errors.New("malformed record")

var escaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `;`, `\;`, "\n", `\n`, "\r", `\r`)

func escapeField(s string) string {
	return escaper.Replace(s)
}

func unescapeField(s string) string {
	if !strings.ContainsRune(s, escape) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != escape || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// join escapes every field and joins them with sep.
func join(fields []string, sep byte) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = escapeField(f)
	}
	return strings.Join(escaped, string(sep))
}

// splitRaw cuts line at every unescaped sep, leaving escapes in place.
func splitRaw(line string, sep byte) []string {
	var (
		parts []string
		start int
	)
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case escape:
			i++
		case sep:
			parts = append(parts, line[start:i])
			start = i + 1
		}
	}
	return append(parts, line[start:])
}

// split cuts line at every unescaped sep and unescapes the pieces.
func split(line string, sep byte) []string {
	parts := splitRaw(line, sep)
	for i, p := range parts {
		parts[i] = unescapeField(p)
	}
	return parts
}

// field returns fields[i] or "" when the record predates that field.
func field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func need(kind string, fields []string, min int) error {
	if len(fields) < min {
		return fmt.Errorf("%s: %w: want at least %d fields, got %d", kind, ErrMalformed, min, len(fields))
	}
	return nil
}
