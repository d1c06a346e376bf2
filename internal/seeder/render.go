package seeder

import (
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// QuoteString renders s as a SQL string literal, doubling embedded quotes.
// The script is static and built from generated values only, so escaping is
// enough here; anything fed from outside input should use bound parameters.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// formatValue formats a value as a SQL literal for the given dialect
func formatValue(d Dialect, val interface{}) string {
	if val == nil {
		return "NULL"
	}
	switch v := val.(type) {
	case string:
		return QuoteString(v)
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	case bool:
		return d.Bool(v)
	case time.Time:
		// timestamptz columns read zone-less input in the session zone
		if d == DialectPostgres {
			return QuoteString(FormatTimestamp(v) + "+00")
		}
		return QuoteString(FormatTimestamp(v))
	default:
		return QuoteString(fmt.Sprintf("%v", v))
	}
}

// inlinePlaceholders substitutes every '?' placeholder outside of string
// literals with the formatted argument at the same position.
func inlinePlaceholders(query string, args []interface{}, format func(interface{}) string) (string, error) {
	var b strings.Builder
	b.Grow(len(query) + len(args)*8)

	inQuote := false
	next := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			if next >= len(args) {
				return "", fmt.Errorf("placeholder %d has no argument in %q", next+1, query)
			}
			b.WriteString(format(args[next]))
			next++
		default:
			b.WriteByte(c)
		}
	}

	if next != len(args) {
		return "", fmt.Errorf("%d arguments supplied for %d placeholders", len(args), next)
	}
	return b.String(), nil
}
