// Package str holds the string helpers shared by config loading, tag parsing and code generation.
package str

import "strings"

// ToScreamingSnakeCase transforms a given string into screaming snake case format
func ToScreamingSnakeCase(in string) string {
	in = strings.TrimSpace(in)
	if len(in) == 0 {
		return in
	}

	sb := strings.Builder{}
	sb.Grow(len(in) + len(in)/3)

	for i, b := range []byte(in) {
		write := true
		separate := false

		switch {
		case 'a' <= b && b <= 'z':
			b -= 'a' - 'A'
		case 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
			separate = true
		case b == '_' || b == '-':
			write = false
			separate = true
		}

		if i > 0 && separate {
			sb.WriteByte('_')
		}
		if write {
			sb.WriteByte(b)
		}
	}

	return sb.String()
}

// Options is the parsed form of a comma separated option list such as `name=db,optional,source=parent`.
type Options struct {
	Flags  []string
	Values map[string]string
}

// Has reports whether the bare flag is present.
func (o Options) Has(flag string) bool {
	for _, f := range o.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Get returns the value of a key=value entry.
func (o Options) Get(key string) (string, bool) {
	v, found := o.Values[key]
	return v, found
}

// ParseOptions splits a comma separated list into bare flags and key=value pairs.
// Values may be double quoted to hold commas. Blank entries are skipped.
func ParseOptions(in string) Options {
	opts := Options{Values: make(map[string]string)}
	for _, part := range splitOutsideQuotes(in, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, isPair := strings.Cut(part, "=")
		if !isPair {
			opts.Flags = append(opts.Flags, part)
			continue
		}
		opts.Values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return opts
}

func splitOutsideQuotes(in string, sep byte) []string {
	var (
		parts    []string
		start    int
		inQuotes bool
	)
	for i := 0; i < len(in); i++ {
		switch in[i] {
		case '"':
			inQuotes = !inQuotes
		case sep:
			if !inQuotes {
				parts = append(parts, in[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, in[start:])
}
