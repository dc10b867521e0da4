package meta

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const (
	// TagKey is the struct tag key holding field metadata.
	TagKey = "cql"
	// DirectivePrefix starts a metadata directive in a doc comment.
	DirectivePrefix = "//cql:"
	// SkipTag is the tag value marking a slot as skipped.
	SkipTag = "-"
)

// ParseStructTag parses the `cql` entry of a struct tag. skip is true when the
// entry is exactly "-".
func ParseStructTag(tag reflect.StructTag) (anns []Annotation, skip bool, err error) {
	value, ok := tag.Lookup(TagKey)
	if !ok {
		return nil, false, nil
	}

	if strings.TrimSpace(value) == SkipTag {
		return nil, true, nil
	}

	anns, err = Parse(value)

	return anns, false, err
}

// ParseDirectives parses every "//cql:" line of a doc comment. Lines without
// the prefix are ignored. A kind may appear only once across all lines.
func ParseDirectives(lines []string) ([]Annotation, error) {
	var parts []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, DirectivePrefix); ok {
			parts = append(parts, rest)
		}
	}

	if len(parts) == 0 {
		return nil, nil
	}

	return Parse(strings.Join(parts, ";"))
}

// Parse parses a ';'-separated list of directives.
func Parse(s string) ([]Annotation, error) {
	directives, err := splitTop(s, ';')
	if err != nil {
		return nil, err
	}

	var anns []Annotation

	seen := make(map[Kind]bool)

	for _, d := range directives {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		a, err := parseDirective(d)
		if err != nil {
			return nil, err
		}

		if seen[a.Kind()] {
			return nil, fmt.Errorf("duplicate %q directive", a.Kind())
		}

		seen[a.Kind()] = true
		anns = append(anns, a)
	}

	return anns, nil
}

func parseDirective(d string) (Annotation, error) {
	name, rawArgs, hasArgs := d, "", false

	if i := strings.IndexByte(d, '('); i >= 0 {
		if !strings.HasSuffix(d, ")") {
			return nil, fmt.Errorf("directive %q: missing closing parenthesis", d)
		}

		name = strings.TrimSpace(d[:i])
		rawArgs = strings.TrimSpace(d[i+1 : len(d)-1])
		hasArgs = true
	}

	if !isIdent(name) {
		return nil, fmt.Errorf("directive %q: invalid name %q", d, name)
	}

	switch Kind(name) {
	case KindColumn:
		n, cs, codec, err := parseNameArgs(name, rawArgs)
		if err != nil {
			return nil, err
		}

		return Column{Name: n, CaseSensitive: cs, Codec: codec}, nil

	case KindField:
		n, cs, codec, err := parseNameArgs(name, rawArgs)
		if err != nil {
			return nil, err
		}

		return Field{Name: n, CaseSensitive: cs, Codec: codec}, nil

	case KindPartitionKey:
		pos, err := parsePosition(name, rawArgs)
		if err != nil {
			return nil, err
		}

		return PartitionKey{Position: pos}, nil

	case KindClusteringColumn:
		pos, err := parsePosition(name, rawArgs)
		if err != nil {
			return nil, err
		}

		return ClusteringColumn{Position: pos}, nil

	case KindComputed:
		expr := unquote(rawArgs)
		if expr == "" {
			return nil, fmt.Errorf("%s: expression is required", name)
		}

		return Computed{Expression: expr}, nil

	case KindFrozen:
		return Frozen{Definition: unquote(rawArgs)}, nil

	case KindFrozenKey, KindFrozenValue, KindTransient:
		if hasArgs && rawArgs != "" {
			return nil, fmt.Errorf("%s: takes no arguments", name)
		}

		switch Kind(name) {
		case KindFrozenKey:
			return FrozenKey{}, nil
		case KindFrozenValue:
			return FrozenValue{}, nil
		default:
			return Transient{}, nil
		}

	default:
		return Custom{Name: name, Args: rawArgs}, nil
	}
}

// parseNameArgs parses the arguments shared by column and field:
// an optional positional name, name=, caseSensitive[=bool] and codec=.
func parseNameArgs(kind, raw string) (name string, caseSensitive bool, codec string, err error) {
	parts, err := splitTop(raw, ',')
	if err != nil {
		return "", false, "", err
	}

	positional := 0

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		key, value, named := cutTop(p, '=')
		if !named {
			if p == "caseSensitive" {
				caseSensitive = true
				continue
			}

			positional++
			if positional > 1 {
				return "", false, "", fmt.Errorf("%s: unexpected argument %q", kind, p)
			}

			name = unquote(p)

			continue
		}

		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))

		switch key {
		case "name":
			name = value
		case "caseSensitive":
			caseSensitive, err = strconv.ParseBool(value)
			if err != nil {
				return "", false, "", fmt.Errorf("%s: invalid caseSensitive value %q", kind, value)
			}
		case "codec":
			codec = value
		default:
			return "", false, "", fmt.Errorf("%s: unknown argument %q", kind, key)
		}
	}

	return name, caseSensitive, codec, nil
}

func parsePosition(kind, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	if key, value, named := cutTop(raw, '='); named {
		if strings.TrimSpace(key) != "position" {
			return 0, fmt.Errorf("%s: unknown argument %q", kind, strings.TrimSpace(key))
		}

		raw = strings.TrimSpace(value)
	}

	pos, err := strconv.Atoi(raw)
	if err != nil || pos < 0 {
		return 0, fmt.Errorf("%s: invalid position %q", kind, raw)
	}

	return pos, nil
}

// splitTop splits s on sep, ignoring separators inside parentheses or single quotes.
func splitTop(s string, sep byte) ([]string, error) {
	var parts []string

	depth, quoted, start := 0, false, 0

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '\'':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parenthesis in %q", s)
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}

	if quoted {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}

	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parenthesis in %q", s)
	}

	return append(parts, s[start:]), nil
}

// cutTop cuts s around the first sep that is outside quotes and parentheses.
func cutTop(s string, sep byte) (before, after string, found bool) {
	depth, quoted := 0, false

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == sep && depth == 0:
			return s[:i], s[i+1:], true
		}
	}

	return s, "", false
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}

	return s
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		isLetter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'

		if !isLetter && (i == 0 || !isDigit) {
			return false
		}
	}

	return true
}
