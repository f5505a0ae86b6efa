package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts a slash-delimited query path into its AST. It is a pure
// function of the input string and performs no I/O.
func Parse(path string) (Path, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	// Network-level queries select top-level collections instead of a node.
	if strings.HasPrefix(path, "nodes") || strings.HasPrefix(path, "edges") {
		return parseNetworkQuery(path)
	}

	// Scope resolution: base-path?scope=a,b,c. The last segment of the base
	// path names the property to resolve; the rest is the inner path.
	if base, scopePart, found := strings.Cut(path, "?"); found {
		if scopeStr, ok := strings.CutPrefix(scopePart, "scope="); ok {
			parts := strings.Split(base, "/")
			property := parts[len(parts)-1]
			if property == "" && len(parts) == 1 {
				return nil, ErrUnexpectedEnd
			}

			var scopes []string
			for _, s := range strings.Split(scopeStr, ",") {
				scopes = append(scopes, strings.TrimSpace(s))
			}

			innerBase := parts[0]
			if len(parts) > 1 {
				innerBase = strings.Join(parts[:len(parts)-1], "/")
			}
			inner, err := Parse(innerBase)
			if err != nil {
				return nil, err
			}
			return &ScopeResolvePath{Property: property, Scopes: scopes, Inner: inner}, nil
		}
	}

	parts := strings.Split(path, "/")

	var current Path = &NodePath{ID: parts[0]}

	for _, part := range parts[1:] {
		if part == "" {
			continue
		}

		// A segment holding both a range and a filter ("1:2[type=Pipe]")
		// applies the range first, then the filter on top.
		if strings.Contains(part, ":") && strings.Contains(part, "[") {
			bracket := strings.Index(part, "[")
			rangePart := part[:bracket]
			filterPart := part[bracket:]

			if rng, ok, err := parseRange(rangePart); err != nil {
				return nil, err
			} else if ok {
				current = &RangePath{Start: rng.start, End: rng.end, Inner: current}

				if flt, ok, err := parseFilter(filterPart); err != nil {
					return nil, err
				} else if ok {
					current = &FilterPath{Field: flt.field, Op: flt.op, Value: flt.value, Inner: current}
				}
				continue
			}
		}

		// Filter syntax: property[field=value]. An empty property applies
		// the filter to the current chain directly.
		if flt, ok, err := parseFilter(part); err != nil {
			return nil, err
		} else if ok {
			inner := current
			if flt.property != "" {
				inner = &PropertyPath{Name: flt.property, Inner: current}
			}
			current = &FilterPath{Field: flt.field, Op: flt.op, Value: flt.value, Inner: inner}
			continue
		}

		// Range syntax: "1:2", ":2", "1:".
		if rng, ok, err := parseRange(part); err != nil {
			return nil, err
		} else if ok {
			current = &RangePath{Start: rng.start, End: rng.end, Inner: current}
			continue
		}

		// Numeric index, else a property name.
		if idx, err := strconv.ParseUint(part, 10, 32); err == nil {
			current = &IndexPath{Index: int(idx), Inner: current}
		} else {
			current = &PropertyPath{Name: part, Inner: current}
		}
	}

	return current, nil
}

type parsedRange struct {
	start *int
	end   *int
}

func parseRange(part string) (parsedRange, bool, error) {
	if !strings.Contains(part, ":") {
		return parsedRange{}, false, nil
	}
	pieces := strings.Split(part, ":")
	if len(pieces) != 2 {
		return parsedRange{}, false, nil
	}

	var rng parsedRange
	if pieces[0] != "" {
		n, err := strconv.ParseUint(pieces[0], 10, 32)
		if err != nil {
			return parsedRange{}, false, &InvalidIndexError{Detail: fmt.Sprintf("invalid range start: %s", pieces[0])}
		}
		start := int(n)
		rng.start = &start
	}
	if pieces[1] != "" {
		n, err := strconv.ParseUint(pieces[1], 10, 32)
		if err != nil {
			return parsedRange{}, false, &InvalidIndexError{Detail: fmt.Sprintf("invalid range end: %s", pieces[1])}
		}
		end := int(n)
		rng.end = &end
	}
	return rng, true, nil
}

type parsedFilter struct {
	property string
	field    string
	op       FilterOp
	value    string
}

func parseFilter(part string) (parsedFilter, bool, error) {
	open := strings.Index(part, "[")
	if open == -1 {
		return parsedFilter{}, false, nil
	}
	closing := strings.Index(part, "]")
	if closing < open {
		return parsedFilter{}, false, nil
	}

	field, op, value, err := parseFilterExpression(part[open+1 : closing])
	if err != nil {
		return parsedFilter{}, false, err
	}
	return parsedFilter{property: part[:open], field: field, op: op, value: value}, true, nil
}

// parseFilterExpression tries two-character operators first so that "=" does
// not misparse ">=" and friends.
func parseFilterExpression(expr string) (string, FilterOp, string, error) {
	ops := []struct {
		token string
		op    FilterOp
	}{
		{">=", OpGreaterThanOrEqual},
		{"<=", OpLessThanOrEqual},
		{"!=", OpNotEquals},
		{">", OpGreaterThan},
		{"<", OpLessThan},
		{"=", OpEquals},
	}
	for _, candidate := range ops {
		if pos := strings.Index(expr, candidate.token); pos != -1 {
			field := strings.TrimSpace(expr[:pos])
			value := strings.TrimSpace(expr[pos+len(candidate.token):])
			return field, candidate.op, value, nil
		}
	}
	return "", 0, "", &InvalidCharacterError{Char: '=', Pos: 0}
}

func parseNetworkQuery(path string) (Path, error) {
	if path == "nodes" || path == "edges" {
		return &PropertyPath{Name: path, Inner: &NodePath{ID: "network"}}, nil
	}

	open := strings.Index(path, "[")
	closing := strings.Index(path, "]")
	if open != -1 && closing != -1 {
		collection := path[:open]
		if collection == "nodes" || collection == "edges" {
			field, op, value, err := parseFilterExpression(path[open+1 : closing])
			if err != nil {
				return nil, err
			}
			return &FilterPath{
				Field: field,
				Op:    op,
				Value: value,
				Inner: &PropertyPath{Name: collection, Inner: &NodePath{ID: "network"}},
			}, nil
		}
	}

	return nil, &InvalidCharacterError{Char: '?', Pos: 0}
}
