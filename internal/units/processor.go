package units

import "strings"

// originalKey returns the bookkeeping key storing the pre-normalization
// string for a property.
func originalKey(key string) string {
	return "_" + key + "_original"
}

// IsOriginalKey reports whether key is normalization bookkeeping rather than
// a real property.
func IsOriginalKey(key string) bool {
	return strings.HasPrefix(key, "_") && strings.HasSuffix(key, "_original")
}

// NormalizeProperties rewrites value-with-unit strings in props to numbers in
// the SI base unit of their dimension, keeping the original string under a
// "_<key>_original" sibling. Strings with an unknown unit and non-string
// values are left untouched. Nested objects are normalized recursively.
func NormalizeProperties(props map[string]any) {
	for key, value := range props {
		if IsOriginalKey(key) {
			continue
		}
		switch v := value.(type) {
		case string:
			number, unit, ok := Detect(v)
			if !ok {
				continue
			}
			base, _, err := ToBase(number, unit)
			if err != nil {
				continue
			}
			props[key] = base
			props[originalKey(key)] = v
		case map[string]any:
			NormalizeProperties(v)
		}
	}
}

// OriginalString returns the recorded pre-normalization string for key, if
// one exists.
func OriginalString(props map[string]any, key string) (string, bool) {
	s, ok := props[originalKey(key)].(string)
	return s, ok
}
