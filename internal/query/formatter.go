package query

import (
	"encoding/json"
	"fmt"
)

// FormatResult renders an execution result as indented JSON. Scalar strings
// are still quoted so output stays machine-parseable.
func FormatResult(value any) (string, error) {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format result: %w", err)
	}
	return string(out), nil
}
