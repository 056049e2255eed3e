package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StringList decodes backend fields that arrive either as a single
// comma-separated string, an array of strings, or null. Legacy listings store
// accessories as one string; newer ones use arrays.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*s = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*s = values
		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = splitList(value)
		return nil
	}

	return fmt.Errorf("cannot decode %s into StringList", trimmed)
}

// MarshalJSON always emits an array, keeping new writes consistent even when
// the source document used a string value.
func (s StringList) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(s))
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
