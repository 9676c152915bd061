package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeList serializes topics/keywords for a TEXT column.
// An empty list is stored as the empty string.
func EncodeList(items []string) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

// DecodeList is the inverse of EncodeList. Empty or blank input decodes to an
// empty, non-nil slice.
func DecodeList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode list %q: %w", raw, err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// KeywordPattern returns the serialized form a keyword takes inside an
// encoded list, quotes included. Stores match it as a substring.
func KeywordPattern(keyword string) string {
	b, err := json.Marshal(keyword)
	if err != nil {
		return `"` + keyword + `"`
	}
	return string(b)
}

// EscapeLike escapes LIKE wildcards using backslash as the escape character.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
