package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MalformedResponseError means no parsing strategy could recover a JSON
// object from the model output. Raw carries the full response text for
// logging and postmortems.
type MalformedResponseError struct {
	Raw string
}

func (e *MalformedResponseError) Error() string {
	return "parse: no JSON object found in model response"
}

// embeddedObjectRe finds a JSON object with at most one level of nesting.
// Cheaper than the brace scan and good enough for most chatty responses.
var embeddedObjectRe = regexp.MustCompile(`\{(?:[^{}]|\{[^{}]*\})*\}`)

// ParseResponse recovers a JSON object from raw model output. Strategies run
// in order from strict to forgiving:
//
//  1. parse the whole string as JSON
//  2. regex-extract an embedded object (handles leading/trailing prose)
//  3. brace-depth scan from the first '{' (handles deep nesting)
//
// The first strategy that yields a JSON object wins.
func ParseResponse(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)

	// Models sometimes fence the object despite instructions.
	trimmed = stripFences(trimmed)

	if obj, ok := tryUnmarshal(trimmed); ok {
		return obj, nil
	}

	if m := embeddedObjectRe.FindString(trimmed); m != "" {
		if obj, ok := tryUnmarshal(m); ok {
			return obj, nil
		}
	}

	if candidate := scanBalancedObject(trimmed); candidate != "" {
		if obj, ok := tryUnmarshal(candidate); ok {
			return obj, nil
		}
	}

	return nil, &MalformedResponseError{Raw: raw}
}

func tryUnmarshal(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// scanBalancedObject returns the substring from the first '{' to its matching
// close brace, tracking depth and skipping braces inside JSON strings.
func scanBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
