package extract

import (
	"errors"
	"strings"
)

// extractJSON returns the first balanced JSON object found in s. Model output
// often wraps the payload in prose or a markdown fence, so we unwrap fences
// first and then scan for a balanced {...}, ignoring braces inside strings.
func extractJSON(s string) (string, error) {
	s = strings.TrimSpace(s)
	if inner, ok := stripCodeFence(s); ok {
		s = strings.TrimSpace(inner)
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			if out, ok := balancedObjectFrom(s, i); ok {
				return out, nil
			}
		}
	}
	return "", errors.New("no balanced JSON object found")
}

// stripCodeFence removes the first fenced code block when s starts with a
// ``` or ~~~ fence, tolerating a language tag like ```json.
func stripCodeFence(s string) (string, bool) {
	trim := strings.TrimLeft(s, "\n\r\t ")
	fence := ""
	switch {
	case strings.HasPrefix(trim, "```"):
		fence = "```"
	case strings.HasPrefix(trim, "~~~"):
		fence = "~~~"
	default:
		return "", false
	}
	rest := trim[len(fence):]
	nl := strings.IndexByte(rest, '\n')
	if nl == -1 {
		return "", false
	}
	rest = rest[nl+1:]
	if end := strings.Index(rest, fence); end != -1 {
		return rest[:end], true
	}
	return "", false
}

// balancedObjectFrom extracts a balanced JSON object starting at startIdx,
// handling nested objects/arrays and escape sequences inside strings.
func balancedObjectFrom(s string, startIdx int) (string, bool) {
	var (
		depth    int
		inString bool
		escape   bool
	)
	for i := startIdx; i < len(s); i++ {
		c := s[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			switch c {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[startIdx : i+1], true
			}
			if depth < 0 {
				return "", false
			}
		}
	}
	return "", false
}
