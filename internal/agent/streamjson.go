package agent

import (
	"encoding/json"
	"strings"
)

// ParseStreamingJSON implements the Reassembler's permissive tool-call
// argument parser (§4.2): the accumulated buffer is parsed first with a
// strict parser; on failure, a partial parser repairs common truncation
// points (an open string, a dangling key, an unclosed object or array) and
// retries. A fragment that cannot be repaired yields an empty object —
// this never returns an error, so a UI can display arguments as they
// stream in, including mid-token.
func ParseStreamingJSON(buf string) json.RawMessage {
	trimmed := strings.TrimSpace(buf)
	if trimmed == "" {
		return json.RawMessage(`{}`)
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	if repaired, ok := repairPartialJSON(trimmed); ok {
		return json.RawMessage(repaired)
	}
	return json.RawMessage(`{}`)
}

// repairPartialJSON closes an unterminated string and any open
// objects/arrays, then — if that alone isn't valid JSON (e.g. the buffer
// ends mid-key or right after a colon with no value yet) — backs off to the
// last point at which the top-level value list was complete and retries.
func repairPartialJSON(s string) (string, bool) {
	closed, stack := closeUnterminatedString(s)

	if candidate, ok := withClosers(closed, stack); ok {
		return candidate, true
	}

	cut := lastSafeCutPoint(closed)
	if cut < 0 {
		return "", false
	}
	trimmed := strings.TrimRight(closed[:cut], " \t\n\r,")
	return withClosers(trimmed, stackFor(trimmed))
}

func withClosers(s string, stack []byte) (string, bool) {
	var b strings.Builder
	b.WriteString(s)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '[' {
			b.WriteByte(']')
		} else {
			b.WriteByte('}')
		}
	}
	candidate := b.String()
	if json.Valid([]byte(candidate)) {
		return candidate, true
	}
	return "", false
}

// closeUnterminatedString appends a closing quote if s ends mid-string, and
// returns the stack of still-open '{'/'[' at the end of s.
func closeUnterminatedString(s string) (string, []byte) {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
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
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if inString {
		return s + `"`, stack
	}
	return s, stack
}

func stackFor(s string) []byte {
	_, stack := closeUnterminatedString(s)
	return stack
}

// lastSafeCutPoint returns the index just after the most recent top-level
// (depth-1) comma or opening bracket in s, outside of any string, or -1 if
// none exists.
func lastSafeCutPoint(s string) int {
	inString := false
	escaped := false
	depth := 0
	last := -1
	for i := 0; i < len(s); i++ {
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
		case '{', '[':
			depth++
			if depth == 1 {
				last = i + 1
			}
		case '}', ']':
			depth--
		case ',':
			if depth == 1 {
				last = i + 1
			}
		}
	}
	return last
}
