// Package lenient decodes JSON-like text produced by language models.
//
// Models prompted for JSON often return near-JSON. Two defects are repaired,
// in order, before decoding with encoding/json:
//
//  1. Lone backslashes inside string values, such as Windows paths or regex
//     fragments quoted from code. Each is doubled so it decodes as a literal
//     backslash. Only \" and \uXXXX escapes are kept, so a standard escape
//     such as \n also decodes as a backslash followed by n.
//  2. Trailing commas before a closing ] or }.
//
// Nothing else is repaired.
package lenient

import (
	"encoding/json"
	"strings"

	"github.com/fwojciec/devq"
)

// Repair applies the two textual repairs. It is pure and idempotent. JSON
// with neither defect and no escapes other than \", \\ and \uXXXX comes back
// unchanged.
func Repair(text string) string {
	return removeTrailingCommas(doubleLoneBackslashes(text))
}

// Extract returns the span from the first '{' to the last '}', dropping code
// fences and prose around the object. Text without such a span is returned
// trimmed.
func Extract(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return strings.TrimSpace(text)
	}
	return text[start : end+1]
}

// Decode extracts, repairs and decodes text into v. Failure yields a
// *devq.StructuredOutputError carrying the original and repaired text.
func Decode(text string, v any) error {
	repaired := Repair(Extract(text))
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return &devq.StructuredOutputError{
			Original: text,
			Repaired: repaired,
			Err:      err,
		}
	}
	return nil
}

// doubleLoneBackslashes doubles every backslash that is neither part of a
// run of backslashes nor the start of an escaped quote or a \uXXXX escape.
// Doubling those two would change the structure of valid JSON, while every
// other single-character escape the model writes is treated as literal text.
func doubleLoneBackslashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '\\' {
			j++
		}
		run := s[i:j]
		sb.WriteString(run)
		if len(run) == 1 && !isKeptEscape(s[j:]) {
			sb.WriteByte('\\')
		}
		i = j
	}
	return sb.String()
}

// isKeptEscape reports whether rest, the text after a lone backslash, starts
// an escape that must stay intact.
func isKeptEscape(rest string) bool {
	if strings.HasPrefix(rest, `"`) {
		return true
	}
	if len(rest) < 5 || rest[0] != 'u' {
		return false
	}
	for _, c := range rest[1:5] {
		if !isHex(c) {
			return false
		}
	}
	return true
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// removeTrailingCommas drops commas, outside string literals, that are
// followed only by whitespace and a closing bracket or brace. A run of such
// commas is dropped as a whole so that a second pass finds nothing to do.
func removeTrailingCommas(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	inString := false
	backslashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			sb.WriteByte(c)
			switch {
			case c == '\\':
				backslashes++
				continue
			case c == '"' && backslashes%2 == 0:
				inString = false
			}
			backslashes = 0
			continue
		}
		switch c {
		case '"':
			inString = true
		case ',':
			if closesAfterWhitespace(s[i+1:]) {
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func closesAfterWhitespace(rest string) bool {
	trimmed := strings.TrimLeft(rest, " \t\r\n,")
	return len(trimmed) > 0 && (trimmed[0] == ']' || trimmed[0] == '}')
}
