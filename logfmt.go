// Copyright The ActForGood Authors.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://github.com/actforgood/xenv/blob/main/LICENSE.

package xenv

import (
	"fmt"
	"sort"
	"strings"
)

// logfmt parser states.
const (
	logfmtStateGarbage = iota // between pairs
	logfmtStateKey            // inside a key
	logfmtStateEqual          // right after the "=" sign
	logfmtStateIValue         // inside an unquoted value
	logfmtStateQValue         // inside a quoted value
)

// logfmt parse failure reasons.
const (
	logfmtReasonUnexpectedChar = iota
	logfmtReasonMissingValue
	logfmtReasonMissingEndQuote
)

// LogfmtError is an error returned by [ParseLogfmtLine]
// in case of malformed input.
type LogfmtError struct {
	reason int
	offset int    // 1-based offset of the offending character, 0 for end-of-input errors.
	char   rune   // the offending character, if any.
	key    string // the key being parsed, for end-of-input errors.
}

// newUnexpectedCharError instantiates a new LogfmtError for a character
// not allowed in the current parser state.
func newUnexpectedCharError(char rune, offset int) LogfmtError {
	return LogfmtError{
		reason: logfmtReasonUnexpectedChar,
		offset: offset,
		char:   char,
	}
}

// newMissingValueError instantiates a new LogfmtError for a key
// the input ended upon, before any "=" sign.
func newMissingValueError(key string) LogfmtError {
	return LogfmtError{
		reason: logfmtReasonMissingValue,
		key:    key,
	}
}

// newMissingEndQuoteError instantiates a new LogfmtError for a quoted
// value left unterminated at the end of the input.
func newMissingEndQuoteError(key string) LogfmtError {
	return LogfmtError{
		reason: logfmtReasonMissingEndQuote,
		key:    key,
	}
}

// Error returns string representation of the LogfmtError.
// It implements standard go error interface.
// Note: the messages' content is contractual, tooling may rely on it.
func (e LogfmtError) Error() string {
	switch e.reason {
	case logfmtReasonMissingValue:
		return fmt.Sprintf("Missing value for %s", e.key)
	case logfmtReasonMissingEndQuote:
		return fmt.Sprintf("Missing end quote for %s", e.key)
	default:
		return fmt.Sprintf("Unexpected %c at %d", e.char, e.offset)
	}
}

// Offset returns the 1-based character offset the parser choked at.
// It is 0 for errors raised at end of input.
func (e LogfmtError) Offset() int {
	return e.offset
}

// Char returns the offending character, if the error was raised upon one.
func (e LogfmtError) Char() rune {
	return e.char
}

// Key returns the key being parsed when the input ended prematurely.
func (e LogfmtError) Key() string {
	return e.key
}

// ParseLogfmtLine tokenizes one line of `key=value key2="value 2"` text
// into a string-to-string map.
//
// The accepted grammar is intentionally a strict subset of informal logfmt:
// keys are alphanumeric only, unquoted values end at the first space and may
// not contain control characters, quoted values escape only `\"` and `\\`.
// Any deviation is a hard [LogfmtError] - this parser reads trusted
// configuration, not untrusted log output, and leniency there would let
// typos pass silently.
//
// Duplicate keys overwrite in encounter order.
func ParseLogfmtLine(line string) (map[string]string, error) {
	var (
		output  = make(map[string]string)
		key     strings.Builder
		value   strings.Builder
		escaped bool
		state   = logfmtStateGarbage
		pos     int
	)

	for _, char := range line {
		pos++

		switch state {
		case logfmtStateGarbage:
			if isLogfmtAlnum(char) {
				key.Reset()
				key.WriteRune(char)
				state = logfmtStateKey

				continue
			}
			if char == ' ' {
				continue
			}

			return nil, newUnexpectedCharError(char, pos)
		case logfmtStateKey:
			if isLogfmtAlnum(char) {
				key.WriteRune(char)

				continue
			}
			if char == '=' {
				state = logfmtStateEqual

				continue
			}

			return nil, newUnexpectedCharError(char, pos)
		case logfmtStateEqual:
			if char == '"' {
				value.Reset()
				escaped = false
				state = logfmtStateQValue

				continue
			}
			if char > ' ' {
				value.Reset()
				value.WriteRune(char)
				state = logfmtStateIValue

				continue
			}

			return nil, newUnexpectedCharError(char, pos)
		case logfmtStateIValue:
			if char == ' ' {
				output[key.String()] = value.String()
				state = logfmtStateGarbage

				continue
			}
			if char > ' ' {
				value.WriteRune(char)

				continue
			}

			return nil, newUnexpectedCharError(char, pos)
		case logfmtStateQValue:
			if char == '\\' {
				if escaped {
					escaped = false
					value.WriteRune(char)
				} else {
					escaped = true
				}

				continue
			}
			if char == '"' {
				if escaped {
					escaped = false
					value.WriteRune(char)
				} else {
					output[key.String()] = value.String()
					state = logfmtStateGarbage
				}

				continue
			}

			// within a quoted value, any character goes.
			value.WriteRune(char)
		}
	}

	switch state {
	case logfmtStateKey:
		return nil, newMissingValueError(key.String())
	case logfmtStateEqual:
		output[key.String()] = ""
	case logfmtStateIValue:
		output[key.String()] = value.String()
	case logfmtStateQValue:
		return nil, newMissingEndQuoteError(key.String())
	}

	return output, nil
}

// FormatLogfmtLine serializes a string-to-string map into one logfmt line
// accepted back by [ParseLogfmtLine]. Keys are written in lexicographic
// order so output is deterministic. Values needing it are double-quoted,
// with `"` and `\` escaped.
// An error is returned for keys the strict grammar cannot represent
// (empty, or containing non-alphanumeric characters).
func FormatLogfmtLine(kv map[string]string) (string, error) {
	keys := make([]string, 0, len(kv))
	for key := range kv {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var line strings.Builder
	for idx, key := range keys {
		if !isLogfmtKey(key) {
			return "", fmt.Errorf(`key "%s" is not representable in logfmt`, key)
		}
		if idx > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(key)
		line.WriteByte('=')
		writeLogfmtValue(&line, kv[key])
	}

	return line.String(), nil
}

// writeLogfmtValue writes a value, quoted only when needed.
func writeLogfmtValue(line *strings.Builder, value string) {
	needsQuoting := strings.IndexFunc(value, func(char rune) bool {
		return char <= ' ' || char == '"' || char == '\\'
	}) != -1
	if value != "" && !needsQuoting {
		line.WriteString(value)

		return
	}

	line.WriteByte('"')
	for _, char := range value {
		if char == '"' || char == '\\' {
			line.WriteByte('\\')
		}
		line.WriteRune(char)
	}
	line.WriteByte('"')
}

// isLogfmtAlnum checks a character is in the strict key charset.
func isLogfmtAlnum(char rune) bool {
	return (char >= '0' && char <= '9') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= 'a' && char <= 'z')
}

// isLogfmtKey checks a whole key is representable.
func isLogfmtKey(key string) bool {
	if key == "" {
		return false
	}
	for _, char := range key {
		if !isLogfmtAlnum(char) {
			return false
		}
	}

	return true
}
