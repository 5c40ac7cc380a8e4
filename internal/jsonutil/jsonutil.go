package jsonutil

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no decodable JSON value is found in a payload.
var ErrNoJSON = errors.New("jsonutil: no valid JSON found")

// codeBlockPattern matches markdown code fences with an optional language tag.
var codeBlockPattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.+?)\\n```")

// UnmarshalFlex decodes raw into v with best effort:
//  1. direct unmarshal
//  2. extraction of an embedded JSON value (fenced block or raw object)
//
// Model output is frequently wrapped in prose or markdown; callers treat a
// failure here as "no usable data", never as a fatal condition.
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	extracted, err := Extract(string(raw))
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(extracted), v)
}

// Extract pulls the first JSON object or array out of free-form text.
// Priority: fenced ```json blocks, then a balanced raw {...} or [...] scan.
func Extract(text string) (string, error) {
	for _, match := range codeBlockPattern.FindAllStringSubmatch(text, -1) {
		if len(match) < 3 {
			continue
		}
		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}
		content := strings.TrimSpace(match[2])
		if isValidJSON(content) {
			return content, nil
		}
	}
	if out, ok := extractBalanced(text); ok {
		return out, nil
	}
	return "", ErrNoJSON
}

func isValidJSON(s string) bool {
	return json.Valid([]byte(s))
}

// extractBalanced scans for the first balanced {...} or [...] span that
// decodes as JSON. String literals and escapes are honored so braces inside
// strings do not terminate the scan.
func extractBalanced(text string) (string, bool) {
	start := -1
	for i, r := range text {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case '}', ']':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if isValidJSON(candidate) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}
