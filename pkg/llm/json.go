package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches a fenced code block, optionally tagged "json".
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// thinkTagPattern matches <think>...</think> tags that some models
// prepend to their responses.
var thinkTagPattern = regexp.MustCompile(`(?s)^\s*<think>.*?</think>\s*`)

// ExtractPayload extracts the structured payload from an LLM response
// that may be wrapped in Markdown code fences or preceded by <think>
// tags. It returns the most plausible JSON text without parsing it, so
// callers can unmarshal into their own types and report schema errors
// separately from extraction errors.
func ExtractPayload(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")
	cleaned = strings.TrimSpace(cleaned)

	if m := fencePattern.FindStringSubmatch(cleaned); m != nil {
		fenced := strings.TrimSpace(m[1])
		if fenced != "" {
			return fenced, nil
		}
	}

	// Unfenced: locate the first balanced JSON object or array.
	objStart := strings.IndexByte(cleaned, '{')
	arrStart := strings.IndexByte(cleaned, '[')

	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		if payload, ok := extractBalanced(cleaned, '{', '}'); ok {
			return payload, nil
		}
	}
	if arrStart >= 0 {
		if payload, ok := extractBalanced(cleaned, '[', ']'); ok {
			return payload, nil
		}
	}

	if cleaned == "" {
		return "", fmt.Errorf("empty response")
	}
	return "", fmt.Errorf("no JSON payload found in response")
}

// extractBalanced finds the first balanced structure starting with
// openChar, counting bracket depth and honoring string literals.
func extractBalanced(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// ParseResponse extracts the payload from a response and unmarshals it
// into the target type.
func ParseResponse[T any](response string) (T, error) {
	var result T

	payload, err := ExtractPayload(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return result, fmt.Errorf("unmarshal response payload: %w", err)
	}

	return result, nil
}
