package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// DecodeJSON extracts the JSON payload of a model answer (fenced block,
// object or array) and unmarshals it into v.
func DecodeJSON(text string, v interface{}) error {
	payload := extractJSON(text)
	if payload == "" {
		return errors.New("llm: no json found in response")
	}
	return json.Unmarshal([]byte(payload), v)
}

func extractJSON(text string) string {
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			body := strings.TrimSpace(rest[:j])
			body = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(body, "json"), "JSON"))
			if body != "" {
				return body
			}
		}
	}
	objStart, objEnd := strings.Index(text, "{"), strings.LastIndex(text, "}")
	arrStart, arrEnd := strings.Index(text, "["), strings.LastIndex(text, "]")
	switch {
	case objStart >= 0 && objEnd > objStart && (arrStart < 0 || objStart < arrStart):
		return text[objStart : objEnd+1]
	case arrStart >= 0 && arrEnd > arrStart:
		return text[arrStart : arrEnd+1]
	}
	return ""
}
