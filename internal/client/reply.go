package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNoReply means the body was valid JSON but carried no reply text.
var ErrNoReply = errors.New("no reply in response body")

type Reply struct {
	Text      string
	Timestamp string
}

// ParseReply reads a workflow reply: a JSON object, or the first element of a
// JSON array, with text in "message" (preferred) or "text" and an optional
// "timestamp" (string or number).
func ParseReply(body []byte) (Reply, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Reply{}, ErrNoReply
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Reply{}, fmt.Errorf("failed to decode json: %w body=%q", err, truncate(body, 200))
	}

	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return Reply{}, ErrNoReply
		}
		v = arr[0]
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return Reply{}, ErrNoReply
	}

	text := scalar(obj["message"])
	if text == "" {
		text = scalar(obj["text"])
	}
	if text == "" {
		return Reply{}, ErrNoReply
	}

	return Reply{Text: text, Timestamp: scalar(obj["timestamp"])}, nil
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
