package export

import (
	"encoding/json"
	"io"

	"github.com/LeventeLantos/webhook-chat/internal/model"
)

type JSONExporter struct{}

func (e *JSONExporter) Export(msgs []model.Message, w io.Writer) error {
	if msgs == nil {
		msgs = []model.Message{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"messages": msgs})
}

func (e *JSONExporter) Extension() string { return "json" }

func (e *JSONExporter) ContentType() string { return "application/json" }

// JSONLExporter writes one message per line.
type JSONLExporter struct{}

func (e *JSONLExporter) Export(msgs []model.Message, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, m := range msgs {
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

func (e *JSONLExporter) Extension() string { return "jsonl" }

func (e *JSONLExporter) ContentType() string { return "application/x-ndjson" }
