package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/LeventeLantos/webhook-chat/internal/model"
)

type YAMLExporter struct{}

func (e *YAMLExporter) Export(msgs []model.Message, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(map[string]any{"messages": msgs})
}

func (e *YAMLExporter) Extension() string { return "yaml" }

func (e *YAMLExporter) ContentType() string { return "application/yaml" }
