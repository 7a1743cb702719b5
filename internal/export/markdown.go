package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/LeventeLantos/webhook-chat/internal/model"
)

type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(msgs []model.Message, w io.Writer) error {
	var b strings.Builder

	b.WriteString("# Chat transcript\n\n")
	if len(msgs) == 0 {
		b.WriteString("_No messages._\n")
	}

	for _, m := range msgs {
		who := "Bot"
		if m.Sent {
			who = "You"
		}
		fmt.Fprintf(&b, "**%s** · %s", who, m.Timestamp.Format("2006-01-02 15:04"))
		if m.Sent && m.Status != "" {
			fmt.Fprintf(&b, " · _%s_", m.Status)
		}
		b.WriteString("\n\n")
		for _, line := range strings.Split(m.Text, "\n") {
			fmt.Fprintf(&b, "> %s\n", line)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (e *MarkdownExporter) Extension() string { return "md" }

func (e *MarkdownExporter) ContentType() string { return "text/markdown; charset=utf-8" }
