package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LeventeLantos/webhook-chat/internal/model"
)

const (
	defaultWidth = 64
	bubbleWidth  = 44
)

type palette struct {
	sent      lipgloss.Color
	received  lipgloss.Color
	meta      lipgloss.Color
	read      lipgloss.Color
	header    lipgloss.Color
	online    lipgloss.Color
	offline   lipgloss.Color
	errorText lipgloss.Color
}

var palettes = map[model.Theme]palette{
	model.ThemeLight: {
		sent:      lipgloss.Color("28"),
		received:  lipgloss.Color("240"),
		meta:      lipgloss.Color("245"),
		read:      lipgloss.Color("33"),
		header:    lipgloss.Color("62"),
		online:    lipgloss.Color("42"),
		offline:   lipgloss.Color("243"),
		errorText: lipgloss.Color("196"),
	},
	model.ThemeDark: {
		sent:      lipgloss.Color("42"),
		received:  lipgloss.Color("252"),
		meta:      lipgloss.Color("243"),
		read:      lipgloss.Color("39"),
		header:    lipgloss.Color("212"),
		online:    lipgloss.Color("42"),
		offline:   lipgloss.Color("240"),
		errorText: lipgloss.Color("203"),
	},
}

// Renderer draws the chat as terminal text.
type Renderer struct {
	width int
	p     palette

	sentStyle     lipgloss.Style
	receivedStyle lipgloss.Style
	metaStyle     lipgloss.Style
	headerStyle   lipgloss.Style
}

func New(theme model.Theme) *Renderer {
	return NewWithWidth(theme, defaultWidth)
}

func NewWithWidth(theme model.Theme, width int) *Renderer {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[model.ThemeLight]
	}
	if width < bubbleWidth {
		width = bubbleWidth
	}

	return &Renderer{
		width: width,
		p:     p,
		sentStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.sent).
			Padding(0, 1).
			MaxWidth(bubbleWidth),
		receivedStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.received).
			Padding(0, 1).
			MaxWidth(bubbleWidth),
		metaStyle: lipgloss.NewStyle().
			Foreground(p.meta),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.header).
			Padding(0, 1),
	}
}

// Header shows the contact name and the online indicator.
func (r *Renderer) Header(online bool) string {
	dot := lipgloss.NewStyle().Foreground(r.p.offline).Render("○ offline")
	if online {
		dot = lipgloss.NewStyle().Foreground(r.p.online).Render("● online")
	}
	return r.headerStyle.Render("Workflow Bot") + " " + dot
}

func (r *Renderer) StatusIcon(s model.Status) string {
	switch s {
	case model.Sending:
		return r.metaStyle.Render("…")
	case model.Sent:
		return r.metaStyle.Render("✓")
	case model.Delivered:
		return r.metaStyle.Render("✓✓")
	case model.Read:
		return lipgloss.NewStyle().Foreground(r.p.read).Render("✓✓")
	}
	return ""
}

// Message renders one bubble, right-aligned for sent records.
func (r *Renderer) Message(m model.Message) string {
	meta := m.Timestamp.Format("15:04")
	if m.Sent {
		if icon := r.StatusIcon(m.Status); icon != "" {
			meta += " " + icon
		}
	}

	text := wrap(m.Text, bubbleWidth-4)
	body := lipgloss.JoinVertical(lipgloss.Right, text, r.metaStyle.Render(meta))

	if m.Sent {
		return lipgloss.PlaceHorizontal(r.width, lipgloss.Right, r.sentStyle.Render(body))
	}
	return lipgloss.PlaceHorizontal(r.width, lipgloss.Left, r.receivedStyle.Render(body))
}

func (r *Renderer) Transcript(msgs []model.Message) string {
	if len(msgs) == 0 {
		return lipgloss.JoinVertical(lipgloss.Center,
			r.headerStyle.Render("Welcome to the chat"),
			r.metaStyle.Render("Send your first message!"),
		)
	}

	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, r.Message(m))
	}
	return strings.Join(parts, "\n")
}

func (r *Renderer) Notification(n model.Notification) string {
	style := lipgloss.NewStyle().Bold(true)
	if n.Variant == model.VariantDestructive {
		style = style.Foreground(r.p.errorText)
	} else {
		style = style.Foreground(r.p.online)
	}
	if n.Description == "" {
		return style.Render(n.Title)
	}
	return style.Render(n.Title) + " " + r.metaStyle.Render(n.Description)
}

// wrap breaks on spaces so no line is wider than width cells. Words wider
// than width are split across lines.
func wrap(s string, width int) string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, w := range strings.Fields(para) {
			if lipgloss.Width(w) > width {
				if line != "" {
					out = append(out, line)
				}
				parts := breakWord(w, width)
				out = append(out, parts[:len(parts)-1]...)
				line = parts[len(parts)-1]
				continue
			}

			switch {
			case line == "":
				line = w
			case lipgloss.Width(line)+1+lipgloss.Width(w) > width:
				out = append(out, line)
				line = w
			default:
				line += " " + w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func breakWord(w string, width int) []string {
	var (
		parts []string
		cur   strings.Builder
		curW  int
	)
	for _, r := range w {
		rw := lipgloss.Width(string(r))
		if curW > 0 && curW+rw > width {
			parts = append(parts, cur.String())
			cur.Reset()
			curW = 0
		}
		cur.WriteRune(r)
		curW += rw
	}
	return append(parts, cur.String())
}
