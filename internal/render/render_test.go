package render

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/LeventeLantos/webhook-chat/internal/model"
)

func TestRenderer_MessageShowsTextTimeAndStatus(t *testing.T) {
	t.Parallel()

	r := New(model.ThemeLight)
	at := time.Date(2026, 10, 19, 14, 5, 0, 0, time.UTC)

	m := model.NewOutgoing("a", "oi", at)
	m.Status = model.Delivered

	out := r.Message(m)
	for _, want := range []string{"oi", "14:05", "✓✓"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in bubble, got:\n%s", want, out)
		}
	}
}

func TestRenderer_IncomingHasNoStatusIcon(t *testing.T) {
	t.Parallel()

	r := New(model.ThemeDark)
	out := r.Message(model.NewIncoming("1", "olá!", time.Now()))

	if !strings.Contains(out, "olá!") {
		t.Fatalf("expected text in bubble, got:\n%s", out)
	}
	if strings.Contains(out, "✓") {
		t.Fatalf("expected no status icon on incoming bubble, got:\n%s", out)
	}
}

func TestRenderer_SentBubbleIsRightAligned(t *testing.T) {
	t.Parallel()

	r := NewWithWidth(model.ThemeLight, 80)
	out := r.Message(model.NewOutgoing("a", "hi", time.Now()))

	for _, line := range strings.Split(out, "\n") {
		if lipgloss.Width(line) != 80 {
			t.Fatalf("expected each line padded to width 80, got %d: %q", lipgloss.Width(line), line)
		}
	}
	first := strings.Split(out, "\n")[0]
	if !strings.HasPrefix(first, " ") {
		t.Fatalf("expected leading padding for right alignment, got %q", first)
	}
}

func TestRenderer_StatusIcons(t *testing.T) {
	t.Parallel()

	r := New(model.ThemeLight)
	cases := map[model.Status]string{
		model.Sending:   "…",
		model.Sent:      "✓",
		model.Delivered: "✓✓",
		model.Read:      "✓✓",
		"":              "",
	}
	for s, want := range cases {
		if got := r.StatusIcon(s); !strings.Contains(got, want) || (want == "" && got != "") {
			t.Fatalf("StatusIcon(%q): expected %q, got %q", s, want, got)
		}
	}
}

func TestRenderer_TranscriptEmptyState(t *testing.T) {
	t.Parallel()

	out := New(model.ThemeLight).Transcript(nil)
	if !strings.Contains(out, "Send your first message!") {
		t.Fatalf("expected empty state, got %q", out)
	}
}

func TestRenderer_HeaderOnlineIndicator(t *testing.T) {
	t.Parallel()

	r := New(model.ThemeLight)
	if !strings.Contains(r.Header(true), "online") {
		t.Fatalf("expected online header")
	}
	if !strings.Contains(r.Header(false), "offline") {
		t.Fatalf("expected offline header")
	}
}

func TestRenderer_Notification(t *testing.T) {
	t.Parallel()

	out := New(model.ThemeLight).Notification(model.Notification{
		Title:       "Failed to get a reply",
		Description: "Webhook returned status 500.",
		Variant:     model.VariantDestructive,
	})
	if !strings.Contains(out, "Failed to get a reply") || !strings.Contains(out, "500") {
		t.Fatalf("unexpected notification rendering %q", out)
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	got := wrap("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if wrap("a\n\nb", 10) != "a\n\nb" {
		t.Fatalf("expected blank lines preserved")
	}
}

func TestWrap_SplitsLongWords(t *testing.T) {
	t.Parallel()

	got := wrap("go abcdefghij end", 4)
	want := "go\nabcd\nefgh\nij\nend"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	for _, line := range strings.Split(wrap("olá"+strings.Repeat("é", 20), 7), "\n") {
		if lipgloss.Width(line) > 7 {
			t.Fatalf("line %q wider than 7 cells", line)
		}
	}
}

func TestRenderer_LongURLIsNotCut(t *testing.T) {
	t.Parallel()

	url := "https://n8n.example.com/webhook/0123456789abcdef/0123/END"
	if len(url) <= bubbleWidth {
		t.Fatalf("test url must be wider than a bubble, got %d", len(url))
	}

	r := New(model.ThemeLight)
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	out := r.Message(model.NewIncoming("1", "see "+url, at))
	for _, want := range []string{"see", "END", "09:30", "╯"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in incoming bubble, got:\n%s", want, out)
		}
	}

	sent := model.NewOutgoing("a", url, at)
	sent.Status = model.Delivered
	out = r.Message(sent)
	for _, want := range []string{"END", "09:30", "✓✓", "╯"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in sent bubble, got:\n%s", want, out)
		}
	}

	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w != defaultWidth {
			t.Fatalf("expected every line %d cells wide, got %d: %q", defaultWidth, w, line)
		}
	}
}
