package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/LeventeLantos/webhook-chat/internal/chat"
	"github.com/LeventeLantos/webhook-chat/internal/export"
	"github.com/LeventeLantos/webhook-chat/internal/model"
	"github.com/LeventeLantos/webhook-chat/internal/render"
	"github.com/LeventeLantos/webhook-chat/internal/service"
)

const chatHelp = `Commands:
  /help             Show this help
  /config           Show the webhook configuration
  /theme [name]     Toggle the theme, or set light|dark
  /export <format>  Print the transcript (json, jsonl, yaml, md)
  /quit             Leave the chat`

func newChatCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session in the terminal.

Each line you type is sent to the webhook. Lines starting with / are local
commands; type /help to list them. Replies collected by the poller are
printed as they arrive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			s := newChatSession(a, cmd.OutOrStdout())
			detach := a.list.Subscribe(s.onEvent)
			defer detach()
			a.notifier.Add(service.NotifierFunc(s.onNotification))

			s.intro()
			a.poller.Start()

			return s.loop(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// chatSession serializes terminal output between the input loop and list
// events coming from the poller goroutine.
type chatSession struct {
	a *app

	mu  sync.Mutex
	out io.Writer
	r   *render.Renderer
}

func newChatSession(a *app, out io.Writer) *chatSession {
	return &chatSession{a: a, out: out, r: render.New(a.settings.Theme())}
}

func (s *chatSession) println(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, text)
}

func (s *chatSession) intro() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, s.r.Header(s.a.settings.Online()))
	fmt.Fprintln(s.out, s.r.Transcript(s.a.list.Snapshot()))
	fmt.Fprintln(s.out, "Type a message, or /help for commands.")
}

// onEvent prints incoming records and the final state of outgoing ones.
func (s *chatSession) onEvent(ev chat.Event) {
	switch {
	case ev.Kind == chat.Appended && !ev.Message.Sent:
	case ev.Kind == chat.Updated && ev.Message.Sent:
	default:
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, s.r.Message(ev.Message))
}

func (s *chatSession) onNotification(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, s.r.Notification(n))
}

func (s *chatSession) loop(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := s.command(ctx, line)
			if err != nil {
				s.println("Error: " + err.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		_, err := s.a.delivery.Send(ctx, line)
		switch {
		case errors.Is(err, service.ErrNotConfigured):
			s.println(configureHint)
		case err != nil:
			s.println("Error: " + err.Error())
		}
	}
	return scanner.Err()
}

func (s *chatSession) command(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/quit", "/exit":
		return true, nil

	case "/help":
		s.println(chatHelp)

	case "/config":
		b, err := yaml.Marshal(s.a.settings.Webhook())
		if err != nil {
			return false, err
		}
		s.println(strings.TrimRight(string(b), "\n"))
		if !s.a.settings.Online() {
			s.println(configureHint)
		}

	case "/theme":
		var th model.Theme
		if len(args) == 0 {
			th, err = s.a.settings.ToggleTheme(ctx)
		} else {
			th = model.Theme(args[0])
			err = s.a.settings.SetTheme(ctx, th)
			th = s.a.settings.Theme()
		}
		if err != nil {
			return false, err
		}
		s.mu.Lock()
		s.r = render.New(th)
		s.mu.Unlock()
		s.println("Theme: " + string(th))

	case "/export":
		if len(args) != 1 {
			return false, errors.New("usage: /export <json|jsonl|yaml|md>")
		}
		exp, err := export.NewExporter(args[0])
		if err != nil {
			return false, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return false, exp.Export(s.a.list.Snapshot(), s.out)

	default:
		return false, fmt.Errorf("unknown command %s, type /help", name)
	}
	return false, nil
}
