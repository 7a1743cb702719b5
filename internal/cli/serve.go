package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/LeventeLantos/webhook-chat/internal/api"
	"github.com/LeventeLantos/webhook-chat/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the response poller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.Server.Address
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := api.NewHub(a.log)
			detach := hub.Attach(a.list)
			defer detach()

			a.notifier.Add(service.LogNotifier{Log: a.log})
			a.notifier.Add(hub)

			h := api.NewHandler(api.Deps{
				Settings: a.settings,
				Delivery: a.delivery,
				List:     a.list,
				Poller:   a.poller,
				Tester:   a.client,
				Notifier: a.notifier,
				Hub:      hub,
				Log:      a.log,
			})

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}

			srv := &http.Server{
				Handler:           api.Router(h),
				ReadHeaderTimeout: 10 * time.Second,
			}

			a.poller.Start()

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("server listening", "addr", ln.Addr().String())
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			}

			a.log.Info("shutting down")
			hub.Close()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to SERVER_ADDRESS)")
	return cmd
}
