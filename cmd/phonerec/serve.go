package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/top3pick/phonerec/api"
	"github.com/top3pick/phonerec/catalog"
	"github.com/top3pick/phonerec/engine"
	"github.com/top3pick/phonerec/logging"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve loads the engine snapshot (training one if none exists) and
starts the HTTP API. SIGHUP retrains from the catalog CSV and swaps the
engine in place; SIGINT or SIGTERM shuts the server down gracefully.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logging.Component("server")
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, s, err := newBootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	reload := func(ctx context.Context) (*engine.Engine, error) {
		c, err := catalog.LoadFile(b.CatalogPath)
		if err != nil {
			return nil, err
		}
		e, err := engine.New(c, b.Options...)
		if err != nil {
			return nil, err
		}
		if err := e.Save(ctx, b.Store, b.Key, b.TTL); err != nil {
			return nil, err
		}
		return e, nil
	}
	h := engine.NewHandle(b.LoadOrTrain, reload, logging.Component("handle"))

	// 启动失败不阻止服务，请求到来时会再次尝试加载
	if _, err := h.Init(ctx); err != nil {
		log.Error().Err(err).Msg("initial model load failed")
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				log.Info().Msg("SIGHUP received, reloading engine")
				if _, err := h.Reload(ctx); err != nil {
					log.Error().Err(err).Msg("reload failed, keeping current engine")
				}
			}
		}
	}()

	srv := api.New(h, cfg, logging.Component("api")).HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
