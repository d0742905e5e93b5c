package main

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

	"github.com/matt-hoiland/query-backend/internal/app"
	"github.com/matt-hoiland/query-backend/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Error("(╯°□°）╯︵ ┻━┻ error on startup")
		os.Exit(1)
	}
}

func run() error {
	v := viper.New()
	if err := config.Setup(v); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log.SetLevel(cfg.LogLevel)
	if cfg.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.Info("(づ｡◕‿‿◕｡)づ Hello! Starting up!")
	log.WithFields(log.Fields{
		"log-json":  cfg.LogJSON,
		"log-level": cfg.LogLevel.String(),
		"h2c":       cfg.H2c,
	}).Debug("configuration")

	srv := newHTTPServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", srv.Addr, err)
	}

	return serve(ctx, srv, ln, cfg.ShutdownTimeout)
}

func newHTTPServer(cfg config.Config) *http.Server {
	var handler http.Handler = app.NewServer(http.NewServeMux())
	if cfg.H2c {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	return &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,
	}
}

// serve runs srv on ln until ctx is done, then shuts it down within timeout.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(log.Fields{
			"address": ln.Addr().String(),
		}).Info("(づ￣ ³￣)づ Here we go! Serving!")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	})

	return g.Wait()
}
