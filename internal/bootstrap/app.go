package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/glucobot/internal/infra/config"
	"github.com/yanqian/glucobot/internal/infra/queue"
)

// App encapsulates the HTTP server and queue consumer lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	queue  queue.Queue
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, q queue.Queue) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, queue: q}
}

// Run starts the queue consumers and the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	consumerCtx, stopConsumers := context.WithCancel(ctx)
	defer stopConsumers()
	a.queue.Start(consumerCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address, "asyncQueue", a.cfg.Queue.Async)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		err := a.server.Shutdown(shutdownCtx)
		stopConsumers()
		a.waitConsumers()
		return err
	case err := <-errCh:
		stopConsumers()
		a.waitConsumers()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) waitConsumers() {
	if w, ok := a.queue.(interface{ Wait() }); ok {
		w.Wait()
	}
}
