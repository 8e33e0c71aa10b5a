package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runnerr0/tagshelf/internal/server"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("--port out of range: %d", c.Port)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, c.globals)
	if err != nil {
		return err
	}
	defer a.Close()
	return c.executeWithApp(ctx, a)
}

// executeWithApp serves until ctx is cancelled.
func (c *ServeCommand) executeWithApp(ctx context.Context, a *app) error {
	srv := c.newServer(a)
	a.logger.Info("tagshelf api listening", "addr", c.addr(a), "backend", a.cfg.Storage.Backend, "version", c.version)
	return srv.ListenAndServe(ctx)
}

func (c *ServeCommand) newServer(a *app) *server.Server {
	opts := server.Options{
		Addr:           c.addr(a),
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		MaxRequestSize: a.cfg.Server.MaxRequestSize,
	}
	// A nil *metadata.Client must not become a non-nil interface.
	var lookup server.MetadataLookup
	if a.meta != nil {
		lookup = a.meta
	}
	return server.New(opts, a.svc, lookup, a.logger)
}

func (c *ServeCommand) addr(a *app) string {
	sc := a.cfg.Server
	if c.Host != "" {
		sc.Host = c.Host
	}
	if c.Port != 0 {
		sc.Port = c.Port
	}
	return sc.Addr()
}
