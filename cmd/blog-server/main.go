// The blog-server binary serves the blog content API, reading posts from
// either a local content directory or an S3 bucket.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/aacecandev/blog/cmd/flags"
	"github.com/aacecandev/blog/contentstore"
	"github.com/aacecandev/blog/httpserver"
	"github.com/aacecandev/blog/storage"
)

func main() {
	app := &cli.App{
		Name:  "blog-server",
		Usage: "Serve versioned markdown posts over a read API",
		Flags: flags.ServerFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			backend, err := storage.NewBackend(flags.StorageConfig(cCtx), logger)
			if err != nil {
				logger.Error("Failed to create storage backend", "err", err)
				return err
			}
			logger.Info("Storage backend selected", "backend", backend.Name())

			ttl := time.Duration(cCtx.Int64(flags.CacheTTLFlag.Name)) * time.Second
			if ttl == 0 {
				logger.Warn("Cache TTL is zero, content caching disabled")
			}

			store := contentstore.New(backend, ttl, logger)
			handler := httpserver.NewHandler(store, logger)

			srv, err := httpserver.New(flags.ConfigureServer(cCtx, logger), handler)
			if err != nil {
				logger.Error("Failed to create HTTP server", "err", err)
				return err
			}

			srv.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit

			logger.Info("Shutting down")
			srv.Shutdown()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
