package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/calibkit/internal/api"
	"github.com/samcharles93/calibkit/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr            string
		readTimeout     time.Duration
		shutdownTimeout time.Duration
	)

	return &cli.Command{
		Name:   "serve",
		Before: withLogger,
		Usage:  "Build a calibration corpus and serve its batches over HTTP",
		Flags:  append(pipelineFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.DurationFlag{
				Name:        "shutdown-timeout",
				Usage:       "grace period for in-flight batch streams on shutdown",
				Value:       10 * time.Second,
				Destination: &shutdownTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, fileConfig, &addr)
			log := logger.FromContext(ctx)

			loader, err := newDataloader(ctx, log)
			if err != nil {
				return err
			}
			server := api.NewServer(loader, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "run_id", loader.Manifest().RunID)
			sc := echo.StartConfig{
				Address:         addr,
				HideBanner:      true,
				GracefulTimeout: shutdownTimeout,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
