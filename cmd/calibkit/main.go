package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/calibkit/internal/logger"
	"github.com/samcharles93/calibkit/internal/source"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:   "calibkit",
		Usage:  "Build calibration corpora for post-training quantization",
		Flags:  loggingFlags(),
		Before: loadFileConfig,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			buildCmd(),
			serveCmd(),
			sourcesCmd(),
			versionCmd(),
		},
	}
}

func loadFileConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configPath())
	if err != nil {
		return ctx, err
	}
	fileConfig = cfg
	return ctx, nil
}

// withLogger runs once a subcommand has parsed its flags, so logging flags
// given after the subcommand name take effect.
func withLogger(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	applyLoggingConfig(cmd, fileConfig)
	log := logger.FromFlags(cmd.Root().ErrWriter, logFormat, logLevel, debug)
	return logger.WithContext(ctx, log), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func reportError(err error) {
	var fetchErr *source.FetchError
	if errors.As(err, &fetchErr) {
		log := logger.FromFlags(os.Stderr, logFormat, logLevel, debug)
		log.Error("dataset fetch failed",
			"dataset", fetchErr.Dataset,
			"split", fetchErr.Split,
			"error", fetchErr.Err,
		)
		log.Error(fetchErr.Remedy)
		return
	}
	_, _ = fmt.Fprintln(os.Stderr, err)
}
