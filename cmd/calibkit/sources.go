package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/calibkit/internal/logger"
	"github.com/samcharles93/calibkit/internal/source"
)

func sourcesCmd() *cli.Command {
	return &cli.Command{
		Name:   "sources",
		Before: withLogger,
		Usage:  "List the registered calibration sources",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			reg := source.Default(nil, logger.FromContext(ctx))
			w := cmd.Root().Writer
			for _, name := range reg.Names() {
				if name == source.LocalKey {
					_, _ = fmt.Fprintf(w, "%s\t(any existing .json or .jsonl path)\n", name)
					continue
				}
				_, _ = fmt.Fprintln(w, name)
			}
			return nil
		},
	}
}
