package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/calibkit/internal/api"
	"github.com/samcharles93/calibkit/internal/logger"
)

func buildCmd() *cli.Command {
	var (
		output    string
		manifest  string
		skipEmpty bool
	)

	return &cli.Command{
		Name:   "build",
		Before: withLogger,
		Usage:  "Build a calibration corpus and write its batches as NDJSON",
		Flags:  append(pipelineFlags(),
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output file (default stdout)",
				Destination: &output,
			},
			&cli.StringFlag{
				Name:        "manifest",
				Usage:       "also write the build manifest as JSON to this path",
				Destination: &manifest,
			},
			&cli.BoolFlag{
				Name:        "skip-empty",
				Usage:       "omit batches whose samples were all filtered out instead of writing null",
				Destination: &skipEmpty,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyPipelineConfig(cmd, fileConfig)
			log := logger.FromContext(ctx)

			loader, err := newDataloader(ctx, log)
			if err != nil {
				return err
			}

			var (
				lines   int
				samples int
			)
			err = writeOutput(output, func(out io.Writer) error {
				w := api.NewNDJSONWriter(out, nil)
				for b, err := range loader.Batches() {
					if err != nil {
						return err
					}
					if err := ctx.Err(); err != nil {
						return err
					}
					samples += b.Size()
					if b == nil && skipEmpty {
						continue
					}
					if err := w.WriteBatch(b); err != nil {
						return err
					}
				}
				lines = w.Lines()
				return nil
			})
			if err != nil {
				return err
			}

			m := loader.Manifest()
			if manifest != "" {
				data, err := json.MarshalIndent(m, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(manifest, append(data, '\n'), 0o644); err != nil {
					return err
				}
			}
			log.Info("wrote calibration batches",
				"run_id", m.RunID,
				"batches", lines,
				"samples", humanize.Comma(int64(samples)),
				"output", outputName(output),
			)
			return nil
		},
	}
}

// writeOutput runs write against a buffered writer on path, or stdout when
// path is empty or "-". The buffer is flushed and the file closed before
// returning, and their errors are reported.
func writeOutput(path string, write func(io.Writer) error) (err error) {
	if path == "" || path == "-" {
		bw := bufio.NewWriter(os.Stdout)
		if err := write(bw); err != nil {
			return err
		}
		return bw.Flush()
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return err
	}
	return bw.Flush()
}

func outputName(p string) string {
	if p == "" || p == "-" {
		return "stdout"
	}
	return p
}
