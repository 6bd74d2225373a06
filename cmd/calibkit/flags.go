package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/calibkit/internal/calib"
	"github.com/samcharles93/calibkit/internal/hub"
)

var (
	dataset   string
	seqLen    int64
	seed      int64
	batchSize int64
	nsamples  int64
	workers   int64

	tokenizerRef    string
	tokenizerConfig string
	chatTemplate    string
	arch            string

	datasetsServer string
	hfToken        string
	rateLimit      float64

	logLevel  string
	logFormat string
	debug     bool

	fileConfig Config
)

func corpusFlags() []cli.Flag {
	defaults := calib.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dataset",
			Aliases:     []string{"d"},
			Usage:       "comma-joined source identifiers, e.g. NeelNanda/pile-10k,data.jsonl:num=64",
			Value:       defaults.Dataset,
			Destination: &dataset,
		},
		&cli.Int64Flag{
			Name:        "seqlen",
			Usage:       "tokens per sample",
			Value:       int64(defaults.SeqLen),
			Destination: &seqLen,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "shuffle seed",
			Value:       defaults.Seed,
			Destination: &seed,
		},
		&cli.Int64Flag{
			Name:        "batch-size",
			Aliases:     []string{"bs"},
			Usage:       "samples per batch",
			Value:       int64(defaults.BatchSize),
			Destination: &batchSize,
		},
		&cli.Int64Flag{
			Name:        "nsamples",
			Aliases:     []string{"n"},
			Usage:       "total calibration samples",
			Value:       int64(defaults.NSamples),
			Destination: &nsamples,
		},
		&cli.Int64Flag{
			Name:        "workers",
			Usage:       "concurrent tokenization workers (0 = GOMAXPROCS)",
			Destination: &workers,
		},
	}
}

func tokenizerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tokenizer",
			Aliases:     []string{"t"},
			Usage:       "gpt_bpe vocabulary id, or a directory or path holding tokenizer.json",
			Value:       "gpt2-tokenizer",
			Destination: &tokenizerRef,
		},
		&cli.StringFlag{
			Name:        "tokenizer-config",
			Usage:       "override path to tokenizer_config.json",
			Destination: &tokenizerConfig,
		},
		&cli.StringFlag{
			Name:        "chat-template",
			Usage:       "override path to chat_template.jinja",
			Destination: &chatTemplate,
		},
		&cli.StringFlag{
			Name:        "arch",
			Usage:       "model architecture hint for chat rendering (llama, gemma, mistral, ...)",
			Destination: &arch,
		},
	}
}

func hubFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "datasets-server",
			Usage:       "Hugging Face datasets-server endpoint",
			Value:       hub.DefaultEndpoint,
			Sources:     cli.EnvVars("CALIBKIT_DATASETS_SERVER"),
			Destination: &datasetsServer,
		},
		&cli.StringFlag{
			Name:        "hf-token",
			Usage:       "Hugging Face access token for gated datasets",
			Sources:     cli.EnvVars("HF_TOKEN"),
			Destination: &hfToken,
		},
		&cli.Float64Flag{
			Name:        "rate-limit",
			Usage:       "datasets-server requests per second (0 = unlimited)",
			Value:       10,
			Destination: &rateLimit,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func pipelineFlags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, corpusFlags()...)
	flags = append(flags, tokenizerFlags()...)
	return append(flags, hubFlags()...)
}
