// Package calib wires sources, packing, filtering, mixing and collation
// into a calibration dataloader.
package calib

import (
	"errors"

	"github.com/samcharles93/calibkit/internal/logger"
	"github.com/samcharles93/calibkit/internal/source"
	"github.com/samcharles93/calibkit/internal/tokenizer"
)

const (
	DefaultDataset   = "NeelNanda/pile-10k"
	DefaultSeqLen    = 2048
	DefaultSeed      = 42
	DefaultBatchSize = 8
	DefaultNSamples  = 512
)

// Config describes one calibration corpus build.
type Config struct {
	Tokenizer tokenizer.Tokenizer
	// Chat is used for sources with apply_chat_template; nil falls back to ChatML.
	Chat *tokenizer.ChatTemplate
	// Dataset is a comma-joined list of source identifiers.
	Dataset   string
	SeqLen    int
	Seed      int64
	BatchSize int
	NSamples  int
	// Registry resolves source names; nil uses source.Default with a
	// datasets-server client at the public endpoint.
	Registry *source.Registry
	Logger   logger.Logger
	// Workers bounds concurrent encoding; zero means GOMAXPROCS.
	Workers int
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		Dataset:   DefaultDataset,
		SeqLen:    DefaultSeqLen,
		Seed:      DefaultSeed,
		BatchSize: DefaultBatchSize,
		NSamples:  DefaultNSamples,
	}
}

func (c Config) withDefaults() Config {
	if c.Dataset == "" {
		c.Dataset = DefaultDataset
	}
	if c.SeqLen == 0 {
		c.SeqLen = DefaultSeqLen
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.NSamples == 0 {
		c.NSamples = DefaultNSamples
	}
	c.Logger = logger.OrDiscard(c.Logger)
	return c
}

func (c Config) validate() error {
	var errs []error
	if c.Tokenizer == nil {
		errs = append(errs, errors.New("tokenizer is required"))
	}
	if c.SeqLen < 0 {
		errs = append(errs, errors.New("seqlen must be positive"))
	}
	if c.BatchSize < 0 {
		errs = append(errs, errors.New("batch size must be positive"))
	}
	if c.NSamples < 0 {
		errs = append(errs, errors.New("nsamples must be positive"))
	}
	return errors.Join(errs...)
}
