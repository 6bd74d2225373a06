package calib

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/samcharles93/calibkit/internal/collate"
	"github.com/samcharles93/calibkit/internal/corpus"
	"github.com/samcharles93/calibkit/internal/filter"
	"github.com/samcharles93/calibkit/internal/hub"
	"github.com/samcharles93/calibkit/internal/mix"
	"github.com/samcharles93/calibkit/internal/pack"
	"github.com/samcharles93/calibkit/internal/source"
	"github.com/samcharles93/calibkit/internal/tokenizer"
)

// SourceReport records what happened to one source during the build.
// Counts are -1 when the corpus is streamed and was not traversed.
type SourceReport struct {
	Identifier string `json:"identifier"`
	Key        string `json:"key"`
	Loaded     int    `json:"loaded"`
	Packed     int    `json:"packed,omitempty"`
	Kept       int    `json:"kept"`
	Streamed   bool   `json:"streamed"`
}

// Manifest summarizes a build for logs and clients of the batch server.
type Manifest struct {
	RunID      string         `json:"run_id"`
	CreatedAt  time.Time      `json:"created_at"`
	Dataset    string         `json:"dataset"`
	SeqLen     int            `json:"seqlen"`
	Seed       int64          `json:"seed"`
	BatchSize  int            `json:"batch_size"`
	NSamples   int            `json:"nsamples"`
	Sources    []SourceReport `json:"sources"`
	Allocation mix.Allocation `json:"allocation"`
}

// Dataloader yields calibration batches. It can be traversed repeatedly and
// yields the same batches each time.
type Dataloader struct {
	corpus   corpus.Corpus
	collator collate.Collator
	nsamples int
	manifest Manifest
}

// Build parses cfg.Dataset, loads every source and assembles the dataloader.
func Build(ctx context.Context, cfg Config) (*Dataloader, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	specs, err := source.ParseSpecs(cfg.Dataset)
	if err != nil {
		return nil, err
	}
	reg := cfg.Registry
	if reg == nil {
		reg = source.Default(hub.New(hub.WithLogger(log)), log)
	}
	enc := &tokenizer.TextEncoder{Tokenizer: cfg.Tokenizer, Chat: cfg.Chat, Workers: cfg.Workers}

	start := time.Now()
	parts := make([]mix.Part, 0, len(specs))
	reports := make([]SourceReport, 0, len(specs))
	seen := map[string]int{}
	for _, spec := range specs {
		part, report, err := buildSource(ctx, cfg, reg, enc, spec)
		if err != nil {
			return nil, err
		}
		seen[spec.Raw]++
		part.Name = partName(spec.Raw, seen[spec.Raw])
		parts = append(parts, part)
		reports = append(reports, report)
	}

	mixed, alloc, err := mix.Mix(parts, cfg.NSamples, cfg.Seed, log)
	if err != nil {
		return nil, err
	}

	d := &Dataloader{
		corpus:   mixed,
		collator: collate.Collator{BatchSize: cfg.BatchSize, SeqLen: cfg.SeqLen},
		nsamples: cfg.NSamples,
		manifest: Manifest{
			RunID:      uuid.NewString(),
			CreatedAt:  time.Now().UTC(),
			Dataset:    cfg.Dataset,
			SeqLen:     cfg.SeqLen,
			Seed:       cfg.Seed,
			BatchSize:  cfg.BatchSize,
			NSamples:   cfg.NSamples,
			Sources:    reports,
			Allocation: alloc,
		},
	}
	log.Info("calibration corpus ready",
		"run_id", d.manifest.RunID,
		"sources", len(parts),
		"tokens_per_sample", humanize.Comma(int64(cfg.SeqLen)),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return d, nil
}

// partName labels a part by its identifier; repeats of the same identifier
// get their occurrence number.
func partName(raw string, occurrence int) string {
	if occurrence == 1 {
		return raw
	}
	return fmt.Sprintf("%s#%d", raw, occurrence)
}

func buildSource(ctx context.Context, cfg Config, reg *source.Registry, enc *tokenizer.TextEncoder, spec source.Spec) (mix.Part, SourceReport, error) {
	log := cfg.Logger.With("source", spec.Name)
	loader, key, err := reg.Resolve(spec.Name)
	if err != nil {
		return mix.Part{}, SourceReport{}, err
	}
	c, err := loader.Load(ctx, source.Request{
		Encoder:           enc,
		SeqLen:            cfg.SeqLen,
		Name:              spec.Name,
		Splits:            spec.Splits,
		Seed:              cfg.Seed,
		ApplyChatTemplate: spec.ApplyChatTemplate,
		Logger:            log,
	})
	if err != nil {
		return mix.Part{}, SourceReport{}, err
	}
	report := SourceReport{Identifier: spec.Raw, Key: key, Loaded: -1, Kept: -1, Streamed: !corpus.IsMaterialized(c)}
	if m, ok := c.(corpus.Materialized); ok {
		report.Loaded = m.Len()
	}

	if spec.Concat {
		packer := pack.Packer{SeqLen: cfg.SeqLen, BOS: cfg.Tokenizer.BOSID(), EOS: cfg.Tokenizer.EOSID()}
		packed, st, err := packer.Pack(c)
		if err != nil {
			return mix.Part{}, SourceReport{}, fmt.Errorf("pack %s: %w", spec.Name, err)
		}
		log.Debug("packed sequences", "inputs", st.Inputs, "blocks", st.Blocks, "discarded_tokens", st.Discarded)
		report.Loaded = st.Inputs
		report.Packed = st.Blocks
		report.Streamed = false
		c = packed
	}

	c = filter.Apply(c, cfg.SeqLen, log)
	if spec.Num != nil {
		sel, err := corpus.Select(c, *spec.Num)
		if err != nil {
			return mix.Part{}, SourceReport{}, fmt.Errorf("select %s: %w", spec.Name, err)
		}
		c = sel
		report.Streamed = false
	}
	if m, ok := c.(corpus.Materialized); ok {
		report.Kept = m.Len()
	}
	log.Info("source loaded", "key", key, "kept", report.Kept, "streamed", report.Streamed)
	return mix.Part{Name: spec.Name, Corpus: c, Quota: spec.Num}, report, nil
}

// Manifest returns the build summary.
func (d *Dataloader) Manifest() Manifest { return d.manifest }

// Batches yields collated batches over at most NSamples samples. A nil batch
// means every sample of that group was dropped.
func (d *Dataloader) Batches() iter.Seq2[*collate.Batch, error] {
	return d.collator.Batches(corpus.Take(d.corpus, d.nsamples))
}
