package source

import (
	"context"
	"fmt"
	"iter"

	"github.com/samcharles93/calibkit/internal/corpus"
)

const (
	DefaultTakeCap       = 10000
	DefaultShuffleBuffer = 1000
	DefaultEncodeBatch   = 1000
)

// StreamLoader reads a bounded prefix of a remote split lazily, shuffles it
// through a seeded buffer and tokenizes it in batches. The returned corpus is
// streamed: every traversal fetches again.
type StreamLoader struct {
	remote
	TakeCap       int
	ShuffleBuffer int
	EncodeBatch   int
}

func NewStreamLoader(rows RowFetcher, dataset, config string, splits []string, text TextFunc) *StreamLoader {
	return &StreamLoader{
		remote: remote{
			Rows:          rows,
			Dataset:       dataset,
			Config:        config,
			DefaultSplits: splits,
			ForceSplits:   true,
			Text:          text,
		},
		TakeCap:       DefaultTakeCap,
		ShuffleBuffer: DefaultShuffleBuffer,
		EncodeBatch:   DefaultEncodeBatch,
	}
}

type splitConfig struct {
	split, config string
}

func (l *StreamLoader) Load(ctx context.Context, req Request) (corpus.Corpus, error) {
	dataset := l.dataset(req)
	var parts []splitConfig
	for _, split := range l.splits(req) {
		cfg, err := l.config(ctx, dataset, split)
		if err != nil {
			return nil, err
		}
		parts = append(parts, splitConfig{split: split, config: cfg})
	}
	batchSize := l.EncodeBatch
	if batchSize <= 0 {
		batchSize = DefaultEncodeBatch
	}

	return corpus.Stream(func(yield func(corpus.Sample, error) bool) {
		texts := corpus.BufferShuffle(l.texts(ctx, dataset, parts), l.ShuffleBuffer, req.Seed)
		batch := make([]string, 0, batchSize)
		flush := func() bool {
			samples, err := encodeTexts(ctx, req, batch)
			batch = batch[:0]
			if err != nil {
				yield(corpus.Sample{}, err)
				return false
			}
			for _, s := range samples {
				if !yield(s, nil) {
					return false
				}
			}
			return true
		}
		for text, err := range texts {
			if err != nil {
				yield(corpus.Sample{}, err)
				return
			}
			batch = append(batch, text)
			if len(batch) == batchSize && !flush() {
				return
			}
		}
		if len(batch) > 0 {
			flush()
		}
	}), nil
}

// texts yields at most TakeCap texts across the configured splits.
func (l *StreamLoader) texts(ctx context.Context, dataset string, parts []splitConfig) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		taken := 0
		for _, p := range parts {
			for row, err := range l.Rows.Iterate(ctx, dataset, p.config, p.split) {
				if err != nil {
					yield("", l.fetchError(dataset, p.split, err))
					return
				}
				text, err := l.Text(row)
				if err != nil {
					yield("", fmt.Errorf("%s/%s row %d: %w", dataset, p.split, taken, err))
					return
				}
				if !yield(text, nil) {
					return
				}
				taken++
				if l.TakeCap > 0 && taken >= l.TakeCap {
					return
				}
			}
		}
	}
}
