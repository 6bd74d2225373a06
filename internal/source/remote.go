package source

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/samcharles93/calibkit/internal/corpus"
	"github.com/samcharles93/calibkit/internal/hub"
	"github.com/samcharles93/calibkit/internal/tokenizer"
)

// RowFetcher is the part of the datasets-server client the remote loaders use.
type RowFetcher interface {
	ResolveConfig(ctx context.Context, dataset, split string) (string, error)
	Iterate(ctx context.Context, dataset, config, split string) iter.Seq2[hub.Row, error]
}

// TextFunc extracts the text to tokenize from a row.
type TextFunc func(hub.Row) (string, error)

// Field extracts a single text column.
func Field(name string) TextFunc {
	return func(r hub.Row) (string, error) {
		s, ok := r.String(name)
		if !ok {
			return "", fmt.Errorf("row has no text column %q", name)
		}
		return s, nil
	}
}

// Fields concatenates several text columns in order.
func Fields(names ...string) TextFunc {
	return func(r hub.Row) (string, error) {
		var b strings.Builder
		for _, n := range names {
			s, ok := r.String(n)
			if !ok {
				return "", fmt.Errorf("row has no text column %q", n)
			}
			b.WriteString(s)
		}
		return b.String(), nil
	}
}

const defaultRemedy = "check the dataset name and network access; gated datasets need --hf-token or HF_TOKEN"

// remote holds what the split and streamed loaders share.
type remote struct {
	Rows    RowFetcher
	Dataset string
	// Config is the dataset config; when empty it is resolved per split.
	Config        string
	DefaultSplits []string
	// ForceSplits ignores splits requested in the identifier.
	ForceSplits bool
	Text        TextFunc
	Remedy      string
}

func (r *remote) dataset(req Request) string {
	if strings.Contains(req.Name, "/") || r.Dataset == "" {
		return req.Name
	}
	return r.Dataset
}

func (r *remote) splits(req Request) []string {
	if r.ForceSplits || len(req.Splits) == 0 {
		return r.DefaultSplits
	}
	return req.Splits
}

func (r *remote) fetchError(dataset, split string, err error) error {
	remedy := r.Remedy
	if remedy == "" {
		remedy = defaultRemedy
	}
	return &FetchError{Dataset: dataset, Split: split, Remedy: remedy, Err: err}
}

func (r *remote) config(ctx context.Context, dataset, split string) (string, error) {
	if r.Config != "" {
		return r.Config, nil
	}
	cfg, err := r.Rows.ResolveConfig(ctx, dataset, split)
	if err != nil {
		return "", r.fetchError(dataset, split, err)
	}
	return cfg, nil
}

// encodeTexts tokenizes texts with truncation to the request's seqlen.
func encodeTexts(ctx context.Context, req Request, texts []string) (corpus.Slice, error) {
	enc := req.Encoder.WithMaxLen(req.SeqLen)
	encs, err := enc.EncodeBatch(ctx, texts, req.ApplyChatTemplate)
	if err != nil {
		return nil, err
	}
	return toSamples(encs), nil
}

func toSamples(encs []tokenizer.Encoding) corpus.Slice {
	out := make(corpus.Slice, len(encs))
	for i, e := range encs {
		out[i] = corpus.Sample{InputIDs: e.InputIDs, AttentionMask: e.AttentionMask}
	}
	return out
}
