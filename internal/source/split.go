package source

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/samcharles93/calibkit/internal/corpus"
)

// SplitLoader fetches whole splits, shuffles the records and tokenizes them
// into a materialized corpus. Fetch failures are *FetchError.
type SplitLoader struct {
	remote
}

func NewSplitLoader(rows RowFetcher, dataset, config string, splits []string, force bool, text TextFunc, remedy string) *SplitLoader {
	return &SplitLoader{remote{
		Rows:          rows,
		Dataset:       dataset,
		Config:        config,
		DefaultSplits: splits,
		ForceSplits:   force,
		Text:          text,
		Remedy:        remedy,
	}}
}

func (l *SplitLoader) Load(ctx context.Context, req Request) (corpus.Corpus, error) {
	dataset := l.dataset(req)
	var texts []string
	for _, split := range l.splits(req) {
		cfg, err := l.config(ctx, dataset, split)
		if err != nil {
			return nil, err
		}
		n := 0
		for row, err := range l.Rows.Iterate(ctx, dataset, cfg, split) {
			if err != nil {
				return nil, l.fetchError(dataset, split, err)
			}
			text, err := l.Text(row)
			if err != nil {
				return nil, fmt.Errorf("%s/%s row %d: %w", dataset, split, n, err)
			}
			texts = append(texts, text)
			n++
		}
		req.log().Info("fetched split", "dataset", dataset, "config", cfg, "split", split, "rows", humanize.Comma(int64(n)))
	}
	corpus.Permute(texts, req.Seed)
	return encodeTexts(ctx, req, texts)
}
