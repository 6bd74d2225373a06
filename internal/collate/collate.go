// Package collate groups samples into fixed-width batches.
package collate

import (
	"iter"

	"github.com/samcharles93/calibkit/internal/corpus"
	"github.com/samcharles93/calibkit/internal/filter"
)

// Batch holds B' rows of exactly SeqLen tokens, 1 <= B' <= BatchSize.
// A nil *Batch means every sample of the group was dropped.
type Batch struct {
	InputIDs      [][]int `json:"input_ids"`
	AttentionMask [][]int `json:"attention_mask"`
}

// Size returns the number of rows; zero for a nil batch.
func (b *Batch) Size() int {
	if b == nil {
		return 0
	}
	return len(b.InputIDs)
}

// Collator groups samples in order, BatchSize at a time.
type Collator struct {
	BatchSize int
	SeqLen    int
}

// Collate truncates each sample to SeqLen, drops samples that are short or
// degenerate, and stacks the rest. It returns nil when nothing survives.
func (c Collator) Collate(group []corpus.Sample) *Batch {
	var b Batch
	for _, s := range group {
		if !filter.Keep(s, c.SeqLen) {
			continue
		}
		b.InputIDs = append(b.InputIDs, s.InputIDs[:c.SeqLen:c.SeqLen])
		mask := s.AttentionMask
		if len(mask) >= c.SeqLen {
			mask = mask[:c.SeqLen:c.SeqLen]
		} else {
			mask = corpus.NewSample(b.InputIDs[len(b.InputIDs)-1]).AttentionMask
		}
		b.AttentionMask = append(b.AttentionMask, mask)
	}
	if len(b.InputIDs) == 0 {
		return nil
	}
	return &b
}

// Batches walks src lazily; only one group is held in memory at a time.
func (c Collator) Batches(src corpus.Corpus) iter.Seq2[*Batch, error] {
	size := max(c.BatchSize, 1)
	return func(yield func(*Batch, error) bool) {
		group := make([]corpus.Sample, 0, size)
		for s, err := range src.Samples() {
			if err != nil {
				yield(nil, err)
				return
			}
			group = append(group, s)
			if len(group) == size {
				if !yield(c.Collate(group), nil) {
					return
				}
				group = group[:0]
			}
		}
		if len(group) > 0 {
			yield(c.Collate(group), nil)
		}
	}
}
