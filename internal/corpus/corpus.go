// Package corpus defines tokenized samples and the two shapes a collection of
// them can take: a forward-only stream, or a materialized slice with random
// access.
package corpus

import (
	"iter"
)

// Sample is one tokenized sequence. It is not modified after tokenization.
type Sample struct {
	InputIDs      []int `json:"input_ids"`
	AttentionMask []int `json:"attention_mask"`
}

// Len returns the number of tokens in the sample.
func (s Sample) Len() int { return len(s.InputIDs) }

// NewSample builds a sample with an all-ones attention mask.
func NewSample(ids []int) Sample {
	mask := make([]int, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return Sample{InputIDs: ids, AttentionMask: mask}
}

// Corpus is anything that can be traversed in order. Traversal may be
// repeated; streamed implementations re-read their source on each pass.
type Corpus interface {
	Samples() iter.Seq2[Sample, error]
}

// Materialized is a corpus held in memory with known length and indexed access.
type Materialized interface {
	Corpus
	Len() int
	At(i int) Sample
}

// Slice is the in-memory Materialized corpus.
type Slice []Sample

func (s Slice) Len() int        { return len(s) }
func (s Slice) At(i int) Sample { return s[i] }

func (s Slice) Samples() iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		for _, sample := range s {
			if !yield(sample, nil) {
				return
			}
		}
	}
}

// Stream is a streamed corpus backed by a sequence function. Each call to
// Samples invokes the function again.
type Stream func(yield func(Sample, error) bool)

func (s Stream) Samples() iter.Seq2[Sample, error] { return iter.Seq2[Sample, error](s) }

// IsMaterialized reports whether c supports indexed access.
func IsMaterialized(c Corpus) bool {
	_, ok := c.(Materialized)
	return ok
}
