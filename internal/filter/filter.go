// Package filter drops calibration samples that are too short or dominated
// by a repeated trailing token.
package filter

import (
	"github.com/samcharles93/calibkit/internal/corpus"
	"github.com/samcharles93/calibkit/internal/logger"
)

// Degenerate reports whether the first seqlen tokens of ids are dominated by
// the final token: its value occurs more than seqlen/2 times. The check is
// skipped for seqlen <= 2 and for single-token inputs.
func Degenerate(ids []int, seqlen int) bool {
	if seqlen <= 2 || len(ids) <= 1 {
		return false
	}
	if len(ids) > seqlen {
		ids = ids[:seqlen]
	}
	last := ids[len(ids)-1]
	n := 0
	for _, id := range ids {
		if id == last {
			n++
		}
	}
	return n > seqlen/2
}

// Keep reports whether a sample survives filtering: at least seqlen tokens
// and not Degenerate.
func Keep(s corpus.Sample, seqlen int) bool {
	if len(s.InputIDs) < seqlen {
		return false
	}
	return !Degenerate(s.InputIDs, seqlen)
}

// Apply filters c. Materialized input yields a materialized result and the
// drop count is logged; streamed input is filtered lazily.
func Apply(c corpus.Corpus, seqlen int, log logger.Logger) corpus.Corpus {
	log = logger.OrDiscard(log)
	out := corpus.Filter(c, func(s corpus.Sample) bool { return Keep(s, seqlen) })
	if in, ok := c.(corpus.Materialized); ok {
		kept := out.(corpus.Materialized).Len()
		log.Debug("filtered samples", "seqlen", seqlen, "kept", kept, "dropped", in.Len()-kept)
	}
	return out
}
