// Package mix merges several source corpora into one, drawing a quota from
// each and shuffling the result deterministically.
package mix

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samcharles93/calibkit/internal/corpus"
	"github.com/samcharles93/calibkit/internal/logger"
)

// Part is one source's corpus. Quota, when set, is the explicit number of
// samples requested from it.
type Part struct {
	Name   string
	Corpus corpus.Corpus
	Quota  *int
}

// Share is one row of the allocation table.
type Share struct {
	Name      string `json:"name"`
	Available int    `json:"available"`
	Quota     int    `json:"quota"`
	Explicit  bool   `json:"explicit"`
	Selected  int    `json:"selected"`
}

// Allocation lists shares in processing order (ascending availability).
type Allocation []Share

// Total returns the number of samples selected across all shares.
func (a Allocation) Total() int {
	n := 0
	for _, s := range a {
		n += s.Selected
	}
	return n
}

// compareShares orders by availability, then name. Shares that compare
// equal keep their input order.
func compareShares(a, b Share) int {
	if c := cmp.Compare(a.Available, b.Available); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// Allocate orders shares by availability (ties by name) and fills in the
// quota of every share without an explicit one. The remaining budget is
// split evenly over the shares still waiting for a quota, scarcest first,
// and each quota is capped at availability. Explicit quotas are kept as
// given. Input shares must carry Name, Available, and for explicit shares
// Explicit and Quota.
func Allocate(shares []Share, nsamples int) Allocation {
	out := slices.Clone(shares)
	slices.SortStableFunc(out, compareShares)

	consumed, implicit := 0, 0
	for _, s := range out {
		if s.Explicit {
			consumed += s.Quota
		} else {
			implicit++
		}
	}
	if consumed > nsamples {
		consumed = 0
	}

	for i := range out {
		s := &out[i]
		if !s.Explicit {
			target := max(0, (nsamples-consumed)/implicit)
			s.Quota = min(target, s.Available)
			consumed += s.Quota
			implicit--
		}
		s.Selected = min(s.Quota, s.Available)
	}
	return out
}

// Mix counts, allocates, selects and merges parts, then shuffles the merged
// corpus with seed. A single part is returned unchanged.
func Mix(parts []Part, nsamples int, seed int64, log logger.Logger) (corpus.Corpus, Allocation, error) {
	log = logger.OrDiscard(log)
	switch len(parts) {
	case 0:
		return corpus.Slice{}, nil, nil
	case 1:
		p := parts[0]
		share := Share{Name: p.Name, Available: -1, Quota: -1, Selected: -1}
		if m, ok := p.Corpus.(corpus.Materialized); ok {
			share.Available, share.Selected = m.Len(), m.Len()
		}
		if p.Quota != nil {
			share.Quota, share.Explicit = *p.Quota, true
		}
		return p.Corpus, Allocation{share}, nil
	}

	shares := make([]Share, len(parts))
	for i, p := range parts {
		n, err := corpus.Count(p.Corpus)
		if err != nil {
			return nil, nil, fmt.Errorf("count %s: %w", p.Name, err)
		}
		shares[i] = Share{Name: p.Name, Available: n}
		if p.Quota != nil {
			shares[i].Quota, shares[i].Explicit = *p.Quota, true
		}
	}

	// Parts are matched to shares by position, so names need not be unique.
	order := make([]int, len(parts))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return compareShares(shares[a], shares[b]) })
	sorted := make([]Share, len(order))
	for i, idx := range order {
		sorted[i] = shares[idx]
	}

	alloc := Allocate(sorted, nsamples)
	selected := make([]corpus.Corpus, 0, len(alloc))
	for i, s := range alloc {
		sel, err := corpus.Select(parts[order[i]].Corpus, s.Quota)
		if err != nil {
			return nil, nil, fmt.Errorf("select %s: %w", s.Name, err)
		}
		selected = append(selected, sel)
	}
	merged := corpus.Concat(selected...).(corpus.Materialized)

	for _, s := range alloc {
		log.Info("source allocation", "source", s.Name, "available", s.Available, "quota", s.Quota, "explicit", s.Explicit)
	}
	return corpus.Shuffle(merged, seed), alloc, nil
}
