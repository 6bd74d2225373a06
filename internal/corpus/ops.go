package corpus

import (
	"iter"
)

// Count returns the number of samples in c, traversing it when it is not
// materialized.
func Count(c Corpus) (int, error) {
	if m, ok := c.(Materialized); ok {
		return m.Len(), nil
	}
	n := 0
	for _, err := range c.Samples() {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Collect materializes c. A Materialized input is copied into a Slice.
func Collect(c Corpus) (Slice, error) {
	if m, ok := c.(Materialized); ok {
		out := make(Slice, m.Len())
		for i := range out {
			out[i] = m.At(i)
		}
		return out, nil
	}
	var out Slice
	for s, err := range c.Samples() {
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Take returns the first n samples of c without materializing a streamed
// input. n <= 0 yields an empty corpus.
func Take(c Corpus, n int) Corpus {
	n = max(n, 0)
	if s, ok := c.(Slice); ok {
		return s[:min(n, len(s))]
	}
	if m, ok := c.(Materialized); ok {
		return indexed{m: m, n: min(n, m.Len())}
	}
	return Stream(func(yield func(Sample, error) bool) {
		if n == 0 {
			return
		}
		i := 0
		for s, err := range c.Samples() {
			if !yield(s, err) || err != nil {
				return
			}
			i++
			if i >= n {
				return
			}
		}
	})
}

// Select materializes the first n samples: by index when c is materialized,
// otherwise by iterating and stopping early.
func Select(c Corpus, n int) (Slice, error) {
	if n <= 0 {
		return Slice{}, nil
	}
	if m, ok := c.(Materialized); ok {
		n = min(n, m.Len())
		out := make(Slice, n)
		for i := range out {
			out[i] = m.At(i)
		}
		return out, nil
	}
	out := make(Slice, 0, n)
	for s, err := range c.Samples() {
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// Filter keeps the samples for which keep returns true. Materialized input
// produces a Slice; streamed input stays lazy.
func Filter(c Corpus, keep func(Sample) bool) Corpus {
	if m, ok := c.(Materialized); ok {
		out := make(Slice, 0, m.Len())
		for i := range m.Len() {
			if s := m.At(i); keep(s) {
				out = append(out, s)
			}
		}
		return out
	}
	return Stream(func(yield func(Sample, error) bool) {
		for s, err := range c.Samples() {
			if err != nil {
				yield(Sample{}, err)
				return
			}
			if keep(s) && !yield(s, nil) {
				return
			}
		}
	})
}

// Concat joins corpora in order. The result is materialized when every part is.
func Concat(parts ...Corpus) Corpus {
	all := true
	total := 0
	for _, p := range parts {
		m, ok := p.(Materialized)
		if !ok {
			all = false
			break
		}
		total += m.Len()
	}
	if all {
		out := make(Slice, 0, total)
		for _, p := range parts {
			m := p.(Materialized)
			for i := range m.Len() {
				out = append(out, m.At(i))
			}
		}
		return out
	}
	return Stream(func(yield func(Sample, error) bool) {
		for _, p := range parts {
			for s, err := range p.Samples() {
				if !yield(s, err) || err != nil {
					return
				}
			}
		}
	})
}

type indexed struct {
	m Materialized
	n int
}

func (x indexed) Len() int { return x.n }

func (x indexed) At(i int) Sample {
	if i >= x.n {
		panic("corpus: index out of range")
	}
	return x.m.At(i)
}

func (x indexed) Samples() iter.Seq2[Sample, error] {
	return func(yield func(Sample, error) bool) {
		for i := range x.n {
			if !yield(x.m.At(i), nil) {
				return
			}
		}
	}
}
