package corpus

import (
	"iter"
	"math/rand/v2"
)

// seedStream is the PCG stream constant; only the seed varies between runs.
const seedStream = 0x9e3779b97f4a7c15

// NewRand returns the deterministic generator used for every shuffle.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), seedStream))
}

// Permute shuffles xs in place.
func Permute[T any](xs []T, seed int64) {
	r := NewRand(seed)
	r.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
}

// Shuffle returns a shuffled copy of c.
func Shuffle(c Materialized, seed int64) Slice {
	out := make(Slice, c.Len())
	for i := range out {
		out[i] = c.At(i)
	}
	Permute(out, seed)
	return out
}

// BufferShuffle approximately shuffles a stream with a fixed-size buffer:
// once the buffer is full, each incoming item replaces a randomly chosen
// buffered item, which is emitted. The remainder is shuffled and drained at
// the end. The generator is reseeded on every traversal.
func BufferShuffle[T any](seq iter.Seq2[T, error], size int, seed int64) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if size <= 1 {
			for v, err := range seq {
				if !yield(v, err) || err != nil {
					return
				}
			}
			return
		}
		r := NewRand(seed)
		buf := make([]T, 0, size)
		for v, err := range seq {
			if err != nil {
				yield(zero, err)
				return
			}
			if len(buf) < size {
				buf = append(buf, v)
				continue
			}
			i := r.IntN(size)
			out := buf[i]
			buf[i] = v
			if !yield(out, nil) {
				return
			}
		}
		r.Shuffle(len(buf), func(i, j int) { buf[i], buf[j] = buf[j], buf[i] })
		for _, v := range buf {
			if !yield(v, nil) {
				return
			}
		}
	}
}
