// Package pack concatenates short tokenized sequences into full-width blocks.
package pack

import (
	"github.com/samcharles93/calibkit/internal/corpus"
)

// Packer greedily fills blocks of exactly SeqLen tokens. When any input began
// with BOS (or ended with EOS), every later block is framed with it; the
// boundary flags are sticky and each block carries at most one of each.
type Packer struct {
	SeqLen int
	// BOS and EOS are the boundary ids; negative disables detection.
	BOS int
	EOS int
}

// Stats describes one packing run.
type Stats struct {
	Inputs    int
	Blocks    int
	Discarded int
}

// Pack consumes c and returns the packed blocks. Tokens left over at the
// end that do not fill a block are discarded.
func (p Packer) Pack(c corpus.Corpus) (corpus.Slice, Stats, error) {
	var (
		out              corpus.Slice
		st               Stats
		buf              []int
		haveBOS, haveEOS bool
	)
	boundary := func() int {
		n := 0
		if haveBOS {
			n++
		}
		if haveEOS {
			n++
		}
		return n
	}
	emit := func(body []int) {
		block := make([]int, 0, p.SeqLen)
		if haveBOS {
			block = append(block, p.BOS)
		}
		block = append(block, body...)
		if haveEOS {
			block = append(block, p.EOS)
		}
		out = append(out, corpus.NewSample(block))
	}

	for s, err := range c.Samples() {
		if err != nil {
			return nil, st, err
		}
		st.Inputs++
		ids := s.InputIDs
		if len(ids) > 0 && p.BOS >= 0 && ids[0] == p.BOS {
			ids = ids[1:]
			haveBOS = true
		}
		if len(ids) > 0 && p.EOS >= 0 && ids[len(ids)-1] == p.EOS {
			ids = ids[:len(ids)-1]
			haveEOS = true
		}
		width := p.SeqLen - boundary()
		if width <= 0 {
			// Boundary tokens alone fill the block; nothing can be packed.
			continue
		}
		buf = append(buf, ids...)
		for len(buf) >= width {
			emit(buf[:width])
			buf = buf[width:]
		}
		if len(buf) == 0 {
			buf = nil
		}
	}
	st.Blocks = len(out)
	st.Discarded = len(buf)
	return out, st, nil
}
