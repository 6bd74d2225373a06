package tokenizer

import (
	"fmt"
	"sync"

	"github.com/wbrown/gpt_bpe"
)

// BuiltinIDs are the vocabularies gpt_bpe ships embedded; any other id is
// resolved by gpt_bpe against the Hugging Face hub.
var BuiltinIDs = []string{
	"gpt2-tokenizer",
	"pile-tokenizer",
	"clip-tokenizer",
	"nerdstash_v1-tokenizer",
	"nerdstash_v2-tokenizer",
	"llama-tokenizer",
}

// BPEEncoder adapts a gpt_bpe encoder to Tokenizer.
type BPEEncoder struct {
	mu  sync.Mutex
	enc *gpt_bpe.GPTEncoder
}

// NewBPEEncoder loads a gpt_bpe vocabulary by id.
func NewBPEEncoder(id string) (*BPEEncoder, error) {
	enc, err := gpt_bpe.NewEncoder(id)
	if err != nil {
		return nil, fmt.Errorf("load gpt_bpe vocabulary %q: %w", id, err)
	}
	return &BPEEncoder{enc: enc}, nil
}

// Encode returns the token ids for text. The gpt_bpe encoder keeps
// internal counters, so calls are serialized.
func (b *BPEEncoder) Encode(text string) ([]int, error) {
	b.mu.Lock()
	toks := b.enc.Encode(&text)
	b.mu.Unlock()
	if toks == nil {
		return nil, nil
	}
	ids := make([]int, len(*toks))
	for i, t := range *toks {
		ids[i] = int(t)
	}
	return ids, nil
}

func (b *BPEEncoder) Decode(ids []int) (string, error) {
	toks := make(gpt_bpe.Tokens, len(ids))
	for i, id := range ids {
		if id < 0 || id > 0xFFFF {
			return "", fmt.Errorf("token id out of range: %d", id)
		}
		toks[i] = gpt_bpe.Token(id)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enc.Decode(&toks), nil
}

func (b *BPEEncoder) BOSID() int { return int(b.enc.BosToken) }
func (b *BPEEncoder) EOSID() int { return int(b.enc.EosToken) }
