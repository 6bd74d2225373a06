package source

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/calibkit/internal/corpus"
	"github.com/samcharles93/calibkit/internal/hub"
	"github.com/samcharles93/calibkit/internal/tokenizer"
)

// byteTokenizer encodes each byte as its value plus 10; BOS is 1, EOS is 2.
type byteTokenizer struct{}

func (byteTokenizer) Encode(text string) ([]int, error) {
	ids := make([]int, 0, len(text)+1)
	ids = append(ids, 1)
	for i := 0; i < len(text); i++ {
		ids = append(ids, int(text[i])+10)
	}
	return ids, nil
}

func (byteTokenizer) Decode(ids []int) (string, error) {
	b := make([]byte, 0, len(ids))
	for _, id := range ids {
		if id >= 10 {
			b = append(b, byte(id-10))
		}
	}
	return string(b), nil
}

func (byteTokenizer) BOSID() int { return 1 }
func (byteTokenizer) EOSID() int { return 2 }

func testRequest(name string, seqlen int) Request {
	return Request{
		Encoder: &tokenizer.TextEncoder{Tokenizer: byteTokenizer{}},
		SeqLen:  seqlen,
		Name:    name,
		Seed:    42,
	}
}

func decodeAll(t *testing.T, c corpus.Corpus) []string {
	t.Helper()
	var out []string
	for s, err := range c.Samples() {
		if err != nil {
			t.Fatalf("traverse: %v", err)
		}
		text, _ := byteTokenizer{}.Decode(s.InputIDs)
		out = append(out, text)
	}
	return out
}

// fakeRows serves in-memory rows keyed by "dataset/config/split".
type fakeRows struct {
	rows      map[string][]hub.Row
	configs   map[string]string
	failSplit string
	pulled    int
}

var errOffline = errors.New("offline")

func (f *fakeRows) ResolveConfig(_ context.Context, dataset, split string) (string, error) {
	if split == f.failSplit {
		return "", errOffline
	}
	if cfg, ok := f.configs[dataset+"/"+split]; ok {
		return cfg, nil
	}
	return "", hub.ErrSplitNotFound
}

func (f *fakeRows) Iterate(_ context.Context, dataset, config, split string) iter.Seq2[hub.Row, error] {
	return func(yield func(hub.Row, error) bool) {
		if split == f.failSplit {
			yield(nil, errOffline)
			return
		}
		for _, r := range f.rows[dataset+"/"+config+"/"+split] {
			f.pulled++
			if !yield(r, nil) {
				return
			}
		}
	}
}

func textRows(prefix string, n int) []hub.Row {
	rows := make([]hub.Row, n)
	for i := range rows {
		rows[i] = hub.Row{"text": prefix + string(rune('a'+i%26)) + string(rune('a'+i/26%26)), "code": "!"}
	}
	return rows
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}
