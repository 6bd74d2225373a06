package tokenizer

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TextEncoder turns texts into truncated encodings. It never pads.
type TextEncoder struct {
	Tokenizer Tokenizer
	// MaxLen truncates every encoding; zero disables truncation.
	MaxLen int
	// Chat, when non-nil, is applied to texts encoded with chat=true.
	Chat *ChatTemplate
	// Workers bounds EncodeBatch parallelism; zero means GOMAXPROCS.
	Workers int
}

// WithMaxLen returns a copy of e truncating to n tokens.
func (e *TextEncoder) WithMaxLen(n int) *TextEncoder {
	cp := *e
	cp.MaxLen = n
	return &cp
}

// Encode tokenizes one text, rendering it through the chat template first
// when chat is set.
func (e *TextEncoder) Encode(text string, chat bool) (Encoding, error) {
	if chat {
		tpl := e.Chat
		if tpl == nil {
			tpl = &ChatTemplate{}
		}
		rendered, err := tpl.Render(text)
		if err != nil {
			return Encoding{}, fmt.Errorf("render chat template: %w", err)
		}
		text = rendered
	}
	ids, err := e.Tokenizer.Encode(text)
	if err != nil {
		return Encoding{}, err
	}
	return newEncoding(truncate(ids, e.MaxLen, e.Tokenizer.EOSID())), nil
}

// EncodeBatch encodes texts concurrently. Output order matches input order.
func (e *TextEncoder) EncodeBatch(ctx context.Context, texts []string, chat bool) ([]Encoding, error) {
	out := make([]Encoding, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			enc, err := e.Encode(text, chat)
			if err != nil {
				return fmt.Errorf("encode record %d: %w", i, err)
			}
			out[i] = enc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// truncate cuts ids to maxLen. A trailing EOS added by the tokenizer survives
// truncation, matching right-side truncation of post-processed encodings.
func truncate(ids []int, maxLen, eos int) []int {
	if maxLen <= 0 || len(ids) <= maxLen {
		return ids
	}
	last := ids[len(ids)-1]
	ids = ids[:maxLen:maxLen]
	if eos >= 0 && last == eos {
		ids[maxLen-1] = eos
	}
	return ids
}
