package tokenizer

import "github.com/samcharles93/calibkit/internal/tplparser"

// Message represents a chat message for template rendering.
type Message = tplparser.Message

// Encoding is the tokenized form of one text, before any packing or padding.
type Encoding struct {
	InputIDs      []int
	AttentionMask []int
}

func newEncoding(ids []int) Encoding {
	mask := make([]int, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return Encoding{InputIDs: ids, AttentionMask: mask}
}
