package tokenizer

// Tokenizer is the capability the calibration pipeline needs from a
// vocabulary: text to ids and back, plus the boundary token ids.
// BOSID and EOSID return -1 when the vocabulary has no such token.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
	BOSID() int
	EOSID() int
}
