package tokenizer

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// Pair represents a pair of adjacent BPE symbols.
type Pair struct {
	A string
	B string
}

type textPart struct {
	text    string
	special bool
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// mergeAll applies the lowest-ranked merge until none applies.
func mergeAll(word []string, ranks map[Pair]int) []string {
	for len(word) > 1 {
		best, bestRank := Pair{}, math.MaxInt
		for i := 0; i+1 < len(word); i++ {
			p := Pair{A: word[i], B: word[i+1]}
			if r, ok := ranks[p]; ok && r < bestRank {
				best, bestRank = p, r
			}
		}
		if bestRank == math.MaxInt {
			break
		}
		word = mergePair(word, best)
	}
	return word
}

func mergePair(word []string, pair Pair) []string {
	out := make([]string, 0, len(word))
	for i := 0; i < len(word); i++ {
		if i+1 < len(word) && word[i] == pair.A && word[i+1] == pair.B {
			out = append(out, pair.A+pair.B)
			i++
			continue
		}
		out = append(out, word[i])
	}
	return out
}

// collectSpecials returns the control tokens of a vocabulary, longest first
// so that splitting prefers the longest match.
func collectSpecials(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if isSpecialToken(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	return out
}

func isSpecialToken(s string) bool {
	return len(s) >= 4 && strings.HasPrefix(s, "<|") && strings.HasSuffix(s, "|>")
}

func splitSpecials(text string, specials []string) []textPart {
	if len(specials) == 0 || !strings.Contains(text, "<|") {
		return []textPart{{text: text}}
	}
	var parts []textPart
	start := 0
	for i := 0; i < len(text); {
		match := ""
		if text[i] == '<' {
			for _, sp := range specials {
				if strings.HasPrefix(text[i:], sp) {
					match = sp
					break
				}
			}
		}
		if match == "" {
			i++
			continue
		}
		if start < i {
			parts = append(parts, textPart{text: text[start:i]})
		}
		parts = append(parts, textPart{text: match, special: true})
		i += len(match)
		start = i
	}
	if start < len(text) {
		parts = append(parts, textPart{text: text[start:]})
	}
	return parts
}

// byteTable is the reversible byte to printable-rune mapping used by
// byte-level BPE vocabularies.
type byteTable struct {
	toRune [256]rune
	toByte map[rune]byte
}

func newByteTable() byteTable {
	var t byteTable
	t.toByte = make(map[rune]byte, 256)
	printable := func(b int) bool {
		return (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
	}
	n := 0
	for b := range 256 {
		r := rune(b)
		if !printable(b) {
			r = rune(256 + n)
			n++
		}
		t.toRune[b] = r
		t.toByte[r] = byte(b)
	}
	return t
}

func (t byteTable) encode(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		b.WriteRune(t.toRune[s[i]])
	}
	return b.String()
}

func (t byteTable) decode(dst []byte, token string) []byte {
	for _, r := range token {
		if by, ok := t.toByte[r]; ok {
			dst = append(dst, by)
		} else {
			dst = append(dst, string(r)...)
		}
	}
	return dst
}
