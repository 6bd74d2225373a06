package tokenizer

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru"
)

const bpeCacheSize = 65536

// gpt2Split is the default pre-tokenizer pattern for byte-level BPE vocabularies.
const gpt2Split = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+`

// llama3Split replaces pre-tokenizer patterns that use lookahead, which RE2 lacks.
const llama3Split = `(?:'[sS]|'[tT]|'[rR][eE]|'[vV][eE]|'[mM]|'[lL][lL]|'[dD])|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+`

// HFTokenizer is a byte-level BPE tokenizer loaded from a Hugging Face
// tokenizer.json, with special-token behaviour taken from the post processor
// and tokenizer_config.json.
type HFTokenizer struct {
	encoder      map[string]int
	decoder      []string
	ranks        map[Pair]int
	cache        *lru.Cache
	bytes        byteTable
	pattern      *regexp.Regexp
	specials     []string
	ignoreMerges bool

	addBOS bool
	addEOS bool
	bosID  int
	eosID  int
	unkID  int
	config Config
}

type hfSplit struct {
	Type    string `json:"type"`
	Pattern struct {
		Regex string `json:"Regex"`
	} `json:"pattern"`
}

type hfPreTokenizer struct {
	Type          string    `json:"type"`
	Pretokenizers []hfSplit `json:"pretokenizers"`
}

// hfTemplatePiece is one element of a TemplateProcessing "single" template.
type hfTemplatePiece struct {
	SpecialToken *struct {
		ID string `json:"id"`
	} `json:"SpecialToken"`
	Sequence *struct {
		ID string `json:"id"`
	} `json:"Sequence"`
}

type hfProcessor struct {
	Type          string            `json:"type"`
	Single        []hfTemplatePiece `json:"single"`
	SpecialTokens map[string]struct {
		IDs []int `json:"ids"`
	} `json:"special_tokens"`
	Processors []hfProcessor `json:"processors"`
}

type hfTokenizerJSON struct {
	Model struct {
		Type         string         `json:"type"`
		Vocab        map[string]int `json:"vocab"`
		Merges       []any          `json:"merges"`
		IgnoreMerges bool           `json:"ignore_merges"`
		UnkToken     string         `json:"unk_token"`
	} `json:"model"`
	PreTokenizer  hfPreTokenizer `json:"pre_tokenizer"`
	PostProcessor *hfProcessor   `json:"post_processor"`
	AddedTokens   []struct {
		ID      int    `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	} `json:"added_tokens"`
}

// LoadHFTokenizer reads tokenizer.json and, when tokConfig is non-empty,
// tokenizer_config.json from disk.
func LoadHFTokenizer(tokJSON, tokConfig string) (*HFTokenizer, error) {
	data, err := os.ReadFile(tokJSON)
	if err != nil {
		return nil, err
	}
	var cfg []byte
	if tokConfig != "" {
		cfg, err = os.ReadFile(tokConfig)
		if err != nil {
			return nil, err
		}
	}
	return LoadHFTokenizerBytes(data, cfg)
}

// LoadHFTokenizerBytes builds a tokenizer from in-memory tokenizer.json and
// optional tokenizer_config.json payloads.
func LoadHFTokenizerBytes(tokJSON, tokConfig []byte) (*HFTokenizer, error) {
	var tj hfTokenizerJSON
	if err := json.Unmarshal(tokJSON, &tj); err != nil {
		return nil, fmt.Errorf("parse tokenizer.json: %w", err)
	}
	if !strings.EqualFold(tj.Model.Type, "BPE") {
		return nil, fmt.Errorf("unsupported tokenizer model: %s", tj.Model.Type)
	}

	var cfg Config
	if len(tokConfig) > 0 {
		var err error
		if cfg, err = ParseConfigBytes(tokConfig); err != nil {
			return nil, err
		}
	}

	encoder := make(map[string]int, len(tj.Model.Vocab)+len(tj.AddedTokens))
	maxID := -1
	for tok, id := range tj.Model.Vocab {
		encoder[tok] = id
		maxID = max(maxID, id)
	}
	for _, at := range tj.AddedTokens {
		encoder[at.Content] = at.ID
		maxID = max(maxID, at.ID)
	}
	decoder := make([]string, maxID+1)
	for tok, id := range encoder {
		decoder[id] = tok
	}

	cache, err := lru.New(bpeCacheSize)
	if err != nil {
		return nil, err
	}

	t := &HFTokenizer{
		encoder:      encoder,
		decoder:      decoder,
		ranks:        parseMerges(tj.Model.Merges),
		cache:        cache,
		bytes:        newByteTable(),
		pattern:      regexp.MustCompile(splitPattern(tj.PreTokenizer)),
		specials:     collectSpecials(decoder),
		ignoreMerges: tj.Model.IgnoreMerges,
		addBOS:       cfg.AddBOS,
		addEOS:       cfg.AddEOS,
		bosID:        lookup(encoder, cfg.BOSToken),
		eosID:        lookup(encoder, cfg.EOSToken),
		unkID:        lookup(encoder, tj.Model.UnkToken),
		config:       cfg,
	}
	if tp := findTemplateProcessing(tj.PostProcessor); tp != nil {
		t.applyTemplate(tp)
	}
	return t, nil
}

func lookup(encoder map[string]int, tok string) int {
	if tok == "" {
		return -1
	}
	if id, ok := encoder[tok]; ok {
		return id
	}
	return -1
}

func parseMerges(merges []any) map[Pair]int {
	ranks := make(map[Pair]int, len(merges))
	for _, raw := range merges {
		var a, b string
		switch v := raw.(type) {
		case string:
			line := strings.TrimSpace(v)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			var ok bool
			if a, b, ok = strings.Cut(line, " "); !ok || strings.Contains(b, " ") {
				continue
			}
		case []any:
			if len(v) != 2 {
				continue
			}
			var aok, bok bool
			a, aok = v[0].(string)
			b, bok = v[1].(string)
			if !aok || !bok {
				continue
			}
		default:
			continue
		}
		p := Pair{A: a, B: b}
		if _, dup := ranks[p]; !dup {
			ranks[p] = len(ranks)
		}
	}
	return ranks
}

func splitPattern(pre hfPreTokenizer) string {
	pat := gpt2Split
	if pre.Type == "Sequence" {
		for _, p := range pre.Pretokenizers {
			if p.Type == "Split" && p.Pattern.Regex != "" {
				pat = p.Pattern.Regex
				break
			}
		}
	}
	if strings.Contains(pat, `(?!\S)`) || strings.Contains(pat, "(?i:") {
		pat = llama3Split
	}
	return pat
}

func findTemplateProcessing(p *hfProcessor) *hfProcessor {
	if p == nil {
		return nil
	}
	if p.Type == "TemplateProcessing" {
		return p
	}
	for i := range p.Processors {
		if tp := findTemplateProcessing(&p.Processors[i]); tp != nil {
			return tp
		}
	}
	return nil
}

// applyTemplate derives BOS/EOS insertion from the single-sequence template:
// a special token before $A is a BOS, one after it is an EOS.
func (t *HFTokenizer) applyTemplate(tp *hfProcessor) {
	idOf := func(name string) int {
		if st, ok := tp.SpecialTokens[name]; ok && len(st.IDs) > 0 {
			return st.IDs[0]
		}
		return lookup(t.encoder, name)
	}
	seenSeq := false
	for _, piece := range tp.Single {
		switch {
		case piece.Sequence != nil:
			seenSeq = true
		case piece.SpecialToken != nil:
			id := idOf(piece.SpecialToken.ID)
			if id < 0 {
				continue
			}
			if seenSeq {
				t.eosID, t.addEOS = id, true
			} else {
				t.bosID, t.addBOS = id, true
			}
		}
	}
}

func (t *HFTokenizer) Encode(text string) ([]int, error) {
	var ids []int
	if t.addBOS && t.bosID >= 0 {
		ids = append(ids, t.bosID)
	}
	for _, part := range splitSpecials(text, t.specials) {
		if part.special {
			ids = append(ids, t.encoder[part.text])
			continue
		}
		for _, word := range t.pattern.FindAllString(part.text, -1) {
			for _, piece := range t.bpe(t.bytes.encode(word)) {
				id, ok := t.encoder[piece]
				switch {
				case ok:
					ids = append(ids, id)
				case t.unkID >= 0:
					ids = append(ids, t.unkID)
				default:
					return nil, fmt.Errorf("unknown token: %q", piece)
				}
			}
		}
	}
	if t.addEOS && t.eosID >= 0 {
		ids = append(ids, t.eosID)
	}
	return ids, nil
}

func (t *HFTokenizer) Decode(ids []int) (string, error) {
	var b []byte
	for _, id := range ids {
		if id < 0 || id >= len(t.decoder) {
			return "", fmt.Errorf("token id out of range: %d", id)
		}
		token := t.decoder[id]
		if isSpecialToken(token) {
			b = append(b, token...)
			continue
		}
		b = t.bytes.decode(b, token)
	}
	return string(b), nil
}

func (t *HFTokenizer) BOSID() int { return t.bosID }
func (t *HFTokenizer) EOSID() int { return t.eosID }

// AddBOS reports whether Encode prepends the BOS token.
func (t *HFTokenizer) AddBOS() bool { return t.addBOS }

// Config returns the parsed tokenizer_config.json, zero when none was given.
func (t *HFTokenizer) Config() Config { return t.config }

// TokenString returns the vocabulary entry for id, or "" when out of range.
func (t *HFTokenizer) TokenString(id int) string {
	if id < 0 || id >= len(t.decoder) {
		return ""
	}
	return t.decoder[id]
}

func (t *HFTokenizer) bpe(token string) []string {
	if v, ok := t.cache.Get(token); ok {
		return v.([]string)
	}
	var word []string
	if _, known := t.encoder[token]; known && t.ignoreMerges {
		word = []string{token}
	} else {
		word = mergeAll(splitRunes(token), t.ranks)
	}
	t.cache.Add(token, word)
	return word
}
