package tokenizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tokenizerFile    = "tokenizer.json"
	tokenizerConfig  = "tokenizer_config.json"
	chatTemplateFile = "chat_template.jinja"
)

// Loaded is a tokenizer together with what its files say about chat
// templating.
type Loaded struct {
	Tokenizer Tokenizer
	Config    Config
	// BOSToken is the BOS string used by templates that write it themselves.
	BOSToken string
	// AddBOS reports whether the tokenizer inserts BOS during Encode.
	AddBOS bool
	// Source describes where the tokenizer came from, for logs and manifests.
	Source string
}

// Chat returns the chat template described by the tokenizer files. arch and
// templateOverride replace what the files specify when non-empty.
func (l *Loaded) Chat(arch, templateOverride string) *ChatTemplate {
	tpl := l.Config.ChatTemplate
	if templateOverride != "" {
		tpl = templateOverride
	}
	return &ChatTemplate{
		Template: tpl,
		Arch:     arch,
		BOSToken: l.BOSToken,
		AddBOS:   l.AddBOS,
	}
}

// Load resolves ref to a tokenizer. ref is a directory holding
// tokenizer.json, a path to a tokenizer.json file, or a gpt_bpe vocabulary id.
// configPath optionally points at tokenizer_config.json; when empty a sibling
// of tokenizer.json is used if present.
func Load(ref, configPath string) (*Loaded, error) {
	if ref == "" {
		return nil, errors.New("tokenizer reference is empty")
	}
	tokPath, isFile, err := resolveTokenizerPath(ref)
	if err != nil {
		return nil, err
	}
	if !isFile {
		enc, err := NewBPEEncoder(ref)
		if err != nil {
			return nil, err
		}
		return &Loaded{
			Tokenizer: enc,
			BOSToken:  "<|endoftext|>",
			Source:    "gpt_bpe:" + ref,
		}, nil
	}

	dir := filepath.Dir(tokPath)
	if configPath == "" {
		if candidate := filepath.Join(dir, tokenizerConfig); fileExists(candidate) {
			configPath = candidate
		}
	}
	tok, err := LoadHFTokenizer(tokPath, configPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", tokPath, err)
	}
	cfg := tok.Config()
	if cfg.ChatTemplate == "" {
		if raw, err := os.ReadFile(filepath.Join(dir, chatTemplateFile)); err == nil {
			cfg.ChatTemplate = string(raw)
		}
	}
	bos := cfg.BOSToken
	if bos == "" {
		bos = tok.TokenString(tok.BOSID())
	}
	return &Loaded{
		Tokenizer: tok,
		Config:    cfg,
		BOSToken:  bos,
		AddBOS:    tok.AddBOS(),
		Source:    tokPath,
	}, nil
}

func resolveTokenizerPath(ref string) (string, bool, error) {
	info, err := os.Stat(ref)
	switch {
	case err == nil && info.IsDir():
		p := filepath.Join(ref, tokenizerFile)
		if !fileExists(p) {
			return "", false, fmt.Errorf("%s: no %s in directory", ref, tokenizerFile)
		}
		return p, true, nil
	case err == nil:
		return ref, true, nil
	case strings.HasSuffix(ref, ".json"):
		return "", false, err
	default:
		return "", false, nil
	}
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
