package tokenizer

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Config is the subset of tokenizer_config.json the pipeline cares about.
type Config struct {
	AddBOS       bool
	AddEOS       bool
	BOSToken     string
	EOSToken     string
	ChatTemplate string
}

type hfConfigJSON struct {
	AddBOS       *bool           `json:"add_bos_token"`
	AddEOS       *bool           `json:"add_eos_token"`
	BOS          json.RawMessage `json:"bos_token"`
	EOS          json.RawMessage `json:"eos_token"`
	ChatTemplate json.RawMessage `json:"chat_template"`
}

// ParseConfigBytes parses a tokenizer_config.json payload.
// Special tokens may be plain strings or AddedToken objects; chat_template
// may be a string or a list of named templates, in which case "default" wins.
func ParseConfigBytes(data []byte) (Config, error) {
	var raw hfConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse tokenizer config: %w", err)
	}
	cfg := Config{}
	if raw.AddBOS != nil {
		cfg.AddBOS = *raw.AddBOS
	}
	if raw.AddEOS != nil {
		cfg.AddEOS = *raw.AddEOS
	}
	var err error
	if cfg.BOSToken, err = specialTokenContent(raw.BOS); err != nil {
		return Config{}, fmt.Errorf("bos_token: %w", err)
	}
	if cfg.EOSToken, err = specialTokenContent(raw.EOS); err != nil {
		return Config{}, fmt.Errorf("eos_token: %w", err)
	}
	if cfg.ChatTemplate, err = chatTemplateString(raw.ChatTemplate); err != nil {
		return Config{}, fmt.Errorf("chat_template: %w", err)
	}
	return cfg, nil
}

func specialTokenContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var obj struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	return obj.Content, nil
}

func chatTemplateString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var named []struct {
		Name     string `json:"name"`
		Template string `json:"template"`
	}
	if err := json.Unmarshal(raw, &named); err != nil {
		return "", err
	}
	for _, n := range named {
		if n.Name == "default" {
			return n.Template, nil
		}
	}
	if len(named) > 0 {
		return named[0].Template, nil
	}
	return "", nil
}
