package tplparser

import "strings"

// Render returns (output, ok). ok=false means neither the architecture nor
// the template text matched a known renderer.
func Render(opts RenderOptions) (string, bool, error) {
	if r, ok := rendererForArch(opts.Arch); ok {
		return r(opts)
	}
	if opts.Template == "" {
		return "", false, nil
	}
	if r, ok := rendererForTemplate(opts.Template); ok {
		return r(opts)
	}
	return "", false, nil
}

type renderFunc func(RenderOptions) (string, bool, error)

func rendererForArch(arch string) (renderFunc, bool) {
	switch strings.ToLower(strings.TrimSpace(arch)) {
	case "chatml", "qwen2", "qwen3", "lfm2":
		return renderChatML, true
	case "llama", "llama3":
		return renderLlama3, true
	case "gemma", "gemma2", "gemma3", "gemma3_text":
		return renderGemma, true
	case "mistral", "mistral3":
		return renderMistral, true
	default:
		return nil, false
	}
}

func rendererForTemplate(tpl string) (renderFunc, bool) {
	switch {
	case strings.Contains(tpl, "<|start_header_id|>"):
		return renderLlama3, true
	case strings.Contains(tpl, "<start_of_turn>"):
		return renderGemma, true
	case strings.Contains(tpl, "[INST]"):
		return renderMistral, true
	case strings.Contains(tpl, "<|im_start|>") && strings.Contains(tpl, "<|im_end|>"):
		return renderChatML, true
	default:
		return nil, false
	}
}

// RenderChatML renders with the ChatML layout regardless of arch or template.
// It is the fallback used when a tokenizer ships no recognizable template.
func RenderChatML(opts RenderOptions) (string, error) {
	out, _, err := renderChatML(opts)
	return out, err
}
