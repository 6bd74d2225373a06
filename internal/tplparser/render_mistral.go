package tplparser

import "strings"

// renderMistral handles both the [SYSTEM_PROMPT] layout of newer Mistral
// templates and the legacy layout where the system prompt prefixes the first
// [INST] block.
func renderMistral(opts RenderOptions) (string, bool, error) {
	system, msgs := splitSystem(opts.Messages)
	if err := validateAlternation("mistral", msgs); err != nil {
		return "", false, err
	}
	systemBlock := strings.Contains(opts.Template, "[SYSTEM_PROMPT]") ||
		strings.EqualFold(strings.TrimSpace(opts.Arch), "mistral3")

	var b strings.Builder
	writeBOS(&b, opts)
	if systemBlock && system != "" {
		b.WriteString("[SYSTEM_PROMPT]")
		b.WriteString(system)
		b.WriteString("[/SYSTEM_PROMPT]")
	}
	for i, m := range msgs {
		if m.Role == "assistant" {
			b.WriteString(m.Content)
			b.WriteString("</s>")
			continue
		}
		if systemBlock {
			b.WriteString("[INST]")
			b.WriteString(m.Content)
			b.WriteString("[/INST]")
			continue
		}
		b.WriteString("[INST] ")
		if i == 0 && system != "" {
			b.WriteString(system)
			b.WriteString("\n\n")
		}
		b.WriteString(m.Content)
		b.WriteString(" [/INST]")
	}
	return b.String(), true, nil
}
