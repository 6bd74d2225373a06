package tplparser

import "strings"

// Gemma has no system role; the system prompt is folded into the first user turn.
func renderGemma(opts RenderOptions) (string, bool, error) {
	system, msgs := splitSystem(opts.Messages)
	if err := validateAlternation("gemma", msgs); err != nil {
		return "", false, err
	}

	var b strings.Builder
	writeBOS(&b, opts)
	for i, m := range msgs {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		b.WriteString("<start_of_turn>")
		b.WriteString(role)
		b.WriteString("\n")
		if i == 0 && system != "" {
			b.WriteString(system)
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("<end_of_turn>\n")
	}
	if opts.AddGenerationPrompt {
		b.WriteString("<start_of_turn>model\n")
	}
	return b.String(), true, nil
}
