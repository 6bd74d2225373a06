package tplparser

import "strings"

func renderLlama3(opts RenderOptions) (string, bool, error) {
	var b strings.Builder
	writeBOS(&b, opts)
	for _, m := range opts.Messages {
		b.WriteString("<|start_header_id|>")
		b.WriteString(m.Role)
		b.WriteString("<|end_header_id|>\n\n")
		b.WriteString(strings.TrimSpace(m.Content))
		b.WriteString("<|eot_id|>")
	}
	if opts.AddGenerationPrompt {
		b.WriteString("<|start_header_id|>assistant<|end_header_id|>\n\n")
	}
	return b.String(), true, nil
}
