package tplparser

import "strings"

func renderChatML(opts RenderOptions) (string, bool, error) {
	var b strings.Builder
	writeBOS(&b, opts)
	for _, m := range opts.Messages {
		b.WriteString("<|im_start|>")
		b.WriteString(m.Role)
		b.WriteString("\n")
		b.WriteString(m.Content)
		b.WriteString("<|im_end|>\n")
	}
	if opts.AddGenerationPrompt {
		b.WriteString("<|im_start|>assistant\n")
	}
	return b.String(), true, nil
}
