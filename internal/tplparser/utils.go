package tplparser

import (
	"fmt"
	"strings"
)

func writeBOS(b *strings.Builder, opts RenderOptions) {
	if !opts.AddBOS && opts.BOSToken != "" {
		b.WriteString(opts.BOSToken)
	}
}

// splitSystem separates a leading system turn from the rest.
func splitSystem(msgs []Message) (string, []Message) {
	if len(msgs) > 0 && strings.EqualFold(msgs[0].Role, "system") {
		return msgs[0].Content, msgs[1:]
	}
	return "", msgs
}

func validateAlternation(arch string, msgs []Message) error {
	for i, m := range msgs {
		want := "user"
		if i%2 == 1 {
			want = "assistant"
		}
		if m.Role != want {
			return fmt.Errorf("%s: conversation roles must alternate user/assistant, got %q at %d", arch, m.Role, i)
		}
	}
	return nil
}
