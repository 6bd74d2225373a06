package tokenizer

import "github.com/samcharles93/calibkit/internal/tplparser"

// DefaultSystemPrompt is the system turn placed before each calibration text.
const DefaultSystemPrompt = "You are a helpful assistant."

// ChatTemplate wraps a text in a system + user conversation ending with the
// assistant generation prompt.
type ChatTemplate struct {
	Template     string
	Arch         string
	BOSToken     string
	AddBOS       bool
	SystemPrompt string
}

// Render produces the templated prompt for a single user text. Templates
// that match no known family fall back to ChatML.
func (c ChatTemplate) Render(text string) (string, error) {
	system := c.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}
	opts := tplparser.RenderOptions{
		Template:            c.Template,
		Arch:                c.Arch,
		BOSToken:            c.BOSToken,
		AddBOS:              c.AddBOS,
		AddGenerationPrompt: true,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: text},
		},
	}
	out, ok, err := tplparser.Render(opts)
	if err != nil {
		return "", err
	}
	if ok {
		return out, nil
	}
	return tplparser.RenderChatML(opts)
}
