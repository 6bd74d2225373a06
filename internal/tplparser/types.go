package tplparser

// Message is a single conversational turn.
type Message struct {
	Role    string
	Content string
}

// RenderOptions controls a single template rendering.
//
// AddBOS reports whether the tokenizer prepends BOS on its own; renderers
// only write BOSToken into the prompt when it does not.
type RenderOptions struct {
	Template            string
	Arch                string
	BOSToken            string
	AddBOS              bool
	AddGenerationPrompt bool
	Messages            []Message
}
