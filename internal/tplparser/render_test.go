package tplparser

import (
	"strings"
	"testing"
)

func calibrationTurns(user string) []Message {
	return []Message{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: user},
	}
}

func TestRenderArchChatML(t *testing.T) {
	t.Parallel()

	out, ok, err := Render(RenderOptions{
		Arch:                "qwen3",
		BOSToken:            "<s>",
		AddBOS:              false,
		AddGenerationPrompt: true,
		Messages:            calibrationTurns("hello"),
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !ok {
		t.Fatalf("expected renderer match")
	}
	want := "<s><|im_start|>system\nYou are a helpful assistant.<|im_end|>\n" +
		"<|im_start|>user\nhello<|im_end|>\n<|im_start|>assistant\n"
	if out != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", out, want)
	}
}

func TestRenderSkipsBOSWhenTokenizerAddsIt(t *testing.T) {
	t.Parallel()

	out, _, err := Render(RenderOptions{
		Arch:     "chatml",
		BOSToken: "<s>",
		AddBOS:   true,
		Messages: calibrationTurns("x"),
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if strings.HasPrefix(out, "<s>") {
		t.Fatalf("BOS must be left to the tokenizer, got %q", out)
	}
	if strings.HasSuffix(out, "<|im_start|>assistant\n") {
		t.Fatalf("generation prompt not requested, got %q", out)
	}
}

func TestRenderTemplateSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		contains []string
	}{
		{
			name:     "llama3",
			template: "{{ '<|start_header_id|>' + message['role'] + '<|end_header_id|>' }}",
			contains: []string{
				"<|start_header_id|>system<|end_header_id|>\n\nYou are a helpful assistant.<|eot_id|>",
				"<|start_header_id|>user<|end_header_id|>\n\ntext<|eot_id|>",
				"<|start_header_id|>assistant<|end_header_id|>\n\n",
			},
		},
		{
			name:     "gemma",
			template: "{{ '<start_of_turn>' + role }}",
			contains: []string{
				"<start_of_turn>user\nYou are a helpful assistant.\n\ntext<end_of_turn>\n",
				"<start_of_turn>model\n",
			},
		},
		{
			name:     "mistral legacy",
			template: "{{ '[INST] ' + content + ' [/INST]' }}",
			contains: []string{"[INST] You are a helpful assistant.\n\ntext [/INST]"},
		},
		{
			name:     "mistral system block",
			template: "[SYSTEM_PROMPT]{{ s }}[/SYSTEM_PROMPT][INST]",
			contains: []string{"[SYSTEM_PROMPT]You are a helpful assistant.[/SYSTEM_PROMPT][INST]text[/INST]"},
		},
		{
			name:     "chatml",
			template: "<|im_start|>{{ messages }}<|im_end|>",
			contains: []string{"<|im_start|>user\ntext<|im_end|>\n"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, ok, err := Render(RenderOptions{
				Arch:                "unknown",
				Template:            tc.template,
				AddBOS:              true,
				AddGenerationPrompt: true,
				Messages:            calibrationTurns("text"),
			})
			if err != nil {
				t.Fatalf("render error: %v", err)
			}
			if !ok {
				t.Fatalf("expected template signature match")
			}
			for _, want := range tc.contains {
				if !strings.Contains(out, want) {
					t.Fatalf("output %q missing %q", out, want)
				}
			}
		})
	}
}

func TestRenderUnsupported(t *testing.T) {
	t.Parallel()

	out, ok, err := Render(RenderOptions{
		Arch:     "unknown",
		Template: "unsupported-template",
		Messages: []Message{{Role: "user", Content: "x"}},
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if ok || out != "" {
		t.Fatalf("expected ok=false and empty output, got ok=%v out=%q", ok, out)
	}
}

func TestRenderGemmaRejectsBrokenAlternation(t *testing.T) {
	t.Parallel()

	_, _, err := Render(RenderOptions{
		Arch: "gemma",
		Messages: []Message{
			{Role: "user", Content: "a"},
			{Role: "user", Content: "b"},
		},
	})
	if err == nil {
		t.Fatal("expected alternation error")
	}
}

func TestRenderChatMLFallback(t *testing.T) {
	t.Parallel()

	out, err := RenderChatML(RenderOptions{
		AddBOS:              true,
		AddGenerationPrompt: true,
		Messages:            []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if out != "<|im_start|>user\nhi<|im_end|>\n<|im_start|>assistant\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}
