package chat

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy carries the prompt and decoding settings for the widget. It is
// content, not logic: operators edit the YAML file, the code only enforces
// the bounds.
type Policy struct {
	System        string   `yaml:"system"`
	FallbackReply string   `yaml:"fallback_reply"`
	DefaultChips  []string `yaml:"default_chips"`
	Model         string   `yaml:"model"`
	MaxTokens     int      `yaml:"max_tokens"`
}

const defaultSystemPrompt = `You are a friendly assistant embedded in a business website chat widget.
Answer briefly and helpfully. Respond with ONLY a JSON object of the form
{"reply": "<your answer>", "chips": ["<short suggestion>", ...]} with at most 6 chips.`

func DefaultPolicy() Policy {
	return Policy{
		System:        defaultSystemPrompt,
		FallbackReply: "Thanks for your message! How can we help you today?",
		DefaultChips:  []string{"Our services", "Pricing", "Talk to a human"},
		Model:         "gpt-4o-mini",
		MaxTokens:     512,
	}
}

// LoadPolicy reads the YAML policy file. A missing file is not an error: the
// compiled-in defaults apply, as they do for any field the file leaves unset.
func LoadPolicy(path string) (Policy, error) {
	def := DefaultPolicy()
	if path == "" {
		return def, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return def, nil
		}
		return Policy{}, fmt.Errorf("reading prompts file %s: %w", path, err)
	}
	var p Policy
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Policy{}, fmt.Errorf("parsing prompts file %s: %w", path, err)
	}
	if p.System == "" {
		p.System = def.System
	}
	if p.FallbackReply == "" {
		p.FallbackReply = def.FallbackReply
	}
	if len(p.DefaultChips) == 0 {
		p.DefaultChips = def.DefaultChips
	}
	if p.Model == "" {
		p.Model = def.Model
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = def.MaxTokens
	}
	return p, nil
}
