package config

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config is read once at startup and treated as immutable afterwards.
type Config struct {
	Port             string `env:"PORT" envDefault:"8080"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	Model            string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	RawOrigins       string `env:"ALLOWED_ORIGINS"`
	LeadWebhookURL   string `env:"LEAD_WEBHOOK_URL"`
	LeadWebhookToken string `env:"LEAD_WEBHOOK_TOKEN"`
	PromptsFile      string `env:"PROMPTS_FILE" envDefault:"prompts/widget.yaml"`

	// AllowedOrigins is RawOrigins parsed. Empty means browser callers are
	// denied; requests without an Origin header are still admitted.
	AllowedOrigins []string `env:"-"`
}

func Load() (Config, error) {
	_ = godotenv.Load()
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}
	cfg.AllowedOrigins = parseOriginList(cfg.RawOrigins)
	if cfg.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY is not set; chat calls will fail until provided")
	}
	if cfg.LeadWebhookURL == "" {
		log.Println("warning: LEAD_WEBHOOK_URL is not set; lead forwarding is disabled")
	}
	return cfg, nil
}

// parseOriginList accepts the documented JSON-array form
// (`["https://a.com","b.com"]`) and tolerates a plain comma list.
func parseOriginList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var entries []string
		if err := json.Unmarshal([]byte(raw), &entries); err == nil {
			return trimNonEmpty(entries)
		}
		log.Printf("warning: ALLOWED_ORIGINS is not valid JSON, falling back to comma parsing: %s", raw)
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if s := strings.TrimSpace(e); s != "" {
			out = append(out, s)
		}
	}
	return out
}
