package main

import (
	"fmt"
	"log"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/codefarman/chatGPT-Widget/internal/chat"
	"github.com/codefarman/chatGPT-Widget/internal/config"
	"github.com/codefarman/chatGPT-Widget/internal/lead"
	"github.com/codefarman/chatGPT-Widget/internal/origin"
	"github.com/codefarman/chatGPT-Widget/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	policy, err := chat.LoadPolicy(cfg.PromptsFile)
	if err != nil {
		log.Fatalf("failed to load prompts: %v", err)
	}
	policy.Model = cfg.Model

	client := openai.NewClient(cfg.OpenAIAPIKey)
	gateway := chat.NewGateway(client, policy)
	forwarder := lead.NewForwarder(cfg.LeadWebhookURL, cfg.LeadWebhookToken)
	matcher := origin.New(cfg.AllowedOrigins)

	s := server.NewServer(cfg, matcher, gateway, forwarder)
	addr := ":" + cfg.Port
	fmt.Printf("widget server listening on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, s.Router()))
}
