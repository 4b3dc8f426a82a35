package chat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/codefarman/chatGPT-Widget/internal/types"
)

const (
	// historyWindow bounds how much caller history is forwarded upstream.
	historyWindow = 8
	chatTimeout   = 30 * time.Second
)

// ErrTurnsRequired marks invalid input detected before any upstream call.
var ErrTurnsRequired = errors.New("turns required")

// Completer is the slice of the OpenAI client the gateway needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Gateway orchestrates one chat turn. It holds no conversation state: every
// call is self-contained given the turns supplied.
type Gateway struct {
	client Completer
	policy Policy
}

func NewGateway(client Completer, policy Policy) *Gateway {
	return &Gateway{client: client, policy: policy}
}

// Complete validates the supplied turns, sends the bounded window upstream
// and coerces whatever comes back into a structured reply.
func (g *Gateway) Complete(ctx context.Context, turns []types.ChatTurn) (Result, error) {
	messages := g.convertTurns(turns)
	if len(messages) == 0 {
		return Result{}, ErrTurnsRequired
	}
	if len(messages) > historyWindow {
		messages = messages[len(messages)-historyWindow:]
	}
	messages = append([]openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: g.policy.System},
	}, messages...)

	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.policy.Model,
		// effectively zero; the client omits a literal 0 and the API would
		// then apply its own default
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   g.policy.MaxTokens,
		Messages:    messages,
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, errors.New("chat completion: no choices")
	}
	return Coerce(resp.Choices[0].Message.Content, g.policy), nil
}

func (g *Gateway) convertTurns(turns []types.ChatTurn) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		role := strings.ToLower(strings.TrimSpace(t.Role))
		switch role {
		case openai.ChatMessageRoleSystem, openai.ChatMessageRoleAssistant:
		default:
			role = openai.ChatMessageRoleUser
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: content})
	}
	return out
}
