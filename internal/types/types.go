package types

// ChatTurn is a single entry of caller-supplied conversation history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Turns []ChatTurn `json:"turns"`
}

type ChatResponse struct {
	Reply string   `json:"reply"`
	Chips []string `json:"chips"`
}

// LeadRequest is a user submission expressing interest, forwarded to the
// configured intake webhook.
type LeadRequest struct {
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	FirstMessage string     `json:"firstMessage,omitempty"`
	Conversation []ChatTurn `json:"conversation,omitempty"`
	Timestamp    string     `json:"timestamp,omitempty"`
}

type LeadResponse struct {
	Success          bool `json:"success"`
	Forwarded        bool `json:"forwarded"`
	UpstreamResponse any  `json:"upstreamResponse"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
