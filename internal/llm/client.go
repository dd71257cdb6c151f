package llm

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn sent to or received from the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options tune a single model invocation.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
}

// ModelClient is the boundary to the generative model endpoint. It takes the
// ordered message history (system message included, if any) and returns the
// model's text reply.
type ModelClient interface {
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)
}
