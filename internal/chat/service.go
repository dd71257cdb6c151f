package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
	"github.com/IshpreetSingh8264/InflowBackend/internal/llm"
	"github.com/rs/zerolog"
)

const welcomeMessage = "Hi! I'm your Inflow assistant. Ask me anything about your transactions, spending, or savings goals."

// Service drives one request/response turn of the assistant conversation.
type Service struct {
	store        *Store
	model        llm.ModelClient
	modelTimeout time.Duration
	log          zerolog.Logger
}

// NewService creates the conversation orchestrator.
func NewService(store *Store, model llm.ModelClient, modelTimeout time.Duration, log zerolog.Logger) *Service {
	return &Service{
		store:        store,
		model:        model,
		modelTimeout: modelTimeout,
		log:          log,
	}
}

// Initialize fetches or creates the user's session, installing the system
// instruction and the welcome message on first contact. Initializing an
// existing session again refreshes the cached financial context but never
// duplicates the system or welcome messages. The returned history excludes
// the system message.
func (s *Service) Initialize(ctx context.Context, userID string, txs []domain.Transaction, goals []domain.Goal) ([]llm.Message, error) {
	unlock := s.store.LockUser(userID)
	defer unlock()

	s.store.GetOrCreate(userID, txs, goals)

	if !s.store.HasSystem(userID) {
		cachedTxs, cachedGoals := s.store.Context(userID)
		if err := s.store.SetSystem(userID, buildSystemPrompt(cachedTxs, cachedGoals)); err != nil {
			return nil, err
		}
		if err := s.store.Append(userID, llm.Message{Role: llm.RoleAssistant, Content: welcomeMessage}); err != nil {
			return nil, err
		}
		s.log.Info().Str("user_id", userID).Msg("Chat session initialized")
	}

	return s.store.Visible(userID), nil
}

// SendMessage appends the user's turn, sends the entire retained history to
// the model, and appends the assistant's reply. On model failure nothing is
// appended, so a failed turn leaves the session unchanged. Returns the reply
// and the externally visible history.
func (s *Service) SendMessage(ctx context.Context, userID, text string) (llm.Message, []llm.Message, error) {
	if strings.TrimSpace(text) == "" {
		return llm.Message{}, nil, fmt.Errorf("message text is required: %w", domain.ErrInvalidInput)
	}

	unlock := s.store.LockUser(userID)
	defer unlock()

	// First message may arrive without a prior Initialize call.
	s.store.GetOrCreate(userID, nil, nil)
	if !s.store.HasSystem(userID) {
		cachedTxs, cachedGoals := s.store.Context(userID)
		if err := s.store.SetSystem(userID, buildSystemPrompt(cachedTxs, cachedGoals)); err != nil {
			return llm.Message{}, nil, err
		}
	}

	userMsg := llm.Message{Role: llm.RoleUser, Content: text}
	history := append(s.store.Messages(userID), userMsg)

	callCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	replyText, err := s.model.Generate(callCtx, history, llm.Options{Temperature: 0.7})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("Chat model call failed")
		return llm.Message{}, nil, fmt.Errorf("chat turn for %q: %w", userID, err)
	}

	reply := llm.Message{Role: llm.RoleAssistant, Content: replyText}
	if err := s.store.Append(userID, userMsg); err != nil {
		return llm.Message{}, nil, err
	}
	if err := s.store.Append(userID, reply); err != nil {
		return llm.Message{}, nil, err
	}

	return reply, s.store.Visible(userID), nil
}

// History returns the externally visible history, or an empty slice when no
// session exists.
func (s *Service) History(userID string) []llm.Message {
	return s.store.Visible(userID)
}

// Clear removes the user's session. Idempotent.
func (s *Service) Clear(userID string) {
	unlock := s.store.LockUser(userID)
	defer unlock()
	s.store.Clear(userID)
}

// buildSystemPrompt renders the behavioral instructions plus the user's
// financial data into the single system message for the session.
func buildSystemPrompt(txs []domain.Transaction, goals []domain.Goal) string {
	var b strings.Builder

	b.WriteString("You are Inflow, a personal-finance assistant.\n\n")
	b.WriteString("Behavior:\n")
	b.WriteString("- Stay on the topic of the user's finances; politely decline anything else.\n")
	b.WriteString("- Reference the user's concrete transactions and goals when answering.\n")
	b.WriteString("- Stay consistent with what you said in earlier turns.\n")
	b.WriteString("- Be concise and practical.\n\n")

	if len(txs) == 0 {
		b.WriteString("The user has no recorded transactions yet.\n")
	} else {
		b.WriteString("The user's transactions:\n")
		for _, tx := range txs {
			b.WriteString("  - " + tx.Title)
			if tx.Description != "" {
				b.WriteString(" (" + tx.Description + ")")
			}
			b.WriteString(": " + tx.Amount.String() + " " + string(tx.Type))
			if !tx.CreatedAt.IsZero() {
				b.WriteString(" on " + tx.CreatedAt.Format("2006-01-02"))
			}
			b.WriteString("\n")
		}
	}

	if len(goals) == 0 {
		b.WriteString("The user has no savings goals yet.\n")
	} else {
		b.WriteString("The user's savings goals:\n")
		for _, g := range goals {
			b.WriteString("  - " + g.Title + ": saved " + g.SavedAmount.String() + " of " + g.TargetAmount.String())
			if !g.Deadline.IsZero() {
				b.WriteString(" by " + g.Deadline.Format("2006-01-02"))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
