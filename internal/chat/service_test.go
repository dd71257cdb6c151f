package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
	"github.com/IshpreetSingh8264/InflowBackend/internal/llm"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newTestService(model llm.ModelClient) (*Service, *Store) {
	store := newTestStore(30*time.Minute, 21)
	return NewService(store, model, time.Second, zerolog.Nop()), store
}

func TestInitialize_FirstContact(t *testing.T) {
	svc, store := newTestService(&llm.MockClient{})

	txs := []domain.Transaction{{ID: "t1", Title: "Rent", Amount: decimal.NewFromInt(900), Type: domain.TypeExpense}}
	goals := []domain.Goal{{ID: "g1", Title: "Holiday", TargetAmount: decimal.NewFromInt(1500), SavedAmount: decimal.NewFromInt(200)}}

	visible, err := svc.Initialize(context.Background(), "u1", txs, goals)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// Caller sees only the welcome message, never the system instruction.
	if len(visible) != 1 {
		t.Fatalf("visible len = %d, want 1", len(visible))
	}
	if visible[0].Role != llm.RoleAssistant {
		t.Errorf("visible[0].Role = %s, want assistant", visible[0].Role)
	}

	full := store.Messages("u1")
	if len(full) != 2 || full[0].Role != llm.RoleSystem {
		t.Fatalf("session should hold [system, welcome], got %+v", full)
	}
	if !strings.Contains(full[0].Content, "Rent") {
		t.Error("system instruction does not reference the user's transactions")
	}
	if !strings.Contains(full[0].Content, "Holiday") {
		t.Error("system instruction does not reference the user's goals")
	}
}

func TestInitialize_TwiceDoesNotDuplicate(t *testing.T) {
	svc, store := newTestService(&llm.MockClient{})

	if _, err := svc.Initialize(context.Background(), "u1", nil, nil); err != nil {
		t.Fatal(err)
	}
	visible, err := svc.Initialize(context.Background(), "u1", nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(visible) != 1 {
		t.Errorf("visible len = %d, want 1 (welcome not duplicated)", len(visible))
	}
	full := store.Messages("u1")
	if len(full) != 2 {
		t.Errorf("session len = %d, want 2 (system not duplicated)", len(full))
	}
}

func TestSendMessage_EmptyTextRejected(t *testing.T) {
	model := &llm.MockClient{}
	svc, store := newTestService(model)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, _, err := svc.SendMessage(context.Background(), "u1", text)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("SendMessage(%q) error = %v, want ErrInvalidInput", text, err)
		}
	}
	if model.Calls != 0 {
		t.Errorf("model called %d times for empty input, want 0", model.Calls)
	}
	if store.Len() != 0 {
		t.Error("empty input must not create or mutate a session")
	}
}

func TestSendMessage_RoundTrip(t *testing.T) {
	var seen []llm.Message
	model := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
			seen = messages
			return "You spent most on rent.", nil
		},
	}
	svc, _ := newTestService(model)

	if _, err := svc.Initialize(context.Background(), "u1", nil, nil); err != nil {
		t.Fatal(err)
	}

	reply, visible, err := svc.SendMessage(context.Background(), "u1", "Where does my money go?")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply.Role != llm.RoleAssistant || reply.Content != "You spent most on rent." {
		t.Errorf("reply = %+v", reply)
	}

	// Model receives the entire retained history, system message first.
	if len(seen) == 0 || seen[0].Role != llm.RoleSystem {
		t.Fatalf("model did not receive the system message first: %+v", seen)
	}
	if seen[len(seen)-1].Content != "Where does my money go?" {
		t.Error("model did not receive the new user turn last")
	}

	// welcome + user + assistant
	if len(visible) != 3 {
		t.Errorf("visible len = %d, want 3", len(visible))
	}
}

func TestSendMessage_FirstMessageCreatesSession(t *testing.T) {
	svc, store := newTestService(&llm.MockClient{})

	_, _, err := svc.SendMessage(context.Background(), "fresh-user", "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	full := store.Messages("fresh-user")
	if len(full) == 0 || full[0].Role != llm.RoleSystem {
		t.Errorf("first message should synthesize a system instruction, got %+v", full)
	}
}

func TestSendMessage_ModelFailureLeavesSessionUnchanged(t *testing.T) {
	model := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
			return "", domain.ErrUpstreamUnavailable
		},
	}
	svc, store := newTestService(model)

	if _, err := svc.Initialize(context.Background(), "u1", nil, nil); err != nil {
		t.Fatal(err)
	}
	before := len(store.Messages("u1"))

	_, _, err := svc.SendMessage(context.Background(), "u1", "hi")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("error = %v, want ErrUpstreamUnavailable", err)
	}
	if after := len(store.Messages("u1")); after != before {
		t.Errorf("session mutated on failed turn: %d -> %d messages", before, after)
	}
}

func TestHistory_UnknownUserIsEmpty(t *testing.T) {
	svc, _ := newTestService(&llm.MockClient{})

	history := svc.History("nobody")
	if history == nil || len(history) != 0 {
		t.Errorf("History = %v, want empty slice", history)
	}
}

func TestClear_ThenHistoryIsEmpty(t *testing.T) {
	svc, _ := newTestService(&llm.MockClient{})

	if _, err := svc.Initialize(context.Background(), "u1", nil, nil); err != nil {
		t.Fatal(err)
	}
	svc.Clear("u1")
	svc.Clear("u1") // idempotent

	if got := svc.History("u1"); len(got) != 0 {
		t.Errorf("History after Clear = %v, want empty", got)
	}
}
