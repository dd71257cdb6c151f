package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IshpreetSingh8264/InflowBackend/internal/domain"
	"github.com/IshpreetSingh8264/InflowBackend/internal/llm"
	"github.com/rs/zerolog"
)

// session is one user's conversational state. Sessions are exclusively owned
// by the Store; no pointer to one ever leaves this package.
type session struct {
	messages     []llm.Message
	transactions []domain.Transaction
	goals        []domain.Goal
	lastAccess   time.Time
}

// userLock is a refcounted per-user mutex entry. Entries disappear once the
// last holder releases, so the lock table does not outgrow the session map.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// Store holds one in-memory chat session per user with time-based expiry.
// All methods are safe for concurrent use. Sessions for distinct users never
// contend; two requests for the same user serialize through LockUser.
// State is process-local and lost on restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	locks    map[string]*userLock

	timeout time.Duration
	maxMsgs int
	now     func() time.Time
	log     zerolog.Logger
}

// NewStore creates a session store. maxMessages caps a session's history
// (system message included); timeout is the idle duration after which Sweep
// removes a session.
func NewStore(timeout time.Duration, maxMessages int, log zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*session),
		locks:    make(map[string]*userLock),
		timeout:  timeout,
		maxMsgs:  maxMessages,
		now:      time.Now,
		log:      log,
	}
}

// LockUser serializes all work for one user, including the sweep. The
// returned func releases the lock; callers hold it across a whole chat turn
// so concurrent requests for the same user cannot interleave history
// mutations.
func (s *Store) LockUser(userID string) (unlock func()) {
	s.mu.Lock()
	l := s.locks[userID]
	if l == nil {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// GetOrCreate returns whether a session already existed for the user,
// creating an empty one otherwise. Non-nil transactions or goals overwrite
// the cached context. Touches lastAccess either way.
func (s *Store) GetOrCreate(userID string, txs []domain.Transaction, goals []domain.Goal) (existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	if txs != nil {
		sess.transactions = txs
	}
	if goals != nil {
		sess.goals = goals
	}
	sess.lastAccess = s.now()
	return ok
}

// HasSystem reports whether the user's session carries a system message.
func (s *Store) HasSystem(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	return ok && len(sess.messages) > 0 && sess.messages[0].Role == llm.RoleSystem
}

// SetSystem installs or replaces the session's single system message at
// position 0. It requires an existing session.
func (s *Store) SetSystem(userID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return fmt.Errorf("set system for %q: %w", userID, domain.ErrSessionNotFound)
	}

	msg := llm.Message{Role: llm.RoleSystem, Content: content}
	if len(sess.messages) > 0 && sess.messages[0].Role == llm.RoleSystem {
		sess.messages[0] = msg
	} else {
		sess.messages = append([]llm.Message{msg}, sess.messages...)
	}
	sess.lastAccess = s.now()
	return nil
}

// Append adds a message to the user's session and applies the retention cap:
// the system message is never dropped, the oldest conversational messages go
// first. Callers must GetOrCreate before appending.
func (s *Store) Append(userID string, msg llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return fmt.Errorf("append for %q: %w", userID, domain.ErrSessionNotFound)
	}

	sess.messages = append(sess.messages, msg)
	if s.maxMsgs > 0 && len(sess.messages) > s.maxMsgs {
		if sess.messages[0].Role == llm.RoleSystem {
			keep := s.maxMsgs - 1
			conversational := sess.messages[1:]
			sess.messages = append(sess.messages[:1], conversational[len(conversational)-keep:]...)
		} else {
			sess.messages = sess.messages[len(sess.messages)-s.maxMsgs:]
		}
	}
	sess.lastAccess = s.now()
	return nil
}

// Messages returns a copy of the full history, system message included, or
// nil when no session exists. Touches lastAccess.
func (s *Store) Messages(userID string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	sess.lastAccess = s.now()

	out := make([]llm.Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// Visible returns a copy of the externally visible history, the system
// message excluded. Unknown users get an empty slice, never an error.
func (s *Store) Visible(userID string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return []llm.Message{}
	}
	sess.lastAccess = s.now()

	msgs := sess.messages
	if len(msgs) > 0 && msgs[0].Role == llm.RoleSystem {
		msgs = msgs[1:]
	}
	out := make([]llm.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Context returns the session's cached transactions and goals.
func (s *Store) Context(userID string) ([]domain.Transaction, []domain.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	return sess.transactions, sess.goals
}

// Clear removes the user's session. Idempotent.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Sweep removes every session idle longer than the timeout and reports how
// many were removed. Each removal takes the same per-user lock as any other
// mutator, so a session is never deleted mid-turn.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	var expired []string
	for userID, sess := range s.sessions {
		if now.Sub(sess.lastAccess) > s.timeout {
			expired = append(expired, userID)
		}
	}
	s.mu.Unlock()

	removed := 0
	for _, userID := range expired {
		unlock := s.LockUser(userID)

		s.mu.Lock()
		sess, ok := s.sessions[userID]
		// Re-check: the session may have been touched while we waited.
		if ok && now.Sub(sess.lastAccess) > s.timeout {
			delete(s.sessions, userID)
			removed++
		}
		s.mu.Unlock()

		unlock()
	}
	return removed
}

// Len reports how many sessions are currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RunSweeper runs the periodic sweep until ctx is done. Call it in its own
// goroutine.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.log.Info().Int("removed", n).Msg("Swept expired chat sessions")
			}
		}
	}
}
