package chat

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/recapd/recapd/internal/domain/entities"
	"github.com/recapd/recapd/internal/infrastructure/cache"
	"github.com/recapd/recapd/pkg/ai"
)

// globalScopeDirective primes a fresh global-scope session to stay
// inside the local corpus. Sent exactly once, before the first turn.
const globalScopeDirective = "You may only use the transcripts of recordings stored on this device to answer. " +
	"If the answer is not in those transcripts, say so instead of using outside knowledge."

// EngineChat is the slice of the engine client the manager uses
type EngineChat interface {
	Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error)
}

// TranscriptSource provides the transcript injected into a recording
// session's first turn
type TranscriptSource interface {
	TranscriptText(identity string) (string, bool)
}

// Manager owns conversational state per scope: one session per
// recording plus one global session over the whole corpus. All state is
// reconstructible from the chat sidecars; memory is a read-through
// view.
type Manager struct {
	engine     EngineChat
	store      *cache.SidecarStore
	transcript TranscriptSource
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a chat session manager
func NewManager(engine EngineChat, store *cache.SidecarStore, transcript TranscriptSource, logger *zap.Logger) *Manager {
	return &Manager{
		engine:     engine,
		store:      store,
		transcript: transcript,
		logger:     logger,
		sessions:   make(map[string]*Session),
	}
}

// Recording returns the session scoped to one recording identity
func (m *Manager) Recording(identity string) *Session {
	return m.session(m.store.ChatKey(identity), identity, false)
}

// Global returns the corpus-wide session
func (m *Manager) Global() *Session {
	return m.session(m.store.GlobalChatKey(), "", true)
}

// Invalidate drops the in-memory session for a recording so the next
// use reloads from the sidecar. Called after retranscription deletes
// the chat artifact.
func (m *Manager) Invalidate(identity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, m.store.ChatKey(identity))
}

func (m *Manager) session(key, identity string, global bool) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s
	}
	s := &Session{
		key:        key,
		identity:   identity,
		global:     global,
		engine:     m.engine,
		store:      m.store,
		transcript: m.transcript,
		logger:     m.logger,
	}
	m.sessions[key] = s
	return s
}

// Session is one conversation thread. Messages are append-only; the
// engine session handle is replaced wholesale whenever the engine
// returns a new one.
type Session struct {
	key        string
	identity   string
	global     bool
	engine     EngineChat
	store      *cache.SidecarStore
	transcript TranscriptSource
	logger     *zap.Logger

	mu    sync.Mutex
	state *entities.ChatSessionState
}

// History returns the session's messages in order
func (s *Session) History() ([]entities.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	out := make([]entities.ChatMessage, len(s.state.Messages))
	copy(out, s.state.Messages)
	return out, nil
}

// Send appends the user message, persists it before the engine call so
// it survives a failed request, then appends and persists the reply. An
// engine failure comes back as an assistant-role error message, never
// as a fault.
func (s *Session) Send(ctx context.Context, text string) (entities.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return entities.ChatMessage{}, err
	}

	outgoing := s.outgoingLocked(text)

	s.state.Messages = append(s.state.Messages, entities.NewChatMessage(entities.ChatRoleUser, text))
	if err := s.persistLocked(); err != nil {
		return entities.ChatMessage{}, err
	}

	resp, err := s.engine.Chat(ctx, ai.ChatRequest{
		Message:        outgoing,
		SessionID:      s.state.SessionID,
		UseGlobalScope: s.global,
	})

	var reply entities.ChatMessage
	if err != nil {
		if s.logger != nil {
			s.logger.Error("chat turn failed",
				zap.String("scope", s.scope()),
				zap.Error(err),
			)
		}
		reply = entities.NewChatMessage(entities.ChatRoleAssistant, fmt.Sprintf("Something went wrong: %v", err))
	} else {
		// handle continuity is not validated; last writer wins
		s.state.SessionID = resp.SessionID
		reply = entities.NewChatMessage(entities.ChatRoleAssistant, resp.Text)
	}

	s.state.Messages = append(s.state.Messages, reply)
	if err := s.persistLocked(); err != nil {
		return entities.ChatMessage{}, err
	}
	return reply, nil
}

// outgoingLocked builds the wire message for this turn. Caller holds
// s.mu and has loaded state.
func (s *Session) outgoingLocked(text string) string {
	if s.global {
		if s.state.SessionID == "" {
			return globalScopeDirective + "\n\n" + text
		}
		return text
	}
	if len(s.state.Messages) == 0 && s.transcript != nil {
		if transcript, ok := s.transcript.TranscriptText(s.identity); ok && transcript != "" {
			return fmt.Sprintf("Transcript of this recording:\n\n%s\n\nQuestion: %s", transcript, text)
		}
	}
	return text
}

func (s *Session) loadLocked() error {
	if s.state != nil {
		return nil
	}
	data, ok, err := s.store.Read(s.key)
	if err != nil {
		return err
	}
	if !ok {
		s.state = &entities.ChatSessionState{}
		return nil
	}
	s.state = cache.DecodeChat(data)
	return nil
}

func (s *Session) persistLocked() error {
	blob, err := cache.EncodeChat(s.state)
	if err != nil {
		return err
	}
	return s.store.Write(s.key, blob)
}

func (s *Session) scope() string {
	if s.global {
		return "global"
	}
	return s.identity
}
