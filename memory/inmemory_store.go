package memory

import (
	"context"
	"sync"

	"github.com/SaiNageswarS/shop-assistant/db"
)

// InMemoryStore keeps conversations in process. Used for local runs and tests.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*db.ConversationModel
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: map[string]*db.ConversationModel{}}
}

func (s *InMemoryStore) LoadConversation(_ context.Context, sessionID string) (*db.ConversationModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[sessionID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return cloneConversation(conversation), nil
}

func (s *InMemoryStore) AppendTurn(_ context.Context, sessionID string, turn db.TurnModel, info *db.ClientInfo) (*db.ConversationModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, ok := s.conversations[sessionID]
	if !ok {
		conversation = newConversation(sessionID, turn, info)
		s.conversations[sessionID] = conversation
	}
	conversation.AppendTurn(turn)

	return cloneConversation(conversation), nil
}

func (s *InMemoryStore) RecentTurns(_ context.Context, sessionID string, n int) ([]db.TurnModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[sessionID]
	if !ok {
		return []db.TurnModel{}, nil
	}
	return conversation.RecentTurns(n), nil
}

func cloneConversation(c *db.ConversationModel) *db.ConversationModel {
	out := *c
	out.Turns = make([]db.TurnModel, len(c.Turns))
	copy(out.Turns, c.Turns)
	if c.ClientInfo != nil {
		info := *c.ClientInfo
		out.ClientInfo = &info
	}
	return &out
}
