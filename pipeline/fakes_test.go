package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/SaiNageswarS/shop-assistant/agent"
	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/SaiNageswarS/shop-assistant/llm"
	"github.com/SaiNageswarS/shop-assistant/memory"
)

// scriptedLLM replies with the queued responses in call order.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	calls     int
}

func newScriptedLLM(responses ...string) *scriptedLLM {
	return &scriptedLLM{responses: responses}
}

func (s *scriptedLLM) GenerateInference(_ context.Context, _ []llm.Message, callback func(chunk string) error, _ ...llm.LLMOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if len(s.responses) == 0 {
		return errors.New("no scripted response")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return callback(resp)
}

func (s *scriptedLLM) GetModel() string { return "scripted-model" }

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedding service down")
}

// recordingReporter keeps every event it is sent.
type recordingReporter struct {
	mu     sync.Mutex
	events []*Event
}

func (r *recordingReporter) Send(event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingReporter) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

func (r *recordingReporter) find(name string) *Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// recordingClassifier answers small talk and records the history it was given.
type recordingClassifier struct {
	mu        sync.Mutex
	histories [][]db.TurnModel
}

func (c *recordingClassifier) Classify(_ context.Context, history []db.TurnModel, _ string) agent.Classification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histories = append(c.histories, history)
	direct := "Xin chào!"
	return agent.Classification{Intent: agent.IntentSmallTalk, DirectResponse: &direct}
}

type panickingClassifier struct{}

func (panickingClassifier) Classify(context.Context, []db.TurnModel, string) agent.Classification {
	panic("classifier exploded")
}

// flakyStore fails every assistant turn write.
type flakyStore struct {
	inner memory.ConversationStore
}

func (s *flakyStore) LoadConversation(ctx context.Context, sessionID string) (*db.ConversationModel, error) {
	return s.inner.LoadConversation(ctx, sessionID)
}

func (s *flakyStore) AppendTurn(ctx context.Context, sessionID string, turn db.TurnModel, info *db.ClientInfo) (*db.ConversationModel, error) {
	if turn.Role == db.RoleAssistant {
		return nil, errors.New("write timeout")
	}
	return s.inner.AppendTurn(ctx, sessionID, turn, info)
}

func (s *flakyStore) RecentTurns(ctx context.Context, sessionID string, n int) ([]db.TurnModel, error) {
	return s.inner.RecentTurns(ctx, sessionID, n)
}
