package complaint

import (
	"context"
	"sort"
	"sync"

	"github.com/SaiNageswarS/shop-assistant/db"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	complaints map[string]db.ComplaintModel
	drafts     map[string]db.ComplaintDraftModel
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		complaints: map[string]db.ComplaintModel{},
		drafts:     map[string]db.ComplaintDraftModel{},
	}
}

func (s *InMemoryStore) FindActiveForSession(ctx context.Context, sessionID string) (*db.ComplaintModel, error) {
	all, _ := s.ListForSession(ctx, sessionID)
	for _, c := range all {
		if c.Status.IsActive() {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) Save(_ context.Context, c *db.ComplaintModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.complaints[c.ComplaintID] = cloneComplaint(*c)
	return nil
}

// ListForSession returns the session's complaints newest first.
func (s *InMemoryStore) ListForSession(_ context.Context, sessionID string) ([]db.ComplaintModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []db.ComplaintModel{}
	for _, c := range s.complaints {
		if c.SessionID == sessionID {
			out = append(out, cloneComplaint(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedOn == out[j].CreatedOn {
			return out[i].ComplaintID > out[j].ComplaintID
		}
		return out[i].CreatedOn > out[j].CreatedOn
	})
	return out, nil
}

func (s *InMemoryStore) LoadDraft(_ context.Context, sessionID string) (*db.ComplaintDraftModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[sessionID]
	if !ok || !d.Active {
		return nil, nil
	}
	d.Tags = append([]string{}, d.Tags...)
	return &d, nil
}

func (s *InMemoryStore) SaveDraft(_ context.Context, d *db.ComplaintDraftModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := *d
	draft.Tags = append([]string{}, d.Tags...)
	s.drafts[d.SessionID] = draft
	return nil
}

func (s *InMemoryStore) ClearDraft(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, sessionID)
	return nil
}

func cloneComplaint(c db.ComplaintModel) db.ComplaintModel {
	c.Tags = append([]string{}, c.Tags...)
	c.StatusHistory = append([]db.StatusChange{}, c.StatusHistory...)
	return c
}
