package complaint

import (
	"context"

	"github.com/SaiNageswarS/shop-assistant/db"
)

// Store is the complaint persistence layer. A session has at most one active
// (open or in_progress) complaint; callers find it with FindActiveForSession
// before deciding to create a new one. There is no session level lock, so two
// concurrent turns for one session can both observe "no active complaint".
type Store interface {
	// FindActiveForSession returns the most recent open/in_progress complaint, or nil.
	FindActiveForSession(ctx context.Context, sessionID string) (*db.ComplaintModel, error)
	Save(ctx context.Context, c *db.ComplaintModel) error
	ListForSession(ctx context.Context, sessionID string) ([]db.ComplaintModel, error)

	// LoadDraft returns the pending intake data for the session, or nil.
	LoadDraft(ctx context.Context, sessionID string) (*db.ComplaintDraftModel, error)
	SaveDraft(ctx context.Context, d *db.ComplaintDraftModel) error
	ClearDraft(ctx context.Context, sessionID string) error
}
