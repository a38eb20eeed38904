package complaint

import (
	"context"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/shop-assistant/db"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type MongoStore struct {
	complaints odm.OdmCollectionInterface[db.ComplaintModel]
	drafts     odm.OdmCollectionInterface[db.ComplaintDraftModel]
}

func NewMongoStore(complaints odm.OdmCollectionInterface[db.ComplaintModel], drafts odm.OdmCollectionInterface[db.ComplaintDraftModel]) *MongoStore {
	return &MongoStore{complaints: complaints, drafts: drafts}
}

func ProvideMongoStore(mongo odm.MongoClient, tenant string) *MongoStore {
	return NewMongoStore(
		odm.CollectionOf[db.ComplaintModel](mongo, tenant),
		odm.CollectionOf[db.ComplaintDraftModel](mongo, tenant),
	)
}

func activeComplaintFilter(sessionID string) bson.M {
	return bson.M{
		"sessionId": sessionID,
		"status":    bson.M{"$in": []db.ComplaintStatus{db.StatusOpen, db.StatusInProgress}},
	}
}

var newestFirst = bson.D{{Key: "createdOn", Value: -1}}

func (s *MongoStore) FindActiveForSession(ctx context.Context, sessionID string) (*db.ComplaintModel, error) {
	found, err := async.Await(s.complaints.Find(ctx, activeComplaintFilter(sessionID), newestFirst, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("find active complaint for %s: %w", sessionID, err)
	}
	if len(found) == 0 {
		return nil, nil
	}

	c := found[0]
	return &c, nil
}

func (s *MongoStore) Save(ctx context.Context, c *db.ComplaintModel) error {
	if _, err := async.Await(s.complaints.Save(ctx, *c)); err != nil {
		return fmt.Errorf("save complaint %s: %w", c.ComplaintID, err)
	}
	return nil
}

func (s *MongoStore) ListForSession(ctx context.Context, sessionID string) ([]db.ComplaintModel, error) {
	found, err := async.Await(s.complaints.Find(ctx, bson.M{"sessionId": sessionID}, newestFirst, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("list complaints for %s: %w", sessionID, err)
	}
	return found, nil
}

func (s *MongoStore) LoadDraft(ctx context.Context, sessionID string) (*db.ComplaintDraftModel, error) {
	exists, err := async.Await(s.drafts.Exists(ctx, sessionID))
	if err != nil {
		return nil, fmt.Errorf("check complaint draft %s: %w", sessionID, err)
	}
	if !exists {
		return nil, nil
	}

	draft, err := async.Await(s.drafts.FindOneByID(ctx, sessionID))
	if err != nil {
		return nil, fmt.Errorf("load complaint draft %s: %w", sessionID, err)
	}
	if draft == nil || !draft.Active {
		return nil, nil
	}
	return draft, nil
}

func (s *MongoStore) SaveDraft(ctx context.Context, d *db.ComplaintDraftModel) error {
	if _, err := async.Await(s.drafts.Save(ctx, *d)); err != nil {
		return fmt.Errorf("save complaint draft %s: %w", d.SessionID, err)
	}
	return nil
}

// ClearDraft overwrites the draft with an inactive empty one.
func (s *MongoStore) ClearDraft(ctx context.Context, sessionID string) error {
	return s.SaveDraft(ctx, &db.ComplaintDraftModel{SessionID: sessionID, Tags: []string{}})
}
