package memory

import (
	"context"
	"errors"

	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/SaiNageswarS/shop-assistant/llm"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationStore is the durable, append-only message log keyed by session id.
// Appends are read-modify-write of the whole document; concurrent writers for one
// session race and the last write wins.
type ConversationStore interface {
	LoadConversation(ctx context.Context, sessionID string) (*db.ConversationModel, error)
	// AppendTurn creates the conversation on first use. info is recorded only on creation.
	AppendTurn(ctx context.Context, sessionID string, turn db.TurnModel, info *db.ClientInfo) (*db.ConversationModel, error)
	RecentTurns(ctx context.Context, sessionID string, n int) ([]db.TurnModel, error)
}

func newConversation(sessionID string, turn db.TurnModel, info *db.ClientInfo) *db.ConversationModel {
	return &db.ConversationModel{
		SessionID:  sessionID,
		Turns:      []db.TurnModel{},
		CreatedOn:  turn.Timestamp,
		ClientInfo: info,
	}
}

// ToMessages converts stored turns into chat messages for a completion call.
func ToMessages(turns []db.TurnModel) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		if t.Content == "" {
			continue
		}
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}
