package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/shop-assistant/db"
	"go.uber.org/zap"
)

// ConversationManager persists conversations through the odm collection.
type ConversationManager struct {
	collection odm.OdmCollectionInterface[db.ConversationModel]
}

func NewConversationManager(collection odm.OdmCollectionInterface[db.ConversationModel]) *ConversationManager {
	return &ConversationManager{collection: collection}
}

func ProvideConversationManager(mongo odm.MongoClient, tenant string) *ConversationManager {
	return NewConversationManager(odm.CollectionOf[db.ConversationModel](mongo, tenant))
}

func (cm *ConversationManager) LoadConversation(ctx context.Context, sessionID string) (*db.ConversationModel, error) {
	if cm.collection == nil {
		return nil, ErrConversationNotFound
	}

	exists, err := async.Await(cm.collection.Exists(ctx, sessionID))
	if err != nil {
		return nil, fmt.Errorf("check conversation %s: %w", sessionID, err)
	}
	if !exists {
		return nil, ErrConversationNotFound
	}

	conversation, err := async.Await(cm.collection.FindOneByID(ctx, sessionID))
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", sessionID, err)
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	return conversation, nil
}

func (cm *ConversationManager) AppendTurn(ctx context.Context, sessionID string, turn db.TurnModel, info *db.ClientInfo) (*db.ConversationModel, error) {
	if cm.collection == nil {
		conversation := newConversation(sessionID, turn, info)
		conversation.AppendTurn(turn)
		return conversation, nil
	}

	conversation, err := cm.LoadConversation(ctx, sessionID)
	if errors.Is(err, ErrConversationNotFound) {
		logger.Info("Creating conversation", zap.String("sessionId", sessionID))
		conversation = newConversation(sessionID, turn, info)
	} else if err != nil {
		return nil, err
	}

	conversation.AppendTurn(turn)

	if _, err := async.Await(cm.collection.Save(ctx, *conversation)); err != nil {
		logger.Error("Failed to save conversation", zap.String("sessionId", sessionID), zap.Error(err))
		return nil, fmt.Errorf("save conversation %s: %w", sessionID, err)
	}

	return conversation, nil
}

func (cm *ConversationManager) RecentTurns(ctx context.Context, sessionID string, n int) ([]db.TurnModel, error) {
	conversation, err := cm.LoadConversation(ctx, sessionID)
	if errors.Is(err, ErrConversationNotFound) {
		return []db.TurnModel{}, nil
	}
	if err != nil {
		return nil, err
	}
	return conversation.RecentTurns(n), nil
}
