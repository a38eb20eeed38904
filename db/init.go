package db

import (
	"context"

	"github.com/SaiNageswarS/go-api-boot/odm"
)

func InitShopDB(ctx context.Context, mongo odm.MongoClient, tenant string) error {
	err := odm.EnsureIndexes[ProductModel](ctx, mongo, tenant)
	if err != nil {
		return err
	}

	err = odm.EnsureIndexes[ConversationModel](ctx, mongo, tenant)
	if err != nil {
		return err
	}

	err = odm.EnsureIndexes[ComplaintModel](ctx, mongo, tenant)
	if err != nil {
		return err
	}

	err = odm.EnsureIndexes[ComplaintDraftModel](ctx, mongo, tenant)
	if err != nil {
		return err
	}

	return nil
}
