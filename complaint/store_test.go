package complaint

import (
	"context"
	"testing"

	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_FindActiveForSession(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	none, err := store.FindActiveForSession(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, none)

	resolved := db.NewComplaintModel("s1", 10)
	resolved.Status = db.StatusResolved
	older := db.NewComplaintModel("s1", 20)
	newer := db.NewComplaintModel("s1", 30)
	newer.Status = db.StatusInProgress
	otherSession := db.NewComplaintModel("s2", 40)

	for _, c := range []*db.ComplaintModel{resolved, older, newer, otherSession} {
		require.NoError(t, store.Save(ctx, c))
	}

	active, err := store.FindActiveForSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, newer.ComplaintID, active.ComplaintID)

	all, err := store.ListForSession(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInMemoryStore_Drafts(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	d, err := store.LoadDraft(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, d)

	require.NoError(t, store.SaveDraft(ctx, &db.ComplaintDraftModel{SessionID: "s1", Tags: []string{"defect"}, Active: true}))
	d, err = store.LoadDraft(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, []string{"defect"}, d.Tags)

	require.NoError(t, store.ClearDraft(ctx, "s1"))
	d, err = store.LoadDraft(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestActiveComplaintFilter(t *testing.T) {
	filter := activeComplaintFilter("s1")
	assert.Equal(t, "s1", filter["sessionId"])
	assert.NotNil(t, filter["status"])
}
