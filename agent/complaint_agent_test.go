package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SaiNageswarS/shop-assistant/complaint"
	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

func newTestComplaintAgent(llm *scriptedLLM, store complaint.Store) *ComplaintAgent {
	a := NewComplaintAgent(llm, store, time.Second, "TechShop")
	tick := int64(0)
	a.now = func() time.Time {
		tick++
		return time.UnixMilli(1_700_000_000_000 + tick)
	}
	return a
}

func TestComplaintAgent_TwoTurnIntake(t *testing.T) {
	ctx := context.Background()
	store := complaint.NewInMemoryStore()
	llm := newScriptedLLM(
		`{"responseText": "Rất tiếc về sự cố. Bạn cho mình xin email hoặc số điện thoại nhé?",
		  "isComplete": false,
		  "complaintData": {"detailedDescription": "Tai nghe bị rè sau 2 ngày", "customerContact": {"email": null, "phone": null},
		                    "priority": "high", "tags": ["defect", "audio"]}}`,
		`{"responseText": "Mình đã ghi nhận khiếu nại của bạn.",
		  "isComplete": true,
		  "complaintData": {"detailedDescription": null, "customerContact": {"email": "A@B.com", "phone": null},
		                    "priority": null, "tags": ["Defect", "warranty"]}}`,
	)
	agent := newTestComplaintAgent(llm, store)

	first := agent.HandleTurn(ctx, sessionID, nil, "tai nghe bị rè, tôi muốn khiếu nại")
	assert.False(t, first.IsComplete)
	assert.False(t, first.Fallback)
	assert.Nil(t, first.Complaint)

	rows, err := store.ListForSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, rows, "no complaint row before intake is complete")

	second := agent.HandleTurn(ctx, sessionID, nil, "email tôi là A@B.com")
	assert.True(t, second.IsComplete)
	assert.True(t, second.Created)
	require.NotNil(t, second.Complaint)

	rows, err = store.ListForSession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	c := rows[0]
	assert.Equal(t, db.StatusInProgress, c.Status)
	require.Len(t, c.StatusHistory, 1)
	assert.Equal(t, db.StatusOpen, c.StatusHistory[0].From)
	assert.Equal(t, db.StatusInProgress, c.StatusHistory[0].To)
	assert.Equal(t, "a@b.com", c.CustomerContact.Email)
	assert.Equal(t, "Tai nghe bị rè sau 2 ngày", c.Description)
	assert.Equal(t, db.PriorityHigh, c.Priority)
	assert.ElementsMatch(t, []string{"defect", "audio", "warranty"}, c.Tags)

	draft, err := store.LoadDraft(ctx, sessionID)
	require.NoError(t, err)
	assert.Nil(t, draft, "draft is cleared once the complaint exists")

	// the prompt for the second turn carries what the first turn collected
	require.Len(t, llm.calls, 2)
}

func TestComplaintAgent_UpdatesActiveComplaintInsteadOfCreating(t *testing.T) {
	ctx := context.Background()
	store := complaint.NewInMemoryStore()
	existing := db.NewComplaintModel(sessionID, 1)
	existing.SetDescription("Giao hàng trễ")
	existing.Tags = []string{"delivery"}
	require.NoError(t, store.Save(ctx, existing))

	llm := newScriptedLLM(`{"responseText": "Cảm ơn bạn, mình đã cập nhật.", "isComplete": true,
		"complaintData": {"customerContact": {"phone": "091 234 5678"}, "priority": "urgent", "tags": ["delivery", "refund"]}}`)
	agent := newTestComplaintAgent(llm, store)

	res := agent.HandleTurn(ctx, sessionID, nil, "số tôi là 091 234 5678")
	assert.False(t, res.Created)
	require.NotNil(t, res.Complaint)

	rows, err := store.ListForSession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, existing.ComplaintID, rows[0].ComplaintID)
	assert.Equal(t, db.StatusInProgress, rows[0].Status)
	assert.Equal(t, "0912345678", rows[0].CustomerContact.Phone)
	assert.Equal(t, db.PriorityUrgent, rows[0].Priority)
	assert.Equal(t, []string{"delivery", "refund"}, rows[0].Tags)
	assert.Equal(t, "Giao hàng trễ", rows[0].Description)
}

func TestComplaintAgent_InvalidContactIsDropped(t *testing.T) {
	ctx := context.Background()
	store := complaint.NewInMemoryStore()
	llm := newScriptedLLM(`{"responseText": "Email chưa đúng, bạn kiểm tra lại nhé.", "isComplete": true,
		"complaintData": {"detailedDescription": "Màn hình lỗi", "customerContact": {"email": "not-an-email", "phone": "12345"}, "priority": "whenever", "tags": []}}`)
	agent := newTestComplaintAgent(llm, store)

	res := agent.HandleTurn(ctx, sessionID, nil, "email tôi là not-an-email")
	require.NotNil(t, res.Complaint)
	assert.Empty(t, res.Complaint.CustomerContact.Email)
	assert.Empty(t, res.Complaint.CustomerContact.Phone)
	assert.Equal(t, db.PriorityMedium, res.Complaint.Priority)
	assert.Equal(t, db.StatusOpen, res.Complaint.Status, "no contact, so the complaint stays open")
}

func TestComplaintAgent_FallbackNeverRaises(t *testing.T) {
	tests := []struct {
		name string
		llm  *scriptedLLM
	}{
		{"call error", &scriptedLLM{errs: []error{errors.New("timeout")}}},
		{"not json", newScriptedLLM("Xin lỗi bạn")},
		{"missing isComplete", newScriptedLLM(`{"responseText": "ok"}`)},
		{"missing responseText", newScriptedLLM(`{"isComplete": true}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := complaint.NewInMemoryStore()
			existing := db.NewComplaintModel(sessionID, 1)
			require.NoError(t, store.Save(ctx, existing))

			res := newTestComplaintAgent(tt.llm, store).HandleTurn(ctx, sessionID, nil, "lỗi rồi")

			assert.True(t, res.Fallback)
			assert.False(t, res.IsComplete)
			assert.Equal(t, ComplaintApology, res.ResponseText)

			rows, err := store.ListForSession(ctx, sessionID)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, existing.UpdatedOn, rows[0].UpdatedOn, "existing complaint is untouched")
		})
	}
}

type failingStore struct {
	*complaint.InMemoryStore
}

func (f failingStore) FindActiveForSession(context.Context, string) (*db.ComplaintModel, error) {
	return nil, errors.New("mongo unavailable")
}

func TestComplaintAgent_StoreFailureFallsBack(t *testing.T) {
	llm := newScriptedLLM(`{"responseText": "ok", "isComplete": true}`)
	res := newTestComplaintAgent(llm, failingStore{complaint.NewInMemoryStore()}).HandleTurn(context.Background(), sessionID, nil, "khiếu nại")

	assert.True(t, res.Fallback)
	assert.Equal(t, ComplaintApology, res.ResponseText)
	assert.Empty(t, llm.calls)
}
