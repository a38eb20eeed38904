package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SaiNageswarS/shop-assistant/agent"
	"github.com/SaiNageswarS/shop-assistant/catalog"
	"github.com/SaiNageswarS/shop-assistant/complaint"
	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/SaiNageswarS/shop-assistant/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

type fixture struct {
	pipeline   *Pipeline
	llm        *scriptedLLM
	store      memory.ConversationStore
	complaints *complaint.InMemoryStore
}

func newFixture(t *testing.T, store memory.ConversationStore, responses ...string) *fixture {
	t.Helper()

	if store == nil {
		store = memory.NewInMemoryStore()
	}
	client := newScriptedLLM(responses...)
	complaints := complaint.NewInMemoryStore()
	products := catalog.NewInMemoryCatalog(
		db.ProductModel{ProductID: "ip15", Name: "iPhone 15 128GB", Brand: "Apple", Price: 22990000, Stock: 5, IsActive: true, CreatedOn: 1},
		db.ProductModel{ProductID: "s24", Name: "Galaxy S24", Brand: "Samsung", Price: 19990000, Stock: 3, IsActive: true, CreatedOn: 2},
	)

	p, err := NewBuilder().
		WithConversationStore(store).
		WithClassifier(agent.NewIntentClassifier(client, time.Second)).
		WithRetriever(agent.NewProductRetriever(products, failingEmbedder{}, time.Second)).
		WithGenerator(agent.NewResponseGenerator(client, time.Second, "TechShop", "Mai")).
		WithComplaintHandler(agent.NewComplaintAgent(client, complaints, time.Second, "TechShop")).
		WithRegisterer(prometheus.NewRegistry()).
		Build()
	require.NoError(t, err)

	return &fixture{pipeline: p, llm: client, store: store, complaints: complaints}
}

func (f *fixture) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.pipeline.Wait(ctx))
}

func errorType(t *testing.T, r *recordingReporter) string {
	t.Helper()
	e := r.find(EventError)
	require.NotNil(t, e)
	return e.Data.(ErrorData).Type
}

func TestHandleTurn_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		req      *TurnRequest
		wantType string
	}{
		{"missing payload", nil, ErrTypeValidation},
		{"invalid session", &TurnRequest{SessionID: "not-a-uuid", Message: "xin chào"}, ErrTypeInvalidSession},
		{"empty message", &TurnRequest{SessionID: sessionID, Message: "   "}, ErrTypeEmptyMessage},
		{"too long", &TurnRequest{SessionID: sessionID, Message: strings.Repeat("a", DefaultMaxMessageLength+1)}, ErrTypeMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			reporter := &recordingReporter{}

			result, err := f.pipeline.HandleTurn(context.Background(), reporter, tt.req)
			require.Error(t, err)
			assert.Nil(t, result)

			assert.Equal(t, []string{EventError}, reporter.names())
			assert.Equal(t, tt.wantType, errorType(t, reporter))
			assert.Equal(t, 0, f.llm.callCount())
			assert.Equal(t, 1.0, testutil.ToFloat64(f.pipeline.metrics.ValidationErrors.WithLabelValues(tt.wantType)))

			f.wait(t)
			_, err = f.store.LoadConversation(context.Background(), sessionID)
			assert.ErrorIs(t, err, memory.ErrConversationNotFound)
		})
	}
}

func TestHandleTurn_MessageAtLimitIsAccepted(t *testing.T) {
	f := newFixture(t, nil, `{"intent": "small_talk", "direct_response": "Chào bạn"}`)

	_, err := f.pipeline.HandleTurn(context.Background(), nil, &TurnRequest{
		SessionID: sessionID,
		Message:   strings.Repeat("á", DefaultMaxMessageLength),
	})
	require.NoError(t, err)
}

func TestHandleTurn_ProductQuery(t *testing.T) {
	f := newFixture(t, nil,
		`{"intent": "product_query", "clarified_query": "iPhone 15 giá"}`,
		"iPhone 15 128GB đang có giá 22.990.000 ₫ bạn nhé.",
	)
	reporter := &recordingReporter{}

	result, err := f.pipeline.HandleTurn(context.Background(), reporter, &TurnRequest{
		SessionID: strings.ToUpper(sessionID),
		Message:   "  Giá iPhone 15 bao nhiêu?  ",
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []string{EventMessageProcessing, EventAIResponse, EventMessageProcessing}, reporter.names())
	assert.Equal(t, ProcessingStarted, reporter.events[0].Data.(MessageProcessingData).Status)
	assert.Equal(t, ProcessingCompleted, reporter.events[2].Data.(MessageProcessingData).Status)

	response := reporter.find(EventAIResponse).Data.(AIResponseData)
	assert.Equal(t, sessionID, response.SessionID)
	assert.Contains(t, response.Message, "22.990.000")
	assert.Equal(t, string(agent.IntentProductQuery), response.Metadata.ResponseType)
	assert.Equal(t, catalog.TierKeyword, response.Metadata.RetrievalTier)
	require.NotEmpty(t, response.Metadata.RetrievedProducts)
	assert.Equal(t, "ip15", response.Metadata.RetrievedProducts[0].ProductID)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.pipeline.metrics.RetrievalTier.WithLabelValues(catalog.TierKeyword)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.pipeline.metrics.RetrievalTierErrors.WithLabelValues(catalog.TierSemantic)))

	f.wait(t)
	conversation, err := f.store.LoadConversation(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, conversation.Turns, 2)
	assert.Equal(t, 2, conversation.TurnCount)

	user := conversation.Turns[0]
	assert.Equal(t, db.RoleUser, user.Role)
	assert.Equal(t, "Giá iPhone 15 bao nhiêu?", user.Content)
	require.NotNil(t, user.Metadata)
	assert.Equal(t, "10.0.0.1", user.Metadata.IPAddress)
	require.NotNil(t, conversation.ClientInfo)
	assert.Equal(t, "test-agent", conversation.ClientInfo.UserAgent)

	assistant := conversation.Turns[1]
	assert.Equal(t, db.RoleAssistant, assistant.Role)
	require.NotNil(t, assistant.Metadata)
	assert.False(t, assistant.Metadata.SkipRAG)
	assert.Equal(t, "iPhone 15 giá", assistant.Metadata.ClarifiedQuery)
	assert.Equal(t, "scripted-model", assistant.Metadata.Model)
	assert.NotEmpty(t, assistant.Metadata.RetrievedProducts)
}

func TestHandleTurn_ComplaintIntakeAcrossTurns(t *testing.T) {
	f := newFixture(t, nil,
		`{"intent": "complaint"}`,
		`{"responseText": "Rất tiếc về sự cố. Bạn cho mình xin email nhé?", "isComplete": false,
		  "complaintData": {"detailedDescription": "Tai nghe bị rè sau 2 ngày", "customerContact": {"email": null, "phone": null},
		                    "priority": "high", "tags": ["defect"]}}`,
		`{"intent": "complaint"}`,
		`{"responseText": "Mình đã ghi nhận khiếu nại của bạn.", "isComplete": true,
		  "complaintData": {"detailedDescription": null, "customerContact": {"email": "khach@example.com", "phone": null},
		                    "priority": null, "tags": []}}`,
	)
	ctx := context.Background()

	first := &recordingReporter{}
	_, err := f.pipeline.HandleTurn(ctx, first, &TurnRequest{SessionID: sessionID, Message: "Tai nghe bị rè, tôi muốn khiếu nại"})
	require.NoError(t, err)

	meta := first.find(EventAIResponse).Data.(AIResponseData).Metadata
	require.NotNil(t, meta.IsComplete)
	assert.False(t, *meta.IsComplete)
	assert.Empty(t, meta.ComplaintID)

	second := &recordingReporter{}
	_, err = f.pipeline.HandleTurn(ctx, second, &TurnRequest{SessionID: sessionID, Message: "email của tôi là khach@example.com"})
	require.NoError(t, err)

	meta = second.find(EventAIResponse).Data.(AIResponseData).Metadata
	require.NotNil(t, meta.IsComplete)
	assert.True(t, *meta.IsComplete)
	assert.NotEmpty(t, meta.ComplaintID)
	assert.Equal(t, string(db.StatusInProgress), meta.ComplaintStatus)

	rows, err := f.complaints.ListForSession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "khach@example.com", rows[0].CustomerContact.Email)
	assert.Equal(t, db.PriorityHigh, rows[0].Priority)

	f.wait(t)
	conversation, err := f.store.LoadConversation(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, conversation.Turns, 4)
	assert.True(t, conversation.Turns[3].Metadata.SkipRAG)
	assert.Equal(t, meta.ComplaintID, conversation.Turns[3].Metadata.ComplaintID)
}

func TestHandleTurn_SmallTalkWithoutDirectResponse(t *testing.T) {
	f := newFixture(t, nil, `{"intent": "small_talk"}`)
	reporter := &recordingReporter{}

	result, err := f.pipeline.HandleTurn(context.Background(), reporter, &TurnRequest{SessionID: sessionID, Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, SmallTalkReply, result.Reply)
	assert.Equal(t, 1, f.llm.callCount(), "small talk never reaches retrieval or generation")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.pipeline.metrics.Fallbacks.WithLabelValues("small_talk")))
}

func TestHandleTurn_EmptyReplyIsGenerationError(t *testing.T) {
	f := newFixture(t, nil, `{"intent": "product_query"}`, "   ")
	reporter := &recordingReporter{}

	result, err := f.pipeline.HandleTurn(context.Background(), reporter, &TurnRequest{SessionID: sessionID, Message: "điện thoại"})
	assert.ErrorIs(t, err, ErrEmptyReply)
	assert.Nil(t, result)
	assert.Equal(t, ErrTypeGeneration, errorType(t, reporter))
	assert.Nil(t, reporter.find(EventAIResponse))
}

func TestHandleTurn_AssistantPersistenceFailureIsSwallowed(t *testing.T) {
	store := &flakyStore{inner: memory.NewInMemoryStore()}
	f := newFixture(t, store, `{"intent": "small_talk", "direct_response": "Chào bạn!"}`)
	reporter := &recordingReporter{}

	result, err := f.pipeline.HandleTurn(context.Background(), reporter, &TurnRequest{SessionID: sessionID, Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Chào bạn!", result.Reply)
	assert.NotNil(t, reporter.find(EventAIResponse))
	assert.Nil(t, reporter.find(EventError))

	f.wait(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.pipeline.metrics.PersistenceFailures))

	conversation, err := store.LoadConversation(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, conversation.Turns, 1)
}

func TestHandleTurn_PanicBecomesProcessingError(t *testing.T) {
	for _, production := range []bool{false, true} {
		p, err := NewBuilder().
			WithConversationStore(memory.NewInMemoryStore()).
			WithClassifier(panickingClassifier{}).
			WithRetriever(agent.NewProductRetriever(catalog.NewInMemoryCatalog(), nil, time.Second)).
			WithGenerator(agent.NewResponseGenerator(newScriptedLLM(), time.Second, "TechShop", "Mai")).
			WithComplaintHandler(agent.NewComplaintAgent(newScriptedLLM(), complaint.NewInMemoryStore(), time.Second, "TechShop")).
			WithProduction(production).
			Build()
		require.NoError(t, err)

		reporter := &recordingReporter{}
		result, err := p.HandleTurn(context.Background(), reporter, &TurnRequest{SessionID: sessionID, Message: "hi"})
		require.Error(t, err)
		assert.Nil(t, result)

		event := reporter.find(EventError)
		require.NotNil(t, event)
		data := event.Data.(ErrorData)
		assert.Equal(t, ErrTypeProcessing, data.Type)
		if production {
			assert.Equal(t, productionErrorMessage, data.Message)
		} else {
			assert.Contains(t, data.Message, "classifier exploded")
		}
	}
}

func TestHandleTurn_HistoryExcludesCurrentMessageAndIsBounded(t *testing.T) {
	store := memory.NewInMemoryStore()
	classifier := &recordingClassifier{}
	p, err := NewBuilder().
		WithConversationStore(store).
		WithClassifier(classifier).
		WithRetriever(agent.NewProductRetriever(catalog.NewInMemoryCatalog(), nil, time.Second)).
		WithGenerator(agent.NewResponseGenerator(newScriptedLLM(), time.Second, "TechShop", "Mai")).
		WithComplaintHandler(agent.NewComplaintAgent(newScriptedLLM(), complaint.NewInMemoryStore(), time.Second, "TechShop")).
		Build()
	require.NoError(t, err)

	messages := []string{"một", "hai", "ba", "bốn", "năm"}
	for _, m := range messages {
		_, err := p.HandleTurn(context.Background(), nil, &TurnRequest{SessionID: sessionID, Message: m})
		require.NoError(t, err)
	}

	require.Len(t, classifier.histories, 5)
	assert.Empty(t, classifier.histories[0])
	assert.Len(t, classifier.histories[1], 2)

	last := classifier.histories[4]
	require.Len(t, last, DefaultHistoryWindow)
	assert.Equal(t, "hai", last[0].Content)
	assert.Equal(t, db.RoleAssistant, last[len(last)-1].Role)
	for i := 1; i < len(last); i++ {
		assert.NotEqual(t, last[i-1].Role, last[i].Role, "turns alternate in receipt order")
	}
}

func TestBuilder_RequiresComponents(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.Error(t, err)

	_, err = NewBuilder().WithConversationStore(memory.NewInMemoryStore()).Build()
	assert.Error(t, err)
}

func TestProductRefs_KeepRankOrder(t *testing.T) {
	products := []catalog.ScoredProduct{
		{Product: catalog.Product{ID: "s24", Name: "Galaxy S24"}, Score: 0.9, Tier: catalog.TierSemantic},
		{Product: catalog.Product{ID: "ip15", Name: "iPhone 15 128GB"}, Score: 0.7, Tier: catalog.TierSemantic},
	}

	refs, err := productRefs(context.Background(), products)

	require.NoError(t, err)
	assert.Equal(t, []db.ProductRef{
		{ProductID: "s24", Name: "Galaxy S24", Score: 0.9, Tier: catalog.TierSemantic},
		{ProductID: "ip15", Name: "iPhone 15 128GB", Score: 0.7, Tier: catalog.TierSemantic},
	}, refs)

	empty, err := productRefs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
