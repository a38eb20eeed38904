package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/go-collection-boot/linq"
	"github.com/SaiNageswarS/shop-assistant/agent"
	"github.com/SaiNageswarS/shop-assistant/catalog"
	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/SaiNageswarS/shop-assistant/llm"
	"github.com/SaiNageswarS/shop-assistant/memory"
	"go.uber.org/zap"
)

// SmallTalkReply is used when the classifier labels small talk without supplying a reply.
const SmallTalkReply = "Chào bạn! Mình có thể giúp gì cho bạn hôm nay?"

type Classifier interface {
	Classify(ctx context.Context, history []db.TurnModel, message string) agent.Classification
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) agent.Retrieval
}

type Generator interface {
	Generate(ctx context.Context, history []db.TurnModel, message string, products []catalog.Product) (string, bool)
	Model() string
}

type ComplaintHandler interface {
	HandleTurn(ctx context.Context, sessionID string, history []db.TurnModel, message string) agent.ComplaintResult
}

type Config struct {
	HistoryWindow    int
	RetrievalLimit   int
	MaxMessageLength int
	PersistTimeout   time.Duration
	// Production hides internal error text from clients.
	Production bool
}

// TurnResult describes a successfully answered turn.
type TurnResult struct {
	SessionID     string
	Intent        agent.Intent
	Reply         string
	Metadata      *ResponseMetadata
	AssistantTurn db.TurnModel
}

// Pipeline runs one inbound turn through classification, the intent branch and
// persistence, reporting progress to the client as it goes.
type Pipeline struct {
	config     Config
	store      memory.ConversationStore
	classifier Classifier
	retriever  Retriever
	generator  Generator
	complaints ComplaintHandler
	metrics    *Metrics
	now        func() time.Time

	wg      sync.WaitGroup
	mu      sync.Mutex
	pending map[string]chan struct{} // session id -> in-flight assistant turn write
}

func (p *Pipeline) HandleTurn(ctx context.Context, reporter Reporter, req *TurnRequest) (result *TurnResult, err error) {
	if reporter == nil {
		reporter = &NoOpReporter{}
	}

	start := p.now()
	sessionID, message, verr := validateTurn(req, p.config.MaxMessageLength)
	if verr != nil {
		p.metrics.ValidationErrors.WithLabelValues(verr.Type).Inc()
		p.send(reporter, NewErrorEvent(verr.Type, verr.Message))
		return nil, verr
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing turn: %v", r)
			result = nil
			logger.Error("Recovered from panic in pipeline", zap.String("sessionId", sessionID), zap.Any("panic", r))
			p.send(reporter, NewErrorEvent(ErrTypeProcessing, p.clientMessage(err)))
			p.send(reporter, NewProcessingCompleted(sessionID, p.now().Sub(start)))
		}
	}()

	p.send(reporter, NewProcessingStarted(sessionID))

	history := p.appendUserTurn(ctx, sessionID, message, req)

	classification := p.classifier.Classify(ctx, history, message)
	if classification.Fallback {
		p.metrics.Fallbacks.WithLabelValues("intent").Inc()
	}
	p.metrics.TurnsProcessed.WithLabelValues(string(classification.Intent)).Inc()

	reply, metadata, turnMeta := p.runBranch(ctx, sessionID, history, message, classification)

	elapsed := p.now().Sub(start)
	p.metrics.TurnDuration.Observe(elapsed.Seconds())

	if strings.TrimSpace(reply) == "" {
		logger.Error("Empty reply", zap.String("sessionId", sessionID), zap.String("intent", string(classification.Intent)))
		p.send(reporter, NewErrorEvent(ErrTypeGeneration, p.clientMessage(ErrEmptyReply)))
		p.send(reporter, NewProcessingCompleted(sessionID, elapsed))
		return nil, ErrEmptyReply
	}

	metadata.ProcessingTimeMs = elapsed.Milliseconds()
	turnMeta.ProcessingTimeMs = elapsed.Milliseconds()

	p.send(reporter, NewAIResponse(sessionID, reply, metadata))
	p.send(reporter, NewProcessingCompleted(sessionID, elapsed))

	assistantTurn := db.TurnModel{
		Role:      db.RoleAssistant,
		Content:   reply,
		Timestamp: p.now().UnixMilli(),
		Metadata:  turnMeta,
	}
	p.persistAssistantTurn(ctx, sessionID, assistantTurn)

	return &TurnResult{
		SessionID:     sessionID,
		Intent:        classification.Intent,
		Reply:         reply,
		Metadata:      metadata,
		AssistantTurn: assistantTurn,
	}, nil
}

func (p *Pipeline) runBranch(ctx context.Context, sessionID string, history []db.TurnModel, message string, classification agent.Classification) (string, *ResponseMetadata, *db.TurnMetadata) {
	model := p.generator.Model()
	metadata := &ResponseMetadata{ResponseType: string(classification.Intent), Model: model}
	turnMeta := &db.TurnMetadata{
		Model:        model,
		ResponseType: string(classification.Intent),
		SkipRAG:      classification.Intent != agent.IntentProductQuery,
	}

	switch classification.Intent {
	case agent.IntentSmallTalk:
		if classification.DirectResponse != nil {
			return *classification.DirectResponse, metadata, turnMeta
		}
		p.metrics.Fallbacks.WithLabelValues("small_talk").Inc()
		metadata.Fallback = true
		return SmallTalkReply, metadata, turnMeta

	case agent.IntentComplaint:
		res := p.complaints.HandleTurn(ctx, sessionID, history, message)
		isComplete := res.IsComplete
		metadata.IsComplete = &isComplete
		metadata.Fallback = res.Fallback
		if res.Fallback {
			p.metrics.Fallbacks.WithLabelValues("complaint").Inc()
		}
		if res.Complaint != nil {
			metadata.ComplaintID = res.Complaint.ComplaintID
			metadata.ComplaintStatus = string(res.Complaint.Status)
			turnMeta.ComplaintID = res.Complaint.ComplaintID
		}
		return res.ResponseText, metadata, turnMeta

	default:
		retrieval := p.retriever.Retrieve(ctx, classification.ClarifiedQuery, p.config.RetrievalLimit)
		tier := retrieval.Tier
		if tier == "" {
			tier = "none"
		}
		p.metrics.RetrievalTier.WithLabelValues(tier).Inc()
		for _, failed := range retrieval.FailedTiers {
			p.metrics.RetrievalTierErrors.WithLabelValues(failed).Inc()
		}

		refs, err := productRefs(ctx, retrieval.Products)
		if err != nil {
			logger.Error("Failed to project retrieved products", zap.String("sessionId", sessionID), zap.Error(err))
		}
		metadata.RetrievalTier = retrieval.Tier
		metadata.RetrievedProducts = refs
		turnMeta.RetrievedProducts = refs
		turnMeta.ClarifiedQuery = classification.ClarifiedQuery

		reply, fallback := p.generator.Generate(ctx, history, message, retrieval.Plain())
		if fallback {
			p.metrics.Fallbacks.WithLabelValues("generation").Inc()
			metadata.Fallback = true
		}
		return reply, metadata, turnMeta
	}
}

// appendUserTurn logs the user turn and returns the turns that preceded it, bounded by the
// history window. A failed write is logged and the turn continues with whatever history is readable.
func (p *Pipeline) appendUserTurn(ctx context.Context, sessionID, message string, req *TurnRequest) []db.TurnModel {
	p.awaitPending(ctx, sessionID)

	turn := db.TurnModel{Role: db.RoleUser, Content: message, Timestamp: p.now().UnixMilli()}
	var info *db.ClientInfo
	if req.IPAddress != "" || req.UserAgent != "" {
		turn.Metadata = &db.TurnMetadata{IPAddress: req.IPAddress, UserAgent: req.UserAgent}
		info = &db.ClientInfo{IPAddress: req.IPAddress, UserAgent: req.UserAgent}
	}

	conversation, err := p.store.AppendTurn(ctx, sessionID, turn, info)
	if err != nil {
		p.metrics.PersistenceFailures.Inc()
		logger.Error("Failed to append user turn", zap.String("sessionId", sessionID), zap.Error(err))

		history, err := p.store.RecentTurns(ctx, sessionID, p.config.HistoryWindow)
		if err != nil {
			logger.Error("Failed to load history", zap.String("sessionId", sessionID), zap.Error(err))
			return []db.TurnModel{}
		}
		return history
	}

	window := conversation.RecentTurns(p.config.HistoryWindow + 1)
	if len(window) == 0 {
		return window
	}
	return window[:len(window)-1]
}

// persistAssistantTurn writes the reply in the background. Writes for one session are
// chained so the log keeps receipt order; failures are logged only.
func (p *Pipeline) persistAssistantTurn(ctx context.Context, sessionID string, turn db.TurnModel) {
	done := make(chan struct{})

	p.mu.Lock()
	prev := p.pending[sessionID]
	p.pending[sessionID] = done
	p.mu.Unlock()

	persistCtx := context.WithoutCancel(ctx)

	p.wg.Add(1)
	task := async.Go(func() (*db.ConversationModel, error) {
		if prev != nil {
			<-prev
		}

		writeCtx, cancel := llm.WithTimeout(persistCtx, p.config.PersistTimeout)
		defer cancel()
		return p.store.AppendTurn(writeCtx, sessionID, turn, nil)
	})

	go func() {
		defer p.wg.Done()
		defer p.release(sessionID, done)

		if _, err := async.Await(task); err != nil {
			p.metrics.PersistenceFailures.Inc()
			logger.Error("Failed to persist assistant turn", zap.String("sessionId", sessionID), zap.Error(err))
		}
	}()
}

func (p *Pipeline) release(sessionID string, done chan struct{}) {
	close(done)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending[sessionID] == done {
		delete(p.pending, sessionID)
	}
}

func (p *Pipeline) awaitPending(ctx context.Context, sessionID string) {
	p.mu.Lock()
	ch := p.pending[sessionID]
	p.mu.Unlock()

	if ch == nil {
		return
	}
	select {
	case <-ch:
	case <-ctx.Done():
	}
}

// Wait blocks until background writes finish or ctx ends.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) send(reporter Reporter, event *Event) {
	if err := reporter.Send(event); err != nil {
		logger.Error("Failed to send event", zap.String("event", event.Name), zap.Error(err))
	}
}

func (p *Pipeline) clientMessage(err error) string {
	if p.config.Production {
		return productionErrorMessage
	}
	return err.Error()
}

// productRefs records the retrieved products on the assistant turn, in rank order.
func productRefs(ctx context.Context, products []catalog.ScoredProduct) ([]db.ProductRef, error) {
	return linq.Pipe2(
		linq.FromSlice(ctx, products),
		linq.Select(func(sp catalog.ScoredProduct) db.ProductRef {
			return db.ProductRef{ProductID: sp.Product.ID, Name: sp.Product.Name, Score: sp.Score, Tier: sp.Tier}
		}),
		linq.ToSlice[db.ProductRef](),
	)
}
