package pipeline

import (
	"errors"
	"time"

	"github.com/SaiNageswarS/shop-assistant/agent"
	"github.com/SaiNageswarS/shop-assistant/memory"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultHistoryWindow  = 6
	DefaultPersistTimeout = 10 * time.Second
)

type Builder struct {
	config     Config
	store      memory.ConversationStore
	classifier Classifier
	retriever  Retriever
	generator  Generator
	complaints ComplaintHandler
	registerer prometheus.Registerer
	now        func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			HistoryWindow:    DefaultHistoryWindow,
			RetrievalLimit:   agent.DefaultRetrievalLimit,
			MaxMessageLength: DefaultMaxMessageLength,
			PersistTimeout:   DefaultPersistTimeout,
		},
		now: time.Now,
	}
}

func (b *Builder) WithConversationStore(store memory.ConversationStore) *Builder {
	b.store = store
	return b
}

func (b *Builder) WithClassifier(classifier Classifier) *Builder {
	b.classifier = classifier
	return b
}

func (b *Builder) WithRetriever(retriever Retriever) *Builder {
	b.retriever = retriever
	return b
}

func (b *Builder) WithGenerator(generator Generator) *Builder {
	b.generator = generator
	return b
}

func (b *Builder) WithComplaintHandler(complaints ComplaintHandler) *Builder {
	b.complaints = complaints
	return b
}

// WithRegisterer sets where pipeline metrics are registered. Defaults to a private registry.
func (b *Builder) WithRegisterer(reg prometheus.Registerer) *Builder {
	b.registerer = reg
	return b
}

func (b *Builder) WithHistoryWindow(n int) *Builder {
	b.config.HistoryWindow = n
	return b
}

func (b *Builder) WithRetrievalLimit(n int) *Builder {
	b.config.RetrievalLimit = n
	return b
}

func (b *Builder) WithMaxMessageLength(n int) *Builder {
	b.config.MaxMessageLength = n
	return b
}

func (b *Builder) WithPersistTimeout(timeout time.Duration) *Builder {
	b.config.PersistTimeout = timeout
	return b
}

func (b *Builder) WithProduction(production bool) *Builder {
	b.config.Production = production
	return b
}

func (b *Builder) Build() (*Pipeline, error) {
	switch {
	case b.store == nil:
		return nil, errors.New("pipeline: conversation store is required")
	case b.classifier == nil:
		return nil, errors.New("pipeline: classifier is required")
	case b.retriever == nil:
		return nil, errors.New("pipeline: retriever is required")
	case b.generator == nil:
		return nil, errors.New("pipeline: generator is required")
	case b.complaints == nil:
		return nil, errors.New("pipeline: complaint handler is required")
	}

	if b.config.HistoryWindow <= 0 {
		b.config.HistoryWindow = DefaultHistoryWindow
	}
	if b.config.RetrievalLimit <= 0 {
		b.config.RetrievalLimit = agent.DefaultRetrievalLimit
	}
	if b.config.MaxMessageLength <= 0 {
		b.config.MaxMessageLength = DefaultMaxMessageLength
	}

	reg := b.registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Pipeline{
		config:     b.config,
		store:      b.store,
		classifier: b.classifier,
		retriever:  b.retriever,
		generator:  b.generator,
		complaints: b.complaints,
		metrics:    NewMetrics(reg),
		now:        b.now,
		pending:    map[string]chan struct{}{},
	}, nil
}
