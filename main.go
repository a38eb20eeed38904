package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-api-boot/server"
	"github.com/SaiNageswarS/shop-assistant/agent"
	"github.com/SaiNageswarS/shop-assistant/appconfig"
	"github.com/SaiNageswarS/shop-assistant/catalog"
	"github.com/SaiNageswarS/shop-assistant/complaint"
	"github.com/SaiNageswarS/shop-assistant/db"
	"github.com/SaiNageswarS/shop-assistant/llm"
	"github.com/SaiNageswarS/shop-assistant/memory"
	"github.com/SaiNageswarS/shop-assistant/pipeline"
	"github.com/SaiNageswarS/shop-assistant/transport"
	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type stores struct {
	conversations memory.ConversationStore
	complaints    complaint.Store
	catalog       catalog.Catalog
	mongo         odm.MongoClient
}

func main() {
	dotenv.LoadEnv()

	// load config file
	ccfgg := &appconfig.AppConfig{}
	err := config.LoadConfig("config.ini", ccfgg)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	ccfgg.ApplyDefaults()

	ctx := getCancellableContext()

	ollamaClient, err := api.ClientFromEnvironment()
	if err != nil {
		logger.Fatal("Failed to create Ollama client", zap.Error(err))
	}
	embedder := llm.NewOllamaEmbedder(ollamaClient, ccfgg.EmbeddingModel)
	completion := provideLLM(ccfgg, ollamaClient)

	st := provideStores(ctx, ccfgg, embedder)

	// The boot server exposes the default registry at /metrics.
	reg := prometheus.DefaultRegisterer

	p, err := pipeline.NewBuilder().
		WithConversationStore(st.conversations).
		WithClassifier(agent.NewIntentClassifier(completion, ccfgg.CompletionTimeout())).
		WithRetriever(agent.NewProductRetriever(st.catalog, embedder, ccfgg.EmbeddingTimeout())).
		WithGenerator(agent.NewResponseGenerator(completion, ccfgg.CompletionTimeout(), ccfgg.ShopName, ccfgg.AssistantName)).
		WithComplaintHandler(agent.NewComplaintAgent(completion, st.complaints, ccfgg.CompletionTimeout(), ccfgg.ShopName)).
		WithRegisterer(reg).
		WithHistoryWindow(ccfgg.HistoryWindow).
		WithRetrievalLimit(ccfgg.RetrievalLimit).
		WithMaxMessageLength(ccfgg.MaxMessageLength).
		WithPersistTimeout(ccfgg.PersistTimeout()).
		WithProduction(ccfgg.IsProduction()).
		Build()
	if err != nil {
		logger.Fatal("Failed to build pipeline", zap.Error(err))
	}

	wsServer := transport.NewServer(ctx, transport.Config{
		PingInterval:   ccfgg.WSPingInterval(),
		ReadTimeout:    ccfgg.WSReadTimeout(),
		WriteTimeout:   ccfgg.WSWriteTimeout(),
		MaxMessageSize: ccfgg.WSMaxMessageSize,
	}, transport.NewHub(), p)
	e := transport.NewHTTPServer(wsServer, prometheus.DefaultGatherer)

	// /health and /metrics are served by the boot server itself.
	boot, err := server.New().
		GRPCPort(ccfgg.GRPCPort).
		HTTPPort(ccfgg.HTTPPort).
		Handle(transport.WebSocketPath, e.ServeHTTP).
		Handle(transport.WebSocketHealthPath, e.ServeHTTP).
		Build()
	if err != nil {
		logger.Fatal("Dependency Injection Failed", zap.Error(err))
	}

	logger.Info("Starting shop assistant",
		zap.String("addr", ccfgg.HTTPPort),
		zap.String("env", ccfgg.AppEnv),
		zap.String("store", ccfgg.StoreBackend),
		zap.String("llm", completion.GetModel()))

	// Serve blocks until ctx is cancelled, then shuts the listeners down.
	if err := boot.Serve(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server stopped", zap.Error(err))
	}
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := p.Wait(shutdownCtx); err != nil {
		logger.Error("Pending conversation writes did not finish", zap.Error(err))
	}
	if st.mongo != nil {
		if err := st.mongo.Disconnect(shutdownCtx); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}
}

func provideLLM(ccfgg *appconfig.AppConfig, ollamaClient *api.Client) llm.LLMClient {
	switch ccfgg.LLMProvider {
	case "anthropic":
		return llm.NewAnthropicClient(modelOr(ccfgg.LLMModel, "claude-3-5-haiku-latest"))
	case "groq":
		return llm.NewGroqClient(modelOr(ccfgg.LLMModel, "llama-3.1-8b-instant"))
	case "ollama":
		return llm.NewOllamaClient(ollamaClient, modelOr(ccfgg.LLMModel, "llama3.1:8b"))
	default:
		logger.Fatal("Unknown llm_provider", zap.String("provider", ccfgg.LLMProvider))
		return nil
	}
}

func provideStores(ctx context.Context, ccfgg *appconfig.AppConfig, embedder llm.Embedder) stores {
	switch ccfgg.StoreBackend {
	case appconfig.BackendMemory:
		var products []db.ProductModel
		if ccfgg.ProductSeed != "" {
			seed, err := catalog.LoadSeedFile(ccfgg.ProductSeed)
			if err != nil {
				logger.Fatal("Failed to load product seed", zap.Error(err))
			}
			products = seed
		}

		c := catalog.NewInMemoryCatalog(products...)
		embedded := c.EmbedMissing(ctx, embedder)
		logger.Info("Loaded in-memory catalog", zap.Int("products", len(products)), zap.Int("embedded", embedded))

		return stores{
			conversations: memory.NewInMemoryStore(),
			complaints:    complaint.NewInMemoryStore(),
			catalog:       c,
		}

	case appconfig.BackendMongo:
		// Fatal when MONGO_URI is unset or the ping fails.
		mongoClient := odm.ProvideMongoClient()
		if err := db.InitShopDB(ctx, mongoClient, ccfgg.Tenant); err != nil {
			logger.Fatal("Failed to initialize indexes", zap.Error(err))
		}

		return stores{
			conversations: memory.ProvideConversationManager(mongoClient, ccfgg.Tenant),
			complaints:    complaint.ProvideMongoStore(mongoClient, ccfgg.Tenant),
			catalog:       catalog.ProvideMongoCatalog(mongoClient, ccfgg.Tenant),
			mongo:         mongoClient,
		}

	default:
		logger.Fatal("Unknown store_backend", zap.String("backend", ccfgg.StoreBackend))
		return stores{}
	}
}

func modelOr(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}

func getCancellableContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		cancel()
	}()

	return ctx
}
