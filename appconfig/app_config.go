package appconfig

import (
	"time"

	"github.com/SaiNageswarS/go-api-boot/config"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	AppEnv   string `env:"APP-ENV" ini:"app_env"`
	HTTPPort string `env:"HTTP-PORT" ini:"http_port"`
	GRPCPort string `env:"GRPC-PORT" ini:"grpc_port"`
	Tenant   string `env:"TENANT" ini:"tenant"`

	StoreBackend string `env:"STORE-BACKEND" ini:"store_backend"`
	ProductSeed  string `ini:"product_seed"`

	ShopName      string `ini:"shop_name"`
	AssistantName string `ini:"assistant_name"`

	LLMProvider    string `env:"LLM-PROVIDER" ini:"llm_provider"`
	LLMModel       string `env:"LLM-MODEL" ini:"llm_model"`
	EmbeddingModel string `ini:"embedding_model"`

	HistoryWindow    int `ini:"history_window"`
	RetrievalLimit   int `ini:"retrieval_limit"`
	MaxMessageLength int `ini:"max_message_length"`

	CompletionTimeoutMs int `ini:"completion_timeout_ms"`
	EmbeddingTimeoutMs  int `ini:"embedding_timeout_ms"`
	PersistTimeoutMs    int `ini:"persist_timeout_ms"`

	WSPingIntervalMs int   `ini:"ws_ping_interval_ms"`
	WSReadTimeoutMs  int   `ini:"ws_read_timeout_ms"`
	WSWriteTimeoutMs int   `ini:"ws_write_timeout_ms"`
	WSMaxMessageSize int64 `ini:"ws_max_message_size"`
}

// ApplyDefaults fills every unset key.
func (c *AppConfig) ApplyDefaults() {
	setString(&c.AppEnv, "development")
	setString(&c.HTTPPort, ":8080")
	setString(&c.GRPCPort, ":50051")
	setString(&c.Tenant, "shop")
	setString(&c.StoreBackend, BackendMongo)
	setString(&c.ShopName, "TechShop")
	setString(&c.AssistantName, "Mai")
	setString(&c.LLMProvider, "ollama")
	setString(&c.EmbeddingModel, "nomic-embed-text")

	setInt(&c.HistoryWindow, 6)
	setInt(&c.RetrievalLimit, 5)
	setInt(&c.MaxMessageLength, 1000)
	setInt(&c.CompletionTimeoutMs, 30000)
	setInt(&c.EmbeddingTimeoutMs, 10000)
	setInt(&c.PersistTimeoutMs, 10000)
	setInt(&c.WSPingIntervalMs, 25000)
	setInt(&c.WSReadTimeoutMs, 60000)
	setInt(&c.WSWriteTimeoutMs, 10000)
	if c.WSMaxMessageSize <= 0 {
		c.WSMaxMessageSize = 16 * 1024
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func (c *AppConfig) CompletionTimeout() time.Duration { return ms(c.CompletionTimeoutMs) }
func (c *AppConfig) EmbeddingTimeout() time.Duration  { return ms(c.EmbeddingTimeoutMs) }
func (c *AppConfig) PersistTimeout() time.Duration    { return ms(c.PersistTimeoutMs) }
func (c *AppConfig) WSPingInterval() time.Duration    { return ms(c.WSPingIntervalMs) }
func (c *AppConfig) WSReadTimeout() time.Duration     { return ms(c.WSReadTimeoutMs) }
func (c *AppConfig) WSWriteTimeout() time.Duration    { return ms(c.WSWriteTimeoutMs) }

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func setInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
