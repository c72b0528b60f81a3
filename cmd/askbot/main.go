package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dileep-u-k/askbot/internal/chat"
	"github.com/dileep-u-k/askbot/internal/conversation"
	"github.com/dileep-u-k/askbot/internal/llm"
	"github.com/dileep-u-k/askbot/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// main is the composition root: it loads configuration, builds every
// service from it and starts the server.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting askbot | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	// 1. LOAD CONFIGURATION
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Printf("✅ Configuration loaded (provider: %s, model: %s).", cfg.Provider, cfg.Model)

	// 2. INITIALIZE SERVICES
	ctx := context.Background()
	client, closeClient, err := initializeLLMClient(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ FATAL: %v", err)
	}
	defer closeClient()

	toolManager, err := initializeToolManager(cfg)
	if err != nil {
		log.Fatalf("❌ FATAL: %v", err)
	}

	store, closeStore, err := initializeStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ FATAL: %v", err)
	}
	defer closeStore()

	orchestrator := llm.NewOrchestrator(client, generationConfig(cfg), toolManager.GetDefinitions())

	chatService := chat.NewService(store, orchestrator, toolManager)
	chatHandler := NewChatHandler(chatService, cfg.CookieName, cfg.SessionTTL)
	log.Println("✅ All services initialized.")

	// 3. SETUP AND RUN THE WEB SERVER
	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := NewRouter(chatHandler)

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// initializeLLMClient builds the completion client for the configured
// provider. The returned func releases provider resources.
func initializeLLMClient(ctx context.Context, cfg *AppConfig) (llm.LLMClient, func(), error) {
	noop := func() {}
	switch cfg.Provider {
	case "openai", "mistral":
		baseURL := cfg.CompletionBaseURL
		if baseURL == "" {
			baseURL = llm.DefaultOpenAIBaseURL
			if cfg.Provider == "mistral" {
				baseURL = llm.DefaultMistralBaseURL
			}
		}
		client, err := llm.NewOpenAICompatibleClient(cfg.CompletionAPIKey, baseURL, nil)
		if err != nil {
			return nil, noop, wrapClientErr(cfg.Provider, err)
		}
		return client, noop, nil
	case "gemini":
		client, err := llm.NewGeminiClient(ctx, cfg.CompletionAPIKey)
		if err != nil {
			return nil, noop, wrapClientErr(cfg.Provider, err)
		}
		return client, func() {
			if err := client.Close(); err != nil {
				log.Printf("WARNING: Failed to close Gemini client: %v", err)
			}
		}, nil
	case "anthropic":
		client, err := llm.NewAnthropicClient(cfg.CompletionAPIKey)
		if err != nil {
			return nil, noop, wrapClientErr(cfg.Provider, err)
		}
		return client, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

// generationConfig pins sampling to temperature 0 and DefaultMaxTokens; only
// the model is configurable.
func generationConfig(cfg *AppConfig) llm.GenerationConfig {
	temperature := float32(0)
	return llm.GenerationConfig{
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   llm.DefaultMaxTokens,
	}
}

func wrapClientErr(provider string, err error) error {
	return fmt.Errorf("failed to create %s client: %w", provider, err)
}

// initializeToolManager registers the tools advertised to the model.
func initializeToolManager(cfg *AppConfig) (*tools.ToolManager, error) {
	manager := tools.NewToolManager()

	weatherTool, err := tools.NewWeatherTool(cfg.WeatherAPIKey, cfg.WeatherBaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather tool: %w", err)
	}
	manager.Register(weatherTool)

	log.Printf("✅ Tool Manager initialized with %d tools.", manager.ToolCount())
	return manager, nil
}

// initializeStore uses Redis when REDIS_ADDR is set and process memory otherwise.
func initializeStore(ctx context.Context, cfg *AppConfig) (conversation.Store, func(), error) {
	if cfg.RedisAddr == "" {
		log.Println("✅ Using in-memory conversation store.")
		return conversation.NewMemoryStore(conversation.DefaultSystemPrompt), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		rdb.Close()
		return nil, func() {}, fmt.Errorf("could not connect to Redis: %w", err)
	}
	log.Printf("✅ Using Redis conversation store at %s (TTL %s).", cfg.RedisAddr, cfg.SessionTTL)
	return conversation.NewRedisStore(rdb, conversation.DefaultSystemPrompt, cfg.SessionTTL), func() {
		if err := rdb.Close(); err != nil {
			log.Printf("WARNING: Failed to close Redis client: %v", err)
		}
	}, nil
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 askbot is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown failed: %v", err)
		return
	}

	log.Println("👋 Server exited gracefully.")
}
