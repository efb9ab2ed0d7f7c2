package docqa

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/internal/docqa/handler"
	"github.com/kart-io/docqa/internal/docqa/router"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/pkg/app"
	"github.com/kart-io/docqa/pkg/llm"
	"github.com/kart-io/docqa/pkg/middleware"
	"github.com/kart-io/docqa/pkg/server"

	// Register the chat provider.
	_ "github.com/kart-io/docqa/pkg/llm/openai"
)

const (
	appName        = "docqa"
	appDescription = `DocQA Service

A retrieval-augmented question answering service for PDF documents.

This server provides:
  - PDF upload and text extraction
  - Keyword-based passage retrieval
  - LLM-backed answer generation with per-session conversation history
  - Two-tier query result caching (in-process LFU, optional Redis)`
)

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run runs the service with the given options.
func Run(opts *Options) error {
	// 1. Logger
	opts.Log.AddInitialField("service.name", appName)
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.S().Infow("starting docqa service", "version", app.Get().GitVersion)

	// 2. Redis (optional second cache tier)
	redisClient := newRedisClient(opts)

	// 3. Chat provider. Without an API key the generator serves
	// canned answers, so the service runs without any credentials.
	chatProvider := newChatProvider(opts)

	// 4. Upload registry
	uploads, err := store.NewUploadStore(opts.QA.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize upload store: %w", err)
	}

	// 5. Biz layer
	queryCache := biz.NewQueryCache(redisClient, &biz.QueryCacheConfig{
		Size:      opts.Cache.QueryCacheSize,
		TTL:       opts.Cache.TTL,
		KeyPrefix: opts.Cache.KeyPrefix,
	})
	generator := biz.NewGenerator(chatProvider, &biz.GeneratorConfig{
		PromptTemplate: opts.QA.PromptTemplate,
	})
	qaService := biz.NewQAService(uploads, queryCache, generator, &biz.ServiceConfig{
		IndexerConfig:   &biz.IndexerConfig{CacheSize: opts.Cache.PDFCacheSize},
		RetrieverConfig: &biz.RetrieverConfig{TopK: opts.QA.TopK},
	})
	zap.S().Infow("qa service initialized")

	// 6. HTTP layer
	qaHandler := handler.New(qaService, &handler.Config{
		MaxUploadBytes:      int64(opts.QA.MaxUploadMB) << 20,
		QueryTimeoutSeconds: int64(opts.QA.QueryTimeout),
	})

	httpServer := server.New(server.Config{
		Addr:            opts.HTTP.Addr,
		Mode:            opts.HTTP.Mode,
		ReadTimeout:     opts.HTTP.ReadTimeout,
		WriteTimeout:    opts.HTTP.WriteTimeout,
		MaxHeaderBytes:  opts.HTTP.MaxHeaderBytes,
		ShutdownTimeout: opts.ShutdownTimeout,
	})
	httpServer.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		middleware.CORS(),
	)
	router.Register(httpServer.Engine(), qaHandler)

	ctx := setupSignalContext()

	zap.S().Infow("docqa service is ready", "addr", opts.HTTP.Addr)
	err = httpServer.Run(ctx)

	if redisClient != nil {
		_ = redisClient.Close()
	}
	return err
}

// newRedisClient connects to Redis when the cache tier is enabled.
// An unreachable Redis downgrades to the in-process tier only.
func newRedisClient(opts *Options) *goredis.Client {
	if !opts.Cache.Redis.Enabled {
		return nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         opts.Cache.Redis.Addr(),
		Password:     opts.Cache.Redis.Password,
		DB:           opts.Cache.Redis.Database,
		MaxRetries:   opts.Cache.Redis.MaxRetries,
		PoolSize:     opts.Cache.Redis.PoolSize,
		MinIdleConns: opts.Cache.Redis.MinIdleConns,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		zap.S().Warnw("redis unreachable, query cache runs in-process only",
			"addr", opts.Cache.Redis.Addr(),
			"error", err,
		)
		_ = client.Close()
		return nil
	}

	zap.S().Infow("redis cache tier connected", "addr", opts.Cache.Redis.Addr())
	return client
}

// newChatProvider builds the chat provider when an API key is set.
func newChatProvider(opts *Options) llm.ChatProvider {
	if !opts.Chat.Enabled() {
		zap.S().Warnw("no chat api key configured, answers will use the fallback path")
		return nil
	}

	provider, err := llm.NewChatProvider(opts.Chat.Provider, opts.Chat.ToConfigMap())
	if err != nil {
		zap.S().Warnw("chat provider init failed, answers will use the fallback path",
			"provider", opts.Chat.Provider,
			"error", err,
		)
		return nil
	}

	zap.S().Infow("chat provider initialized",
		"provider", provider.Name(),
		"model", opts.Chat.Model,
	)
	return provider
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		zap.S().Infow("shutdown signal received")
		cancel()
	}()

	return ctx
}
