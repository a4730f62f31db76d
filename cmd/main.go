package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vaultrag-api/config"
	"github.com/vaultrag-api/handlers"
	"github.com/vaultrag-api/models"
	"github.com/vaultrag-api/providers"
	"github.com/vaultrag-api/services"
	"github.com/vaultrag-api/services/impl"
	"github.com/vaultrag-api/services/memory"
	"github.com/vaultrag-api/vectorstore"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection
	db, err := initDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate relational schema
	if err := db.AutoMigrate(
		&models.Vault{},
		&models.Document{},
		&models.Session{},
		&models.Message{},
		&models.Agent{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Embedding store schema (pgvector extension, table, indexes)
	vectors := vectorstore.New(db, cfg.Provider.EmbeddingDimension)
	if err := vectors.EnsureSchema(context.Background()); err != nil {
		log.Fatal("Failed to ensure vector schema:", err)
	}

	// Provider client for embeddings and chat completions
	client := providers.NewClient(providers.ClientConfig{
		BaseURL:            cfg.Provider.BaseURL,
		APIKey:             cfg.Provider.APIKey,
		EmbeddingModel:     cfg.Provider.EmbeddingModel,
		EmbeddingDimension: cfg.Provider.EmbeddingDimension,
		ChatModel:          cfg.Provider.ChatModel,
		Timeout:            time.Duration(cfg.Provider.Timeout) * time.Second,
		MaxAttempts:        cfg.Provider.MaxRetries,
		MaxConcurrency:     int64(cfg.Provider.MaxConcurrency),
		EmbedBatchSize:     cfg.Provider.EmbedBatchSize,
	})

	// Embedding cache: Redis when configured and reachable, in-process
	// otherwise
	embeddingCache := initEmbeddingCache(cfg)

	// Services
	vaultService := impl.NewVaultService(db, vectors)
	documentService := impl.NewDocumentService(db, vectors, client, vaultService, cfg.RAG.ChunkWindowChars, cfg.RAG.ChunkOverlapChars)
	sessionService := impl.NewSessionService(db)
	historyStore := memory.NewHistoryStore(db)
	agentService := impl.NewAgentService(db, vaultService)
	chatService := impl.NewChatService(
		sessionService,
		historyStore,
		agentService,
		vectors,
		client,
		client,
		embeddingCache,
		memory.NewSessionLocks(),
		impl.ChatOptions{
			EmbeddingModel:     cfg.Provider.EmbeddingModel,
			MaxHistory:         cfg.RAG.MaxHistoryMessages,
			TopKDefault:        cfg.RAG.TopKDefault,
			DefaultTemperature: cfg.RAG.DefaultTemperature,
			MaxContextChars:    cfg.RAG.MaxContextChars,
		},
	)

	// Handlers
	vaultHandlers := handlers.NewVaultHandlers(vaultService)
	documentHandlers := handlers.NewDocumentHandlers(documentService)
	agentHandlers := handlers.NewAgentHandlers(agentService)
	chatHandlers := handlers.NewChatHandlers(chatService)

	router := setupRouter(vaultHandlers, documentHandlers, agentHandlers, chatHandlers, cfg)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("RAG server starting on %s", cfg.GetServerAddress())
		log.Printf("Provider: %s (embedding=%s dim=%d, chat=%s)",
			cfg.Provider.BaseURL, cfg.Provider.EmbeddingModel, cfg.Provider.EmbeddingDimension, cfg.Provider.ChatModel)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MinIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.MaxLifetime) * time.Second)

	return db, nil
}

func initEmbeddingCache(cfg *config.Config) services.EmbeddingCache {
	if !cfg.Redis.EnableEmbeddingCache {
		return nil
	}
	if cfg.Redis.Host == "" {
		log.Println("Embedding cache: using in-process cache (no Redis configured)")
		return impl.NewMemoryEmbeddingCache(0)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("Warning: Redis connection failed, falling back to in-process embedding cache: %v", err)
		return impl.NewMemoryEmbeddingCache(0)
	}
	log.Println("Embedding cache: Redis connection established")
	return impl.NewEmbeddingCacheWithRedis(client)
}

func setupRouter(
	vaultHandlers *handlers.VaultHandlers,
	documentHandlers *handlers.DocumentHandlers,
	agentHandlers *handlers.AgentHandlers,
	chatHandlers *handlers.ChatHandlers,
	cfg *config.Config,
) *gin.Engine {
	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) == 1 && cfg.Server.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(requestLimits(cfg))

	version := cfg.Version
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": version,
		})
	})

	router.POST("/vaults", vaultHandlers.CreateVault)
	router.GET("/vaults", vaultHandlers.ListVaults)
	router.GET("/vaults/:vault_id", vaultHandlers.GetVault)
	router.DELETE("/vaults/:vault_id", vaultHandlers.DeleteVault)

	router.POST("/ingest", documentHandlers.IngestDocument)
	router.GET("/documents", documentHandlers.ListDocuments)
	router.GET("/documents/:document_id", documentHandlers.GetDocument)
	router.DELETE("/documents/:document_id", documentHandlers.DeleteDocument)

	router.POST("/agents", agentHandlers.CreateAgent)
	router.GET("/agents", agentHandlers.ListAgents)
	router.GET("/agents/:agent_id", agentHandlers.GetAgent)
	router.DELETE("/agents/:agent_id", agentHandlers.DeleteAgent)

	router.POST("/chat", chatHandlers.Chat)

	return router
}

// requestLimits caps request body size and bounds every request with the
// configured deadline.
func requestLimits(cfg *config.Config) gin.HandlerFunc {
	timeout := time.Duration(cfg.Server.RequestTimeout) * time.Second
	maxBytes := cfg.Server.MaxRequestBytes

	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
