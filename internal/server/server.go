package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"traffic-chatbot/internal/db"
	"traffic-chatbot/internal/handlers"
	"traffic-chatbot/internal/repositories"
	"traffic-chatbot/internal/routes"
	"traffic-chatbot/internal/services"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID, X-Guest-ID")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewServer wires repositories, services, and handlers into an HTTP
// server ready to listen.
func NewServer() *http.Server {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	knowledge, err := services.LoadKnowledge(os.Getenv("KNOWLEDGE_FILE"))
	if err != nil {
		logger.Fatalf("❌ Failed to load knowledge base: %v", err)
	}
	logger.Println("✅ Knowledge base loaded")

	docRepo, convRepo, msgRepo := initializeRepositories(logger)
	if docRepo == nil {
		logger.Fatal("❌ Redis is required - aborting startup")
	}

	// Classification and retrieval pipeline
	analyzer := services.NewLegalAnalyzer(knowledge)
	detector := services.NewTrafficDetector(knowledge, analyzer)
	scorer := services.NewRAGScorer(knowledge, analyzer)
	chunker := services.NewChunker(services.DefaultChunkSize, services.DefaultChunkOverlap)
	keywordService := services.NewKeywordService()

	documentService := services.NewDocumentService(docRepo, keywordService, logger)
	cache := services.NewDocumentCache(docRepo, chunker, logger)

	// Rebuild the chunk cache whenever the corpus changes.
	documentService.OnChange(func() {
		if err := cache.Refresh(context.Background()); err != nil {
			logger.Printf("Cache refresh after document change failed: %v", err)
		}
	})

	llm := services.NewGeminiClient(os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	chatService := services.NewChatbotService(convRepo, msgRepo, llm, detector, analyzer, scorer, cache, logger)
	chatService.StartGuestSweeper(context.Background())

	// Warm the cache; an empty corpus is fine at startup.
	if err := cache.Refresh(context.Background()); err != nil {
		logger.Printf("⚠️  Initial cache refresh failed: %v", err)
	}

	logger.Println("✅ Chatbot services initialized successfully")

	h := &routes.Handlers{
		Health:   handlers.HealthCheckHandler,
		Home:     handlers.HomeHandler,
		Chat:     handlers.NewChatHandler(chatService, logger),
		Document: handlers.NewDocumentHandler(documentService, logger),
		Admin:    handlers.NewAdminHandler(cache, logger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Add Swagger endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:"+port+"/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	return &http.Server{
		Addr:    ":" + port,
		Handler: corsMiddleware(router),
	}
}

// initializeRepositories creates the Redis-backed repositories.
func initializeRepositories(logger *log.Logger) (repositories.DocumentRepository, repositories.ConversationRepository, repositories.MessageRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config := getRedisConfig()
	logger.Printf("Connecting to Redis: %s:%d (DB: %d)", config.Host, config.Port, config.DB)

	redisClient := db.NewRedisClient(config)
	if err := redisClient.Ping(ctx); err != nil {
		logger.Printf("❌ Redis connection failed: %v", err)
		logger.Println("   Hint: Ensure Redis is running (docker run -d -p 6379:6379 redis:7-alpine)")
		return nil, nil, nil
	}
	logger.Println("✅ Redis connected successfully")

	client := redisClient.GetClient()
	return repositories.NewRedisDocumentRepository(client),
		repositories.NewRedisConversationRepository(client),
		repositories.NewRedisMessageRepository(client)
}

// getRedisConfig reads Redis configuration from environment variables.
func getRedisConfig() db.RedisConfig {
	config := db.DefaultRedisConfig()

	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.Host = host
	}
	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if dbNum, err := strconv.Atoi(dbStr); err == nil {
			config.DB = dbNum
		}
	}

	return config
}
