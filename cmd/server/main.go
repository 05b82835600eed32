package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"joblink/api/internal/config"
	"joblink/api/internal/facets"
	"joblink/api/internal/handlers"
	"joblink/api/internal/llm/gemini"
	"joblink/api/internal/matcher"
	"joblink/api/internal/middleware"
	mongorepo "joblink/api/internal/repositories/mongo"
	"joblink/api/internal/routers"
	"joblink/api/internal/sandbox"
	"joblink/api/internal/utils"
)

func main() {
	utils.InitLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	client, err := mongorepo.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal("failed to connect to mongo", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	userRepo, err := mongorepo.NewUserRepo(client)
	if err != nil {
		logger.Fatal("failed to init user repo", zap.Error(err))
	}
	jobRepo, err := mongorepo.NewJobRepo(client)
	if err != nil {
		logger.Fatal("failed to init job repo", zap.Error(err))
	}
	applicationRepo, err := mongorepo.NewApplicationRepo(client)
	if err != nil {
		logger.Fatal("failed to init application repo", zap.Error(err))
	}
	assessmentRepo, err := mongorepo.NewAssessmentRepo(client)
	if err != nil {
		logger.Fatal("failed to init assessment repo", zap.Error(err))
	}
	shortlistRepo, err := mongorepo.NewShortlistRepo(client)
	if err != nil {
		logger.Fatal("failed to init shortlist repo", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	facetCache := facets.NewCache(jobRepo, rdb, logger)
	if err := facetCache.Start(); err != nil {
		logger.Fatal("failed to start facet cache", zap.Error(err))
	}
	defer facetCache.Stop()

	runner := sandbox.NewClient(cfg.SandboxBaseURL, cfg.SandboxAPIKey)
	scorer := matcher.NewScorer(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, rdb)

	provider, err := gemini.NewClient(cfg.CompletionAPIKey, cfg.CompletionModel)
	if err != nil {
		logger.Fatal("failed to init completion client", zap.Error(err))
	}

	gate := middleware.NewGate(userRepo, cfg.AuthSecret)

	h := &routers.Handlers{
		Health:       handlers.NewHealthHandler(),
		Users:        handlers.NewUserHandler(userRepo),
		Jobs:         handlers.NewJobHandler(jobRepo, userRepo, assessmentRepo, facetCache),
		Applications: handlers.NewApplicationHandler(applicationRepo, jobRepo, userRepo),
		Assessments:  handlers.NewAssessmentHandler(assessmentRepo, applicationRepo, jobRepo, userRepo, runner),
		Shortlists:   handlers.NewShortlistHandler(shortlistRepo, jobRepo, userRepo),
		Matcher:      handlers.NewMatcherHandler(userRepo, jobRepo, applicationRepo, scorer),
		Resume:       handlers.NewResumeHandler(provider),
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer, chimw.Timeout(60*time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	router.Use(middleware.Metrics)
	router.Handle("/metrics", middleware.MetricsHandler())

	routers.Register(router, gate, h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("joblink api starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("joblink api shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("joblink api exited")
}
