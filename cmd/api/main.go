package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/zeyidhocam/z-gate-crm-sub001/internal/cache"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/config"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/handler"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/integrations/email"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/integrations/tcmb"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/integrations/telegram"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/middleware"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/repository"
	"github.com/zeyidhocam/z-gate-crm-sub001/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	var riskCache cache.Cache
	if cfg.RedisAddr != "" {
		riskCache = cache.NewRedis(cfg.RedisAddr)
	} else {
		riskCache = cache.NewMemory()
	}
	bot := telegram.NewClient(cfg, logger)
	digest := email.NewSender(cfg, logger)
	tcmbClient := tcmb.NewClient(cfg, logger)
	svc := service.NewService(repo, riskCache, bot, digest, logger, cfg)
	h := handler.NewHandler(svc)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(logger))
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// TCMB daily rate endpoint
	r.HandleFunc("/fx-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := tcmbClient.GetRate("USD")
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"usd_try": rate})
	}).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/clients", h.CreateClient).Methods("POST")
	authRouter.HandleFunc("/clients", h.ListClients).Methods("GET")
	authRouter.HandleFunc("/clients/{id}", h.GetClient).Methods("GET")
	authRouter.HandleFunc("/clients/{id}/schedules", h.CreateSchedule).Methods("POST")
	authRouter.HandleFunc("/clients/{id}/payments", h.RecordPayment).Methods("POST")
	authRouter.HandleFunc("/clients/{id}/risk", h.ClientRisk).Methods("GET")
	authRouter.HandleFunc("/clients/{id}/plan", h.SuggestPlan).Methods("POST")
	authRouter.HandleFunc("/clients/{id}/draft", h.DraftMessage).Methods("POST")
	authRouter.HandleFunc("/analyze/risk", h.AnalyzeRisk).Methods("POST")
	authRouter.HandleFunc("/analyze/plan", h.AnalyzePlan).Methods("POST")
	authRouter.HandleFunc("/analyze/draft", h.AnalyzeDraft).Methods("POST")

	// Daily reminder job
	c := cron.New()
	if _, err := c.AddFunc("0 9 * * *", func() {
		if err := svc.RunDailyReminders(time.Now()); err != nil {
			logger.Errorf("Reminder run failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule reminder job: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Fatalf("Server failed: %v", err)
	case <-quit:
		logger.Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	logger.Info("Server exited")
}
