package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/finsight/advisor-service/internal/advisory"
	"github.com/finsight/advisor-service/internal/config"
	"github.com/finsight/advisor-service/internal/handler"
	"github.com/finsight/advisor-service/internal/integrations/rates"
	"github.com/finsight/advisor-service/internal/middleware"
	"github.com/finsight/advisor-service/internal/repository"
	"github.com/finsight/advisor-service/internal/service"
	"github.com/finsight/advisor-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// .env is optional, env vars win
	_ = godotenv.Load()

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

	// Initialize storage
	var store repository.Store
	switch cfg.StorageDriver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		store = repository.NewRepository(db)
	case "memory":
		logger.Warn("Using in-memory storage, data will not survive restarts")
		store = repository.NewMemoryStore()
	}

	// Initialize advisor: Gemini when configured, static fallback otherwise
	var advisor advisory.Advisor
	if cfg.GeminiAPIKey != "" {
		gemini, err := advisory.NewGeminiAdvisor(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AdvisoryTimeout, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize Gemini advisor: %v", err)
		}
		advisor = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, using fallback advisor")
		advisor = advisory.NewFallbackAdvisor()
	}

	ratesClient := rates.NewClient(cfg, logger)

	var mailer *email.Sender
	if cfg.SMTPEnabled() {
		mailer = email.NewSender(cfg, logger)
	}

	// Initialize layers
	svc := service.NewService(store, logger, cfg, advisor, ratesClient, mailer)
	h := handler.NewHandler(svc, logger)

	// Scheduled jobs: key rate cache refresh and nightly retrain
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		if err := ratesClient.Refresh(); err != nil {
			logger.Warnf("Key rate refresh failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule rates refresh: %v", err)
	}
	if cfg.TrainingDataPath != "" {
		if _, err := scheduler.AddFunc(cfg.RetrainSchedule, func() {
			if _, err := svc.TrainFromFile(); err != nil {
				logger.Errorf("Scheduled retrain failed: %v", err)
			}
		}); err != nil {
			logger.Fatalf("Failed to schedule retrain: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Warm the rate cache; advisory context works without it
	if err := ratesClient.Refresh(); err != nil {
		logger.Warnf("Initial key rate fetch failed: %v", err)
	}

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/key-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := ratesClient.GetKeyRate()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get key rate: %v", err), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"key_rate": rate})
	}).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/profile", h.SubmitProfile).Methods("PUT")
	authRouter.HandleFunc("/profile", h.GetProfile).Methods("GET")
	authRouter.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	authRouter.HandleFunc("/advice", h.Ask).Methods("POST")
	authRouter.HandleFunc("/advice/history", h.History).Methods("GET")
	authRouter.HandleFunc("/tips", h.Tips).Methods("GET")
	authRouter.HandleFunc("/models/train", h.TrainModel).Methods("POST")
	authRouter.HandleFunc("/models/latest", h.LatestModel).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
