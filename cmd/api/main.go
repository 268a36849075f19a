package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/handler"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/notify"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/service"
	"finance-tracker/internal/storage"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
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
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := storage.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB)
	if err := storage.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("Failed to create indexes: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)

	var sender *notify.Sender
	var notifier service.Notifier
	if cfg.EmailNotifications {
		sender = notify.NewSender(cfg, logger)
		notifier = sender
	}

	svc := service.NewService(repo, repo, repo, notifier, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Monthly summary scheduler
	if sender != nil {
		scheduler := notify.NewScheduler(svc, sender, logger)
		if err := scheduler.Start(); err != nil {
			logger.Fatalf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", h.Register).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")

	// Protected routes
	authRouter := api.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/auth/profile", h.Profile).Methods("GET")

	authRouter.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	authRouter.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	authRouter.HandleFunc("/transactions/stats", h.TransactionStats).Methods("GET")
	authRouter.HandleFunc("/transactions/{id}", h.GetTransaction).Methods("GET")
	authRouter.HandleFunc("/transactions/{id}", h.UpdateTransaction).Methods("PUT")
	authRouter.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")

	authRouter.HandleFunc("/budgets", h.CreateBudget).Methods("POST")
	authRouter.HandleFunc("/budgets", h.ListBudgets).Methods("GET")
	authRouter.HandleFunc("/budgets/progress", h.BudgetProgress).Methods("GET")
	authRouter.HandleFunc("/budgets/{id}", h.GetBudget).Methods("GET")
	authRouter.HandleFunc("/budgets/{id}", h.UpdateBudget).Methods("PUT")
	authRouter.HandleFunc("/budgets/{id}", h.DeleteBudget).Methods("DELETE")

	authRouter.HandleFunc("/users/profile", h.UpdateProfile).Methods("PUT")
	authRouter.HandleFunc("/users/stats", h.UserStats).Methods("GET")
	authRouter.HandleFunc("/users/account", h.DeleteAccount).Methods("DELETE")

	// CORS and request logging for the SPA client
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.LoggingHandler(logger.Writer(), cors(r)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
