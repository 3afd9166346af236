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

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sohaibislam45/BookFlix-sub002/configs"
	"github.com/sohaibislam45/BookFlix-sub002/internal/broker"
	"github.com/sohaibislam45/BookFlix-sub002/internal/daemon"
	"github.com/sohaibislam45/BookFlix-sub002/internal/db"
	"github.com/sohaibislam45/BookFlix-sub002/internal/handlers"
	"github.com/sohaibislam45/BookFlix-sub002/internal/middleware"
	"github.com/sohaibislam45/BookFlix-sub002/internal/policy"
	"github.com/sohaibislam45/BookFlix-sub002/internal/redisclient"
	"github.com/sohaibislam45/BookFlix-sub002/internal/service"
	"github.com/sohaibislam45/BookFlix-sub002/internal/utils"
	"github.com/sohaibislam45/BookFlix-sub002/internal/worker"
)

func main() {
	cfg := configs.LoadConfig()

	if err := utils.InitLogger(cfg.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.SyncLogger()
	logger := utils.GetLogger()

	db.Connect(cfg.MongoURI)
	utils.InitJwtSecret(cfg.JWTSecret)

	locks, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer locks.Close()

	producer := broker.NewProducer(cfg.KafkaBrokers, cfg.NotificationsTopic)
	defer producer.Close()
	intents := broker.NewIntentPublisher(producer)

	auditCol := db.GetCollection(cfg.DBName, "audit_logs")
	auditLogger := utils.AuditLogger{Collection: auditCol}

	limits := policy.Limits{
		GeneralLoanDays: cfg.GeneralLoanDays,
		PremiumLoanDays: cfg.PremiumLoanDays,
		GeneralMaxLoans: cfg.GeneralMaxLoans,
		PremiumMaxLoans: cfg.PremiumMaxLoans,
		MaxRenewals:     cfg.MaxRenewals,
	}

	catalog := &service.CatalogService{
		BookCol:     db.GetCollection(cfg.DBName, "books"),
		CopyCol:     db.GetCollection(cfg.DBName, "copies"),
		AuditLogger: auditLogger,
		Logger:      logger,
	}

	borrowings := &service.BorrowingService{
		MemberCol:   db.GetCollection(cfg.DBName, "members"),
		BookCol:     db.GetCollection(cfg.DBName, "books"),
		BorrowCol:   db.GetCollection(cfg.DBName, "borrowings"),
		Catalog:     catalog,
		Locks:       locks,
		Intents:     intents,
		Limits:      limits,
		AuditLogger: auditLogger,
		Logger:      logger,
	}

	fines := &service.FineService{
		FineCol:     db.GetCollection(cfg.DBName, "fines"),
		BorrowCol:   db.GetCollection(cfg.DBName, "borrowings"),
		Intents:     intents,
		FineRate:    cfg.FineRate,
		FineCap:     cfg.FineCap,
		GraceDays:   cfg.GraceDays,
		AuditLogger: auditLogger,
		Logger:      logger,
	}

	reservations := &service.ReservationService{
		ResCol:      db.GetCollection(cfg.DBName, "reservations"),
		MemberCol:   db.GetCollection(cfg.DBName, "members"),
		BorrowCol:   db.GetCollection(cfg.DBName, "borrowings"),
		Catalog:     catalog,
		Locks:       locks,
		Intents:     intents,
		Limits:      limits,
		ExpiryDays:  cfg.ReservationExpiryDays,
		PickupDays:  cfg.PickupWindowDays,
		AuditLogger: auditLogger,
		Logger:      logger,
	}

	daemonCtx, daemonCancel := context.WithCancel(context.Background())
	defer daemonCancel()

	sweeper := &daemon.Sweeper{Fines: fines, Reservations: reservations, Interval: cfg.SweepInterval}
	sweeper.Start(daemonCtx)

	exporter := &daemon.LogExporter{Coll: auditCol}
	exporter.Start(daemonCtx)

	paymentConsumer := broker.NewConsumer(cfg.KafkaBrokers, cfg.PaymentsTopic, cfg.PaymentsGroup)
	paymentWorker := worker.NewPaymentWorker(paymentConsumer, fines)
	go func() {
		if err := paymentWorker.Start(daemonCtx); err != nil && daemonCtx.Err() == nil {
			logger.Error("Payment worker stopped", zap.Error(err))
		}
	}()

	r := mux.NewRouter()
	r.Use(middleware.JSONMiddleware)
	r.Use(middleware.MetricsMiddleware)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})
	r.Handle("/metrics", promhttp.Handler())

	authHandler := &handlers.AuthHandler{
		ConfigCreds: struct {
			UserId       string
			Username     string
			UserPassword string
		}{UserId: cfg.UserId, Username: cfg.UserName, UserPassword: cfg.UserPassword},
	}
	r.HandleFunc("/login", authHandler.Login).Methods("POST")

	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	borrowingHandler := &handlers.BorrowingHandler{Service: borrowings}
	api.HandleFunc("/borrowings", borrowingHandler.Borrow).Methods("POST")
	api.HandleFunc("/borrowings/return", borrowingHandler.Return).Methods("POST")
	api.HandleFunc("/borrowings/renew", borrowingHandler.Renew).Methods("POST")
	api.HandleFunc("/borrowings/overdue", borrowingHandler.GetOverdue).Methods("GET")

	reservationHandler := &handlers.ReservationHandler{Service: reservations}
	api.HandleFunc("/reservations", reservationHandler.Request).Methods("POST")
	api.HandleFunc("/reservations/ready", reservationHandler.MarkReady).Methods("POST")
	api.HandleFunc("/reservations/complete", reservationHandler.Complete).Methods("POST")
	api.HandleFunc("/reservations/cancel", reservationHandler.Cancel).Methods("POST")
	api.HandleFunc("/reservations/queue/{bookId}", reservationHandler.Queue).Methods("GET")

	fineHandler := &handlers.FineHandler{Service: fines}
	api.HandleFunc("/fines/{id}/waive", fineHandler.Waive).Methods("POST")
	api.HandleFunc("/members/{id}/fines", fineHandler.MemberFines).Methods("GET")

	sweepHandler := &handlers.SweepHandler{Fines: fines, Reservations: reservations}
	api.HandleFunc("/sweeps/fines", sweepHandler.RunFineSweep).Methods("POST")
	api.HandleFunc("/sweeps/reservations", sweepHandler.RunExpirySweep).Methods("POST")

	bookHandler := handlers.NewBookHandler(catalog)
	api.HandleFunc("/books/{id}/stock", bookHandler.SetStockLevel).Methods("PUT")
	api.HandleFunc("/books/{id}/availability", bookHandler.Availability).Methods("GET")

	metricsHandler := handlers.MetricsHandler{
		CopyCol:   db.GetCollection(cfg.DBName, "copies"),
		MemberCol: db.GetCollection(cfg.DBName, "members"),
		BorrowCol: db.GetCollection(cfg.DBName, "borrowings"),
		FineCol:   db.GetCollection(cfg.DBName, "fines"),
	}
	api.HandleFunc("/admin/metrics", metricsHandler.GetMetrics).Methods("GET")

	var server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	daemonCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Graceful shutdown failed", zap.Error(err))
	}
	if err := db.Disconnect(ctx); err != nil {
		logger.Warn("Mongo disconnect failed", zap.Error(err))
	}
	logger.Info("Server shut down.")
}
