// Package main runs the emissions ledger HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/carbontrail/backend/cmd/server/handlers"
	"github.com/carbontrail/backend/internal/analytics"
	"github.com/carbontrail/backend/internal/config"
	"github.com/carbontrail/backend/internal/db"
	"github.com/carbontrail/backend/internal/emission"
	"github.com/carbontrail/backend/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		zlog.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := db.NewMigrator(database.DB).Up(); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	repo := db.NewRepository(database.DB)
	defer repo.Close()

	if err := bootstrap(repo, cfg, zlog); err != nil {
		zlog.Fatal("failed to bootstrap ledger", zap.Error(err))
	}

	emissionSvc := emission.NewService(repo, zlog)
	analyticsSvc := analytics.NewService(repo)

	factorHandler := handlers.NewFactorHandler(emissionSvc)
	recordHandler := handlers.NewRecordHandler(emissionSvc)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsSvc)
	metricHandler := handlers.NewMetricHandler(repo, analyticsSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/emission-factors", factorHandler.Factors)
	mux.HandleFunc("/api/emission-factors/bulk", factorHandler.BulkCreate)
	mux.HandleFunc("/api/emission-records", recordHandler.Records)
	mux.HandleFunc("/api/emission-records/audit", recordHandler.AuditTrail)
	mux.HandleFunc("/api/analytics/yoy-emissions", analyticsHandler.YoYEmissions)
	mux.HandleFunc("/api/analytics/yoy-emissions-debug", analyticsHandler.YoYEmissionsDebug)
	mux.HandleFunc("/api/analytics/emission-intensity", analyticsHandler.Intensity)
	mux.HandleFunc("/api/analytics/emission-hotspots", analyticsHandler.Hotspots)
	mux.HandleFunc("/api/analytics/monthly-trends", analyticsHandler.MonthlyTrends)
	mux.HandleFunc("/api/business-metrics", metricHandler.Metrics)
	mux.HandleFunc("/api/business-metrics/summary", metricHandler.Summary)
	mux.HandleFunc("/api/debug/quick-check", analyticsHandler.QuickCheck)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"emissions-ledger"}`))
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddress,
		Handler:      handlers.RequestID(zlog, mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zlog.Info("emissions ledger listening", zap.String("address", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// bootstrap seeds the sample dataset when the ledger is empty, or reports the
// existing data. "Empty" is defined by the record count only; factors alone
// do not suppress seeding.
func bootstrap(repo *db.Repository, cfg *config.Config, zlog *zap.Logger) error {
	count, err := repo.CountRecords()
	if err != nil {
		return err
	}

	if count > 0 {
		years, err := repo.DistinctRecordYears()
		if err != nil {
			return err
		}
		zlog.Info("existing database found",
			zap.Int("records", count),
			zap.String("years", strings.Join(years, ", ")))
		return nil
	}

	if !cfg.SeedSampleData {
		zlog.Info("empty database, seeding disabled")
		return nil
	}

	zlog.Info("empty database, creating sample data")
	return repo.SeedSampleData()
}
