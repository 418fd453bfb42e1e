package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/hazard-sentinel/internal/adapter/crowd"
	httpadapter "github.com/couchcryptid/hazard-sentinel/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hazard-sentinel/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-sentinel/internal/adapter/telemetry"
	"github.com/couchcryptid/hazard-sentinel/internal/config"
	"github.com/couchcryptid/hazard-sentinel/internal/domain"
	"github.com/couchcryptid/hazard-sentinel/internal/drill"
	"github.com/couchcryptid/hazard-sentinel/internal/engine"
	"github.com/couchcryptid/hazard-sentinel/internal/observability"
	"github.com/couchcryptid/hazard-sentinel/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	audit := workflow.NewAuditLog(logger)
	wf := workflow.New(audit, logger)
	grid := telemetry.NewGrid(telemetry.DefaultSensors())
	reports := crowd.NewStore(cfg.CrowdReportWindow)
	drillMgr := drill.NewManager(audit, logger)

	// Alert broadcasting is feature-flagged via KAFKA_BROKERS.
	var alerts engine.AlertSink
	var alertWriter *kafkaadapter.AlertWriter
	if cfg.AlertsEnabled() {
		alertWriter = kafkaadapter.NewAlertWriter(cfg, logger)
		alerts = alertWriter
		logger.Info("kafka alert broadcasting enabled", "topic", cfg.KafkaAlertTopic)
	} else {
		logger.Info("kafka alert broadcasting disabled")
	}

	eng := engine.New(engine.Deps{
		Predictor: domain.NewTerrainRiskPredictor(nil, logger),
		Telemetry: grid,
		Crowd:     reports,
		Drill:     drillMgr,
		Workflow:  wf,
		Audit:     audit,
		Alerts:    alerts,
		Logger:    logger,
		Metrics:   metrics,
	}, engine.Params{
		Policy:            cfg.FusionPolicy,
		SignalTimeout:     cfg.SignalTimeout,
		ProposalRadiusKm:  cfg.ProposalRadiusKm,
		ProposalThreshold: cfg.ProposalThreshold,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.AdminKey, eng, drillMgr, grid, reports, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if alertWriter != nil {
		if err := alertWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
