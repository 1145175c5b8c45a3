// Command dexd serves the connector library over HTTP.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VelaTrade/dex-lib/common/types"
	"github.com/VelaTrade/dex-lib/config"
	"github.com/VelaTrade/dex-lib/connectormanager"
	"github.com/VelaTrade/dex-lib/connectors"
	"github.com/VelaTrade/dex-lib/server"
	"github.com/VelaTrade/dex-lib/session"
	"github.com/VelaTrade/dex-lib/sessiondb"
	"github.com/VelaTrade/dex-lib/telemetry"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := connectormanager.NewConnectorRegistry(connectors.NewConnectorFactory(), logger)
	defer registry.Shutdown()

	for name, settings := range cfg.Connectors {
		dex, _ := types.ParseDEX(name)

		wallet := cfg.Wallets[dex.Network().String()]
		creds := types.NewWalletCredentials(wallet.PrivateKey, wallet.Address)

		if err := registry.Add(ctx, dex, creds, settings.ConnectorConfig()); err != nil {
			logger.WithFields(logrus.Fields{
				"dex":   dex,
				"error": err,
			}).Fatal("Failed to construct connector")
		}
		logger.WithField("dex", dex).Info("Connector ready")
	}

	metrics := telemetry.NewMetrics()
	store := sessiondb.NewStore(cfg.DatabaseURL)
	tracker := session.NewTracker(cfg.Session.TrustedProxyHeaders)

	recorder := session.NewRecorder(tracker, store, logger, metrics, cfg.Session.RecorderQueueSize)
	if err := recorder.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start session recorder")
	}
	defer recorder.Stop()

	srv := server.New(registry, store, tracker, recorder, metrics, logger)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("Listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}
