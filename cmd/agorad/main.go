package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"agoradeals/config"
	"agoradeals/core"
	"agoradeals/core/events"
	"agoradeals/core/types"
	"agoradeals/observability/logging"
	"agoradeals/observability/metrics"
	"agoradeals/rpc"
	"agoradeals/storage"
)

const rpcTokenEnv = "AGORA_RPC_TOKEN"

// meteredEmitter forwards committed events to the structured log and the
// Prometheus event counter.
type meteredEmitter struct {
	log events.LogEmitter
}

func (m meteredEmitter) Emit(evt *types.Event) {
	if evt == nil {
		return
	}
	metrics.CountEvent(evt.Type)
	m.log.Emit(evt)
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load config", "path", *configFile, "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Options{
		Level: cfg.LogLevel,
		Path:  cfg.LogPath,
	})
	logger.Info("starting agorad", "network", cfg.NetworkName, "dataDir", cfg.DataDir)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", "dataDir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	node := core.NewNode(db)
	node.SetEmitter(meteredEmitter{log: events.LogEmitter{Logger: logger}})

	go func() {
		metricsServer := &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		logger.Info("starting metrics server", "addr", cfg.MetricsAddress)
		if err := metricsServer.ListenAndServe(); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	server := rpc.NewServer(node, rpc.Options{
		AuthToken:       os.Getenv(rpcTokenEnv),
		RateLimitPerMin: cfg.RPCRateLimitPerMin,
		Logger:          logger,
	})
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}
