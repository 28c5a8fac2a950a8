package daemonserver

import (
	"log/slog"

	"loki-messenger/go-backend/internal/adapters/rpc"
	"loki-messenger/go-backend/internal/composition/daemonservice"
	"loki-messenger/go-backend/internal/config"
	"loki-messenger/go-backend/internal/platform/metrics"
	"loki-messenger/go-backend/internal/platform/ratelimiter"
)

// NewRPCServer wires the daemon service and RPC transport from cfg.
func NewRPCServer(cfg config.Config, logger *slog.Logger) (*rpc.Server, error) {
	reg := metrics.New()
	svc, err := daemonservice.New(cfg, reg, logger)
	if err != nil {
		return nil, err
	}
	return rpc.NewServer(svc, rpc.Options{
		Addr:              cfg.RPC.Addr,
		Token:             cfg.RPC.Token,
		Limiter:           ratelimiter.New(cfg.RPC.RateLimitRPS, cfg.RPC.RateLimitBurst, 0),
		Metrics:           reg,
		Logger:            logger,
		ReadHeaderTimeout: cfg.RPC.ReadHeaderTimeout,
	}), nil
}
