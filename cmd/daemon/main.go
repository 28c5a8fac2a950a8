package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"loki-messenger/go-backend/internal/composition/daemonserver"
	"loki-messenger/go-backend/internal/config"
	"loki-messenger/go-backend/internal/platform/privacylog"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	rpcAddr := flag.String("rpc-addr", "", "JSON-RPC listen address (overrides config)")
	dataDir := flag.String("data-dir", "", "Directory for the encrypted identity and account state (optional)")
	rpcToken := flag.String("rpc-token", "", "RPC token for Authorization/X-Loki-RPC-Token (optional)")
	wordlist := flag.String("wordlist", "", "Builtin wordlist name (overrides config)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("loki-daemon version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	cfg, err := config.LoadFromPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loki-daemon: %v\n", err)
		os.Exit(1)
	}
	if *rpcAddr != "" {
		cfg.RPC.Addr = *rpcAddr
	}
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}
	if *rpcToken != "" {
		cfg.RPC.Token = *rpcToken
	}
	if *wordlist != "" {
		cfg.Mnemonic.Wordlist = *wordlist
		cfg.Mnemonic.WordlistPath = ""
	}

	logger := privacylog.NewLogger(os.Stdout, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := daemonserver.NewRPCServer(cfg, logger)
	if err != nil {
		logger.Error("loki-daemon failed to initialize", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("loki-daemon starting", "version", version, "addr", srv.Addr())
	if err := srv.Run(ctx); err != nil {
		logger.Error("loki-daemon failed", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("loki-daemon stopped")
}
