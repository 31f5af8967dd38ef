package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/zklink-signer/params"
	"github.com/uhyunpark/zklink-signer/pkg/api"
	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/signer"
	"github.com/uhyunpark/zklink-signer/pkg/storage"
	"github.com/uhyunpark/zklink-signer/pkg/util"
)

func main() {
	cfg, err := params.LoadFromEnv("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Log.File != "" {
		logger, err = util.NewLoggerWithFile(cfg.Log.Level, cfg.Log.File)
	} else {
		logger, err = util.NewLogger(cfg.Log.Level)
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "level", cfg.Log.Level, "log_file", cfg.Log.File)

	var l1 *crypto.EthSigner
	if cfg.Signer.PrivateKey != "" {
		l1, err = crypto.FromPrivateKeyHex(cfg.Signer.PrivateKey)
	} else {
		l1, err = crypto.GenerateKey()
	}
	if err != nil {
		sugar.Fatalw("key_load_failed", "err", err)
	}
	if cfg.Signer.PrivateKey == "" {
		sugar.Warnw("ephemeral_key_generated", "address", l1.Address().Hex())
	}

	s, err := signer.New(signer.Config{
		L1:     l1,
		Domain: crypto.ZkLinkDomain(cfg.Layer1.ChainID, cfg.Layer1.MainContract),
		Logger: sugar.Named("signer"),
	})
	if err != nil {
		sugar.Fatalw("signer_init_failed", "err", err)
	}

	apiCfg := api.Config{
		Signer:         s,
		AllowedOrigins: cfg.API.AllowedOrigins,
		Logger:         sugar.Named("api"),
	}
	if cfg.Outbox.Path != "" {
		store, err := storage.NewPebbleStore(storage.Config{Path: cfg.Outbox.Path, Logger: sugar.Named("outbox")})
		if err != nil {
			sugar.Fatalw("outbox_open_failed", "path", cfg.Outbox.Path, "err", err)
		}
		defer store.Close()
		apiCfg.Outbox = store
	}

	server, err := api.NewServer(apiCfg)
	if err != nil {
		sugar.Fatalw("api_init_failed", "err", err)
	}

	sugar.Infow("signer_starting",
		"address", s.Address().Hex(),
		"pub_key_hash", s.PubKeyHash().String(),
		"l1_chain_id", cfg.Layer1.ChainID,
		"main_contract", cfg.Layer1.MainContract.Hex(),
		"outbox", cfg.Outbox.Path,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(cfg.API.Addr) }()

	select {
	case err := <-errCh:
		if err != nil {
			sugar.Errorw("api_server_failed", "err", err)
		}
	case <-ctx.Done():
		sugar.Infow("shutdown_requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			sugar.Warnw("api_shutdown_failed", "err", err)
		}
	}
}
