package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"threadsync/internal/app"
	"threadsync/pkg/banner"
	"threadsync/pkg/config"
	"threadsync/pkg/logger"
)

// build metadata - set via ldflags during build/release
var (
	version = "dev"
	commit  = "none"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	// Resolve config path (file flag wins over env)
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])

	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitWithLevel(cfg.Logging.Level)
	defer logger.Sync()

	// Flags explicitly set win over env/config for addr and dbPath.
	addr := addrVal
	if !setFlags["addr"] && cfg.Server.Port != 0 {
		addr = cfg.Addr()
	}
	dbPath := dbVal
	if !setFlags["db"] && cfg.Storage.DBPath != "" {
		dbPath = cfg.Storage.DBPath
	}

	verStr := version
	if commit != "none" {
		verStr = verStr + " (" + commit + ")"
	}

	a, err := app.New(cfg, addr, dbPath, verStr)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	srcs := []string{}
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}
	banner.Print(addr, dbPath, cfg.Remote.BaseURL, strings.Join(srcs, ", "), verStr, a.Store().Size())

	ctx, cancel := context.WithCancel(context.Background())
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigc
		logger.Info("signal_received", "signal", s.String())
		cancel()
	}()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
