package main

import (
	"context"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fwmsg/aufgaben-web/internal/auth"
	"github.com/fwmsg/aufgaben-web/internal/config"
	applog "github.com/fwmsg/aufgaben-web/internal/log"
	"github.com/fwmsg/aufgaben-web/internal/server"
	"github.com/fwmsg/aufgaben-web/internal/ui"
	"github.com/fwmsg/aufgaben-web/internal/upstream"
)

func main() {
	listenFlag := flag.String("listen", "", "listen address (overrides AUFGABEN_LISTEN and config)")
	configFlag := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// .env ist optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdlog.Printf("could not read .env: %v", err)
	}

	cfg, err := config.Load(resolveConfigPath(*configFlag))
	if err != nil {
		stdlog.Fatalf("config error: %v", err)
	}
	applog.InitFromEnvFallback(cfg.Logging.Level)

	userStore, err := auth.FromConfig(cfg, getenvDefault("AUFGABEN_USER", "admin"), getenvDefault("AUFGABEN_PASS", "admin"))
	if err != nil {
		stdlog.Fatalf("users: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Startup-Checks: Endpunkte + Erreichbarkeit des Backends
	client, err := upstream.EnsureReady(ctx, cfg)
	if err != nil {
		stdlog.Fatalf("startup check failed: %v", err)
	}

	srv := server.NewServerWithConfig(userStore, cfg, client)
	sched, err := ui.StartCacheReset(cfg.UI.CacheResetSpec, srv.SubstepCache())
	if err != nil {
		stdlog.Fatalf("cache reset: %v", err)
	}
	if sched != nil {
		defer sched.Stop()
	}

	listenAddr := resolveListenAddress(cfg, *listenFlag)
	httpSrv := &http.Server{Addr: listenAddr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	applog.Infof("aufgaben web listening on %s (backend %s, users %v)", listenAddr, cfg.Upstream.BaseURL, userStore.Usernames())
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("server error: %v", err)
	}
}

// resolveConfigPath prefers the flag, then ./config.yaml, then the repo root.
func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	for _, p := range []string{"config.yaml", "../../config.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// resolveListenAddress: flag > ENV > config > :8080
func resolveListenAddress(cfg *config.Config, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("AUFGABEN_LISTEN"); v != "" {
		return v
	}
	if cfg != nil && cfg.Listen != "" {
		return cfg.Listen
	}
	return ":8080"
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
