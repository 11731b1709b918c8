package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"naikenten/internal/auth"
	"naikenten/internal/config"
	"naikenten/internal/export"
	httpx "naikenten/internal/http"
	"naikenten/internal/store"
)

func main() {
	cfg, _ := config.Load()

	st, err := store.Open(cfg.DataFile, cfg.CompatFile, cfg.BackupDir)
	if err != nil {
		log.Fatal(err)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	r := httpx.NewRouter(cfg, st, jwtSvc)

	// export worker
	worker := &export.Worker{Store: st, Dir: cfg.ExportDir, Interval: cfg.ExportInterval}
	if err := worker.Export(); err != nil {
		log.Printf("initial export failed: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s\n", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
