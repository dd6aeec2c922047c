package main

import (
	"log"
	"net/http"
	"time"

	pg "pet-catalog/internal/adapters/storage/postgres"
	"pet-catalog/internal/platform/config"
	"pet-catalog/internal/platform/logger"
	"pet-catalog/internal/router"
)

func main() {
	cfg := config.Load()

	lg := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	opts := router.Options{Log: lg}
	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		opts.DB = db
	}

	r, err := router.NewRouter(opts)
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lg.Info("starting server", map[string]any{"addr": cfg.Addr, "storage": storageName(opts)})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func storageName(opts router.Options) string {
	if opts.DB != nil {
		return "postgres"
	}
	return "memory"
}
