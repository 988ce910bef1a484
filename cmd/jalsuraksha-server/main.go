// Command jalsuraksha-server runs the surveillance HTTP API.
package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jalsuraksha/internal/adapters/exports"
	"jalsuraksha/internal/adapters/rest"
	"jalsuraksha/internal/blob"
	"jalsuraksha/internal/core"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	store, err := core.OpenStore()
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	if os.Getenv("JALSURAKSHA_SEED") == "true" {
		if err := store.ImportState(core.SeedSnapshot()); err != nil {
			log.Fatalf("seed store: %v", err)
		}
		log.Printf("seeded sample surveillance data")
	}

	registry := prometheus.NewRegistry()
	metrics, err := core.OpenMetricsRecorder(registry)
	if err != nil {
		log.Fatalf("open metrics recorder: %v", err)
	}
	svc := core.NewService(store, core.WithMetricsRecorder(metrics))

	ctx := context.Background()
	artifacts, err := blob.Open(ctx)
	if err != nil {
		log.Fatalf("open blob store: %v", err)
	}
	worker := exports.NewWorker(svc, artifacts, &exports.MemoryAuditLog{})
	worker.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := worker.Stop(stopCtx); err != nil {
			log.Printf("stop export worker: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/api/", rest.NewHandler(svc, worker))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	log.Printf("serving on :%s (storage=%s blob=%s)", port,
		envOrDefault("JALSURAKSHA_STORAGE_DRIVER", "memory"),
		envOrDefault("JALSURAKSHA_BLOB_DRIVER", "fs"))
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
