package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pharmaflow/m/internal/api"
	"pharmaflow/m/internal/billing"
	"pharmaflow/m/internal/config"
	"pharmaflow/m/internal/database"
	"pharmaflow/m/internal/events"
	"pharmaflow/m/internal/inventory"
	"pharmaflow/m/internal/migrations"
	"pharmaflow/m/internal/reports"
	"pharmaflow/m/internal/sales"
	"pharmaflow/m/internal/seed"
	"pharmaflow/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore := openStore(cfg)
	defer closeStore()

	bus := events.NewBus()
	if len(cfg.KafkaBrokers) > 0 {
		sink := events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer sink.Close()
		bus.Subscribe(sink)
		log.Printf("publishing events to kafka topic %s", cfg.KafkaTopic)
	}

	writer := store.NewWriter(kv, func(key string, err error) {
		bus.Publish(events.Event{Type: events.PersistFailed, Subject: key, Payload: err.Error()})
	})
	defer writer.Close()

	medicines, history, err := seed.Bootstrap(ctx, kv, cfg.CatalogPath)
	if err != nil {
		log.Fatalf("unable to load persisted state: %v", err)
	}

	ledger := inventory.NewLedger(medicines, writer, bus)
	recorder := sales.NewRecorder(ledger, history, writer, bus)
	views := reports.NewService(ledger, recorder, time.Now)
	views.LowStockThreshold = cfg.LowStockThreshold
	views.ExpiryHorizon = cfg.ExpiryHorizonMonths

	handler := api.New(ledger, billing.NewRegistry(), recorder, views, cfg.Secret, cfg.AllowedOrigins)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("PharmaFlow server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if err := writer.Flush(shutdownCtx); err != nil {
		log.Printf("unable to flush pending writes: %v", err)
	}
}

// openStore picks Redis when configured, otherwise the SQL database. If the
// durable backend is unavailable the server keeps running on memory only.
func openStore(cfg config.Config) (store.KV, func()) {
	if cfg.RedisAddr != "" {
		r, err := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisPrefix)
		if err == nil {
			return r, func() { r.Close() }
		}
		log.Printf("redis unavailable, falling back to database: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Printf("WARNING: %v; state will not survive a restart", err)
		return store.NewMemory(), func() {}
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		log.Printf("WARNING: %v; state will not survive a restart", err)
		return store.NewMemory(), func() {}
	}
	return store.NewSQL(db), func() { db.Close() }
}
