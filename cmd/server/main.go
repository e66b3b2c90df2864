package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medicine-locator/config"
	"medicine-locator/internal/api"
	"medicine-locator/internal/broker"
	"medicine-locator/internal/catalog"
	"medicine-locator/internal/geo"
	"medicine-locator/internal/inventory"
	"medicine-locator/internal/redisclient"
	"medicine-locator/internal/search"
	"medicine-locator/internal/store"
	"medicine-locator/internal/util"
	"medicine-locator/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting medicine locator service")

	tp, err := util.InitTracer("medicine-locator", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	cache, err := redisclient.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Search.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()
	log.Println("Redis connected")

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()

	geoIndex := geo.NewIndex()
	stores, err := db.GetStores(bootCtx)
	if err != nil {
		log.Fatalf("Failed to load store registry: %v", err)
	}
	geoIndex.Build(stores)
	log.Printf("Geo index built: %d active stores", geoIndex.Len())

	cat := catalog.New()
	medicines, err := db.GetMedicines(bootCtx)
	if err != nil {
		log.Fatalf("Failed to load medicine catalog: %v", err)
	}
	aliases, err := db.GetMedicineAliases(bootCtx)
	if err != nil {
		log.Fatalf("Failed to load medicine aliases: %v", err)
	}
	cat.Load(medicines, aliases)
	log.Printf("Medicine catalog loaded: %d entries", cat.Len())

	inv := inventory.NewStore()
	entries, err := db.GetInventoryEntries(bootCtx)
	if err != nil {
		log.Fatalf("Failed to load inventory: %v", err)
	}
	for _, entry := range entries {
		if err := inv.Apply(entry); err != nil {
			log.Printf("Skipping invalid inventory row: %v", err)
		}
	}
	log.Printf("Inventory hydrated: %d records", len(entries))

	engine := search.NewEngine(cfg.Search, geoIndex, inv, cat, cache)

	inventoryProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicInventory)
	defer inventoryProducer.Close()
	storeProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicStores)
	defer storeProducer.Close()
	eventPublisher := broker.NewEventPublisher(inventoryProducer, storeProducer)
	log.Println("Kafka producers initialized")

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	inventoryConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicInventory, cfg.Kafka.ConsumerGroup)
	inventoryWorker := worker.NewInventoryWorker(inventoryConsumer, inv, db, cache)
	go func() {
		if err := inventoryWorker.Start(workerCtx); err != nil {
			log.Printf("Inventory worker error: %v", err)
		}
	}()

	storeConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicStores, cfg.Kafka.ConsumerGroup)
	storeWorker := worker.NewStoreWorker(storeConsumer, geoIndex, db)
	go func() {
		if err := storeWorker.Start(workerCtx); err != nil {
			log.Printf("Store worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(engine, cat, db, eventPublisher)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	inventoryWorker.Stop()
	storeWorker.Stop()

	log.Println("Server exited")
}
