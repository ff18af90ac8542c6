package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/audit"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/availability"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/catalog"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/config"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/events"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront-fulfillment.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/ledger"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/notify"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/payments"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/postgres"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: notifications & audit (two topics)
	pNotify := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicNotifications, 1024)
	pNotify.Start(ctx)
	pAudit := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicAudit, 1024)
	pAudit.Start(ctx)

	notifier := &notify.Dispatcher{Producer: pNotify, Service: cfg.ServiceName}
	auditor := &audit.Kafka{Producer: pAudit, Service: cfg.ServiceName}

	// Core wiring
	cat := &catalog.PgxCatalog{DB: db}
	stockStore := &ledger.PgxStore{DB: db}
	led := &ledger.Service{Store: stockStore, Notifier: notifier}
	checker := &availability.Checker{Catalog: cat, Ledger: stockStore}

	orderStore := &orders.PgxStore{DB: db}
	builder := &orders.Builder{Catalog: cat, Ledger: led, Store: orderStore, Notifier: notifier, Audit: auditor}
	lifecycle := &orders.Lifecycle{Store: orderStore, Ledger: led, Notifier: notifier, Audit: auditor}

	paymentStore := &payments.PgxStore{DB: db}
	settlement := &payments.Settlement{
		Gateway:   &payments.MockGateway{}, // swap for the real provider adapter
		Payments:  paymentStore,
		Orders:    orderStore,
		Lifecycle: lifecycle,
		Notifier:  notifier,
		Audit:     auditor,
		Currency:  cfg.Currency,
	}

	// Handlers
	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Builder: builder, Lifecycle: lifecycle, Store: orderStore, Redis: rdb}).Register(router)
	(&httpx.InventoryHandler{Ledger: led, Store: stockStore, Checker: checker, Catalog: cat, Redis: rdb}).Register(router)
	(&httpx.PaymentsHandler{Settlement: settlement, Store: paymentStore}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pNotify.Close() // close inbox -> flush & close writer
	pAudit.Close()
	cancel() // stop producer loops
	pNotify.WaitClosed()
	pAudit.WaitClosed()
}
