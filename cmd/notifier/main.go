package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/config"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/events"
	kafkax "github.com/ariefcatur/go-storefront-fulfillment.git/internal/kafka"
	"github.com/ariefcatur/go-storefront-fulfillment.git/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Delivery worker for the notification topic. Actual channel delivery
// (email, push) hangs off this point; here it dedups and logs.
type worker struct {
	redis   *redis.Client
	service string
}

func (w *worker) handle(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventNotification {
		return nil // ignore
	}

	// dedup via Redis (keyed by event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, w.service, env.EventID)
	exists, _ := redisx.Exists(ctx, w.redis, dkey)
	if exists {
		return nil
	}
	_ = w.redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[events.NotificationPayload](env.Payload)
	if err != nil {
		return err
	}

	target := p.UserID
	if target == "" {
		target = "operators"
	}
	log.Printf("deliver kind=%s to=%s title=%q body=%q", p.Kind, target, p.Title, p.Body)
	return nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "8")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicNotifications, workers)

	w := &worker{redis: rdb, service: cfg.ServiceName + "-notifier"}

	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, events.TopicNotifications, workers)
		if err := cons.Start(ctx, w.handle); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
