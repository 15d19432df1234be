package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fingertrack/internal/attendance"
	"fingertrack/internal/config"
	"fingertrack/internal/device"
	"fingertrack/internal/queue"
	"fingertrack/internal/store"
)

// Worker consumes check-in messages and maintains device last-seen times,
// keeping that write off the check-in request path.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "fingertrack:checkins")
	}

	events := attendance.NewRepository(db.Client)
	devices := device.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "checkin" {
			continue
		}

		id := string(msg.Body)
		evt, err := events.Get(ctx, id)
		if err != nil {
			log.Printf("fetch event %s failed: %v", id, err)
			continue
		}
		if evt == nil {
			log.Printf("event %s not found, skipping", id)
			continue
		}

		if err := devices.TouchLastSeen(ctx, evt.DeviceID, evt.Timestamp); err != nil {
			log.Printf("device %s last-seen update failed: %v", evt.DeviceID, err)
			continue
		}
		log.Printf("event %s: device %s last seen %s", evt.ID, evt.DeviceID, evt.Timestamp.Format("2006-01-02T15:04:05Z"))
	}

	log.Println("worker stopped")
}
