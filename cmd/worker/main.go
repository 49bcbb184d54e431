// Command worker runs the Scheduler/RateGate+Sender/PostSendWriter pipeline
// without the HTTP surface, for deployments that scale dispatch capacity
// independently of ingestion. Its ClaimDue call is what makes running many
// of these against one database safe: SKIP LOCKED means two workers never
// claim the same row.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/sparkpost-monitor/internal/config"
	"github.com/ignite/sparkpost-monitor/internal/pkg/distlock"
	"github.com/ignite/sparkpost-monitor/internal/postsend"
	"github.com/ignite/sparkpost-monitor/internal/queue"
	"github.com/ignite/sparkpost-monitor/internal/rategate"
	"github.com/ignite/sparkpost-monitor/internal/repository/postgres"
	"github.com/ignite/sparkpost-monitor/internal/scheduler"
	"github.com/ignite/sparkpost-monitor/internal/sender"
)

func main() {
	log.Println("starting dispatch worker")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	requestStore := postgres.NewRequestRepo(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailSender, err := sender.NewSESSender(ctx, cfg.SES.Region)
	if err != nil {
		log.Fatalf("failed to build SES sender: %v", err)
	}

	sendQueue, outcomeQueue := queue.New(cfg.Queues.SendQueueCapacity, cfg.Queues.OutcomeQueueCapacity)

	sched := scheduler.New(requestStore, sendQueue)
	gate := rategate.New(mailSender, sendQueue, outcomeQueue, cfg.RateGate.Interval(), cfg.SES.FromEmail, cfg.Server.URL)
	writer := postsend.New(requestStore, outcomeQueue)

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		gate = gate.WithTickLock(func(bucket string) rategate.TickLocker {
			return distlock.NewRedisLock(redisClient, bucket, cfg.RateGate.Interval())
		})
		log.Println("rate gate coordinating across processes via Redis")
	}

	go sched.Run(ctx)
	go gate.Run(ctx)
	go writer.Run(ctx)

	log.Println("worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down worker")
	cancel()
	time.Sleep(2 * time.Second)
	log.Println("worker stopped")
}
