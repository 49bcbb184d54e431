// Command server runs the transactional email dispatch service: the HTTP
// surface plus the Ingester/Scheduler/RateGate+Sender/PostSendWriter
// pipeline, all in one process sharing one pair of in-memory queues.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/sparkpost-monitor/internal/api"
	"github.com/ignite/sparkpost-monitor/internal/auth"
	"github.com/ignite/sparkpost-monitor/internal/callback"
	"github.com/ignite/sparkpost-monitor/internal/config"
	"github.com/ignite/sparkpost-monitor/internal/ingest"
	"github.com/ignite/sparkpost-monitor/internal/pixel"
	"github.com/ignite/sparkpost-monitor/internal/pkg/distlock"
	"github.com/ignite/sparkpost-monitor/internal/postsend"
	"github.com/ignite/sparkpost-monitor/internal/queue"
	"github.com/ignite/sparkpost-monitor/internal/rategate"
	"github.com/ignite/sparkpost-monitor/internal/repository/postgres"
	"github.com/ignite/sparkpost-monitor/internal/scheduler"
	"github.com/ignite/sparkpost-monitor/internal/sender"
)

func main() {
	log.Println("starting email dispatch server")

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

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	requestStore := postgres.NewRequestRepo(db)
	resultStore := postgres.NewResultRepo(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailSender, err := sender.NewSESSender(ctx, cfg.SES.Region)
	if err != nil {
		log.Fatalf("failed to build SES sender: %v", err)
	}

	sendQueue, outcomeQueue := queue.New(cfg.Queues.SendQueueCapacity, cfg.Queues.OutcomeQueueCapacity)

	ingester := ingest.New(requestStore, sendQueue)
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

	callbackHandler := callback.NewHandler(requestStore, resultStore)

	if cfg.Tracking.SQSQueueURL != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SES.Region))
		if err != nil {
			log.Fatalf("failed to load aws config for sqs: %v", err)
		}
		consumer := callback.NewConsumer(sqs.NewFromConfig(awsCfg), cfg.Tracking.SQSQueueURL, callbackHandler)
		go consumer.Run(ctx)
		log.Println("callback ingestion also polling SQS", cfg.Tracking.SQSQueueURL)
	}

	verifier := auth.NewVerifier(cfg.Auth)

	router := api.SetupRoutes(api.Routes{
		Messages:  api.NewMessagesHandler(ingester),
		Topics:    api.NewTopicsHandler(requestStore, resultStore),
		SentCount: api.NewSentCountHandler(requestStore),
		Pixel:     pixel.NewHandler(resultStore),
		Callback:  callbackHandler,
		Health:    api.NewHealthChecker(db),
	}, verifier)

	server := api.NewServer(router)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Printf("listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-done
	log.Println("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	log.Println("stopped")
}
