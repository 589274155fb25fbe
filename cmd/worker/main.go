package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/llighterr/promo-task/internal/config"
	"github.com/llighterr/promo-task/internal/db"
	"github.com/llighterr/promo-task/internal/queue"
	"github.com/llighterr/promo-task/internal/repositories"
	"github.com/llighterr/promo-task/internal/services"
	"go.uber.org/zap"
)

const dequeueTimeout = 5 * time.Second

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	promoRepo := repositories.NewPromoMessageRepo(pool)
	sendQueue := queue.NewRedisQueue(rdb, cfg.PromoQueueKey, log)
	smsClient := services.NewSMSClient(cfg.SMSGatewayURL, cfg.SMSAuthKey, cfg.SMSTimeout, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down worker")
		cancel()
	}()

	log.Info("worker started", zap.String("queue", cfg.PromoQueueKey))

	for {
		if ctx.Err() != nil {
			return
		}

		task, err := sendQueue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}

		handleTask(ctx, task, promoRepo, smsClient, log)
	}
}

// handleTask delivers one task and drops it regardless of outcome:
// failed deliveries are logged, never re-queued from here.
func handleTask(ctx context.Context, task *queue.Task, promoRepo *repositories.PromoMessageRepo, smsClient *services.SMSClient, log *zap.Logger) {
	if task.Task != services.TaskSendPromoMessage {
		log.Warn("dropping unknown task", zap.String("task", task.Task))
		return
	}

	var payload services.SendPromoPayload
	if err := task.DecodePayload(&payload); err != nil {
		log.Warn("dropping task with malformed payload", zap.Error(err))
		return
	}

	// Tasks carry only the phone; the body comes from the most recent
	// promo message.
	msg, err := promoRepo.Latest(ctx)
	if err != nil {
		log.Error("failed to load promo message for delivery",
			zap.String("phone", payload.Phone),
			zap.Error(err),
		)
		return
	}

	if err := smsClient.Send(ctx, payload.Phone, msg.Body); err != nil {
		log.Error("delivery failed",
			zap.String("phone", payload.Phone),
			zap.String("message_id", msg.ID.String()),
			zap.Error(err),
		)
		return
	}

	log.Info("promo message delivered",
		zap.String("phone", payload.Phone),
		zap.String("message_id", msg.ID.String()),
	)
}
