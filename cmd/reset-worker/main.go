// Command main runs the password-reset worker: it consumes reset email jobs
// from Redis and periodically prunes expired reset tokens.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gearswap/internal/cache"
	"gearswap/internal/config"
	"gearswap/internal/database"
	"gearswap/internal/mailer"
	"gearswap/internal/notifications"
	"gearswap/internal/repository"
	"gearswap/internal/service"

	"github.com/joho/godotenv"
)

const pruneInterval = time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.SMTPHost == "" {
		log.Fatal("SMTP_HOST is required for the reset worker")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()
	if rdb == nil {
		log.Fatal("Redis is required for the reset worker")
	}

	sender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderEmail)
	resetRepo := repository.NewResetRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := notifications.NewNotifier(rdb)
	err = notifier.StartChannelSubscriber(ctx, service.ResetJobChannel, func(payload string) {
		var job service.ResetEmailJob
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			log.Printf("dropping malformed reset job: %v", err)
			return
		}
		if err := service.SendResetEmail(sender, job); err != nil {
			log.Printf("failed to send reset email to %s: %v", job.Email, err)
			return
		}
		log.Printf("reset email sent to %s", job.Email)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to %s: %v", service.ResetJobChannel, err)
	}

	go func() {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pruneCtx, pruneCancel := context.WithTimeout(ctx, 30*time.Second)
				n, err := resetRepo.DeleteExpired(pruneCtx)
				pruneCancel()
				if err != nil {
					log.Printf("failed to prune expired reset tokens: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("pruned %d expired reset tokens", n)
				}
			}
		}
	}()

	log.Printf("Reset worker listening on %q", service.ResetJobChannel)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Reset worker shutting down...")
	cancel()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
}
