package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type Bot struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	store      WordStore
	dictionary Dictionary
	twitter    SocialClient
	composer   *Composer
	config     *Config
	logger     *slog.Logger
}

func NewBot(store WordStore, dictionary Dictionary, twitter SocialClient, config *Config, logger *slog.Logger) *Bot {
	ctx, cancel := context.WithCancel(context.Background())

	return &Bot{
		ctx:        ctx,
		cancel:     cancel,
		store:      store,
		dictionary: dictionary,
		twitter:    twitter,
		composer:   NewComposer(config.ComposerConfig()),
		config:     config,
		logger:     logger,
	}
}

// Start launches the daily posting scheduler and the periodic pruner.
func (b *Bot) Start() {
	b.logger.Info("Starting Mandarin tweet bot...")

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runScheduler()
	}()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runPruner()
	}()

	b.logger.Info("Bot started successfully")
}

func (b *Bot) Stop() {
	b.logger.Info("Shutting down bot...")

	done := make(chan struct{})
	go func() {
		b.cancel()
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("All workers completed gracefully")
	case <-time.After(2 * time.Minute):
		b.logger.Warn("Shutdown timeout reached, forcing shutdown", "timeout", "2m")
	}

	b.logger.Info("Bot stopped")
}

func (b *Bot) runScheduler() {
	b.logger.Info("Starting scheduler...", "post_time", b.config.PostTime)

	for {
		next := nextRunAt(time.Now(), b.config.PostTime)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-b.ctx.Done():
			timer.Stop()
			b.logger.Info("Scheduler shutting down...")
			return
		case <-timer.C:
			if err := b.PostWithRetry(b.ctx); err != nil {
				switch {
				case errors.Is(err, ErrDailyLimitReached), errors.Is(err, ErrNoWordsLeft):
					b.logger.Warn("Skipping scheduled post", "reason", err)
				default:
					b.logger.Error("Scheduled post failed", "error", err)
				}
			}
		}
	}
}

func (b *Bot) runPruner() {
	b.logger.Info("Starting pruner...", "interval", b.config.PruneInterval)

	ticker := time.NewTicker(b.config.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			b.logger.Info("Pruner shutting down...")
			return
		case <-ticker.C:
			if _, err := b.PruneDeletedTweets(b.ctx, pruneBatchSize); err != nil {
				b.logger.Error("Error pruning deleted tweets", "error", err)
			}
		}
	}
}
