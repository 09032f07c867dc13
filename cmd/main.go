// Copyright (c) 2026, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
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

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/nevaNews/internal/config"
	"github.com/0x0BSoD/nevaNews/internal/notifier"
	"github.com/0x0BSoD/nevaNews/internal/reporter"
	"github.com/0x0BSoD/nevaNews/internal/source"
	"github.com/0x0BSoD/nevaNews/internal/storage"
	"github.com/0x0BSoD/nevaNews/internal/summary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("[ERROR] failed to load config: %v", err)
		return
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Printf("[ERROR] failed to create botAPI: %v", err)
		return
	}

	store, err := storage.New(cfg.StoragePath, cfg.MaxPostsCount, cfg.MaxPostAge, cfg.MaxStorageSizeMB*1024*1024)
	if err != nil {
		log.Printf("[ERROR] failed to initialize storage: %v", err)
		return
	}

	rotated, err := store.RotateIfOversized(time.Now())
	if err != nil {
		log.Printf("[ERROR] failed to rotate storage: %v", err)
	} else if rotated {
		log.Printf("[INFO] storage rotated, backup created next to %s", store.Path())
	}

	var newsSource notifier.Source
	switch cfg.SourceType {
	case "rss":
		newsSource = source.NewRSSSource(cfg.SourceURL)
		log.Printf("[INFO] using RSS source: %s", cfg.SourceURL)
	default:
		newsSource = source.NewHTMLSource(cfg.SourceURL, cfg.SourcePath)
		log.Printf("[INFO] using HTML source: %s%s", cfg.SourceURL, cfg.SourcePath)
	}

	var summarizer notifier.Summarizer
	switch cfg.AIType {
	case "openai":
		if cfg.AIKey == "" {
			log.Printf("[ERROR] ai_key is required when ai_type is \"openai\"")
			return
		}
		summarizer = summary.NewOpenAISummarizer(cfg.AIBaseURL, cfg.AIKey, cfg.AIPrompt, cfg.AIModel, cfg.AITimeout)
		log.Printf("[INFO] using OpenAI-compatible summarizer (model: %s)", cfg.AIModel)
	case "ollama":
		if cfg.AIBaseURL == "" {
			log.Printf("[ERROR] ai_base_url is required when ai_type is \"ollama\"")
			return
		}
		summarizer = summary.NewOllamaSummarizer(cfg.AIBaseURL, cfg.AIPrompt, cfg.AIModel, cfg.AITimeout)
		log.Printf("[INFO] using Ollama summarizer (model: %s)", cfg.AIModel)
	default:
		log.Printf("[INFO] summarizer disabled")
	}

	newsNotifier := notifier.New(
		newsSource,
		store,
		botAPI,
		summarizer,
		reporter.New(botAPI, cfg.TelegramAdminChatID),
		notifier.Options{
			ChannelID:        cfg.TelegramChannelID,
			PollInterval:     cfg.PollInterval,
			SendDelay:        cfg.SendDelay,
			MaxPostAge:       cfg.MaxPostAge,
			MaxPostsCount:    cfg.MaxPostsCount,
			MaxMessageLength: cfg.MaxMessageLength,
			SummaryMinChars:  cfg.AIMinChars,
		},
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := http.ListenAndServe("127.0.0.1:8088", mux); err != nil {
			log.Printf("[ERROR] failed to run http server: %v", err)
		}
	}()

	if err := newsNotifier.Start(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[ERROR] failed to run notifier: %v", err)
		} else {
			log.Printf("[INFO] notifier stopped")
		}
	}

	store.CleanupOldBackups(cfg.BackupMaxAge)
}
