package main

import (
	"log"
	"time"

	"github.com/stupiduntilnot/codemate/internal/bot"
	"github.com/stupiduntilnot/codemate/internal/chat"
	"github.com/stupiduntilnot/codemate/internal/config"
	"github.com/stupiduntilnot/codemate/internal/conversation"
	"github.com/stupiduntilnot/codemate/internal/db"
	"github.com/stupiduntilnot/codemate/internal/image"
	"github.com/stupiduntilnot/codemate/internal/openai"
	"github.com/stupiduntilnot/codemate/internal/telegram"
	"github.com/stupiduntilnot/codemate/internal/usage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}

	opts, err := config.LoadOptions(cfg.OptionsPath)
	if err != nil {
		log.Printf("[bot] options load problem, using defaults where needed: %v", err)
	}

	store, err := newUsageStore(&cfg)
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}
	ledger := usage.NewLedger(store)

	backend := openai.NewClient(
		cfg.OpenAIAPIKey,
		cfg.ChatCompletionsURL,
		cfg.ImageGenerationsURL,
		cfg.ChatModel,
		cfg.ImageModel,
		120*time.Second,
	)
	conversations := conversation.NewMemoryStore(cfg.SystemPrompt, opts.MaxHistoryLength)
	responder := chat.NewResponder(conversations, backend)
	generator := image.NewGenerator(backend, opts.DefaultImageSize())

	transportClient := telegram.NewClient(cfg.TelegramAPIBase, time.Duration(cfg.Timeout+20)*time.Second)

	router := bot.NewRouter(
		transportClient,
		responder,
		generator,
		ledger,
		opts,
		cfg.Timeout,
		time.Duration(cfg.SleepSeconds)*time.Second,
	)

	log.Printf(
		"bot running chat_model=%s image_model=%s store=%s history_cap=%d",
		cfg.ChatModel,
		cfg.ImageModel,
		cfg.StoreBackend,
		opts.MaxHistoryLength,
	)

	router.Run()
}

func newUsageStore(cfg *config.Config) (usage.Store, error) {
	if cfg.StoreBackend == "sqlite" {
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := db.InitSchema(database); err != nil {
			return nil, err
		}
		return usage.NewSQLiteStore(database), nil
	}
	return usage.NewFileStore(cfg.UsersPath), nil
}
