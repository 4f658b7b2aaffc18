package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultSystemPrompt is the behavioral instruction the assistant persona is
// seeded with. It is never shown to the end user.
const DefaultSystemPrompt = "You are a smart and friendly AI assistant inside a Telegram bot, dedicated exclusively to helping with programming. " +
	"You explain code, help write functions, find and fix bugs, and give advice on programming languages. " +
	"Answer clearly and in a bit of depth so the user understands the topic, but avoid filler. " +
	"Give code examples and explain step by step when useful. " +
	"Do not discuss topics unrelated to programming, and do not help write or spread malicious, illegal or dangerous code. " +
	"If a question is outside your specialty, politely decline and remind the user what you can help with. " +
	"You know Python, JavaScript, Java, C++, C#, HTML, CSS, Dart, TypeScript, Go and other popular languages well."

// Config holds process configuration read from environment variables.
type Config struct {
	TelegramAPIBase     string
	Timeout             int
	SleepSeconds        int
	OpenAIAPIKey        string
	ChatCompletionsURL  string
	ImageGenerationsURL string
	ChatModel           string
	ImageModel          string
	SystemPrompt        string
	StoreBackend        string
	UsersPath           string
	DBPath              string
	OptionsPath         string
}

// LoadConfig reads configuration from environment variables. Missing
// credentials are a fatal startup error.
func LoadConfig() (Config, error) {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required in environment")
	}
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required in environment")
	}

	backend := envOrDefault("BOT_STORE_BACKEND", "json")
	if backend != "json" && backend != "sqlite" {
		return Config{}, fmt.Errorf("BOT_STORE_BACKEND must be json or sqlite, got %q", backend)
	}

	return Config{
		TelegramAPIBase:     fmt.Sprintf("https://api.telegram.org/bot%s", botToken),
		Timeout:             envIntOrDefault("TG_TIMEOUT", 30),
		SleepSeconds:        envIntOrDefault("TG_SLEEP_SECONDS", 1),
		OpenAIAPIKey:        openaiKey,
		ChatCompletionsURL:  envOrDefault("OPENAI_CHAT_COMPLETIONS_URL", "https://api.openai.com/v1/chat/completions"),
		ImageGenerationsURL: envOrDefault("OPENAI_IMAGE_GENERATIONS_URL", "https://api.openai.com/v1/images/generations"),
		ChatModel:           envOrDefault("OPENAI_CHAT_MODEL", "gpt-4.1"),
		ImageModel:          envOrDefault("OPENAI_IMAGE_MODEL", "dall-e-3"),
		SystemPrompt:        envOrDefault("BOT_SYSTEM_PROMPT", DefaultSystemPrompt),
		StoreBackend:        backend,
		UsersPath:           envOrDefault("BOT_USERS_PATH", "users.json"),
		DBPath:              envOrDefault("BOT_DB_PATH", "bot.db"),
		OptionsPath:         envOrDefault("BOT_OPTIONS_PATH", "config.json"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
