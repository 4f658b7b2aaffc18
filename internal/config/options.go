package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// RateLimits caps per-user request rates. Values <= 0 disable the limit.
type RateLimits struct {
	MessagesPerMinute int `json:"messages_per_minute"`
	ImagesPerHour     int `json:"images_per_hour"`
}

// Features toggles optional bot functionality.
type Features struct {
	ImageGeneration bool `json:"image_generation"`
	ChatHistory     bool `json:"chat_history"`
	UserStats       bool `json:"user_stats"`
}

// Options holds file-backed tunables.
type Options struct {
	MaxMessageLength    int        `json:"max_message_length"`
	MaxHistoryLength    int        `json:"max_history_length"`
	ImageSizes          []string   `json:"image_sizes"`
	AllowedImageFormats []string   `json:"allowed_image_formats"`
	RateLimits          RateLimits `json:"rate_limits"`
	Features            Features   `json:"features"`
}

// DefaultOptions returns the built-in tunables.
func DefaultOptions() Options {
	return Options{
		MaxMessageLength:    4000,
		MaxHistoryLength:    20,
		ImageSizes:          []string{"256x256", "512x512", "1024x1024"},
		AllowedImageFormats: []string{"png", "jpg", "jpeg"},
		RateLimits: RateLimits{
			MessagesPerMinute: 10,
			ImagesPerHour:     5,
		},
		Features: Features{
			ImageGeneration: true,
			ChatHistory:     true,
			UserStats:       true,
		},
	}
}

// DefaultImageSize returns the size used for image requests (the largest
// configured size).
func (o Options) DefaultImageSize() string {
	if len(o.ImageSizes) == 0 {
		return "1024x1024"
	}
	return o.ImageSizes[len(o.ImageSizes)-1]
}

// LoadOptions reads tunables from the JSON file at path. A missing file is
// created with the defaults. Present top-level keys override the defaults
// one level deep: a present nested object replaces the whole default one.
// A corrupt file falls back to the defaults.
func LoadOptions(path string) (Options, error) {
	defaults := DefaultOptions()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if saveErr := SaveOptions(path, defaults); saveErr != nil {
			return defaults, saveErr
		}
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("read options file %s: %w", path, err)
	}

	var overrides map[string]json.RawMessage
	if err := json.Unmarshal(data, &overrides); err != nil {
		return defaults, fmt.Errorf("parse options file %s: %w", path, err)
	}

	base, err := json.Marshal(defaults)
	if err != nil {
		return defaults, fmt.Errorf("marshal default options: %w", err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return defaults, fmt.Errorf("remap default options: %w", err)
	}
	for key, value := range overrides {
		merged[key] = value
	}

	combined, err := json.Marshal(merged)
	if err != nil {
		return defaults, fmt.Errorf("merge options: %w", err)
	}
	var opts Options
	if err := json.Unmarshal(combined, &opts); err != nil {
		return defaults, fmt.Errorf("apply options overrides from %s: %w", path, err)
	}
	return opts, nil
}

// SaveOptions writes the tunables to the JSON file at path.
func SaveOptions(path string, opts Options) error {
	data, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write options file %s: %w", path, err)
	}
	return nil
}
