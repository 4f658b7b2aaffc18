package image

import (
	"log"
	"strings"
)

// qualityKeywords mark prompts that already ask for a polished result.
var qualityKeywords = []string{"high quality", "detailed", "professional", "beautiful", "stunning"}

const (
	qualitySuffix  = ", high quality, detailed"
	maxPromptChars = 1000
)

// Backend is the image-generation backend abstraction.
type Backend interface {
	GenerateImage(prompt, size string) (string, error)
}

// Generator wraps the image backend with prompt normalization. It keeps no
// state between requests.
type Generator struct {
	backend Backend
	size    string
}

// NewGenerator creates a Generator requesting images at the given size.
func NewGenerator(backend Backend, size string) *Generator {
	return &Generator{backend: backend, size: size}
}

// Generate normalizes the prompt and requests one image, returning its URL.
// An empty string means generation failed and the user should retry.
func (g *Generator) Generate(prompt string) string {
	url, err := g.backend.GenerateImage(EnhancePrompt(prompt), g.size)
	if err != nil {
		log.Printf("image generation failed: %v", err)
		return ""
	}
	return url
}

// EnhancePrompt appends a fixed quality suffix unless the prompt already
// contains a quality keyword, then truncates to the backend's prompt limit.
func EnhancePrompt(prompt string) string {
	lower := strings.ToLower(prompt)
	hasKeyword := false
	for _, word := range qualityKeywords {
		if strings.Contains(lower, word) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		prompt += qualitySuffix
	}
	return truncate(prompt, maxPromptChars)
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
