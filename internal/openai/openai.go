package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stupiduntilnot/codemate/internal/conversation"
)

// ErrorKind classifies backend failures so callers can branch explicitly.
type ErrorKind string

const (
	KindRateLimited ErrorKind = "rate_limited"
	KindAuthFailed  ErrorKind = "auth_failed"
	KindOther       ErrorKind = "other"
)

// APIError is a classified backend failure.
type APIError struct {
	Kind   ErrorKind
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai %s status=%d detail=%s", e.Kind, e.Status, e.Detail)
}

// Client is a minimal OpenAI chat-completions and image-generations client.
type Client struct {
	apiKey     string
	chatURL    string
	imageURL   string
	chatModel  string
	imageModel string
	httpClient *http.Client
}

// NewClient creates an OpenAI client.
func NewClient(apiKey, chatURL, imageURL, chatModel, imageModel string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		chatURL:    chatURL,
		imageURL:   imageURL,
		chatModel:  chatModel,
		imageModel: imageModel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []conversation.Turn `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float32             `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
	N       int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// ChatCompletion submits the full turn sequence and returns the assistant text.
func (c *Client) ChatCompletion(turns []conversation.Turn) (string, error) {
	reqBody := chatRequest{
		Model:       c.chatModel,
		Messages:    turns,
		MaxTokens:   1000,
		Temperature: 0.7,
	}
	body, err := c.post(c.chatURL, reqBody)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &APIError{Kind: KindOther, Detail: "unparseable response: " + truncate(string(body), 400)}
	}
	if len(parsed.Choices) == 0 {
		return "", &APIError{Kind: KindOther, Detail: "no choices in response"}
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", &APIError{Kind: KindOther, Detail: "empty completion content"}
	}
	return content, nil
}

// GenerateImage requests exactly one image at the given size and returns its URL.
func (c *Client) GenerateImage(prompt, size string) (string, error) {
	reqBody := imageRequest{
		Model:   c.imageModel,
		Prompt:  prompt,
		Size:    size,
		Quality: "standard",
		N:       1,
	}
	body, err := c.post(c.imageURL, reqBody)
	if err != nil {
		return "", err
	}

	var parsed imageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &APIError{Kind: KindOther, Detail: "unparseable response: " + truncate(string(body), 400)}
	}
	if len(parsed.Data) == 0 || strings.TrimSpace(parsed.Data[0].URL) == "" {
		return "", &APIError{Kind: KindOther, Detail: "no image in response"}
	}
	return parsed.Data[0].URL, nil
}

func (c *Client) post(url string, reqBody any) ([]byte, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &APIError{Kind: KindOther, Detail: "marshal request: " + err.Error()}
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &APIError{Kind: KindOther, Detail: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindOther, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindOther, Detail: "read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Kind:   classifyStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Detail: truncate(string(body), 400),
		}
	}
	return body, nil
}

func classifyStatus(status int) ErrorKind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthFailed
	default:
		return KindOther
	}
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
