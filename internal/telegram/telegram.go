package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stupiduntilnot/codemate/internal/transport"
)

// Client is a minimal Telegram Bot API client.
type Client struct {
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a Telegram client for the given bot API base URL
// (e.g. "https://api.telegram.org/bot<token>").
func NewClient(apiBase string, requestTimeout time.Duration) *Client {
	return &Client{
		apiBase: apiBase,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Response is the generic Telegram API response wrapper.
type Response struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

type tgRawUpdate struct {
	UpdateID      int64              `json:"update_id"`
	Message       *transport.Message `json:"message,omitempty"`
	CallbackQuery *tgCallbackQuery   `json:"callback_query,omitempty"`
}

type tgCallbackQuery struct {
	ID      string             `json:"id"`
	Data    string             `json:"data"`
	From    *transport.User    `json:"from,omitempty"`
	Message *transport.Message `json:"message,omitempty"`
}

type replyMarkup struct {
	InlineKeyboard [][]transport.Button `json:"inline_keyboard"`
}

type sendMessagePayload struct {
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type sendPhotoPayload struct {
	ChatID      int64        `json:"chat_id"`
	Photo       string       `json:"photo"`
	Caption     string       `json:"caption,omitempty"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type sendChatActionPayload struct {
	ChatID int64  `json:"chat_id"`
	Action string `json:"action"`
}

// GetUpdates calls the getUpdates API. Callback-button presses arrive as
// callback queries; they are folded into ordinary updates whose message text
// is the button data, and the query is acknowledged so the client stops
// showing a spinner.
func (c *Client) GetUpdates(offset int64, timeout int) ([]transport.Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeout))

	resp, err := c.httpClient.Get(c.apiBase + "/getUpdates?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read getUpdates response: %w", err)
	}

	var tgResp Response
	if err := json.Unmarshal(body, &tgResp); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates response: %w", err)
	}

	if !tgResp.OK {
		return nil, nil
	}

	var raws []tgRawUpdate
	if err := json.Unmarshal(tgResp.Result, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates result: %w", err)
	}
	updates := make([]transport.Update, 0, len(raws))
	for _, ru := range raws {
		if ru.Message != nil {
			updates = append(updates, transport.Update{UpdateID: ru.UpdateID, Message: ru.Message})
			continue
		}
		if ru.CallbackQuery != nil && ru.CallbackQuery.Message != nil {
			msg := *ru.CallbackQuery.Message
			data := strings.TrimSpace(ru.CallbackQuery.Data)
			msg.Text = &data
			msg.Callback = true
			if ru.CallbackQuery.From != nil {
				msg.From = ru.CallbackQuery.From
			}
			if msg.Date == 0 {
				msg.Date = time.Now().Unix()
			}
			updates = append(updates, transport.Update{UpdateID: ru.UpdateID, Message: &msg})
			_ = c.answerCallbackQuery(ru.CallbackQuery.ID)
		}
	}
	return updates, nil
}

// SendMessage sends a text message to the given chat, optionally with an
// inline keyboard.
func (c *Client) SendMessage(chatID int64, text string, buttons [][]transport.Button) error {
	payload := sendMessagePayload{
		ChatID: chatID,
		Text:   truncate(text, 3900),
	}
	if len(buttons) > 0 {
		payload.ReplyMarkup = &replyMarkup{InlineKeyboard: buttons}
	}
	return c.post("/sendMessage", payload)
}

// SendPhoto sends a photo by URL with an optional caption and inline keyboard.
func (c *Client) SendPhoto(chatID int64, photoURL, caption string, buttons [][]transport.Button) error {
	payload := sendPhotoPayload{
		ChatID:  chatID,
		Photo:   photoURL,
		Caption: truncate(caption, 1000),
	}
	if len(buttons) > 0 {
		payload.ReplyMarkup = &replyMarkup{InlineKeyboard: buttons}
	}
	return c.post("/sendPhoto", payload)
}

// SendChatAction reports a pending action ("typing", "upload_photo") to the chat.
func (c *Client) SendChatAction(chatID int64, action string) error {
	return c.post("/sendChatAction", sendChatActionPayload{ChatID: chatID, Action: action})
}

func (c *Client) post(method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram %s payload: %w", method, err)
	}
	resp, err := c.httpClient.Post(
		c.apiBase+method,
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()
	_, _ = io.ReadAll(resp.Body) // drain
	return nil
}

func (c *Client) answerCallbackQuery(callbackID string) error {
	callbackID = strings.TrimSpace(callbackID)
	if callbackID == "" {
		return nil
	}
	payload := fmt.Sprintf(`{"callback_query_id":%s}`, jsonString(callbackID))
	resp, err := c.httpClient.Post(
		c.apiBase+"/answerCallbackQuery",
		"application/json",
		strings.NewReader(payload),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.ReadAll(resp.Body)
	return nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
