// Package dummy provides scripted stand-ins for the transport and the AI
// backend, driven by small comma-separated action scripts. Used by loop-level
// tests that exercise the router without the network.
package dummy

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/stupiduntilnot/codemate/internal/conversation"
	"github.com/stupiduntilnot/codemate/internal/openai"
	"github.com/stupiduntilnot/codemate/internal/transport"
)

type action struct {
	kind string
	arg  string
}

func parseScript(script string) ([]action, error) {
	if strings.TrimSpace(script) == "" {
		return []action{{kind: "ok"}}, nil
	}
	parts := strings.Split(script, ",")
	actions := make([]action, 0, len(parts))
	for _, p := range parts {
		token := strings.TrimSpace(p)
		if token == "" {
			continue
		}
		if token == "ok" {
			actions = append(actions, action{kind: "ok"})
			continue
		}
		kind, arg, found := strings.Cut(token, ":")
		if !found {
			return nil, fmt.Errorf("invalid dummy action: %s", token)
		}
		switch kind {
		case "err", "msg", "cb", "img", "rate", "auth":
			actions = append(actions, action{kind: kind, arg: arg})
		default:
			return nil, fmt.Errorf("invalid dummy action: %s", token)
		}
	}
	if len(actions) == 0 {
		actions = append(actions, action{kind: "ok"})
	}
	return actions, nil
}

type scriptRunner struct {
	actions []action
	index   int
}

func newRunner(script string) (*scriptRunner, error) {
	actions, err := parseScript(script)
	if err != nil {
		return nil, err
	}
	return &scriptRunner{actions: actions}, nil
}

func (r *scriptRunner) next() action {
	if len(r.actions) == 0 {
		return action{kind: "ok"}
	}
	if r.index >= len(r.actions) {
		return r.actions[len(r.actions)-1]
	}
	a := r.actions[r.index]
	r.index++
	return a
}

// SentMessage is one outbound payload recorded by the dummy transport.
type SentMessage struct {
	ChatID   int64
	Text     string
	PhotoURL string
	Caption  string
	Buttons  [][]transport.Button
}

// Transport is a scripted transport.Transport. The poll script controls what
// GetUpdates yields: "ok" (nothing), "msg:text" (a user message from chat 1),
// "cb:data" (a callback press), "err:reason". Outbound sends always succeed
// and are recorded for assertions.
type Transport struct {
	mu       sync.Mutex
	poll     *scriptRunner
	updateID int64

	Sent    []SentMessage
	Actions []string
}

// NewTransport creates a Transport from a poll script.
func NewTransport(pollScript string) (*Transport, error) {
	poll, err := newRunner(pollScript)
	if err != nil {
		return nil, err
	}
	return &Transport{poll: poll, updateID: 1}, nil
}

func (t *Transport) GetUpdates(offset int64, timeout int) ([]transport.Update, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a := t.poll.next()
	switch a.kind {
	case "err":
		return nil, fmt.Errorf("dummy transport error: %s", a.arg)
	case "msg", "cb":
		text := a.arg
		t.updateID++
		return []transport.Update{
			{
				UpdateID: t.updateID,
				Message: &transport.Message{
					Chat:     transport.Chat{ID: 1},
					From:     &transport.User{ID: 1, Username: "tester"},
					Text:     &text,
					Date:     time.Now().Unix(),
					Callback: a.kind == "cb",
				},
			},
		}, nil
	default:
		return nil, nil
	}
}

func (t *Transport) SendMessage(chatID int64, text string, buttons [][]transport.Button) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Sent = append(t.Sent, SentMessage{ChatID: chatID, Text: text, Buttons: buttons})
	return nil
}

func (t *Transport) SendPhoto(chatID int64, photoURL, caption string, buttons [][]transport.Button) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Sent = append(t.Sent, SentMessage{ChatID: chatID, PhotoURL: photoURL, Caption: caption, Buttons: buttons})
	return nil
}

func (t *Transport) SendChatAction(chatID int64, actionName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Actions = append(t.Actions, actionName)
	return nil
}

// Backend is a scripted AI backend implementing both the completion and the
// image interfaces. Chat script actions: "msg:reply", "rate:", "auth:",
// "err:detail". Image script actions: "img:url", "rate:", "auth:", "err:detail".
type Backend struct {
	mu    sync.Mutex
	chat  *scriptRunner
	image *scriptRunner
}

// NewBackend creates a Backend from chat and image scripts.
func NewBackend(chatScript, imageScript string) (*Backend, error) {
	chatRunner, err := newRunner(chatScript)
	if err != nil {
		return nil, err
	}
	imageRunner, err := newRunner(imageScript)
	if err != nil {
		return nil, err
	}
	return &Backend{chat: chatRunner, image: imageRunner}, nil
}

func (b *Backend) ChatCompletion(turns []conversation.Turn) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.chat.next()
	switch a.kind {
	case "msg":
		return a.arg, nil
	case "rate":
		return "", &openai.APIError{Kind: openai.KindRateLimited, Status: http.StatusTooManyRequests}
	case "auth":
		return "", &openai.APIError{Kind: openai.KindAuthFailed, Status: http.StatusUnauthorized}
	case "err":
		return "", &openai.APIError{Kind: openai.KindOther, Detail: a.arg}
	default:
		return "dummy-ok", nil
	}
}

func (b *Backend) GenerateImage(prompt, size string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.image.next()
	switch a.kind {
	case "img":
		return a.arg, nil
	case "rate":
		return "", &openai.APIError{Kind: openai.KindRateLimited, Status: http.StatusTooManyRequests}
	case "auth":
		return "", &openai.APIError{Kind: openai.KindAuthFailed, Status: http.StatusUnauthorized}
	case "err":
		return "", &openai.APIError{Kind: openai.KindOther, Detail: a.arg}
	default:
		return "https://example.com/dummy.png", nil
	}
}
