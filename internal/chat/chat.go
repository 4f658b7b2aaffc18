package chat

import (
	"errors"
	"log"

	"github.com/stupiduntilnot/codemate/internal/conversation"
	"github.com/stupiduntilnot/codemate/internal/openai"
)

// Fixed replies for classified backend failures.
const (
	RateLimitReply    = "The assistant is receiving too many requests right now. Please try again in a minute."
	AuthErrorReply    = "The assistant is misconfigured (API authentication failed). Please contact the operator."
	GenericErrorReply = "Something went wrong while talking to the assistant. Please try again."
)

// Completer is the text-completion backend abstraction.
type Completer interface {
	ChatCompletion(turns []conversation.Turn) (string, error)
}

// Responder bridges the conversation store and the completion backend.
type Responder struct {
	store     conversation.Store
	completer Completer
}

// NewResponder creates a Responder.
func NewResponder(store conversation.Store, completer Completer) *Responder {
	return &Responder{store: store, completer: completer}
}

// Respond appends message as a user turn, submits the full history to the
// backend, appends the result as an assistant turn and returns it with
// ok=true. On failure it returns a fixed user-facing reply with ok=false;
// the user turn already appended is kept (the failed exchange stays in
// history without a paired assistant turn).
func (r *Responder) Respond(userID int64, message string) (string, bool) {
	r.store.Append(userID, conversation.RoleUser, message)

	reply, err := r.completer.ChatCompletion(r.store.GetOrCreate(userID))
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Kind {
			case openai.KindRateLimited:
				return RateLimitReply, false
			case openai.KindAuthFailed:
				return AuthErrorReply, false
			}
		}
		log.Printf("chat completion failed user_id=%d: %v", userID, err)
		return GenericErrorReply, false
	}

	r.store.Append(userID, conversation.RoleAssistant, reply)
	return reply, true
}

// Clear resets the user's conversation to the single system turn.
func (r *Responder) Clear(userID int64) {
	r.store.Reset(userID)
}

// HistoryLength returns the number of non-system turns for the user.
func (r *Responder) HistoryLength(userID int64) int {
	return r.store.Length(userID)
}
