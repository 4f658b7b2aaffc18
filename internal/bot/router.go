package bot

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/stupiduntilnot/codemate/internal/chat"
	"github.com/stupiduntilnot/codemate/internal/config"
	"github.com/stupiduntilnot/codemate/internal/image"
	"github.com/stupiduntilnot/codemate/internal/ratelimit"
	"github.com/stupiduntilnot/codemate/internal/transport"
	"github.com/stupiduntilnot/codemate/internal/usage"
)

// Mode is the per-chat conversation mode assigned by the menu.
type Mode int

const (
	ModeIdle Mode = iota
	ModeChatting
	ModeImagePrompt
)

// Callback data for menu buttons.
const (
	cbChatAI        = "chat_ai"
	cbGenerateImage = "generate_image"
	cbStats         = "stats"
	cbClearHistory  = "clear_history"
	cbBackToMenu    = "back_to_menu"
)

// User-facing replies that do not depend on handler state.
const (
	chatModeText       = "💬 Chat mode activated.\n\nSend me a message and I will answer with AI.\nUse /start to return to the menu."
	imageModeText      = "🎨 Image generation mode activated.\n\nDescribe the image you want to create.\nFor example: \"a cat in space among the stars\"\n\nUse /start to return to the menu."
	historyClearedText = "🔄 Chat history cleared.\n\nThe AI no longer remembers previous messages."
	mainMenuText       = "🏠 Main menu\n\nChoose an action:"
	unknownText        = "🤔 Choose an action from the menu or use the commands."
	imageFailedText    = "❌ Could not create the image. Try changing the description."
	messageLimitText   = "⏳ You are sending messages too fast. Please wait a minute."
	imageLimitText     = "⏳ Image limit reached for this hour. Please try again later."
	tooLongText        = "✂️ That message is too long. Please shorten it and try again."
	disabledText       = "🚫 This feature is currently disabled."
)

// Router routes inbound updates to the chat and image clients and renders
// the menu. Modes are tracked in memory per chat.
type Router struct {
	transport   transport.Transport
	responder   *chat.Responder
	generator   *image.Generator
	ledger      *usage.Ledger
	opts        config.Options
	msgLimiter  *ratelimit.Limiter
	imgLimiter  *ratelimit.Limiter
	pollTimeout int
	sleep       time.Duration
	modes       map[int64]Mode
	now         func() time.Time
}

// NewRouter creates a Router.
func NewRouter(
	tr transport.Transport,
	responder *chat.Responder,
	generator *image.Generator,
	ledger *usage.Ledger,
	opts config.Options,
	pollTimeout int,
	sleep time.Duration,
) *Router {
	return &Router{
		transport:   tr,
		responder:   responder,
		generator:   generator,
		ledger:      ledger,
		opts:        opts,
		msgLimiter:  ratelimit.NewLimiter(opts.RateLimits.MessagesPerMinute, time.Minute),
		imgLimiter:  ratelimit.NewLimiter(opts.RateLimits.ImagesPerHour, time.Hour),
		pollTimeout: pollTimeout,
		sleep:       sleep,
		modes:       make(map[int64]Mode),
		now:         time.Now,
	}
}

// Run polls the transport forever, handling each update in turn. A failing
// update never stops the loop.
func (r *Router) Run() {
	var offset int64
	for {
		updates, err := r.transport.GetUpdates(offset, r.pollTimeout)
		if err != nil {
			log.Printf("getUpdates error: %v", err)
			time.Sleep(r.sleep)
			continue
		}
		for _, update := range updates {
			offset = update.UpdateID + 1
			r.HandleUpdate(update)
		}
		if len(updates) == 0 {
			time.Sleep(r.sleep)
		}
	}
}

// HandleUpdate dispatches one inbound update. Commands and callback-button
// data are handled directly; free text is routed by the chat's current mode.
func (r *Router) HandleUpdate(update transport.Update) {
	msg := update.Message
	if msg == nil || msg.Text == nil {
		return
	}
	text := strings.TrimSpace(*msg.Text)
	if text == "" {
		return
	}

	chatID := msg.Chat.ID
	userID := chatID
	if msg.From != nil {
		userID = msg.From.ID
	}

	if strings.HasPrefix(text, "/") {
		r.handleCommand(chatID, userID, msg.From.DisplayName(), text)
		return
	}
	if msg.Callback {
		r.handleCallback(chatID, userID, text)
		return
	}

	switch r.modes[chatID] {
	case ModeChatting:
		r.handleChatMessage(chatID, userID, text)
	case ModeImagePrompt:
		r.handleImagePrompt(chatID, userID, text)
	default:
		r.reply(chatID, unknownText, r.mainMenu())
	}
}

func (r *Router) handleCommand(chatID, userID int64, displayName, text string) {
	command := text
	if i := strings.IndexByte(command, ' '); i >= 0 {
		command = command[:i]
	}
	switch command {
	case "/start":
		r.ledger.Register(userID, displayName)
		r.modes[chatID] = ModeIdle
		r.reply(chatID, welcomeText(displayName), r.mainMenu())
	case "/help":
		r.reply(chatID, helpText(), r.mainMenu())
	case "/stats":
		r.sendStats(chatID, userID, r.mainMenu())
	case "/clear":
		r.clearHistory(chatID, userID, r.mainMenu())
	default:
		r.reply(chatID, unknownText, r.mainMenu())
	}
}

func (r *Router) handleCallback(chatID, userID int64, data string) {
	switch data {
	case cbChatAI:
		r.modes[chatID] = ModeChatting
		r.reply(chatID, chatModeText, nil)
	case cbGenerateImage:
		if !r.opts.Features.ImageGeneration {
			r.reply(chatID, disabledText, r.mainMenu())
			return
		}
		r.modes[chatID] = ModeImagePrompt
		r.reply(chatID, imageModeText, nil)
	case cbStats:
		r.sendStats(chatID, userID, r.backMenu())
	case cbClearHistory:
		r.clearHistory(chatID, userID, r.mainMenu())
	case cbBackToMenu:
		r.modes[chatID] = ModeIdle
		r.reply(chatID, mainMenuText, r.mainMenu())
	default:
		r.reply(chatID, unknownText, r.mainMenu())
	}
}

func (r *Router) handleChatMessage(chatID, userID int64, text string) {
	if r.opts.MaxMessageLength > 0 && len([]rune(text)) > r.opts.MaxMessageLength {
		r.reply(chatID, tooLongText, r.backMenu())
		return
	}
	if !r.msgLimiter.Allow(userID, r.now()) {
		r.reply(chatID, messageLimitText, r.backMenu())
		return
	}

	if err := r.transport.SendChatAction(chatID, transport.ActionTyping); err != nil {
		log.Printf("sendChatAction error chat_id=%d: %v", chatID, err)
	}

	reply, ok := r.responder.Respond(userID, text)
	if !ok {
		r.reply(chatID, reply, r.mainMenu())
		return
	}
	r.ledger.RecordMessage(userID)
	r.reply(chatID, reply, r.backMenu())
}

func (r *Router) handleImagePrompt(chatID, userID int64, prompt string) {
	if !r.opts.Features.ImageGeneration {
		r.reply(chatID, disabledText, r.mainMenu())
		return
	}
	if !r.imgLimiter.Allow(userID, r.now()) {
		r.reply(chatID, imageLimitText, r.backMenu())
		return
	}

	if err := r.transport.SendChatAction(chatID, transport.ActionUploadPhoto); err != nil {
		log.Printf("sendChatAction error chat_id=%d: %v", chatID, err)
	}

	imageURL := r.generator.Generate(prompt)
	if imageURL == "" {
		r.reply(chatID, imageFailedText, r.mainMenu())
		return
	}
	r.ledger.RecordImage(userID)
	caption := fmt.Sprintf("🎨 Image ready!\n\nPrompt: %s", prompt)
	if err := r.transport.SendPhoto(chatID, imageURL, caption, r.imageDoneMenu()); err != nil {
		log.Printf("sendPhoto error chat_id=%d: %v", chatID, err)
	}
}

func (r *Router) sendStats(chatID, userID int64, buttons [][]transport.Button) {
	if !r.opts.Features.UserStats {
		r.reply(chatID, disabledText, r.mainMenu())
		return
	}
	rec := r.ledger.Stats(userID)
	text := fmt.Sprintf(
		"📊 Your statistics:\n\n💬 Chat messages: %d\n🎨 Images created: %d\n📅 Registered: %s\n🕒 Last activity: %s",
		rec.MessagesSent, rec.ImagesGenerated, rec.RegistrationDate, rec.LastActivity,
	)
	r.reply(chatID, text, buttons)
}

func (r *Router) clearHistory(chatID, userID int64, buttons [][]transport.Button) {
	if !r.opts.Features.ChatHistory {
		r.reply(chatID, disabledText, r.mainMenu())
		return
	}
	r.responder.Clear(userID)
	r.reply(chatID, historyClearedText, buttons)
}

func (r *Router) reply(chatID int64, text string, buttons [][]transport.Button) {
	if err := r.transport.SendMessage(chatID, text, buttons); err != nil {
		log.Printf("sendMessage error chat_id=%d: %v", chatID, err)
	}
}

func (r *Router) mainMenu() [][]transport.Button {
	menu := [][]transport.Button{
		{{Text: "💬 Chat with AI", Data: cbChatAI}},
	}
	if r.opts.Features.ImageGeneration {
		menu = append(menu, []transport.Button{{Text: "🎨 Generate image", Data: cbGenerateImage}})
	}
	if r.opts.Features.UserStats {
		menu = append(menu, []transport.Button{{Text: "📊 My statistics", Data: cbStats}})
	}
	if r.opts.Features.ChatHistory {
		menu = append(menu, []transport.Button{{Text: "🔄 Clear history", Data: cbClearHistory}})
	}
	return menu
}

func (r *Router) backMenu() [][]transport.Button {
	return [][]transport.Button{
		{{Text: "🏠 Main menu", Data: cbBackToMenu}},
	}
}

func (r *Router) imageDoneMenu() [][]transport.Button {
	return [][]transport.Button{
		{{Text: "🎨 Create another", Data: cbGenerateImage}},
		{{Text: "🏠 Main menu", Data: cbBackToMenu}},
	}
}

func welcomeText(username string) string {
	if username == "" {
		username = "there"
	}
	return fmt.Sprintf(
		"👋 Hi, %s!\n\nI am a multi-purpose AI bot:\n💬 Chat with AI\n🎨 Image generation\n\nChoose an action from the menu below:",
		username,
	)
}

func helpText() string {
	return "🤖 Available commands:\n\n" +
		"/start - Main menu\n" +
		"/help - Help\n" +
		"/stats - Usage statistics\n" +
		"/clear - Clear chat history\n\n" +
		"What I can do:\n" +
		"💬 Chat with AI - ask anything\n" +
		"🎨 Image generation - create pictures from a description\n" +
		"📊 Statistics - track your usage\n" +
		"🔄 Clear history - start the dialogue over"
}
