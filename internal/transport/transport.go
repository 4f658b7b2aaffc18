package transport

// Transport is the chat delivery abstraction used by the bot router.
type Transport interface {
	GetUpdates(offset int64, timeout int) ([]Update, error)
	SendMessage(chatID int64, text string, buttons [][]Button) error
	SendPhoto(chatID int64, photoURL, caption string, buttons [][]Button) error
	SendChatAction(chatID int64, action string) error
}

// Chat actions understood by SendChatAction.
const (
	ActionTyping      = "typing"
	ActionUploadPhoto = "upload_photo"
)

// Update represents one incoming event.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message represents an inbound message. Callback-button presses are folded
// into messages with Callback set and the button data in Text.
type Message struct {
	Chat     Chat    `json:"chat"`
	From     *User   `json:"from,omitempty"`
	Text     *string `json:"text,omitempty"`
	Date     int64   `json:"date"`
	Callback bool    `json:"-"`
}

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// User identifies the sender of a message.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// DisplayName returns the username, falling back to the first name.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// Button is one selectable follow-up action rendered under a message.
type Button struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}
