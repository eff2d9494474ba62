package bot

import (
	"context"
	"fmt"

	"github.com/ytget/yt-music-bot/internal/download"
)

// MessageRef points at a message the bot sent
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Button is one inline keyboard button
type Button struct {
	Text string
	Data string
}

// Keyboard is a list of button rows
type Keyboard [][]Button

// Messenger defines the transport primitives the Router needs.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (MessageRef, error)
	EditText(ctx context.Context, ref MessageRef, text string, kb Keyboard) error
	Delete(ctx context.Context, ref MessageRef) error
	SendAudio(ctx context.Context, chatID int64, a download.Artifact) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// User identifies who sent an event
type User struct {
	ChatID       int64
	UserID       int64
	LanguageCode string
}

// Key returns the session and serialization key "chatID:userID"
func (u User) Key() string {
	return fmt.Sprintf("%d:%d", u.ChatID, u.UserID)
}

// EventKind tells the Router what an event asks for
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventSearch
	EventCallback
)

// Event is a transport-neutral inbound update
type Event struct {
	Kind         EventKind
	User         User
	Text         string     // search query for EventSearch
	CallbackID   string     // for EventCallback
	CallbackData string     // for EventCallback
	Message      MessageRef // message carrying the pressed keyboard
}
