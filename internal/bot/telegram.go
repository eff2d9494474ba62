package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ytget/yt-music-bot/internal/download"
	"github.com/ytget/yt-music-bot/internal/workpool"
)

// Polling defaults
const (
	DefaultPollTimeoutSeconds = 60
	notModifiedMarker         = "message is not modified"
)

// Commands the bot understands
const (
	CommandStart  = "start"
	CommandHelp   = "help"
	CommandSearch = "search"
)

var _ Messenger = (*Telegram)(nil)

// Telegram implements Messenger with the Bot API and long polling
type Telegram struct {
	api         *tgbotapi.BotAPI
	logger      *slog.Logger
	pollTimeout int
}

// NewTelegram authenticates token against the Bot API
func NewTelegram(token string, logger *slog.Logger) (*Telegram, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := tgbotapi.SetLogger(botLogger{logger: logger}); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return &Telegram{
		api:         api,
		logger:      logger,
		pollTimeout: DefaultPollTimeoutSeconds,
	}, nil
}

// SetPollTimeout sets the long-poll timeout in seconds
func (t *Telegram) SetPollTimeout(seconds int) {
	if seconds > 0 {
		t.pollTimeout = seconds
	}
}

// Username returns the bot's username
func (t *Telegram) Username() string {
	return t.api.Self.UserName
}

// SendText sends text with an optional inline keyboard
func (t *Telegram) SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return MessageRef{}, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(kb) > 0 {
		msg.ReplyMarkup = toMarkup(kb)
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		return MessageRef{}, fmt.Errorf("send message: %w", err)
	}
	return MessageRef{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

// EditText replaces the text and keyboard of ref
func (t *Telegram) EditText(ctx context.Context, ref MessageRef, text string, kb Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var edit tgbotapi.Chattable
	if len(kb) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(ref.ChatID, ref.MessageID, text, toMarkup(kb))
	} else {
		edit = tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	}
	if _, err := t.api.Request(edit); err != nil && !isNotModified(err) {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// Delete removes ref from the chat
func (t *Telegram) Delete(ctx context.Context, ref MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SendAudio uploads a as an audio message
func (t *Telegram) SendAudio(ctx context.Context, chatID int64, a download.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(a.Path))
	audio.Title = a.Title
	audio.Performer = a.Performer
	audio.Caption = a.Caption
	audio.Duration = a.DurationSeconds
	if _, err := t.api.Send(audio); err != nil {
		return fmt.Errorf("send audio: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a button press, showing text as a toast when
// it is not empty
func (t *Telegram) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// Poll receives updates until ctx is done and hands each one to dispatch
func (t *Telegram) Poll(ctx context.Context, dispatch func(Event)) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = t.pollTimeout
	updates := t.api.GetUpdatesChan(cfg)
	defer t.api.StopReceivingUpdates()

	t.logger.Info("polling for updates", "bot", t.api.Self.UserName, "timeout_seconds", t.pollTimeout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("update channel closed")
			}
			ev, ok := EventFromUpdate(update)
			if !ok {
				continue
			}
			dispatch(ev)
		}
	}
}

// Dispatcher serializes events per user before handing them to a Router
type Dispatcher struct {
	ctx        context.Context
	router     *Router
	serializer *workpool.Serializer
}

// NewDispatcher creates a dispatcher whose handlers run under ctx
func NewDispatcher(ctx context.Context, router *Router, serializer *workpool.Serializer) *Dispatcher {
	return &Dispatcher{ctx: ctx, router: router, serializer: serializer}
}

// Dispatch queues ev behind the user's earlier events
func (d *Dispatcher) Dispatch(ev Event) {
	d.serializer.Submit(ev.User.Key(), func() {
		d.router.Handle(d.ctx, ev)
	})
}

// Wait blocks until every dispatched event has been handled
func (d *Dispatcher) Wait() {
	d.serializer.Wait()
}

// EventFromUpdate converts a Bot API update. Updates the bot does not act
// on report false.
func EventFromUpdate(update tgbotapi.Update) (Event, bool) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
			return Event{}, false
		}
		return Event{
			Kind:         EventCallback,
			User:         User{ChatID: cb.Message.Chat.ID, UserID: cb.From.ID, LanguageCode: cb.From.LanguageCode},
			CallbackID:   cb.ID,
			CallbackData: cb.Data,
			Message:      MessageRef{ChatID: cb.Message.Chat.ID, MessageID: cb.Message.MessageID},
		}, true

	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.Chat == nil {
			return Event{}, false
		}
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return Event{}, false
		}
		user := User{ChatID: msg.Chat.ID, UserID: msg.From.ID, LanguageCode: msg.From.LanguageCode}

		command, args, isCommand := parseCommand(text)
		if !isCommand {
			return Event{Kind: EventSearch, User: user, Text: text}, true
		}
		if command == CommandSearch {
			return Event{Kind: EventSearch, User: user, Text: args}, true
		}
		// start, help and unknown commands all get the help text
		return Event{Kind: EventStart, User: user}, true
	}
	return Event{}, false
}

// parseCommand splits "/search@bot args" into "search" and "args"
func parseCommand(text string) (string, string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, args, _ := strings.Cut(text[1:], " ")
	command, _, _ := strings.Cut(head, "@")
	return strings.ToLower(command), strings.TrimSpace(args), true
}

func toMarkup(kb Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), notModifiedMarker)
}

// botLogger routes the Bot API library's logging through slog
type botLogger struct {
	logger *slog.Logger
}

func (l botLogger) Println(v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintln(v...)), "component", "telegram")
}

func (l botLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "telegram")
}
