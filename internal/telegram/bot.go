// Package telegram adapts cardfetcher to the Telegram Bot API
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"

	"github.com/codegangsta/cardfetcher/internal/metrics"
	"github.com/codegangsta/cardfetcher/internal/render"
)

// MessageHandler is called when a message is received from an allowed user
type MessageHandler func(ctx context.Context, chatID int64, userID int64, text string)

// sender is the subset of the Bot API used for replies
type sender interface {
	SendMessage(chatId int64, text string, opts *gotgbot.SendMessageOpts) (*gotgbot.Message, error)
	SendPhoto(chatId int64, photo gotgbot.InputFileOrString, opts *gotgbot.SendPhotoOpts) (*gotgbot.Message, error)
	SendChatAction(chatId int64, action string, opts *gotgbot.SendChatActionOpts) (bool, error)
}

// Bot wraps the Telegram bot functionality
type Bot struct {
	bot       *gotgbot.Bot
	api       sender
	updater   *ext.Updater
	allowlist map[int64]bool
	handler   MessageHandler
	logger    *slog.Logger
	chatLog   *slog.Logger
	debug     bool
}

// New creates a new Telegram bot. An empty allowlist lets everyone in.
func New(token string, allowlist []int64, debug bool, logger *slog.Logger) (*Bot, error) {
	// Create HTTP client with longer timeout for long-polling
	httpClient := http.Client{
		Timeout: 60 * time.Second,
	}

	bot, err := gotgbot.NewBot(token, &gotgbot.BotOpts{
		BotClient: &gotgbot.BaseBotClient{
			Client: httpClient,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating bot: %w", err)
	}

	b := newBot(bot, allowlist, logger)
	b.bot = bot
	b.debug = debug
	return b, nil
}

func newBot(api sender, allowlist []int64, logger *slog.Logger) *Bot {
	allowMap := make(map[int64]bool, len(allowlist))
	for _, id := range allowlist {
		allowMap[id] = true
	}
	return &Bot{
		api:       api,
		allowlist: allowMap,
		logger:    logger,
	}
}

// SetHandler sets the message handler function
func (b *Bot) SetHandler(h MessageHandler) {
	b.handler = h
}

// SetChatLog sets a logger that records every accepted inbound message
func (b *Bot) SetChatLog(l *slog.Logger) {
	b.chatLog = l
}

// Username returns the bot's Telegram username
func (b *Bot) Username() string {
	if b.bot == nil {
		return ""
	}
	return b.bot.Username
}

// Start begins polling for updates and blocks until context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(bot *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			b.logger.Error("dispatcher error", "error", err)
			return ext.DispatcherActionNoop
		},
	})

	b.updater = ext.NewUpdater(dispatcher, nil)

	dispatcher.AddHandler(handlers.NewMessage(nil, func(bot *gotgbot.Bot, uctx *ext.Context) error {
		b.handleMessage(ctx, uctx.EffectiveMessage)
		return nil
	}))

	err := b.updater.StartPolling(b.bot, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout:        30,
			AllowedUpdates: []string{"message"},
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: 60 * time.Second,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("starting polling: %w", err)
	}

	b.logger.Info("telegram bot started",
		"username", b.bot.Username,
		"allowlist_count", len(b.allowlist),
	)

	<-ctx.Done()

	b.updater.Stop()
	b.logger.Info("telegram bot stopped")

	return nil
}

// accept reports whether msg should reach the handler
func (b *Bot) accept(msg *gotgbot.Message) bool {
	if msg == nil || msg.Text == "" || msg.From == nil {
		return false
	}
	if msg.From.IsBot {
		return false
	}
	if len(b.allowlist) > 0 && !b.allowlist[msg.From.Id] {
		b.logger.Debug("ignoring message from non-allowed user",
			"user_id", msg.From.Id,
			"chat_id", msg.Chat.Id,
			"username", msg.From.Username,
		)
		return false
	}
	return true
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(ctx context.Context, msg *gotgbot.Message) {
	if !b.accept(msg) {
		metrics.MessagesTotal.WithLabelValues("ignored").Inc()
		return
	}

	userID := msg.From.Id
	chatID := msg.Chat.Id

	b.logger.Debug("processing message",
		"user_id", userID,
		"chat_id", chatID,
		"username", msg.From.Username,
		"text_length", len(msg.Text),
	)
	if b.chatLog != nil {
		b.chatLog.Info("message",
			"chat_id", chatID,
			"user_id", userID,
			"username", msg.From.Username,
			"text", msg.Text,
		)
	}

	if b.handler != nil {
		b.handler(ctx, chatID, userID, msg.Text)
	}
}

// SendPayload sends a rendered card payload to a chat
func (b *Bot) SendPayload(chatID int64, p render.Payload) {
	switch p := p.(type) {
	case render.Image:
		b.sendImage(chatID, p)
	case render.LegalityTable:
		_, err := b.api.SendMessage(chatID, FormatLegalityTable(p), &gotgbot.SendMessageOpts{
			ParseMode: parseModeMarkdownV2,
		})
		if err != nil {
			b.sendFailed("legalities", chatID, err)
		}
	case render.PlainText:
		if err := b.SendText(chatID, p.Text, false); err != nil {
			b.sendFailed("text", chatID, err)
		}
	default:
		b.logger.Error("unknown payload type", "chat_id", chatID, "type", fmt.Sprintf("%T", p))
	}
}

// sendImage sends the card picture captioned with a link to its page. If
// Telegram can't fetch the picture the link is sent on its own.
func (b *Bot) sendImage(chatID int64, img render.Image) {
	caption := FormatImageCaption(img)
	_, err := b.api.SendPhoto(chatID, gotgbot.InputFileByURL(img.ImageURL), &gotgbot.SendPhotoOpts{
		Caption:   caption,
		ParseMode: parseModeMarkdownV2,
	})
	if err == nil {
		return
	}
	b.sendFailed("image", chatID, err)

	_, err = b.api.SendMessage(chatID, caption, &gotgbot.SendMessageOpts{
		ParseMode: parseModeMarkdownV2,
	})
	if err != nil {
		b.sendFailed("text", chatID, err)
	}
}

func (b *Bot) sendFailed(kind string, chatID int64, err error) {
	metrics.SendErrorsTotal.WithLabelValues(kind).Inc()
	b.logger.Error("failed to send message",
		"kind", kind,
		"chat_id", chatID,
		"error", err,
	)
}

// SendText sends a plain text message to a chat
func (b *Bot) SendText(chatID int64, text string, silent bool) error {
	_, err := b.api.SendMessage(chatID, text, &gotgbot.SendMessageOpts{
		DisableNotification: silent,
	})
	return err
}

// startTyping sends a typing indicator
func (b *Bot) startTyping(chatID int64) {
	_, _ = b.api.SendChatAction(chatID, "typing", nil)
}

// TypingLoop starts a goroutine that sends typing indicators every 4 seconds
// Returns a cancel function to stop the loop
func (b *Bot) TypingLoop(chatID int64) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()

		b.startTyping(chatID)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.startTyping(chatID)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
