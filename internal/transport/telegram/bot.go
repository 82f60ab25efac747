package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/core"
	"github.com/sandevgo/chatgate/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

// Handler processes one inbound chat event.
type Handler interface {
	Handle(ctx context.Context, ev core.Event, out core.Replier) error
}

type Bot struct {
	bot     *tele.Bot
	handler Handler
	sender  *sender
	allowed map[int64]struct{}
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	handler Handler,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		handler: handler,
		sender:  newSender(b),
		allowed: make(map[int64]struct{}, len(cfg.AllowedChats)),
	}
	for _, id := range cfg.AllowedChats {
		bot.allowed[id] = struct{}{}
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !bot.serves(c.Message()) {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("username", b.bot.Me.Username).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	ctx = log.WithComponent(ctx, "telegram")

	msg := c.Message()
	ev := toEvent(msg, b.bot.Me.Username)
	out := &chatReplier{sender: b.sender, chat: msg.Chat, replyTo: msg}

	if err := b.handler.Handle(ctx, ev, out); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("message_id", ev.ID).Msg("message handling failed")
	}
	return nil
}

// serves reports whether the bot should look at msg: private chats
// always, allowed groups always, other groups only when addressed.
func (b *Bot) serves(msg *tele.Message) bool {
	if msg == nil || msg.Chat == nil {
		return false
	}
	if msg.Private() {
		return true
	}
	if _, ok := b.allowed[msg.Chat.ID]; ok {
		return true
	}
	if msg.ReplyTo != nil && msg.ReplyTo.Sender != nil && msg.ReplyTo.Sender.ID == b.bot.Me.ID {
		return true
	}
	return mentions(msg.Text, b.bot.Me.Username)
}

func mentions(text, username string) bool {
	if username == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), "@"+strings.ToLower(username))
}

func toEvent(msg *tele.Message, username string) core.Event {
	ev := core.Event{
		ID:        eventID(msg.Chat.ID, msg.ID),
		ChannelID: strconv.FormatInt(msg.Chat.ID, 10),
		Content:   stripMention(msg.Text, username),
	}
	if msg.Sender != nil {
		ev.AuthorID = strconv.FormatInt(msg.Sender.ID, 10)
		ev.IsFromSelf = msg.Sender.IsBot
	}
	return ev
}

// eventID is unique per message since Telegram message IDs are per chat.
func eventID(chatID int64, messageID int) string {
	return fmt.Sprintf("%d:%d", chatID, messageID)
}

func stripMention(text, username string) string {
	if username == "" {
		return text
	}
	mention := "@" + username
	for {
		i := strings.Index(strings.ToLower(text), strings.ToLower(mention))
		if i < 0 {
			break
		}
		text = text[:i] + text[i+len(mention):]
	}
	return strings.Join(strings.Fields(text), " ")
}
