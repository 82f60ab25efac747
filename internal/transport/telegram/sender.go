package telegram

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/chatgate/pkg/conv"
	"github.com/sandevgo/chatgate/pkg/log"
	"github.com/sandevgo/chatgate/pkg/retry"
	tele "gopkg.in/telebot.v3"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

type sender struct {
	bot     *tele.Bot
	retrier *retry.Retrier
}

func newSender(bot *tele.Bot) *sender {
	cfg := retry.NewDeliveryConfig()
	cfg.Retryable = retryable
	return &sender{bot: bot, retrier: retry.NewRetrier(cfg)}
}

// retryable rejects errors that repeat on every attempt.
func retryable(err error) bool {
	switch {
	case errors.Is(err, tele.ErrBlockedByUser),
		errors.Is(err, tele.ErrChatNotFound),
		errors.Is(err, tele.ErrKickedFromGroup),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if needed.
// A chunk Telegram refuses to parse as HTML is resent as plain text.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string, replyTo *tele.Message) error {
	logger := log.FromCtx(ctx)
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		html = strings.TrimSpace(md)
	}

	chunks := splitHTML(html, maxTelegramMsgLen)
	for i, chunk := range chunks {
		opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
		if i == 0 && replyTo != nil {
			opts.ReplyTo = replyTo
		}

		err := s.send(ctx, to, chunk, opts)
		if err != nil && isParseError(err) {
			logger.Warn().Err(err).Int("chunk", i).Msg("html rejected, sending plain text")
			opts.ParseMode = tele.ModeDefault
			err = s.send(ctx, to, conv.HTMLToText(chunk), opts)
		}
		if err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

func (s *sender) send(ctx context.Context, to tele.Recipient, text string, opts *tele.SendOptions) error {
	return s.retrier.Do(ctx, func() error {
		_, err := s.bot.Send(to, text, opts)
		return err
	})
}

func (s *sender) typing(to tele.Recipient) error {
	return s.bot.Notify(to, tele.Typing)
}

func isParseError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "can't parse entities")
}

// splitHTML splits text into chunks respecting Telegram's limit.
// It tries to split at newlines to preserve formatting and never cuts
// inside a UTF-8 sequence.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		// Try to find a good break point (newline) in the later part of the chunk
		if idx := strings.LastIndex(text[:cut], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}

// chatReplier answers into the chat a message came from.
type chatReplier struct {
	sender  *sender
	chat    *tele.Chat
	replyTo *tele.Message
}

func (r *chatReplier) Reply(ctx context.Context, text string) error {
	return r.sender.sendMarkdown(ctx, r.chat, text, r.replyTo)
}

func (r *chatReplier) SendTyping(ctx context.Context) error {
	return r.sender.typing(r.chat)
}
