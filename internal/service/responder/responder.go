package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/core"
	"github.com/sandevgo/chatgate/internal/service/gate"
	"github.com/sandevgo/chatgate/internal/service/memory"
	"github.com/sandevgo/chatgate/pkg/log"
	"github.com/sandevgo/chatgate/pkg/tokens"
)

const defaultTypingInterval = 5 * time.Second

// Commands answers slash commands. ok is false for plain messages.
type Commands interface {
	Execute(ctx context.Context, userID, input string) (reply string, ok bool)
}

// Responder turns one inbound event into at most one reply.
type Responder struct {
	cfg     *config.BotConfig
	gate    *gate.Gate
	quota   *gate.DailyQuota
	conv    *memory.Conversation
	gen     core.Generator
	persona *Persona
	budget  *tokens.Budget

	commands Commands
}

func New(
	cfg *config.BotConfig,
	g *gate.Gate,
	quota *gate.DailyQuota,
	conv *memory.Conversation,
	gen core.Generator,
	persona *Persona,
	budget *tokens.Budget,
) *Responder {
	return &Responder{
		cfg:     cfg,
		gate:    g,
		quota:   quota,
		conv:    conv,
		gen:     gen,
		persona: persona,
		budget:  budget,
	}
}

// WithCommands routes slash commands to c after admission. They skip
// memory and quota.
func (r *Responder) WithCommands(c Commands) *Responder {
	r.commands = c
	return r
}

// Handle runs admission, memory and generation for ev and replies through
// out. Generation failures are answered and returned.
func (r *Responder) Handle(ctx context.Context, ev core.Event, out core.Replier) error {
	logger := log.FromCtx(ctx).With().
		Str("processing_id", uuid.NewString()).
		Str("message_id", ev.ID).
		Str("user_id", ev.AuthorID).
		Logger()
	ctx = logger.WithContext(ctx)

	if ev.IsFromSelf {
		logger.Debug().Msg("ignoring own message")
		return nil
	}
	content := strings.TrimSpace(ev.Content)
	if content == "" {
		return nil
	}
	if r.cfg.IgnorePrefix != "" && strings.HasPrefix(content, r.cfg.IgnorePrefix) {
		logger.Debug().Msg("ignoring prefixed message")
		return nil
	}

	d := r.gate.Admit(ev.AuthorID, ev.Content, ev.ID)
	if !d.Admitted {
		r.reject(ctx, ev, out, d)
		return nil
	}
	defer r.gate.Release(ctx, ev.AuthorID)

	if r.commands != nil {
		if reply, ok := r.commands.Execute(ctx, ev.AuthorID, content); ok {
			return r.send(ctx, out, reply)
		}
	}

	r.conv.Record(ctx, ev.AuthorID, ev.Content)

	stopTyping := r.keepTyping(ctx, out)
	defer stopTyping()

	if isPreviousQuery(content) {
		return r.replyPrevious(ctx, ev, out)
	}

	if !r.quota.Allow() {
		logger.Warn().Msg("daily quota reached")
		return r.send(ctx, out, quotaMessage(r.quota.UntilReset()))
	}

	text, err := r.gen.Generate(ctx, r.buildPrompt(ctx, ev.AuthorID, ev.Content))
	if err != nil {
		return r.replyError(ctx, out, err)
	}

	if err := r.send(ctx, out, text); err != nil {
		return err
	}

	used := r.quota.Consume()
	r.gate.MarkSent(ev.Content)
	r.conv.Commit(ev.AuthorID, ev.Content, text)
	if r.cfg.IndexMessages {
		r.conv.Index().Index(ctx, ev.AuthorID, ev.Content)
	}

	_, limit := r.quota.Usage()
	logger.Info().Int("quota_used", used).Int("quota_limit", limit).Msg("reply sent")
	return nil
}

func (r *Responder) reject(ctx context.Context, ev core.Event, out core.Replier, d gate.Decision) {
	logger := log.FromCtx(ctx)
	logger.Info().Str("reason", d.Reason.String()).Msg("message rejected")

	msg := rejectionMessage(d)
	if msg == "" {
		return
	}
	if err := out.Reply(ctx, msg); err != nil {
		logger.Error().Err(err).Msg("failed to send rejection")
	}
	r.gate.MarkResponded(ev.ID)
}

func (r *Responder) replyPrevious(ctx context.Context, ev core.Event, out core.Replier) error {
	prev, ok := r.conv.History().Previous(ev.AuthorID)
	if !ok {
		return r.send(ctx, out, msgNoPrevious)
	}
	return r.send(ctx, out, previousMessage(prev.Content))
}

func (r *Responder) replyError(ctx context.Context, out core.Replier, err error) error {
	logger := log.FromCtx(ctx)
	if core.IsTransient(err) {
		logger.Warn().Err(err).Msg("generation failed, backend busy")
	} else {
		logger.Error().Err(err).Msg("generation failed")
	}

	var msg string
	switch {
	case errors.Is(err, core.ErrRateLimited):
		r.quota.Exhaust()
		msg = quotaMessage(r.quota.UntilReset())
	case errors.Is(err, core.ErrOverloaded):
		msg = msgOverloaded
	case errors.Is(err, core.ErrBackendInternal):
		msg = msgInternal
	default:
		msg = errorMessage(err)
	}

	if sendErr := r.send(ctx, out, msg); sendErr != nil {
		return errors.Join(fmt.Errorf("generate: %w", err), sendErr)
	}
	return fmt.Errorf("generate: %w", err)
}

func (r *Responder) send(ctx context.Context, out core.Replier, text string) error {
	if err := out.Reply(ctx, text); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to deliver reply")
		return fmt.Errorf("deliver reply: %w", err)
	}
	return nil
}

// keepTyping signals typing now and every TypingInterval until the
// returned stop func is called.
func (r *Responder) keepTyping(ctx context.Context, out core.Replier) (stop func()) {
	interval := r.cfg.TypingInterval
	if interval <= 0 {
		interval = defaultTypingInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := out.SendTyping(ctx); err != nil && ctx.Err() == nil {
				log.FromCtx(ctx).Debug().Err(err).Msg("typing signal failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (r *Responder) buildPrompt(ctx context.Context, userID, content string) string {
	var b strings.Builder
	b.WriteString(r.persona.Text())

	if profile := r.conv.ProfileText(userID); profile != "" {
		b.WriteString("\n\nWhat you know about this user:\n")
		b.WriteString(profile)
	}

	if recalled := r.recall(ctx, userID, content); len(recalled) > 0 {
		b.WriteString("\n\nThings the user said before that may be relevant:\n")
		for _, text := range recalled {
			b.WriteString("- ")
			b.WriteString(text)
			b.WriteByte('\n')
		}
	}

	if history := r.conv.ContextFor(userID); history != "" {
		b.WriteString("\n\nConversation context:\n")
		b.WriteString(r.budget.KeepTail(history))
	}

	b.WriteString("\n\nPlease answer this message: ")
	b.WriteString(content)
	return b.String()
}

func (r *Responder) recall(ctx context.Context, userID, content string) []string {
	index := r.conv.Index()
	if r.cfg.RecallTopK <= 0 || !index.Enabled() {
		return nil
	}

	var out []string
	for _, text := range index.Search(ctx, userID, content, r.cfg.RecallTopK) {
		if text != content {
			out = append(out, text)
		}
	}
	return out
}
