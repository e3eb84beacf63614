// Package poller consumes Telegram updates through long polling and hands
// each text message to a handler, in order, one at a time.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/Charile333/TGBOT/internal/pagination"
	"github.com/Charile333/TGBOT/internal/telegram"
)

const (
	defaultPollTimeout    = 5 * time.Second
	defaultProbeTimeout   = 1 * time.Second
	defaultRetryDelay     = 5 * time.Second
	defaultIdleDelay      = 500 * time.Millisecond
	defaultHeartbeatEvery = 10
	defaultUnauthorized   = "unauthorized"
)

type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

type Handler interface {
	HandleMessage(ctx context.Context, msg *telegram.Message)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *telegram.Message)

func (f HandlerFunc) HandleMessage(ctx context.Context, msg *telegram.Message) { f(ctx, msg) }

// Notifier is used to turn away chats outside the allow list.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Options struct {
	PollTimeout    time.Duration
	ProbeTimeout   time.Duration
	RetryDelay     time.Duration
	IdleDelay      time.Duration
	HeartbeatEvery int

	// AllowedChats restricts who may use the bot. Empty allows everyone.
	AllowedChats     []int64
	UnauthorizedText string
	Notifier         Notifier

	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

func (o Options) normalize() Options {
	if o.PollTimeout < 0 {
		o.PollTimeout = 0
	} else if o.PollTimeout == 0 {
		o.PollTimeout = defaultPollTimeout
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = defaultProbeTimeout
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	if o.IdleDelay < 0 {
		o.IdleDelay = 0
	} else if o.IdleDelay == 0 {
		o.IdleDelay = defaultIdleDelay
	}
	if o.HeartbeatEvery <= 0 {
		o.HeartbeatEvery = defaultHeartbeatEvery
	}
	if strings.TrimSpace(o.UnauthorizedText) == "" {
		o.UnauthorizedText = defaultUnauthorized
	}
	if o.Sleep == nil {
		o.Sleep = pagination.SleepContext
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Poller owns the delivery offset. The offset is only written by Poll, which
// only runs on the Run goroutine.
type Poller struct {
	source  UpdateSource
	handler Handler
	opts    Options
	allowed mapset.Set[int64]

	offset int64
	seen   bool
}

func New(source UpdateSource, handler Handler, opts Options) *Poller {
	opts = opts.normalize()
	return &Poller{
		source:  source,
		handler: handler,
		opts:    opts,
		allowed: mapset.NewThreadUnsafeSet(opts.AllowedChats...),
	}
}

// Offset is the highest update id observed so far, or 0 before the first
// update arrives.
func (p *Poller) Offset() int64 { return p.offset }

// Probe issues one short getUpdates to check the token and connectivity. It
// does not consume or record anything.
func (p *Poller) Probe(ctx context.Context) error {
	if _, err := p.source.GetUpdates(ctx, -1, p.opts.ProbeTimeout); err != nil {
		return fmt.Errorf("telegram probe: %w", err)
	}
	return nil
}

// Poll performs one getUpdates cycle. The offset is advanced to the largest
// update id in the batch before the batch is returned, so an update is never
// requested again once Poll has handed it out.
func (p *Poller) Poll(ctx context.Context) ([]telegram.Update, error) {
	req := int64(-1)
	if p.seen {
		req = p.offset + 1
	}
	updates, err := p.source.GetUpdates(ctx, req, p.opts.PollTimeout)
	if err != nil {
		return nil, err
	}

	fresh := updates[:0:0]
	for _, u := range updates {
		if p.seen && u.UpdateID <= p.offset {
			continue
		}
		fresh = append(fresh, u)
	}
	for _, u := range fresh {
		if !p.seen || u.UpdateID > p.offset {
			p.offset = u.UpdateID
			p.seen = true
		}
	}
	return fresh, nil
}

// Run polls until ctx is cancelled. Transport errors are retried forever
// after RetryDelay. Each message is handled on a context that ignores
// cancellation so a reply in progress is not cut off by shutdown.
func (p *Poller) Run(ctx context.Context) error {
	logger := p.opts.Logger
	logger.Info("telegram_poll_start", "poll_timeout", p.opts.PollTimeout.String(), "allowed_chats", p.allowed.Cardinality())

	for cycle := 1; ; cycle++ {
		updates, err := p.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("telegram_stop", "reason", "context_canceled")
				return nil
			}
			if telegram.IsPollTimeout(err) {
				logger.Debug("telegram_get_updates_timeout", "error", err.Error())
			} else {
				logger.Warn("telegram_get_updates_error", "error", err.Error(), "retry_in", p.opts.RetryDelay.String())
			}
			if p.opts.Sleep(ctx, p.opts.RetryDelay) != nil {
				logger.Info("telegram_stop", "reason", "context_canceled")
				return nil
			}
			continue
		}

		for _, u := range updates {
			p.deliver(ctx, u)
		}

		if cycle%p.opts.HeartbeatEvery == 0 {
			logger.Debug("telegram_poll_heartbeat", "cycle", cycle, "offset", p.offset)
		}
		if p.opts.Sleep(ctx, p.opts.IdleDelay) != nil {
			logger.Info("telegram_stop", "reason", "context_canceled")
			return nil
		}
	}
}

func (p *Poller) deliver(ctx context.Context, u telegram.Update) {
	msg := u.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		p.opts.Logger.Debug("telegram_update_skipped", "update_id", u.UpdateID)
		return
	}
	chatID := msg.Chat.ID
	handleCtx := context.WithoutCancel(ctx)

	if p.allowed.Cardinality() > 0 && !p.allowed.Contains(chatID) {
		p.opts.Logger.Warn("telegram_unauthorized_chat", "chat_id", chatID)
		if p.opts.Notifier != nil {
			if err := p.opts.Notifier.SendMessage(handleCtx, chatID, p.opts.UnauthorizedText); err != nil {
				p.opts.Logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
			}
		}
		return
	}
	p.opts.Logger.Info("telegram_message", "update_id", u.UpdateID, "chat_id", chatID, "text_len", len(msg.Text))
	p.handler.HandleMessage(handleCtx, msg)
}
