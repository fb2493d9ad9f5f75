package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bluele/gcache"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/suderio/rolldice/internal/command"
	"github.com/suderio/rolldice/internal/logger"
	"github.com/suderio/rolldice/internal/rules"
	"github.com/suderio/rolldice/internal/session"
)

// OffsetKey is the viper key the last handled update ID is kept under.
const OffsetKey = "tg_last_update_id"

// Executor runs one line of input for a user.
type Executor interface {
	Execute(user, input string) (*session.Reply, error)
}

// Options tune a Bot. Zero values pick the defaults noted on each field.
type Options struct {
	// Chats the bot answers in. Empty means every chat.
	Chats []int64
	// Users maps Telegram user IDs to the name their variables live under.
	// When set, anyone missing from it is turned away.
	Users map[int64]string
	// Filter admits or drops messages. Nil allows all.
	Filter *rules.Filter
	// Rate is messages per second per user (1), Burst the bucket size (5).
	Rate  rate.Limit
	Burst int
	// PollTimeout is the long-poll duration in seconds (25).
	PollTimeout int
	// Retry is the pause after a failed poll (5s).
	Retry time.Duration
	// Config receives the update offset (viper's global instance).
	Config *viper.Viper
}

// Bot handles the integration between Telegram and a dice session
type Bot struct {
	client   *Client
	executor Executor
	opts     Options
	chats    map[int64]bool
	limiters gcache.Cache

	lastUpdateID atomic.Int64
}

// NewBot initializes a new bot
func NewBot(client *Client, exec Executor, opts Options) *Bot {
	if opts.Rate == 0 {
		opts.Rate = 1
	}
	if opts.Burst == 0 {
		opts.Burst = 5
	}
	if opts.PollTimeout == 0 {
		opts.PollTimeout = 25
	}
	if opts.Retry == 0 {
		opts.Retry = 5 * time.Second
	}
	if opts.Config == nil {
		opts.Config = viper.GetViper()
	}

	chats := make(map[int64]bool, len(opts.Chats))
	for _, id := range opts.Chats {
		chats[id] = true
	}

	b := &Bot{
		client:   client,
		executor: exec,
		opts:     opts,
		chats:    chats,
	}
	b.lastUpdateID.Store(opts.Config.GetInt64(OffsetKey))
	b.limiters = gcache.New(1024).
		LRU().
		LoaderFunc(func(key interface{}) (interface{}, error) {
			return rate.NewLimiter(b.opts.Rate, b.opts.Burst), nil
		}).
		Build()
	return b
}

// Run launches the long-polling loop and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	logger.Info("telegram bot started", zap.Int64s("chats", b.opts.Chats))
	for {
		updates, err := b.client.GetUpdates(ctx, b.LastUpdateID()+1, b.opts.PollTimeout)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			logger.Warn("failed to fetch updates", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.opts.Retry):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID > b.LastUpdateID() {
				b.lastUpdateID.Store(int64(update.UpdateID))
				b.opts.Config.Set(OffsetKey, update.UpdateID)
				// Ignore error if config file doesn't exist yet
				_ = b.opts.Config.WriteConfig()
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// LastUpdateID is the newest update seen so far.
func (b *Bot) LastUpdateID() int { return int(b.lastUpdateID.Load()) }

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	if len(b.chats) > 0 && !b.chats[msg.Chat.ID] {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") && !strings.HasPrefix(text, "!") {
		return
	}

	user, ok := b.userName(msg.From)
	if !ok {
		logger.Warn("rejected unregistered user", zap.Int64("user", msg.From.ID), zap.Int64("chat", msg.Chat.ID))
		b.send(ctx, msg.Chat.ID, fmt.Sprintf("User %s (%d) is not registered in this campaign.",
			html.EscapeString(msg.From.FirstName), msg.From.ID))
		return
	}

	in := command.Parse(text)
	allowed, err := b.opts.Filter.Allow(rules.MessageContext{
		User:    rules.User{ID: msg.From.ID, Username: msg.From.Username, FirstName: msg.From.FirstName},
		Chat:    rules.Chat{ID: msg.Chat.ID, Type: msg.Chat.Type},
		Text:    text,
		Command: in.Name,
	})
	if err != nil {
		logger.Error("filter failed", zap.Error(err))
		return
	}
	if !allowed {
		logger.Debug("message filtered", zap.String("user", user), zap.String("command", in.Name))
		return
	}

	if !b.limiter(msg.From.ID).Allow() {
		logger.Debug("rate limited", zap.String("user", user))
		return
	}

	reply, err := b.executor.Execute(user, text)
	if errors.Is(err, session.ErrEmptyInput) {
		return
	}
	if err != nil {
		b.send(ctx, msg.Chat.ID, html.EscapeString(command.Describe(err)))
		return
	}
	b.send(ctx, msg.Chat.ID, Render(msg.From.FirstName, reply))
}

func (b *Bot) userName(u User) (string, bool) {
	if len(b.opts.Users) == 0 {
		return strconv.FormatInt(u.ID, 10), true
	}
	name, ok := b.opts.Users[u.ID]
	return name, ok
}

func (b *Bot) limiter(id int64) *rate.Limiter {
	v, err := b.limiters.Get(id)
	if err != nil {
		return rate.NewLimiter(b.opts.Rate, b.opts.Burst)
	}
	return v.(*rate.Limiter)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}
	if err := b.client.SendMessage(ctx, chatID, text); err != nil {
		logger.Error("failed to send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

var struck = regexp.MustCompile(`~~(.*?)~~`)

// Render formats a reply as Telegram HTML. The sender's name heads the
// message and the last line, the final result, is bold.
func Render(sender string, r *session.Reply) string {
	if r == nil || len(r.Lines) == 0 {
		return ""
	}
	lines := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = struck.ReplaceAllString(html.EscapeString(l), "<s>$1</s>")
	}
	if r.Command == "roll" || r.Command == "calc" {
		last := len(lines) - 1
		lines[last] = "<b>" + lines[last] + "</b>"
		if sender != "" {
			lines = append([]string{"<i>" + html.EscapeString(sender) + "</i>"}, lines...)
		}
	}
	return strings.Join(lines, "\n")
}
