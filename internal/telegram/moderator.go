package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"

	"github.com/evgand/groupwarden/internal/antispam"
	"github.com/evgand/groupwarden/internal/config"
	"github.com/evgand/groupwarden/internal/metrics"
)

// Moderator executes take-action verdicts: it removes the spambot and
// its message history, posts a delayed notice to the group, and reports
// the event to the statistics sink. Failures are logged, never retried.
type Moderator struct {
	bot         *bot.Bot
	logger      *slog.Logger
	actionDelay time.Duration
	noticeDelay time.Duration
	kickNotice  string
}

// NewModerator creates a verdict executor.
func NewModerator(b *bot.Bot, logger *slog.Logger, cfg config.AntispamConfig, kickNotice string) *Moderator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Moderator{
		bot:         b,
		logger:      logger.With("component", "moderator"),
		actionDelay: cfg.ActionDelay,
		noticeDelay: cfg.NoticeDelay,
		kickNotice:  kickNotice,
	}
}

// TakeAction schedules execution of a verdict and returns immediately.
// The initial pause lets welcome bots react to the join before the
// sender disappears; it runs as a timer continuation, holding no locks.
func (m *Moderator) TakeAction(ctx context.Context, verdict *antispam.Verdict) {
	go m.execute(ctx, verdict)
}

func (m *Moderator) execute(ctx context.Context, verdict *antispam.Verdict) {
	log := m.logger.With("chat_id", verdict.ChatID, "user_id", verdict.UserID, "reason", verdict.Reason)

	if !m.sleep(ctx, m.actionDelay) {
		return
	}

	// Ban with revocation deletes all of the sender's messages; the
	// follow-up unban turns the ban into a plain kick.
	_, err := m.bot.BanChatMember(ctx, &bot.BanChatMemberParams{
		ChatID:         verdict.ChatID,
		UserID:         verdict.UserID,
		RevokeMessages: true,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to ban spambot", "error", err)
		return
	}
	_, err = m.bot.UnbanChatMember(ctx, &bot.UnbanChatMemberParams{
		ChatID:       verdict.ChatID,
		UserID:       verdict.UserID,
		OnlyIfBanned: true,
	})
	if err != nil {
		log.WarnContext(ctx, "Failed to lift ban after kick", "error", err)
	}

	log.InfoContext(ctx, "Kicked auto-detected spambot")
	metrics.SpambotsBanned.Inc()

	// Delete the triggering message just in case revocation missed it.
	if verdict.MessageID != 0 {
		_, err = m.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    verdict.ChatID,
			MessageID: verdict.MessageID,
		})
		if err != nil {
			log.WarnContext(ctx, "Failed to delete triggering message", "error", err)
		}
	}

	if !m.sleep(ctx, m.noticeDelay) {
		return
	}
	_, err = m.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: verdict.ChatID,
		Text:   fmt.Sprintf(m.kickNotice, verdict.UserID),
	})
	if err != nil {
		log.WarnContext(ctx, "Failed to post kick notice", "error", err)
	}
}

// sleep waits for d as a cancellable continuation. Reports false when
// the context ended first.
func (m *Moderator) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
