package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/evgand/groupwarden/internal/antispam"
)

// Lookup resolves membership records and profile fields over the Bot
// API. The API does not report when an ordinary member joined, so join
// times come from the store keys the dispatcher records at join events;
// members whose join the bot never observed get a zero join time.
type Lookup struct {
	bot    *bot.Bot
	store  antispam.Store
	logger *slog.Logger
}

// NewLookup creates a Lookup over a bot instance and the state store.
func NewLookup(b *bot.Bot, store antispam.Store, logger *slog.Logger) *Lookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lookup{
		bot:    b,
		store:  store,
		logger: logger.With("component", "telegram_lookup"),
	}
}

// GetParticipant implements antispam.ParticipantSource.
func (l *Lookup) GetParticipant(ctx context.Context, chatID, userID int64) (*antispam.Participant, error) {
	member, err := l.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get chat member %d in chat %d: %w", userID, chatID, err)
	}

	participant := &antispam.Participant{}
	switch member.Type {
	case models.ChatMemberTypeOwner:
		participant.Status = antispam.StatusCreator
	case models.ChatMemberTypeAdministrator:
		participant.Status = antispam.StatusAdmin
		if member.Administrator != nil {
			participant.CanDeleteMessages = member.Administrator.CanDeleteMessages
			participant.CanRestrictMembers = member.Administrator.CanRestrictMembers
		}
	default:
		participant.Status = antispam.StatusMember
	}

	joined, ok, err := l.store.Get(ctx, antispam.JoinedInKey(userID, chatID))
	if err != nil {
		return nil, err
	}
	if ok {
		ts, err := strconv.ParseInt(joined, 10, 64)
		if err != nil {
			l.logger.WarnContext(ctx, "Malformed join-time value in store",
				"chat_id", chatID, "user_id", userID, "value", joined)
		} else {
			participant.JoinedAt = ts
		}
	}

	return participant, nil
}

// HasAvatar implements antispam.ProfileSource.
func (l *Lookup) HasAvatar(ctx context.Context, userID int64) (bool, error) {
	photos, err := l.bot.GetUserProfilePhotos(ctx, &bot.GetUserProfilePhotosParams{
		UserID: userID,
		Limit:  1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to get profile photos for user %d: %w", userID, err)
	}
	return photos.TotalCount > 0, nil
}

// Bio implements antispam.ProfileSource. The Bot API exposes a user's
// bio through the private-chat view of the user.
func (l *Lookup) Bio(ctx context.Context, userID int64) (string, error) {
	chat, err := l.bot.GetChat(ctx, &bot.GetChatParams{ChatID: userID})
	if err != nil {
		return "", fmt.Errorf("failed to get profile for user %d: %w", userID, err)
	}
	return chat.Bio, nil
}
