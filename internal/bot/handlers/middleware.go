// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/evgand/groupwarden/internal/antispam"
)

// GroupAdminOnly creates a middleware that, inside group chats, requires the
// message sender to be an administrator or the group owner. Non-admins get a
// "Not Authorized" reply and processing stops. Private chats pass through so
// the wrapped handler can explain it only works in groups.
func GroupAdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, bot, update)
				return
			}

			chat := update.Message.Chat
			if chat.Type != models.ChatTypeGroup && chat.Type != models.ChatTypeSupergroup {
				next(ctx, bot, update)
				return
			}

			log := deps.Logger.With("middleware", "GroupAdminOnly")
			userID := update.Message.From.ID

			participant, err := deps.Participants.GetParticipant(ctx, chat.ID, userID)
			if err != nil {
				log.ErrorContext(ctx, "Failed to look up invoker's membership", "error", err, "user_id", userID, "chat_id", chat.ID)

				_, sendErr := bot.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chat.ID,
					Text:   deps.Config.Telegram.Messages.GeneralError,
				})
				if sendErr != nil {
					log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chat.ID)
				}
				return
			}

			if participant.Status != antispam.StatusAdmin && participant.Status != antispam.StatusCreator {
				log.WarnContext(ctx, "Unauthorized command attempt", "user_id", userID, "chat_id", chat.ID)

				_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chat.ID,
					Text:   deps.Config.Telegram.Messages.NotAuthorized,
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chat.ID)
				}
				return
			}

			next(ctx, bot, update)
		}
	}
}
