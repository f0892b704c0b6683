package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/evgand/groupwarden/internal/antispam"
)

// NewAntispamHandler returns a handler for the /antispam command, which
// toggles spambot detection for the group it is issued in.
func NewAntispamHandler(deps HandlerDeps) bot.HandlerFunc {
	return antispamHandler{deps}.Handle
}

type antispamHandler struct {
	deps HandlerDeps
}

func (h antispamHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "antispam")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Antispam handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chat := update.Message.Chat
	msgs := h.deps.Config.Telegram.Messages

	reply := func(text string) {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chat.ID, Text: text})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chat.ID)
		}
	}

	if chat.Type != models.ChatTypeGroup && chat.Type != models.ChatTypeSupergroup {
		reply(msgs.GroupsOnly)
		return
	}

	// Toggling on requires knowing the bot's own standing in the group.
	self, err := h.deps.Participants.GetParticipant(ctx, chat.ID, h.deps.Config.Telegram.BotInfo.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up own membership", "error", err, "chat_id", chat.ID)
		reply(msgs.GeneralError)
		return
	}

	enabled, err := h.deps.Engine.Toggle(ctx, chat.ID, self)
	if err != nil {
		switch {
		case errors.Is(err, antispam.ErrNotAdmin):
			reply(msgs.NeedAdmin)
		case errors.Is(err, antispam.ErrMissingRights):
			reply(msgs.NeedRights)
		default:
			log.ErrorContext(ctx, "Failed to toggle detection", "error", err, "chat_id", chat.ID)
			reply(msgs.GeneralError)
		}
		return
	}

	log.InfoContext(ctx, "Toggled spambot detection", "chat_id", chat.ID, "user_id", update.Message.From.ID, "enabled", enabled)

	if enabled {
		reply(msgs.Enabled)
	} else {
		reply(msgs.Disabled)
	}
}
