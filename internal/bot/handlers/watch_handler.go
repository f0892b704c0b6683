package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/evgand/groupwarden/internal/antispam"
)

// NewWatchHandler returns the default handler that feeds group traffic into
// the antispam engine: member joins, member departures, and ordinary
// messages. Verdicts are handed to the moderator for execution.
func NewWatchHandler(deps HandlerDeps) bot.HandlerFunc {
	return watchHandler{deps}.Handle
}

type watchHandler struct {
	deps HandlerDeps
}

func (h watchHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	m := update.Message

	chat := m.Chat
	if chat.Type != models.ChatTypeGroup && chat.Type != models.ChatTypeSupergroup {
		return
	}

	switch {
	case len(m.NewChatMembers) > 0:
		h.handleJoins(ctx, m)
	case m.LeftChatMember != nil:
		h.handleLeave(ctx, m)
	default:
		h.handleMessage(ctx, m)
	}
}

func (h watchHandler) handleJoins(ctx context.Context, m *models.Message) {
	log := h.deps.Logger.With("handler", "watch")

	for i := range m.NewChatMembers {
		joined := &m.NewChatMembers[i]
		if joined.IsBot {
			continue
		}

		user := &antispam.User{
			ID:        joined.ID,
			Username:  joined.Username,
			FirstName: joined.FirstName,
			LastName:  joined.LastName,
		}

		verdict, err := h.deps.Engine.CheckJoin(ctx, m.Chat.ID, user, int64(m.Date), m.ID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to check joining member", "error", err, "chat_id", m.Chat.ID, "user_id", joined.ID)
			continue
		}
		if verdict != nil {
			log.InfoContext(ctx, "Detected spambot by profile", "chat_id", verdict.ChatID, "user_id", verdict.UserID, "reason", verdict.Reason)
			h.deps.Moderator.TakeAction(ctx, verdict)
		}
	}
}

func (h watchHandler) handleLeave(ctx context.Context, m *models.Message) {
	log := h.deps.Logger.With("handler", "watch")

	left := m.LeftChatMember
	isSelf := h.deps.Config.Telegram.BotInfo != nil && left.ID == h.deps.Config.Telegram.BotInfo.ID

	if err := h.deps.Engine.HandleLeave(ctx, m.Chat.ID, left.ID, isSelf); err != nil {
		log.ErrorContext(ctx, "Failed to handle member departure", "error", err, "chat_id", m.Chat.ID, "user_id", left.ID)
	}
}

func (h watchHandler) handleMessage(ctx context.Context, m *models.Message) {
	log := h.deps.Logger.With("handler", "watch")

	if m.From == nil {
		return
	}

	msg := &antispam.Message{
		ChatID:    m.Chat.ID,
		SenderID:  m.From.ID,
		MessageID: m.ID,
		Outgoing:  h.deps.Config.Telegram.BotInfo != nil && m.From.ID == h.deps.Config.Telegram.BotInfo.ID,
		Date:      int64(m.Date),
		Forwarded: m.ForwardOrigin != nil,
		HasPhoto:  len(m.Photo) > 0,
		Text:      messageText(m),
		Entities:  entityKinds(m),
	}

	verdict, err := h.deps.Engine.CheckMessage(ctx, msg)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check message", "error", err, "chat_id", m.Chat.ID, "user_id", m.From.ID)
		return
	}
	if verdict != nil {
		log.InfoContext(ctx, "Detected spambot by message", "chat_id", verdict.ChatID, "user_id", verdict.UserID, "reason", verdict.Reason)
		h.deps.Moderator.TakeAction(ctx, verdict)
	}
}

// messageText returns the message's text, falling back to the media caption.
func messageText(m *models.Message) string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// entityKinds collects the entity types of both text and caption entities
// in the engine's transport-neutral form.
func entityKinds(m *models.Message) []antispam.EntityType {
	total := len(m.Entities) + len(m.CaptionEntities)
	if total == 0 {
		return nil
	}

	kinds := make([]antispam.EntityType, 0, total)
	for _, e := range m.Entities {
		kinds = append(kinds, antispam.EntityType(e.Type))
	}
	for _, e := range m.CaptionEntities {
		kinds = append(kinds, antispam.EntityType(e.Type))
	}
	return kinds
}
