package handlers

import (
	"context"
	"log/slog"

	"github.com/evgand/groupwarden/internal/antispam"
	"github.com/evgand/groupwarden/internal/config"
)

// ActionTaker executes moderation verdicts produced by the engine.
type ActionTaker interface {
	TakeAction(ctx context.Context, verdict *antispam.Verdict)
}

// HandlerDeps provides dependencies for Telegram command and message handlers.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Engine       *antispam.Engine
	Participants antispam.ParticipantSource
	Moderator    ActionTaker
}
