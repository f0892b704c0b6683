// Package tasks implements scheduled tasks for the GroupWarden Telegram bot.
// It includes task definitions, dependencies, and registration mechanisms.
package tasks

import (
	"log/slog"

	"github.com/evgand/groupwarden/internal/config"
	"github.com/evgand/groupwarden/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
// It provides access to logging, the key-value store, and configuration.
type TaskDeps struct {
	Logger *slog.Logger
	Store  *database.KV
	Config *config.Config
}
