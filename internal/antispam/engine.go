package antispam

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/evgand/groupwarden/internal/nonsense"
)

// Store key shapes. Group state lives under "groups.<chat>.", per-user
// flags under "users.<user>.", and the join-window threshold at the root.
const (
	thresholdKey     = "threshold_time"
	defaultThreshold = 30 // seconds

	groupNamespace = "groups."
	userNamespace  = "users."
)

func groupKey(chatID int64, field string) string {
	return fmt.Sprintf("%s%d.%s", groupNamespace, chatID, field)
}

func groupPrefix(chatID int64) string {
	return fmt.Sprintf("%s%d.", groupNamespace, chatID)
}

func spokenKey(userID, chatID int64) string {
	return fmt.Sprintf("%s%d.has_spoken_in_%d", userNamespace, userID, chatID)
}

// JoinedInKey is the store key recording when a user joined a group.
// Exported for the participant source, which folds the recorded join
// time into membership records.
func JoinedInKey(userID, chatID int64) string {
	return fmt.Sprintf("%s%d.joined_in_%d", userNamespace, userID, chatID)
}

func joinedKey(userID, chatID int64) string {
	return JoinedInKey(userID, chatID)
}

// Engine is the suspicion classifier. It composes the content, timing,
// and profile heuristics over the state store and the remote lookup
// collaborators, and produces verdicts without performing moderation.
type Engine struct {
	store        Store
	participants ParticipantSource
	profiles     ProfileSource
	logger       *slog.Logger
	now          func() time.Time
	nonsense     func(string) (bool, error)
}

// NewEngine creates a classification engine over the given store and
// lookup collaborators.
func NewEngine(store Store, participants ParticipantSource, profiles ProfileSource, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store:        store,
		participants: participants,
		profiles:     profiles,
		logger:       logger.With("component", "antispam"),
		now:          time.Now,
		nonsense:     nonsense.Nonsense,
	}
}

// getBool reads a presence flag: a missing key is false.
func (e *Engine) getBool(ctx context.Context, key string) (bool, error) {
	value, ok, err := e.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return ok && value == "1", nil
}

// getInt64 reads an integer value, falling back to def when the key is
// absent. A present but unparseable value is a store error.
func (e *Engine) getInt64(ctx context.Context, key string, def int64) (int64, error) {
	value, ok, err := e.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed value for key %q: %w", key, err)
	}
	return n, nil
}

func (e *Engine) threshold(ctx context.Context) (int64, error) {
	return e.getInt64(ctx, thresholdKey, defaultThreshold)
}

// CheckMessage classifies an inbound message. In groups where detection
// is enabled it returns a verdict for suspicious messages; benign
// messages get the sender's participation flag recorded so later
// first-message checks see them as having already spoken.
func (e *Engine) CheckMessage(ctx context.Context, msg *Message) (*Verdict, error) {
	enabled, err := e.Enabled(ctx, msg.ChatID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, nil
	}

	suspicious, reason, err := e.messageSuspicious(ctx, msg)
	if err != nil {
		return nil, err
	}
	if suspicious {
		return &Verdict{
			ChatID:    msg.ChatID,
			UserID:    msg.SenderID,
			MessageID: msg.MessageID,
			Reason:    reason,
		}, nil
	}

	if err := e.store.Put(ctx, spokenKey(msg.SenderID, msg.ChatID), "1"); err != nil {
		return nil, err
	}
	return nil, nil
}

// CheckJoin classifies a newly joined member. The join time is recorded
// first so the timing heuristics can judge the user's early messages.
// messageID is the membership service message announcing the join.
func (e *Engine) CheckJoin(ctx context.Context, chatID int64, user *User, joinedAt int64, messageID int) (*Verdict, error) {
	enabled, err := e.Enabled(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, nil
	}

	if err := e.store.Put(ctx, joinedKey(user.ID, chatID), strconv.FormatInt(joinedAt, 10)); err != nil {
		return nil, err
	}

	suspicious, err := e.userSuspicious(ctx, user)
	if err != nil {
		return nil, err
	}
	if !suspicious {
		return nil, nil
	}
	return &Verdict{
		ChatID:    chatID,
		UserID:    user.ID,
		MessageID: messageID,
		Reason:    "suspicious_profile",
	}, nil
}

// HandleLeave removes the departing user's per-group flags. When the
// departing user is the bot itself, all group state is purged instead.
func (e *Engine) HandleLeave(ctx context.Context, chatID, userID int64, isSelf bool) error {
	enabled, err := e.Enabled(ctx, chatID)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	if isSelf {
		e.logger.InfoContext(ctx, "Cleaning up settings for group", "chat_id", chatID)
		return e.ClearGroup(ctx, chatID)
	}

	if err := e.store.Delete(ctx, spokenKey(userID, chatID)); err != nil {
		return err
	}
	return e.store.Delete(ctx, joinedKey(userID, chatID))
}
