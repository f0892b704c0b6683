package antispam

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Toggle permission errors, recovered by the command surface into
// user-facing strings.
var (
	// ErrNotAdmin means the bot holds no administrative role in the group.
	ErrNotAdmin = errors.New("antispam: bot is not an admin in this group")
	// ErrMissingRights means the bot is an admin but lacks the
	// delete-messages or ban-users permission.
	ErrMissingRights = errors.New("antispam: missing delete messages or ban users permission")
)

// Enabled reports whether detection is active for the group.
func (e *Engine) Enabled(ctx context.Context, chatID int64) (bool, error) {
	return e.getBool(ctx, groupKey(chatID, "enabled"))
}

// Toggle flips detection for a group and returns the new state.
//
// Enabling requires self (the bot's own membership record) to be the
// group creator or an admin with both the delete-messages and ban-users
// rights; otherwise state is left unchanged and a permission error is
// returned. Disabling purges every key of the group's state.
func (e *Engine) Toggle(ctx context.Context, chatID int64, self *Participant) (bool, error) {
	enabled, err := e.Enabled(ctx, chatID)
	if err != nil {
		return false, err
	}

	if enabled {
		if err := e.ClearGroup(ctx, chatID); err != nil {
			return false, err
		}
		e.logger.InfoContext(ctx, "Detection disabled", "chat_id", chatID)
		return false, nil
	}

	switch self.Status {
	case StatusCreator:
		// Group creator always has all permissions.
	case StatusAdmin:
		if !self.CanDeleteMessages || !self.CanRestrictMembers {
			return false, ErrMissingRights
		}
	default:
		return false, ErrNotAdmin
	}

	if err := e.store.Put(ctx, groupKey(chatID, "enabled"), "1"); err != nil {
		return false, err
	}
	now := e.now().Unix()
	if err := e.store.Put(ctx, groupKey(chatID, "enable_time"), strconv.FormatInt(now, 10)); err != nil {
		return false, err
	}

	e.logger.InfoContext(ctx, "Detection enabled", "chat_id", chatID, "enable_time", now)
	return true, nil
}

// ClearGroup deletes every state-store key under the group's namespace
// and every per-user flag referencing the group.
func (e *Engine) ClearGroup(ctx context.Context, chatID int64) error {
	err := e.store.Iterate(ctx, groupPrefix(chatID), func(key, _ string) error {
		return e.store.Delete(ctx, key)
	})
	if err != nil {
		return fmt.Errorf("purging group keys for chat %d: %w", chatID, err)
	}

	spokenSuffix := fmt.Sprintf(".has_spoken_in_%d", chatID)
	joinedSuffix := fmt.Sprintf(".joined_in_%d", chatID)
	err = e.store.Iterate(ctx, userNamespace, func(key, _ string) error {
		if strings.HasSuffix(key, spokenSuffix) || strings.HasSuffix(key, joinedSuffix) {
			return e.store.Delete(ctx, key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("purging user flags for chat %d: %w", chatID, err)
	}
	return nil
}
