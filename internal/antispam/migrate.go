package antispam

import (
	"context"
	"strings"
)

// Key used by old deployments that tracked a single global first-message
// tracking start time instead of a per-group enable time.
const legacyStartTimeKey = "first_msg_start_time"

// MigrateLegacyTracking moves the legacy global tracking start time into
// each enabled group's enable_time field. Gated on presence of the
// legacy key and therefore idempotent; a no-op on current data shapes.
func (e *Engine) MigrateLegacyTracking(ctx context.Context) error {
	startTime, ok, err := e.store.Get(ctx, legacyStartTimeKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	e.logger.InfoContext(ctx, "Migrating message tracking start times to the per-group format")

	err = e.store.Iterate(ctx, groupNamespace, func(key, value string) error {
		if !strings.HasSuffix(key, ".enabled") || value != "1" {
			return nil
		}
		enableKey := strings.TrimSuffix(key, ".enabled") + ".enable_time"
		return e.store.Put(ctx, enableKey, startTime)
	})
	if err != nil {
		return err
	}

	return e.store.Delete(ctx, legacyStartTimeKey)
}
