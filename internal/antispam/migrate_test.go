package antispam

import (
	"context"
	"testing"
)

func TestMigrateLegacyTracking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	seed := map[string]string{
		legacyStartTimeKey:          "1600000000",
		groupKey(1, "enabled"):      "1",
		groupKey(2, "enabled"):      "0",
		groupKey(3, "enabled"):      "1",
		groupKey(3, "enable_time"):  "1650000000", // already migrated by hand, gets overwritten
		"users.7.has_spoken_in_1":   "1",
	}
	for k, v := range seed {
		if err := store.Put(ctx, k, v); err != nil {
			t.Fatal(err)
		}
	}

	e := testEngine(store, nil, nil, 0)
	if err := e.MigrateLegacyTracking(ctx); err != nil {
		t.Fatalf("MigrateLegacyTracking: %v", err)
	}

	if got, _ := e.getInt64(ctx, groupKey(1, "enable_time"), 0); got != 1600000000 {
		t.Errorf("group 1 enable_time = %d; want 1600000000", got)
	}
	if _, ok, _ := store.Get(ctx, groupKey(2, "enable_time")); ok {
		t.Error("enable_time written for disabled group")
	}
	if got, _ := e.getInt64(ctx, groupKey(3, "enable_time"), 0); got != 1600000000 {
		t.Errorf("group 3 enable_time = %d; want 1600000000", got)
	}
	if _, ok, _ := store.Get(ctx, legacyStartTimeKey); ok {
		t.Error("legacy key remains after migration")
	}

	// Second run is a no-op: mutate a group's enable_time and verify the
	// migration does not touch it again.
	if err := store.Put(ctx, groupKey(1, "enable_time"), "1700000000"); err != nil {
		t.Fatal(err)
	}
	if err := e.MigrateLegacyTracking(ctx); err != nil {
		t.Fatalf("second MigrateLegacyTracking: %v", err)
	}
	if got, _ := e.getInt64(ctx, groupKey(1, "enable_time"), 0); got != 1700000000 {
		t.Errorf("second run rewrote enable_time: %d", got)
	}
}
