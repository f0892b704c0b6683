package antispam

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"testing"
	"time"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	m map[string]string
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memStore) Put(_ context.Context, key, value string) error {
	s.m[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.m, key)
	return nil
}

func (s *memStore) Iterate(_ context.Context, prefix string, fn func(key, value string) error) error {
	var keys []string
	for k := range s.m {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(k, s.m[k]); err != nil {
			return err
		}
	}
	return nil
}

// keysWithPrefix reports the remaining keys under a prefix, for purge checks.
func (s *memStore) keysWithPrefix(t *testing.T, prefix string) []string {
	t.Helper()
	var keys []string
	if err := s.Iterate(context.Background(), prefix, func(k, _ string) error {
		keys = append(keys, k)
		return nil
	}); err != nil {
		t.Fatalf("Iterate(%q): %v", prefix, err)
	}
	return keys
}

// fakeParticipants serves canned membership records keyed by (chat, user).
type fakeParticipants struct {
	records map[string]*Participant
	err     error
}

func participantKey(chatID, userID int64) string {
	return fmt.Sprintf("%d/%d", chatID, userID)
}

func (f *fakeParticipants) set(chatID, userID int64, p *Participant) {
	if f.records == nil {
		f.records = make(map[string]*Participant)
	}
	f.records[participantKey(chatID, userID)] = p
}

func (f *fakeParticipants) GetParticipant(_ context.Context, chatID, userID int64) (*Participant, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.records[participantKey(chatID, userID)]; ok {
		return p, nil
	}
	return &Participant{Status: StatusMember}, nil
}

// fakeProfiles serves avatar/bio lookups.
type fakeProfiles struct {
	avatars map[int64]bool
	bios    map[int64]string
	err     error
}

func (f *fakeProfiles) HasAvatar(_ context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.avatars[userID], nil
}

func (f *fakeProfiles) Bio(_ context.Context, userID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.bios[userID], nil
}

// testEngine wires an engine over in-memory fakes with a fixed clock.
func testEngine(store *memStore, participants *fakeParticipants, profiles *fakeProfiles, nowUnix int64) *Engine {
	if store == nil {
		store = newMemStore()
	}
	if participants == nil {
		participants = &fakeParticipants{}
	}
	if profiles == nil {
		profiles = &fakeProfiles{}
	}
	e := NewEngine(store, participants, profiles, slog.Default())
	e.now = func() time.Time { return time.Unix(nowUnix, 0) }
	return e
}

// enableGroup seeds detection state directly, bypassing Toggle.
func enableGroup(t *testing.T, store *memStore, chatID, enableTime int64) {
	t.Helper()
	ctx := context.Background()
	if err := store.Put(ctx, groupKey(chatID, "enabled"), "1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, groupKey(chatID, "enable_time"), fmt.Sprintf("%d", enableTime)); err != nil {
		t.Fatal(err)
	}
}
