package handlers

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/evgand/groupwarden/internal/antispam"
	"github.com/evgand/groupwarden/internal/config"
)

type memStore struct {
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Put(_ context.Context, key, value string) error {
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *memStore) Iterate(_ context.Context, prefix string, fn func(key, value string) error) error {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(k, s.data[k]); err != nil {
			return err
		}
	}
	return nil
}

type fakeParticipants struct {
	store *memStore
}

func (f *fakeParticipants) GetParticipant(ctx context.Context, chatID, userID int64) (*antispam.Participant, error) {
	p := &antispam.Participant{Status: antispam.StatusMember}
	if raw, ok := f.store.data[antispam.JoinedInKey(userID, chatID)]; ok {
		joined, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		p.JoinedAt = joined
	}
	return p, nil
}

type fakeProfiles struct{}

func (fakeProfiles) HasAvatar(context.Context, int64) (bool, error) { return false, nil }
func (fakeProfiles) Bio(context.Context, int64) (string, error)     { return "", nil }

type actionRecorder struct {
	verdicts []*antispam.Verdict
}

func (r *actionRecorder) TakeAction(_ context.Context, v *antispam.Verdict) {
	r.verdicts = append(r.verdicts, v)
}

const (
	testChatID = int64(100)
	testBotID  = int64(999)
)

func newWatchFixture(t *testing.T) (watchHandler, *antispam.Engine, *actionRecorder) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	engine := antispam.NewEngine(store, &fakeParticipants{store: store}, fakeProfiles{}, log)

	if _, err := engine.Toggle(context.Background(), testChatID, &antispam.Participant{Status: antispam.StatusCreator}); err != nil {
		t.Fatalf("enabling detection: %v", err)
	}

	cfg := &config.Config{}
	cfg.Telegram.BotInfo = &models.User{ID: testBotID, Username: "wardenbot"}

	recorder := &actionRecorder{}
	h := watchHandler{deps: HandlerDeps{
		Logger:       log,
		Config:       cfg,
		Engine:       engine,
		Participants: &fakeParticipants{store: store},
		Moderator:    recorder,
	}}
	return h, engine, recorder
}

func groupMessage(m models.Message) *models.Update {
	m.Chat = models.Chat{ID: testChatID, Type: models.ChatTypeSupergroup}
	return &models.Update{Message: &m}
}

func TestWatchHandlerRouting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("benign join takes no action", func(t *testing.T) {
		t.Parallel()
		h, _, recorder := newWatchFixture(t)

		h.Handle(ctx, nil, groupMessage(models.Message{
			ID:             10,
			Date:           1000,
			NewChatMembers: []models.User{{ID: 42, Username: "margarethe", FirstName: "Margarethe"}},
		}))

		if len(recorder.verdicts) != 0 {
			t.Fatalf("expected no verdicts, got %d", len(recorder.verdicts))
		}
	})

	t.Run("join with spam first name produces verdict", func(t *testing.T) {
		t.Parallel()
		h, _, recorder := newWatchFixture(t)

		h.Handle(ctx, nil, groupMessage(models.Message{
			ID:             11,
			Date:           1000,
			NewChatMembers: []models.User{{ID: 43, FirstName: "Urgent"}},
		}))

		if len(recorder.verdicts) != 1 {
			t.Fatalf("expected 1 verdict, got %d", len(recorder.verdicts))
		}
		v := recorder.verdicts[0]
		if v.UserID != 43 || v.MessageID != 11 || v.Reason != "suspicious_profile" {
			t.Fatalf("unexpected verdict: %+v", v)
		}
	})

	t.Run("spam message shortly after join produces verdict", func(t *testing.T) {
		t.Parallel()
		h, _, recorder := newWatchFixture(t)

		h.Handle(ctx, nil, groupMessage(models.Message{
			ID:             12,
			Date:           1000,
			NewChatMembers: []models.User{{ID: 44, Username: "newcomer", FirstName: "Newcomer"}},
		}))
		h.Handle(ctx, nil, groupMessage(models.Message{
			ID:   13,
			Date: 1010,
			From: &models.User{ID: 44},
			Text: "guaranteed profit on binance",
		}))

		if len(recorder.verdicts) != 1 {
			t.Fatalf("expected 1 verdict, got %d", len(recorder.verdicts))
		}
		v := recorder.verdicts[0]
		if v.UserID != 44 || v.MessageID != 13 || v.Reason != "joined_recently" {
			t.Fatalf("unexpected verdict: %+v", v)
		}
	})

	t.Run("private chat traffic is ignored", func(t *testing.T) {
		t.Parallel()
		h, _, recorder := newWatchFixture(t)

		h.Handle(ctx, nil, &models.Update{Message: &models.Message{
			ID:   14,
			Date: 1000,
			Chat: models.Chat{ID: 55, Type: models.ChatTypePrivate},
			From: &models.User{ID: 44},
			Text: "guaranteed profit on binance",
		}})

		if len(recorder.verdicts) != 0 {
			t.Fatalf("expected no verdicts, got %d", len(recorder.verdicts))
		}
	})

	t.Run("own departure purges group state", func(t *testing.T) {
		t.Parallel()
		h, engine, _ := newWatchFixture(t)

		h.Handle(ctx, nil, groupMessage(models.Message{
			ID:             15,
			Date:           1000,
			LeftChatMember: &models.User{ID: testBotID, IsBot: true},
		}))

		enabled, err := engine.Enabled(ctx, testChatID)
		if err != nil {
			t.Fatalf("checking enabled: %v", err)
		}
		if enabled {
			t.Fatal("expected detection disabled after the bot left the group")
		}
	})

	t.Run("member departure keeps detection enabled", func(t *testing.T) {
		t.Parallel()
		h, engine, _ := newWatchFixture(t)

		h.Handle(ctx, nil, groupMessage(models.Message{
			ID:             16,
			Date:           1000,
			LeftChatMember: &models.User{ID: 44},
		}))

		enabled, err := engine.Enabled(ctx, testChatID)
		if err != nil {
			t.Fatalf("checking enabled: %v", err)
		}
		if !enabled {
			t.Fatal("expected detection to stay enabled after a member left")
		}
	})
}

func TestEntityKinds(t *testing.T) {
	t.Parallel()

	m := &models.Message{
		Entities:        []models.MessageEntity{{Type: models.MessageEntityTypeURL}},
		CaptionEntities: []models.MessageEntity{{Type: models.MessageEntityTypePhoneNumber}},
	}

	got := entityKinds(m)
	want := []antispam.EntityType{antispam.EntityURL, antispam.EntityPhone}
	if len(got) != len(want) {
		t.Fatalf("got %d kinds, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kind %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if kinds := entityKinds(&models.Message{}); kinds != nil {
		t.Fatalf("expected nil for a message without entities, got %v", kinds)
	}
}

func TestMessageText(t *testing.T) {
	t.Parallel()

	if got := messageText(&models.Message{Text: "hello"}); got != "hello" {
		t.Fatalf("got %q, want text", got)
	}
	if got := messageText(&models.Message{Caption: "photo caption"}); got != "photo caption" {
		t.Fatalf("got %q, want caption fallback", got)
	}
}
