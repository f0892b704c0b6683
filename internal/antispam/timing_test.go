package antispam

import (
	"context"
	"errors"
	"testing"
)

func TestMessageDataSuspicious(t *testing.T) {
	t.Parallel()

	spam := func(m Message) Message {
		m.Text = "buy bitcoin now"
		return m
	}

	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{name: "outgoing is exempt", msg: spam(Message{Outgoing: true, Date: 1000}), want: false},
		{name: "undated is exempt", msg: spam(Message{Date: 0}), want: false},
		{name: "benign incoming", msg: Message{Date: 1000, Text: "hello"}, want: false},
		{name: "suspicious content", msg: spam(Message{Date: 1000}), want: true},
		{name: "forwarded photo", msg: Message{Date: 1000, Forwarded: true, HasPhoto: true}, want: true},
		{name: "forward without photo", msg: Message{Date: 1000, Forwarded: true, Text: "hello"}, want: false},
		{name: "photo without forward", msg: Message{Date: 1000, HasPhoto: true, Text: "hello"}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := messageDataSuspicious(&tc.msg); got != tc.want {
				t.Errorf("messageDataSuspicious = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestMessageSuspicious(t *testing.T) {
	t.Parallel()

	const (
		chatID   = int64(100)
		senderID = int64(7)
		t0       = int64(1_700_000_000) // group enable time
	)

	spamAt := func(date int64) *Message {
		return &Message{ChatID: chatID, SenderID: senderID, MessageID: 1, Date: date, Text: "invest here"}
	}

	type fixture struct {
		joinedAt  int64
		status    ParticipantStatus
		hasSpoken bool
		threshold string // raw store value, empty means default
	}

	tests := []struct {
		name       string
		fix        fixture
		msg        *Message
		want       bool
		wantReason string
	}{
		{
			// Scenario A: join at T0+10, message at T0+40, delta exactly 30s.
			name:       "message within join window",
			fix:        fixture{joinedAt: t0 + 10},
			msg:        spamAt(t0 + 40),
			want:       true,
			wantReason: "joined_recently",
		},
		{
			// Scenario B: delta 90s but tracking predates the join and the
			// user has never spoken.
			name:       "first tracked message",
			fix:        fixture{joinedAt: t0 + 10},
			msg:        spamAt(t0 + 100),
			want:       true,
			wantReason: "first_tracked_message",
		},
		{
			// Scenario C: with the participation flag set, an old member's
			// spammy message is let through by the timing rules.
			name: "flagged user past the window",
			fix:  fixture{joinedAt: t0 + 10, hasSpoken: true},
			msg:  spamAt(t0 + 100),
			want: false,
		},
		{
			name: "creator is exempt",
			fix:  fixture{joinedAt: t0 + 10, status: StatusCreator},
			msg:  spamAt(t0 + 11),
			want: false,
		},
		{
			name: "user joined before tracking started",
			fix:  fixture{joinedAt: t0 - 50},
			msg:  spamAt(t0 + 100),
			want: false,
		},
		{
			name:       "threshold override widens the window",
			fix:        fixture{joinedAt: t0 + 10, hasSpoken: true, threshold: "120"},
			msg:        spamAt(t0 + 100),
			want:       true,
			wantReason: "joined_recently",
		},
		{
			name: "unknown join time skips both timing rules",
			fix:  fixture{joinedAt: 0},
			msg:  spamAt(t0 + 100),
			want: false,
		},
		{
			name: "benign content short-circuits",
			fix:  fixture{joinedAt: t0 + 10},
			msg:  &Message{ChatID: chatID, SenderID: senderID, Date: t0 + 11, Text: "hello"},
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			store := newMemStore()
			enableGroup(t, store, chatID, t0)
			if tc.fix.hasSpoken {
				if err := store.Put(ctx, spokenKey(senderID, chatID), "1"); err != nil {
					t.Fatal(err)
				}
			}
			if tc.fix.threshold != "" {
				if err := store.Put(ctx, thresholdKey, tc.fix.threshold); err != nil {
					t.Fatal(err)
				}
			}

			participants := &fakeParticipants{}
			participants.set(chatID, senderID, &Participant{
				Status:   tc.fix.status,
				JoinedAt: tc.fix.joinedAt,
			})

			e := testEngine(store, participants, nil, t0)
			got, reason, err := e.messageSuspicious(ctx, tc.msg)
			if err != nil {
				t.Fatalf("messageSuspicious: %v", err)
			}
			if got != tc.want {
				t.Errorf("messageSuspicious = %v; want %v", got, tc.want)
			}
			if tc.wantReason != "" && reason != tc.wantReason {
				t.Errorf("reason = %q; want %q", reason, tc.wantReason)
			}
		})
	}
}

func TestMessageSuspiciousLookupFailure(t *testing.T) {
	t.Parallel()

	const chatID = int64(100)
	store := newMemStore()
	enableGroup(t, store, chatID, 1000)

	lookupErr := errors.New("participant fetch failed")
	e := testEngine(store, &fakeParticipants{err: lookupErr}, nil, 2000)

	msg := &Message{ChatID: chatID, SenderID: 7, Date: 1500, Text: "free bitcoin"}
	_, _, err := e.messageSuspicious(context.Background(), msg)
	if !errors.Is(err, lookupErr) {
		t.Fatalf("messageSuspicious error = %v; want wrapped %v", err, lookupErr)
	}
}
