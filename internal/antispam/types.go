// Package antispam implements the spambot decision engine: content,
// profile, and timing heuristics over inbound group messages and
// membership events, backed by a namespaced key-value store. The engine
// only classifies; moderation is left to the caller.
package antispam

import "context"

// EntityType identifies a typed span inside a message.
type EntityType string

// Entity kinds the content heuristics care about.
const (
	EntityURL     EntityType = "url"
	EntityTextURL EntityType = "text_link"
	EntityEmail   EntityType = "email"
	EntityPhone   EntityType = "phone_number"
)

// Message carries the fields of an inbound chat message that the
// heuristics consume. Adapters build it from their transport's type.
type Message struct {
	ChatID    int64
	SenderID  int64
	MessageID int
	Outgoing  bool
	Date      int64 // unix seconds; zero means the message carries no timestamp
	Forwarded bool
	HasPhoto  bool
	Text      string
	Entities  []EntityType
}

// User is the public profile of a chat member.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// ParticipantStatus is a member's role within a group.
type ParticipantStatus int

const (
	StatusMember ParticipantStatus = iota
	StatusAdmin
	StatusCreator
)

// Participant describes a user's membership in a specific group.
// JoinedAt is zero when the join time is unknown.
type Participant struct {
	Status             ParticipantStatus
	JoinedAt           int64
	CanDeleteMessages  bool
	CanRestrictMembers bool
}

// Verdict signals that moderation action should be taken against a user.
// MessageID is the triggering message when there is one, zero otherwise.
type Verdict struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Reason    string
}

// Store is the namespaced key-value storage the engine keeps its state
// in. Absent keys are not errors; Get reports presence separately so
// absence-as-default stays explicit at call sites.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Iterate(ctx context.Context, prefix string, fn func(key, value string) error) error
}

// ParticipantSource resolves a user's membership record for a group.
type ParticipantSource interface {
	GetParticipant(ctx context.Context, chatID, userID int64) (*Participant, error)
}

// ProfileSource resolves extended profile fields that require their own
// remote lookups. Kept as two calls so the cheaper avatar check can
// short-circuit the bio fetch.
type ProfileSource interface {
	HasAvatar(ctx context.Context, userID int64) (bool, error)
	Bio(ctx context.Context, userID int64) (string, error)
}
