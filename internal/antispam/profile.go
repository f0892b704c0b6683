package antispam

import (
	"context"
	"strings"
)

// profileCheckNonsense flags users with unpronounceable ~12-character
// usernames that have the first character capitalized and lack a profile
// (avatar/bio); such accounts tend to be spambots. Usernames outside the
// 10-12 length window are never flagged.
func (e *Engine) profileCheckNonsense(ctx context.Context, user *User) (bool, error) {
	name := user.Username
	if len(name) < 10 || len(name) > 12 {
		return false, nil
	}

	if name[0] < 'A' || name[0] > 'Z' {
		return false, nil
	}
	for i := 1; i < len(name); i++ {
		if name[i] < 'a' || name[i] > 'z' {
			return false, nil
		}
	}

	// Exonerate users with an avatar.
	hasAvatar, err := e.profiles.HasAvatar(ctx, user.ID)
	if err != nil {
		return false, err
	}
	if hasAvatar {
		return false, nil
	}

	// Exonerate users who have a bio set.
	bio, err := e.profiles.Bio(ctx, user.ID)
	if err != nil {
		return false, err
	}
	if bio != "" {
		return false, nil
	}

	gibberish, err := e.nonsense(name)
	if err != nil {
		// A username the analyzer cannot process is itself anomalous;
		// fail toward suspicion for this narrow check.
		e.logger.WarnContext(ctx, "Pronounceability check failed to process username",
			"username", name, "error", err)
		return true, nil
	}

	return gibberish, nil
}

// profileCheckCrypto flags attention-grabbing spam first names and
// Telegram invite links embedded in the first or last name.
func (e *Engine) profileCheckCrypto(user *User) bool {
	if _, ok := suspiciousFirstNames[strings.ToLower(user.FirstName)]; ok {
		return true
	}

	if strings.Contains(user.FirstName, "t.me") {
		return true
	}
	if user.LastName != "" && strings.Contains(user.LastName, "t.me") {
		return true
	}

	return false
}

// userSuspicious is the profile-level verdict for newly joined members.
func (e *Engine) userSuspicious(ctx context.Context, user *User) (bool, error) {
	suspicious, err := e.profileCheckNonsense(ctx, user)
	if err != nil {
		return false, err
	}
	if suspicious {
		return true, nil
	}

	return e.profileCheckCrypto(user), nil
}
