package antispam

import "context"

// messageDataSuspicious runs the cheap, local checks over a message.
// Outgoing and undated messages are exempt; forwarded photos and
// suspicious content mark the rest. Content checks run last since the
// keyword scan is the most expensive part.
func messageDataSuspicious(msg *Message) bool {
	if msg.Outgoing || msg.Date == 0 {
		return false
	}
	return (msg.Forwarded && msg.HasPhoto) || contentSuspicious(msg)
}

// messageSuspicious is the primary message-level verdict. It consults
// the sender's membership record only after the local checks flag the
// message, so benign traffic never triggers remote lookups.
func (e *Engine) messageSuspicious(ctx context.Context, msg *Message) (bool, string, error) {
	if !messageDataSuspicious(msg) {
		return false, "", nil
	}

	participant, err := e.participants.GetParticipant(ctx, msg.ChatID, msg.SenderID)
	if err != nil {
		return false, "", err
	}

	// The group creator is exempt unconditionally.
	if participant.Status == StatusCreator {
		return false, "", nil
	}

	threshold, err := e.threshold(ctx)
	if err != nil {
		return false, "", err
	}
	if msg.Date-participant.JoinedAt <= threshold {
		// Suspicious message was sent shortly after joining.
		return true, "joined_recently", nil
	}

	enableTime, err := e.getInt64(ctx, groupKey(msg.ChatID, "enable_time"), 0)
	if err != nil {
		return false, "", err
	}
	if participant.JoinedAt > 0 && enableTime <= participant.JoinedAt {
		// Tracking started before this user joined, so the absence of
		// prior speech is itself suspicious.
		spoken, err := e.getBool(ctx, spokenKey(msg.SenderID, msg.ChatID))
		if err != nil {
			return false, "", err
		}
		if !spoken {
			return true, "first_tracked_message", nil
		}
	}

	return false, "", nil
}
