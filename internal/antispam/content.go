package antispam

import "strings"

// hasSuspiciousEntity reports whether the message contains an embedded
// link, email address, or phone number.
func hasSuspiciousEntity(msg *Message) bool {
	for _, entity := range msg.Entities {
		if _, ok := suspiciousEntities[entity]; ok {
			return true
		}
	}
	return false
}

// hasSuspiciousKeyword reports whether the message text mentions any of
// the known spam keywords. Plain substring match, no tokenization.
func hasSuspiciousKeyword(msg *Message) bool {
	if msg.Text == "" {
		return false
	}

	text := strings.ToLower(msg.Text)
	for _, kw := range suspiciousKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// contentSuspicious consolidates the message content checks.
func contentSuspicious(msg *Message) bool {
	return hasSuspiciousEntity(msg) || hasSuspiciousKeyword(msg)
}
