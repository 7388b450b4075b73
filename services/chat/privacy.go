package chat

import (
	"regexp"
	"strings"
)

// BlockedMessage is returned to a sender whose message carried contact details.
const BlockedMessage = "Message blocked: Sharing personal contact information is prohibited"

var privacyKeywords = []string{
	"phone", "number", "call", "text", "email", "@", ".com", ".net", ".org",
	"facebook", "instagram", "twitter", "snapchat", "whatsapp", "telegram",
	"address", "home", "meet", "outside", "personal", "private",
}

var (
	phonePattern  = regexp.MustCompile(`(\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s?\d{3}[-.\s]?\d{4})`)
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	handlePattern = regexp.MustCompile(`@[a-zA-Z0-9._]+`)
)

// PassesPrivacyCheck reports whether message is free of contact details. Keywords match
// as substrings, so "homework" is rejected along with "home".
func PassesPrivacyCheck(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range privacyKeywords {
		if strings.Contains(lower, k) {
			return false
		}
	}
	return !phonePattern.MatchString(message) &&
		!emailPattern.MatchString(message) &&
		!handlePattern.MatchString(message)
}
