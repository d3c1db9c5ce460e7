// Package safety holds the gates that run before any model work: crisis
// language detection and mental-health topic relevance.
package safety

import "strings"

// CrisisMessage is returned in place of a generated reply when crisis
// language is detected.
const CrisisMessage = "I'm concerned about what you're sharing. If you're having thoughts of hurting yourself, " +
	"please reach out to a crisis helpline immediately: National Suicide Prevention Lifeline " +
	"at 988 or 1-800-273-8255. They have trained counselors available 24/7. Would you like " +
	"me to provide other resources that might help?"

var crisisPhrases = []string{
	"suicide",
	"kill myself",
	"end my life",
	"don't want to live",
	"want to die",
	"better off dead",
	"hurt myself",
	"harm myself",
	"no reason to live",
	"can't go on",
	"ending it all",
}

// IsCrisis reports whether text contains self-harm or suicide language.
// It needs no model, so it can never be bypassed by a missing one.
func IsCrisis(text string) bool {
	_, ok := CrisisPhrase(text)
	return ok
}

// CrisisPhrase returns the first crisis phrase found in text.
func CrisisPhrase(text string) (string, bool) {
	lower := normalizeApostrophes(strings.ToLower(text))
	for _, p := range crisisPhrases {
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}

// normalizeApostrophes folds typographic apostrophes so "can’t go on"
// matches the ASCII phrase list.
func normalizeApostrophes(s string) string {
	return strings.NewReplacer("’", "'", "‘", "'").Replace(s)
}
