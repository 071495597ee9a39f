package chat

import "strings"

// interpretiveCues are the question openers that signal the user wants
// the reasoning behind an advisory rather than a new one.
var interpretiveCues = []string{"why", "how"}

// DetectInterpretiveIntent reports whether a user message asks for an
// explanation. Only explicit user intent can enter interpretive mode;
// background evaluation never does.
func DetectInterpretiveIntent(message string) bool {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return false
	}
	for _, cue := range interpretiveCues {
		if strings.HasPrefix(msg, cue) && !continuesWord(msg, len(cue)) {
			return true
		}
	}
	return strings.Contains(msg, "explain")
}

// continuesWord reports whether the rune at offset keeps the preceding
// cue inside a longer word, as in "however".
func continuesWord(msg string, offset int) bool {
	if offset >= len(msg) {
		return false
	}
	c := msg[offset]
	return c >= 'a' && c <= 'z'
}
