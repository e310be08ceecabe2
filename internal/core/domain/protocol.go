package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Roll requests and roll results travel through chat as specially formatted
// message content, so every display surface renders them without special
// casing. Builder and matcher derive from the same template constants; the
// templates are the protocol, so changing them breaks older clients.
const (
	rollRequestTemplate = "🎲 %s wants to roll %s for %s — open the dice tray to roll!"
	rollResultTemplate  = "🎲 Rolled %d — %s"
	rollResultMarker    = "🎲 Rolled"
)

var rollRequestRe = templateRegexp(rollRequestTemplate)

// templateRegexp converts a fmt template into an anchored regexp with one
// capture group per %s verb.
func templateRegexp(tmpl string) *regexp.Regexp {
	parts := strings.Split(tmpl, "%s")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^" + strings.Join(parts, "(.+?)") + "$")
}

// RollRequestPrompt is a roll request recognised inside chat content.
type RollRequestPrompt struct {
	Requester   string
	Expression  string
	Description string
}

// BuildRollRequest renders the roll-request chat content for a requester.
func BuildRollRequest(requester, expression, description string) string {
	return fmt.Sprintf(rollRequestTemplate, requester, expression, description)
}

// BuildRollResult renders the roll-result chat content for a completed roll.
func BuildRollResult(result DiceRollResult) string {
	return fmt.Sprintf(rollResultTemplate, result.Total, result.Breakdown)
}

// ParseRollRequest recognises roll-request content. Only content matching the
// template verbatim is accepted; anything else is ordinary chat.
func ParseRollRequest(content string) (RollRequestPrompt, bool) {
	m := rollRequestRe.FindStringSubmatch(content)
	if m == nil {
		return RollRequestPrompt{}, false
	}
	return RollRequestPrompt{
		Requester:   m[1],
		Expression:  m[2],
		Description: m[3],
	}, true
}

// IsRollResult reports whether chat content carries a roll result.
func IsRollResult(content string) bool {
	return strings.Contains(content, rollResultMarker)
}
