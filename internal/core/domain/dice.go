package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Die type labels supported by the dice tray.
const (
	DieD4  = "d4"
	DieD6  = "d6"
	DieD8  = "d8"
	DieD10 = "d10"
	DieD12 = "d12"
	DieD20 = "d20"
)

// DieTypes lists the supported die types in canonical serialization order.
var DieTypes = []string{DieD4, DieD6, DieD8, DieD10, DieD12, DieD20}

var supportedDice = map[string]bool{
	DieD4:  true,
	DieD6:  true,
	DieD8:  true,
	DieD10: true,
	DieD12: true,
	DieD20: true,
}

// DiceSelection is the working set of dice picked in the tray: a count per
// die type plus a flat modifier. It is ephemeral state and never persisted.
type DiceSelection struct {
	Counts   map[string]int
	Modifier int
}

// NewDiceSelection returns an empty selection with all counts at zero.
func NewDiceSelection() DiceSelection {
	return DiceSelection{Counts: make(map[string]int)}
}

// Increment adds one die of the given type. Unknown die types are ignored.
func (s *DiceSelection) Increment(die string) {
	if !supportedDice[die] {
		return
	}
	if s.Counts == nil {
		s.Counts = make(map[string]int)
	}
	s.Counts[die]++
}

// Decrement removes one die of the given type, never going below zero.
func (s *DiceSelection) Decrement(die string) {
	if !supportedDice[die] || s.Counts[die] == 0 {
		return
	}
	s.Counts[die]--
}

// Clear resets every count and the modifier to zero.
func (s *DiceSelection) Clear() {
	s.Counts = make(map[string]int)
	s.Modifier = 0
}

// IsEmpty reports whether no dice are selected and the modifier is zero.
func (s DiceSelection) IsEmpty() bool {
	return s.TotalDice() == 0 && s.Modifier == 0
}

// TotalDice returns the number of dice across all types.
func (s DiceSelection) TotalDice() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// diceTokenRe matches a single dice token: optional count, literal 'd',
// one or more digits ("2d6", "d20").
var diceTokenRe = regexp.MustCompile(`(\d*)d(\d+)`)

// signedIntRe matches a modifier candidate anywhere in the expression.
var signedIntRe = regexp.MustCompile(`[+-]?\d+`)

// ParseDiceExpression scans dice notation such as "2d6+1d20+3" into a
// selection. Counts for repeated die types accumulate ("d6+d6" is two d6),
// an omitted count means one, and die types outside the supported set are
// dropped silently, as are counts too large to represent as an int. The
// first signed integer that is not part of a dice token becomes the
// modifier; later candidates are ignored.
func ParseDiceExpression(expression string) DiceSelection {
	sel := NewDiceSelection()

	covered := make([]bool, len(expression))
	for _, m := range diceTokenRe.FindAllStringSubmatchIndex(expression, -1) {
		for i := m[0]; i < m[1]; i++ {
			covered[i] = true
		}

		count := 1
		if m[2] != m[3] {
			n, err := strconv.Atoi(expression[m[2]:m[3]])
			if err != nil {
				continue
			}
			count = n
		}
		die := "d" + expression[m[4]:m[5]]
		if supportedDice[die] {
			sel.Counts[die] += count
		}
	}

	for _, m := range signedIntRe.FindAllStringIndex(expression, -1) {
		if overlaps(covered, m[0], m[1]) {
			continue
		}
		n, err := strconv.Atoi(expression[m[0]:m[1]])
		if err != nil {
			continue
		}
		sel.Modifier = n
		break
	}

	return sel
}

func overlaps(covered []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

// Serialize renders the selection back to dice notation. Die types appear in
// canonical order, a count of one drops the count prefix, parts are joined
// with " + ", and a non-zero modifier is appended as a signed literal.
// The empty selection serializes to "".
func (s DiceSelection) Serialize() string {
	parts := make([]string, 0, len(DieTypes))
	for _, die := range DieTypes {
		switch c := s.Counts[die]; {
		case c == 1:
			parts = append(parts, die)
		case c > 1:
			parts = append(parts, strconv.Itoa(c)+die)
		}
	}

	out := strings.Join(parts, " + ")
	if s.Modifier != 0 {
		lit := fmt.Sprintf("%+d", s.Modifier)
		if out == "" {
			return lit
		}
		out += " " + lit
	}
	return out
}

// DiceRollRequest is the wire payload sent to the dice endpoint.
type DiceRollRequest struct {
	Expression   string `json:"expression"`
	Description  string `json:"description"`
	CampaignID   string `json:"campaign_id,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
	Advantage    bool   `json:"advantage,omitempty"`
	Disadvantage bool   `json:"disadvantage,omitempty"`
}

// RollModifier is one labelled flat bonus applied to a roll total.
type RollModifier struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// DiceRollResult is the wire value returned by the dice endpoint.
type DiceRollResult struct {
	ID         string           `json:"id"`
	Expression string           `json:"expression"`
	RawRolls   map[string][]int `json:"raw_rolls"`
	Modifiers  []RollModifier   `json:"modifiers"`
	Total      int              `json:"total"`
	IsCritical bool             `json:"is_critical"`
	IsFumble   bool             `json:"is_fumble"`
	Breakdown  string           `json:"breakdown"`
	Timestamp  *time.Time       `json:"timestamp,omitempty"`
}
