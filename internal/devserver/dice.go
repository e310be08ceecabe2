package devserver

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tavernchat/dicechat/internal/core/domain"
)

// maxDicePerRoll bounds a single roll. The expression length check alone
// does not bound the die count ("999999999d6" is short but huge), so the
// parsed selection is rejected before any per-die allocation happens.
const maxDicePerRoll = 100

// DiceHandler performs rolls server-side so every participant sees the same
// result. The roller is injectable for deterministic tests.
type DiceHandler struct {
	// roll returns a uniform value in [1, sides].
	roll func(sides int) int
}

func NewDiceHandler() *DiceHandler {
	return &DiceHandler{roll: func(sides int) int { return rand.IntN(sides) + 1 }}
}

type rollRequest struct {
	Expression   string `json:"expression" validate:"required,max=128"`
	Description  string `json:"description" validate:"max=256"`
	CampaignID   string `json:"campaign_id"`
	SessionID    string `json:"session_id"`
	Advantage    bool   `json:"advantage"`
	Disadvantage bool   `json:"disadvantage"`
}

// Roll parses the dice expression, rolls every die, and returns the full
// result including per-die raw rolls and a human-readable breakdown.
func (h *DiceHandler) Roll(c echo.Context) error {
	var req rollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sel := domain.ParseDiceExpression(req.Expression)
	if sel.TotalDice() == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "expression contains no dice")
	}
	if sel.TotalDice() > maxDicePerRoll {
		return echo.NewHTTPError(http.StatusBadRequest, "too many dice in expression")
	}

	result := h.perform(sel, req)
	return c.JSON(http.StatusOK, result)
}

func (h *DiceHandler) perform(sel domain.DiceSelection, req rollRequest) domain.DiceRollResult {
	rawRolls := make(map[string][]int)
	total := 0
	var parts []string

	for _, die := range domain.DieTypes {
		count := sel.Counts[die]
		if count == 0 {
			continue
		}
		sides, _ := strconv.Atoi(strings.TrimPrefix(die, "d"))

		values := make([]int, count)
		for i := range values {
			values[i] = h.rollOnce(die, sides, req.Advantage, req.Disadvantage)
			total += values[i]
		}
		rawRolls[die] = values

		label := die
		if count > 1 {
			label = strconv.Itoa(count) + die
		}
		parts = append(parts, fmt.Sprintf("%s [%s]", label, joinInts(values)))
	}

	breakdown := strings.Join(parts, " + ")

	var modifiers []domain.RollModifier
	if sel.Modifier != 0 {
		modifiers = append(modifiers, domain.RollModifier{Label: "modifier", Value: sel.Modifier})
		total += sel.Modifier
		breakdown += fmt.Sprintf(" %+d", sel.Modifier)
	}

	// Critical and fumble only apply to a lone d20.
	isCritical, isFumble := false, false
	if d20 := rawRolls[domain.DieD20]; len(d20) == 1 && len(rawRolls) == 1 {
		isCritical = d20[0] == 20
		isFumble = d20[0] == 1
	}

	now := time.Now().UTC()
	return domain.DiceRollResult{
		ID:         uuid.NewString(),
		Expression: req.Expression,
		RawRolls:   rawRolls,
		Modifiers:  modifiers,
		Total:      total,
		IsCritical: isCritical,
		IsFumble:   isFumble,
		Breakdown:  breakdown + " = " + strconv.Itoa(total),
		Timestamp:  &now,
	}
}

// rollOnce applies advantage/disadvantage to d20 rolls: two rolls, keep the
// better (or worse) one. Other dice always roll straight.
func (h *DiceHandler) rollOnce(die string, sides int, advantage, disadvantage bool) int {
	v := h.roll(sides)
	if die != domain.DieD20 || advantage == disadvantage {
		return v
	}
	second := h.roll(sides)
	if advantage {
		return max(v, second)
	}
	return min(v, second)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// Health is the dice liveness probe consumed by clients before joining.
func (h *DiceHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
