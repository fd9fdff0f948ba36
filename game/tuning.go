package game

import "time"

// Play-field and physics constants. The field is 800x500 with the paddle
// faces at x=30 and x=770.
const (
	FieldWidth  = 800.0
	FieldHeight = 500.0

	PaddleWidth  = 12.0
	PaddleHeight = 80.0
	PaddleMargin = 18.0

	PaddleSpeed = 6.0

	// Base ball speed before the difficulty factor is applied.
	BallSpeed = 5.0

	// Vertical velocity after a paddle hit is this fraction of the impact
	// offset from the paddle center.
	DeflectFactor = 0.18

	// A serve's vertical component is speed * rand(-1,1) * ServeSpread.
	ServeSpread = 0.7

	WinningScore = 10

	TickRate = 60

	// Delay before the end-of-match announcement, so the final score has a
	// frame to render before any overlay appears.
	GameOverDelay = 300 * time.Millisecond
)

const DefaultTheme = "classic"

// Ball size per theme, from the client theme table.
var themeBallSizes = map[string]float64{
	"classic": 14,
	"neon":    18,
	"retro":   12,
	"ocean":   16,
	"lava":    20,
}

// BallSizeFor returns the ball size for a theme, defaulting to classic for
// unknown identifiers.
func BallSizeFor(theme string) float64 {
	if size, ok := themeBallSizes[theme]; ok {
		return size
	}
	return themeBallSizes[DefaultTheme]
}

// DifficultyFactor scales ball speed by level: level 1 is 1.0, each level
// adds 10%.
func DifficultyFactor(level int) float64 {
	if level < 1 {
		level = 1
	}
	return 1 + float64(level-1)*0.1
}
