package game

import "github.com/BlessPro/PongFocus/models"

// State is the canonical session state. It is owned by the host's Loop;
// nothing else mutates it. PlayerY is the host's (left) paddle, AIY the
// guest's (right) paddle, names kept from the original single-player field
// layout so the snapshot stays wire-compatible.
type State struct {
	PlayerY float64
	AIY     float64

	BallX, BallY   float64
	BallVX, BallVY float64

	PlayerScore int
	AIScore     int

	WaitingForServe       bool
	PendingServeDirection int
	GameOver              bool
	Paused                bool

	Theme      string
	Difficulty float64
}

// Input is one side's currently-held movement keys. Level-triggered: only the
// latest value matters, stale intents are never queued.
type Input struct {
	Up   bool
	Down bool
}

// Events reports what a single Step did, for score/hit sounds and match-end
// handling on the rendering side.
type Events struct {
	PaddleHit  bool
	WallBounce bool
	// ScoredBy is "player", "ai" or "" for no score this tick.
	ScoredBy string
	Finished bool
}

// NewState returns a match ready for its opening serve: ball parked at
// center, serve pending toward the given direction (+1 right, -1 left).
func NewState(theme string, level int, serveDirection int) *State {
	if serveDirection >= 0 {
		serveDirection = 1
	} else {
		serveDirection = -1
	}
	s := &State{
		PlayerY:               (FieldHeight - PaddleHeight) / 2,
		AIY:                   (FieldHeight - PaddleHeight) / 2,
		WaitingForServe:       true,
		PendingServeDirection: serveDirection,
		Theme:                 theme,
		Difficulty:            DifficultyFactor(level),
	}
	s.parkBall()
	return s
}

func (s *State) parkBall() {
	size := BallSizeFor(s.Theme)
	s.BallX = FieldWidth/2 - size/2
	s.BallY = FieldHeight/2 - size/2
	s.BallVX = 0
	s.BallVY = 0
}

// Snapshot copies the full state into its wire form.
func (s *State) Snapshot() models.GameSnapshot {
	return models.GameSnapshot{
		PlayerY:               s.PlayerY,
		AIY:                   s.AIY,
		BallX:                 s.BallX,
		BallY:                 s.BallY,
		BallVX:                s.BallVX,
		BallVY:                s.BallVY,
		PlayerScore:           s.PlayerScore,
		AIScore:               s.AIScore,
		WaitingForServe:       s.WaitingForServe,
		PendingServeDirection: s.PendingServeDirection,
		GameOver:              s.GameOver,
		Paused:                s.Paused,
		CurrentTheme:          s.Theme,
	}
}

// Apply overwrites the entire state from a received snapshot. The guest calls
// this for every state message; there is no partial merge, so applying the
// same snapshot twice is a no-op.
func (s *State) Apply(snap models.GameSnapshot) {
	s.PlayerY = snap.PlayerY
	s.AIY = snap.AIY
	s.BallX = snap.BallX
	s.BallY = snap.BallY
	s.BallVX = snap.BallVX
	s.BallVY = snap.BallVY
	s.PlayerScore = snap.PlayerScore
	s.AIScore = snap.AIScore
	s.WaitingForServe = snap.WaitingForServe
	s.PendingServeDirection = snap.PendingServeDirection
	s.GameOver = snap.GameOver
	s.Paused = snap.Paused
	s.Theme = snap.CurrentTheme
}
