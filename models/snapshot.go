package models

// GameSnapshot is the unit of state replicated from host to guest every tick.
// It is mutated only by the host's game loop; the guest overwrites its whole
// local copy on receipt, never merging.
type GameSnapshot struct {
	PlayerY               float64 `json:"playerY"`
	AIY                   float64 `json:"aiY"`
	BallX                 float64 `json:"ballX"`
	BallY                 float64 `json:"ballY"`
	BallVX                float64 `json:"ballVX"`
	BallVY                float64 `json:"ballVY"`
	PlayerScore           int     `json:"playerScore"`
	AIScore               int     `json:"aiScore"`
	WaitingForServe       bool    `json:"waitingForServe"`
	PendingServeDirection int     `json:"pendingServeDirection"`
	GameOver              bool    `json:"gameOver"`
	Paused                bool    `json:"paused"`
	CurrentTheme          string  `json:"currentTheme"`
}
