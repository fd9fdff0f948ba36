package client

import "sync"

// Leaderboard tracks win counts by display name on the host. It is sent to
// the guest as an opaque leaderboard payload after each match.
type Leaderboard struct {
	mu   sync.Mutex
	wins map[string]int
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{wins: make(map[string]int)}
}

func (l *Leaderboard) RecordWin(name string) {
	if name == "" {
		return
	}
	l.mu.Lock()
	l.wins[name]++
	l.mu.Unlock()
}

// Table returns a copy of the win counts.
func (l *Leaderboard) Table() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.wins))
	for name, count := range l.wins {
		out[name] = count
	}
	return out
}
