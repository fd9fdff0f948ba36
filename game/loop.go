package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/BlessPro/PongFocus/models"
)

// Loop runs the authoritative simulation on the host side at a fixed tick
// cadence and emits a full snapshot after every tick. A tick completes
// (mutation + emission) before the next begins; remote input lands in
// latestRemote asynchronously and is applied at the next tick boundary.
type Loop struct {
	mu           sync.Mutex
	state        *State
	localInput   Input
	latestRemote Input
	rng          *rand.Rand

	tickRate int

	// Emit receives the snapshot after every tick. OnEvents and OnGameOver
	// are optional.
	Emit       func(models.GameSnapshot)
	OnEvents   func(Events)
	OnGameOver func(snap models.GameSnapshot)
}

func NewLoop(state *State, tickRate int, emit func(models.GameSnapshot)) *Loop {
	if tickRate <= 0 {
		tickRate = TickRate
	}
	return &Loop{
		state:    state,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		tickRate: tickRate,
		Emit:     emit,
	}
}

// SetLocalInput records the host's currently-held keys.
func (l *Loop) SetLocalInput(in Input) {
	l.mu.Lock()
	l.localInput = in
	l.mu.Unlock()
}

// SetRemoteInput records the guest's latest input intent. Stale intents are
// simply overwritten, never queued.
func (l *Loop) SetRemoteInput(in Input) {
	l.mu.Lock()
	l.latestRemote = in
	l.mu.Unlock()
}

// Serve launches a pending serve and broadcasts the result immediately so
// the guest sees the ball move on the same frame.
func (l *Loop) Serve() {
	l.mu.Lock()
	served := l.state.Serve(l.rng)
	snap := l.state.Snapshot()
	l.mu.Unlock()
	if served {
		l.emit(snap)
	}
}

// TogglePause flips the pause flag. Only the host's toggle is binding, and
// the full snapshot is re-broadcast at once so both views stay consistent.
func (l *Loop) TogglePause() {
	l.mu.Lock()
	if l.state.GameOver {
		l.mu.Unlock()
		return
	}
	l.state.Paused = !l.state.Paused
	snap := l.state.Snapshot()
	l.mu.Unlock()
	l.emit(snap)
}

// PeerLost parks the match when the guest drops mid-game: paused, serve
// pending, ball at center. Nothing is emitted; the peer is gone and no
// further snapshots are required until a fresh session starts.
func (l *Loop) PeerLost() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Paused = true
	if !l.state.GameOver && !l.state.WaitingForServe {
		l.state.enterServe(l.state.PendingServeDirection)
	}
}

// Snapshot returns the current state in wire form.
func (l *Loop) Snapshot() models.GameSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Snapshot()
}

// Run ticks until ctx is canceled or the match ends. When the winning score
// is reached it keeps emitting for GameOverDelay so the final score renders,
// then fires OnGameOver once and returns.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(l.tickRate))
	defer ticker.Stop()

	var announceAt time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			ev := Step(l.state, l.localInput, l.latestRemote)
			snap := l.state.Snapshot()
			l.mu.Unlock()

			l.emit(snap)
			if l.OnEvents != nil && (ev.PaddleHit || ev.WallBounce || ev.ScoredBy != "" || ev.Finished) {
				l.OnEvents(ev)
			}

			if ev.Finished {
				announceAt = now.Add(GameOverDelay)
			}
			if !announceAt.IsZero() && !now.Before(announceAt) {
				if l.OnGameOver != nil {
					l.OnGameOver(snap)
				}
				return
			}
		}
	}
}

func (l *Loop) emit(snap models.GameSnapshot) {
	if l.Emit != nil {
		l.Emit(snap)
	}
}
