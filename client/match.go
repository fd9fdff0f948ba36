package client

import (
	"context"
	"encoding/json"

	"github.com/BlessPro/PongFocus/game"
	"github.com/BlessPro/PongFocus/models"
	"github.com/BlessPro/PongFocus/session"
)

// maybeStart is the host's half of the readiness rendezvous: once both sides
// have signaled ready, announce the match and start the authoritative loop.
// The guest never starts anything.
func (c *Client) maybeStart() {
	c.mu.Lock()
	if !c.machine.CanStart() {
		c.mu.Unlock()
		return
	}
	c.machine.Apply(session.EvStart)

	direction := 1
	if c.rng.Intn(2) == 0 {
		direction = -1
	}
	state := game.NewState(c.opts.Theme, c.opts.Level, direction)
	loop := game.NewLoop(state, c.opts.TickRate, c.emitState)
	loop.OnEvents = c.cb.OnEvents
	loop.OnGameOver = c.matchOver
	c.loop = loop

	ctx, cancel := context.WithCancel(context.Background())
	c.loopStop = cancel
	names := models.StartNames{P1: c.hostName, P2: c.guestName}
	c.mu.Unlock()

	c.writeJSON(models.StartMessage{
		Type:  models.TypeStart,
		Role:  models.RoleGuest,
		Names: names,
	})
	if c.cb.OnStart != nil {
		c.cb.OnStart(models.RoleHost, names)
	}

	go loop.Run(ctx)
}

func (c *Client) emitState(snap models.GameSnapshot) {
	c.writeJSON(models.StateMessage{Type: models.TypeState, GameSnapshot: snap})
	if c.cb.OnState != nil {
		c.cb.OnState(snap)
	}
}

// matchOver fires once on the host after the end-of-match delay: record the
// win, push the leaderboard to the guest, surface the final snapshot.
func (c *Client) matchOver(snap models.GameSnapshot) {
	c.mu.Lock()
	winner := c.hostName
	if snap.AIScore > snap.PlayerScore {
		winner = c.guestName
	}
	c.loopStop = nil
	c.mu.Unlock()

	c.wins.RecordWin(winner)
	table := c.wins.Table()

	c.writeJSON(models.LeaderboardMessage{Type: models.TypeLeaderboard, Data: table})
	if c.cb.OnLeaderboard != nil {
		c.cb.OnLeaderboard(table)
	}
	if c.cb.OnGameOver != nil {
		c.cb.OnGameOver(snap)
	}
}

// SetInput records the locally-held movement keys. The host feeds its loop
// directly; the guest sends the intent to be applied at the host's next tick.
func (c *Client) SetInput(up, down bool) error {
	if loop := c.currentLoop(); loop != nil {
		loop.SetLocalInput(game.Input{Up: up, Down: down})
		return nil
	}
	return c.writeJSON(models.InputMessage{Type: models.TypeInput, Up: up, Down: down})
}

// Serve requests the pending serve. Only the host's loop actually launches
// the ball; the guest's request is relayed and honored identically.
func (c *Client) Serve() error {
	if loop := c.currentLoop(); loop != nil {
		loop.Serve()
		return nil
	}
	return c.writeJSON(models.ServeMessage{Type: models.TypeServe})
}

// TogglePause requests a pause toggle; binding only on the host.
func (c *Client) TogglePause() error {
	if loop := c.currentLoop(); loop != nil {
		loop.TogglePause()
		return nil
	}
	return c.writeJSON(models.PauseToggleMessage{Type: models.TypePauseToggle})
}

// Wins returns the host's win table.
func (c *Client) Wins() map[string]int {
	return c.wins.Table()
}

func (c *Client) currentLoop() *game.Loop {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop
}

// withLoop runs fn against the authoritative loop if one exists. Requests
// arriving at a loop-less peer (the guest) are dropped.
func (c *Client) withLoop(fn func(*game.Loop)) {
	if loop := c.currentLoop(); loop != nil {
		fn(loop)
	}
}

// handleRemoteInput runs on the host: latest guest intent replaces the
// previous one, and an input frame with serve set is a serve request.
func (c *Client) handleRemoteInput(raw []byte) {
	var msg models.InputMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	loop := c.currentLoop()
	if loop == nil {
		return
	}
	loop.SetRemoteInput(game.Input{Up: msg.Up, Down: msg.Down})
	if msg.Serve {
		loop.Serve()
	}
}
