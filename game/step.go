package game

import "math/rand"

// Step advances the simulation one tick: paddles from the two latest inputs,
// then ball motion, wall bounces, paddle collisions and scoring. No-op while
// paused or after the match ends, except that nothing stops paddle motion
// during a pending serve.
func Step(s *State, local, remote Input) Events {
	var ev Events
	if s.GameOver || s.Paused {
		return ev
	}

	size := BallSizeFor(s.Theme)

	if local.Up {
		s.PlayerY -= PaddleSpeed
	}
	if local.Down {
		s.PlayerY += PaddleSpeed
	}
	s.PlayerY = clamp(s.PlayerY, 0, FieldHeight-PaddleHeight)

	if remote.Up {
		s.AIY -= PaddleSpeed
	}
	if remote.Down {
		s.AIY += PaddleSpeed
	}
	s.AIY = clamp(s.AIY, 0, FieldHeight-PaddleHeight)

	if s.WaitingForServe {
		return ev
	}

	s.BallX += s.BallVX
	s.BallY += s.BallVY

	if s.BallY <= 0 || s.BallY+size >= FieldHeight {
		s.BallVY *= -1
		s.BallY = clamp(s.BallY, 0, FieldHeight-size)
		ev.WallBounce = true
	}

	// Left paddle (host).
	if s.BallX <= PaddleMargin+PaddleWidth &&
		s.BallY+size > s.PlayerY &&
		s.BallY < s.PlayerY+PaddleHeight {
		s.BallX = PaddleMargin + PaddleWidth
		s.BallVX *= -1
		s.BallVY = ((s.BallY + size/2) - (s.PlayerY + PaddleHeight/2)) * DeflectFactor
		ev.PaddleHit = true
	}

	// Right paddle (guest).
	if s.BallX+size >= FieldWidth-PaddleMargin-PaddleWidth &&
		s.BallY+size > s.AIY &&
		s.BallY < s.AIY+PaddleHeight {
		s.BallX = FieldWidth - PaddleMargin - PaddleWidth - size
		s.BallVX *= -1
		s.BallVY = ((s.BallY + size/2) - (s.AIY + PaddleHeight/2)) * DeflectFactor
		ev.PaddleHit = true
	}

	if s.BallX < 0 {
		s.AIScore++
		ev.ScoredBy = "ai"
		s.enterServe(-1)
	} else if s.BallX+size > FieldWidth {
		s.PlayerScore++
		ev.ScoredBy = "player"
		s.enterServe(1)
	}

	if s.PlayerScore >= WinningScore || s.AIScore >= WinningScore {
		s.GameOver = true
		ev.Finished = true
	}

	return ev
}

// enterServe parks the ball at center and records the direction the next
// serve launches toward.
func (s *State) enterServe(direction int) {
	s.WaitingForServe = true
	s.PendingServeDirection = direction
	s.parkBall()
}

// Serve launches a pending serve: horizontal speed in the recorded direction,
// vertical a bounded random component. Only the host actually calls this; a
// serve request relayed from the guest is honored identically to a local one.
// Reports false when no serve is pending.
func (s *State) Serve(rng *rand.Rand) bool {
	if !s.WaitingForServe || s.GameOver || s.Paused {
		return false
	}
	speed := BallSpeed * s.Difficulty
	s.BallVX = speed * float64(s.PendingServeDirection)
	s.BallVY = speed * (rng.Float64()*2 - 1) * ServeSpread
	s.WaitingForServe = false
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
