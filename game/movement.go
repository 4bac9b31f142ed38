package game

import (
	"github.com/lixenwraith/gridshooter/input"
	"github.com/lixenwraith/gridshooter/vmath"
)

func decay(v, elapsed float32) float32 {
	v -= elapsed
	if v < 0 {
		return 0
	}
	return v
}

// advanceCooldowns ticks fire, explosion and rumble timers; expired explosions are removed
func (g *Game) advanceCooldowns(elapsed float32) {
	s := &g.state
	s.PlayerFireCooldownRemaining = decay(s.PlayerFireCooldownRemaining, elapsed)

	for i := 0; i < s.ExplosionsAlive; {
		s.ExplosionCooldownsRemaining[i] = decay(s.ExplosionCooldownsRemaining[i], elapsed)
		if s.ExplosionCooldownsRemaining[i] == 0 {
			s.removeExplosion(i)
			continue
		}
		i++
	}

	if s.RumbleCountdownRemaining > 0 {
		s.RumbleCountdownRemaining = decay(s.RumbleCountdownRemaining, elapsed)
		if s.RumbleCountdownRemaining == 0 {
			g.controller.SetHapticIntensity(0)
		}
	}
}

func (g *Game) movePlayer(in input.ControllerState, elapsed float32) {
	w, _ := g.config.CanvasSize()
	limit := w/2 - SpriteSize/2
	p := &g.state.PlayerPosition
	p.X = vmath.Clamp(p.X+in.MoveX*g.config.PlayerSpeed*elapsed, -limit, limit)
}

func (g *Game) fire(in input.ControllerState) {
	s := &g.state
	if !in.Fire || s.PlayerFireCooldownRemaining > 0 || s.PlayerBulletsAlive >= len(s.PlayerBulletPositions) {
		return
	}
	s.PlayerBulletPositions[s.PlayerBulletsAlive] = vmath.Point(s.PlayerPosition.X, s.PlayerPosition.Y+SpriteSize, 0)
	s.PlayerBulletsAlive++
	s.PlayerFireCooldownRemaining = g.config.PlayerFireCooldownSecs
}

// moveBullets advances bullets and drops those past the top edge
func (g *Game) moveBullets(elapsed float32) {
	s := &g.state
	_, h := g.config.CanvasSize()
	top := h/2 + SpriteSize
	for i := 0; i < s.PlayerBulletsAlive; {
		s.PlayerBulletPositions[i].Y += g.config.PlayerBulletSpeed * elapsed
		if s.PlayerBulletPositions[i].Y > top {
			s.removeBullet(i)
			continue
		}
		i++
	}
}

// moveEnemies marches the formation sideways, stepping down and reversing at the canvas edge
func (g *Game) moveEnemies(elapsed float32) {
	s := &g.state
	if s.EnemiesAlive == 0 {
		return
	}
	step := g.config.EnemySpeed * elapsed

	if s.CurrentEnemyDirection == DirectionDown {
		if step > s.EnemyMoveDownRemaining {
			step = s.EnemyMoveDownRemaining
		}
		for i := 0; i < s.EnemiesAlive; i++ {
			s.EnemyPositions[i].Y -= step
		}
		s.EnemyMoveDownRemaining -= step
		if s.EnemyMoveDownRemaining <= 0 {
			s.EnemyMoveDownRemaining = 0
			s.CurrentEnemyDirection = s.NextEnemyDirection
		}
		return
	}

	dx := step
	if s.CurrentEnemyDirection == DirectionLeft {
		dx = -step
	}
	w, _ := g.config.CanvasSize()
	limit := w/2 - SpriteSize/2
	hitEdge := false
	for i := 0; i < s.EnemiesAlive; i++ {
		s.EnemyPositions[i].X += dx
		x := s.EnemyPositions[i].X
		if (dx > 0 && x >= limit) || (dx < 0 && x <= -limit) {
			hitEdge = true
		}
	}
	if !hitEdge {
		return
	}
	if s.CurrentEnemyDirection == DirectionRight {
		s.NextEnemyDirection = DirectionLeft
	} else {
		s.NextEnemyDirection = DirectionRight
	}
	s.CurrentEnemyDirection = DirectionDown
	s.EnemyMoveDownRemaining = g.config.EnemyMoveDownStep
}

// scrollBackground moves the background down, wrapping after one canvas height
func (g *Game) scrollBackground(elapsed float32) {
	_, h := g.config.CanvasSize()
	bg := &g.state.BackgroundPosition
	bg.Y -= g.config.BackgroundScrollSpeed * elapsed
	if bg.Y <= -h {
		bg.Y += h
	}
}
