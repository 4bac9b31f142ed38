package game

import (
	"go.uber.org/zap"

	"github.com/lixenwraith/gridshooter/vmath"
)

// updateCollisions runs the bullet/enemy sweep, then the enemy/player loss check
//
// The sweep is a plain O(bullets*enemies) scan. After a hit the scan continues
// with the next enemy index against whatever bullet was swapped into slot b,
// and it stops entirely once either array is empty.
func (g *Game) updateCollisions() {
	s := &g.state

sweep:
	for b := 0; b < s.PlayerBulletsAlive; b++ {
		for e := 0; e < s.EnemiesAlive; e++ {
			if vmath.V2Distance(s.EnemyPositions[e].XY(), s.PlayerBulletPositions[b].XY()) >= BulletHitDistance {
				continue
			}

			s.removeBullet(b)
			g.spawnExplosion(s.EnemyPositions[e])
			s.removeEnemy(e)
			s.PlayerScore += 10 * (1 + int(g.level))

			s.RumbleCountdownRemaining = RumbleDurationSecs
			g.controller.SetHapticIntensity(RumbleIntensity)
			g.sound.PlaySoundEvent(SoundImpact)

			if s.PlayerBulletsAlive == 0 || s.EnemiesAlive == 0 {
				break sweep
			}
		}
	}

	screenBottom := s.PlayerPosition.Y - SpriteSize
	player := s.PlayerPosition.XY()
	for e := 0; e < s.EnemiesAlive; e++ {
		enemy := s.EnemyPositions[e]
		if vmath.V2Distance(enemy.XY(), player) < PlayerHitDistance || enemy.Y <= screenBottom {
			s.RumbleCountdownRemaining = RumbleDurationSecs
			g.controller.SetHapticIntensity(RumbleIntensity)
			g.sound.PlaySoundEvent(SoundImpact)
			g.sound.PlaySoundEvent(SoundFailure)

			s.GameStatus = StatusPlayerLost
			g.logger.Info("player lost", zap.Uint32("level", g.level), zap.Int("score", s.PlayerScore))
			g.level = 0
			break
		}
	}
}

// spawnExplosion places an explosion at pos with a random asset variant in Z
// A full pool drops the explosion; it is purely visual
func (g *Game) spawnExplosion(pos vmath.Vec4) {
	s := &g.state
	if s.ExplosionsAlive >= len(s.ExplosionPositions) {
		g.logger.Warn("explosion pool full", zap.Int("capacity", len(s.ExplosionPositions)))
		return
	}
	i := s.ExplosionsAlive
	s.ExplosionsAlive++
	s.ExplosionPositions[i] = vmath.V4(pos.X, pos.Y, float32(g.rng.Bit()), pos.W)
	s.ExplosionCooldownsRemaining[i] = g.config.ExplosionDurationSecs
}
