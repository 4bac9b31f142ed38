package game

import "github.com/lixenwraith/gridshooter/vmath"

// Direction of the enemy formation
type Direction uint8

const (
	DirectionRight Direction = iota
	DirectionLeft
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionRight:
		return "right"
	case DirectionLeft:
		return "left"
	case DirectionDown:
		return "down"
	}
	return "unknown"
}

// Status of the current game
type Status uint8

const (
	StatusOngoing Status = iota
	StatusPlayerWon
	StatusPlayerLost
)

func (s Status) String() string {
	switch s {
	case StatusOngoing:
		return "ongoing"
	case StatusPlayerWon:
		return "won"
	case StatusPlayerLost:
		return "lost"
	}
	return "unknown"
}

// State is the simulation state
// Each entity kind is a fixed-capacity array; the first *Alive entries are live
type State struct {
	EnemyPositions []vmath.Vec4
	EnemiesAlive   int

	PlayerBulletPositions       []vmath.Vec4
	PlayerBulletsAlive          int
	PlayerFireCooldownRemaining float32

	// Explosion Z selects the asset variant
	ExplosionPositions          []vmath.Vec4
	ExplosionCooldownsRemaining []float32
	ExplosionsAlive             int

	PlayerPosition     vmath.Vec4
	BackgroundPosition vmath.Vec4

	CurrentEnemyDirection  Direction
	NextEnemyDirection     Direction
	EnemyMoveDownRemaining float32

	RumbleCountdownRemaining float32
	GameStatus               Status
	PlayerScore              int
}

func newState(cfg Config) State {
	return State{
		EnemyPositions:              make([]vmath.Vec4, cfg.EnemyCount()),
		PlayerBulletPositions:       make([]vmath.Vec4, cfg.MaxPlayerBullets),
		ExplosionPositions:          make([]vmath.Vec4, cfg.MaxExplosions),
		ExplosionCooldownsRemaining: make([]float32, cfg.MaxExplosions),
	}
}

// Reset clears counters and positions; backing arrays keep their capacity
func (s *State) Reset() {
	s.EnemiesAlive = 0
	s.PlayerBulletsAlive = 0
	s.PlayerFireCooldownRemaining = 0
	s.ExplosionsAlive = 0
	s.PlayerPosition = vmath.Point(0, 0, 0)
	s.CurrentEnemyDirection = DirectionRight
	s.NextEnemyDirection = DirectionRight
	s.BackgroundPosition = vmath.Point(0, 0, 0)
	s.GameStatus = StatusOngoing
	s.RumbleCountdownRemaining = 0
	s.EnemyMoveDownRemaining = 0
}

// checkInvariants verifies alive counts against backing capacity
func (s *State) checkInvariants() error {
	switch {
	case s.EnemiesAlive < 0 || s.EnemiesAlive > len(s.EnemyPositions):
		return invariantf("enemies alive %d, capacity %d", s.EnemiesAlive, len(s.EnemyPositions))
	case s.PlayerBulletsAlive < 0 || s.PlayerBulletsAlive > len(s.PlayerBulletPositions):
		return invariantf("bullets alive %d, capacity %d", s.PlayerBulletsAlive, len(s.PlayerBulletPositions))
	case s.ExplosionsAlive < 0 || s.ExplosionsAlive > len(s.ExplosionPositions):
		return invariantf("explosions alive %d, capacity %d", s.ExplosionsAlive, len(s.ExplosionPositions))
	}
	return nil
}

func (s *State) removeEnemy(i int) {
	last := s.EnemiesAlive - 1
	s.EnemyPositions[i], s.EnemyPositions[last] = s.EnemyPositions[last], s.EnemyPositions[i]
	s.EnemiesAlive--
}

func (s *State) removeBullet(i int) {
	last := s.PlayerBulletsAlive - 1
	s.PlayerBulletPositions[i], s.PlayerBulletPositions[last] = s.PlayerBulletPositions[last], s.PlayerBulletPositions[i]
	s.PlayerBulletsAlive--
}

func (s *State) removeExplosion(i int) {
	last := s.ExplosionsAlive - 1
	s.ExplosionPositions[i], s.ExplosionPositions[last] = s.ExplosionPositions[last], s.ExplosionPositions[i]
	s.ExplosionCooldownsRemaining[i], s.ExplosionCooldownsRemaining[last] = s.ExplosionCooldownsRemaining[last], s.ExplosionCooldownsRemaining[i]
	s.ExplosionsAlive--
}

// Snapshot is a read-only summary of the state after a tick
type Snapshot struct {
	Status          Status
	Score           int
	Level           uint32
	EnemiesAlive    int
	BulletsAlive    int
	ExplosionsAlive int
	PlayerPosition  vmath.Vec4
	Elapsed         float32
}
