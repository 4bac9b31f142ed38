package game

import "fmt"

// Texture slots of the sprite atlas
const (
	EnemyTexture = iota
	PlayerTexture
	PlayerBulletTexture
	BackgroundTexture
	ExplosionTexture
	NumTextures
)

const (
	SpriteSize         float32 = 0.5
	RumbleDurationSecs float32 = 0.1
	RumbleIntensity    float32 = 1.0
	CanvasWidth        float32 = 10
	BulletHitDistance  float32 = 0.5
	PlayerHitDistance  float32 = 0.45
	BackgroundAspect   float32 = 1920.0 / 1080.0
)

// Sound event identifiers
const (
	SoundImpact  = "impact2.mp3"
	SoundFailure = "failure.mp3"
)

// Config holds construction-time game parameters
type Config struct {
	ScreenWidth            uint32  `toml:"screen_width"`
	ScreenHeight           uint32  `toml:"screen_height"`
	EnemyRows              uint8   `toml:"enemy_rows"`
	EnemyCols              uint8   `toml:"enemy_cols"`
	EnemySpeed             float32 `toml:"enemy_speed"`
	EnemyMoveDownStep      float32 `toml:"enemy_move_down_step"`
	PlayerSpeed            float32 `toml:"player_speed"`
	PlayerBulletSpeed      float32 `toml:"player_bullet_speed"`
	PlayerFireCooldownSecs float32 `toml:"player_fire_cooldown_secs"`
	MaxPlayerBullets       uint8   `toml:"max_player_bullets"`
	MaxExplosions          uint8   `toml:"max_explosions"`
	ExplosionDurationSecs  float32 `toml:"explosion_duration_secs"`
	BackgroundScrollSpeed  float32 `toml:"background_scroll_speed"`
	// RestartDelaySecs is the pause between a finished game and the next one
	RestartDelaySecs float32 `toml:"restart_delay_secs"`
}

// DefaultConfig returns the standard game configuration
func DefaultConfig() Config {
	return Config{
		ScreenWidth:            1920,
		ScreenHeight:           1080,
		EnemyRows:              4,
		EnemyCols:              8,
		EnemySpeed:             1.0,
		EnemyMoveDownStep:      0.25,
		PlayerSpeed:            5.0,
		PlayerBulletSpeed:      8.0,
		PlayerFireCooldownSecs: 0.3,
		MaxPlayerBullets:       15,
		MaxExplosions:          32,
		ExplosionDurationSecs:  0.4,
		BackgroundScrollSpeed:  0.2,
		RestartDelaySecs:       2.0,
	}
}

// Validate checks capacities and speeds
func (c Config) Validate() error {
	switch {
	case c.ScreenWidth == 0 || c.ScreenHeight == 0:
		return fmt.Errorf("game: screen size %dx%d", c.ScreenWidth, c.ScreenHeight)
	case c.EnemyRows == 0 || c.EnemyCols == 0:
		return fmt.Errorf("game: enemy grid %dx%d", c.EnemyRows, c.EnemyCols)
	case int(c.EnemyRows)*int(c.EnemyCols) > 255:
		return fmt.Errorf("game: enemy grid %dx%d exceeds 255 enemies", c.EnemyRows, c.EnemyCols)
	case c.MaxPlayerBullets == 0:
		return fmt.Errorf("game: max_player_bullets must be positive")
	case c.MaxExplosions < c.MaxPlayerBullets:
		return fmt.Errorf("game: max_explosions %d below max_player_bullets %d", c.MaxExplosions, c.MaxPlayerBullets)
	case c.EnemySpeed <= 0 || c.PlayerSpeed <= 0 || c.PlayerBulletSpeed <= 0:
		return fmt.Errorf("game: speeds must be positive")
	case c.EnemyMoveDownStep < 0 || c.PlayerFireCooldownSecs < 0 || c.ExplosionDurationSecs < 0:
		return fmt.Errorf("game: negative step or duration")
	}
	return nil
}

// EnemyCount returns rows*cols
func (c Config) EnemyCount() int { return int(c.EnemyRows) * int(c.EnemyCols) }

// CanvasSize returns the world-space canvas: fixed width, height following the screen aspect
func (c Config) CanvasSize() (w, h float32) {
	return CanvasWidth, CanvasWidth * float32(c.ScreenHeight) / float32(c.ScreenWidth)
}
