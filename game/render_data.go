package game

import (
	"fmt"
	"unsafe"

	"github.com/lixenwraith/gridshooter/bump"
	"github.com/lixenwraith/gridshooter/frame"
	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/vmath"
)

// Per-slot buffer names
const (
	BufFrameData            = "frameData"
	BufEnemyPosition        = "enemyPosition"
	BufPlayerPosition       = "playerPosition"
	BufPlayerBulletPosition = "playerBulletPosition"
	BufBackgroundPosition   = "backgroundPosition"
	BufExplosionPosition    = "explosionPosition"
)

const vec4Size = int(unsafe.Sizeof(vmath.Vec4{}))

// MaxHUDLines bounds hudLines: score, level and one status banner
const MaxHUDLines = 3

// HUDScratchBytes is the bump space DrawUI needs in the worst case
func HUDScratchBytes() int {
	return int(bump.AlignUp(uint64(MaxHUDLines)*uint64(unsafe.Sizeof(gpu.TextRecord{})), bump.Alignment))
}

// BufferLayout describes the per-slot buffers the game writes every frame
func BufferLayout(cfg Config) []frame.BufferSpec {
	return []frame.BufferSpec{
		{Name: BufFrameData, Size: int(unsafe.Sizeof(gpu.FrameUniforms{}))},
		{Name: BufEnemyPosition, Size: vec4Size * cfg.EnemyCount()},
		{Name: BufPlayerPosition, Size: vec4Size},
		{Name: BufPlayerBulletPosition, Size: vec4Size * int(cfg.MaxPlayerBullets)},
		{Name: BufBackgroundPosition, Size: vec4Size},
		{Name: BufExplosionPosition, Size: vec4Size * int(cfg.MaxExplosions)},
	}
}

// WriteFrame copies the current state into slot
func (g *Game) WriteFrame(slot *frame.Slot) error {
	s := &g.state
	uniforms := gpu.FrameUniforms{
		Projection: g.projection,
		Brightness: g.tone.Brightness,
		MaxEDR:     g.tone.MaxEDR,
		EDRBias:    g.tone.EDRBias,
	}
	writes := []error{
		frame.Write(slot, BufFrameData, []gpu.FrameUniforms{uniforms}),
		frame.Write(slot, BufEnemyPosition, s.EnemyPositions[:s.EnemiesAlive]),
		frame.Write(slot, BufPlayerPosition, []vmath.Vec4{s.PlayerPosition}),
		frame.Write(slot, BufPlayerBulletPosition, s.PlayerBulletPositions[:s.PlayerBulletsAlive]),
		frame.Write(slot, BufBackgroundPosition, []vmath.Vec4{s.BackgroundPosition}),
		frame.Write(slot, BufExplosionPosition, s.ExplosionPositions[:s.ExplosionsAlive]),
	}
	for _, err := range writes {
		if err != nil {
			return fmt.Errorf("game: write frame %d: %w", slot.Index(), err)
		}
	}
	return nil
}

// Draw encodes the sprite batches of one frame, back to front
func (g *Game) Draw(enc *gpu.RenderEncoder, slot *frame.Slot) {
	s := &g.state
	frameData := gpu.BufferBinding{Buffer: slot.Buffer(BufFrameData)}
	sprite := vmath.V2(SpriteSize, SpriteSize)
	_, h := g.config.CanvasSize()

	batches := []gpu.SpriteDraw{
		{Texture: BackgroundTexture, Instances: binding(slot, BufBackgroundPosition), InstanceCount: 1, SpriteSize: vmath.V2(h*BackgroundAspect, h)},
		{Texture: EnemyTexture, Instances: binding(slot, BufEnemyPosition), InstanceCount: s.EnemiesAlive, SpriteSize: sprite},
		{Texture: PlayerTexture, Instances: binding(slot, BufPlayerPosition), InstanceCount: 1, SpriteSize: sprite},
		{Texture: PlayerBulletTexture, Instances: binding(slot, BufPlayerBulletPosition), InstanceCount: s.PlayerBulletsAlive, SpriteSize: sprite},
		{Texture: ExplosionTexture, Instances: binding(slot, BufExplosionPosition), InstanceCount: s.ExplosionsAlive, SpriteSize: sprite},
	}
	for _, d := range batches {
		d.Frame = frameData
		enc.DrawSprites(d)
	}
}

// DrawUI encodes the HUD; text records come from the slot's bump allocator
func (g *Game) DrawUI(enc *gpu.RenderEncoder, slot *frame.Slot) error {
	lines := g.hudLines()
	records, offset, err := bump.Allocate[gpu.TextRecord](slot.Bump(), len(lines))
	if err != nil {
		return fmt.Errorf("game: hud: %w", err)
	}
	w, h := g.config.CanvasSize()
	for i, line := range lines {
		records[i] = gpu.TextRecord{X: -w/2 + 0.2, Y: h/2 - 0.3 - float32(i)*0.4}
		records[i].SetText(line)
	}
	enc.DrawText(gpu.TextDraw{
		Frame:   gpu.BufferBinding{Buffer: slot.Buffer(BufFrameData)},
		Records: gpu.BufferBinding{Buffer: slot.Bump().BaseBuffer(), Offset: offset},
		Count:   len(records),
	})
	return nil
}

func (g *Game) hudLines() []string {
	s := &g.state
	lines := []string{
		fmt.Sprintf("SCORE %d", s.PlayerScore),
		fmt.Sprintf("LEVEL %d", g.level+1),
	}
	switch s.GameStatus {
	case StatusPlayerWon:
		lines = append(lines, "LEVEL CLEARED")
	case StatusPlayerLost:
		lines = append(lines, "GAME OVER")
	}
	return lines
}

func binding(slot *frame.Slot, name string) gpu.BufferBinding {
	return gpu.BufferBinding{Buffer: slot.Buffer(name)}
}
