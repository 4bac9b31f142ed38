package render

import "github.com/lixenwraith/gridshooter/game"

// Appearance is how a sprite texture shows up on a presenter without image assets
type Appearance struct {
	Glyph rune
	Color RGB
}

// Palette maps sprite texture slots to appearances
var Palette = [game.NumTextures]Appearance{
	game.EnemyTexture:        {Glyph: 'W', Color: RGB{200, 80, 255}},
	game.PlayerTexture:       {Glyph: 'A', Color: RGB{80, 255, 120}},
	game.PlayerBulletTexture: {Glyph: '|', Color: RGB{255, 230, 80}},
	game.BackgroundTexture:   {Glyph: '.', Color: RGB{90, 100, 140}},
	game.ExplosionTexture:    {Glyph: '*', Color: RGB{255, 140, 40}},
}

var (
	rgbBackground = RGB{26, 27, 38}
	rgbText       = RGB{240, 240, 240}
	rgbCubeVertex = RGB{255, 255, 255}
)

// Appear returns the appearance of a texture slot, unknown slots render as '?'
func Appear(texture int) Appearance {
	if texture < 0 || texture >= len(Palette) {
		return Appearance{Glyph: '?', Color: RGBWhite}
	}
	return Palette[texture]
}

// starAt is a stable pseudo-random star field keyed by cell, density is 1 in 29
func starAt(x, y int) bool {
	h := uint32(x)*73856093 ^ uint32(y)*19349663
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return h%29 == 0
}
