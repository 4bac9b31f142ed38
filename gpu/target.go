package gpu

import "github.com/lixenwraith/gridshooter/vmath"

// FrameInfo opens a render pass on a target
type FrameInfo struct {
	Label      string
	ClearColor vmath.Vec4
}

// SpriteBatch is an instanced quad draw resolved from buffer memory
type SpriteBatch struct {
	Texture    int
	Uniforms   FrameUniforms
	SpriteSize vmath.Vec2
	Instances  []vmath.Vec4
}

// MeshBatch is an indexed, instanced mesh draw
type MeshBatch struct {
	Vertices  []Vertex
	Indices   []uint16
	Instances []CubeUniforms
}

// TextLine is one resolved HUD string in canvas coordinates
type TextLine struct {
	Position vmath.Vec2
	Text     string
}

// TextBatch is a set of HUD strings sharing frame uniforms
type TextBatch struct {
	Uniforms FrameUniforms
	Lines    []TextLine
}

// RenderTarget receives resolved draws on the queue goroutine
// Batch slices are copies; targets may retain them
type RenderTarget interface {
	BeginPass(info FrameInfo)
	DrawSprites(batch SpriteBatch)
	DrawMesh(batch MeshBatch)
	DrawText(batch TextBatch)
	EndPass()
}

// Drawable is a presentable surface
type Drawable interface {
	Present()
}
