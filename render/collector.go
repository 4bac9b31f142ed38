package render

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/vmath"
)

// ErrClosed is returned by presenters whose surface was closed by the user
var ErrClosed = errors.New("render: presenter closed")

// Frame is one completed render pass
type Frame struct {
	Label      string
	ClearColor vmath.Vec4
	Sprites    []gpu.SpriteBatch
	Meshes     []gpu.MeshBatch
	Text       []gpu.TextBatch
}

// Uniforms returns the frame uniforms of the first batch carrying them
func (f *Frame) Uniforms() (gpu.FrameUniforms, bool) {
	if len(f.Sprites) > 0 {
		return f.Sprites[0].Uniforms, true
	}
	if len(f.Text) > 0 {
		return f.Text[0].Uniforms, true
	}
	return gpu.FrameUniforms{}, false
}

// SpriteCount is the total instance count across batches for one texture
func (f *Frame) SpriteCount(texture int) int {
	n := 0
	for _, b := range f.Sprites {
		if b.Texture == texture {
			n += len(b.Instances)
		}
	}
	return n
}

// Lines returns every HUD string in draw order
func (f *Frame) Lines() []string {
	var out []string
	for _, b := range f.Text {
		for _, l := range b.Lines {
			out = append(out, l.Text)
		}
	}
	return out
}

// Collector is a gpu.RenderTarget that assembles passes into frames
// The queue goroutine writes; presenters read the latest completed frame from any goroutine
type Collector struct {
	mu      sync.Mutex
	pending *Frame
	latest  *Frame
	passes  atomic.Uint64
}

var _ gpu.RenderTarget = (*Collector)(nil)

func (c *Collector) BeginPass(info gpu.FrameInfo) {
	c.mu.Lock()
	c.pending = &Frame{Label: info.Label, ClearColor: info.ClearColor}
	c.mu.Unlock()
}

func (c *Collector) DrawSprites(batch gpu.SpriteBatch) {
	c.mu.Lock()
	if c.pending != nil {
		c.pending.Sprites = append(c.pending.Sprites, batch)
	}
	c.mu.Unlock()
}

func (c *Collector) DrawMesh(batch gpu.MeshBatch) {
	c.mu.Lock()
	if c.pending != nil {
		c.pending.Meshes = append(c.pending.Meshes, batch)
	}
	c.mu.Unlock()
}

func (c *Collector) DrawText(batch gpu.TextBatch) {
	c.mu.Lock()
	if c.pending != nil {
		c.pending.Text = append(c.pending.Text, batch)
	}
	c.mu.Unlock()
}

func (c *Collector) EndPass() {
	c.mu.Lock()
	if c.pending != nil {
		c.latest = c.pending
		c.pending = nil
		c.passes.Add(1)
	}
	c.mu.Unlock()
}

// Latest returns the most recently completed frame
// The frame is immutable once returned
func (c *Collector) Latest() (*Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, c.latest != nil
}

// Passes is the number of completed passes
func (c *Collector) Passes() uint64 {
	return c.passes.Load()
}
