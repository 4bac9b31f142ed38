package gpu

import (
	"fmt"

	"github.com/lixenwraith/gridshooter/vmath"
)

// BufferBinding references a range start inside a buffer
type BufferBinding struct {
	Buffer *Buffer
	Offset uint64
}

// SpriteDraw draws InstanceCount quads, one per Vec4 position in Instances
type SpriteDraw struct {
	Texture       int
	Frame         BufferBinding
	Instances     BufferBinding
	InstanceCount int
	SpriteSize    vmath.Vec2
}

// MeshDraw draws an indexed triangle list once per CubeUniforms instance
type MeshDraw struct {
	Vertices      BufferBinding
	VertexCount   int
	Indices       BufferBinding
	IndexCount    int
	Instances     BufferBinding
	InstanceCount int
}

// TextDraw draws Count TextRecords
type TextDraw struct {
	Frame   BufferBinding
	Records BufferBinding
	Count   int
}

// RenderPassDescriptor describes the target and clear state of a pass
type RenderPassDescriptor struct {
	Label      string
	Target     RenderTarget
	ClearColor vmath.Vec4
}

// RenderEncoder records draws into its command buffer
// Buffers are read when the queue executes the command buffer, not at encode time
type RenderEncoder struct {
	cb     *CommandBuffer
	target RenderTarget
	ended  bool
}

// RenderCommandEncoder opens a render pass
func (cb *CommandBuffer) RenderCommandEncoder(pass RenderPassDescriptor) *RenderEncoder {
	info := FrameInfo{Label: pass.Label, ClearColor: pass.ClearColor}
	target := pass.Target
	cb.encode(func() error {
		if target != nil {
			target.BeginPass(info)
		}
		return nil
	})
	return &RenderEncoder{cb: cb, target: target}
}

// DrawSprites records an instanced sprite draw
func (e *RenderEncoder) DrawSprites(d SpriteDraw) {
	if e.ended || d.InstanceCount <= 0 {
		return
	}
	target := e.target
	e.cb.encode(func() error {
		frame, ok := View[FrameUniforms](d.Frame.Buffer, d.Frame.Offset, 1)
		if !ok {
			return fmt.Errorf("%w: sprite frame data", ErrBindingOutOfRange)
		}
		inst, ok := View[vmath.Vec4](d.Instances.Buffer, d.Instances.Offset, d.InstanceCount)
		if !ok {
			return fmt.Errorf("%w: %d sprite instances", ErrBindingOutOfRange, d.InstanceCount)
		}
		if target != nil {
			target.DrawSprites(SpriteBatch{
				Texture:    d.Texture,
				Uniforms:   frame[0],
				SpriteSize: d.SpriteSize,
				Instances:  append([]vmath.Vec4(nil), inst...),
			})
		}
		return nil
	})
}

// DrawIndexed records an indexed instanced mesh draw
func (e *RenderEncoder) DrawIndexed(d MeshDraw) {
	if e.ended || d.InstanceCount <= 0 || d.IndexCount <= 0 {
		return
	}
	target := e.target
	e.cb.encode(func() error {
		verts, ok := View[Vertex](d.Vertices.Buffer, d.Vertices.Offset, d.VertexCount)
		if !ok {
			return fmt.Errorf("%w: %d vertices", ErrBindingOutOfRange, d.VertexCount)
		}
		idx, ok := View[uint16](d.Indices.Buffer, d.Indices.Offset, d.IndexCount)
		if !ok {
			return fmt.Errorf("%w: %d indices", ErrBindingOutOfRange, d.IndexCount)
		}
		inst, ok := View[CubeUniforms](d.Instances.Buffer, d.Instances.Offset, d.InstanceCount)
		if !ok {
			return fmt.Errorf("%w: %d mesh instances", ErrBindingOutOfRange, d.InstanceCount)
		}
		if target != nil {
			target.DrawMesh(MeshBatch{
				Vertices:  append([]Vertex(nil), verts...),
				Indices:   append([]uint16(nil), idx...),
				Instances: append([]CubeUniforms(nil), inst...),
			})
		}
		return nil
	})
}

// DrawText records HUD text
func (e *RenderEncoder) DrawText(d TextDraw) {
	if e.ended || d.Count <= 0 {
		return
	}
	target := e.target
	e.cb.encode(func() error {
		frame, ok := View[FrameUniforms](d.Frame.Buffer, d.Frame.Offset, 1)
		if !ok {
			return fmt.Errorf("%w: text frame data", ErrBindingOutOfRange)
		}
		recs, ok := View[TextRecord](d.Records.Buffer, d.Records.Offset, d.Count)
		if !ok {
			return fmt.Errorf("%w: %d text records", ErrBindingOutOfRange, d.Count)
		}
		lines := make([]TextLine, len(recs))
		for i := range recs {
			lines[i] = TextLine{Position: vmath.V2(recs[i].X, recs[i].Y), Text: recs[i].Text()}
		}
		if target != nil {
			target.DrawText(TextBatch{Uniforms: frame[0], Lines: lines})
		}
		return nil
	})
}

// EndEncoding closes the pass; later draws on this encoder are dropped
func (e *RenderEncoder) EndEncoding() {
	if e.ended {
		return
	}
	e.ended = true
	target := e.target
	e.cb.encode(func() error {
		if target != nil {
			target.EndPass()
		}
		return nil
	})
}
