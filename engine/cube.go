package engine

import (
	"fmt"
	"unsafe"

	"github.com/chewxy/math32"

	"github.com/lixenwraith/gridshooter/bump"
	"github.com/lixenwraith/gridshooter/camera"
	"github.com/lixenwraith/gridshooter/frame"
	"github.com/lixenwraith/gridshooter/game"
	"github.com/lixenwraith/gridshooter/gpu"
	"github.com/lixenwraith/gridshooter/vmath"
)

// RotationStep is the cube's yaw advance per frame in radians
const RotationStep = 0.008

var cubeVertices = []gpu.Vertex{
	{Position: vmath.V3(-1, -1, -1), Color: vmath.V3(1, 0, 0)},
	{Position: vmath.V3(1, -1, -1), Color: vmath.V3(0, 1, 0)},
	{Position: vmath.V3(1, 1, -1), Color: vmath.V3(0, 0, 1)},
	{Position: vmath.V3(-1, 1, -1), Color: vmath.V3(1, 1, 0)},
	{Position: vmath.V3(-1, -1, 1), Color: vmath.V3(1, 0, 1)},
	{Position: vmath.V3(1, -1, 1), Color: vmath.V3(0, 1, 1)},
	{Position: vmath.V3(1, 1, 1), Color: vmath.V3(1, 1, 1)},
	{Position: vmath.V3(-1, 1, 1), Color: vmath.V3(0, 0, 0)},
}

var cubeIndices = []uint16{
	0, 1, 2, 2, 3, 0, // front
	4, 5, 6, 6, 7, 4, // back
	0, 4, 7, 7, 3, 0, // left
	1, 5, 6, 6, 2, 1, // right
	3, 2, 6, 6, 7, 3, // top
	0, 1, 5, 5, 4, 0, // bottom
}

// cubeMesh holds the static cube tables and the demo rotation
type cubeMesh struct {
	vertices *gpu.Buffer
	indices  *gpu.Buffer
	rotation float32
}

func newCubeMesh(device *gpu.Device) (*cubeMesh, error) {
	vb, err := newStaticBuffer(device, "cubeVertices", cubeVertices)
	if err != nil {
		return nil, err
	}
	ib, err := newStaticBuffer(device, "cubeIndices", cubeIndices)
	if err != nil {
		vb.Release()
		return nil, err
	}
	return &cubeMesh{vertices: vb, indices: ib}, nil
}

func newStaticBuffer[T any](device *gpu.Device, label string, data []T) (*gpu.Buffer, error) {
	var zero T
	size := len(data) * int(unsafe.Sizeof(zero))
	buf, err := device.NewBuffer(size, gpu.Shared)
	if err != nil {
		return nil, fmt.Errorf("engine: %s buffer: %w", label, err)
	}
	buf.SetLabel(label)
	dst, ok := gpu.View[T](buf, 0, len(data))
	if !ok {
		buf.Release()
		return nil, fmt.Errorf("engine: %s buffer too small", label)
	}
	copy(dst, data)
	return buf, nil
}

// MinBumpCapacity is the per-slot scratch one frame consumes: the cube instance plus the HUD
func MinBumpCapacity() int {
	cube := int(bump.AlignUp(uint64(unsafe.Sizeof(gpu.CubeUniforms{})), bump.Alignment))
	return cube + game.HUDScratchBytes()
}

// advance rotates the cube by one step, wrapping at 2π
func (m *cubeMesh) advance() {
	m.rotation += RotationStep
	if m.rotation > 2*math32.Pi {
		m.rotation -= 2 * math32.Pi
	}
}

// uniforms writes this frame's cube instance into the slot's bump allocator
func (m *cubeMesh) uniforms(slot *frame.Slot, cam camera.Uniforms) (gpu.BufferBinding, error) {
	inst, offset, err := bump.Allocate[gpu.CubeUniforms](slot.Bump(), 1)
	if err != nil {
		return gpu.BufferBinding{}, fmt.Errorf("engine: cube uniforms: %w", err)
	}
	model := vmath.RotationY(m.rotation)
	inst[0] = gpu.CubeUniforms{
		ModelViewProjection: cam.ViewProjection.Mul(model),
		Model:               model,
	}
	return gpu.BufferBinding{Buffer: slot.Bump().BaseBuffer(), Offset: offset}, nil
}

func (m *cubeMesh) draw(enc *gpu.RenderEncoder, instances gpu.BufferBinding) {
	enc.DrawIndexed(gpu.MeshDraw{
		Vertices:      gpu.BufferBinding{Buffer: m.vertices},
		VertexCount:   len(cubeVertices),
		Indices:       gpu.BufferBinding{Buffer: m.indices},
		IndexCount:    len(cubeIndices),
		Instances:     instances,
		InstanceCount: 1,
	})
}

func (m *cubeMesh) release() {
	m.vertices.Release()
	m.indices.Release()
}
