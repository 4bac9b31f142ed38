package gpu

import "github.com/lixenwraith/gridshooter/vmath"

// Types in this file are shared between CPU writers and the command executor
// Their layout must stay fixed: the executor reinterprets buffer bytes as these structs

// FrameUniforms is the per-frame constant block bound at the start of every sprite batch
type FrameUniforms struct {
	Projection vmath.Mat4
	Brightness float32
	MaxEDR     float32
	EDRBias    float32
	_          float32
}

// CubeUniforms holds the transforms of one cube instance
type CubeUniforms struct {
	ModelViewProjection vmath.Mat4
	Model               vmath.Mat4
}

// Vertex is a position + color pair, 24 bytes
type Vertex struct {
	Position vmath.Vec3
	Color    vmath.Vec3
}

// TextRecordCapacity is the number of bytes a single text record can hold
const TextRecordCapacity = 32

// TextRecord is one line of HUD text in canvas coordinates
type TextRecord struct {
	X, Y   float32
	Length uint32
	_      uint32
	Bytes  [TextRecordCapacity]byte
}

// SetText copies s into the record, truncating at capacity
func (t *TextRecord) SetText(s string) {
	n := copy(t.Bytes[:], s)
	t.Length = uint32(n)
}

// Text returns the stored string
func (t *TextRecord) Text() string {
	n := t.Length
	if n > TextRecordCapacity {
		n = TextRecordCapacity
	}
	return string(t.Bytes[:n])
}
