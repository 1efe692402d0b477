// Package design holds the ordered collection of brushes produced by one
// evaluation of a brush script. A Design is never mutated after the engine
// returns it; each evaluation produces a new one.
package design

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/chazu/brushkit/pkg/brush"
)

// BrushID is a content-addressed identifier for a brush.
type BrushID string

// ZeroID is the empty BrushID.
const ZeroID BrushID = ""

// IsZero reports whether id is unset.
func (id BrushID) IsZero() bool { return id == ZeroID }

// Short returns the first eight hex digits of id.
func (id BrushID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

func (id BrushID) String() string { return string(id) }

// Operation is the CSG role of a brush.
type Operation int

const (
	Additive    Operation = iota // adds volume
	Subtractive                  // carves volume from earlier brushes
	Intersect                    // keeps only volume shared with earlier brushes
)

func (op Operation) String() string {
	switch op {
	case Additive:
		return "additive"
	case Subtractive:
		return "subtractive"
	case Intersect:
		return "intersect"
	default:
		return fmt.Sprintf("Operation(%d)", int(op))
	}
}

// ParseOperation converts a name as written in scripts to an Operation.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "additive", "add":
		return Additive, nil
	case "subtractive", "subtract":
		return Subtractive, nil
	case "intersect", "intersection":
		return Intersect, nil
	}
	return 0, fmt.Errorf("invalid operation %q, expected additive, subtractive or intersect", s)
}

// MarshalText encodes the operation by name.
func (op Operation) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// UnmarshalText decodes an operation name.
func (op *Operation) UnmarshalText(b []byte) error {
	v, err := ParseOperation(string(b))
	if err != nil {
		return err
	}
	*op = v
	return nil
}

// Brush is one named half-edge mesh with its CSG operation.
type Brush struct {
	ID        BrushID     `json:"id"`
	Name      string      `json:"name,omitempty"`
	Operation Operation   `json:"operation"`
	Mesh      *brush.Mesh `json:"mesh"`
}

// NewBrush creates a brush whose ID hashes its name, operation and
// geometry, so equal scripts produce equal IDs.
func NewBrush(name string, op Operation, m *brush.Mesh) *Brush {
	return &Brush{
		ID:        NewBrushID(name, op, m),
		Name:      name,
		Operation: op,
		Mesh:      m,
	}
}

// Label returns the name, or the short ID for anonymous brushes.
func (b *Brush) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID.Short()
}

// NewBrushID hashes a brush's identity.
func NewBrushID(name string, op Operation, m *brush.Mesh) BrushID {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0, byte(op)})

	var buf [8]byte
	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	putInt := func(i int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(i)))
		h.Write(buf[:])
	}
	if m != nil {
		for _, v := range m.Vertices {
			putFloat(v.X)
			putFloat(v.Y)
			putFloat(v.Z)
		}
		for _, he := range m.HalfEdges {
			putInt(he.VertexIndex)
			putInt(he.TwinIndex)
		}
		for _, p := range m.Polygons {
			putInt(p.FirstEdge)
			putInt(p.EdgeCount)
			putInt(p.Surface.ID)
		}
	}
	return BrushID(hex.EncodeToString(h.Sum(nil)))
}

// Design is the ordered list of brushes of one script. Order matters: each
// subtractive or intersect brush applies to the brushes before it.
type Design struct {
	Brushes   []*Brush       `json:"brushes"`
	NameIndex map[string]int `json:"name_index"`
	Version   uint64         `json:"version"`
}

// New creates an empty Design.
func New() *Design {
	return &Design{NameIndex: make(map[string]int)}
}

// Add appends a brush. It does not check for duplicate names; Validate
// reports them.
func (d *Design) Add(b *Brush) {
	d.Brushes = append(d.Brushes, b)
	if b.Name != "" {
		if _, taken := d.NameIndex[b.Name]; !taken {
			d.NameIndex[b.Name] = len(d.Brushes) - 1
		}
	}
}

// Lookup returns the brush with the given name, or nil.
func (d *Design) Lookup(name string) *Brush {
	i, ok := d.NameIndex[name]
	if !ok || i < 0 || i >= len(d.Brushes) {
		return nil
	}
	return d.Brushes[i]
}

// Get returns the brush with the given ID, or nil.
func (d *Design) Get(id BrushID) *Brush {
	for _, b := range d.Brushes {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Len returns the number of brushes.
func (d *Design) Len() int {
	return len(d.Brushes)
}

// ByOperation returns the brushes with the given operation in design order.
func (d *Design) ByOperation(op Operation) []*Brush {
	var out []*Brush
	for _, b := range d.Brushes {
		if b.Operation == op {
			out = append(out, b)
		}
	}
	return out
}
