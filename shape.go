package blockfall

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrShapeIndex = errors.New("shape index out of range")

// Shape is a piece geometry. Offsets are block positions relative to the
// spawn point; Pivot is the rotation centre relative to the spawn point and
// must be either a cell centre or a cell corner.
type Shape struct {
	Name    string
	Offsets []Vec
	Pivot   Vec
}

var (
	ShapeS = Shape{Name: "S", Offsets: []Vec{{0, 0}, {1, 0}, {-1, -1}, {0, -1}}}
	ShapeJ = Shape{Name: "J", Offsets: []Vec{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}}, Pivot: Vec{0, -1}}
	ShapeT = Shape{Name: "T", Offsets: []Vec{{0, 0}, {-1, -1}, {0, -1}, {1, -1}}, Pivot: Vec{0, -1}}
	ShapeO = Shape{Name: "O", Offsets: []Vec{{0, 0}, {1, 0}, {0, -1}, {1, -1}}, Pivot: Vec{0.5, -0.5}}
	ShapeL = Shape{Name: "L", Offsets: []Vec{{1, 0}, {-1, -1}, {0, -1}, {1, -1}}, Pivot: Vec{0, -1}}
	ShapeZ = Shape{Name: "Z", Offsets: []Vec{{-1, 0}, {0, 0}, {0, -1}, {1, -1}}}
	ShapeI = Shape{Name: "I", Offsets: []Vec{{-1, 0}, {0, 0}, {1, 0}, {2, 0}}, Pivot: Vec{0.5, -0.5}}
)

// DefaultShapes returns the seven tetrominoes in S J T O L Z I order.
func DefaultShapes() []Shape {
	return []Shape{ShapeS, ShapeJ, ShapeT, ShapeO, ShapeL, ShapeZ, ShapeI}
}

// ShapeIndex returns the index of the shape called name.
func ShapeIndex(shapes []Shape, name string) (int, bool) {
	for i, s := range shapes {
		if s.Name == name {
			return i, true
		}
	}
	return -1, false
}

// ShapeProvider supplies new pieces positioned at a spawn point.
type ShapeProvider interface {
	Spawn(at Vec) *Piece
	SpawnIndex(index int, at Vec) (*Piece, error)
	Len() int
}

func newPiece(shape Shape, index int, at Vec, ids *IDSource) *Piece {
	piece := &Piece{
		Shape:  shape.Name,
		Index:  index,
		Pivot:  at.Add(shape.Pivot),
		Blocks: make([]*Block, len(shape.Offsets)),
	}
	for i, offset := range shape.Offsets {
		piece.Blocks[i] = &Block{
			ID:    ids.Next(),
			Pos:   at.Add(offset),
			Shape: shape.Name,
		}
	}
	return piece
}

type shapeSet struct {
	shapes []Shape
	ids    IDSource
}

func (s *shapeSet) Len() int {
	return len(s.shapes)
}

func (s *shapeSet) SpawnIndex(index int, at Vec) (*Piece, error) {
	if index < 0 || index >= len(s.shapes) {
		return nil, fmt.Errorf("spawn shape %d of %d: %w", index, len(s.shapes), ErrShapeIndex)
	}
	return newPiece(s.shapes[index], index, at, &s.ids), nil
}

// RandomProvider picks shapes uniformly at random.
type RandomProvider struct {
	shapeSet
	randomizer *rand.Rand
}

// NewRandomProvider returns a provider seeded with seed. With no shapes it
// uses DefaultShapes.
func NewRandomProvider(seed int64, shapes ...Shape) *RandomProvider {
	if len(shapes) == 0 {
		shapes = DefaultShapes()
	}
	return &RandomProvider{
		shapeSet:   shapeSet{shapes: shapes},
		randomizer: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomProvider) Spawn(at Vec) *Piece {
	index := r.randomizer.Intn(len(r.shapes))
	return newPiece(r.shapes[index], index, at, &r.ids)
}

// QueueProvider spawns shapes in the order they were pushed. When the queue
// is empty it spawns shape 0.
type QueueProvider struct {
	shapeSet
	queue []int
}

func NewQueueProvider(shapes ...Shape) *QueueProvider {
	if len(shapes) == 0 {
		shapes = DefaultShapes()
	}
	return &QueueProvider{
		shapeSet: shapeSet{shapes: shapes},
		queue:    make([]int, 0),
	}
}

// Push appends shape indices to the queue. Out of range indices are
// rejected and nothing is queued.
func (q *QueueProvider) Push(indices ...int) error {
	for _, index := range indices {
		if index < 0 || index >= len(q.shapes) {
			return fmt.Errorf("push shape %d: %w", index, ErrShapeIndex)
		}
	}
	q.queue = append(q.queue, indices...)
	return nil
}

func (q *QueueProvider) Spawn(at Vec) *Piece {
	index := 0
	if len(q.queue) > 0 {
		index = q.queue[0]
		q.queue = q.queue[1:]
	}
	return newPiece(q.shapes[index], index, at, &q.ids)
}
