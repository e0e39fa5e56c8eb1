package blockfall

import (
	"math"
	"sync/atomic"
)

type BlockID uint64

// Block is a single cell of a piece. While the piece is falling the block is
// owned by the piece; after a lock it is owned by the board.
type Block struct {
	ID    BlockID
	Pos   Vec
	Shape string
}

// IDSource hands out block ids that are unique for its lifetime.
type IDSource struct {
	next atomic.Uint64
}

func (s *IDSource) Next() BlockID {
	return BlockID(s.next.Add(1))
}

// Piece is the active, not yet locked group of blocks. All blocks rotate
// together around Pivot.
type Piece struct {
	Shape  string
	Index  int
	Blocks []*Block
	Pivot  Vec
}

func (p *Piece) Cells() []*Block {
	return p.Blocks
}

// Translate moves every block and the pivot by dir.
func (p *Piece) Translate(dir Vec) {
	p.Pivot = p.Pivot.Add(dir)
	for _, block := range p.Blocks {
		block.Pos = block.Pos.Add(dir)
	}
}

// Rotate turns the piece by quarterTurns * 90 degrees around its pivot.
// Positive values rotate counter-clockwise. Positions are snapped back onto
// cell centres.
func (p *Piece) Rotate(quarterTurns int) {
	turns := ((quarterTurns % 4) + 4) % 4
	if turns == 0 {
		return
	}
	for _, block := range p.Blocks {
		rel := block.Pos.Sub(p.Pivot)
		for i := 0; i < turns; i++ {
			rel = Vec{X: -rel.Y, Y: rel.X}
		}
		abs := p.Pivot.Add(rel)
		block.Pos = Vec{X: math.Round(abs.X), Y: math.Round(abs.Y)}
	}
}

// Coords returns the grid coordinates of the blocks in order.
func (p *Piece) Coords(bounds Bounds) []Coord {
	coords := make([]Coord, len(p.Blocks))
	for i, block := range p.Blocks {
		coords[i] = bounds.Coordinate(block.Pos)
	}
	return coords
}

// Clone returns a deep copy sharing no blocks with p.
func (p *Piece) Clone() *Piece {
	clone := &Piece{
		Shape:  p.Shape,
		Index:  p.Index,
		Pivot:  p.Pivot,
		Blocks: make([]*Block, len(p.Blocks)),
	}
	for i, block := range p.Blocks {
		b := *block
		clone.Blocks[i] = &b
	}
	return clone
}
