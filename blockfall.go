// Package blockfall is a falling-block puzzle engine. It tracks grid
// occupancy, validates piece movement and reports cleared rows. It does not
// render anything.
package blockfall

import "math"

// Vec is a position or displacement in world space.
type Vec struct {
	X, Y float64
}

var (
	Zero  = Vec{0, 0}
	Left  = Vec{-1, 0}
	Right = Vec{1, 0}
	Down  = Vec{0, -1}
)

func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

// Coord addresses a grid cell. Row 0 is the bottom row.
type Coord struct {
	Col, Row int
}

// Bounds holds the boundary markers surrounding the playfield. Each marker
// sits one unit outside the playable area, so a block positioned exactly on
// a marker is out of bounds.
type Bounds struct {
	Left, Right, Bottom float64
}

// DefaultBounds returns bounds for a board of the given width whose bottom
// left cell centre is at world (1, 1).
func DefaultBounds(width int) Bounds {
	return Bounds{Left: 0, Right: float64(width + 1), Bottom: 0}
}

// Coordinate converts a world position into a grid coordinate. Positions are
// rounded first so values such as 3.9999999 land on the intended cell.
func (b Bounds) Coordinate(pos Vec) Coord {
	return Coord{
		Col: int(math.Round(pos.X)-b.Left) - 1,
		Row: int(math.Round(pos.Y)-b.Bottom) - 1,
	}
}

// Position returns the world position of the centre of a grid cell.
func (b Bounds) Position(c Coord) Vec {
	return Vec{
		X: float64(c.Col+1) + b.Left,
		Y: float64(c.Row+1) + b.Bottom,
	}
}

// Contains reports whether pos lies strictly inside the left, right and
// bottom markers. There is no upper bound.
func (b Bounds) Contains(pos Vec) bool {
	return pos.X > b.Left && pos.X < b.Right && pos.Y > b.Bottom
}

type Tile int

const (
	TileEmpty Tile = iota
	TileLocked
	TileActive
)

// State is a snapshot of a game suitable for rendering or sending over the
// wire. Tiles is indexed [row][col] with row 0 at the bottom and includes the
// overflow row.
type State struct {
	Width, Height int
	Tiles         [][]Tile
	Phase         Phase
	Lines         int
	Shape         string
}
