package blockfall

import (
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/kamstrup/intmap"
)

const (
	DefaultWidth  = 10
	DefaultHeight = 20

	// overflowRows is the number of addressable rows above the playfield. A
	// piece rotated right after spawning may poke one row above the top.
	overflowRows = 1
)

type EventKind int

const (
	EventOccupied EventKind = iota
	EventRowCleared
	EventBlockRemoved
	EventBlockMoved
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventOccupied:
		return "occupied"
	case EventRowCleared:
		return "row-cleared"
	case EventBlockRemoved:
		return "block-removed"
	case EventBlockMoved:
		return "block-moved"
	case EventReset:
		return "reset"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event describes a single grid mutation. Block, From and To are set for
// block events, Row for EventRowCleared.
type Event struct {
	Kind     EventKind
	Block    *Block
	From, To Coord
	Row      int
}

type EventHandler interface {
	OnBoardEvent(ev Event)
}

type EventHandlerFunc func(ev Event)

func (f EventHandlerFunc) OnBoardEvent(ev Event) {
	f(ev)
}

// LockResult is returned by Board.Lock. MinRow and MaxRow span the rows the
// locked piece touched and are only meaningful when GameOver is false.
type LockResult struct {
	GameOver       bool
	MinRow, MaxRow int
}

// Board owns the occupancy grid. Once a piece is locked its blocks belong to
// the board until they are cleared or the board is reset.
type Board struct {
	width, height int
	bounds        Bounds
	boundsSet     bool

	grid  [][]*Block
	index *intmap.Map[BlockID, Coord]

	handler EventHandler
	logger  *log.Logger
}

type BoardOption func(*Board)

func WithSize(width, height int) BoardOption {
	if width < 4 || height < 4 {
		panic(fmt.Errorf("minimal width x height is 4x4"))
	}
	return func(board *Board) {
		board.width = width
		board.height = height
	}
}

// WithBounds places the boundary markers. By default they are derived from
// the board width with DefaultBounds.
func WithBounds(bounds Bounds) BoardOption {
	return func(board *Board) {
		board.bounds = bounds
		board.boundsSet = true
	}
}

func WithEventHandler(handler EventHandler) BoardOption {
	return func(board *Board) {
		board.handler = handler
	}
}

func WithLogger(logger *log.Logger) BoardOption {
	return func(board *Board) {
		board.logger = logger
	}
}

func NewBoard(options ...BoardOption) *Board {
	board := &Board{
		width:  DefaultWidth,
		height: DefaultHeight,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(board)
	}
	if !board.boundsSet {
		board.bounds = DefaultBounds(board.width)
	}

	board.grid = make([][]*Block, board.Rows())
	for i := range board.grid {
		board.grid[i] = make([]*Block, board.width)
	}
	board.index = intmap.New[BlockID, Coord](board.width * board.Rows())

	return board
}

func (b *Board) Width() int {
	return b.width
}

func (b *Board) Height() int {
	return b.height
}

// Rows is the number of addressable rows, the playfield plus the overflow
// row.
func (b *Board) Rows() int {
	return b.height + overflowRows
}

func (b *Board) Bounds() Bounds {
	return b.bounds
}

func (b *Board) addressable(c Coord) bool {
	return c.Col >= 0 && c.Col < b.width && c.Row >= 0 && c.Row < b.Rows()
}

// IsFree reports whether c is an addressable, empty cell.
func (b *Board) IsFree(c Coord) bool {
	return b.addressable(c) && b.grid[c.Row][c.Col] == nil
}

// Block returns the locked block at c, or nil.
func (b *Board) Block(c Coord) *Block {
	if !b.addressable(c) {
		return nil
	}
	return b.grid[c.Row][c.Col]
}

// Locate returns the cell holding the locked block with the given id.
func (b *Board) Locate(id BlockID) (Coord, bool) {
	return b.index.Get(id)
}

// Len returns the number of locked blocks.
func (b *Board) Len() int {
	return b.index.Len()
}

// ValidateMove reports whether every block can be displaced by dir without
// crossing the left, right or bottom marker and without landing on a locked
// block. Targets above the addressable rows are accepted.
func (b *Board) ValidateMove(cells []*Block, dir Vec) bool {
	for _, block := range cells {
		target := block.Pos.Add(dir)
		if !b.bounds.Contains(target) {
			return false
		}

		c := b.bounds.Coordinate(target)
		if c.Col < 0 || c.Col >= b.width || c.Row < 0 {
			return false
		}
		if c.Row >= b.Rows() {
			continue
		}
		if b.grid[c.Row][c.Col] != nil {
			return false
		}
	}
	return true
}

// Lock commits cells into the grid. If any target cell is already occupied
// or not addressable the game is over and the grid is left untouched. A block
// holds at most one slot: relocking a block already on the grid, or two cells
// sharing a block or a target cell, is treated the same way.
func (b *Board) Lock(cells []*Block) LockResult {
	coords := make([]Coord, len(cells))
	for i, block := range cells {
		c := b.bounds.Coordinate(block.Pos)
		if !b.IsFree(c) {
			b.logger.Printf("lock collision at col=%d row=%d\n", c.Col, c.Row)
			return LockResult{GameOver: true}
		}
		if at, ok := b.index.Get(block.ID); ok {
			b.logger.Printf("lock block %d already locked at col=%d row=%d\n", block.ID, at.Col, at.Row)
			return LockResult{GameOver: true}
		}
		for j := 0; j < i; j++ {
			if coords[j] == c || cells[j].ID == block.ID {
				b.logger.Printf("lock cells overlap at col=%d row=%d\n", c.Col, c.Row)
				return LockResult{GameOver: true}
			}
		}
		coords[i] = c
	}

	result := LockResult{MinRow: 0, MaxRow: -1}
	for i, block := range cells {
		c := coords[i]
		block.Pos = b.bounds.Position(c)
		b.grid[c.Row][c.Col] = block
		b.index.Put(block.ID, c)
		b.emit(Event{Kind: EventOccupied, Block: block, To: c})

		if i == 0 {
			result.MinRow, result.MaxRow = c.Row, c.Row
		} else if c.Row < result.MinRow {
			result.MinRow = c.Row
		} else if c.Row > result.MaxRow {
			result.MaxRow = c.Row
		}
	}
	return result
}

// IsRowFull reports whether every column of row is occupied.
func (b *Board) IsRowFull(row int) bool {
	if row < 0 || row >= b.Rows() {
		return false
	}
	for x := 0; x < b.width; x++ {
		if b.grid[row][x] == nil {
			return false
		}
	}
	return true
}

// ClearRow destroys every block in row. Clearing an empty row is a no-op
// apart from the EventRowCleared notification.
func (b *Board) ClearRow(row int) {
	if row < 0 || row >= b.Rows() {
		return
	}
	for x := 0; x < b.width; x++ {
		block := b.grid[row][x]
		if block == nil {
			continue
		}
		b.grid[row][x] = nil
		b.index.Del(block.ID)
		b.emit(Event{Kind: EventBlockRemoved, Block: block, From: Coord{Col: x, Row: row}})
	}
	b.emit(Event{Kind: EventRowCleared, Row: row})
}

// ScanAndClear clears every full row between maxRow and minRow inclusive,
// scanning from the top, and returns the cleared rows in scan order. Rows
// outside the span are not inspected.
func (b *Board) ScanAndClear(minRow, maxRow int) []int {
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= b.Rows() {
		maxRow = b.Rows() - 1
	}

	var cleared []int
	for row := maxRow; row >= minRow; row-- {
		if b.IsRowFull(row) {
			b.ClearRow(row)
			cleared = append(cleared, row)
		}
	}
	if len(cleared) > 0 {
		b.logger.Printf("cleared rows %v\n", cleared)
	}
	return cleared
}

// Collapse shifts everything above each cleared row down by one. Rows are
// processed from the highest index down so that rows already shifted for a
// higher clear are shifted again for a lower one. Negative entries are
// ignored.
func (b *Board) Collapse(rows []int) {
	sorted := make([]int, 0, len(rows))
	for _, row := range rows {
		if row >= 0 && row < b.Rows() {
			sorted = append(sorted, row)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	for _, cleared := range sorted {
		for y := cleared + 1; y < b.Rows(); y++ {
			for x := 0; x < b.width; x++ {
				block := b.grid[y][x]
				if block == nil {
					continue
				}
				from := Coord{Col: x, Row: y}
				to := Coord{Col: x, Row: y - 1}
				block.Pos = block.Pos.Add(Down)
				b.grid[y-1][x] = block
				b.grid[y][x] = nil
				b.index.Put(block.ID, to)
				b.emit(Event{Kind: EventBlockMoved, Block: block, From: from, To: to})
			}
		}
	}
}

// Reset empties the grid.
func (b *Board) Reset() {
	for y := range b.grid {
		for x := range b.grid[y] {
			b.grid[y][x] = nil
		}
	}
	b.index.Clear()
	b.emit(Event{Kind: EventReset})
}

// Tiles renders the locked blocks as a [row][col] tile matrix including the
// overflow row.
func (b *Board) Tiles() [][]Tile {
	tiles := make([][]Tile, b.Rows())
	for y := range tiles {
		tiles[y] = make([]Tile, b.width)
		for x := 0; x < b.width; x++ {
			if b.grid[y][x] != nil {
				tiles[y][x] = TileLocked
			}
		}
	}
	return tiles
}

func (b *Board) emit(ev Event) {
	if b.handler != nil {
		b.handler.OnBoardEvent(ev)
	}
}
