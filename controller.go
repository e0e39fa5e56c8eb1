package blockfall

import (
	"errors"
	"fmt"
	"log"
	"time"
)

var ErrNotRunning = errors.New("game is not running")

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSpawning
	PhaseFalling
	PhaseLocking
	PhaseClearing
	PhaseGameOver
	PhaseQuit
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSpawning:
		return "spawning"
	case PhaseFalling:
		return "falling"
	case PhaseLocking:
		return "locking"
	case PhaseClearing:
		return "clearing"
	case PhaseGameOver:
		return "game-over"
	case PhaseQuit:
		return "quit"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Controller drives the active piece through the spawn, fall, lock and clear
// cycle. It is stepped once per external tick and is not safe for concurrent
// use.
type Controller struct {
	board    *Board
	provider ShapeProvider
	config   Config
	listener Listener
	logger   *log.Logger

	phase   Phase
	active  *Piece
	cleared []int
	lines   int

	fallTimer  time.Duration
	clearTimer time.Duration

	inputTimer     time.Duration
	nextMove       time.Duration
	inputThreshold time.Duration
	leftHeld       bool
	rightHeld      bool

	// receiveInput is false from a spawn until the drop key is released, so
	// a drop held through a lock does not carry over to the next piece.
	receiveInput bool
	softDrop     bool
}

func NewController(board *Board, provider ShapeProvider, options ...ControllerOption) (*Controller, error) {
	c := &Controller{
		board:        board,
		provider:     provider,
		config:       DefaultConfig(),
		listener:     ListenerFuncs{},
		logger:       discardLogger(),
		phase:        PhaseIdle,
		receiveInput: true,
	}
	for _, opt := range options {
		opt(c)
	}
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	c.inputThreshold = c.config.RepeatDelay
	return c, nil
}

func (c *Controller) Board() *Board {
	return c.board
}

func (c *Controller) Phase() Phase {
	return c.phase
}

// Active returns the falling piece, or nil when no piece is falling.
func (c *Controller) Active() *Piece {
	return c.active
}

// Lines returns the number of rows cleared since the game started.
func (c *Controller) Lines() int {
	return c.lines
}

// Start begins the first spawn cycle.
func (c *Controller) Start() error {
	if c.phase != PhaseIdle {
		return fmt.Errorf("start in phase %s: already started", c.phase)
	}
	c.logger.Printf("game start\n")
	c.listener.OnGameStart()
	c.spawnNext()
	return nil
}

// Restart empties the board and begins a new game.
func (c *Controller) Restart() {
	c.board.Reset()
	c.active = nil
	c.cleared = nil
	c.lines = 0
	c.fallTimer = 0
	c.clearTimer = 0
	c.leftHeld, c.rightHeld = false, false
	c.resetRepeat()
	c.receiveInput = true
	c.softDrop = false

	c.logger.Printf("game restart\n")
	c.listener.OnGameStart()
	c.spawnNext()
}

// Quit ends the session. The controller ignores further steps.
func (c *Controller) Quit() {
	c.active = nil
	c.phase = PhaseQuit
	c.logger.Printf("game quit\n")
	c.listener.OnQuit()
}

// SpawnIndex replaces the falling piece with a fresh piece of the given
// shape at the spawn point.
func (c *Controller) SpawnIndex(index int) error {
	if c.phase != PhaseFalling && c.phase != PhaseSpawning {
		return fmt.Errorf("spawn shape %d in phase %s: %w", index, c.phase, ErrNotRunning)
	}
	piece, err := c.provider.SpawnIndex(index, c.config.SpawnPoint)
	if err != nil {
		return err
	}
	c.setActive(piece)
	return nil
}

// Step advances the game by dt using the key state in. It returns the phase
// the controller is in after the tick: falling, locking (the piece could not
// move down and locks on the next tick) or clearing (waiting out the clear
// delay before the stack collapses).
func (c *Controller) Step(dt time.Duration, in Input) Phase {
	switch c.phase {
	case PhaseSpawning:
		c.spawnNext()
	case PhaseFalling:
		c.handleInput(dt, in)
		c.fall(dt)
	case PhaseLocking:
		c.lock()
	case PhaseClearing:
		c.clearTimer += dt
		if c.clearTimer >= c.config.ClearDelay {
			c.board.Collapse(c.cleared)
			c.cleared = nil
			c.clearTimer = 0
			c.spawnNext()
		}
	}
	return c.phase
}

func (c *Controller) spawnNext() {
	c.phase = PhaseSpawning
	c.setActive(c.provider.Spawn(c.config.SpawnPoint))
}

func (c *Controller) setActive(piece *Piece) {
	c.active = piece
	c.fallTimer = 0
	c.receiveInput = false
	c.softDrop = false
	c.phase = PhaseFalling
}

func (c *Controller) handleInput(dt time.Duration, in Input) {
	if in.Released.Has(KeyLeft) {
		c.resetRepeat()
		c.leftHeld = false
	}
	if in.Released.Has(KeyRight) {
		c.resetRepeat()
		c.rightHeld = false
	}

	if in.Held.Has(KeyLeft) && !c.rightHeld {
		c.leftHeld = true
		c.repeat(dt, Left)
	}
	if in.Held.Has(KeyRight) && !c.leftHeld {
		c.rightHeld = true
		c.repeat(dt, Right)
	}

	// a key tapped within a single tick is pressed, held and released
	// at once
	if in.Released.Has(KeyLeft) && c.leftHeld {
		c.resetRepeat()
		c.leftHeld = false
	}
	if in.Released.Has(KeyRight) && c.rightHeld {
		c.resetRepeat()
		c.rightHeld = false
	}

	if in.Pressed.Has(KeyRotate) {
		c.rotate()
	}

	if in.Held.Has(KeyDrop) {
		c.softDrop = c.receiveInput
	} else {
		c.softDrop = false
		c.receiveInput = true
	}
}

func (c *Controller) repeat(dt time.Duration, dir Vec) {
	c.inputTimer += dt
	if c.inputTimer < c.nextMove {
		return
	}
	c.nextMove = c.inputTimer + c.inputThreshold
	c.inputThreshold = c.config.RepeatRate
	c.move(dir)
}

func (c *Controller) resetRepeat() {
	c.inputTimer = 0
	c.nextMove = 0
	c.inputThreshold = c.config.RepeatDelay
}

func (c *Controller) move(dir Vec) bool {
	if !c.board.ValidateMove(c.active.Cells(), dir) {
		return false
	}
	c.active.Translate(dir)
	return true
}

func (c *Controller) rotate() bool {
	c.active.Rotate(1)
	if !c.board.ValidateMove(c.active.Cells(), Zero) {
		c.active.Rotate(-1)
		return false
	}
	return true
}

func (c *Controller) fall(dt time.Duration) {
	speed := c.config.FallSpeed
	if c.softDrop {
		speed = c.config.SoftDropSpeed
	}

	c.fallTimer += dt
	if c.fallTimer < time.Duration(float64(time.Second)/speed) {
		return
	}
	c.fallTimer = 0
	if !c.move(Down) {
		c.phase = PhaseLocking
	}
}

func (c *Controller) lock() {
	piece := c.active
	c.active = nil

	result := c.board.Lock(piece.Cells())
	if result.GameOver {
		c.phase = PhaseGameOver
		c.logger.Printf("game over: %s piece could not be placed\n", piece.Shape)
		c.listener.OnGameOver()
		return
	}

	rows := c.board.ScanAndClear(result.MinRow, result.MaxRow)
	if len(rows) == 0 {
		c.spawnNext()
		return
	}

	c.cleared = rows
	c.lines += len(rows)
	c.clearTimer = 0
	c.phase = PhaseClearing
	c.listener.OnRowsCleared(rows)
}

// State returns a snapshot of the board with the falling piece overlaid.
func (c *Controller) State() State {
	state := State{
		Width:  c.board.Width(),
		Height: c.board.Height(),
		Tiles:  c.board.Tiles(),
		Phase:  c.phase,
		Lines:  c.lines,
	}
	if c.active != nil {
		state.Shape = c.active.Shape
		for _, coord := range c.active.Coords(c.board.Bounds()) {
			if coord.Col >= 0 && coord.Col < state.Width && coord.Row >= 0 && coord.Row < len(state.Tiles) {
				state.Tiles[coord.Row][coord.Col] = TileActive
			}
		}
	}
	return state
}
