package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/JoelOtter/termloop"
	"github.com/jauhararifin/blockfall"
)

func main() {
	fall := flag.Float64("fall", 1, "fall speed in cells per second")
	softDrop := flag.Float64("softdrop", 20, "soft drop speed in cells per second")
	seed := flag.Int64("seed", 0, "shape seed, 0 uses the clock")
	debug := flag.Bool("debug", false, "enable s j t o l z i keys to spawn a given shape")
	logPath := flag.String("log", "", "write engine logs to this file")
	flag.Parse()

	logger := log.New(io.Discard, "", 0)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("cannot open log file: %v\n", err)
		}
		defer f.Close()
		logger = log.New(f, "blockfall ", log.LstdFlags)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	player, err := NewBoardPlayer(0, 0, *seed, *debug,
		blockfall.WithFallSpeed(*fall),
		blockfall.WithSoftDropSpeed(*softDrop),
		blockfall.WithControllerLogger(logger),
	)
	if err != nil {
		log.Fatalf("cannot create game: %v\n", err)
	}

	game := termloop.NewGame()
	level := termloop.NewBaseLevel(termloop.Cell{})
	level.AddEntity(player)
	game.Screen().SetLevel(level)
	game.Start()
}

type boardPlayer struct {
	controller *blockfall.Controller
	tracker    *blockfall.InputTracker
	debug      bool

	x, y          int
	score         int
	clearing      []int
	gameOver      bool
	quit          bool
	width, height int

	scoreText *termloop.Text
	infoText  *termloop.Text
}

func NewBoardPlayer(x, y int, seed int64, debug bool, options ...blockfall.ControllerOption) (*boardPlayer, error) {
	b := &boardPlayer{
		tracker: &blockfall.InputTracker{},
		debug:   debug,
		x:       x,
		y:       y,
	}

	board := blockfall.NewBoard(blockfall.WithEventHandler(blockfall.EventHandlerFunc(b.onBoardEvent)))
	b.width, b.height = board.Width(), board.Height()

	options = append(options, blockfall.WithListener(blockfall.ListenerFuncs{
		GameStart: func() {
			b.score = 0
			b.gameOver = false
			b.infoText.SetText("")
		},
		GameOver: func() {
			b.gameOver = true
			b.infoText.SetText("Game over! r: retry")
		},
		RowsCleared: func(rows []int) {
			b.score += len(rows) * (len(rows) + 1)
		},
		Quit: func() {
			b.quit = true
			b.infoText.SetText("Bye. Ctrl+C to exit")
		},
	}))

	b.scoreText = termloop.NewText(x+b.width+3, y+8, "0", termloop.ColorWhite, termloop.ColorDefault)
	b.infoText = termloop.NewText(x+b.width+3, y+10, "Enter: start", termloop.ColorWhite, termloop.ColorDefault)

	controller, err := blockfall.NewController(board, blockfall.NewRandomProvider(seed), options...)
	if err != nil {
		return nil, err
	}
	b.controller = controller
	return b, nil
}

// onBoardEvent keeps the clear highlight in sync with the grid.
func (b *boardPlayer) onBoardEvent(ev blockfall.Event) {
	switch ev.Kind {
	case blockfall.EventOccupied, blockfall.EventReset:
		b.clearing = nil
	case blockfall.EventRowCleared:
		b.clearing = append(b.clearing, ev.Row)
	}
}

func (b *boardPlayer) keyDown(k blockfall.Key) {
	b.tracker.Hold(k, time.Now())
}

func (b *boardPlayer) Tick(ev termloop.Event) {
	if ev.Type != termloop.EventKey {
		return
	}

	switch ev.Key {
	case termloop.KeyArrowLeft:
		b.keyDown(blockfall.KeyLeft)
	case termloop.KeyArrowRight:
		b.keyDown(blockfall.KeyRight)
	case termloop.KeyArrowDown:
		b.keyDown(blockfall.KeyDrop)
	case termloop.KeyArrowUp:
		b.tracker.KeyDown(blockfall.KeyRotate)
		b.tracker.KeyUp(blockfall.KeyRotate)
	case termloop.KeyEnter:
		if b.controller.Phase() == blockfall.PhaseIdle {
			if err := b.controller.Start(); err != nil {
				log.Printf("cannot start: %v\n", err)
			}
		}
	}

	switch ev.Ch {
	case 'r':
		if b.gameOver && !b.quit {
			b.controller.Restart()
		}
	case 'q':
		if !b.quit {
			b.controller.Quit()
		}
	case 's', 'j', 't', 'o', 'l', 'z', 'i':
		if !b.debug {
			return
		}
		index, ok := blockfall.ShapeIndex(blockfall.DefaultShapes(), string(ev.Ch-'a'+'A'))
		if !ok {
			return
		}
		if err := b.controller.SpawnIndex(index); err != nil {
			b.infoText.SetText(err.Error())
		}
	}
}

func (b *boardPlayer) Draw(s *termloop.Screen) {
	b.tracker.ReleaseStale(time.Now(), blockfall.DefaultHoldWindow)
	dt := time.Duration(s.TimeDelta() * float64(time.Second))
	b.controller.Step(dt, b.tracker.Frame())

	border := &termloop.Cell{Fg: termloop.ColorWhite, Bg: termloop.ColorBlack, Ch: '+'}
	for i := 0; i < b.width+2; i++ {
		s.RenderCell(b.x+i, b.y, border)
		s.RenderCell(b.x+i, b.y+b.height+1, border)
	}
	for i := 0; i < b.height+2; i++ {
		s.RenderCell(b.x, b.y+i, border)
		s.RenderCell(b.x+b.width+1, b.y+i, border)
	}

	b.scoreText.SetText(fmt.Sprintf("Score: %d", b.score))
	b.scoreText.Draw(s)
	b.infoText.Draw(s)

	state := b.controller.State()
	drawTiles(s, b.x+1, b.y+1, state, b.clearing)
}

// drawTiles renders the visible rows of state with the top row at screen
// row top. Rows in clearing are drawn as a flash.
func drawTiles(s *termloop.Screen, left, top int, state blockfall.State, clearing []int) {
	flash := make(map[int]bool, len(clearing))
	for _, row := range clearing {
		flash[row] = true
	}

	for row := 0; row < state.Height; row++ {
		for col := 0; col < state.Width; col++ {
			fg := termloop.ColorWhite
			ch := rune(0)

			switch state.Tiles[row][col] {
			case blockfall.TileActive:
				ch = '@'
			case blockfall.TileLocked:
				ch = '#'
			}
			if flash[row] && state.Phase == blockfall.PhaseClearing {
				fg = termloop.ColorYellow
				ch = '='
			}
			if state.Phase == blockfall.PhaseGameOver && ch != 0 {
				fg = termloop.ColorRed
			}

			s.RenderCell(left+col, top+state.Height-1-row, &termloop.Cell{
				Fg: fg,
				Bg: termloop.ColorBlack,
				Ch: ch,
			})
		}
	}
}
