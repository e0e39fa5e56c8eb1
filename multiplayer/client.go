package main

import (
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/JoelOtter/termloop"
	"github.com/google/uuid"
	"github.com/jauhararifin/blockfall"
)

func startClient(host, name, room string) {
	idUUID, err := uuid.NewUUID()
	if err != nil {
		log.Fatalf("cannot generate id: %v\n", err)
	}
	id := idUUID.String()
	log.Printf("id generated: %s\n", id)

	s, err := net.ResolveUDPAddr("udp4", host)
	if err != nil {
		log.Fatalf("cannot resolve %s: %v\n", host, err)
	}
	log.Printf("address resolved: %v\n", s)

	conn, err := net.DialUDP("udp4", nil, s)
	if err != nil {
		log.Fatalf("cannot dial %v: %v\n", s, err)
	}
	log.Printf("connected: %v\n", conn.LocalAddr())

	send := func(userMsg UserMessage) {
		msg, err := encode(userMsg)
		if err != nil {
			log.Printf("cannot encode user message: %v\n", err)
			return
		}
		if _, err := conn.Write(msg); err != nil {
			log.Printf("cannot send user message: %v\n", err)
		}
	}

	send(UserMessage{JoinMessage: &JoinMessage{ID: id, Name: name, Room: room}})
	log.Printf("user join message sent\n")

	initmsg := InitGameMessage{}
	msgbuff := make([]byte, maxDatagram)
	n, _, err := conn.ReadFromUDP(msgbuff)
	if err != nil {
		log.Fatalf("cannot read init message: %v\n", err)
	}
	if err := decode(msgbuff[:n], &initmsg); err != nil {
		log.Fatalf("cannot decode init message: %v\n", err)
	}
	log.Printf("init game message received: %v\n", initmsg)

	player1ID := id
	player2ID := ""
	for pid := range initmsg.Seed {
		if pid != player1ID {
			player2ID = pid
		}
	}
	log.Printf("player1ID=%s player2ID=%s\n", player1ID, player2ID)

	sendAction := func(action ActionMessage) {
		msg, err := encode(action)
		if err != nil {
			log.Printf("cannot encode action message: %v\n", err)
			return
		}
		send(UserMessage{RoomMessage: &RoomMessage{ID: id, Message: msg}})
	}

	view1 := NewBoardView(0, 2, initmsg.Width, initmsg.Height, initmsg.Names[player1ID], sendAction)
	view2 := NewBoardView(initmsg.Width+15, 2, initmsg.Width, initmsg.Height, initmsg.Names[player2ID], nil)
	view1.onQuit = func() {
		send(UserMessage{LeaveMessage: &LeaveMessage{ID: id}})
	}

	go func() {
		for {
			buff := make([]byte, maxDatagram)
			n, _, err := conn.ReadFromUDP(buff)
			if err != nil {
				log.Printf("cannot read from udp: %v\n", err)
				continue
			}

			g := GameStateUpdateMessage{}
			if err := decode(buff[:n], &g); err != nil {
				log.Printf("cannot decode game state update message: %v\n", err)
				continue
			}

			view1.SetState(g.State[player1ID])
			view2.SetState(g.State[player2ID])
		}
	}()

	game := termloop.NewGame()
	level := termloop.NewBaseLevel(termloop.Cell{})
	level.AddEntity(view1)
	level.AddEntity(view2)
	game.Screen().SetLevel(level)
	game.Start()
}

type ActionSender func(action ActionMessage)

// boardView renders the states the server broadcasts. The local player's
// view also forwards key events as ActionMessages.
type boardView struct {
	m             *sync.Mutex
	state         blockfall.State
	x, y          int
	width, height int
	name          string
	keys          *blockfall.InputTracker
	left          bool

	scoreText    *termloop.Text
	actionSender ActionSender
	onQuit       func()
}

func NewBoardView(x, y, width, height int, name string, actionSender ActionSender) *boardView {
	return &boardView{
		m:      &sync.Mutex{},
		x:      x,
		y:      y,
		width:  width,
		height: height,
		name:   name,
		keys:   &blockfall.InputTracker{},

		scoreText:    termloop.NewText(x+width+3, y+2, "", termloop.ColorWhite, termloop.ColorDefault),
		actionSender: actionSender,
	}
}

func (b *boardView) SetState(state blockfall.State) {
	b.m.Lock()
	defer b.m.Unlock()
	if len(state.Tiles) == 0 {
		return
	}
	b.state = state
}

func (b *boardView) hold(k blockfall.Key) {
	if b.keys.Hold(k, time.Now()) {
		b.actionSender(ActionMessage{Key: k, Down: true})
	}
}

func (b *boardView) Tick(ev termloop.Event) {
	if b.actionSender == nil || b.left || ev.Type != termloop.EventKey {
		return
	}

	switch ev.Key {
	case termloop.KeyArrowLeft:
		b.hold(blockfall.KeyLeft)
	case termloop.KeyArrowRight:
		b.hold(blockfall.KeyRight)
	case termloop.KeyArrowDown:
		b.hold(blockfall.KeyDrop)
	case termloop.KeyArrowUp:
		b.actionSender(ActionMessage{Key: blockfall.KeyRotate, Down: true})
		b.actionSender(ActionMessage{Key: blockfall.KeyRotate, Down: false})
	}

	switch ev.Ch {
	case 'r':
		b.actionSender(ActionMessage{Restart: true})
	case 'q':
		b.left = true
		if b.onQuit != nil {
			b.onQuit()
		}
	}
}

func (b *boardView) Draw(s *termloop.Screen) {
	if b.actionSender != nil {
		released := b.keys.ReleaseStale(time.Now(), blockfall.DefaultHoldWindow)
		for _, k := range released.List() {
			b.actionSender(ActionMessage{Key: k, Down: false})
		}
		// edges are unused, only transitions are forwarded
		b.keys.Frame()
	}

	border := &termloop.Cell{Fg: termloop.ColorWhite, Bg: termloop.ColorBlack, Ch: '+'}
	for i := 0; i < b.width+2; i++ {
		s.RenderCell(b.x+i, b.y, border)
		s.RenderCell(b.x+i, b.y+b.height+1, border)
	}
	for i := 0; i < b.height+2; i++ {
		s.RenderCell(b.x, b.y+i, border)
		s.RenderCell(b.x+b.width+1, b.y+i, border)
	}

	b.m.Lock()
	state := b.state
	b.m.Unlock()

	status := ""
	switch {
	case b.left:
		status = " (left)"
	case state.Phase == blockfall.PhaseGameOver:
		status = " (game over)"
	}
	b.scoreText.SetText(fmt.Sprintf("%s lines: %d%s", b.name, state.Lines, status))
	b.scoreText.Draw(s)

	for row := 0; row < state.Height && row < len(state.Tiles); row++ {
		for col := 0; col < state.Width; col++ {
			fg := termloop.ColorWhite
			ch := rune(0)

			switch state.Tiles[row][col] {
			case blockfall.TileActive:
				ch = '@'
			case blockfall.TileLocked:
				ch = '#'
				if state.Phase == blockfall.PhaseGameOver {
					fg = termloop.ColorRed
				}
			}

			s.RenderCell(b.x+1+col, b.y+state.Height-row, &termloop.Cell{
				Fg: fg,
				Bg: termloop.ColorBlack,
				Ch: ch,
			})
		}
	}
}
