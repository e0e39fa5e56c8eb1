package main

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/jauhararifin/blockfall"
)

type MessageSender interface {
	Send(playerID string, msg []byte) error
}

type Player struct {
	ID   string
	Name string
}

// playerGame is one player's controller and the key state received from
// that player since the last tick.
type playerGame struct {
	controller *blockfall.Controller
	tracker    *blockfall.InputTracker
}

func newPlayerGame(player Player, seed int64, config blockfall.Config) (*playerGame, error) {
	controller, err := blockfall.NewController(
		blockfall.NewBoard(),
		blockfall.NewRandomProvider(seed),
		blockfall.WithConfig(config),
		blockfall.WithListener(blockfall.ListenerFuncs{
			GameOver: func() {
				log.Printf("player %s (%s) game over\n", player.Name, player.ID)
			},
			RowsCleared: func(rows []int) {
				log.Printf("player %s (%s) cleared %d rows\n", player.Name, player.ID, len(rows))
			},
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := controller.Start(); err != nil {
		return nil, err
	}
	return &playerGame{controller: controller, tracker: &blockfall.InputTracker{}}, nil
}

func (g *playerGame) apply(action ActionMessage) {
	if action.Restart {
		if g.controller.Phase() == blockfall.PhaseGameOver {
			g.controller.Restart()
		}
		return
	}
	if action.Down {
		g.tracker.KeyDown(action.Key)
	} else {
		g.tracker.KeyUp(action.Key)
	}
}

func (g *playerGame) step(dt time.Duration) blockfall.State {
	g.controller.Step(dt, g.tracker.Frame())
	return g.controller.State()
}

type Room struct {
	m                *sync.Mutex
	randomizer       *rand.Rand
	player1, player2 Player
	game1, game2     *playerGame
	sender           MessageSender
	config           blockfall.Config
	isStarted        bool
	fps              int
	countdown        time.Duration
	stop             chan struct{}

	// runner drives the room after both players joined.
	runner func(stop <-chan struct{})
}

func NewRoom(sender MessageSender, fps int, config blockfall.Config) *Room {
	if fps <= 0 {
		fps = 30
	}
	r := &Room{
		m:          &sync.Mutex{},
		randomizer: rand.New(rand.NewSource(time.Now().UnixNano())),
		sender:     sender,
		config:     config,
		fps:        fps,
		countdown:  3 * time.Second,
	}
	r.runner = r.run
	return r
}

func (r *Room) OnPlayerJoin(player Player) error {
	if player.ID == "" || player.Name == "" {
		return fmt.Errorf("player id or name cannot empty")
	}

	r.m.Lock()
	if r.player1.ID == "" {
		r.player1 = player
		r.m.Unlock()
		return nil
	}
	if r.player2.ID == "" {
		r.player2 = player
		r.m.Unlock()
		return r.initGame()
	}
	r.m.Unlock()

	return fmt.Errorf("room already full")
}

func (r *Room) OnPlayerLeave(player Player) error {
	r.m.Lock()
	defer r.m.Unlock()

	if r.player1 == player {
		r.player1 = r.player2
		r.player2 = Player{}
		r.stopGame()
		return nil
	}

	if r.player2 == player {
		r.player2 = Player{}
		r.stopGame()
		return nil
	}

	return fmt.Errorf("no such player")
}

func (r *Room) initGame() error {
	r.m.Lock()
	defer r.m.Unlock()

	seedA, seedB := r.randomizer.Int63(), r.randomizer.Int63()
	game1, err := newPlayerGame(r.player1, seedA, r.config)
	if err != nil {
		return fmt.Errorf("cannot create game for player 1: %w", err)
	}
	game2, err := newPlayerGame(r.player2, seedB, r.config)
	if err != nil {
		return fmt.Errorf("cannot create game for player 2: %w", err)
	}
	r.game1, r.game2 = game1, game2
	r.isStarted = true
	r.stop = make(chan struct{})

	state := game1.controller.State()
	msg, err := encode(InitGameMessage{
		Seed:   map[string]int64{r.player1.ID: seedA, r.player2.ID: seedB},
		Names:  map[string]string{r.player1.ID: r.player1.Name, r.player2.ID: r.player2.Name},
		FPS:    r.fps,
		Width:  state.Width,
		Height: state.Height,
	})
	if err != nil {
		return fmt.Errorf("cannot encode init message: %w", err)
	}

	if err := r.sender.Send(r.player1.ID, msg); err != nil {
		log.Printf("cannot send init message to player 1 (%s): %v\n", r.player1.ID, err)
	}
	if err := r.sender.Send(r.player2.ID, msg); err != nil {
		log.Printf("cannot send init message to player 2 (%s): %v\n", r.player2.ID, err)
	}

	go r.runner(r.stop)
	return nil
}

func (r *Room) run(stop <-chan struct{}) {
	select {
	case <-time.After(r.countdown):
	case <-stop:
		return
	}

	interval := time.Second / time.Duration(r.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.tick(interval)
		case <-stop:
			return
		}
	}
}

// tick steps both games and broadcasts the resulting states.
func (r *Room) tick(dt time.Duration) {
	r.m.Lock()
	if !r.isStarted {
		r.m.Unlock()
		return
	}
	update := GameStateUpdateMessage{
		State: map[string]blockfall.State{
			r.player1.ID: r.game1.step(dt),
			r.player2.ID: r.game2.step(dt),
		},
	}
	player1, player2 := r.player1.ID, r.player2.ID
	r.m.Unlock()

	msg, err := encode(update)
	if err != nil {
		log.Printf("cannot encode game state update message: %v\n", err)
		return
	}

	if err := r.sender.Send(player1, msg); err != nil {
		log.Printf("cannot send game state update message to player 1 (%s): %v\n", player1, err)
	}
	if err := r.sender.Send(player2, msg); err != nil {
		log.Printf("cannot send game state update message to player 2 (%s): %v\n", player2, err)
	}
}

// stopGame must be called with r.m held.
func (r *Room) stopGame() {
	if r.isStarted {
		close(r.stop)
	}
	r.game1 = nil
	r.game2 = nil
	r.isStarted = false
}

func (r *Room) IsEmpty() bool {
	r.m.Lock()
	defer r.m.Unlock()
	return r.player1.ID == "" && r.player2.ID == ""
}

func (r *Room) OnMessage(playerID string, msg []byte) {
	action := ActionMessage{}
	if err := decode(msg, &action); err != nil {
		log.Printf("cannot parse action message from playerid %s: %v\n", playerID, err)
		return
	}

	r.m.Lock()
	defer r.m.Unlock()

	if !r.isStarted {
		return
	}

	if playerID == r.player1.ID {
		r.game1.apply(action)
		return
	}

	if playerID == r.player2.ID {
		r.game2.apply(action)
		return
	}

	log.Printf("unrecognized player id: %s\n", playerID)
}
