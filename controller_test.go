package blockfall_test

import (
	"testing"
	"time"

	"github.com/jauhararifin/blockfall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shapeT = 2
	shapeO = 3
	shapeI = 6
)

type recorder struct {
	starts, overs, quits int
	cleared              [][]int
}

func (r *recorder) listener() blockfall.Listener {
	return blockfall.ListenerFuncs{
		GameStart:   func() { r.starts++ },
		GameOver:    func() { r.overs++ },
		RowsCleared: func(rows []int) { r.cleared = append(r.cleared, rows) },
		Quit:        func() { r.quits++ },
	}
}

func newController(t *testing.T, shapes []int, options ...blockfall.ControllerOption) (*blockfall.Controller, *recorder) {
	t.Helper()
	provider := blockfall.NewQueueProvider()
	require.NoError(t, provider.Push(shapes...))
	rec := &recorder{}
	options = append([]blockfall.ControllerOption{blockfall.WithListener(rec.listener())}, options...)
	c, err := blockfall.NewController(blockfall.NewBoard(), provider, options...)
	require.NoError(t, err)
	return c, rec
}

func activeCoords(c *blockfall.Controller) []blockfall.Coord {
	return c.Active().Coords(c.Board().Bounds())
}

func held(keys ...blockfall.Key) blockfall.Input {
	return blockfall.Input{Held: blockfall.Keys(keys...)}
}

func press(keys ...blockfall.Key) blockfall.Input {
	return blockfall.Input{Pressed: blockfall.Keys(keys...), Held: blockfall.Keys(keys...)}
}

func TestControllerStart(t *testing.T) {
	c, rec := newController(t, []int{shapeO})
	assert.Equal(t, blockfall.PhaseIdle, c.Phase())
	assert.Nil(t, c.Active())

	require.NoError(t, c.Start())
	assert.Equal(t, blockfall.PhaseFalling, c.Phase())
	assert.Equal(t, 1, rec.starts)
	require.NotNil(t, c.Active())
	assert.Equal(t, "O", c.Active().Shape)
	assert.Error(t, c.Start())

	state := c.State()
	active := 0
	for _, row := range state.Tiles {
		for _, tile := range row {
			if tile == blockfall.TileActive {
				active++
			}
		}
	}
	assert.Equal(t, 4, active)
	assert.Equal(t, "O", state.Shape)
	assert.Equal(t, blockfall.TileActive, state.Tiles[19][4])
}

func TestControllerInvalidConfig(t *testing.T) {
	_, err := blockfall.NewController(blockfall.NewBoard(), blockfall.NewQueueProvider(), blockfall.WithFallSpeed(0))
	assert.ErrorIs(t, err, blockfall.ErrInvalidConfig)

	_, err = blockfall.NewController(blockfall.NewBoard(), blockfall.NewQueueProvider(), blockfall.WithClearDelay(-time.Second))
	assert.ErrorIs(t, err, blockfall.ErrInvalidConfig)
}

func TestControllerFall(t *testing.T) {
	c, _ := newController(t, []int{shapeO})
	require.NoError(t, c.Start())
	assert.Equal(t, 19, activeCoords(c)[0].Row)

	assert.Equal(t, blockfall.PhaseFalling, c.Step(500*time.Millisecond, blockfall.Input{}))
	assert.Equal(t, 19, activeCoords(c)[0].Row)

	assert.Equal(t, blockfall.PhaseFalling, c.Step(500*time.Millisecond, blockfall.Input{}))
	assert.Equal(t, 18, activeCoords(c)[0].Row)
}

func TestControllerHorizontalRepeat(t *testing.T) {
	c, _ := newController(t, []int{shapeO}, blockfall.WithFallSpeed(0.001))
	require.NoError(t, c.Start())
	col := func() int { return activeCoords(c)[0].Col }
	require.Equal(t, 4, col())

	c.Step(10*time.Millisecond, press(blockfall.KeyLeft))
	assert.Equal(t, 3, col(), "first press moves at once")

	c.Step(200*time.Millisecond, held(blockfall.KeyLeft))
	assert.Equal(t, 3, col(), "initial repeat delay")

	c.Step(50*time.Millisecond, held(blockfall.KeyLeft))
	assert.Equal(t, 2, col())

	c.Step(80*time.Millisecond, held(blockfall.KeyLeft))
	assert.Equal(t, 1, col())

	c.Step(80*time.Millisecond, held(blockfall.KeyLeft))
	assert.Equal(t, 0, col())

	c.Step(80*time.Millisecond, held(blockfall.KeyLeft))
	assert.Equal(t, 0, col(), "left wall")

	c.Step(10*time.Millisecond, blockfall.Input{Released: blockfall.Keys(blockfall.KeyLeft)})
	c.Step(10*time.Millisecond, press(blockfall.KeyRight))
	assert.Equal(t, 1, col(), "release resets the repeat")

	c.Step(10*time.Millisecond, held(blockfall.KeyRight, blockfall.KeyLeft))
	assert.Equal(t, 1, col(), "left is ignored while right is held")

	c.Step(10*time.Millisecond, blockfall.Input{
		Released: blockfall.Keys(blockfall.KeyRight),
		Held:     blockfall.Keys(blockfall.KeyLeft),
	})
	assert.Equal(t, 0, col())
}

func TestControllerTap(t *testing.T) {
	c, _ := newController(t, []int{shapeO}, blockfall.WithFallSpeed(0.001))
	require.NoError(t, c.Start())
	tracker := &blockfall.InputTracker{}

	for want := 3; want >= 1; want-- {
		tracker.KeyDown(blockfall.KeyLeft)
		tracker.KeyUp(blockfall.KeyLeft)
		c.Step(10*time.Millisecond, tracker.Frame())
		assert.Equal(t, want, activeCoords(c)[0].Col)
	}

	tracker.KeyDown(blockfall.KeyRight)
	c.Step(10*time.Millisecond, tracker.Frame())
	assert.Equal(t, 2, activeCoords(c)[0].Col)
}

func TestControllerRotate(t *testing.T) {
	t.Run("free space", func(t *testing.T) {
		c, _ := newController(t, []int{shapeT}, blockfall.WithFallSpeed(0.001))
		require.NoError(t, c.Start())

		c.Step(10*time.Millisecond, press(blockfall.KeyRotate))
		assert.Equal(t, []blockfall.Coord{
			{Col: 3, Row: 18}, {Col: 4, Row: 17}, {Col: 4, Row: 18}, {Col: 4, Row: 19},
		}, activeCoords(c))

		c.Step(10*time.Millisecond, held(blockfall.KeyRotate))
		assert.Equal(t, blockfall.Coord{Col: 3, Row: 18}, activeCoords(c)[0], "holding does not rotate again")
	})

	t.Run("blocked rotation is reverted", func(t *testing.T) {
		c, _ := newController(t, []int{shapeT}, blockfall.WithFallSpeed(0.001))
		f := newBlockFactory()
		c.Board().Lock(f.at(c.Board(), blockfall.Coord{Col: 4, Row: 17}))
		require.NoError(t, c.Start())
		before := activeCoords(c)

		c.Step(10*time.Millisecond, press(blockfall.KeyRotate))
		assert.Equal(t, before, activeCoords(c))
	})
}

func TestControllerSoftDrop(t *testing.T) {
	t.Run("latched until release after spawn", func(t *testing.T) {
		c, _ := newController(t, []int{shapeO})
		require.NoError(t, c.Start())
		row := func() int { return activeCoords(c)[0].Row }

		c.Step(100*time.Millisecond, press(blockfall.KeyDrop))
		assert.Equal(t, 19, row())

		c.Step(10*time.Millisecond, blockfall.Input{Released: blockfall.Keys(blockfall.KeyDrop)})
		c.Step(60*time.Millisecond, press(blockfall.KeyDrop))
		assert.Equal(t, 18, row())
		c.Step(60*time.Millisecond, held(blockfall.KeyDrop))
		assert.Equal(t, 17, row())

		c.Step(60*time.Millisecond, blockfall.Input{Released: blockfall.Keys(blockfall.KeyDrop)})
		assert.Equal(t, 17, row(), "normal speed after release")
	})

	t.Run("does not carry over to the next piece", func(t *testing.T) {
		c, _ := newController(t, []int{shapeO, shapeO})
		require.NoError(t, c.Start())
		first := c.Active()

		c.Step(10*time.Millisecond, blockfall.Input{})
		for i := 0; i < 100 && c.Active() == first; i++ {
			c.Step(60*time.Millisecond, held(blockfall.KeyDrop))
		}
		require.NotSame(t, first, c.Active())
		require.NotNil(t, c.Active())

		c.Step(60*time.Millisecond, held(blockfall.KeyDrop))
		assert.Equal(t, 19, activeCoords(c)[0].Row)
	})
}

func TestControllerClearCycle(t *testing.T) {
	c, rec := newController(t, []int{shapeO, shapeO})
	f := newBlockFactory()
	f.fillRow(t, c.Board(), 0, 4, 5)
	require.NoError(t, c.Start())

	var phases []blockfall.Phase
	for i := 0; i < 100 && c.Phase() != blockfall.PhaseClearing; i++ {
		phases = append(phases, c.Step(time.Second, blockfall.Input{}))
	}
	require.Equal(t, blockfall.PhaseClearing, c.Phase())
	assert.Contains(t, phases, blockfall.PhaseLocking)
	assert.Equal(t, [][]int{{0}}, rec.cleared)
	assert.Equal(t, 1, c.Lines())
	assert.Nil(t, c.Active())

	board := c.Board()
	assert.False(t, board.IsRowFull(0))
	assert.NotNil(t, board.Block(blockfall.Coord{Col: 4, Row: 1}), "not collapsed during the delay")

	assert.Equal(t, blockfall.PhaseClearing, c.Step(100*time.Millisecond, blockfall.Input{}))
	assert.Equal(t, blockfall.PhaseFalling, c.Step(100*time.Millisecond, blockfall.Input{}))

	for x := 0; x < board.Width(); x++ {
		assert.Equal(t, x == 4 || x == 5, board.Block(blockfall.Coord{Col: x, Row: 0}) != nil, "col %d", x)
		assert.Nil(t, board.Block(blockfall.Coord{Col: x, Row: 1}))
	}
	assert.Equal(t, 2, board.Len())
	assert.NotNil(t, c.Active())
	assert.Equal(t, 1, c.State().Lines)
}

func TestControllerGameOver(t *testing.T) {
	shapes := make([]int, 20)
	for i := range shapes {
		shapes[i] = shapeO
	}
	c, rec := newController(t, shapes)
	require.NoError(t, c.Start())

	for i := 0; i < 2000 && c.Phase() != blockfall.PhaseGameOver; i++ {
		c.Step(time.Second, blockfall.Input{})
	}
	require.Equal(t, blockfall.PhaseGameOver, c.Phase())
	assert.Equal(t, 1, rec.overs)
	assert.Equal(t, 40, c.Board().Len())
	assert.Nil(t, c.Active())

	assert.Equal(t, blockfall.PhaseGameOver, c.Step(time.Second, press(blockfall.KeyLeft)))
	assert.Equal(t, 1, rec.overs)

	t.Run("restart", func(t *testing.T) {
		c.Restart()
		assert.Equal(t, blockfall.PhaseFalling, c.Phase())
		assert.Equal(t, 0, c.Board().Len())
		assert.Equal(t, 0, c.Lines())
		assert.Equal(t, 2, rec.starts)
		assert.NotNil(t, c.Active())
	})
}

func TestControllerQuit(t *testing.T) {
	c, rec := newController(t, []int{shapeO})
	require.NoError(t, c.Start())

	c.Quit()
	assert.Equal(t, 1, rec.quits)
	assert.Equal(t, blockfall.PhaseQuit, c.Step(time.Second, blockfall.Input{}))
	assert.Nil(t, c.Active())
}

func TestControllerSpawnIndex(t *testing.T) {
	c, _ := newController(t, []int{shapeO})
	assert.ErrorIs(t, c.SpawnIndex(shapeI), blockfall.ErrNotRunning)

	require.NoError(t, c.Start())
	require.NoError(t, c.SpawnIndex(shapeI))
	assert.Equal(t, "I", c.Active().Shape)

	want, err := blockfall.NewRandomProvider(5).SpawnIndex(shapeI, blockfall.DefaultConfig().SpawnPoint)
	require.NoError(t, err)
	assert.Equal(t, want.Coords(c.Board().Bounds()), activeCoords(c))

	assert.ErrorIs(t, c.SpawnIndex(42), blockfall.ErrShapeIndex)
	assert.Equal(t, "I", c.Active().Shape)
}
