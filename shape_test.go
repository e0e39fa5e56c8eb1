package blockfall_test

import (
	"testing"

	"github.com/jauhararifin/blockfall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnIndexIsDeterministic(t *testing.T) {
	bounds := blockfall.DefaultBounds(10)
	spawn := blockfall.Vec{X: 5, Y: 20}
	a := blockfall.NewRandomProvider(1)
	b := blockfall.NewRandomProvider(99)

	for i := 0; i < a.Len(); i++ {
		first, err := a.SpawnIndex(i, spawn)
		require.NoError(t, err)
		second, err := b.SpawnIndex(i, spawn)
		require.NoError(t, err)
		again, err := a.SpawnIndex(i, spawn)
		require.NoError(t, err)

		assert.Equal(t, first.Coords(bounds), second.Coords(bounds))
		assert.Equal(t, first.Coords(bounds), again.Coords(bounds))
		assert.Equal(t, blockfall.DefaultShapes()[i].Name, first.Shape)
		assert.Equal(t, i, first.Index)
		assert.Len(t, first.Blocks, 4)
	}
}

func TestSpawnIndexOutOfRange(t *testing.T) {
	provider := blockfall.NewRandomProvider(1)

	_, err := provider.SpawnIndex(-1, blockfall.Vec{})
	assert.ErrorIs(t, err, blockfall.ErrShapeIndex)
	_, err = provider.SpawnIndex(provider.Len(), blockfall.Vec{})
	assert.ErrorIs(t, err, blockfall.ErrShapeIndex)
}

func TestRandomProvider(t *testing.T) {
	t.Run("same seed same sequence", func(t *testing.T) {
		a := blockfall.NewRandomProvider(42)
		b := blockfall.NewRandomProvider(42)
		for i := 0; i < 50; i++ {
			assert.Equal(t, a.Spawn(blockfall.Vec{}).Index, b.Spawn(blockfall.Vec{}).Index)
		}
	})

	t.Run("covers every shape", func(t *testing.T) {
		provider := blockfall.NewRandomProvider(7)
		seen := make(map[int]bool)
		for i := 0; i < 500; i++ {
			seen[provider.Spawn(blockfall.Vec{}).Index] = true
		}
		assert.Len(t, seen, provider.Len())
	})

	t.Run("block ids are unique", func(t *testing.T) {
		provider := blockfall.NewRandomProvider(7)
		ids := make(map[blockfall.BlockID]bool)
		for i := 0; i < 100; i++ {
			for _, block := range provider.Spawn(blockfall.Vec{}).Blocks {
				assert.False(t, ids[block.ID])
				ids[block.ID] = true
			}
		}
	})

	t.Run("custom shapes", func(t *testing.T) {
		domino := blockfall.Shape{Name: "domino", Offsets: []blockfall.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}}}
		provider := blockfall.NewRandomProvider(3, domino)
		assert.Equal(t, 1, provider.Len())
		assert.Equal(t, "domino", provider.Spawn(blockfall.Vec{}).Shape)
	})
}

func TestQueueProvider(t *testing.T) {
	provider := blockfall.NewQueueProvider()
	require.NoError(t, provider.Push(3, 6, 1))
	assert.ErrorIs(t, provider.Push(2, 7), blockfall.ErrShapeIndex)

	assert.Equal(t, "O", provider.Spawn(blockfall.Vec{}).Shape)
	assert.Equal(t, "I", provider.Spawn(blockfall.Vec{}).Shape)
	assert.Equal(t, "J", provider.Spawn(blockfall.Vec{}).Shape)
	assert.Equal(t, "S", provider.Spawn(blockfall.Vec{}).Shape)
}

func TestShapeIndex(t *testing.T) {
	shapes := blockfall.DefaultShapes()
	for i, name := range []string{"S", "J", "T", "O", "L", "Z", "I"} {
		index, ok := blockfall.ShapeIndex(shapes, name)
		assert.True(t, ok)
		assert.Equal(t, i, index)
	}
	_, ok := blockfall.ShapeIndex(shapes, "X")
	assert.False(t, ok)
}
