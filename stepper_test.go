package astar

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepperStates(t *testing.T) {
	g := mustGrid(t, "....", "....", "....")
	stepper, err := NewStepper(g, Point{0, 0}, Point{3, 2})
	require.NoError(t, err)
	assert.Equal(t, StateReady, stepper.State())
	assert.Equal(t, []Point{{0, 0}}, stepper.Frontier())
	assert.Empty(t, stepper.ClosedCells())

	snapshot, err := stepper.Step()
	require.NoError(t, err)
	assert.Equal(t, StateSearching, snapshot.State)
	assert.Equal(t, Point{0, 0}, snapshot.Current)
	assert.Equal(t, 1, snapshot.StepIndex)
	assert.Equal(t, 3, snapshot.OpenLen)
	assert.False(t, snapshot.Done)
	assert.Equal(t, []Point{{0, 0}}, stepper.ClosedCells())
	assert.ElementsMatch(t, []Point{{1, 0}, {0, 1}, {1, 1}}, stepper.Frontier())

	for !snapshot.Done {
		snapshot, err = stepper.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, StatePathFound, snapshot.State)
	assert.True(t, snapshot.Found)
	assert.Equal(t, Point{3, 2}, snapshot.Current)
	assert.Equal(t, 38, snapshot.Cost)
	assert.Equal(t, []Point{{1, 1}, {2, 2}, {3, 2}}, snapshot.Path)

	again, err := stepper.Step()
	require.NoError(t, err)
	assert.Equal(t, snapshot, again)
}

func TestStepperNoPath(t *testing.T) {
	g := mustGrid(t, ".#.", ".#.", ".#.")
	stepper, err := NewStepper(g, Point{0, 0}, Point{2, 2})
	require.NoError(t, err)

	var snapshot StepSnapshot
	for i := 0; i < 10 && !snapshot.Done; i++ {
		snapshot, err = stepper.Step()
		require.NoError(t, err)
	}
	assert.True(t, snapshot.Done)
	assert.False(t, snapshot.Found)
	assert.Equal(t, StateNoPath, stepper.State())
	assert.Empty(t, snapshot.Path)
	assert.Len(t, stepper.ClosedCells(), 3)
	assert.Empty(t, stepper.Frontier())
}

func TestStepperRejectsInvalidEndpoints(t *testing.T) {
	g := mustGrid(t, ".#")
	_, err := NewStepper(g, Point{0, 0}, Point{1, 0})
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
	_, err = NewStepper(g, Point{5, 0}, Point{0, 0})
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "searching", StateSearching.String())
	assert.Equal(t, "path_found", StatePathFound.String())
	assert.Equal(t, "no_path", StateNoPath.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestStepperTracksExpansionOrder(t *testing.T) {
	g := mustGrid(t,
		"..........",
		"...####...",
		"......#...",
		"..#...#...",
		"..#.......",
	)
	stepper, err := NewStepper(g, Point{0, 0}, Point{9, 4})
	require.NoError(t, err)

	var expanded []Point
	var snapshot StepSnapshot
	for !snapshot.Done {
		snapshot, err = stepper.Step()
		require.NoError(t, err)
		if !snapshot.Done || snapshot.Found {
			expanded = append(expanded, snapshot.Current)
		}
		require.Equal(t, expanded, stepper.ClosedCells())

		frontier := stepper.Frontier()
		require.Len(t, frontier, snapshot.OpenLen)
		require.True(t, slices.IsSortedFunc(frontier, func(a, b Point) int {
			return g.Index(a) - g.Index(b)
		}))
		for _, p := range frontier {
			require.NotContains(t, expanded, p)
		}
	}
	assert.True(t, snapshot.Found)
}
