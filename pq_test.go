package astar

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	key   int
	id    int
	index int
}

func (t *testItem) HeapIndex() int     { return t.index }
func (t *testItem) SetHeapIndex(i int) { t.index = i }

func lessItem(a, b *testItem) bool {
	if a.key != b.key {
		return a.key < b.key
	}
	return a.id < b.id
}

func newItem(id, key int) *testItem { return &testItem{key: key, id: id, index: -1} }

// requireHeapOrder checks every queued item against its parent and its
// recorded index against its position.
func requireHeapOrder(t *testing.T, queue *PriorityQueue[*testItem]) {
	t.Helper()
	items := queue.Items()
	for i, item := range items {
		require.Equal(t, i, item.HeapIndex(), "stale index for item %d", item.id)
		if i > 0 {
			parent := items[(i-1)/2]
			require.False(t, lessItem(item, parent), "item %d sorts before its parent %d", item.id, parent.id)
		}
	}
}

func TestPriorityQueueRemoveMinEmpty(t *testing.T) {
	queue := NewPriorityQueue(lessItem)
	_, err := queue.RemoveMin()
	assert.ErrorIs(t, err, ErrEmptyQueue)
	_, ok := queue.Peek()
	assert.False(t, ok)
}

func TestPriorityQueueOrdersRandomKeys(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	queue := NewPriorityQueue(lessItem)
	for i := 0; i < 500; i++ {
		require.NoError(t, queue.Add(newItem(i, rng.Intn(100))))
	}
	requireHeapOrder(t, queue)

	var previous *testItem
	for queue.Len() > 0 {
		item, err := queue.RemoveMin()
		require.NoError(t, err)
		assert.Equal(t, -1, item.HeapIndex())
		if previous != nil {
			assert.False(t, lessItem(item, previous), "%+v removed after %+v", item, previous)
		}
		previous = item
	}
}

func TestPriorityQueueTieBreakIsDeterministic(t *testing.T) {
	queue := NewPriorityQueue(lessItem)
	for _, id := range []int{4, 2, 9, 1, 7} {
		require.NoError(t, queue.Add(newItem(id, 5)))
	}
	var ids []int
	for queue.Len() > 0 {
		item, err := queue.RemoveMin()
		require.NoError(t, err)
		ids = append(ids, item.id)
	}
	assert.Equal(t, []int{1, 2, 4, 7, 9}, ids)
}

func TestPriorityQueueUpdateAfterDecrease(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	queue := NewPriorityQueue(lessItem)
	items := make([]*testItem, 200)
	for i := range items {
		items[i] = newItem(i, 1000+rng.Intn(1000))
		require.NoError(t, queue.Add(items[i]))
	}

	for round := 0; round < 300; round++ {
		item := items[rng.Intn(len(items))]
		if !queue.Contains(item) {
			continue
		}
		item.key -= rng.Intn(500)
		require.NoError(t, queue.Update(item))
		requireHeapOrder(t, queue)

		if round%3 == 0 {
			minItem, ok := queue.Peek()
			require.True(t, ok)
			removed, err := queue.RemoveMin()
			require.NoError(t, err)
			assert.Same(t, minItem, removed)
			assert.False(t, queue.Contains(removed))
		}
	}
}

func TestPriorityQueueMisuse(t *testing.T) {
	queue := NewPriorityQueue(lessItem)
	a, b := newItem(1, 1), newItem(2, 2)

	assert.ErrorIs(t, queue.Update(a), ErrNotQueued)
	require.NoError(t, queue.Add(a))
	assert.ErrorIs(t, queue.Add(a), ErrAlreadyQueued)
	assert.True(t, queue.Contains(a))
	assert.False(t, queue.Contains(b))

	// b claims a's slot without being queued.
	b.index = a.index
	assert.False(t, queue.Contains(b))
	assert.ErrorIs(t, queue.Update(b), ErrNotQueued)
}

func TestPriorityQueueClear(t *testing.T) {
	queue := NewPriorityQueue(lessItem)
	items := []*testItem{newItem(1, 3), newItem(2, 1), newItem(3, 2)}
	for _, item := range items {
		require.NoError(t, queue.Add(item))
	}
	queue.Clear()
	assert.Zero(t, queue.Len())
	for _, item := range items {
		assert.Equal(t, -1, item.HeapIndex())
		assert.False(t, queue.Contains(item))
	}
	require.NoError(t, queue.Add(items[0]))
	assert.Equal(t, 1, queue.Len())
}
