package astar

import (
	"container/heap"
	"errors"
)

var (
	ErrEmptyQueue    = errors.New("priority queue is empty")
	ErrNotQueued     = errors.New("item is not queued")
	ErrAlreadyQueued = errors.New("item is already queued")
)

// Indexed is implemented by anything stored in a PriorityQueue. The queue
// writes each item's array position back through SetHeapIndex, which is what
// makes Contains O(1) and Update O(log n). -1 means "not queued".
type Indexed interface {
	HeapIndex() int
	SetHeapIndex(i int)
}

// Queueable is the constraint for queue items.
type Queueable interface {
	comparable
	Indexed
}

// OpenSet is the discovered-but-unfinalized frontier of a search.
type OpenSet[T Queueable] interface {
	Add(item T) error
	RemoveMin() (T, error)
	Contains(item T) bool
	// Update restores order after item's key decreased in place.
	Update(item T) error
	Len() int
	// Items returns the queued items in no particular order.
	Items() []T
	Clear()
}

// PriorityQueue is an indexable binary min-heap ordered by less.
// less must be a strict total order for deterministic results.
type PriorityQueue[T Queueable] struct {
	items queueItems[T]
}

var _ OpenSet[*node] = (*PriorityQueue[*node])(nil)

func NewPriorityQueue[T Queueable](less func(a, b T) bool) *PriorityQueue[T] {
	return &PriorityQueue[T]{items: queueItems[T]{less: less}}
}

func (queue *PriorityQueue[T]) Len() int { return len(queue.items.list) }

func (queue *PriorityQueue[T]) Add(item T) error {
	if queue.Contains(item) {
		return ErrAlreadyQueued
	}
	heap.Push(&queue.items, item)
	return nil
}

func (queue *PriorityQueue[T]) RemoveMin() (T, error) {
	if len(queue.items.list) == 0 {
		var zero T
		return zero, ErrEmptyQueue
	}
	return heap.Pop(&queue.items).(T), nil
}

// Peek returns the minimum without removing it.
func (queue *PriorityQueue[T]) Peek() (T, bool) {
	if len(queue.items.list) == 0 {
		var zero T
		return zero, false
	}
	return queue.items.list[0], true
}

func (queue *PriorityQueue[T]) Contains(item T) bool {
	i := item.HeapIndex()
	return i >= 0 && i < len(queue.items.list) && queue.items.list[i] == item
}

func (queue *PriorityQueue[T]) Update(item T) error {
	if !queue.Contains(item) {
		return ErrNotQueued
	}
	heap.Fix(&queue.items, item.HeapIndex())
	return nil
}

// Items returns the queued items in heap order.
func (queue *PriorityQueue[T]) Items() []T {
	return append([]T(nil), queue.items.list...)
}

// Clear empties the queue, keeping its backing array.
func (queue *PriorityQueue[T]) Clear() {
	var zero T
	for i, item := range queue.items.list {
		item.SetHeapIndex(-1)
		queue.items.list[i] = zero
	}
	queue.items.list = queue.items.list[:0]
}

// queueItems is the heap.Interface adapter behind PriorityQueue.
type queueItems[T Queueable] struct {
	list []T
	less func(a, b T) bool
}

func (q queueItems[T]) Len() int           { return len(q.list) }
func (q queueItems[T]) Less(i, j int) bool { return q.less(q.list[i], q.list[j]) }
func (q queueItems[T]) Swap(i, j int) {
	q.list[i], q.list[j] = q.list[j], q.list[i]
	q.list[i].SetHeapIndex(i)
	q.list[j].SetHeapIndex(j)
}

func (q *queueItems[T]) Push(x any) {
	item := x.(T)
	item.SetHeapIndex(len(q.list))
	q.list = append(q.list, item)
}

func (q *queueItems[T]) Pop() any {
	old := q.list
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	item.SetHeapIndex(-1)
	q.list = old[:n-1]
	return item
}
