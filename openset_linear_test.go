package astar

// linearSet is the list-scan open set: O(n) selection, kept only as an
// oracle for the heap.
type linearSet[T Queueable] struct {
	items []T
	less  func(a, b T) bool
}

var _ OpenSet[*node] = (*linearSet[*node])(nil)

func newLinearSet(less func(a, b *node) bool) OpenSet[*node] {
	return &linearSet[*node]{less: less}
}

func (s *linearSet[T]) Len() int { return len(s.items) }

func (s *linearSet[T]) Add(item T) error {
	if s.Contains(item) {
		return ErrAlreadyQueued
	}
	item.SetHeapIndex(len(s.items))
	s.items = append(s.items, item)
	return nil
}

func (s *linearSet[T]) RemoveMin() (T, error) {
	if len(s.items) == 0 {
		var zero T
		return zero, ErrEmptyQueue
	}
	best := 0
	for i := 1; i < len(s.items); i++ {
		if s.less(s.items[i], s.items[best]) {
			best = i
		}
	}
	item := s.items[best]
	s.items = append(s.items[:best], s.items[best+1:]...)
	for i := best; i < len(s.items); i++ {
		s.items[i].SetHeapIndex(i)
	}
	item.SetHeapIndex(-1)
	return item, nil
}

func (s *linearSet[T]) Contains(item T) bool {
	i := item.HeapIndex()
	return i >= 0 && i < len(s.items) && s.items[i] == item
}

func (s *linearSet[T]) Update(item T) error {
	if !s.Contains(item) {
		return ErrNotQueued
	}
	return nil
}

func (s *linearSet[T]) Items() []T { return append([]T(nil), s.items...) }

func (s *linearSet[T]) Clear() {
	for _, item := range s.items {
		item.SetHeapIndex(-1)
	}
	s.items = s.items[:0]
}
