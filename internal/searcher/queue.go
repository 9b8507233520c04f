package searcher

import "slices"

// Candidate is a scored candidate.
type Candidate struct {
	ID       uint64  // ID is an opaque identifier chosen by the caller.
	Distance float32 // Distance is the priority; smaller is better.
}

// worse reports whether a ranks behind b.
// Equal distances are ordered by ID so results are deterministic.
func worse(a, b Candidate) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.ID > b.ID
}

// TopK keeps the k best (smallest distance) candidates seen so far.
// It is a max-heap on distance: the root is the worst retained candidate.
// It does NOT implement container/heap to avoid interface overhead.
type TopK struct {
	k     int
	items []Candidate
}

// NewTopK creates a queue retaining at most k candidates.
func NewTopK(k int) *TopK {
	return &TopK{
		k:     k,
		items: make([]Candidate, 0, k),
	}
}

// Len returns the number of retained candidates.
func (q *TopK) Len() int {
	return len(q.items)
}

// Worst returns the worst retained candidate.
func (q *TopK) Worst() (Candidate, bool) {
	if len(q.items) == 0 {
		return Candidate{}, false
	}
	return q.items[0], true
}

// Push offers a candidate. If the queue is full and c is not better than the
// worst retained candidate, c is dropped. Reports whether c was retained.
func (q *TopK) Push(c Candidate) bool {
	if q.k <= 0 {
		return false
	}
	if len(q.items) < q.k {
		q.items = append(q.items, c)
		q.siftUp(len(q.items) - 1)
		return true
	}
	if !worse(q.items[0], c) {
		return false
	}
	q.items[0] = c
	q.siftDown(0)
	return true
}

// Drain returns the retained candidates best-first and resets the queue.
func (q *TopK) Drain() []Candidate {
	out := q.items
	q.items = make([]Candidate, 0, q.k)
	slices.SortFunc(out, func(a, b Candidate) int {
		switch {
		case worse(b, a):
			return -1
		case worse(a, b):
			return 1
		default:
			return 0
		}
	})
	return out
}

func (q *TopK) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !worse(q.items[i], q.items[parent]) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && worse(q.items[right], q.items[left]) {
			child = right
		}
		if !worse(q.items[child], q.items[i]) {
			break
		}
		q.items[i], q.items[child] = q.items[child], q.items[i]
		i = child
	}
}
