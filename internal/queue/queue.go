// Package queue provides the bounded heap used to collect top-k candidates.
package queue

// Item is a candidate produced by a scan.
type Item struct {
	Offset   uint32  // Internal position of the candidate.
	Distance float32 // Score under the active metric.
}

// TopK keeps the k best items seen so far.
//
// Ranking is by Distance (ascending, or descending when higherIsBetter is set);
// ties are broken by ascending Offset so results are deterministic for a fixed
// insertion order. Internally it is a heap whose root is the worst kept item.
type TopK struct {
	k              int
	higherIsBetter bool
	items          []Item
}

// NewTopK creates a collector for the k best items.
func NewTopK(k int, higherIsBetter bool) *TopK {
	if k < 0 {
		k = 0
	}
	return &TopK{
		k:              k,
		higherIsBetter: higherIsBetter,
		items:          make([]Item, 0, k),
	}
}

// Reset empties the collector and changes its bound, reusing the backing slice.
func (q *TopK) Reset(k int) {
	if k < 0 {
		k = 0
	}
	q.k = k
	q.items = q.items[:0]
}

// Len returns the number of kept items.
func (q *TopK) Len() int { return len(q.items) }

// before reports whether a ranks strictly before b.
func (q *TopK) before(a, b Item) bool {
	if a.Distance != b.Distance {
		if q.higherIsBetter {
			return a.Distance > b.Distance
		}
		return a.Distance < b.Distance
	}
	return a.Offset < b.Offset
}

// Push offers an item. It is kept if fewer than k items are held or if it
// ranks before the current worst.
func (q *TopK) Push(item Item) {
	if q.k == 0 {
		return
	}
	if len(q.items) < q.k {
		q.items = append(q.items, item)
		q.siftUp(len(q.items) - 1)
		return
	}
	if q.before(item, q.items[0]) {
		q.items[0] = item
		q.siftDown(0)
	}
}

// Worst returns the lowest-ranked kept item.
func (q *TopK) Worst() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Drain removes all items and returns them best first.
func (q *TopK) Drain() []Item {
	n := len(q.items)
	out := make([]Item, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = q.pop()
	}
	return out
}

func (q *TopK) pop() Item {
	n := len(q.items)
	root := q.items[0]
	last := q.items[n-1]
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}
	return root
}

// worse is the heap order: the root ranks after every other item.
func (q *TopK) worse(i, j int) bool {
	return q.before(q.items[j], q.items[i])
}

func (q *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.worse(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *TopK) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		worst := l
		r := l + 1
		if r < n && q.worse(r, l) {
			worst = r
		}
		if !q.worse(worst, i) {
			return
		}
		q.items[i], q.items[worst] = q.items[worst], q.items[i]
		i = worst
	}
}
