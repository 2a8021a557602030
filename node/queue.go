package node

import (
	"container/heap"

	"github.com/kfichter/plasma-core/plasma"
)

// QueueEntry orders pending exits: earliest ExitableAt first, lower UTXO
// position breaking ties. The tuple order is total, so draining is
// deterministic regardless of insertion order.
type QueueEntry struct {
	ExitableAt uint64
	Position   plasma.Position
}

func (a QueueEntry) less(b QueueEntry) bool {
	if a.ExitableAt != b.ExitableAt {
		return a.ExitableAt < b.ExitableAt
	}
	return a.Position < b.Position
}

type entryHeap []QueueEntry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].less(h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(QueueEntry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// ExitQueue is the min-priority structure over pending exits. At most one
// entry per UTXO position may be queued at a time.
type ExitQueue struct {
	h       entryHeap
	present map[plasma.Position]struct{}
}

func NewExitQueue() *ExitQueue {
	return &ExitQueue{present: make(map[plasma.Position]struct{})}
}

func (q *ExitQueue) Len() int { return len(q.h) }

func (q *ExitQueue) Insert(e QueueEntry) error {
	if _, ok := q.present[e.Position]; ok {
		return plasma.Errf(plasma.QUEUE_ERR_DUPLICATE, "position %d already queued", e.Position)
	}
	q.present[e.Position] = struct{}{}
	heap.Push(&q.h, e)
	return nil
}

func (q *ExitQueue) PeekMin() (QueueEntry, bool) {
	if len(q.h) == 0 {
		return QueueEntry{}, false
	}
	return q.h[0], true
}

func (q *ExitQueue) PopMin() (QueueEntry, error) {
	if len(q.h) == 0 {
		return QueueEntry{}, plasma.Errf(plasma.QUEUE_ERR_EMPTY, "pop on empty queue")
	}
	e := heap.Pop(&q.h).(QueueEntry)
	delete(q.present, e.Position)
	return e, nil
}

// Remove drops the entry for position if queued. Absent positions are a
// no-op: a challenge arriving after finalization is reported by the state
// machine, not the queue.
func (q *ExitQueue) Remove(pos plasma.Position) {
	if _, ok := q.present[pos]; !ok {
		return
	}
	for i := range q.h {
		if q.h[i].Position == pos {
			heap.Remove(&q.h, i)
			break
		}
	}
	delete(q.present, pos)
}
