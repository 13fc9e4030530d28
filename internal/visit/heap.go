package visit

import "container/heap"

// candidateHeap is a max-heap of Neighbour ordered by Distance, used by KNN
// to keep the k closest candidates seen so far: the root is always the
// worst (farthest) of the current top-k, so a new, closer candidate displaces
// it in O(log k) instead of needing a full re-sort, the same role
// internal/util's MaxHeap plays for top-k vector search in the teacher
// lineage.
type candidateHeap []Neighbour

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	return h[i].Distance.Compare(h[j].Distance) > 0
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(Neighbour))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h *candidateHeap) peek() Neighbour {
	return (*h)[0]
}

func (h *candidateHeap) pushCandidate(n Neighbour) {
	heap.Push(h, n)
}

func (h *candidateHeap) popWorst() Neighbour {
	return heap.Pop(h).(Neighbour)
}
