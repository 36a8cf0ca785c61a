// Package algorithms ranks graph nodes by importance. The renderer's
// always-labelled set is the top of this ranking.
package algorithms

import (
	"container/heap"
	"math"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// PageRankOptions configures PageRank algorithm
type PageRankOptions struct {
	DampingFactor float64 // Usually 0.85
	MaxIterations int
	Tolerance     float64 // Convergence threshold
	// Weighted spreads a node's score over its edges by weight instead of
	// evenly.
	Weighted bool
}

// DefaultPageRankOptions returns default PageRank configuration
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
		Weighted:      true,
	}
}

// PageRankResult contains PageRank scores for all nodes
type PageRankResult struct {
	Scores     map[string]float64
	Iterations int
	Converged  bool
}

// RankedNode represents a node with its rank
type RankedNode struct {
	NodeID string
	Score  float64
}

// PageRank computes PageRank over the undirected co-occurrence graph. Each
// edge carries score both ways. Isolated nodes spread their score evenly
// over the graph, so scores always sum to 1.
func PageRank(m *graphmodel.Model, opts PageRankOptions) *PageRankResult {
	nodes := m.Nodes()
	n := len(nodes)
	if n == 0 {
		return &PageRankResult{Scores: make(map[string]float64), Converged: true}
	}

	index := make(map[string]int, n)
	for i, node := range nodes {
		index[node.ID] = i
	}
	type link struct {
		to     int
		weight float64
	}
	links := make([][]link, n)
	out := make([]float64, n)
	for _, e := range m.Edges() {
		a, b := index[e.Source], index[e.Target]
		w := 1.0
		if opts.Weighted {
			w = e.Weight
		}
		if !(w > 0) {
			continue
		}
		links[a] = append(links[a], link{b, w})
		links[b] = append(links[b], link{a, w})
		out[a] += w
		out[b] += w
	}

	scores := make([]float64, n)
	next := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}

	converged := false
	iterations := 0
	for iterations < opts.MaxIterations {
		iterations++

		dangling := 0.0
		for i := range scores {
			if out[i] == 0 {
				dangling += scores[i]
			}
		}
		base := (1-opts.DampingFactor)/float64(n) + opts.DampingFactor*dangling/float64(n)
		for i := range next {
			next[i] = base
		}
		for i, ls := range links {
			if out[i] == 0 {
				continue
			}
			share := opts.DampingFactor * scores[i] / out[i]
			for _, l := range ls {
				next[l.to] += share * l.weight
			}
		}

		maxDiff := 0.0
		for i := range scores {
			maxDiff = math.Max(maxDiff, math.Abs(next[i]-scores[i]))
		}
		scores, next = next, scores
		if maxDiff < opts.Tolerance {
			converged = true
			break
		}
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	result := &PageRankResult{
		Scores:     make(map[string]float64, n),
		Iterations: iterations,
		Converged:  converged,
	}
	for i, node := range nodes {
		if sum > 0 {
			result.Scores[node.ID] = scores[i] / sum
		}
	}
	return result
}

// rankedNodeHeap implements a min-heap for RankedNode by score.
// We use a min-heap to efficiently find top N elements:
// - Keep at most N elements in the heap
// - The minimum element is at the root
// - When adding a new element, if heap is full and new > min, pop min and push new
// Time complexity: O(n log k) where n is total nodes and k is desired top count
type rankedNodeHeap []RankedNode

func (h rankedNodeHeap) Len() int           { return len(h) }
func (h rankedNodeHeap) Less(i, j int) bool { return less(h[i], h[j]) }
func (h rankedNodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *rankedNodeHeap) Push(x any) {
	*h = append(*h, x.(RankedNode))
}

func (h *rankedNodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// less orders by score, breaking ties by the larger id so that among equal
// scores the lexically smaller id ranks higher.
func less(a, b RankedNode) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.NodeID > b.NodeID
}

// TopK returns the k highest scores, best first.
func TopK(scores map[string]float64, k int) []RankedNode {
	if k <= 0 {
		return nil
	}

	h := make(rankedNodeHeap, 0, k)
	heap.Init(&h)

	for id, score := range scores {
		rn := RankedNode{NodeID: id, Score: score}
		if h.Len() < k {
			heap.Push(&h, rn)
		} else if less(h[0], rn) {
			heap.Pop(&h)
			heap.Push(&h, rn)
		}
	}

	// Extract elements from heap (will be in ascending order)
	result := make([]RankedNode, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(RankedNode)
	}
	return result
}

// GetTopNodesByPageRank returns top N nodes by PageRank score
func (pr *PageRankResult) GetTopNodesByPageRank(n int) []RankedNode {
	return TopK(pr.Scores, n)
}

// GetNodeRank returns the PageRank score for a specific node
func (pr *PageRankResult) GetNodeRank(nodeID string) float64 {
	return pr.Scores[nodeID]
}
