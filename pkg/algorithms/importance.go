package algorithms

import (
	"fmt"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// Ranking selects how node importance is measured.
type Ranking string

const (
	RankPageRank Ranking = "pagerank"
	RankDegree   Ranking = "degree"
	RankCount    Ranking = "count"
)

// DegreeCentrality computes degree centrality for all nodes: distinct
// neighbors over the n-1 possible ones.
func DegreeCentrality(m *graphmodel.Model) map[string]float64 {
	nodes := m.Nodes()
	degree := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		if len(nodes) > 1 {
			degree[n.ID] = float64(m.LinkDegree(n.ID)) / float64(len(nodes)-1)
		} else {
			degree[n.ID] = 0
		}
	}
	return degree
}

// Scores measures every node with the given ranking.
func Scores(m *graphmodel.Model, r Ranking) (map[string]float64, error) {
	switch r {
	case RankPageRank, "":
		return PageRank(m, DefaultPageRankOptions()).Scores, nil
	case RankDegree:
		return DegreeCentrality(m), nil
	case RankCount:
		out := make(map[string]float64, m.Len())
		for _, n := range m.Nodes() {
			out[n.ID] = n.Count
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown ranking %q", r)
	}
}

// Important returns the ids of the k most important nodes, best first.
func Important(m *graphmodel.Model, r Ranking, k int) ([]string, error) {
	scores, err := Scores(m, r)
	if err != nil {
		return nil, err
	}
	top := TopK(scores, k)
	ids := make([]string, len(top))
	for i, rn := range top {
		ids[i] = rn.NodeID
	}
	return ids, nil
}
