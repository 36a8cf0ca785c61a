package algorithms

import (
	"math"
	"testing"

	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
)

// starGraph is a hub linked to three leaves plus one isolated node.
func starGraph() *graphmodel.Model {
	return graphmodel.FromSnapshot(graphmodel.Snapshot{
		Nodes: []graphmodel.SnapshotNode{
			{ID: "person:hub", Count: 1},
			{ID: "person:x", Count: 9},
			{ID: "person:y", Count: 3},
			{ID: "person:z", Count: 2},
			{ID: "person:alone", Count: 5},
		},
		Edges: []graphmodel.SnapshotEdge{
			{Source: "person:hub", Target: "person:x", Weight: 1},
			{Source: "person:hub", Target: "person:y", Weight: 1},
			{Source: "person:hub", Target: "person:z", Weight: 1},
		},
	}, graphmodel.Options{})
}

// TestPageRank_EmptyGraph tests PageRank on empty graph
func TestPageRank_EmptyGraph(t *testing.T) {
	result := PageRank(graphmodel.New(graphmodel.Options{}), DefaultPageRankOptions())

	if len(result.Scores) != 0 {
		t.Errorf("Expected 0 scores for empty graph, got %d", len(result.Scores))
	}
	if !result.Converged {
		t.Error("Expected convergence for empty graph")
	}
}

// TestPageRank_SingleNode tests PageRank on single node
func TestPageRank_SingleNode(t *testing.T) {
	m := graphmodel.FromSnapshot(graphmodel.Snapshot{
		Nodes: []graphmodel.SnapshotNode{{ID: "event:only"}},
	}, graphmodel.Options{})
	result := PageRank(m, DefaultPageRankOptions())

	if math.Abs(result.GetNodeRank("event:only")-1) > 1e-9 {
		t.Errorf("single node score = %v, want 1", result.GetNodeRank("event:only"))
	}
}

func TestPageRank_Star(t *testing.T) {
	result := PageRank(starGraph(), DefaultPageRankOptions())
	if !result.Converged {
		t.Fatalf("did not converge in %d iterations", result.Iterations)
	}

	sum := 0.0
	for _, s := range result.Scores {
		sum += s
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("scores sum to %v, want 1", sum)
	}

	hub := result.GetNodeRank("person:hub")
	for _, leaf := range []string{"person:x", "person:y", "person:z", "person:alone"} {
		if result.GetNodeRank(leaf) >= hub {
			t.Errorf("%s scored %v, not below the hub's %v", leaf, result.GetNodeRank(leaf), hub)
		}
	}
	if x, y := result.GetNodeRank("person:x"), result.GetNodeRank("person:y"); math.Abs(x-y) > 1e-9 {
		t.Errorf("symmetric leaves differ: %v vs %v", x, y)
	}
}

func TestPageRank_WeightsShiftScore(t *testing.T) {
	m := graphmodel.FromSnapshot(graphmodel.Snapshot{
		Nodes: []graphmodel.SnapshotNode{{ID: "person:a"}, {ID: "person:b"}, {ID: "person:c"}},
		Edges: []graphmodel.SnapshotEdge{
			{Source: "person:a", Target: "person:b", Weight: 9},
			{Source: "person:a", Target: "person:c", Weight: 1},
		},
	}, graphmodel.Options{})

	weighted := PageRank(m, DefaultPageRankOptions())
	if weighted.GetNodeRank("person:b") <= weighted.GetNodeRank("person:c") {
		t.Error("heavier edge should carry more score")
	}

	opts := DefaultPageRankOptions()
	opts.Weighted = false
	plain := PageRank(m, opts)
	if math.Abs(plain.GetNodeRank("person:b")-plain.GetNodeRank("person:c")) > 1e-9 {
		t.Error("unweighted ranks should ignore weights")
	}
}

func TestTopK(t *testing.T) {
	scores := map[string]float64{"a": 0.1, "b": 0.5, "c": 0.5, "d": 0.3}

	top := TopK(scores, 3)
	want := []string{"b", "c", "d"}
	if len(top) != len(want) {
		t.Fatalf("TopK returned %d nodes", len(top))
	}
	for i, id := range want {
		if top[i].NodeID != id {
			t.Errorf("top[%d] = %s, want %s", i, top[i].NodeID, id)
		}
	}

	if got := TopK(scores, 10); len(got) != 4 {
		t.Errorf("TopK beyond size returned %d", len(got))
	}
	if got := TopK(scores, 0); got != nil {
		t.Errorf("TopK(0) = %v", got)
	}
}

func TestImportant(t *testing.T) {
	m := starGraph()

	ids, err := Important(m, RankPageRank, 1)
	if err != nil || len(ids) != 1 || ids[0] != "person:hub" {
		t.Errorf("pagerank top = %v, %v", ids, err)
	}
	ids, err = Important(m, RankCount, 2)
	if err != nil || len(ids) != 2 || ids[0] != "person:x" || ids[1] != "person:alone" {
		t.Errorf("count top = %v, %v", ids, err)
	}
	ids, err = Important(m, RankDegree, 1)
	if err != nil || ids[0] != "person:hub" {
		t.Errorf("degree top = %v, %v", ids, err)
	}
	if _, err := Important(m, "betweenness", 1); err == nil {
		t.Error("unknown ranking should fail")
	}

	deg := DegreeCentrality(m)
	if deg["person:hub"] != 0.75 || deg["person:alone"] != 0 {
		t.Errorf("degree centrality = %v", deg)
	}
}
