package graphmodel

// Snapshot is the graph handed over by the data layer. Its JSON shape is the
// contract of the network build scripts.
type Snapshot struct {
	Nodes  []SnapshotNode `json:"nodes"`
	Edges  []SnapshotEdge `json:"edges"`
	Bounds *GeoBounds     `json:"bounds,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// SnapshotNode is one node record as produced by the data layer.
type SnapshotNode struct {
	ID       string  `json:"id" validate:"required,typedid"`
	Label    string  `json:"label"`
	Type     string  `json:"type"`
	Count    float64 `json:"count" validate:"gte=0"`
	Degree   *int    `json:"degree,omitempty" validate:"omitempty,gte=0"`
	Strength float64 `json:"strength,omitempty" validate:"gte=0"`
	// Coordinates is [lat, lng] for geocoded locations.
	Coordinates []float64 `json:"coordinates,omitempty" validate:"omitempty,len=2"`
}

// SnapshotEdge is one co-occurrence record.
type SnapshotEdge struct {
	Source     string   `json:"source" validate:"required"`
	Target     string   `json:"target" validate:"required"`
	Type       string   `json:"type,omitempty"`
	Weight     float64  `json:"weight" validate:"gte=0"`
	ArticleIDs []string `json:"articleIds,omitempty"`
}

// GeoBounds is the geographic extent of a spatial snapshot.
type GeoBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Diagnostics counts the input records Load recovered from. Nothing in here
// is fatal; the counts exist so hosts can log or display them.
type Diagnostics struct {
	InvalidNodes       int `json:"invalidNodes"`
	DuplicateNodes     int `json:"duplicateNodes"`
	InvalidEdges       int `json:"invalidEdges"`
	DanglingEdges      int `json:"danglingEdges"`
	SelfLoops          int `json:"selfLoops"`
	MergedEdges        int `json:"mergedEdges"`
	BelowMinWeight     int `json:"belowMinWeight"`
	InvalidCoordinates int `json:"invalidCoordinates"`
	PreservedPositions int `json:"preservedPositions"`
}

// Dropped is the number of records that did not make it into the model.
// Merged edges are not dropped: their weight lives on in the first edge.
func (d Diagnostics) Dropped() int {
	return d.InvalidNodes + d.DuplicateNodes + d.InvalidEdges + d.DanglingEdges +
		d.SelfLoops + d.BelowMinWeight
}
