// Package graph builds the node/edge view of an employer's ownership
// hierarchy. It works on an in-memory Index and never touches storage, so it
// is safe to call concurrently for different roots.
package graph

import (
	"slices"

	"github.com/orgodyssey/odyssey/internal/core/domain"
)

// Index holds employers by id together with the relation as two adjacency
// lists: children-by-id and parents-by-id.
type Index struct {
	employers map[int64]*domain.Employer
	children  map[int64][]int64
	parents   map[int64][]int64
}

// NewIndex builds an Index from an employer list and an edge list. Edges that
// reference unknown employers are dropped; repeated edges are collapsed.
func NewIndex(employers []*domain.Employer, relations []domain.Relation) *Index {
	idx := &Index{
		employers: make(map[int64]*domain.Employer, len(employers)),
		children:  make(map[int64][]int64),
		parents:   make(map[int64][]int64),
	}
	for _, e := range employers {
		if e != nil {
			idx.employers[e.ID] = e
		}
	}

	seen := make(map[domain.Relation]struct{}, len(relations))
	for _, r := range relations {
		if _, ok := seen[r]; ok {
			continue
		}
		if idx.employers[r.ParentID] == nil || idx.employers[r.ChildID] == nil {
			continue
		}
		seen[r] = struct{}{}
		idx.children[r.ParentID] = append(idx.children[r.ParentID], r.ChildID)
		idx.parents[r.ChildID] = append(idx.parents[r.ChildID], r.ParentID)
	}

	for id := range idx.children {
		slices.Sort(idx.children[id])
	}
	for id := range idx.parents {
		slices.Sort(idx.parents[id])
	}
	return idx
}

// Employer returns the indexed employer with the given id.
func (idx *Index) Employer(id int64) (*domain.Employer, bool) {
	e, ok := idx.employers[id]
	return e, ok
}

// Children returns the ids of the direct children of id in ascending order.
func (idx *Index) Children(id int64) []int64 {
	return idx.children[id]
}

// Parents returns the ids of the direct parents of id in ascending order.
func (idx *Index) Parents(id int64) []int64 {
	return idx.parents[id]
}

// Subgraph is the connected component around a root employer.
type Subgraph struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// BuildSubgraph walks child and parent edges depth-first from root. Every
// reachable employer is emitted once and every directed edge once, even when
// the relation data contains cycles. The root is emitted first and carries
// hints when they are given.
func BuildSubgraph(root *domain.Employer, idx *Index, hints *RootHints) *Subgraph {
	g := &Subgraph{Nodes: []NodeView{}, Edges: []EdgeView{}}
	if root == nil {
		return g
	}
	if idx == nil {
		idx = NewIndex([]*domain.Employer{root}, nil)
	}

	w := &walker{
		idx:     idx,
		out:     g,
		visited: make(map[int64]struct{}),
		emitted: make(map[domain.Relation]struct{}),
	}
	w.visit(root)

	if hints != nil {
		g.Nodes[0].Fill = hints.Fill
		g.Nodes[0].Shape = hints.Shape
	}
	return g
}

type walker struct {
	idx     *Index
	out     *Subgraph
	visited map[int64]struct{}
	emitted map[domain.Relation]struct{}
}

func (w *walker) visit(e *domain.Employer) {
	if _, ok := w.visited[e.ID]; ok {
		return
	}
	w.visited[e.ID] = struct{}{}
	w.out.Nodes = append(w.out.Nodes, NewNodeView(e))

	for _, id := range w.idx.children[e.ID] {
		child, ok := w.idx.employers[id]
		if !ok {
			continue
		}
		w.edge(e, child)
		w.visit(child)
	}

	for _, id := range w.idx.parents[e.ID] {
		parent, ok := w.idx.employers[id]
		if !ok {
			continue
		}
		w.edge(parent, e)
		w.visit(parent)
	}
}

func (w *walker) edge(parent, child *domain.Employer) {
	key := domain.Relation{ParentID: parent.ID, ChildID: child.ID}
	if _, ok := w.emitted[key]; ok {
		return
	}
	w.emitted[key] = struct{}{}
	w.out.Edges = append(w.out.Edges, EdgeView{
		From:     parent.ID,
		To:       child.ID,
		FromName: parent.Name,
		ToName:   child.Name,
	})
}
