package grove

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// savedSlot is one serialized pool slot. Empty slots persist only their
// generation so handle staleness survives a save/load cycle.
type savedSlot struct {
	Generation uint32 `json:"generation"`
	Node       *Node  `json:"node,omitempty"`
}

type savedGraph struct {
	Root  Handle      `json:"root"`
	Slots []savedSlot `json:"slots"`
}

// ErrReservedSlots is returned by Save when a sub-graph is currently taken
// out of the pool. A reserved slot has no node to persist.
var ErrReservedSlots = errors.New("grove: cannot save graph with reserved slots")

// Save writes the graph as JSON. Backing simulation state is never persisted;
// it is rebuilt lazily after a load. Returns ErrReservedSlots while any
// sub-graph is taken out.
func (g *Graph) Save(w io.Writer) error {
	if g.pool.hasReserved() {
		return ErrReservedSlots
	}
	saved := savedGraph{
		Root:  g.root,
		Slots: make([]savedSlot, len(g.pool.slots)),
	}
	for i := range g.pool.slots {
		slot := &g.pool.slots[i]
		saved.Slots[i] = savedSlot{Generation: slot.generation, Node: slot.node}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&saved)
}

// SaveFile writes the graph to a file.
func (g *Graph) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("grove: save graph: %w", err)
	}
	defer f.Close()
	if err := g.Save(f); err != nil {
		return err
	}
	return f.Close()
}

// LoadGraph reads a graph saved with Save. Prefab template graphs are not
// part of the serialized form; reattach them and run Resolve before using
// prefab-dependent features.
func LoadGraph(r io.Reader) (*Graph, error) {
	g := &Graph{physics: newPhysicsWorld()}
	if err := g.load(r); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadGraphFile reads a graph from a file.
func LoadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grove: load graph: %w", err)
	}
	defer f.Close()
	return LoadGraph(f)
}

// load fills the pool from serialized form. Panics if the pool already holds
// nodes: merging a saved graph into a live one is never meaningful and always
// a caller bug.
func (g *Graph) load(r io.Reader) error {
	if g.pool.Capacity() != 0 {
		panic("grove: graph pool must be empty on load")
	}
	var saved savedGraph
	if err := json.NewDecoder(r).Decode(&saved); err != nil {
		return fmt.Errorf("grove: decode graph: %w", err)
	}

	g.pool.slots = make([]poolSlot, len(saved.Slots))
	for i, s := range saved.Slots {
		slot := &g.pool.slots[i]
		slot.generation = s.Generation
		if s.Node == nil {
			slot.state = slotEmpty
			g.pool.free = append(g.pool.free, uint32(i))
			continue
		}
		slot.state = slotOccupied
		slot.node = s.Node
		g.pool.alive++
		repairLoadedNode(s.Node)
	}
	g.root = saved.Root
	if !g.pool.IsValid(g.root) {
		return fmt.Errorf("grove: decode graph: root handle %v is not a live node", saved.Root)
	}
	g.UpdateHierarchicalData()
	return nil
}

// repairLoadedNode re-establishes the unexported runtime state JSON does not
// carry.
func repairLoadedNode(node *Node) {
	node.Local.dirty = true
	node.globalTransform = identityAffine
	node.globalVisibility = true
	if node.Camera != nil && node.Camera.visibilityCache == nil {
		node.Camera.visibilityCache = map[Handle]struct{}{}
	}
}
