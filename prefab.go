package grove

import "fmt"

// PrefabState tracks the load state of a prefab's template graph.
type PrefabState uint8

const (
	// PrefabPending means the template graph has not finished loading.
	// Resolving a graph that references a pending prefab is a hard error.
	PrefabPending PrefabState = iota
	PrefabOk
	PrefabFailed
)

// NodeMapping selects how instance nodes are matched back to their template
// nodes during resolve.
type NodeMapping uint8

const (
	// MapByHandle matches through the recorded original handle. The default;
	// robust against renames.
	MapByHandle NodeMapping = iota
	// MapByName matches by node name, walking the same ancestry path.
	// Survives template graphs that were rebuilt from scratch.
	MapByName
)

// Prefab is a reference to an immutable template hierarchy that nodes were
// instantiated from. The template graph itself is shared between all
// instances and must never be mutated through this reference.
type Prefab struct {
	Path    string      `json:"path"`
	State   PrefabState `json:"state"`
	Mapping NodeMapping `json:"mapping"`

	// Graph is the loaded template. Not serialized; reattached after a load
	// by the prefab loader.
	Graph *Graph `json:"-"`
}

// NewPrefab wraps an already loaded template graph.
func NewPrefab(path string, graph *Graph) *Prefab {
	return &Prefab{Path: path, State: PrefabOk, Graph: graph}
}

// Instantiate deep-copies the prefab's hierarchy into dest and tags every
// copied node with this prefab and the template handle it came from, so a
// later Resolve can reconcile the instance against the template. Returns the
// handle of the instance root.
func (p *Prefab) Instantiate(dest *Graph) Handle {
	if p.State != PrefabOk {
		panic(fmt.Sprintf("grove: cannot instantiate prefab %s in state %v", p.Path, p.State))
	}
	src := p.Graph
	root, oldToNew := src.CopyNode(src.root, dest, nil)
	for orig, inst := range oldToNew {
		node := dest.pool.MustGet(inst)
		node.Prefab = p
		node.OriginalHandle = orig
	}
	rootNode := dest.pool.MustGet(root)
	rootNode.IsPrefabInstanceRoot = true
	rootNode.Name = prefabInstanceName(p.Path)
	return root
}

func prefabInstanceName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
