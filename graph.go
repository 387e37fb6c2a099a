package grove

import "fmt"

// Graph is a pool-backed tree of nodes with a single root. The root is
// created with the graph and cannot be removed; every added node ends up a
// descendant of it.
//
// Structural invariants maintained by the mutators: every non-root live node
// has a valid parent, a node appears in its parent's child list exactly once,
// and parent/child links always agree.
type Graph struct {
	physics *PhysicsWorld
	root    Handle
	pool    Pool
	stack   []Handle
}

// NewGraph creates a graph with a fresh root node and physics world.
func NewGraph() *Graph {
	g := &Graph{physics: newPhysicsWorld()}
	root := NewBaseNode("__ROOT__")
	g.root = g.pool.Spawn(root)
	return g
}

// Root returns the handle of the root node.
func (g *Graph) Root() Handle {
	return g.root
}

// Physics returns the graph's physics world.
func (g *Graph) Physics() *PhysicsWorld {
	return g.physics
}

// TryGet returns the node at handle, or (nil, false) for a stale or invalid
// handle.
func (g *Graph) TryGet(handle Handle) (*Node, bool) {
	return g.pool.Get(handle)
}

// Get returns the node at handle, panicking on a stale or invalid handle.
func (g *Graph) Get(handle Handle) *Node {
	return g.pool.MustGet(handle)
}

// IsValidHandle reports whether handle refers to a live node.
func (g *Graph) IsValidHandle(handle Handle) bool {
	return g.pool.IsValid(handle)
}

// GetTwoMut returns two distinct nodes at once. Aliased or invalid handles
// yield an error.
func (g *Graph) GetTwoMut(a, b Handle) (*Node, *Node, error) {
	return g.pool.Get2Mut(a, b)
}

// GetThreeMut returns three distinct nodes at once.
func (g *Graph) GetThreeMut(a, b, c Handle) (*Node, *Node, *Node, error) {
	return g.pool.Get3Mut(a, b, c)
}

// GetFourMut returns four distinct nodes at once.
func (g *Graph) GetFourMut(a, b, c, d Handle) (*Node, *Node, *Node, *Node, error) {
	return g.pool.Get4Mut(a, b, c, d)
}

// Capacity returns the pool capacity; iterate it with HandleFromIndex to
// visit every node linearly.
func (g *Graph) Capacity() uint32 {
	return g.pool.Capacity()
}

// HandleFromIndex builds a handle for the live node at the given pool index,
// or HandleNone.
func (g *Graph) HandleFromIndex(index uint32) Handle {
	return g.pool.HandleFromIndex(index)
}

// NodeCount returns the number of live nodes, including the root.
func (g *Graph) NodeCount() uint32 {
	return g.pool.AliveCount()
}

// AddNode takes ownership of node, attaches it under the root unless it
// already carries a parent assignment, and re-links any children it carries.
// Children handles carried by the node must already be live in this graph.
func (g *Graph) AddNode(node *Node) Handle {
	children := node.Children
	node.Children = nil
	handle := g.pool.Spawn(node)
	if node.Parent.IsNone() {
		g.LinkNodes(handle, g.root)
	} else {
		parent := node.Parent
		node.Parent = HandleNone
		g.LinkNodes(handle, parent)
	}
	for _, child := range children {
		g.LinkNodes(child, handle)
	}
	return handle
}

// LinkNodes detaches child from its current parent and attaches it to parent.
func (g *Graph) LinkNodes(child, parent Handle) {
	if child == parent {
		panic(fmt.Sprintf("grove: cannot link node %v to itself", child))
	}
	g.unlinkInternal(child)
	childNode := g.pool.MustGet(child)
	parentNode := g.pool.MustGet(parent)
	childNode.Parent = parent
	parentNode.Children = append(parentNode.Children, child)
}

// UnlinkNode detaches node from its parent and re-attaches it under the root,
// resetting its local position to the origin.
func (g *Graph) UnlinkNode(handle Handle) {
	g.unlinkInternal(handle)
	g.LinkNodes(handle, g.root)
	g.pool.MustGet(handle).LocalTransform().SetPosition(Vec2{})
}

// unlinkInternal removes the parent/child link without re-attaching. A
// collider's backing shape is bound to the body it was created under, so
// detaching the collider destroys the shape; it is recreated lazily if the
// node is linked under a body again.
func (g *Graph) unlinkInternal(handle Handle) {
	node := g.pool.MustGet(handle)
	if node.Type == NodeTypeCollider {
		g.destroyColliderNative(node.Collider)
	}
	parent := node.Parent
	node.Parent = HandleNone
	if parent.IsNone() {
		return
	}
	parentNode, ok := g.pool.Get(parent)
	if !ok {
		return
	}
	for i, c := range parentNode.Children {
		if c == handle {
			parentNode.Children = append(parentNode.Children[:i], parentNode.Children[i+1:]...)
			break
		}
	}
}

// RemoveNode removes the node and its whole subtree, destroying the backing
// physics entities of every removed node.
func (g *Graph) RemoveNode(handle Handle) {
	g.unlinkInternal(handle)

	g.stack = g.stack[:0]
	g.stack = append(g.stack, handle)
	for len(g.stack) > 0 {
		h := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]
		node := g.pool.Free(h)
		g.removeNative(h, node)
		g.stack = append(g.stack, node.Children...)
	}
}

// removeNative destroys whatever simulation entities the node owns. Body
// teardown is ordered: constraints of referencing joints and shapes of child
// colliders leave the space first, the body itself last. The owning nodes'
// native pointers are cleared along the way, so teardown stays idempotent no
// matter in which order a removed subtree visits its nodes.
func (g *Graph) removeNative(handle Handle, node *Node) {
	switch node.Type {
	case NodeTypeRigidBody:
		if node.Body.native == nil {
			return
		}
		g.detachJointsOf(handle)
		for _, child := range node.Children {
			childNode, ok := g.pool.Get(child)
			if ok && childNode.Type == NodeTypeCollider {
				g.destroyColliderNative(childNode.Collider)
			}
		}
		g.physics.removeBody(node.Body.native)
		node.Body.native = nil
	case NodeTypeCollider:
		g.destroyColliderNative(node.Collider)
	case NodeTypeJoint:
		if node.Joint.native != nil {
			g.physics.removeConstraint(node.Joint.native)
			node.Joint.native = nil
		}
	}
}

// detachJointsOf removes the live constraint of every joint referencing the
// given rigid body node. The joint nodes stay in the graph with no native
// constraint; without the body there is nothing for one to exist on, and the
// sync pass will not rebuild it while a referenced body is gone.
func (g *Graph) detachJointsOf(body Handle) {
	g.pool.ForEach(func(_ Handle, node *Node) {
		if node.Type != NodeTypeJoint || node.Joint.native == nil {
			return
		}
		if node.Joint.Body1 == body || node.Joint.Body2 == body {
			g.physics.removeConstraint(node.Joint.native)
			node.Joint.native = nil
		}
	})
}

// Traverse visits the subtree rooted at from in depth-first order, the node
// itself first.
func (g *Graph) Traverse(from Handle, visit func(Handle, *Node)) {
	stack := []Handle{from}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := g.pool.Get(h)
		if !ok {
			continue
		}
		visit(h, node)
		stack = append(stack, node.Children...)
	}
}

// Find searches the subtree rooted at from for the first node matching cmp,
// in depth-first order.
func (g *Graph) Find(from Handle, cmp func(*Node) bool) Handle {
	node, ok := g.pool.Get(from)
	if !ok {
		return HandleNone
	}
	if cmp(node) {
		return from
	}
	for _, child := range node.Children {
		if found := g.Find(child, cmp); found.IsSome() {
			return found
		}
	}
	return HandleNone
}

// FindByName searches the subtree rooted at from for a node with the given
// name.
func (g *Graph) FindByName(from Handle, name string) Handle {
	return g.Find(from, func(n *Node) bool { return n.Name == name })
}

// FindByNameFromRoot searches the whole graph for a node with the given name.
func (g *Graph) FindByNameFromRoot(name string) Handle {
	return g.FindByName(g.root, name)
}

// FindCopyOf searches the subtree rooted at from for the instance node whose
// OriginalHandle is original.
func (g *Graph) FindCopyOf(from Handle, original Handle) Handle {
	return g.Find(from, func(n *Node) bool { return n.OriginalHandle == original })
}

// findInstanceRoot walks up from handle to the closest ancestor marked as a
// prefab instance root.
func (g *Graph) findInstanceRoot(handle Handle) Handle {
	for h := handle; h.IsSome(); {
		node, ok := g.pool.Get(h)
		if !ok {
			return HandleNone
		}
		if node.IsPrefabInstanceRoot {
			return h
		}
		h = node.Parent
	}
	return HandleNone
}

// UpdateHierarchicalData recomputes the cached global transform and combined
// visibility of every node from the root down. Cheap relative to a physics
// step; called once per Update and safe to call again after manual edits.
func (g *Graph) UpdateHierarchicalData() {
	g.updateHierarchyRecursive(g.root, identityAffine, true)
}

func (g *Graph) updateHierarchyRecursive(handle Handle, parentTransform [6]float64, parentVisible bool) {
	node, ok := g.pool.Get(handle)
	if !ok {
		return
	}
	node.globalTransform = multiplyAffine(parentTransform, node.Local.Matrix())
	node.globalVisibility = parentVisible && node.Visible
	for _, child := range node.Children {
		g.updateHierarchyRecursive(child, node.globalTransform, node.globalVisibility)
	}
}

// IsometricGlobalTransform returns the node's world transform with scale,
// pivots, and offsets stripped at every level of the hierarchy. This is the
// frame the physics simulation works in.
func (g *Graph) IsometricGlobalTransform(handle Handle) [6]float64 {
	node, ok := g.pool.Get(handle)
	if !ok {
		return identityAffine
	}
	if node.Parent.IsNone() {
		return node.Local.IsometricMatrix()
	}
	return multiplyAffine(g.IsometricGlobalTransform(node.Parent), node.Local.IsometricMatrix())
}

// Update runs one frame: pushes accumulated node changes into the physics
// simulation, steps it, refreshes hierarchical data, then runs per-node
// updates including reading simulated poses back into rigid body nodes.
func (g *Graph) Update(frameSize Vec2, dt float64) {
	g.syncNativePhysics()
	g.physics.Step(dt)
	g.UpdateHierarchicalData()

	for i := uint32(0); i < g.pool.Capacity(); i++ {
		handle := g.pool.HandleFromIndex(i)
		if handle.IsNone() {
			continue
		}
		node := g.pool.MustGet(handle)

		if node.Lifetime != nil {
			*node.Lifetime -= dt
			if *node.Lifetime <= 0 {
				g.RemoveNode(handle)
				continue
			}
		}

		switch node.Type {
		case NodeTypeCamera:
			node.Camera.update(g, handle, frameSize, dt)
		case NodeTypeParticleEmitter:
			node.Emitter.update(node, dt)
		case NodeTypeTilemap:
			node.Tilemap.update(dt)
		case NodeTypeMesh:
			node.Mesh.update(g)
		case NodeTypeRigidBody:
			g.syncRigidBodyBack(handle, node)
		}
	}
}
