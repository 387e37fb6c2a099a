package grove

// subGraphNode pairs a taken-out node with the ticket reserving its slot.
type subGraphNode struct {
	ticket Ticket
	node   *Node
}

// SubGraph is a subtree taken out of a graph with its slots kept reserved, so
// putting it back restores every previously issued handle. Produced by
// TakeReserveSubGraph and consumed by exactly one of PutSubGraphBack or
// ForgetSubGraph.
type SubGraph struct {
	root        subGraphNode
	descendants []subGraphNode
}

// Root returns the taken-out root node for inspection while detached.
func (s *SubGraph) Root() *Node {
	return s.root.node
}

// TakeReserve detaches a single node from the hierarchy and takes it out of
// the pool, keeping its slot reserved. The node's backing simulation entities
// are destroyed; they are rebuilt lazily after PutBack.
func (g *Graph) TakeReserve(handle Handle) (Ticket, *Node) {
	g.unlinkInternal(handle)
	node := g.pool.MustGet(handle)
	g.removeNative(handle, node)
	return g.pool.TakeReserve(handle)
}

// PutBack restores a taken-out node into its reserved slot and links it under
// the root.
func (g *Graph) PutBack(ticket Ticket, node *Node) Handle {
	handle := g.pool.PutBack(ticket, node)
	g.LinkNodes(handle, g.root)
	return handle
}

// Forget releases a taken-out node's slot for reuse, permanently invalidating
// every handle that pointed at it.
func (g *Graph) Forget(ticket Ticket) {
	g.pool.Forget(ticket)
}

// TakeReserveSubGraph takes the whole subtree rooted at handle out of the
// graph, descendants first, keeping all slots reserved. Parent/child links
// inside the subtree stay intact, so PutSubGraphBack restores the exact
// structure.
func (g *Graph) TakeReserveSubGraph(handle Handle) SubGraph {
	var descendants []subGraphNode
	stack := append([]Handle(nil), g.pool.MustGet(handle).Children...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, g.pool.MustGet(h).Children...)
		node := g.pool.MustGet(h)
		g.removeNative(h, node)
		ticket, taken := g.pool.TakeReserve(h)
		descendants = append(descendants, subGraphNode{ticket: ticket, node: taken})
	}
	ticket, root := g.TakeReserve(handle)
	return SubGraph{
		root:        subGraphNode{ticket: ticket, node: root},
		descendants: descendants,
	}
}

// PutSubGraphBack restores a taken-out subtree. Every handle issued before
// the take is valid again. The subtree root ends up linked under the graph
// root.
func (g *Graph) PutSubGraphBack(sub SubGraph) Handle {
	for _, d := range sub.descendants {
		g.pool.PutBack(d.ticket, d.node)
	}
	handle := g.pool.PutBack(sub.root.ticket, sub.root.node)
	g.LinkNodes(handle, g.root)
	return handle
}

// ForgetSubGraph releases every slot of a taken-out subtree for reuse.
func (g *Graph) ForgetSubGraph(sub SubGraph) {
	for _, d := range sub.descendants {
		g.pool.Forget(d.ticket)
	}
	g.pool.Forget(sub.root.ticket)
}
