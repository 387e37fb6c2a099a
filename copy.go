package grove

// rawCopy deep-clones a node. Hierarchy links are carried over verbatim (the
// caller decides whether to keep or clear them), backing simulation state is
// never copied: the clone starts with no native entities and no pending
// changes, and gets fresh ones lazily.
func rawCopy(src *Node) *Node {
	n := *src

	n.Children = append([]Handle(nil), src.Children...)
	n.Local.dirty = true
	if src.Lifetime != nil {
		lifetime := *src.Lifetime
		n.Lifetime = &lifetime
	}
	n.Properties = append([]Property(nil), src.Properties...)
	if src.LODGroup != nil {
		group := &LODGroup{Levels: make([]LODLevel, len(src.LODGroup.Levels))}
		for i, level := range src.LODGroup.Levels {
			group.Levels[i] = LODLevel{
				Begin:   level.Begin,
				End:     level.End,
				Objects: append([]Handle(nil), level.Objects...),
			}
		}
		n.LODGroup = group
	}

	if src.Sprite != nil {
		sprite := *src.Sprite
		n.Sprite = &sprite
	}
	if src.Mesh != nil {
		mesh := &Mesh{Surfaces: make([]*Surface, len(src.Mesh.Surfaces))}
		for i, s := range src.Mesh.Surfaces {
			mesh.Surfaces[i] = &Surface{
				Vertices: append([]Vertex(nil), s.Vertices...),
				Indices:  append([]uint16(nil), s.Indices...),
				Bones:    append([]Handle(nil), s.Bones...),
			}
		}
		n.Mesh = mesh
	}
	if src.Camera != nil {
		camera := *src.Camera
		camera.visibilityCache = map[Handle]struct{}{}
		camera.scrollTween = nil
		if src.Camera.Backdrop != nil {
			backdrop := *src.Camera.Backdrop
			backdrop.built = false
			camera.Backdrop = &backdrop
		}
		n.Camera = &camera
	}
	if src.Light != nil {
		light := *src.Light
		n.Light = &light
	}
	if src.Emitter != nil {
		n.Emitter = newParticleEmitter(src.Emitter.Config)
	}
	if src.Tilemap != nil {
		tilemap := *src.Tilemap
		tilemap.Cells = append([]uint16(nil), src.Tilemap.Cells...)
		tilemap.Heights = append([]float64(nil), src.Tilemap.Heights...)
		if src.Tilemap.Animations != nil {
			tilemap.Animations = make(map[uint16]*TileAnimation, len(src.Tilemap.Animations))
			for id, anim := range src.Tilemap.Animations {
				a := &TileAnimation{Frames: append([]uint16(nil), anim.Frames...), FrameTime: anim.FrameTime}
				tilemap.Animations[id] = a
			}
		}
		n.Tilemap = &tilemap
	}
	if src.Body != nil {
		body := *src.Body
		body.native = nil
		body.Changes = 0
		body.TransformModified = false
		n.Body = &body
	}
	if src.Collider != nil {
		collider := *src.Collider
		collider.native = nil
		collider.extra = nil
		collider.Changes = 0
		collider.TransformModified = false
		collider.Shape.Points = append([]Vec2(nil), src.Collider.Shape.Points...)
		collider.Shape.Sources = append([]GeometrySource(nil), src.Collider.Shape.Sources...)
		n.Collider = &collider
	}
	if src.Joint != nil {
		joint := *src.Joint
		joint.native = nil
		joint.Changes = 0
		n.Joint = &joint
	}

	return &n
}

// CopySingleNode clones one node without its hierarchy: the copy carries no
// parent, no children, and no skeleton binding (bone handles would point into
// the source hierarchy).
func (g *Graph) CopySingleNode(handle Handle, dest *Graph) Handle {
	n := rawCopy(g.pool.MustGet(handle))
	n.Parent = HandleNone
	n.Children = nil
	if n.Mesh != nil {
		for _, surface := range n.Mesh.Surfaces {
			surface.Bones = nil
		}
	}
	return dest.AddNode(n)
}

// CopyNode deep-copies the subtree rooted at handle into dest, linking the
// copied root under dest's root. filter decides per node whether it (and
// therefore its subtree) is copied; a nil filter copies everything. Handles
// stored inside copied nodes (bones, geometry sources, joint bodies, handle
// properties, LOD objects) are remapped to the copies; references to nodes
// outside the copied set are dropped.
//
// Returns the handle of the copied root and the old-to-new handle map.
func (g *Graph) CopyNode(handle Handle, dest *Graph, filter func(Handle, *Node) bool) (Handle, map[Handle]Handle) {
	oldToNew := map[Handle]Handle{}
	root := g.copyRecursive(handle, dest, filter, oldToNew)
	if root.IsNone() {
		return HandleNone, oldToNew
	}
	dest.LinkNodes(root, dest.root)
	remapHandles(dest, oldToNew)
	return root, oldToNew
}

// CopyNodeInplace deep-copies a subtree inside the same graph.
func (g *Graph) CopyNodeInplace(handle Handle, filter func(Handle, *Node) bool) (Handle, map[Handle]Handle) {
	return g.CopyNode(handle, g, filter)
}

// copyRecursive clones the subtree without linking the copied root anywhere.
func (g *Graph) copyRecursive(handle Handle, dest *Graph, filter func(Handle, *Node) bool, oldToNew map[Handle]Handle) Handle {
	srcNode := g.pool.MustGet(handle)
	if filter != nil && !filter(handle, srcNode) {
		return HandleNone
	}
	n := rawCopy(srcNode)
	n.Parent = HandleNone
	n.Children = nil
	newHandle := dest.pool.Spawn(n)
	oldToNew[handle] = newHandle
	for _, child := range srcNode.Children {
		newChild := g.copyRecursive(child, dest, filter, oldToNew)
		if newChild.IsSome() {
			dest.LinkNodes(newChild, newHandle)
		}
	}
	return newHandle
}

// remapHandles rewrites every handle stored inside the copied nodes through
// the old-to-new map. Unresolved bone, body, and property references become
// HandleNone; unresolved LOD objects and geometry sources are dropped.
func remapHandles(dest *Graph, oldToNew map[Handle]Handle) {
	for _, newHandle := range oldToNew {
		node := dest.pool.MustGet(newHandle)

		if node.Mesh != nil {
			for _, surface := range node.Mesh.Surfaces {
				for i, bone := range surface.Bones {
					surface.Bones[i] = oldToNew[bone]
				}
			}
		}
		if node.Collider != nil {
			sources := node.Collider.Shape.Sources[:0]
			for _, src := range node.Collider.Shape.Sources {
				if mapped, ok := oldToNew[src.Node]; ok {
					sources = append(sources, GeometrySource{Node: mapped})
				}
			}
			node.Collider.Shape.Sources = sources
			node.Collider.Shape.HeightfieldSource.Node = oldToNew[node.Collider.Shape.HeightfieldSource.Node]
		}
		if node.Joint != nil {
			node.Joint.Body1 = oldToNew[node.Joint.Body1]
			node.Joint.Body2 = oldToNew[node.Joint.Body2]
		}
		for i := range node.Properties {
			value := &node.Properties[i].Value
			if value.Kind == PropertyNodeHandle {
				value.NodeHandle = oldToNew[value.NodeHandle]
			}
		}
		if node.LODGroup != nil {
			for li := range node.LODGroup.Levels {
				level := &node.LODGroup.Levels[li]
				objects := level.Objects[:0]
				for _, obj := range level.Objects {
					if mapped, ok := oldToNew[obj]; ok {
						objects = append(objects, mapped)
					}
				}
				level.Objects = objects
			}
		}
	}
}

// Clone returns a deep copy of the whole graph with a fresh physics world.
// Backing simulation entities are rebuilt lazily by the clone's first Update.
func (g *Graph) Clone() *Graph {
	ng := &Graph{physics: newPhysicsWorld()}
	oldToNew := map[Handle]Handle{}
	ng.root = g.copyRecursive(g.root, ng, nil, oldToNew)
	remapHandles(ng, oldToNew)
	return ng
}
