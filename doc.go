// Package grove is a generation-safe scene graph with built-in 2D physics
// synchronization for [Ebitengine] games.
//
// Grove provides the node hierarchy, transform propagation, prefab
// instancing, and the bidirectional bridge to a rigid body simulation
// (Chipmunk2D via github.com/jakecoffman/cp) that a physics-driven game
// needs, without owning the render loop.
//
// # Scene graph
//
// Every element is a [Node] stored in a slot pool and addressed by a
// [Handle]. Handles stay valid across structural edits; a freed slot bumps
// its generation, so stale handles are detected instead of silently hitting
// a reused node.
//
// Create nodes with typed constructors ([NewBaseNode], [NewSpriteNode],
// [NewCameraNode], [NewRigidBodyNode], [NewColliderNode], [NewJointNode] and
// others) and add them to a [Graph]:
//
//	g := grove.NewGraph()
//	body := g.AddNode(grove.NewRigidBodyNode("crate", grove.BodyDynamic))
//	collider := g.AddNode(grove.NewColliderNode("crate-box", grove.BoxShape(grove.Vec2{X: 16, Y: 16})))
//	g.LinkNodes(collider, body)
//
// # Frame loop
//
// Call [Graph.Update] once per frame. It pushes node edits into the
// simulation, steps it, recomputes hierarchical transforms and visibility,
// and pulls simulated poses back into the nodes:
//
//	func (game *Game) Update() error {
//		game.graph.Update(grove.Vec2{X: 640, Y: 480}, 1.0/60.0)
//		return nil
//	}
//
// Rendering stays in your hands: read node transforms (and [Graph.DrawPhysics]
// wireframes) and draw with whatever renderer you use. The examples directory
// rasterizes with Ebitengine's vector package.
//
// # Prefabs
//
// A [Prefab] wraps an immutable template graph. [Prefab.Instantiate] deep
// copies it; [Graph.Resolve] later reconciles live instances against the
// template, restoring deleted nodes and remapping skeleton bones and joint
// references.
//
// [Ebitengine]: https://ebitengine.org
package grove
