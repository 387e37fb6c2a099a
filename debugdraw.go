package grove

import "math"

// DebugLine is one world-space line segment.
type DebugLine struct {
	From  Vec2
	To    Vec2
	Color Color
}

// DrawingContext accumulates debug wireframe primitives as plain line lists.
// Rasterization is up to the caller; the context is renderer-agnostic.
type DrawingContext struct {
	Lines []DebugLine
}

// Clear drops all accumulated primitives.
func (d *DrawingContext) Clear() {
	d.Lines = d.Lines[:0]
}

// AddLine appends one segment.
func (d *DrawingContext) AddLine(from, to Vec2, color Color) {
	d.Lines = append(d.Lines, DebugLine{From: from, To: to, Color: color})
}

// AddCircle approximates a circle with line segments.
func (d *DrawingContext) AddCircle(center Vec2, radius float64, segments int, color Color) {
	if segments < 3 {
		segments = 16
	}
	prev := Vec2{center.X + radius, center.Y}
	for i := 1; i <= segments; i++ {
		angle := float64(i) / float64(segments) * 2 * math.Pi
		next := Vec2{center.X + math.Cos(angle)*radius, center.Y + math.Sin(angle)*radius}
		d.AddLine(prev, next, color)
		prev = next
	}
}

var (
	debugBodyColor     = Color{0.2, 1, 0.2, 1}
	debugColliderColor = Color{1, 0.6, 0.1, 1}
	debugJointColor    = Color{0.4, 0.6, 1, 1}
)

// DrawPhysics appends wireframes for every rigid body, collider, and joint to
// ctx. Geometry comes from the node-side descriptions at their current world
// pose, so the output is meaningful even before backing simulation entities
// exist. Call after Update so hierarchical data is current.
func (g *Graph) DrawPhysics(ctx *DrawingContext) {
	for i := uint32(0); i < g.pool.Capacity(); i++ {
		handle := g.pool.HandleFromIndex(i)
		if handle.IsNone() {
			continue
		}
		node := g.pool.MustGet(handle)
		switch node.Type {
		case NodeTypeRigidBody:
			g.drawBodyGizmo(handle, ctx)
		case NodeTypeCollider:
			g.drawColliderWireframe(handle, node, ctx)
		case NodeTypeJoint:
			g.drawJointGizmo(node, ctx)
		}
	}
}

// drawBodyGizmo draws an oriented cross at the body pose.
func (g *Graph) drawBodyGizmo(handle Handle, ctx *DrawingContext) {
	const size = 8.0
	m := g.IsometricGlobalTransform(handle)
	ax, ay := transformPoint(m, -size, 0)
	bx, by := transformPoint(m, size, 0)
	cx, cy := transformPoint(m, 0, -size)
	dx, dy := transformPoint(m, 0, size)
	ctx.AddLine(Vec2{ax, ay}, Vec2{bx, by}, debugBodyColor)
	ctx.AddLine(Vec2{cx, cy}, Vec2{dx, dy}, debugBodyColor)
}

func (g *Graph) drawColliderWireframe(handle Handle, node *Node, ctx *DrawingContext) {
	c := node.Collider
	m := g.IsometricGlobalTransform(handle)
	line := func(a, b Vec2) {
		ax, ay := transformPoint(m, a.X, a.Y)
		bx, by := transformPoint(m, b.X, b.Y)
		ctx.AddLine(Vec2{ax, ay}, Vec2{bx, by}, debugColliderColor)
	}
	switch c.Shape.Kind {
	case ShapeCircle:
		ctx.AddCircle(affineTranslation(m), c.Shape.Radius, 24, debugColliderColor)
	case ShapeBox:
		he := c.Shape.HalfExtents
		corners := [4]Vec2{{-he.X, -he.Y}, {he.X, -he.Y}, {he.X, he.Y}, {-he.X, he.Y}}
		for i := range corners {
			line(corners[i], corners[(i+1)%4])
		}
	case ShapeSegment:
		line(c.Shape.A, c.Shape.B)
	case ShapePolygon:
		for i := range c.Shape.Points {
			line(c.Shape.Points[i], c.Shape.Points[(i+1)%len(c.Shape.Points)])
		}
	case ShapePolyline:
		for _, src := range c.Shape.Sources {
			srcNode, ok := g.pool.Get(src.Node)
			if !ok || srcNode.Type != NodeTypeMesh {
				continue
			}
			for _, surface := range srcNode.Mesh.Surfaces {
				for i := 0; i+1 < len(surface.Vertices); i++ {
					ax, ay := transformPoint(srcNode.globalTransform, surface.Vertices[i].Position.X, surface.Vertices[i].Position.Y)
					bx, by := transformPoint(srcNode.globalTransform, surface.Vertices[i+1].Position.X, surface.Vertices[i+1].Position.Y)
					ctx.AddLine(Vec2{ax, ay}, Vec2{bx, by}, debugColliderColor)
				}
			}
		}
	case ShapeHeightfield:
		srcNode, ok := g.pool.Get(c.Shape.HeightfieldSource.Node)
		if !ok || srcNode.Type != NodeTypeTilemap {
			return
		}
		points := srcNode.Tilemap.heightfieldPoints()
		for i := 0; i+1 < len(points); i++ {
			ax, ay := transformPoint(srcNode.globalTransform, points[i].X, points[i].Y)
			bx, by := transformPoint(srcNode.globalTransform, points[i+1].X, points[i+1].Y)
			ctx.AddLine(Vec2{ax, ay}, Vec2{bx, by}, debugColliderColor)
		}
	}
}

// drawJointGizmo connects the two joined bodies with a line.
func (g *Graph) drawJointGizmo(node *Node, ctx *DrawingContext) {
	b1, ok1 := g.pool.Get(node.Joint.Body1)
	b2, ok2 := g.pool.Get(node.Joint.Body2)
	if !ok1 || !ok2 {
		return
	}
	ctx.AddLine(b1.GlobalPosition(), b2.GlobalPosition(), debugJointColor)
}
