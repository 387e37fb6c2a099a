package grove

import "github.com/jakecoffman/cp"

// This file keeps node state and the backing simulation in sync. The pass
// runs at the start of every Update, before the simulation steps:
//
//  1. Rigid body nodes get a backing body created lazily, then each marked
//     field is drained into it. A user-modified transform is pushed as the
//     new pose.
//  2. Collider nodes get a backing shape once they sit under a body node
//     with a live backing body. Geometry and transform edits rebuild the
//     shape; material edits are pushed in place.
//  3. Joint nodes get a backing constraint once both referenced bodies are
//     live.
//
// After the step, syncRigidBodyBack writes simulated poses into node local
// transforms without marking them modified, so the next pass does not push
// them right back.

func bodyTypeToNative(kind BodyType) int {
	switch kind {
	case BodyKinematic:
		return cp.BODY_KINEMATIC
	case BodyStatic:
		return cp.BODY_STATIC
	default:
		return cp.BODY_DYNAMIC
	}
}

func (g *Graph) syncNativePhysics() {
	for i := uint32(0); i < g.pool.Capacity(); i++ {
		handle := g.pool.HandleFromIndex(i)
		if handle.IsNone() {
			continue
		}
		node := g.pool.MustGet(handle)
		switch node.Type {
		case NodeTypeRigidBody:
			g.syncRigidBody(handle, node)
		case NodeTypeCollider:
			g.syncCollider(handle, node)
		case NodeTypeJoint:
			g.syncJoint(handle, node)
		}
	}
}

// --- Rigid bodies ---

func (g *Graph) syncRigidBody(handle Handle, node *Node) {
	b := node.Body
	if b.native == nil {
		g.createNativeBody(handle, node)
		return
	}
	body := b.native

	if b.TransformModified {
		g.pushBodyPose(handle, node, body)
		b.TransformModified = false
	}
	if b.Changes.take(RigidBodyChangeBodyType) {
		body.SetType(bodyTypeToNative(b.Kind))
	}
	if b.Changes.take(RigidBodyChangeLinVel) {
		body.SetVelocityVector(cp.Vector{X: b.LinVel.X, Y: b.LinVel.Y})
	}
	if b.Changes.take(RigidBodyChangeAngVel) {
		body.SetAngularVelocity(b.AngVel)
	}
	if b.Changes.take(RigidBodyChangeMass) {
		if b.Kind == BodyDynamic {
			body.SetMass(b.Mass)
		}
	}
	// Per-body damping is read from the node every step by the velocity
	// update hook, so draining the mark is all that is needed.
	b.Changes.take(RigidBodyChangeLinDamping)
	b.Changes.take(RigidBodyChangeAngDamping)
	if b.Changes.take(RigidBodyChangeRotationLock) {
		g.applyRotationLock(handle, node, body)
	}
}

func (g *Graph) createNativeBody(handle Handle, node *Node) {
	b := node.Body
	var body *cp.Body
	switch b.Kind {
	case BodyKinematic:
		body = cp.NewKinematicBody()
	case BodyStatic:
		body = cp.NewStaticBody()
	default:
		// The moment stays infinite until a collider attaches and a real
		// one can be computed from its geometry.
		body = cp.NewBody(b.Mass, cp.INFINITY)
	}
	g.physics.addBody(body)
	g.pushBodyPose(handle, node, body)
	body.SetVelocityVector(cp.Vector{X: b.LinVel.X, Y: b.LinVel.Y})
	body.SetAngularVelocity(b.AngVel)
	g.installDampingHook(body, b)
	b.native = body
	b.TransformModified = false
	b.Changes.Clear()
	logInfof("native rigid body was created for node %s", node.Name)
}

// installDampingHook layers the per-body damping factors on top of the
// space-global damping. The hook reads the node payload every step, so later
// edits to the damping fields take effect without touching the body.
func (g *Graph) installDampingHook(body *cp.Body, b *RigidBody) {
	body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(body, gravity, damping, dt)
		if b.LinDamping > 0 {
			body.SetVelocityVector(body.Velocity().Mult(1 / (1 + dt*b.LinDamping)))
		}
		if b.AngDamping > 0 {
			body.SetAngularVelocity(body.AngularVelocity() / (1 + dt*b.AngDamping))
		}
	})
}

// pushBodyPose writes the node's world pose into the body. The simulation
// works in the isometric frame: translation and rotation only, scale and
// pivots stripped.
//
// The static spatial index records a shape's extent at insertion and Step
// never revisits it, so a teleported static body's shapes are pulled out of
// the space and re-added to re-index them at the new pose. Dynamic and
// kinematic shapes are re-indexed by Step itself.
func (g *Graph) pushBodyPose(handle Handle, node *Node, body *cp.Body) {
	m := g.IsometricGlobalTransform(handle)
	pos := affineTranslation(m)
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	body.SetAngle(affineAngle(m))
	if node.Body.Kind == BodyStatic {
		var shapes []*cp.Shape
		body.EachShape(func(s *cp.Shape) {
			shapes = append(shapes, s)
		})
		for _, s := range shapes {
			g.physics.space.RemoveShape(s)
			g.physics.space.AddShape(s)
		}
	}
}

// applyRotationLock sets an infinite moment to lock rotation, or recomputes
// the moment from the attached collider geometry to unlock it.
func (g *Graph) applyRotationLock(handle Handle, node *Node, body *cp.Body) {
	if node.Body.Kind != BodyDynamic {
		return
	}
	if node.Body.RotationLocked {
		body.SetAngularVelocity(0)
		body.SetMoment(cp.INFINITY)
		return
	}
	for _, child := range node.Children {
		childNode, ok := g.pool.Get(child)
		if !ok || childNode.Type != NodeTypeCollider || childNode.Collider.native == nil {
			continue
		}
		body.SetMoment(g.momentForCollider(child, childNode, node.Body.Mass))
		return
	}
}

// --- Colliders ---

func (g *Graph) syncCollider(handle Handle, node *Node) {
	c := node.Collider

	parentBody := g.parentNativeBody(node)
	if parentBody == nil {
		// A shape cannot outlive its body association.
		g.destroyColliderNative(c)
		return
	}

	rebuild := c.native == nil
	if c.Changes.take(ColliderChangeShape) {
		rebuild = true
	}
	if c.TransformModified {
		// The offset relative to the body is baked into the shape geometry,
		// so a transform edit means a rebuild.
		rebuild = true
		c.TransformModified = false
	}
	if rebuild {
		created := c.native == nil
		g.destroyColliderNative(c)
		g.createNativeShapes(handle, node, parentBody)
		if c.native == nil {
			return
		}
		if created {
			logInfof("native collider was created for node %s", node.Name)
		}
	}

	if c.Changes.take(ColliderChangeRestitution) {
		for _, s := range c.allShapes() {
			s.SetElasticity(c.Restitution)
		}
	}
	if c.Changes.take(ColliderChangeFriction) {
		for _, s := range c.allShapes() {
			s.SetFriction(c.Friction)
		}
	}
	if c.Changes.take(ColliderChangeIsSensor) {
		for _, s := range c.allShapes() {
			s.SetSensor(c.IsSensor)
		}
	}
	groupsChanged := c.Changes.take(ColliderChangeCollisionGroups)
	if c.Changes.take(ColliderChangeSolverGroups) {
		groupsChanged = true
	}
	if groupsChanged {
		filter := c.shapeFilter()
		for _, s := range c.allShapes() {
			s.SetFilter(filter)
		}
	}
}

// parentNativeBody returns the live backing body of the node's parent rigid
// body node, or nil.
func (g *Graph) parentNativeBody(node *Node) *cp.Body {
	parent, ok := g.pool.Get(node.Parent)
	if !ok || parent.Type != NodeTypeRigidBody {
		return nil
	}
	return parent.Body.native
}

func (c *Collider) allShapes() []*cp.Shape {
	if c.native == nil {
		return nil
	}
	return append([]*cp.Shape{c.native}, c.extra...)
}

// shapeFilter maps the interaction groups onto the simulation's filter.
// Collision groups become the category/mask pair. Solver group memberships
// become the exclusion group: shapes sharing a nonzero group never touch,
// which is the closest available analog of filtering contacts out of the
// solver.
func (c *Collider) shapeFilter() cp.ShapeFilter {
	group := uint(cp.NO_GROUP)
	if c.SolverGroups.Memberships != 0xffffffff {
		group = uint(c.SolverGroups.Memberships)
	}
	return cp.NewShapeFilter(group, uint(c.CollisionGroups.Memberships), uint(c.CollisionGroups.Filter))
}

func (g *Graph) destroyColliderNative(c *Collider) {
	if c.native == nil {
		return
	}
	g.physics.removeShape(c.native)
	c.native = nil
	for _, s := range c.extra {
		g.physics.removeShape(s)
	}
	c.extra = nil
}

// createNativeShapes builds the backing shape set for a collider and attaches
// it to body. Geometry is produced in the body's local frame: the collider's
// pose relative to the body is baked into vertices and offsets.
func (g *Graph) createNativeShapes(handle Handle, node *Node, body *cp.Body) {
	c := node.Collider
	local := g.relativeIsometric(node.Parent, handle)

	var shapes []*cp.Shape
	switch c.Shape.Kind {
	case ShapeCircle:
		center := affineTranslation(local)
		shapes = append(shapes, cp.NewCircle(body, c.Shape.Radius, cp.Vector{X: center.X, Y: center.Y}))
	case ShapeBox:
		he := c.Shape.HalfExtents
		corners := [][2]float64{{-he.X, -he.Y}, {he.X, -he.Y}, {he.X, he.Y}, {-he.X, he.Y}}
		verts := make([]cp.Vector, len(corners))
		for i, p := range corners {
			x, y := transformPoint(local, p[0], p[1])
			verts[i] = cp.Vector{X: x, Y: y}
		}
		shapes = append(shapes, cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), c.Shape.Radius))
	case ShapeSegment:
		ax, ay := transformPoint(local, c.Shape.A.X, c.Shape.A.Y)
		bx, by := transformPoint(local, c.Shape.B.X, c.Shape.B.Y)
		shapes = append(shapes, cp.NewSegment(body, cp.Vector{X: ax, Y: ay}, cp.Vector{X: bx, Y: by}, c.Shape.Radius))
	case ShapePolygon:
		if len(c.Shape.Points) < 3 {
			logWarnf("polygon collider %s has fewer than 3 points, skipped", node.Name)
			return
		}
		verts := make([]cp.Vector, len(c.Shape.Points))
		for i, p := range c.Shape.Points {
			x, y := transformPoint(local, p.X, p.Y)
			verts[i] = cp.Vector{X: x, Y: y}
		}
		shapes = append(shapes, cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), 0))
	case ShapePolyline:
		shapes = g.buildPolylineShapes(node, body)
		if shapes == nil {
			return
		}
	case ShapeHeightfield:
		shapes = g.buildHeightfieldShapes(node, body)
		if shapes == nil {
			return
		}
	}
	if len(shapes) == 0 {
		return
	}

	filter := c.shapeFilter()
	for _, s := range shapes {
		s.SetElasticity(c.Restitution)
		s.SetFriction(c.Friction)
		s.SetSensor(c.IsSensor)
		s.SetFilter(filter)
		g.physics.addShape(s, handle)
	}
	c.native = shapes[0]
	c.extra = shapes[1:]

	parent := g.pool.MustGet(node.Parent)
	if parent.Body.Kind == BodyDynamic && !parent.Body.RotationLocked {
		body.SetMoment(g.momentForCollider(handle, node, parent.Body.Mass))
	}
}

// relativeIsometric returns the isometric transform of node b in the local
// frame of node a.
func (g *Graph) relativeIsometric(a, b Handle) [6]float64 {
	return multiplyAffine(invertAffine(g.IsometricGlobalTransform(a)), g.IsometricGlobalTransform(b))
}

// buildPolylineShapes chains the surface vertices of every referenced mesh
// node into segment shapes, in the body's local frame.
func (g *Graph) buildPolylineShapes(node *Node, body *cp.Body) []*cp.Shape {
	c := node.Collider
	bodyInv := invertAffine(g.IsometricGlobalTransform(node.Parent))
	var shapes []*cp.Shape
	for _, src := range c.Shape.Sources {
		srcNode, ok := g.pool.Get(src.Node)
		if !ok || srcNode.Type != NodeTypeMesh {
			logWarnf("polyline collider %s references a missing or non-mesh geometry source %v", node.Name, src.Node)
			continue
		}
		m := multiplyAffine(bodyInv, srcNode.globalTransform)
		for _, surface := range srcNode.Mesh.Surfaces {
			for i := 0; i+1 < len(surface.Vertices); i++ {
				ax, ay := transformPoint(m, surface.Vertices[i].Position.X, surface.Vertices[i].Position.Y)
				bx, by := transformPoint(m, surface.Vertices[i+1].Position.X, surface.Vertices[i+1].Position.Y)
				shapes = append(shapes, cp.NewSegment(body, cp.Vector{X: ax, Y: ay}, cp.Vector{X: bx, Y: by}, c.Shape.Radius))
			}
		}
	}
	return shapes
}

// buildHeightfieldShapes chains the column heights of the referenced tilemap
// node into a segment strip, in the body's local frame.
func (g *Graph) buildHeightfieldShapes(node *Node, body *cp.Body) []*cp.Shape {
	c := node.Collider
	srcNode, ok := g.pool.Get(c.Shape.HeightfieldSource.Node)
	if !ok || srcNode.Type != NodeTypeTilemap {
		logWarnf("heightfield collider %s references a missing or non-tilemap geometry source %v",
			node.Name, c.Shape.HeightfieldSource.Node)
		return nil
	}
	points := srcNode.Tilemap.heightfieldPoints()
	if len(points) < 2 {
		return nil
	}
	m := multiplyAffine(invertAffine(g.IsometricGlobalTransform(node.Parent)), srcNode.globalTransform)
	shapes := make([]*cp.Shape, 0, len(points)-1)
	for i := 0; i+1 < len(points); i++ {
		ax, ay := transformPoint(m, points[i].X, points[i].Y)
		bx, by := transformPoint(m, points[i+1].X, points[i+1].Y)
		shapes = append(shapes, cp.NewSegment(body, cp.Vector{X: ax, Y: ay}, cp.Vector{X: bx, Y: by}, c.Shape.Radius))
	}
	return shapes
}

// momentForCollider computes the body moment of inertia from the collider
// geometry. A collider with a density derives the mass from density times
// shape area; otherwise the body mass is used.
func (g *Graph) momentForCollider(handle Handle, node *Node, bodyMass float64) float64 {
	c := node.Collider
	mass := bodyMass
	if m := c.densityMass(); m > 0 {
		mass = m
	}
	local := g.relativeIsometric(node.Parent, handle)
	center := affineTranslation(local)
	offset := cp.Vector{X: center.X, Y: center.Y}
	switch c.Shape.Kind {
	case ShapeCircle:
		return cp.MomentForCircle(mass, 0, c.Shape.Radius, offset)
	case ShapeBox:
		return cp.MomentForBox(mass, c.Shape.HalfExtents.X*2, c.Shape.HalfExtents.Y*2)
	case ShapeSegment:
		ax, ay := transformPoint(local, c.Shape.A.X, c.Shape.A.Y)
		bx, by := transformPoint(local, c.Shape.B.X, c.Shape.B.Y)
		return cp.MomentForSegment(mass, cp.Vector{X: ax, Y: ay}, cp.Vector{X: bx, Y: by}, c.Shape.Radius)
	case ShapePolygon:
		verts := make([]cp.Vector, len(c.Shape.Points))
		for i, p := range c.Shape.Points {
			x, y := transformPoint(local, p.X, p.Y)
			verts[i] = cp.Vector{X: x, Y: y}
		}
		return cp.MomentForPoly(mass, len(verts), verts, cp.Vector{}, 0)
	default:
		return cp.INFINITY
	}
}

// densityMass derives a mass from the collider's density and shape area.
// Returns 0 when no density is set or the shape kind has no usable area, in
// which case the body's own mass applies.
func (c *Collider) densityMass() float64 {
	if c.Density <= 0 {
		return 0
	}
	switch c.Shape.Kind {
	case ShapeCircle:
		return c.Density * cp.AreaForCircle(0, c.Shape.Radius)
	case ShapeBox:
		return c.Density * 4 * c.Shape.HalfExtents.X * c.Shape.HalfExtents.Y
	case ShapeSegment:
		return c.Density * cp.AreaForSegment(
			cp.Vector{X: c.Shape.A.X, Y: c.Shape.A.Y},
			cp.Vector{X: c.Shape.B.X, Y: c.Shape.B.Y},
			c.Shape.Radius)
	case ShapePolygon:
		if len(c.Shape.Points) < 3 {
			return 0
		}
		verts := make([]cp.Vector, len(c.Shape.Points))
		for i, p := range c.Shape.Points {
			verts[i] = cp.Vector{X: p.X, Y: p.Y}
		}
		return c.Density * cp.AreaForPoly(len(verts), verts, 0)
	default:
		return 0
	}
}

// --- Joints ---

func (g *Graph) syncJoint(handle Handle, node *Node) {
	j := node.Joint

	if j.native == nil {
		body1 := g.nativeBodyOf(j.Body1)
		body2 := g.nativeBodyOf(j.Body2)
		if body1 == nil || body2 == nil {
			return
		}
		j.native = g.buildConstraint(j.Params, body1, body2)
		g.physics.addConstraint(j.native)
		j.Changes.Clear()
		logInfof("native joint was created for node %s", node.Name)
		return
	}

	if j.Changes.take(JointChangeParams) {
		body1 := g.nativeBodyOf(j.Body1)
		body2 := g.nativeBodyOf(j.Body2)
		g.physics.removeConstraint(j.native)
		j.native = nil
		if body1 != nil && body2 != nil {
			j.native = g.buildConstraint(j.Params, body1, body2)
			g.physics.addConstraint(j.native)
		}
	}
	body1Changed := j.Changes.take(JointChangeBody1)
	if j.Changes.take(JointChangeBody2) {
		body1Changed = true
	}
	if body1Changed {
		logErrorf("reassigning the bodies of live joint %s is not supported, the constraint keeps its original bodies", node.Name)
	}
}

func (g *Graph) nativeBodyOf(handle Handle) *cp.Body {
	node, ok := g.pool.Get(handle)
	if !ok || node.Type != NodeTypeRigidBody {
		return nil
	}
	return node.Body.native
}

func (g *Graph) buildConstraint(p JointParams, body1, body2 *cp.Body) *cp.Constraint {
	switch p.Kind {
	case JointPivot:
		return cp.NewPivotJoint(body1, body2, cp.Vector{X: p.Pivot.X, Y: p.Pivot.Y})
	case JointSpring:
		return cp.NewDampedSpring(body1, body2,
			cp.Vector{X: p.AnchorA.X, Y: p.AnchorA.Y},
			cp.Vector{X: p.AnchorB.X, Y: p.AnchorB.Y},
			p.RestLength, p.Stiffness, p.Damping)
	case JointRotaryLimit:
		return cp.NewRotaryLimitJoint(body1, body2, p.Min, p.Max)
	default:
		return cp.NewPinJoint(body1, body2,
			cp.Vector{X: p.AnchorA.X, Y: p.AnchorA.Y},
			cp.Vector{X: p.AnchorB.X, Y: p.AnchorB.Y})
	}
}

// --- Read-back after stepping ---

// syncRigidBodyBack writes the simulated pose and velocities into the node.
// The transform is assigned without marking it user-modified, so the next
// sync pass does not push it straight back into the simulation.
func (g *Graph) syncRigidBodyBack(handle Handle, node *Node) {
	b := node.Body
	if b.native == nil || b.Kind == BodyStatic {
		return
	}
	pos := b.native.Position()
	world := multiplyAffine(translationAffine(pos.X, pos.Y), rotationAffine(b.native.Angle()))
	local := world
	if node.Parent.IsSome() {
		local = multiplyAffine(invertAffine(g.IsometricGlobalTransform(node.Parent)), world)
	}
	node.Local.assignPosition(affineTranslation(local))
	angle := affineAngle(local)
	node.Local.assignRotation(angle - node.Local.PreRotation + node.Local.PostRotation)

	vel := b.native.Velocity()
	b.LinVel = Vec2{vel.X, vel.Y}
	b.AngVel = b.native.AngularVelocity()
}
