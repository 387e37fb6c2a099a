package grove

import "github.com/jakecoffman/cp"

// ShapeKind discriminates collider shapes.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
	ShapeSegment
	ShapePolygon
	// ShapePolyline builds its segments from the vertices of referenced
	// mesh nodes (see GeometrySource).
	ShapePolyline
	// ShapeHeightfield builds a surface strip from a referenced tilemap
	// node's column heights.
	ShapeHeightfield
)

// GeometrySource references the node whose geometry feeds a polyline or
// heightfield shape. The handle is remapped when a hierarchy is deep-copied.
type GeometrySource struct {
	Node Handle `json:"node"`
}

// ColliderShape is the flat one-of description of a collider's geometry,
// authored in the collider node's local space.
type ColliderShape struct {
	Kind        ShapeKind `json:"kind"`
	Radius      float64   `json:"radius,omitempty"`      // circle; rounding for box/segment
	HalfExtents Vec2      `json:"halfExtents,omitzero"`  // box
	A           Vec2      `json:"a,omitzero"`            // segment endpoints
	B           Vec2      `json:"b,omitzero"`
	Points      []Vec2    `json:"points,omitempty"`      // polygon

	Sources           []GeometrySource `json:"sources,omitempty"`           // polyline
	HeightfieldSource GeometrySource   `json:"heightfieldSource,omitzero"` // heightfield
}

// CircleShape describes a circle of the given radius.
func CircleShape(radius float64) ColliderShape {
	return ColliderShape{Kind: ShapeCircle, Radius: radius}
}

// BoxShape describes an axis-aligned box by half extents.
func BoxShape(halfExtents Vec2) ColliderShape {
	return ColliderShape{Kind: ShapeBox, HalfExtents: halfExtents}
}

// SegmentShape describes a thick line segment.
func SegmentShape(a, b Vec2, radius float64) ColliderShape {
	return ColliderShape{Kind: ShapeSegment, A: a, B: b, Radius: radius}
}

// PolygonShape describes a convex polygon.
func PolygonShape(points []Vec2) ColliderShape {
	return ColliderShape{Kind: ShapePolygon, Points: points}
}

// InteractionGroups is a pair of bit masks: a shape belongs to the
// Memberships groups and collides with shapes whose memberships intersect
// Filter.
//
// Collision groups map onto the simulation's category/mask filter. Solver
// groups have no direct counterpart in the backing engine; the memberships
// value is mapped to the engine's exclusion group (shapes sharing a nonzero
// group never generate contacts).
type InteractionGroups struct {
	Memberships uint32 `json:"memberships"`
	Filter      uint32 `json:"filter"`
}

// AllGroups interacts with everything. The default for new colliders.
var AllGroups = InteractionGroups{Memberships: 0xffffffff, Filter: 0xffffffff}

// Collider is the payload of a collider node. The backing simulation shape
// exists only while the node is parented under a rigid body node with a live
// backing body; detaching the node destroys the shape, re-linking recreates
// it lazily.
//
// Write the exported fields through the Set* methods so the change is pushed
// to the simulation on the next sync pass.
type Collider struct {
	Shape           ColliderShape     `json:"shape"`
	Friction        float64           `json:"friction"`
	Restitution     float64           `json:"restitution"`
	Density         float64           `json:"density,omitempty"` // >0 derives the moment mass from density*area
	IsSensor        bool              `json:"isSensor,omitempty"`
	CollisionGroups InteractionGroups `json:"collisionGroups"`
	SolverGroups    InteractionGroups `json:"solverGroups"`

	Changes           ChangeSet[ColliderChange] `json:"-"`
	TransformModified bool                      `json:"-"`

	// native is the primary backing shape; extra holds the additional
	// segment shapes of polyline and heightfield geometry.
	native *cp.Shape
	extra  []*cp.Shape
}

func newCollider(shape ColliderShape) *Collider {
	return &Collider{
		Shape:           shape,
		Friction:        0.5,
		CollisionGroups: AllGroups,
		SolverGroups:    AllGroups,
	}
}

// SetShape replaces the collider geometry.
func (c *Collider) SetShape(shape ColliderShape) {
	c.Shape = shape
	c.Changes.Add(ColliderChangeShape)
}

// SetFriction sets the friction coefficient.
func (c *Collider) SetFriction(f float64) {
	c.Friction = f
	c.Changes.Add(ColliderChangeFriction)
}

// SetRestitution sets the bounciness.
func (c *Collider) SetRestitution(r float64) {
	c.Restitution = r
	c.Changes.Add(ColliderChangeRestitution)
}

// SetCollisionGroups sets which shapes this collider collides with.
func (c *Collider) SetCollisionGroups(g InteractionGroups) {
	c.CollisionGroups = g
	c.Changes.Add(ColliderChangeCollisionGroups)
}

// SetSolverGroups sets which contacts reach the solver.
func (c *Collider) SetSolverGroups(g InteractionGroups) {
	c.SolverGroups = g
	c.Changes.Add(ColliderChangeSolverGroups)
}

// SetIsSensor makes the collider report overlaps without generating forces.
func (c *Collider) SetIsSensor(sensor bool) {
	c.IsSensor = sensor
	c.Changes.Add(ColliderChangeIsSensor)
}

// HasNative reports whether a backing simulation shape exists.
func (c *Collider) HasNative() bool {
	return c.native != nil
}
