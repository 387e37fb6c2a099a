package grove

import "github.com/jakecoffman/cp"

// BodyType selects how the simulation integrates a rigid body.
type BodyType uint8

const (
	// BodyDynamic bodies are fully simulated.
	BodyDynamic BodyType = iota
	// BodyKinematic bodies are moved by the user and push dynamic bodies.
	BodyKinematic
	// BodyStatic bodies never move.
	BodyStatic
)

// RigidBody is the payload of a rigid body node.
//
// Write the exported fields through the Set* methods: they record the change
// so the next sync pass pushes it into the simulation. A direct field write
// is invisible to the simulation until something else marks the field.
// Ownership of each field alternates: the simulation owns pose and velocity
// during stepping; the node owns a field from the instant the user writes it
// until the sync pass drains the mark.
type RigidBody struct {
	Kind           BodyType `json:"kind"`
	Mass           float64  `json:"mass"`
	LinVel         Vec2     `json:"linVel,omitzero"`
	AngVel         float64  `json:"angVel,omitempty"`
	LinDamping     float64  `json:"linDamping,omitempty"`
	AngDamping     float64  `json:"angDamping,omitempty"`
	RotationLocked bool     `json:"rotationLocked,omitempty"`

	// Changes is drained by the sync pass. Not persisted: the backing body
	// is rebuilt from scratch after a load.
	Changes ChangeSet[RigidBodyChange] `json:"-"`

	// TransformModified marks that the node's local transform was edited by
	// the user and must be pushed to the simulation, instead of the
	// simulation output overwriting it.
	TransformModified bool `json:"-"`

	native *cp.Body
}

func newRigidBody(kind BodyType) *RigidBody {
	return &RigidBody{Kind: kind, Mass: 1}
}

// SetBodyType changes how the simulation integrates this body.
func (b *RigidBody) SetBodyType(kind BodyType) {
	b.Kind = kind
	b.Changes.Add(RigidBodyChangeBodyType)
}

// SetLinVel sets the linear velocity.
func (b *RigidBody) SetLinVel(v Vec2) {
	b.LinVel = v
	b.Changes.Add(RigidBodyChangeLinVel)
}

// SetAngVel sets the angular velocity in radians per second.
func (b *RigidBody) SetAngVel(w float64) {
	b.AngVel = w
	b.Changes.Add(RigidBodyChangeAngVel)
}

// SetMass sets the body mass.
func (b *RigidBody) SetMass(m float64) {
	b.Mass = m
	b.Changes.Add(RigidBodyChangeMass)
}

// SetLinDamping sets the extra per-body linear damping factor.
func (b *RigidBody) SetLinDamping(d float64) {
	b.LinDamping = d
	b.Changes.Add(RigidBodyChangeLinDamping)
}

// SetAngDamping sets the extra per-body angular damping factor.
func (b *RigidBody) SetAngDamping(d float64) {
	b.AngDamping = d
	b.Changes.Add(RigidBodyChangeAngDamping)
}

// SetRotationLocked locks or unlocks rotation.
func (b *RigidBody) SetRotationLocked(locked bool) {
	b.RotationLocked = locked
	b.Changes.Add(RigidBodyChangeRotationLock)
}

// HasNative reports whether a backing simulation body exists yet.
func (b *RigidBody) HasNative() bool {
	return b.native != nil
}

// NativeBody returns the backing simulation body, or nil before the first
// sync pass.
func (b *RigidBody) NativeBody() *cp.Body {
	return b.native
}
