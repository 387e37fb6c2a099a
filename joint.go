package grove

import "github.com/jakecoffman/cp"

// JointKind discriminates joint parameter sets.
type JointKind uint8

const (
	// JointPin keeps two anchor points at a fixed distance.
	JointPin JointKind = iota
	// JointPivot lets two bodies rotate freely around a shared world point.
	JointPivot
	// JointSpring connects two anchor points with a damped spring.
	JointSpring
	// JointRotaryLimit constrains the relative angle of two bodies.
	JointRotaryLimit
)

// JointParams is the flat one-of parameter block of a joint.
type JointParams struct {
	Kind JointKind `json:"kind"`

	AnchorA Vec2 `json:"anchorA,omitzero"` // pin/spring, body1-local
	AnchorB Vec2 `json:"anchorB,omitzero"` // pin/spring, body2-local
	Pivot   Vec2 `json:"pivot,omitzero"`   // pivot, world space

	RestLength float64 `json:"restLength,omitempty"` // spring
	Stiffness  float64 `json:"stiffness,omitempty"`  // spring
	Damping    float64 `json:"damping,omitempty"`    // spring

	Min float64 `json:"min,omitempty"` // rotary limit
	Max float64 `json:"max,omitempty"` // rotary limit
}

// Joint is the payload of a joint node. The backing constraint is created
// only once both referenced rigid body nodes have live backing bodies.
type Joint struct {
	Params JointParams `json:"params"`
	Body1  Handle      `json:"body1"`
	Body2  Handle      `json:"body2"`

	Changes ChangeSet[JointChange] `json:"-"`

	native *cp.Constraint
}

func newJoint(params JointParams, body1, body2 Handle) *Joint {
	return &Joint{Params: params, Body1: body1, Body2: body2}
}

// SetParams replaces the joint parameters. The backing constraint is rebuilt
// on the next sync pass.
func (j *Joint) SetParams(params JointParams) {
	j.Params = params
	j.Changes.Add(JointChangeParams)
}

// SetBody1 reassigns the first body. Reassigning the bodies of a live joint
// is not supported by the sync pass; it reports the attempt and leaves the
// constraint on its original bodies.
func (j *Joint) SetBody1(h Handle) {
	j.Body1 = h
	j.Changes.Add(JointChangeBody1)
}

// SetBody2 reassigns the second body. Same restriction as SetBody1.
func (j *Joint) SetBody2(h Handle) {
	j.Body2 = h
	j.Changes.Add(JointChangeBody2)
}

// HasNative reports whether a backing constraint exists.
func (j *Joint) HasNative() bool {
	return j.native != nil
}
