package grove

import "math"

// identityAffine is the identity affine matrix.
var identityAffine = [6]float64{1, 0, 0, 1, 0, 0}

// TransformField identifies one component of a Transform. Resolve uses these
// to decide which fields were hand-edited and must survive template updates.
type TransformField uint16

const (
	FieldPosition TransformField = 1 << iota
	FieldRotation
	FieldScale
	FieldPreRotation
	FieldPostRotation
	FieldRotationOffset
	FieldRotationPivot
	FieldScalingOffset
	FieldScalingPivot
)

// TransformFieldSet is a set of customized transform fields.
type TransformFieldSet uint16

// Has reports whether field is in the set.
func (s TransformFieldSet) Has(field TransformField) bool {
	return s&TransformFieldSet(field) != 0
}

func (s *TransformFieldSet) add(field TransformField) {
	*s |= TransformFieldSet(field)
}

// Transform is the local transform of a node: position, rotation, and scale
// plus the pivot and offset components needed to reproduce compound
// artist-authored transforms from modeling tools.
//
// Matrix composition order:
//
//	T(pos) * T(rotOffset) * T(rotPivot) * R(pre) * R(rot) * R(-post) *
//	T(-rotPivot) * T(scaleOffset) * T(scalePivot) * S * T(-scalePivot)
//
// The post-rotation is applied inverted, matching the FBX pivot convention.
//
// Public setters mark the touched field as user-customized; resolve never
// overwrites customized fields with template values.
type Transform struct {
	Position       Vec2    `json:"position"`
	Rotation       float64 `json:"rotation"`
	Scale          Vec2    `json:"scale"`
	PreRotation    float64 `json:"preRotation,omitempty"`
	PostRotation   float64 `json:"postRotation,omitempty"`
	RotationOffset Vec2    `json:"rotationOffset,omitzero"`
	RotationPivot  Vec2    `json:"rotationPivot,omitzero"`
	ScalingOffset  Vec2    `json:"scalingOffset,omitzero"`
	ScalingPivot   Vec2    `json:"scalingPivot,omitzero"`

	// Custom records which fields have been written through the public
	// setters. Persisted so template sync stays correct after a reload.
	Custom TransformFieldSet `json:"custom,omitempty"`

	matrix [6]float64
	dirty  bool
}

// NewTransform returns an identity transform.
func NewTransform() Transform {
	return Transform{Scale: Vec2{1, 1}, dirty: true}
}

// --- Public setters (mark the field customized) ---

// SetPosition sets the local position.
func (t *Transform) SetPosition(v Vec2) *Transform {
	t.Position = v
	t.Custom.add(FieldPosition)
	t.dirty = true
	return t
}

// SetRotation sets the local rotation in radians.
func (t *Transform) SetRotation(r float64) *Transform {
	t.Rotation = r
	t.Custom.add(FieldRotation)
	t.dirty = true
	return t
}

// SetScale sets the local scale.
func (t *Transform) SetScale(v Vec2) *Transform {
	t.Scale = v
	t.Custom.add(FieldScale)
	t.dirty = true
	return t
}

// SetPreRotation sets the pre-rotation in radians.
func (t *Transform) SetPreRotation(r float64) *Transform {
	t.PreRotation = r
	t.Custom.add(FieldPreRotation)
	t.dirty = true
	return t
}

// SetPostRotation sets the post-rotation in radians.
func (t *Transform) SetPostRotation(r float64) *Transform {
	t.PostRotation = r
	t.Custom.add(FieldPostRotation)
	t.dirty = true
	return t
}

// SetRotationOffset sets the rotation offset.
func (t *Transform) SetRotationOffset(v Vec2) *Transform {
	t.RotationOffset = v
	t.Custom.add(FieldRotationOffset)
	t.dirty = true
	return t
}

// SetRotationPivot sets the rotation pivot.
func (t *Transform) SetRotationPivot(v Vec2) *Transform {
	t.RotationPivot = v
	t.Custom.add(FieldRotationPivot)
	t.dirty = true
	return t
}

// SetScalingOffset sets the scaling offset.
func (t *Transform) SetScalingOffset(v Vec2) *Transform {
	t.ScalingOffset = v
	t.Custom.add(FieldScalingOffset)
	t.dirty = true
	return t
}

// SetScalingPivot sets the scaling pivot.
func (t *Transform) SetScalingPivot(v Vec2) *Transform {
	t.ScalingPivot = v
	t.Custom.add(FieldScalingPivot)
	t.dirty = true
	return t
}

// --- Template-side assignment (does NOT mark the field customized) ---

func (t *Transform) assignPosition(v Vec2)        { t.Position = v; t.dirty = true }
func (t *Transform) assignRotation(r float64)     { t.Rotation = r; t.dirty = true }
func (t *Transform) assignScale(v Vec2)           { t.Scale = v; t.dirty = true }
func (t *Transform) assignPreRotation(r float64)  { t.PreRotation = r; t.dirty = true }
func (t *Transform) assignPostRotation(r float64) { t.PostRotation = r; t.dirty = true }
func (t *Transform) assignRotationOffset(v Vec2)  { t.RotationOffset = v; t.dirty = true }
func (t *Transform) assignRotationPivot(v Vec2)   { t.RotationPivot = v; t.dirty = true }
func (t *Transform) assignScalingOffset(v Vec2)   { t.ScalingOffset = v; t.dirty = true }
func (t *Transform) assignScalingPivot(v Vec2)    { t.ScalingPivot = v; t.dirty = true }

// Matrix returns the local affine matrix, recomputing it if any component
// changed since the last call.
func (t *Transform) Matrix() [6]float64 {
	if t.dirty {
		t.matrix = t.compose()
		t.dirty = false
	}
	return t.matrix
}

func (t *Transform) compose() [6]float64 {
	m := translationAffine(t.Position.X, t.Position.Y)
	m = multiplyAffine(m, translationAffine(t.RotationOffset.X, t.RotationOffset.Y))
	m = multiplyAffine(m, translationAffine(t.RotationPivot.X, t.RotationPivot.Y))
	m = multiplyAffine(m, rotationAffine(t.IsometricAngle()))
	m = multiplyAffine(m, translationAffine(-t.RotationPivot.X, -t.RotationPivot.Y))
	m = multiplyAffine(m, translationAffine(t.ScalingOffset.X, t.ScalingOffset.Y))
	m = multiplyAffine(m, translationAffine(t.ScalingPivot.X, t.ScalingPivot.Y))
	m = multiplyAffine(m, scaleAffine(t.Scale.X, t.Scale.Y))
	return multiplyAffine(m, translationAffine(-t.ScalingPivot.X, -t.ScalingPivot.Y))
}

// IsometricMatrix returns the local matrix with scale, pivots, and offsets
// ignored: translation and rotation only. Physics bodies use this so the
// simulation never sees a sheared or scaled frame.
func (t *Transform) IsometricMatrix() [6]float64 {
	m := translationAffine(t.Position.X, t.Position.Y)
	return multiplyAffine(m, rotationAffine(t.IsometricAngle()))
}

// IsometricAngle returns the combined rotation angle used by the isometric
// transform variant.
func (t *Transform) IsometricAngle() float64 {
	return t.PreRotation + t.Rotation - t.PostRotation
}

// --- Affine helpers ---

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func translationAffine(x, y float64) [6]float64 {
	return [6]float64{1, 0, 0, 1, x, y}
}

func rotationAffine(angle float64) [6]float64 {
	sin, cos := math.Sincos(angle)
	return [6]float64{cos, sin, -sin, cos, 0, 0}
}

func scaleAffine(sx, sy float64) [6]float64 {
	return [6]float64{sx, 0, 0, sy, 0, 0}
}

// affineTranslation extracts the translation column of an affine matrix.
func affineTranslation(m [6]float64) Vec2 {
	return Vec2{m[4], m[5]}
}

// affineAngle extracts the rotation angle of an affine matrix, assuming no
// shear. True for isometric matrices.
func affineAngle(m [6]float64) float64 {
	return math.Atan2(m[1], m[0])
}
