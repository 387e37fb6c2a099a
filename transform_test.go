package grove

import (
	"math"
	"testing"
)

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}

func assertVec2Near(t *testing.T, name string, got, want Vec2) {
	t.Helper()
	assertNear(t, name+".X", got.X, want.X)
	assertNear(t, name+".Y", got.Y, want.Y)
}

func TestTransformIdentity(t *testing.T) {
	tr := NewTransform()
	assertMatrix(t, "identity", tr.Matrix(), identityAffine)
}

func TestTransformTranslation(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(Vec2{10, -5})
	assertMatrix(t, "translation", tr.Matrix(), [6]float64{1, 0, 0, 1, 10, -5})
}

func TestTransformRotationAboutPivot(t *testing.T) {
	// Rotating half a turn around pivot (10, 0) maps the origin to (20, 0).
	tr := NewTransform()
	tr.SetRotation(math.Pi).SetRotationPivot(Vec2{10, 0})
	x, y := transformPoint(tr.Matrix(), 0, 0)
	assertNear(t, "x", x, 20)
	assertNear(t, "y", y, 0)
}

func TestTransformScaleAboutPivot(t *testing.T) {
	// Doubling about pivot (10, 10) keeps the pivot fixed.
	tr := NewTransform()
	tr.SetScale(Vec2{2, 2}).SetScalingPivot(Vec2{10, 10})
	x, y := transformPoint(tr.Matrix(), 10, 10)
	assertNear(t, "pivot.x", x, 10)
	assertNear(t, "pivot.y", y, 10)
	x, y = transformPoint(tr.Matrix(), 0, 0)
	assertNear(t, "origin.x", x, -10)
	assertNear(t, "origin.y", y, -10)
}

func TestTransformPrePostRotation(t *testing.T) {
	tr := NewTransform()
	tr.SetPreRotation(math.Pi / 4).SetRotation(math.Pi / 2).SetPostRotation(math.Pi / 4)
	// The post-rotation applies inverted: pre + rot - post.
	assertNear(t, "IsometricAngle", tr.IsometricAngle(), math.Pi/2)
}

func TestTransformIsometricIgnoresScale(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(Vec2{5, 6}).SetRotation(1).SetScale(Vec2{3, 9}).SetScalingPivot(Vec2{100, 100})
	iso := tr.IsometricMatrix()
	assertVec2Near(t, "translation", affineTranslation(iso), Vec2{5, 6})
	assertNear(t, "angle", affineAngle(iso), 1)
	// No scale component: basis vectors are unit length.
	assertNear(t, "basisX", math.Hypot(iso[0], iso[1]), 1)
	assertNear(t, "basisY", math.Hypot(iso[2], iso[3]), 1)
}

func TestTransformSettersMarkCustom(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(Vec2{1, 2})
	if !tr.Custom.Has(FieldPosition) {
		t.Error("SetPosition did not mark FieldPosition customized")
	}
	if tr.Custom.Has(FieldRotation) {
		t.Error("FieldRotation marked without a write")
	}
	tr.assignRotation(1)
	if tr.Custom.Has(FieldRotation) {
		t.Error("internal assignment marked FieldRotation customized")
	}
}

func TestMultiplyAffineComposes(t *testing.T) {
	move := translationAffine(10, 0)
	rot := rotationAffine(math.Pi / 2)
	// Parent translation, child rotation: rotate about the parent origin,
	// then move.
	m := multiplyAffine(move, rot)
	x, y := transformPoint(m, 1, 0)
	assertNear(t, "x", x, 10)
	assertNear(t, "y", y, 1)
}

func TestInvertAffineRoundTrip(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(Vec2{3, 4}).SetRotation(0.7).SetScale(Vec2{2, 0.5})
	m := tr.Matrix()
	inv := invertAffine(m)
	px, py := transformPoint(m, 13, -7)
	x, y := transformPoint(inv, px, py)
	assertNear(t, "x", x, 13)
	assertNear(t, "y", y, -7)
}

func TestInvertAffineSingular(t *testing.T) {
	assertMatrix(t, "singular", invertAffine([6]float64{0, 0, 0, 0, 5, 5}), identityAffine)
}
