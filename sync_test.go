package grove

import (
	"math"
	"testing"
)

const testFrame = 1.0 / 60.0

func frameSize() Vec2 { return Vec2{640, 480} }

func TestUpdateCreatesNativeBody(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyDynamic))
	g.Get(body).LocalTransform().SetPosition(Vec2{100, 50})
	g.Update(frameSize(), testFrame)
	b := g.Get(body).Body
	if !b.HasNative() {
		t.Fatal("no backing body after first update")
	}
	pos := b.NativeBody().Position()
	// Created at the node's pose, then stepped once under gravity.
	assertNear(t, "x", pos.X, 100)
	if pos.Y < 50 {
		t.Errorf("y = %v, want >= 50 (gravity pulls down)", pos.Y)
	}
}

func TestUpdateCreatesColliderUnderBody(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyStatic))
	shape := g.AddNode(NewColliderNode("shape", BoxShape(Vec2{10, 10})))
	g.LinkNodes(shape, body)
	g.Update(frameSize(), testFrame)
	if !g.Get(shape).Collider.HasNative() {
		t.Error("no backing shape after update")
	}
}

func TestColliderWithoutBodyParentStaysInert(t *testing.T) {
	g := NewGraph()
	shape := g.AddNode(NewColliderNode("orphan", CircleShape(5)))
	g.Update(frameSize(), testFrame)
	if g.Get(shape).Collider.HasNative() {
		t.Error("orphan collider got a backing shape")
	}
}

func TestUnlinkDestroysColliderShape(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyStatic))
	shape := g.AddNode(NewColliderNode("shape", CircleShape(5)))
	g.LinkNodes(shape, body)
	g.Update(frameSize(), testFrame)
	if !g.Get(shape).Collider.HasNative() {
		t.Fatal("no backing shape before unlink")
	}
	g.UnlinkNode(shape)
	if g.Get(shape).Collider.HasNative() {
		t.Error("backing shape survived detach from its body")
	}
	// Re-linking recreates it lazily.
	g.LinkNodes(shape, body)
	g.Update(frameSize(), testFrame)
	if !g.Get(shape).Collider.HasNative() {
		t.Error("backing shape not recreated after relink")
	}
}

func TestDynamicBodyFallsAndSyncsBack(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyDynamic))
	g.Get(body).LocalTransform().SetPosition(Vec2{0, 0})
	start := 0.0
	for i := 0; i < 30; i++ {
		g.Update(frameSize(), testFrame)
	}
	node := g.Get(body)
	if node.Local.Position.Y <= start {
		t.Errorf("node position %v did not follow the falling body", node.Local.Position)
	}
	if node.Body.LinVel.Y <= 0 {
		t.Errorf("LinVel.Y = %v, want > 0 after falling", node.Body.LinVel.Y)
	}
	if node.Body.TransformModified {
		t.Error("sync-back marked the transform user-modified")
	}
}

func TestTransformModifiedPushesPose(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyDynamic))
	g.Update(frameSize(), testFrame)
	// Teleport through the transform accessor.
	g.Get(body).LocalTransform().SetPosition(Vec2{300, -200})
	if !g.Get(body).Body.TransformModified {
		t.Fatal("LocalTransform did not mark the body transform modified")
	}
	g.Update(frameSize(), testFrame)
	pos := g.Get(body).Body.NativeBody().Position()
	assertNear(t, "x", pos.X, 300)
	if math.Abs(pos.Y-(-200)) > 2 {
		t.Errorf("y = %v, want about -200 (one step of gravity tolerated)", pos.Y)
	}
}

func TestVelocityChangeIsDrained(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyDynamic))
	g.Update(frameSize(), testFrame)
	b := g.Get(body).Body
	b.SetLinVel(Vec2{500, 0})
	if !b.Changes.Has(RigidBodyChangeLinVel) {
		t.Fatal("SetLinVel did not mark the change")
	}
	g.Update(frameSize(), testFrame)
	if b.Changes.Has(RigidBodyChangeLinVel) {
		t.Error("change not drained by sync")
	}
	if b.NativeBody().Velocity().X < 400 {
		t.Errorf("native velocity X = %v, want about 500", b.NativeBody().Velocity().X)
	}
}

func TestRotationLockStopsSpin(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyDynamic))
	shape := g.AddNode(NewColliderNode("shape", BoxShape(Vec2{5, 5})))
	g.LinkNodes(shape, body)
	g.Update(frameSize(), testFrame)
	b := g.Get(body).Body
	b.SetAngVel(10)
	b.SetRotationLocked(true)
	g.Update(frameSize(), testFrame)
	if w := b.NativeBody().AngularVelocity(); w != 0 {
		t.Errorf("angular velocity = %v, want 0 while locked", w)
	}
}

func TestJointCreatedOnceBothBodiesLive(t *testing.T) {
	g := NewGraph()
	b1 := g.AddNode(NewRigidBodyNode("b1", BodyStatic))
	b2 := g.AddNode(NewRigidBodyNode("b2", BodyDynamic))
	joint := g.AddNode(NewJointNode("joint", JointParams{
		Kind: JointPin, AnchorA: Vec2{}, AnchorB: Vec2{},
	}, b1, b2))
	if g.Get(joint).Joint.HasNative() {
		t.Fatal("constraint exists before any update")
	}
	g.Update(frameSize(), testFrame)
	if !g.Get(joint).Joint.HasNative() {
		t.Error("constraint not created once both bodies are live")
	}
}

func TestJointAddedAfterBodiesStillBinds(t *testing.T) {
	g := NewGraph()
	b1 := g.AddNode(NewRigidBodyNode("b1", BodyStatic))
	b2 := g.AddNode(NewRigidBodyNode("b2", BodyDynamic))
	g.Update(frameSize(), testFrame)
	joint := g.AddNode(NewJointNode("late", JointParams{Kind: JointPivot, Pivot: Vec2{0, 0}}, b1, b2))
	g.Update(frameSize(), testFrame)
	if !g.Get(joint).Joint.HasNative() {
		t.Error("constraint not created for joint added after its bodies")
	}
}

func TestRemoveBodyDetachesJointConstraint(t *testing.T) {
	g := NewGraph()
	b1 := g.AddNode(NewRigidBodyNode("b1", BodyStatic))
	b2 := g.AddNode(NewRigidBodyNode("b2", BodyDynamic))
	joint := g.AddNode(NewJointNode("joint", JointParams{Kind: JointPin}, b1, b2))
	g.Update(frameSize(), testFrame)
	if !g.Get(joint).Joint.HasNative() {
		t.Fatal("no constraint before removal")
	}

	g.RemoveNode(b1)
	if g.Get(joint).Joint.HasNative() {
		t.Fatal("constraint survived the removal of a referenced body")
	}
	// A params edit after the body is gone must not resurrect or re-remove
	// the constraint.
	g.Get(joint).Joint.SetParams(JointParams{Kind: JointPivot})
	g.Update(frameSize(), testFrame)
	if g.Get(joint).Joint.HasNative() {
		t.Error("constraint rebuilt with a dead body reference")
	}
	g.RemoveNode(joint)
	if g.IsValidHandle(joint) {
		t.Error("joint handle valid after removal")
	}
}

func TestRemoveBodySubtreeWithJointChild(t *testing.T) {
	g := NewGraph()
	b1 := g.AddNode(NewRigidBodyNode("b1", BodyStatic))
	shape := g.AddNode(NewColliderNode("shape", BoxShape(Vec2{10, 10})))
	g.LinkNodes(shape, b1)
	b2 := g.AddNode(NewRigidBodyNode("b2", BodyDynamic))
	joint := g.AddNode(NewJointNode("joint", JointParams{Kind: JointPin}, b1, b2))
	g.LinkNodes(joint, b1)
	g.Update(frameSize(), testFrame)

	// One removal frees the body, its collider child, and its joint child.
	g.RemoveNode(b1)
	if g.IsValidHandle(shape) || g.IsValidHandle(joint) {
		t.Error("subtree nodes still valid after removal")
	}
	// The surviving body and the space are intact.
	g.Update(frameSize(), testFrame)
	if !g.Get(b2).Body.HasNative() {
		t.Error("unrelated body lost its backing body")
	}
}

func TestColliderDensityDrivesMoment(t *testing.T) {
	g := NewGraph()
	plain := g.AddNode(NewRigidBodyNode("plain", BodyDynamic))
	plainShape := g.AddNode(NewColliderNode("plain-circle", CircleShape(10)))
	g.LinkNodes(plainShape, plain)

	dense := g.AddNode(NewRigidBodyNode("dense", BodyDynamic))
	denseShape := g.AddNode(NewColliderNode("dense-circle", CircleShape(10)))
	g.Get(denseShape).Collider.Density = 5
	g.LinkNodes(denseShape, dense)

	g.Update(frameSize(), testFrame)
	// Equal torque on both: the density-derived moment resists spin far more
	// than the one derived from the default body mass.
	g.Get(plain).Body.NativeBody().SetTorque(1000)
	g.Get(dense).Body.NativeBody().SetTorque(1000)
	g.Update(frameSize(), testFrame)
	plainSpin := math.Abs(g.Get(plain).Body.AngVel)
	denseSpin := math.Abs(g.Get(dense).Body.AngVel)
	if plainSpin == 0 {
		t.Fatal("torque produced no spin on the plain body")
	}
	if denseSpin >= plainSpin/10 {
		t.Errorf("dense spin %v not well below plain spin %v", denseSpin, plainSpin)
	}
}

func TestRemoveNodeDestroysNativeEntities(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyDynamic))
	shape := g.AddNode(NewColliderNode("shape", CircleShape(5)))
	g.LinkNodes(shape, body)
	g.Update(frameSize(), testFrame)
	native := g.Get(shape).Collider.native
	if _, ok := g.Physics().ColliderOfShape(native); !ok {
		t.Fatal("shape not registered before removal")
	}
	g.RemoveNode(body)
	if _, ok := g.Physics().ColliderOfShape(native); ok {
		t.Error("shape still registered after subtree removal")
	}
}

func TestDisabledWorldSkipsStepping(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyDynamic))
	g.Physics().Enabled = false
	for i := 0; i < 10; i++ {
		g.Update(frameSize(), testFrame)
	}
	if pos := g.Get(body).Local.Position; pos.Y != 0 {
		t.Errorf("body moved (%v) while the world is disabled", pos)
	}
	// Sync still ran: the backing body exists and resumes from node state.
	if !g.Get(body).Body.HasNative() {
		t.Error("sync skipped while world disabled")
	}
}
