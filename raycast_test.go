package grove

import (
	"math"
	"testing"
)

func TestCastRayHitsCollider(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("wall", BodyStatic))
	g.Get(body).LocalTransform().SetPosition(Vec2{100, 0})
	shape := g.AddNode(NewColliderNode("wall-circle", CircleShape(10)))
	g.LinkNodes(shape, body)
	g.Update(frameSize(), testFrame)

	var hits IntersectionList
	g.Physics().CastRay(RayCastOptions{
		Origin:      Vec2{0, 0},
		Direction:   Vec2{1, 0},
		MaxLen:      200,
		Groups:      AllGroups,
		SortResults: true,
	}, &hits)
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].Collider != shape {
		t.Errorf("hit collider = %v, want %v", hits[0].Collider, shape)
	}
	// Circle at x=100 with radius 10: surface at x=90.
	if math.Abs(hits[0].TOI-90) > 1 {
		t.Errorf("TOI = %v, want about 90", hits[0].TOI)
	}
	if hits[0].Normal.X >= 0 {
		t.Errorf("normal = %v, want pointing back at the ray origin", hits[0].Normal)
	}
}

func TestCastRaySortsByDistance(t *testing.T) {
	g := NewGraph()
	for _, x := range []float64{300, 100, 200} {
		body := g.AddNode(NewRigidBodyNode("wall", BodyStatic))
		g.Get(body).LocalTransform().SetPosition(Vec2{x, 0})
		shape := g.AddNode(NewColliderNode("wall-circle", CircleShape(5)))
		g.LinkNodes(shape, body)
	}
	g.Update(frameSize(), testFrame)

	var hits IntersectionList
	g.Physics().CastRay(RayCastOptions{
		Origin: Vec2{0, 0}, Direction: Vec2{1, 0}, MaxLen: 500,
		Groups: AllGroups, SortResults: true,
	}, &hits)
	if len(hits) != 3 {
		t.Fatalf("hits = %d, want 3", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].TOI < hits[i-1].TOI {
			t.Errorf("hits not sorted: TOI[%d]=%v < TOI[%d]=%v", i, hits[i].TOI, i-1, hits[i-1].TOI)
		}
	}
}

func TestCastRayTracksMovedStaticBody(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("wall", BodyStatic))
	g.Get(body).LocalTransform().SetPosition(Vec2{100, 0})
	shape := g.AddNode(NewColliderNode("wall-circle", CircleShape(10)))
	g.LinkNodes(shape, body)
	g.Update(frameSize(), testFrame)

	// Teleport the static body; the next update must re-index its shape.
	g.Get(body).LocalTransform().SetPosition(Vec2{300, 0})
	g.Update(frameSize(), testFrame)

	var hits IntersectionList
	g.Physics().CastRay(RayCastOptions{
		Origin: Vec2{0, 0}, Direction: Vec2{1, 0}, MaxLen: 500,
		Groups: AllGroups, SortResults: true,
	}, &hits)
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if math.Abs(hits[0].TOI-290) > 1 {
		t.Errorf("TOI = %v, want about 290 (shape seen at its new pose)", hits[0].TOI)
	}
}

func TestCastRayRespectsGroups(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("wall", BodyStatic))
	g.Get(body).LocalTransform().SetPosition(Vec2{50, 0})
	shape := g.AddNode(NewColliderNode("wall-circle", CircleShape(5)))
	g.Get(shape).Collider.SetCollisionGroups(InteractionGroups{Memberships: 0b01, Filter: 0xffffffff})
	g.LinkNodes(shape, body)
	g.Update(frameSize(), testFrame)

	var hits IntersectionList
	g.Physics().CastRay(RayCastOptions{
		Origin: Vec2{0, 0}, Direction: Vec2{1, 0}, MaxLen: 100,
		Groups: InteractionGroups{Memberships: 0xffffffff, Filter: 0b10},
	}, &hits)
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0 (group filtered)", len(hits))
	}
	g.Physics().CastRay(RayCastOptions{
		Origin: Vec2{0, 0}, Direction: Vec2{1, 0}, MaxLen: 100,
		Groups: InteractionGroups{Memberships: 0xffffffff, Filter: 0b01},
	}, &hits)
	if len(hits) != 1 {
		t.Errorf("hits = %d, want 1 (group matched)", len(hits))
	}
}

func TestCastRayZeroDirection(t *testing.T) {
	g := NewGraph()
	var hits IntersectionList
	hits.Push(Intersection{TOI: 1}) // stale content must be cleared
	g.Physics().CastRay(RayCastOptions{Direction: Vec2{}, MaxLen: 100, Groups: AllGroups}, &hits)
	if len(hits) != 0 {
		t.Errorf("hits = %d, want 0 for a degenerate direction", len(hits))
	}
}

func TestFixedIntersectionListTruncates(t *testing.T) {
	list := NewFixedIntersectionList(2)
	if !list.Push(Intersection{TOI: 1}) || !list.Push(Intersection{TOI: 2}) {
		t.Fatal("pushes under capacity rejected")
	}
	if list.Push(Intersection{TOI: 3}) {
		t.Error("push over capacity accepted")
	}
	if len(list.Hits()) != 2 {
		t.Errorf("len = %d, want 2", len(list.Hits()))
	}
}

func TestIntersectionSortNaNLast(t *testing.T) {
	list := IntersectionList{
		{TOI: math.NaN()},
		{TOI: 5},
		{TOI: math.NaN()},
		{TOI: 1},
	}
	list.Sort()
	if list[0].TOI != 1 || list[1].TOI != 5 {
		t.Errorf("real TOIs not ascending: %v, %v", list[0].TOI, list[1].TOI)
	}
	if !math.IsNaN(list[2].TOI) || !math.IsNaN(list[3].TOI) {
		t.Error("NaN TOIs did not sort after all real values")
	}
}
