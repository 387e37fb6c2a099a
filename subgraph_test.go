package grove

import "testing"

func buildChain(t *testing.T) (*Graph, Handle, Handle, Handle) {
	t.Helper()
	g := NewGraph()
	a := g.AddNode(NewBaseNode("a"))
	b := g.AddNode(NewBaseNode("b"))
	c := g.AddNode(NewBaseNode("c"))
	g.LinkNodes(b, a)
	g.LinkNodes(c, b)
	return g, a, b, c
}

func TestTakeReserveBlocksAccess(t *testing.T) {
	g, a, _, _ := buildChain(t)
	ticket, node := g.TakeReserve(a)
	if node.Name != "a" {
		t.Fatalf("took %q, want a", node.Name)
	}
	if g.IsValidHandle(a) {
		t.Error("handle valid while slot reserved")
	}
	g.PutBack(ticket, node)
	if !g.IsValidHandle(a) {
		t.Error("handle invalid after PutBack")
	}
}

func TestTakeReserveSubGraphPreservesHandles(t *testing.T) {
	g, a, b, c := buildChain(t)
	sub := g.TakeReserveSubGraph(a)
	for _, h := range []Handle{a, b, c} {
		if g.IsValidHandle(h) {
			t.Errorf("handle %v valid while subtree taken out", h)
		}
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1 (root)", g.NodeCount())
	}

	back := g.PutSubGraphBack(sub)
	if back != a {
		t.Errorf("restored root = %v, want %v", back, a)
	}
	for _, h := range []Handle{a, b, c} {
		if !g.IsValidHandle(h) {
			t.Errorf("handle %v invalid after put back", h)
		}
	}
	// Structure restored intact.
	if g.Get(b).Parent != a || g.Get(c).Parent != b {
		t.Error("hierarchy links lost across take/put-back")
	}
	if g.Get(a).Parent != g.Root() {
		t.Error("restored root not linked under graph root")
	}
}

func TestTakeReserveSubGraphBlocksSlotReuse(t *testing.T) {
	g, a, b, c := buildChain(t)
	sub := g.TakeReserveSubGraph(a)
	fresh := g.AddNode(NewBaseNode("fresh"))
	for _, h := range []Handle{a, b, c} {
		if fresh.Index == h.Index {
			t.Errorf("reserved slot %d reused while subtree taken out", h.Index)
		}
	}
	g.PutSubGraphBack(sub)
}

func TestTakeSubGraphDestroysAndRebuildsNatives(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyStatic))
	shape := g.AddNode(NewColliderNode("shape", CircleShape(5)))
	g.LinkNodes(shape, body)
	g.Update(frameSize(), testFrame)

	sub := g.TakeReserveSubGraph(body)
	if sub.Root().Body.HasNative() {
		t.Error("taken body kept its backing body")
	}
	if g.PutSubGraphBack(sub) != body {
		t.Error("put back did not restore the original handle")
	}
	g.Update(frameSize(), testFrame)
	if !g.Get(body).Body.HasNative() || !g.Get(shape).Collider.HasNative() {
		t.Error("backing entities not rebuilt after put back")
	}
}

func TestForgetSubGraphInvalidatesHandles(t *testing.T) {
	g, a, b, c := buildChain(t)
	sub := g.TakeReserveSubGraph(a)
	g.ForgetSubGraph(sub)
	// Slots are reusable again and reissue strictly newer generations.
	fresh := g.AddNode(NewBaseNode("fresh"))
	for _, h := range []Handle{a, b, c} {
		if g.IsValidHandle(h) {
			t.Errorf("handle %v valid after forget", h)
		}
		if fresh.Index == h.Index && fresh.Generation <= h.Generation {
			t.Error("reused slot did not bump generation")
		}
	}
}
