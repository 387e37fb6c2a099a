package grove

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPosition(t *testing.T) {
	g := NewGraph()
	node := g.AddNode(NewBaseNode("node"))
	tween := TweenPosition(g, node, Vec2{100, 50}, 1, ease.Linear)

	tween.Update(0.5)
	assertVec2Near(t, "halfway", g.Get(node).Local.Position, Vec2{50, 25})
	if tween.Done {
		t.Error("tween done at the halfway point")
	}
	if !g.Get(node).Local.Custom.Has(FieldPosition) {
		t.Error("tween writes bypassed the customized-field tracking")
	}

	tween.Update(0.5)
	assertVec2Near(t, "finished", g.Get(node).Local.Position, Vec2{100, 50})
	if !tween.Done {
		t.Error("tween not done after the full duration")
	}
}

func TestTweenRotationAndScale(t *testing.T) {
	g := NewGraph()
	node := g.AddNode(NewBaseNode("node"))
	rot := TweenRotation(g, node, 3, 1, ease.Linear)
	scale := TweenScale(g, node, Vec2{2, 4}, 1, ease.Linear)

	rot.Update(1)
	scale.Update(1)
	assertNear(t, "rotation", g.Get(node).Local.Rotation, 3)
	assertVec2Near(t, "scale", g.Get(node).Local.Scale, Vec2{2, 4})
}

func TestTweenStopsOnStaleHandle(t *testing.T) {
	g := NewGraph()
	node := g.AddNode(NewBaseNode("doomed"))
	tween := TweenPosition(g, node, Vec2{100, 0}, 1, ease.Linear)
	tween.Update(0.25)
	g.RemoveNode(node)

	tween.Update(0.25)
	if !tween.Done {
		t.Error("tween kept running against a stale handle")
	}
	// Further updates stay inert.
	tween.Update(0.25)
}

func TestTweenSpriteColor(t *testing.T) {
	g := NewGraph()
	sprite := g.AddNode(NewSpriteNode("sprite", Vec2{16, 16}))
	g.Get(sprite).Sprite.Color = Color{0, 0, 0, 1}
	tween := TweenSpriteColor(g, sprite, Color{1, 0.5, 0, 1}, 1, ease.Linear)

	tween.Update(1)
	got := g.Get(sprite).Sprite.Color
	assertNear(t, "r", got.R, 1)
	assertNear(t, "g", got.G, 0.5)
	assertNear(t, "b", got.B, 0)
	assertNear(t, "a", got.A, 1)
	if !tween.Done {
		t.Error("tween not done after the full duration")
	}
}

func TestTweenSpriteColorPanicsOnNonSprite(t *testing.T) {
	g := NewGraph()
	node := g.AddNode(NewBaseNode("plain"))
	defer func() {
		if recover() == nil {
			t.Error("TweenSpriteColor on a non-sprite node did not panic")
		}
	}()
	TweenSpriteColor(g, node, ColorWhite, 1, ease.Linear)
}

func TestTweenDrivesPhysicsBody(t *testing.T) {
	g := NewGraph()
	body := g.AddNode(NewRigidBodyNode("body", BodyKinematic))
	g.Update(frameSize(), testFrame)

	tween := TweenPosition(g, body, Vec2{50, 0}, 1, ease.Linear)
	tween.Update(1)
	if !g.Get(body).Body.TransformModified {
		t.Fatal("tween write did not flag the body transform")
	}
	g.Update(frameSize(), testFrame)
	pos := g.Get(body).Body.NativeBody().Position()
	assertNear(t, "native x", pos.X, 50)
}
