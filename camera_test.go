package grove

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestCameraScreenWorldRoundTrip(t *testing.T) {
	g := NewGraph()
	camera := g.AddNode(NewCameraNode("camera", Rect{0, 0, 1, 1}))
	g.Get(camera).LocalTransform().SetPosition(Vec2{100, -50})
	g.Update(frameSize(), testFrame)

	c := g.Get(camera).Camera
	// The camera position lands in the viewport center.
	center := c.WorldToScreen(Vec2{100, -50})
	assertVec2Near(t, "center", center, Vec2{320, 240})

	world := Vec2{37, -211}
	back := c.ScreenToWorld(c.WorldToScreen(world))
	assertVec2Near(t, "round trip", back, world)
}

func TestCameraZoomScalesView(t *testing.T) {
	g := NewGraph()
	camera := g.AddNode(NewCameraNode("camera", Rect{0, 0, 1, 1}))
	g.Get(camera).Camera.Zoom = 2
	g.Update(frameSize(), testFrame)

	c := g.Get(camera).Camera
	// A point 10 world units right of the camera is 20 pixels from center.
	screen := c.WorldToScreen(Vec2{10, 0})
	assertVec2Near(t, "zoomed point", screen, Vec2{340, 240})

	bounds := c.VisibleBounds()
	assertNear(t, "width", bounds.Width, 320)
	assertNear(t, "height", bounds.Height, 240)
}

func TestCameraVisibleBounds(t *testing.T) {
	g := NewGraph()
	camera := g.AddNode(NewCameraNode("camera", Rect{0, 0, 1, 1}))
	g.Get(camera).LocalTransform().SetPosition(Vec2{1000, 500})
	g.Update(frameSize(), testFrame)

	bounds := g.Get(camera).Camera.VisibleBounds()
	assertNear(t, "x", bounds.X, 1000-320)
	assertNear(t, "y", bounds.Y, 500-240)
	assertNear(t, "width", bounds.Width, 640)
	assertNear(t, "height", bounds.Height, 480)
}

func TestCameraVisibilityCache(t *testing.T) {
	g := NewGraph()
	camera := g.AddNode(NewCameraNode("camera", Rect{0, 0, 1, 1}))
	inside := g.AddNode(NewSpriteNode("inside", Vec2{16, 16}))
	outside := g.AddNode(NewSpriteNode("outside", Vec2{16, 16}))
	straddling := g.AddNode(NewSpriteNode("straddling", Vec2{64, 64}))
	hidden := g.AddNode(NewSpriteNode("hidden", Vec2{16, 16}))

	g.Get(outside).LocalTransform().SetPosition(Vec2{5000, 5000})
	// Center outside the view, but the sprite half-extent reaches back in.
	g.Get(straddling).LocalTransform().SetPosition(Vec2{-330, 0})
	g.Get(hidden).Visible = false
	g.Update(frameSize(), testFrame)

	c := g.Get(camera).Camera
	if !c.IsVisible(inside) {
		t.Error("sprite inside the view not in the cache")
	}
	if c.IsVisible(outside) {
		t.Error("sprite far outside the view is in the cache")
	}
	if !c.IsVisible(straddling) {
		t.Error("sprite overlapping the view edge not in the cache")
	}
	if c.IsVisible(hidden) {
		t.Error("invisible sprite is in the cache")
	}
	if c.IsVisible(camera) {
		t.Error("camera sees itself")
	}
}

func TestCameraDisabledEmptiesCache(t *testing.T) {
	g := NewGraph()
	camera := g.AddNode(NewCameraNode("camera", Rect{0, 0, 1, 1}))
	sprite := g.AddNode(NewSpriteNode("sprite", Vec2{16, 16}))
	g.Update(frameSize(), testFrame)
	if !g.Get(camera).Camera.IsVisible(sprite) {
		t.Fatal("sprite not visible while enabled")
	}
	g.Get(camera).Camera.Enabled = false
	g.Update(frameSize(), testFrame)
	if g.Get(camera).Camera.IsVisible(sprite) {
		t.Error("disabled camera still reports visibility")
	}
}

func TestCameraScrollTo(t *testing.T) {
	g := NewGraph()
	camera := g.AddNode(NewCameraNode("camera", Rect{0, 0, 1, 1}))
	g.Update(frameSize(), testFrame)

	g.Get(camera).Camera.ScrollTo(g, camera, Vec2{200, 100}, 0.5, ease.Linear)
	for i := 0; i < 60; i++ {
		g.Update(frameSize(), testFrame)
	}
	assertVec2Near(t, "scrolled position", g.Get(camera).GlobalPosition(), Vec2{200, 100})
	if g.Get(camera).Camera.scrollTween != nil {
		t.Error("scroll animation not released after finishing")
	}
	// The view follows: the target point is now the viewport center.
	center := g.Get(camera).Camera.WorldToScreen(Vec2{200, 100})
	assertVec2Near(t, "center after scroll", center, Vec2{320, 240})
}

func TestCameraSplitViewport(t *testing.T) {
	g := NewGraph()
	left := g.AddNode(NewCameraNode("left", Rect{0, 0, 0.5, 1}))
	g.Update(frameSize(), testFrame)

	c := g.Get(left).Camera
	// Half-width viewport centers at a quarter of the frame.
	assertVec2Near(t, "center", c.WorldToScreen(Vec2{0, 0}), Vec2{160, 240})
	bounds := c.VisibleBounds()
	assertNear(t, "width", bounds.Width, 320)
	assertNear(t, "height", bounds.Height, 480)
}
