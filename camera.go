package grove

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim animates a camera scroll on both axes independently.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Backdrop is a camera-attached background layer. The runtime-side resources
// derived from it are rebuilt lazily; editing the fields or running a prefab
// resolve marks it for rebuild.
type Backdrop struct {
	Texture  string  `json:"texture"`
	Parallax Vec2    `json:"parallax"`
	Tint     Color   `json:"tint"`
	Repeat   bool    `json:"repeat"`

	needsRebuild bool
	built        bool
}

// Invalidate marks the backdrop so its derived resources are rebuilt on the
// next camera update.
func (b *Backdrop) Invalidate() {
	b.needsRebuild = true
}

// IsBuilt reports whether the derived resources are current.
func (b *Backdrop) IsBuilt() bool {
	return b.built && !b.needsRebuild
}

func (b *Backdrop) rebuild(name string) {
	b.built = true
	b.needsRebuild = false
	logInfof("backdrop of camera %s was rebuilt", name)
}

// Camera is the payload of a camera node. The camera's pose comes from the
// node's global transform; the payload adds viewport, zoom, the derived view
// matrices, and the per-frame visibility cache.
type Camera struct {
	// Viewport is normalized: 0..1 in both axes relative to the frame.
	Viewport Rect    `json:"viewport"`
	Zoom     float64 `json:"zoom"`
	Enabled  bool    `json:"enabled"`

	Backdrop *Backdrop `json:"backdrop,omitempty"`

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	frameSize     Vec2

	// visibilityCache holds the handles of nodes visible to this camera,
	// rebuilt every update. Derived state.
	visibilityCache map[Handle]struct{}

	scrollTween *scrollAnim
}

func newCamera(viewport Rect) *Camera {
	return &Camera{
		Viewport:        viewport,
		Zoom:            1,
		Enabled:         true,
		viewMatrix:      identityAffine,
		invViewMatrix:   identityAffine,
		visibilityCache: map[Handle]struct{}{},
	}
}

// ScrollTo animates the camera node to the given world position over duration
// seconds.
func (c *Camera) ScrollTo(g *Graph, self Handle, target Vec2, duration float32, easeFn ease.TweenFunc) {
	pos := g.Get(self).GlobalPosition()
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(pos.X), float32(target.X), duration, easeFn),
		tweenY: gween.New(float32(pos.Y), float32(target.Y), duration, easeFn),
	}
}

// ViewMatrix returns the world-to-screen matrix computed by the last update.
func (c *Camera) ViewMatrix() [6]float64 {
	return c.viewMatrix
}

// InvViewMatrix returns the screen-to-world matrix computed by the last
// update.
func (c *Camera) InvViewMatrix() [6]float64 {
	return c.invViewMatrix
}

// ScreenToWorld converts a screen-space point to world space using the
// matrices of the last update.
func (c *Camera) ScreenToWorld(p Vec2) Vec2 {
	x, y := transformPoint(c.invViewMatrix, p.X, p.Y)
	return Vec2{x, y}
}

// WorldToScreen converts a world-space point to screen space.
func (c *Camera) WorldToScreen(p Vec2) Vec2 {
	x, y := transformPoint(c.viewMatrix, p.X, p.Y)
	return Vec2{x, y}
}

// VisibleBounds returns the world-space rectangle covered by the viewport at
// the last update.
func (c *Camera) VisibleBounds() Rect {
	px := c.viewportPixels()
	corners := [4]Vec2{
		c.ScreenToWorld(Vec2{px.X, px.Y}),
		c.ScreenToWorld(Vec2{px.X + px.Width, px.Y}),
		c.ScreenToWorld(Vec2{px.X, px.Y + px.Height}),
		c.ScreenToWorld(Vec2{px.X + px.Width, px.Y + px.Height}),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, p := range corners[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// IsVisible reports whether the node was inside this camera's view at the
// last update.
func (c *Camera) IsVisible(handle Handle) bool {
	_, ok := c.visibilityCache[handle]
	return ok
}

func (c *Camera) viewportPixels() Rect {
	return Rect{
		X: c.Viewport.X * c.frameSize.X,
		Y: c.Viewport.Y * c.frameSize.Y,
		Width: c.Viewport.Width * c.frameSize.X,
		Height: c.Viewport.Height * c.frameSize.Y,
	}
}

// update advances the scroll animation, recomputes the view matrices, and
// rebuilds the visibility cache. Runs after hierarchical data is current.
func (c *Camera) update(g *Graph, self Handle, frameSize Vec2, dt float64) {
	node := g.Get(self)

	if c.scrollTween != nil {
		pos := node.GlobalPosition()
		target := pos
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(float32(dt))
			target.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(float32(dt))
			target.Y = float64(val)
			c.scrollTween.doneY = done
		}
		// Move through the local transform, translating the world-space
		// delta into the parent's frame by keeping the offset.
		delta := target.Sub(pos)
		local := node.LocalTransform()
		local.SetPosition(local.Position.Add(delta))
		node.globalTransform[4] += delta.X
		node.globalTransform[5] += delta.Y
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	c.frameSize = frameSize
	c.calculateMatrices(node)

	if c.Backdrop != nil && (c.Backdrop.needsRebuild || !c.Backdrop.built) {
		c.Backdrop.rebuild(node.Name)
	}

	c.updateVisibilityCache(g, self)
}

// calculateMatrices derives the view matrices from the node's global pose.
// Scale and pivots are ignored: cameras use the isometric frame, like physics.
func (c *Camera) calculateMatrices(node *Node) {
	px := c.viewportPixels()
	center := translationAffine(px.X+px.Width/2, px.Y+px.Height/2)
	zoom := scaleAffine(c.Zoom, c.Zoom)

	pos := node.GlobalPosition()
	angle := affineAngle(node.globalTransform)
	world := multiplyAffine(translationAffine(pos.X, pos.Y), rotationAffine(angle))

	c.viewMatrix = multiplyAffine(multiplyAffine(center, zoom), invertAffine(world))
	c.invViewMatrix = invertAffine(c.viewMatrix)
}

// updateVisibilityCache collects every node whose bounds intersect the
// visible world rectangle. Nodes without intrinsic dimensions are treated as
// points and always pass the bounds test when hierarchically visible.
func (c *Camera) updateVisibilityCache(g *Graph, self Handle) {
	clear(c.visibilityCache)
	if !c.Enabled {
		return
	}
	bounds := c.VisibleBounds()
	for i := uint32(0); i < g.Capacity(); i++ {
		handle := g.HandleFromIndex(i)
		if handle.IsNone() || handle == self || handle == g.root {
			continue
		}
		node := g.Get(handle)
		if !node.globalVisibility {
			continue
		}
		if nodeIntersects(node, bounds) {
			c.visibilityCache[handle] = struct{}{}
		}
	}
}

// nodeIntersects tests a node's world-space extent against a rectangle.
func nodeIntersects(node *Node, bounds Rect) bool {
	pos := node.GlobalPosition()
	switch node.Type {
	case NodeTypeSprite:
		half := Vec2{node.Sprite.Size.X / 2, node.Sprite.Size.Y / 2}
		return bounds.Intersects(Rect{X: pos.X - half.X, Y: pos.Y - half.Y, Width: half.X * 2, Height: half.Y * 2})
	case NodeTypeLight:
		r := node.Light.Radius
		return bounds.Intersects(Rect{X: pos.X - r, Y: pos.Y - r, Width: r * 2, Height: r * 2})
	case NodeTypeMesh:
		bb, ok := node.Mesh.boundingRect(node.globalTransform)
		if !ok {
			return bounds.Contains(pos.X, pos.Y)
		}
		return bounds.Intersects(bb)
	default:
		return bounds.Contains(pos.X, pos.Y)
	}
}
