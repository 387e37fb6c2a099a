package grove

import (
	"time"

	"github.com/jakecoffman/cp"
)

// PhysicsPerformanceStatistics accumulates time spent inside the simulation.
type PhysicsPerformanceStatistics struct {
	StepTime        time.Duration
	TotalRayCastTime time.Duration
}

// Reset zeroes the counters. Call once per frame if you want per-frame
// numbers.
func (s *PhysicsPerformanceStatistics) Reset() {
	*s = PhysicsPerformanceStatistics{}
}

// PhysicsWorld owns the backing simulation space. It is created together with
// a Graph and never shared between graphs: collider shapes registered here
// resolve back to handles of that one graph.
type PhysicsWorld struct {
	// Enabled gates stepping. Synchronization of node state into the
	// simulation still runs while disabled, so toggling it back on resumes
	// from current node state.
	Enabled bool

	space       *cp.Space
	gravity     Vec2
	colliderMap map[*cp.Shape]Handle
	performance PhysicsPerformanceStatistics
}

func newPhysicsWorld() *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 4
	w := &PhysicsWorld{
		Enabled:     true,
		space:       space,
		colliderMap: map[*cp.Shape]Handle{},
	}
	w.SetGravity(Vec2{0, 9.81})
	return w
}

// Gravity returns the world gravity vector.
func (w *PhysicsWorld) Gravity() Vec2 {
	return w.gravity
}

// SetGravity sets the world gravity vector, in world units per second squared
// with Y pointing down.
func (w *PhysicsWorld) SetGravity(g Vec2) {
	w.gravity = g
	w.space.SetGravity(cp.Vector{X: g.X, Y: g.Y})
}

// Iterations returns the solver iteration count.
func (w *PhysicsWorld) Iterations() uint {
	return w.space.Iterations
}

// SetIterations sets the solver iteration count. More iterations trade speed
// for stiffer contacts and joints.
func (w *PhysicsWorld) SetIterations(n uint) {
	w.space.Iterations = n
}

// Performance returns the accumulated timing counters.
func (w *PhysicsWorld) Performance() PhysicsPerformanceStatistics {
	return w.performance
}

// Step advances the simulation by dt seconds. Does nothing while the world is
// disabled.
func (w *PhysicsWorld) Step(dt float64) {
	if !w.Enabled {
		return
	}
	start := time.Now()
	w.space.Step(dt)
	w.performance.StepTime += time.Since(start)
}

// Space exposes the backing simulation space for advanced use. Bodies and
// shapes added behind the graph's back will not be tracked by it.
func (w *PhysicsWorld) Space() *cp.Space {
	return w.space
}

func (w *PhysicsWorld) addBody(body *cp.Body) {
	w.space.AddBody(body)
}

// removeBody removes the body from the space. Shapes and constraints attached
// to it must already be gone; Graph.removeNative guarantees that order.
func (w *PhysicsWorld) removeBody(body *cp.Body) {
	w.space.RemoveBody(body)
}

func (w *PhysicsWorld) addShape(shape *cp.Shape, owner Handle) {
	w.space.AddShape(shape)
	w.colliderMap[shape] = owner
}

func (w *PhysicsWorld) removeShape(shape *cp.Shape) {
	delete(w.colliderMap, shape)
	w.space.RemoveShape(shape)
}

func (w *PhysicsWorld) addConstraint(c *cp.Constraint) {
	w.space.AddConstraint(c)
}

func (w *PhysicsWorld) removeConstraint(c *cp.Constraint) {
	w.space.RemoveConstraint(c)
}

// ColliderOfShape maps a raw simulation shape back to the collider node that
// owns it. Useful inside collision callbacks installed on Space directly.
func (w *PhysicsWorld) ColliderOfShape(shape *cp.Shape) (Handle, bool) {
	h, ok := w.colliderMap[shape]
	return h, ok
}
