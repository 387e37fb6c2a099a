package grove

import (
	"math"
	"math/rand"
)

// Range is a [Min, Max] interval sampled uniformly when spawning particles.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Random returns a random float64 in [Min, Max].
func (r Range) Random() float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rand.Float64()*(r.Max-r.Min)
}

// particle holds per-particle simulation state. Unexported; managed by
// ParticleEmitter.
type particle struct {
	x, y       float64
	vx, vy     float64
	life       float64 // remaining lifetime in seconds
	maxLife    float64 // initial lifetime (for computing t)
	startScale float32
	endScale   float32
	scale      float32
	startAlpha float32
	endAlpha   float32
	alpha      float32
}

// EmitterConfig controls how particles are spawned and behave.
type EmitterConfig struct {
	// MaxParticles is the pool size. New particles are silently dropped when full.
	MaxParticles int `json:"maxParticles"`
	// EmitRate is the number of particles spawned per second.
	EmitRate float64 `json:"emitRate"`
	// Lifetime is the range of particle lifetimes in seconds.
	Lifetime Range `json:"lifetime"`
	// Speed is the range of initial particle speeds in world units per second.
	Speed Range `json:"speed"`
	// Angle is the range of emission angles in radians.
	Angle Range `json:"angle"`
	// StartScale is the range of scale factors at birth, interpolated to EndScale over lifetime.
	StartScale Range `json:"startScale"`
	// EndScale is the range of scale factors at death.
	EndScale Range `json:"endScale"`
	// StartAlpha is the range of alpha values at birth, interpolated to EndAlpha over lifetime.
	StartAlpha Range `json:"startAlpha"`
	// EndAlpha is the range of alpha values at death.
	EndAlpha Range `json:"endAlpha"`
	// Gravity is the constant acceleration applied to all particles each frame.
	Gravity Vec2 `json:"gravity"`
	// Tint is the particle color.
	Tint Color `json:"tint"`
	// WorldSpace, when true, causes particles to keep their world position
	// once emitted rather than following the emitter node.
	WorldSpace bool `json:"worldSpace"`
}

// ParticleEmitter is the payload of a particle emitter node: a pool of
// CPU-simulated particles.
type ParticleEmitter struct {
	Config EmitterConfig `json:"config"`

	particles []particle
	alive     int
	emitAccum float64
	active    bool
}

// newParticleEmitter creates a ParticleEmitter with a preallocated pool.
func newParticleEmitter(cfg EmitterConfig) *ParticleEmitter {
	max := cfg.MaxParticles
	if max <= 0 {
		max = 128
	}
	return &ParticleEmitter{
		Config:    cfg,
		particles: make([]particle, max),
	}
}

// Start begins emitting particles.
func (e *ParticleEmitter) Start() {
	e.active = true
}

// Stop stops emitting new particles. Existing particles continue to live out.
func (e *ParticleEmitter) Stop() {
	e.active = false
}

// Reset stops emitting and kills all alive particles.
func (e *ParticleEmitter) Reset() {
	e.active = false
	e.alive = 0
	e.emitAccum = 0
}

// IsActive reports whether the emitter is currently emitting new particles.
func (e *ParticleEmitter) IsActive() bool {
	return e.active
}

// AliveCount returns the number of alive particles.
func (e *ParticleEmitter) AliveCount() int {
	return e.alive
}

// ParticleState is a renderer-facing snapshot of one alive particle.
// Positions are emitter-local unless the emitter is configured WorldSpace.
type ParticleState struct {
	Position Vec2
	Scale    float32
	Alpha    float32
}

// EachAlive visits every alive particle.
func (e *ParticleEmitter) EachAlive(f func(ParticleState)) {
	for i := 0; i < e.alive; i++ {
		p := &e.particles[i]
		f(ParticleState{Position: Vec2{p.x, p.y}, Scale: p.scale, Alpha: p.alpha})
	}
}

// update advances particle simulation by dt seconds. node supplies the
// emitter's world position for world-space spawning.
func (e *ParticleEmitter) update(node *Node, dt float64) {
	if e.particles == nil {
		// Freshly deserialized or copied emitter.
		max := e.Config.MaxParticles
		if max <= 0 {
			max = 128
		}
		e.particles = make([]particle, max)
	}

	gx := e.Config.Gravity.X * dt
	gy := e.Config.Gravity.Y * dt

	// Update existing particles, swap-remove dead ones.
	i := 0
	for i < e.alive {
		p := &e.particles[i]
		p.life -= dt
		if p.life <= 0 {
			// Swap with last alive particle.
			e.alive--
			e.particles[i] = e.particles[e.alive]
			continue
		}

		p.vx += gx
		p.vy += gy
		p.x += p.vx * dt
		p.y += p.vy * dt

		t := float32(1.0 - p.life/p.maxLife)
		p.scale = lerp32(p.startScale, p.endScale, t)
		p.alpha = lerp32(p.startAlpha, p.endAlpha, t)

		i++
	}

	// Emit new particles.
	if e.active && e.Config.EmitRate > 0 {
		e.emitAccum += e.Config.EmitRate * dt
		for e.emitAccum >= 1.0 {
			e.emitAccum -= 1.0
			if e.alive < len(e.particles) {
				e.spawnParticle(node)
			}
		}
	}
}

// spawnParticle initializes the particle at slot e.alive and increments alive.
func (e *ParticleEmitter) spawnParticle(node *Node) {
	p := &e.particles[e.alive]

	angle := e.Config.Angle.Random()
	speed := e.Config.Speed.Random()
	p.vx = math.Cos(angle) * speed
	p.vy = math.Sin(angle) * speed

	if e.Config.WorldSpace {
		pos := node.GlobalPosition()
		p.x = pos.X
		p.y = pos.Y
	} else {
		p.x = 0
		p.y = 0
	}

	p.life = e.Config.Lifetime.Random()
	if p.life <= 0 {
		p.life = 1.0
	}
	p.maxLife = p.life

	p.startScale = float32(e.Config.StartScale.Random())
	p.endScale = float32(e.Config.EndScale.Random())
	p.scale = p.startScale

	p.startAlpha = float32(e.Config.StartAlpha.Random())
	p.endAlpha = float32(e.Config.EndAlpha.Random())
	p.alpha = p.startAlpha

	e.alive++
}

// lerp32 linearly interpolates between a and b by t (float32).
func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}
