package grove

import (
	"math"
	"sort"
	"time"

	"github.com/jakecoffman/cp"
)

// FeatureKind classifies the shape feature a ray hit.
type FeatureKind uint8

const (
	// FeatureUnknown means the simulation did not report a specific feature.
	FeatureUnknown FeatureKind = iota
	FeatureVertex
	FeatureEdge
	FeatureFace
)

// Feature identifies the sub-element of a shape hit by a ray.
type Feature struct {
	Kind  FeatureKind
	Index uint32
}

// Intersection is one ray hit.
type Intersection struct {
	// Collider is the collider node whose shape was hit.
	Collider Handle
	Normal   Vec2
	Position Vec2
	Feature  Feature
	// TOI is the distance from the ray origin to the hit, in world units.
	TOI float64
}

// RayCastOptions describes a ray query.
type RayCastOptions struct {
	Origin Vec2
	// Direction need not be normalized; its length is ignored.
	Direction Vec2
	MaxLen    float64
	// Groups filters which colliders the ray can hit, with the same
	// memberships/filter semantics as collision groups.
	Groups InteractionGroups
	// SortResults orders hits by ascending TOI. NaN TOI values sort after
	// every real value.
	SortResults bool
}

// QueryResultsStorage collects ray hits. Push reports whether the hit was
// stored; a bounded implementation returns false when full, which stops
// the query from collecting further hits.
type QueryResultsStorage interface {
	Push(Intersection) bool
	Clear()
	Sort()
}

// intersectionLess orders by ascending TOI with NaN after all real values.
func intersectionLess(a, b Intersection) bool {
	if math.IsNaN(a.TOI) {
		return false
	}
	if math.IsNaN(b.TOI) {
		return true
	}
	return a.TOI < b.TOI
}

// IntersectionList is a growable QueryResultsStorage.
type IntersectionList []Intersection

func (l *IntersectionList) Push(i Intersection) bool {
	*l = append(*l, i)
	return true
}

func (l *IntersectionList) Clear() {
	*l = (*l)[:0]
}

func (l *IntersectionList) Sort() {
	s := *l
	sort.Slice(s, func(i, j int) bool { return intersectionLess(s[i], s[j]) })
}

// FixedIntersectionList is a QueryResultsStorage with a fixed capacity. Hits
// past the capacity are dropped and Push returns false.
type FixedIntersectionList struct {
	hits []Intersection
}

// NewFixedIntersectionList allocates storage for at most capacity hits.
func NewFixedIntersectionList(capacity int) *FixedIntersectionList {
	return &FixedIntersectionList{hits: make([]Intersection, 0, capacity)}
}

func (l *FixedIntersectionList) Push(i Intersection) bool {
	if len(l.hits) == cap(l.hits) {
		return false
	}
	l.hits = append(l.hits, i)
	return true
}

func (l *FixedIntersectionList) Clear() {
	l.hits = l.hits[:0]
}

func (l *FixedIntersectionList) Sort() {
	sort.Slice(l.hits, func(i, j int) bool { return intersectionLess(l.hits[i], l.hits[j]) })
}

// Hits returns the collected intersections.
func (l *FixedIntersectionList) Hits() []Intersection {
	return l.hits
}

// CastRay queries the world with a ray and stores hits into storage. The
// storage is cleared first. Dynamic shapes are indexed at their pose from the
// last Step; static shapes are re-indexed whenever their body is teleported,
// so the query always sees colliders at their current pose.
func (w *PhysicsWorld) CastRay(opts RayCastOptions, storage QueryResultsStorage) {
	start := time.Now()
	defer func() {
		w.performance.TotalRayCastTime += time.Since(start)
	}()

	storage.Clear()

	dir := opts.Direction.Normalized()
	if dir == (Vec2{}) || opts.MaxLen <= 0 {
		return
	}
	end := opts.Origin.Add(dir.Scale(opts.MaxLen))
	filter := cp.NewShapeFilter(
		cp.NO_GROUP,
		uint(opts.Groups.Memberships),
		uint(opts.Groups.Filter),
	)
	full := false
	w.space.SegmentQuery(
		cp.Vector{X: opts.Origin.X, Y: opts.Origin.Y},
		cp.Vector{X: end.X, Y: end.Y},
		0,
		filter,
		func(shape *cp.Shape, point, normal cp.Vector, alpha float64, _ interface{}) {
			if full {
				return
			}
			owner, ok := w.colliderMap[shape]
			if !ok {
				return
			}
			stored := storage.Push(Intersection{
				Collider: owner,
				Normal:   Vec2{normal.X, normal.Y},
				Position: Vec2{point.X, point.Y},
				Feature:  Feature{Kind: FeatureUnknown},
				TOI:      alpha * opts.MaxLen,
			})
			if !stored {
				full = true
			}
		},
		nil,
	)
	if opts.SortResults {
		storage.Sort()
	}
}
