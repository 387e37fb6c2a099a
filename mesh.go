package grove

import "math"

// Vertex is one mesh vertex with optional skinning data. A vertex is bound to
// at most four bones; weights are expected to sum to 1 when bones are used.
type Vertex struct {
	Position    Vec2       `json:"position"`
	BoneIndices [4]uint8   `json:"boneIndices"`
	BoneWeights [4]float64 `json:"boneWeights"`
}

// Surface is one drawable piece of a mesh: vertices, a triangle index list,
// and the skeleton bones deforming it. Bones are node handles into the same
// graph; they are remapped when a hierarchy is deep-copied.
type Surface struct {
	Vertices []Vertex `json:"vertices"`
	Indices  []uint16 `json:"indices"`
	Bones    []Handle `json:"bones,omitempty"`

	// skinned holds the world-space vertex positions of the last update.
	// Derived state, only present for skinned surfaces.
	skinned []Vec2
}

// NewSurface builds a surface from raw geometry.
func NewSurface(vertices []Vertex, indices []uint16) *Surface {
	return &Surface{Vertices: vertices, Indices: indices}
}

// SkinnedPositions returns the world-space vertex positions computed by the
// last update, or nil for an unskinned surface.
func (s *Surface) SkinnedPositions() []Vec2 {
	return s.skinned
}

// Mesh is the payload of a mesh node.
type Mesh struct {
	Surfaces []*Surface `json:"surfaces"`
}

// update recomputes skinned vertex positions. Each bone contributes its
// global transform composed with its inverse bind pose; a vertex is the
// weighted sum of its bone contributions. Runs after hierarchical data is
// current so bone global transforms are fresh.
func (m *Mesh) update(g *Graph) {
	for _, surface := range m.Surfaces {
		if len(surface.Bones) == 0 {
			surface.skinned = nil
			continue
		}
		matrices := make([][6]float64, len(surface.Bones))
		for i, bone := range surface.Bones {
			boneNode, ok := g.pool.Get(bone)
			if !ok {
				matrices[i] = identityAffine
				continue
			}
			matrices[i] = multiplyAffine(boneNode.globalTransform, boneNode.InvBindPose)
		}
		if cap(surface.skinned) < len(surface.Vertices) {
			surface.skinned = make([]Vec2, len(surface.Vertices))
		}
		surface.skinned = surface.skinned[:len(surface.Vertices)]
		for vi := range surface.Vertices {
			v := &surface.Vertices[vi]
			var out Vec2
			for k := 0; k < 4; k++ {
				w := v.BoneWeights[k]
				if w == 0 {
					continue
				}
				bi := int(v.BoneIndices[k])
				if bi >= len(matrices) {
					continue
				}
				x, y := transformPoint(matrices[bi], v.Position.X, v.Position.Y)
				out.X += x * w
				out.Y += y * w
			}
			surface.skinned[vi] = out
		}
	}
}

// boundingRect returns the world-space bounding rectangle of the mesh, using
// skinned positions where present and transforming raw vertices by global
// otherwise. Returns false for an empty mesh.
func (m *Mesh) boundingRect(global [6]float64) (Rect, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	any := false
	for _, surface := range m.Surfaces {
		if surface.skinned != nil {
			for _, p := range surface.skinned {
				minX = math.Min(minX, p.X)
				minY = math.Min(minY, p.Y)
				maxX = math.Max(maxX, p.X)
				maxY = math.Max(maxY, p.Y)
				any = true
			}
			continue
		}
		for i := range surface.Vertices {
			x, y := transformPoint(global, surface.Vertices[i].Position.X, surface.Vertices[i].Position.Y)
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
			any = true
		}
	}
	if !any {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}
