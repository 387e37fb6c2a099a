package grove

// NodeType discriminates the closed set of node variants. Every switch over
// node kinds in this package covers the full set, so adding a variant means
// visiting each of them.
type NodeType uint8

const (
	NodeTypeBase NodeType = iota
	NodeTypeSprite
	NodeTypeMesh
	NodeTypeCamera
	NodeTypeLight
	NodeTypeParticleEmitter
	NodeTypeTilemap
	NodeTypeRigidBody
	NodeTypeCollider
	NodeTypeJoint
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeBase:
		return "Base"
	case NodeTypeSprite:
		return "Sprite"
	case NodeTypeMesh:
		return "Mesh"
	case NodeTypeCamera:
		return "Camera"
	case NodeTypeLight:
		return "Light"
	case NodeTypeParticleEmitter:
		return "ParticleEmitter"
	case NodeTypeTilemap:
		return "Tilemap"
	case NodeTypeRigidBody:
		return "RigidBody"
	case NodeTypeCollider:
		return "Collider"
	case NodeTypeJoint:
		return "Joint"
	default:
		return "Unknown"
	}
}
