package grove

// PropertyKind discriminates the value held by a Property.
type PropertyKind uint8

const (
	PropertyFloat PropertyKind = iota
	PropertyInt
	PropertyString
	PropertyBool
	PropertyNodeHandle
)

// PropertyValue is the flat one-of value of a generic node property.
// NodeHandle values are remapped when a hierarchy is deep-copied.
type PropertyValue struct {
	Kind       PropertyKind `json:"kind"`
	Float      float64      `json:"float,omitempty"`
	Int        int64        `json:"int,omitempty"`
	String     string       `json:"string,omitempty"`
	Bool       bool         `json:"bool,omitempty"`
	NodeHandle Handle       `json:"nodeHandle,omitzero"`
}

// Property is a named generic value attached to a node. Order is preserved.
type Property struct {
	Name  string        `json:"name"`
	Value PropertyValue `json:"value"`
}

// LODLevel is one detail level: the objects shown while the observer distance
// is within [Begin, End).
type LODLevel struct {
	Begin   float64  `json:"begin"`
	End     float64  `json:"end"`
	Objects []Handle `json:"objects"`
}

// LODGroup switches sets of nodes on and off by observer distance. The object
// handles are remapped when a hierarchy is deep-copied; entries whose referent
// was not copied are dropped.
type LODGroup struct {
	Levels []LODLevel `json:"levels"`
}

// Node is one element of the scene graph. A single flat struct with a type
// tag and payload pointers is used for all variants, avoiding interface
// dispatch on the hot path.
//
// Parent and Children are maintained by Graph; mutate them only through
// Graph.LinkNodes / Graph.UnlinkNode / Graph.RemoveNode.
type Node struct {
	Name string   `json:"name"`
	Type NodeType `json:"type"`

	Parent   Handle   `json:"parent,omitzero"`
	Children []Handle `json:"children,omitempty"`

	Local   Transform `json:"local"`
	Visible bool      `json:"visible"`

	// Lifetime is the remaining life in seconds; nil means unlimited.
	// Graph.Update decays it and removes the node when it reaches zero.
	Lifetime *float64 `json:"lifetime,omitempty"`

	// Prefab links this node to the template it was instantiated from.
	Prefab *Prefab `json:"prefab,omitempty"`
	// OriginalHandle is the handle of the matching node inside the
	// template's own graph. Resolve keeps it up to date.
	OriginalHandle       Handle `json:"originalHandle,omitzero"`
	IsPrefabInstanceRoot bool   `json:"isPrefabInstanceRoot,omitempty"`

	// InvBindPose is the inverse bind-pose matrix used when this node acts
	// as a skeleton bone. Copied from the template during resolve.
	InvBindPose [6]float64 `json:"invBindPose"`

	Properties []Property `json:"properties,omitempty"`
	LODGroup   *LODGroup  `json:"lodGroup,omitempty"`

	// Variant payloads; exactly the one matching Type is non-nil
	// (all nil for Base).
	Sprite   *Sprite          `json:"sprite,omitempty"`
	Mesh     *Mesh            `json:"mesh,omitempty"`
	Camera   *Camera          `json:"camera,omitempty"`
	Light    *Light           `json:"light,omitempty"`
	Emitter  *ParticleEmitter `json:"emitter,omitempty"`
	Tilemap  *Tilemap         `json:"tilemap,omitempty"`
	Body     *RigidBody       `json:"body,omitempty"`
	Collider *Collider        `json:"collider,omitempty"`
	Joint    *Joint           `json:"joint,omitempty"`

	// Derived caches, valid only after Graph.UpdateHierarchicalData.
	globalTransform  [6]float64
	globalVisibility bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.Local = NewTransform()
	n.Visible = true
	n.InvBindPose = identityAffine
	n.globalTransform = identityAffine
	n.globalVisibility = true
}

// NewBaseNode creates a plain transform node with no payload.
func NewBaseNode(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeBase}
	nodeDefaults(n)
	return n
}

// NewSpriteNode creates a colored-quad node of the given size.
func NewSpriteNode(name string, size Vec2) *Node {
	n := &Node{Name: name, Type: NodeTypeSprite, Sprite: &Sprite{Size: size, Color: ColorWhite}}
	nodeDefaults(n)
	return n
}

// NewMeshNode creates a mesh node from the given surfaces.
func NewMeshNode(name string, surfaces ...*Surface) *Node {
	n := &Node{Name: name, Type: NodeTypeMesh, Mesh: &Mesh{Surfaces: surfaces}}
	nodeDefaults(n)
	return n
}

// NewCameraNode creates a camera node with a normalized viewport
// (0..1 in both axes).
func NewCameraNode(name string, viewport Rect) *Node {
	n := &Node{Name: name, Type: NodeTypeCamera, Camera: newCamera(viewport)}
	nodeDefaults(n)
	return n
}

// NewLightNode creates a point light node.
func NewLightNode(name string, radius float64, color Color) *Node {
	n := &Node{Name: name, Type: NodeTypeLight, Light: &Light{Radius: radius, Color: color, Enabled: true}}
	nodeDefaults(n)
	return n
}

// NewEmitterNode creates a particle emitter node with a preallocated pool.
func NewEmitterNode(name string, cfg EmitterConfig) *Node {
	n := &Node{Name: name, Type: NodeTypeParticleEmitter, Emitter: newParticleEmitter(cfg)}
	nodeDefaults(n)
	return n
}

// NewTilemapNode creates a tile terrain node.
func NewTilemapNode(name string, tm *Tilemap) *Node {
	n := &Node{Name: name, Type: NodeTypeTilemap, Tilemap: tm}
	nodeDefaults(n)
	return n
}

// NewRigidBodyNode creates a rigid body node. The backing simulation body is
// constructed lazily on the next Graph.Update.
func NewRigidBodyNode(name string, bodyType BodyType) *Node {
	n := &Node{Name: name, Type: NodeTypeRigidBody, Body: newRigidBody(bodyType)}
	nodeDefaults(n)
	return n
}

// NewColliderNode creates a collider node. The backing simulation shape is
// constructed lazily once the node is linked under a rigid body with a live
// backing body.
func NewColliderNode(name string, shape ColliderShape) *Node {
	n := &Node{Name: name, Type: NodeTypeCollider, Collider: newCollider(shape)}
	nodeDefaults(n)
	return n
}

// NewJointNode creates a joint node referencing two rigid body nodes. The
// backing constraint is constructed lazily once both bodies are live.
func NewJointNode(name string, params JointParams, body1, body2 Handle) *Node {
	n := &Node{Name: name, Type: NodeTypeJoint, Joint: newJoint(params, body1, body2)}
	nodeDefaults(n)
	return n
}

// LocalTransform returns the node's local transform for mutation. For
// RigidBody and Collider nodes this marks the transform as user-modified, so
// the next sync pass pushes it into the simulation instead of letting the
// simulation overwrite it.
func (n *Node) LocalTransform() *Transform {
	switch n.Type {
	case NodeTypeRigidBody:
		n.Body.TransformModified = true
	case NodeTypeCollider:
		n.Collider.TransformModified = true
	}
	return &n.Local
}

// GlobalTransform returns the cached world transform. Derived state: valid
// only after the last UpdateHierarchicalData.
func (n *Node) GlobalTransform() [6]float64 {
	return n.globalTransform
}

// GlobalPosition returns the cached world position.
func (n *Node) GlobalPosition() Vec2 {
	return affineTranslation(n.globalTransform)
}

// GlobalVisibility returns the cached combined visibility: the AND of this
// node's Visible flag with every ancestor's.
func (n *Node) GlobalVisibility() bool {
	return n.globalVisibility
}

// SetLifetime makes the node self-destruct after the given number of seconds.
func (n *Node) SetLifetime(seconds float64) {
	n.Lifetime = &seconds
}

// ClearLifetime makes the node permanent again.
func (n *Node) ClearLifetime() {
	n.Lifetime = nil
}

// SetProperty sets or replaces a named property, preserving insertion order.
func (n *Node) SetProperty(name string, value PropertyValue) {
	for i := range n.Properties {
		if n.Properties[i].Name == name {
			n.Properties[i].Value = value
			return
		}
	}
	n.Properties = append(n.Properties, Property{Name: name, Value: value})
}

// PropertyByName returns the named property value, if present.
func (n *Node) PropertyByName(name string) (PropertyValue, bool) {
	for i := range n.Properties {
		if n.Properties[i].Name == name {
			return n.Properties[i].Value, true
		}
	}
	return PropertyValue{}, false
}

// Sprite is the payload of a sprite node: a colored quad, sized in local
// units. Rendering happens elsewhere; grove only carries the description and
// uses Size for visibility culling.
type Sprite struct {
	Size  Vec2  `json:"size"`
	Color Color `json:"color"`
}

// Light is the payload of a point light node.
type Light struct {
	Radius  float64 `json:"radius"`
	Color   Color   `json:"color"`
	Enabled bool    `json:"enabled"`
}
