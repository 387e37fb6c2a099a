package grove

// ChangeSet tracks which fields of a physics-backed node were written since
// the last synchronization pass. The sync pass drains it tag by tag: fields
// not marked are left untouched in the simulation.
type ChangeSet[E ~uint8] uint32

// Add marks a field as changed.
func (s *ChangeSet[E]) Add(e E) {
	*s |= 1 << e
}

// Has reports whether a field is marked.
func (s ChangeSet[E]) Has(e E) bool {
	return s&(1<<e) != 0
}

// take clears the mark for a field and reports whether it was set.
// This is the drain primitive used by syncNativePhysics.
func (s *ChangeSet[E]) take(e E) bool {
	if !s.Has(e) {
		return false
	}
	*s &^= 1 << e
	return true
}

// Clear removes all marks.
func (s *ChangeSet[E]) Clear() {
	*s = 0
}

// Empty reports whether no field is marked.
func (s ChangeSet[E]) Empty() bool {
	return s == 0
}

// RigidBodyChange enumerates the syncable rigid body fields.
type RigidBodyChange uint8

const (
	RigidBodyChangeBodyType RigidBodyChange = iota
	RigidBodyChangeLinVel
	RigidBodyChangeAngVel
	RigidBodyChangeMass
	RigidBodyChangeLinDamping
	RigidBodyChangeAngDamping
	RigidBodyChangeRotationLock
)

// ColliderChange enumerates the syncable collider fields.
type ColliderChange uint8

const (
	ColliderChangeShape ColliderChange = iota
	ColliderChangeRestitution
	ColliderChangeCollisionGroups
	ColliderChangeSolverGroups
	ColliderChangeFriction
	ColliderChangeIsSensor
)

// JointChange enumerates the syncable joint fields.
type JointChange uint8

const (
	JointChangeParams JointChange = iota
	JointChangeBody1
	JointChangeBody2
)
