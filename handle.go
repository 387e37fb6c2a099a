package grove

import "fmt"

// Handle is a generation-checked reference to a pool slot. A handle is valid
// only while the slot at Index is occupied and still carries the same
// generation; freeing a node reliably invalidates every handle to it.
//
// The zero value is HandleNone: generation 0 is never allocated, so it can
// never match a live slot.
type Handle struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
}

// HandleNone is the sentinel "no node" handle. It is always invalid.
var HandleNone = Handle{}

// IsNone reports whether h is the sentinel handle.
func (h Handle) IsNone() bool {
	return h == HandleNone
}

// IsSome reports whether h is not the sentinel handle. Note that a non-none
// handle may still be stale; use Graph.TryGet or Pool.Get to check validity.
func (h Handle) IsSome() bool {
	return h != HandleNone
}

func (h Handle) String() string {
	if h.IsNone() {
		return "Handle(none)"
	}
	return fmt.Sprintf("Handle(%d:%d)", h.Index, h.Generation)
}
