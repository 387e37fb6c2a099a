package grove

import (
	"errors"
	"fmt"
)

// slotState is the explicit three-state lifecycle of a pool slot.
type slotState uint8

const (
	slotEmpty    slotState = iota // reusable, no value
	slotOccupied                  // holds a live node
	slotReserved                  // value taken out via a Ticket, slot not reusable
)

type poolSlot struct {
	generation uint32
	state      slotState
	node       *Node
}

// Pool is a slot-based node store. Slots are never relocated, so a Handle
// stays meaningful for the lifetime of the pool; the generation counter
// detects staleness after a slot is freed and reused.
type Pool struct {
	slots []poolSlot
	free  []uint32 // indices of empty slots, reused LIFO
	alive uint32
}

// Ticket proves exclusive temporary ownership of a reserved slot. It is
// produced by TakeReserve and consumed by exactly one of PutBack or Forget.
// Tickets cannot be forged: the fields are unexported.
type Ticket struct {
	index      uint32
	generation uint32
}

// Spawn stores node in a free slot and returns a handle to it. A reused slot
// always carries a strictly greater generation than any handle previously
// issued for it.
func (p *Pool) Spawn(node *Node) Handle {
	if node == nil {
		panic("grove: cannot spawn nil node")
	}
	if n := len(p.free); n > 0 {
		index := p.free[n-1]
		p.free = p.free[:n-1]
		slot := &p.slots[index]
		slot.state = slotOccupied
		slot.node = node
		p.alive++
		return Handle{Index: index, Generation: slot.generation}
	}
	p.slots = append(p.slots, poolSlot{generation: 1, state: slotOccupied, node: node})
	p.alive++
	return Handle{Index: uint32(len(p.slots) - 1), Generation: 1}
}

// Free removes the node at handle and returns it. Panics if the handle is
// invalid: freeing through a stale handle is a caller contract breach, not a
// recoverable condition.
func (p *Pool) Free(handle Handle) *Node {
	slot := p.occupiedSlot(handle)
	if slot == nil {
		panic(fmt.Sprintf("grove: free of invalid handle %v", handle))
	}
	node := slot.node
	slot.node = nil
	slot.state = slotEmpty
	slot.generation++
	p.free = append(p.free, handle.Index)
	p.alive--
	return node
}

// Get returns the node at handle, or (nil, false) if the handle is stale,
// reserved, or out of range. Never panics.
func (p *Pool) Get(handle Handle) (*Node, bool) {
	slot := p.occupiedSlot(handle)
	if slot == nil {
		return nil, false
	}
	return slot.node, true
}

// MustGet returns the node at handle, panicking if the handle is invalid.
// Use where validity is already established (e.g. handles held by the tree).
func (p *Pool) MustGet(handle Handle) *Node {
	slot := p.occupiedSlot(handle)
	if slot == nil {
		panic(fmt.Sprintf("grove: access through invalid handle %v", handle))
	}
	return slot.node
}

// IsValid reports whether handle refers to a live (occupied) slot.
func (p *Pool) IsValid(handle Handle) bool {
	return p.occupiedSlot(handle) != nil
}

// TakeReserve removes the node at handle but keeps the slot reserved: the
// slot cannot be reused until the ticket is spent with PutBack or Forget.
// Panics on an invalid handle.
func (p *Pool) TakeReserve(handle Handle) (Ticket, *Node) {
	slot := p.occupiedSlot(handle)
	if slot == nil {
		panic(fmt.Sprintf("grove: take of invalid handle %v", handle))
	}
	node := slot.node
	slot.node = nil
	slot.state = slotReserved
	p.alive--
	return Ticket{index: handle.Index, generation: handle.Generation}, node
}

// PutBack restores node into the slot the ticket reserves, at the same index
// and generation, so every handle issued before TakeReserve is valid again.
func (p *Pool) PutBack(ticket Ticket, node *Node) Handle {
	slot := p.reservedSlot(ticket)
	if slot == nil {
		panic("grove: put back with a spent or foreign ticket")
	}
	if node == nil {
		panic("grove: cannot put back nil node")
	}
	slot.node = node
	slot.state = slotOccupied
	p.alive++
	return Handle{Index: ticket.index, Generation: ticket.generation}
}

// Forget releases a reserved slot for reuse, permanently invalidating every
// handle that pointed at it.
func (p *Pool) Forget(ticket Ticket) {
	slot := p.reservedSlot(ticket)
	if slot == nil {
		panic("grove: forget with a spent or foreign ticket")
	}
	slot.state = slotEmpty
	slot.generation++
	p.free = append(p.free, ticket.index)
}

// ErrAliasedHandles is returned by the multi-borrow accessors when the same
// handle appears more than once in a request.
var ErrAliasedHandles = errors.New("grove: aliased handles in multi-borrow")

// ErrInvalidHandle is returned by the multi-borrow accessors when any
// requested handle is stale or out of range.
var ErrInvalidHandle = errors.New("grove: invalid handle in multi-borrow")

// Get2Mut returns the two distinct nodes at a and b. Aliased or invalid
// handles are reported as an error, never a panic, because callers may build
// handle tuples from data.
func (p *Pool) Get2Mut(a, b Handle) (*Node, *Node, error) {
	if a == b {
		return nil, nil, ErrAliasedHandles
	}
	na, ok := p.Get(a)
	if !ok {
		return nil, nil, ErrInvalidHandle
	}
	nb, ok := p.Get(b)
	if !ok {
		return nil, nil, ErrInvalidHandle
	}
	return na, nb, nil
}

// Get3Mut returns the three distinct nodes at a, b, and c.
func (p *Pool) Get3Mut(a, b, c Handle) (*Node, *Node, *Node, error) {
	if a == b || a == c || b == c {
		return nil, nil, nil, ErrAliasedHandles
	}
	na, ok := p.Get(a)
	if !ok {
		return nil, nil, nil, ErrInvalidHandle
	}
	nb, ok := p.Get(b)
	if !ok {
		return nil, nil, nil, ErrInvalidHandle
	}
	nc, ok := p.Get(c)
	if !ok {
		return nil, nil, nil, ErrInvalidHandle
	}
	return na, nb, nc, nil
}

// Get4Mut returns the four distinct nodes at a, b, c, and d.
func (p *Pool) Get4Mut(a, b, c, d Handle) (*Node, *Node, *Node, *Node, error) {
	handles := [4]Handle{a, b, c, d}
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if handles[i] == handles[j] {
				return nil, nil, nil, nil, ErrAliasedHandles
			}
		}
	}
	var nodes [4]*Node
	for i, h := range handles {
		n, ok := p.Get(h)
		if !ok {
			return nil, nil, nil, nil, ErrInvalidHandle
		}
		nodes[i] = n
	}
	return nodes[0], nodes[1], nodes[2], nodes[3], nil
}

// Capacity returns the number of slots ever allocated. Can be used together
// with HandleFromIndex to visit every potentially occupied slot.
func (p *Pool) Capacity() uint32 {
	return uint32(len(p.slots))
}

// AliveCount returns the number of occupied slots.
func (p *Pool) AliveCount() uint32 {
	return p.alive
}

// HandleFromIndex builds a handle for the slot at index. Returns HandleNone
// if the index is out of range or the slot is not occupied.
func (p *Pool) HandleFromIndex(index uint32) Handle {
	if index >= uint32(len(p.slots)) || p.slots[index].state != slotOccupied {
		return HandleNone
	}
	return Handle{Index: index, Generation: p.slots[index].generation}
}

// At returns the node stored at index, or nil if the slot is not occupied.
func (p *Pool) At(index uint32) *Node {
	if index >= uint32(len(p.slots)) || p.slots[index].state != slotOccupied {
		return nil
	}
	return p.slots[index].node
}

// ForEach visits every live node in slot order with its handle.
// Linear iteration, no tree traversal.
func (p *Pool) ForEach(f func(Handle, *Node)) {
	for i := range p.slots {
		slot := &p.slots[i]
		if slot.state == slotOccupied {
			f(Handle{Index: uint32(i), Generation: slot.generation}, slot.node)
		}
	}
}

// hasReserved reports whether any slot is currently reserved.
func (p *Pool) hasReserved() bool {
	for i := range p.slots {
		if p.slots[i].state == slotReserved {
			return true
		}
	}
	return false
}

func (p *Pool) occupiedSlot(handle Handle) *poolSlot {
	if handle.Index >= uint32(len(p.slots)) {
		return nil
	}
	slot := &p.slots[handle.Index]
	if slot.state != slotOccupied || slot.generation != handle.Generation {
		return nil
	}
	return slot
}

func (p *Pool) reservedSlot(ticket Ticket) *poolSlot {
	if ticket.index >= uint32(len(p.slots)) {
		return nil
	}
	slot := &p.slots[ticket.index]
	if slot.state != slotReserved || slot.generation != ticket.generation {
		return nil
	}
	return slot
}
