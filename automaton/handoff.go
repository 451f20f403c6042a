package automaton

import (
	"sync/atomic"

	"stutterclock-go/errcode"
)

const (
	slotEmpty uint32 = iota
	slotWriting
	slotFull
	slotClaimed
)

// Handoff passes a value from the setup context to the interrupt context exactly
// once. Put and Claim never block, so Claim may run inside an interrupt handler.
type Handoff[T any] struct {
	state atomic.Uint32
	v     T
}

// Put installs v. Only the first call succeeds.
func (h *Handoff[T]) Put(v T) error {
	if !h.state.CompareAndSwap(slotEmpty, slotWriting) {
		return errcode.AlreadyInstalled
	}
	h.v = v
	h.state.Store(slotFull)
	return nil
}

// Claim moves the value out. It returns false before Put and after the first claim.
func (h *Handoff[T]) Claim() (T, bool) {
	var zero T
	if !h.state.CompareAndSwap(slotFull, slotClaimed) {
		return zero, false
	}
	v := h.v
	h.v = zero
	return v, true
}

// Claimed reports whether the value has been taken.
func (h *Handoff[T]) Claimed() bool { return h.state.Load() == slotClaimed }
