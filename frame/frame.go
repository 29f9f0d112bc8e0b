// Package frame implements the cross-thread producer/consumer handshake
// between the CPU+VIC producer loop and an external renderer: an
// atomic frame-ready flag (release/acquire, never a plain bool) plus an
// owned RAM+register snapshot buffer and a cooperative stop signal.
package frame

import (
	"sync/atomic"

	"github.com/mjholtkamp/c64core/vic"
)

// Handshake is the single piece of state shared between the producer
// (CPU/VIC) goroutine and a consumer (renderer) goroutine. Everything
// else — the CPU, the Bus, the VIC chip — is exclusively owned by the
// producer and must never be touched from the consumer side.
type Handshake struct {
	ready uint32 // atomic bool, set with release semantics by the producer.
	stop  uint32 // atomic bool, set by whoever initiates shutdown.
}

// New returns a Handshake ready for use.
func New() *Handshake {
	return &Handshake{}
}

// SetReady is called by the producer at VBlank. Every RAM/register
// write made before this call happens-before any consumer that
// observes Ready() == true, by virtue of the atomic release store.
func (h *Handshake) SetReady() {
	atomic.StoreUint32(&h.ready, 1)
}

// Ready reports whether a frame is waiting, with acquire semantics: if
// true, every write the producer made before its SetReady is visible
// to the calling goroutine.
func (h *Handshake) Ready() bool {
	return atomic.LoadUint32(&h.ready) == 1
}

// ClearReady is called by the consumer immediately after it has
// finished copying its snapshot.
func (h *Handshake) ClearReady() {
	atomic.StoreUint32(&h.ready, 0)
}

// Stop requests the producer loop exit at its next instruction
// boundary. Idempotent.
func (h *Handshake) Stop() {
	atomic.StoreUint32(&h.stop, 1)
}

// Stopped reports whether Stop has been called.
func (h *Handshake) Stopped() bool {
	return atomic.LoadUint32(&h.stop) == 1
}

// Snapshot copies ram (exactly 65536 bytes; longer slices are truncated,
// shorter ones zero-padded) and the VIC register view into a freshly
// allocated vic.Snapshot the consumer then owns exclusively. Must only
// be called by the consumer after observing Ready() true, immediately
// followed by ClearReady — the two together are the atomic "copy, then
// clear" step the protocol requires.
func Snapshot(ram []uint8, vicChip *vic.Chip) *vic.Snapshot {
	s := &vic.Snapshot{}
	n := copy(s.RAM[:], ram)
	_ = n
	for i := 0; i < 64; i++ {
		s.Regs[i] = vicChip.Read(uint16(i))
	}
	return s
}
