package virt

import (
	"sync"

	"github.com/pkg/errors"
)

const picSlaveIRQ = 2

// ErrBadIRQLine line number outside the cascaded pair's range
var ErrBadIRQLine = errors.New("virt: irq line out of range")

// PIC a cascaded 8259A pair reduced to its mask word. Implements
// the interrupt controller contract drivers unmask through.
type PIC struct {
	mu   sync.Mutex
	mask uint16
}

func NewPIC() *PIC {
	// everything masked except the slave cascade line
	return &PIC{mask: 0xFFFF &^ (1 << picSlaveIRQ)}
}

func (pic *PIC) EnableLine(irq uint8) error {
	if irq >= 16 {
		return ErrBadIRQLine
	}

	pic.mu.Lock()
	defer pic.mu.Unlock()

	pic.mask &^= 1 << irq

	return nil
}

// Enabled reports whether a line is unmasked
func (pic *PIC) Enabled(irq uint8) bool {
	pic.mu.Lock()
	defer pic.mu.Unlock()

	return pic.mask&(1<<irq) == 0
}
