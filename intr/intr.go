// Package intr carries the interrupt controller contract the
// drivers program against.
package intr

// Controller unmasks device interrupt lines
type Controller interface {
	EnableLine(irq uint8) error
}

// Nop a controller that accepts everything, for environments where
// interrupt routing is handled elsewhere
type Nop struct{}

func (Nop) EnableLine(uint8) error { return nil }
