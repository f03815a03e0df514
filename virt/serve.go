package virt

import (
	"context"
	"log"
)

// FrameHandler consumes frames the modeled controller puts on the
// wire
type FrameHandler func(frame []byte) error

// Serve pumps transmitted frames to the handler until the context
// ends. Handler errors are logged, the pump keeps running.
func Serve(ctx context.Context, dev *E1000, fn FrameHandler) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-dev.txQueue:
			if frame == nil {
				return nil
			}

			if fn == nil {
				continue
			}

			if err := fn(frame); err != nil {
				log.Printf("virt: frame handler failed: %v", err)
			}
		}
	}
}
