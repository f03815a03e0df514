// Package nic decouples protocol code from controller drivers
// through a name-keyed interface registry.
package nic

import (
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/frozenpine/nic4go"
)

// ErrNoDevice no ready device under the requested interface name
var ErrNoDevice = errors.New("no nic recognized")

// Sender pushes one link-layer frame onto the wire, blocking until
// the hardware accepts it
type Sender interface {
	Send(pkt []byte) error
}

// Receiver claims one arrived frame, or reports would-block
type Receiver interface {
	Recv() ([]byte, error)
}

// Releaser optionally recycles frames handed out by a Receiver
type Releaser interface {
	Release(frame []byte)
}

// Handle one registered interface. A handle is ready once both
// capabilities are present.
type Handle struct {
	Name     string
	MAC      nic4go.MACAddr
	Sender   Sender
	Receiver Receiver
}

func (h *Handle) Ready() bool {
	return h != nil && h.Sender != nil && h.Receiver != nil
}

// Registry maps interface names to handles. Registration
// overwrites silently, there is no unregister path.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[string]*Handle),
	}
}

func (r *Registry) Register(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handles[h.Name] = h

	log.Printf("nic: registered interface %s (%s)", h.Name, h.MAC)
}

// Lookup resolves an interface name to a ready handle
func (r *Registry) Lookup(name string) (*Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, found := r.handles[name]
	if !found || !h.Ready() {
		return nil, ErrNoDevice
	}

	return h, nil
}
