package nic_test

import (
	"testing"

	"github.com/frozenpine/nic4go"
	"github.com/frozenpine/nic4go/e1000"
	"github.com/frozenpine/nic4go/nic"
)

type fakeSender struct{}

func (fakeSender) Send([]byte) error { return nil }

type fakeReceiver struct{}

func (fakeReceiver) Recv() ([]byte, error) { return nil, e1000.ErrWouldBlock }

func TestRegistryLookup(t *testing.T) {
	registry := nic.NewRegistry()

	if _, err := registry.Lookup("mynet0"); err != nic.ErrNoDevice {
		t.Fatal("empty registry lookup:", err)
	}

	registry.Register(&nic.Handle{
		Name:     "mynet0",
		MAC:      nic4go.MACAddr{0x52, 0x54, 0x00, 0x12, 0x34, 0x56},
		Sender:   fakeSender{},
		Receiver: fakeReceiver{},
	})

	h, err := registry.Lookup("mynet0")
	if err != nil {
		t.Fatal(err)
	}

	if h.Name != "mynet0" || h.MAC.IsZero() {
		t.Fatal("handle content wrong:", h)
	}

	// lookup is keyed by name, unknown names stay unresolved
	if _, err = registry.Lookup("mynet1"); err != nic.ErrNoDevice {
		t.Fatal("unknown name resolved:", err)
	}
}

func TestRegistryNotReady(t *testing.T) {
	registry := nic.NewRegistry()

	registry.Register(&nic.Handle{
		Name:   "mynet0",
		Sender: fakeSender{},
	})

	if _, err := registry.Lookup("mynet0"); err != nic.ErrNoDevice {
		t.Fatal("handle without receiver resolved:", err)
	}

	registry.Register(&nic.Handle{
		Name:     "mynet0",
		Receiver: fakeReceiver{},
	})

	if _, err := registry.Lookup("mynet0"); err != nic.ErrNoDevice {
		t.Fatal("handle without sender resolved:", err)
	}

	// registration overwrites in place
	registry.Register(&nic.Handle{
		Name:     "mynet0",
		Sender:   fakeSender{},
		Receiver: fakeReceiver{},
	})

	if _, err := registry.Lookup("mynet0"); err != nil {
		t.Fatal(err)
	}
}
