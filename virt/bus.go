package virt

import (
	"github.com/frozenpine/nic4go/pci"
)

// ConfigDevice what a modeled function exposes to config space
type ConfigDevice interface {
	ConfRead(offset uint32) uint32
	ConfWrite(offset, value uint32)
}

// Bus a single PCI bus reachable through the 0xCF8/0xCFC port
// pair. Unpopulated slots read back all-ones.
type Bus struct {
	devices map[uint32]ConfigDevice

	// latched config address
	confAddr uint32
}

func NewBus() *Bus {
	return &Bus{
		devices: make(map[uint32]ConfigDevice),
	}
}

// AddDevice plugs a function into a device slot
func (bus *Bus) AddDevice(slot uint32, dev ConfigDevice) {
	bus.devices[slot] = dev
}

func (bus *Bus) decode() (dev ConfigDevice, offset uint32, ok bool) {
	if bus.confAddr&0x80000000 == 0 {
		return nil, 0, false
	}

	busnum := bus.confAddr >> 16 & 0xFF
	slot := bus.confAddr >> 11 & 0x1F
	fn := bus.confAddr >> 8 & 0x7
	offset = bus.confAddr & 0xFF

	if busnum != 0 || fn != 0 {
		return nil, 0, false
	}

	dev, ok = bus.devices[slot]

	return dev, offset, ok
}

// Inl port read, data port only
func (bus *Bus) Inl(port uint16) uint32 {
	if port != pci.ConfDataPort {
		return 0xFFFFFFFF
	}

	dev, offset, ok := bus.decode()
	if !ok {
		return 0xFFFFFFFF
	}

	return dev.ConfRead(offset)
}

// Outl port write, address latch or data port
func (bus *Bus) Outl(port uint16, value uint32) {
	switch port {
	case pci.ConfAddrPort:
		bus.confAddr = value
	case pci.ConfDataPort:
		if dev, offset, ok := bus.decode(); ok {
			dev.ConfWrite(offset, value)
		}
	}
}
