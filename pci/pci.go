package pci

import (
	"log"

	"github.com/pkg/errors"
)

// PortIO raw 32-bit port access, the transport under config space
// reads on real hardware
type PortIO interface {
	Inl(port uint16) uint32
	Outl(port uint16, value uint32)
}

// ConfigSpace addressed access to PCI configuration registers
type ConfigSpace interface {
	Read(bus, dev, fn, offset uint32) uint32
	Write(bus, dev, fn, offset, value uint32)
}

func formConfAddr(bus, dev, fn, offset uint32) uint32 {
	return 0x80000000 | bus<<16 | dev<<11 | fn<<8 | offset
}

type portSpace struct {
	io PortIO
}

// NewPortConfigSpace builds config space access over the
// 0xCF8/0xCFC port pair
func NewPortConfigSpace(io PortIO) ConfigSpace {
	return &portSpace{io: io}
}

func (s *portSpace) Read(bus, dev, fn, offset uint32) uint32 {
	s.io.Outl(ConfAddrPort, formConfAddr(bus, dev, fn, offset))
	return s.io.Inl(ConfDataPort)
}

func (s *portSpace) Write(bus, dev, fn, offset, value uint32) {
	s.io.Outl(ConfAddrPort, formConfAddr(bus, dev, fn, offset))
	s.io.Outl(ConfDataPort, value)
}

// BAR one decoded base address register
type BAR struct {
	Base  uint32
	Size  uint32
	IsMem bool
}

// Function one enumerated PCI function, read-only after discovery
type Function struct {
	Bus  uint32
	Dev  uint32
	Func uint32

	DevID   uint32
	Class   uint32
	IRQLine uint8
	IRQPin  uint8

	BARs [6]BAR

	cfg ConfigSpace
}

func (f *Function) ConfRead(offset uint32) uint32 {
	return f.cfg.Read(f.Bus, f.Dev, f.Func, offset)
}

func (f *Function) ConfWrite(offset, value uint32) {
	f.cfg.Write(f.Bus, f.Dev, f.Func, offset, value)
}

var classNames = []string{
	"Unclassified Device",
	"Mass Storage Controller", "Network Controller",
	"Display Controller", "Multimedia Device",
	"Memory Controller", "Bridge Device",
}

func (f *Function) logSummary() {
	name := classNames[0]
	if cls := int(Class(f.Class)); cls < len(classNames) {
		name = classNames[cls]
	}

	log.Printf(
		"PCI: %x:%x.%d: %04x:%04x: class: %x.%x (%s) irq: %d",
		f.Bus, f.Dev, f.Func,
		Vendor(f.DevID), Product(f.DevID),
		Class(f.Class), SubClass(f.Class), name, f.IRQLine,
	)
}

// EnableDevice turns on I/O, memory and bus-master decoding, then
// sizes every implemented BAR: save the value, write all-ones, read
// the probe value back, restore. A zero probe means the register is
// not implemented. 64-bit memory BARs consume the following slot.
func (f *Function) EnableDevice() {
	f.ConfWrite(CommandStatusReg,
		CommandIOEnable|CommandMemEnable|CommandMasterEnable)

	var barwidth uint32

	for bar := MapRegStart; bar < MapRegEnd; bar += barwidth {
		oldv := f.ConfRead(bar)
		barwidth = 4

		f.ConfWrite(bar, 0xFFFFFFFF)
		rv := f.ConfRead(bar)
		f.ConfWrite(bar, oldv)

		if rv == 0 {
			continue
		}

		regnum := MapRegNum(bar)

		var base, size uint32
		isMem := !MapRegIsIO(rv)

		if isMem {
			if MemType64(rv) {
				barwidth = 8
			}

			size = MemSize(rv)
			base = MemAddr(oldv)
			log.Printf("mem region %d: %d bytes at 0x%x", regnum, size, base)
		} else {
			size = IOSize(rv)
			base = IOAddr(oldv)
			log.Printf("io region %d: %d bytes at 0x%x", regnum, size, base)
		}

		f.BARs[regnum] = BAR{Base: base, Size: size, IsMem: isMem}

		if size != 0 && base == 0 {
			log.Printf(
				"PCI device %x:%x.%d (%04x:%04x) may be misconfigured: "+
					"region %d: base 0x%x, size %d",
				f.Bus, f.Dev, f.Func,
				Vendor(f.DevID), Product(f.DevID), regnum, base, size)
		}
	}
}

// ID driver table key
type ID struct {
	Vendor  uint16
	Product uint16
}

// AttachFunc driver constructor invoked on a vendor/product match
type AttachFunc func(*Function) error

// Enumerator walks a bus over a ConfigSpace and dispatches matching
// functions to registered drivers
type Enumerator struct {
	cfg     ConfigSpace
	drivers map[ID]AttachFunc
}

// NewEnumerator wraps a non-nil ConfigSpace
func NewEnumerator(cfg ConfigSpace) *Enumerator {
	return &Enumerator{
		cfg:     cfg,
		drivers: make(map[ID]AttachFunc),
	}
}

// RegisterDriver binds an attach constructor to a vendor/product pair
func (e *Enumerator) RegisterDriver(vendor, product uint16, attach AttachFunc) {
	e.drivers[ID{Vendor: vendor, Product: product}] = attach
}

func (e *Enumerator) dispatch(f *Function) {
	attach, found := e.drivers[ID{
		Vendor:  Vendor(f.DevID),
		Product: Product(f.DevID),
	}]
	if !found {
		return
	}

	// attach failures leave the bus walk running, other devices
	// may still come up
	if err := attach(f); err != nil {
		log.Printf("PCI attach %04x:%04x failed: %+v",
			Vendor(f.DevID), Product(f.DevID), errors.WithStack(err))
	}
}

// EnumBus walks device slots 0..31 of one bus and returns the count
// of populated, supported devices
func (e *Enumerator) EnumBus(bus uint32) int {
	totdev := 0

	for dev := uint32(0); dev < MaxDevPerBus; dev++ {
		bhlc := e.cfg.Read(bus, dev, 0, BHLCReg)
		if HdrType(bhlc) > 1 {
			continue
		}
		totdev++

		fns := uint32(1)
		if MultiFunc(bhlc) {
			fns = 8
		}

		for fn := uint32(0); fn < fns; fn++ {
			f := Function{
				Bus:  bus,
				Dev:  dev,
				Func: fn,
				cfg:  e.cfg,
			}

			f.DevID = f.ConfRead(IDReg)
			if Vendor(f.DevID) == EmptySlotVendor {
				continue
			}

			intr := f.ConfRead(InterruptReg)
			f.IRQLine = IntrLine(intr)
			f.IRQPin = IntrPin(intr)
			f.Class = f.ConfRead(ClassReg)
			f.logSummary()

			if Class(f.Class) == ClassNetwork {
				e.dispatch(&f)
			}
		}
	}

	return totdev
}
