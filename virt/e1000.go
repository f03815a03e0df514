// Package virt models the hardware this stack is brought up
// against: a PCI bus with one 8254x-family controller wired to a
// DMA arena, plus a PIC-style interrupt controller and an ARP peer.
// Tests and examples run the real driver against these models.
package virt

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/frozenpine/nic4go"
	"github.com/frozenpine/nic4go/dma"
	"github.com/frozenpine/nic4go/e1000"
	"github.com/frozenpine/nic4go/pci"
)

const txQueueLen = 100

// DefaultMAC station address the model controller powers up with
var DefaultMAC = nic4go.MACAddr{0x52, 0x54, 0x00, 0x12, 0x34, 0x56}

// Model window placement
const (
	MemBARBase uint32 = 0xF0000000
	IOBARBase  uint32 = 0x0000C000
	IRQLine    uint8  = 11
	IRQPin     uint8  = 1
)

var ErrRxDisabled = errors.New("virt: receiver not enabled")

type bar struct {
	base     uint32
	flags    uint32
	sizeMask uint32
	probed   bool
}

func (b *bar) read() uint32 {
	if b.sizeMask == 0 {
		return 0
	}

	if b.probed {
		return b.sizeMask | b.flags
	}

	return b.base | b.flags
}

func (b *bar) write(value uint32) {
	if b.sizeMask == 0 {
		return
	}

	if value == 0xFFFFFFFF {
		b.probed = true
		return
	}

	b.probed = false
	b.base = value &^ b.flags
}

// E1000 a software model of the controller: config space with BAR
// sizing semantics, the register window the driver programs, and a
// DMA engine resolving descriptor addresses through the arena.
type E1000 struct {
	mu sync.Mutex

	arena *dma.Arena
	mac   nic4go.MACAddr

	command uint32
	bars    [6]bar

	regs map[uint32]uint32

	// device-side ring cursors
	tdh int
	rdh int

	txQueue chan []byte
}

// NewE1000 builds the model over the arena the driver allocates
// its rings from
func NewE1000(arena *dma.Arena, mac nic4go.MACAddr) *E1000 {
	if mac.IsZero() {
		mac = DefaultMAC
	}

	dev := &E1000{
		arena:   arena,
		mac:     mac,
		regs:    make(map[uint32]uint32),
		txQueue: make(chan []byte, txQueueLen),
	}

	dev.bars[0] = bar{
		base:     MemBARBase,
		sizeMask: ^(e1000.MemBARSize - 1),
	}
	dev.bars[1] = bar{
		base:     IOBARBase,
		flags:    0x1,
		sizeMask: ^(e1000.IOBARSize - 1) &^ 0x3,
	}

	return dev
}

func (dev *E1000) MAC() nic4go.MACAddr {
	return dev.mac
}

// ConfRead PCI configuration register read
func (dev *E1000) ConfRead(offset uint32) uint32 {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	switch offset {
	case pci.IDReg:
		return uint32(e1000.VendorIntel) | uint32(e1000.Product1000)<<16
	case pci.CommandStatusReg:
		return dev.command
	case pci.ClassReg:
		return uint32(pci.ClassNetwork) << 24
	case pci.BHLCReg:
		return 0
	case pci.InterruptReg:
		return uint32(IRQPin)<<8 | uint32(IRQLine)
	}

	if offset >= pci.MapRegStart && offset < pci.MapRegEnd {
		return dev.bars[pci.MapRegNum(offset)].read()
	}

	return 0
}

// ConfWrite PCI configuration register write
func (dev *E1000) ConfWrite(offset, value uint32) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	switch {
	case offset == pci.CommandStatusReg:
		dev.command = value
	case offset >= pci.MapRegStart && offset < pci.MapRegEnd:
		dev.bars[pci.MapRegNum(offset)].write(value)
	}
}

// ReadReg controller register read
func (dev *E1000) ReadReg(offset uint32) uint32 {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	switch offset {
	case e1000.RegRAL0:
		return uint32(dev.mac[0]) | uint32(dev.mac[1])<<8 |
			uint32(dev.mac[2])<<16 | uint32(dev.mac[3])<<24
	case e1000.RegRAH0:
		return uint32(dev.mac[4]) | uint32(dev.mac[5])<<8
	}

	return dev.regs[offset]
}

// WriteReg controller register write
func (dev *E1000) WriteReg(offset, value uint32) {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	switch offset {
	case e1000.RegCTRL:
		if value&e1000.CtrlReset != 0 {
			dev.resetLocked()
			return
		}

		dev.regs[offset] = value
	case e1000.RegTDT:
		dev.regs[offset] = value
		dev.processTxLocked(int(value) % e1000.TxSlots)
	default:
		dev.regs[offset] = value
	}
}

// resetLocked clears device state, the reset bit reads back clear
// immediately
func (dev *E1000) resetLocked() {
	dev.regs = make(map[uint32]uint32)
	dev.tdh = 0
	dev.rdh = 0
}

func (dev *E1000) txRingBase() uint64 {
	return uint64(dev.regs[e1000.RegTDBAL]) |
		uint64(dev.regs[e1000.RegTDBAH])<<32
}

func (dev *E1000) rxRingBase() uint64 {
	return uint64(dev.regs[e1000.RegRDBAL]) |
		uint64(dev.regs[e1000.RegRDBAH])<<32
}

// processTxLocked consumes descriptors the driver handed over by
// advancing the tail, marking each done after the DMA read
func (dev *E1000) processTxLocked(tail int) {
	base := dev.txRingBase()
	if base == 0 {
		return
	}

	for slot := dev.tdh; slot != tail; slot = (slot + 1) % e1000.TxSlots {
		raw, err := dev.arena.MemAt(
			base+uint64(slot*e1000.DescSize), e1000.DescSize)
		if err != nil {
			return
		}

		var desc e1000.TxDesc
		desc.Decode(raw)

		payload, err := dev.arena.MemAt(desc.Addr, int(desc.Len))
		if err != nil {
			return
		}

		frame := make([]byte, len(payload))
		copy(frame, payload)

		select {
		case dev.txQueue <- frame:
		default:
			// queue full, frame is lost on the floor
		}

		desc.Sts |= e1000.TxStsDone
		desc.Encode(raw)

		dev.tdh = (slot + 1) % e1000.TxSlots
	}

	dev.regs[e1000.RegTDH] = uint32(dev.tdh)
}

// Deliver writes one frame into the next receive descriptor, as
// the hardware would on packet arrival
func (dev *E1000) Deliver(frame []byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()

	if dev.regs[e1000.RegRCTL]&e1000.RctlEnable == 0 {
		return ErrRxDisabled
	}

	base := dev.rxRingBase()
	if base == 0 {
		return ErrRxDisabled
	}

	raw, err := dev.arena.MemAt(
		base+uint64(dev.rdh*e1000.DescSize), e1000.DescSize)
	if err != nil {
		return errors.Wrap(err, "rx descriptor out of reach")
	}

	var desc e1000.RxDesc
	desc.Decode(raw)

	buff, err := dev.arena.MemAt(uint64(desc.Addr0), len(frame))
	if err != nil {
		return errors.Wrap(err, "rx buffer out of reach")
	}

	copy(buff, frame)

	desc.Len = uint16(len(frame))
	desc.Sts = e1000.RxStsDone | e1000.RxStsEOP
	desc.Encode(raw)

	dev.rdh = (dev.rdh + 1) % e1000.RxSlots
	dev.regs[e1000.RegRDH] = uint32(dev.rdh)

	return nil
}
