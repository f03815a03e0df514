package e1000

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/frozenpine/nic4go"
	"github.com/frozenpine/nic4go/cache"
	"github.com/frozenpine/nic4go/dma"
	nicerr "github.com/frozenpine/nic4go/errors"
	"github.com/frozenpine/nic4go/intr"
	"github.com/frozenpine/nic4go/pci"
)

var (
	ErrNoBAR         = errors.New("no usable base address register")
	ErrIOBARSize     = errors.New("I/O space BAR size != 64")
	ErrMemBARSize    = errors.New("mem space BAR size != 128KB")
	ErrRingAlign     = errors.New("descriptor ring not on paragraph boundary")
	ErrPacketTooLong = errors.New("packet exceeds buffer capacity")
	ErrNotActive     = errors.New("controller not active")

	// ErrWouldBlock no receive descriptor is ready, try again later
	ErrWouldBlock = nicerr.NewRecoverable("no receive descriptor ready")

	ErrResetTimeout = nicerr.NewTimeout("controller reset never completed")
	ErrSendTimeout  = nicerr.NewTimeout("transmit completion never reported")
)

// State controller bring-up progress. Fail is terminal.
type State int

const (
	StateUninitialized State = iota
	StateResetting
	StateLinkConfiguring
	StateRingsAllocated
	StateActive
	StateFail
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResetting:
		return "resetting"
	case StateLinkConfiguring:
		return "link configuring"
	case StateRingsAllocated:
		return "rings allocated"
	case StateActive:
		return "active"
	case StateFail:
		return "fail"
	default:
		return "unknown"
	}
}

// RegIO access to the controller's mapped register window
type RegIO interface {
	ReadReg(offset uint32) uint32
	WriteReg(offset, value uint32)
}

// MapFunc maps the register window found at a BAR base
type MapFunc func(base uint32, size uint32) (RegIO, error)

const (
	defaultResetTimeout = 100 * time.Millisecond
	defaultSendTimeout  = 500 * time.Millisecond
	defaultPollDelay    = 5 * time.Microsecond
)

// Config collaborator wiring for Init
type Config struct {
	// Alloc hands out physically contiguous, zeroed memory
	Alloc dma.Allocator
	// Intr unmasks the assigned interrupt line, may be nil
	Intr intr.Controller
	// Map produces register access for the discovered window
	Map MapFunc

	ResetTimeout time.Duration
	SendTimeout  time.Duration
	PollDelay    time.Duration
}

func (cfg *Config) withDefaults() Config {
	out := *cfg

	if out.ResetTimeout <= 0 {
		out.ResetTimeout = defaultResetTimeout
	}

	if out.SendTimeout <= 0 {
		out.SendTimeout = defaultSendTimeout
	}

	if out.PollDelay <= 0 {
		out.PollDelay = defaultPollDelay
	}

	return out
}

type ring struct {
	mem  *dma.Region
	bufs []*dma.Region
	head int
	tail int
}

func (r *ring) desc(slot int) []byte {
	return r.mem.Bytes()[slot*DescSize : (slot+1)*DescSize]
}

// Driver one controller instance. Not safe for concurrent use:
// callers serialize Send/Recv against each other.
type Driver struct {
	regs RegIO
	cfg  Config

	state State

	iobase  uint32
	membase uint32
	irqline uint8
	irqpin  uint8
	mac     nic4go.MACAddr

	tx ring
	rx ring

	// whole pages backing the per-slot buffer views
	pages []*dma.Region

	rxPool *cache.BytesPool
}

func (d *Driver) MAC() nic4go.MACAddr { return d.mac }
func (d *Driver) State() State        { return d.state }
func (d *Driver) IOBase() uint32      { return d.iobase }
func (d *Driver) MemBase() uint32     { return d.membase }
func (d *Driver) IRQLine() uint8      { return d.irqline }
func (d *Driver) IRQPin() uint8       { return d.irqpin }

// TxTail next transmit slot software will fill
func (d *Driver) TxTail() int { return d.tx.tail }

// RxHead next receive slot software will consume
func (d *Driver) RxHead() int { return d.rx.head }

func (d *Driver) fail(err error) error {
	d.state = StateFail
	d.releaseMemory()

	return err
}

func (d *Driver) releaseMemory() {
	if d.cfg.Alloc == nil {
		return
	}

	if d.tx.mem != nil {
		_ = d.cfg.Alloc.Free(d.tx.mem)
		d.tx.mem = nil
	}

	if d.rx.mem != nil {
		_ = d.cfg.Alloc.Free(d.rx.mem)
		d.rx.mem = nil
	}

	for _, page := range d.pages {
		_ = d.cfg.Alloc.Free(page)
	}
	d.pages = nil
}

// findBARs picks the controller's windows out of the decoded BAR
// table: the first low I/O candidate and the first non-zero memory
// candidate. Sizes are fixed for this family, anything else is a
// configuration error.
func (d *Driver) findBARs(pcif *pci.Function) error {
	for _, bar := range pcif.BARs {
		if bar.Size == 0 {
			continue
		}

		if !bar.IsMem && bar.Base <= 0xFFFF && d.iobase == 0 {
			if bar.Size != IOBARSize {
				return ErrIOBARSize
			}

			d.iobase = bar.Base
			continue
		}

		if bar.IsMem && bar.Base > 0 && d.membase == 0 {
			if bar.Size != MemBARSize {
				return ErrMemBARSize
			}

			d.membase = bar.Base
		}
	}

	if d.iobase == 0 && d.membase == 0 {
		return ErrNoBAR
	}

	return nil
}

func (d *Driver) reset() error {
	d.state = StateResetting

	d.regs.WriteReg(RegCTRL, d.regs.ReadReg(RegCTRL)|CtrlReset)

	deadline := time.Now().Add(d.cfg.ResetTimeout)

	for d.regs.ReadReg(RegCTRL)&CtrlReset != 0 {
		if time.Now().After(deadline) {
			return ErrResetTimeout
		}

		time.Sleep(d.cfg.PollDelay)
	}

	return nil
}

func (d *Driver) configLink() {
	d.state = StateLinkConfiguring

	d.regs.WriteReg(RegCTRL, d.regs.ReadReg(RegCTRL)|CtrlASDE|CtrlSLU)
}

func (d *Driver) readStationMAC() {
	ral := d.regs.ReadReg(RegRAL0)
	rah := d.regs.ReadReg(RegRAH0)

	d.mac[0] = byte(ral)
	d.mac[1] = byte(ral >> 8)
	d.mac[2] = byte(ral >> 16)
	d.mac[3] = byte(ral >> 24)
	d.mac[4] = byte(rah)
	d.mac[5] = byte(rah >> 8)
}

func (d *Driver) allocRing(slots int) (*dma.Region, error) {
	mem, err := d.cfg.Alloc.Alloc(slots * DescSize)
	if err != nil {
		return nil, errors.Wrap(err, "ring allocation failed")
	}

	if mem.Phys()&0xF != 0 {
		_ = d.cfg.Alloc.Free(mem)
		return nil, ErrRingAlign
	}

	return mem, nil
}

// allocBuffers carves slot buffers two per page, the page being the
// allocator's granule and fitting exactly two frames
func (d *Driver) allocBuffers(slots int) ([]*dma.Region, error) {
	bufs := make([]*dma.Region, slots)

	for slot := 0; slot < slots; slot += 2 {
		page, err := d.cfg.Alloc.Alloc(2 * BufSize)
		if err != nil {
			return nil, errors.Wrap(err, "packet buffer allocation failed")
		}

		d.pages = append(d.pages, page)
		bufs[slot] = page.Slice(0, BufSize)
		bufs[slot+1] = page.Slice(BufSize, BufSize)
	}

	return bufs, nil
}

func (d *Driver) setupRings() error {
	d.state = StateRingsAllocated

	var err error

	if d.tx.mem, err = d.allocRing(TxSlots); err != nil {
		return err
	}

	if d.rx.mem, err = d.allocRing(RxSlots); err != nil {
		return err
	}

	if d.tx.bufs, err = d.allocBuffers(TxSlots); err != nil {
		return err
	}

	if d.rx.bufs, err = d.allocBuffers(RxSlots); err != nil {
		return err
	}

	// receive descriptors own their buffers up front
	for slot := 0; slot < RxSlots; slot++ {
		desc := RxDesc{Addr0: uint32(d.rx.bufs[slot].Phys())}
		desc.Encode(d.rx.desc(slot))
	}

	return nil
}

func (d *Driver) programRegisters() {
	txPhys := d.tx.mem.Phys()
	d.regs.WriteReg(RegTDBAL, uint32(txPhys))
	d.regs.WriteReg(RegTDBAH, uint32(txPhys>>32))
	d.regs.WriteReg(RegTDLEN, uint32(TxSlots*DescSize))
	d.regs.WriteReg(RegTDH, 0)
	d.regs.WriteReg(RegTDT, 0)

	rxPhys := d.rx.mem.Phys()
	d.regs.WriteReg(RegRDBAL, uint32(rxPhys))
	d.regs.WriteReg(RegRDBAH, uint32(rxPhys>>32))
	d.regs.WriteReg(RegRDLEN, uint32(RxSlots*DescSize))
	d.regs.WriteReg(RegRDH, 0)
	d.regs.WriteReg(RegRDT, 0)

	d.regs.WriteReg(RegTCTL,
		TctlEnable|TctlPadShort|TctlCT(0x0F)|TctlCOLD(0x200))
	d.regs.WriteReg(RegTIPG,
		TipgIPGT(10)|TipgIPGR1(10)|TipgIPGR2(10))

	d.regs.WriteReg(RegRCTL,
		RctlEnable|RctlBroadcast|RctlBSize2048|RctlStripCRC)

	d.regs.WriteReg(RegIMS,
		IMSRxSeqErr|IMSRxOverrun|IMSRxTimer|IMSTxQueueEmpty)
}

// Init brings a discovered controller up to Active: window
// selection, bounded reset, link configuration, station MAC read,
// aligned ring and buffer allocation, register programming and
// interrupt unmasking. Failures leave the instance in Fail with
// its memory released.
func Init(pcif *pci.Function, config Config) (*Driver, error) {
	if config.Alloc == nil || config.Map == nil {
		return nil, errors.New("allocator and register mapper are required")
	}

	d := &Driver{
		cfg:    config.withDefaults(),
		rxPool: cache.NewBytesPool(BufSize),
	}

	if err := d.findBARs(pcif); err != nil {
		d.state = StateFail
		return nil, err
	}

	d.irqline = pcif.IRQLine
	d.irqpin = pcif.IRQPin

	base := d.membase
	if base == 0 {
		base = d.iobase
	}

	regs, err := d.cfg.Map(base, MemBARSize)
	if err != nil {
		d.state = StateFail
		return nil, errors.Wrap(err, "register window map failed")
	}
	d.regs = regs

	if err := d.reset(); err != nil {
		return nil, d.fail(err)
	}

	d.configLink()
	d.readStationMAC()

	if err := d.setupRings(); err != nil {
		return nil, d.fail(err)
	}

	d.programRegisters()

	if d.cfg.Intr != nil {
		if err := d.cfg.Intr.EnableLine(d.irqline); err != nil {
			return nil, d.fail(errors.Wrap(err, "interrupt unmask failed"))
		}
	}

	d.state = StateActive

	log.Printf("E1000: station MAC %s, irq line=%d pin=%d",
		nic4go.UnpackMAC(d.mac), d.irqline, d.irqpin)

	return d, nil
}

// Send copies the packet into the tail slot, hands it to hardware
// and blocks until the descriptor reports completion. Bounded by
// SendTimeout.
func (d *Driver) Send(pkt []byte) error {
	if d.state != StateActive {
		return ErrNotActive
	}

	if len(pkt) > BufSize {
		return ErrPacketTooLong
	}

	slot := d.tx.tail

	raw := d.tx.desc(slot)
	for idx := range raw {
		raw[idx] = 0
	}

	copy(d.tx.bufs[slot].Bytes(), pkt)

	desc := TxDesc{
		Addr: d.tx.bufs[slot].Phys(),
		Len:  uint16(len(pkt)),
		Cmd:  TxCmdRS | TxCmdEOP | TxCmdIFCS,
		CSO:  0,
	}
	desc.Encode(raw)

	d.tx.tail = (slot + 1) % TxSlots
	d.regs.WriteReg(RegTDT, uint32(d.tx.tail))

	deadline := time.Now().Add(d.cfg.SendTimeout)

	for {
		desc.Decode(raw)
		if desc.Done() {
			break
		}

		if time.Now().After(deadline) {
			return ErrSendTimeout
		}

		time.Sleep(d.cfg.PollDelay)
	}

	// the slot is reclaimed the moment hardware reports done
	d.tx.head = d.tx.tail

	return nil
}

// Recv claims the next ready receive descriptor and returns a copy
// of its frame, or ErrWouldBlock when hardware has written nothing.
// Returned slices go back through Release.
func (d *Driver) Recv() ([]byte, error) {
	if d.state != StateActive {
		return nil, ErrNotActive
	}

	slot := d.rx.head
	raw := d.rx.desc(slot)

	var desc RxDesc
	desc.Decode(raw)

	if !desc.Done() {
		return nil, ErrWouldBlock
	}

	size := int(desc.Len)
	if size > BufSize {
		size = BufSize
	}

	frame := d.rxPool.GetSlice()[:size]
	copy(frame, d.rx.bufs[slot].Bytes()[:size])

	// re-arm the slot with its buffer and pass it back to hardware
	rearm := RxDesc{Addr0: uint32(d.rx.bufs[slot].Phys())}
	rearm.Encode(raw)

	d.rx.head = (slot + 1) % RxSlots
	d.regs.WriteReg(RegRDT, uint32(slot))

	return frame, nil
}

// Release returns a frame obtained from Recv to the buffer pool
func (d *Driver) Release(frame []byte) {
	d.rxPool.PutSlice(frame)
}

// Close releases ring and buffer memory. The instance is not
// usable afterwards.
func (d *Driver) Close() error {
	d.releaseMemory()
	d.state = StateFail

	return nil
}
