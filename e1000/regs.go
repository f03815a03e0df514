// Package e1000 drives the Intel 8254x gigabit ethernet controller
// family.
//
// Controller information retrieved from the following sources:
//
//	https://wiki.osdev.org/Intel_8254x
//	www.intel.com/content/dam/doc/manual/pci-pci-x-family-gbe-controllers-software-dev-manual.pdf
package e1000

// Device identity on the PCI bus
const (
	VendorIntel uint16 = 0x8086
	Product1000 uint16 = 0x100E
)

// Ring geometry and buffer capacity. Descriptor queues must sit on
// a 16 byte boundary in physical memory.
const (
	TxSlots  = 128
	RxSlots  = 128
	DescSize = 16
	BufSize  = 2046
)

// Fixed BAR expectations of this controller family
const (
	IOBARSize  uint32 = 64
	MemBARSize uint32 = 1 << 17
)

// Register offsets from the mapped base
const (
	RegCTRL  uint32 = 0x00000
	RegIMS   uint32 = 0x000D0
	RegRCTL  uint32 = 0x00100
	RegTCTL  uint32 = 0x00400
	RegTIPG  uint32 = 0x00410
	RegRDBAL uint32 = 0x02800
	RegRDBAH uint32 = 0x02804
	RegRDLEN uint32 = 0x02808
	RegRDH   uint32 = 0x02810
	RegRDT   uint32 = 0x02818
	RegTDBAL uint32 = 0x03800
	RegTDBAH uint32 = 0x03804
	RegTDLEN uint32 = 0x03808
	RegTDH   uint32 = 0x03810
	RegTDT   uint32 = 0x03818
	RegRAL0  uint32 = 0x05400
	RegRAH0  uint32 = 0x05404
)

// Control register bits
const (
	CtrlReset uint32 = 0x04000000
	CtrlASDE  uint32 = 0x00000020
	CtrlSLU   uint32 = 0x00000040
)

// Transmit control register bits
const (
	TctlEnable    uint32 = 0x00000002
	TctlPadShort  uint32 = 0x00000008
	tctlCTMask    uint32 = 0x00000FF0
	tctlCTShift          = 4
	tctlCOLDMask  uint32 = 0x003FF000
	tctlCOLDShift        = 12
)

// TctlCT collision threshold field
func TctlCT(value uint32) uint32 {
	return value << tctlCTShift & tctlCTMask
}

// TctlCOLD collision distance field
func TctlCOLD(value uint32) uint32 {
	return value << tctlCOLDShift & tctlCOLDMask
}

// Inter-packet gap timing fields
const (
	tipgIPGTMask   uint32 = 0x000003FF
	tipgIPGTShift         = 0
	tipgIPGR1Mask  uint32 = 0x000FFC00
	tipgIPGR1Shift        = 10
	tipgIPGR2Mask  uint32 = 0x3FF00000
	tipgIPGR2Shift        = 20
)

func TipgIPGT(value uint32) uint32 {
	return value << tipgIPGTShift & tipgIPGTMask
}

func TipgIPGR1(value uint32) uint32 {
	return value << tipgIPGR1Shift & tipgIPGR1Mask
}

func TipgIPGR2(value uint32) uint32 {
	return value << tipgIPGR2Shift & tipgIPGR2Mask
}

// Receive control register bits
const (
	RctlEnable    uint32 = 0x00000002
	RctlBroadcast uint32 = 0x00008000
	RctlBSize2048 uint32 = 0x00000000
	RctlStripCRC  uint32 = 0x04000000
)

// Interrupt mask set bits
const (
	IMSTxQueueEmpty uint32 = 0x00000002
	IMSRxSeqErr     uint32 = 0x00000008
	IMSRxOverrun    uint32 = 0x00000040
	IMSRxTimer      uint32 = 0x00000080
)

// Transmit descriptor command flags
const (
	TxCmdEOP  uint8 = 0x01
	TxCmdIFCS uint8 = 0x02
	TxCmdRS   uint8 = 0x08
)

// Descriptor status flags, written back by hardware
const (
	TxStsDone uint8 = 0x01
	RxStsDone uint8 = 0x01
	RxStsEOP  uint8 = 0x02
)
