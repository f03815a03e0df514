package pci

// Config access I/O ports. A config address is latched into the
// address port, the register value moves through the data port.
const (
	ConfAddrPort uint16 = 0xCF8
	ConfDataPort uint16 = 0xCFC
)

// MaxDevPerBus devices per PCI bus
const MaxDevPerBus = 32

// Configuration space register offsets, type 0 header
const (
	IDReg            uint32 = 0x00
	CommandStatusReg uint32 = 0x04
	ClassReg         uint32 = 0x08
	BHLCReg          uint32 = 0x0C
	MapRegStart      uint32 = 0x10
	MapRegEnd        uint32 = 0x28
	InterruptReg     uint32 = 0x3C
)

// Command register bits
const (
	CommandIOEnable     uint32 = 0x00000001
	CommandMemEnable    uint32 = 0x00000002
	CommandMasterEnable uint32 = 0x00000004
)

// ClassNetwork network controller base class
const ClassNetwork uint8 = 0x02

// EmptySlotVendor vendor id read back from an unpopulated slot
const EmptySlotVendor uint16 = 0xFFFF

func Vendor(devid uint32) uint16 {
	return uint16(devid)
}

func Product(devid uint32) uint16 {
	return uint16(devid >> 16)
}

func Class(classreg uint32) uint8 {
	return uint8(classreg >> 24)
}

func SubClass(classreg uint32) uint8 {
	return uint8(classreg >> 16)
}

func HdrType(bhlc uint32) uint8 {
	return uint8(bhlc>>16) & 0x7F
}

func MultiFunc(bhlc uint32) bool {
	return bhlc&0x00800000 != 0
}

func IntrLine(intr uint32) uint8 {
	return uint8(intr)
}

func IntrPin(intr uint32) uint8 {
	return uint8(intr >> 8)
}

// MapRegNum BAR index for a map register offset
func MapRegNum(offset uint32) int {
	return int(offset-MapRegStart) / 4
}

// BAR probe value decoding. Size falls out of the two's complement
// of the masked all-ones readback.
const (
	mapRegTypeMask uint32 = 0x00000001
	mapRegTypeIO   uint32 = 0x00000001
	memTypeMask    uint32 = 0x00000006
	memType64Bit   uint32 = 0x00000004
	memAddrMask    uint32 = 0xFFFFFFF0
	ioAddrMask     uint32 = 0xFFFFFFFC
)

func MapRegIsIO(value uint32) bool {
	return value&mapRegTypeMask == mapRegTypeIO
}

func MemType64(value uint32) bool {
	return value&memTypeMask == memType64Bit
}

func MemAddr(value uint32) uint32 {
	return value & memAddrMask
}

func MemSize(probe uint32) uint32 {
	return -(probe & memAddrMask)
}

func IOAddr(value uint32) uint32 {
	return value & ioAddrMask
}

func IOSize(probe uint32) uint32 {
	return -(probe & ioAddrMask)
}
