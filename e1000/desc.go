package e1000

import (
	"encoding/binary"
)

// TxDesc legacy transmit descriptor, 16 bytes in ring memory
type TxDesc struct {
	// Buffer Address
	Addr uint64
	// Length
	Len uint16
	// Checksum Offset
	CSO uint8
	// Command
	Cmd uint8
	// Status
	Sts uint8
	// Checksum Start
	CSS uint8
	// Special
	Spc uint16
}

func (desc *TxDesc) Encode(buff []byte) {
	binary.LittleEndian.PutUint64(buff[0:], desc.Addr)
	binary.LittleEndian.PutUint16(buff[8:], desc.Len)
	buff[10] = desc.CSO
	buff[11] = desc.Cmd
	buff[12] = desc.Sts
	buff[13] = desc.CSS
	binary.LittleEndian.PutUint16(buff[14:], desc.Spc)
}

func (desc *TxDesc) Decode(buff []byte) {
	desc.Addr = binary.LittleEndian.Uint64(buff[0:])
	desc.Len = binary.LittleEndian.Uint16(buff[8:])
	desc.CSO = buff[10]
	desc.Cmd = buff[11]
	desc.Sts = buff[12]
	desc.CSS = buff[13]
	desc.Spc = binary.LittleEndian.Uint16(buff[14:])
}

// Done hardware completion flag
func (desc *TxDesc) Done() bool {
	return desc.Sts&TxStsDone != 0
}

// RxDesc legacy receive descriptor, 16 bytes in ring memory
type RxDesc struct {
	// First Buffer Address
	Addr0 uint32
	// Second Buffer Address
	Addr1 uint32
	// Length
	Len uint16
	// Checksum
	Csm uint16
	// Status
	Sts uint8
	// Errors
	Err uint8
	// Special
	Spc uint16
}

func (desc *RxDesc) Encode(buff []byte) {
	binary.LittleEndian.PutUint32(buff[0:], desc.Addr0)
	binary.LittleEndian.PutUint32(buff[4:], desc.Addr1)
	binary.LittleEndian.PutUint16(buff[8:], desc.Len)
	binary.LittleEndian.PutUint16(buff[10:], desc.Csm)
	buff[12] = desc.Sts
	buff[13] = desc.Err
	binary.LittleEndian.PutUint16(buff[14:], desc.Spc)
}

func (desc *RxDesc) Decode(buff []byte) {
	desc.Addr0 = binary.LittleEndian.Uint32(buff[0:])
	desc.Addr1 = binary.LittleEndian.Uint32(buff[4:])
	desc.Len = binary.LittleEndian.Uint16(buff[8:])
	desc.Csm = binary.LittleEndian.Uint16(buff[10:])
	desc.Sts = buff[12]
	desc.Err = buff[13]
	desc.Spc = binary.LittleEndian.Uint16(buff[14:])
}

// Done hardware completion flag
func (desc *RxDesc) Done() bool {
	return desc.Sts&RxStsDone != 0
}
