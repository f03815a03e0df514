package nic4go

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

func NByte(buffer []byte, offset *int) uint8 {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset)++
	}

	result := buffer[idx]

	return result
}

func N2HShort(buffer []byte, offset *int) uint16 {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 2
	}

	result := binary.BigEndian.Uint16(buffer[idx:])

	return result
}

func N2HLong(buffer []byte, offset *int) uint32 {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 4
	}

	result := binary.BigEndian.Uint32(buffer[idx:])

	return result
}

// NIPv4 reads a packed ip address, low octet transmitted first
func NIPv4(buffer []byte, offset *int) IPv4 {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 4
	}

	result := IPv4(binary.LittleEndian.Uint32(buffer[idx:]))

	return result
}

func ReadBytes(dst []byte, buffer []byte, offset *int) error {
	idx := 0

	if offset != nil {
		idx = *offset
	}
	buffer = buffer[idx:]

	if len(buffer) < len(dst) {
		return errors.New("insufficient data length")
	}

	if copyLen := copy(dst, buffer); offset != nil {
		*offset += copyLen
	}

	return nil
}

func PutByte(buffer []byte, value uint8, offset *int) {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset)++
	}

	buffer[idx] = value
}

func H2NShort(buffer []byte, value uint16, offset *int) {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 2
	}

	binary.BigEndian.PutUint16(buffer[idx:], value)
}

// PutIPv4 writes a packed ip address, low octet first on the wire
func PutIPv4(buffer []byte, value IPv4, offset *int) {
	idx := 0

	if offset != nil {
		idx = *offset
		(*offset) += 4
	}

	binary.LittleEndian.PutUint32(buffer[idx:], uint32(value))
}

func WriteBytes(buffer []byte, src []byte, offset *int) {
	idx := 0

	if offset != nil {
		idx = *offset
	}

	if copyLen := copy(buffer[idx:], src); offset != nil {
		*offset += copyLen
	}
}

func hexToInt(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return 10 + c - 'A', true
	case c >= 'a' && c <= 'f':
		return 10 + c - 'a', true
	default:
		return 0, false
	}
}
