package nic4go

import (
	"fmt"
	"strconv"

	"github.com/valyala/bytebufferpool"

	origin_errors "errors"
)

var (
	ARPFrameSize     = 44
	ARPFrameWireSize = ARPFrameSize - 2

	ErrInsufficentData = origin_errors.New("insufficent data length")
	ErrInvalidMACText  = origin_errors.New("invalid mac address text")
	ErrInvalidIPText   = origin_errors.New("invalid ip address text")
)

// MACAddr ethernet mac address
type MACAddr [6]byte

// BroadcastMAC all-ones destination used by ARP requests
var BroadcastMAC = MACAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// String formats as colon separated upper hex pairs, 17 chars
func (addr MACAddr) String() string {
	return fmt.Sprintf(
		"%02X:%02X:%02X:%02X:%02X:%02X",
		addr[0], addr[1], addr[2],
		addr[3], addr[4], addr[5],
	)
}

func (addr MACAddr) IsZero() bool {
	return addr == MACAddr{}
}

// UnpackMAC converts a binary mac address to its text form
func UnpackMAC(addr MACAddr) string {
	return addr.String()
}

// PackMAC parses the XX:XX:XX:XX:XX:XX text form of a mac address
func PackMAC(macstr string) (addr MACAddr, err error) {
	if len(macstr) != 17 {
		return addr, ErrInvalidMACText
	}

	for i, j := 0, 0; i < 17; i += 3 {
		hi, hiOK := hexToInt(macstr[i])
		lo, loOK := hexToInt(macstr[i+1])

		if !hiOK || !loOK {
			return MACAddr{}, ErrInvalidMACText
		}

		if i+2 < 17 && macstr[i+2] != ':' {
			return MACAddr{}, ErrInvalidMACText
		}

		addr[j] = hi<<4 | lo
		j++
	}

	return addr, nil
}

// IPv4 ip v4 address packed least significant octet first:
// the first octet of the dotted text form lands in the low byte
type IPv4 uint32

// ParseIPv4 parses dotted decimal text into the packed form
func ParseIPv4(text string) (IPv4, error) {
	var (
		ip    IPv4
		shift uint
		count int
		acc   = -1
	)

	flush := func() error {
		if acc < 0 || count >= 4 {
			return ErrInvalidIPText
		}

		ip |= IPv4(acc) << shift
		shift += 8
		count++
		acc = -1

		return nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch {
		case c == '.':
			if err := flush(); err != nil {
				return 0, err
			}
		case c >= '0' && c <= '9':
			if acc < 0 {
				acc = 0
			}
			acc = acc*10 + int(c-'0')

			if acc > 255 {
				return 0, ErrInvalidIPText
			}
		default:
			return 0, ErrInvalidIPText
		}
	}

	if err := flush(); err != nil {
		return 0, err
	}

	if count != 4 {
		return 0, ErrInvalidIPText
	}

	return ip, nil
}

func (ip IPv4) String() string {
	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	for i := 0; i < 4; i++ {
		if i > 0 {
			buff.WriteByte('.')
		}

		buff.WriteString(strconv.Itoa(int(ip >> (8 * i) & 0xFF)))
	}

	return buff.String()
}

// Octets returns the address in transmission order
func (ip IPv4) Octets() [4]byte {
	return [4]byte{
		byte(ip), byte(ip >> 8),
		byte(ip >> 16), byte(ip >> 24),
	}
}

type EtherType uint16

//go:generate stringer -type EtherType -linecomment
const (
	EtherTypeARP  EtherType = 0x0806 // arp
	EtherTypeIPv4 EtherType = 0x0800 // ipv4
)

// ARPOp arp operation code
type ARPOp uint16

//go:generate stringer -type ARPOp -linecomment
const (
	ARPRequest ARPOp = 1 // request
	ARPReply   ARPOp = 2 // reply
)

const (
	// ARPHWTypeEthernet hardware type for ethernet links
	ARPHWTypeEthernet uint16 = 1
	// ARPHWAddrLen hardware address length
	ARPHWAddrLen uint8 = 6
	// ARPProtoAddrLen protocol address length
	ARPProtoAddrLen uint8 = 4
)

// ARPFrame ethernet header plus arp payload, the only frame
// shape this stack sends or consumes
type ARPFrame struct {
	// Destination host address
	DstMAC MACAddr
	// Source host address
	SrcMAC MACAddr
	// Frame payload type
	EtherType EtherType
	// Link hardware type
	HWType uint16
	// Resolved protocol type
	ProtoType EtherType
	// Hardware address length
	HWSize uint8
	// Protocol address length
	ProtoSize uint8
	// Request or reply
	OpCode ARPOp
	// Sender hardware address
	SenderMAC MACAddr
	// Sender protocol address
	SenderIP IPv4
	// Target hardware address
	TargetMAC MACAddr
	// Target protocol address
	TargetIP IPv4
	// Trailing padding, never transmitted
	Pad uint16
}

// Marshal encodes the frame in transmission order, padding excluded.
// Shorts are network byte order, addresses keep their packed layout.
func (frm *ARPFrame) Marshal(buff []byte) (int, error) {
	if len(buff) < ARPFrameWireSize {
		return 0, ErrInsufficentData
	}

	offset := 0

	WriteBytes(buff, frm.DstMAC[:], &offset)
	WriteBytes(buff, frm.SrcMAC[:], &offset)
	H2NShort(buff, uint16(frm.EtherType), &offset)
	H2NShort(buff, frm.HWType, &offset)
	H2NShort(buff, uint16(frm.ProtoType), &offset)
	PutByte(buff, frm.HWSize, &offset)
	PutByte(buff, frm.ProtoSize, &offset)
	H2NShort(buff, uint16(frm.OpCode), &offset)
	WriteBytes(buff, frm.SenderMAC[:], &offset)
	PutIPv4(buff, frm.SenderIP, &offset)
	WriteBytes(buff, frm.TargetMAC[:], &offset)
	PutIPv4(buff, frm.TargetIP, &offset)

	return offset, nil
}

// Unmarshal decodes a wire frame, tolerating trailing bytes
func (frm *ARPFrame) Unmarshal(buff []byte) error {
	if len(buff) < ARPFrameWireSize {
		return ErrInsufficentData
	}

	offset := 0

	if err := ReadBytes(frm.DstMAC[:], buff, &offset); err != nil {
		return err
	}

	if err := ReadBytes(frm.SrcMAC[:], buff, &offset); err != nil {
		return err
	}

	frm.EtherType = EtherType(N2HShort(buff, &offset))
	frm.HWType = N2HShort(buff, &offset)
	frm.ProtoType = EtherType(N2HShort(buff, &offset))
	frm.HWSize = NByte(buff, &offset)
	frm.ProtoSize = NByte(buff, &offset)
	frm.OpCode = ARPOp(N2HShort(buff, &offset))

	if err := ReadBytes(frm.SenderMAC[:], buff, &offset); err != nil {
		return err
	}

	frm.SenderIP = NIPv4(buff, &offset)

	if err := ReadBytes(frm.TargetMAC[:], buff, &offset); err != nil {
		return err
	}

	frm.TargetIP = NIPv4(buff, &offset)

	return nil
}
