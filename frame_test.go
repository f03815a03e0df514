package nic4go_test

import (
	"bytes"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/frozenpine/nic4go"
)

var stationMAC = nic4go.MACAddr{0x52, 0x54, 0x00, 0x12, 0x34, 0x56}

func TestBuildRequest(t *testing.T) {
	frm, err := nic4go.BuildRequest(stationMAC, "192.168.2.1")
	if err != nil {
		t.Fatal(err)
	}

	if frm.DstMAC != nic4go.BroadcastMAC {
		t.Fatal("destination is not broadcast:", frm.DstMAC)
	}

	if frm.SrcMAC != stationMAC || frm.SenderMAC != stationMAC {
		t.Fatal("station mac not stamped")
	}

	if frm.EtherType != nic4go.EtherTypeARP ||
		frm.ProtoType != nic4go.EtherTypeIPv4 ||
		frm.HWType != nic4go.ARPHWTypeEthernet {
		t.Fatal("frame types wrong")
	}

	if frm.OpCode != nic4go.ARPRequest {
		t.Fatal("opcode wrong:", frm.OpCode)
	}

	if !frm.TargetMAC.IsZero() {
		t.Fatal("target mac must stay unset")
	}

	if frm.TargetIP.String() != "192.168.2.1" {
		t.Fatal("target ip wrong:", frm.TargetIP)
	}

	if _, err = nic4go.BuildRequest(stationMAC, "no-such-ip"); err == nil {
		t.Fatal("invalid ip text accepted")
	}
}

func TestFrameWire(t *testing.T) {
	frm, err := nic4go.BuildRequest(stationMAC, "192.168.2.1")
	if err != nil {
		t.Fatal(err)
	}

	wire := make([]byte, nic4go.ARPFrameWireSize)

	n, err := frm.Marshal(wire)
	if err != nil {
		t.Fatal(err)
	}

	if n != 42 {
		t.Fatal("wire size wrong:", n)
	}

	// ethertype in network byte order right behind the addresses
	if wire[12] != 0x08 || wire[13] != 0x06 {
		t.Fatalf("ethertype bytes wrong: %02x%02x", wire[12], wire[13])
	}

	// target ip in transmission order at the frame tail
	if !bytes.Equal(wire[38:42], []byte{192, 168, 2, 1}) {
		t.Fatal("target ip bytes wrong:", wire[38:42])
	}

	var decoded nic4go.ARPFrame
	if err := decoded.Unmarshal(wire); err != nil {
		t.Fatal(err)
	}

	if decoded != *frm {
		t.Fatalf("wire round trip failed:\n%+v\n%+v", *frm, decoded)
	}

	if err := decoded.Unmarshal(wire[:41]); err == nil {
		t.Fatal("short frame accepted")
	}
}

// cross-check the encoder against an independent implementation
func TestFrameWireGopacket(t *testing.T) {
	frm, err := nic4go.BuildRequest(stationMAC, "10.0.0.77")
	if err != nil {
		t.Fatal(err)
	}

	wire := make([]byte, nic4go.ARPFrameWireSize)
	if _, err = frm.Marshal(wire); err != nil {
		t.Fatal(err)
	}

	pkt := gopacket.NewPacket(wire, layers.LayerTypeEthernet, gopacket.Default)

	arpLayer := pkt.Layer(layers.LayerTypeARP)
	if arpLayer == nil {
		t.Fatal("gopacket found no arp layer")
	}

	arp, _ := arpLayer.(*layers.ARP)

	if arp.Operation != layers.ARPRequest {
		t.Fatal("operation wrong:", arp.Operation)
	}

	if !bytes.Equal(arp.SourceHwAddress, stationMAC[:]) {
		t.Fatal("sender mac wrong:", arp.SourceHwAddress)
	}

	if !bytes.Equal(arp.DstProtAddress, []byte{10, 0, 0, 77}) {
		t.Fatal("target ip wrong:", arp.DstProtAddress)
	}

	srcIP := nic4go.RequestSourceIP.Octets()
	if !bytes.Equal(arp.SourceProtAddress, srcIP[:]) {
		t.Fatal("sender ip wrong:", arp.SourceProtAddress)
	}
}

func validReply(sender nic4go.MACAddr) *nic4go.ARPFrame {
	return &nic4go.ARPFrame{
		DstMAC:    nic4go.BroadcastMAC,
		SrcMAC:    sender,
		EtherType: nic4go.EtherTypeARP,
		HWType:    nic4go.ARPHWTypeEthernet,
		ProtoType: nic4go.EtherTypeIPv4,
		HWSize:    nic4go.ARPHWAddrLen,
		ProtoSize: nic4go.ARPProtoAddrLen,
		OpCode:    nic4go.ARPReply,
		SenderMAC: sender,
		SenderIP:  0x0102A8C0,
		TargetMAC: nic4go.BroadcastMAC,
		TargetIP:  0xFFFFFFFF,
	}
}

func TestValidateReply(t *testing.T) {
	sender := nic4go.MACAddr{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01}

	mac, err := nic4go.ValidateReply(validReply(sender))
	if err != nil {
		t.Fatal(err)
	}

	if mac != "DE:AD:BE:EF:00:01" {
		t.Fatal("resolved mac wrong:", mac)
	}

	if len(mac) != 17 {
		t.Fatal("resolved mac length:", len(mac))
	}

	// a well-formed request must never pass as a reply
	frm := validReply(sender)
	frm.OpCode = nic4go.ARPRequest

	if _, err = nic4go.ValidateReply(frm); err != nic4go.ErrNotReply {
		t.Fatal("request accepted as reply:", err)
	}

	frm = validReply(sender)
	frm.EtherType = nic4go.EtherTypeIPv4

	if _, err = nic4go.ValidateReply(frm); err != nic4go.ErrNotARP {
		t.Fatal("wrong ethertype accepted:", err)
	}

	frm = validReply(sender)
	frm.ProtoType = 0x86DD

	if _, err = nic4go.ValidateReply(frm); err != nic4go.ErrNotIPv4Proto {
		t.Fatal("wrong proto type accepted:", err)
	}

	// the filter matches the broadcast address, a directly
	// addressed reply is dropped
	frm = validReply(sender)
	frm.TargetMAC = stationMAC

	if _, err = nic4go.ValidateReply(frm); err != nic4go.ErrNotRecipient {
		t.Fatal("unicast target accepted:", err)
	}

	frm = validReply(sender)
	frm.TargetIP = 0x0102A8C0

	if _, err = nic4go.ValidateReply(frm); err != nic4go.ErrNotRecipient {
		t.Fatal("non-sentinel target ip accepted:", err)
	}
}
