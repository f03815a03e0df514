package virt

import (
	"bytes"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"

	"github.com/frozenpine/nic4go"
)

// ARPResponder a peer on the modeled wire that answers requests
// for its address. Replies carry the broadcast target MAC and the
// all-ones target IP, matching the reply shape the resolver's
// validation filter expects.
type ARPResponder struct {
	MAC nic4go.MACAddr
	IP  nic4go.IPv4

	dev *E1000
}

// NewARPResponder parses ip and binds the peer to the device whose
// receive ring replies land in
func NewARPResponder(dev *E1000, mac nic4go.MACAddr, ip string) (*ARPResponder, error) {
	parsed, err := nic4go.ParseIPv4(ip)
	if err != nil {
		return nil, errors.Wrapf(err, "responder address %s", ip)
	}

	return &ARPResponder{
		MAC: mac,
		IP:  parsed,
		dev: dev,
	}, nil
}

// Handle inspects one transmitted frame and injects a reply when
// it is a request for this peer. Anything else is ignored.
func (peer *ARPResponder) Handle(frame []byte) error {
	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)

	arpLayer := pkt.Layer(layers.LayerTypeARP)
	if arpLayer == nil {
		return nil
	}

	req, _ := arpLayer.(*layers.ARP)
	if req == nil || req.Operation != layers.ARPRequest {
		return nil
	}

	want := peer.IP.Octets()
	if !bytes.Equal(req.DstProtAddress, want[:]) {
		return nil
	}

	reply, err := peer.buildReply()
	if err != nil {
		return err
	}

	return peer.dev.Deliver(reply)
}

func (peer *ARPResponder) buildReply() ([]byte, error) {
	selfIP := peer.IP.Octets()

	eth := layers.Ethernet{
		SrcMAC:       net.HardwareAddr(peer.MAC[:]),
		DstMAC:       net.HardwareAddr(nic4go.BroadcastMAC[:]),
		EthernetType: layers.EthernetTypeARP,
	}

	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     nic4go.ARPHWAddrLen,
		ProtAddressSize:   nic4go.ARPProtoAddrLen,
		Operation:         layers.ARPReply,
		SourceHwAddress:   peer.MAC[:],
		SourceProtAddress: selfIP[:],
		DstHwAddress:      nic4go.BroadcastMAC[:],
		DstProtAddress:    []byte{0xFF, 0xFF, 0xFF, 0xFF},
	}

	buff := gopacket.NewSerializeBuffer()

	if err := gopacket.SerializeLayers(
		buff,
		gopacket.SerializeOptions{FixLengths: true},
		&eth, &arp,
	); err != nil {
		return nil, errors.Wrap(err, "serialize reply failed")
	}

	return buff.Bytes(), nil
}
