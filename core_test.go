package nic4go_test

import (
	"math/rand"
	"testing"

	"github.com/frozenpine/nic4go"
)

func TestMACText(t *testing.T) {
	mac := nic4go.MACAddr{0x52, 0x54, 0x00, 0xAB, 0xCD, 0xEF}

	text := nic4go.UnpackMAC(mac)
	if text != "52:54:00:AB:CD:EF" {
		t.Fatal("unpack failed:", text)
	}

	if len(text) != 17 {
		t.Fatal("mac text length:", len(text))
	}

	packed, err := nic4go.PackMAC(text)
	if err != nil {
		t.Fatal(err)
	}

	if packed != mac {
		t.Fatal("pack round trip failed:", packed)
	}

	if _, err = nic4go.PackMAC("52:54:00:AB:CD"); err == nil {
		t.Fatal("short text accepted")
	}

	if _, err = nic4go.PackMAC("52-54-00-AB-CD-EF"); err == nil {
		t.Fatal("wrong separator accepted")
	}

	if _, err = nic4go.PackMAC("5G:54:00:AB:CD:EF"); err == nil {
		t.Fatal("non-hex digit accepted")
	}
}

func TestMACTextRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for loop := 0; loop < 1000; loop++ {
		var mac nic4go.MACAddr
		rnd.Read(mac[:])

		text := nic4go.UnpackMAC(mac)
		if len(text) != 17 {
			t.Fatal("mac text length:", text)
		}

		packed, err := nic4go.PackMAC(text)
		if err != nil {
			t.Fatal(err)
		}

		if packed != mac {
			t.Fatalf("round trip failed: %v -> %s -> %v", mac, text, packed)
		}
	}
}

func TestIPv4Text(t *testing.T) {
	ip, err := nic4go.ParseIPv4("192.168.2.1")
	if err != nil {
		t.Fatal(err)
	}

	// first octet lands in the low byte
	if ip != 0x0102A8C0 {
		t.Fatalf("packing order wrong: 0x%08X", uint32(ip))
	}

	if ip.String() != "192.168.2.1" {
		t.Fatal("format failed:", ip.String())
	}

	if octets := ip.Octets(); octets != [4]byte{192, 168, 2, 1} {
		t.Fatal("octet order wrong:", octets)
	}

	for _, bad := range []string{
		"", "1.2.3", "1.2.3.4.5", "256.0.0.1",
		"1..2.3", "a.b.c.d", "1.2.3.4.",
	} {
		if _, err := nic4go.ParseIPv4(bad); err == nil {
			t.Fatal("accepted invalid ip text:", bad)
		}
	}
}

func TestIPv4TextRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for loop := 0; loop < 1000; loop++ {
		ip := nic4go.IPv4(rnd.Uint32())

		parsed, err := nic4go.ParseIPv4(ip.String())
		if err != nil {
			t.Fatal(err)
		}

		if parsed != ip {
			t.Fatalf("round trip failed: 0x%08X -> %s -> 0x%08X",
				uint32(ip), ip.String(), uint32(parsed))
		}
	}
}
