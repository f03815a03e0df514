package nic4go

import "testing"

func TestOffset(t *testing.T) {
	offset := 0

	buffer := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	NByte(buffer, &offset)

	if offset != 1 {
		t.Fatal("byte read error")
	}

	N2HShort(buffer, &offset)

	if offset != 3 {
		t.Fatal("short read error")
	}

	N2HLong(buffer, &offset)

	if offset != 7 {
		t.Fatal("long read error")
	}

	NIPv4(buffer, &offset)

	if offset != 11 {
		t.Fatal("ip read error")
	}
}

func TestWriteOffset(t *testing.T) {
	offset := 0

	buffer := make([]byte, 16)

	PutByte(buffer, 0xAA, &offset)

	if offset != 1 || buffer[0] != 0xAA {
		t.Fatal("byte write error")
	}

	H2NShort(buffer, 0x0806, &offset)

	if offset != 3 || buffer[1] != 0x08 || buffer[2] != 0x06 {
		t.Fatal("short write error")
	}

	PutIPv4(buffer, 0x0102A8C0, &offset)

	if offset != 7 || buffer[3] != 192 || buffer[6] != 1 {
		t.Fatal("ip write error")
	}

	WriteBytes(buffer, []byte{1, 2, 3}, &offset)

	if offset != 10 || buffer[9] != 3 {
		t.Fatal("bytes write error")
	}

	readBack := 3
	if got := NIPv4(buffer, &readBack); got != 0x0102A8C0 {
		t.Fatalf("ip read back error: 0x%08X", uint32(got))
	}
}
