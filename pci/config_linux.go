//go:build linux

package pci

import (
	"encoding/binary"
	"fmt"
	"log"

	"golang.org/x/sys/unix"
)

const defaultSysfsRoot = "/sys/bus/pci/devices"

// sysfsSpace config space access through the kernel's per-device
// config file. Unimplemented or unreachable registers read back
// all-ones, same as an empty slot on a real bus.
type sysfsSpace struct {
	root   string
	domain uint16
}

// NewSysfsConfigSpace builds config space access over sysfs for
// PCI domain 0. Writes require CAP_SYS_ADMIN.
func NewSysfsConfigSpace(root string) ConfigSpace {
	if root == "" {
		root = defaultSysfsRoot
	}

	return &sysfsSpace{root: root}
}

func (s *sysfsSpace) configPath(bus, dev, fn uint32) string {
	return fmt.Sprintf("%s/%04x:%02x:%02x.%d/config",
		s.root, s.domain, bus, dev, fn)
}

func (s *sysfsSpace) Read(bus, dev, fn, offset uint32) uint32 {
	fd, err := unix.Open(s.configPath(bus, dev, fn), unix.O_RDONLY, 0)
	if err != nil {
		return 0xFFFFFFFF
	}
	defer unix.Close(fd)

	var raw [4]byte
	if n, err := unix.Pread(fd, raw[:], int64(offset)); err != nil || n != 4 {
		return 0xFFFFFFFF
	}

	return binary.LittleEndian.Uint32(raw[:])
}

func (s *sysfsSpace) Write(bus, dev, fn, offset, value uint32) {
	fd, err := unix.Open(s.configPath(bus, dev, fn), unix.O_WRONLY, 0)
	if err != nil {
		log.Printf("PCI config write %x:%x.%d+0x%x failed: %v",
			bus, dev, fn, offset, err)
		return
	}
	defer unix.Close(fd)

	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], value)

	if _, err := unix.Pwrite(fd, raw[:], int64(offset)); err != nil {
		log.Printf("PCI config write %x:%x.%d+0x%x failed: %v",
			bus, dev, fn, offset, err)
	}
}
