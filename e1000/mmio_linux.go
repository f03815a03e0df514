//go:build linux

package e1000

import (
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mmapRegIO register window over a mapped sysfs resource file
type mmapRegIO struct {
	mem []byte
}

// MapSysfsResource returns a MapFunc backed by the device's sysfs
// resource file (/sys/bus/pci/devices/<bdf>/resource0). The BAR
// base is already encoded in the file, only the size is honored.
func MapSysfsResource(path string) MapFunc {
	return func(_ uint32, size uint32) (RegIO, error) {
		fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC, 0)
		if err != nil {
			return nil, errors.Wrap(err, "open resource file failed")
		}
		defer unix.Close(fd)

		mem, err := unix.Mmap(fd, 0, int(size),
			unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			return nil, errors.Wrap(err, "map register window failed")
		}

		return &mmapRegIO{mem: mem}, nil
	}
}

func (m *mmapRegIO) reg(offset uint32) *uint32 {
	return (*uint32)(unsafe.Pointer(&m.mem[offset]))
}

// atomic access keeps the compiler from folding register reads

func (m *mmapRegIO) ReadReg(offset uint32) uint32 {
	return atomic.LoadUint32(m.reg(offset))
}

func (m *mmapRegIO) WriteReg(offset, value uint32) {
	atomic.StoreUint32(m.reg(offset), value)
}

func (m *mmapRegIO) Close() error {
	return unix.Munmap(m.mem)
}
