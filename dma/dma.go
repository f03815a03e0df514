package dma

import (
	"sync"

	"github.com/pkg/errors"
)

// PageSize allocation granularity
const PageSize = 4096

// DefaultPhysBase physical address the default arena hands out from
const DefaultPhysBase uint64 = 0x00100000

var (
	ErrOutOfMemory = errors.New("dma: out of memory")
	ErrBadRegion   = errors.New("dma: region not owned by this allocator")
	ErrOutOfBounds = errors.New("dma: physical range outside arena")
	ErrInvalidSize = errors.New("dma: invalid allocation size")
)

// Region one physically contiguous block. Virtual bytes and the
// physical base stay glued together so ring code never juggles
// raw addresses.
type Region struct {
	buf   []byte
	phys  uint64
	owned bool
}

// NewRegion wraps caller-provided memory, mainly for alternative
// allocators
func NewRegion(buf []byte, phys uint64) *Region {
	return &Region{buf: buf, phys: phys}
}

func (r *Region) Bytes() []byte {
	return r.buf
}

func (r *Region) Len() int {
	return len(r.buf)
}

func (r *Region) Phys() uint64 {
	return r.phys
}

// PhysAt translates an offset inside the region, the only place a
// physical address is ever produced for hardware
func (r *Region) PhysAt(offset int) uint64 {
	return r.phys + uint64(offset)
}

// Slice returns a sub-view sharing the backing memory. Views are
// never freed on their own.
func (r *Region) Slice(offset, size int) *Region {
	return &Region{
		buf:  r.buf[offset : offset+size],
		phys: r.phys + uint64(offset),
	}
}

// Allocator page granular, physically contiguous memory service
type Allocator interface {
	Alloc(size int) (*Region, error)
	Free(region *Region) error
}

type span struct {
	offset int
	pages  int
}

// Arena a fixed block of fake physical memory backing descriptor
// rings and packet buffers. Doubles as the device-side view: DMA
// reads and writes resolve through MemAt.
type Arena struct {
	mu       sync.Mutex
	mem      []byte
	physBase uint64
	next     int
	free     []span
}

// NewArena builds an arena of the given page count
func NewArena(pages int) *Arena {
	return &Arena{
		mem:      make([]byte, pages*PageSize),
		physBase: DefaultPhysBase,
	}
}

func pagesFor(size int) int {
	return (size + PageSize - 1) / PageSize
}

// Alloc hands out a zeroed page run
func (a *Arena) Alloc(size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	pages := pagesFor(size)

	a.mu.Lock()
	defer a.mu.Unlock()

	offset := -1

	for idx, s := range a.free {
		if s.pages == pages {
			offset = s.offset
			a.free = append(a.free[:idx], a.free[idx+1:]...)
			break
		}
	}

	if offset < 0 {
		if a.next+pages*PageSize > len(a.mem) {
			return nil, ErrOutOfMemory
		}

		offset = a.next
		a.next += pages * PageSize
	}

	buf := a.mem[offset : offset+pages*PageSize]
	for idx := range buf {
		buf[idx] = 0
	}

	return &Region{
		buf:   buf[:size],
		phys:  a.physBase + uint64(offset),
		owned: true,
	}, nil
}

// Free returns a previously allocated run to the arena
func (a *Arena) Free(region *Region) error {
	if region == nil || !region.owned {
		return ErrBadRegion
	}

	if region.phys < a.physBase ||
		region.phys+uint64(len(region.buf)) > a.physBase+uint64(len(a.mem)) {
		return ErrBadRegion
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.free = append(a.free, span{
		offset: int(region.phys - a.physBase),
		pages:  pagesFor(len(region.buf)),
	})
	region.owned = false

	return nil
}

// MemAt resolves a physical range back to arena memory, the
// device-side half of a DMA transfer
func (a *Arena) MemAt(phys uint64, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}

	if phys < a.physBase {
		return nil, ErrOutOfBounds
	}

	offset := phys - a.physBase
	if offset+uint64(size) > uint64(len(a.mem)) {
		return nil, ErrOutOfBounds
	}

	return a.mem[offset : offset+uint64(size)], nil
}
