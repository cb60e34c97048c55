package rtxdi

import "structs"

// RISBufferSegmentParameters describes a presampling segment request: how
// many tiles to carve out and how many light samples each tile holds. Both
// must be non-zero powers of two.
type RISBufferSegmentParameters struct {
	TileSize  uint32
	TileCount uint32
}

// RISBufferSegmentAllocation is an allocated segment of the shared RIS
// buffer, handed to the presampling and sampling kernels so they can address
// their tiles.
type RISBufferSegmentAllocation struct {
	_ structs.HostLayout

	BufferOffset uint32
	TileSize     uint32
	TileCount    uint32
	_            uint32
}

// RISBufferSegmentAllocator partitions a single flat RIS buffer into
// disjoint segments. It is a bump allocator: segments are never freed, and
// the backing buffer's size is the running total once all clients have
// claimed their segments.
//
// Callers must not rely on particular offset values, only on distinct calls
// returning non-overlapping ranges. Calls are not synchronized; serialize
// them if allocating from multiple goroutines.
type RISBufferSegmentAllocator struct {
	totalSize uint32
}

// AllocateSegment reserves size elements and returns the segment's offset
// into the RIS buffer.
func (a *RISBufferSegmentAllocator) AllocateSegment(size uint32) uint32 {
	offset := a.totalSize
	a.totalSize += size
	return offset
}

// TotalSizeInElements returns the combined size of all allocated segments.
func (a *RISBufferSegmentAllocator) TotalSizeInElements() uint32 {
	return a.totalSize
}
