package rtxdi

import "testing"

func TestAllocateSegmentBumps(t *testing.T) {
	var alloc RISBufferSegmentAllocator
	o1 := alloc.AllocateSegment(1024 * 128)
	o2 := alloc.AllocateSegment(2048 * 64)
	if o1 != 0 {
		t.Errorf("first AllocateSegment = %d, want 0", o1)
	}
	if o2 != o1+1024*128 {
		t.Errorf("second AllocateSegment = %d, want %d", o2, o1+1024*128)
	}
	if total := alloc.TotalSizeInElements(); total != 1024*128+2048*64 {
		t.Errorf("TotalSizeInElements = %d, want %d", total, 1024*128+2048*64)
	}
}

func TestAllocateSegmentSequence(t *testing.T) {
	var alloc RISBufferSegmentAllocator
	sizes := []uint32{1, 4096, 64, 1 << 20, 2, 512}
	var want uint32
	for i, size := range sizes {
		got := alloc.AllocateSegment(size)
		if got != want {
			t.Errorf("call %d: AllocateSegment(%d) = %d, want %d", i, size, got, want)
		}
		want += size
	}
	if total := alloc.TotalSizeInElements(); total != want {
		t.Errorf("TotalSizeInElements = %d, want %d", total, want)
	}
}

func TestAllocateSegmentZeroSize(t *testing.T) {
	var alloc RISBufferSegmentAllocator
	alloc.AllocateSegment(128)
	o := alloc.AllocateSegment(0)
	if o != 128 {
		t.Errorf("AllocateSegment(0) = %d, want 128", o)
	}
	if next := alloc.AllocateSegment(16); next != 128 {
		t.Errorf("offset after zero-size segment = %d, want 128", next)
	}
}
