package rtxdi

import "testing"

func TestReGIRContextGrid(t *testing.T) {
	var alloc RISBufferSegmentAllocator
	alloc.AllocateSegment(4096) // something else already lives in the buffer

	params := ReGIRStaticParameters{
		Mode:           ReGIRModeGrid,
		LightsPerCell:  256,
		GridParameters: ReGIRGridStaticParameters{GridSize: [3]uint32{8, 4, 8}},
	}
	ctx := NewReGIRContext(params, &alloc)

	if got := ctx.CellCount(); got != 8*4*8 {
		t.Errorf("CellCount = %d, want %d", got, 8*4*8)
	}
	seg := ctx.LightSlotSegment()
	if seg.BufferOffset != 4096 {
		t.Errorf("segment offset = %d, want 4096", seg.BufferOffset)
	}
	if seg.TileSize != 256 || seg.TileCount != 8*4*8 {
		t.Errorf("segment = %d tiles of %d, want %d of 256", seg.TileCount, seg.TileSize, 8*4*8)
	}
	if total := alloc.TotalSizeInElements(); total != 4096+8*4*8*256 {
		t.Errorf("allocator total = %d, want %d", total, 4096+8*4*8*256)
	}
	if !ctx.IsEnabled() {
		t.Error("IsEnabled = false for grid mode")
	}
}

func TestReGIRContextDisabled(t *testing.T) {
	var alloc RISBufferSegmentAllocator
	ctx := NewReGIRContext(ReGIRStaticParameters{Mode: ReGIRModeDisabled}, &alloc)
	if ctx.IsEnabled() {
		t.Error("IsEnabled = true for disabled mode")
	}
	if ctx.CellCount() != 0 {
		t.Errorf("CellCount = %d, want 0", ctx.CellCount())
	}
	if total := alloc.TotalSizeInElements(); total != 0 {
		t.Errorf("disabled context claimed %d elements", total)
	}
}

func TestReGIRDynamicParameters(t *testing.T) {
	var alloc RISBufferSegmentAllocator
	ctx := NewReGIRContext(DefaultReGIRStaticParameters(), &alloc)

	dyn := ctx.DynamicParameters()
	if dyn.RegirNumBuildSamples != 8 {
		t.Errorf("default RegirNumBuildSamples = %d, want 8", dyn.RegirNumBuildSamples)
	}
	if dyn.PresamplingMode != ReGIRPresamplingModeUniform {
		t.Errorf("default PresamplingMode = %d, want Uniform", dyn.PresamplingMode)
	}

	dyn.RegirCellSize = 2.5
	dyn.Center = [3]float32{10, 0, -4}
	ctx.SetDynamicParameters(dyn)
	if got := ctx.DynamicParameters(); got != dyn {
		t.Errorf("DynamicParameters = %+v, want %+v", got, dyn)
	}
}
