package wgpu_engine

import (
	"testing"

	rtxdi "github.com/NVIDIAGameWorks/rtxdi-runtime"
)

func TestFrameConstantsLayout(t *testing.T) {
	// Uniform blocks require 16-byte struct size alignment.
	if frameConstantsSize%16 != 0 {
		t.Errorf("FrameConstants size %d is not a multiple of 16", frameConstantsSize)
	}
}

func TestDispatchSize(t *testing.T) {
	params := rtxdi.ReSTIRDIStaticParameters{
		NeighborOffsetCount: 8192,
		RenderWidth:         1920,
		RenderHeight:        1080,
	}
	if got := dispatchSize(params); got != [3]uint32{240, 135, 1} {
		t.Errorf("dispatchSize(1920x1080) = %v, want [240 135 1]", got)
	}

	params.CheckerboardSamplingMode = rtxdi.CheckerboardBlack
	if got := dispatchSize(params); got != [3]uint32{120, 135, 1} {
		t.Errorf("dispatchSize(checkerboard) = %v, want [120 135 1]", got)
	}

	params.CheckerboardSamplingMode = rtxdi.CheckerboardOff
	params.RenderWidth = 1927
	params.RenderHeight = 1081
	if got := dispatchSize(params); got != [3]uint32{241, 136, 1} {
		t.Errorf("dispatchSize(1927x1081) = %v, want [241 136 1]", got)
	}
}

func TestDIStagePasses(t *testing.T) {
	passes := DIPasses{
		InitialSampling:    0,
		TemporalResampling: 1,
		SpatialResampling:  2,
		FusedResampling:    3,
		Shading:            4,
	}
	tests := []struct {
		mode rtxdi.ResamplingMode
		want []PassID
	}{
		{rtxdi.ResamplingModeNone, []PassID{0, 4}},
		{rtxdi.ResamplingModeTemporal, []PassID{0, 1, 4}},
		{rtxdi.ResamplingModeSpatial, []PassID{0, 2, 4}},
		{rtxdi.ResamplingModeTemporalAndSpatial, []PassID{0, 1, 2, 4}},
		{rtxdi.ResamplingModeFusedSpatiotemporal, []PassID{0, 3, 4}},
	}
	for _, tt := range tests {
		got := diStagePasses(tt.mode, passes)
		if len(got) != len(tt.want) {
			t.Errorf("mode %d: diStagePasses = %v, want %v", tt.mode, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("mode %d: diStagePasses = %v, want %v", tt.mode, got, tt.want)
				break
			}
		}
	}
}

func TestReservoirPoolByteSize(t *testing.T) {
	params := rtxdi.CalculateReservoirBufferParameters(1920, 1080, rtxdi.CheckerboardOff)
	want := uint64(params.ReservoirArrayPitch) * 3 * 32
	if got := reservoirPoolByteSize(params, 32, rtxdi.NumReSTIRDIReservoirBuffers); got != want {
		t.Errorf("reservoirPoolByteSize = %d, want %d", got, want)
	}
}
