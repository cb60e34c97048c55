package rtxdi

import "testing"

func testGIStaticParams() ReSTIRGIStaticParameters {
	return ReSTIRGIStaticParameters{RenderWidth: 1920, RenderHeight: 1080}
}

func TestReSTIRGIDefaults(t *testing.T) {
	ctx := NewReSTIRGIContext(testGIStaticParams())
	if mode := ctx.ResamplingMode(); mode != ResamplingModeNone {
		t.Errorf("default ResamplingMode = %d, want None", mode)
	}
	trp := ctx.TemporalResamplingParameters()
	if trp.MaxHistoryLength != 8 {
		t.Errorf("MaxHistoryLength = %d, want 8", trp.MaxHistoryLength)
	}
	if trp.MaxReservoirAge != 30 {
		t.Errorf("MaxReservoirAge = %d, want 30", trp.MaxReservoirAge)
	}
	srp := ctx.SpatialResamplingParameters()
	if srp.NumSpatialSamples != 2 {
		t.Errorf("NumSpatialSamples = %d, want 2", srp.NumSpatialSamples)
	}
	fsp := ctx.FinalShadingParameters()
	if fsp.EnableFinalMIS != 1 {
		t.Errorf("EnableFinalMIS = %d, want 1", fsp.EnableFinalMIS)
	}
}

// The GI index table is a pure function of (mode, frame parity).
func TestReSTIRGIBufferIndices(t *testing.T) {
	tests := []struct {
		name  string
		mode  ResamplingMode
		frame uint32
		want  ReSTIRGIBufferIndices
	}{
		{
			name: "none", mode: ResamplingModeNone, frame: 7,
			want: ReSTIRGIBufferIndices{},
		},
		{
			name: "temporal even", mode: ResamplingModeTemporal, frame: 4,
			want: ReSTIRGIBufferIndices{
				SecondarySurfaceReSTIRDIOutputBufferIndex: 0,
				TemporalResamplingInputBufferIndex:        1,
				TemporalResamplingOutputBufferIndex:       0,
				FinalShadingInputBufferIndex:              0,
			},
		},
		{
			name: "temporal odd", mode: ResamplingModeTemporal, frame: 5,
			want: ReSTIRGIBufferIndices{
				SecondarySurfaceReSTIRDIOutputBufferIndex: 1,
				TemporalResamplingInputBufferIndex:        0,
				TemporalResamplingOutputBufferIndex:       1,
				FinalShadingInputBufferIndex:              1,
			},
		},
		{
			name: "spatial", mode: ResamplingModeSpatial, frame: 5,
			want: ReSTIRGIBufferIndices{
				SecondarySurfaceReSTIRDIOutputBufferIndex: 0,
				SpatialResamplingInputBufferIndex:         0,
				SpatialResamplingOutputBufferIndex:        1,
				FinalShadingInputBufferIndex:              1,
			},
		},
		{
			name: "temporal and spatial", mode: ResamplingModeTemporalAndSpatial, frame: 9,
			want: ReSTIRGIBufferIndices{
				SecondarySurfaceReSTIRDIOutputBufferIndex: 0,
				TemporalResamplingInputBufferIndex:        1,
				TemporalResamplingOutputBufferIndex:       0,
				SpatialResamplingInputBufferIndex:         0,
				SpatialResamplingOutputBufferIndex:        1,
				FinalShadingInputBufferIndex:              1,
			},
		},
		{
			name: "fused even", mode: ResamplingModeFusedSpatiotemporal, frame: 2,
			want: ReSTIRGIBufferIndices{
				SecondarySurfaceReSTIRDIOutputBufferIndex: 0,
				TemporalResamplingInputBufferIndex:        1,
				SpatialResamplingOutputBufferIndex:        0,
				FinalShadingInputBufferIndex:              0,
			},
		},
		{
			name: "fused odd", mode: ResamplingModeFusedSpatiotemporal, frame: 3,
			want: ReSTIRGIBufferIndices{
				SecondarySurfaceReSTIRDIOutputBufferIndex: 1,
				TemporalResamplingInputBufferIndex:        0,
				SpatialResamplingOutputBufferIndex:        1,
				FinalShadingInputBufferIndex:              1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewReSTIRGIContext(testGIStaticParams())
			ctx.SetResamplingMode(tt.mode)
			ctx.SetFrameIndex(tt.frame)
			if got := ctx.BufferIndices(); got != tt.want {
				t.Errorf("BufferIndices = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// In the parity-driven modes the output buffer is frameIndex&1 and the
// temporal input is always its complement.
func TestReSTIRGIParityComplement(t *testing.T) {
	for _, mode := range []ResamplingMode{ResamplingModeTemporal, ResamplingModeFusedSpatiotemporal} {
		ctx := NewReSTIRGIContext(testGIStaticParams())
		ctx.SetResamplingMode(mode)
		for frame := uint32(0); frame < 16; frame++ {
			ctx.SetFrameIndex(frame)
			bi := ctx.BufferIndices()
			if bi.SecondarySurfaceReSTIRDIOutputBufferIndex != frame&1 {
				t.Fatalf("mode %d frame %d: secondary output %d, want %d",
					mode, frame, bi.SecondarySurfaceReSTIRDIOutputBufferIndex, frame&1)
			}
			if bi.TemporalResamplingInputBufferIndex != 1-bi.SecondarySurfaceReSTIRDIOutputBufferIndex {
				t.Fatalf("mode %d frame %d: temporal input %d, want complement of output %d",
					mode, frame, bi.TemporalResamplingInputBufferIndex, bi.SecondarySurfaceReSTIRDIOutputBufferIndex)
			}
		}
	}
}

func TestReSTIRGITemporalReseed(t *testing.T) {
	ctx := NewReSTIRGIContext(testGIStaticParams())
	ctx.SetFrameIndex(9)
	if urn := ctx.TemporalResamplingParameters().UniformRandomNumber; urn != JenkinsHash(9) {
		t.Errorf("UniformRandomNumber = %d, want JenkinsHash(9) = %d", urn, JenkinsHash(9))
	}
	params := DefaultReSTIRGITemporalResamplingParams()
	params.UniformRandomNumber = 42
	ctx.SetTemporalResamplingParameters(params)
	if urn := ctx.TemporalResamplingParameters().UniformRandomNumber; urn != JenkinsHash(9) {
		t.Errorf("after replace: UniformRandomNumber = %d, want JenkinsHash(9) = %d", urn, JenkinsHash(9))
	}
}

func TestNewReSTIRGIContextValidation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewReSTIRGIContext with zero width did not panic")
		}
	}()
	NewReSTIRGIContext(ReSTIRGIStaticParameters{RenderWidth: 0, RenderHeight: 1080})
}
