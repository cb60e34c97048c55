package wgpu_engine

import (
	"structs"
	"unsafe"

	"honnef.co/go/safeish"
	"honnef.co/go/wgpu"

	rtxdi "github.com/NVIDIAGameWorks/rtxdi-runtime"
	"github.com/NVIDIAGameWorks/rtxdi-runtime/rmath"
)

// FrameConstants is the uniform block read by all resampling kernels. Must
// be kept in sync with the constants declaration in the kernels.
type FrameConstants struct {
	_ structs.HostLayout

	RuntimeParams     rtxdi.RuntimeParameters
	LightBufferParams rtxdi.LightBufferParameters

	LocalLightsRISBufferSegmentParams      rtxdi.RISBufferSegmentAllocation
	EnvironmentLightRISBufferSegmentParams rtxdi.RISBufferSegmentAllocation
	RegirLightSlotSegmentParams            rtxdi.RISBufferSegmentAllocation

	DIReservoirBufferParams rtxdi.ReservoirBufferParameters
	DIBufferIndices         rtxdi.ReSTIRDIBufferIndices
	DIInitialSamplingParams rtxdi.ReSTIRDIInitialSamplingParameters
	DITemporalParams        rtxdi.ReSTIRDITemporalResamplingParameters
	DISpatialParams         rtxdi.ReSTIRDISpatialResamplingParameters
	DIShadingParams         rtxdi.ReSTIRDIShadingParameters

	GIReservoirBufferParams rtxdi.ReservoirBufferParameters
	GIBufferIndices         rtxdi.ReSTIRGIBufferIndices
	GITemporalParams        rtxdi.ReSTIRGITemporalResamplingParameters
	GISpatialParams         rtxdi.ReSTIRGISpatialResamplingParameters
	GIFinalShadingParams    rtxdi.ReSTIRGIFinalShadingParameters

	RegirDynamicParams rtxdi.ReGIRDynamicParameters

	FrameIndex uint32
	_          uint32
	_          uint32
	_          uint32
}

const frameConstantsSize = uint64(unsafe.Sizeof(FrameConstants{}))

// UploadFrameConstants snapshots the context's per-frame state into the
// constants buffer. Call after SetFrameIndex and any parameter updates,
// before recording the frame's dispatches.
func (eng *Engine) UploadFrameConstants(queue *wgpu.Queue, isc *rtxdi.ImportanceSamplingContext) {
	di := isc.ReSTIRDIContext()
	gi := isc.ReSTIRGIContext()
	c := FrameConstants{
		RuntimeParams:     di.RuntimeParameters(),
		LightBufferParams: isc.LightBufferParameters(),

		LocalLightsRISBufferSegmentParams:      isc.LocalLightRISBufferSegmentParams(),
		EnvironmentLightRISBufferSegmentParams: isc.EnvironmentLightRISBufferSegmentParams(),
		RegirLightSlotSegmentParams:            isc.ReGIRContext().LightSlotSegment(),

		DIReservoirBufferParams: di.ReservoirBufferParameters(),
		DIBufferIndices:         di.BufferIndices(),
		DIInitialSamplingParams: di.InitialSamplingParameters(),
		DITemporalParams:        di.TemporalResamplingParameters(),
		DISpatialParams:         di.SpatialResamplingParameters(),
		DIShadingParams:         di.ShadingParameters(),

		GIReservoirBufferParams: gi.ReservoirBufferParameters(),
		GIBufferIndices:         gi.BufferIndices(),
		GITemporalParams:        gi.TemporalResamplingParameters(),
		GISpatialParams:         gi.SpatialResamplingParameters(),
		GIFinalShadingParams:    gi.FinalShadingParameters(),

		RegirDynamicParams: isc.ReGIRContext().DynamicParameters(),

		FrameIndex: di.FrameIndex(),
	}
	queue.WriteBuffer(eng.FrameConstantsBuffer, 0, safeish.AsBytes(&c))
}

// DIPasses names the direct-illumination kernels a renderer registered with
// AddPass. Passes the active resampling mode doesn't use may be left at
// their zero value.
type DIPasses struct {
	InitialSampling    PassID
	TemporalResampling PassID
	SpatialResampling  PassID
	FusedResampling    PassID
	Shading            PassID
}

// dispatchSize returns the number of screen-space workgroups for the given
// render size. With checkerboard sampling only half of the pixels are live,
// so the dispatch width is halved.
func dispatchSize(staticParams rtxdi.ReSTIRDIStaticParameters) [3]uint32 {
	width := staticParams.RenderWidth
	if staticParams.CheckerboardSamplingMode != rtxdi.CheckerboardOff {
		width = (width + 1) / 2
	}
	return [3]uint32{
		rmath.DivRoundUp(width, SCREEN_SPACE_GROUP_SIZE),
		rmath.DivRoundUp(staticParams.RenderHeight, SCREEN_SPACE_GROUP_SIZE),
		1,
	}
}

// diStagePasses returns the registered passes the mode enables, in dispatch
// order.
func diStagePasses(mode rtxdi.ResamplingMode, passes DIPasses) []PassID {
	out := []PassID{passes.InitialSampling}
	switch mode {
	case rtxdi.ResamplingModeTemporal:
		out = append(out, passes.TemporalResampling)
	case rtxdi.ResamplingModeSpatial:
		out = append(out, passes.SpatialResampling)
	case rtxdi.ResamplingModeTemporalAndSpatial:
		out = append(out, passes.TemporalResampling, passes.SpatialResampling)
	case rtxdi.ResamplingModeFusedSpatiotemporal:
		out = append(out, passes.FusedResampling)
	}
	return append(out, passes.Shading)
}

// RecordDIFrame records the direct-illumination dispatches for the current
// frame: initial sampling, then the resampling stages the active mode
// enables, then shading. The caller submits the encoder; UploadFrameConstants
// must have run for this frame first.
func (eng *Engine) RecordDIFrame(encoder *wgpu.CommandEncoder, isc *rtxdi.ImportanceSamplingContext, passes DIPasses) {
	di := isc.ReSTIRDIContext()
	wgs := dispatchSize(di.StaticParameters())
	for _, id := range diStagePasses(di.ResamplingMode(), passes) {
		eng.dispatch(encoder, id, wgs)
	}
}

func (eng *Engine) dispatch(encoder *wgpu.CommandEncoder, id PassID, wgs [3]uint32) {
	p := eng.passes[id]
	cpass := encoder.BeginComputePass(nil)
	defer cpass.Release()
	cpass.SetPipeline(p.pipeline)
	cpass.SetBindGroup(0, eng.bindGroup, nil)
	cpass.DispatchWorkgroups(wgs[0], wgs[1], wgs[2])
	cpass.End()
}
