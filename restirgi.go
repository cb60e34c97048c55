package rtxdi

import (
	"fmt"
	"structs"
)

// NumReSTIRGIReservoirBuffers is the size of the reservoir buffer pool the
// global-illumination pipeline rotates through. GI reuses buffers more
// aggressively than DI: two buffers suffice because the index table is a
// pure function of the mode and the frame parity.
const NumReSTIRGIReservoirBuffers = 2

// ReSTIRGIStaticParameters configure a ReSTIRGIContext for its lifetime.
type ReSTIRGIStaticParameters struct {
	RenderWidth  uint32
	RenderHeight uint32

	CheckerboardSamplingMode CheckerboardMode
}

// ReSTIRGIBufferIndices names which reservoir buffer each stage of the
// global-illumination pipeline reads and writes this frame.
type ReSTIRGIBufferIndices struct {
	_ structs.HostLayout

	SecondarySurfaceReSTIRDIOutputBufferIndex uint32
	TemporalResamplingInputBufferIndex        uint32
	TemporalResamplingOutputBufferIndex       uint32
	SpatialResamplingInputBufferIndex         uint32
	SpatialResamplingOutputBufferIndex        uint32
	FinalShadingInputBufferIndex              uint32
	_                                         uint32
	_                                         uint32
}

type ReSTIRGITemporalResamplingParameters struct {
	_ structs.HostLayout

	DepthThreshold   float32
	NormalThreshold  float32
	MaxHistoryLength uint32
	MaxReservoirAge  uint32

	EnableBoilingFilter       uint32
	BoilingFilterStrength     float32
	EnablePermutationSampling uint32
	EnableFallbackSampling    uint32

	TemporalBiasCorrectionMode TemporalBiasCorrectionMode
	// UniformRandomNumber is derived from the frame index on every frame
	// advance; values supplied by the caller are overwritten.
	UniformRandomNumber uint32
	_                   uint32
	_                   uint32
}

type ReSTIRGISpatialResamplingParameters struct {
	_ structs.HostLayout

	SpatialDepthThreshold     float32
	SpatialNormalThreshold    float32
	NumSpatialSamples         uint32
	SpatialSamplingRadius     float32
	SpatialBiasCorrectionMode SpatialBiasCorrectionMode
	_                         uint32
	_                         uint32
	_                         uint32
}

type ReSTIRGIFinalShadingParameters struct {
	_ structs.HostLayout

	EnableFinalMIS        uint32
	EnableFinalVisibility uint32
	_                     uint32
	_                     uint32
}

func DefaultReSTIRGIBufferIndices() ReSTIRGIBufferIndices {
	return ReSTIRGIBufferIndices{}
}

func DefaultReSTIRGITemporalResamplingParams() ReSTIRGITemporalResamplingParameters {
	return ReSTIRGITemporalResamplingParameters{
		DepthThreshold:             0.1,
		NormalThreshold:            0.6,
		MaxHistoryLength:           8,
		MaxReservoirAge:            30,
		EnableBoilingFilter:        1,
		BoilingFilterStrength:      0.2,
		EnablePermutationSampling:  0,
		EnableFallbackSampling:     1,
		TemporalBiasCorrectionMode: TemporalBiasCorrectionBasic,
	}
}

func DefaultReSTIRGISpatialResamplingParams() ReSTIRGISpatialResamplingParameters {
	return ReSTIRGISpatialResamplingParameters{
		SpatialDepthThreshold:     0.1,
		SpatialNormalThreshold:    0.6,
		NumSpatialSamples:         2,
		SpatialSamplingRadius:     32.0,
		SpatialBiasCorrectionMode: SpatialBiasCorrectionBasic,
	}
}

func DefaultReSTIRGIFinalShadingParams() ReSTIRGIFinalShadingParameters {
	return ReSTIRGIFinalShadingParameters{
		EnableFinalMIS:        1,
		EnableFinalVisibility: 1,
	}
}

// ReSTIRGIContext tracks the state of the global-illumination resampling
// pipeline. Unlike the DI context it carries no state across frames: the
// buffer index table is a pure function of the resampling mode and the frame
// parity.
type ReSTIRGIContext struct {
	staticParams ReSTIRGIStaticParameters

	frameIndex            uint32
	reservoirBufferParams ReservoirBufferParameters
	resamplingMode        ResamplingMode
	bufferIndices         ReSTIRGIBufferIndices

	temporalResamplingParams ReSTIRGITemporalResamplingParameters
	spatialResamplingParams  ReSTIRGISpatialResamplingParameters
	finalShadingParams       ReSTIRGIFinalShadingParameters
}

// NewReSTIRGIContext creates a global-illumination context. The render
// dimensions must be positive.
func NewReSTIRGIContext(params ReSTIRGIStaticParameters) *ReSTIRGIContext {
	if params.RenderWidth == 0 || params.RenderHeight == 0 {
		panic(fmt.Sprintf("rtxdi: invalid render size %dx%d", params.RenderWidth, params.RenderHeight))
	}
	return &ReSTIRGIContext{
		staticParams:             params,
		reservoirBufferParams:    CalculateReservoirBufferParameters(params.RenderWidth, params.RenderHeight, params.CheckerboardSamplingMode),
		resamplingMode:           ResamplingModeNone,
		bufferIndices:            DefaultReSTIRGIBufferIndices(),
		temporalResamplingParams: DefaultReSTIRGITemporalResamplingParams(),
		spatialResamplingParams:  DefaultReSTIRGISpatialResamplingParams(),
		finalShadingParams:       DefaultReSTIRGIFinalShadingParams(),
	}
}

func (ctx *ReSTIRGIContext) StaticParameters() ReSTIRGIStaticParameters { return ctx.staticParams }
func (ctx *ReSTIRGIContext) FrameIndex() uint32                         { return ctx.frameIndex }
func (ctx *ReSTIRGIContext) ResamplingMode() ResamplingMode             { return ctx.resamplingMode }

func (ctx *ReSTIRGIContext) ReservoirBufferParameters() ReservoirBufferParameters {
	return ctx.reservoirBufferParams
}

func (ctx *ReSTIRGIContext) BufferIndices() ReSTIRGIBufferIndices { return ctx.bufferIndices }

func (ctx *ReSTIRGIContext) TemporalResamplingParameters() ReSTIRGITemporalResamplingParameters {
	return ctx.temporalResamplingParams
}

func (ctx *ReSTIRGIContext) SpatialResamplingParameters() ReSTIRGISpatialResamplingParameters {
	return ctx.spatialResamplingParams
}

func (ctx *ReSTIRGIContext) FinalShadingParameters() ReSTIRGIFinalShadingParameters {
	return ctx.finalShadingParams
}

// SetFrameIndex advances the context to a new frame, rederiving the
// per-frame random number and recomputing the buffer index table.
func (ctx *ReSTIRGIContext) SetFrameIndex(frameIndex uint32) {
	ctx.frameIndex = frameIndex
	ctx.temporalResamplingParams.UniformRandomNumber = JenkinsHash(ctx.frameIndex)
	ctx.updateBufferIndices()
}

// SetResamplingMode changes which resampling stages run, recomputing the
// buffer index table immediately.
func (ctx *ReSTIRGIContext) SetResamplingMode(resamplingMode ResamplingMode) {
	ctx.resamplingMode = resamplingMode
	ctx.updateBufferIndices()
}

// SetTemporalResamplingParameters replaces the temporal resampling record.
// The per-frame random number is rederived; the caller-supplied value is
// ignored.
func (ctx *ReSTIRGIContext) SetTemporalResamplingParameters(params ReSTIRGITemporalResamplingParameters) {
	ctx.temporalResamplingParams = params
	ctx.temporalResamplingParams.UniformRandomNumber = JenkinsHash(ctx.frameIndex)
}

func (ctx *ReSTIRGIContext) SetSpatialResamplingParameters(params ReSTIRGISpatialResamplingParameters) {
	ctx.spatialResamplingParams = params
}

func (ctx *ReSTIRGIContext) SetFinalShadingParameters(params ReSTIRGIFinalShadingParameters) {
	ctx.finalShadingParams = params
}

func (ctx *ReSTIRGIContext) updateBufferIndices() {
	bi := &ctx.bufferIndices
	switch ctx.resamplingMode {
	case ResamplingModeNone:
		bi.SecondarySurfaceReSTIRDIOutputBufferIndex = 0
		bi.FinalShadingInputBufferIndex = 0
	case ResamplingModeTemporal:
		bi.SecondarySurfaceReSTIRDIOutputBufferIndex = ctx.frameIndex & 1
		bi.TemporalResamplingInputBufferIndex = 1 - bi.SecondarySurfaceReSTIRDIOutputBufferIndex
		bi.TemporalResamplingOutputBufferIndex = bi.SecondarySurfaceReSTIRDIOutputBufferIndex
		bi.FinalShadingInputBufferIndex = bi.TemporalResamplingOutputBufferIndex
	case ResamplingModeSpatial:
		bi.SecondarySurfaceReSTIRDIOutputBufferIndex = 0
		bi.SpatialResamplingInputBufferIndex = 0
		bi.SpatialResamplingOutputBufferIndex = 1
		bi.FinalShadingInputBufferIndex = 1
	case ResamplingModeTemporalAndSpatial:
		bi.SecondarySurfaceReSTIRDIOutputBufferIndex = 0
		bi.TemporalResamplingInputBufferIndex = 1
		bi.TemporalResamplingOutputBufferIndex = 0
		bi.SpatialResamplingInputBufferIndex = 0
		bi.SpatialResamplingOutputBufferIndex = 1
		bi.FinalShadingInputBufferIndex = 1
	case ResamplingModeFusedSpatiotemporal:
		bi.SecondarySurfaceReSTIRDIOutputBufferIndex = ctx.frameIndex & 1
		bi.TemporalResamplingInputBufferIndex = 1 - bi.SecondarySurfaceReSTIRDIOutputBufferIndex
		bi.SpatialResamplingOutputBufferIndex = bi.SecondarySurfaceReSTIRDIOutputBufferIndex
		bi.FinalShadingInputBufferIndex = bi.SpatialResamplingOutputBufferIndex
	}
}
