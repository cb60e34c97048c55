package rtxdi

import (
	"fmt"
	"structs"
)

// NumReSTIRDIReservoirBuffers is the size of the reservoir buffer pool the
// direct-illumination pipeline rotates through.
const NumReSTIRDIReservoirBuffers = 3

type LocalLightSamplingMode uint32

const (
	LocalLightSamplingModeUniform LocalLightSamplingMode = iota
	LocalLightSamplingModePowerRIS
	LocalLightSamplingModeReGIRRIS
)

type TemporalBiasCorrectionMode uint32

const (
	TemporalBiasCorrectionOff TemporalBiasCorrectionMode = iota
	TemporalBiasCorrectionBasic
	TemporalBiasCorrectionPairwise
	TemporalBiasCorrectionRaytraced
)

type SpatialBiasCorrectionMode uint32

const (
	SpatialBiasCorrectionOff SpatialBiasCorrectionMode = iota
	SpatialBiasCorrectionBasic
	SpatialBiasCorrectionPairwise
	SpatialBiasCorrectionRaytraced
)

// ReSTIRDIStaticParameters configure a ReSTIRDIContext for its lifetime.
// Changing any field requires creating a new context.
type ReSTIRDIStaticParameters struct {
	NeighborOffsetCount uint32
	RenderWidth         uint32
	RenderHeight        uint32

	CheckerboardSamplingMode CheckerboardMode
}

// ReSTIRDIBufferIndices names which reservoir buffer each stage of the
// direct-illumination pipeline reads and writes this frame. The table is
// recomputed wholesale on every frame advance or mode change.
type ReSTIRDIBufferIndices struct {
	_ structs.HostLayout

	InitialSamplingOutputBufferIndex   uint32
	TemporalResamplingInputBufferIndex uint32
	// TemporalResamplingOutputBufferIndex and the spatial fields are not
	// meaningful in fused spatiotemporal mode, where the single fused pass
	// reads TemporalResamplingInputBufferIndex and writes
	// InitialSamplingOutputBufferIndex.
	TemporalResamplingOutputBufferIndex uint32
	SpatialResamplingInputBufferIndex   uint32
	SpatialResamplingOutputBufferIndex  uint32
	ShadingInputBufferIndex             uint32
	_                                   uint32
	_                                   uint32
}

type ReSTIRDIInitialSamplingParameters struct {
	_ structs.HostLayout

	NumPrimaryLocalLightSamples      uint32
	NumPrimaryInfiniteLightSamples   uint32
	NumPrimaryEnvironmentSamples     uint32
	NumPrimaryBrdfSamples            uint32
	BrdfCutoff                       float32
	EnableInitialVisibility          uint32
	EnvironmentMapImportanceSampling uint32
	LocalLightSamplingMode           LocalLightSamplingMode
}

type ReSTIRDITemporalResamplingParameters struct {
	_ structs.HostLayout

	TemporalDepthThreshold  float32
	TemporalNormalThreshold float32
	MaxHistoryLength        uint32
	TemporalBiasCorrection  TemporalBiasCorrectionMode

	EnablePermutationSampling    uint32
	PermutationSamplingThreshold float32
	EnableBoilingFilter          uint32
	BoilingFilterStrength        float32

	DiscardInvisibleSamples uint32
	// UniformRandomNumber is derived from the frame index on every frame
	// advance; values supplied by the caller are overwritten.
	UniformRandomNumber uint32
	_                   uint32
	_                   uint32
}

type ReSTIRDISpatialResamplingParameters struct {
	_ structs.HostLayout

	SpatialDepthThreshold  float32
	SpatialNormalThreshold float32
	SpatialBiasCorrection  SpatialBiasCorrectionMode
	NumSpatialSamples      uint32

	NumDisocclusionBoostSamples uint32
	SpatialSamplingRadius       float32
	// NeighborOffsetMask is derived from the static neighbor offset count;
	// values supplied by the caller are overwritten.
	NeighborOffsetMask   uint32
	DiscountNaiveSamples uint32
}

type ReSTIRDIShadingParameters struct {
	_ structs.HostLayout

	EnableDenoiserInputPacking uint32
	EnableFinalVisibility      uint32
	ReuseFinalVisibility       uint32
	FinalVisibilityMaxAge      uint32
	FinalVisibilityMaxDistance float32
	_                          uint32
	_                          uint32
	_                          uint32
}

func DefaultReSTIRDIBufferIndices() ReSTIRDIBufferIndices {
	return ReSTIRDIBufferIndices{}
}

func DefaultReSTIRDIInitialSamplingParams() ReSTIRDIInitialSamplingParameters {
	return ReSTIRDIInitialSamplingParameters{
		NumPrimaryLocalLightSamples:      8,
		NumPrimaryInfiniteLightSamples:   1,
		NumPrimaryEnvironmentSamples:     1,
		NumPrimaryBrdfSamples:            1,
		BrdfCutoff:                       0.0001,
		EnableInitialVisibility:          1,
		EnvironmentMapImportanceSampling: 1,
		LocalLightSamplingMode:           LocalLightSamplingModeUniform,
	}
}

func DefaultReSTIRDITemporalResamplingParams() ReSTIRDITemporalResamplingParameters {
	return ReSTIRDITemporalResamplingParameters{
		TemporalDepthThreshold:       0.1,
		TemporalNormalThreshold:      0.5,
		MaxHistoryLength:             20,
		TemporalBiasCorrection:       TemporalBiasCorrectionBasic,
		EnablePermutationSampling:    1,
		PermutationSamplingThreshold: 0.9,
		EnableBoilingFilter:          1,
		BoilingFilterStrength:        0.2,
		DiscardInvisibleSamples:      0,
	}
}

func DefaultReSTIRDISpatialResamplingParams() ReSTIRDISpatialResamplingParameters {
	return ReSTIRDISpatialResamplingParameters{
		SpatialDepthThreshold:       0.1,
		SpatialNormalThreshold:      0.5,
		SpatialBiasCorrection:       SpatialBiasCorrectionBasic,
		NumSpatialSamples:           1,
		NumDisocclusionBoostSamples: 8,
		SpatialSamplingRadius:       32.0,
	}
}

func DefaultReSTIRDIShadingParams() ReSTIRDIShadingParameters {
	return ReSTIRDIShadingParameters{
		EnableDenoiserInputPacking: 0,
		EnableFinalVisibility:      1,
		ReuseFinalVisibility:       1,
		FinalVisibilityMaxAge:      4,
		FinalVisibilityMaxDistance: 16,
	}
}

// ReSTIRDIContext tracks the state of the direct-illumination resampling
// pipeline across frames. All methods complete synchronously; the context is
// meant to be driven by a single render loop, with SetFrameIndex called once
// per frame before the frame's dispatches are recorded.
type ReSTIRDIContext struct {
	lastFrameOutputReservoir    uint32
	currentFrameOutputReservoir uint32

	frameIndex uint32

	staticParams ReSTIRDIStaticParameters

	resamplingMode        ResamplingMode
	reservoirBufferParams ReservoirBufferParameters
	runtimeParams         RuntimeParameters
	bufferIndices         ReSTIRDIBufferIndices

	initialSamplingParams    ReSTIRDIInitialSamplingParameters
	temporalResamplingParams ReSTIRDITemporalResamplingParameters
	spatialResamplingParams  ReSTIRDISpatialResamplingParameters
	shadingParams            ReSTIRDIShadingParameters
}

// NewReSTIRDIContext creates a direct-illumination context. The render
// dimensions must be positive and the neighbor offset count a power of two;
// violating either panics, since a context constructed from a broken
// configuration would silently corrupt the frame-over-frame rotation.
func NewReSTIRDIContext(params ReSTIRDIStaticParameters) *ReSTIRDIContext {
	if params.RenderWidth == 0 || params.RenderHeight == 0 {
		panic(fmt.Sprintf("rtxdi: invalid render size %dx%d", params.RenderWidth, params.RenderHeight))
	}
	if !isNonzeroPowerOf2(params.NeighborOffsetCount) {
		panic(fmt.Sprintf("rtxdi: neighbor offset count %d is not a power of two", params.NeighborOffsetCount))
	}
	ctx := &ReSTIRDIContext{
		staticParams:             params,
		resamplingMode:           ResamplingModeTemporalAndSpatial,
		reservoirBufferParams:    CalculateReservoirBufferParameters(params.RenderWidth, params.RenderHeight, params.CheckerboardSamplingMode),
		bufferIndices:            DefaultReSTIRDIBufferIndices(),
		initialSamplingParams:    DefaultReSTIRDIInitialSamplingParams(),
		temporalResamplingParams: DefaultReSTIRDITemporalResamplingParams(),
		spatialResamplingParams:  DefaultReSTIRDISpatialResamplingParams(),
		shadingParams:            DefaultReSTIRDIShadingParams(),
	}
	ctx.updateCheckerboardField()
	ctx.runtimeParams.NeighborOffsetMask = params.NeighborOffsetCount - 1
	ctx.spatialResamplingParams.NeighborOffsetMask = params.NeighborOffsetCount - 1
	ctx.updateBufferIndices()
	return ctx
}

func (ctx *ReSTIRDIContext) StaticParameters() ReSTIRDIStaticParameters { return ctx.staticParams }
func (ctx *ReSTIRDIContext) FrameIndex() uint32                         { return ctx.frameIndex }
func (ctx *ReSTIRDIContext) ResamplingMode() ResamplingMode             { return ctx.resamplingMode }

func (ctx *ReSTIRDIContext) ReservoirBufferParameters() ReservoirBufferParameters {
	return ctx.reservoirBufferParams
}

func (ctx *ReSTIRDIContext) RuntimeParameters() RuntimeParameters { return ctx.runtimeParams }

func (ctx *ReSTIRDIContext) BufferIndices() ReSTIRDIBufferIndices { return ctx.bufferIndices }

func (ctx *ReSTIRDIContext) InitialSamplingParameters() ReSTIRDIInitialSamplingParameters {
	return ctx.initialSamplingParams
}

func (ctx *ReSTIRDIContext) TemporalResamplingParameters() ReSTIRDITemporalResamplingParameters {
	return ctx.temporalResamplingParams
}

func (ctx *ReSTIRDIContext) SpatialResamplingParameters() ReSTIRDISpatialResamplingParameters {
	return ctx.spatialResamplingParams
}

func (ctx *ReSTIRDIContext) ShadingParameters() ReSTIRDIShadingParameters {
	return ctx.shadingParams
}

// SetFrameIndex advances the context to a new frame. The previous frame's
// output reservoir becomes this frame's temporal input, the per-frame random
// number is rederived from the frame index, and the buffer index table and
// checkerboard field are recomputed.
func (ctx *ReSTIRDIContext) SetFrameIndex(frameIndex uint32) {
	ctx.frameIndex = frameIndex
	ctx.temporalResamplingParams.UniformRandomNumber = JenkinsHash(ctx.frameIndex)
	ctx.lastFrameOutputReservoir = ctx.currentFrameOutputReservoir
	ctx.updateBufferIndices()
	ctx.updateCheckerboardField()
}

// SetResamplingMode changes which resampling stages run. The buffer index
// table is recomputed immediately; there is no window in which a stale table
// can be observed.
func (ctx *ReSTIRDIContext) SetResamplingMode(resamplingMode ResamplingMode) {
	ctx.resamplingMode = resamplingMode
	ctx.updateBufferIndices()
}

func (ctx *ReSTIRDIContext) SetInitialSamplingParameters(params ReSTIRDIInitialSamplingParameters) {
	ctx.initialSamplingParams = params
}

// SetTemporalResamplingParameters replaces the temporal resampling record.
// The per-frame random number is rederived; the caller-supplied value is
// ignored.
func (ctx *ReSTIRDIContext) SetTemporalResamplingParameters(params ReSTIRDITemporalResamplingParameters) {
	ctx.temporalResamplingParams = params
	ctx.temporalResamplingParams.UniformRandomNumber = JenkinsHash(ctx.frameIndex)
}

// SetSpatialResamplingParameters replaces the spatial resampling record. The
// neighbor offset mask is derived state and keeps its existing value
// regardless of what the caller supplies.
func (ctx *ReSTIRDIContext) SetSpatialResamplingParameters(params ReSTIRDISpatialResamplingParameters) {
	mask := ctx.spatialResamplingParams.NeighborOffsetMask
	ctx.spatialResamplingParams = params
	ctx.spatialResamplingParams.NeighborOffsetMask = mask
}

func (ctx *ReSTIRDIContext) SetShadingParameters(params ReSTIRDIShadingParameters) {
	ctx.shadingParams = params
}

func (ctx *ReSTIRDIContext) updateBufferIndices() {
	useTemporalResampling := ctx.resamplingMode == ResamplingModeTemporal ||
		ctx.resamplingMode == ResamplingModeTemporalAndSpatial ||
		ctx.resamplingMode == ResamplingModeFusedSpatiotemporal

	useSpatialResampling := ctx.resamplingMode == ResamplingModeSpatial ||
		ctx.resamplingMode == ResamplingModeTemporalAndSpatial ||
		ctx.resamplingMode == ResamplingModeFusedSpatiotemporal

	bi := &ctx.bufferIndices
	if ctx.resamplingMode == ResamplingModeFusedSpatiotemporal {
		bi.InitialSamplingOutputBufferIndex = (ctx.lastFrameOutputReservoir + 1) % NumReSTIRDIReservoirBuffers
		bi.TemporalResamplingInputBufferIndex = ctx.lastFrameOutputReservoir
		bi.ShadingInputBufferIndex = bi.InitialSamplingOutputBufferIndex
	} else {
		bi.InitialSamplingOutputBufferIndex = (ctx.lastFrameOutputReservoir + 1) % NumReSTIRDIReservoirBuffers
		bi.TemporalResamplingInputBufferIndex = ctx.lastFrameOutputReservoir
		bi.TemporalResamplingOutputBufferIndex = (bi.TemporalResamplingInputBufferIndex + 1) % NumReSTIRDIReservoirBuffers
		if useTemporalResampling {
			bi.SpatialResamplingInputBufferIndex = bi.TemporalResamplingOutputBufferIndex
		} else {
			bi.SpatialResamplingInputBufferIndex = bi.InitialSamplingOutputBufferIndex
		}
		bi.SpatialResamplingOutputBufferIndex = (bi.SpatialResamplingInputBufferIndex + 1) % NumReSTIRDIReservoirBuffers
		if useSpatialResampling {
			bi.ShadingInputBufferIndex = bi.SpatialResamplingOutputBufferIndex
		} else {
			bi.ShadingInputBufferIndex = bi.TemporalResamplingOutputBufferIndex
		}
	}
	ctx.currentFrameOutputReservoir = bi.ShadingInputBufferIndex
}

func (ctx *ReSTIRDIContext) updateCheckerboardField() {
	switch ctx.staticParams.CheckerboardSamplingMode {
	case CheckerboardBlack:
		if ctx.frameIndex&1 != 0 {
			ctx.runtimeParams.ActiveCheckerboardField = 1
		} else {
			ctx.runtimeParams.ActiveCheckerboardField = 2
		}
	case CheckerboardWhite:
		if ctx.frameIndex&1 != 0 {
			ctx.runtimeParams.ActiveCheckerboardField = 2
		} else {
			ctx.runtimeParams.ActiveCheckerboardField = 1
		}
	default:
		ctx.runtimeParams.ActiveCheckerboardField = 0
	}
}
