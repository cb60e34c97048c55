package rtxdi

import "fmt"

// ImportanceSamplingContextStaticParameters configure an
// ImportanceSamplingContext and everything it owns. Changing any field
// requires creating a new context.
type ImportanceSamplingContextStaticParameters struct {
	// RIS buffer segments for local and environment light presampling.
	LocalLightRISBufferParams       RISBufferSegmentParameters
	EnvironmentLightRISBufferParams RISBufferSegmentParameters

	// Shared options for the DI and GI contexts.
	NeighborOffsetCount      uint32
	RenderWidth              uint32
	RenderHeight             uint32
	CheckerboardSamplingMode CheckerboardMode

	ReGIRStaticParams ReGIRStaticParameters
}

// DefaultImportanceSamplingContextStaticParameters returns the default
// configuration; the caller still has to fill in the render size.
func DefaultImportanceSamplingContextStaticParameters() ImportanceSamplingContextStaticParameters {
	return ImportanceSamplingContextStaticParameters{
		LocalLightRISBufferParams:       RISBufferSegmentParameters{TileSize: 1024, TileCount: 128},
		EnvironmentLightRISBufferParams: RISBufferSegmentParameters{TileSize: 1024, TileCount: 128},
		NeighborOffsetCount:             8192,
		ReGIRStaticParams:               DefaultReGIRStaticParameters(),
	}
}

// ImportanceSamplingContext owns one context per light sampling pipeline plus
// the allocator that partitions the shared RIS buffer. It is the single
// object a renderer keeps per view.
type ImportanceSamplingContext struct {
	risBufferSegmentAllocator RISBufferSegmentAllocator
	restirDIContext           *ReSTIRDIContext
	regirContext              *ReGIRContext
	restirGIContext           *ReSTIRGIContext

	lightBufferParams                LightBufferParameters
	localLightRISBufferSegment       RISBufferSegmentAllocation
	environmentLightRISBufferSegment RISBufferSegmentAllocation
}

// NewImportanceSamplingContext creates the orchestrating context.
// Construction is ordered: the RIS segment parameters are validated, the
// local and environment light segments are allocated, then the DI context,
// the ReGIR context (which claims its own segment), and the GI context are
// built. Invalid tile sizes or counts panic; this layer assumes a correctly
// configured integrator and fails fast on misconfiguration.
func NewImportanceSamplingContext(params ImportanceSamplingContextStaticParameters) *ImportanceSamplingContext {
	checkSegmentParameters(params.LocalLightRISBufferParams, "local light")
	checkSegmentParameters(params.EnvironmentLightRISBufferParams, "environment light")

	isc := &ImportanceSamplingContext{}
	isc.localLightRISBufferSegment = RISBufferSegmentAllocation{
		BufferOffset: isc.risBufferSegmentAllocator.AllocateSegment(params.LocalLightRISBufferParams.TileCount * params.LocalLightRISBufferParams.TileSize),
		TileSize:     params.LocalLightRISBufferParams.TileSize,
		TileCount:    params.LocalLightRISBufferParams.TileCount,
	}
	isc.environmentLightRISBufferSegment = RISBufferSegmentAllocation{
		BufferOffset: isc.risBufferSegmentAllocator.AllocateSegment(params.EnvironmentLightRISBufferParams.TileCount * params.EnvironmentLightRISBufferParams.TileSize),
		TileSize:     params.EnvironmentLightRISBufferParams.TileSize,
		TileCount:    params.EnvironmentLightRISBufferParams.TileCount,
	}

	isc.restirDIContext = NewReSTIRDIContext(ReSTIRDIStaticParameters{
		NeighborOffsetCount:      params.NeighborOffsetCount,
		RenderWidth:              params.RenderWidth,
		RenderHeight:             params.RenderHeight,
		CheckerboardSamplingMode: params.CheckerboardSamplingMode,
	})

	isc.regirContext = NewReGIRContext(params.ReGIRStaticParams, &isc.risBufferSegmentAllocator)

	isc.restirGIContext = NewReSTIRGIContext(ReSTIRGIStaticParameters{
		RenderWidth:              params.RenderWidth,
		RenderHeight:             params.RenderHeight,
		CheckerboardSamplingMode: params.CheckerboardSamplingMode,
	})

	return isc
}

func checkSegmentParameters(params RISBufferSegmentParameters, which string) {
	if !isNonzeroPowerOf2(params.TileSize) {
		panic(fmt.Sprintf("rtxdi: %s RIS tile size %d is not a power of two", which, params.TileSize))
	}
	if !isNonzeroPowerOf2(params.TileCount) {
		panic(fmt.Sprintf("rtxdi: %s RIS tile count %d is not a power of two", which, params.TileCount))
	}
}

func (isc *ImportanceSamplingContext) ReSTIRDIContext() *ReSTIRDIContext { return isc.restirDIContext }

func (isc *ImportanceSamplingContext) ReGIRContext() *ReGIRContext { return isc.regirContext }

func (isc *ImportanceSamplingContext) ReSTIRGIContext() *ReSTIRGIContext { return isc.restirGIContext }

func (isc *ImportanceSamplingContext) RISBufferSegmentAllocator() *RISBufferSegmentAllocator {
	return &isc.risBufferSegmentAllocator
}

func (isc *ImportanceSamplingContext) LightBufferParameters() LightBufferParameters {
	return isc.lightBufferParams
}

func (isc *ImportanceSamplingContext) LocalLightRISBufferSegmentParams() RISBufferSegmentAllocation {
	return isc.localLightRISBufferSegment
}

func (isc *ImportanceSamplingContext) EnvironmentLightRISBufferSegmentParams() RISBufferSegmentAllocation {
	return isc.environmentLightRISBufferSegment
}

func (isc *ImportanceSamplingContext) NeighborOffsetCount() uint32 {
	return isc.restirDIContext.StaticParameters().NeighborOffsetCount
}

// SetFrameIndex advances both resampling contexts to a new frame.
func (isc *ImportanceSamplingContext) SetFrameIndex(frameIndex uint32) {
	isc.restirDIContext.SetFrameIndex(frameIndex)
	isc.restirGIContext.SetFrameIndex(frameIndex)
}

// SetLightBufferParams stores the renderer's light buffer layout for the
// compute side to pick up.
func (isc *ImportanceSamplingContext) SetLightBufferParams(params LightBufferParameters) {
	isc.lightBufferParams = params
}

// IsLocalLightPowerRISEnabled reports whether power-weighted presampling of
// local lights is active, either directly or through ReGIR's presampling or
// fallback mode. The answer is derived from live sub-context state on every
// call.
func (isc *ImportanceSamplingContext) IsLocalLightPowerRISEnabled() bool {
	iss := isc.restirDIContext.InitialSamplingParameters()
	if iss.LocalLightSamplingMode == LocalLightSamplingModePowerRIS {
		return true
	}
	if iss.LocalLightSamplingMode == LocalLightSamplingModeReGIRRIS {
		dyn := isc.regirContext.DynamicParameters()
		if dyn.PresamplingMode == ReGIRPresamplingModePowerRIS ||
			dyn.FallbackSamplingMode == ReGIRFallbackSamplingModePowerRIS {
			return true
		}
	}
	return false
}

// IsReGIREnabled reports whether the DI pipeline currently samples local
// lights through the ReGIR cells.
func (isc *ImportanceSamplingContext) IsReGIREnabled() bool {
	return isc.restirDIContext.InitialSamplingParameters().LocalLightSamplingMode == LocalLightSamplingModeReGIRRIS
}
