package rtxdi

import "structs"

// ReGIR (Reservoir-based Grid Importance Resampling) presamples local lights
// into world-space cells. This runtime only manages the context's parameters
// and its segment of the shared RIS buffer; cell construction and sampling
// run on the device.

type ReGIRMode uint32

const (
	ReGIRModeDisabled ReGIRMode = iota
	ReGIRModeGrid
	ReGIRModeOnion
)

type ReGIRPresamplingMode uint32

const (
	ReGIRPresamplingModeUniform ReGIRPresamplingMode = iota
	ReGIRPresamplingModePowerRIS
)

type ReGIRFallbackSamplingMode uint32

const (
	ReGIRFallbackSamplingModeUniform ReGIRFallbackSamplingMode = iota
	ReGIRFallbackSamplingModePowerRIS
)

type ReGIRGridStaticParameters struct {
	GridSize [3]uint32
}

// ReGIRStaticParameters configure a ReGIRContext for its lifetime. The cell
// count, and with it the size of the context's RIS buffer segment, is fixed
// at construction.
type ReGIRStaticParameters struct {
	Mode          ReGIRMode
	LightsPerCell uint32

	GridParameters ReGIRGridStaticParameters
}

// DefaultReGIRStaticParameters returns the configuration the orchestrator
// uses when the integrator supplies none: a 16x16x16 grid with 512 light
// slots per cell.
func DefaultReGIRStaticParameters() ReGIRStaticParameters {
	return ReGIRStaticParameters{
		Mode:           ReGIRModeGrid,
		LightsPerCell:  512,
		GridParameters: ReGIRGridStaticParameters{GridSize: [3]uint32{16, 16, 16}},
	}
}

// ReGIRDynamicParameters may change every frame; the renderer forwards them
// to the cell-build kernels.
type ReGIRDynamicParameters struct {
	_ structs.HostLayout

	RegirCellSize        float32
	RegirNumBuildSamples uint32
	PresamplingMode      ReGIRPresamplingMode
	FallbackSamplingMode ReGIRFallbackSamplingMode

	Center [3]float32
	_      uint32
}

func DefaultReGIRDynamicParameters() ReGIRDynamicParameters {
	return ReGIRDynamicParameters{
		RegirCellSize:        1.0,
		RegirNumBuildSamples: 8,
		PresamplingMode:      ReGIRPresamplingModeUniform,
		FallbackSamplingMode: ReGIRFallbackSamplingModeUniform,
	}
}

// ReGIRContext holds the region-presampling state: static grid shape,
// per-frame dynamic parameters, and the context's segment of the shared RIS
// buffer, claimed from the allocator at construction.
type ReGIRContext struct {
	staticParams  ReGIRStaticParameters
	dynamicParams ReGIRDynamicParameters

	cellCount        uint32
	lightSlotSegment RISBufferSegmentAllocation
}

// NewReGIRContext creates a region-presampling context, claiming
// cellCount*LightsPerCell light slots from the allocator. With mode
// Disabled no slots are claimed.
func NewReGIRContext(params ReGIRStaticParameters, alloc *RISBufferSegmentAllocator) *ReGIRContext {
	ctx := &ReGIRContext{
		staticParams:  params,
		dynamicParams: DefaultReGIRDynamicParameters(),
	}
	if params.Mode != ReGIRModeDisabled {
		gs := params.GridParameters.GridSize
		ctx.cellCount = gs[0] * gs[1] * gs[2]
		ctx.lightSlotSegment = RISBufferSegmentAllocation{
			BufferOffset: alloc.AllocateSegment(ctx.cellCount * params.LightsPerCell),
			TileSize:     params.LightsPerCell,
			TileCount:    ctx.cellCount,
		}
	}
	return ctx
}

func (ctx *ReGIRContext) StaticParameters() ReGIRStaticParameters { return ctx.staticParams }

func (ctx *ReGIRContext) DynamicParameters() ReGIRDynamicParameters { return ctx.dynamicParams }

func (ctx *ReGIRContext) SetDynamicParameters(params ReGIRDynamicParameters) {
	ctx.dynamicParams = params
}

// CellCount returns the number of world-space cells, zero when disabled.
func (ctx *ReGIRContext) CellCount() uint32 { return ctx.cellCount }

// LightSlotSegment returns the context's segment of the shared RIS buffer.
func (ctx *ReGIRContext) LightSlotSegment() RISBufferSegmentAllocation {
	return ctx.lightSlotSegment
}

// IsEnabled reports whether region-based presampling is configured at all;
// whether it is used also depends on the DI context's local light sampling
// mode.
func (ctx *ReGIRContext) IsEnabled() bool {
	return ctx.staticParams.Mode != ReGIRModeDisabled
}
