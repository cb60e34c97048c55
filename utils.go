// Package rtxdi manages the host-side state of the ReSTIR DI and ReSTIR GI
// light resampling pipelines: which reservoir buffer each resampling stage
// reads and writes in a given frame, the per-frame runtime parameters the
// compute kernels consume, and the partitioning of the shared RIS buffer into
// presampling tile segments. The resampling kernels themselves run on the
// device and are outside this package; see engine/wgpu_engine for a wgpu
// integration that binds the state computed here.
package rtxdi

import (
	"structs"

	"github.com/NVIDIAGameWorks/rtxdi-runtime/rmath"
)

// Reservoir buffers are stored in 16x16 pixel blocks so that neighboring
// reservoirs land in nearby memory. Must match the block size used by the
// resampling kernels.
const RESERVOIR_BLOCK_SIZE = 16

type CheckerboardMode uint32

const (
	CheckerboardOff CheckerboardMode = iota
	// CheckerboardBlack renders the "black" field on even frames.
	CheckerboardBlack
	CheckerboardWhite
)

// ReservoirBufferParameters describes the shape of a single reservoir buffer.
// It is a pure function of the static render parameters; recompute it with
// CalculateReservoirBufferParameters instead of mutating it.
type ReservoirBufferParameters struct {
	_ structs.HostLayout

	ReservoirBlockRowPitch uint32
	ReservoirArrayPitch    uint32
	_                      uint32
	_                      uint32
}

// CalculateReservoirBufferParameters computes the stride of one reservoir
// buffer for the given render size. With checkerboard sampling enabled only
// half of the pixels carry reservoirs, so the effective width is halved
// before block rounding.
func CalculateReservoirBufferParameters(renderWidth, renderHeight uint32, checkerboardMode CheckerboardMode) ReservoirBufferParameters {
	if checkerboardMode != CheckerboardOff {
		renderWidth = (renderWidth + 1) / 2
	}
	renderWidthBlocks := rmath.DivRoundUp(renderWidth, RESERVOIR_BLOCK_SIZE)
	renderHeightBlocks := rmath.DivRoundUp(renderHeight, RESERVOIR_BLOCK_SIZE)
	rowPitch := renderWidthBlocks * (RESERVOIR_BLOCK_SIZE * RESERVOIR_BLOCK_SIZE)
	return ReservoirBufferParameters{
		ReservoirBlockRowPitch: rowPitch,
		ReservoirArrayPitch:    rowPitch * renderHeightBlocks,
	}
}

// RuntimeParameters are the per-frame scalars shared by all resampling
// kernels of one context.
type RuntimeParameters struct {
	_ structs.HostLayout

	// NeighborOffsetCount - 1. Valid because the offset count is required
	// to be a power of two.
	NeighborOffsetMask uint32
	// Which checkerboard field is active this frame: 1 or 2, or 0 when
	// checkerboard sampling is off.
	ActiveCheckerboardField uint32
	_                       uint32
	_                       uint32
}

// ResamplingMode selects which resampling stages run in a frame.
type ResamplingMode uint32

const (
	ResamplingModeNone ResamplingMode = iota
	ResamplingModeTemporal
	ResamplingModeSpatial
	ResamplingModeTemporalAndSpatial
	// ResamplingModeFusedSpatiotemporal runs temporal and spatial reuse in
	// a single dispatch.
	ResamplingModeFusedSpatiotemporal
)

// LightBufferRegion is a contiguous range of lights in the light buffer.
type LightBufferRegion struct {
	_ structs.HostLayout

	FirstLightIndex uint32
	NumLights       uint32
	_               uint32
	_               uint32
}

type EnvironmentLightBufferParameters struct {
	_ structs.HostLayout

	LightPresent uint32
	LightIndex   uint32
	_            uint32
	_            uint32
}

// LightBufferParameters describes how the renderer's light buffer is laid
// out. The runtime only stores and forwards these; it never reads the light
// buffer itself.
type LightBufferParameters struct {
	_ structs.HostLayout

	LocalLightBufferRegion    LightBufferRegion
	InfiniteLightBufferRegion LightBufferRegion
	EnvironmentLightParams    EnvironmentLightBufferParameters
}

// JenkinsHash is Bob Jenkins' 32-bit integer hash, used to derive the
// per-frame uniform random number from the frame index. Must match the hash
// used on the device.
func JenkinsHash(a uint32) uint32 {
	// http://burtleburtle.net/bob/hash/integer.html
	a = (a + 0x7ed55d16) + (a << 12)
	a = (a ^ 0xc761c23c) ^ (a >> 19)
	a = (a + 0x165667b1) + (a << 5)
	a = (a + 0xd3a2646c) ^ (a << 9)
	a = (a + 0xfd7046c5) + (a << 3)
	a = (a ^ 0xb55a4f09) ^ (a >> 16)
	return a
}

func isNonzeroPowerOf2(i uint32) bool {
	return i&(i-1) == 0 && i > 0
}
