// Package wgpu_engine binds the state computed by the rtxdi package to a
// wgpu device: it creates the reservoir, RIS and neighbor-offset buffers the
// resampling kernels operate on, uploads the per-frame constants, and
// dispatches caller-supplied kernels. The kernels themselves (WGSL) are not
// part of this module; their packed reservoir layouts are communicated
// through Options.
package wgpu_engine

import (
	"fmt"

	"honnef.co/go/safeish"
	"honnef.co/go/wgpu"

	rtxdi "github.com/NVIDIAGameWorks/rtxdi-runtime"
)

// Screen-space kernels run in 8x8 workgroups. Must match the workgroup size
// declared by the WGSL kernels.
const SCREEN_SPACE_GROUP_SIZE = 8

// Each RIS buffer element is a (lightIndex, invSourcePdf) pair.
const risBufferElementSize = 8

type Options struct {
	// Byte size of one packed DI reservoir as defined by the kernels.
	DIReservoirByteSize uint32
	// Byte size of one packed GI reservoir as defined by the kernels.
	GIReservoirByteSize uint32
}

func DefaultOptions() Options {
	return Options{
		DIReservoirByteSize: 32,
		GIReservoirByteSize: 48,
	}
}

type PassID int

type pass struct {
	label    string
	pipeline *wgpu.ComputePipeline
}

// Engine owns the device resources backing one ImportanceSamplingContext.
type Engine struct {
	Device *wgpu.Device

	DIReservoirBuffer     *wgpu.Buffer
	GIReservoirBuffer     *wgpu.Buffer
	RISBuffer             *wgpu.Buffer
	NeighborOffsetsBuffer *wgpu.Buffer
	FrameConstantsBuffer  *wgpu.Buffer

	bindGroupLayout *wgpu.BindGroupLayout
	bindGroup       *wgpu.BindGroup
	passes          []pass
}

// New creates the engine's buffers from the context's derived parameters.
// The context must be fully constructed, so that every RIS buffer segment
// has been claimed and the allocator total is final.
func New(dev *wgpu.Device, queue *wgpu.Queue, isc *rtxdi.ImportanceSamplingContext, opts Options) *Engine {
	eng := &Engine{Device: dev}

	diParams := isc.ReSTIRDIContext().ReservoirBufferParameters()
	giParams := isc.ReSTIRGIContext().ReservoirBufferParameters()
	usage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst

	// The pool of rotating reservoir buffers is a single buffer; the index
	// table selects a slice of it via the array pitch.
	eng.DIReservoirBuffer = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "restir di reservoirs",
		Size:  reservoirPoolByteSize(diParams, opts.DIReservoirByteSize, rtxdi.NumReSTIRDIReservoirBuffers),
		Usage: usage,
	})
	eng.GIReservoirBuffer = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "restir gi reservoirs",
		Size:  reservoirPoolByteSize(giParams, opts.GIReservoirByteSize, rtxdi.NumReSTIRGIReservoirBuffers),
		Usage: usage,
	})
	eng.RISBuffer = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ris buffer",
		Size:  uint64(isc.RISBufferSegmentAllocator().TotalSizeInElements()) * risBufferElementSize,
		Usage: usage,
	})

	neighborOffsetCount := isc.NeighborOffsetCount()
	offsets := make([]int8, 2*neighborOffsetCount)
	rtxdi.FillNeighborOffsets(offsets, neighborOffsetCount)
	eng.NeighborOffsetsBuffer = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "neighbor offsets",
		Size:  uint64(len(offsets)),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	queue.WriteBuffer(eng.NeighborOffsetsBuffer, 0, safeish.SliceCast[[]byte](offsets))

	eng.FrameConstantsBuffer = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "frame constants",
		Size:  frameConstantsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})

	eng.bindGroupLayout = dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			uniformEntry(0),
			storageEntry(1, false), // DI reservoirs
			storageEntry(2, false), // GI reservoirs
			storageEntry(3, false), // RIS buffer
			storageEntry(4, true),  // neighbor offsets
		},
	})
	eng.bindGroup = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: eng.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: eng.FrameConstantsBuffer, Size: ^uint64(0)},
			{Binding: 1, Buffer: eng.DIReservoirBuffer, Size: ^uint64(0)},
			{Binding: 2, Buffer: eng.GIReservoirBuffer, Size: ^uint64(0)},
			{Binding: 3, Buffer: eng.RISBuffer, Size: ^uint64(0)},
			{Binding: 4, Buffer: eng.NeighborOffsetsBuffer, Size: ^uint64(0)},
		},
	})

	return eng
}

func reservoirPoolByteSize(params rtxdi.ReservoirBufferParameters, reservoirByteSize, numBuffers uint32) uint64 {
	return uint64(params.ReservoirArrayPitch) * uint64(numBuffers) * uint64(reservoirByteSize)
}

func uniformEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Buffer: &wgpu.BufferBindingLayout{
			Type: wgpu.BufferBindingTypeUniform,
		},
	}
}

func storageEntry(binding uint32, readOnly bool) wgpu.BindGroupLayoutEntry {
	typ := wgpu.BufferBindingTypeStorage
	if readOnly {
		typ = wgpu.BufferBindingTypeReadOnlyStorage
	}
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Buffer: &wgpu.BufferBindingLayout{
			Type: typ,
		},
	}
}

// AddPass compiles a resampling kernel into a compute pipeline using the
// engine's shared bind group layout. The kernel's entry point must be named
// "main".
func (eng *Engine) AddPass(label string, wgsl []byte) PassID {
	if len(wgsl) == 0 {
		panic(fmt.Sprintf("pass %q has no code", label))
	}
	module := eng.Device.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  label,
		Source: wgpu.ShaderSourceWGSL(wgsl),
	})
	layout := eng.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{eng.bindGroupLayout},
	})
	defer layout.Release()
	pipeline := eng.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  label,
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	id := PassID(len(eng.passes))
	eng.passes = append(eng.passes, pass{label: label, pipeline: pipeline})
	return id
}
