package renderer

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/adapter"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBackend drives one native API through a WebGPU instance restricted to that API's adapters.
type wgpuBackend struct {
	kind     BackendKind
	apiType  wgpu.BackendType
	instance *wgpu.Instance

	forceFallbackAdapter bool
	powerPreference      wgpu.PowerPreference

	// adapters holds the result of the last EnumerateAdapters, indexed like the returned infos.
	// Entries handed to a device are nil.
	adapters []*wgpu.Adapter

	// surface is created once from the first SurfaceSource seen and shared by device and swap chain.
	surface *wgpu.Surface
}

var _ GraphicsBackend = &wgpuBackend{}

func newWGPUBackend(kind BackendKind, apiType wgpu.BackendType, opts ...GraphicsBackendBuilderOption) GraphicsBackend {
	runtime.LockOSThread()
	b := &wgpuBackend{
		kind:            kind,
		apiType:         apiType,
		instance:        wgpu.CreateInstance(nil),
		powerPreference: wgpu.PowerPreferenceHighPerformance,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *wgpuBackend) Kind() BackendKind {
	return b.kind
}

func (b *wgpuBackend) SupportsAdapterEnumeration() bool {
	return b.kind.EnumeratesAdapters()
}

func (b *wgpuBackend) EnumerateAdapters() ([]adapter.Info, error) {
	if !b.SupportsAdapterEnumeration() {
		return nil, fmt.Errorf("%s does not enumerate adapters", b.kind)
	}
	b.releaseAdapters()

	infos := make([]adapter.Info, 0)
	for _, a := range b.instance.EnumerateAdapters(nil) {
		props := a.GetInfo()
		if props.BackendType != b.apiType || (b.forceFallbackAdapter && props.AdapterType != wgpu.AdapterTypeCPU) {
			a.Release()
			continue
		}
		infos = append(infos, adapter.Info{
			Index:   len(b.adapters),
			Class:   classOf(props.AdapterType),
			Name:    props.Name,
			Backend: b.kind.String(),
		})
		b.adapters = append(b.adapters, a)
	}
	return infos, nil
}

func (b *wgpuBackend) CreateDeviceAndContext(cfg DeviceConfig) (Device, Context, error) {
	var compatible *wgpu.Surface
	if cfg.Surface != nil {
		s, err := b.surfaceFor(cfg.Surface)
		if err != nil {
			return nil, nil, err
		}
		compatible = s
	}

	var (
		a     *wgpu.Adapter
		index int
	)
	if cfg.AdapterIndex != nil {
		index = *cfg.AdapterIndex
		taken, err := b.takeAdapter(index)
		if err != nil {
			return nil, nil, err
		}
		a = taken
	} else {
		requested, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			BackendType:          b.apiType,
			PowerPreference:      b.powerPreference,
			ForceFallbackAdapter: b.forceFallbackAdapter,
			CompatibleSurface:    compatible,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("requesting %s adapter: %w", b.kind, err)
		}
		a = requested
	}

	props := a.GetInfo()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: common.Coalesce(cfg.Label, "Main Device"),
	})
	if err != nil {
		a.Release()
		return nil, nil, err
	}

	dev := &wgpuDevice{
		adapter: a,
		device:  d,
		queue:   d.GetQueue(),
		info: adapter.Info{
			Index:   index,
			Class:   classOf(props.AdapterType),
			Name:    props.Name,
			Backend: b.kind.String(),
		},
	}
	return dev, &wgpuContext{dev: dev}, nil
}

func (b *wgpuBackend) CreateSwapChain(dev Device, ctx Context, desc SwapChainDesc, src SurfaceSource) (SwapChain, error) {
	d, ok := dev.(*wgpuDevice)
	if !ok {
		return nil, fmt.Errorf("device %T was not created by the %s backend", dev, b.kind)
	}
	c, ok := ctx.(*wgpuContext)
	if !ok {
		return nil, fmt.Errorf("context %T was not created by the %s backend", ctx, b.kind)
	}
	surface, err := b.surfaceFor(src)
	if err != nil {
		return nil, err
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("invalid swap chain size %dx%d", desc.Width, desc.Height)
	}

	capabilities := surface.GetCapabilities(d.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return nil, errors.New("surface is not supported by the selected adapter")
	}
	if desc.ColorFormat == wgpu.TextureFormatUndefined {
		desc.ColorFormat = capabilities.Formats[0]
	}

	sc := &wgpuSwapChain{
		surface:      surface,
		dev:          d,
		ctx:          c,
		desc:         desc,
		alphaMode:    capabilities.AlphaModes[0],
		presentModes: capabilities.PresentModes,
	}
	sc.presentMode = sc.supportedPresentMode(desc.VSync)
	if err := sc.configure(); err != nil {
		sc.Release()
		return nil, err
	}
	return sc, nil
}

func (b *wgpuBackend) CreateShader(dev Device, src shader.Source) (shader.Shader, error) {
	d, ok := dev.(*wgpuDevice)
	if !ok {
		return nil, fmt.Errorf("%w: device %T was not created by the %s backend", ErrPipelineFailed, dev, b.kind)
	}
	if src.EntryPoint == "" {
		return nil, fmt.Errorf("%w: %s: missing entry point", ErrPipelineFailed, src.Name)
	}
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: src.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: src.Code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPipelineFailed, src.Name, err)
	}
	return &wgpuShader{
		name:       src.Name,
		shaderType: src.Type,
		entryPoint: src.EntryPoint,
		module:     module,
	}, nil
}

func (b *wgpuBackend) CreateGraphicsPipelineState(dev Device, p pipeline.Pipeline) (PipelineState, error) {
	d, ok := dev.(*wgpuDevice)
	if !ok {
		return nil, fmt.Errorf("%w: device %T was not created by the %s backend", ErrPipelineFailed, dev, b.kind)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPipelineFailed, p.Name(), err)
	}
	vs, ok := p.Shader(shader.ShaderTypeVertex).(*wgpuShader)
	if !ok {
		return nil, fmt.Errorf("%w: %s: vertex shader was not created by the %s backend", ErrPipelineFailed, p.Name(), b.kind)
	}
	ps, ok := p.Shader(shader.ShaderTypePixel).(*wgpuShader)
	if !ok {
		return nil, fmt.Errorf("%w: %s: pixel shader was not created by the %s backend", ErrPipelineFailed, p.Name(), b.kind)
	}

	layout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: p.Name(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPipelineFailed, p.Name(), err)
	}

	target := wgpu.ColorTargetState{
		Format:    p.RenderTargetFormat(),
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Name(),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: vs.entryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     ps.module,
			EntryPoint: ps.entryPoint,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencilState(p),
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("%w: %s: %w", ErrPipelineFailed, p.Name(), err)
	}

	return &wgpuPipelineState{
		name:     p.Name(),
		layout:   layout,
		pipeline: created,
	}, nil
}

func (b *wgpuBackend) Release() {
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	b.releaseAdapters()
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// surfaceFor returns the backend's surface, creating it from src on first use.
func (b *wgpuBackend) surfaceFor(src SurfaceSource) (*wgpu.Surface, error) {
	if b.surface != nil {
		return b.surface, nil
	}
	if src == nil {
		return nil, errors.New("no surface source")
	}
	descriptor := src.SurfaceDescriptor()
	if descriptor == nil {
		return nil, errors.New("window has no native surface")
	}
	b.surface = b.instance.CreateSurface(descriptor)
	return b.surface, nil
}

// takeAdapter moves an enumerated adapter out of the backend. The caller owns it from then on,
// so a later EnumerateAdapters or Release does not free an adapter a device still uses.
func (b *wgpuBackend) takeAdapter(index int) (*wgpu.Adapter, error) {
	if index < 0 || index >= len(b.adapters) {
		return nil, fmt.Errorf("adapter index %d out of range, %d enumerated", index, len(b.adapters))
	}
	a := b.adapters[index]
	if a == nil {
		return nil, fmt.Errorf("adapter %d is already in use by a device", index)
	}
	b.adapters[index] = nil
	return a, nil
}

func (b *wgpuBackend) releaseAdapters() {
	for _, a := range b.adapters {
		if a != nil {
			a.Release()
		}
	}
	b.adapters = nil
}

// depthStencilState maps the pipeline's depth settings. A disabled depth test still
// declares the depth format so the pipeline matches a pass that has a depth target.
func depthStencilState(p pipeline.Pipeline) *wgpu.DepthStencilState {
	if p.DepthStencilFormat() == wgpu.TextureFormatUndefined {
		return nil
	}
	compare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		compare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:            p.DepthStencilFormat(),
		DepthWriteEnabled: p.DepthTestEnabled() && p.DepthWriteEnabled(),
		DepthCompare:      compare,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

func classOf(t wgpu.AdapterType) adapter.Class {
	switch t {
	case wgpu.AdapterTypeDiscreteGPU:
		return adapter.ClassDiscrete
	case wgpu.AdapterTypeIntegratedGPU:
		return adapter.ClassIntegrated
	case wgpu.AdapterTypeCPU:
		return adapter.ClassSoftware
	default:
		return adapter.ClassUnknown
	}
}

func presentModeFor(vsync bool) wgpu.PresentMode {
	if vsync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}
