package renderer

import (
	"errors"
	"slices"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/adapter"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuDevice struct {
	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue
	info    adapter.Info
}

var _ Device = &wgpuDevice{}

func (d *wgpuDevice) Adapter() adapter.Info {
	return d.info
}

func (d *wgpuDevice) Release() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	d.adapter = nil
}

type wgpuTextureView struct {
	view   *wgpu.TextureView
	format wgpu.TextureFormat
}

var _ TextureView = &wgpuTextureView{}

func (v *wgpuTextureView) Format() wgpu.TextureFormat {
	return v.format
}

// wgpuContext records commands into one encoder per flush. WebGPU clears targets
// through render pass load operations, so clears are held until the next pass begins.
type wgpuContext struct {
	dev *wgpuDevice

	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder

	rtv, dsv   *wgpuTextureView
	clearColor *wgpu.Color
	clearDepth *float32

	pso *wgpuPipelineState
	// passPSO is the pipeline state last set on the open pass.
	passPSO *wgpuPipelineState
}

var _ Context = &wgpuContext{}

func (c *wgpuContext) SetRenderTargets(rtv, dsv TextureView) {
	c.endPass()
	c.rtv, _ = rtv.(*wgpuTextureView)
	c.dsv, _ = dsv.(*wgpuTextureView)
}

func (c *wgpuContext) ClearRenderTarget(rtv TextureView, color wgpu.Color) {
	if v, _ := rtv.(*wgpuTextureView); v == nil || v != c.rtv {
		common.Logger().Warn("clear ignored, view is not the bound render target")
		return
	}
	c.endPass()
	c.clearColor = &color
}

func (c *wgpuContext) ClearDepthStencil(dsv TextureView, depth float32) {
	if v, _ := dsv.(*wgpuTextureView); v == nil || v != c.dsv {
		common.Logger().Warn("clear ignored, view is not the bound depth target")
		return
	}
	c.endPass()
	c.clearDepth = &depth
}

func (c *wgpuContext) SetPipelineState(pso PipelineState) {
	c.pso, _ = pso.(*wgpuPipelineState)
}

func (c *wgpuContext) Draw(attribs DrawAttribs) error {
	if c.rtv == nil {
		return errors.New("draw without a bound render target")
	}
	if c.pso == nil {
		return errors.New("draw without a bound pipeline state")
	}
	if err := c.beginPass(); err != nil {
		return err
	}
	if c.passPSO != c.pso {
		c.pass.SetPipeline(c.pso.pipeline)
		c.passPSO = c.pso
	}
	instances := attribs.NumInstances
	if instances == 0 {
		instances = 1
	}
	c.pass.Draw(attribs.NumVertices, instances, 0, 0)
	return nil
}

func (c *wgpuContext) Flush() error {
	// A clear with no draw after it still needs a pass to take effect.
	if c.pass == nil && c.rtv != nil && (c.clearColor != nil || c.clearDepth != nil) {
		if err := c.beginPass(); err != nil {
			return err
		}
	}
	c.endPass()
	if c.encoder == nil {
		return nil
	}

	encoder := c.encoder
	c.encoder = nil
	commandBuffer, err := encoder.Finish(nil)
	encoder.Release()
	if err != nil {
		return err
	}
	c.dev.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (c *wgpuContext) Release() {
	c.endPass()
	if c.encoder != nil {
		c.encoder.Release()
		c.encoder = nil
	}
	c.unbind()
}

// unbind drops the bound targets and pipeline state, which must not outlive the frame's back buffer.
func (c *wgpuContext) unbind() {
	c.rtv, c.dsv = nil, nil
	c.clearColor, c.clearDepth = nil, nil
	c.pso = nil
}

func (c *wgpuContext) beginPass() error {
	if c.pass != nil {
		return nil
	}
	if c.encoder == nil {
		encoder, err := c.dev.device.CreateCommandEncoder(nil)
		if err != nil {
			return err
		}
		c.encoder = encoder
	}

	colorAttachment := wgpu.RenderPassColorAttachment{
		View:    c.rtv.view,
		LoadOp:  wgpu.LoadOpLoad,
		StoreOp: wgpu.StoreOpStore,
	}
	if c.clearColor != nil {
		colorAttachment.LoadOp = wgpu.LoadOpClear
		colorAttachment.ClearValue = *c.clearColor
	}
	descriptor := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{colorAttachment},
	}
	if c.dsv != nil {
		depthAttachment := &wgpu.RenderPassDepthStencilAttachment{
			View:         c.dsv.view,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		}
		if c.clearDepth != nil {
			depthAttachment.DepthLoadOp = wgpu.LoadOpClear
			depthAttachment.DepthClearValue = *c.clearDepth
		}
		descriptor.DepthStencilAttachment = depthAttachment
	}

	c.pass = c.encoder.BeginRenderPass(descriptor)
	c.clearColor, c.clearDepth = nil, nil
	c.passPSO = nil
	return nil
}

func (c *wgpuContext) endPass() {
	if c.pass == nil {
		return
	}
	c.pass.End()
	c.pass = nil
	c.passPSO = nil
}

type wgpuSwapChain struct {
	surface *wgpu.Surface
	dev     *wgpuDevice
	ctx     *wgpuContext
	desc    SwapChainDesc

	alphaMode    wgpu.CompositeAlphaMode
	presentModes []wgpu.PresentMode
	presentMode  wgpu.PresentMode

	depthTexture *wgpu.Texture
	depthView    *wgpuTextureView

	// Back buffer acquired for the current frame; released by Present.
	frameTexture *wgpu.Texture
	frameView    *wgpuTextureView
}

var _ SwapChain = &wgpuSwapChain{}

func (s *wgpuSwapChain) Desc() SwapChainDesc {
	return s.desc
}

func (s *wgpuSwapChain) CurrentBackBuffer() (TextureView, error) {
	if s.frameView != nil {
		return s.frameView, nil
	}
	texture, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, err
	}
	s.frameTexture = texture
	s.frameView = &wgpuTextureView{view: view, format: s.desc.ColorFormat}
	return s.frameView, nil
}

func (s *wgpuSwapChain) DepthBuffer() TextureView {
	if s.depthView == nil {
		return nil
	}
	return s.depthView
}

func (s *wgpuSwapChain) Present(syncInterval uint32) error {
	if err := s.ctx.Flush(); err != nil {
		s.releaseFrame()
		return err
	}
	if s.frameTexture != nil {
		s.surface.Present()
	}
	s.releaseFrame()
	s.ctx.unbind()

	if mode := s.supportedPresentMode(syncInterval > 0); mode != s.presentMode {
		s.presentMode = mode
		return s.configure()
	}
	return nil
}

func (s *wgpuSwapChain) Resize(width, height int) error {
	// A minimized window reports a zero size; keep the old buffers until it is restored.
	if width <= 0 || height <= 0 {
		return nil
	}
	if width == s.desc.Width && height == s.desc.Height {
		return nil
	}
	s.releaseFrame()
	s.desc.Width = width
	s.desc.Height = height
	return s.configure()
}

func (s *wgpuSwapChain) Release() {
	s.releaseFrame()
	s.releaseDepth()
}

func (s *wgpuSwapChain) configure() error {
	s.surface.Configure(s.dev.adapter, s.dev.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      s.desc.ColorFormat,
		Width:       uint32(s.desc.Width),
		Height:      uint32(s.desc.Height),
		PresentMode: s.presentMode,
		AlphaMode:   s.alphaMode,
	})

	s.releaseDepth()
	if s.desc.DepthFormat == wgpu.TextureFormatUndefined {
		return nil
	}
	depthTexture, err := s.dev.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(s.desc.Width),
			Height:             uint32(s.desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        s.desc.DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	view, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		return err
	}
	s.depthTexture = depthTexture
	s.depthView = &wgpuTextureView{view: view, format: s.desc.DepthFormat}
	return nil
}

// supportedPresentMode maps the sync setting to a present mode the surface supports.
// Fifo is always available.
func (s *wgpuSwapChain) supportedPresentMode(vsync bool) wgpu.PresentMode {
	mode := presentModeFor(vsync)
	if mode != wgpu.PresentModeFifo && !slices.Contains(s.presentModes, mode) {
		return wgpu.PresentModeFifo
	}
	return mode
}

func (s *wgpuSwapChain) releaseFrame() {
	if s.frameView != nil {
		s.frameView.view.Release()
		s.frameView = nil
	}
	if s.frameTexture != nil {
		s.frameTexture.Release()
		s.frameTexture = nil
	}
}

func (s *wgpuSwapChain) releaseDepth() {
	if s.depthView != nil {
		s.depthView.view.Release()
		s.depthView = nil
	}
	if s.depthTexture != nil {
		s.depthTexture.Release()
		s.depthTexture = nil
	}
}

type wgpuShader struct {
	name       string
	shaderType shader.ShaderType
	entryPoint string
	module     *wgpu.ShaderModule
}

var _ shader.Shader = &wgpuShader{}

func (s *wgpuShader) Name() string {
	return s.name
}

func (s *wgpuShader) Type() shader.ShaderType {
	return s.shaderType
}

func (s *wgpuShader) EntryPoint() string {
	return s.entryPoint
}

func (s *wgpuShader) Release() {
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
}

type wgpuPipelineState struct {
	name     string
	layout   *wgpu.PipelineLayout
	pipeline *wgpu.RenderPipeline
}

var _ PipelineState = &wgpuPipelineState{}

func (p *wgpuPipelineState) Name() string {
	return p.name
}

func (p *wgpuPipelineState) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
}
