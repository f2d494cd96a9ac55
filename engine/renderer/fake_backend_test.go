package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/adapter"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// recorder collects handle lifecycle events in order.
type recorder struct {
	events []string
}

func (r *recorder) add(e string) {
	r.events = append(r.events, e)
}

type fakeSurface struct{ w, h int }

func (s fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return &wgpu.SurfaceDescriptor{} }
func (s fakeSurface) Width() int                                 { return s.w }
func (s fakeSurface) Height() int                                { return s.h }

type fakeDevice struct {
	rec  *recorder
	info adapter.Info
}

func (d *fakeDevice) Adapter() adapter.Info { return d.info }
func (d *fakeDevice) Release()              { d.rec.add("release device") }

type fakeContext struct{ rec *recorder }

func (c *fakeContext) SetRenderTargets(rtv, dsv TextureView)                {}
func (c *fakeContext) ClearRenderTarget(rtv TextureView, color wgpu.Color)  {}
func (c *fakeContext) ClearDepthStencil(dsv TextureView, depth float32)     {}
func (c *fakeContext) SetPipelineState(pso PipelineState)                   {}
func (c *fakeContext) Draw(attribs DrawAttribs) error                       { return nil }
func (c *fakeContext) Flush() error                                         { return nil }
func (c *fakeContext) Release()                                             { c.rec.add("release context") }

type fakeSwapChain struct {
	rec  *recorder
	desc SwapChainDesc
}

func (s *fakeSwapChain) Desc() SwapChainDesc                      { return s.desc }
func (s *fakeSwapChain) CurrentBackBuffer() (TextureView, error)  { return nil, nil }
func (s *fakeSwapChain) DepthBuffer() TextureView                 { return nil }
func (s *fakeSwapChain) Present(syncInterval uint32) error        { return nil }
func (s *fakeSwapChain) Resize(width, height int) error           { return nil }
func (s *fakeSwapChain) Release()                                 { s.rec.add("release swap chain") }

// fakeBackend is a GraphicsBackend that creates inert handles and can be told to fail at any step.
type fakeBackend struct {
	rec       *recorder
	kind      BackendKind
	adapters  []adapter.Info
	enumErr   error
	deviceErr error
	swapErr   error

	gotConfig DeviceConfig
	gotDesc   SwapChainDesc
}

func newFakeBackend(kind BackendKind, adapters ...adapter.Info) *fakeBackend {
	return &fakeBackend{rec: &recorder{}, kind: kind, adapters: adapters}
}

func (b *fakeBackend) Kind() BackendKind                { return b.kind }
func (b *fakeBackend) SupportsAdapterEnumeration() bool { return b.kind.EnumeratesAdapters() }

func (b *fakeBackend) EnumerateAdapters() ([]adapter.Info, error) {
	b.rec.add("enumerate")
	return b.adapters, b.enumErr
}

func (b *fakeBackend) CreateDeviceAndContext(cfg DeviceConfig) (Device, Context, error) {
	b.rec.add("create device")
	b.gotConfig = cfg
	if b.deviceErr != nil {
		return nil, nil, b.deviceErr
	}
	info := adapter.Info{Name: "default"}
	if cfg.AdapterIndex != nil {
		info = b.adapters[*cfg.AdapterIndex]
	}
	return &fakeDevice{rec: b.rec, info: info}, &fakeContext{rec: b.rec}, nil
}

func (b *fakeBackend) CreateSwapChain(dev Device, ctx Context, desc SwapChainDesc, surface SurfaceSource) (SwapChain, error) {
	b.rec.add("create swap chain")
	b.gotDesc = desc
	if b.swapErr != nil {
		return nil, b.swapErr
	}
	return &fakeSwapChain{rec: b.rec, desc: desc}, nil
}

func (b *fakeBackend) CreateShader(dev Device, src shader.Source) (shader.Shader, error) {
	return nil, errors.New("not implemented")
}

func (b *fakeBackend) CreateGraphicsPipelineState(dev Device, desc pipeline.Pipeline) (PipelineState, error) {
	return nil, errors.New("not implemented")
}

func (b *fakeBackend) Release() { b.rec.add("release backend") }
