package engine

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/adapter"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// fakeWindow replays one batch of events per PollEvents call.
type fakeWindow struct {
	rec     *recorder
	batches [][]window.Event
	polls   int
	closed  bool
}

func (w *fakeWindow) PollEvents() []window.Event {
	w.polls++
	if len(w.batches) == 0 {
		return nil
	}
	batch := w.batches[0]
	w.batches = w.batches[1:]
	return batch
}

func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return &wgpu.SurfaceDescriptor{} }
func (w *fakeWindow) IsRunning() bool                            { return !w.closed }
func (w *fakeWindow) Width() int                                 { return 800 }
func (w *fakeWindow) Height() int                                { return 600 }
func (w *fakeWindow) Title() string                              { return "SdlSandbox" }

func (w *fakeWindow) Close() error {
	w.closed = true
	w.rec.add("close window")
	return nil
}

type fakeView struct{ name string }

func (v *fakeView) Format() wgpu.TextureFormat { return wgpu.TextureFormatBGRA8Unorm }

type fakeDevice struct{ rec *recorder }

func (d *fakeDevice) Adapter() adapter.Info { return adapter.Info{Name: "fake", Class: adapter.ClassDiscrete} }
func (d *fakeDevice) Release()              { d.rec.add("release device") }

type fakeContext struct{ rec *recorder }

func (c *fakeContext) SetRenderTargets(rtv, dsv renderer.TextureView) {
	c.rec.add("set targets %s %s", rtv.(*fakeView).name, dsv.(*fakeView).name)
}

func (c *fakeContext) ClearRenderTarget(rtv renderer.TextureView, color wgpu.Color) {
	c.rec.add("clear color %.2f %.2f %.2f %.2f", color.R, color.G, color.B, color.A)
}

func (c *fakeContext) ClearDepthStencil(dsv renderer.TextureView, depth float32) {
	c.rec.add("clear depth %.1f", depth)
}

func (c *fakeContext) SetPipelineState(pso renderer.PipelineState) {
	c.rec.add("set pso %s", pso.Name())
}

func (c *fakeContext) Draw(attribs renderer.DrawAttribs) error {
	c.rec.add("draw %d", attribs.NumVertices)
	return nil
}

func (c *fakeContext) Flush() error { return nil }
func (c *fakeContext) Release()     { c.rec.add("release context") }

type fakeSwapChain struct {
	rec        *recorder
	desc       renderer.SwapChainDesc
	presentErr error
}

func (s *fakeSwapChain) Desc() renderer.SwapChainDesc { return s.desc }

func (s *fakeSwapChain) CurrentBackBuffer() (renderer.TextureView, error) {
	return &fakeView{name: "back"}, nil
}

func (s *fakeSwapChain) DepthBuffer() renderer.TextureView { return &fakeView{name: "depth"} }

func (s *fakeSwapChain) Present(syncInterval uint32) error {
	s.rec.add("present %d", syncInterval)
	return s.presentErr
}

func (s *fakeSwapChain) Resize(width, height int) error {
	s.rec.add("resize %dx%d", width, height)
	return nil
}

func (s *fakeSwapChain) Release() { s.rec.add("release swap chain") }

type fakeShader struct {
	rec *recorder
	src shader.Source
}

func (s *fakeShader) Name() string            { return s.src.Name }
func (s *fakeShader) Type() shader.ShaderType { return s.src.Type }
func (s *fakeShader) EntryPoint() string      { return s.src.EntryPoint }
func (s *fakeShader) Release()                { s.rec.add("release shader %s", s.src.Name) }

type fakePSO struct {
	rec  *recorder
	name string
}

func (p *fakePSO) Name() string { return p.name }
func (p *fakePSO) Release()     { p.rec.add("release pso") }

type fakeBackend struct {
	rec       *recorder
	deviceErr error
	swap      *fakeSwapChain
	gotPSO    pipeline.Pipeline
}

func (b *fakeBackend) Kind() renderer.BackendKind { return renderer.BackendVulkan }
func (b *fakeBackend) SupportsAdapterEnumeration() bool {
	return true
}

func (b *fakeBackend) EnumerateAdapters() ([]adapter.Info, error) {
	return []adapter.Info{{Index: 0, Class: adapter.ClassDiscrete, Name: "fake"}}, nil
}

func (b *fakeBackend) CreateDeviceAndContext(cfg renderer.DeviceConfig) (renderer.Device, renderer.Context, error) {
	if b.deviceErr != nil {
		return nil, nil, b.deviceErr
	}
	return &fakeDevice{rec: b.rec}, &fakeContext{rec: b.rec}, nil
}

func (b *fakeBackend) CreateSwapChain(dev renderer.Device, ctx renderer.Context, desc renderer.SwapChainDesc, surface renderer.SurfaceSource) (renderer.SwapChain, error) {
	desc.ColorFormat = wgpu.TextureFormatBGRA8Unorm
	b.swap = &fakeSwapChain{rec: b.rec, desc: desc}
	return b.swap, nil
}

func (b *fakeBackend) CreateShader(dev renderer.Device, src shader.Source) (shader.Shader, error) {
	return &fakeShader{rec: b.rec, src: src}, nil
}

func (b *fakeBackend) CreateGraphicsPipelineState(dev renderer.Device, desc pipeline.Pipeline) (renderer.PipelineState, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	b.gotPSO = desc
	return &fakePSO{rec: b.rec, name: desc.Name()}, nil
}

func (b *fakeBackend) Release() { b.rec.add("release backend") }

func newTestEngine(t *testing.T, batches ...[]window.Event) (Engine, *fakeBackend, *fakeWindow) {
	t.Helper()
	rec := &recorder{}
	b := &fakeBackend{rec: rec}
	w := &fakeWindow{rec: rec, batches: batches}
	e := NewEngine(WithWindow(w), WithBackend(b), WithFrameDelay(0))
	if err := e.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := e.InitPipeline(); err != nil {
		t.Fatalf("InitPipeline: %v", err)
	}
	rec.events = nil
	return e, b, w
}

func TestInitPipelineDescription(t *testing.T) {
	e, b, _ := newTestEngine(t)
	defer e.Close()

	p := b.gotPSO
	if p.Name() != PipelineName {
		t.Errorf("pipeline name = %q, want %q", p.Name(), PipelineName)
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList || p.CullMode() != wgpu.CullModeNone {
		t.Errorf("topology/cull = %v/%v, want triangle list without culling", p.Topology(), p.CullMode())
	}
	if p.DepthTestEnabled() {
		t.Error("depth test enabled, want disabled")
	}
	if p.RenderTargetFormat() != wgpu.TextureFormatBGRA8Unorm {
		t.Errorf("RTV format = %v, want the swap chain's", p.RenderTargetFormat())
	}
	if p.DepthStencilFormat() != wgpu.TextureFormatDepth24Plus {
		t.Errorf("DSV format = %v, want the swap chain's", p.DepthStencilFormat())
	}
	if vs := p.Shader(shader.ShaderTypeVertex); vs.Name() != "Triangle vertex shader" || vs.EntryPoint() != "main" {
		t.Errorf("vertex shader = %q/%q", vs.Name(), vs.EntryPoint())
	}
	if e.Adapter().Name != "fake" {
		t.Errorf("Adapter() = %+v", e.Adapter())
	}
}

func TestRenderFrame(t *testing.T) {
	e, b, _ := newTestEngine(t)
	defer e.Close()

	if err := e.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []string{
		"set targets back depth",
		"clear color 0.35 0.35 0.35 1.00",
		"clear depth 1.0",
		"set pso Simple triangle PSO",
		"draw 3",
		"present 1",
	}
	if !slices.Equal(b.rec.events, want) {
		t.Errorf("frame = %v, want %v", b.rec.events, want)
	}
	if e.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", e.Frames())
	}
}

func TestRenderPresentFailure(t *testing.T) {
	e, b, _ := newTestEngine(t)
	defer e.Close()

	boom := errors.New("lost surface")
	b.swap.presentErr = boom
	if err := e.Render(); !errors.Is(err, boom) {
		t.Fatalf("Render error = %v, want %v", err, boom)
	}
	if e.Frames() != 0 {
		t.Errorf("Frames() = %d after a failed frame", e.Frames())
	}
}

func TestRunStopsOnEvents(t *testing.T) {
	tests := []struct {
		name       string
		batches    [][]window.Event
		wantFrames uint64
	}{
		{
			name:       "quit",
			batches:    [][]window.Event{nil, nil, {{Type: window.EventQuit}}},
			wantFrames: 2,
		},
		{
			name:       "escape",
			batches:    [][]window.Event{nil, {{Type: window.EventKeyDown, Key: common.KeyEsc}}},
			wantFrames: 1,
		},
		{
			name: "other keys keep running",
			batches: [][]window.Event{
				{{Type: window.EventKeyDown, Key: common.KeySpace}},
				{{Type: window.EventQuit}},
			},
			wantFrames: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t, tt.batches...)
			defer e.Close()
			if err := e.Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if e.Frames() != tt.wantFrames {
				t.Errorf("Frames() = %d, want %d", e.Frames(), tt.wantFrames)
			}
		})
	}
}

func TestRunResizesSwapChain(t *testing.T) {
	e, b, _ := newTestEngine(t,
		[]window.Event{{Type: window.EventResized, Width: 1024, Height: 768}},
		[]window.Event{{Type: window.EventQuit}},
	)
	defer e.Close()

	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(b.rec.events) == 0 || b.rec.events[0] != "resize 1024x768" {
		t.Errorf("events = %v, want resize before the first frame", b.rec.events)
	}
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	e, _, w := newTestEngine(t)
	defer e.Close()

	w.closed = true
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.Frames() != 0 {
		t.Errorf("Frames() = %d, want 0", e.Frames())
	}
}

func TestCloseReleasesInReverseOrder(t *testing.T) {
	e, b, _ := newTestEngine(t)

	e.Close()
	e.Close()

	want := []string{
		"release pso",
		"release swap chain",
		"release context",
		"release device",
		"release backend",
		"close window",
	}
	if !slices.Equal(b.rec.events, want) {
		t.Errorf("teardown = %v, want %v", b.rec.events, want)
	}
	if err := e.Render(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Render after Close = %v, want ErrNotInitialized", err)
	}
}

func TestInitPipelineReleasesShaders(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(WithWindow(&fakeWindow{rec: rec}), WithBackend(&fakeBackend{rec: rec}))
	defer e.Close()
	if err := e.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := e.InitPipeline(); err != nil {
		t.Fatalf("InitPipeline: %v", err)
	}
	want := []string{"release shader Triangle pixel shader", "release shader Triangle vertex shader"}
	if !slices.Equal(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestNotInitialized(t *testing.T) {
	e := NewEngine(WithWindow(&fakeWindow{rec: &recorder{}}))
	if err := e.Render(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Render = %v, want ErrNotInitialized", err)
	}
	if err := e.Run(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Run = %v, want ErrNotInitialized", err)
	}
	if err := e.InitPipeline(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("InitPipeline = %v, want ErrNotInitialized", err)
	}
}

func TestInitFailureIsFatal(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("no device")
	e := NewEngine(WithWindow(&fakeWindow{rec: rec}), WithBackend(&fakeBackend{rec: rec, deviceErr: boom}))
	defer e.Close()

	err := e.Init()
	if !errors.Is(err, renderer.ErrInitFailed) || !errors.Is(err, boom) {
		t.Fatalf("Init error = %v, want ErrInitFailed wrapping %v", err, boom)
	}
}
