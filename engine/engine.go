package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/adapter"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineName is the name of the triangle pipeline state.
const PipelineName = "Simple triangle PSO"

// ClearColor is the background the triangle is drawn over.
var ClearColor = wgpu.Color{R: 0.35, G: 0.35, B: 0.35, A: 1.0}

// ErrNotInitialized is returned when a frame is requested before Init and InitPipeline succeeded.
var ErrNotInitialized = errors.New("engine: not initialized")

// engine implements the Engine interface.
// Everything runs on the goroutine that calls Run.
type engine struct {
	running bool
	closed  bool
	frames  uint64

	window window.Window

	backend     renderer.GraphicsBackend
	backendKind renderer.BackendKind
	backendOpts []renderer.GraphicsBackendBuilderOption
	request     adapter.Request
	swapDesc    renderer.SwapChainDesc

	handles *renderer.Handles
	pso     renderer.PipelineState

	syncInterval uint32
	frameDelay   time.Duration

	profiler         *profiler.Profiler
	profilingEnabled bool
}

// Engine is the application context of the sample. It owns the window, the graphics
// backend and every handle created on it, renders the triangle and tears everything down.
type Engine interface {
	// Init creates the window if none was supplied, the graphics backend if none was supplied,
	// then the device, immediate context and swap chain.
	//
	// Returns:
	//   - error: an error wrapping renderer.ErrInitFailed if graphics initialization fails
	Init() error

	// InitPipeline compiles the triangle shaders and creates the pipeline state.
	// The shaders are released once the pipeline state holds them.
	//
	// Returns:
	//   - error: an error wrapping renderer.ErrPipelineFailed if compilation fails
	InitPipeline() error

	// Render draws one frame: bind the back buffer and depth buffer, clear both,
	// bind the pipeline state, draw 3 vertices and present.
	//
	// Returns:
	//   - error: ErrNotInitialized before Init and InitPipeline, or the frame's failure
	Render() error

	// Run polls window events and renders frames on the calling goroutine until the
	// window is closed, Escape is pressed or Quit is called.
	//
	// Returns:
	//   - error: the first frame failure, if any
	Run() error

	// Quit stops Run after the current frame.
	Quit()

	// Close releases the pipeline state, swap chain, context and device in that order,
	// then the backend and the window. Safe to call multiple times.
	Close()

	// Frames returns the number of frames presented so far.
	Frames() uint64

	// Window returns the underlying window.
	Window() window.Window

	// Backend returns the graphics backend, or nil before Init.
	Backend() renderer.GraphicsBackend

	// Adapter describes the adapter the device runs on. It is the zero Info before Init.
	Adapter() adapter.Info
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options. Nothing is created on the GPU until Init.
// Defaults are the Vulkan backend, a primary double-buffered swap chain, sync interval 1
// and a 10 millisecond delay between frames.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		backendKind:  renderer.BackendVulkan,
		swapDesc:     renderer.DefaultSwapChainDesc(),
		syncInterval: 1,
		frameDelay:   10 * time.Millisecond,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profilingEnabled {
		e.profiler = profiler.NewProfiler(time.Second)
	}
	return e
}

func (e *engine) Init() error {
	if e.closed {
		return errors.New("engine: closed")
	}
	if e.window == nil {
		w, err := window.NewWindow()
		if err != nil {
			return fmt.Errorf("%w: %w", renderer.ErrInitFailed, err)
		}
		e.window = w
	}
	if e.backend == nil {
		b, err := renderer.NewGraphicsBackend(e.backendKind, e.backendOpts...)
		if err != nil {
			return fmt.Errorf("%w: %w", renderer.ErrInitFailed, err)
		}
		e.backend = b
	}

	handles, err := renderer.InitBackend(e.backend, e.window, e.request, e.swapDesc)
	if err != nil {
		return err
	}
	e.handles = handles
	return nil
}

func (e *engine) InitPipeline() error {
	if e.handles == nil {
		return ErrNotInitialized
	}
	if e.pso != nil {
		return nil
	}
	dev := e.handles.Device

	vs, err := e.backend.CreateShader(dev, shader.TriangleVertex())
	if err != nil {
		return err
	}
	defer vs.Release()
	ps, err := e.backend.CreateShader(dev, shader.TrianglePixel())
	if err != nil {
		return err
	}
	defer ps.Release()

	desc := e.handles.SwapChain.Desc()
	pso, err := e.backend.CreateGraphicsPipelineState(dev, pipeline.NewPipeline(PipelineName,
		pipeline.WithVertexShader(vs),
		pipeline.WithPixelShader(ps),
		pipeline.WithRenderTargetFormat(desc.ColorFormat),
		pipeline.WithDepthStencilFormat(desc.DepthFormat),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithDepthTestEnabled(false),
	))
	if err != nil {
		return err
	}
	e.pso = pso
	common.Logger().Debug("pipeline state created", "name", pso.Name())
	return nil
}

func (e *engine) Render() error {
	if e.handles == nil || e.pso == nil {
		return ErrNotInitialized
	}
	ctx := e.handles.Context
	sc := e.handles.SwapChain

	rtv, err := sc.CurrentBackBuffer()
	if err != nil {
		return fmt.Errorf("acquiring back buffer: %w", err)
	}
	dsv := sc.DepthBuffer()

	ctx.SetRenderTargets(rtv, dsv)
	ctx.ClearRenderTarget(rtv, ClearColor)
	if dsv != nil {
		ctx.ClearDepthStencil(dsv, 1.0)
	}
	ctx.SetPipelineState(e.pso)
	if err := ctx.Draw(renderer.DrawAttribs{NumVertices: 3}); err != nil {
		return fmt.Errorf("drawing triangle: %w", err)
	}
	if err := sc.Present(e.syncInterval); err != nil {
		return fmt.Errorf("presenting: %w", err)
	}

	e.frames++
	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	return nil
}

func (e *engine) Run() error {
	if e.handles == nil || e.pso == nil {
		return ErrNotInitialized
	}
	e.running = true
	defer func() { e.running = false }()

	for e.running {
		for _, ev := range e.window.PollEvents() {
			e.handleEvent(ev)
		}
		if !e.running || !e.window.IsRunning() {
			break
		}
		if err := e.Render(); err != nil {
			return err
		}
		if e.frameDelay > 0 {
			time.Sleep(e.frameDelay)
		}
	}
	return nil
}

// handleEvent applies one window event to the loop state.
func (e *engine) handleEvent(ev window.Event) {
	switch ev.Type {
	case window.EventQuit:
		e.running = false
	case window.EventKeyDown:
		if ev.Key == common.KeyEsc {
			e.running = false
		}
	case window.EventResized:
		if err := e.handles.SwapChain.Resize(ev.Width, ev.Height); err != nil {
			common.Logger().Warn("swap chain resize failed", "width", ev.Width, "height", ev.Height, "err", err)
		}
	}
}

func (e *engine) Quit() {
	e.running = false
}

func (e *engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.running = false

	if e.pso != nil {
		e.pso.Release()
		e.pso = nil
	}
	if e.handles != nil {
		e.handles.Release()
		e.handles = nil
	}
	if e.backend != nil {
		e.backend.Release()
		e.backend = nil
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			common.Logger().Debug("window close", "err", err)
		}
	}
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Backend() renderer.GraphicsBackend {
	return e.backend
}

func (e *engine) Adapter() adapter.Info {
	if e.handles == nil || e.handles.Device == nil {
		return adapter.Info{}
	}
	return e.handles.Device.Adapter()
}
