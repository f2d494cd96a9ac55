package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/adapter"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create one internally. The engine closes it in Close.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithBackendKind selects the native graphics API the engine creates its backend for.
//
// Parameters:
//   - kind: the graphics API (default renderer.BackendVulkan)
//   - opts: options passed to renderer.NewGraphicsBackend
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackendKind(kind renderer.BackendKind, opts ...renderer.GraphicsBackendBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.backendKind = kind
		e.backendOpts = opts
	}
}

// WithBackend supplies an already created graphics backend. The engine releases it in Close.
//
// Parameters:
//   - b: the backend to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(b renderer.GraphicsBackend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = b
		e.backendKind = b.Kind()
	}
}

// WithAdapterRequest sets the adapter preference handed to adapter selection.
//
// Parameters:
//   - req: the adapter request
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAdapterRequest(req adapter.Request) EngineBuilderOption {
	return func(e *engine) {
		e.request = req
	}
}

// WithSwapChainDesc overrides the swap chain descriptor. A zero width or height is taken from the window.
//
// Parameters:
//   - desc: the swap chain descriptor
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSwapChainDesc(desc renderer.SwapChainDesc) EngineBuilderOption {
	return func(e *engine) {
		e.swapDesc = desc
	}
}

// WithSyncInterval sets the sync interval passed to Present every frame.
//
// Parameters:
//   - interval: 0 to present immediately, 1 to wait for vertical blank (default)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSyncInterval(interval uint32) EngineBuilderOption {
	return func(e *engine) {
		e.syncInterval = interval
	}
}

// WithFrameDelay sets the pause after every frame. Pass 0 to run uncapped.
//
// Parameters:
//   - d: the delay between frames (default 10ms)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameDelay(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d < 0 {
			d = 0
		}
		e.frameDelay = d
	}
}
