package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/adapter"
	"github.com/cogentcore/webgpu/wgpu"
)

// Handles is the device, context and swap chain produced by InitBackend.
type Handles struct {
	Device    Device
	Context   Context
	SwapChain SwapChain

	// Selection is the adapter chosen by adapter.Select, or nil when the backend
	// does not enumerate adapters.
	Selection *adapter.Selection
}

// Release frees the handles in reverse creation order: swap chain, context, device.
// Released handles are cleared, so calling Release again is a no-op.
func (h *Handles) Release() {
	if h.SwapChain != nil {
		h.SwapChain.Release()
		h.SwapChain = nil
	}
	if h.Context != nil {
		h.Context.Release()
		h.Context = nil
	}
	if h.Device != nil {
		h.Device.Release()
		h.Device = nil
	}
}

// NewGraphicsBackend creates the backend for the given native API.
//
// Parameters:
//   - kind: the API to drive
//   - opts: a variadic list of GraphicsBackendBuilderOption functions to configure the backend
//
// Returns:
//   - GraphicsBackend: the backend
//   - error: ErrUnsupportedBackend if kind is not a known BackendKind
func NewGraphicsBackend(kind BackendKind, opts ...GraphicsBackendBuilderOption) (GraphicsBackend, error) {
	switch kind {
	case BackendD3D11:
		return newWGPUBackend(kind, wgpu.BackendTypeD3D11, opts...), nil
	case BackendD3D12:
		return newWGPUBackend(kind, wgpu.BackendTypeD3D12, opts...), nil
	case BackendOpenGL:
		return newWGPUBackend(kind, wgpu.BackendTypeOpenGL, opts...), nil
	case BackendVulkan:
		return newWGPUBackend(kind, wgpu.BackendTypeVulkan, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, kind)
	}
}

// InitBackend creates the device, immediate context and swap chain on b.
//
// Adapter selection runs only when the backend enumerates adapters; otherwise the
// request is ignored with a warning and the platform default adapter is used.
// A zero Width or Height in desc is taken from the surface. Any failure is fatal:
// handles created so far are released and the error wraps ErrInitFailed.
//
// Parameters:
//   - b: the backend to initialize
//   - surface: the window to present to
//   - req: the adapter request
//   - desc: the swap chain descriptor
//
// Returns:
//   - *Handles: the created handles
//   - error: an error wrapping ErrInitFailed, and adapter.ErrNoAdaptersFound when no adapter exists
func InitBackend(b GraphicsBackend, surface SurfaceSource, req adapter.Request, desc SwapChainDesc) (*Handles, error) {
	logger := common.Logger()
	kind := b.Kind()
	h := &Handles{}

	cfg := DeviceConfig{
		Label:   "Main Device",
		Surface: surface,
	}

	if b.SupportsAdapterEnumeration() {
		adapters, err := b.EnumerateAdapters()
		if err != nil {
			return nil, fmt.Errorf("%w: enumerating %s adapters: %w", ErrInitFailed, kind, err)
		}
		sel, err := adapter.Select(adapters, req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInitFailed, kind, err)
		}
		h.Selection = &sel
		cfg.AdapterIndex = &sel.Index
		logger.Info("adapter selected",
			"backend", kind.String(),
			"index", sel.Index,
			"class", sel.Class.String(),
			"name", adapters[sel.Index].Name,
		)
	} else if req.Index != nil || req.Class != nil {
		logger.Warn("backend does not enumerate adapters, using the platform default", "backend", kind.String())
	}

	dev, ctx, err := b.CreateDeviceAndContext(cfg)
	if err != nil {
		if ctx != nil {
			ctx.Release()
		}
		if dev != nil {
			dev.Release()
		}
		return nil, fmt.Errorf("%w: creating %s device: %w", ErrInitFailed, kind, err)
	}
	h.Device = dev
	h.Context = ctx

	if desc.Width <= 0 {
		desc.Width = surface.Width()
	}
	if desc.Height <= 0 {
		desc.Height = surface.Height()
	}

	sc, err := b.CreateSwapChain(dev, ctx, desc, surface)
	if err != nil {
		h.Release()
		return nil, fmt.Errorf("%w: creating %s swap chain: %w", ErrInitFailed, kind, err)
	}
	h.SwapChain = sc

	logger.Info("graphics initialized",
		"backend", kind.String(),
		"adapter", dev.Adapter().Name,
		"width", desc.Width,
		"height", desc.Height,
	)
	return h, nil
}
