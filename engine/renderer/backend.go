package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/adapter"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrInitFailed wraps every failure of InitBackend.
	ErrInitFailed = errors.New("renderer: graphics initialization failed")

	// ErrUnsupportedBackend is returned by NewGraphicsBackend for an unknown BackendKind.
	ErrUnsupportedBackend = errors.New("renderer: unsupported backend")

	// ErrPipelineFailed wraps shader or pipeline state creation failures.
	ErrPipelineFailed = errors.New("renderer: pipeline creation failed")
)

// BackendKind identifies the native graphics API a GraphicsBackend drives.
type BackendKind int

const (
	// BackendD3D11 selects Direct3D 11.
	BackendD3D11 BackendKind = iota

	// BackendD3D12 selects Direct3D 12.
	BackendD3D12

	// BackendOpenGL selects OpenGL.
	BackendOpenGL

	// BackendVulkan selects Vulkan.
	BackendVulkan
)

func (k BackendKind) String() string {
	switch k {
	case BackendD3D11:
		return "d3d11"
	case BackendD3D12:
		return "d3d12"
	case BackendOpenGL:
		return "opengl"
	case BackendVulkan:
		return "vulkan"
	default:
		return fmt.Sprintf("backend(%d)", int(k))
	}
}

// EnumeratesAdapters reports whether the API exposes a list of adapters to choose from.
// OpenGL always renders on the platform default adapter.
func (k BackendKind) EnumeratesAdapters() bool {
	return k != BackendOpenGL
}

// ParseBackendKind converts a backend name into a BackendKind.
// Accepted names are d3d11, d3d12, opengl (or gl) and vulkan (or vk), in any case.
//
// Parameters:
//   - s: the backend name
//
// Returns:
//   - BackendKind: the parsed kind
//   - error: ErrUnsupportedBackend wrapped with the name if it is not recognized
func ParseBackendKind(s string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d3d11":
		return BackendD3D11, nil
	case "d3d12":
		return BackendD3D12, nil
	case "opengl", "gl":
		return BackendOpenGL, nil
	case "vulkan", "vk":
		return BackendVulkan, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
	}
}

// DeviceConfig carries the device creation parameters shared by every backend.
type DeviceConfig struct {
	// AdapterIndex is the enumeration index of the adapter to create the device on.
	// Nil lets the API pick its default adapter.
	AdapterIndex *int

	// Label names the device in API diagnostics.
	Label string

	// Surface, when set, is the window the device must be able to present to.
	Surface SurfaceSource
}

// SwapChainDesc describes the swap chain bound to a window.
type SwapChainDesc struct {
	Width, Height int
	BufferCount   int
	IsPrimary     bool

	// ColorFormat is the back buffer format. TextureFormatUndefined lets the backend pick
	// the surface's preferred format, which is then written back into Desc().
	ColorFormat wgpu.TextureFormat
	DepthFormat wgpu.TextureFormat

	// VSync selects the present mode used until Present is called with a different sync interval.
	VSync bool
}

// DefaultSwapChainDesc returns the descriptor of a primary, double buffered swap chain
// with a Depth24Plus depth buffer. Width and height come from the window.
func DefaultSwapChainDesc() SwapChainDesc {
	return SwapChainDesc{
		BufferCount: 2,
		IsPrimary:   true,
		ColorFormat: wgpu.TextureFormatUndefined,
		DepthFormat: wgpu.TextureFormatDepth24Plus,
		VSync:       true,
	}
}

// DrawAttribs describes a non-indexed draw.
type DrawAttribs struct {
	NumVertices  uint32
	NumInstances uint32
}

// SurfaceSource is the window a swap chain presents to.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// TextureView is a render target or depth target view.
type TextureView interface {
	Format() wgpu.TextureFormat
}

// Device is the object that creates GPU resources.
type Device interface {
	// Adapter describes the adapter the device was created on.
	Adapter() adapter.Info

	Release()
}

// Context is the immediate device context that records and submits rendering commands.
type Context interface {
	// SetRenderTargets binds the color target and an optional depth target.
	//
	// Parameters:
	//   - rtv: the color target view
	//   - dsv: the depth target view, or nil
	SetRenderTargets(rtv, dsv TextureView)

	// ClearRenderTarget clears the bound color target to color.
	ClearRenderTarget(rtv TextureView, color wgpu.Color)

	// ClearDepthStencil clears the bound depth target to depth.
	ClearDepthStencil(dsv TextureView, depth float32)

	// SetPipelineState binds the pipeline state used by subsequent draws.
	SetPipelineState(pso PipelineState)

	// Draw records a non-indexed draw with the bound targets and pipeline state.
	//
	// Parameters:
	//   - attribs: vertex and instance counts
	//
	// Returns:
	//   - error: an error if no render target or pipeline state is bound
	Draw(attribs DrawAttribs) error

	// Flush submits everything recorded since the last flush.
	Flush() error

	Release()
}

// SwapChain is the chain of presentable back buffers bound to a window.
type SwapChain interface {
	// Desc returns the descriptor with the formats the backend resolved.
	Desc() SwapChainDesc

	// CurrentBackBuffer returns the render target view of the back buffer for this frame.
	//
	// Returns:
	//   - TextureView: the back buffer view
	//   - error: an error if the back buffer could not be acquired
	CurrentBackBuffer() (TextureView, error)

	// DepthBuffer returns the depth target view, or nil if the swap chain has none.
	DepthBuffer() TextureView

	// Present submits pending work and shows the back buffer.
	//
	// Parameters:
	//   - syncInterval: 0 presents immediately, 1 or more waits for vertical blank
	//
	// Returns:
	//   - error: an error if presenting failed
	Present(syncInterval uint32) error

	// Resize recreates the back buffers and the depth buffer for a new window size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the buffers could not be recreated
	Resize(width, height int) error

	Release()
}

// PipelineState is a compiled graphics pipeline.
type PipelineState interface {
	Name() string
	Release()
}

// GraphicsBackend creates the device, context, swap chain, shaders and pipeline states
// of one native graphics API.
type GraphicsBackend interface {
	// Kind returns the API this backend drives.
	Kind() BackendKind

	// SupportsAdapterEnumeration reports whether EnumerateAdapters lists selectable adapters.
	SupportsAdapterEnumeration() bool

	// EnumerateAdapters lists the adapters the API can create a device on, in enumeration order.
	//
	// Returns:
	//   - []adapter.Info: the adapters, with Index set to the enumeration position
	//   - error: an error if enumeration failed
	EnumerateAdapters() ([]adapter.Info, error)

	// CreateDeviceAndContext creates the device and its immediate context.
	//
	// Parameters:
	//   - cfg: the device configuration
	//
	// Returns:
	//   - Device: the created device
	//   - Context: the immediate context of the device
	//   - error: an error if either could not be created
	CreateDeviceAndContext(cfg DeviceConfig) (Device, Context, error)

	// CreateSwapChain creates the swap chain presenting to surface.
	//
	// Parameters:
	//   - dev: the device that owns the back buffers
	//   - ctx: the context whose work Present submits
	//   - desc: the swap chain descriptor
	//   - surface: the window to present to
	//
	// Returns:
	//   - SwapChain: the created swap chain
	//   - error: an error if the swap chain could not be created
	CreateSwapChain(dev Device, ctx Context, desc SwapChainDesc, surface SurfaceSource) (SwapChain, error)

	// CreateShader compiles a shader source.
	//
	// Parameters:
	//   - dev: the device compiling the shader
	//   - src: the shader source
	//
	// Returns:
	//   - shader.Shader: the compiled shader
	//   - error: an error if compilation failed
	CreateShader(dev Device, src shader.Source) (shader.Shader, error)

	// CreateGraphicsPipelineState compiles a pipeline description.
	//
	// Parameters:
	//   - dev: the device creating the pipeline state
	//   - desc: the pipeline description; its shaders must come from CreateShader on this backend
	//
	// Returns:
	//   - PipelineState: the compiled pipeline state
	//   - error: an error if the description is invalid or compilation failed
	CreateGraphicsPipelineState(dev Device, desc pipeline.Pipeline) (PipelineState, error)

	// Release frees the API instance. Handles created by the backend must be released first.
	Release()
}
