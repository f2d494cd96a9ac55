package window

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides a platform window and its polled input event stream.
type Window interface {
	// PollEvents pumps the platform message queue without blocking and returns
	// every event raised since the previous call, in arrival order.
	//
	// Returns:
	//   - []Event: the pending events, or nil if there are none
	PollEvents() []Event

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still open.
	IsRunning() bool

	// Close destroys the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int

	// Title returns the window title.
	Title() string
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height track the framebuffer size, which differs from the
	// requested size on high-DPI displays.
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	queue eventQueue
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

// newEngineWindow applies defaults and options without touching the platform.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "SdlSandbox",
		maxWidth:  0,
		maxHeight: 0,
		minWidth:  0,
		minHeight: 0,
		width:     800,
		height:    600,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) PollEvents() []Event {
	platformProcessMessages(w)
	return w.queue.drain()
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) Title() string {
	return w.title
}

// onKey is invoked by the platform layer for key presses and repeats.
func (w *engineWindow) onKey(key uint32) {
	w.queue.push(Event{Type: EventKeyDown, Key: key})
}

// onResize is invoked by the platform layer when the framebuffer size changes.
func (w *engineWindow) onResize(width, height int) {
	w.width = width
	w.height = height
	w.queue.push(Event{Type: EventResized, Width: width, Height: height})
}

// onClose is invoked by the platform layer when the user closes the window.
func (w *engineWindow) onClose() {
	w.queue.push(Event{Type: EventQuit})
}
