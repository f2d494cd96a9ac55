package renderer

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// GraphicsBackendBuilderOption is a functional option applied to a backend during construction via NewGraphicsBackend.
type GraphicsBackendBuilderOption func(*wgpuBackend)

// WithForceSoftwareRenderer restricts the backend to CPU/software adapters instead of
// hardware GPU acceleration. This requires a software driver to be installed on the system
// (e.g. SwiftShader or lavapipe for Vulkan, WARP for Direct3D).
//
// Parameters:
//   - force: true to force software adapters, false to use hardware (default)
//
// Returns:
//   - GraphicsBackendBuilderOption: a function that applies the force software renderer option to a backend
func WithForceSoftwareRenderer(force bool) GraphicsBackendBuilderOption {
	return func(b *wgpuBackend) {
		b.forceFallbackAdapter = force
	}
}

// WithPowerPreference sets the power preference used when the platform picks the adapter,
// which happens for backends that do not enumerate adapters.
//
// Parameters:
//   - pref: the power preference, HighPerformance by default
//
// Returns:
//   - GraphicsBackendBuilderOption: a function that applies the power preference to a backend
func WithPowerPreference(pref wgpu.PowerPreference) GraphicsBackendBuilderOption {
	return func(b *wgpuBackend) {
		b.powerPreference = pref
	}
}

// ParsePowerPreference converts a power preference name as written in config files.
//
// Parameters:
//   - s: "high-performance", "low-power" or "none" (case-insensitive)
//
// Returns:
//   - wgpu.PowerPreference: the parsed preference
//   - error: an error if s names no preference
func ParsePowerPreference(s string) (wgpu.PowerPreference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high-performance", "high":
		return wgpu.PowerPreferenceHighPerformance, nil
	case "low-power", "low":
		return wgpu.PowerPreferenceLowPower, nil
	case "none", "":
		return wgpu.PowerPreferenceUndefined, nil
	default:
		return wgpu.PowerPreferenceUndefined, fmt.Errorf("unknown power preference %q", s)
	}
}
