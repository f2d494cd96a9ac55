// Package shader holds the shader sources the sample renders with and the
// handle type backends return once a source is compiled.
package shader

import (
	"fmt"
)

// ShaderType identifies the pipeline stage a shader runs in.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypePixel is the pixel (fragment) stage.
	ShaderTypePixel
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypePixel:
		return "pixel"
	default:
		return "unknown"
	}
}

// Shader is a compiled shader owned by a graphics backend.
type Shader interface {
	// Name returns the descriptive name given at creation, used in backend diagnostics.
	Name() string

	// Type returns the pipeline stage the shader was compiled for.
	Type() ShaderType

	// EntryPoint returns the name of the entry function.
	EntryPoint() string

	// Release frees the backend resources held by the shader.
	Release()
}

// Source is an uncompiled shader: its code plus what the backend needs to compile it.
type Source struct {
	Name       string
	Type       ShaderType
	Code       string
	EntryPoint string
}

// NewSource builds a Source, reading the entry point from the code's
// @vertex or @fragment attribute.
//
// Parameters:
//   - name: descriptive name reported by the backend
//   - shaderType: the stage the code targets
//   - code: the WGSL source
//
// Returns:
//   - Source: the shader source
//   - error: an error if no entry point for shaderType exists in code
func NewSource(name string, shaderType ShaderType, code string) (Source, error) {
	entry := parseEntryPoint(code, shaderType)
	if entry == "" {
		return Source{}, fmt.Errorf("shader: %s: no %s entry point found", name, shaderType)
	}
	return Source{
		Name:       name,
		Type:       shaderType,
		Code:       code,
		EntryPoint: entry,
	}, nil
}
