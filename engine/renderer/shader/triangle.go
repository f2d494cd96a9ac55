package shader

import (
	_ "embed"
)

// Both stages hardcode the triangle: no vertex buffers and no resources.
// Positions (-0.5,-0.5) (0,0.5) (0.5,-0.5) carry red, green and blue.
// testdata holds the same two stages in HLSL.

//go:embed triangle_vs.wgsl
var triangleVertexCode string

//go:embed triangle_ps.wgsl
var trianglePixelCode string

// TriangleVertex returns the vertex stage of the triangle.
func TriangleVertex() Source {
	return mustSource("Triangle vertex shader", ShaderTypeVertex, triangleVertexCode)
}

// TrianglePixel returns the pixel stage, which outputs the interpolated vertex color.
func TrianglePixel() Source {
	return mustSource("Triangle pixel shader", ShaderTypePixel, trianglePixelCode)
}

// mustSource is NewSource for code embedded in the binary, where a missing entry point is a build defect.
func mustSource(name string, shaderType ShaderType, code string) Source {
	src, err := NewSource(name, shaderType, code)
	if err != nil {
		panic(err)
	}
	return src
}
