// Package pipeline describes a graphics pipeline state before a backend compiles it.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	// name is reported by the backend in diagnostics and used as the GPU object label
	name string

	vertexShader, pixelShader shader.Shader

	// renderTargetFormat is the color format of the single render target, normally the swap chain's.
	renderTargetFormat wgpu.TextureFormat
	// depthStencilFormat is the depth buffer format; TextureFormatUndefined omits depth state.
	depthStencilFormat wgpu.TextureFormat

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes a graphics pipeline with a vertex and a pixel stage
// rendering into one render target.
type Pipeline interface {
	// Name returns the pipeline name.
	Name() string

	// Shader retrieves the shader bound to the given stage, or nil if unset.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the shader for that stage, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderTargetFormat returns the color target format.
	RenderTargetFormat() wgpu.TextureFormat

	// DepthStencilFormat returns the depth target format.
	DepthStencilFormat() wgpu.TextureFormat

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	DepthWriteEnabled() bool

	// BlendEnabled returns whether blending is enabled for this pipeline.
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state used when blending is enabled.
	BlendState() *wgpu.BlendState

	// Validate reports whether the description is complete enough to compile.
	//
	// Returns:
	//   - error: the first missing or inconsistent setting, or nil
	Validate() error
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a graphics pipeline description with defaults applied first:
// triangle list, no culling, counter-clockwise front faces, depth test and write on,
// blending off with a standard alpha blend state ready.
//
// Parameters:
//   - name: the pipeline name
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: the configured description
func NewPipeline(name string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		name:               name,
		renderTargetFormat: wgpu.TextureFormatUndefined,
		depthStencilFormat: wgpu.TextureFormatUndefined,
		depthTestEnabled:   true,
		depthWriteEnabled:  true,
		blendEnabled:       false,
		cullMode:           wgpu.CullModeNone,
		topology:           wgpu.PrimitiveTopologyTriangleList,
		frontFace:          wgpu.FrontFaceCCW,
		writeMask:          wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Name() string {
	return p.name
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypePixel:
		return p.pixelShader
	default:
		return nil
	}
}

func (p *pipeline) RenderTargetFormat() wgpu.TextureFormat {
	return p.renderTargetFormat
}

func (p *pipeline) DepthStencilFormat() wgpu.TextureFormat {
	return p.depthStencilFormat
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) Validate() error {
	if p.vertexShader == nil || p.pixelShader == nil {
		return errors.New("pipeline: both vertex and pixel shaders must be set")
	}
	if p.vertexShader.Type() != shader.ShaderTypeVertex {
		return fmt.Errorf("pipeline: %q bound as vertex shader is a %s shader", p.vertexShader.Name(), p.vertexShader.Type())
	}
	if p.pixelShader.Type() != shader.ShaderTypePixel {
		return fmt.Errorf("pipeline: %q bound as pixel shader is a %s shader", p.pixelShader.Name(), p.pixelShader.Type())
	}
	if p.renderTargetFormat == wgpu.TextureFormatUndefined {
		return errors.New("pipeline: render target format must be set")
	}
	if p.blendEnabled && p.blendState == nil {
		return errors.New("pipeline: blending enabled without a blend state")
	}
	return nil
}
