package pipeline

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type stubShader struct {
	name       string
	shaderType shader.ShaderType
}

func (s stubShader) Name() string            { return s.name }
func (s stubShader) Type() shader.ShaderType { return s.shaderType }
func (s stubShader) EntryPoint() string      { return "main" }
func (s stubShader) Release()                {}

var (
	vs = stubShader{"vs", shader.ShaderTypeVertex}
	ps = stubShader{"ps", shader.ShaderTypePixel}
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("defaults")

	if p.Name() != "defaults" {
		t.Errorf("Name() = %q", p.Name())
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("Topology() = %v, want TriangleList", p.Topology())
	}
	if p.CullMode() != wgpu.CullModeNone {
		t.Errorf("CullMode() = %v, want None", p.CullMode())
	}
	if p.FrontFace() != wgpu.FrontFaceCCW {
		t.Errorf("FrontFace() = %v, want CCW", p.FrontFace())
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() {
		t.Error("depth test and write should default to enabled")
	}
	if p.BlendEnabled() {
		t.Error("blending should default to disabled")
	}
	if p.BlendState() == nil {
		t.Error("default blend state is nil")
	}
	if p.WriteMask() != wgpu.ColorWriteMaskAll {
		t.Errorf("WriteMask() = %v, want All", p.WriteMask())
	}
	if p.RenderTargetFormat() != wgpu.TextureFormatUndefined || p.DepthStencilFormat() != wgpu.TextureFormatUndefined {
		t.Error("formats should default to Undefined")
	}
}

func TestPipelineOptions(t *testing.T) {
	p := NewPipeline("triangle",
		WithVertexShader(vs),
		WithPixelShader(ps),
		WithRenderTargetFormat(wgpu.TextureFormatBGRA8Unorm),
		WithDepthStencilFormat(wgpu.TextureFormatDepth24Plus),
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
		WithCullMode(wgpu.CullModeBack),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithFrontFace(wgpu.FrontFaceCW),
		WithBlendEnabled(true),
		WithWriteMask(wgpu.ColorWriteMaskRed),
	)

	if p.Shader(shader.ShaderTypeVertex) != vs || p.Shader(shader.ShaderTypePixel) != ps {
		t.Error("shaders not bound to their stages")
	}
	if p.Shader(shader.ShaderType(9)) != nil {
		t.Error("unknown stage returned a shader")
	}
	if p.RenderTargetFormat() != wgpu.TextureFormatBGRA8Unorm {
		t.Errorf("RenderTargetFormat() = %v", p.RenderTargetFormat())
	}
	if p.DepthStencilFormat() != wgpu.TextureFormatDepth24Plus {
		t.Errorf("DepthStencilFormat() = %v", p.DepthStencilFormat())
	}
	if p.DepthTestEnabled() || p.DepthWriteEnabled() {
		t.Error("depth options not applied")
	}
	if p.CullMode() != wgpu.CullModeBack || p.Topology() != wgpu.PrimitiveTopologyLineList || p.FrontFace() != wgpu.FrontFaceCW {
		t.Error("rasterizer options not applied")
	}
	if !p.BlendEnabled() || p.WriteMask() != wgpu.ColorWriteMaskRed {
		t.Error("color target options not applied")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestPipelineValidate(t *testing.T) {
	format := WithRenderTargetFormat(wgpu.TextureFormatBGRA8Unorm)
	tests := []struct {
		name    string
		opts    []PipelineBuilderOption
		wantErr string
	}{
		{"missing shaders", []PipelineBuilderOption{format}, "both vertex and pixel"},
		{"missing pixel shader", []PipelineBuilderOption{WithVertexShader(vs), format}, "both vertex and pixel"},
		{"swapped stages", []PipelineBuilderOption{WithVertexShader(ps), WithPixelShader(vs), format}, "bound as vertex shader"},
		{"pixel stage holds vertex shader", []PipelineBuilderOption{WithVertexShader(vs), WithPixelShader(vs), format}, "bound as pixel shader"},
		{"missing render target format", []PipelineBuilderOption{WithVertexShader(vs), WithPixelShader(ps)}, "render target format"},
		{"blend without state", []PipelineBuilderOption{WithVertexShader(vs), WithPixelShader(ps), format, WithBlendEnabled(true), WithBlendState(nil)}, "blend state"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPipeline(tt.name, tt.opts...).Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
