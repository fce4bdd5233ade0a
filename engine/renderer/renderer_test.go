package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-pass/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gpucontext"
)

// fakeBackend records calls without touching a GPU.
type fakeBackend struct {
	pipelineErr  error
	beginErr     error
	indirectArgs map[string]GPUIndirectArgs
	info         gpucontext.AdapterInfo
	configureErr error
	configured   int
	writes       int
	ended        int
	presented    int
}

func (f *fakeBackend) ConfigureSurface(int, int) error {
	f.configured++
	return f.configureErr
}
func (f *fakeBackend) SetPresentMode(PresentMode) {}
func (f *fakeBackend) AdapterInfo() gpucontext.AdapterInfo {
	return f.info
}
func (f *fakeBackend) CreateRenderPipeline(PipelineDescriptor) (*wgpu.RenderPipeline, error) {
	return &wgpu.RenderPipeline{}, f.pipelineErr
}
func (f *fakeBackend) InitMeshBuffers(p bind_group_provider.BindGroupProvider, _, _ []byte, n int) error {
	p.SetIndexCount(n)
	return nil
}
func (f *fakeBackend) InitUniformBindGroup(bind_group_provider.BindGroupProvider, uint64, wgpu.ShaderStage) (*wgpu.BindGroupLayout, error) {
	return &wgpu.BindGroupLayout{}, nil
}
func (f *fakeBackend) CreateIndirectBuffer(label string, args GPUIndirectArgs) (*wgpu.Buffer, error) {
	f.indirectArgs[label] = args
	return &wgpu.Buffer{}, nil
}
func (f *fakeBackend) WriteBuffer(*wgpu.Buffer, uint64, []byte) { f.writes++ }
func (f *fakeBackend) BeginFrame() (*wgpu.RenderPassEncoder, error) {
	return nil, f.beginErr
}
func (f *fakeBackend) EndFrame() { f.ended++ }
func (f *fakeBackend) Present()  { f.presented++ }
func (f *fakeBackend) Release()  {}

func newFakeRenderer() (*renderer, *fakeBackend) {
	fb := &fakeBackend{indirectArgs: map[string]GPUIndirectArgs{}}
	return &renderer{
		mu:       &sync.Mutex{},
		registry: NewResourceRegistry(),
		caps:     NewRenderContextCaps(),
		backend:  fb,
	}, fb
}

func TestRegisterPipeline(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		err     error
		wantErr bool
	}{
		{name: "registered", key: "lit"},
		{name: "empty key", key: "", wantErr: true},
		{name: "backend failure", key: "broken", err: errors.New("bad wgsl"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fb := newFakeRenderer()
			fb.pipelineErr = tt.err
			err := r.RegisterPipeline(PipelineDescriptor{Key: tt.key})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := r.Registry().HasPipeline(tt.key); got == tt.wantErr {
				t.Errorf("HasPipeline(%q) = %v", tt.key, got)
			}
		})
	}
}

func TestRegisterIndirectBufferKeyedByBatch(t *testing.T) {
	r, fb := newFakeRenderer()
	mesh := bind_group_provider.NewBindGroupProvider("cube", bind_group_provider.WithIndexCount(36))

	if err := r.RegisterIndirectBuffer("lit", mesh, 4); err != nil {
		t.Fatal(err)
	}

	key := BatchKey("lit", "cube")
	if r.Registry().IndirectBuffer(key) == nil {
		t.Fatalf("no indirect buffer under %q", key)
	}
	if got := fb.indirectArgs[key]; got.IndexCount != 36 || got.InstanceCount != 4 {
		t.Errorf("args = %+v, want IndexCount 36 InstanceCount 4", got)
	}
}

func TestBeginFrameError(t *testing.T) {
	r, fb := newFakeRenderer()
	fb.beginErr = ErrFrameInFlight

	enc, err := r.BeginFrame()
	if !errors.Is(err, ErrFrameInFlight) || enc != nil {
		t.Fatalf("BeginFrame = (%v, %v), want (nil, ErrFrameInFlight)", enc, err)
	}

	r.EndFrame()
	if fb.ended != 1 || fb.presented != 1 {
		t.Errorf("ended/presented = %d/%d, want 1/1", fb.ended, fb.presented)
	}
}

func TestAdoptAdapter(t *testing.T) {
	tests := []struct {
		name     string
		info     gpucontext.AdapterInfo
		userCaps *RenderContextCaps
		wantMDI  bool
		wantGPU  bool
		wantName string
	}{
		{
			name:     "discrete adapter enables multi-draw",
			info:     gpucontext.AdapterInfo{Name: "dGPU", Type: gpucontext.AdapterTypeDiscrete},
			wantMDI:  true,
			wantName: "dGPU",
		},
		{
			name:     "software adapter stays on the CPU path",
			info:     gpucontext.AdapterInfo{Name: "llvmpipe", Type: gpucontext.AdapterTypeSoftware},
			wantName: "llvmpipe",
		},
		{
			name:     "supplied caps win over the adapter",
			info:     gpucontext.AdapterInfo{Name: "llvmpipe", Type: gpucontext.AdapterTypeSoftware},
			userCaps: NewRenderContextCaps(WithMultiDrawIndirect(true), WithGPUFrustumCulling(true)),
			wantMDI:  true,
			wantGPU:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newFakeRenderer()
			r.caps = nil
			WithRenderCaps(tt.userCaps)(r)
			r.adoptAdapter(tt.info)

			if tt.userCaps != nil && r.Caps() != tt.userCaps {
				t.Fatal("supplied caps were replaced")
			}
			if got := r.Caps().MultiDrawIndirectEnabled(); got != tt.wantMDI {
				t.Errorf("MultiDrawIndirectEnabled = %v, want %v", got, tt.wantMDI)
			}
			if got := GPUCullingActive(r.Caps()); got != tt.wantGPU {
				t.Errorf("GPUCullingActive = %v, want %v", got, tt.wantGPU)
			}
			if tt.userCaps == nil && r.Caps().Adapter().Name != tt.wantName {
				t.Errorf("Adapter().Name = %q, want %q", r.Caps().Adapter().Name, tt.wantName)
			}
		})
	}
}

func TestResizeSurvivesConfigureFailure(t *testing.T) {
	r, fb := newFakeRenderer()
	fb.configureErr = errors.New("surface lost")
	r.Resize(640, 480)
	fb.configureErr = nil
	r.Resize(800, 600)
	if fb.configured != 2 {
		t.Errorf("configured %d times, want 2", fb.configured)
	}
}
