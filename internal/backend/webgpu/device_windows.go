//go:build windows

package webgpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/born-ml/gradbench/internal/bench"
	"github.com/born-ml/gradbench/internal/kernel"
	"github.com/go-webgpu/webgpu/wgpu"
)

// fenceSize is the byte size of the buffer copied to flush the queue.
const fenceSize = 4

// Backend is a WebGPU device usable both as a bench.Device and as a WGSL
// compiler for kernel.Load.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	fence *wgpu.Buffer
	mu    sync.Mutex
	now   func() time.Time
}

var (
	_ bench.Device             = (*Backend)(nil)
	_ kernel.Compiler[*Module] = (*Backend)(nil)
)

// New creates a WebGPU device on the high-performance adapter.
// Returns an error wrapping ErrUnavailable if the native library or an
// adapter is missing.
func New() (backend *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("%w: native library: %v", ErrUnavailable, r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: request adapter: %v", ErrUnavailable, err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: request device: %v", ErrUnavailable, err)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: no queue", ErrUnavailable)
	}

	fence := device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		Size:  fenceSize,
	})

	return &Backend{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    queue,
		fence:    fence,
		now:      time.Now,
	}, nil
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// NewEvent creates an unrecorded fence marker.
func (b *Backend) NewEvent() (bench.Event, error) {
	return newEvent(b.Synchronize, b.now), nil
}

// Synchronize submits a copy of the fence buffer and blocks until it can be
// mapped, which happens only after all earlier submissions completed.
func (b *Backend) Synchronize() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return fmt.Errorf("%w: device released", ErrUnavailable)
	}

	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  fenceSize,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(b.fence, 0, staging, 0, fenceSize)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, fenceSize); err != nil {
		return fmt.Errorf("webgpu: map fence: %w", err)
	}
	staging.Unmap()
	return nil
}

// Compile expands #define lines in source (WGSL has no preprocessor) and
// creates a shader module on this device.
func (b *Backend) Compile(source string) (*Module, error) {
	expanded, err := kernel.ExpandDefines(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return nil, fmt.Errorf("%w: device released", ErrUnavailable)
	}
	shader := b.device.CreateShaderModuleWGSL(expanded)
	if shader == nil {
		return nil, fmt.Errorf("%w: shader module", ErrCompile)
	}

	return &Module{
		device:    b.device,
		shader:    shader,
		pipelines: make(map[string]*wgpu.ComputePipeline),
	}, nil
}

// Release releases all WebGPU resources. Modules compiled on this device
// must be released first.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fence != nil {
		b.fence.Release()
		b.fence = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Module is a compiled WGSL shader module. Compute pipelines are created
// per entry point on first use and cached.
type Module struct {
	device *wgpu.Device
	shader *wgpu.ShaderModule

	mu        sync.Mutex
	pipelines map[string]*wgpu.ComputePipeline
}

// Pipeline returns the compute pipeline for entry.
func (m *Module) Pipeline(entry string) (*wgpu.ComputePipeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shader == nil {
		return nil, fmt.Errorf("%w: module released", ErrCompile)
	}
	if p, ok := m.pipelines[entry]; ok {
		return p, nil
	}

	p := m.device.CreateComputePipelineSimple(nil, m.shader, entry)
	if p == nil {
		return nil, fmt.Errorf("%w: pipeline %q", ErrCompile, entry)
	}
	m.pipelines[entry] = p
	return p, nil
}

// Build creates the pipeline for entry, reporting whether the entry point
// exists and compiles.
func (m *Module) Build(entry string) error {
	_, err := m.Pipeline(entry)
	return err
}

// Release releases the cached pipelines and the shader module.
func (m *Module) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.pipelines {
		p.Release()
	}
	m.pipelines = nil
	if m.shader != nil {
		m.shader.Release()
		m.shader = nil
	}
}
