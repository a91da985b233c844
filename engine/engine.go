package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-core/engine/camera"
	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/Carmen-Shannon/oxy-core/engine/profiler"
	"github.com/Carmen-Shannon/oxy-core/engine/registry"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer"
	"github.com/Carmen-Shannon/oxy-core/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-core/engine/resource"
	"github.com/Carmen-Shannon/oxy-core/engine/scene"
)

// Profiled phase names.
const (
	PhaseUpdateMatrices = "update_matrices"
	PhaseRenderList     = "render_list"
)

// ErrNoProgramCachePath is returned by SaveProgramCache and LoadProgramCache when the config has no
// renderer.program_cache_path.
var ErrNoProgramCachePath = errors.New("engine: no program cache path configured")

// FrameFunc receives the render lists of one update, one per active scene in ascending key order.
type FrameFunc func(deltaTime float32, lists []renderer.RenderList)

// engine is the implementation of the Engine interface.
type engine struct {
	mu *sync.Mutex

	pools    *registry.Pools
	cfg      config.Config
	renderer renderer.Renderer
	logger   *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate  time.Duration
	tickRateChannel chan time.Duration
	running         bool
	tickCallback    func(deltaTime float32)

	scenes        map[int]resource.Handle[scene.Scene]
	initialScenes map[int]scene.Scene
}

// Engine ties the resource pools, scenes and renderer together. Each update recomputes the world
// matrices of every scene and turns the scenes into render lists, in ascending key order so that a
// higher key draws over a lower one.
type Engine interface {
	// Pools returns the resource pools shared by every scene.
	Pools() *registry.Pools

	// Config returns the configuration the engine was built with.
	Config() config.Config

	// Renderer returns the renderer building pipelines and render lists.
	Renderer() renderer.Renderer

	// Profiler returns the engine profiler. It only records while profiling is enabled.
	Profiler() *profiler.Profiler

	// EnableProfiler enables phase timing and periodic reports.
	EnableProfiler()

	// DisableProfiler disables phase timing and periodic reports.
	DisableProfiler()

	// SetTickRate sets the rate Run updates at, in updates per second.
	// If the engine is running, the change takes effect on the next tick.
	//
	// Parameters:
	//   - fps: the target rate; values <= 0 fall back to 60
	SetTickRate(fps float64)

	// SetTickCallback registers the function called at the start of each update, before matrices are
	// recomputed. Game logic moves nodes here.
	//
	// Parameters:
	//   - callback: the function receiving the elapsed seconds since the previous update
	SetTickCallback(callback func(deltaTime float32))

	// AddScene adds a scene to the scene pool and draws it at the given key.
	// A scene already at that key is replaced but stays in the pool.
	//
	// Parameters:
	//   - key: the draw order key
	//   - s: the scene
	//
	// Returns:
	//   - resource.Handle[scene.Scene]: the handle of the scene in the pool
	AddScene(key int, s scene.Scene) resource.Handle[scene.Scene]

	// RemoveScene stops drawing the scene at key.
	RemoveScene(key int)

	// Scene returns the scene drawn at key, or nil.
	Scene(key int) scene.Scene

	// Scenes returns a copy of the key to scene mapping.
	Scenes() map[int]scene.Scene

	// Resize updates the aspect ratio of every camera in the pools. A zero height is ignored.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	Resize(width, height int)

	// Warmup compiles every material in the pools on the renderer's worker pool and prepares its
	// pipeline.
	//
	// Returns:
	//   - error: every compile failure joined, or nil
	Warmup() error

	// Update advances the engine by one step: runs the tick callback, recomputes world matrices and
	// builds one render list per scene.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous update
	//
	// Returns:
	//   - []renderer.RenderList: the render lists in ascending key order
	Update(deltaTime float32) []renderer.RenderList

	// Run calls Update at the tick rate and hands each result to frame until ctx is done.
	//
	// Parameters:
	//   - ctx: cancelled to stop the loop
	//   - frame: receives the render lists of every update; may be nil
	//
	// Returns:
	//   - error: the context error that stopped the loop
	Run(ctx context.Context, frame FrameFunc) error

	// SaveProgramCache writes the compiled programs to the configured program cache path.
	//
	// Returns:
	//   - error: ErrNoProgramCachePath, or a file or encode error
	SaveProgramCache() error

	// LoadProgramCache reads the configured program cache file into the renderer's program cache.
	// A missing file is not an error and loads nothing.
	//
	// Returns:
	//   - int: the number of programs loaded
	//   - error: ErrNoProgramCachePath, or a file or decode error
	LoadProgramCache() (int, error)
}

var _ Engine = &engine{}

// NewEngine creates a new Engine. Without WithConfig the engine uses config.Default; an invalid
// config is logged and replaced by the defaults.
//
// Parameters:
//   - options: variadic list of EngineBuilderOption functions
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		cfg:             config.Default(),
		engineTickRate:  time.Second / 60,
		tickRateChannel: make(chan time.Duration, 1),
		scenes:          make(map[int]resource.Handle[scene.Scene]),
		initialScenes:   make(map[int]scene.Scene),
	}
	for _, opt := range options {
		opt(e)
	}

	if err := e.cfg.Validate(); err != nil {
		slog.Warn("engine: invalid config, using defaults", "error", err)
		e.cfg = config.Default()
	}
	if e.logger == nil {
		level, _ := e.cfg.Level()
		e.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	if e.pools == nil {
		e.pools = registry.NewPools()
	}
	for key, s := range e.initialScenes {
		e.scenes[key] = e.pools.Scenes.Add(s)
	}
	e.initialScenes = nil
	if e.renderer == nil {
		depth, _ := e.cfg.Renderer.Depth()
		programs := renderer.NewProgramCache(
			renderer.WithWarmupWorkers(e.cfg.Warmup.Workers),
			renderer.WithWarmupQueueSize(e.cfg.Warmup.QueueSize),
			renderer.WithCacheLogger(e.logger),
		)
		e.renderer = renderer.NewRenderer(
			renderer.WithProgramCache(programs),
			renderer.WithMSAA(renderer.MSAASampleCount(e.cfg.Renderer.MSAA)),
			renderer.WithDepthFormat(depth),
			renderer.WithShaderValidation(e.cfg.Renderer.ValidateShaders),
			renderer.WithLogger(e.logger),
		)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	return e
}

func (e *engine) Pools() *registry.Pools {
	return e.pools
}

func (e *engine) Config() config.Config {
	return e.cfg
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	running := e.running
	if !running {
		e.engineTickRate = newRate
	}
	e.mu.Unlock()
	if !running {
		return
	}

	// Replace any pending update that the loop has not picked up yet.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) resource.Handle[scene.Scene] {
	h := e.pools.Scenes.Add(s)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = h
	return h
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	h, ok := e.scenes[key]
	e.mu.Unlock()
	if !ok {
		return nil
	}
	s, _ := e.pools.Scenes.Get(h)
	return s
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, h := range e.scenes {
		if s, ok := e.pools.Scenes.Get(h); ok {
			cp[k] = s
		}
	}
	return cp
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	aspect := float32(width) / float32(height)
	e.pools.Cameras.Each(func(_ resource.Handle[camera.Camera], c *camera.Camera) bool {
		if *c != nil {
			(*c).SetAspect(aspect)
		}
		return true
	})
}

func (e *engine) Warmup() error {
	handles := make([]resource.Handle[material.Material], 0, e.pools.Materials.Len())
	e.pools.Materials.Each(func(h resource.Handle[material.Material], _ *material.Material) bool {
		handles = append(handles, h)
		return true
	})

	err := e.renderer.Programs().Warmup(e.pools, handles)
	var prepareErrs []error
	for _, h := range handles {
		if _, ok := e.renderer.Programs().Get(h); !ok {
			continue
		}
		if _, perr := e.renderer.PreparePipeline(e.pools, h); perr != nil {
			prepareErrs = append(prepareErrs, perr)
		}
	}
	e.logger.Info("engine: warmup complete", "materials", len(handles), "pipelines", len(e.renderer.Pipelines()))
	return errors.Join(append([]error{err}, prepareErrs...)...)
}

// orderedScenes returns the scenes in ascending key order.
func (e *engine) orderedScenes() []scene.Scene {
	e.mu.Lock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	handles := make([]resource.Handle[scene.Scene], len(keys))
	for i, k := range keys {
		handles[i] = e.scenes[k]
	}
	e.mu.Unlock()

	out := make([]scene.Scene, 0, len(handles))
	for _, h := range handles {
		if s, ok := e.pools.Scenes.Get(h); ok && s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (e *engine) Update(deltaTime float32) []renderer.RenderList {
	e.mu.Lock()
	tick := e.tickCallback
	profiling := e.profilingEnabled
	e.mu.Unlock()

	if tick != nil {
		tick(deltaTime)
	}

	measure := func(phase string, fn func()) {
		if profiling {
			e.profiler.Measure(phase, fn)
			return
		}
		fn()
	}

	scenes := e.orderedScenes()
	lists := make([]renderer.RenderList, 0, len(scenes))
	for _, s := range scenes {
		measure(PhaseUpdateMatrices, func() {
			s.UpdateMatrices(e.pools.Nodes)
		})
		measure(PhaseRenderList, func() {
			lists = append(lists, e.renderer.BuildRenderList(s, e.pools))
		})
	}

	if profiling {
		e.profiler.Tick()
	}
	return lists
}

func (e *engine) Run(ctx context.Context, frame FrameFunc) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return errors.New("engine: already running")
	}
	e.running = true
	rate := e.engineTickRate
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			lists := e.Update(dt)
			if frame != nil {
				frame(dt, lists)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.mu.Lock()
			e.engineTickRate = newRate
			e.mu.Unlock()
		}
	}
}

func (e *engine) SaveProgramCache() error {
	path := e.cfg.Renderer.ProgramCachePath
	if path == "" {
		return ErrNoProgramCachePath
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("engine: create program cache: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := e.renderer.Programs().Save(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("engine: write program cache: %w", err)
	}
	return f.Close()
}

func (e *engine) LoadProgramCache() (int, error) {
	path := e.cfg.Renderer.ProgramCachePath
	if path == "" {
		return 0, ErrNoProgramCachePath
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		e.logger.Debug("engine: no program cache on disk", "path", path)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("engine: open program cache: %w", err)
	}
	defer f.Close()

	n, err := e.renderer.Programs().Load(bufio.NewReader(f))
	if err != nil {
		return 0, err
	}
	e.logger.Info("engine: program cache loaded", "path", path, "programs", n)
	return n, nil
}
